package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/hellotriangle/internal/frame"
)

// presentStatus folds the swapchain result codes the presenter recovers from
// into a frame.Status. Any other failure is returned as is.
func presentStatus(res common.VkResult, err error) (frame.Status, error) {
	switch res {
	case khr_swapchain.VKErrorOutOfDate:
		return frame.StatusOutOfDate, nil
	case khr_swapchain.VKSuboptimal:
		return frame.StatusSuboptimal, nil
	}
	return frame.StatusSuccess, err
}

// CreateFrameSlots creates one image-available semaphore, one
// render-finished semaphore and one fence per frame in flight. Fences start
// signaled so the first wait on each slot returns immediately.
func (r *Renderer) CreateFrameSlots(count int) error {
	for i := 0; i < count; i++ {
		semaphore, _, err := r.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return err
		}
		r.imageAvailableSemaphores = append(r.imageAvailableSemaphores, semaphore)

		// The slot fence covers the submit but not the present that waits on
		// this semaphore, so the next signal can race an unconsumed wait
		// (VUID-vkQueueSubmit-pSignalSemaphores-00067). One per swapchain
		// image avoids that.
		semaphore, _, err = r.deviceDriver.CreateSemaphore(nil, core1_0.SemaphoreCreateInfo{})
		if err != nil {
			return err
		}
		r.renderFinishedSemaphores = append(r.renderFinishedSemaphores, semaphore)

		fence, _, err := r.deviceDriver.CreateFence(nil, core1_0.FenceCreateInfo{
			Flags: core1_0.FenceCreateSignaled,
		})
		if err != nil {
			return err
		}
		r.inFlightFences = append(r.inFlightFences, fence)
	}

	return nil
}

func (r *Renderer) DestroyFrameSlots() {
	if r.deviceDriver == nil {
		return
	}

	for _, fence := range r.inFlightFences {
		r.deviceDriver.DestroyFence(fence, nil)
	}
	r.inFlightFences = nil

	for _, semaphore := range r.renderFinishedSemaphores {
		r.deviceDriver.DestroySemaphore(semaphore, nil)
	}
	r.renderFinishedSemaphores = nil

	for _, semaphore := range r.imageAvailableSemaphores {
		r.deviceDriver.DestroySemaphore(semaphore, nil)
	}
	r.imageAvailableSemaphores = nil
}

func (r *Renderer) WaitForFrame(slot int) error {
	_, err := r.deviceDriver.WaitForFences(true, common.NoTimeout, r.inFlightFences[slot])
	return err
}

func (r *Renderer) ResetFrame(slot int) error {
	_, err := r.deviceDriver.ResetFences(r.inFlightFences[slot])
	return err
}

func (r *Renderer) AcquireNextImage(slot int) (int, frame.Status, error) {
	imageIndex, res, err := r.swapchainExtension.AcquireNextImage(r.swapchain, common.NoTimeout, &r.imageAvailableSemaphores[slot], nil)
	status, err := presentStatus(res, err)
	if err != nil {
		return -1, status, err
	}
	return imageIndex, status, nil
}

// Submit refreshes the uniform buffer for imageIndex and queues its prerecorded
// command buffer. The slot's fence is signaled when the GPU finishes.
func (r *Renderer) Submit(slot int, imageIndex int) error {
	err := r.updateUniformBuffer(imageIndex)
	if err != nil {
		return errors.Wrap(err, "update uniform buffer")
	}

	_, err = r.deviceDriver.QueueSubmit(r.graphicsQueue, &r.inFlightFences[slot],
		core1_0.SubmitInfo{
			WaitSemaphores:   []core1_0.Semaphore{r.imageAvailableSemaphores[slot]},
			WaitDstStageMask: []core1_0.PipelineStageFlags{core1_0.PipelineStageColorAttachmentOutput},
			CommandBuffers:   []core1_0.CommandBuffer{r.commandBuffers[imageIndex]},
			SignalSemaphores: []core1_0.Semaphore{r.renderFinishedSemaphores[slot]},
		},
	)
	return err
}

func (r *Renderer) Present(slot int, imageIndex int) (frame.Status, error) {
	res, err := r.swapchainExtension.QueuePresent(r.presentQueue, khr_swapchain.PresentInfo{
		WaitSemaphores: []core1_0.Semaphore{r.renderFinishedSemaphores[slot]},
		Swapchains:     []khr_swapchain.Swapchain{r.swapchain},
		ImageIndices:   []int{imageIndex},
	})
	return presentStatus(res, err)
}

func (r *Renderer) WaitIdle() error {
	_, err := r.deviceDriver.DeviceWaitIdle()
	return err
}
