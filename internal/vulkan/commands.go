package vulkan

import (
	"github.com/vkngwrapper/core/v3/core1_0"
)

func (r *Renderer) createCommandPool() error {
	var err error
	r.commandPool, _, err = r.deviceDriver.CreateCommandPool(nil, core1_0.CommandPoolCreateInfo{
		QueueFamilyIndex: *r.queueFamilies.GraphicsFamily,
	})
	return err
}

func (r *Renderer) beginSingleTimeCommands() (core1_0.CommandBuffer, error) {
	buffers, _, err := r.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        r.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: 1,
	})
	if err != nil {
		return core1_0.CommandBuffer{}, err
	}

	buffer := buffers[0]
	_, err = r.deviceDriver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{
		Flags: core1_0.CommandBufferUsageOneTimeSubmit,
	})
	if err != nil {
		r.deviceDriver.FreeCommandBuffers(buffer)
		return core1_0.CommandBuffer{}, err
	}
	return buffer, nil
}

func (r *Renderer) endSingleTimeCommands(buffer core1_0.CommandBuffer) error {
	defer r.deviceDriver.FreeCommandBuffers(buffer)

	_, err := r.deviceDriver.EndCommandBuffer(buffer)
	if err != nil {
		return err
	}

	_, err = r.deviceDriver.QueueSubmit(r.graphicsQueue, nil,
		core1_0.SubmitInfo{
			CommandBuffers: []core1_0.CommandBuffer{buffer},
		},
	)
	if err != nil {
		return err
	}

	_, err = r.deviceDriver.QueueWaitIdle(r.graphicsQueue)
	return err
}

// withSingleTimeCommands records into a throwaway command buffer and blocks
// until the graphics queue has executed it.
func (r *Renderer) withSingleTimeCommands(record func(buffer core1_0.CommandBuffer) error) error {
	buffer, err := r.beginSingleTimeCommands()
	if err != nil {
		return err
	}

	err = record(buffer)
	if err != nil {
		_, _ = r.deviceDriver.EndCommandBuffer(buffer)
		r.deviceDriver.FreeCommandBuffers(buffer)
		return err
	}

	return r.endSingleTimeCommands(buffer)
}

func (r *Renderer) createCommandBuffers() error {
	buffers, _, err := r.deviceDriver.AllocateCommandBuffers(core1_0.CommandBufferAllocateInfo{
		CommandPool:        r.commandPool,
		Level:              core1_0.CommandBufferLevelPrimary,
		CommandBufferCount: len(r.swapchainImages),
	})
	if err != nil {
		return err
	}
	r.commandBuffers = buffers

	for bufferIdx, buffer := range buffers {
		err = r.recordCommandBuffer(buffer, bufferIdx)
		if err != nil {
			return err
		}
	}

	return nil
}

func (r *Renderer) recordCommandBuffer(buffer core1_0.CommandBuffer, imageIndex int) error {
	_, err := r.deviceDriver.BeginCommandBuffer(buffer, core1_0.CommandBufferBeginInfo{})
	if err != nil {
		return err
	}

	err = r.deviceDriver.CmdBeginRenderPass(buffer, core1_0.SubpassContentsInline,
		core1_0.RenderPassBeginInfo{
			RenderPass:  r.renderPass,
			Framebuffer: r.swapchainFramebuffers[imageIndex],
			RenderArea: core1_0.Rect2D{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: r.swapchainExtent,
			},
			ClearValues: []core1_0.ClearValue{
				core1_0.ClearValueFloat{0, 0, 0, 1},
				core1_0.ClearValueDepthStencil{Depth: 1.0, Stencil: 0},
			},
		})
	if err != nil {
		return err
	}

	r.deviceDriver.CmdBindPipeline(buffer, core1_0.PipelineBindPointGraphics, r.graphicsPipeline)
	r.deviceDriver.CmdBindVertexBuffers(buffer, 0, []core1_0.Buffer{r.vertexBuffer}, []int{0})
	r.deviceDriver.CmdBindIndexBuffer(buffer, r.indexBuffer, 0, core1_0.IndexTypeUInt32)
	r.deviceDriver.CmdBindDescriptorSets(buffer, core1_0.PipelineBindPointGraphics, r.pipelineLayout, 0, []core1_0.DescriptorSet{
		r.descriptorSets[imageIndex],
	}, nil)
	r.deviceDriver.CmdDrawIndexed(buffer, len(r.mesh.Indices), 1, 0, 0, 0)
	r.deviceDriver.CmdEndRenderPass(buffer)

	_, err = r.deviceDriver.EndCommandBuffer(buffer)
	return err
}
