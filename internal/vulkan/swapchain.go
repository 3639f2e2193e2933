package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/hellotriangle/internal/frame"
)

// CreateSwapchain builds the swapchain and every resource sized from it, in
// creation order. DestroySwapchain undoes them in reverse.
func (r *Renderer) CreateSwapchain(extent frame.Extent) error {
	steps := []struct {
		name string
		fn   func() error
	}{
		{"create swapchain", func() error { return r.createSwapchain(extent) }},
		{"create image views", r.createImageViews},
		{"create render pass", r.createRenderPass},
		{"create graphics pipeline", r.createGraphicsPipeline},
		{"create color resources", r.createColorResources},
		{"create depth resources", r.createDepthResources},
		{"create framebuffers", r.createFramebuffers},
		{"create uniform buffers", r.createUniformBuffers},
		{"create descriptor pool", r.createDescriptorPool},
		{"create descriptor sets", r.createDescriptorSets},
		{"create command buffers", r.createCommandBuffers},
	}

	for _, step := range steps {
		err := step.fn()
		if err != nil {
			return errors.Wrap(err, step.name)
		}
	}

	r.log.WithFields(logrus.Fields{
		"extent": frame.Extent{Width: r.swapchainExtent.Width, Height: r.swapchainExtent.Height},
		"images": len(r.swapchainImages),
		"format": r.swapchainImageFormat,
	}).Debug("swapchain created")

	return nil
}

func (r *Renderer) DestroySwapchain() {
	if r.deviceDriver == nil {
		return
	}

	if len(r.commandBuffers) > 0 {
		r.deviceDriver.FreeCommandBuffers(r.commandBuffers...)
		r.commandBuffers = nil
	}

	// Sets are freed along with their pool.
	r.descriptorSets = nil
	if r.descriptorPool.Initialized() {
		r.deviceDriver.DestroyDescriptorPool(r.descriptorPool, nil)
		r.descriptorPool = core1_0.DescriptorPool{}
	}

	for _, buffer := range r.uniformBuffers {
		r.deviceDriver.DestroyBuffer(buffer, nil)
	}
	r.uniformBuffers = nil

	for _, memory := range r.uniformBuffersMemory {
		r.deviceDriver.FreeMemory(memory, nil)
	}
	r.uniformBuffersMemory = nil

	for _, framebuffer := range r.swapchainFramebuffers {
		r.deviceDriver.DestroyFramebuffer(framebuffer, nil)
	}
	r.swapchainFramebuffers = nil

	if r.depthImageView.Initialized() {
		r.deviceDriver.DestroyImageView(r.depthImageView, nil)
		r.depthImageView = core1_0.ImageView{}
	}

	if r.depthImage.Initialized() {
		r.deviceDriver.DestroyImage(r.depthImage, nil)
		r.depthImage = core1_0.Image{}
	}

	if r.depthImageMemory.Initialized() {
		r.deviceDriver.FreeMemory(r.depthImageMemory, nil)
		r.depthImageMemory = core1_0.DeviceMemory{}
	}

	if r.colorImageView.Initialized() {
		r.deviceDriver.DestroyImageView(r.colorImageView, nil)
		r.colorImageView = core1_0.ImageView{}
	}

	if r.colorImage.Initialized() {
		r.deviceDriver.DestroyImage(r.colorImage, nil)
		r.colorImage = core1_0.Image{}
	}

	if r.colorImageMemory.Initialized() {
		r.deviceDriver.FreeMemory(r.colorImageMemory, nil)
		r.colorImageMemory = core1_0.DeviceMemory{}
	}

	if r.graphicsPipeline.Initialized() {
		r.deviceDriver.DestroyPipeline(r.graphicsPipeline, nil)
		r.graphicsPipeline = core1_0.Pipeline{}
	}

	if r.pipelineLayout.Initialized() {
		r.deviceDriver.DestroyPipelineLayout(r.pipelineLayout, nil)
		r.pipelineLayout = core1_0.PipelineLayout{}
	}

	if r.renderPass.Initialized() {
		r.deviceDriver.DestroyRenderPass(r.renderPass, nil)
		r.renderPass = core1_0.RenderPass{}
	}

	for _, imageView := range r.swapchainImageViews {
		r.deviceDriver.DestroyImageView(imageView, nil)
	}
	r.swapchainImageViews = nil

	// Swapchain images belong to the swapchain.
	r.swapchainImages = nil
	if r.swapchain.Initialized() {
		r.swapchainExtension.DestroySwapchain(r.swapchain, nil)
		r.swapchain = khr_swapchain.Swapchain{}
	}
}

func (r *Renderer) ImageCount() int {
	return len(r.swapchainImages)
}

func (r *Renderer) createSwapchain(windowSize frame.Extent) error {
	r.swapchainExtension = khr_swapchain.CreateExtensionDriverFromCoreDriver(r.deviceDriver)

	swapchainSupport, err := r.querySwapChainSupport(r.physicalDevice)
	if err != nil {
		return err
	}

	surfaceFormat := chooseSwapSurfaceFormat(swapchainSupport.Formats)
	presentMode := chooseSwapPresentMode(swapchainSupport.PresentModes, r.opts.PreferMailbox)
	extent := chooseSwapExtent(swapchainSupport.Capabilities, windowSize)
	imageCount := swapchainImageCount(swapchainSupport.Capabilities)

	sharingMode := core1_0.SharingModeExclusive
	var queueFamilyIndices []int

	if families := r.queueFamilies.Unique(); len(families) > 1 {
		sharingMode = core1_0.SharingModeConcurrent
		queueFamilyIndices = families
	}

	swapchain, _, err := r.swapchainExtension.CreateSwapchain(nil, khr_swapchain.SwapchainCreateInfo{
		Surface: r.surface,

		MinImageCount:    imageCount,
		ImageFormat:      surfaceFormat.Format,
		ImageColorSpace:  surfaceFormat.ColorSpace,
		ImageExtent:      extent,
		ImageArrayLayers: 1,
		ImageUsage:       core1_0.ImageUsageColorAttachment,

		ImageSharingMode:   sharingMode,
		QueueFamilyIndices: queueFamilyIndices,

		PreTransform:   swapchainSupport.Capabilities.CurrentTransform,
		CompositeAlpha: khr_surface.CompositeAlphaOpaque,
		PresentMode:    presentMode,
		Clipped:        true,
	})
	if err != nil {
		return err
	}
	r.swapchainExtent = extent
	r.swapchain = swapchain
	r.swapchainImageFormat = surfaceFormat.Format

	return nil
}

func (r *Renderer) createImageViews() error {
	images, _, err := r.swapchainExtension.GetSwapchainImages(r.swapchain)
	if err != nil {
		return err
	}
	r.swapchainImages = images

	for _, image := range images {
		view, err := r.createImageView(image, r.swapchainImageFormat, core1_0.ImageAspectColor, 1)
		if err != nil {
			return err
		}

		r.swapchainImageViews = append(r.swapchainImageViews, view)
	}

	return nil
}

// createColorResources builds the transient multisampled color target. A
// single sampled pass renders straight into the swapchain images instead.
func (r *Renderer) createColorResources() error {
	if r.msaaSamples == core1_0.Samples1 {
		return nil
	}

	var err error
	r.colorImage, r.colorImageMemory, err = r.createImage(
		r.swapchainExtent.Width,
		r.swapchainExtent.Height,
		1,
		r.msaaSamples,
		r.swapchainImageFormat,
		core1_0.ImageTilingOptimal,
		core1_0.ImageUsageTransientAttachment|core1_0.ImageUsageColorAttachment,
		core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	r.colorImageView, err = r.createImageView(r.colorImage, r.swapchainImageFormat, core1_0.ImageAspectColor, 1)
	return err
}

func (r *Renderer) createDepthResources() error {
	depthFormat, err := r.findDepthFormat()
	if err != nil {
		return err
	}

	r.depthImage, r.depthImageMemory, err = r.createImage(
		r.swapchainExtent.Width,
		r.swapchainExtent.Height,
		1,
		r.msaaSamples,
		depthFormat,
		core1_0.ImageTilingOptimal,
		core1_0.ImageUsageDepthStencilAttachment,
		core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	r.depthImageView, err = r.createImageView(r.depthImage, depthFormat, core1_0.ImageAspectDepth, 1)
	return err
}

func (r *Renderer) createFramebuffers() error {
	for _, imageView := range r.swapchainImageViews {
		framebuffer, _, err := r.deviceDriver.CreateFramebuffer(nil, core1_0.FramebufferCreateInfo{
			RenderPass:  r.renderPass,
			Layers:      1,
			Attachments: framebufferAttachments(r.msaaSamples, r.colorImageView, r.depthImageView, imageView),
			Width:       r.swapchainExtent.Width,
			Height:      r.swapchainExtent.Height,
		})
		if err != nil {
			return err
		}

		r.swapchainFramebuffers = append(r.swapchainFramebuffers, framebuffer)
	}

	return nil
}

func chooseSwapSurfaceFormat(availableFormats []khr_surface.SurfaceFormat) khr_surface.SurfaceFormat {
	for _, format := range availableFormats {
		if format.Format == core1_0.FormatB8G8R8A8SRGB && format.ColorSpace == khr_surface.ColorSpaceSRGBNonlinear {
			return format
		}
	}

	return availableFormats[0]
}

func chooseSwapPresentMode(availablePresentModes []khr_surface.PresentMode, preferMailbox bool) khr_surface.PresentMode {
	if !preferMailbox {
		return khr_surface.PresentModeFIFO
	}

	for _, presentMode := range availablePresentModes {
		if presentMode == khr_surface.PresentModeMailbox {
			return presentMode
		}
	}

	// FIFO is the only mode every implementation must support.
	return khr_surface.PresentModeFIFO
}

// chooseSwapExtent uses the surface's current extent when it has one, and
// otherwise clamps the window's drawable size to what the surface allows.
func chooseSwapExtent(capabilities *khr_surface.SurfaceCapabilities, windowSize frame.Extent) core1_0.Extent2D {
	if capabilities.CurrentExtent.Width != -1 {
		return capabilities.CurrentExtent
	}

	width := clamp(windowSize.Width, capabilities.MinImageExtent.Width, capabilities.MaxImageExtent.Width)
	height := clamp(windowSize.Height, capabilities.MinImageExtent.Height, capabilities.MaxImageExtent.Height)

	return core1_0.Extent2D{Width: width, Height: height}
}

func swapchainImageCount(capabilities *khr_surface.SurfaceCapabilities) int {
	imageCount := capabilities.MinImageCount + 1
	if capabilities.MaxImageCount > 0 && capabilities.MaxImageCount < imageCount {
		imageCount = capabilities.MaxImageCount
	}
	return imageCount
}

func clamp(value, lo, hi int) int {
	if value < lo {
		return lo
	}
	if value > hi {
		return hi
	}
	return value
}
