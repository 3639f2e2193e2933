package vulkan

import (
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"
)

// renderPassLayout describes the attachments of the single subpass. With
// more than one sample the subpass draws into a transient multisampled color
// target and resolves into the swapchain image. With one sample it draws into
// the swapchain image directly, since a resolve attachment requires a
// multisampled source.
func renderPassLayout(colorFormat, depthFormat core1_0.Format, samples core1_0.SampleCountFlags) ([]core1_0.AttachmentDescription, core1_0.SubpassDescription) {
	presentColor := core1_0.AttachmentDescription{
		Format:         colorFormat,
		Samples:        core1_0.Samples1,
		LoadOp:         core1_0.AttachmentLoadOpClear,
		StoreOp:        core1_0.AttachmentStoreOpStore,
		StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
		StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
		InitialLayout:  core1_0.ImageLayoutUndefined,
		FinalLayout:    khr_swapchain.ImageLayoutPresentSrc,
	}

	depth := core1_0.AttachmentDescription{
		Format:         depthFormat,
		Samples:        samples,
		LoadOp:         core1_0.AttachmentLoadOpClear,
		StoreOp:        core1_0.AttachmentStoreOpDontCare,
		StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
		StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
		InitialLayout:  core1_0.ImageLayoutUndefined,
		FinalLayout:    core1_0.ImageLayoutDepthStencilAttachmentOptimal,
	}

	subpass := core1_0.SubpassDescription{
		PipelineBindPoint: core1_0.PipelineBindPointGraphics,
		ColorAttachments: []core1_0.AttachmentReference{
			{
				Attachment: 0,
				Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
			},
		},
		DepthStencilAttachment: &core1_0.AttachmentReference{
			Attachment: 1,
			Layout:     core1_0.ImageLayoutDepthStencilAttachmentOptimal,
		},
	}

	if samples == core1_0.Samples1 {
		return []core1_0.AttachmentDescription{presentColor, depth}, subpass
	}

	multisampledColor := core1_0.AttachmentDescription{
		Format:         colorFormat,
		Samples:        samples,
		LoadOp:         core1_0.AttachmentLoadOpClear,
		StoreOp:        core1_0.AttachmentStoreOpDontCare,
		StencilLoadOp:  core1_0.AttachmentLoadOpDontCare,
		StencilStoreOp: core1_0.AttachmentStoreOpDontCare,
		InitialLayout:  core1_0.ImageLayoutUndefined,
		FinalLayout:    core1_0.ImageLayoutColorAttachmentOptimal,
	}

	// The resolve target is fully overwritten.
	presentColor.LoadOp = core1_0.AttachmentLoadOpDontCare

	subpass.ResolveAttachments = []core1_0.AttachmentReference{
		{
			Attachment: 2,
			Layout:     core1_0.ImageLayoutColorAttachmentOptimal,
		},
	}

	return []core1_0.AttachmentDescription{multisampledColor, depth, presentColor}, subpass
}

// framebufferAttachments orders the views to match renderPassLayout.
func framebufferAttachments(samples core1_0.SampleCountFlags, colorView, depthView, swapchainView core1_0.ImageView) []core1_0.ImageView {
	if samples == core1_0.Samples1 {
		return []core1_0.ImageView{swapchainView, depthView}
	}
	return []core1_0.ImageView{colorView, depthView, swapchainView}
}

func (r *Renderer) createRenderPass() error {
	depthFormat, err := r.findDepthFormat()
	if err != nil {
		return err
	}

	attachments, subpass := renderPassLayout(r.swapchainImageFormat, depthFormat, r.msaaSamples)

	r.renderPass, _, err = r.deviceDriver.CreateRenderPass(nil, core1_0.RenderPassCreateInfo{
		Attachments: attachments,
		Subpasses:   []core1_0.SubpassDescription{subpass},
		SubpassDependencies: []core1_0.SubpassDependency{
			{
				SrcSubpass: core1_0.SubpassExternal,
				DstSubpass: 0,

				SrcStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				SrcAccessMask: 0,

				DstStageMask:  core1_0.PipelineStageColorAttachmentOutput | core1_0.PipelineStageEarlyFragmentTests,
				DstAccessMask: core1_0.AccessColorAttachmentWrite | core1_0.AccessDepthStencilAttachmentWrite,
			},
		},
	})
	return err
}
