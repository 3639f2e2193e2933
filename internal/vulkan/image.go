package vulkan

import (
	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func (r *Renderer) createImageView(image core1_0.Image, format core1_0.Format, aspect core1_0.ImageAspectFlags, mipLevels int) (core1_0.ImageView, error) {
	imageView, _, err := r.deviceDriver.CreateImageView(nil, core1_0.ImageViewCreateInfo{
		Image:    image,
		ViewType: core1_0.ImageViewType2D,
		Format:   format,
		SubresourceRange: core1_0.ImageSubresourceRange{
			AspectMask:     aspect,
			BaseMipLevel:   0,
			LevelCount:     mipLevels,
			BaseArrayLayer: 0,
			LayerCount:     1,
		},
	})
	return imageView, err
}

func (r *Renderer) createImage(width, height int, mipLevels int, numSamples core1_0.SampleCountFlags, format core1_0.Format, tiling core1_0.ImageTiling, usage core1_0.ImageUsageFlags, memoryProperties core1_0.MemoryPropertyFlags) (core1_0.Image, core1_0.DeviceMemory, error) {
	image, _, err := r.deviceDriver.CreateImage(nil, core1_0.ImageCreateInfo{
		ImageType: core1_0.ImageType2D,
		Extent: core1_0.Extent3D{
			Width:  width,
			Height: height,
			Depth:  1,
		},
		MipLevels:     mipLevels,
		ArrayLayers:   1,
		Format:        format,
		Tiling:        tiling,
		InitialLayout: core1_0.ImageLayoutUndefined,
		Usage:         usage,
		SharingMode:   core1_0.SharingModeExclusive,
		Samples:       numSamples,
	})
	if err != nil {
		return core1_0.Image{}, core1_0.DeviceMemory{}, err
	}

	memReqs := r.deviceDriver.GetImageMemoryRequirements(image)
	memoryIndex, err := r.findMemoryType(memReqs.MemoryTypeBits, memoryProperties)
	if err != nil {
		r.deviceDriver.DestroyImage(image, nil)
		return core1_0.Image{}, core1_0.DeviceMemory{}, err
	}

	imageMemory, _, err := r.deviceDriver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memReqs.Size,
		MemoryTypeIndex: memoryIndex,
	})
	if err != nil {
		r.deviceDriver.DestroyImage(image, nil)
		return core1_0.Image{}, core1_0.DeviceMemory{}, err
	}

	_, err = r.deviceDriver.BindImageMemory(image, imageMemory, 0)
	if err != nil {
		r.deviceDriver.DestroyImage(image, nil)
		r.deviceDriver.FreeMemory(imageMemory, nil)
		return core1_0.Image{}, core1_0.DeviceMemory{}, err
	}

	return image, imageMemory, nil
}

func (r *Renderer) transitionImageLayout(image core1_0.Image, oldLayout core1_0.ImageLayout, newLayout core1_0.ImageLayout, mipLevels int) error {
	var sourceStage, destStage core1_0.PipelineStageFlags
	var sourceAccess, destAccess core1_0.AccessFlags

	if oldLayout == core1_0.ImageLayoutUndefined && newLayout == core1_0.ImageLayoutTransferDstOptimal {
		sourceAccess = 0
		destAccess = core1_0.AccessTransferWrite
		sourceStage = core1_0.PipelineStageTopOfPipe
		destStage = core1_0.PipelineStageTransfer
	} else if oldLayout == core1_0.ImageLayoutTransferDstOptimal && newLayout == core1_0.ImageLayoutShaderReadOnlyOptimal {
		sourceAccess = core1_0.AccessTransferWrite
		destAccess = core1_0.AccessShaderRead
		sourceStage = core1_0.PipelineStageTransfer
		destStage = core1_0.PipelineStageFragmentShader
	} else {
		return errors.Errorf("unexpected layout transition: %s -> %s", oldLayout, newLayout)
	}

	return r.withSingleTimeCommands(func(buffer core1_0.CommandBuffer) error {
		return r.deviceDriver.CmdPipelineBarrier(buffer, sourceStage, destStage, 0, nil, nil, []core1_0.ImageMemoryBarrier{
			{
				OldLayout:           oldLayout,
				NewLayout:           newLayout,
				SrcQueueFamilyIndex: -1,
				DstQueueFamilyIndex: -1,
				Image:               image,
				SubresourceRange: core1_0.ImageSubresourceRange{
					AspectMask:     core1_0.ImageAspectColor,
					BaseMipLevel:   0,
					LevelCount:     mipLevels,
					BaseArrayLayer: 0,
					LayerCount:     1,
				},
				SrcAccessMask: sourceAccess,
				DstAccessMask: destAccess,
			},
		})
	})
}

func (r *Renderer) copyBufferToImage(buffer core1_0.Buffer, image core1_0.Image, width, height int) error {
	return r.withSingleTimeCommands(func(cmdBuffer core1_0.CommandBuffer) error {
		return r.deviceDriver.CmdCopyBufferToImage(cmdBuffer, buffer, image, core1_0.ImageLayoutTransferDstOptimal,
			core1_0.BufferImageCopy{
				BufferOffset:      0,
				BufferRowLength:   0,
				BufferImageHeight: 0,

				ImageSubresource: core1_0.ImageSubresourceLayers{
					AspectMask:     core1_0.ImageAspectColor,
					MipLevel:       0,
					BaseArrayLayer: 0,
					LayerCount:     1,
				},
				ImageOffset: core1_0.Offset3D{X: 0, Y: 0, Z: 0},
				ImageExtent: core1_0.Extent3D{Width: width, Height: height, Depth: 1},
			},
		)
	})
}

// mipExtents lists the source and destination size of each blit in a mip
// chain, halving each dimension until it reaches 1.
func mipExtents(width, height, mipLevels int) [][2]core1_0.Offset3D {
	var blits [][2]core1_0.Offset3D

	mipWidth := width
	mipHeight := height
	for i := 1; i < mipLevels; i++ {
		nextMipWidth := mipWidth
		nextMipHeight := mipHeight

		if nextMipWidth > 1 {
			nextMipWidth /= 2
		}
		if nextMipHeight > 1 {
			nextMipHeight /= 2
		}

		blits = append(blits, [2]core1_0.Offset3D{
			{X: mipWidth, Y: mipHeight, Z: 1},
			{X: nextMipWidth, Y: nextMipHeight, Z: 1},
		})

		mipWidth = nextMipWidth
		mipHeight = nextMipHeight
	}

	return blits
}

func (r *Renderer) generateMipmaps(image core1_0.Image, imageFormat core1_0.Format, width, height int, mipLevels int) error {
	properties := r.instanceDriver.GetPhysicalDeviceFormatProperties(r.physicalDevice, imageFormat)

	if (properties.OptimalTilingFeatures & core1_0.FormatFeatureSampledImageFilterLinear) == 0 {
		return errors.Errorf("texture image format %s does not support linear blitting", imageFormat)
	}

	return r.withSingleTimeCommands(func(commandBuffer core1_0.CommandBuffer) error {
		barrier := core1_0.ImageMemoryBarrier{
			Image:               image,
			SrcQueueFamilyIndex: -1,
			DstQueueFamilyIndex: -1,
			SubresourceRange: core1_0.ImageSubresourceRange{
				AspectMask:     core1_0.ImageAspectColor,
				BaseArrayLayer: 0,
				LayerCount:     1,
				LevelCount:     1,
			},
		}

		for i, blit := range mipExtents(width, height, mipLevels) {
			level := i + 1

			barrier.SubresourceRange.BaseMipLevel = level - 1
			barrier.OldLayout = core1_0.ImageLayoutTransferDstOptimal
			barrier.NewLayout = core1_0.ImageLayoutTransferSrcOptimal
			barrier.SrcAccessMask = core1_0.AccessTransferWrite
			barrier.DstAccessMask = core1_0.AccessTransferRead

			err := r.deviceDriver.CmdPipelineBarrier(commandBuffer, core1_0.PipelineStageTransfer, core1_0.PipelineStageTransfer, 0, nil, nil, []core1_0.ImageMemoryBarrier{barrier})
			if err != nil {
				return err
			}

			err = r.deviceDriver.CmdBlitImage(commandBuffer, image, core1_0.ImageLayoutTransferSrcOptimal, image, core1_0.ImageLayoutTransferDstOptimal, []core1_0.ImageBlit{
				{
					SrcSubresource: core1_0.ImageSubresourceLayers{
						AspectMask:     core1_0.ImageAspectColor,
						MipLevel:       level - 1,
						BaseArrayLayer: 0,
						LayerCount:     1,
					},
					SrcOffsets: [2]core1_0.Offset3D{
						{X: 0, Y: 0, Z: 0},
						blit[0],
					},

					DstSubresource: core1_0.ImageSubresourceLayers{
						AspectMask:     core1_0.ImageAspectColor,
						MipLevel:       level,
						BaseArrayLayer: 0,
						LayerCount:     1,
					},
					DstOffsets: [2]core1_0.Offset3D{
						{X: 0, Y: 0, Z: 0},
						blit[1],
					},
				},
			}, core1_0.FilterLinear)
			if err != nil {
				return err
			}

			barrier.OldLayout = core1_0.ImageLayoutTransferSrcOptimal
			barrier.NewLayout = core1_0.ImageLayoutShaderReadOnlyOptimal
			barrier.SrcAccessMask = core1_0.AccessTransferRead
			barrier.DstAccessMask = core1_0.AccessShaderRead
			err = r.deviceDriver.CmdPipelineBarrier(commandBuffer, core1_0.PipelineStageTransfer, core1_0.PipelineStageFragmentShader, 0, nil, nil, []core1_0.ImageMemoryBarrier{barrier})
			if err != nil {
				return err
			}
		}

		barrier.SubresourceRange.BaseMipLevel = mipLevels - 1
		barrier.OldLayout = core1_0.ImageLayoutTransferDstOptimal
		barrier.NewLayout = core1_0.ImageLayoutShaderReadOnlyOptimal
		barrier.SrcAccessMask = core1_0.AccessTransferWrite
		barrier.DstAccessMask = core1_0.AccessShaderRead

		return r.deviceDriver.CmdPipelineBarrier(
			commandBuffer,
			core1_0.PipelineStageTransfer,
			core1_0.PipelineStageFragmentShader,
			0, nil, nil,
			[]core1_0.ImageMemoryBarrier{barrier})
	})
}
