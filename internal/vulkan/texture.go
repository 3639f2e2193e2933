package vulkan

import (
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/hellotriangle/internal/assets"
)

const textureFormat = core1_0.FormatR8G8B8A8SRGB

func (r *Renderer) createTextureImage(texture *assets.Texture) error {
	r.mipLevels = texture.MipLevels

	//Put image data into staging buffer
	stagingBuffer, stagingMemory, err := r.createBuffer(len(texture.Pixels), core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if stagingBuffer.Initialized() {
		defer r.deviceDriver.DestroyBuffer(stagingBuffer, nil)
	}
	if stagingMemory.Initialized() {
		defer r.deviceDriver.FreeMemory(stagingMemory, nil)
	}
	if err != nil {
		return err
	}

	err = writeData(r.deviceDriver, stagingMemory, 0, texture.Pixels)
	if err != nil {
		return err
	}

	//Create final image
	r.textureImage, r.textureImageMemory, err = r.createImage(texture.Width,
		texture.Height,
		r.mipLevels,
		core1_0.Samples1,
		textureFormat,
		core1_0.ImageTilingOptimal,
		core1_0.ImageUsageTransferSrc|core1_0.ImageUsageTransferDst|core1_0.ImageUsageSampled,
		core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return err
	}

	// Copy staging to final
	err = r.transitionImageLayout(r.textureImage, core1_0.ImageLayoutUndefined, core1_0.ImageLayoutTransferDstOptimal, r.mipLevels)
	if err != nil {
		return err
	}
	err = r.copyBufferToImage(stagingBuffer, r.textureImage, texture.Width, texture.Height)
	if err != nil {
		return err
	}

	if r.mipLevels == 1 {
		return r.transitionImageLayout(r.textureImage, core1_0.ImageLayoutTransferDstOptimal, core1_0.ImageLayoutShaderReadOnlyOptimal, 1)
	}
	return r.generateMipmaps(r.textureImage, textureFormat, texture.Width, texture.Height, r.mipLevels)
}

func (r *Renderer) createTextureImageView() error {
	var err error
	r.textureImageView, err = r.createImageView(r.textureImage, textureFormat, core1_0.ImageAspectColor, r.mipLevels)
	return err
}

func (r *Renderer) createSampler() error {
	properties, err := r.instanceDriver.GetPhysicalDeviceProperties(r.physicalDevice)
	if err != nil {
		return err
	}

	r.textureSampler, _, err = r.deviceDriver.CreateSampler(nil, core1_0.SamplerCreateInfo{
		MagFilter:    core1_0.FilterLinear,
		MinFilter:    core1_0.FilterLinear,
		AddressModeU: core1_0.SamplerAddressModeRepeat,
		AddressModeV: core1_0.SamplerAddressModeRepeat,
		AddressModeW: core1_0.SamplerAddressModeRepeat,

		AnisotropyEnable: true,
		MaxAnisotropy:    properties.Limits.MaxSamplerAnisotropy,

		BorderColor: core1_0.BorderColorIntOpaqueBlack,

		MipmapMode: core1_0.SamplerMipmapModeLinear,
		MinLod:     0,
		MaxLod:     float32(r.mipLevels),
	})

	return err
}
