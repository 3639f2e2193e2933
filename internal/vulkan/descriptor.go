package vulkan

import (
	"unsafe"

	"github.com/vkngwrapper/core/v3/core1_0"
)

const (
	uniformBinding = 0
	samplerBinding = 1
)

// sceneBindings is the single descriptor set the shaders read: the
// UniformBufferObject for the vertex stage and the texture for the fragment
// stage.
var sceneBindings = []core1_0.DescriptorSetLayoutBinding{
	{
		Binding:         uniformBinding,
		DescriptorType:  core1_0.DescriptorTypeUniformBuffer,
		DescriptorCount: 1,
		StageFlags:      core1_0.StageVertex,
	},
	{
		Binding:         samplerBinding,
		DescriptorType:  core1_0.DescriptorTypeCombinedImageSampler,
		DescriptorCount: 1,
		StageFlags:      core1_0.StageFragment,
	},
}

// descriptorPoolSizes sizes a pool for setCount copies of bindings, merging
// bindings that share a descriptor type.
func descriptorPoolSizes(bindings []core1_0.DescriptorSetLayoutBinding, setCount int) []core1_0.DescriptorPoolSize {
	var sizes []core1_0.DescriptorPoolSize
	index := make(map[core1_0.DescriptorType]int)

	for _, binding := range bindings {
		i, ok := index[binding.DescriptorType]
		if !ok {
			i = len(sizes)
			index[binding.DescriptorType] = i
			sizes = append(sizes, core1_0.DescriptorPoolSize{Type: binding.DescriptorType})
		}
		sizes[i].DescriptorCount += binding.DescriptorCount * setCount
	}

	return sizes
}

func (r *Renderer) createDescriptorSetLayout() error {
	var err error
	r.descriptorSetLayout, _, err = r.deviceDriver.CreateDescriptorSetLayout(nil, core1_0.DescriptorSetLayoutCreateInfo{
		Bindings: sceneBindings,
	})
	return err
}

// The pool holds one set per swapchain image, so it is rebuilt with the
// swapchain.
func (r *Renderer) createDescriptorPool() error {
	imageCount := len(r.swapchainImages)

	var err error
	r.descriptorPool, _, err = r.deviceDriver.CreateDescriptorPool(nil, core1_0.DescriptorPoolCreateInfo{
		MaxSets:   imageCount,
		PoolSizes: descriptorPoolSizes(sceneBindings, imageCount),
	})
	return err
}

func (r *Renderer) createDescriptorSets() error {
	allocLayouts := make([]core1_0.DescriptorSetLayout, len(r.swapchainImages))
	for i := range allocLayouts {
		allocLayouts[i] = r.descriptorSetLayout
	}

	var err error
	r.descriptorSets, _, err = r.deviceDriver.AllocateDescriptorSets(core1_0.DescriptorSetAllocateInfo{
		DescriptorPool: r.descriptorPool,
		SetLayouts:     allocLayouts,
	})
	if err != nil {
		return err
	}

	for i, set := range r.descriptorSets {
		err = r.deviceDriver.UpdateDescriptorSets([]core1_0.WriteDescriptorSet{
			{
				DstSet:          set,
				DstBinding:      uniformBinding,
				DstArrayElement: 0,

				DescriptorType: core1_0.DescriptorTypeUniformBuffer,

				BufferInfo: []core1_0.DescriptorBufferInfo{
					{
						Buffer: r.uniformBuffers[i],
						Offset: 0,
						Range:  int(unsafe.Sizeof(UniformBufferObject{})),
					},
				},
			},
			{
				DstSet:          set,
				DstBinding:      samplerBinding,
				DstArrayElement: 0,

				DescriptorType: core1_0.DescriptorTypeCombinedImageSampler,

				ImageInfo: []core1_0.DescriptorImageInfo{
					{
						ImageView:   r.textureImageView,
						Sampler:     r.textureSampler,
						ImageLayout: core1_0.ImageLayoutShaderReadOnlyOptimal,
					},
				},
			},
		}, nil)
		if err != nil {
			return err
		}
	}

	return nil
}
