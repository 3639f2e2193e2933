package vulkan

import (
	"os"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"

	"github.com/vkngwrapper/hellotriangle/internal/assets"
)

//go:generate glslc ../../assets/shaders/src/shader.vert -o ../../assets/shaders/vert.spv
//go:generate glslc ../../assets/shaders/src/shader.frag -o ../../assets/shaders/frag.spv

// Vertex input locations shared with assets/shaders/src/shader.vert.
const (
	positionLocation = 0
	colorLocation    = 1
	texCoordLocation = 2
)

func getVertexBindingDescription() []core1_0.VertexInputBindingDescription {
	v := assets.Vertex{}
	return []core1_0.VertexInputBindingDescription{
		{
			Binding:   0,
			Stride:    int(unsafe.Sizeof(v)),
			InputRate: core1_0.VertexInputRateVertex,
		},
	}
}

func getVertexAttributeDescriptions() []core1_0.VertexInputAttributeDescription {
	v := assets.Vertex{}
	return []core1_0.VertexInputAttributeDescription{
		{
			Binding:  0,
			Location: positionLocation,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Position)),
		},
		{
			Binding:  0,
			Location: colorLocation,
			Format:   core1_0.FormatR32G32B32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.Color)),
		},
		{
			Binding:  0,
			Location: texCoordLocation,
			Format:   core1_0.FormatR32G32SignedFloat,
			Offset:   int(unsafe.Offsetof(v.TexCoord)),
		},
	}
}

// bytesToBytecode packs little-endian SPIR-V words.
func bytesToBytecode(b []byte) ([]uint32, error) {
	if len(b) == 0 || len(b)%4 != 0 {
		return nil, errors.Errorf("shader bytecode length %d is not a positive multiple of 4", len(b))
	}

	byteCode := make([]uint32, len(b)/4)
	for i := 0; i < len(byteCode); i++ {
		byteIndex := i * 4
		byteCode[i] = 0
		byteCode[i] |= uint32(b[byteIndex])
		byteCode[i] |= uint32(b[byteIndex+1]) << 8
		byteCode[i] |= uint32(b[byteIndex+2]) << 16
		byteCode[i] |= uint32(b[byteIndex+3]) << 24
	}

	return byteCode, nil
}

// viewportState covers the whole swapchain. The pipeline bakes it in, which is
// why the pipeline is rebuilt with the swapchain.
func viewportState(extent core1_0.Extent2D) *core1_0.PipelineViewportStateCreateInfo {
	return &core1_0.PipelineViewportStateCreateInfo{
		Viewports: []core1_0.Viewport{
			{
				X:        0,
				Y:        0,
				Width:    float32(extent.Width),
				Height:   float32(extent.Height),
				MinDepth: 0,
				MaxDepth: 1,
			},
		},
		Scissors: []core1_0.Rect2D{
			{
				Offset: core1_0.Offset2D{X: 0, Y: 0},
				Extent: extent,
			},
		},
	}
}

// multisampleState must agree with the sample count of the render pass
// attachments.
func multisampleState(samples core1_0.SampleCountFlags) *core1_0.PipelineMultisampleStateCreateInfo {
	return &core1_0.PipelineMultisampleStateCreateInfo{
		SampleShadingEnable:  false,
		RasterizationSamples: samples,
		MinSampleShading:     1.0,
	}
}

func (r *Renderer) loadShaderModule(path string) (core1_0.ShaderModule, error) {
	shaderBytes, err := os.ReadFile(path)
	if err != nil {
		return core1_0.ShaderModule{}, err
	}

	code, err := bytesToBytecode(shaderBytes)
	if err != nil {
		return core1_0.ShaderModule{}, errors.Wrap(err, path)
	}

	module, _, err := r.deviceDriver.CreateShaderModule(nil, core1_0.ShaderModuleCreateInfo{
		Code: code,
	})
	return module, err
}

func (r *Renderer) createGraphicsPipeline() error {
	vertShader, err := r.loadShaderModule(r.opts.VertexShader)
	if err != nil {
		return err
	}
	defer r.deviceDriver.DestroyShaderModule(vertShader, nil)

	fragShader, err := r.loadShaderModule(r.opts.FragmentShader)
	if err != nil {
		return err
	}
	defer r.deviceDriver.DestroyShaderModule(fragShader, nil)

	vertexInput := &core1_0.PipelineVertexInputStateCreateInfo{
		VertexBindingDescriptions:   getVertexBindingDescription(),
		VertexAttributeDescriptions: getVertexAttributeDescriptions(),
	}

	inputAssembly := &core1_0.PipelineInputAssemblyStateCreateInfo{
		Topology:               core1_0.PrimitiveTopologyTriangleList,
		PrimitiveRestartEnable: false,
	}

	vertStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageVertex,
		Module: vertShader,
		Name:   "main",
	}

	fragStage := core1_0.PipelineShaderStageCreateInfo{
		Stage:  core1_0.StageFragment,
		Module: fragShader,
		Name:   "main",
	}

	rasterization := &core1_0.PipelineRasterizationStateCreateInfo{
		DepthClampEnable:        false,
		RasterizerDiscardEnable: false,

		PolygonMode: core1_0.PolygonModeFill,
		CullMode:    core1_0.CullModeBack,
		FrontFace:   core1_0.FrontFaceCounterClockwise,

		DepthBiasEnable: false,

		LineWidth: 1.0,
	}

	depthStencil := &core1_0.PipelineDepthStencilStateCreateInfo{
		DepthTestEnable:  true,
		DepthWriteEnable: true,
		DepthCompareOp:   core1_0.CompareOpLess,
	}

	colorBlend := &core1_0.PipelineColorBlendStateCreateInfo{
		LogicOpEnabled: false,
		LogicOp:        core1_0.LogicOpCopy,

		BlendConstants: [4]float32{0, 0, 0, 0},
		Attachments: []core1_0.PipelineColorBlendAttachmentState{
			{
				BlendEnabled:   false,
				ColorWriteMask: core1_0.ColorComponentRed | core1_0.ColorComponentGreen | core1_0.ColorComponentBlue | core1_0.ColorComponentAlpha,
			},
		},
	}

	r.pipelineLayout, _, err = r.deviceDriver.CreatePipelineLayout(nil, core1_0.PipelineLayoutCreateInfo{
		SetLayouts: []core1_0.DescriptorSetLayout{
			r.descriptorSetLayout,
		},
	})
	if err != nil {
		return err
	}

	var cache *core1_0.PipelineCache
	if r.pipelineCache.Initialized() {
		cache = &r.pipelineCache
	}

	start := hrtime.Now()
	pipelines, _, err := r.deviceDriver.CreateGraphicsPipelines(cache, nil,
		core1_0.GraphicsPipelineCreateInfo{
			Stages: []core1_0.PipelineShaderStageCreateInfo{
				vertStage,
				fragStage,
			},
			VertexInputState:   vertexInput,
			InputAssemblyState: inputAssembly,
			ViewportState:      viewportState(r.swapchainExtent),
			RasterizationState: rasterization,
			MultisampleState:   multisampleState(r.msaaSamples),
			DepthStencilState:  depthStencil,
			ColorBlendState:    colorBlend,
			Layout:             r.pipelineLayout,
			RenderPass:         r.renderPass,
			Subpass:            0,
			BasePipelineIndex:  -1,
		},
	)
	if err != nil {
		return err
	}
	r.graphicsPipeline = pipelines[0]
	r.log.WithField("elapsed", hrtime.Since(start)).Debug("graphics pipeline created")

	return nil
}
