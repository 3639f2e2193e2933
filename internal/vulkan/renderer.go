// Package vulkan holds the one-shot setup for the hello triangle renderer and
// the swapchain and queue operations the frame presenter drives.
//
// See https://vulkan-tutorial.com/ for a walkthrough of what most of this code
// does.
package vulkan

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/ext_debug_utils"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	"github.com/vkngwrapper/extensions/v3/khr_swapchain"

	"github.com/vkngwrapper/hellotriangle/internal/assets"
	"github.com/vkngwrapper/hellotriangle/internal/frame"
)

var validationLayers = []string{"VK_LAYER_KHRONOS_validation"}
var deviceExtensions = []string{khr_swapchain.ExtensionName}

// SurfaceSource is the window the renderer draws into.
type SurfaceSource interface {
	ProcAddr() unsafe.Pointer
	InstanceExtensions() []string
	CreateSurface(instance core1_0.Instance, surfaceExtension khr_surface.ExtensionDriver) (khr_surface.Surface, error)
}

type Options struct {
	ApplicationName string
	Validation      bool
	PreferMailbox   bool
	// Multisample renders through an MSAA color target when the device
	// supports more than one sample.
	Multisample bool

	VertexShader   string
	FragmentShader string
	PipelineCache  string
}

// Renderer implements frame.Device and frame.Swapchain on top of vkngwrapper.
type Renderer struct {
	opts Options
	log  logrus.FieldLogger

	globalDriver   core1_0.GlobalDriver
	instanceDriver core1_0.CoreInstanceDriver
	deviceDriver   core1_0.CoreDeviceDriver

	debugDriver      ext_debug_utils.ExtensionDriver
	debugMessenger   ext_debug_utils.DebugUtilsMessenger
	surfaceExtension khr_surface.ExtensionDriver
	surface          khr_surface.Surface

	physicalDevice core1_0.PhysicalDevice
	queueFamilies  QueueFamilyIndices

	graphicsQueue core1_0.Queue
	presentQueue  core1_0.Queue

	swapchainExtension    khr_swapchain.ExtensionDriver
	swapchain             khr_swapchain.Swapchain
	swapchainImages       []core1_0.Image
	swapchainImageFormat  core1_0.Format
	swapchainExtent       core1_0.Extent2D
	swapchainImageViews   []core1_0.ImageView
	swapchainFramebuffers []core1_0.Framebuffer

	renderPass          core1_0.RenderPass
	descriptorPool      core1_0.DescriptorPool
	descriptorSets      []core1_0.DescriptorSet
	descriptorSetLayout core1_0.DescriptorSetLayout
	pipelineLayout      core1_0.PipelineLayout
	pipelineCache       core1_0.PipelineCache
	graphicsPipeline    core1_0.Pipeline

	commandPool    core1_0.CommandPool
	commandBuffers []core1_0.CommandBuffer

	imageAvailableSemaphores []core1_0.Semaphore
	renderFinishedSemaphores []core1_0.Semaphore
	inFlightFences           []core1_0.Fence

	mesh               *assets.Mesh
	vertexBuffer       core1_0.Buffer
	vertexBufferMemory core1_0.DeviceMemory
	indexBuffer        core1_0.Buffer
	indexBufferMemory  core1_0.DeviceMemory

	uniformBuffers       []core1_0.Buffer
	uniformBuffersMemory []core1_0.DeviceMemory
	start                float64

	mipLevels          int
	textureImage       core1_0.Image
	textureImageMemory core1_0.DeviceMemory
	textureImageView   core1_0.ImageView
	textureSampler     core1_0.Sampler

	depthImage       core1_0.Image
	depthImageMemory core1_0.DeviceMemory
	depthImageView   core1_0.ImageView

	msaaSamples      core1_0.SampleCountFlags
	colorImage       core1_0.Image
	colorImageMemory core1_0.DeviceMemory
	colorImageView   core1_0.ImageView
}

var (
	_ frame.Device    = (*Renderer)(nil)
	_ frame.Swapchain = (*Renderer)(nil)
)

// New performs every setup step that does not depend on the swapchain. The
// swapchain itself is built by the presenter through CreateSwapchain.
func New(source SurfaceSource, scene *assets.Scene, opts Options, log logrus.FieldLogger) (*Renderer, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	r := &Renderer{
		opts:        opts,
		log:         log,
		mesh:        scene.Mesh,
		msaaSamples: core1_0.Samples1,
		start:       hrtime.Now().Seconds(),
	}

	err := r.init(source, scene)
	if err != nil {
		r.Close()
		return nil, err
	}

	return r, nil
}

func (r *Renderer) init(source SurfaceSource, scene *assets.Scene) error {
	var err error
	r.globalDriver, err = core.CreateDriverFromProcAddr(source.ProcAddr())
	if err != nil {
		return errors.Wrap(err, "load vulkan")
	}

	steps := []struct {
		name string
		fn   func() error
	}{
		{"create instance", func() error { return r.createInstance(source.InstanceExtensions()) }},
		{"setup debug messenger", r.setupDebugMessenger},
		{"create surface", func() error { return r.createSurface(source) }},
		{"pick physical device", r.pickPhysicalDevice},
		{"create logical device", r.createLogicalDevice},
		{"create descriptor set layout", r.createDescriptorSetLayout},
		{"create command pool", r.createCommandPool},
		{"create pipeline cache", r.createPipelineCache},
		{"create texture image", func() error { return r.createTextureImage(scene.Texture) }},
		{"create texture image view", r.createTextureImageView},
		{"create texture sampler", r.createSampler},
		{"create vertex buffer", r.createVertexBuffer},
		{"create index buffer", r.createIndexBuffer},
	}

	for _, step := range steps {
		err = step.fn()
		if err != nil {
			return errors.Wrap(err, step.name)
		}
	}

	return nil
}

// Close releases everything New created. It tolerates a partially
// initialized renderer and is safe to call more than once.
func (r *Renderer) Close() {
	if r.deviceDriver != nil {
		_, err := r.deviceDriver.DeviceWaitIdle()
		if err != nil {
			r.log.WithError(err).Warn("device wait idle before cleanup")
		}
	}

	r.DestroySwapchain()
	r.DestroyFrameSlots()
	r.savePipelineCache()

	if r.deviceDriver != nil {
		if r.pipelineCache.Initialized() {
			r.deviceDriver.DestroyPipelineCache(r.pipelineCache, nil)
			r.pipelineCache = core1_0.PipelineCache{}
		}

		if r.textureSampler.Initialized() {
			r.deviceDriver.DestroySampler(r.textureSampler, nil)
			r.textureSampler = core1_0.Sampler{}
		}

		if r.textureImageView.Initialized() {
			r.deviceDriver.DestroyImageView(r.textureImageView, nil)
			r.textureImageView = core1_0.ImageView{}
		}

		if r.textureImage.Initialized() {
			r.deviceDriver.DestroyImage(r.textureImage, nil)
			r.textureImage = core1_0.Image{}
		}

		if r.textureImageMemory.Initialized() {
			r.deviceDriver.FreeMemory(r.textureImageMemory, nil)
			r.textureImageMemory = core1_0.DeviceMemory{}
		}

		if r.descriptorSetLayout.Initialized() {
			r.deviceDriver.DestroyDescriptorSetLayout(r.descriptorSetLayout, nil)
			r.descriptorSetLayout = core1_0.DescriptorSetLayout{}
		}

		if r.indexBuffer.Initialized() {
			r.deviceDriver.DestroyBuffer(r.indexBuffer, nil)
			r.indexBuffer = core1_0.Buffer{}
		}

		if r.indexBufferMemory.Initialized() {
			r.deviceDriver.FreeMemory(r.indexBufferMemory, nil)
			r.indexBufferMemory = core1_0.DeviceMemory{}
		}

		if r.vertexBuffer.Initialized() {
			r.deviceDriver.DestroyBuffer(r.vertexBuffer, nil)
			r.vertexBuffer = core1_0.Buffer{}
		}

		if r.vertexBufferMemory.Initialized() {
			r.deviceDriver.FreeMemory(r.vertexBufferMemory, nil)
			r.vertexBufferMemory = core1_0.DeviceMemory{}
		}

		if r.commandPool.Initialized() {
			r.deviceDriver.DestroyCommandPool(r.commandPool, nil)
			r.commandPool = core1_0.CommandPool{}
		}

		r.deviceDriver.DestroyDevice(nil)
		r.deviceDriver = nil
	}

	if r.debugMessenger.Initialized() {
		r.debugDriver.DestroyDebugUtilsMessenger(r.debugMessenger, nil)
		r.debugMessenger = ext_debug_utils.DebugUtilsMessenger{}
	}

	if r.surface.Initialized() {
		r.surfaceExtension.DestroySurface(r.surface, nil)
		r.surface = khr_surface.Surface{}
	}

	if r.instanceDriver != nil {
		r.instanceDriver.DestroyInstance(nil)
		r.instanceDriver = nil
	}
}
