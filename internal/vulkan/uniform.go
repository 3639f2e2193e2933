package vulkan

import (
	"math"

	"github.com/go-gl/mathgl/mgl32"
	"github.com/loov/hrtime"
	"github.com/vkngwrapper/core/v3/core1_0"
)

type UniformBufferObject struct {
	Model mgl32.Mat4
	View  mgl32.Mat4
	Proj  mgl32.Mat4
}

// newUniformBufferObject spins the model a quarter turn per second around Z.
// The aspect ratio comes from the extent the current swapchain was built
// with, so it follows every rebuild.
func newUniformBufferObject(seconds float64, extent core1_0.Extent2D) UniformBufferObject {
	timePeriod := math.Mod(seconds, 4.0)

	aspectRatio := float32(1)
	if extent.Height > 0 {
		aspectRatio = float32(extent.Width) / float32(extent.Height)
	}

	ubo := UniformBufferObject{
		Model: mgl32.HomogRotate3DZ(float32(timePeriod * math.Pi / 2.0)),
		View: mgl32.LookAtV(
			mgl32.Vec3{2, 2, 2},
			mgl32.Vec3{0, 0, 0},
			mgl32.Vec3{0, 0, 1},
		),
		Proj: mgl32.Perspective(mgl32.DegToRad(45), aspectRatio, 0.1, 10.0),
	}

	// Vulkan clip space has Y pointing down
	ubo.Proj[5] *= -1

	return ubo
}

func (r *Renderer) updateUniformBuffer(currentImage int) error {
	ubo := newUniformBufferObject(hrtime.Now().Seconds()-r.start, r.swapchainExtent)
	return writeData(r.deviceDriver, r.uniformBuffersMemory[currentImage], 0, &ubo)
}
