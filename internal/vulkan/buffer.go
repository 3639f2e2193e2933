package vulkan

import (
	"bytes"
	"encoding/binary"
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

func encodeData(data any) ([]byte, error) {
	buf := &bytes.Buffer{}
	err := binary.Write(buf, common.ByteOrder, data)
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func writeData(driver core1_0.DeviceDriver, memory core1_0.DeviceMemory, offset int, data any) error {
	encoded, err := encodeData(data)
	if err != nil {
		return err
	}

	memoryPtr, _, err := driver.MapMemory(memory, offset, len(encoded), 0)
	if err != nil {
		return err
	}
	defer driver.UnmapMemory(memory)

	dataBuffer := unsafe.Slice((*byte)(memoryPtr), len(encoded))
	copy(dataBuffer, encoded)
	return nil
}

func (r *Renderer) createBuffer(size int, usage core1_0.BufferUsageFlags, properties core1_0.MemoryPropertyFlags) (core1_0.Buffer, core1_0.DeviceMemory, error) {
	buffer, _, err := r.deviceDriver.CreateBuffer(nil, core1_0.BufferCreateInfo{
		Size:        size,
		Usage:       usage,
		SharingMode: core1_0.SharingModeExclusive,
	})
	if err != nil {
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, err
	}

	memRequirements := r.deviceDriver.GetBufferMemoryRequirements(buffer)
	memoryTypeIndex, err := r.findMemoryType(memRequirements.MemoryTypeBits, properties)
	if err != nil {
		return buffer, core1_0.DeviceMemory{}, err
	}

	memory, _, err := r.deviceDriver.AllocateMemory(nil, core1_0.MemoryAllocateInfo{
		AllocationSize:  memRequirements.Size,
		MemoryTypeIndex: memoryTypeIndex,
	})
	if err != nil {
		return buffer, core1_0.DeviceMemory{}, err
	}

	_, err = r.deviceDriver.BindBufferMemory(buffer, memory, 0)
	return buffer, memory, err
}

func (r *Renderer) copyBuffer(srcBuffer core1_0.Buffer, dstBuffer core1_0.Buffer, size int) error {
	return r.withSingleTimeCommands(func(buffer core1_0.CommandBuffer) error {
		return r.deviceDriver.CmdCopyBuffer(buffer, srcBuffer, dstBuffer,
			core1_0.BufferCopy{
				SrcOffset: 0,
				DstOffset: 0,
				Size:      size,
			},
		)
	})
}

// uploadDeviceLocal copies data through a host-visible staging buffer into a
// new device-local buffer.
func (r *Renderer) uploadDeviceLocal(data any, usage core1_0.BufferUsageFlags) (core1_0.Buffer, core1_0.DeviceMemory, error) {
	bufferSize := binary.Size(data)
	if bufferSize <= 0 {
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, errors.Errorf("cannot upload %T of size %d", data, bufferSize)
	}

	stagingBuffer, stagingBufferMemory, err := r.createBuffer(bufferSize, core1_0.BufferUsageTransferSrc, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
	if stagingBuffer.Initialized() {
		defer r.deviceDriver.DestroyBuffer(stagingBuffer, nil)
	}
	if stagingBufferMemory.Initialized() {
		defer r.deviceDriver.FreeMemory(stagingBufferMemory, nil)
	}
	if err != nil {
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, err
	}

	err = writeData(r.deviceDriver, stagingBufferMemory, 0, data)
	if err != nil {
		return core1_0.Buffer{}, core1_0.DeviceMemory{}, err
	}

	buffer, memory, err := r.createBuffer(bufferSize, core1_0.BufferUsageTransferDst|usage, core1_0.MemoryPropertyDeviceLocal)
	if err != nil {
		return buffer, memory, err
	}

	return buffer, memory, r.copyBuffer(stagingBuffer, buffer, bufferSize)
}

func (r *Renderer) createVertexBuffer() error {
	var err error
	r.vertexBuffer, r.vertexBufferMemory, err = r.uploadDeviceLocal(r.mesh.Vertices, core1_0.BufferUsageVertexBuffer)
	return err
}

func (r *Renderer) createIndexBuffer() error {
	var err error
	r.indexBuffer, r.indexBufferMemory, err = r.uploadDeviceLocal(r.mesh.Indices, core1_0.BufferUsageIndexBuffer)
	return err
}

func (r *Renderer) createUniformBuffers() error {
	bufferSize := int(unsafe.Sizeof(UniformBufferObject{}))

	for i := 0; i < len(r.swapchainImages); i++ {
		buffer, memory, err := r.createBuffer(bufferSize, core1_0.BufferUsageUniformBuffer, core1_0.MemoryPropertyHostVisible|core1_0.MemoryPropertyHostCoherent)
		if buffer.Initialized() {
			r.uniformBuffers = append(r.uniformBuffers, buffer)
		}
		if memory.Initialized() {
			r.uniformBuffersMemory = append(r.uniformBuffersMemory, memory)
		}
		if err != nil {
			return err
		}
	}

	return nil
}
