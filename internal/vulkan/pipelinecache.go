package vulkan

import (
	"bytes"
	"encoding/binary"
	"io"
	"os"

	"github.com/cockroachdb/errors"
	"github.com/google/uuid"
	"github.com/pierrec/lz4"
	"github.com/sirupsen/logrus"
	"github.com/vkngwrapper/core/v3/common"
	"github.com/vkngwrapper/core/v3/core1_0"
)

const (
	pipelineCacheHeaderVersionOne = 1
	pipelineCacheHeaderSize       = 16 + 16
)

// pipelineCacheHeader is the prefix every driver writes in front of its
// pipeline cache data:
//
//	bytes  field
//	4      length of the header in bytes
//	4      header version
//	4      vendor ID
//	4      device ID
//	16     pipeline cache UUID
type pipelineCacheHeader struct {
	HeaderLength uint32
	Version      uint32
	VendorID     uint32
	DeviceID     uint32
	CacheUUID    uuid.UUID
}

func readPipelineCacheHeader(data []byte) (pipelineCacheHeader, error) {
	var header pipelineCacheHeader
	err := binary.Read(bytes.NewReader(data), common.ByteOrder, &header)
	if err != nil {
		return header, errors.Wrap(err, "read pipeline cache header")
	}
	return header, nil
}

// validatePipelineCache reports why cache data written by another driver or
// device cannot be fed back into pipeline cache creation.
func validatePipelineCache(data []byte, vendorID, deviceID uint32, cacheUUID uuid.UUID) error {
	header, err := readPipelineCacheHeader(data)
	if err != nil {
		return err
	}

	if header.HeaderLength < pipelineCacheHeaderSize {
		return errors.Errorf("bad header length 0x%x", header.HeaderLength)
	}
	if header.Version != pipelineCacheHeaderVersionOne {
		return errors.Errorf("unsupported cache header version 0x%x", header.Version)
	}
	if header.VendorID != vendorID {
		return errors.Errorf("vendor ID mismatch: cache has 0x%x, driver expects 0x%x", header.VendorID, vendorID)
	}
	if header.DeviceID != deviceID {
		return errors.Errorf("device ID mismatch: cache has 0x%x, driver expects 0x%x", header.DeviceID, deviceID)
	}
	if header.CacheUUID != cacheUUID {
		return errors.Errorf("UUID mismatch: cache has %s, driver expects %s", header.CacheUUID, cacheUUID)
	}
	return nil
}

// readPipelineCacheFile returns the decompressed cache data at path, or nil
// if there is no file yet.
func readPipelineCacheFile(path string) ([]byte, error) {
	f, err := os.Open(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	} else if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(lz4.NewReader(f))
	if err != nil {
		return nil, errors.Wrapf(err, "decompress %s", path)
	}
	return data, nil
}

func writePipelineCacheFile(path string, data []byte) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}

	writer := lz4.NewWriter(f)
	_, err = writer.Write(data)
	if err == nil {
		err = writer.Close()
	}
	if closeErr := f.Close(); err == nil {
		err = closeErr
	}
	return err
}

func (r *Renderer) createPipelineCache() error {
	var initialData []byte

	if r.opts.PipelineCache != "" {
		data, err := readPipelineCacheFile(r.opts.PipelineCache)
		if err != nil {
			r.log.WithError(err).WithField("path", r.opts.PipelineCache).Warn("discarding pipeline cache")
		}
		initialData = data
	}

	if len(initialData) > 0 {
		properties, err := r.instanceDriver.GetPhysicalDeviceProperties(r.physicalDevice)
		if err != nil {
			return err
		}

		err = validatePipelineCache(initialData, properties.VendorID, properties.DeviceID, properties.PipelineCacheUUID)
		if err != nil {
			r.log.WithError(err).WithField("path", r.opts.PipelineCache).Warn("discarding pipeline cache")
			initialData = nil
			// not important if this fails
			_ = os.Remove(r.opts.PipelineCache)
		}
	}

	var err error
	r.pipelineCache, _, err = r.deviceDriver.CreatePipelineCache(nil, core1_0.PipelineCacheCreateInfo{
		InitialData: initialData,
	})
	if err != nil {
		return err
	}

	r.log.WithFields(logrus.Fields{
		"path":  r.opts.PipelineCache,
		"bytes": len(initialData),
	}).Debug("pipeline cache created")
	return nil
}

func (r *Renderer) savePipelineCache() {
	if r.opts.PipelineCache == "" || r.deviceDriver == nil || !r.pipelineCache.Initialized() {
		return
	}

	data, _, err := r.deviceDriver.GetPipelineCacheData(r.pipelineCache)
	if err == nil {
		err = writePipelineCacheFile(r.opts.PipelineCache, data)
	}
	if err != nil {
		r.log.WithError(err).WithField("path", r.opts.PipelineCache).Warn("saving pipeline cache")
	}
}
