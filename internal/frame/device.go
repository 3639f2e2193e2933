package frame

import "fmt"

// MaxFramesInFlight is the number of frames the CPU may record ahead of the GPU.
const MaxFramesInFlight = 2

type Status int

const (
	StatusSuccess Status = iota
	StatusSuboptimal
	StatusOutOfDate
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "success"
	case StatusSuboptimal:
		return "suboptimal"
	case StatusOutOfDate:
		return "out of date"
	}
	return fmt.Sprintf("Status(%d)", int(s))
}

type Extent struct {
	Width  int
	Height int
}

func (e Extent) Empty() bool {
	return e.Width <= 0 || e.Height <= 0
}

func (e Extent) String() string {
	return fmt.Sprintf("%dx%d", e.Width, e.Height)
}

// Device is the queue-facing half of the renderer. Slot indices are in
// [0, MaxFramesInFlight). Implementations report the two recoverable
// presentation results through Status with a nil error; any returned error is
// treated as unrecoverable.
type Device interface {
	CreateFrameSlots(count int) error
	DestroyFrameSlots()

	// WaitForFrame blocks until the slot's in-flight fence is signaled.
	WaitForFrame(slot int) error
	ResetFrame(slot int) error

	AcquireNextImage(slot int) (int, Status, error)
	Submit(slot int, imageIndex int) error
	Present(slot int, imageIndex int) (Status, error)

	WaitIdle() error
}

// Swapchain owns the swapchain and everything sized from it: image views,
// render targets, framebuffers, pipeline, per-image buffers and command buffers.
type Swapchain interface {
	CreateSwapchain(extent Extent) error
	// DestroySwapchain must tolerate being called when nothing is live.
	DestroySwapchain()
	ImageCount() int
}
