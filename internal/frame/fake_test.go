package frame

import (
	"fmt"
)

type fakeDevice struct {
	swapchain *fakeSwapchain

	slots   int
	fences  []bool
	pending []bool

	outstanding    int
	maxOutstanding int
	violations     []string

	nextImage      int
	imageSequence  []int
	acquireStatus  []Status
	presentStatus  []Status
	failOn         map[string]error
	calls          []string
	slotsDestroyed int
}

func newFakeDevice(swapchain *fakeSwapchain) *fakeDevice {
	return &fakeDevice{
		swapchain: swapchain,
		failOn:    map[string]error{},
	}
}

func (d *fakeDevice) record(format string, args ...any) error {
	call := fmt.Sprintf(format, args...)
	d.calls = append(d.calls, call)
	for prefix, err := range d.failOn {
		if len(call) >= len(prefix) && call[:len(prefix)] == prefix {
			return err
		}
	}
	return nil
}

func (d *fakeDevice) CreateFrameSlots(count int) error {
	if err := d.record("create slots %d", count); err != nil {
		return err
	}
	d.slots = count
	d.fences = make([]bool, count)
	d.pending = make([]bool, count)
	for i := range d.fences {
		d.fences[i] = true
	}
	return nil
}

func (d *fakeDevice) DestroyFrameSlots() {
	d.record("destroy slots")
	if d.outstanding > 0 {
		d.violations = append(d.violations, "frame slots destroyed with work in flight")
	}
	d.slotsDestroyed++
	d.fences = nil
	d.pending = nil
}

func (d *fakeDevice) complete(slot int) {
	if d.pending[slot] {
		d.pending[slot] = false
		d.outstanding--
	}
	d.fences[slot] = true
}

func (d *fakeDevice) WaitForFrame(slot int) error {
	if err := d.record("wait %d", slot); err != nil {
		return err
	}
	if d.pending[slot] {
		d.complete(slot)
	}
	return nil
}

func (d *fakeDevice) ResetFrame(slot int) error {
	if err := d.record("reset %d", slot); err != nil {
		return err
	}
	if !d.fences[slot] {
		d.violations = append(d.violations, fmt.Sprintf("reset of unsignaled fence %d", slot))
	}
	d.fences[slot] = false
	return nil
}

func (d *fakeDevice) AcquireNextImage(slot int) (int, Status, error) {
	if err := d.record("acquire %d", slot); err != nil {
		return 0, StatusSuccess, err
	}

	status := StatusSuccess
	if len(d.acquireStatus) > 0 {
		status = d.acquireStatus[0]
		d.acquireStatus = d.acquireStatus[1:]
	}
	if status == StatusOutOfDate {
		return 0, status, nil
	}

	if len(d.imageSequence) > 0 {
		image := d.imageSequence[0]
		d.imageSequence = d.imageSequence[1:]
		return image, status, nil
	}

	image := d.nextImage % d.swapchain.ImageCount()
	d.nextImage++
	return image, status, nil
}

func (d *fakeDevice) Submit(slot int, imageIndex int) error {
	if err := d.record("submit %d %d", slot, imageIndex); err != nil {
		return err
	}
	if d.fences[slot] {
		d.violations = append(d.violations, fmt.Sprintf("submit on signaled fence %d", slot))
	}
	if d.pending[slot] {
		d.violations = append(d.violations, fmt.Sprintf("slot %d reused before its work completed", slot))
	}
	if !d.swapchain.live {
		d.violations = append(d.violations, "submit without a live swapchain")
	}
	d.pending[slot] = true
	d.outstanding++
	if d.outstanding > d.maxOutstanding {
		d.maxOutstanding = d.outstanding
	}
	return nil
}

func (d *fakeDevice) Present(slot int, imageIndex int) (Status, error) {
	if err := d.record("present %d %d", slot, imageIndex); err != nil {
		return StatusSuccess, err
	}
	if len(d.presentStatus) > 0 {
		status := d.presentStatus[0]
		d.presentStatus = d.presentStatus[1:]
		return status, nil
	}
	return StatusSuccess, nil
}

func (d *fakeDevice) WaitIdle() error {
	if err := d.record("wait idle"); err != nil {
		return err
	}
	for slot := range d.pending {
		d.complete(slot)
	}
	return nil
}

// fakeSwapchain hands out integer handles for its resources and remembers
// which ones were freed, so a second free of the same handle is detectable.
type fakeSwapchain struct {
	images int

	live      bool
	handles   []int
	nextID    int
	freed     map[int]bool
	freeOrder []int

	creates     int
	destroys    int
	doubleFrees int
	extents     []Extent
	createErr   error
}

func newFakeSwapchain(images int) *fakeSwapchain {
	return &fakeSwapchain{
		images: images,
		freed:  map[int]bool{},
	}
}

func (s *fakeSwapchain) CreateSwapchain(extent Extent) error {
	s.creates++
	s.extents = append(s.extents, extent)
	if s.createErr != nil {
		return s.createErr
	}

	// swapchain, views, render pass, pipeline, framebuffers, command buffers
	for i := 0; i < 6; i++ {
		s.nextID++
		s.handles = append(s.handles, s.nextID)
	}
	s.live = true
	return nil
}

func (s *fakeSwapchain) DestroySwapchain() {
	s.destroys++
	for i := len(s.handles) - 1; i >= 0; i-- {
		handle := s.handles[i]
		if s.freed[handle] {
			s.doubleFrees++
		}
		s.freed[handle] = true
		s.freeOrder = append(s.freeOrder, handle)
	}
	s.handles = nil
	s.live = false
}

func (s *fakeSwapchain) ImageCount() int {
	if !s.live {
		return 0
	}
	return s.images
}
