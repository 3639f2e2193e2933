package frame

import (
	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
)

// Presenter drives the acquire/submit/present cycle for a double-buffered
// swapchain and rebuilds the swapchain when the surface goes stale. It is not
// safe for concurrent use; the host loop calls it once per tick.
type Presenter struct {
	device    Device
	swapchain Swapchain
	log       logrus.FieldLogger

	currentFrame   int
	imagesInFlight []int

	extent        Extent
	resizePending bool
	suspended     bool
	closed        bool

	stats Stats
}

type Stats struct {
	FramesPresented int
	AcquiresSkipped int
	Rebuilds        int
	CurrentFrame    int
	Suspended       bool
}

// NewPresenter creates the frame slots and the initial swapchain. If extent is
// empty the presenter starts suspended and builds the swapchain on the first
// non-empty frame.
func NewPresenter(device Device, swapchain Swapchain, extent Extent, log logrus.FieldLogger) (*Presenter, error) {
	if log == nil {
		log = logrus.StandardLogger()
	}

	p := &Presenter{
		device:    device,
		swapchain: swapchain,
		log:       log,
		extent:    extent,
	}

	err := device.CreateFrameSlots(MaxFramesInFlight)
	if err != nil {
		device.DestroyFrameSlots()
		return nil, fatal(err, "create frame slots")
	}

	if extent.Empty() {
		p.suspended = true
		return p, nil
	}

	err = swapchain.CreateSwapchain(extent)
	if err != nil {
		swapchain.DestroySwapchain()
		device.DestroyFrameSlots()
		return nil, fatal(err, "create swapchain")
	}
	p.resetImagesInFlight()

	return p, nil
}

// PresentFrame renders one frame for a window of the given drawable size.
// resized reports that the host saw a resize event since the previous call.
func (p *Presenter) PresentFrame(windowSize Extent, resized bool) error {
	if p.closed {
		return fatal(ErrClosed, "present frame")
	}

	if resized {
		p.resizePending = true
	}

	if windowSize.Empty() {
		p.suspend(windowSize)
		return nil
	}

	if p.suspended {
		p.log.WithField("extent", windowSize).Debug("resuming presentation")
		err := p.rebuild(windowSize, "resume")
		if err != nil {
			return err
		}
	}

	frame := p.currentFrame

	err := p.device.WaitForFrame(frame)
	if err != nil {
		return fatal(err, "wait for frame fence")
	}

	imageIndex, status, err := p.device.AcquireNextImage(frame)
	if err != nil {
		return fatal(err, "acquire next image")
	}
	if status == StatusOutOfDate {
		p.stats.AcquiresSkipped++
		return p.rebuild(windowSize, "acquire out of date")
	}

	if imageIndex < 0 || imageIndex >= len(p.imagesInFlight) {
		return fatal(errors.Newf("image index %d outside swapchain of %d images", imageIndex, len(p.imagesInFlight)), "acquire next image")
	}

	// The image may still be in use by the other slot if the swapchain hands
	// out images out of order.
	owner := p.imagesInFlight[imageIndex]
	if owner >= 0 && owner != frame {
		err = p.device.WaitForFrame(owner)
		if err != nil {
			return fatal(err, "wait for image fence")
		}
	}
	p.imagesInFlight[imageIndex] = frame

	err = p.device.ResetFrame(frame)
	if err != nil {
		return fatal(err, "reset frame fence")
	}

	err = p.device.Submit(frame, imageIndex)
	if err != nil {
		return fatal(err, "submit")
	}

	status, err = p.device.Present(frame, imageIndex)
	if err != nil {
		return fatal(err, "present")
	}

	p.stats.FramesPresented++
	p.currentFrame = (p.currentFrame + 1) % MaxFramesInFlight

	switch {
	case status == StatusOutOfDate || status == StatusSuboptimal:
		return p.rebuild(windowSize, "present "+status.String())
	case p.resizePending:
		return p.rebuild(windowSize, "window resized")
	}

	return nil
}

// Rebuild tears down and recreates every swapchain-dependent resource at the
// given size.
func (p *Presenter) Rebuild(windowSize Extent) error {
	if p.closed {
		return fatal(ErrClosed, "rebuild swapchain")
	}
	return p.rebuild(windowSize, "requested")
}

func (p *Presenter) rebuild(windowSize Extent, reason string) error {
	if windowSize.Empty() {
		p.suspend(windowSize)
		return nil
	}

	p.log.WithFields(logrus.Fields{
		"extent": windowSize,
		"reason": reason,
	}).Info("rebuilding swapchain")

	err := p.device.WaitIdle()
	if err != nil {
		return fatal(err, "wait for device idle")
	}

	p.swapchain.DestroySwapchain()

	err = p.swapchain.CreateSwapchain(windowSize)
	if err != nil {
		return fatal(err, "recreate swapchain")
	}

	p.extent = windowSize
	p.resizePending = false
	p.suspended = false
	p.resetImagesInFlight()
	p.stats.Rebuilds++

	return nil
}

func (p *Presenter) suspend(windowSize Extent) {
	if !p.suspended {
		p.log.WithField("extent", windowSize).Debug("suspending presentation")
	}
	p.suspended = true
}

func (p *Presenter) resetImagesInFlight() {
	count := p.swapchain.ImageCount()
	p.imagesInFlight = make([]int, count)
	for i := range p.imagesInFlight {
		p.imagesInFlight[i] = -1
	}
}

func (p *Presenter) Extent() Extent {
	return p.extent
}

func (p *Presenter) Stats() Stats {
	stats := p.stats
	stats.CurrentFrame = p.currentFrame
	stats.Suspended = p.suspended
	return stats
}

// Close waits for outstanding GPU work and releases the swapchain and frame
// slots. Calling it again does nothing.
func (p *Presenter) Close() error {
	if p.closed {
		return nil
	}
	p.closed = true

	err := p.device.WaitIdle()
	p.swapchain.DestroySwapchain()
	p.device.DestroyFrameSlots()
	if err != nil {
		return fatal(err, "wait for device idle")
	}

	return nil
}
