// Package app runs the single-threaded host loop that pumps window events and
// hands each tick to the frame presenter.
package app

import (
	"context"
	"time"

	"github.com/cockroachdb/errors"
	"github.com/loov/hrtime"
	"github.com/sirupsen/logrus"

	"github.com/vkngwrapper/hellotriangle/internal/frame"
	"github.com/vkngwrapper/hellotriangle/internal/window"
)

type Window interface {
	PollEvents() window.Events
	DrawableSize() frame.Extent
}

type Presenter interface {
	PresentFrame(windowSize frame.Extent, resized bool) error
	Stats() frame.Stats
	Close() error
}

type Loop struct {
	window        Window
	presenter     Presenter
	log           logrus.FieldLogger
	statsInterval time.Duration

	now func() time.Duration
}

// NewLoop ties a window to a presenter. A zero statsInterval disables the
// periodic frame rate log.
func NewLoop(w Window, p Presenter, statsInterval time.Duration, log logrus.FieldLogger) *Loop {
	return &Loop{
		window:        w,
		presenter:     p,
		log:           log,
		statsInterval: statsInterval,
		now:           hrtime.Now,
	}
}

// Run ticks until the window asks to quit, ctx is done, or presenting fails.
// The presenter is closed before Run returns, which waits for the device to
// go idle.
func (l *Loop) Run(ctx context.Context) (err error) {
	defer func() {
		closeErr := l.presenter.Close()
		if closeErr != nil {
			err = errors.CombineErrors(err, errors.Wrap(closeErr, "close presenter"))
		}
	}()

	timer := newFrameTimer(l.now())

	for {
		select {
		case <-ctx.Done():
			l.log.Info("context done, stopping")
			return nil
		default:
		}

		events := l.window.PollEvents()
		if events.Quit {
			l.log.Info("quit requested")
			return nil
		}

		if err := l.presenter.PresentFrame(l.window.DrawableSize(), events.Resized); err != nil {
			return err
		}

		now := l.now()
		timer.tick()
		if l.statsInterval > 0 && timer.elapsed(now) >= l.statsInterval {
			l.logStats(timer.flush(now))
		}
	}
}

func (l *Loop) logStats(ticks int, elapsed time.Duration) {
	stats := l.presenter.Stats()

	fps := 0.0
	if elapsed > 0 {
		fps = float64(ticks) / elapsed.Seconds()
	}

	l.log.WithFields(logrus.Fields{
		"fps":       fps,
		"presented": stats.FramesPresented,
		"skipped":   stats.AcquiresSkipped,
		"rebuilds":  stats.Rebuilds,
		"suspended": stats.Suspended,
	}).Info("frame stats")
}
