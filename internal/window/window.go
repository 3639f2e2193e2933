// Package window opens the SDL2 window the renderer presents to and pumps
// its events once per frame.
package window

import (
	"unsafe"

	"github.com/cockroachdb/errors"
	"github.com/sirupsen/logrus"
	"github.com/veandco/go-sdl2/sdl"
	"github.com/vkngwrapper/core/v3/core1_0"
	"github.com/vkngwrapper/extensions/v3/khr_surface"
	vkng_sdl2 "github.com/vkngwrapper/integrations/sdl2/v3"

	"github.com/vkngwrapper/hellotriangle/internal/frame"
)

// minimizedWait bounds how long PollEvents blocks while the window is
// minimized and nothing is being drawn.
const minimizedWait = 100

type Window struct {
	window    *sdl.Window
	log       logrus.FieldLogger
	minimized bool
}

// Open initializes SDL video and creates a resizable Vulkan window. It must be
// called from the thread that will pump events.
func Open(title string, width, height int, log logrus.FieldLogger) (*Window, error) {
	if err := sdl.Init(sdl.INIT_VIDEO); err != nil {
		return nil, errors.Wrap(err, "init sdl")
	}

	window, err := sdl.CreateWindow(title, sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, int32(width), int32(height), sdl.WINDOW_SHOWN|sdl.WINDOW_VULKAN|sdl.WINDOW_RESIZABLE)
	if err != nil {
		sdl.Quit()
		return nil, errors.Wrap(err, "create window")
	}

	return &Window{window: window, log: log}, nil
}

func (w *Window) ProcAddr() unsafe.Pointer {
	return sdl.VulkanGetVkGetInstanceProcAddr()
}

func (w *Window) InstanceExtensions() []string {
	return w.window.VulkanGetInstanceExtensions()
}

func (w *Window) CreateSurface(instance core1_0.Instance, surfaceExtension khr_surface.ExtensionDriver) (khr_surface.Surface, error) {
	return vkng_sdl2.CreateSurface(instance, surfaceExtension, w.window)
}

// PollEvents drains the SDL event queue. While minimized it first blocks
// briefly for an event so a suspended loop does not spin.
func (w *Window) PollEvents() Events {
	events := Events{Minimized: w.minimized}

	if w.minimized {
		if event := sdl.WaitEventTimeout(minimizedWait); event != nil {
			events.apply(event)
		}
	}

	for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
		events.apply(event)
	}

	if events.Minimized != w.minimized {
		w.log.WithField("minimized", events.Minimized).Debug("window state changed")
	}
	w.minimized = events.Minimized

	return events
}

// DrawableSize is the size of the window in pixels. A minimized window
// reports zero area.
func (w *Window) DrawableSize() frame.Extent {
	if w.minimized {
		return frame.Extent{}
	}

	width, height := w.window.VulkanGetDrawableSize()
	return frame.Extent{Width: int(width), Height: int(height)}
}

func (w *Window) Close() {
	if w.window != nil {
		_ = w.window.Destroy()
		w.window = nil
	}
	sdl.Quit()
}
