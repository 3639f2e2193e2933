package window

import "github.com/veandco/go-sdl2/sdl"

// Events summarizes everything the window reported during one tick of the
// host loop.
type Events struct {
	Quit    bool
	Resized bool

	// Minimized is the window state after the tick, carried over from the
	// previous tick when nothing changed it.
	Minimized bool
}

func (e *Events) apply(event sdl.Event) {
	switch ev := event.(type) {
	case *sdl.QuitEvent:
		e.Quit = true
	case *sdl.WindowEvent:
		switch ev.Event {
		case sdl.WINDOWEVENT_CLOSE:
			e.Quit = true
		case sdl.WINDOWEVENT_MINIMIZED:
			e.Minimized = true
		case sdl.WINDOWEVENT_RESTORED, sdl.WINDOWEVENT_MAXIMIZED:
			e.Minimized = false
			e.Resized = true
		case sdl.WINDOWEVENT_RESIZED, sdl.WINDOWEVENT_SIZE_CHANGED:
			e.Resized = true
		}
	}
}
