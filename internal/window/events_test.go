package window

import (
	"testing"

	qt "github.com/frankban/quicktest"
	"github.com/veandco/go-sdl2/sdl"
)

func TestEventsApply(t *testing.T) {
	tests := []struct {
		name   string
		start  Events
		events []sdl.Event
		want   Events
	}{
		{
			name: "empty tick",
			want: Events{},
		},
		{
			name:   "quit",
			events: []sdl.Event{&sdl.QuitEvent{}},
			want:   Events{Quit: true},
		},
		{
			name:   "window close",
			events: []sdl.Event{&sdl.WindowEvent{Event: sdl.WINDOWEVENT_CLOSE}},
			want:   Events{Quit: true},
		},
		{
			name:   "resized",
			events: []sdl.Event{&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESIZED, Data1: 640, Data2: 480}},
			want:   Events{Resized: true},
		},
		{
			name:   "size changed",
			events: []sdl.Event{&sdl.WindowEvent{Event: sdl.WINDOWEVENT_SIZE_CHANGED}},
			want:   Events{Resized: true},
		},
		{
			name:   "minimized",
			events: []sdl.Event{&sdl.WindowEvent{Event: sdl.WINDOWEVENT_MINIMIZED}},
			want:   Events{Minimized: true},
		},
		{
			name:  "stays minimized",
			start: Events{Minimized: true},
			want:  Events{Minimized: true},
		},
		{
			name:   "restored",
			start:  Events{Minimized: true},
			events: []sdl.Event{&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESTORED}},
			want:   Events{Resized: true},
		},
		{
			name: "minimize then restore in one tick",
			events: []sdl.Event{
				&sdl.WindowEvent{Event: sdl.WINDOWEVENT_MINIMIZED},
				&sdl.WindowEvent{Event: sdl.WINDOWEVENT_RESTORED},
			},
			want: Events{Resized: true},
		},
		{
			name:   "unrelated events",
			events: []sdl.Event{&sdl.KeyboardEvent{}, &sdl.WindowEvent{Event: sdl.WINDOWEVENT_MOVED}},
			want:   Events{},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			c := qt.New(t)

			events := test.start
			for _, event := range test.events {
				events.apply(event)
			}
			c.Assert(events, qt.Equals, test.want)
		})
	}
}
