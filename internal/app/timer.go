package app

import "time"

// frameTimer counts ticks over a window of monotonic time.
type frameTimer struct {
	start time.Duration
	ticks int
}

func newFrameTimer(now time.Duration) *frameTimer {
	return &frameTimer{start: now}
}

func (t *frameTimer) tick() {
	t.ticks++
}

func (t *frameTimer) elapsed(now time.Duration) time.Duration {
	return now - t.start
}

// flush returns the ticks and time since the last flush and starts a new
// window at now.
func (t *frameTimer) flush(now time.Duration) (int, time.Duration) {
	ticks, elapsed := t.ticks, t.elapsed(now)
	t.start = now
	t.ticks = 0
	return ticks, elapsed
}
