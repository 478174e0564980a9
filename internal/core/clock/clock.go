package clock

import "time"

// Clock produces per-frame delta time and tracks total elapsed simulation
// time. It is owned by the engine loop and only ever touched from the frame
// goroutine, so it carries no locking.
//
// Deltas are not clamped: a stalled frame yields one large delta and the
// simulation catches up in a single step rather than silently warping time.
type Clock struct {
	now func() time.Time

	lastTick   time.Time
	elapsed    float64
	frameCount uint64

	paused     bool
	pauseStart time.Time
}

// New creates a clock driven by the real monotonic wall clock.
func New() *Clock {
	return NewWithSource(time.Now)
}

// NewWithSource creates a clock with an injectable time source. Tests use a
// fake source to produce exact deltas.
func NewWithSource(now func() time.Time) *Clock {
	return &Clock{
		now:      now,
		lastTick: now(),
	}
}

// Tick advances the clock one frame and returns the delta since the previous
// tick, in seconds. While paused it returns 0 and advances nothing.
func (c *Clock) Tick() float64 {
	if c.paused {
		return 0
	}
	now := c.now()
	dt := now.Sub(c.lastTick).Seconds()
	c.lastTick = now
	c.elapsed += dt
	c.frameCount++
	return dt
}

// Pause stops delta accumulation. Elapsed time and frame count are kept.
func (c *Clock) Pause() {
	if c.paused {
		return
	}
	c.paused = true
	c.pauseStart = c.now()
}

// Resume continues delta accumulation. The time spent paused is excluded
// from the next tick's delta.
func (c *Clock) Resume() {
	if !c.paused {
		return
	}
	c.paused = false
	c.lastTick = c.lastTick.Add(c.now().Sub(c.pauseStart))
	c.pauseStart = time.Time{}
}

// Paused reports whether the clock is currently paused.
func (c *Clock) Paused() bool { return c.paused }

// Elapsed returns total accumulated simulation time in seconds.
func (c *Clock) Elapsed() float64 { return c.elapsed }

// FrameCount returns the number of ticks taken so far.
func (c *Clock) FrameCount() uint64 { return c.frameCount }
