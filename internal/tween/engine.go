package tween

import (
	"go.uber.org/zap"
)

// Target is the mutable property bag a tween writes into.
type Target map[string]float64

// Options configures a tween created by To.
type Options struct {
	Delay      float64
	Ease       Ease // nil means Linear
	OnUpdate   func(easedT float64)
	OnComplete func()
}

// Tween interpolates a set of properties on a target from their values at
// creation time to requested end values. Start values are snapshotted once
// and never re-read: if something else mutates the same properties
// mid-flight, the tween overwrites it on its next step.
type Tween struct {
	target Target
	start  map[string]float64
	end    map[string]float64

	duration float64
	elapsed  float64
	delay    float64

	ease       Ease
	onUpdate   func(float64)
	onComplete func()

	active bool
}

// Active reports whether the tween is still running.
func (t *Tween) Active() bool { return t.active }

// Cancel deactivates the tween without firing OnComplete.
func (t *Tween) Cancel() { t.active = false }

// Engine owns all active tweens and advances them once per frame.
type Engine struct {
	log    *zap.Logger
	tweens []*Tween
}

func NewEngine(log *zap.Logger) *Engine {
	return &Engine{log: log}
}

// To starts a tween of the given properties on target over duration seconds.
// The current target values are captured as start values immediately.
func (e *Engine) To(target Target, props map[string]float64, duration float64, opts Options) *Tween {
	start := make(map[string]float64, len(props))
	end := make(map[string]float64, len(props))
	for k, v := range props {
		start[k] = target[k]
		end[k] = v
	}
	ease := opts.Ease
	if ease == nil {
		ease = Linear
	}
	tw := &Tween{
		target:     target,
		start:      start,
		end:        end,
		duration:   duration,
		delay:      opts.Delay,
		ease:       ease,
		onUpdate:   opts.OnUpdate,
		onComplete: opts.OnComplete,
		active:     true,
	}
	e.tweens = append(e.tweens, tw)
	e.log.Debug("tween started",
		zap.Float64("duration", duration),
		zap.Int("props", len(props)))
	return tw
}

// Count returns the number of active tweens.
func (e *Engine) Count() int {
	n := 0
	for _, tw := range e.tweens {
		if tw.active {
			n++
		}
	}
	return n
}

// Step advances every active tween by dt seconds. Completed tweens fire
// OnComplete once and are dropped; chaining is the caller's job via the
// completion callback.
func (e *Engine) Step(dt float64) {
	// Snapshot: callbacks may start or cancel tweens mid-step.
	tweens := make([]*Tween, len(e.tweens))
	copy(tweens, e.tweens)
	for _, tw := range tweens {
		if !tw.active {
			continue
		}
		e.stepTween(tw, dt)
	}

	// Compact out finished tweens.
	live := e.tweens[:0]
	for _, tw := range e.tweens {
		if tw.active {
			live = append(live, tw)
		}
	}
	e.tweens = live
}

func (e *Engine) stepTween(tw *Tween, dt float64) {
	if tw.delay > 0 {
		tw.delay -= dt
		return
	}

	tw.elapsed += dt
	t := 1.0
	if tw.duration > 0 {
		t = tw.elapsed / tw.duration
		if t > 1 {
			t = 1
		}
	}
	easedT := tw.ease(t)

	for k, end := range tw.end {
		start := tw.start[k]
		tw.target[k] = start + (end-start)*easedT
	}
	if tw.onUpdate != nil {
		tw.onUpdate(easedT)
	}

	if t >= 1 {
		tw.active = false
		if tw.onComplete != nil {
			tw.onComplete()
		}
	}
}
