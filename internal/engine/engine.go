package engine

import (
	"context"
	"fmt"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/emberengine/ember/internal/config"
	"github.com/emberengine/ember/internal/core/clock"
	"github.com/emberengine/ember/internal/core/entity"
	"github.com/emberengine/ember/internal/core/event"
	"github.com/emberengine/ember/internal/core/sched"
	"github.com/emberengine/ember/internal/input"
	"github.com/emberengine/ember/internal/particle"
	"github.com/emberengine/ember/internal/physics"
	"github.com/emberengine/ember/internal/render"
	"github.com/emberengine/ember/internal/scripting"
	"github.com/emberengine/ember/internal/tween"
)

// Engine is the explicitly constructed context object that owns every
// subsystem. Nothing in the core reaches for a global: subsystems hold only
// the references they were built with, and the engine is the sole owner of
// the frame loop.
type Engine struct {
	cfg *config.Config
	log *zap.Logger

	Clock     *clock.Clock
	Bus       *event.Bus
	Entities  *entity.Registry
	Scheduler *sched.Scheduler
	Physics   *physics.Engine
	Particles *particle.Engine
	Tweens    *tween.Engine
	Scripts   *scripting.Engine // nil when scripting is disabled
	Renderer  render.Renderer
	Input     *input.State

	stop chan struct{}
}

// New wires all subsystems from the config. A nil renderer runs headless.
func New(cfg *config.Config, renderer render.Renderer, log *zap.Logger) (*Engine, error) {
	if renderer == nil {
		renderer = render.Noop{}
	}

	bus := event.NewBus()
	reg := entity.NewRegistry(bus, renderer, log)

	phys := physics.NewEngine(reg, bus, log)
	phys.SetGravity(cfg.Physics.Gravity)
	phys.SetGroundPlane(cfg.Physics.GroundPlane)

	parts := particle.NewEngine(log)
	tweens := tween.NewEngine(log)

	var scripts *scripting.Engine
	if cfg.Scripting.Dir != "" {
		var err error
		scripts, err = scripting.NewEngine(cfg.Scripting.Dir, log)
		if err != nil {
			return nil, fmt.Errorf("scripting: %w", err)
		}
	}

	e := &Engine{
		cfg:       cfg,
		log:       log,
		Clock:     clock.New(),
		Bus:       bus,
		Entities:  reg,
		Physics:   phys,
		Particles: parts,
		Tweens:    tweens,
		Scripts:   scripts,
		Renderer:  renderer,
		Input:     input.NewState(),
		stop:      make(chan struct{}),
	}
	e.Scheduler = sched.NewScheduler(reg, phys, parts, tweens, log)
	e.Scheduler.OnRender(func() {
		renderer.Present(e.snapshotFrame())
	})
	return e, nil
}

// AddEmitter registers an emitter and wires it to a renderer draw-list
// handle. The global per-emitter cap from config applies when the config
// leaves MaxParticles zero.
func (e *Engine) AddEmitter(cfg particle.Config) *particle.Emitter {
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = e.cfg.Particles.MaxPerEmitter
	}
	em := e.Particles.AddEmitter(cfg)
	em.SetBatch(e.Renderer.CreateBatch())
	return em
}

// Run drives frames at the configured rate until the context is cancelled or
// Stop is called. It publishes "start" on entry and "stop" on exit.
func (e *Engine) Run(ctx context.Context) error {
	e.Bus.Publish(event.Start, nil)
	e.log.Info("engine started",
		zap.String("name", e.cfg.Engine.Name),
		zap.Duration("frame_rate", e.cfg.Engine.FrameRate))

	ticker := time.NewTicker(e.cfg.Engine.FrameRate)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			e.shutdown()
			return ctx.Err()
		case <-e.stop:
			e.shutdown()
			return nil
		case <-ticker.C:
			e.RunFrame()
		}
	}
}

// Stop ends the Run loop after the current frame.
func (e *Engine) Stop() {
	select {
	case <-e.stop:
	default:
		close(e.stop)
	}
}

func (e *Engine) shutdown() {
	e.Bus.Publish(event.Stop, nil)
	if e.Scripts != nil {
		e.Scripts.Close()
	}
	e.log.Info("engine stopped",
		zap.Uint64("frames", e.Clock.FrameCount()),
		zap.Float64("elapsed", e.Clock.Elapsed()))
}

// Pause freezes the clock; frames keep running but advance nothing, so
// client events are still drained and Resume can arrive over the wire.
func (e *Engine) Pause() {
	if e.Clock.Paused() {
		return
	}
	e.Clock.Pause()
	e.Bus.Publish(event.Pause, nil)
}

// Resume unfreezes the clock. The paused span is excluded from the next
// frame's delta.
func (e *Engine) Resume() {
	if !e.Clock.Paused() {
		return
	}
	e.Clock.Resume()
	e.Bus.Publish(event.Resume, nil)
}

// RunFrame executes exactly one frame: drain renderer client events, latch
// input, tick the clock, and hand the delta to the scheduler. While paused
// only the draining and latching happen.
func (e *Engine) RunFrame() {
	e.pumpClientEvents()
	e.Input.BeginFrame()
	if e.Clock.Paused() {
		return
	}
	dt := e.Clock.Tick()
	e.Scheduler.RunFrame(dt)
}

// pumpClientEvents applies renderer client messages on the frame goroutine:
// resizes are republished on the bus, input feeds the input state.
func (e *Engine) pumpClientEvents() {
	for _, ev := range e.Renderer.Poll() {
		switch {
		case ev.Resize != nil:
			e.Bus.Publish(event.Resize, &event.ResizePayload{
				Width:  ev.Resize.Width,
				Height: ev.Resize.Height,
			})
		case ev.Key != nil:
			e.Input.SetKey(ev.Key.Key, ev.Key.Down)
		case ev.Pointer != nil:
			e.Input.SetPointer(mgl64.Vec2{ev.Pointer.X, ev.Pointer.Y})
		}
	}
}

func (e *Engine) snapshotFrame() *render.Frame {
	f := &render.Frame{
		Number:  e.Clock.FrameCount(),
		Elapsed: e.Clock.Elapsed(),
	}
	for _, ent := range e.Entities.All() {
		if !ent.Alive() || !ent.Visible() {
			continue
		}
		f.Entities = append(f.Entities, render.EntityState{
			Name:     ent.Name(),
			Position: ent.Position(),
			Rotation: ent.Rotation(),
			Scale:    ent.Scale(),
		})
	}
	return f
}
