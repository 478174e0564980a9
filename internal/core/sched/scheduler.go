package sched

import (
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/emberengine/ember/internal/core/entity"
)

// ErrDuplicateSystem is returned by AddSystem when the name is already taken.
var ErrDuplicateSystem = errors.New("duplicate system name")

// HookFunc is a callback registered at one of the four fixed frame points.
type HookFunc func(dt float64)

// Stepper is a subsystem advanced once per frame by the scheduler. The
// physics, particle, and tween engines all satisfy it.
type Stepper interface {
	Step(dt float64)
}

// Scheduler owns the named-system table and the four lifecycle hook lists,
// and drives one frame in a fixed order:
//
//	pre-update hooks, physics, particles, tweens, enabled systems in
//	insertion order, enabled entities' scripts in registry order,
//	post-update hooks, pre-render hooks, the render delegate, post-render
//	hooks.
//
// Systems and scripts run without isolation: a panic inside one aborts the
// remainder of the frame.
type Scheduler struct {
	log      *zap.Logger
	entities *entity.Registry

	physics   Stepper
	particles Stepper
	tweens    Stepper

	systems map[string]*namedSystem
	order   []*namedSystem
	render  func()

	preUpdate  []HookFunc
	postUpdate []HookFunc
	preRender  []HookFunc
	postRender []HookFunc
}

func NewScheduler(entities *entity.Registry, physics, particles, tweens Stepper, log *zap.Logger) *Scheduler {
	return &Scheduler{
		log:       log,
		entities:  entities,
		physics:   physics,
		particles: particles,
		tweens:    tweens,
		systems:   make(map[string]*namedSystem),
	}
}

// AddSystem registers a named system and runs its Init hook synchronously.
// Fails with ErrDuplicateSystem when the name is taken.
func (s *Scheduler) AddSystem(name string, sys System) error {
	if _, exists := s.systems[name]; exists {
		return fmt.Errorf("add system %q: %w", name, ErrDuplicateSystem)
	}
	ns := &namedSystem{name: name, sys: sys, enabled: true}
	s.systems[name] = ns
	s.order = append(s.order, ns)
	if init, ok := sys.(Initializer); ok {
		init.Init()
	}
	s.log.Debug("system added", zap.String("system", name))
	return nil
}

// RemoveSystem runs the system's Destroy hook if present, then deletes it.
// Removing an absent name is a no-op.
func (s *Scheduler) RemoveSystem(name string) {
	ns, ok := s.systems[name]
	if !ok {
		return
	}
	if d, ok := ns.sys.(Destroyer); ok {
		d.Destroy()
	}
	delete(s.systems, name)
	for i, other := range s.order {
		if other == ns {
			s.order = append(s.order[:i:i], s.order[i+1:]...)
			break
		}
	}
	s.log.Debug("system removed", zap.String("system", name))
}

// Enable marks a system runnable again. Returns false for an absent name.
func (s *Scheduler) Enable(name string) bool { return s.setEnabled(name, true) }

// Disable skips a system's update without removing it.
func (s *Scheduler) Disable(name string) bool { return s.setEnabled(name, false) }

func (s *Scheduler) setEnabled(name string, v bool) bool {
	ns, ok := s.systems[name]
	if !ok {
		return false
	}
	ns.enabled = v
	return true
}

// System looks up a registered system by name.
func (s *Scheduler) System(name string) (System, bool) {
	ns, ok := s.systems[name]
	if !ok {
		return nil, false
	}
	return ns.sys, true
}

// OnPreUpdate registers a hook run before the simulation steps.
func (s *Scheduler) OnPreUpdate(fn HookFunc) { s.preUpdate = append(s.preUpdate, fn) }

// OnPostUpdate registers a hook run after systems and scripts.
func (s *Scheduler) OnPostUpdate(fn HookFunc) { s.postUpdate = append(s.postUpdate, fn) }

// OnPreRender registers a hook run just before the render delegate.
func (s *Scheduler) OnPreRender(fn HookFunc) { s.preRender = append(s.preRender, fn) }

// OnPostRender registers a hook run after the render delegate.
func (s *Scheduler) OnPostRender(fn HookFunc) { s.postRender = append(s.postRender, fn) }

// OnRender sets the external render delegate invoked between the pre-render
// and post-render hooks. Nil is allowed for headless runs.
func (s *Scheduler) OnRender(fn func()) { s.render = fn }

// RunFrame advances the simulation by dt seconds in the fixed frame order.
func (s *Scheduler) RunFrame(dt float64) {
	s.runHooks(s.preUpdate, dt)

	s.physics.Step(dt)
	s.particles.Step(dt)
	s.tweens.Step(dt)

	s.updateSystems(dt)
	s.updateScripts(dt)

	s.runHooks(s.postUpdate, dt)
	s.runHooks(s.preRender, dt)
	if s.render != nil {
		s.render()
	}
	s.runHooks(s.postRender, dt)
}

func (s *Scheduler) runHooks(hooks []HookFunc, dt float64) {
	for _, fn := range hooks {
		fn(dt)
	}
}

func (s *Scheduler) updateSystems(dt float64) {
	// Snapshot so a system may add or remove systems mid-frame.
	snapshot := make([]*namedSystem, len(s.order))
	copy(snapshot, s.order)
	for _, ns := range snapshot {
		if !ns.enabled {
			continue
		}
		if _, still := s.systems[ns.name]; !still {
			continue
		}
		ns.sys.Update(dt)
	}
}

func (s *Scheduler) updateScripts(dt float64) {
	for _, e := range s.entities.All() {
		if !e.Alive() || !e.Enabled() {
			continue
		}
		for _, script := range e.Scripts() {
			if !e.Alive() {
				break
			}
			script.Update(dt, e)
		}
	}
}
