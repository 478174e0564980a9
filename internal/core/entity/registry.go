package entity

import (
	"errors"
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/emberengine/ember/internal/core/event"
)

// ErrDuplicateEntity is returned by Create when the name is already taken.
var ErrDuplicateEntity = errors.New("duplicate entity name")

// RenderTarget receives attach/detach notifications so the external renderer
// can track which entities exist. A nil target is allowed for headless runs.
type RenderTarget interface {
	Attach(e *Entity)
	Detach(e *Entity)
}

// Options configures a new entity. The zero value yields an enabled, visible
// entity at the origin with unit scale and a local transform.
type Options struct {
	Position mgl64.Vec3
	Rotation mgl64.Vec3
	Scale    mgl64.Vec3 // zero means unit scale
	Hidden   bool
	Disabled bool
	Tags     []string

	// Node, when set, is an external renderable transform the entity
	// delegates its position/rotation/scale to instead of owning the fields.
	Node Transform
}

// Registry owns all live entities keyed by unique name. Iteration order is
// insertion order, so per-frame visits are deterministic.
type Registry struct {
	log      *zap.Logger
	bus      *event.Bus
	renderer RenderTarget

	byName map[string]*Entity
	order  []*Entity
}

func NewRegistry(bus *event.Bus, renderer RenderTarget, log *zap.Logger) *Registry {
	return &Registry{
		log:      log,
		bus:      bus,
		renderer: renderer,
		byName:   make(map[string]*Entity),
	}
}

// Create registers a new entity, attaches it to the render target, and
// publishes entity:create. Fails with ErrDuplicateEntity when the name is
// already registered.
func (r *Registry) Create(name string, opts Options) (*Entity, error) {
	if _, exists := r.byName[name]; exists {
		return nil, fmt.Errorf("create entity %q: %w", name, ErrDuplicateEntity)
	}

	var t Transform
	if opts.Node != nil {
		t = opts.Node
	} else {
		t = NewLocalTransform()
	}
	e := newEntity(name, t)
	e.SetPosition(opts.Position)
	e.SetRotation(opts.Rotation)
	if opts.Scale != (mgl64.Vec3{}) {
		e.SetScale(opts.Scale)
	}
	e.enabled = !opts.Disabled
	e.visible = !opts.Hidden
	for _, tag := range opts.Tags {
		e.Tag(tag)
	}

	r.byName[name] = e
	r.order = append(r.order, e)
	if r.renderer != nil {
		r.renderer.Attach(e)
	}
	r.log.Debug("entity created", zap.String("name", name))
	r.bus.Publish(event.EntityCreate, e)
	return e, nil
}

// Get looks up an entity by name. Absence is an ordinary result, not an
// error.
func (r *Registry) Get(name string) (*Entity, bool) {
	e, ok := r.byName[name]
	return e, ok
}

// Remove detaches the entity from the render target, deletes it from the
// registry, and publishes entity:remove. Removing an absent name is a no-op.
func (r *Registry) Remove(name string) {
	e, ok := r.byName[name]
	if !ok {
		return
	}
	delete(r.byName, name)
	for i, other := range r.order {
		if other == e {
			r.order = append(r.order[:i:i], r.order[i+1:]...)
			break
		}
	}
	e.destroy()
	if r.renderer != nil {
		r.renderer.Detach(e)
	}
	r.log.Debug("entity removed", zap.String("name", name))
	r.bus.Publish(event.EntityRemove, e)
}

// Find returns all entities matching the predicate, in insertion order.
func (r *Registry) Find(pred func(*Entity) bool) []*Entity {
	var out []*Entity
	for _, e := range r.order {
		if pred(e) {
			out = append(out, e)
		}
	}
	return out
}

// FindByTag is sugar over Find.
func (r *Registry) FindByTag(tag string) []*Entity {
	return r.Find(func(e *Entity) bool { return e.HasTag(tag) })
}

// All returns a snapshot of every live entity in insertion order. Callers
// iterate the snapshot and check Alive, so removal mid-iteration is safe.
func (r *Registry) All() []*Entity {
	out := make([]*Entity, len(r.order))
	copy(out, r.order)
	return out
}

// Count returns the number of live entities.
func (r *Registry) Count() int { return len(r.byName) }
