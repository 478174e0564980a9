package physics

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/emberengine/ember/internal/core/entity"
	"github.com/emberengine/ember/internal/core/event"
)

// DefaultGravity is the vertical acceleration applied to gravity-affected
// bodies, in units per second squared.
const DefaultGravity = -9.8

// Engine integrates dynamic bodies and resolves collisions once per frame.
// Collision detection is brute-force over all pairs; fine for the tens to
// low hundreds of bodies this core targets.
type Engine struct {
	log      *zap.Logger
	bus      *event.Bus
	entities *entity.Registry

	gravity     float64
	groundPlane bool

	bodies   []*Body
	byEntity map[string]*Body
}

func NewEngine(entities *entity.Registry, bus *event.Bus, log *zap.Logger) *Engine {
	e := &Engine{
		log:         log,
		bus:         bus,
		entities:    entities,
		gravity:     DefaultGravity,
		groundPlane: true,
		byEntity:    make(map[string]*Body),
	}
	// Cascade: removing an entity clears any body indexed under it, so a
	// destroyed entity never leaves a dangling body behind.
	bus.Subscribe(event.EntityRemove, func(p any) {
		if ent, ok := p.(*entity.Entity); ok {
			e.RemoveBody(ent.Name())
		}
	})
	return e
}

// SetGravity replaces the global gravity constant.
func (e *Engine) SetGravity(g float64) { e.gravity = g }

// Gravity returns the current gravity constant.
func (e *Engine) Gravity() float64 { return e.gravity }

// SetGroundPlane toggles the y=0 ground-plane collision.
func (e *Engine) SetGroundPlane(enabled bool) { e.groundPlane = enabled }

// AddBody registers a body for the named entity. A second body for the same
// entity replaces the first; duplicate bodies would double-integrate the
// entity's position.
func (e *Engine) AddBody(b *Body) error {
	if b.Entity == "" {
		return fmt.Errorf("add body: empty entity name")
	}
	if !b.Static && b.Mass <= 0 {
		return fmt.Errorf("add body for %q: mass must be > 0", b.Entity)
	}
	if old, exists := e.byEntity[b.Entity]; exists {
		e.log.Warn("replacing existing body", zap.String("entity", b.Entity))
		e.removeFromList(old)
	}
	e.byEntity[b.Entity] = b
	e.bodies = append(e.bodies, b)
	return nil
}

// RemoveBody drops the body registered for the named entity, if any.
func (e *Engine) RemoveBody(entityName string) {
	b, ok := e.byEntity[entityName]
	if !ok {
		return
	}
	delete(e.byEntity, entityName)
	e.removeFromList(b)
}

func (e *Engine) removeFromList(b *Body) {
	for i, other := range e.bodies {
		if other == b {
			e.bodies = append(e.bodies[:i:i], e.bodies[i+1:]...)
			return
		}
	}
}

// Body returns the body registered for the named entity.
func (e *Engine) Body(entityName string) (*Body, bool) {
	b, ok := e.byEntity[entityName]
	return b, ok
}

// ApplyForce accumulates an impulsive acceleration on the body. Forces are
// consumed by the next Step; continuous force must be reapplied every frame.
func (e *Engine) ApplyForce(b *Body, force mgl64.Vec3) {
	if b.Mass <= 0 {
		return
	}
	b.Acceleration = b.Acceleration.Add(force.Mul(1 / b.Mass))
}

// Step advances all dynamic bodies by dt seconds, then resolves collisions.
func (e *Engine) Step(dt float64) {
	// Snapshot: a collision handler may add or remove bodies mid-step.
	bodies := make([]*Body, len(e.bodies))
	copy(bodies, e.bodies)

	for _, b := range bodies {
		if b.Static {
			continue
		}
		ent, ok := e.entities.Get(b.Entity)
		if !ok || !ent.Alive() {
			continue
		}
		e.integrate(b, ent, dt)
	}

	e.resolveCollisions(bodies)
}

func (e *Engine) integrate(b *Body, ent *entity.Entity, dt float64) {
	if b.UseGravity {
		b.Acceleration[1] = e.gravity
	}
	b.Velocity = b.Velocity.Add(b.Acceleration.Mul(dt))
	if b.Drag > 0 {
		b.Velocity = b.Velocity.Mul(1 - b.Drag)
	}

	pos := ent.Position().Add(b.Velocity.Mul(dt))

	if e.groundPlane && pos[1] < 0 {
		pos[1] = 0
		b.Velocity[1] = -b.Velocity[1] * b.Restitution
		b.Velocity[0] *= 1 - b.Friction
		b.Velocity[2] *= 1 - b.Friction
	}

	if b.Bounds != nil {
		for axis := 0; axis < 3; axis++ {
			if pos[axis] < b.Bounds.Min[axis] {
				pos[axis] = b.Bounds.Min[axis]
				b.Velocity[axis] = -b.Velocity[axis] * b.Restitution
			} else if pos[axis] > b.Bounds.Max[axis] {
				pos[axis] = b.Bounds.Max[axis]
				b.Velocity[axis] = -b.Velocity[axis] * b.Restitution
			}
		}
	}

	ent.SetPosition(pos)

	// Forces are impulsive per frame.
	b.Acceleration = mgl64.Vec3{}
}

// resolveCollisions runs the O(n²) pair test and pushes overlapping bodies
// apart along the separation normal. Only positions are corrected; no
// velocity impulse is applied on body-body contact. Restitution and friction
// act solely on ground and bounds contacts.
func (e *Engine) resolveCollisions(bodies []*Body) {
	for i := 0; i < len(bodies); i++ {
		a := bodies[i]
		if a.Radius <= 0 {
			continue
		}
		entA, okA := e.entities.Get(a.Entity)
		if !okA || !entA.Alive() {
			continue
		}
		for j := i + 1; j < len(bodies); j++ {
			// A collision handler may have removed entA's entity on an
			// earlier pair; a removed entity must not be moved or named in
			// further events this step.
			if !entA.Alive() {
				break
			}
			b := bodies[j]
			if b.Radius <= 0 {
				continue
			}
			entB, okB := e.entities.Get(b.Entity)
			if !okB || !entB.Alive() {
				continue
			}

			delta := entB.Position().Sub(entA.Position())
			dist := delta.Len()
			minDist := a.Radius + b.Radius
			if dist >= minDist {
				continue
			}
			if dist == 0 {
				// Coincident centers: the normal is undefined, skip the
				// response for this pair rather than divide by zero.
				continue
			}

			normal := delta.Mul(1 / dist)
			overlap := minDist - dist
			switch {
			case a.Static && b.Static:
				// Neither moves; still report the contact.
			case a.Static:
				entB.SetPosition(entB.Position().Add(normal.Mul(overlap)))
			case b.Static:
				entA.SetPosition(entA.Position().Sub(normal.Mul(overlap)))
			default:
				half := normal.Mul(overlap / 2)
				entA.SetPosition(entA.Position().Sub(half))
				entB.SetPosition(entB.Position().Add(half))
			}

			e.bus.Publish(event.Collision, &CollisionEvent{A: a, B: b})
		}
	}
}
