package entity

import "github.com/go-gl/mathgl/mgl64"

// Script is per-frame behavior attached to a single entity. Init and Destroy
// are optional capabilities discovered by interface assertion.
type Script interface {
	Update(dt float64, e *Entity)
}

// ScriptIniter is run once when the script is attached.
type ScriptIniter interface {
	Init(e *Entity)
}

// ScriptDestroyer is run when the owning entity is removed.
type ScriptDestroyer interface {
	Destroy(e *Entity)
}

// Entity is a named simulation object: a transform, arbitrary component data,
// attached behavior scripts, and tags. Entities are created and removed via
// the Registry, never constructed directly.
type Entity struct {
	name      string
	enabled   bool
	visible   bool
	alive     bool
	transform Transform

	components map[string]any
	scripts    []Script
	tags       map[string]struct{}
}

func newEntity(name string, t Transform) *Entity {
	return &Entity{
		name:       name,
		enabled:    true,
		visible:    true,
		alive:      true,
		transform:  t,
		components: make(map[string]any),
		tags:       make(map[string]struct{}),
	}
}

func (e *Entity) Name() string { return e.name }

// Alive reports whether the entity is still registered. Subsystems check it
// before visiting an entity from a snapshot taken earlier in the frame, so an
// entity removed mid-frame is never touched again that frame.
func (e *Entity) Alive() bool { return e.alive }

func (e *Entity) Enabled() bool        { return e.enabled }
func (e *Entity) SetEnabled(v bool)    { e.enabled = v }
func (e *Entity) Visible() bool        { return e.visible }
func (e *Entity) SetVisible(v bool)    { e.visible = v }
func (e *Entity) Transform() Transform { return e.transform }

// Position and friends are passthroughs to the transform, kept as the entity
// surface so callers never reach for the representation.

func (e *Entity) Position() mgl64.Vec3     { return e.transform.Position() }
func (e *Entity) SetPosition(p mgl64.Vec3) { e.transform.SetPosition(p) }
func (e *Entity) Rotation() mgl64.Vec3     { return e.transform.Rotation() }
func (e *Entity) SetRotation(r mgl64.Vec3) { e.transform.SetRotation(r) }
func (e *Entity) Scale() mgl64.Vec3        { return e.transform.Scale() }
func (e *Entity) SetScale(s mgl64.Vec3)    { e.transform.SetScale(s) }

// SetComponent stores arbitrary data under a component name, replacing any
// previous value.
func (e *Entity) SetComponent(name string, data any) {
	e.components[name] = data
}

func (e *Entity) Component(name string) (any, bool) {
	v, ok := e.components[name]
	return v, ok
}

func (e *Entity) RemoveComponent(name string) {
	delete(e.components, name)
}

// AttachScript appends a behavior script and runs its Init hook if present.
func (e *Entity) AttachScript(s Script) {
	e.scripts = append(e.scripts, s)
	if init, ok := s.(ScriptIniter); ok {
		init.Init(e)
	}
}

// Scripts returns a snapshot of the attached scripts, safe to iterate while
// a script detaches itself or others.
func (e *Entity) Scripts() []Script {
	out := make([]Script, len(e.scripts))
	copy(out, e.scripts)
	return out
}

func (e *Entity) Tag(tag string)   { e.tags[tag] = struct{}{} }
func (e *Entity) Untag(tag string) { delete(e.tags, tag) }
func (e *Entity) HasTag(tag string) bool {
	_, ok := e.tags[tag]
	return ok
}

func (e *Entity) destroy() {
	e.alive = false
	for _, s := range e.scripts {
		if d, ok := s.(ScriptDestroyer); ok {
			d.Destroy(e)
		}
	}
}
