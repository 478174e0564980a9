package physics

import "github.com/go-gl/mathgl/mgl64"

// AABB is an optional axis-aligned bounds constraint for a body. Each axis is
// clamped independently on violation.
type AABB struct {
	Min mgl64.Vec3
	Max mgl64.Vec3
}

// Body is the physics state attached to one entity, referenced by entity
// name. The engine resolves the name through the registry each step, so a
// body never outlives its lookup: when the entity is gone the body is inert
// and the entity:remove cascade clears it.
type Body struct {
	// Entity is the name of the owning entity.
	Entity string

	Velocity     mgl64.Vec3
	Acceleration mgl64.Vec3

	// Mass must be > 0 for dynamic bodies; it divides applied forces.
	Mass float64

	// UseGravity replaces the vertical acceleration with the engine's
	// gravity constant each step.
	UseGravity bool

	// Static bodies are never integrated and act as immovable obstacles in
	// collision resolution.
	Static bool

	Restitution float64 // bounce energy kept on ground/bounds contact, [0,1]
	Friction    float64 // horizontal damping on ground contact, [0,1]
	Drag        float64 // per-axis velocity decay per step, [0,1)

	// Shape is a collider tag for callers; only the radius participates in
	// the sphere-distance collision test.
	Shape  string
	Radius float64

	// Bounds, when set, clamps the position per axis and reflects velocity.
	Bounds *AABB
}

// CollisionEvent is the payload of the "collision" event, published once per
// overlapping pair per step.
type CollisionEvent struct {
	A *Body
	B *Body
}
