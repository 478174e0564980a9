package entity

import "github.com/go-gl/mathgl/mgl64"

// Transform is the uniform position/rotation/scale accessor contract every
// entity exposes. Callers never branch on how the state is stored: a
// LocalTransform owns the fields directly, while a renderer-backed transform
// delegates to the external renderable node.
type Transform interface {
	Position() mgl64.Vec3
	SetPosition(p mgl64.Vec3)
	Rotation() mgl64.Vec3
	SetRotation(r mgl64.Vec3)
	Scale() mgl64.Vec3
	SetScale(s mgl64.Vec3)
}

// LocalTransform stores position, rotation (euler radians) and scale as plain
// fields. Used by entities with no external renderable.
type LocalTransform struct {
	pos   mgl64.Vec3
	rot   mgl64.Vec3
	scale mgl64.Vec3
}

func NewLocalTransform() *LocalTransform {
	return &LocalTransform{scale: mgl64.Vec3{1, 1, 1}}
}

func (t *LocalTransform) Position() mgl64.Vec3     { return t.pos }
func (t *LocalTransform) SetPosition(p mgl64.Vec3) { t.pos = p }
func (t *LocalTransform) Rotation() mgl64.Vec3     { return t.rot }
func (t *LocalTransform) SetRotation(r mgl64.Vec3) { t.rot = r }
func (t *LocalTransform) Scale() mgl64.Vec3        { return t.scale }
func (t *LocalTransform) SetScale(s mgl64.Vec3)    { t.scale = s }
