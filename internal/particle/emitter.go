package particle

import "github.com/go-gl/mathgl/mgl64"

// Particle is a transient value: it carries no back-references and dies when
// its remaining life reaches zero.
type Particle struct {
	Position mgl64.Vec3
	Velocity mgl64.Vec3
	Life     float64
	MaxLife  float64
}

// Point is one entry of the draw buffer handed to the renderer: a position
// plus the visual attributes interpolated from the particle's age.
type Point struct {
	Position mgl64.Vec3
	Color    [3]float64
	Size     float64
	Opacity  float64
}

// Batch is the opaque draw-list handle an emitter publishes its live pool to
// once per step. Renderers hand one out per emitter; a nil batch means the
// emitter simulates without drawing.
type Batch interface {
	Upload(points []Point)
}

// Config declares a new emitter. Zero values are filled with usable
// defaults by AddEmitter.
type Config struct {
	Position mgl64.Vec3
	Rate     float64 // particles per second
	Lifetime float64 // seconds a particle lives

	Velocity mgl64.Vec3 // base spawn velocity
	Variance mgl64.Vec3 // per-axis uniform jitter, [-v, +v]

	Color        [3]float64
	StartSize    float64
	EndSize      float64
	StartOpacity float64
	EndOpacity   float64

	MaxParticles int
}

// Emitter owns a bounded pool of short-lived particles. Spawn timing uses a
// fractional accumulator so spawn counts stay correct under variable frame
// time, including catch-up after a stalled frame.
type Emitter struct {
	Config

	Enabled bool

	particles []Particle
	timer     float64
	batch     Batch

	points []Point // reused per step
}

// SetBatch attaches the renderer draw-list handle.
func (em *Emitter) SetBatch(b Batch) { em.batch = b }

// LiveCount returns the number of currently live particles.
func (em *Emitter) LiveCount() int { return len(em.particles) }

// Particles exposes the live pool for inspection. The slice is owned by the
// emitter and valid until the next step.
func (em *Emitter) Particles() []Particle { return em.particles }

// MoveTo repositions the spawn point.
func (em *Emitter) MoveTo(p mgl64.Vec3) { em.Position = p }
