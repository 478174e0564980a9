package particle

import (
	"math/rand"
	"time"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"
)

const defaultMaxParticles = 256

// Engine owns all emitters and advances them once per frame.
type Engine struct {
	log      *zap.Logger
	rng      *rand.Rand
	emitters []*Emitter
}

func NewEngine(log *zap.Logger) *Engine {
	return &Engine{
		log: log,
		rng: rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// SetRandSource replaces the jitter source. Tests use a fixed seed.
func (e *Engine) SetRandSource(src rand.Source) {
	e.rng = rand.New(src)
}

// AddEmitter registers a new enabled emitter built from cfg.
func (e *Engine) AddEmitter(cfg Config) *Emitter {
	if cfg.MaxParticles <= 0 {
		cfg.MaxParticles = defaultMaxParticles
	}
	if cfg.StartOpacity == 0 && cfg.EndOpacity == 0 {
		cfg.StartOpacity = 1
	}
	em := &Emitter{
		Config:    cfg,
		Enabled:   true,
		particles: make([]Particle, 0, cfg.MaxParticles),
	}
	e.emitters = append(e.emitters, em)
	e.log.Debug("emitter added",
		zap.Float64("rate", cfg.Rate),
		zap.Int("max_particles", cfg.MaxParticles))
	return em
}

// RemoveEmitter drops the emitter. Unknown emitters are ignored.
func (e *Engine) RemoveEmitter(em *Emitter) {
	for i, other := range e.emitters {
		if other == em {
			e.emitters = append(e.emitters[:i:i], e.emitters[i+1:]...)
			return
		}
	}
}

// Emitters returns a snapshot of the registered emitters.
func (e *Engine) Emitters() []*Emitter {
	out := make([]*Emitter, len(e.emitters))
	copy(out, e.emitters)
	return out
}

// Step advances every enabled emitter: spawn by accumulator, age and move
// live particles, then publish the draw buffer to the emitter's batch.
func (e *Engine) Step(dt float64) {
	// Snapshot: an event handler or script may remove an emitter mid-step.
	emitters := make([]*Emitter, len(e.emitters))
	copy(emitters, e.emitters)
	for _, em := range emitters {
		if !em.Enabled {
			continue
		}
		e.stepEmitter(em, dt)
	}
}

func (e *Engine) stepEmitter(em *Emitter, dt float64) {
	e.spawn(em, dt)

	// Age, cull, and integrate in place.
	live := em.particles[:0]
	em.points = em.points[:0]
	for i := range em.particles {
		p := em.particles[i]
		p.Life -= dt
		if p.Life <= 0 {
			continue
		}
		p.Position = p.Position.Add(p.Velocity.Mul(dt))
		live = append(live, p)

		t := 1 - p.Life/p.MaxLife
		em.points = append(em.points, Point{
			Position: p.Position,
			Color:    em.Color,
			Size:     em.StartSize + (em.EndSize-em.StartSize)*t,
			Opacity:  em.StartOpacity + (em.EndOpacity-em.StartOpacity)*t,
		})
	}
	em.particles = live

	if em.batch != nil {
		em.batch.Upload(em.points)
	}
}

// spawn accumulates dt and emits one particle per elapsed 1/rate interval,
// capped at MaxParticles. The accumulator, not a single rate·dt product,
// keeps spawn counts exact under variable frame time.
func (e *Engine) spawn(em *Emitter, dt float64) {
	if em.Rate <= 0 {
		return
	}
	em.timer += dt
	interval := 1 / em.Rate
	for em.timer > interval && len(em.particles) < em.MaxParticles {
		em.timer -= interval
		em.particles = append(em.particles, Particle{
			Position: em.Position,
			Velocity: em.Velocity.Add(e.jitter(em.Variance)),
			Life:     em.Lifetime,
			MaxLife:  em.Lifetime,
		})
	}
}

func (e *Engine) jitter(variance mgl64.Vec3) mgl64.Vec3 {
	var out mgl64.Vec3
	for axis, v := range variance {
		if v != 0 {
			out[axis] = (e.rng.Float64()*2 - 1) * v
		}
	}
	return out
}
