package scene

import (
	"fmt"
	"os"

	"github.com/go-gl/mathgl/mgl64"
	"gopkg.in/yaml.v3"
)

// EntityDef declares one entity to spawn, with optional physics body and
// attached Lua scripts.
type EntityDef struct {
	Name     string     `yaml:"name"`
	Position mgl64.Vec3 `yaml:"position"`
	Rotation mgl64.Vec3 `yaml:"rotation"`
	Scale    mgl64.Vec3 `yaml:"scale"`
	Hidden   bool       `yaml:"hidden"`
	Disabled bool       `yaml:"disabled"`
	Tags     []string   `yaml:"tags"`
	Scripts  []string   `yaml:"scripts"` // Lua table names
	Body     *BodyDef   `yaml:"body"`
}

// BodyDef declares the physics body attached to an entity.
type BodyDef struct {
	Mass        float64    `yaml:"mass"`
	Velocity    mgl64.Vec3 `yaml:"velocity"`
	Gravity     bool       `yaml:"gravity"`
	Static      bool       `yaml:"static"`
	Restitution float64    `yaml:"restitution"`
	Friction    float64    `yaml:"friction"`
	Drag        float64    `yaml:"drag"`
	Shape       string     `yaml:"shape"`
	Radius      float64    `yaml:"radius"`
	Bounds      *BoundsDef `yaml:"bounds"`
}

type BoundsDef struct {
	Min mgl64.Vec3 `yaml:"min"`
	Max mgl64.Vec3 `yaml:"max"`
}

// EmitterDef declares one particle emitter.
type EmitterDef struct {
	Position     mgl64.Vec3 `yaml:"position"`
	Rate         float64    `yaml:"rate"`
	Lifetime     float64    `yaml:"lifetime"`
	Velocity     mgl64.Vec3 `yaml:"velocity"`
	Variance     mgl64.Vec3 `yaml:"variance"`
	Color        [3]float64 `yaml:"color"`
	StartSize    float64    `yaml:"start_size"`
	EndSize      float64    `yaml:"end_size"`
	StartOpacity float64    `yaml:"start_opacity"`
	EndOpacity   float64    `yaml:"end_opacity"`
	MaxParticles int        `yaml:"max_particles"`
}

// TweenDef declares a position tween on a named entity.
type TweenDef struct {
	Entity   string     `yaml:"entity"`
	To       mgl64.Vec3 `yaml:"to"`
	Duration float64    `yaml:"duration"`
	Delay    float64    `yaml:"delay"`
	Ease     string     `yaml:"ease"` // linear, quad-in, quad-out, quad-in-out, cubic-in, cubic-out, cubic-in-out
}

// Scene is the root of a scene YAML file.
type Scene struct {
	Name     string       `yaml:"name"`
	Entities []EntityDef  `yaml:"entities"`
	Emitters []EmitterDef `yaml:"emitters"`
	Tweens   []TweenDef   `yaml:"tweens"`
}

type sceneFile struct {
	Scene Scene `yaml:"scene"`
}

// Load reads and validates a scene YAML file.
func Load(path string) (*Scene, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read scene %s: %w", path, err)
	}
	var f sceneFile
	if err := yaml.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse scene %s: %w", path, err)
	}
	if err := f.Scene.validate(); err != nil {
		return nil, fmt.Errorf("scene %s: %w", path, err)
	}
	return &f.Scene, nil
}

func (s *Scene) validate() error {
	seen := make(map[string]struct{}, len(s.Entities))
	for i, def := range s.Entities {
		if def.Name == "" {
			return fmt.Errorf("entity %d: missing name", i)
		}
		if _, dup := seen[def.Name]; dup {
			return fmt.Errorf("entity %q: duplicate name", def.Name)
		}
		seen[def.Name] = struct{}{}
		if def.Body != nil && !def.Body.Static && def.Body.Mass <= 0 {
			return fmt.Errorf("entity %q: dynamic body needs mass > 0", def.Name)
		}
	}
	for i, tw := range s.Tweens {
		if _, ok := seen[tw.Entity]; !ok {
			return fmt.Errorf("tween %d: unknown entity %q", i, tw.Entity)
		}
		if tw.Duration <= 0 {
			return fmt.Errorf("tween %d: duration must be > 0", i)
		}
	}
	return nil
}
