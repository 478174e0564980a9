package scene

import (
	"fmt"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/emberengine/ember/internal/core/entity"
	"github.com/emberengine/ember/internal/engine"
	"github.com/emberengine/ember/internal/particle"
	"github.com/emberengine/ember/internal/physics"
	"github.com/emberengine/ember/internal/tween"
)

var eases = map[string]tween.Ease{
	"":             tween.Linear,
	"linear":       tween.Linear,
	"quad-in":      tween.QuadIn,
	"quad-out":     tween.QuadOut,
	"quad-in-out":  tween.QuadInOut,
	"cubic-in":     tween.CubicIn,
	"cubic-out":    tween.CubicOut,
	"cubic-in-out": tween.CubicInOut,
}

// Spawn instantiates the scene's entities, bodies, emitters, and tweens into
// a constructed engine. Scripts are resolved against the engine's Lua engine;
// naming a script with scripting disabled is an error.
func Spawn(s *Scene, eng *engine.Engine) error {
	for _, def := range s.Entities {
		if err := spawnEntity(def, eng); err != nil {
			return err
		}
	}

	for _, def := range s.Emitters {
		eng.AddEmitter(particle.Config{
			Position:     def.Position,
			Rate:         def.Rate,
			Lifetime:     def.Lifetime,
			Velocity:     def.Velocity,
			Variance:     def.Variance,
			Color:        def.Color,
			StartSize:    def.StartSize,
			EndSize:      def.EndSize,
			StartOpacity: def.StartOpacity,
			EndOpacity:   def.EndOpacity,
			MaxParticles: def.MaxParticles,
		})
	}

	for _, def := range s.Tweens {
		if err := spawnTween(def, eng); err != nil {
			return err
		}
	}
	return nil
}

func spawnEntity(def EntityDef, eng *engine.Engine) error {
	e, err := eng.Entities.Create(def.Name, entity.Options{
		Position: def.Position,
		Rotation: def.Rotation,
		Scale:    def.Scale,
		Hidden:   def.Hidden,
		Disabled: def.Disabled,
		Tags:     def.Tags,
	})
	if err != nil {
		return err
	}

	for _, name := range def.Scripts {
		if eng.Scripts == nil {
			return fmt.Errorf("entity %q: script %q requested but scripting is disabled", def.Name, name)
		}
		script, err := eng.Scripts.Script(name)
		if err != nil {
			return fmt.Errorf("entity %q: %w", def.Name, err)
		}
		e.AttachScript(script)
	}

	if def.Body != nil {
		b := def.Body
		var bounds *physics.AABB
		if b.Bounds != nil {
			bounds = &physics.AABB{Min: b.Bounds.Min, Max: b.Bounds.Max}
		}
		err := eng.Physics.AddBody(&physics.Body{
			Entity:      def.Name,
			Velocity:    b.Velocity,
			Mass:        b.Mass,
			UseGravity:  b.Gravity,
			Static:      b.Static,
			Restitution: b.Restitution,
			Friction:    b.Friction,
			Drag:        b.Drag,
			Shape:       b.Shape,
			Radius:      b.Radius,
			Bounds:      bounds,
		})
		if err != nil {
			return fmt.Errorf("entity %q: %w", def.Name, err)
		}
	}
	return nil
}

// spawnTween animates an entity's position through a property bag bridged
// back to the transform on every update.
func spawnTween(def TweenDef, eng *engine.Engine) error {
	ease, ok := eases[def.Ease]
	if !ok {
		return fmt.Errorf("tween on %q: unknown ease %q", def.Entity, def.Ease)
	}
	e, ok := eng.Entities.Get(def.Entity)
	if !ok {
		return fmt.Errorf("tween on %q: entity not found", def.Entity)
	}

	pos := e.Position()
	bag := tween.Target{"x": pos[0], "y": pos[1], "z": pos[2]}
	eng.Tweens.To(bag, map[string]float64{"x": def.To[0], "y": def.To[1], "z": def.To[2]}, def.Duration, tween.Options{
		Delay: def.Delay,
		Ease:  ease,
		OnUpdate: func(float64) {
			if !e.Alive() {
				return
			}
			e.SetPosition(mgl64.Vec3{bag["x"], bag["y"], bag["z"]})
		},
	})
	return nil
}
