package physics

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
	"go.uber.org/zap"

	"github.com/emberengine/ember/internal/core/entity"
	"github.com/emberengine/ember/internal/core/event"
)

func newTestEngine(t *testing.T) (*Engine, *entity.Registry, *event.Bus) {
	t.Helper()
	bus := event.NewBus()
	reg := entity.NewRegistry(bus, nil, zap.NewNop())
	return NewEngine(reg, bus, zap.NewNop()), reg, bus
}

func mustCreate(t *testing.T, reg *entity.Registry, name string, pos mgl64.Vec3) *entity.Entity {
	t.Helper()
	e, err := reg.Create(name, entity.Options{Position: pos})
	if err != nil {
		t.Fatal(err)
	}
	return e
}

func TestGravityIntegration(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	ent := mustCreate(t, reg, "ball", mgl64.Vec3{0, 100, 0})
	b := &Body{Entity: "ball", Mass: 1, UseGravity: true}
	if err := eng.AddBody(b); err != nil {
		t.Fatal(err)
	}

	const dt = 0.1
	eng.Step(dt)

	wantVy := DefaultGravity * dt
	if math.Abs(b.Velocity[1]-wantVy) > 1e-9 {
		t.Fatalf("vy = %v, want %v", b.Velocity[1], wantVy)
	}
	wantY := 100 + wantVy*dt
	if math.Abs(ent.Position()[1]-wantY) > 1e-9 {
		t.Fatalf("y = %v, want %v", ent.Position()[1], wantY)
	}
	if b.Acceleration != (mgl64.Vec3{}) {
		t.Fatal("acceleration must reset after integration")
	}
}

func TestGroundBounceRestitution(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	mustCreate(t, reg, "ball", mgl64.Vec3{0, 2, 0})
	const r = 0.6
	b := &Body{Entity: "ball", Mass: 1, UseGravity: true, Restitution: r}
	if err := eng.AddBody(b); err != nil {
		t.Fatal(err)
	}

	const dt = 0.01
	for i := 0; i < 10000; i++ {
		before := b.Velocity[1]
		eng.Step(dt)
		if b.Velocity[1] > 0 {
			// Bounced this step. Pre-bounce speed includes this step's
			// gravity contribution, applied before the ground check.
			preBounce := math.Abs(before + DefaultGravity*dt)
			if math.Abs(b.Velocity[1]-r*preBounce) > 1e-9 {
				t.Fatalf("post-bounce vy = %v, want %v", b.Velocity[1], r*preBounce)
			}
			ent, _ := reg.Get("ball")
			if ent.Position()[1] != 0 {
				t.Fatalf("y = %v, want clamp to 0", ent.Position()[1])
			}
			return
		}
	}
	t.Fatal("ball never bounced")
}

func TestGroundFrictionDampensHorizontal(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	mustCreate(t, reg, "slider", mgl64.Vec3{0, 0.001, 0})
	b := &Body{
		Entity: "slider", Mass: 1, UseGravity: true,
		Friction: 0.5,
		Velocity: mgl64.Vec3{10, 0, 4},
	}
	eng.AddBody(b)

	eng.Step(0.1) // falls below 0, ground contact
	if math.Abs(b.Velocity[0]-5) > 1e-9 || math.Abs(b.Velocity[2]-2) > 1e-9 {
		t.Fatalf("horizontal velocity = %v, want (5, _, 2)", b.Velocity)
	}
}

func TestDrag(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	mustCreate(t, reg, "p", mgl64.Vec3{0, 10, 0})
	b := &Body{Entity: "p", Mass: 1, Drag: 0.1, Velocity: mgl64.Vec3{10, 0, 0}}
	eng.AddBody(b)

	eng.Step(1)
	if math.Abs(b.Velocity[0]-9) > 1e-9 {
		t.Fatalf("vx = %v, want 9 after 10%% drag", b.Velocity[0])
	}
}

func TestBoundsClampAndReflect(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	ent := mustCreate(t, reg, "pong", mgl64.Vec3{9, 5, 0})
	b := &Body{
		Entity: "pong", Mass: 1,
		Velocity:    mgl64.Vec3{10, 0, 0},
		Restitution: 1,
		Bounds:      &AABB{Min: mgl64.Vec3{-10, 0, -10}, Max: mgl64.Vec3{10, 10, 10}},
	}
	eng.AddBody(b)

	eng.Step(1) // would travel to x=19, clamps to 10
	if ent.Position()[0] != 10 {
		t.Fatalf("x = %v, want 10", ent.Position()[0])
	}
	if math.Abs(b.Velocity[0]+10) > 1e-9 {
		t.Fatalf("vx = %v, want -10 (full reflection)", b.Velocity[0])
	}
}

func TestApplyForce(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	mustCreate(t, reg, "crate", mgl64.Vec3{0, 10, 0})
	b := &Body{Entity: "crate", Mass: 2}
	eng.AddBody(b)

	eng.ApplyForce(b, mgl64.Vec3{10, 0, 0})
	if math.Abs(b.Acceleration[0]-5) > 1e-9 {
		t.Fatalf("ax = %v, want force/mass = 5", b.Acceleration[0])
	}

	eng.Step(1)
	if math.Abs(b.Velocity[0]-5) > 1e-9 {
		t.Fatalf("vx = %v, want 5", b.Velocity[0])
	}
	eng.Step(1)
	// Force was impulsive: velocity unchanged on the second step.
	if math.Abs(b.Velocity[0]-5) > 1e-9 {
		t.Fatalf("vx = %v after second step, want 5 (force not reapplied)", b.Velocity[0])
	}
}

func TestStaticBodyNeverIntegrated(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	ent := mustCreate(t, reg, "wall", mgl64.Vec3{0, 5, 0})
	eng.AddBody(&Body{Entity: "wall", Static: true, UseGravity: true, Radius: 1})

	eng.Step(1)
	if ent.Position() != (mgl64.Vec3{0, 5, 0}) {
		t.Fatalf("static body moved to %v", ent.Position())
	}
}

func TestDepenetration(t *testing.T) {
	eng, reg, bus := newTestEngine(t)
	a := mustCreate(t, reg, "a", mgl64.Vec3{0, 5, 0})
	b := mustCreate(t, reg, "b", mgl64.Vec3{0.4, 5, 0})
	eng.AddBody(&Body{Entity: "a", Mass: 1, Radius: 0.5})
	eng.AddBody(&Body{Entity: "b", Mass: 1, Radius: 0.5})

	collisions := 0
	bus.Subscribe(event.Collision, func(p any) {
		ev := p.(*CollisionEvent)
		if ev.A.Entity != "a" || ev.B.Entity != "b" {
			t.Fatalf("collision pair = %s/%s", ev.A.Entity, ev.B.Entity)
		}
		collisions++
	})

	eng.Step(0.016)

	sep := b.Position().Sub(a.Position()).Len()
	if sep < 1.0-1e-9 {
		t.Fatalf("separation = %v after step, want >= 1.0", sep)
	}
	if collisions != 1 {
		t.Fatalf("collision events = %d, want exactly 1", collisions)
	}

	// No residual velocity: body-body contact applies no impulse.
	bodyA, _ := eng.Body("a")
	if bodyA.Velocity != (mgl64.Vec3{}) {
		t.Fatalf("velocity after positional correction = %v, want zero", bodyA.Velocity)
	}
}

func TestDepenetrationAgainstStatic(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	wall := mustCreate(t, reg, "wall", mgl64.Vec3{0, 5, 0})
	ball := mustCreate(t, reg, "ball", mgl64.Vec3{0.5, 5, 0})
	eng.AddBody(&Body{Entity: "wall", Static: true, Radius: 0.5})
	eng.AddBody(&Body{Entity: "ball", Mass: 1, Radius: 0.5})

	eng.Step(0.016)

	if wall.Position() != (mgl64.Vec3{0, 5, 0}) {
		t.Fatal("static body moved during de-penetration")
	}
	sep := ball.Position().Sub(wall.Position()).Len()
	if sep < 1.0-1e-9 {
		t.Fatalf("separation = %v, want >= 1.0 (dynamic body takes full push)", sep)
	}
}

func TestCoincidentCentersSkipped(t *testing.T) {
	eng, reg, bus := newTestEngine(t)
	mustCreate(t, reg, "a", mgl64.Vec3{1, 1, 1})
	mustCreate(t, reg, "b", mgl64.Vec3{1, 1, 1})
	eng.AddBody(&Body{Entity: "a", Mass: 1, Radius: 0.5})
	eng.AddBody(&Body{Entity: "b", Mass: 1, Radius: 0.5})

	fired := false
	bus.Subscribe(event.Collision, func(any) { fired = true })

	eng.Step(0.016) // must not panic or NaN
	if fired {
		t.Fatal("coincident pair must skip collision response")
	}
	a, _ := reg.Get("a")
	if math.IsNaN(a.Position()[0]) {
		t.Fatal("position became NaN")
	}
}

func TestCollisionHandlerRemovesEntityMidStep(t *testing.T) {
	eng, reg, bus := newTestEngine(t)
	a := mustCreate(t, reg, "a", mgl64.Vec3{0, 5, 0})
	mustCreate(t, reg, "b", mgl64.Vec3{0.4, 5, 0})
	mustCreate(t, reg, "c", mgl64.Vec3{0.8, 5, 0})
	eng.AddBody(&Body{Entity: "a", Mass: 1, Radius: 0.5})
	eng.AddBody(&Body{Entity: "b", Mass: 1, Radius: 0.5})
	eng.AddBody(&Body{Entity: "c", Mass: 1, Radius: 0.5})

	// The destroy-on-hit pattern: the first contact involving "a" removes
	// the entity (which cascades to its body). Later pairs this step must
	// neither move "a" nor publish events naming it.
	var pairs [][2]string
	var posAtRemoval mgl64.Vec3
	bus.Subscribe(event.Collision, func(p any) {
		ev := p.(*CollisionEvent)
		pairs = append(pairs, [2]string{ev.A.Entity, ev.B.Entity})
		if a.Alive() && (ev.A.Entity == "a" || ev.B.Entity == "a") {
			posAtRemoval = a.Position()
			reg.Remove("a")
		}
	})

	eng.Step(0.016)

	sawA := 0
	for _, p := range pairs {
		if p[0] == "a" || p[1] == "a" {
			sawA++
		}
	}
	if sawA != 1 {
		t.Fatalf("events naming a = %d (%v), want exactly 1", sawA, pairs)
	}
	if a.Position() != posAtRemoval {
		t.Fatalf("removed entity moved from %v to %v", posAtRemoval, a.Position())
	}
	// The b-c overlap is still resolved after a's removal.
	found := false
	for _, p := range pairs {
		if p[0] == "b" && p[1] == "c" {
			found = true
		}
	}
	if !found {
		t.Fatalf("pairs = %v, want b/c still resolved", pairs)
	}
}

func TestEntityRemoveCascadesBody(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	mustCreate(t, reg, "doomed", mgl64.Vec3{})
	eng.AddBody(&Body{Entity: "doomed", Mass: 1})

	reg.Remove("doomed")
	if _, ok := eng.Body("doomed"); ok {
		t.Fatal("removing the entity must clear its body")
	}
}

func TestAddBodyReplacesDuplicate(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	mustCreate(t, reg, "one", mgl64.Vec3{0, 10, 0})
	first := &Body{Entity: "one", Mass: 1, UseGravity: true}
	second := &Body{Entity: "one", Mass: 1}
	eng.AddBody(first)
	eng.AddBody(second)

	got, ok := eng.Body("one")
	if !ok || got != second {
		t.Fatal("second AddBody must replace the first")
	}
	eng.Step(1)
	if first.Velocity != (mgl64.Vec3{}) {
		t.Fatal("replaced body must not be integrated")
	}
}

func TestAddBodyValidation(t *testing.T) {
	eng, _, _ := newTestEngine(t)
	if err := eng.AddBody(&Body{Mass: 1}); err == nil {
		t.Fatal("empty entity name must be rejected")
	}
	if err := eng.AddBody(&Body{Entity: "x", Mass: 0}); err == nil {
		t.Fatal("zero mass dynamic body must be rejected")
	}
	if err := eng.AddBody(&Body{Entity: "x", Static: true}); err != nil {
		t.Fatalf("static body without mass: %v", err)
	}
}

func TestSetGravity(t *testing.T) {
	eng, reg, _ := newTestEngine(t)
	mustCreate(t, reg, "moon", mgl64.Vec3{0, 100, 0})
	b := &Body{Entity: "moon", Mass: 1, UseGravity: true}
	eng.AddBody(b)

	eng.SetGravity(-1.6)
	eng.Step(1)
	if math.Abs(b.Velocity[1]+1.6) > 1e-9 {
		t.Fatalf("vy = %v, want -1.6", b.Velocity[1])
	}
}
