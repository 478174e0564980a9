package sched

import (
	"errors"
	"testing"

	"go.uber.org/zap"

	"github.com/emberengine/ember/internal/core/entity"
	"github.com/emberengine/ember/internal/core/event"
)

type traceStepper struct {
	name  string
	trace *[]string
}

func (ts *traceStepper) Step(float64) { *ts.trace = append(*ts.trace, ts.name) }

type traceSystem struct {
	name  string
	trace *[]string
}

func (ts *traceSystem) Update(float64) { *ts.trace = append(*ts.trace, ts.name) }

type traceScript struct {
	name  string
	trace *[]string
}

func (ts *traceScript) Update(float64, *entity.Entity) { *ts.trace = append(*ts.trace, ts.name) }

func newTestScheduler(trace *[]string) (*Scheduler, *entity.Registry) {
	bus := event.NewBus()
	reg := entity.NewRegistry(bus, nil, zap.NewNop())
	s := NewScheduler(
		reg,
		&traceStepper{"physics", trace},
		&traceStepper{"particles", trace},
		&traceStepper{"tweens", trace},
		zap.NewNop(),
	)
	return s, reg
}

func TestRunFrameOrder(t *testing.T) {
	var trace []string
	s, reg := newTestScheduler(&trace)

	s.OnPreUpdate(func(float64) { trace = append(trace, "pre-update") })
	s.OnPostUpdate(func(float64) { trace = append(trace, "post-update") })
	s.OnPreRender(func(float64) { trace = append(trace, "pre-render") })
	s.OnPostRender(func(float64) { trace = append(trace, "post-render") })
	s.OnRender(func() { trace = append(trace, "render") })

	if err := s.AddSystem("sysA", &traceSystem{"sysA", &trace}); err != nil {
		t.Fatal(err)
	}
	if err := s.AddSystem("sysB", &traceSystem{"sysB", &trace}); err != nil {
		t.Fatal(err)
	}

	e, _ := reg.Create("hero", entity.Options{})
	e.AttachScript(&traceScript{"script", &trace})

	s.RunFrame(0.016)

	want := []string{
		"pre-update",
		"physics", "particles", "tweens",
		"sysA", "sysB",
		"script",
		"post-update",
		"pre-render", "render", "post-render",
	}
	if len(trace) != len(want) {
		t.Fatalf("trace = %v\nwant  %v", trace, want)
	}
	for i := range want {
		if trace[i] != want[i] {
			t.Fatalf("trace = %v\nwant  %v", trace, want)
		}
	}
}

func TestDuplicateSystem(t *testing.T) {
	var trace []string
	s, _ := newTestScheduler(&trace)
	if err := s.AddSystem("dup", SystemFunc(func(float64) {})); err != nil {
		t.Fatal(err)
	}
	err := s.AddSystem("dup", SystemFunc(func(float64) {}))
	if !errors.Is(err, ErrDuplicateSystem) {
		t.Fatalf("err = %v, want ErrDuplicateSystem", err)
	}
}

type lifecycleSystem struct {
	inited    bool
	updates   int
	destroyed bool
}

func (l *lifecycleSystem) Init()          { l.inited = true }
func (l *lifecycleSystem) Update(float64) { l.updates++ }
func (l *lifecycleSystem) Destroy()       { l.destroyed = true }

func TestSystemLifecycle(t *testing.T) {
	var trace []string
	s, _ := newTestScheduler(&trace)

	sys := &lifecycleSystem{}
	if err := s.AddSystem("life", sys); err != nil {
		t.Fatal(err)
	}
	if !sys.inited {
		t.Fatal("AddSystem must run Init synchronously")
	}

	s.RunFrame(0.016)
	s.Disable("life")
	s.RunFrame(0.016)
	s.Enable("life")
	s.RunFrame(0.016)
	if sys.updates != 2 {
		t.Fatalf("updates = %d, want 2 (disabled frame skipped)", sys.updates)
	}

	s.RemoveSystem("life")
	if !sys.destroyed {
		t.Fatal("RemoveSystem must run Destroy")
	}
	s.RunFrame(0.016)
	if sys.updates != 2 {
		t.Fatal("removed system must not update")
	}

	s.RemoveSystem("life") // absent: no-op
	if s.Enable("life") {
		t.Fatal("Enable of absent system must return false")
	}
}

func TestSystemRemovesSystemMidFrame(t *testing.T) {
	var trace []string
	s, _ := newTestScheduler(&trace)

	ran := false
	s.AddSystem("remover", SystemFunc(func(float64) {
		s.RemoveSystem("victim")
	}))
	s.AddSystem("victim", SystemFunc(func(float64) { ran = true }))

	s.RunFrame(0.016)
	if ran {
		t.Fatal("system removed earlier in the frame must not run")
	}
}

func TestEntityRemovedMidFrameSkipsScripts(t *testing.T) {
	var trace []string
	s, reg := newTestScheduler(&trace)

	victim, _ := reg.Create("victim", entity.Options{})
	victimRan := 0
	victim.AttachScript(scriptFunc(func(float64, *entity.Entity) { victimRan++ }))

	// A system earlier in the frame removes the entity; its scripts must not
	// run in the same frame.
	s.AddSystem("reaper", SystemFunc(func(float64) { reg.Remove("victim") }))

	s.RunFrame(0.016)
	if victimRan != 0 {
		t.Fatalf("script of removed entity ran %d times", victimRan)
	}
}

func TestScriptRemovesOwnEntity(t *testing.T) {
	var trace []string
	s, reg := newTestScheduler(&trace)

	e, _ := reg.Create("kamikaze", entity.Options{})
	secondRan := false
	e.AttachScript(scriptFunc(func(_ float64, me *entity.Entity) {
		reg.Remove(me.Name())
	}))
	e.AttachScript(scriptFunc(func(float64, *entity.Entity) { secondRan = true }))

	s.RunFrame(0.016)
	if secondRan {
		t.Fatal("later scripts must not run after the entity removed itself")
	}
}

func TestDisabledEntitySkipsScripts(t *testing.T) {
	var trace []string
	s, reg := newTestScheduler(&trace)

	e, _ := reg.Create("sleeper", entity.Options{Disabled: true})
	ran := false
	e.AttachScript(scriptFunc(func(float64, *entity.Entity) { ran = true }))

	s.RunFrame(0.016)
	if ran {
		t.Fatal("disabled entity's scripts must not run")
	}
}

type scriptFunc func(dt float64, e *entity.Entity)

func (f scriptFunc) Update(dt float64, e *entity.Entity) { f(dt, e) }
