package tween

import (
	"math"
	"testing"
)

func TestEaseBoundaries(t *testing.T) {
	eases := map[string]Ease{
		"linear":       Linear,
		"quad-in":      QuadIn,
		"quad-out":     QuadOut,
		"quad-in-out":  QuadInOut,
		"cubic-in":     CubicIn,
		"cubic-out":    CubicOut,
		"cubic-in-out": CubicInOut,
	}
	for name, fn := range eases {
		if got := fn(0); math.Abs(got) > 1e-9 {
			t.Errorf("%s(0) = %v, want 0", name, got)
		}
		if got := fn(1); math.Abs(got-1) > 1e-9 {
			t.Errorf("%s(1) = %v, want 1", name, got)
		}
	}
}

func TestEaseMidpoints(t *testing.T) {
	cases := []struct {
		name string
		fn   Ease
		t    float64
		want float64
	}{
		{"linear", Linear, 0.5, 0.5},
		{"quad-in", QuadIn, 0.5, 0.25},
		{"quad-out", QuadOut, 0.5, 0.75},
		{"quad-in-out", QuadInOut, 0.5, 0.5},
		{"quad-in-out", QuadInOut, 0.25, 0.125},
		{"cubic-in", CubicIn, 0.5, 0.125},
		{"cubic-out", CubicOut, 0.5, 0.875},
		{"cubic-in-out", CubicInOut, 0.5, 0.5},
	}
	for _, c := range cases {
		if got := c.fn(c.t); math.Abs(got-c.want) > 1e-9 {
			t.Errorf("%s(%v) = %v, want %v", c.name, c.t, got, c.want)
		}
	}
}

func TestEaseMonotonic(t *testing.T) {
	eases := []Ease{Linear, QuadIn, QuadOut, QuadInOut, CubicIn, CubicOut, CubicInOut}
	for i, fn := range eases {
		prev := fn(0)
		for step := 1; step <= 100; step++ {
			cur := fn(float64(step) / 100)
			if cur < prev-1e-12 {
				t.Errorf("ease %d not monotonic at t=%v", i, float64(step)/100)
				break
			}
			prev = cur
		}
	}
}
