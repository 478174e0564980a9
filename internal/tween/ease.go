package tween

// Ease maps normalized progress t in [0,1] to eased progress. All provided
// easings stay within [0,1]; the signature permits overshoot variants.
type Ease func(t float64) float64

func Linear(t float64) float64 { return t }

func QuadIn(t float64) float64 { return t * t }

func QuadOut(t float64) float64 { return t * (2 - t) }

func QuadInOut(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func CubicIn(t float64) float64 { return t * t * t }

func CubicOut(t float64) float64 {
	u := t - 1
	return u*u*u + 1
}

func CubicInOut(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return 0.5*u*u*u + 1
}
