package common

import (
	"math"
)

// Clamp restricts x to the closed range [lo, hi].
//
// Parameters:
//   - x: the value to clamp
//   - lo: the lower bound
//   - hi: the upper bound
//
// Returns:
//   - float64: x clamped to [lo, hi]
func Clamp(x, lo, hi float64) float64 {
	return math.Max(lo, math.Min(hi, x))
}

// Mix linearly interpolates between a and b by t, matching the GLSL/WGSL mix builtin.
func Mix(a, b, t float64) float64 {
	return a + (b-a)*t
}

// MixColor linearly interpolates each channel of a and b by t.
func MixColor(a, b Color, t float64) Color {
	return Color{Mix(a[0], b[0], t), Mix(a[1], b[1], t), Mix(a[2], b[2], t)}
}

// Smoothstep performs Hermite interpolation between 0 and 1 when edge0 < x < edge1,
// matching the shader builtin of the same name.
//
// Parameters:
//   - edge0: the lower edge of the transition
//   - edge1: the upper edge of the transition
//   - x: the source value
//
// Returns:
//   - float64: 0 below edge0, 1 above edge1, smooth in between
func Smoothstep(edge0, edge1, x float64) float64 {
	if edge0 == edge1 {
		if x < edge0 {
			return 0
		}
		return 1
	}
	t := Clamp((x-edge0)/(edge1-edge0), 0, 1)
	return t * t * (3 - 2*t)
}

// Fract returns the fractional part of x, always in [0, 1).
func Fract(x float64) float64 {
	return x - math.Floor(x)
}

// Hypot returns sqrt(x*x + y*y).
func Hypot(x, y float64) float64 {
	return math.Hypot(x, y)
}

// Hash12 is the classic shader-style pseudo random hash mapping a 2D point to [0, 1).
// It is deterministic for identical inputs.
func Hash12(p Vec2) float64 {
	return Fract(math.Sin(p[0]*12.9898+p[1]*78.233) * 43758.5453)
}

// IsFinite reports whether x is neither NaN nor infinite.
func IsFinite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
