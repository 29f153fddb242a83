// package common contains common types that are used throughout this engine. They are not interface-wrapped structs, just plain structs that express
// commonly used data-types.
package common

import (
	"fmt"

	colorful "github.com/lucasb-eyer/go-colorful"
)

// Vec2 is a two component vector, used for UV coordinates and screen-space offsets.
type Vec2 [2]float64

// Vec3 is a three component vector.
type Vec3 [3]float64

// Color is a linear RGB color with each channel nominally in [0, 1].
type Color [3]float64

var (
	// White is the RGB color (1, 1, 1).
	White = Color{1, 1, 1}
	// Black is the RGB color (0, 0, 0).
	Black = Color{0, 0, 0}
)

// Add returns the component-wise sum of v and o.
func (v Vec2) Add(o Vec2) Vec2 {
	return Vec2{v[0] + o[0], v[1] + o[1]}
}

// Sub returns the component-wise difference of v and o.
func (v Vec2) Sub(o Vec2) Vec2 {
	return Vec2{v[0] - o[0], v[1] - o[1]}
}

// Length returns the euclidean length of v.
func (v Vec2) Length() float64 {
	return Hypot(v[0], v[1])
}

// ParseColor parses a CSS style hex color ("#rrggbb" or "#rgb") into a Color.
//
// Parameters:
//   - hex: the hex color string, including the leading '#'
//
// Returns:
//   - Color: the parsed color
//   - error: an error if the string is not a valid hex color
func ParseColor(hex string) (Color, error) {
	c, err := colorful.Hex(hex)
	if err != nil {
		return Color{}, fmt.Errorf("invalid color %q: %w", hex, err)
	}
	return Color{c.R, c.G, c.B}, nil
}

// MustParseColor is like ParseColor but panics on malformed input. Intended for literals.
func MustParseColor(hex string) Color {
	c, err := ParseColor(hex)
	if err != nil {
		panic(err)
	}
	return c
}

// Hex formats the color as a "#rrggbb" string.
func (c Color) Hex() string {
	return colorful.Color{R: c[0], G: c[1], B: c[2]}.Clamped().Hex()
}

// Scale multiplies every channel by s.
func (c Color) Scale(s float64) Color {
	return Color{c[0] * s, c[1] * s, c[2] * s}
}

// Mul returns the channel-wise product of c and o.
func (c Color) Mul(o Color) Color {
	return Color{c[0] * o[0], c[1] * o[1], c[2] * o[2]}
}

// Luminance returns the Rec. 709 relative luminance of the color.
func (c Color) Luminance() float64 {
	return 0.2126*c[0] + 0.7152*c[1] + 0.0722*c[2]
}

// Clamped returns the color with each channel clamped to [0, 1].
func (c Color) Clamped() Color {
	return Color{Clamp(c[0], 0, 1), Clamp(c[1], 0, 1), Clamp(c[2], 0, 1)}
}
