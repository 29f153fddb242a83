package effect

import (
	"fmt"
	"math"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// BlendMode describes how a stage's layer combines with the frame composited so far.
type BlendMode int

const (
	BlendSkip BlendMode = iota
	BlendAdd
	BlendAlpha
	BlendAverage
	BlendColorBurn
	BlendColorDodge
	BlendDarken
	BlendDifference
	BlendExclusion
	BlendLighten
	BlendMultiply
	BlendDivide
	BlendNegation
	BlendNormal
	BlendOverlay
	BlendReflect
	BlendScreen
	BlendSoftLight
	BlendSubtract

	blendModeCount
)

var blendModeNames = [...]string{
	BlendSkip:       "SKIP",
	BlendAdd:        "ADD",
	BlendAlpha:      "ALPHA",
	BlendAverage:    "AVERAGE",
	BlendColorBurn:  "COLOR_BURN",
	BlendColorDodge: "COLOR_DODGE",
	BlendDarken:     "DARKEN",
	BlendDifference: "DIFFERENCE",
	BlendExclusion:  "EXCLUSION",
	BlendLighten:    "LIGHTEN",
	BlendMultiply:   "MULTIPLY",
	BlendDivide:     "DIVIDE",
	BlendNegation:   "NEGATION",
	BlendNormal:     "NORMAL",
	BlendOverlay:    "OVERLAY",
	BlendReflect:    "REFLECT",
	BlendScreen:     "SCREEN",
	BlendSoftLight:  "SOFT_LIGHT",
	BlendSubtract:   "SUBTRACT",
}

// Valid reports whether b is one of the enumerated blend modes.
func (b BlendMode) Valid() bool {
	return b >= 0 && b < blendModeCount
}

func (b BlendMode) String() string {
	if !b.Valid() {
		return fmt.Sprintf("BlendMode(%d)", int(b))
	}
	return blendModeNames[b]
}

// ParseBlendMode resolves a blend mode by name. Matching ignores case and treats '-' and ' ' as '_'.
//
// Parameters:
//   - name: the blend mode name, e.g. "DARKEN" or "soft-light"
//
// Returns:
//   - BlendMode: the matching blend mode
//   - error: ErrInvalidParameter if the name is not recognized
func ParseBlendMode(name string) (BlendMode, error) {
	key := strings.ToUpper(strings.NewReplacer("-", "_", " ", "_").Replace(strings.TrimSpace(name)))
	for i, n := range blendModeNames {
		if n == key {
			return BlendMode(i), nil
		}
	}
	return 0, fmt.Errorf("blend mode %q: %w", name, ErrInvalidParameter)
}

// MarshalText implements encoding.TextMarshaler.
func (b BlendMode) MarshalText() ([]byte, error) {
	if !b.Valid() {
		return nil, fmt.Errorf("blend mode %d: %w", int(b), ErrInvalidParameter)
	}
	return []byte(b.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (b *BlendMode) UnmarshalText(text []byte) error {
	mode, err := ParseBlendMode(string(text))
	if err != nil {
		return err
	}
	*b = mode
	return nil
}

// Blend combines a layer color over a base color with the given opacity.
//
// Parameters:
//   - base: the frame color so far
//   - layer: the stage's color
//   - opacity: the layer weight in [0, 1]
//
// Returns:
//   - common.Color: the blended color
func (b BlendMode) Blend(base, layer common.Color, opacity float64) common.Color {
	if b == BlendSkip || opacity <= 0 {
		return base
	}
	opacity = math.Min(opacity, 1)
	var out common.Color
	for i := range out {
		out[i] = common.Mix(base[i], b.channel(base[i], layer[i]), opacity)
	}
	return out
}

// channel applies the blend function to a single channel.
func (b BlendMode) channel(x, y float64) float64 {
	switch b {
	case BlendAdd:
		return math.Min(x+y, 1)
	case BlendAverage:
		return (x + y) * 0.5
	case BlendColorBurn:
		if y == 0 {
			return y
		}
		return math.Max(1-(1-x)/y, 0)
	case BlendColorDodge:
		if y == 1 {
			return y
		}
		return math.Min(x/(1-y), 1)
	case BlendDarken:
		return math.Min(x, y)
	case BlendDifference:
		return math.Abs(x - y)
	case BlendExclusion:
		return x + y - 2*x*y
	case BlendLighten:
		return math.Max(x, y)
	case BlendMultiply:
		return x * y
	case BlendDivide:
		if y > 0 {
			return math.Min(x/y, 1)
		}
		return 1
	case BlendNegation:
		return 1 - math.Abs(1-x-y)
	case BlendOverlay:
		if x < 0.5 {
			return 2 * x * y
		}
		return 1 - 2*(1-x)*(1-y)
	case BlendReflect:
		if y == 1 {
			return y
		}
		return math.Min(x*x/(1-y), 1)
	case BlendScreen:
		return x + y - x*y
	case BlendSoftLight:
		if y < 0.5 {
			return 2*x*y + x*x*(1-2*y)
		}
		return math.Sqrt(x)*(2*y-1) + 2*x*(1-y)
	case BlendSubtract:
		return math.Max(x+y-1, 0)
	default:
		// NORMAL and ALPHA replace the base; opacity does the weighting.
		return y
	}
}
