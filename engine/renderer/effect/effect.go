package effect

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// ErrInvalidParameter is returned when a node is configured with an out-of-range or unknown parameter.
// Configuration is never clamped; a rejected call leaves the node as it was.
var ErrInvalidParameter = errors.New("invalid effect parameter")

// invalid wraps ErrInvalidParameter with the offending parameter.
func invalid(node, param string, value any, want string) error {
	return fmt.Errorf("%s %s = %v, want %s: %w", node, param, value, want, ErrInvalidParameter)
}

// Sample is what a node contributes at one screen coordinate.
//
// Offset displaces the coordinate the frame is read from. Color is the layer the node
// blends over the frame using its BlendMode, weighted by Opacity (0 leaves the frame untouched).
type Sample struct {
	Offset  common.Vec2
	Color   common.Color
	Opacity float64
}

// FrameSampler reads the already-rendered frame at a screen coordinate.
type FrameSampler func(uv common.Vec2) common.Color

// Node is one stateful post-processing stage.
//
// Advance moves the node's internal clock; Sample is a pure function of the node's current
// state and the coordinate and must not mutate anything. Nodes are not safe for concurrent
// Advance and Sample calls; Sample alone may be called from many goroutines between advances.
type Node interface {
	// Name retrieves a short identifier of the stage kind, e.g. "drunk".
	//
	// Returns:
	//   - string: the stage name
	Name() string

	// BlendMode retrieves how the stage's layer combines with the frame so far.
	//
	// Returns:
	//   - BlendMode: the blend mode
	BlendMode() BlendMode

	// Advance moves the node's clock forward.
	//
	// Parameters:
	//   - deltaSeconds: elapsed time since the previous frame, must be >= 0
	//
	// Returns:
	//   - error: common.ErrInvalidTimeStep for negative or non-finite input, with the node unchanged
	Advance(deltaSeconds float64) error

	// Sample evaluates the node at a screen coordinate.
	//
	// Parameters:
	//   - coord: the screen coordinate in uv space
	//
	// Returns:
	//   - Sample: the node's displacement and color layer at coord
	Sample(coord common.Vec2) Sample
}

// FrameFilter is implemented by nodes whose layer depends on the frame itself (bloom, depth of field,
// premultiplied noise). The compositor calls Filter instead of using Sample.Color directly.
type FrameFilter interface {
	// Filter derives the node's layer color from the frame.
	//
	// Parameters:
	//   - uv: the displaced coordinate the frame was read at
	//   - input: the frame color at uv
	//   - frame: reads additional frame texels
	//   - s: the node's Sample at the same coordinate
	//
	// Returns:
	//   - common.Color: the layer color to blend
	Filter(uv common.Vec2, input common.Color, frame FrameSampler, s Sample) common.Color
}

// Layer resolves the color a node blends at uv, honoring FrameFilter.
//
// Parameters:
//   - n: the node
//   - uv: the displaced coordinate
//   - input: the frame color at uv
//   - frame: reads additional frame texels
//   - s: the node's sample
//
// Returns:
//   - common.Color: the layer color
func Layer(n Node, uv common.Vec2, input common.Color, frame FrameSampler, s Sample) common.Color {
	if f, ok := n.(FrameFilter); ok {
		return f.Filter(uv, input, frame, s)
	}
	return s.Color
}

// checkBlend validates a blend mode for a node.
func checkBlend(node string, mode BlendMode) error {
	if !mode.Valid() {
		return invalid(node, "blendMode", mode, "a known blend mode")
	}
	return nil
}

// checkRange validates lo <= v <= hi and that v is finite.
func checkRange(node, param string, v, lo, hi float64) error {
	if !common.IsFinite(v) || v < lo || v > hi {
		return invalid(node, param, v, fmt.Sprintf("in [%g, %g]", lo, hi))
	}
	return nil
}

// checkPositive validates v > 0 and finite.
func checkPositive(node, param string, v float64) error {
	if !common.IsFinite(v) || v <= 0 {
		return invalid(node, param, v, "> 0")
	}
	return nil
}

// checkNonNegative validates v >= 0 and finite.
func checkNonNegative(node, param string, v float64) error {
	if !common.IsFinite(v) || v < 0 {
		return invalid(node, param, v, ">= 0")
	}
	return nil
}
