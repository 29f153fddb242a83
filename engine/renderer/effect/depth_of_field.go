package effect

import (
	"math"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// dofTaps is the number of ring samples gathered around each pixel.
const dofTaps = 8

// dofRadius converts a full circle of confusion at bokeh scale 1 into uv units.
const dofRadius = 0.002

// DepthSource returns the normalized [0, 1] scene depth at a screen coordinate.
type DepthSource func(uv common.Vec2) float64

// DepthOfFieldParams are the tunables of the depth of field stage.
type DepthOfFieldParams struct {
	// FocusDistance is the normalized depth that is perfectly sharp, in [0, 1].
	FocusDistance float64
	// FocalLength is the depth range over which blur ramps up to full, > 0.
	FocalLength float64
	// BokehScale scales the blur radius, >= 0.
	BokehScale float64
	BlendMode  BlendMode
}

// DefaultDepthOfFieldParams returns focus 0, focal length 0.1, bokeh scale 1, blended NORMAL.
func DefaultDepthOfFieldParams() DepthOfFieldParams {
	return DepthOfFieldParams{FocusDistance: 0, FocalLength: 0.1, BokehScale: 1, BlendMode: BlendNormal}
}

// DepthOfField blurs pixels by their distance from the focus plane.
// Without a depth source every pixel is considered in focus.
type DepthOfField struct {
	params DepthOfFieldParams
	depth  DepthSource
}

var (
	_ Node        = &DepthOfField{}
	_ FrameFilter = &DepthOfField{}
)

// NewDepthOfField creates a depth of field stage with validated parameters.
func NewDepthOfField(params DepthOfFieldParams) (*DepthOfField, error) {
	d := &DepthOfField{}
	if err := d.Configure(params); err != nil {
		return nil, err
	}
	return d, nil
}

// Configure replaces all parameters at once. On error nothing changes.
func (d *DepthOfField) Configure(params DepthOfFieldParams) error {
	if err := checkRange("depthOfField", "focusDistance", params.FocusDistance, 0, 1); err != nil {
		return err
	}
	if err := checkPositive("depthOfField", "focalLength", params.FocalLength); err != nil {
		return err
	}
	if err := checkNonNegative("depthOfField", "bokehScale", params.BokehScale); err != nil {
		return err
	}
	if err := checkBlend("depthOfField", params.BlendMode); err != nil {
		return err
	}
	d.params = params
	return nil
}

// SetDepthSource attaches the scene depth the circle of confusion is computed from.
func (d *DepthOfField) SetDepthSource(depth DepthSource) {
	d.depth = depth
}

// Params returns the current parameters.
func (d *DepthOfField) Params() DepthOfFieldParams {
	return d.params
}

func (d *DepthOfField) Name() string {
	return "depthOfField"
}

func (d *DepthOfField) BlendMode() BlendMode {
	return d.params.BlendMode
}

// Advance validates the step; depth of field has no time dependent state.
func (d *DepthOfField) Advance(deltaSeconds float64) error {
	return common.ValidateTimeStep(deltaSeconds)
}

// CircleOfConfusion returns the blur amount in [0, 1] at coord.
func (d *DepthOfField) CircleOfConfusion(coord common.Vec2) float64 {
	if d.depth == nil {
		return 0
	}
	dist := math.Abs(d.depth(coord) - d.params.FocusDistance)
	return common.Smoothstep(0, d.params.FocalLength, dist)
}

func (d *DepthOfField) Sample(coord common.Vec2) Sample {
	coc := d.CircleOfConfusion(coord)
	if coc == 0 {
		return Sample{}
	}
	return Sample{Opacity: 1}
}

// Filter averages a ring of frame taps whose radius follows the circle of confusion.
func (d *DepthOfField) Filter(uv common.Vec2, input common.Color, frame FrameSampler, s Sample) common.Color {
	coc := d.CircleOfConfusion(uv)
	radius := coc * d.params.BokehScale * dofRadius
	if radius == 0 || frame == nil {
		return input
	}
	sum := input
	for i := 0; i < dofTaps; i++ {
		a := 2 * math.Pi * float64(i) / dofTaps
		tap := frame(uv.Add(common.Vec2{math.Cos(a) * radius, math.Sin(a) * radius}))
		sum = common.Color{sum[0] + tap[0], sum[1] + tap[1], sum[2] + tap[2]}
	}
	return sum.Scale(1.0 / (dofTaps + 1))
}
