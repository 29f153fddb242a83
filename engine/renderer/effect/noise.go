package effect

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
)

// NoiseParams are the tunables of the film grain stage.
type NoiseParams struct {
	// Premultiply multiplies the grain by the frame before blending.
	Premultiply bool
	// Opacity weights the grain layer, in [0, 1].
	Opacity   float64
	BlendMode BlendMode
}

// DefaultNoiseParams returns unpremultiplied grain at full opacity, blended SCREEN.
func DefaultNoiseParams() NoiseParams {
	return NoiseParams{Opacity: 1, BlendMode: BlendScreen}
}

// Noise overlays per-pixel grain that changes every frame.
type Noise struct {
	params NoiseParams
	time   float64
}

var (
	_ Node        = &Noise{}
	_ FrameFilter = &Noise{}
)

// NewNoise creates a noise stage with validated parameters.
func NewNoise(params NoiseParams) (*Noise, error) {
	n := &Noise{}
	if err := n.Configure(params); err != nil {
		return nil, err
	}
	return n, nil
}

// Configure replaces all parameters at once. On error nothing changes.
func (n *Noise) Configure(params NoiseParams) error {
	if err := checkRange("noise", "opacity", params.Opacity, 0, 1); err != nil {
		return err
	}
	if err := checkBlend("noise", params.BlendMode); err != nil {
		return err
	}
	n.params = params
	return nil
}

// Params returns the current parameters.
func (n *Noise) Params() NoiseParams {
	return n.params
}

func (n *Noise) Name() string {
	return "noise"
}

func (n *Noise) BlendMode() BlendMode {
	return n.params.BlendMode
}

// Advance moves the grain seed forward so consecutive frames get different grain.
func (n *Noise) Advance(deltaSeconds float64) error {
	if err := common.ValidateTimeStep(deltaSeconds); err != nil {
		return err
	}
	n.time += deltaSeconds
	return nil
}

func (n *Noise) Sample(coord common.Vec2) Sample {
	seed := common.Fract(n.time) + 1
	g := common.Hash12(common.Vec2{coord[0] * seed, coord[1] * seed})
	return Sample{
		Color:   common.Color{g, g, g},
		Opacity: n.params.Opacity,
	}
}

// Filter premultiplies the grain by the frame when requested.
func (n *Noise) Filter(_ common.Vec2, input common.Color, _ FrameSampler, s Sample) common.Color {
	if n.params.Premultiply {
		return input.Mul(s.Color)
	}
	return s.Color
}
