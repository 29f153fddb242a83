package effect

import "github.com/Carmen-Shannon/oxy-fx/common"

// VignetteParams are the tunables of the vignette stage.
type VignetteParams struct {
	// Offset scales the distance from the center, >= 0. Larger values pull the darkening inward.
	Offset float64
	// Darkness is how dark the corners get, in [0, 1].
	Darkness  float64
	BlendMode BlendMode
}

// DefaultVignetteParams returns offset 0.5, darkness 0.5, blended NORMAL.
func DefaultVignetteParams() VignetteParams {
	return VignetteParams{Offset: 0.5, Darkness: 0.5, BlendMode: BlendNormal}
}

// Vignette darkens the frame towards the edges.
type Vignette struct {
	params VignetteParams
}

var _ Node = &Vignette{}

// NewVignette creates a vignette stage with validated parameters.
func NewVignette(params VignetteParams) (*Vignette, error) {
	v := &Vignette{}
	if err := v.Configure(params); err != nil {
		return nil, err
	}
	return v, nil
}

// Configure replaces all parameters at once. On error nothing changes.
func (v *Vignette) Configure(params VignetteParams) error {
	if err := checkNonNegative("vignette", "offset", params.Offset); err != nil {
		return err
	}
	if err := checkRange("vignette", "darkness", params.Darkness, 0, 1); err != nil {
		return err
	}
	if err := checkBlend("vignette", params.BlendMode); err != nil {
		return err
	}
	v.params = params
	return nil
}

// Params returns the current parameters.
func (v *Vignette) Params() VignetteParams {
	return v.params
}

func (v *Vignette) Name() string {
	return "vignette"
}

func (v *Vignette) BlendMode() BlendMode {
	return v.params.BlendMode
}

// Advance validates the step; the vignette has no time dependent state.
func (v *Vignette) Advance(deltaSeconds float64) error {
	return common.ValidateTimeStep(deltaSeconds)
}

func (v *Vignette) Sample(coord common.Vec2) Sample {
	c := coord.Sub(common.Vec2{0.5, 0.5})
	c = common.Vec2{c[0] * v.params.Offset, c[1] * v.params.Offset}
	shade := 1 - v.params.Darkness
	return Sample{
		Color:   common.Color{shade, shade, shade},
		Opacity: common.Clamp(c[0]*c[0]+c[1]*c[1], 0, 1),
	}
}
