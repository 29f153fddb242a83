package effect

import "github.com/Carmen-Shannon/oxy-fx/common"

// BloomParams are the tunables of the bloom stage.
type BloomParams struct {
	// Intensity scales the glow, >= 0.
	Intensity float64
	// LuminanceThreshold is the luminance above which pixels glow, in [0, 1].
	LuminanceThreshold float64
	// LuminanceSmoothing widens the threshold into a soft ramp, in [0, 1].
	LuminanceSmoothing float64
	BlendMode          BlendMode
}

// DefaultBloomParams returns intensity 1, threshold 0.9, smoothing 0.025, blended ADD.
func DefaultBloomParams() BloomParams {
	return BloomParams{Intensity: 1, LuminanceThreshold: 0.9, LuminanceSmoothing: 0.025, BlendMode: BlendAdd}
}

// Bloom adds a glow proportional to how far each pixel's luminance exceeds the threshold.
type Bloom struct {
	params BloomParams
}

var (
	_ Node        = &Bloom{}
	_ FrameFilter = &Bloom{}
)

// NewBloom creates a bloom stage with validated parameters.
func NewBloom(params BloomParams) (*Bloom, error) {
	b := &Bloom{}
	if err := b.Configure(params); err != nil {
		return nil, err
	}
	return b, nil
}

// Configure replaces all parameters at once. On error nothing changes.
func (b *Bloom) Configure(params BloomParams) error {
	if err := checkNonNegative("bloom", "intensity", params.Intensity); err != nil {
		return err
	}
	if err := checkRange("bloom", "luminanceThreshold", params.LuminanceThreshold, 0, 1); err != nil {
		return err
	}
	if err := checkRange("bloom", "luminanceSmoothing", params.LuminanceSmoothing, 0, 1); err != nil {
		return err
	}
	if err := checkBlend("bloom", params.BlendMode); err != nil {
		return err
	}
	b.params = params
	return nil
}

// Params returns the current parameters.
func (b *Bloom) Params() BloomParams {
	return b.params
}

func (b *Bloom) Name() string {
	return "bloom"
}

func (b *Bloom) BlendMode() BlendMode {
	return b.params.BlendMode
}

// Advance validates the step; bloom has no time dependent state.
func (b *Bloom) Advance(deltaSeconds float64) error {
	return common.ValidateTimeStep(deltaSeconds)
}

func (b *Bloom) Sample(common.Vec2) Sample {
	return Sample{Opacity: 1}
}

// Filter keeps only the part of the input above the luminance threshold, scaled by intensity.
func (b *Bloom) Filter(_ common.Vec2, input common.Color, _ FrameSampler, _ Sample) common.Color {
	th := b.params.LuminanceThreshold
	w := common.Smoothstep(th, th+b.params.LuminanceSmoothing, input.Luminance())
	return input.Scale(w * b.params.Intensity)
}
