package effect

import (
	"math"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// DrunkTint is the constant layer color of the drunk stage; blended with DARKEN it tints the bright areas.
var DrunkTint = common.Color{0.8, 1.0, 0.5}

// Amplitude bounds of the drunk stage.
const (
	DrunkMinAmplitude = 0.0
	DrunkMaxAmplitude = 1.0
)

// DrunkParams are the tunables of the drunk distortion.
type DrunkParams struct {
	// Frequency is the number of wave crests per uv unit and the phase speed, must be > 0.
	Frequency float64
	// Amplitude is the vertical displacement in uv units, in [DrunkMinAmplitude, DrunkMaxAmplitude].
	Amplitude float64
	// BlendMode combines the tint with the frame.
	BlendMode BlendMode
}

// DefaultDrunkParams returns frequency 2, amplitude 0.1, blended with DARKEN.
func DefaultDrunkParams() DrunkParams {
	return DrunkParams{Frequency: 2, Amplitude: 0.1, BlendMode: BlendDarken}
}

// Drunk is an oscillating vertical uv distortion: every column is shifted by a sine wave that
// travels along x as the phase advances.
type Drunk struct {
	params DrunkParams
	phase  float64
}

var _ Node = &Drunk{}

// NewDrunk creates a drunk stage with validated parameters.
//
// Parameters:
//   - params: the initial parameters
//
// Returns:
//   - *Drunk: the new stage
//   - error: ErrInvalidParameter if params are out of range
func NewDrunk(params DrunkParams) (*Drunk, error) {
	d := &Drunk{}
	if err := d.Configure(params); err != nil {
		return nil, err
	}
	return d, nil
}

// Configure replaces all parameters at once. On error nothing changes.
//
// Parameters:
//   - params: the new parameters
//
// Returns:
//   - error: ErrInvalidParameter if frequency is not > 0, amplitude is outside its bounds or the blend mode is unknown
func (d *Drunk) Configure(params DrunkParams) error {
	if err := checkPositive("drunk", "frequency", params.Frequency); err != nil {
		return err
	}
	if err := checkRange("drunk", "amplitude", params.Amplitude, DrunkMinAmplitude, DrunkMaxAmplitude); err != nil {
		return err
	}
	if err := checkBlend("drunk", params.BlendMode); err != nil {
		return err
	}
	d.params = params
	return nil
}

// Params returns the current parameters.
func (d *Drunk) Params() DrunkParams {
	return d.params
}

// Phase returns the accumulated oscillator phase in radians. It grows without wrapping.
func (d *Drunk) Phase() float64 {
	return d.phase
}

// Reset rewinds the phase to zero.
func (d *Drunk) Reset() {
	d.phase = 0
}

func (d *Drunk) Name() string {
	return "drunk"
}

func (d *Drunk) BlendMode() BlendMode {
	return d.params.BlendMode
}

// Advance adds frequency*deltaSeconds to the phase. The phase is deliberately left unwrapped so the
// wave keeps travelling smoothly; the sine in Sample handles any magnitude.
func (d *Drunk) Advance(deltaSeconds float64) error {
	if err := common.ValidateTimeStep(deltaSeconds); err != nil {
		return err
	}
	d.phase += d.params.Frequency * deltaSeconds
	return nil
}

// Sample displaces the coordinate vertically by sin(x*frequency + phase) * amplitude.
func (d *Drunk) Sample(coord common.Vec2) Sample {
	dy := math.Sin(coord[0]*d.params.Frequency+d.phase) * d.params.Amplitude
	return Sample{
		Offset:  common.Vec2{0, dy},
		Color:   DrunkTint,
		Opacity: 1,
	}
}
