package effect

import (
	"fmt"
	"math"
	"math/rand"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
)

// GlitchMode selects when the glitch stage is active.
type GlitchMode int

const (
	// GlitchDisabled never glitches.
	GlitchDisabled GlitchMode = iota
	// GlitchSporadic glitches for a random duration after a random delay, repeatedly.
	GlitchSporadic
	// GlitchConstantMild glitches continuously at the minimum strength.
	GlitchConstantMild
	// GlitchConstantWild glitches continuously at the maximum strength.
	GlitchConstantWild
)

var glitchModeNames = [...]string{"DISABLED", "SPORADIC", "CONSTANT_MILD", "CONSTANT_WILD"}

func (m GlitchMode) String() string {
	if m < 0 || int(m) >= len(glitchModeNames) {
		return fmt.Sprintf("GlitchMode(%d)", int(m))
	}
	return glitchModeNames[m]
}

// ParseGlitchMode resolves a glitch mode by name, case-insensitively.
func ParseGlitchMode(name string) (GlitchMode, error) {
	key := strings.ToUpper(strings.ReplaceAll(strings.TrimSpace(name), "-", "_"))
	for i, n := range glitchModeNames {
		if n == key {
			return GlitchMode(i), nil
		}
	}
	return 0, fmt.Errorf("glitch mode %q: %w", name, ErrInvalidParameter)
}

// glitchBands is the number of horizontal bands that shift independently.
const glitchBands = 24

// glitchShift is the maximum horizontal shift in uv units at strength 1.
const glitchShift = 0.1

// GlitchParams are the tunables of the glitch stage. Ranges are [min, max] pairs.
type GlitchParams struct {
	// Delay is the pause between sporadic glitches in seconds.
	Delay [2]float64
	// Duration is the length of a sporadic glitch in seconds.
	Duration [2]float64
	// Strength is the displacement strength, each bound in [0, 1].
	Strength [2]float64
	Mode     GlitchMode
	// Seed makes the sporadic schedule reproducible.
	Seed      int64
	BlendMode BlendMode
}

// DefaultGlitchParams returns the sporadic defaults: delay 1.5-3.5s, duration 0.6-1s, strength 0.3-1.
func DefaultGlitchParams() GlitchParams {
	return GlitchParams{
		Delay:     [2]float64{1.5, 3.5},
		Duration:  [2]float64{0.6, 1.0},
		Strength:  [2]float64{0.3, 1.0},
		Mode:      GlitchSporadic,
		Seed:      1,
		BlendMode: BlendNormal,
	}
}

// Glitch shifts horizontal bands of the frame sideways while active.
type Glitch struct {
	params GlitchParams
	rng    *rand.Rand

	time        float64
	nextTrigger float64
	activeUntil float64
	active      bool
	strength    float64
	bandSeed    float64
}

var _ Node = &Glitch{}

// NewGlitch creates a glitch stage with validated parameters.
func NewGlitch(params GlitchParams) (*Glitch, error) {
	g := &Glitch{}
	if err := g.Configure(params); err != nil {
		return nil, err
	}
	return g, nil
}

func checkSpan(param string, span [2]float64, lo, hi float64) error {
	if err := checkRange("glitch", param+"[0]", span[0], lo, hi); err != nil {
		return err
	}
	if err := checkRange("glitch", param+"[1]", span[1], lo, hi); err != nil {
		return err
	}
	if span[0] > span[1] {
		return invalid("glitch", param, span, "min <= max")
	}
	return nil
}

// Configure replaces all parameters at once and restarts the schedule. On error nothing changes.
func (g *Glitch) Configure(params GlitchParams) error {
	if err := checkSpan("delay", params.Delay, 0, math.MaxFloat64); err != nil {
		return err
	}
	if err := checkSpan("duration", params.Duration, 0, math.MaxFloat64); err != nil {
		return err
	}
	if err := checkSpan("strength", params.Strength, 0, 1); err != nil {
		return err
	}
	if params.Mode < GlitchDisabled || params.Mode > GlitchConstantWild {
		return invalid("glitch", "mode", params.Mode, "a known glitch mode")
	}
	if err := checkBlend("glitch", params.BlendMode); err != nil {
		return err
	}
	g.params = params
	g.rng = rand.New(rand.NewSource(params.Seed))
	g.active = false
	g.nextTrigger = g.time + g.between(params.Delay)
	return nil
}

// between draws a uniform value from a [min, max] span.
func (g *Glitch) between(span [2]float64) float64 {
	return span[0] + g.rng.Float64()*(span[1]-span[0])
}

// Params returns the current parameters.
func (g *Glitch) Params() GlitchParams {
	return g.params
}

// Active reports whether the glitch is currently displacing the frame.
func (g *Glitch) Active() bool {
	return g.active
}

func (g *Glitch) Name() string {
	return "glitch"
}

func (g *Glitch) BlendMode() BlendMode {
	return g.params.BlendMode
}

// Advance moves the glitch schedule forward and reseeds the band pattern while active.
func (g *Glitch) Advance(deltaSeconds float64) error {
	if err := common.ValidateTimeStep(deltaSeconds); err != nil {
		return err
	}
	g.time += deltaSeconds

	switch g.params.Mode {
	case GlitchDisabled:
		g.active = false
	case GlitchConstantMild:
		g.active = true
		g.strength = g.params.Strength[0]
	case GlitchConstantWild:
		g.active = true
		g.strength = g.params.Strength[1]
	case GlitchSporadic:
		switch {
		case !g.active && g.time >= g.nextTrigger:
			g.active = true
			g.activeUntil = g.time + g.between(g.params.Duration)
			g.strength = g.between(g.params.Strength)
		case g.active && g.time >= g.activeUntil:
			g.active = false
			g.nextTrigger = g.time + g.between(g.params.Delay)
		}
	}

	if g.active && deltaSeconds > 0 {
		g.bandSeed = g.rng.Float64()
	}
	return nil
}

// Sample shifts the coordinate's band horizontally while active.
func (g *Glitch) Sample(coord common.Vec2) Sample {
	if !g.active {
		return Sample{}
	}
	band := math.Floor(coord[1] * glitchBands)
	shift := (common.Hash12(common.Vec2{band, g.bandSeed}) - 0.5) * 2 * g.strength * glitchShift
	return Sample{Offset: common.Vec2{shift, 0}}
}
