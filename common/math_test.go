package common

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSmoothstep(t *testing.T) {
	assert.Equal(t, 0.0, Smoothstep(0, 1, -1))
	assert.Equal(t, 1.0, Smoothstep(0, 1, 2))
	assert.InDelta(t, 0.5, Smoothstep(0, 1, 0.5), 1e-12)
	assert.Equal(t, 1.0, Smoothstep(0.5, 0.5, 0.5))
}

func TestFract(t *testing.T) {
	assert.InDelta(t, 0.25, Fract(3.25), 1e-12)
	assert.InDelta(t, 0.75, Fract(-0.25), 1e-12)
}

func TestHash12Deterministic(t *testing.T) {
	p := Vec2{0.3, 0.7}
	h := Hash12(p)
	assert.Equal(t, h, Hash12(p))
	assert.GreaterOrEqual(t, h, 0.0)
	assert.Less(t, h, 1.0)
}

func TestParseColor(t *testing.T) {
	c, err := ParseColor("#ffffff")
	require.NoError(t, err)
	assert.Equal(t, White, c)

	c, err = ParseColor("#000000")
	require.NoError(t, err)
	assert.Equal(t, Black, c)

	_, err = ParseColor("not-a-color")
	assert.Error(t, err)

	assert.Equal(t, "#ffffff", White.Hex())
}

func TestCoalesce(t *testing.T) {
	assert.Equal(t, "b", Coalesce("", "b", "c"))
	assert.Equal(t, 0, Coalesce(0, 0))
}

func TestValidateTimeStep(t *testing.T) {
	assert.NoError(t, ValidateTimeStep(0))
	assert.NoError(t, ValidateTimeStep(0.016))
	assert.ErrorIs(t, ValidateTimeStep(-1), ErrInvalidTimeStep)
	assert.ErrorIs(t, ValidateTimeStep(math.NaN()), ErrInvalidTimeStep)
	assert.ErrorIs(t, ValidateTimeStep(math.Inf(1)), ErrInvalidTimeStep)
}
