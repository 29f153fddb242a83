package effect

import (
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseBlendMode(t *testing.T) {
	for _, name := range []string{"DARKEN", "darken", " Darken "} {
		m, err := ParseBlendMode(name)
		require.NoError(t, err)
		assert.Equal(t, BlendDarken, m)
	}

	m, err := ParseBlendMode("soft-light")
	require.NoError(t, err)
	assert.Equal(t, BlendSoftLight, m)

	_, err = ParseBlendMode("HARD_LIGHT")
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBlendModeRoundTripText(t *testing.T) {
	for b := BlendSkip; b < blendModeCount; b++ {
		text, err := b.MarshalText()
		require.NoError(t, err)
		var back BlendMode
		require.NoError(t, back.UnmarshalText(text))
		assert.Equal(t, b, back)
	}
	_, err := BlendMode(-1).MarshalText()
	assert.ErrorIs(t, err, ErrInvalidParameter)
}

func TestBlend(t *testing.T) {
	base := common.Color{0.6, 0.2, 1}
	layer := common.Color{0.5, 0.5, 0.5}

	tests := []struct {
		mode BlendMode
		want common.Color
	}{
		{BlendSkip, base},
		{BlendNormal, layer},
		{BlendDarken, common.Color{0.5, 0.2, 0.5}},
		{BlendLighten, common.Color{0.6, 0.5, 1}},
		{BlendAdd, common.Color{1, 0.7, 1}},
		{BlendMultiply, common.Color{0.3, 0.1, 0.5}},
		{BlendScreen, common.Color{0.8, 0.6, 1}},
		{BlendSubtract, common.Color{0.1, 0, 0.5}},
		{BlendDifference, common.Color{0.1, 0.3, 0.5}},
		{BlendAverage, common.Color{0.55, 0.35, 0.75}},
	}
	for _, tt := range tests {
		t.Run(tt.mode.String(), func(t *testing.T) {
			got := tt.mode.Blend(base, layer, 1)
			for i := range got {
				assert.InDelta(t, tt.want[i], got[i], 1e-12)
			}
		})
	}
}

func TestBlendOpacity(t *testing.T) {
	base := common.Color{1, 1, 1}
	layer := common.Color{0, 0, 0}
	assert.Equal(t, base, BlendNormal.Blend(base, layer, 0))

	half := BlendNormal.Blend(base, layer, 0.5)
	assert.InDelta(t, 0.5, half[0], 1e-12)

	assert.Equal(t, layer, BlendNormal.Blend(base, layer, 3), "opacity is capped at 1")
}
