package effect

import (
	"math"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDrunkDefaults(t *testing.T) {
	d, err := NewDrunk(DefaultDrunkParams())
	require.NoError(t, err)
	assert.Equal(t, "drunk", d.Name())
	assert.Equal(t, BlendDarken, d.BlendMode())
	assert.Equal(t, 0.0, d.Phase())
}

func TestDrunkConfigureRejects(t *testing.T) {
	tests := []struct {
		name   string
		params DrunkParams
	}{
		{"zero frequency", DrunkParams{Frequency: 0, Amplitude: 0.5, BlendMode: BlendNormal}},
		{"negative frequency", DrunkParams{Frequency: -1, Amplitude: 0.5, BlendMode: BlendNormal}},
		{"nan frequency", DrunkParams{Frequency: math.NaN(), Amplitude: 0.5, BlendMode: BlendNormal}},
		{"amplitude above bound", DrunkParams{Frequency: 2, Amplitude: 1.5, BlendMode: BlendNormal}},
		{"negative amplitude", DrunkParams{Frequency: 2, Amplitude: -0.1, BlendMode: BlendNormal}},
		{"unknown blend mode", DrunkParams{Frequency: 2, Amplitude: 0.5, BlendMode: BlendMode(99)}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d, err := NewDrunk(DrunkParams{Frequency: 3, Amplitude: 0.2, BlendMode: BlendLighten})
			require.NoError(t, err)
			require.NoError(t, d.Advance(1))

			err = d.Configure(tt.params)
			assert.ErrorIs(t, err, ErrInvalidParameter)
			assert.Equal(t, DrunkParams{Frequency: 3, Amplitude: 0.2, BlendMode: BlendLighten}, d.Params())
			assert.Equal(t, 3.0, d.Phase())
		})
	}
}

func TestDrunkAdvance(t *testing.T) {
	d, err := NewDrunk(DrunkParams{Frequency: 2, Amplitude: 0.1, BlendMode: BlendNormal})
	require.NoError(t, err)

	require.NoError(t, d.Advance(0.5))
	assert.InDelta(t, 1.0, d.Phase(), 1e-12)

	assert.ErrorIs(t, d.Advance(-1), common.ErrInvalidTimeStep)
	assert.InDelta(t, 1.0, d.Phase(), 1e-12)

	require.NoError(t, d.Advance(0))
	assert.InDelta(t, 1.0, d.Phase(), 1e-12)
}

func TestDrunkPhaseIsNotWrapped(t *testing.T) {
	d, err := NewDrunk(DrunkParams{Frequency: 20, Amplitude: 0.1, BlendMode: BlendNormal})
	require.NoError(t, err)
	for i := 0; i < 100; i++ {
		require.NoError(t, d.Advance(0.1))
	}
	assert.InDelta(t, 200.0, d.Phase(), 1e-9)
	assert.Greater(t, d.Phase(), 2*math.Pi)
}

func TestDrunkSampleIsPure(t *testing.T) {
	d, err := NewDrunk(DrunkParams{Frequency: 2, Amplitude: 0.1, BlendMode: BlendNormal})
	require.NoError(t, err)
	require.NoError(t, d.Advance(0.5))

	coord := common.Vec2{0.25, 0.75}
	first := d.Sample(coord)
	second := d.Sample(coord)
	assert.Equal(t, first, second)
	assert.InDelta(t, 1.0, d.Phase(), 1e-12)

	want := math.Sin(0.25*2+1.0) * 0.1
	assert.InDelta(t, want, first.Offset[1], 1e-12)
	assert.Equal(t, 0.0, first.Offset[0])
	assert.Equal(t, DrunkTint, first.Color)

	other, err := NewDrunk(DrunkParams{Frequency: 2, Amplitude: 0.1, BlendMode: BlendNormal})
	require.NoError(t, err)
	require.NoError(t, other.Advance(0.5))
	assert.Equal(t, first, other.Sample(coord), "same inputs give the same output")
}

func TestDrunkReset(t *testing.T) {
	d, err := NewDrunk(DefaultDrunkParams())
	require.NoError(t, err)
	require.NoError(t, d.Advance(3))
	d.Reset()
	assert.Equal(t, 0.0, d.Phase())
}
