package material

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// failingCompiler rejects every fragment stage, the way a GPU driver reports a syntax error.
type failingCompiler struct{}

func (failingCompiler) Compile(key, _, _ string) (shader.Program, error) {
	return nil, &shader.CompilationError{Key: key, Stage: shader.StageFragment, Err: errors.New("unexpected token")}
}

// countingProgram records Release calls.
type countingProgram struct {
	released int
}

func (p *countingProgram) Key() string                { return "counting" }
func (p *countingProgram) Source(shader.Stage) string { return "" }
func (p *countingProgram) Release()                   { p.released++ }

type countingCompiler struct {
	program *countingProgram
}

func (c countingCompiler) Compile(string, string, string) (shader.Program, error) {
	return c.program, nil
}

func newPortalStops(t *testing.T, options ...MaterialBuilderOption) Material {
	t.Helper()
	opts := append([]MaterialBuilderOption{
		WithColorStops("uColorStart", "uColorEnd", common.White, common.Black),
	}, options...)
	m, err := NewTimeDrivenMaterial(shader.NewHeadlessCompiler(), "vs", "fs", opts...)
	require.NoError(t, err)
	return m
}

func TestNewRegistersTimeAtZero(t *testing.T) {
	m := newPortalStops(t)

	v, err := m.Uniform(DefaultTimeUniform)
	require.NoError(t, err)
	assert.Equal(t, uniform.TypeFloat, v.Type())
	assert.Equal(t, 0.0, v.AsFloat())
	assert.NotNil(t, m.Handle())
}

func TestDeclaredTimeDefaultIsOverridden(t *testing.T) {
	m, err := NewTimeDrivenMaterial(shader.NewHeadlessCompiler(), "vs", "fs",
		WithUniform(DefaultTimeUniform, uniform.Float(12)))
	require.NoError(t, err)
	assert.Equal(t, 0.0, m.Time())
	v, _ := m.Uniform(DefaultTimeUniform)
	assert.Equal(t, 0.0, v.AsFloat())
}

func TestDeclaredTimeWithWrongTypeFails(t *testing.T) {
	_, err := NewTimeDrivenMaterial(shader.NewHeadlessCompiler(), "vs", "fs",
		WithUniform(DefaultTimeUniform, uniform.Color(common.White)))
	assert.ErrorIs(t, err, uniform.ErrDuplicateUniform)
}

func TestCompilationErrorAbortsCreation(t *testing.T) {
	m, err := NewTimeDrivenMaterial(failingCompiler{}, "vs", "broken")
	assert.Nil(t, m)
	assert.ErrorIs(t, err, shader.ErrShaderCompilation)

	var ce *shader.CompilationError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, shader.StageFragment, ce.Stage)
}

func TestRegistrationFailureReleasesProgram(t *testing.T) {
	p := &countingProgram{}
	_, err := NewTimeDrivenMaterial(countingCompiler{program: p}, "vs", "fs",
		WithUniform("a", uniform.Float(0)),
		WithUniform("a", uniform.Vec2(common.Vec2{})))
	assert.ErrorIs(t, err, uniform.ErrDuplicateUniform)
	assert.Equal(t, 1, p.released)
}

func TestAdvanceAccumulatesRunningSum(t *testing.T) {
	m := newPortalStops(t)
	steps := []float64{0.016, 0.0, 0.033, 0.25, 0.001}

	sum, prev := 0.0, 0.0
	for _, dt := range steps {
		require.NoError(t, m.Advance(dt))
		sum += dt
		assert.InDelta(t, sum, m.Time(), 1e-12)
		assert.GreaterOrEqual(t, m.Time(), prev)
		prev = m.Time()
	}
}

func TestAdvanceOneSecondLeavesColorsUntouched(t *testing.T) {
	m := newPortalStops(t)
	for i := 0; i < 40; i++ {
		require.NoError(t, m.Advance(0.016))
	}

	v, err := m.Uniform(DefaultTimeUniform)
	require.NoError(t, err)
	assert.InDelta(t, 0.64, v.AsFloat(), 1e-9)

	start, end, err := m.ColorStops()
	require.NoError(t, err)
	assert.Equal(t, common.White, start)
	assert.Equal(t, common.Black, end)
}

func TestAdvanceNegativeFailsAtomically(t *testing.T) {
	m := newPortalStops(t)
	require.NoError(t, m.Advance(0.5))

	err := m.Advance(-1)
	assert.ErrorIs(t, err, common.ErrInvalidTimeStep)
	assert.Equal(t, 0.5, m.Time())
	v, _ := m.Uniform(DefaultTimeUniform)
	assert.Equal(t, 0.5, v.AsFloat())
}

func TestReset(t *testing.T) {
	m := newPortalStops(t)
	require.NoError(t, m.Advance(2))
	m.Reset()
	assert.Equal(t, 0.0, m.Time())
}

func TestSetColorStops(t *testing.T) {
	m := newPortalStops(t)
	red := common.Color{1, 0, 0}
	blue := common.Color{0, 0, 1}
	require.NoError(t, m.SetColorStops(red, blue))

	start, end, err := m.ColorStops()
	require.NoError(t, err)
	assert.Equal(t, red, start)
	assert.Equal(t, blue, end)
}

func TestSetColorStopsWithoutStops(t *testing.T) {
	m, err := NewTimeDrivenMaterial(shader.NewHeadlessCompiler(), "vs", "fs")
	require.NoError(t, err)
	assert.ErrorIs(t, m.SetColorStops(common.White, common.Black), uniform.ErrTypeMismatch)
}

func TestSetUniformRejectsTime(t *testing.T) {
	m := newPortalStops(t)
	assert.ErrorIs(t, m.SetUniform(DefaultTimeUniform, uniform.Float(9)), ErrReservedUniform)
	assert.ErrorIs(t, m.SetUniform("uColorStart", uniform.Float(9)), uniform.ErrTypeMismatch)
	assert.ErrorIs(t, m.SetUniform("nope", uniform.Float(9)), uniform.ErrUnknownUniform)
	assert.NoError(t, m.SetUniform("uColorStart", uniform.Color(common.Black)))
}

func TestStagedWriteData(t *testing.T) {
	m := newPortalStops(t)
	assert.Nil(t, m.StagedWriteData(), "no provider attached")

	provider := bind_group_provider.NewBindGroupProvider("portal")
	m.SetBindGroupProvider(provider)

	writes := m.StagedWriteData()
	require.Len(t, writes, 1)
	assert.Equal(t, provider, writes[0].Provider)
	assert.Len(t, writes[0].Data, 48)

	assert.Nil(t, m.StagedWriteData(), "nothing changed since the last drain")

	require.NoError(t, m.Advance(0))
	assert.Nil(t, m.StagedWriteData(), "a zero step is a no-op")

	require.NoError(t, m.Advance(0.1))
	assert.Len(t, m.StagedWriteData(), 1)
}

func TestDispose(t *testing.T) {
	p := &countingProgram{}
	m, err := NewTimeDrivenMaterial(countingCompiler{program: p}, "vs", "fs")
	require.NoError(t, err)

	m.Dispose()
	m.Dispose()
	assert.Equal(t, 1, p.released)
	assert.Nil(t, m.Handle())
	assert.ErrorIs(t, m.Advance(0.1), ErrDisposed)
	assert.ErrorIs(t, m.SetColorStops(common.White, common.Black), ErrDisposed)
	_, err = m.Uniform(DefaultTimeUniform)
	assert.ErrorIs(t, err, uniform.ErrUnknownUniform)
}

func TestPortalMaterialMatchesGPULayout(t *testing.T) {
	m, err := NewPortalMaterial(shader.NewHeadlessCompiler())
	require.NoError(t, err)
	assert.Equal(t, "portal", m.Name())
	assert.Equal(t, PortalTimeUniform, m.TimeUniform())
	assert.Contains(t, m.Handle().Source(shader.StageFragment), "struct PortalParams")

	require.NoError(t, m.Advance(1.25))
	m.SetBindGroupProvider(bind_group_provider.NewBindGroupProvider("portal"))
	writes := m.StagedWriteData()
	require.Len(t, writes, 1)

	params := GPUPortalParams{
		Time:       1.25,
		ColorStart: [3]float32{1, 1, 1},
		ColorEnd:   [3]float32{0, 0, 0},
	}
	assert.Equal(t, params.Size(), len(writes[0].Data))
	assert.Equal(t, params.Marshal(), writes[0].Data)

	_, size := m.Layout()
	assert.Equal(t, 48, size)
}
