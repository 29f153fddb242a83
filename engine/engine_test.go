package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recorder appends its name to a shared log on every advance.
type recorder struct {
	name string
	log  *[]string
	fail error
}

func (r *recorder) Advance(float64) error {
	if r.fail != nil {
		return r.fail
	}
	*r.log = append(*r.log, r.name)
	return nil
}

func withClock(now func() time.Time) EngineBuilderOption {
	return func(e *engine) {
		e.now = now
	}
}

func TestTickAdvancesMaterialsBeforePipelines(t *testing.T) {
	var calls []string
	d, err := effect.NewDrunk(effect.DefaultDrunkParams())
	require.NoError(t, err)
	p, err := pipeline.NewPipeline("post", pipeline.WithNode(d))
	require.NoError(t, err)
	spy := &pipelineSpy{Pipeline: p, log: &calls}

	e := NewEngine(WithAdvancers(spy, &recorder{name: "material", log: &calls}))
	require.NoError(t, e.Tick(0.5))

	assert.Equal(t, []string{"material", "pipeline"}, calls)
	assert.InDelta(t, 1.0, d.Phase(), 1e-12)
	assert.Equal(t, uint64(1), e.FrameCount())
}

// pipelineSpy is a pipeline.Pipeline that also logs its advances.
type pipelineSpy struct {
	pipeline.Pipeline
	log *[]string
}

func (s *pipelineSpy) Advance(dt float64) error {
	*s.log = append(*s.log, "pipeline")
	return s.Pipeline.Advance(dt)
}

func TestTickRejectsInvalidStep(t *testing.T) {
	var calls []string
	rendered := false
	e := NewEngine(
		WithAdvancers(&recorder{name: "a", log: &calls}),
		WithRenderCallback(func(float64) { rendered = true }),
	)

	assert.ErrorIs(t, e.Tick(-1), common.ErrInvalidTimeStep)
	assert.Empty(t, calls)
	assert.False(t, rendered)
	assert.Equal(t, uint64(0), e.FrameCount())
}

func TestSkipFramePolicy(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	broken := &recorder{name: "broken", log: &calls, fail: boom}
	rendered := 0
	e := NewEngine(
		WithAdvancers(&recorder{name: "first", log: &calls}, broken, &recorder{name: "last", log: &calls}),
		WithRenderCallback(func(float64) { rendered++ }),
	)

	assert.ErrorIs(t, e.Tick(0.1), boom)
	assert.Equal(t, []string{"first"}, calls)
	assert.Equal(t, 1, rendered, "a skipped frame is still rendered")

	broken.fail = nil
	require.NoError(t, e.Tick(0.1))
	assert.Equal(t, []string{"first", "first", "broken", "last"}, calls)
}

func TestHaltPolicy(t *testing.T) {
	var calls []string
	boom := errors.New("boom")
	rendered := 0
	e := NewEngine(
		WithFailurePolicy(FailurePolicyHalt),
		WithAdvancers(&recorder{name: "broken", log: &calls, fail: boom}),
		WithRenderCallback(func(float64) { rendered++ }),
	)

	err := e.Tick(0.1)
	assert.ErrorIs(t, err, ErrHalted)
	assert.ErrorIs(t, err, boom)
	assert.ErrorIs(t, e.Tick(0.1), ErrHalted)
	assert.Equal(t, 0, rendered)
	assert.Equal(t, uint64(1), e.FrameCount())
}

func TestPauseFreezesTime(t *testing.T) {
	m, err := material.NewPortalMaterial(shader.NewHeadlessCompiler())
	require.NoError(t, err)
	e := NewEngine(WithAdvancers(m))

	require.NoError(t, e.Tick(0.25))
	e.Pause()
	assert.True(t, e.Paused())
	require.NoError(t, e.Tick(0.25))
	assert.Equal(t, 0.25, m.Time())

	e.Resume()
	require.NoError(t, e.Tick(0.25))
	assert.Equal(t, 0.5, m.Time())
	assert.Equal(t, uint64(3), e.FrameCount())
}

func TestRegisterUnregister(t *testing.T) {
	var calls []string
	a := &recorder{name: "a", log: &calls}
	e := NewEngine()

	require.NoError(t, e.Register(a))
	assert.ErrorIs(t, e.Register(a), ErrDuplicateAdvancer)
	require.NoError(t, e.Unregister(a))
	assert.ErrorIs(t, e.Unregister(a), ErrAdvancerNotFound)
	assert.Error(t, e.Register(nil))

	require.NoError(t, e.Tick(0.1))
	assert.Empty(t, calls)
}

func TestPortalAndDrunkOverFortyFrames(t *testing.T) {
	m, err := material.NewPortalMaterial(shader.NewHeadlessCompiler())
	require.NoError(t, err)
	d, err := effect.NewDrunk(effect.DefaultDrunkParams())
	require.NoError(t, err)
	p, err := pipeline.NewPipeline("post", pipeline.WithNode(d))
	require.NoError(t, err)

	e := NewEngine(WithAdvancers(m, p))
	for i := 0; i < 40; i++ {
		require.NoError(t, e.Tick(0.016))
	}

	assert.InDelta(t, 0.64, m.Time(), 1e-9)
	assert.InDelta(t, 1.28, d.Phase(), 1e-9)
}

func TestRenderCallbackMayUseEngine(t *testing.T) {
	var e Engine
	e = NewEngine(WithRenderCallback(func(float64) {
		if e.FrameCount() == 2 {
			e.Pause()
		}
	}))
	require.NoError(t, e.Tick(0.1))
	require.NoError(t, e.Tick(0.1))
	assert.True(t, e.Paused())
}

func TestRunStopsOnContextCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	frames := 0
	e := NewEngine(
		WithTickRate(1000),
		WithRenderCallback(func(float64) {
			frames++
			if frames == 3 {
				cancel()
			}
		}),
	)
	assert.ErrorIs(t, e.Run(ctx), context.Canceled)
	assert.GreaterOrEqual(t, frames, 3)
}

func TestRunStopsOnQuit(t *testing.T) {
	var e Engine
	e = NewEngine(WithTickRate(1000), WithRenderCallback(func(float64) { e.Quit() }))
	assert.NoError(t, e.Run(context.Background()))
	e.Quit()
}

func TestRunReturnsHaltError(t *testing.T) {
	var calls []string
	e := NewEngine(
		WithTickRate(1000),
		WithFailurePolicy(FailurePolicyHalt),
		WithAdvancers(&recorder{name: "broken", log: &calls, fail: errors.New("boom")}),
	)
	assert.ErrorIs(t, e.Run(context.Background()), ErrHalted)
}

func TestRunTickerUsesClockDelta(t *testing.T) {
	clock := time.Unix(0, 0)
	var deltas []float64
	var e Engine
	e = NewEngine(
		WithTickRate(1000),
		withClock(func() time.Time {
			clock = clock.Add(20 * time.Millisecond)
			return clock
		}),
		WithRenderCallback(func(dt float64) {
			deltas = append(deltas, dt)
			if len(deltas) >= 2 {
				e.Quit()
			}
		}),
	)
	require.NoError(t, e.Run(context.Background()))
	require.GreaterOrEqual(t, len(deltas), 2)
	assert.InDelta(t, 0.02, deltas[1], 1e-9)
}

func TestFailurePolicyString(t *testing.T) {
	assert.Equal(t, "skip-frame", FailurePolicySkipFrame.String())
	assert.Equal(t, "halt", FailurePolicyHalt.String())
	assert.Equal(t, "FailurePolicy(9)", FailurePolicy(9).String())
}
