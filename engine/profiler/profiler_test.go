package profiler

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeClock is advanced by hand so intervals are exact.
type fakeClock struct {
	t time.Time
}

func (c *fakeClock) now() time.Time { return c.t }

func newTestProfiler() (*Profiler, *fakeClock) {
	clock := &fakeClock{t: time.Unix(0, 0)}
	p := NewProfiler()
	p.now = clock.now
	p.lastTime = clock.t
	p.SetLogging(false)
	return p, clock
}

func TestTickRollsOverAfterInterval(t *testing.T) {
	p, clock := newTestProfiler()

	for i := 0; i < 59; i++ {
		clock.t = clock.t.Add(time.Second / 60)
		p.RecordAdvance(time.Millisecond)
		assert.False(t, p.Tick())
	}
	p.RecordAdvance(3 * time.Millisecond)
	p.RecordSkip()
	// time.Second/60 truncates, so the last frame closes the full second.
	clock.t = clock.t.Add(time.Second - 59*(time.Second/60))
	require.True(t, p.Tick())

	stats := p.Stats()
	assert.Equal(t, 60, stats.Frames)
	assert.Equal(t, 1, stats.Skipped)
	assert.InDelta(t, 60.0, stats.FPS, 0.5)
	assert.Equal(t, 3*time.Millisecond, stats.AdvanceMax)
	assert.Equal(t, (59*time.Millisecond+3*time.Millisecond)/60, stats.AdvanceAvg)
}

func TestCountersResetAfterRollover(t *testing.T) {
	p, clock := newTestProfiler()
	p.SetUpdateInterval(100 * time.Millisecond)
	p.RecordSkip()
	clock.t = clock.t.Add(100 * time.Millisecond)
	require.True(t, p.Tick())

	clock.t = clock.t.Add(100 * time.Millisecond)
	require.True(t, p.Tick())
	assert.Equal(t, 0, p.Stats().Skipped)
	assert.Equal(t, time.Duration(0), p.Stats().AdvanceMax)
}

func TestSetUpdateIntervalIgnoresNonPositive(t *testing.T) {
	p, _ := newTestProfiler()
	p.SetUpdateInterval(0)
	assert.Equal(t, time.Second, p.updateInterval)
}
