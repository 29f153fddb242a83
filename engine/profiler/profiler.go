package profiler

import (
	"log"
	"runtime"
	"time"
)

// FrameStats summarizes the frames seen during one reporting interval.
type FrameStats struct {
	Frames  int
	Skipped int
	FPS     float64

	// Time spent advancing materials and pipelines per frame.
	AdvanceAvg time.Duration
	AdvanceMax time.Duration

	HeapMB float64
	NumGC  uint32
}

// Profiler tracks frame rate, advance cost and memory statistics for the frame scheduler.
// Outputs stats to the log at a configurable interval.
type Profiler struct {
	now            func() time.Time
	lastTime       time.Time
	updateInterval time.Duration

	frameCount   int
	skippedCount int
	advanceTotal time.Duration
	advanceMax   time.Duration

	memStats runtime.MemStats
	last     FrameStats
	logging  bool
}

// NewProfiler creates a new Profiler with default settings.
// Update interval defaults to 1 second and logging is on.
//
// Returns:
//   - *Profiler: the newly created profiler instance
func NewProfiler() *Profiler {
	p := &Profiler{
		now:            time.Now,
		updateInterval: time.Second,
		logging:        true,
	}
	p.lastTime = p.now()
	return p
}

// SetUpdateInterval changes how often stats are rolled over. Non-positive values are ignored.
//
// Parameters:
//   - interval: the reporting interval
func (p *Profiler) SetUpdateInterval(interval time.Duration) {
	if interval > 0 {
		p.updateInterval = interval
	}
}

// SetLogging toggles the log line written on each rollover.
//
// Parameters:
//   - enabled: true to log stats
func (p *Profiler) SetLogging(enabled bool) {
	p.logging = enabled
}

// RecordAdvance adds the time one frame spent advancing its registered advancers.
//
// Parameters:
//   - d: the advance duration
func (p *Profiler) RecordAdvance(d time.Duration) {
	p.advanceTotal += d
	if d > p.advanceMax {
		p.advanceMax = d
	}
}

// RecordSkip counts a frame whose advance failed and was skipped.
func (p *Profiler) RecordSkip() {
	p.skippedCount++
}

// Tick should be called once per frame to track frame timing.
// Rolls the counters into Stats and logs them when the update interval has elapsed.
//
// Returns:
//   - bool: true if stats were rolled over this tick, false otherwise
func (p *Profiler) Tick() bool {
	p.frameCount++
	currentTime := p.now()
	elapsed := currentTime.Sub(p.lastTime)
	if elapsed < p.updateInterval {
		return false
	}

	runtime.ReadMemStats(&p.memStats)
	stats := FrameStats{
		Frames:     p.frameCount,
		Skipped:    p.skippedCount,
		FPS:        float64(p.frameCount) / elapsed.Seconds(),
		AdvanceAvg: p.advanceTotal / time.Duration(p.frameCount),
		AdvanceMax: p.advanceMax,
		HeapMB:     float64(p.memStats.Alloc) / 1024 / 1024,
		NumGC:      p.memStats.NumGC,
	}

	if p.logging {
		log.Printf("[Profiler] FPS: %.2f | Advance avg: %s max: %s | Skipped: %d | Heap: %.2f MB | GC: %d",
			stats.FPS, stats.AdvanceAvg, stats.AdvanceMax, stats.Skipped, stats.HeapMB, stats.NumGC)
	}

	p.last = stats
	p.frameCount = 0
	p.skippedCount = 0
	p.advanceTotal = 0
	p.advanceMax = 0
	p.lastTime = currentTime
	return true
}

// Stats returns the most recently completed interval.
//
// Returns:
//   - FrameStats: the last rolled over stats, zero before the first rollover
func (p *Profiler) Stats() FrameStats {
	return p.last
}
