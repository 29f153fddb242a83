package engine

import "github.com/Carmen-Shannon/oxy-fx/engine/window"

// EngineBuilderOption is a functional option for configuring an Engine.
// Use the With* functions to create options that are applied directly to the engine instance.
type EngineBuilderOption func(*engine)

// WithProfiling enables or disables frame stats output.
//
// Parameters:
//   - enabled: if true, enables the profiler
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithProfiling(enabled bool) EngineBuilderOption {
	return func(e *engine) {
		e.profilingEnabled = enabled
	}
}

// WithTickRate sets the ticker rate Run uses when no window drives the loop.
// Values <= 0 will be treated as the default (60Hz).
//
// Parameters:
//   - fps: target ticks per second (default 60)
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithTickRate(fps float64) EngineBuilderOption {
	return func(e *engine) {
		e.SetTickRate(fps)
	}
}

// WithWindow makes Run drive frames from the window's message loop instead of a ticker.
//
// Parameters:
//   - w: a spawned Window instance
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithWindow(w window.Window) EngineBuilderOption {
	return func(e *engine) {
		e.window = w
	}
}

// WithFailurePolicy sets how advance failures are handled (default FailurePolicySkipFrame).
//
// Parameters:
//   - policy: the failure policy
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithFailurePolicy(policy FailurePolicy) EngineBuilderOption {
	return func(e *engine) {
		e.policy = policy
	}
}

// WithAdvancers registers advancers during construction, in order. Duplicates are ignored.
//
// Parameters:
//   - advancers: the advancers to schedule
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithAdvancers(advancers ...Advancer) EngineBuilderOption {
	return func(e *engine) {
		for _, a := range advancers {
			_ = e.Register(a)
		}
	}
}

// WithRenderCallback sets the function called at the end of each frame.
//
// Parameters:
//   - callback: function receiving the frame's delta in seconds
//
// Returns:
//   - EngineBuilderOption: option function to apply
func WithRenderCallback(callback func(deltaSeconds float64)) EngineBuilderOption {
	return func(e *engine) {
		e.renderCallback = callback
	}
}
