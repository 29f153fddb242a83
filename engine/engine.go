package engine

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/profiler"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
)

var (
	// ErrHalted is returned by Tick and Run once an advance failure halted the engine under FailurePolicyHalt.
	ErrHalted = errors.New("engine halted")
	// ErrDuplicateAdvancer is returned when registering an advancer that is already registered.
	ErrDuplicateAdvancer = errors.New("advancer already registered")
	// ErrAdvancerNotFound is returned when unregistering an advancer that is not registered.
	ErrAdvancerNotFound = errors.New("advancer not registered")
)

// Advancer is anything with per-frame state driven by elapsed time: materials, effect pipelines, single nodes.
type Advancer interface {
	Advance(deltaSeconds float64) error
}

// FailurePolicy decides what a failed advance does to the session.
type FailurePolicy int

const (
	// FailurePolicySkipFrame drops the rest of the frame's animation step, logs, and keeps running.
	FailurePolicySkipFrame FailurePolicy = iota

	// FailurePolicyHalt stops the session on the first failed advance.
	FailurePolicyHalt
)

func (p FailurePolicy) String() string {
	switch p {
	case FailurePolicySkipFrame:
		return "skip-frame"
	case FailurePolicyHalt:
		return "halt"
	default:
		return fmt.Sprintf("FailurePolicy(%d)", int(p))
	}
}

// engine implements the Engine interface.
type engine struct {
	mu sync.Mutex

	// Materials advance before pipelines so every uniform is current when the frame is composited.
	materials []Advancer
	pipelines []Advancer

	policy     FailurePolicy
	paused     bool
	halted     error
	frameCount uint64

	quitChannel chan struct{}
	quitOnce    sync.Once

	window window.Window
	now    func() time.Time

	profiler         *profiler.Profiler
	profilingEnabled bool

	engineTickRate time.Duration
	renderCallback func(deltaSeconds float64)
}

// Engine is the frame scheduler. It calls Advance on every registered Advancer once per frame,
// supplying the elapsed seconds since the previous frame, then runs the render callback.
//
// Tick is the whole contract; Run is a convenience loop that drives Tick from a window's message
// loop or, without a window, from a time.Ticker at the configured tick rate.
type Engine interface {
	// Register adds an advancer to the schedule. Pipelines (pipeline.Pipeline) run in the second
	// phase of every frame, everything else in the first, each phase in registration order.
	//
	// Parameters:
	//   - a: the advancer to schedule
	//
	// Returns:
	//   - error: ErrDuplicateAdvancer if a is already registered
	Register(a Advancer) error

	// Unregister removes an advancer from the schedule.
	//
	// Parameters:
	//   - a: the advancer to remove
	//
	// Returns:
	//   - error: ErrAdvancerNotFound if a is not registered
	Unregister(a Advancer) error

	// Tick runs one frame: validates the step, advances every registered advancer, then calls the
	// render callback. A paused engine skips the advance but still renders.
	//
	// Parameters:
	//   - deltaSeconds: elapsed time since the previous frame
	//
	// Returns:
	//   - error: common.ErrInvalidTimeStep (nothing advanced), the first advance error, or ErrHalted
	Tick(deltaSeconds float64) error

	// Run drives Tick until ctx is done, Quit is called, the window closes, or the engine halts.
	//
	// Parameters:
	//   - ctx: cancels the loop
	//
	// Returns:
	//   - error: the halting advance error, ctx.Err(), or nil after Quit / window close
	Run(ctx context.Context) error

	// Quit stops Run. Safe to call multiple times.
	Quit()

	// Pause stops advancing without stopping the loop. Calling advance is the only way time moves,
	// so a paused session is frozen on its current frame.
	Pause()

	// Resume undoes Pause.
	Resume()

	// Paused reports whether the engine is paused.
	Paused() bool

	// FrameCount returns the number of frames ticked so far, paused and skipped frames included.
	FrameCount() uint64

	// SetFailurePolicy changes how advance failures are handled.
	//
	// Parameters:
	//   - policy: the new policy
	SetFailurePolicy(policy FailurePolicy)

	// SetRenderCallback registers the function called at the end of each frame.
	//
	// Parameters:
	//   - callback: function receiving the frame's delta in seconds
	SetRenderCallback(callback func(deltaSeconds float64))

	// SetTickRate sets the ticker rate used by Run when no window drives the loop.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// EnableProfiler enables frame stats output to the log.
	EnableProfiler()

	// DisableProfiler disables frame stats output.
	DisableProfiler()

	// Window returns the window driving Run, or nil.
	Window() window.Window
}

var _ Engine = &engine{}

// NewEngine creates a new Engine with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, policy, window)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		quitChannel:    make(chan struct{}),
		now:            time.Now,
		profiler:       profiler.NewProfiler(),
		engineTickRate: time.Second / 60,
		policy:         FailurePolicySkipFrame,
	}
	for _, opt := range options {
		opt(e)
	}
	return e
}

func (e *engine) phase(a Advancer) *[]Advancer {
	if _, ok := a.(pipeline.Pipeline); ok {
		return &e.pipelines
	}
	return &e.materials
}

func indexOf(list []Advancer, a Advancer) int {
	for i, x := range list {
		if x == a {
			return i
		}
	}
	return -1
}

func (e *engine) Register(a Advancer) error {
	if a == nil {
		return errors.New("register nil advancer")
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.phase(a)
	if indexOf(*list, a) >= 0 {
		return ErrDuplicateAdvancer
	}
	*list = append(*list, a)
	return nil
}

func (e *engine) Unregister(a Advancer) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if a == nil {
		return ErrAdvancerNotFound
	}
	list := e.phase(a)
	i := indexOf(*list, a)
	if i < 0 {
		return ErrAdvancerNotFound
	}
	*list = append((*list)[:i], (*list)[i+1:]...)
	return nil
}

func (e *engine) Tick(deltaSeconds float64) error {
	render, err := e.step(deltaSeconds)
	if render == nil {
		return err
	}
	render(deltaSeconds)

	e.mu.Lock()
	if e.profilingEnabled {
		e.profiler.Tick()
	}
	e.mu.Unlock()
	return err
}

// step advances one frame under the lock and returns the render callback to run after it.
// A nil callback with a non-nil error means the frame must not be rendered.
func (e *engine) step(deltaSeconds float64) (func(float64), error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.halted != nil {
		return nil, fmt.Errorf("%w: %w", ErrHalted, e.halted)
	}
	if err := common.ValidateTimeStep(deltaSeconds); err != nil {
		return nil, err
	}

	e.frameCount++
	var advanceErr error
	if !e.paused {
		start := e.now()
		advanceErr = e.advance(deltaSeconds)
		if e.profilingEnabled {
			e.profiler.RecordAdvance(e.now().Sub(start))
		}
	}

	if advanceErr != nil {
		if e.policy == FailurePolicyHalt {
			log.Printf("[Engine] frame %d: halting: %v", e.frameCount, advanceErr)
			e.halted = advanceErr
			return nil, fmt.Errorf("%w: %w", ErrHalted, advanceErr)
		}
		log.Printf("[Engine] frame %d: skipping animation step: %v", e.frameCount, advanceErr)
		if e.profilingEnabled {
			e.profiler.RecordSkip()
		}
	}

	render := e.renderCallback
	if render == nil {
		render = func(float64) {}
	}
	return render, advanceErr
}

// advance runs both phases and stops at the first failure.
func (e *engine) advance(deltaSeconds float64) error {
	for _, list := range [][]Advancer{e.materials, e.pipelines} {
		for _, a := range list {
			if err := a.Advance(deltaSeconds); err != nil {
				return err
			}
		}
	}
	return nil
}

func (e *engine) Run(ctx context.Context) error {
	if e.window != nil {
		return e.runWindow(ctx)
	}
	return e.runTicker(ctx)
}

// runTicker drives frames from a time.Ticker at the configured tick rate.
func (e *engine) runTicker(ctx context.Context) error {
	ticker := time.NewTicker(e.engineTickRate)
	defer ticker.Stop()

	last := e.now()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-e.quitChannel:
			return nil
		case <-ticker.C:
			now := e.now()
			dt := now.Sub(last).Seconds()
			last = now
			if err := e.Tick(dt); errors.Is(err, ErrHalted) {
				return err
			}
		}
	}
}

// runWindow drives one frame per window message loop iteration. It must run on the main thread.
func (e *engine) runWindow(ctx context.Context) error {
	var runErr error
	last := e.now()
	e.window.SetUpdateCallback(func() {
		select {
		case <-ctx.Done():
			runErr = ctx.Err()
			e.closeWindow()
			return
		case <-e.quitChannel:
			e.closeWindow()
			return
		default:
		}

		now := e.now()
		dt := now.Sub(last).Seconds()
		last = now
		if err := e.Tick(dt); errors.Is(err, ErrHalted) {
			runErr = err
			e.closeWindow()
		}
	})
	e.window.ProcessMessages()
	return runErr
}

func (e *engine) closeWindow() {
	if err := e.window.Close(); err != nil {
		log.Printf("[Engine] close window: %v", err)
	}
}

// Quit closes the quit channel; sync.Once makes repeat calls no-ops.
func (e *engine) Quit() {
	e.quitOnce.Do(func() {
		close(e.quitChannel)
	})
}

func (e *engine) Pause() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = true
}

func (e *engine) Resume() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.paused = false
}

func (e *engine) Paused() bool {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.paused
}

func (e *engine) FrameCount() uint64 {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.frameCount
}

func (e *engine) SetFailurePolicy(policy FailurePolicy) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.policy = policy
}

func (e *engine) SetRenderCallback(callback func(deltaSeconds float64)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

// SetTickRate takes effect on the next Run.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	e.engineTickRate = time.Duration(float64(time.Second) / fps)
}

func (e *engine) EnableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = true
}

func (e *engine) DisableProfiler() {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.profilingEnabled = false
}

func (e *engine) Window() window.Window {
	return e.window
}
