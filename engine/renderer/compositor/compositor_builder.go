package compositor

import "time"

// CompositorBuilderOption is a function that configures a compositor during construction.
type CompositorBuilderOption func(*compositor)

// WithWorkers sets the maximum number of rows baked concurrently. Values <= 0 keep the default of one less than the CPU count.
//
// Parameters:
//   - n: the worker count
//
// Returns:
//   - CompositorBuilderOption: a function that applies the worker count to a compositor
func WithWorkers(n int) CompositorBuilderOption {
	return func(c *compositor) {
		if n > 0 {
			c.workers = n
		}
	}
}

// WithQueueSize sets the task queue capacity of the worker pool.
//
// Parameters:
//   - n: the queue capacity
//
// Returns:
//   - CompositorBuilderOption: a function that applies the queue size to a compositor
func WithQueueSize(n int) CompositorBuilderOption {
	return func(c *compositor) {
		if n > 0 {
			c.queueSize = n
		}
	}
}

// WithIdleTimeout sets how long a pool worker waits for work before exiting.
//
// Parameters:
//   - d: the idle timeout
//
// Returns:
//   - CompositorBuilderOption: a function that applies the idle timeout to a compositor
func WithIdleTimeout(d time.Duration) CompositorBuilderOption {
	return func(c *compositor) {
		if d > 0 {
			c.idle = d
		}
	}
}
