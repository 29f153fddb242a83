package compositor

import (
	"errors"
	"fmt"
	"image"
	"image/color"
	"runtime"
	"sync"
	"time"

	"github.com/Carmen-Shannon/automation/tools/worker"
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
)

// ErrInvalidSize is returned when a bake is requested with a non-positive width or height.
var ErrInvalidSize = errors.New("invalid preview size")

// compositor is the implementation of the Compositor interface.
type compositor struct {
	workers   int
	queueSize int
	idle      time.Duration

	once sync.Once
	pool worker.DynamicWorkerPool
}

// Compositor bakes CPU previews of an effect stack.
//
// Every row of the preview is a task on a worker pool. Rows only call Sample on the nodes, which is
// pure, so a bake may run between two frames without locking; it must not overlap an Advance.
type Compositor interface {
	// Bake evaluates a stage sequence over a width x height grid of pixel centers.
	//
	// Parameters:
	//   - nodes: the stages in composite order
	//   - width: the preview width in pixels
	//   - height: the preview height in pixels
	//   - frame: reads the rendered frame in uv space
	//
	// Returns:
	//   - *image.RGBA: the composited preview
	//   - error: ErrInvalidSize for a non-positive dimension
	Bake(nodes []effect.Node, width, height int, frame effect.FrameSampler) (*image.RGBA, error)

	// BakePipeline bakes a snapshot of the pipeline's current stage order.
	//
	// Parameters:
	//   - p: the pipeline to preview
	//   - width: the preview width in pixels
	//   - height: the preview height in pixels
	//   - frame: reads the rendered frame in uv space
	//
	// Returns:
	//   - *image.RGBA: the composited preview
	//   - error: ErrInvalidSize for a non-positive dimension
	BakePipeline(p pipeline.Pipeline, width, height int, frame effect.FrameSampler) (*image.RGBA, error)

	// Workers returns the maximum number of rows baked concurrently.
	Workers() int
}

var _ Compositor = &compositor{}

// NewCompositor creates a compositor. The worker pool is started lazily on the first bake.
//
// Parameters:
//   - options: variadic list of CompositorBuilderOption functions
//
// Returns:
//   - Compositor: the new compositor
func NewCompositor(options ...CompositorBuilderOption) Compositor {
	c := &compositor{
		workers:   max(runtime.NumCPU()-1, 1),
		queueSize: 256,
		idle:      time.Second,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *compositor) Workers() int {
	return c.workers
}

func (c *compositor) BakePipeline(p pipeline.Pipeline, width, height int, frame effect.FrameSampler) (*image.RGBA, error) {
	return c.Bake(p.OrderedNodes(), width, height, frame)
}

func (c *compositor) Bake(nodes []effect.Node, width, height int, frame effect.FrameSampler) (*image.RGBA, error) {
	if width <= 0 || height <= 0 {
		return nil, fmt.Errorf("bake %dx%d: %w", width, height, ErrInvalidSize)
	}
	c.once.Do(func() {
		c.pool = worker.NewDynamicWorkerPool(c.workers, c.queueSize, c.idle)
	})

	img := image.NewRGBA(image.Rect(0, 0, width, height))

	// The pool's own Wait blocks until workers idle out, so a WaitGroup is the per-bake barrier.
	var wg sync.WaitGroup
	for y := 0; y < height; y++ {
		wg.Add(1)
		row := y
		c.pool.SubmitTask(worker.Task{
			ID: row,
			Do: func() (any, error) {
				defer wg.Done()
				v := (float64(row) + 0.5) / float64(height)
				for x := 0; x < width; x++ {
					uv := common.Vec2{(float64(x) + 0.5) / float64(width), v}
					img.SetRGBA(x, row, ToRGBA(pipeline.Composite(nodes, uv, frame)))
				}
				return nil, nil
			},
		})
	}
	wg.Wait()
	return img, nil
}

// ToRGBA converts a linear [0, 1] color to an opaque 8-bit pixel, clamping each channel.
func ToRGBA(c common.Color) color.RGBA {
	to8 := func(v float64) uint8 {
		return uint8(common.Clamp(v, 0, 1)*255 + 0.5)
	}
	return color.RGBA{R: to8(c[0]), G: to8(c[1]), B: to8(c[2]), A: 255}
}

// SolidFrame is a FrameSampler returning one color everywhere.
func SolidFrame(c common.Color) effect.FrameSampler {
	return func(common.Vec2) common.Color {
		return c
	}
}

// GradientFrame is a FrameSampler blending from start at the top edge to end at the bottom,
// a stand-in for the portal surface when no GPU readback is available.
func GradientFrame(start, end common.Color) effect.FrameSampler {
	return func(uv common.Vec2) common.Color {
		return common.MixColor(start, end, common.Clamp(uv[1], 0, 1))
	}
}

// ImageFrame adapts a decoded image to a FrameSampler with nearest-texel, clamp-to-edge sampling.
//
// Parameters:
//   - img: the source image
//
// Returns:
//   - effect.FrameSampler: a sampler over img in uv space
func ImageFrame(img image.Image) effect.FrameSampler {
	b := img.Bounds()
	return func(uv common.Vec2) common.Color {
		x := b.Min.X + int(common.Clamp(uv[0], 0, 1)*float64(b.Dx()))
		y := b.Min.Y + int(common.Clamp(uv[1], 0, 1)*float64(b.Dy()))
		x = min(x, b.Max.X-1)
		y = min(y, b.Max.Y-1)
		r, g, bl, _ := img.At(x, y).RGBA()
		return common.Color{float64(r) / 0xffff, float64(g) / 0xffff, float64(bl) / 0xffff}
	}
}
