package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/effect"
)

var (
	// ErrDuplicateNode is returned when a node instance is inserted into a pipeline while this or
	// another pipeline already holds it.
	ErrDuplicateNode = errors.New("effect node already in pipeline")
	// ErrNodeNotFound is returned when removing a node the pipeline does not hold.
	ErrNodeNotFound = errors.New("effect node not in pipeline")
	// ErrIndexOutOfRange is returned when an insert position is outside [0, Len].
	ErrIndexOutOfRange = errors.New("pipeline index out of range")
	// ErrNilNode is returned when inserting a nil node.
	ErrNilNode = errors.New("nil effect node")
)

// owners records which pipeline holds each node. Pipelines themselves are not locked, but two
// pipelines may be mutated from different goroutines, so the registry is.
var owners = struct {
	sync.Mutex
	m map[effect.Node]*pipeline
}{m: make(map[effect.Node]*pipeline)}

// claim records p as the owner of node.
//
// Parameters:
//   - node: the stage being inserted
//   - p: the pipeline taking it
//
// Returns:
//   - error: ErrDuplicateNode if any pipeline, p included, already owns node
func claim(node effect.Node, p *pipeline) error {
	owners.Lock()
	defer owners.Unlock()
	if owner, ok := owners.m[node]; ok {
		if owner == p {
			return fmt.Errorf("insert %s into %q: %w", node.Name(), p.key, ErrDuplicateNode)
		}
		return fmt.Errorf("insert %s into %q: owned by pipeline %q: %w", node.Name(), p.key, owner.key, ErrDuplicateNode)
	}
	owners.m[node] = p
	return nil
}

// release drops p's claim on node.
func release(node effect.Node, p *pipeline) {
	owners.Lock()
	defer owners.Unlock()
	if owners.m[node] == p {
		delete(owners.m, node)
	}
}

// pipeline is the implementation of the Pipeline interface.
type pipeline struct {
	key   string
	nodes []effect.Node
}

// Pipeline is an ordered post-processing chain. Order defines how stages stack: every stage's uv
// displacement feeds the next, then colors are blended over the frame from first to last.
//
// A pipeline exclusively owns its nodes: a node instance may appear at most once, in at most one
// pipeline, until Remove or MoveNode releases it. A pipeline that is dropped without removing its
// nodes keeps them claimed. Mutations happen between frames on the frame goroutine; the pipeline
// does no locking of its own.
type Pipeline interface {
	// PipelineKey retrieves the identifier of the pipeline.
	//
	// Returns:
	//   - string: the pipeline key
	PipelineKey() string

	// Len returns the number of stages.
	//
	// Returns:
	//   - int: the stage count
	Len() int

	// Insert places a node at a position, shifting later stages back.
	//
	// Parameters:
	//   - node: the stage to insert
	//   - at: the position in [0, Len]
	//
	// Returns:
	//   - error: ErrDuplicateNode if node is owned by this or another pipeline, ErrIndexOutOfRange if at is outside [0, Len]
	Insert(node effect.Node, at int) error

	// Append places a node after every existing stage.
	//
	// Parameters:
	//   - node: the stage to append
	//
	// Returns:
	//   - error: ErrDuplicateNode if node is owned by this or another pipeline
	Append(node effect.Node) error

	// Remove takes a node out of the pipeline, releasing ownership.
	//
	// Parameters:
	//   - node: the stage to remove
	//
	// Returns:
	//   - error: ErrNodeNotFound if node is not present
	Remove(node effect.Node) error

	// IndexOf returns the position of a node, or -1 when absent.
	//
	// Parameters:
	//   - node: the stage to look up
	//
	// Returns:
	//   - int: the position or -1
	IndexOf(node effect.Node) int

	// OrderedNodes returns a snapshot of the stages in composite order.
	// Later pipeline mutations do not change a snapshot already taken.
	//
	// Returns:
	//   - []effect.Node: the stages, first to last
	OrderedNodes() []effect.Node

	// AdvanceAll advances every stage in order. Fail-fast: the step is validated before any stage moves,
	// and the first stage error aborts the walk and is returned. Only the step check is atomic. A stage
	// that fails for another reason leaves the stages before it advanced and the ones after it untouched.
	//
	// Parameters:
	//   - deltaSeconds: elapsed time since the previous frame, must be >= 0
	//
	// Returns:
	//   - error: common.ErrInvalidTimeStep with no stage advanced, or the first stage error
	AdvanceAll(deltaSeconds float64) error

	// Advance is AdvanceAll, letting a pipeline register with the frame scheduler like a material.
	Advance(deltaSeconds float64) error

	// Composite evaluates the whole chain at one screen coordinate.
	//
	// Parameters:
	//   - uv: the screen coordinate
	//   - frame: reads the rendered frame
	//
	// Returns:
	//   - common.Color: the post-processed color
	Composite(uv common.Vec2, frame effect.FrameSampler) common.Color
}

var _ Pipeline = &pipeline{}

// NewPipeline creates a pipeline and inserts the stages given by options, in order.
//
// Parameters:
//   - key: the identifier of the pipeline
//   - options: variadic list of PipelineBuilderOption functions
//
// Returns:
//   - Pipeline: the new pipeline
//   - error: the first insertion error, with every node claimed so far released again
func NewPipeline(key string, options ...PipelineBuilderOption) (Pipeline, error) {
	b := &builder{p: &pipeline{key: key}}
	for _, opt := range options {
		opt(b)
	}
	if b.err != nil {
		for _, n := range b.p.nodes {
			release(n, b.p)
		}
		return nil, b.err
	}
	return b.p, nil
}

func (p *pipeline) PipelineKey() string {
	return p.key
}

func (p *pipeline) Len() int {
	return len(p.nodes)
}

func (p *pipeline) IndexOf(node effect.Node) int {
	for i, n := range p.nodes {
		if n == node {
			return i
		}
	}
	return -1
}

func (p *pipeline) Insert(node effect.Node, at int) error {
	if node == nil {
		return ErrNilNode
	}
	if at < 0 || at > len(p.nodes) {
		return fmt.Errorf("insert %s into %q at %d (len %d): %w", node.Name(), p.key, at, len(p.nodes), ErrIndexOutOfRange)
	}
	if err := claim(node, p); err != nil {
		return err
	}
	p.nodes = append(p.nodes, nil)
	copy(p.nodes[at+1:], p.nodes[at:])
	p.nodes[at] = node
	return nil
}

func (p *pipeline) Append(node effect.Node) error {
	return p.Insert(node, len(p.nodes))
}

func (p *pipeline) Remove(node effect.Node) error {
	i := p.IndexOf(node)
	if i < 0 {
		name := "<nil>"
		if node != nil {
			name = node.Name()
		}
		return fmt.Errorf("remove %s from %q: %w", name, p.key, ErrNodeNotFound)
	}
	copy(p.nodes[i:], p.nodes[i+1:])
	p.nodes[len(p.nodes)-1] = nil
	p.nodes = p.nodes[:len(p.nodes)-1]
	release(node, p)
	return nil
}

func (p *pipeline) OrderedNodes() []effect.Node {
	out := make([]effect.Node, len(p.nodes))
	copy(out, p.nodes)
	return out
}

func (p *pipeline) AdvanceAll(deltaSeconds float64) error {
	if err := common.ValidateTimeStep(deltaSeconds); err != nil {
		return fmt.Errorf("advance pipeline %q: %w", p.key, err)
	}
	for i, n := range p.nodes {
		if err := n.Advance(deltaSeconds); err != nil {
			return fmt.Errorf("advance pipeline %q stage %d (%s): %w", p.key, i, n.Name(), err)
		}
	}
	return nil
}

func (p *pipeline) Advance(deltaSeconds float64) error {
	return p.AdvanceAll(deltaSeconds)
}

func (p *pipeline) Composite(uv common.Vec2, frame effect.FrameSampler) common.Color {
	return Composite(p.nodes, uv, frame)
}

// Composite evaluates a stage sequence at one screen coordinate.
//
// The coordinate is first displaced by every stage in order, the frame is read once at the final
// coordinate, and each stage's layer is then blended over the result in the same order.
// Composite only calls Sample, so it is safe to run concurrently on a snapshot between advances.
//
// Parameters:
//   - nodes: the stages in composite order
//   - uv: the screen coordinate
//   - frame: reads the rendered frame
//
// Returns:
//   - common.Color: the post-processed color
func Composite(nodes []effect.Node, uv common.Vec2, frame effect.FrameSampler) common.Color {
	samples := make([]effect.Sample, len(nodes))
	cur := uv
	for i, n := range nodes {
		samples[i] = n.Sample(cur)
		cur = cur.Add(samples[i].Offset)
	}

	color := frame(cur)
	for i, n := range nodes {
		mode := n.BlendMode()
		if mode == effect.BlendSkip || samples[i].Opacity <= 0 {
			continue
		}
		layer := effect.Layer(n, cur, color, frame, samples[i])
		color = mode.Blend(color, layer, samples[i].Opacity)
	}
	return color
}

// MoveNode transfers a node from one pipeline to another. Ownership is released by from before to
// claims it. If the destination rejects the node it is put back where it was, so the node is always
// owned by exactly one pipeline.
//
// Parameters:
//   - node: the stage to move
//   - from: the pipeline currently holding node
//   - to: the destination pipeline
//   - at: the destination position
//
// Returns:
//   - error: ErrNodeNotFound if from does not hold node, or the destination's insert error
func MoveNode(node effect.Node, from, to Pipeline, at int) error {
	i := from.IndexOf(node)
	if i < 0 {
		return fmt.Errorf("move from %q: %w", from.PipelineKey(), ErrNodeNotFound)
	}
	if err := from.Remove(node); err != nil {
		return err
	}
	if err := to.Insert(node, at); err != nil {
		if restoreErr := from.Insert(node, i); restoreErr != nil {
			return errors.Join(err, restoreErr)
		}
		return err
	}
	return nil
}
