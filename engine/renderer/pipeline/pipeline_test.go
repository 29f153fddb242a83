package pipeline

import (
	"errors"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/effect"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubNode records how often it was advanced and can be told to fail.
type stubNode struct {
	name     string
	advanced int
	fail     error
	sample   effect.Sample
	mode     effect.BlendMode
}

func (s *stubNode) Name() string                    { return s.name }
func (s *stubNode) BlendMode() effect.BlendMode     { return s.mode }
func (s *stubNode) Sample(common.Vec2) effect.Sample { return s.sample }

func (s *stubNode) Advance(deltaSeconds float64) error {
	if s.fail != nil {
		return s.fail
	}
	s.advanced++
	return nil
}

func mustDrunk(t *testing.T) *effect.Drunk {
	t.Helper()
	d, err := effect.NewDrunk(effect.DefaultDrunkParams())
	require.NoError(t, err)
	return d
}

func TestInsertAndOrder(t *testing.T) {
	a, b, c := &stubNode{name: "a"}, &stubNode{name: "b"}, &stubNode{name: "c"}
	p, err := NewPipeline("post", WithNodes(a, c))
	require.NoError(t, err)

	require.NoError(t, p.Insert(b, 1))
	assert.Equal(t, []effect.Node{a, b, c}, p.OrderedNodes())
	assert.Equal(t, 1, p.IndexOf(b))
	assert.Equal(t, "post", p.PipelineKey())
}

func TestInsertDuplicateFails(t *testing.T) {
	d := mustDrunk(t)
	p, err := NewPipeline("post", WithNode(d))
	require.NoError(t, err)

	err = p.Insert(d, 0)
	assert.ErrorIs(t, err, ErrDuplicateNode)
	assert.Equal(t, 1, p.Len())
}

func TestNewPipelineDuplicateFails(t *testing.T) {
	d := mustDrunk(t)
	_, err := NewPipeline("post", WithNodes(d, d))
	assert.ErrorIs(t, err, ErrDuplicateNode)

	p, err := NewPipeline("retry", WithNode(d))
	require.NoError(t, err, "a failed constructor releases the nodes it claimed")
	assert.Equal(t, 1, p.Len())
}

func TestNodeOwnedByOnePipeline(t *testing.T) {
	d, err := effect.NewDrunk(effect.DrunkParams{Frequency: 2, Amplitude: 0.1, BlendMode: effect.BlendSkip})
	require.NoError(t, err)
	a, err := NewPipeline("a", WithNode(d))
	require.NoError(t, err)
	b, err := NewPipeline("b")
	require.NoError(t, err)

	err = b.Insert(d, 0)
	assert.ErrorIs(t, err, ErrDuplicateNode)
	assert.Contains(t, err.Error(), `owned by pipeline "a"`)
	assert.ErrorIs(t, b.Append(d), ErrDuplicateNode)
	assert.Equal(t, 0, b.Len())

	_, err = NewPipeline("c", WithNode(d))
	assert.ErrorIs(t, err, ErrDuplicateNode)

	require.NoError(t, a.AdvanceAll(0.5))
	require.NoError(t, b.AdvanceAll(0.5))
	assert.InDelta(t, 1.0, d.Phase(), 1e-12, "the node advances once per frame")

	require.NoError(t, a.Remove(d))
	require.NoError(t, b.Insert(d, 0))
	assert.ErrorIs(t, a.Append(d), ErrDuplicateNode)

	require.NoError(t, MoveNode(d, b, a, 0))
	assert.Equal(t, 0, a.IndexOf(d))
	assert.Equal(t, -1, b.IndexOf(d))
	assert.ErrorIs(t, b.Append(d), ErrDuplicateNode)
}

func TestInsertIndexOutOfRange(t *testing.T) {
	p, err := NewPipeline("post")
	require.NoError(t, err)

	assert.ErrorIs(t, p.Insert(&stubNode{name: "a"}, 1), ErrIndexOutOfRange)
	assert.ErrorIs(t, p.Insert(&stubNode{name: "a"}, -1), ErrIndexOutOfRange)
	assert.NoError(t, p.Insert(&stubNode{name: "a"}, 0))
	assert.ErrorIs(t, p.Insert(nil, 0), ErrNilNode)
	assert.Equal(t, 1, p.Len())
}

func TestRemove(t *testing.T) {
	a, b := &stubNode{name: "a"}, &stubNode{name: "b"}
	p, err := NewPipeline("post", WithNodes(a, b))
	require.NoError(t, err)

	require.NoError(t, p.Remove(a))
	assert.Equal(t, []effect.Node{b}, p.OrderedNodes())
	assert.ErrorIs(t, p.Remove(a), ErrNodeNotFound)
	assert.ErrorIs(t, p.Remove(nil), ErrNodeNotFound)
}

func TestOrderedNodesSnapshot(t *testing.T) {
	a, b := &stubNode{name: "a"}, &stubNode{name: "b"}
	p, err := NewPipeline("post", WithNode(a))
	require.NoError(t, err)

	snapshot := p.OrderedNodes()
	require.NoError(t, p.Insert(b, 0))
	require.NoError(t, p.Remove(a))

	assert.Equal(t, []effect.Node{a}, snapshot)
	assert.Equal(t, []effect.Node{b}, p.OrderedNodes())
}

func TestAdvanceAll(t *testing.T) {
	d := mustDrunk(t)
	s := &stubNode{name: "s"}
	p, err := NewPipeline("post", WithNodes(d, s))
	require.NoError(t, err)

	require.NoError(t, p.AdvanceAll(0.5))
	assert.InDelta(t, 1.0, d.Phase(), 1e-12)
	assert.Equal(t, 1, s.advanced)
}

func TestAdvanceAllNegativeAdvancesNothing(t *testing.T) {
	d := mustDrunk(t)
	s := &stubNode{name: "s"}
	p, err := NewPipeline("post", WithNodes(s, d))
	require.NoError(t, err)

	assert.ErrorIs(t, p.AdvanceAll(-1), common.ErrInvalidTimeStep)
	assert.Equal(t, 0, s.advanced)
	assert.Equal(t, 0.0, d.Phase())
}

func TestAdvanceAllFailFast(t *testing.T) {
	boom := errors.New("boom")
	first, broken, last := &stubNode{name: "first"}, &stubNode{name: "broken", fail: boom}, &stubNode{name: "last"}
	p, err := NewPipeline("post", WithNodes(first, broken, last))
	require.NoError(t, err)

	err = p.Advance(0.1)
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, err.Error(), "broken")
	assert.Equal(t, 1, first.advanced, "stages before the failing one keep their advance")
	assert.Equal(t, 0, last.advanced)
}

func TestCompositeOrder(t *testing.T) {
	frame := func(uv common.Vec2) common.Color { return common.Color{uv[0], uv[1], 0} }

	shift := &stubNode{name: "shift", sample: effect.Sample{Offset: common.Vec2{0.1, 0}}}
	darken := &stubNode{name: "darken", mode: effect.BlendDarken, sample: effect.Sample{Color: common.Color{0.2, 0.2, 0.2}, Opacity: 1}}
	lighten := &stubNode{name: "lighten", mode: effect.BlendLighten, sample: effect.Sample{Color: common.Color{0.5, 0.5, 0.5}, Opacity: 1}}

	p, err := NewPipeline("post", WithNodes(shift, darken, lighten))
	require.NoError(t, err)
	got := p.Composite(common.Vec2{0.4, 0.9}, frame)
	assert.InDelta(t, 0.5, got[0], 1e-12)
	assert.InDelta(t, 0.5, got[1], 1e-12)

	require.NoError(t, p.Remove(darken))
	require.NoError(t, p.Append(darken))
	got = p.Composite(common.Vec2{0.4, 0.9}, frame)
	assert.InDelta(t, 0.2, got[0], 1e-12)
	assert.InDelta(t, 0.2, got[2], 1e-12)
}

func TestCompositeDrunkDisplacesFrame(t *testing.T) {
	d, err := effect.NewDrunk(effect.DrunkParams{Frequency: 2, Amplitude: 0.1, BlendMode: effect.BlendSkip})
	require.NoError(t, err)
	require.NoError(t, d.Advance(0.5))

	var readAt common.Vec2
	frame := func(uv common.Vec2) common.Color {
		readAt = uv
		return common.White
	}
	got := Composite([]effect.Node{d}, common.Vec2{0.25, 0.5}, frame)
	assert.Equal(t, common.White, got)
	assert.InDelta(t, 0.5+d.Sample(common.Vec2{0.25, 0.5}).Offset[1], readAt[1], 1e-12)
}

func TestMoveNode(t *testing.T) {
	a := &stubNode{name: "a"}
	src, err := NewPipeline("src", WithNode(a))
	require.NoError(t, err)
	dst, err := NewPipeline("dst")
	require.NoError(t, err)

	assert.ErrorIs(t, MoveNode(a, src, dst, 5), ErrIndexOutOfRange)
	assert.Equal(t, 0, src.IndexOf(a), "rejected move leaves the node in place")

	require.NoError(t, MoveNode(a, src, dst, 0))
	assert.Equal(t, -1, src.IndexOf(a))
	assert.Equal(t, 0, dst.IndexOf(a))
	assert.ErrorIs(t, src.Append(a), ErrDuplicateNode, "ownership moved with the node")

	assert.ErrorIs(t, MoveNode(a, src, dst, 0), ErrNodeNotFound)
}
