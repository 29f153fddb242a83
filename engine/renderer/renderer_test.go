package renderer

import (
	"errors"
	"sync"
	"testing"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
	"github.com/cogentcore/webgpu/wgpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingBackend stands in for the GPU and records what the renderer asked of it.
type recordingBackend struct {
	shader.Compiler

	width, height int
	clear         common.Color
	uniformSizes  map[string]uint64
	writes        []bind_group_provider.BufferWrite
	draws         []bind_group_provider.BindGroupProvider
	frames        int
	beginErr      error
	released      bool
}

func newRecordingBackend() *recordingBackend {
	return &recordingBackend{
		Compiler:     shader.NewHeadlessCompiler(),
		uniformSizes: make(map[string]uint64),
	}
}

func (b *recordingBackend) ConfigureSurface(width, height int) { b.width, b.height = width, height }
func (b *recordingBackend) SetPresentMode(PresentMode)         {}
func (b *recordingBackend) SetClearColor(color common.Color)   { b.clear = color }
func (b *recordingBackend) EndFrame()                          {}
func (b *recordingBackend) Present()                           { b.frames++ }
func (b *recordingBackend) Release()                           { b.released = true }

func (b *recordingBackend) InitUniformBuffer(provider bind_group_provider.BindGroupProvider, _ int, size uint64) error {
	b.uniformSizes[provider.Label()] = size
	return nil
}

func (b *recordingBackend) CreateMaterialPipeline(string, shader.Program, bind_group_provider.BindGroupProvider) (*wgpu.RenderPipeline, error) {
	return nil, nil
}

func (b *recordingBackend) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	b.writes = append(b.writes, writes...)
}

func (b *recordingBackend) BeginFrame() error { return b.beginErr }

func (b *recordingBackend) Draw(_ *wgpu.RenderPipeline, provider bind_group_provider.BindGroupProvider) {
	b.draws = append(b.draws, provider)
}

func newTestRenderer(t *testing.T, options ...RendererBuilderOption) (*renderer, *recordingBackend) {
	t.Helper()
	backend := newRecordingBackend()
	r := &renderer{
		mu:         &sync.Mutex{},
		materials:  make(map[string]materialEntry),
		backend:    backend,
		clearColor: common.Black,
	}
	for _, opt := range options {
		opt(r)
	}
	return newRendererWithBackend(r, 640, 480), backend
}

func TestNewRendererConfiguresSurface(t *testing.T) {
	blue := common.Color{0, 0, 1}
	_, backend := newTestRenderer(t, WithClearColor(blue))
	assert.Equal(t, 640, backend.width)
	assert.Equal(t, 480, backend.height)
	assert.Equal(t, blue, backend.clear)
}

func TestRegisterMaterial(t *testing.T) {
	r, backend := newTestRenderer(t)
	m, err := material.NewPortalMaterial(r)
	require.NoError(t, err)

	require.NoError(t, r.RegisterMaterial(m))
	require.NoError(t, r.RegisterMaterial(m), "second registration is a no-op")

	assert.Equal(t, uint64(48), backend.uniformSizes["portal"])
	assert.NotNil(t, m.BindGroupProvider())
	assert.Equal(t, m, r.Material("portal"))
	assert.Len(t, r.order, 1)
}

func TestRegisterMaterialChecksUniformLayout(t *testing.T) {
	r, backend := newTestRenderer(t)
	m, err := material.NewTimeDrivenMaterial(r, material.PortalVertexSource, material.PortalFragmentSource,
		material.WithName("lopsided"),
		material.WithUniform("uScale", uniform.Vec2(common.Vec2{1, 1})),
	)
	require.NoError(t, err)

	err = r.RegisterMaterial(m)
	assert.ErrorIs(t, err, ErrUniformLayoutMismatch)
	assert.Nil(t, r.Material("lopsided"))
	assert.NotContains(t, backend.uniformSizes, "lopsided")

	// Without a declared block nothing is checked.
	free, err := material.NewTimeDrivenMaterial(r, "fn vs_main() {}", "fn fs_main() {}", material.WithName("free"))
	require.NoError(t, err)
	assert.NoError(t, r.RegisterMaterial(free))
}

func TestRenderFrameUploadsOnlyChangedUniforms(t *testing.T) {
	r, backend := newTestRenderer(t)
	m, err := material.NewPortalMaterial(r)
	require.NoError(t, err)
	require.NoError(t, r.RegisterMaterial(m))

	require.NoError(t, r.RenderFrame())
	require.Len(t, backend.writes, 1)
	assert.Len(t, backend.draws, 1)
	assert.Equal(t, 1, backend.frames)

	require.NoError(t, r.RenderFrame())
	assert.Len(t, backend.writes, 1, "unchanged uniforms are not uploaded again")

	require.NoError(t, m.Advance(0.5))
	r.Flush()
	assert.Len(t, backend.writes, 2)
}

func TestRenderFrameBeginError(t *testing.T) {
	r, backend := newTestRenderer(t)
	backend.beginErr = errors.New("surface lost")
	assert.ErrorContains(t, r.RenderFrame(), "surface lost")
	assert.Equal(t, 0, backend.frames)
}

func TestUnregisterAndRelease(t *testing.T) {
	r, backend := newTestRenderer(t)
	m, err := material.NewPortalMaterial(r)
	require.NoError(t, err)
	require.NoError(t, r.RegisterMaterial(m))

	r.UnregisterMaterial("portal")
	r.UnregisterMaterial("portal")
	assert.Nil(t, r.Material("portal"))
	require.NoError(t, r.RenderFrame())
	assert.Empty(t, backend.draws)

	r.Release()
	assert.True(t, backend.released)
}

func TestRenderFrameDropsDisposedMaterial(t *testing.T) {
	r, backend := newTestRenderer(t)
	portal, err := material.NewPortalMaterial(r)
	require.NoError(t, err)
	require.NoError(t, r.RegisterMaterial(portal))
	other, err := material.NewPortalMaterial(r, material.WithName("other"))
	require.NoError(t, err)
	require.NoError(t, r.RegisterMaterial(other))

	portal.Dispose()
	require.Nil(t, portal.BindGroupProvider())

	require.NoError(t, r.RenderFrame())
	assert.Nil(t, r.Material("portal"))
	assert.Equal(t, []string{"other"}, r.order)
	require.Len(t, backend.draws, 1)
	assert.Same(t, other.BindGroupProvider(), backend.draws[0])
	assert.Equal(t, 1, backend.frames)

	other.Dispose()
	r.Flush()
	assert.Nil(t, r.Material("other"))
	require.NoError(t, r.RenderFrame())
	assert.Len(t, backend.draws, 1, "nothing left to draw")
}

func TestWGPUProgramSource(t *testing.T) {
	p := &wgpuProgram{key: "k", sources: [2]string{"vs", "fs"}}
	assert.Equal(t, "k", p.Key())
	assert.Equal(t, "vs", p.Source(shader.StageVertex))
	assert.Equal(t, "fs", p.Source(shader.StageFragment))
	assert.Equal(t, "", p.Source(shader.Stage(7)))
	p.Release()
	p.Release()
}
