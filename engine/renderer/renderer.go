package renderer

import (
	"errors"
	"fmt"
	"log"
	"sync"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/window"
	"github.com/cogentcore/webgpu/wgpu"
)

// ErrUniformLayoutMismatch is returned when a material's packed uniform block does not line up
// with the uniform struct its shader declares at the material's binding.
var ErrUniformLayoutMismatch = errors.New("uniform layout does not match shader")

// materialEntry pairs a registered material with the GPU pipeline that draws it.
type materialEntry struct {
	material material.Material
	pipeline *wgpu.RenderPipeline
}

// renderer is the implementation of the Renderer interface.
type renderer struct {
	mu *sync.Mutex

	materials map[string]materialEntry
	order     []string

	backendType RendererBackendType
	backend     RendererBackend

	// Pre-creation config collected from builder options
	forceFallbackAdapter bool
	pendingPresentMode   *PresentMode
	clearColor           common.Color
}

// Renderer draws time-driven materials to a window surface.
//
// It is the shader.Compiler materials are built with, so every Handle it hands out holds real GPU
// shader modules. Registered materials are drawn as full screen passes in registration order, and
// their staged uniform writes are uploaded once per frame by Flush.
type Renderer interface {
	shader.Compiler

	// RegisterMaterial allocates the uniform buffer for a material and builds its render pipeline.
	// The material must have been compiled by this renderer. Registering the same name twice is a no-op.
	//
	// Parameters:
	//   - m: the material to register
	//
	// Returns:
	//   - error: an error if buffer or pipeline creation fails
	RegisterMaterial(m material.Material) error

	// UnregisterMaterial releases the pipeline of a material. The material itself is not disposed.
	//
	// Parameters:
	//   - name: the material name
	UnregisterMaterial(name string)

	// Material retrieves a registered material by name, or nil.
	//
	// Parameters:
	//   - name: the material name
	//
	// Returns:
	//   - material.Material: the registered material, or nil if not found
	Material(name string) material.Material

	// Flush collects StagedWriteData from every registered material and uploads it. Materials that
	// were disposed while registered are unregistered first.
	Flush()

	// WriteBuffers writes all staged buffer writes to the GPU queue.
	//
	// Parameters:
	//   - writes: a slice of BufferWrite structs describing the data to write
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// RenderFrame flushes uniforms, draws every registered material and presents the frame.
	// A disposed material is unregistered instead of drawn.
	//
	// Returns:
	//   - error: an error if the swapchain texture could not be acquired
	RenderFrame() error

	// Resize configures the underlying backend to handle a new surface size.
	//
	// Parameters:
	//   - width: the new width of the surface in pixels
	//   - height: the new height of the surface in pixels
	Resize(width, height int)

	// SetPresentMode sets the surface present mode. A call to Resize is required for it to take effect.
	//
	// Parameters:
	//   - mode: the PresentMode to use
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the background color behind every material.
	//
	// Parameters:
	//   - color: the clear color
	SetClearColor(color common.Color)

	// Release frees all pipelines and the GPU device.
	Release()
}

var _ Renderer = &renderer{}

// NewRenderer creates a new Renderer bound to a window surface.
//
// Parameters:
//   - backendType: the type of rendering backend to use (e.g., WGPU)
//   - window: the window whose surface is rendered to
//   - options: variadic list of RendererBuilderOption functions to configure the Renderer
//
// Returns:
//   - Renderer: a new instance of Renderer configured with the specified backend and options
func NewRenderer(backendType RendererBackendType, window window.Window, options ...RendererBuilderOption) Renderer {
	r := &renderer{
		mu:          &sync.Mutex{},
		materials:   make(map[string]materialEntry),
		backendType: backendType,
		clearColor:  common.Black,
	}

	// Apply options first so config flags (e.g. forceFallbackAdapter) are
	// available before the backend requests a GPU adapter.
	for _, opt := range options {
		opt(r)
	}

	switch backendType {
	case BackendTypeWGPU:
		fallthrough
	default:
		r.backend = newWGPURendererBackend(window.SurfaceDescriptor(), r.forceFallbackAdapter)
	}

	return newRendererWithBackend(r, window.Width(), window.Height())
}

// newRendererWithBackend finishes construction once a backend is attached.
func newRendererWithBackend(r *renderer, width, height int) *renderer {
	if r.pendingPresentMode != nil {
		r.backend.SetPresentMode(*r.pendingPresentMode)
	}
	r.backend.SetClearColor(r.clearColor)
	r.backend.ConfigureSurface(width, height)
	return r
}

func (r *renderer) Compile(key, vertexSource, fragmentSource string) (shader.Program, error) {
	return r.backend.Compile(key, vertexSource, fragmentSource)
}

func (r *renderer) RegisterMaterial(m material.Material) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	name := m.Name()
	if _, exists := r.materials[name]; exists {
		return nil
	}

	provider := m.BindGroupProvider()
	if provider == nil {
		provider = bind_group_provider.NewBindGroupProvider(name)
	}
	if err := checkUniformLayout(m); err != nil {
		return fmt.Errorf("register material %q: %w", name, err)
	}
	_, size := m.Layout()
	if err := r.backend.InitUniformBuffer(provider, m.Binding(), uint64(size)); err != nil {
		return fmt.Errorf("register material %q: %w", name, err)
	}
	m.SetBindGroupProvider(provider)

	p, err := r.backend.CreateMaterialPipeline(name, m.Handle(), provider)
	if err != nil {
		return fmt.Errorf("register material %q: %w", name, err)
	}

	r.materials[name] = materialEntry{material: m, pipeline: p}
	r.order = append(r.order, name)
	return nil
}

// checkUniformLayout compares the material's packed layout with the uniform struct the shader
// declares at group 0 and the material's binding. Names are not compared, only placement.
// Shaders without a resolvable block there are accepted as they are.
func checkUniformLayout(m material.Material) error {
	block, ok := shader.FindUniformBlock(m.Handle(), 0, m.Binding())
	if !ok {
		return nil
	}
	fields, size := m.Layout()
	if len(fields) != len(block.Members) || size != block.Size {
		return fmt.Errorf("%d uniforms in %d bytes, %s.%s has %d members in %d bytes: %w",
			len(fields), size, block.Var, block.Struct, len(block.Members), block.Size, ErrUniformLayoutMismatch)
	}
	for i, f := range fields {
		member := block.Members[i]
		if f.Offset != member.Offset || f.Size != member.Size {
			return fmt.Errorf("uniform %q at %d (%d bytes), %s.%s at %d (%d bytes): %w",
				f.Name, f.Offset, f.Size, block.Var, member.Name, member.Offset, member.Size, ErrUniformLayoutMismatch)
		}
	}
	return nil
}

func (r *renderer) UnregisterMaterial(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.unregister(name)
}

// unregister must be called with mu held.
func (r *renderer) unregister(name string) {
	entry, exists := r.materials[name]
	if !exists {
		return
	}
	if entry.pipeline != nil {
		entry.pipeline.Release()
	}
	delete(r.materials, name)
	for i, n := range r.order {
		if n == name {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
}

// pruneDisposed unregisters every material that lost its program or GPU resources, which is
// what Dispose leaves behind. Must be called with mu held.
func (r *renderer) pruneDisposed() {
	var gone []string
	for _, name := range r.order {
		m := r.materials[name].material
		if m.Handle() == nil || m.BindGroupProvider() == nil {
			gone = append(gone, name)
		}
	}
	for _, name := range gone {
		log.Printf("[Renderer] material %q was disposed, unregistering", name)
		r.unregister(name)
	}
}

func (r *renderer) Material(name string) material.Material {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.materials[name].material
}

func (r *renderer) Flush() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.flush()
}

// flush must be called with mu held.
func (r *renderer) flush() {
	r.pruneDisposed()
	var writes []bind_group_provider.BufferWrite
	for _, name := range r.order {
		writes = append(writes, r.materials[name].material.StagedWriteData()...)
	}
	if len(writes) > 0 {
		r.backend.WriteBuffers(writes)
	}
}

func (r *renderer) WriteBuffers(writes []bind_group_provider.BufferWrite) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.backend.WriteBuffers(writes)
}

func (r *renderer) RenderFrame() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.flush()
	if err := r.backend.BeginFrame(); err != nil {
		return err
	}
	for _, name := range r.order {
		entry := r.materials[name]
		r.backend.Draw(entry.pipeline, entry.material.BindGroupProvider())
	}
	r.backend.EndFrame()
	r.backend.Present()
	return nil
}

func (r *renderer) Resize(width, height int) {
	r.backend.ConfigureSurface(width, height)
}

func (r *renderer) SetPresentMode(mode PresentMode) {
	r.backend.SetPresentMode(mode)
}

func (r *renderer) SetClearColor(color common.Color) {
	r.clearColor = color
	r.backend.SetClearColor(color)
}

func (r *renderer) Release() {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, entry := range r.materials {
		if entry.pipeline != nil {
			entry.pipeline.Release()
		}
	}
	r.materials = make(map[string]materialEntry)
	r.order = nil
	r.backend.Release()
}
