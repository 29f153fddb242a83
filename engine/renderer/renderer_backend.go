package renderer

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/cogentcore/webgpu/wgpu"
)

// RendererBackendType identifies the GPU backend implementation used by the Renderer.
type RendererBackendType int

const (
	// BackendTypeWGPU selects the WebGPU-based rendering backend.
	BackendTypeWGPU RendererBackendType = iota
)

// PresentMode controls how rendered frames are presented to the display surface.
type PresentMode int

const (
	// PresentModeVSync waits for the next vertical blank before presenting, capping frame rate
	// to the monitor's refresh rate. Eliminates tearing.
	PresentModeVSync PresentMode = iota

	// PresentModeUncapped presents frames immediately without waiting for vertical blank.
	// May cause screen tearing but provides the lowest latency.
	PresentModeUncapped
)

// RendererBackend is the GPU API the Renderer delegates to.
type RendererBackend interface {
	shader.Compiler

	// ConfigureSurface (re)configures the swapchain for a surface size.
	ConfigureSurface(width, height int)

	// SetPresentMode stores the present mode used by the next ConfigureSurface.
	SetPresentMode(mode PresentMode)

	// SetClearColor sets the color the frame is cleared to before any material draws.
	SetClearColor(color common.Color)

	// InitUniformBuffer creates a uniform buffer, its bind group layout and bind group, and stores
	// all three on the provider.
	//
	// Parameters:
	//   - provider: the BindGroupProvider to store the resources on
	//   - binding: the binding index of the buffer
	//   - size: the buffer size in bytes
	//
	// Returns:
	//   - error: an error if any GPU resource could not be created
	InitUniformBuffer(provider bind_group_provider.BindGroupProvider, binding int, size uint64) error

	// CreateMaterialPipeline builds a full screen render pipeline from a program compiled by this backend.
	//
	// Parameters:
	//   - key: the pipeline label
	//   - program: a program returned by Compile
	//   - provider: the provider whose bind group layout is bound at group 0
	//
	// Returns:
	//   - *wgpu.RenderPipeline: the created pipeline
	//   - error: an error if the program was not compiled by this backend or creation fails
	CreateMaterialPipeline(key string, program shader.Program, provider bind_group_provider.BindGroupProvider) (*wgpu.RenderPipeline, error)

	// WriteBuffers uploads staged writes to the GPU queue.
	WriteBuffers(writes []bind_group_provider.BufferWrite)

	// BeginFrame acquires the swapchain texture and begins the render pass.
	BeginFrame() error

	// Draw encodes one full screen draw within the current render pass.
	Draw(p *wgpu.RenderPipeline, provider bind_group_provider.BindGroupProvider)

	// EndFrame ends the render pass and submits the command buffer.
	EndFrame()

	// Present presents the surface and releases the swapchain texture.
	Present()

	// Release frees the device, surface and instance.
	Release()
}
