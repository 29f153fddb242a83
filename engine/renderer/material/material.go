package material

import (
	"errors"
	"fmt"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
)

// DefaultTimeUniform is the reserved name of the accumulated time uniform.
const DefaultTimeUniform = "time"

var (
	// ErrDisposed is returned by every mutating call on a disposed material.
	ErrDisposed = errors.New("material disposed")
	// ErrReservedUniform is returned when external code tries to write the time uniform directly.
	ErrReservedUniform = errors.New("uniform is reserved")
)

// namedValue is a uniform default declared through a builder option.
type namedValue struct {
	name  string
	value uniform.Value
}

// material is the implementation of the Material interface.
type material struct {
	name        string
	timeUniform string
	declared    []namedValue

	colorStartUniform string
	colorEndUniform   string

	program  shader.Program
	uniforms uniform.Store
	elapsed  float64

	binding           int
	bindGroupProvider bind_group_provider.BindGroupProvider
	dirty             bool
	disposed          bool
}

// Material is a shader-backed surface whose appearance is driven by a continuously advancing time uniform.
//
// The material owns its uniform store exclusively. The time uniform only moves forward through Advance
// (or back to zero through Reset). Every mutation marks the uniform block dirty so the next
// StagedWriteData call hands the renderer a fresh upload.
type Material interface {
	// Name retrieves the material identifier.
	//
	// Returns:
	//   - string: the name of the material
	Name() string

	// Handle retrieves the compiled shader program a renderable surface attaches to.
	// The handle stays the same for the lifetime of the material.
	//
	// Returns:
	//   - shader.Program: the compiled program, or nil after Dispose
	Handle() shader.Program

	// TimeUniform retrieves the name of the reserved time uniform.
	//
	// Returns:
	//   - string: the time uniform name
	TimeUniform() string

	// Time retrieves the accumulated time in seconds.
	//
	// Returns:
	//   - float64: the current value of the time uniform
	Time() float64

	// Advance adds deltaSeconds to the time uniform. A zero delta is a no-op.
	// Other uniforms are never touched.
	//
	// Parameters:
	//   - deltaSeconds: the elapsed time since the previous frame, must be >= 0
	//
	// Returns:
	//   - error: common.ErrInvalidTimeStep for negative or non-finite input (state unchanged), ErrDisposed after Dispose
	Advance(deltaSeconds float64) error

	// Reset rewinds the time uniform to zero. This is the only way time can decrease.
	Reset()

	// SetColorStops updates the two gradient color uniforms.
	//
	// Parameters:
	//   - start: the gradient start color
	//   - end: the gradient end color
	//
	// Returns:
	//   - error: uniform.ErrTypeMismatch if the material was built without color stops
	SetColorStops(start, end common.Color) error

	// ColorStops retrieves the current gradient colors.
	//
	// Returns:
	//   - common.Color: the start color
	//   - common.Color: the end color
	//   - error: uniform.ErrTypeMismatch if the material was built without color stops
	ColorStops() (common.Color, common.Color, error)

	// Uniform retrieves the current value of a uniform.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - uniform.Value: the current value
	//   - error: uniform.ErrUnknownUniform if not registered
	Uniform(name string) (uniform.Value, error)

	// SetUniform writes a caller-declared uniform.
	//
	// Parameters:
	//   - name: the uniform name
	//   - value: the new value, which must match the registered type
	//
	// Returns:
	//   - error: ErrReservedUniform for the time uniform, otherwise the store's error
	SetUniform(name string, value uniform.Value) error

	// Layout retrieves the std140 placement of the uniform block.
	//
	// Returns:
	//   - []uniform.Field: one entry per uniform in registration order
	//   - int: the block size in bytes
	Layout() ([]uniform.Field, int)

	// Binding retrieves the bind group binding index of the uniform block.
	//
	// Returns:
	//   - int: the binding index
	Binding() int

	// BindGroupProvider retrieves the provider holding GPU-side resources for this material.
	//
	// Returns:
	//   - bind_group_provider.BindGroupProvider: the provider, or nil if not yet initialized
	BindGroupProvider() bind_group_provider.BindGroupProvider

	// SetBindGroupProvider sets the bind group provider for this material and marks the block dirty.
	//
	// Parameters:
	//   - provider: the bind group provider containing GPU resources for this material
	SetBindGroupProvider(provider bind_group_provider.BindGroupProvider)

	// StagedWriteData returns and clears the pending GPU buffer write for the uniform block.
	// Returns nil when nothing changed since the last call or no provider is attached.
	//
	// Returns:
	//   - []bind_group_provider.BufferWrite: the pending writes
	StagedWriteData() []bind_group_provider.BufferWrite

	// Dispose releases the program and GPU resources and drops the uniform store. Safe to call twice.
	Dispose()
}

var _ Material = &material{}

// NewTimeDrivenMaterial compiles a shader pair through the external engine and registers the declared
// uniforms plus the reserved time uniform (initialized to 0) into a fresh store.
//
// A compilation failure aborts creation entirely; no partially working material is returned.
//
// Parameters:
//   - compiler: the engine boundary that compiles the sources
//   - vertexSource: vertex stage source, passed through uninterpreted
//   - fragmentSource: fragment stage source, passed through uninterpreted
//   - options: variadic list of MaterialBuilderOption functions to configure the material
//
// Returns:
//   - Material: the new material
//   - error: a *shader.CompilationError from the engine, or a uniform registration error
func NewTimeDrivenMaterial(compiler shader.Compiler, vertexSource, fragmentSource string, options ...MaterialBuilderOption) (Material, error) {
	m := &material{
		name:        "material",
		timeUniform: DefaultTimeUniform,
		uniforms:    uniform.NewStore(),
	}
	for _, opt := range options {
		opt(m)
	}
	if compiler == nil {
		return nil, errors.New("material requires a shader compiler")
	}

	program, err := compiler.Compile(m.name, vertexSource, fragmentSource)
	if err != nil {
		return nil, fmt.Errorf("create material %q: %w", m.name, err)
	}

	if err := m.uniforms.Register(m.timeUniform, uniform.Float(0)); err != nil {
		program.Release()
		return nil, err
	}
	for _, d := range m.declared {
		if err := m.uniforms.Register(d.name, d.value); err != nil {
			program.Release()
			return nil, fmt.Errorf("create material %q: %w", m.name, err)
		}
	}
	// A declared default for the time uniform never survives creation.
	_ = m.uniforms.Set(m.timeUniform, uniform.Float(0))

	m.program = program
	m.declared = nil
	m.dirty = true
	return m, nil
}

func (m *material) Name() string {
	return m.name
}

func (m *material) Handle() shader.Program {
	return m.program
}

func (m *material) TimeUniform() string {
	return m.timeUniform
}

func (m *material) Time() float64 {
	return m.elapsed
}

func (m *material) Advance(deltaSeconds float64) error {
	if m.disposed {
		return ErrDisposed
	}
	if err := common.ValidateTimeStep(deltaSeconds); err != nil {
		return fmt.Errorf("advance material %q: %w", m.name, err)
	}
	if deltaSeconds == 0 {
		return nil
	}
	m.elapsed += deltaSeconds
	m.dirty = true
	return m.uniforms.Set(m.timeUniform, uniform.Float(m.elapsed))
}

func (m *material) Reset() {
	if m.disposed {
		return
	}
	m.elapsed = 0
	m.dirty = true
	_ = m.uniforms.Set(m.timeUniform, uniform.Float(0))
}

func (m *material) SetColorStops(start, end common.Color) error {
	if m.disposed {
		return ErrDisposed
	}
	if m.colorStartUniform == "" || m.colorEndUniform == "" {
		return fmt.Errorf("material %q has no color stops: %w", m.name, uniform.ErrTypeMismatch)
	}
	// Both stops are color typed by construction, so the second write cannot fail after the first succeeded.
	if err := m.uniforms.Set(m.colorStartUniform, uniform.Color(start)); err != nil {
		return err
	}
	if err := m.uniforms.Set(m.colorEndUniform, uniform.Color(end)); err != nil {
		return err
	}
	m.dirty = true
	return nil
}

func (m *material) ColorStops() (common.Color, common.Color, error) {
	if m.colorStartUniform == "" || m.colorEndUniform == "" {
		return common.Color{}, common.Color{}, fmt.Errorf("material %q has no color stops: %w", m.name, uniform.ErrTypeMismatch)
	}
	start, err := m.uniforms.Get(m.colorStartUniform)
	if err != nil {
		return common.Color{}, common.Color{}, err
	}
	end, err := m.uniforms.Get(m.colorEndUniform)
	if err != nil {
		return common.Color{}, common.Color{}, err
	}
	return start.AsColor(), end.AsColor(), nil
}

func (m *material) Uniform(name string) (uniform.Value, error) {
	return m.uniforms.Get(name)
}

func (m *material) SetUniform(name string, value uniform.Value) error {
	if m.disposed {
		return ErrDisposed
	}
	if name == m.timeUniform {
		return fmt.Errorf("set %q: %w", name, ErrReservedUniform)
	}
	if err := m.uniforms.Set(name, value); err != nil {
		return err
	}
	m.dirty = true
	return nil
}

func (m *material) Layout() ([]uniform.Field, int) {
	return m.uniforms.Layout()
}

func (m *material) Binding() int {
	return m.binding
}

func (m *material) BindGroupProvider() bind_group_provider.BindGroupProvider {
	return m.bindGroupProvider
}

func (m *material) SetBindGroupProvider(provider bind_group_provider.BindGroupProvider) {
	m.bindGroupProvider = provider
	m.dirty = true
}

func (m *material) StagedWriteData() []bind_group_provider.BufferWrite {
	if !m.dirty || m.bindGroupProvider == nil || m.disposed {
		return nil
	}
	m.dirty = false
	return []bind_group_provider.BufferWrite{{
		Provider: m.bindGroupProvider,
		Binding:  m.binding,
		Offset:   0,
		Data:     m.uniforms.Pack(),
	}}
}

func (m *material) Dispose() {
	if m.disposed {
		return
	}
	m.disposed = true
	if m.program != nil {
		m.program.Release()
		m.program = nil
	}
	if m.bindGroupProvider != nil {
		m.bindGroupProvider.Release()
		m.bindGroupProvider = nil
	}
	m.uniforms.Clear()
}
