package material

import (
	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/bind_group_provider"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/uniform"
)

// MaterialBuilderOption is a function that configures a material instance during construction.
type MaterialBuilderOption func(*material)

// WithName is an option builder that sets the name of the material.
// The name doubles as the key the program is compiled under.
//
// Parameters:
//   - name: the identifier for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the name option to a material
func WithName(name string) MaterialBuilderOption {
	return func(m *material) {
		m.name = name
	}
}

// WithTimeUniform is an option builder that renames the reserved time uniform (defaults to "time").
//
// Parameters:
//   - name: the uniform name the shader reads accumulated time from
//
// Returns:
//   - MaterialBuilderOption: a function that applies the time uniform option to a material
func WithTimeUniform(name string) MaterialBuilderOption {
	return func(m *material) {
		if name != "" {
			m.timeUniform = name
		}
	}
}

// WithUniform is an option builder that declares a uniform and its default value.
// Declarations are registered in option order, which also fixes the GPU block layout.
//
// Parameters:
//   - name: the uniform name
//   - value: the default value
//
// Returns:
//   - MaterialBuilderOption: a function that applies the uniform declaration to a material
func WithUniform(name string, value uniform.Value) MaterialBuilderOption {
	return func(m *material) {
		m.declared = append(m.declared, namedValue{name: name, value: value})
	}
}

// WithColorStops is an option builder that declares the two gradient color uniforms used by SetColorStops.
//
// Parameters:
//   - startName: the uniform name of the gradient start color
//   - endName: the uniform name of the gradient end color
//   - start: the default start color
//   - end: the default end color
//
// Returns:
//   - MaterialBuilderOption: a function that applies the color stop option to a material
func WithColorStops(startName, endName string, start, end common.Color) MaterialBuilderOption {
	return func(m *material) {
		m.colorStartUniform = startName
		m.colorEndUniform = endName
		m.declared = append(m.declared,
			namedValue{name: startName, value: uniform.Color(start)},
			namedValue{name: endName, value: uniform.Color(end)},
		)
	}
}

// WithBinding is an option builder that sets the bind group binding index of the uniform block.
//
// Parameters:
//   - binding: the binding index
//
// Returns:
//   - MaterialBuilderOption: a function that applies the binding option to a material
func WithBinding(binding int) MaterialBuilderOption {
	return func(m *material) {
		m.binding = binding
	}
}

// WithBindGroupProvider is an option builder that sets the bind group provider for the material.
//
// Parameters:
//   - provider: the bind group provider containing GPU resources for the material
//
// Returns:
//   - MaterialBuilderOption: a function that applies the bind group provider option to a material
func WithBindGroupProvider(provider bind_group_provider.BindGroupProvider) MaterialBuilderOption {
	return func(m *material) {
		m.bindGroupProvider = provider
	}
}

// Portal uniform names and defaults.
const (
	PortalTimeUniform       = "uTime"
	PortalColorStartUniform = "uColorStart"
	PortalColorEndUniform   = "uColorEnd"
)

// NewPortalMaterial builds the animated portal surface: a noise swept gradient between two colors,
// white to black by default, using the embedded WGSL sources.
//
// Parameters:
//   - compiler: the engine boundary that compiles the sources
//   - options: extra options, applied after the portal defaults
//
// Returns:
//   - Material: the portal material
//   - error: a *shader.CompilationError from the engine
func NewPortalMaterial(compiler shader.Compiler, options ...MaterialBuilderOption) (Material, error) {
	opts := append([]MaterialBuilderOption{
		WithName("portal"),
		WithTimeUniform(PortalTimeUniform),
		WithColorStops(PortalColorStartUniform, PortalColorEndUniform, common.White, common.Black),
	}, options...)
	return NewTimeDrivenMaterial(compiler, PortalVertexSource, PortalFragmentSource, opts...)
}
