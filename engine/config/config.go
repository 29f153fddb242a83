package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strings"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/effect"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/material"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/pipeline"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/shader"
	"gopkg.in/yaml.v3"
)

// ErrInvalidConfig is returned when a scene file is structurally wrong: unknown effect kinds,
// duplicate effect names, controls that point nowhere.
var ErrInvalidConfig = errors.New("invalid scene config")

// Effect kinds understood by BuildPipeline.
const (
	KindDrunk        = "drunk"
	KindVignette     = "vignette"
	KindBloom        = "bloom"
	KindDepthOfField = "depth_of_field"
	KindNoise        = "noise"
	KindGlitch       = "glitch"
)

// EffectsPipelineKey is the key of the pipeline BuildPipeline creates.
const EffectsPipelineKey = "effects"

// Config represents a scene-effects file.
type Config struct {
	Window   WindowConfig       `yaml:"window"`
	Engine   EngineConfig       `yaml:"engine"`
	Portal   PortalConfig       `yaml:"portal"`
	Effects  []EffectConfig     `yaml:"effects"`
	Controls map[string]Control `yaml:"controls"`
}

// WindowConfig contains window-related configuration
type WindowConfig struct {
	Title      string `yaml:"title"`
	Width      int    `yaml:"width"`
	Height     int    `yaml:"height"`
	VSync      bool   `yaml:"vsync"`
	Background Color  `yaml:"background"`
}

// EngineConfig contains frame scheduler configuration
type EngineConfig struct {
	TickRate      float64 `yaml:"tick_rate"`
	FailurePolicy string  `yaml:"failure_policy"` // skip-frame, halt
	Profiling     bool    `yaml:"profiling"`
}

// PortalConfig describes the time-driven material drawn behind the effects.
// Empty shader paths select the embedded portal sources.
type PortalConfig struct {
	Name           string `yaml:"name"`
	VertexShader   string `yaml:"vertex_shader"`
	FragmentShader string `yaml:"fragment_shader"`
	TimeUniform    string `yaml:"time_uniform"`
	ColorStartName string `yaml:"color_start_uniform"`
	ColorEndName   string `yaml:"color_end_uniform"`
	ColorStart     Color  `yaml:"color_start"`
	ColorEnd       Color  `yaml:"color_end"`
}

// EffectConfig is one stage of the effect stack. Parameters left out keep the stage's defaults;
// parameters that do not belong to the kind are rejected by Validate.
type EffectConfig struct {
	// Name identifies the stage for controls, defaults to Kind.
	Name  string            `yaml:"name,omitempty"`
	Kind  string            `yaml:"kind"`
	Blend *effect.BlendMode `yaml:"blend,omitempty"`

	// drunk
	Frequency *float64 `yaml:"frequency,omitempty"`
	Amplitude *float64 `yaml:"amplitude,omitempty"`

	// vignette
	Offset   *float64 `yaml:"offset,omitempty"`
	Darkness *float64 `yaml:"darkness,omitempty"`

	// bloom
	Intensity          *float64 `yaml:"intensity,omitempty"`
	LuminanceThreshold *float64 `yaml:"luminance_threshold,omitempty"`
	LuminanceSmoothing *float64 `yaml:"luminance_smoothing,omitempty"`

	// depth_of_field
	FocusDistance *float64 `yaml:"focus_distance,omitempty"`
	FocalLength   *float64 `yaml:"focal_length,omitempty"`
	BokehScale    *float64 `yaml:"bokeh_scale,omitempty"`

	// noise
	Premultiply *bool    `yaml:"premultiply,omitempty"`
	Opacity     *float64 `yaml:"opacity,omitempty"`

	// glitch
	Delay    *[2]float64 `yaml:"delay,omitempty"`
	Duration *[2]float64 `yaml:"duration,omitempty"`
	Strength *[2]float64 `yaml:"strength,omitempty"`
	Mode     string      `yaml:"mode,omitempty"`
	Seed     *int64      `yaml:"seed,omitempty"`
}

// ID returns the name controls address the stage by.
func (e EffectConfig) ID() string {
	return common.Coalesce(e.Name, e.Kind)
}

// Color is a common.Color written as a hex string in YAML.
type Color struct {
	common.Color
}

// UnmarshalYAML parses a "#rrggbb" or "#rgb" scalar.
func (c *Color) UnmarshalYAML(value *yaml.Node) error {
	var hex string
	if err := value.Decode(&hex); err != nil {
		return err
	}
	parsed, err := common.ParseColor(hex)
	if err != nil {
		return fmt.Errorf("line %d: %w", value.Line, err)
	}
	c.Color = parsed
	return nil
}

// MarshalYAML writes the color back as hex.
func (c Color) MarshalYAML() (interface{}, error) {
	return c.Hex(), nil
}

// DefaultConfig returns the default scene: the white to black portal under a drunk stage,
// with the drunk tunables exposed as controls.
//
// Returns:
//   - *Config: a fresh default configuration
func DefaultConfig() *Config {
	return &Config{
		Window: WindowConfig{
			Title:      "oxy-fx",
			Width:      1280,
			Height:     720,
			VSync:      true,
			Background: Color{common.Black},
		},
		Engine: EngineConfig{
			TickRate:      60,
			FailurePolicy: engine.FailurePolicySkipFrame.String(),
		},
		Portal: PortalConfig{
			Name:           "portal",
			TimeUniform:    material.PortalTimeUniform,
			ColorStartName: material.PortalColorStartUniform,
			ColorEndName:   material.PortalColorEndUniform,
			ColorStart:     Color{common.White},
			ColorEnd:       Color{common.Black},
		},
		Effects: []EffectConfig{{Kind: KindDrunk}},
		Controls: map[string]Control{
			"drunk.frequency": {Value: 2, Min: 1, Max: 20},
			"drunk.amplitude": {Value: 0.1, Min: 0, Max: 1},
		},
	}
}

// Load reads and validates a scene file.
//
// Parameters:
//   - path: the YAML file to read
//
// Returns:
//   - *Config: the parsed configuration
//   - error: an error if the file cannot be read, parsed or validated
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse decodes a scene file over DefaultConfig and validates it. Keys that do not exist are errors.
// A document that sets effects or controls replaces the default list or map entirely.
//
// Parameters:
//   - data: the YAML document
//
// Returns:
//   - *Config: the parsed configuration
//   - error: a decode error, or ErrInvalidConfig / effect.ErrInvalidParameter from Validate
func Parse(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	raw := struct {
		Window   *WindowConfig      `yaml:"window"`
		Engine   *EngineConfig      `yaml:"engine"`
		Portal   *PortalConfig      `yaml:"portal"`
		Effects  []EffectConfig     `yaml:"effects"`
		Controls map[string]Control `yaml:"controls"`
	}{Window: &cfg.Window, Engine: &cfg.Engine, Portal: &cfg.Portal}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}
	if raw.Effects != nil {
		cfg.Effects = raw.Effects
	}
	if raw.Controls != nil {
		cfg.Controls = raw.Controls
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Save writes the configuration as YAML.
//
// Parameters:
//   - path: the file to write
//
// Returns:
//   - error: an error if encoding or writing fails
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

// Validate checks the window, engine and effect sections, then every control against the stage
// it tunes. Effect parameter ranges are checked by building the stages.
//
// Returns:
//   - error: ErrInvalidConfig for structural problems, effect.ErrInvalidParameter for bad values
func (c *Config) Validate() error {
	if c.Window.Width < 0 || c.Window.Height < 0 {
		return fmt.Errorf("window size %dx%d: %w", c.Window.Width, c.Window.Height, ErrInvalidConfig)
	}
	if c.Engine.TickRate < 0 || !common.IsFinite(c.Engine.TickRate) {
		return fmt.Errorf("tick rate %v: %w", c.Engine.TickRate, ErrInvalidConfig)
	}
	if _, err := c.FailurePolicy(); err != nil {
		return err
	}

	ids := make(map[string]EffectConfig, len(c.Effects))
	for i, e := range c.Effects {
		if e.Kind == "" {
			return fmt.Errorf("effect %d has no kind: %w", i, ErrInvalidConfig)
		}
		if _, dup := ids[e.ID()]; dup {
			return fmt.Errorf("effect %q declared twice: %w", e.ID(), ErrInvalidConfig)
		}
		if _, err := e.Build(); err != nil {
			return fmt.Errorf("effect %d: %w", i, err)
		}
		ids[e.ID()] = e
	}

	for _, key := range c.controlKeys() {
		ctrl := c.Controls[key]
		id, param, ok := strings.Cut(key, ".")
		if !ok {
			return fmt.Errorf("control %q is not <effect>.<param>: %w", key, ErrInvalidConfig)
		}
		e, found := ids[id]
		if !found {
			return fmt.Errorf("control %q: no effect named %q: %w", key, id, ErrInvalidConfig)
		}
		if !supportsParam(e.Kind, param) {
			return fmt.Errorf("control %q: %s has no tunable %q: %w", key, e.Kind, param, ErrInvalidConfig)
		}
		if err := ctrl.Validate(); err != nil {
			return fmt.Errorf("control %q: %w", key, err)
		}
	}
	return nil
}

// FailurePolicy resolves the engine failure policy name.
//
// Returns:
//   - engine.FailurePolicy: the policy
//   - error: ErrInvalidConfig for unknown names
func (c *Config) FailurePolicy() (engine.FailurePolicy, error) {
	switch strings.ToLower(strings.TrimSpace(c.Engine.FailurePolicy)) {
	case "", engine.FailurePolicySkipFrame.String():
		return engine.FailurePolicySkipFrame, nil
	case engine.FailurePolicyHalt.String():
		return engine.FailurePolicyHalt, nil
	default:
		return 0, fmt.Errorf("failure policy %q: %w", c.Engine.FailurePolicy, ErrInvalidConfig)
	}
}

// controlKeys returns the control names sorted, so validation and panels are deterministic.
func (c *Config) controlKeys() []string {
	keys := make([]string, 0, len(c.Controls))
	for k := range c.Controls {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// BuildMaterial compiles the portal material. With both shader paths set the sources are read
// from disk and the configured uniform names are declared; otherwise the embedded portal is used.
// The configured color stops are applied either way.
//
// Parameters:
//   - compiler: the engine boundary that compiles the sources
//
// Returns:
//   - material.Material: the compiled material
//   - error: a file error or a *shader.CompilationError
func (c *Config) BuildMaterial(compiler shader.Compiler) (material.Material, error) {
	p := c.Portal
	name := common.Coalesce(p.Name, "portal")

	if p.VertexShader == "" && p.FragmentShader == "" {
		m, err := material.NewPortalMaterial(compiler,
			material.WithName(name),
			material.WithTimeUniform(p.TimeUniform),
		)
		if err != nil {
			return nil, err
		}
		if err := m.SetColorStops(p.ColorStart.Color, p.ColorEnd.Color); err != nil {
			m.Dispose()
			return nil, err
		}
		return m, nil
	}

	if p.VertexShader == "" || p.FragmentShader == "" {
		return nil, fmt.Errorf("portal needs both vertex_shader and fragment_shader: %w", ErrInvalidConfig)
	}
	vertex, err := os.ReadFile(p.VertexShader)
	if err != nil {
		return nil, fmt.Errorf("read vertex shader: %w", err)
	}
	fragment, err := os.ReadFile(p.FragmentShader)
	if err != nil {
		return nil, fmt.Errorf("read fragment shader: %w", err)
	}
	return material.NewTimeDrivenMaterial(compiler, string(vertex), string(fragment),
		material.WithName(name),
		material.WithTimeUniform(p.TimeUniform),
		material.WithColorStops(
			common.Coalesce(p.ColorStartName, material.PortalColorStartUniform),
			common.Coalesce(p.ColorEndName, material.PortalColorEndUniform),
			p.ColorStart.Color, p.ColorEnd.Color,
		),
	)
}

// BuildPipeline creates every effect stage in file order and applies the initial control values.
// The pipeline is keyed EffectsPipelineKey.
//
// Returns:
//   - pipeline.Pipeline: the effect pipeline
//   - *Panel: the controls bound to the pipeline's stages
//   - error: ErrInvalidConfig or effect.ErrInvalidParameter
func (c *Config) BuildPipeline() (pipeline.Pipeline, *Panel, error) {
	p, err := pipeline.NewPipeline(EffectsPipelineKey)
	if err != nil {
		return nil, nil, err
	}
	nodes := make(map[string]effect.Node, len(c.Effects))
	for i, e := range c.Effects {
		if _, dup := nodes[e.ID()]; dup {
			return nil, nil, fmt.Errorf("effect %q declared twice: %w", e.ID(), ErrInvalidConfig)
		}
		node, err := e.Build()
		if err != nil {
			return nil, nil, fmt.Errorf("effect %d: %w", i, err)
		}
		if err := p.Append(node); err != nil {
			return nil, nil, err
		}
		nodes[e.ID()] = node
	}

	panel := newPanel()
	for _, key := range c.controlKeys() {
		id, param, _ := strings.Cut(key, ".")
		node, found := nodes[id]
		if !found {
			return nil, nil, fmt.Errorf("control %q: no effect named %q: %w", key, id, ErrInvalidConfig)
		}
		if err := panel.bind(key, c.Controls[key], node, param); err != nil {
			return nil, nil, err
		}
	}
	return p, panel, nil
}

// Build creates the effect stage described by e, starting from the kind's defaults.
//
// Returns:
//   - effect.Node: the configured stage
//   - error: ErrInvalidConfig for unknown kinds or foreign parameters, effect.ErrInvalidParameter for bad values
func (e EffectConfig) Build() (effect.Node, error) {
	if foreign := e.foreignParams(); len(foreign) > 0 {
		return nil, fmt.Errorf("%s does not take %s: %w", e.Kind, strings.Join(foreign, ", "), ErrInvalidConfig)
	}

	switch e.Kind {
	case KindDrunk:
		p := effect.DefaultDrunkParams()
		set(&p.Frequency, e.Frequency)
		set(&p.Amplitude, e.Amplitude)
		set(&p.BlendMode, e.Blend)
		return effect.NewDrunk(p)
	case KindVignette:
		p := effect.DefaultVignetteParams()
		set(&p.Offset, e.Offset)
		set(&p.Darkness, e.Darkness)
		set(&p.BlendMode, e.Blend)
		return effect.NewVignette(p)
	case KindBloom:
		p := effect.DefaultBloomParams()
		set(&p.Intensity, e.Intensity)
		set(&p.LuminanceThreshold, e.LuminanceThreshold)
		set(&p.LuminanceSmoothing, e.LuminanceSmoothing)
		set(&p.BlendMode, e.Blend)
		return effect.NewBloom(p)
	case KindDepthOfField:
		p := effect.DefaultDepthOfFieldParams()
		set(&p.FocusDistance, e.FocusDistance)
		set(&p.FocalLength, e.FocalLength)
		set(&p.BokehScale, e.BokehScale)
		set(&p.BlendMode, e.Blend)
		return effect.NewDepthOfField(p)
	case KindNoise:
		p := effect.DefaultNoiseParams()
		set(&p.Premultiply, e.Premultiply)
		set(&p.Opacity, e.Opacity)
		set(&p.BlendMode, e.Blend)
		return effect.NewNoise(p)
	case KindGlitch:
		p := effect.DefaultGlitchParams()
		set(&p.Delay, e.Delay)
		set(&p.Duration, e.Duration)
		set(&p.Strength, e.Strength)
		set(&p.Seed, e.Seed)
		set(&p.BlendMode, e.Blend)
		if e.Mode != "" {
			mode, err := effect.ParseGlitchMode(e.Mode)
			if err != nil {
				return nil, err
			}
			p.Mode = mode
		}
		return effect.NewGlitch(p)
	default:
		return nil, fmt.Errorf("effect kind %q: %w", e.Kind, ErrInvalidConfig)
	}
}

// foreignParams lists the YAML keys set on e that its kind does not read.
func (e EffectConfig) foreignParams() []string {
	present := map[string]bool{
		"frequency":           e.Frequency != nil,
		"amplitude":           e.Amplitude != nil,
		"offset":              e.Offset != nil,
		"darkness":            e.Darkness != nil,
		"intensity":           e.Intensity != nil,
		"luminance_threshold": e.LuminanceThreshold != nil,
		"luminance_smoothing": e.LuminanceSmoothing != nil,
		"focus_distance":      e.FocusDistance != nil,
		"focal_length":        e.FocalLength != nil,
		"bokeh_scale":         e.BokehScale != nil,
		"premultiply":         e.Premultiply != nil,
		"opacity":             e.Opacity != nil,
		"delay":               e.Delay != nil,
		"duration":            e.Duration != nil,
		"strength":            e.Strength != nil,
		"mode":                e.Mode != "",
		"seed":                e.Seed != nil,
	}
	allowed := kindParams[e.Kind]
	var foreign []string
	for key, ok := range present {
		if ok && !contains(allowed, key) {
			foreign = append(foreign, key)
		}
	}
	sort.Strings(foreign)
	return foreign
}

// kindParams are the YAML parameter keys each kind reads, besides blend.
var kindParams = map[string][]string{
	KindDrunk:        {"frequency", "amplitude"},
	KindVignette:     {"offset", "darkness"},
	KindBloom:        {"intensity", "luminance_threshold", "luminance_smoothing"},
	KindDepthOfField: {"focus_distance", "focal_length", "bokeh_scale"},
	KindNoise:        {"premultiply", "opacity"},
	KindGlitch:       {"delay", "duration", "strength", "mode", "seed"},
}

func contains(list []string, s string) bool {
	for _, x := range list {
		if x == s {
			return true
		}
	}
	return false
}

// set copies *src into *dst when the field was present in the file.
func set[T any](dst *T, src *T) {
	if src != nil {
		*dst = *src
	}
}
