package config

import (
	"fmt"
	"log"
	"sort"

	"github.com/Carmen-Shannon/oxy-fx/common"
	"github.com/Carmen-Shannon/oxy-fx/engine/renderer/effect"
)

// Control is one debug-panel slider: a current value and the closed range it may move in.
type Control struct {
	Value float64 `yaml:"value"`
	Min   float64 `yaml:"min"`
	Max   float64 `yaml:"max"`
}

// Validate checks that the range is well formed and holds the current value.
func (c Control) Validate() error {
	if !common.IsFinite(c.Min) || !common.IsFinite(c.Max) || c.Min > c.Max {
		return fmt.Errorf("range [%v, %v]: %w", c.Min, c.Max, ErrInvalidConfig)
	}
	return c.check(c.Value)
}

func (c Control) check(value float64) error {
	if !common.IsFinite(value) || value < c.Min || value > c.Max {
		return fmt.Errorf("value %v outside [%v, %v]: %w", value, c.Min, c.Max, effect.ErrInvalidParameter)
	}
	return nil
}

// Apply moves the control to value. Values outside [Min, Max] are rejected, never clamped,
// and leave the control unchanged.
//
// Parameters:
//   - value: the new value
//
// Returns:
//   - error: effect.ErrInvalidParameter if value is out of range
func (c *Control) Apply(value float64) error {
	if err := c.check(value); err != nil {
		return err
	}
	c.Value = value
	return nil
}

// binding ties a control to the stage parameter it tunes.
type binding struct {
	control Control
	apply   func(float64) error
}

// Panel is the set of live controls of a built pipeline. Setting a control reconfigures its
// stage between frames; like the stages themselves it is not safe for concurrent use.
type Panel struct {
	bindings map[string]*binding
}

func newPanel() *Panel {
	return &Panel{bindings: make(map[string]*binding)}
}

// bind attaches a control to node's param and pushes the control's current value into the node.
func (p *Panel) bind(key string, ctrl Control, node effect.Node, param string) error {
	apply, err := paramSetter(node, param)
	if err != nil {
		return fmt.Errorf("control %q: %w", key, err)
	}
	if err := ctrl.Validate(); err != nil {
		return fmt.Errorf("control %q: %w", key, err)
	}
	if err := apply(ctrl.Value); err != nil {
		return fmt.Errorf("control %q: %w", key, err)
	}
	p.bindings[key] = &binding{control: ctrl, apply: apply}
	return nil
}

// Names returns the control names in sorted order.
//
// Returns:
//   - []string: the control names, e.g. "drunk.frequency"
func (p *Panel) Names() []string {
	names := make([]string, 0, len(p.bindings))
	for name := range p.bindings {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Control retrieves a control by name.
//
// Parameters:
//   - name: the control name
//
// Returns:
//   - Control: the control's current state
//   - bool: false if no such control exists
func (p *Panel) Control(name string) (Control, bool) {
	b, ok := p.bindings[name]
	if !ok {
		return Control{}, false
	}
	return b.control, true
}

// Set moves a control and reconfigures the stage it is bound to. If either the control range or
// the stage rejects the value, neither changes.
//
// Parameters:
//   - name: the control name
//   - value: the new value
//
// Returns:
//   - error: ErrInvalidConfig for unknown controls, effect.ErrInvalidParameter for rejected values
func (p *Panel) Set(name string, value float64) error {
	b, ok := p.bindings[name]
	if !ok {
		return fmt.Errorf("control %q: %w", name, ErrInvalidConfig)
	}
	next := b.control
	if err := next.Apply(value); err != nil {
		return fmt.Errorf("control %q: %w", name, err)
	}
	if err := b.apply(value); err != nil {
		return fmt.Errorf("control %q: %w", name, err)
	}
	b.control = next
	log.Printf("[Panel] %s = %v", name, value)
	return nil
}

// Nudge moves a control by step and clamps the result to its range, for keyboard driven tuning.
//
// Parameters:
//   - name: the control name
//   - step: the signed increment
//
// Returns:
//   - float64: the value after the move
//   - error: as Set
func (p *Panel) Nudge(name string, step float64) (float64, error) {
	b, ok := p.bindings[name]
	if !ok {
		return 0, fmt.Errorf("control %q: %w", name, ErrInvalidConfig)
	}
	value := common.Clamp(b.control.Value+step, b.control.Min, b.control.Max)
	if err := p.Set(name, value); err != nil {
		return b.control.Value, err
	}
	return value, nil
}

// tunables are the float parameters a control may address, per kind.
var tunables = map[string][]string{
	KindDrunk:        {"frequency", "amplitude"},
	KindVignette:     {"offset", "darkness"},
	KindBloom:        {"intensity", "luminance_threshold", "luminance_smoothing"},
	KindDepthOfField: {"focus_distance", "focal_length", "bokeh_scale"},
	KindNoise:        {"opacity"},
}

func supportsParam(kind, param string) bool {
	return contains(tunables[kind], param)
}

// paramSetter returns a function that reconfigures one float parameter of node.
func paramSetter(node effect.Node, param string) (func(float64) error, error) {
	unknown := fmt.Errorf("%s has no tunable %q: %w", node.Name(), param, ErrInvalidConfig)

	switch n := node.(type) {
	case *effect.Drunk:
		field := map[string]func(*effect.DrunkParams) *float64{
			"frequency": func(p *effect.DrunkParams) *float64 { return &p.Frequency },
			"amplitude": func(p *effect.DrunkParams) *float64 { return &p.Amplitude },
		}[param]
		if field == nil {
			return nil, unknown
		}
		return func(v float64) error {
			p := n.Params()
			*field(&p) = v
			return n.Configure(p)
		}, nil
	case *effect.Vignette:
		field := map[string]func(*effect.VignetteParams) *float64{
			"offset":   func(p *effect.VignetteParams) *float64 { return &p.Offset },
			"darkness": func(p *effect.VignetteParams) *float64 { return &p.Darkness },
		}[param]
		if field == nil {
			return nil, unknown
		}
		return func(v float64) error {
			p := n.Params()
			*field(&p) = v
			return n.Configure(p)
		}, nil
	case *effect.Bloom:
		field := map[string]func(*effect.BloomParams) *float64{
			"intensity":           func(p *effect.BloomParams) *float64 { return &p.Intensity },
			"luminance_threshold": func(p *effect.BloomParams) *float64 { return &p.LuminanceThreshold },
			"luminance_smoothing": func(p *effect.BloomParams) *float64 { return &p.LuminanceSmoothing },
		}[param]
		if field == nil {
			return nil, unknown
		}
		return func(v float64) error {
			p := n.Params()
			*field(&p) = v
			return n.Configure(p)
		}, nil
	case *effect.DepthOfField:
		field := map[string]func(*effect.DepthOfFieldParams) *float64{
			"focus_distance": func(p *effect.DepthOfFieldParams) *float64 { return &p.FocusDistance },
			"focal_length":   func(p *effect.DepthOfFieldParams) *float64 { return &p.FocalLength },
			"bokeh_scale":    func(p *effect.DepthOfFieldParams) *float64 { return &p.BokehScale },
		}[param]
		if field == nil {
			return nil, unknown
		}
		return func(v float64) error {
			p := n.Params()
			*field(&p) = v
			return n.Configure(p)
		}, nil
	case *effect.Noise:
		if param != "opacity" {
			return nil, unknown
		}
		return func(v float64) error {
			p := n.Params()
			p.Opacity = v
			return n.Configure(p)
		}, nil
	default:
		return nil, unknown
	}
}
