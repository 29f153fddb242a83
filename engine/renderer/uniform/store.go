package uniform

import (
	"fmt"
)

// store is the implementation of the Store interface.
type store struct {
	values map[string]Value
	// order records first-registration order, which defines the GPU block layout.
	order []string
}

// Store is a typed name -> value table of shader parameters.
//
// Each uniform keeps the type it was first registered with for the lifetime of the store.
// A Store is not safe for concurrent use; callers mutate it between frames from a single goroutine.
type Store interface {
	// Register inserts a uniform with its default value, or overwrites an existing uniform of the same type.
	//
	// Parameters:
	//   - name: the uniform name as referenced by the shader
	//   - initial: the default value
	//
	// Returns:
	//   - error: ErrDuplicateUniform if the name exists with a different type
	Register(name string, initial Value) error

	// Set replaces the value of a registered uniform.
	//
	// Parameters:
	//   - name: the uniform name
	//   - value: the new value, which must match the registered type
	//
	// Returns:
	//   - error: ErrUnknownUniform if not registered, ErrTypeMismatch if the type differs
	Set(name string, value Value) error

	// Get retrieves the current value of a uniform.
	//
	// Parameters:
	//   - name: the uniform name
	//
	// Returns:
	//   - Value: the current value
	//   - error: ErrUnknownUniform if not registered
	Get(name string) (Value, error)

	// Has reports whether a uniform is registered under name.
	Has(name string) bool

	// Names returns the registered names in first-registration order.
	Names() []string

	// Len returns the number of registered uniforms.
	Len() int

	// Layout returns the std140 placement of every uniform, in registration order.
	//
	// Returns:
	//   - []Field: one entry per uniform
	//   - int: the total block size in bytes, padded to 16
	Layout() ([]Field, int)

	// Pack serializes all uniforms into a std140 aligned little-endian block for GPU upload.
	//
	// Returns:
	//   - []byte: the packed uniform block
	Pack() []byte

	// Clear removes every uniform. Used when the owning material is disposed.
	Clear()
}

var _ Store = &store{}

// NewStore creates an empty uniform Store.
//
// Returns:
//   - Store: the new store
func NewStore() Store {
	return &store{
		values: make(map[string]Value),
	}
}

func (s *store) Register(name string, initial Value) error {
	if existing, ok := s.values[name]; ok {
		if existing.typ != initial.typ {
			return fmt.Errorf("register %q as %s (registered as %s): %w", name, initial.typ, existing.typ, ErrDuplicateUniform)
		}
		s.values[name] = initial
		return nil
	}
	s.values[name] = initial
	s.order = append(s.order, name)
	return nil
}

func (s *store) Set(name string, value Value) error {
	existing, ok := s.values[name]
	if !ok {
		return fmt.Errorf("set %q: %w", name, ErrUnknownUniform)
	}
	if existing.typ != value.typ {
		return fmt.Errorf("set %q to %s (registered as %s): %w", name, value.typ, existing.typ, ErrTypeMismatch)
	}
	s.values[name] = value
	return nil
}

func (s *store) Get(name string) (Value, error) {
	v, ok := s.values[name]
	if !ok {
		return Value{}, fmt.Errorf("get %q: %w", name, ErrUnknownUniform)
	}
	return v, nil
}

func (s *store) Has(name string) bool {
	_, ok := s.values[name]
	return ok
}

func (s *store) Names() []string {
	out := make([]string, len(s.order))
	copy(out, s.order)
	return out
}

func (s *store) Len() int {
	return len(s.values)
}

func (s *store) Clear() {
	clear(s.values)
	s.order = nil
}
