package uniform

import "errors"

var (
	// ErrDuplicateUniform is returned when a uniform is re-registered with a different type.
	ErrDuplicateUniform = errors.New("uniform already registered with a different type")
	// ErrUnknownUniform is returned when a uniform name has not been registered.
	ErrUnknownUniform = errors.New("unknown uniform")
	// ErrTypeMismatch is returned when a value's type differs from the registered type.
	ErrTypeMismatch = errors.New("uniform type mismatch")
)
