package common

import (
	"errors"
	"fmt"
)

// ErrInvalidTimeStep is returned by every Advance when the frame delta is negative or not finite.
var ErrInvalidTimeStep = errors.New("invalid time step")

// ValidateTimeStep checks that a frame delta can be applied without moving time backwards.
//
// Parameters:
//   - deltaSeconds: the elapsed time since the previous frame
//
// Returns:
//   - error: ErrInvalidTimeStep if deltaSeconds is negative, NaN or infinite
func ValidateTimeStep(deltaSeconds float64) error {
	if !IsFinite(deltaSeconds) || deltaSeconds < 0 {
		return fmt.Errorf("delta %g: %w", deltaSeconds, ErrInvalidTimeStep)
	}
	return nil
}
