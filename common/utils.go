package common

// Coalesce picks the first value that is set, used for optional names with defaults
// (an effect's name falling back to its kind, a uniform name to its preset).
//
// Parameters:
//   - values: candidates in priority order
//
// Returns:
//   - T: the first non-zero candidate, or the zero value
func Coalesce[T comparable](values ...T) T {
	var zero T
	for _, v := range values {
		if v != zero {
			return v
		}
	}
	return zero
}
