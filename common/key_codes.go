package common

// Virtual key codes for cross-platform input handling.
// These values match GLFW key codes which use ASCII values for printable keys.
// Reference: https://pkg.go.dev/github.com/go-gl/glfw/v3.3/glfw#Key
const (
	KeySpace = 32 // Space key (ASCII), toggles pause in the examples
	KeyR     = 82 // R key (ASCII), resets material time
	KeyD     = 68 // D key (ASCII), toggles the distortion stage
	KeyP     = 80 // P key (ASCII), writes a composite preview

	KeyRight = 262 // Right arrow, raises the selected control
	KeyLeft  = 263 // Left arrow, lowers the selected control
	KeyDown  = 264 // Down arrow, selects the next control
	KeyUp    = 265 // Up arrow, selects the previous control
)
