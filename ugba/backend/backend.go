// Package backend defines the host platforms a console can be presented on.
package backend

import (
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/input/action"
	"github.com/valerio/go-ugba/ugba/video"
)

// Backend represents a complete host platform (rendering + input).
// Backends are responsible for:
// - Rendering frames to their specific output (terminal, window, files)
// - Translating platform-specific input events to input events
// - Handling backend-specific features (snapshots, test patterns)
type Backend interface {
	// Init configures the backend. It must be called before Update.
	Init(config BackendConfig) error

	// Update renders the frame and returns the input events collected since
	// the previous call.
	Update(frame *video.FrameBuffer) ([]input.Event, error)

	// Cleanup releases the platform resources.
	Cleanup() error
}

// MainThreadRunner is implemented by backends whose event loop must own the
// main goroutine. The console then runs on another goroutine and Run blocks
// until the window closes.
type MainThreadRunner interface {
	Run() error
}

// ActionHandler is implemented by backends with their own handling of host
// actions, like saving snapshots of what they display.
type ActionHandler interface {
	HandleAction(act action.Action)
}

// DebugDataProvider gives backends access to console state for their debug
// panels.
type DebugDataProvider interface {
	RegisterLines() []string
}

// BackendConfig holds configuration for backends
type BackendConfig struct {
	Title       string
	Scale       int
	ShowDebug   bool // Backends may ignore unsupported features
	TestPattern bool // Display test pattern instead of the console output
	Callbacks   BackendCallbacks

	DebugProvider DebugDataProvider
}

// BackendCallbacks allows backends to talk back to the host
type BackendCallbacks struct {
	// OnQuit is called when the platform asks to shut down (window close,
	// signal).
	OnQuit func()

	// OnDebugMessage receives free form debug information.
	OnDebugMessage func(message string)
}

// ScaleOrDefault returns the configured scale, at least 1.
func (c BackendConfig) ScaleOrDefault() int {
	if c.Scale < 1 {
		return 1
	}
	return c.Scale
}
