package input

import "github.com/valerio/go-ugba/ugba/input/action"

// DefaultKeyMap provides default key mappings that work across backends.
// Backends can use these mappings as a base and override/extend as needed.
var DefaultKeyMap = map[string]action.Action{
	// Console keys
	"z":         action.ButtonA,
	"x":         action.ButtonB,
	"Enter":     action.ButtonStart,
	"Shift":     action.ButtonSelect,
	"Backspace": action.ButtonSelect,
	"a":         action.ButtonL,
	"s":         action.ButtonR,
	"Up":        action.DPadUp,
	"Down":      action.DPadDown,
	"Left":      action.DPadLeft,
	"Right":     action.DPadRight,

	// Host controls
	"Space":  action.HostPauseToggle,
	"p":      action.HostPauseToggle,
	"o":      action.HostStepFrame,
	"F9":     action.HostSnapshot,
	"F10":    action.HostDumpRegisters,
	"Escape": action.HostQuit,
	"q":      action.HostQuit,
}

// GetDefaultMapping returns the default action for a key, if one exists
func GetDefaultMapping(key string) (action.Action, bool) {
	act, ok := DefaultKeyMap[key]
	return act, ok
}
