package action

// Action represents input actions that can be performed by the host
type Action int

const (
	// Console keys
	ButtonA Action = iota
	ButtonB
	ButtonSelect
	ButtonStart
	DPadRight
	DPadLeft
	DPadUp
	DPadDown
	ButtonR
	ButtonL

	// Host features
	HostSnapshot
	HostPauseToggle
	HostStepFrame
	HostDumpRegisters
	HostQuit
)

var names = map[Action]string{
	ButtonA:           "A",
	ButtonB:           "B",
	ButtonSelect:      "Select",
	ButtonStart:       "Start",
	DPadRight:         "Right",
	DPadLeft:          "Left",
	DPadUp:            "Up",
	DPadDown:          "Down",
	ButtonR:           "R",
	ButtonL:           "L",
	HostSnapshot:      "Snapshot",
	HostPauseToggle:   "PauseToggle",
	HostStepFrame:     "StepFrame",
	HostDumpRegisters: "DumpRegisters",
	HostQuit:          "Quit",
}

func (a Action) String() string {
	if n, ok := names[a]; ok {
		return n
	}
	return "Unknown"
}

// IsButton reports whether the action maps to a console key.
func (a Action) IsButton() bool {
	return a >= ButtonA && a <= ButtonL
}
