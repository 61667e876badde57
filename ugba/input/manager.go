package input

import (
	"time"

	"github.com/valerio/go-ugba/ugba/input/action"
	"github.com/valerio/go-ugba/ugba/input/event"
)

const (
	// debounceDuration is the minimum time between debounced events
	debounceDuration = 300 * time.Millisecond
)

// Event is a single input event produced by a backend.
type Event struct {
	Action action.Action
	Type   event.Type
}

// Manager routes actions either to the keypad (console keys) or to
// registered host callbacks.
type Manager struct {
	handlers map[action.Action]map[event.Type][]func()
	keypad   *Keypad
	filter   *Handler
}

func NewManager(k *Keypad) *Manager {
	return &Manager{
		handlers: make(map[action.Action]map[event.Type][]func()),
		keypad:   k,
		filter:   NewHandler(),
	}
}

// On registers a callback for a specific action and event type
func (m *Manager) On(act action.Action, evt event.Type, callback func()) {
	if m.handlers[act] == nil {
		m.handlers[act] = make(map[event.Type][]func())
	}
	m.handlers[act][evt] = append(m.handlers[act][evt], callback)
}

// Dispatch handles a backend event.
func (m *Manager) Dispatch(e Event) {
	m.Trigger(e.Action, e.Type)
}

// Trigger handles the given action and event type.
func (m *Manager) Trigger(act action.Action, evt event.Type) {
	if !m.filter.ProcessEvent(Event{Action: act, Type: evt}) {
		return
	}

	// console keys go straight to the keypad
	if m.keypad != nil {
		if key := KeyFor(act); key != 0 {
			switch evt {
			case event.Press, event.Hold:
				m.keypad.Press(key)
			case event.Release:
				m.keypad.Release(key)
			}
			return
		}
	}

	for _, callback := range m.handlers[act][evt] {
		callback()
	}
}

// KeyFor maps a console action to its key. It returns 0 for host actions.
func KeyFor(act action.Action) Keys {
	if !act.IsButton() {
		return 0
	}
	return Keys(1) << uint(act-action.ButtonA)
}
