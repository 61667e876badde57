package input

import (
	"time"

	"github.com/valerio/go-ugba/ugba/input/action"
	"github.com/valerio/go-ugba/ugba/input/event"
)

// Handler debounces presses of host actions. Console keys, releases and
// holds always pass.
type Handler struct {
	lastActionTime map[action.Action]time.Time
	debounceDelay  time.Duration
	now            func() time.Time
}

func NewHandler() *Handler {
	return &Handler{
		lastActionTime: make(map[action.Action]time.Time),
		debounceDelay:  debounceDuration,
		now:            time.Now,
	}
}

// ProcessEvent returns true if the event should be handled, false if it was
// debounced.
func (h *Handler) ProcessEvent(evt Event) bool {
	if evt.Type != event.Press || evt.Action.IsButton() {
		return true
	}

	now := h.now()
	if last, ok := h.lastActionTime[evt.Action]; ok && now.Sub(last) < h.debounceDelay {
		return false
	}
	h.lastActionTime[evt.Action] = now
	return true
}
