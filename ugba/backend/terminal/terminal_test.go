package terminal

import (
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ugba/ugba/backend"
	"github.com/valerio/go-ugba/ugba/backend/terminal/render"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/input/action"
	"github.com/valerio/go-ugba/ugba/input/event"
	"github.com/valerio/go-ugba/ugba/video"
)

type fakeProvider struct{}

func (fakeProvider) RegisterLines() []string { return []string{"DISPCNT 0403"} }

func newSimBackend(t *testing.T, cfg backend.BackendConfig) (*Backend, tcell.SimulationScreen, *time.Time) {
	t.Helper()
	defer slog.SetDefault(slog.Default())

	screen := tcell.NewSimulationScreen("UTF-8")
	b := NewWithScreen(screen)
	clock := time.Unix(0, 0)
	b.now = func() time.Time { return clock }
	require.NoError(t, b.Init(cfg))
	screen.SetSize(320, 100)
	t.Cleanup(func() { b.Cleanup() })
	return b, screen, &clock
}

func TestKeyEvents(t *testing.T) {
	b, screen, clock := newSimBackend(t, backend.BackendConfig{})
	frame := video.NewFrameBuffer()

	screen.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	events, err := b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []input.Event{{Action: action.ButtonA, Type: event.Press}}, events)

	// a repeat keeps the key held
	*clock = clock.Add(50 * time.Millisecond)
	screen.InjectKey(tcell.KeyRune, 'z', tcell.ModNone)
	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []input.Event{{Action: action.ButtonA, Type: event.Hold}}, events)

	*clock = clock.Add(keyTimeout)
	events, err = b.Update(frame)
	require.NoError(t, err)
	assert.Equal(t, []input.Event{{Action: action.ButtonA, Type: event.Release}}, events)
}

func TestDirectionsAreExclusive(t *testing.T) {
	b, screen, _ := newSimBackend(t, backend.BackendConfig{})

	screen.InjectKey(tcell.KeyUp, 0, tcell.ModNone)
	screen.InjectKey(tcell.KeyLeft, 0, tcell.ModNone)
	events, err := b.Update(video.NewFrameBuffer())
	require.NoError(t, err)
	assert.Equal(t, []input.Event{{Action: action.DPadLeft, Type: event.Press}}, events)
}

func TestHostActions(t *testing.T) {
	b, screen, _ := newSimBackend(t, backend.BackendConfig{})

	screen.InjectKey(tcell.KeyRune, ' ', tcell.ModNone)
	screen.InjectKey(tcell.KeyEscape, 0, tcell.ModNone)
	events, err := b.Update(video.NewFrameBuffer())
	require.NoError(t, err)
	assert.Equal(t, []input.Event{
		{Action: action.HostPauseToggle, Type: event.Press},
		{Action: action.HostQuit, Type: event.Press},
	}, events)
}

func TestRender(t *testing.T) {
	b, screen, _ := newSimBackend(t, backend.BackendConfig{ShowDebug: true, DebugProvider: fakeProvider{}})
	frame := video.NewFrameBuffer()
	frame.SetPixel(0, 0, video.FromBGR555(video.RGB15(31, 0, 0)))
	frame.SetPixel(0, 1, video.FromBGR555(video.RGB15(0, 0, 31)))

	_, err := b.Update(frame)
	require.NoError(t, err)

	cells, width, _ := screen.GetContents()
	fg, bg, _ := cells[0].Style.Decompose()
	assert.Equal(t, tcell.NewRGBColor(255, 0, 0), fg)
	assert.Equal(t, tcell.NewRGBColor(0, 0, 255), bg)
	assert.Equal(t, []rune{render.HalfBlock}, cells[0].Runes)

	// register panel right of the game area
	panel := width - panelWidth
	var text []rune
	for x := panel; x < panel+len("DISPCNT 0403"); x++ {
		text = append(text, cells[x].Runes...)
	}
	assert.Equal(t, "DISPCNT 0403", string(text))
}
