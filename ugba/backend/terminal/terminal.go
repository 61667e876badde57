// Package terminal presents the console in a terminal with tcell, drawing
// two pixels per cell with true color half blocks.
package terminal

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gdamore/tcell/v2"

	"github.com/valerio/go-ugba/ugba/backend"
	"github.com/valerio/go-ugba/ugba/backend/terminal/render"
	"github.com/valerio/go-ugba/ugba/debug"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/input/action"
	"github.com/valerio/go-ugba/ugba/input/event"
	"github.com/valerio/go-ugba/ugba/video"
)

const (
	panelWidth = 44
	logHeight  = 6

	// Terminals only report key presses, so a key counts as held until no
	// repeat arrived for this long.
	keyTimeout = 150 * time.Millisecond
)

// Backend implements backend.Backend on top of a tcell screen.
type Backend struct {
	screen     tcell.Screen
	running    bool
	logBuffer  *render.LogBuffer
	logLevel   *slog.LevelVar
	config     backend.BackendConfig
	eventQueue []input.Event
	quit       chan struct{}

	keyStates  map[action.Action]time.Time // last time each key was seen
	activeKeys map[action.Action]bool      // keys active in the previous frame
	now        func() time.Time

	testPatternFrame *video.FrameBuffer
	testPatternType  int
	testFrameCount   int

	currentFrame *video.FrameBuffer
}

// New creates a terminal backend on the controlling terminal.
func New() *Backend {
	return NewWithScreen(nil)
}

// NewWithScreen creates a backend drawing on screen. A nil screen selects
// the controlling terminal when Init runs.
func NewWithScreen(screen tcell.Screen) *Backend {
	lv := new(slog.LevelVar)
	lv.Set(slog.LevelInfo)
	return &Backend{
		screen:   screen,
		logLevel: lv,
		now:      time.Now,
	}
}

func (t *Backend) Init(config backend.BackendConfig) error {
	t.config = config
	t.keyStates = make(map[action.Action]time.Time)
	t.activeKeys = make(map[action.Action]bool)
	t.quit = make(chan struct{}, 1)

	if t.screen == nil {
		screen, err := tcell.NewScreen()
		if err != nil {
			return fmt.Errorf("failed to initialize terminal: %w", err)
		}
		t.screen = screen
	}
	if err := t.screen.Init(); err != nil {
		return fmt.Errorf("failed to initialize terminal: %w", err)
	}
	t.running = true

	// logs would corrupt the screen, keep them in a panel instead
	t.logBuffer = render.NewLogBuffer(100)
	slog.SetDefault(slog.New(render.NewLogBufferHandler(t.logBuffer, t.logLevel)))

	if config.TestPattern {
		t.testPatternFrame = video.NewFrameBuffer()
		backend.TestPattern(t.testPatternFrame, 0, 0)
		slog.Info("Terminal backend initialized in test pattern mode")
	} else {
		slog.Info("Terminal backend initialized")
	}

	t.screen.SetStyle(tcell.StyleDefault.Background(tcell.ColorBlack).Foreground(tcell.ColorWhite))
	t.screen.Clear()

	go t.handleSignals()
	return nil
}

// Update polls the terminal, turns key repeats into press/hold/release
// events and draws the frame.
func (t *Backend) Update(frame *video.FrameBuffer) ([]input.Event, error) {
	now := t.now()

	for t.screen.HasPendingEvent() {
		switch ev := t.screen.PollEvent().(type) {
		case *tcell.EventKey:
			t.processKeyEvent(ev, now)
		case *tcell.EventResize:
			t.screen.Sync()
		}
	}
	select {
	case <-t.quit:
		t.running = false
		t.eventQueue = append(t.eventQueue, input.Event{Action: action.HostQuit, Type: event.Press})
	default:
	}

	events := t.keyEvents(now)
	events = append(events, t.eventQueue...)
	t.eventQueue = nil

	if !t.running {
		return events, nil
	}

	renderFrame := frame
	if t.config.TestPattern {
		t.testFrameCount++
		if t.testFrameCount%backend.TestPatternAnimationFrames == 0 {
			backend.TestPattern(t.testPatternFrame, t.testPatternType, t.testFrameCount)
		}
		renderFrame = t.testPatternFrame
	}

	t.currentFrame = renderFrame
	t.render(renderFrame)
	t.screen.Show()

	return events, nil
}

func (t *Backend) keyEvents(now time.Time) []input.Event {
	var events []input.Event
	currentlyActive := make(map[action.Action]bool)

	for act, last := range t.keyStates {
		if now.Sub(last) >= keyTimeout {
			delete(t.keyStates, act)
			continue
		}
		currentlyActive[act] = true
		if t.activeKeys[act] {
			events = append(events, input.Event{Action: act, Type: event.Hold})
		} else {
			slog.Debug("Key press", "action", act)
			events = append(events, input.Event{Action: act, Type: event.Press})
		}
	}
	for act := range t.activeKeys {
		if !currentlyActive[act] {
			slog.Debug("Key release", "action", act)
			events = append(events, input.Event{Action: act, Type: event.Release})
		}
	}
	t.activeKeys = currentlyActive
	return events
}

func (t *Backend) Cleanup() error {
	if t.screen != nil {
		slog.Info("Cleaning up terminal backend")
		t.screen.Fini()
	}
	return nil
}

// HandleAction processes backend-specific host actions.
func (t *Backend) HandleAction(act action.Action) {
	switch act {
	case action.HostSnapshot:
		debug.TakeSnapshot(t.currentFrame)
	case action.HostDumpRegisters:
		t.config.ShowDebug = !t.config.ShowDebug
		t.screen.Clear()
	}
}

// CycleTestPattern switches to the next test pattern.
func (t *Backend) CycleTestPattern() {
	if !t.config.TestPattern {
		return
	}
	t.testPatternType = (t.testPatternType + 1) % backend.TestPatternCount
	backend.TestPattern(t.testPatternFrame, t.testPatternType, t.testFrameCount)
	slog.Info("Switched to test pattern", "pattern", backend.TestPatternName(t.testPatternType))
}

// SetLogLevel changes the level of the log panel.
func (t *Backend) SetLogLevel(level slog.Level) {
	t.logLevel.Set(level)
}

func (t *Backend) handleSignals() {
	signals := make(chan os.Signal, 1)
	signal.Notify(signals, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)
	defer signal.Stop(signals)

	<-signals
	t.quit <- struct{}{}
}

// tcellKeyNameMap converts tcell keys to key names used in default mappings
var tcellKeyNameMap = map[tcell.Key]string{
	tcell.KeyEnter:      "Enter",
	tcell.KeyBackspace:  "Backspace",
	tcell.KeyBackspace2: "Backspace",
	tcell.KeyUp:         "Up",
	tcell.KeyDown:       "Down",
	tcell.KeyLeft:       "Left",
	tcell.KeyRight:      "Right",
	tcell.KeyEscape:     "Escape",
	tcell.KeyF9:         "F9",
	tcell.KeyF10:        "F10",
}

func keyName(ev *tcell.EventKey) string {
	if ev.Key() == tcell.KeyRune {
		if ev.Rune() == ' ' {
			return "Space"
		}
		return string(ev.Rune())
	}
	return tcellKeyNameMap[ev.Key()]
}

func (t *Backend) processKeyEvent(ev *tcell.EventKey, now time.Time) {
	if ev.Key() == tcell.KeyCtrlC {
		t.running = false
		t.eventQueue = append(t.eventQueue, input.Event{Action: action.HostQuit, Type: event.Press})
		return
	}
	act, ok := input.GetDefaultMapping(keyName(ev))
	if !ok {
		return
	}

	if !act.IsButton() {
		if act == action.HostQuit {
			t.running = false
		}
		t.eventQueue = append(t.eventQueue, input.Event{Action: act, Type: event.Press})
		return
	}

	// a new direction replaces the previous one, terminals only repeat the
	// last key
	switch act {
	case action.DPadUp, action.DPadDown, action.DPadLeft, action.DPadRight:
		delete(t.keyStates, action.DPadUp)
		delete(t.keyStates, action.DPadDown)
		delete(t.keyStates, action.DPadLeft)
		delete(t.keyStates, action.DPadRight)
	}
	t.keyStates[act] = now
}

func (t *Backend) render(frame *video.FrameBuffer) {
	termWidth, termHeight := t.screen.Size()

	gameCols := termWidth
	if t.config.ShowDebug && termWidth > panelWidth*2 {
		gameCols = termWidth - panelWidth - 1
	}
	gameRows := termHeight - logHeight - 1
	if gameRows < 1 {
		gameRows = termHeight
	}

	img := render.FitFrame(frame, gameCols, gameRows)
	for row := 0; row < gameRows; row++ {
		for x := 0; x < gameCols; x++ {
			t.screen.SetContent(x, row, render.HalfBlock, nil, render.HalfBlockStyle(img, x, row*2))
		}
	}

	if gameCols < termWidth {
		t.drawRegisters(gameCols+1, 0, termWidth-gameCols-1, gameRows)
	}
	if gameRows < termHeight {
		t.drawLogs(0, gameRows+1, termWidth, termHeight-gameRows-1)
	}
}

func (t *Backend) drawText(x, y, width int, text string, style tcell.Style) {
	col := 0
	for _, r := range text {
		if col >= width {
			break
		}
		t.screen.SetContent(x+col, y, r, nil, style)
		col++
	}
	for ; col < width; col++ {
		t.screen.SetContent(x+col, y, ' ', nil, style)
	}
}

func (t *Backend) drawRegisters(startX, startY, width, height int) {
	style := tcell.StyleDefault.Foreground(tcell.ColorLightCyan)
	var lines []string
	if t.config.DebugProvider != nil {
		lines = t.config.DebugProvider.RegisterLines()
	}
	for i := 0; i < height; i++ {
		text := ""
		if i < len(lines) {
			text = lines[i]
		}
		t.drawText(startX, startY+i, width, text, style)
	}
}

func (t *Backend) drawLogs(startX, startY, width, height int) {
	entries := t.logBuffer.GetRecent(height)
	for i := 0; i < height; i++ {
		style := tcell.StyleDefault.Foreground(tcell.ColorSilver)
		text := ""
		// oldest at the top
		if j := len(entries) - 1 - i; j >= 0 {
			e := entries[j]
			text = render.FormatLogEntry(e)
			switch {
			case e.Level >= slog.LevelError:
				style = style.Foreground(tcell.ColorRed)
			case e.Level >= slog.LevelWarn:
				style = style.Foreground(tcell.ColorYellow)
			}
		}
		t.drawText(startX, startY+i, width, text, style)
	}
}
