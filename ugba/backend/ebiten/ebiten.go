//go:build ebiten

// Package ebiten presents the console in an ebiten window. ebiten owns the
// main goroutine, so frames and input cross over through channels.
package ebiten

import (
	"errors"
	"log/slog"
	"sync"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/valerio/go-ugba/ugba/backend"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/input/action"
	"github.com/valerio/go-ugba/ugba/input/event"
	"github.com/valerio/go-ugba/ugba/video"
)

const defaultScale = 3

var errClosed = errors.New("ebiten: window closed")

// keyMapping maps ebiten keys to key names of the default mapping
var keyMapping = map[ebiten.Key]string{
	ebiten.KeyZ:          "z",
	ebiten.KeyX:          "x",
	ebiten.KeyA:          "a",
	ebiten.KeyS:          "s",
	ebiten.KeyP:          "p",
	ebiten.KeyO:          "o",
	ebiten.KeyQ:          "q",
	ebiten.KeyEnter:      "Enter",
	ebiten.KeyShift:      "Shift",
	ebiten.KeyBackspace:  "Backspace",
	ebiten.KeySpace:      "Space",
	ebiten.KeyArrowUp:    "Up",
	ebiten.KeyArrowDown:  "Down",
	ebiten.KeyArrowLeft:  "Left",
	ebiten.KeyArrowRight: "Right",
	ebiten.KeyEscape:     "Escape",
	ebiten.KeyF9:         "F9",
	ebiten.KeyF10:        "F10",
}

// Backend implements backend.Backend and backend.MainThreadRunner.
type Backend struct {
	config backend.BackendConfig

	frames chan *video.FrameBuffer
	events chan input.Event
	done   chan struct{}
	once   sync.Once

	screen *ebiten.Image
	pixels []byte
}

// New creates an ebiten backend. Run must be called from the main goroutine.
func New() *Backend {
	return &Backend{
		frames: make(chan *video.FrameBuffer, 1),
		events: make(chan input.Event, 64),
		done:   make(chan struct{}),
		pixels: make([]byte, video.FramebufferWidth*video.FramebufferHeight*4),
	}
}

func (b *Backend) Init(config backend.BackendConfig) error {
	b.config = config
	scale := defaultScale
	if config.Scale > 0 {
		scale = config.Scale
	}
	ebiten.SetWindowTitle(config.Title)
	ebiten.SetWindowSize(video.FramebufferWidth*scale, video.FramebufferHeight*scale)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	slog.Info("Ebiten backend initialized", "scale", scale)
	return nil
}

// Update hands a copy of the frame to the window and collects the pending
// input. The newest frame replaces one the window has not drawn yet.
func (b *Backend) Update(frame *video.FrameBuffer) ([]input.Event, error) {
	select {
	case <-b.done:
		return []input.Event{{Action: action.HostQuit, Type: event.Press}}, nil
	default:
	}

	fb := frame.Clone()
	select {
	case b.frames <- fb:
	default:
		select {
		case <-b.frames:
		default:
		}
		b.frames <- fb
	}

	var events []input.Event
	for {
		select {
		case e := <-b.events:
			events = append(events, e)
		default:
			return events, nil
		}
	}
}

func (b *Backend) Cleanup() error {
	b.once.Do(func() { close(b.done) })
	return nil
}

// Run opens the window and blocks until it is closed or Cleanup is called.
func (b *Backend) Run() error {
	err := ebiten.RunGame(b)
	b.once.Do(func() { close(b.done) })
	if err != nil && !errors.Is(err, errClosed) {
		return err
	}
	if b.config.Callbacks.OnQuit != nil {
		b.config.Callbacks.OnQuit()
	}
	return nil
}

func (b *Backend) send(e input.Event) {
	select {
	case b.events <- e:
	default:
		slog.Warn("Input queue full, dropping event", "action", e.Action)
	}
}

// Update implements ebiten.Game.
func (b *Backend) Update() error {
	select {
	case <-b.done:
		return errClosed
	default:
	}

	for key, name := range keyMapping {
		act, ok := input.GetDefaultMapping(name)
		if !ok {
			continue
		}
		switch {
		case inpututil.IsKeyJustPressed(key):
			b.send(input.Event{Action: act, Type: event.Press})
		case inpututil.IsKeyJustReleased(key) && act.IsButton():
			b.send(input.Event{Action: act, Type: event.Release})
		}
	}

	select {
	case fb := <-b.frames:
		for i, px := range fb.ToSlice() {
			r, g, bl, a := video.Color(px).RGBA8()
			b.pixels[i*4+0] = r
			b.pixels[i*4+1] = g
			b.pixels[i*4+2] = bl
			b.pixels[i*4+3] = a
		}
		if b.screen == nil {
			b.screen = ebiten.NewImage(video.FramebufferWidth, video.FramebufferHeight)
		}
		b.screen.WritePixels(b.pixels)
	default:
	}
	return nil
}

// Draw implements ebiten.Game.
func (b *Backend) Draw(screen *ebiten.Image) {
	if b.screen != nil {
		screen.DrawImage(b.screen, nil)
	}
}

// Layout implements ebiten.Game.
func (b *Backend) Layout(_, _ int) (int, int) {
	return video.FramebufferWidth, video.FramebufferHeight
}
