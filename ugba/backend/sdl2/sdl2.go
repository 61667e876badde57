//go:build sdl2

// Package sdl2 presents the console in an SDL2 window.
package sdl2

import (
	"fmt"
	"log/slog"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"github.com/valerio/go-ugba/ugba/backend"
	"github.com/valerio/go-ugba/ugba/debug"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/input/action"
	"github.com/valerio/go-ugba/ugba/input/event"
	"github.com/valerio/go-ugba/ugba/video"
)

const defaultScale = 3

// Backend implements backend.Backend using SDL2 bindings.
// Building this requires the SDL2 development libraries; default builds use
// the stub in stub.go, see build tags (sdl2).
type Backend struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture
	running  bool
	config   backend.BackendConfig
	events   []input.Event

	testPatternFrame *video.FrameBuffer
	testPatternType  int
	testFrameCount   int

	currentFrame *video.FrameBuffer
}

// New creates a new SDL2 backend
func New() *Backend {
	return &Backend{}
}

func (s *Backend) Init(config backend.BackendConfig) error {
	s.config = config

	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_EVENTS); err != nil {
		return fmt.Errorf("failed to initialize SDL2: %w", err)
	}

	scale := int32(defaultScale)
	if config.Scale > 0 {
		scale = int32(config.Scale)
	}
	window, err := sdl.CreateWindow(
		config.Title,
		sdl.WINDOWPOS_CENTERED,
		sdl.WINDOWPOS_CENTERED,
		video.FramebufferWidth*scale,
		video.FramebufferHeight*scale,
		sdl.WINDOW_SHOWN|sdl.WINDOW_RESIZABLE,
	)
	if err != nil {
		sdl.Quit()
		return fmt.Errorf("failed to create window: %w", err)
	}
	s.window = window

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create renderer: %w", err)
	}
	s.renderer = renderer
	renderer.SetLogicalSize(video.FramebufferWidth, video.FramebufferHeight)

	// 0xRRGGBBAA words match RGBA8888 in native byte order
	texture, err := renderer.CreateTexture(
		sdl.PIXELFORMAT_RGBA8888,
		sdl.TEXTUREACCESS_STREAMING,
		video.FramebufferWidth,
		video.FramebufferHeight,
	)
	if err != nil {
		renderer.Destroy()
		window.Destroy()
		sdl.Quit()
		return fmt.Errorf("failed to create texture: %w", err)
	}
	s.texture = texture
	s.running = true

	if config.TestPattern {
		s.testPatternFrame = video.NewFrameBuffer()
		backend.TestPattern(s.testPatternFrame, 0, 0)
		slog.Info("SDL2 backend initialized in test pattern mode")
	} else {
		slog.Info("SDL2 backend initialized", "scale", scale)
	}
	return nil
}

func (s *Backend) Update(frame *video.FrameBuffer) ([]input.Event, error) {
	if !s.running {
		return nil, nil
	}

	for ev := sdl.PollEvent(); ev != nil; ev = sdl.PollEvent() {
		s.handleEvent(ev)
	}
	events := s.events
	s.events = nil

	if !s.running {
		return events, nil
	}

	renderFrame := frame
	if s.config.TestPattern {
		s.testFrameCount++
		if s.testFrameCount%backend.TestPatternAnimationFrames == 0 {
			backend.TestPattern(s.testPatternFrame, s.testPatternType, s.testFrameCount)
		}
		renderFrame = s.testPatternFrame
	}

	s.currentFrame = renderFrame
	if err := s.renderFrame(renderFrame); err != nil {
		return events, err
	}
	return events, nil
}

func (s *Backend) Cleanup() error {
	slog.Info("Cleaning up SDL2 backend")

	if s.texture != nil {
		s.texture.Destroy()
	}
	if s.renderer != nil {
		s.renderer.Destroy()
	}
	if s.window != nil {
		s.window.Destroy()
	}
	sdl.Quit()
	return nil
}

// HandleAction processes backend-specific host actions.
func (s *Backend) HandleAction(act action.Action) {
	if act == action.HostSnapshot {
		debug.TakeSnapshot(s.currentFrame)
	}
}

// keyMapping maps SDL2 keys to key names of the default mapping
var keyMapping = map[sdl.Keycode]string{
	sdl.K_z:         "z",
	sdl.K_x:         "x",
	sdl.K_a:         "a",
	sdl.K_s:         "s",
	sdl.K_p:         "p",
	sdl.K_o:         "o",
	sdl.K_q:         "q",
	sdl.K_RETURN:    "Enter",
	sdl.K_LSHIFT:    "Shift",
	sdl.K_RSHIFT:    "Shift",
	sdl.K_BACKSPACE: "Backspace",
	sdl.K_SPACE:     "Space",
	sdl.K_UP:        "Up",
	sdl.K_DOWN:      "Down",
	sdl.K_LEFT:      "Left",
	sdl.K_RIGHT:     "Right",
	sdl.K_ESCAPE:    "Escape",
	sdl.K_F9:        "F9",
	sdl.K_F10:       "F10",
}

func (s *Backend) handleEvent(ev sdl.Event) {
	switch e := ev.(type) {
	case *sdl.QuitEvent:
		s.running = false
		s.events = append(s.events, input.Event{Action: action.HostQuit, Type: event.Press})
		if s.config.Callbacks.OnQuit != nil {
			s.config.Callbacks.OnQuit()
		}

	case *sdl.KeyboardEvent:
		if s.config.TestPattern && e.Type == sdl.KEYDOWN && e.Keysym.Sym == sdl.K_t {
			s.testPatternType = (s.testPatternType + 1) % backend.TestPatternCount
			backend.TestPattern(s.testPatternFrame, s.testPatternType, s.testFrameCount)
			slog.Info("Switched to test pattern", "pattern", backend.TestPatternName(s.testPatternType))
			return
		}
		act, ok := input.GetDefaultMapping(keyMapping[e.Keysym.Sym])
		if !ok {
			return
		}
		switch {
		case e.Type == sdl.KEYDOWN && e.Repeat != 0:
			if act.IsButton() {
				s.events = append(s.events, input.Event{Action: act, Type: event.Hold})
			}
		case e.Type == sdl.KEYDOWN:
			s.events = append(s.events, input.Event{Action: act, Type: event.Press})
		case e.Type == sdl.KEYUP && act.IsButton():
			s.events = append(s.events, input.Event{Action: act, Type: event.Release})
		}
	}
}

func (s *Backend) renderFrame(frame *video.FrameBuffer) error {
	pixels := frame.ToSlice()
	if err := s.texture.Update(nil, unsafe.Pointer(&pixels[0]), video.FramebufferWidth*4); err != nil {
		return fmt.Errorf("failed to update texture: %w", err)
	}

	s.renderer.SetDrawColor(0, 0, 0, 255)
	s.renderer.Clear()
	s.renderer.Copy(s.texture, nil, nil)
	s.renderer.Present()
	return nil
}
