// Package host connects a console to a backend: frames go out at every
// VBlank, input events come back and are routed to the keypad or to the
// host controls (pause, frame step, snapshot, register dump, quit).
package host

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/valerio/go-ugba/ugba"
	"github.com/valerio/go-ugba/ugba/backend"
	"github.com/valerio/go-ugba/ugba/debug"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/input/action"
	"github.com/valerio/go-ugba/ugba/input/event"
	"github.com/valerio/go-ugba/ugba/timing"
	"github.com/valerio/go-ugba/ugba/video"
)

// App is the program run on the console. It returns when it is done or when
// a wait reports ugba.ErrStopped.
type App func(c *ugba.Console) error

// Host drives a backend from the frames of a console.
type Host struct {
	console *ugba.Console
	backend backend.Backend
	manager *input.Manager
	limiter timing.Limiter
	config  backend.BackendConfig

	dump       io.Writer
	consoleOps []ugba.Option
	hooks      []ugba.FrameSink

	state   debug.DebuggerState
	step    bool
	quit    atomic.Bool // set from the backend goroutine by OnQuit
	err     error
	current *video.FrameBuffer
}

type Option func(*Host)

// WithLimiter paces frames with l. The default never waits.
func WithLimiter(l timing.Limiter) Option { return func(h *Host) { h.limiter = l } }

// WithDumpWriter writes register dumps to w as formatted panels instead of
// logging them line by line.
func WithDumpWriter(w io.Writer) Option { return func(h *Host) { h.dump = w } }

// WithFrameHook runs hook on every frame before it is presented. A hook
// returning ugba.ErrStopped stops the console; any other error stops it and
// is returned by Run.
func WithFrameHook(hook ugba.FrameSink) Option {
	return func(h *Host) { h.hooks = append(h.hooks, hook) }
}

// WithConsoleOptions passes options to the console the host creates.
func WithConsoleOptions(opts ...ugba.Option) Option {
	return func(h *Host) { h.consoleOps = append(h.consoleOps, opts...) }
}

// New creates a console whose frames go to b and initializes b with config.
// The host is returned even when the backend fails to initialize, so the
// caller can still clean up.
func New(b backend.Backend, config backend.BackendConfig, opts ...Option) (*Host, error) {
	h := &Host{
		backend: b,
		limiter: timing.NewNoOpLimiter(),
	}
	for _, opt := range opts {
		opt(h)
	}

	h.console = ugba.New(append(h.consoleOps, ugba.WithSink(h))...)
	h.manager = input.NewManager(h.console.Keypad)
	h.registerControls()

	userQuit := config.Callbacks.OnQuit
	config.Callbacks.OnQuit = func() {
		h.quit.Store(true)
		if userQuit != nil {
			userQuit()
		}
	}
	if config.DebugProvider == nil {
		config.DebugProvider = h
	}
	h.config = config

	if err := b.Init(config); err != nil {
		return h, fmt.Errorf("init backend: %w", err)
	}
	return h, nil
}

// Console returns the console driven by the host.
func (h *Host) Console() *ugba.Console { return h.console }

// Manager returns the input manager, to register extra host controls.
func (h *Host) Manager() *input.Manager { return h.manager }

// AddFrameHook installs a hook after construction, for hooks that need the
// console.
func (h *Host) AddFrameHook(hook ugba.FrameSink) { h.hooks = append(h.hooks, hook) }

// State returns the debugger state.
func (h *Host) State() debug.DebuggerState { return h.state }

func (h *Host) registerControls() {
	h.manager.On(action.HostQuit, event.Press, func() {
		slog.Info("Quit requested")
		h.quit.Store(true)
	})
	h.manager.On(action.HostPauseToggle, event.Press, func() {
		if h.state == debug.DebuggerRunning {
			h.state = debug.DebuggerPaused
			slog.Info("Paused", "frame", h.console.Frames())
			return
		}
		h.state = debug.DebuggerRunning
		h.limiter.Reset()
		slog.Info("Resumed", "frame", h.console.Frames())
	})
	h.manager.On(action.HostStepFrame, event.Press, func() {
		h.state = debug.DebuggerStepFrame
		h.step = true
	})
	h.manager.On(action.HostSnapshot, event.Press, func() {
		if _, ok := h.backend.(backend.ActionHandler); !ok {
			debug.TakeSnapshot(h.current)
		}
	})
	h.manager.On(action.HostDumpRegisters, event.Press, h.dumpRegisters)
}

func (h *Host) dumpRegisters() {
	d := debug.Extract(h.console, h.state)
	if h.dump != nil {
		fmt.Fprintln(h.dump, debug.FormatRegisters(d))
		return
	}
	for _, line := range debug.RegisterLines(d) {
		slog.Info(line)
	}
}

// RegisterLines implements backend.DebugDataProvider.
func (h *Host) RegisterLines() []string {
	return debug.RegisterLines(debug.Extract(h.console, h.state))
}

// Frame implements ugba.FrameSink. While paused it keeps presenting the same
// frame until the host resumes, steps a frame or quits.
func (h *Host) Frame(fb *video.FrameBuffer) error {
	h.current = fb
	for _, hook := range h.hooks {
		if err := hook.Frame(fb); err != nil {
			if !errors.Is(err, ugba.ErrStopped) {
				h.err = err
			}
			return ugba.ErrStopped
		}
	}
	for {
		if err := h.present(fb); err != nil {
			h.err = err
			return ugba.ErrStopped
		}
		if h.quit.Load() {
			return ugba.ErrStopped
		}
		if h.state == debug.DebuggerRunning {
			break
		}
		if h.step {
			h.step = false
			break
		}
		h.limiter.WaitForNextFrame()
	}
	h.limiter.WaitForNextFrame()
	return nil
}

func (h *Host) present(fb *video.FrameBuffer) error {
	events, err := h.backend.Update(fb)
	if err != nil {
		return fmt.Errorf("backend update: %w", err)
	}
	handler, forward := h.backend.(backend.ActionHandler)
	for _, e := range events {
		h.manager.Dispatch(e)
		if forward && !e.Action.IsButton() && e.Type == event.Press {
			handler.HandleAction(e.Action)
		}
	}
	return nil
}

// Run runs app on the console and cleans the backend up once it returns.
// Backends that own the main goroutine run there while app runs on its own
// goroutine. A stop requested from the backend is not an error.
func (h *Host) Run(app App) error {
	runner, ok := h.backend.(backend.MainThreadRunner)
	if !ok {
		err := app(h.console)
		return h.finish(err)
	}

	done := make(chan error, 1)
	go func() {
		err := app(h.console)
		// closes the window when the app ends on its own
		if cerr := h.backend.Cleanup(); cerr != nil {
			slog.Warn("Backend cleanup failed", "err", cerr)
		}
		done <- err
	}()
	if err := runner.Run(); err != nil {
		slog.Error("Backend main loop failed", "err", err)
	}
	return h.finish(<-done)
}

func (h *Host) finish(err error) error {
	if cerr := h.backend.Cleanup(); cerr != nil {
		slog.Warn("Backend cleanup failed", "err", cerr)
	}
	if h.err != nil {
		return h.err
	}
	if errors.Is(err, ugba.ErrStopped) {
		slog.Info("Console stopped", "frames", h.console.Frames())
		return nil
	}
	return err
}
