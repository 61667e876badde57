// Package script runs Lua input scripts against a console. A script runs as
// a coroutine resumed once per frame: wait(n) yields for n frames, so
// scripts read as a linear list of inputs and checks.
//
//	press("A+Start")
//	wait(10)
//	release("A")
//	tap("Down", 2)
//	snapshot("menu")
//	quit()
package script

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	lua "github.com/yuin/gopher-lua"

	"github.com/valerio/go-ugba/ugba"
	"github.com/valerio/go-ugba/ugba/debug"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/video"
)

// ErrScript wraps errors raised while loading or running a script.
var ErrScript = errors.New("script error")

const prelude = `
function tap(keys, frames)
	press(keys)
	wait(frames or 1)
	release(keys)
end
`

// Script is a loaded Lua script bound to a console. It implements
// ugba.FrameSink so it can be installed as a host frame hook.
type Script struct {
	name    string
	console *ugba.Console
	state   *lua.LState
	thread  *lua.LState
	fn      *lua.LFunction

	snapshotDir   string
	snapshotScale int
	saved         []string

	frame    *video.FrameBuffer
	wait     int
	finished bool
	quit     bool
}

type Option func(*Script)

// WithSnapshotDir sets where snapshot() saves images. The default is the
// working directory.
func WithSnapshotDir(dir string) Option { return func(s *Script) { s.snapshotDir = dir } }

// WithSnapshotScale scales saved snapshots.
func WithSnapshotScale(scale int) Option { return func(s *Script) { s.snapshotScale = scale } }

// Load compiles source. The script does not start before the first frame.
func Load(name, source string, c *ugba.Console, opts ...Option) (*Script, error) {
	s := &Script{
		name:          name,
		console:       c,
		snapshotScale: 1,
	}
	for _, opt := range opts {
		opt(s)
	}

	s.state = lua.NewState()
	s.register()
	if err := s.state.DoString(prelude); err != nil {
		s.state.Close()
		return nil, fmt.Errorf("%w: prelude: %v", ErrScript, err)
	}
	fn, err := s.state.LoadString(source)
	if err != nil {
		s.state.Close()
		return nil, fmt.Errorf("%w: %s: %v", ErrScript, name, err)
	}
	s.fn = fn
	s.thread, _ = s.state.NewThread()
	return s, nil
}

// LoadFile loads the script at path.
func LoadFile(path string, c *ugba.Console, opts ...Option) (*Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	name := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
	return Load(name, string(data), c, opts...)
}

// Close releases the Lua state.
func (s *Script) Close() { s.state.Close() }

// Finished reports whether the script ran to its end.
func (s *Script) Finished() bool { return s.finished }

// Saved returns the paths of the snapshots taken so far.
func (s *Script) Saved() []string { return s.saved }

// Frame resumes the script when its current wait is over. It returns
// ugba.ErrStopped once the script called quit().
func (s *Script) Frame(fb *video.FrameBuffer) error {
	if s.finished {
		return nil
	}
	s.frame = fb
	if s.wait > 0 {
		s.wait--
		if s.wait > 0 {
			return nil
		}
	}

	st, err, values := s.state.Resume(s.thread, s.fn)
	switch st {
	case lua.ResumeError:
		s.finished = true
		return fmt.Errorf("%w: %s: %v", ErrScript, s.name, err)
	case lua.ResumeOK:
		s.finished = true
		slog.Info("Script finished", "script", s.name, "frame", s.console.Frames())
	case lua.ResumeYield:
		s.wait = 1
		if len(values) > 0 {
			if n, ok := values[0].(lua.LNumber); ok && n > 1 {
				s.wait = int(n)
			}
		}
	}
	if s.quit {
		s.finished = true
		return ugba.ErrStopped
	}
	return nil
}

func (s *Script) register() {
	funcs := map[string]lua.LGFunction{
		"press":    s.press,
		"release":  s.release,
		"held":     s.held,
		"wait":     s.waitFrames,
		"frame":    s.frameCount,
		"line":     s.line,
		"read8":    s.read(1),
		"read16":   s.read(2),
		"read32":   s.read(4),
		"write8":   s.write(1),
		"write16":  s.write(2),
		"write32":  s.write(4),
		"pixel":    s.pixel,
		"snapshot": s.snapshot,
		"log":      s.log,
		"quit":     s.quitScript,
	}
	for name, fn := range funcs {
		s.state.SetGlobal(name, s.state.NewFunction(fn))
	}
}

func checkKeys(L *lua.LState, n int) input.Keys {
	keys, err := input.ParseKeys(L.CheckString(n))
	if err != nil {
		L.ArgError(n, err.Error())
	}
	return keys
}

func (s *Script) press(L *lua.LState) int {
	s.console.Keypad.Press(checkKeys(L, 1))
	return 0
}

func (s *Script) release(L *lua.LState) int {
	s.console.Keypad.Release(checkKeys(L, 1))
	return 0
}

func (s *Script) held(L *lua.LState) int {
	L.Push(lua.LString(s.console.Keypad.Down().String()))
	return 1
}

func (s *Script) waitFrames(L *lua.LState) int {
	n := L.OptInt(1, 1)
	if n < 1 {
		L.ArgError(1, "frame count must be positive")
	}
	return L.Yield(lua.LNumber(n))
}

func (s *Script) frameCount(L *lua.LState) int {
	L.Push(lua.LNumber(s.console.Frames()))
	return 1
}

func (s *Script) line(L *lua.LState) int {
	L.Push(lua.LNumber(s.console.Line()))
	return 1
}

func (s *Script) read(width int) lua.LGFunction {
	return func(L *lua.LState) int {
		address := uint32(L.CheckInt64(1))
		bus := s.console.Bus()
		var v uint32
		switch width {
		case 1:
			v = uint32(bus.Read8(address))
		case 2:
			v = uint32(bus.Read16(address))
		default:
			v = bus.Read32(address)
		}
		L.Push(lua.LNumber(v))
		return 1
	}
}

func (s *Script) write(width int) lua.LGFunction {
	return func(L *lua.LState) int {
		address := uint32(L.CheckInt64(1))
		value := uint32(L.CheckInt64(2))
		bus := s.console.Bus()
		switch width {
		case 1:
			bus.Write8(address, uint8(value))
		case 2:
			bus.Write16(address, uint16(value))
		default:
			bus.Write32(address, value)
		}
		return 0
	}
}

// pixel returns the 0xRRGGBBAA color at x, y of the last frame.
func (s *Script) pixel(L *lua.LState) int {
	x, y := L.CheckInt(1), L.CheckInt(2)
	if s.frame == nil || x < 0 || y < 0 || x >= s.frame.Width() || y >= s.frame.Height() {
		L.ArgError(1, fmt.Sprintf("pixel %d,%d out of the frame", x, y))
	}
	L.Push(lua.LNumber(s.frame.GetPixel(x, y)))
	return 1
}

func (s *Script) snapshot(L *lua.LState) int {
	name := L.OptString(1, s.name)
	if s.frame == nil {
		L.RaiseError("snapshot before the first frame")
	}
	base := fmt.Sprintf("%s_frame_%d", name, s.console.Frames())
	path, err := debug.SaveFramePNGToDir(s.frame, base, s.snapshotDir, s.snapshotScale)
	if err != nil {
		L.RaiseError("snapshot: %v", err)
	}
	s.saved = append(s.saved, path)
	L.Push(lua.LString(path))
	return 1
}

func (s *Script) log(L *lua.LState) int {
	parts := make([]string, L.GetTop())
	for i := range parts {
		parts[i] = L.ToStringMeta(L.Get(i + 1)).String()
	}
	slog.Info(strings.Join(parts, " "), "script", s.name, "frame", s.console.Frames())
	return 0
}

func (s *Script) quitScript(L *lua.LState) int {
	s.quit = true
	return L.Yield()
}
