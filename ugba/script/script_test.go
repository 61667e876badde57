package script

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lua "github.com/yuin/gopher-lua"

	"github.com/valerio/go-ugba/ugba"
	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/video"
)

// rig runs a script as the frame sink of a console and records the keys
// down after every frame.
type rig struct {
	console *ugba.Console
	script  *Script
	keys    []input.Keys
	err     error
}

func newRig(t *testing.T, source string, opts ...Option) *rig {
	t.Helper()
	r := &rig{}
	r.console = ugba.New(ugba.WithSink(ugba.FrameSinkFunc(func(fb *video.FrameBuffer) error {
		err := r.script.Frame(fb)
		r.keys = append(r.keys, r.console.Keypad.Down())
		if err != nil && r.err == nil {
			r.err = err
		}
		return err
	})))
	s, err := Load("test", source, r.console, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Close)
	r.script = s
	require.NoError(t, r.console.IRQ.Enable(addr.VBlankInterrupt))
	return r
}

func (r *rig) run(frames int) error {
	for range frames {
		if err := r.console.VBlankIntrWait(); err != nil {
			return err
		}
	}
	return nil
}

func TestInputSequence(t *testing.T) {
	t.Run("press wait release quit", func(t *testing.T) {
		r := newRig(t, `
			press("A")
			wait(2)
			release("A")
			press("B+Start")
			quit()
			press("L")
		`)
		err := r.run(10)
		assert.ErrorIs(t, err, ugba.ErrStopped)
		assert.Equal(t, []input.Keys{input.KeyA, input.KeyA, input.KeyB | input.KeyStart}, r.keys)
		assert.Equal(t, uint64(3), r.console.Frames())
	})

	t.Run("tap", func(t *testing.T) {
		r := newRig(t, `tap("Down", 3)`)
		require.NoError(t, r.run(5))
		assert.Equal(t, []input.Keys{input.KeyDown, input.KeyDown, input.KeyDown, 0, 0}, r.keys)
		assert.True(t, r.script.Finished())
	})

	t.Run("held", func(t *testing.T) {
		r := newRig(t, `
			press("Up+R")
			assert(held() == "Up+R")
		`)
		require.NoError(t, r.run(1))
		assert.True(t, r.script.Finished())
	})
}

func TestMemoryAccess(t *testing.T) {
	r := newRig(t, `
		assert(frame() == 1)
		assert(line() == 160)
		write16(0x02000000, 0x1234)
		assert(read16(0x02000000) == 0x1234)
		assert(read8(0x02000001) == 0x12)
		write32(0x02000004, 0xDEADBEEF)
		assert(read32(0x02000004) == 0xDEADBEEF)
		write8(0x03000000, 7)
		log("memory ok", read8(0x03000000))
	`)
	require.NoError(t, r.run(1))
	assert.True(t, r.script.Finished())
	assert.Equal(t, uint32(0xDEADBEEF), r.console.Bus().Read32(0x02000004))
}

func TestFrameAccess(t *testing.T) {
	dir := t.TempDir()
	r := newRig(t, `
		color = pixel(0, 0)
		path = snapshot("shot")
	`, WithSnapshotDir(dir), WithSnapshotScale(2))
	require.NoError(t, r.console.ModeSet(3))
	r.console.LayersEnable(false, false, true, false, false)
	r.console.Bus().Write16(addr.VRAM, 0x001F)

	require.NoError(t, r.run(1))

	color := r.script.state.GetGlobal("color")
	assert.Equal(t, lua.LNumber(uint32(video.FromBGR555(0x001F))), color)

	require.Len(t, r.script.Saved(), 1)
	path := r.script.Saved()[0]
	assert.Equal(t, lua.LString(path), r.script.state.GetGlobal("path"))
	assert.Equal(t, dir, filepath.Dir(path))
	assert.True(t, strings.HasPrefix(filepath.Base(path), "shot_frame_1_"))
	_, err := os.Stat(path)
	assert.NoError(t, err)
}

func TestErrors(t *testing.T) {
	t.Run("syntax", func(t *testing.T) {
		_, err := Load("bad", `press("A"`, ugba.New())
		assert.ErrorIs(t, err, ErrScript)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := LoadFile(filepath.Join(t.TempDir(), "nope.lua"), ugba.New())
		assert.ErrorIs(t, err, os.ErrNotExist)
	})

	for _, tc := range []struct {
		name   string
		source string
	}{
		{"unknown key", `press("Turbo")`},
		{"bad wait", `wait(0)`},
		{"raised", `error("boom")`},
		{"pixel out of frame", `pixel(240, 0)`},
	} {
		t.Run(tc.name, func(t *testing.T) {
			r := newRig(t, tc.source)
			// the console only logs sink errors, the host is what stops on them
			assert.NoError(t, r.run(3))
			assert.ErrorIs(t, r.err, ErrScript)
			assert.True(t, r.script.Finished())
		})
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "intro.lua")
	require.NoError(t, os.WriteFile(path, []byte(`wait(2) quit()`), 0o644))

	c := ugba.New()
	s, err := LoadFile(path, c)
	require.NoError(t, err)
	defer s.Close()
	assert.Equal(t, "intro", s.name)
}
