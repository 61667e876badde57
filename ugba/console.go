// Package ugba ties the hardware model together: one Console owns the memory
// map, the register dispatcher and every peripheral, and advances them one
// scanline at a time.
package ugba

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/bios"
	"github.com/valerio/go-ugba/ugba/dispatch"
	"github.com/valerio/go-ugba/ugba/dma"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/irq"
	"github.com/valerio/go-ugba/ugba/memory"
	"github.com/valerio/go-ugba/ugba/serial"
	"github.com/valerio/go-ugba/ugba/timer"
	"github.com/valerio/go-ugba/ugba/video"
)

var (
	// ErrNoInterruptsEnabled is returned by the wait functions when nothing
	// could ever wake them up.
	ErrNoInterruptsEnabled = errors.New("ugba: no interrupts enabled")
	// ErrStopped is returned once the console has been stopped, usually
	// because the window was closed.
	ErrStopped = errors.New("ugba: console stopped")
)

// FrameSink receives every completed frame at the start of VBlank. The
// buffer is reused for the next frame. Returning ErrStopped stops the
// console; other errors are logged and the console keeps running.
type FrameSink interface {
	Frame(fb *video.FrameBuffer) error
}

// FrameSinkFunc adapts a function to FrameSink.
type FrameSinkFunc func(fb *video.FrameBuffer) error

func (f FrameSinkFunc) Frame(fb *video.FrameBuffer) error { return f(fb) }

// Console is the root struct: the hardware model of one console.
type Console struct {
	mem  *memory.Map
	disp *dispatch.Dispatcher
	bus  *dispatch.Bus

	IRQ    *irq.Controller
	DMA    *dma.Engine
	Timers *timer.Unit
	Keypad *input.Keypad
	Serial *serial.LogSink
	Video  *video.Video
	BIOS   bios.Service

	sink       FrameSink
	strict     bool
	serialOpts []serial.LogSinkOption

	line        int
	lineStarted bool
	frames      uint64
	stopped     bool
	romTop      uint32
}

type Option func(*Console)

// WithSink delivers frames to s.
func WithSink(s FrameSink) Option { return func(c *Console) { c.sink = s } }

// WithStrictMemory makes out of range memory accesses panic.
func WithStrictMemory() Option { return func(c *Console) { c.strict = true } }

// WithSerial passes options to the serial log sink.
func WithSerial(opts ...serial.LogSinkOption) Option {
	return func(c *Console) { c.serialOpts = append(c.serialOpts, opts...) }
}

// WithBIOS replaces the BIOS math services.
func WithBIOS(s bios.Service) Option { return func(c *Console) { c.BIOS = s } }

// New creates a console in its power-on state.
func New(opts ...Option) *Console {
	c := &Console{BIOS: bios.Default}
	for _, opt := range opts {
		opt(c)
	}

	var memOpts []memory.Option
	if c.strict {
		memOpts = append(memOpts, memory.WithStrict())
	}
	c.mem = memory.New(memOpts...)
	c.disp = dispatch.New()
	c.bus = dispatch.NewBus(c.mem, c.disp)

	c.IRQ = irq.New(c.mem)
	c.DMA = dma.New(c.bus, c.mem, c.IRQ.Raise)
	c.Timers = timer.New(c.mem, c.IRQ.Raise)
	c.Keypad = input.NewKeypad(c.mem, c.IRQ.Raise)
	c.Serial = serial.NewLogSink(c.mem, func() { c.IRQ.Raise(addr.SerialInterrupt) }, c.serialOpts...)
	c.Video = video.New(c.mem)

	c.IRQ.Attach(c.disp)
	c.DMA.Attach(c.disp)
	c.Timers.Attach(c.disp)
	c.Keypad.Attach(c.disp)
	c.Serial.Attach(c.disp)
	c.Video.Attach(c.disp)

	c.IRQ.OnToggle(c.toggleSource)

	c.Reset()
	return c
}

// Reset puts every register and memory region back to the power-on state.
// ROM is kept.
func (c *Console) Reset() {
	c.mem.ResetRegions(memory.ResetAll)
	c.resetPeripherals()
	c.line = 0
	c.lineStarted = false
	c.stopped = false
}

func (c *Console) resetPeripherals() {
	c.IRQ.Reset()
	c.DMA.Reset()
	c.Timers.Reset()
	c.Serial.Reset()
	c.Video.Reset()
	c.Keypad.Set(c.Keypad.Down())
}

// toggleSource keeps the per-peripheral interrupt enable bits in sync with IE.
func (c *Console) toggleSource(src addr.Interrupt, on bool) {
	switch src {
	case addr.VBlankInterrupt:
		c.Video.SetIRQ(video.StatVBlankIRQ, on)
	case addr.HBlankInterrupt:
		c.Video.SetIRQ(video.StatHBlankIRQ, on)
	case addr.VCountInterrupt:
		c.Video.SetIRQ(video.StatVCountIRQ, on)
	case addr.Timer0Interrupt, addr.Timer1Interrupt, addr.Timer2Interrupt, addr.Timer3Interrupt:
		c.Timers.SetIRQ(int(src-addr.Timer0Interrupt), on)
	case addr.SerialInterrupt:
		c.Serial.SetIRQ(on)
	case addr.KeypadInterrupt:
		c.Keypad.SetIRQ(on)
	}
}

// Bus is the view of memory applications read and write through. Writes to
// I/O registers trigger their side effects.
func (c *Console) Bus() *dispatch.Bus { return c.bus }

// Memory returns the raw memory map. Writes through it skip side effects.
func (c *Console) Memory() *memory.Map { return c.mem }

// Line returns the scanline the console is about to run.
func (c *Console) Line() int { return c.line }

// Frames returns the number of frames completed so far.
func (c *Console) Frames() uint64 { return c.frames }

// Stop makes every following wait return ErrStopped.
func (c *Console) Stop() { c.stopped = true }

// Stopped reports whether the console was stopped.
func (c *Console) Stopped() bool { return c.stopped }

// FrameBuffer returns the frame being composed.
func (c *Console) FrameBuffer() *video.FrameBuffer { return c.Video.FrameBuffer() }

// Step runs one scanline:
//   - VCOUNT moves to the line, V-counter match and special DMA (lines 2-161)
//   - visible lines are composed
//   - HBlank: flag, interrupt, HBlank DMA (visible lines only)
//   - timers and serial advance by a line worth of cycles
//
// Line 160 starts as soon as line 159 ends, so the VBlank work (affine
// reload, interrupt, VBlank DMA, frame delivery) is done by the Step that
// runs line 159.
func (c *Console) Step() {
	if !c.lineStarted {
		c.startLine()
	}
	line := c.line

	c.Video.RenderLine(line)

	if c.Video.EnterHBlank() {
		c.IRQ.Raise(addr.HBlankInterrupt)
		c.IRQ.Service()
	}
	if line < addr.ScreenHeight {
		c.DMA.Trigger(dma.HBlank)
	}

	c.Timers.Tick(addr.CyclesPerLine)
	c.Serial.Tick(addr.CyclesPerLine)
	c.IRQ.Service()

	c.line = (line + 1) % addr.TotalLines
	c.lineStarted = false
	if c.line == addr.ScreenHeight {
		c.startLine()
	}
}

func (c *Console) startLine() {
	c.lineStarted = true
	line := c.line
	if c.Video.StartLine(line) {
		c.IRQ.Raise(addr.VCountInterrupt)
		c.IRQ.Service()
	}
	if line == addr.ScreenHeight {
		c.enterVBlank()
	}
	if line >= 2 && line < addr.ScreenHeight+2 {
		c.DMA.Trigger(dma.Special)
	}
}

func (c *Console) enterVBlank() {
	if c.Video.EnterVBlank() {
		c.IRQ.Raise(addr.VBlankInterrupt)
		c.IRQ.Service()
	}
	c.DMA.Trigger(dma.VBlank)

	c.frames++
	if c.sink == nil {
		return
	}
	if err := c.sink.Frame(c.Video.FrameBuffer()); err != nil {
		if errors.Is(err, ErrStopped) {
			c.stopped = true
			return
		}
		slog.Warn("Frame sink failed", "frame", c.frames, "err", err)
	}
}

// RunFrame runs scanlines until the next VBlank starts.
func (c *Console) RunFrame() error {
	if c.stopped {
		return ErrStopped
	}
	start := c.frames
	for c.frames == start {
		c.Step()
	}
	if c.stopped {
		return ErrStopped
	}
	return nil
}

var displayInterrupts = addr.VBlankInterrupt.Mask() | addr.HBlankInterrupt.Mask() | addr.VCountInterrupt.Mask()

// VBlankIntrWait enables the master interrupt flag and runs the console until
// the VBlank interrupt has been serviced.
func (c *Console) VBlankIntrWait() error {
	return c.IntrWait(true, addr.VBlankInterrupt.Mask())
}

// Halt runs the console until an enabled interrupt becomes pending. IME is
// left as it is: with IME set the request is serviced before Halt returns,
// with IME clear it stays pending in IF. Requests serviced before the call do
// not wake it.
func (c *Console) Halt() error {
	if c.stopped {
		return ErrStopped
	}
	if c.IRQ.Enabled() == 0 {
		return ErrNoInterruptsEnabled
	}
	c.IRQ.TakeServiced()

	bounded := c.IRQ.Enabled()&^displayInterrupts == 0
	for lines := 0; ; lines++ {
		if c.IRQ.Enabled()&c.IRQ.Pending() != 0 {
			c.IRQ.Service()
			return nil
		}
		// serviced inside the last line, IF is already clear
		if c.IRQ.TakeServiced() != 0 {
			return nil
		}
		if c.stopped {
			return ErrStopped
		}
		if bounded && lines > 2*addr.TotalLines {
			return fmt.Errorf("%w: 0x%04X never fired, check DISPSTAT", ErrNoInterruptsEnabled, c.IRQ.Enabled())
		}
		c.Step()
	}
}

// IntrWait runs the console until one of the sources in mask is serviced.
// Like the BIOS call it sets IME.
// When discard is set, requests serviced before the call do not count.
func (c *Console) IntrWait(discard bool, mask uint16) error {
	if c.stopped {
		return ErrStopped
	}
	if c.IRQ.Enabled()&mask == 0 {
		return fmt.Errorf("%w: waiting on 0x%04X with IE 0x%04X", ErrNoInterruptsEnabled, mask, c.IRQ.Enabled())
	}
	if discard {
		c.IRQ.TakeServiced()
	}
	c.IRQ.SetMasterEnable(true)

	// display interrupts fire at least once per frame when armed
	bounded := mask&^displayInterrupts == 0
	for lines := 0; ; lines++ {
		if c.IRQ.TakeServiced()&mask != 0 {
			return nil
		}
		if c.stopped {
			return ErrStopped
		}
		if bounded && lines > 2*addr.TotalLines {
			return fmt.Errorf("%w: 0x%04X never fired, check DISPSTAT", ErrNoInterruptsEnabled, mask)
		}
		c.Step()
	}
}
