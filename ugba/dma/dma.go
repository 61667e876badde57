// Package dma models the four DMA channels: start timing gating, address
// modes, transfer widths and repeat.
package dma

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/dispatch"
)

// ChannelCount is the number of DMA channels.
const ChannelCount = 4

// ErrNoSuchChannel is returned for channel indices past the last channel.
var ErrNoSuchChannel = errors.New("dma: no such channel")

// Control register (DMAxCNT_H) fields.
const (
	DstIncrement uint16 = 0 << 5
	DstDecrement uint16 = 1 << 5
	DstFixed     uint16 = 2 << 5
	DstReload    uint16 = 3 << 5

	SrcIncrement uint16 = 0 << 7
	SrcDecrement uint16 = 1 << 7
	SrcFixed     uint16 = 2 << 7

	Repeat     uint16 = 1 << 9
	Transfer16 uint16 = 0
	Transfer32 uint16 = 1 << 10

	StartNow     uint16 = 0 << 12
	StartVBlank  uint16 = 1 << 12
	StartHBlank  uint16 = 2 << 12
	StartSpecial uint16 = 3 << 12

	IRQ    uint16 = 1 << 14
	Enable uint16 = 1 << 15
)

// Timing is the start condition of a channel.
type Timing uint8

const (
	Immediate Timing = iota
	VBlank
	HBlank
	Special
)

func (t Timing) String() string {
	switch t {
	case Immediate:
		return "Immediate"
	case VBlank:
		return "VBlank"
	case HBlank:
		return "HBlank"
	case Special:
		return "Special"
	}
	return fmt.Sprintf("Timing(%d)", uint8(t))
}

// State is the life cycle state of a channel.
type State uint8

const (
	Idle State = iota
	Waiting
	Running
)

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Waiting:
		return "Waiting"
	case Running:
		return "Running"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Memory is the bus transfers run on. Writes to I/O registers are expected to
// trigger their side effects.
type Memory interface {
	Read16(address uint32) uint16
	Read32(address uint32) uint32
	Write16(address uint32, value uint16)
	Write32(address uint32, value uint32)
}

// Registers gives raw access to the I/O registers of the channels.
type Registers interface {
	IORead16(offset uint32) uint16
	IORead32(offset uint32) uint32
	IOWrite16(offset uint32, value uint16)
	IOWrite32(offset uint32, value uint32)
}

type channel struct {
	control uint16
	state   State
	src     uint32
	dst     uint32
	count   uint32
	runs    int
	// gen changes on every disable and every run, so a run that sees it
	// move knows a register write inside it took the channel over.
	gen uint64
}

func (c *channel) timing() Timing {
	return Timing(c.control >> 12 & 3)
}

// Engine owns the four channels.
type Engine struct {
	mem      Memory
	regs     Registers
	channels [ChannelCount]channel
	raise    func(addr.Interrupt)
}

// New creates an engine that moves data over mem, reads its configuration
// from regs and reports completion interrupts through raise.
func New(mem Memory, regs Registers, raise func(addr.Interrupt)) *Engine {
	return &Engine{mem: mem, regs: regs, raise: raise}
}

// Attach registers the control register handlers of every channel.
func (e *Engine) Attach(d *dispatch.Dispatcher) {
	for n := range ChannelCount {
		d.Register(addr.DMACNTH(n), func(_ uint32, value uint16) {
			e.WriteControl(n, value)
		})
	}
}

// WriteControl applies a write to DMAxCNT_H of channel n. Enabling a channel
// latches its source, destination and count registers; an immediate channel
// runs before WriteControl returns. Disabling a channel aborts any run in
// progress.
func (e *Engine) WriteControl(n int, value uint16) {
	c := &e.channels[n]
	wasEnabled := c.control&Enable != 0
	c.control = value

	if value&Enable == 0 {
		if c.state == Running {
			c.gen++
		}
		c.state = Idle
		return
	}
	if wasEnabled {
		return
	}

	c.src = e.regs.IORead32(addr.DMASAD(n)) & 0x0FFFFFFF
	c.dst = e.regs.IORead32(addr.DMADAD(n)) & 0x0FFFFFFF
	c.count = e.reloadCount(n)
	c.runs = 0

	if c.timing() == Immediate {
		e.run(n)
		return
	}
	c.state = Waiting
	slog.Debug("DMA armed", "channel", n, "timing", c.timing(), "src", fmt.Sprintf("0x%08X", c.src), "dst", fmt.Sprintf("0x%08X", c.dst), "count", c.count)
}

func (e *Engine) reloadCount(n int) uint32 {
	count := uint32(e.regs.IORead16(addr.DMACNTL(n)))
	if n == 3 {
		if count == 0 {
			return 0x10000
		}
		return count
	}
	count &= 0x3FFF
	if count == 0 {
		return 0x4000
	}
	return count
}

// Trigger runs every channel waiting for timing t, in channel order. Special
// timing only starts channel 3 (video capture); the sound FIFO channels never
// see it.
func (e *Engine) Trigger(t Timing) {
	for n := range ChannelCount {
		c := &e.channels[n]
		if c.state != Waiting || c.timing() != t {
			continue
		}
		if t == Special && n != 3 {
			continue
		}
		e.run(n)
	}
}

func step(mode uint16, width uint32) uint32 {
	switch mode {
	case 0, 3:
		return width
	case 1:
		return -width
	}
	return 0
}

func (e *Engine) run(n int) {
	c := &e.channels[n]
	c.state = Running
	c.gen++
	gen := c.gen

	width := uint32(2)
	if c.control&Transfer32 != 0 {
		width = 4
	}
	src := c.src &^ (width - 1)
	dst := c.dst &^ (width - 1)
	srcStep := step(c.control>>7&3, width)
	dstStep := step(c.control>>5&3, width)
	count := c.count

	for i := uint32(0); i < count && c.gen == gen; i++ {
		if width == 4 {
			e.mem.Write32(dst, e.mem.Read32(src))
		} else {
			e.mem.Write16(dst, e.mem.Read16(src))
		}
		src += srcStep
		dst += dstStep
	}

	if c.gen != gen || c.state != Running {
		slog.Debug("DMA aborted", "channel", n)
		return
	}
	c.src, c.dst = src, dst
	c.runs++

	if c.control&Repeat != 0 && c.timing() != Immediate {
		c.count = e.reloadCount(n)
		if c.control>>5&3 == 3 {
			c.dst = e.regs.IORead32(addr.DMADAD(n)) & 0x0FFFFFFF
		}
		c.state = Waiting
	} else {
		c.state = Idle
		c.control &^= Enable
		e.regs.IOWrite16(addr.DMACNTH(n), c.control)
	}

	if c.control&IRQ != 0 && e.raise != nil {
		e.raise(addr.DMAInterrupt(n))
	}
}

// Transfer configures and starts channel n like the library helper: size is
// in bytes and flags is the control value without the enable bit. The channel
// is stopped first, so a new transfer always latches fresh addresses.
func (e *Engine) Transfer(n int, src, dst uint32, size int, flags uint16) error {
	if n < 0 || n >= ChannelCount {
		return fmt.Errorf("%w: %d", ErrNoSuchChannel, n)
	}
	unit := 2
	if flags&Transfer32 != 0 {
		unit = 4
	}
	if err := e.Stop(n); err != nil {
		return err
	}
	e.regs.IOWrite32(addr.DMASAD(n), src)
	e.regs.IOWrite32(addr.DMADAD(n), dst)
	e.regs.IOWrite16(addr.DMACNTL(n), uint16(size/unit))
	value := flags | Enable
	e.regs.IOWrite16(addr.DMACNTH(n), value)
	e.WriteControl(n, value)
	return nil
}

// Stop disables channel n. A run in progress ends after the current unit.
func (e *Engine) Stop(n int) error {
	if n < 0 || n >= ChannelCount {
		return fmt.Errorf("%w: %d", ErrNoSuchChannel, n)
	}
	value := e.regs.IORead16(addr.DMACNTH(n)) &^ Enable
	e.regs.IOWrite16(addr.DMACNTH(n), value)
	e.WriteControl(n, value)
	return nil
}

// Status is a snapshot of a channel, for debugging.
type Status struct {
	State   State
	Timing  Timing
	Control uint16
	Source  uint32
	Dest    uint32
	Count   uint32
	Runs    int
}

// Status returns the internal state of channel n.
func (e *Engine) Status(n int) (Status, error) {
	if n < 0 || n >= ChannelCount {
		return Status{}, fmt.Errorf("%w: %d", ErrNoSuchChannel, n)
	}
	c := &e.channels[n]
	return Status{
		State:   c.state,
		Timing:  c.timing(),
		Control: c.control,
		Source:  c.src,
		Dest:    c.dst,
		Count:   c.count,
		Runs:    c.runs,
	}, nil
}

// Reset returns every channel to Idle.
func (e *Engine) Reset() {
	e.channels = [ChannelCount]channel{}
}
