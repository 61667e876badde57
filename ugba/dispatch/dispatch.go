// Package dispatch routes I/O register writes to the components that keep
// derived state for them (affine cache, DMA engine, interrupt controller,
// timers, keypad, serial).
package dispatch

import (
	"fmt"
	"log/slog"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/memory"
)

// Handler is notified after the halfword at offset has been stored. value is
// the halfword as it sits in I/O memory. A handler may store a different value
// back when the hardware register does not read back what was written.
type Handler func(offset uint32, value uint16)

// Dispatcher is a table of write handlers keyed by I/O offset (halfword granularity).
type Dispatcher struct {
	handlers [addr.IOSize / 2]Handler
}

// New returns an empty dispatcher: every register is store-only.
func New() *Dispatcher {
	return &Dispatcher{}
}

// Register installs h for the halfword register at offset, replacing any
// previous handler. Registering past the I/O region panics.
func (d *Dispatcher) Register(offset uint32, h Handler) {
	if offset >= addr.IOSize {
		panic(fmt.Sprintf("dispatch: register offset 0x%03X outside of I/O", offset))
	}
	d.handlers[offset>>1] = h
}

// Registered reports whether a side effect is attached to offset.
func (d *Dispatcher) Registered(offset uint32) bool {
	return offset < addr.IOSize && d.handlers[offset>>1] != nil
}

// Notify runs the handler of offset, if any.
func (d *Dispatcher) Notify(offset uint32, value uint16) {
	if offset >= addr.IOSize {
		return
	}
	if h := d.handlers[offset>>1]; h != nil {
		h(offset&^1, value)
	}
}

// Bus is the memory bus seen by application code, the BIOS and the DMA engine:
// plain memory accesses go to the memory map, I/O writes are stored and then
// dispatched.
type Bus struct {
	mem *memory.Map
	d   *Dispatcher
}

// NewBus wraps a memory map and a dispatcher.
func NewBus(mem *memory.Map, d *Dispatcher) *Bus {
	return &Bus{mem: mem, d: d}
}

// Memory returns the underlying memory map.
func (b *Bus) Memory() *memory.Map { return b.mem }

// Dispatcher returns the side-effect table.
func (b *Bus) Dispatcher() *Dispatcher { return b.d }

func (b *Bus) Read8(address uint32) byte    { return b.mem.Read8(address) }
func (b *Bus) Read16(address uint32) uint16 { return b.mem.Read16(address) }
func (b *Bus) Read32(address uint32) uint32 { return b.mem.Read32(address) }

func (b *Bus) Write8(address uint32, value byte) {
	b.mem.Write8(address, value)
	b.notify(address, 1)
}

func (b *Bus) Write16(address uint32, value uint16) {
	address &^= 1
	b.mem.Write16(address, value)
	b.notify(address, 2)
}

func (b *Bus) Write32(address uint32, value uint32) {
	address &^= 3
	b.mem.Write32(address, value)
	b.notify(address, 4)
}

// WriteIO16 stores a register by offset and runs its side effect.
func (b *Bus) WriteIO16(offset uint32, value uint16) {
	b.Write16(addr.IO+offset, value)
}

// WriteIO32 stores a 32-bit register by offset and runs the side effects of
// both halves, low first.
func (b *Bus) WriteIO32(offset uint32, value uint32) {
	b.Write32(addr.IO+offset, value)
}

// ReadIO16 reads a register by offset.
func (b *Bus) ReadIO16(offset uint32) uint16 {
	return b.mem.IORead16(offset)
}

// ReadIO32 reads a 32-bit register by offset.
func (b *Bus) ReadIO32(offset uint32) uint32 {
	return b.mem.IORead32(offset)
}

func (b *Bus) notify(address uint32, width int) {
	if address < addr.IO || address >= addr.IO+addr.IOSize {
		return
	}
	start := (address - addr.IO) &^ 1
	end := address - addr.IO + uint32(width)
	for off := start; off < end && off < addr.IOSize; off += 2 {
		if !b.d.Registered(off) {
			continue
		}
		value := b.mem.IORead16(off)
		slog.Debug("I/O write dispatched", "offset", fmt.Sprintf("0x%03X", off), "value", fmt.Sprintf("0x%04X", value))
		b.d.Notify(off, value)
	}
}
