// Package timer implements the four cascadable hardware timers.
package timer

import (
	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/bit"
	"github.com/valerio/go-ugba/ugba/dispatch"
)

// Count is the number of hardware timers.
const Count = 4

// TMxCNT_H bits.
const (
	Prescaler1    uint16 = 0
	Prescaler64   uint16 = 1
	Prescaler256  uint16 = 2
	Prescaler1024 uint16 = 3
	Cascade       uint16 = 1 << 2
	IRQ           uint16 = 1 << 6
	Start         uint16 = 1 << 7
)

// prescalerPeriod maps TMxCNT_H bits 0-1 to the number of CPU cycles per
// counter increment.
var prescalerPeriod = [4]int{1, 64, 256, 1024}

// Registers is the raw I/O memory the counters are mirrored into, so reads of
// TMxCNT_L return the live counter.
type Registers interface {
	IORead16(offset uint32) uint16
	IOWrite16(offset uint32, value uint16)
}

type timer struct {
	counter uint16
	reload  uint16
	control uint16
	cycles  int // cycles accumulated towards the next increment
}

func (t *timer) running() bool { return bit.IsSet(7, t.control) }
func (t *timer) cascade() bool { return bit.IsSet(2, t.control) }

// Unit drives the four timers of a console.
type Unit struct {
	timers [Count]timer
	regs   Registers
	raise  func(addr.Interrupt)
}

// New creates the timers. raise is called on overflow of a timer with its IRQ
// bit set.
func New(regs Registers, raise func(addr.Interrupt)) *Unit {
	return &Unit{regs: regs, raise: raise}
}

// Attach registers the counter and control register handlers.
func (u *Unit) Attach(d *dispatch.Dispatcher) {
	for n := range Count {
		d.Register(addr.TMCNTL(n), func(_ uint32, value uint16) { u.WriteReload(n, value) })
		d.Register(addr.TMCNTH(n), func(_ uint32, value uint16) { u.WriteControl(n, value) })
	}
}

// WriteReload sets the value loaded into timer n on start and on overflow.
func (u *Unit) WriteReload(n int, value uint16) {
	u.timers[n].reload = value
	u.mirror(n)
}

// WriteControl applies a write to TMxCNT_H. Starting a stopped timer loads
// its reload value into the counter.
func (u *Unit) WriteControl(n int, value uint16) {
	t := &u.timers[n]
	wasRunning := t.running()
	t.control = value
	if !wasRunning && t.running() {
		t.counter = t.reload
		t.cycles = 0
	}
	u.mirror(n)
}

// Counter returns the live counter of timer n.
func (u *Unit) Counter(n int) uint16 {
	return u.timers[n].counter
}

func (u *Unit) mirror(n int) {
	if u.regs != nil {
		u.regs.IOWrite16(addr.TMCNTL(n), u.timers[n].counter)
	}
}

// Tick advances the timers by the given number of CPU cycles.
func (u *Unit) Tick(cycles int) {
	for n := range Count {
		t := &u.timers[n]
		if !t.running() || (n > 0 && t.cascade()) {
			continue
		}
		period := prescalerPeriod[t.control&3]
		t.cycles += cycles
		steps := t.cycles / period
		t.cycles %= period
		if steps > 0 {
			u.increment(n, steps)
		}
	}
}

func (u *Unit) increment(n int, steps int) {
	t := &u.timers[n]
	for steps > 0 {
		room := 0x10000 - int(t.counter)
		if steps < room {
			t.counter += uint16(steps)
			break
		}
		steps -= room
		t.counter = t.reload
		u.overflow(n)
	}
	u.mirror(n)
}

func (u *Unit) overflow(n int) {
	if u.timers[n].control&IRQ != 0 && u.raise != nil {
		u.raise(addr.TimerInterrupt(n))
	}
	if n+1 < Count {
		next := &u.timers[n+1]
		if next.running() && next.cascade() {
			u.increment(n+1, 1)
		}
	}
}

// SetIRQ sets or clears the IRQ enable bit of timer n, keeping the register in sync.
func (u *Unit) SetIRQ(n int, on bool) {
	value := bit.SetTo(6, u.regs.IORead16(addr.TMCNTH(n)), on)
	u.regs.IOWrite16(addr.TMCNTH(n), value)
	u.WriteControl(n, value)
}

// Reset stops every timer.
func (u *Unit) Reset() {
	u.timers = [Count]timer{}
	for n := range Count {
		u.mirror(n)
	}
}
