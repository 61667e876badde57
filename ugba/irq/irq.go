// Package irq emulates the interrupt controller: IE, IF and IME, the handler
// table and the service loop.
package irq

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/dispatch"
)

var (
	// ErrUnknownSource is returned for interrupt sources outside the fixed set.
	ErrUnknownSource = errors.New("irq: unknown interrupt source")
	// ErrBadPriority is returned when a priority order is not a permutation
	// of all the interrupt sources.
	ErrBadPriority = errors.New("irq: priority order must list every source once")
)

// Count is the number of interrupt sources.
const Count = addr.InterruptCount

// Handler is called synchronously when its source is serviced.
type Handler func()

// State is the state of a single source.
type State uint8

const (
	Disabled State = iota
	Idle
	Pending
	Servicing
)

func (s State) String() string {
	switch s {
	case Disabled:
		return "Disabled"
	case Idle:
		return "Idle"
	case Pending:
		return "Pending"
	case Servicing:
		return "Servicing"
	}
	return fmt.Sprintf("State(%d)", uint8(s))
}

// Registers is the raw I/O memory the controller mirrors IE, IF and IME into.
type Registers interface {
	IOWrite16(offset uint32, value uint16)
}

// Controller holds the authoritative interrupt state of a console.
type Controller struct {
	regs     Registers
	ie       uint16
	flags    uint16
	ime      bool
	handlers [Count]Handler
	priority [Count]addr.Interrupt
	onToggle func(src addr.Interrupt, enabled bool)

	servicing bool
	current   addr.Interrupt
	serviced  uint16
}

// New returns a controller with every source disabled, IME off and the
// default priority (lower source numbers first).
func New(regs Registers) *Controller {
	c := &Controller{regs: regs}
	c.Reset()
	return c
}

// Reset disables every source and drops all handlers.
func (c *Controller) Reset() {
	c.handlers = [Count]Handler{}
	for i := range c.priority {
		c.priority[i] = addr.Interrupt(i)
	}
	c.servicing = false
	c.ResetRegisters()
}

// ResetRegisters clears IE, IF and IME. Handlers and the priority order are
// kept.
func (c *Controller) ResetRegisters() {
	c.ie, c.flags, c.ime = 0, 0, false
	c.serviced = 0
	c.mirror()
}

// Attach registers the IE, IF and IME write handlers.
func (c *Controller) Attach(d *dispatch.Dispatcher) {
	d.Register(addr.IE, func(_ uint32, value uint16) { c.writeIE(value) })
	d.Register(addr.IF, func(_ uint32, value uint16) { c.acknowledge(value) })
	d.Register(addr.IME, func(_ uint32, value uint16) { c.SetMasterEnable(value&1 != 0) })
}

// OnToggle installs a hook called by Enable and Disable. It is used to keep
// the per-peripheral IRQ enable bits (DISPSTAT, timers, keypad, serial) in
// sync with IE.
func (c *Controller) OnToggle(fn func(src addr.Interrupt, enabled bool)) {
	c.onToggle = fn
}

func (c *Controller) mirror() {
	if c.regs == nil {
		return
	}
	c.regs.IOWrite16(addr.IE, c.ie)
	c.regs.IOWrite16(addr.IF, c.flags)
	var ime uint16
	if c.ime {
		ime = 1
	}
	c.regs.IOWrite16(addr.IME, ime)
}

func valid(src addr.Interrupt) error {
	if int(src) >= Count {
		return fmt.Errorf("%w: %d", ErrUnknownSource, src)
	}
	return nil
}

func (c *Controller) writeIE(value uint16) {
	value &= 1<<Count - 1
	// sources that get disabled lose their pending request
	c.flags &= value
	c.ie = value
	c.mirror()
}

func (c *Controller) acknowledge(value uint16) {
	c.flags &^= value
	c.mirror()
}

// Enable lets src become pending.
func (c *Controller) Enable(src addr.Interrupt) error {
	if err := valid(src); err != nil {
		return err
	}
	c.writeIE(c.ie | src.Mask())
	if c.onToggle != nil {
		c.onToggle(src, true)
	}
	return nil
}

// Disable stops src from becoming pending and drops a pending request, so it
// is not replayed if the source is enabled again.
func (c *Controller) Disable(src addr.Interrupt) error {
	if err := valid(src); err != nil {
		return err
	}
	c.writeIE(c.ie &^ src.Mask())
	if c.onToggle != nil {
		c.onToggle(src, false)
	}
	return nil
}

// SetHandler installs the handler of src. A nil handler removes it; the
// source is still acknowledged when serviced.
func (c *Controller) SetHandler(src addr.Interrupt, h Handler) error {
	if err := valid(src); err != nil {
		return err
	}
	c.handlers[src] = h
	return nil
}

// SetMasterEnable sets IME.
func (c *Controller) SetMasterEnable(on bool) {
	c.ime = on
	c.mirror()
}

// MasterEnabled reports IME.
func (c *Controller) MasterEnabled() bool {
	return c.ime
}

// SetPriority changes the service order. order must list every source once,
// highest priority first.
func (c *Controller) SetPriority(order []addr.Interrupt) error {
	if len(order) != Count {
		return ErrBadPriority
	}
	var seen uint16
	for _, src := range order {
		if err := valid(src); err != nil {
			return err
		}
		if seen&src.Mask() != 0 {
			return fmt.Errorf("%w: %s listed twice", ErrBadPriority, src)
		}
		seen |= src.Mask()
	}
	copy(c.priority[:], order)
	return nil
}

// Raise marks src pending if it is enabled. Raising an already pending source
// does nothing: requests are edges, not counts.
func (c *Controller) Raise(src addr.Interrupt) {
	if valid(src) != nil {
		slog.Warn("Raised unknown interrupt", "source", uint8(src))
		return
	}
	if c.ie&src.Mask() == 0 || c.flags&src.Mask() != 0 {
		return
	}
	c.flags |= src.Mask()
	c.mirror()
}

// Service runs the handlers of every enabled and pending source, highest
// priority first, while IME is set. Each source is acknowledged after its
// handler returns. Calls from inside a handler return immediately.
func (c *Controller) Service() {
	if c.servicing {
		return
	}
	c.servicing = true
	defer func() { c.servicing = false }()

	for c.ime {
		src, ok := c.next()
		if !ok {
			return
		}
		c.current = src
		if h := c.handlers[src]; h != nil {
			h()
		}
		c.flags &^= src.Mask()
		c.serviced |= src.Mask()
		c.mirror()
	}
}

func (c *Controller) next() (addr.Interrupt, bool) {
	active := c.ie & c.flags
	if active == 0 {
		return 0, false
	}
	for _, src := range c.priority {
		if active&src.Mask() != 0 {
			return src, true
		}
	}
	return 0, false
}

// State returns the state of src.
func (c *Controller) State(src addr.Interrupt) (State, error) {
	if err := valid(src); err != nil {
		return Disabled, err
	}
	switch {
	case c.ie&src.Mask() == 0:
		return Disabled, nil
	case c.servicing && c.current == src:
		return Servicing, nil
	case c.flags&src.Mask() != 0:
		return Pending, nil
	}
	return Idle, nil
}

// Enabled returns the IE register.
func (c *Controller) Enabled() uint16 { return c.ie }

// Pending returns the IF register.
func (c *Controller) Pending() uint16 { return c.flags }

// TakeServiced returns the sources serviced since the previous call.
func (c *Controller) TakeServiced() uint16 {
	s := c.serviced
	c.serviced = 0
	return s
}
