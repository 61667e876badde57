package input

import (
	"errors"
	"fmt"
	"strings"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/dispatch"
)

// Keys is a set of console keys, one bit per key in KEYINPUT order.
type Keys uint16

const (
	KeyA Keys = 1 << iota
	KeyB
	KeySelect
	KeyStart
	KeyRight
	KeyLeft
	KeyUp
	KeyDown
	KeyR
	KeyL

	AllKeys Keys = 0x03FF
)

// KEYCNT bits.
const (
	IRQEnable uint16 = 1 << 14
	IRQAnd    uint16 = 1 << 15
)

var keyNames = [...]string{"A", "B", "Select", "Start", "Right", "Left", "Up", "Down", "R", "L"}

func (k Keys) String() string {
	if k == 0 {
		return "none"
	}
	var parts []string
	for i, name := range keyNames {
		if k&(1<<i) != 0 {
			parts = append(parts, name)
		}
	}
	return strings.Join(parts, "+")
}

// ErrUnknownKey is returned by ParseKeys for names that are not keys.
var ErrUnknownKey = errors.New("input: unknown key")

// ParseKeys parses a set of key names joined by '+', like "A+Start". Names
// are case insensitive.
func ParseKeys(s string) (Keys, error) {
	var keys Keys
next:
	for _, part := range strings.Split(s, "+") {
		part = strings.TrimSpace(part)
		for i, name := range keyNames {
			if strings.EqualFold(part, name) {
				keys |= 1 << i
				continue next
			}
		}
		return 0, fmt.Errorf("%w: %q", ErrUnknownKey, part)
	}
	return keys, nil
}

// Registers is the raw I/O memory KEYINPUT lives in.
type Registers interface {
	IORead16(offset uint32) uint16
	IOWrite16(offset uint32, value uint16)
}

// Keypad holds the key state fed by the host and the pressed/held/released
// tracking applications poll once per frame.
type Keypad struct {
	regs  Registers
	raise func(addr.Interrupt)

	down Keys // keys physically down right now

	held     Keys
	previous Keys
}

// NewKeypad returns a keypad with every key released.
func NewKeypad(regs Registers, raise func(addr.Interrupt)) *Keypad {
	k := &Keypad{regs: regs, raise: raise}
	k.sync()
	return k
}

// Attach keeps KEYINPUT read only and evaluates the keypad interrupt
// condition when KEYCNT changes.
func (k *Keypad) Attach(d *dispatch.Dispatcher) {
	d.Register(addr.KEYINPUT, func(uint32, uint16) { k.sync() })
	d.Register(addr.KEYCNT, func(uint32, uint16) { k.check() })
}

// Press marks keys as down.
func (k *Keypad) Press(keys Keys) {
	k.Set(k.down | keys)
}

// Release marks keys as up.
func (k *Keypad) Release(keys Keys) {
	k.Set(k.down &^ keys)
}

// Set replaces the whole key state.
func (k *Keypad) Set(keys Keys) {
	k.down = keys & AllKeys
	k.sync()
	k.check()
}

// Down returns the keys currently down.
func (k *Keypad) Down() Keys {
	return k.down
}

func (k *Keypad) sync() {
	// active low
	k.regs.IOWrite16(addr.KEYINPUT, uint16(^k.down&AllKeys))
}

func (k *Keypad) check() {
	cnt := k.regs.IORead16(addr.KEYCNT)
	if cnt&IRQEnable == 0 || k.raise == nil {
		return
	}
	sel := Keys(cnt) & AllKeys
	var hit bool
	if cnt&IRQAnd != 0 {
		hit = sel != 0 && k.down&sel == sel
	} else {
		hit = k.down&sel != 0
	}
	if hit {
		k.raise(addr.KeypadInterrupt)
	}
}

// Update samples KEYINPUT. Call it once per frame before querying Pressed,
// Held and Released.
func (k *Keypad) Update() {
	k.previous = k.held
	k.held = Keys(^k.regs.IORead16(addr.KEYINPUT)) & AllKeys
}

// Held returns the keys down at the last Update.
func (k *Keypad) Held() Keys { return k.held }

// Pressed returns the keys that went down between the last two updates.
func (k *Keypad) Pressed() Keys { return k.held &^ k.previous }

// Released returns the keys that went up between the last two updates.
func (k *Keypad) Released() Keys { return k.previous &^ k.held }

// SetIRQ sets the KEYCNT interrupt enable bit.
func (k *Keypad) SetIRQ(on bool) {
	cnt := k.regs.IORead16(addr.KEYCNT)
	if on {
		cnt |= IRQEnable
	} else {
		cnt &^= IRQEnable
	}
	k.regs.IOWrite16(addr.KEYCNT, cnt)
	k.check()
}
