package debug

import (
	"github.com/valerio/go-ugba/ugba"
	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/dma"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/timer"
)

// DebuggerState represents the current debugger state
type DebuggerState int

const (
	DebuggerRunning DebuggerState = iota
	DebuggerPaused
	DebuggerStepFrame
)

func (s DebuggerState) String() string {
	switch s {
	case DebuggerPaused:
		return "paused"
	case DebuggerStepFrame:
		return "step"
	}
	return "running"
}

// TimerState is the live state of one hardware timer.
type TimerState struct {
	Counter uint16
	Control uint16
}

// Data is a snapshot of the console state for debug displays.
type Data struct {
	Frames uint64
	Line   int

	DISPCNT  uint16
	DISPSTAT uint16
	BGCNT    [4]uint16

	IE, IF uint16
	IME    bool

	DMA    [dma.ChannelCount]dma.Status
	Timers [timer.Count]TimerState
	Keys   input.Keys

	OAM           *OAMData
	DebuggerState DebuggerState
}

// Extract collects a snapshot of c.
func Extract(c *ugba.Console, state DebuggerState) *Data {
	mem := c.Memory()
	d := &Data{
		Frames:        c.Frames(),
		Line:          c.Line(),
		DISPCNT:       mem.IORead16(addr.DISPCNT),
		DISPSTAT:      mem.IORead16(addr.DISPSTAT),
		IE:            c.IRQ.Enabled(),
		IF:            c.IRQ.Pending(),
		IME:           c.IRQ.MasterEnabled(),
		Keys:          c.Keypad.Down(),
		OAM:           ExtractOAMData(c.Video, c.Line()),
		DebuggerState: state,
	}
	for n := range d.BGCNT {
		d.BGCNT[n] = mem.IORead16(addr.BGCNT(n))
	}
	for n := range d.DMA {
		// n is always a valid channel
		d.DMA[n], _ = c.DMA.Status(n)
	}
	for n := range d.Timers {
		d.Timers[n] = TimerState{
			Counter: c.Timers.Counter(n),
			Control: mem.IORead16(addr.TMCNTH(n)),
		}
	}
	return d
}
