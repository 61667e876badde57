// Package serial implements a serial port peer that prints what the
// program sends, one text line at a time.
package serial

import (
	"log/slog"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/bit"
	"github.com/valerio/go-ugba/ugba/dispatch"
)

// SIOCNT bits in normal mode.
const (
	InternalClock uint16 = 1 << 0
	FastClock     uint16 = 1 << 1
	Start         uint16 = 1 << 7
	Length32      uint16 = 1 << 12
	IRQ           uint16 = 1 << 14
)

// Registers is the raw I/O memory the serial registers live in.
type Registers interface {
	IORead16(offset uint32) uint16
	IOWrite16(offset uint32, value uint16)
}

// LogSink implements a dummy serial device that just logs outgoing bytes as text.
// Handy for debugging test programs that print through the link port.
type LogSink struct {
	regs           Registers
	irqHandler     func()
	transferActive bool
	countdown      int
	logger         *slog.Logger
	onLine         func(string)

	// settings
	immediate bool

	// Optional line buffer for readable output
	line []byte
}

type LogSinkOption func(*LogSink)

// WithFixedTiming sets the sink to complete transfers after the time the
// hardware needs to shift the data out instead of immediately.
func WithFixedTiming() LogSinkOption { return func(s *LogSink) { s.immediate = false } }

// WithLogger replaces the default logger.
func WithLogger(l *slog.Logger) LogSinkOption { return func(s *LogSink) { s.logger = l } }

// WithLineHandler receives every completed line in addition to the log.
func WithLineHandler(fn func(string)) LogSinkOption { return func(s *LogSink) { s.onLine = fn } }

// NewLogSink creates a new logging serial device.
// The passed function is called when a transfer completes with the IRQ bit
// of SIOCNT set, should be wired to request the Serial interrupt.
func NewLogSink(regs Registers, irq func(), opts ...LogSinkOption) *LogSink {
	s := &LogSink{
		regs:       regs,
		irqHandler: irq,
		immediate:  true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.Reset()
	return s
}

// Attach starts transfers when SIOCNT is written.
func (s *LogSink) Attach(d *dispatch.Dispatcher) {
	d.Register(addr.SIOCNT, func(uint32, uint16) { s.maybeStartTransfer() })
}

func (s *LogSink) Tick(cycles int) {
	if s.immediate || !s.transferActive {
		return
	}
	s.countdown -= cycles
	if s.countdown <= 0 {
		s.completeTransfer()
		s.countdown = 0
	}
}

func (s *LogSink) Reset() {
	s.transferActive = false
	s.countdown = 0
	s.line = s.line[:0]
}

// Busy reports whether a timed transfer is in flight.
func (s *LogSink) Busy() bool {
	return s.transferActive
}

// Flush emits a partially buffered line.
func (s *LogSink) Flush() {
	if len(s.line) == 0 {
		return
	}
	text := string(s.line)
	s.line = s.line[:0]
	s.logger.Info("serial", "line", text)
	if s.onLine != nil {
		s.onLine(text)
	}
}

// SetIRQ sets the SIOCNT interrupt enable bit.
func (s *LogSink) SetIRQ(on bool) {
	cnt := s.regs.IORead16(addr.SIOCNT)
	s.regs.IOWrite16(addr.SIOCNT, bit.SetTo(14, cnt, on))
}

func (s *LogSink) maybeStartTransfer() {
	if s.transferActive {
		return
	}
	cnt := s.regs.IORead16(addr.SIOCNT)
	// a transfer starts when the start bit and the internal clock are set
	if cnt&Start == 0 || cnt&InternalClock == 0 {
		return
	}

	if cnt&Length32 != 0 {
		lo := s.regs.IORead16(addr.SIODATA32)
		hi := s.regs.IORead16(addr.SIODATA32 + 2)
		for _, b := range []byte{byte(lo), byte(lo >> 8), byte(hi), byte(hi >> 8)} {
			s.put(b)
		}
	} else {
		s.put(byte(s.regs.IORead16(addr.SIODATA8)))
	}

	if s.immediate {
		s.completeTransfer()
		return
	}

	// 256 KHz shift clock: 64 cycles per bit, 2 MHz is 8 times faster
	bits := 8
	if cnt&Length32 != 0 {
		bits = 32
	}
	s.countdown = bits * 64
	if cnt&FastClock != 0 {
		s.countdown /= 8
	}
	s.transferActive = true
}

// put buffers one outgoing byte until newline for readability.
func (s *LogSink) put(b byte) {
	if b == 0 || b == '\n' || b == '\r' {
		s.Flush()
		return
	}
	s.line = append(s.line, b)
}

func (s *LogSink) completeTransfer() {
	cnt := s.regs.IORead16(addr.SIOCNT)
	// nothing is connected, the line reads high
	if cnt&Length32 != 0 {
		s.regs.IOWrite16(addr.SIODATA32, 0xFFFF)
		s.regs.IOWrite16(addr.SIODATA32+2, 0xFFFF)
	} else {
		s.regs.IOWrite16(addr.SIODATA8, 0x00FF)
	}
	s.regs.IOWrite16(addr.SIOCNT, bit.Clear(7, cnt))
	s.transferActive = false
	if cnt&IRQ != 0 && s.irqHandler != nil {
		s.irqHandler()
	}
}
