package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/dispatch"
	"github.com/valerio/go-ugba/ugba/memory"
)

func newUnit() (*Unit, *dispatch.Bus, *[]addr.Interrupt) {
	var irqs []addr.Interrupt
	mem := memory.New(memory.WithStrict())
	d := dispatch.New()
	u := New(mem, func(i addr.Interrupt) { irqs = append(irqs, i) })
	u.Attach(d)
	return u, dispatch.NewBus(mem, d), &irqs
}

func TestPrescaler(t *testing.T) {
	tests := []struct {
		name      string
		prescaler uint16
		cycles    int
		want      uint16
	}{
		{"F/1", Prescaler1, 100, 100},
		{"F/64", Prescaler64, 640, 10},
		{"F/64 partial", Prescaler64, 63, 0},
		{"F/256", Prescaler256, 1232, 4},
		{"F/1024", Prescaler1024, 4096, 4},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			u, bus, _ := newUnit()
			bus.WriteIO16(addr.TMCNTH(0), Start|tt.prescaler)
			u.Tick(tt.cycles)
			assert.Equal(t, tt.want, u.Counter(0))
			assert.Equal(t, tt.want, bus.ReadIO16(addr.TMCNTL(0)), "counter is visible in TMxCNT_L")
		})
	}

	t.Run("leftover cycles carry over", func(t *testing.T) {
		u, bus, _ := newUnit()
		bus.WriteIO16(addr.TMCNTH(1), Start|Prescaler64)
		for range 4 {
			u.Tick(32)
		}
		assert.Equal(t, uint16(2), u.Counter(1))
	})
}

func TestOverflow(t *testing.T) {
	u, bus, irqs := newUnit()
	bus.WriteIO16(addr.TMCNTL(2), 0xFFF0)
	assert.Equal(t, uint16(0), bus.ReadIO16(addr.TMCNTL(2)), "writes set the reload value only")

	bus.WriteIO16(addr.TMCNTH(2), Start|IRQ)
	assert.Equal(t, uint16(0xFFF0), u.Counter(2))

	u.Tick(0x10)
	assert.Equal(t, uint16(0xFFF0), u.Counter(2))
	assert.Equal(t, []addr.Interrupt{addr.Timer2Interrupt}, *irqs)

	u.Tick(0x25)
	assert.Equal(t, uint16(0xFFF5), u.Counter(2))
	assert.Len(t, *irqs, 3)
}

func TestCascade(t *testing.T) {
	u, bus, irqs := newUnit()
	bus.WriteIO16(addr.TMCNTL(0), 0xFFFF)
	bus.WriteIO16(addr.TMCNTH(0), Start)
	bus.WriteIO16(addr.TMCNTH(1), Start|Cascade|IRQ)

	u.Tick(10)
	assert.Equal(t, uint16(10), u.Counter(1))
	assert.Empty(t, *irqs)

	t.Run("cascaded timers ignore the clock", func(t *testing.T) {
		bus.WriteIO16(addr.TMCNTH(0), 0)
		u.Tick(1000)
		assert.Equal(t, uint16(10), u.Counter(1))
	})
}

func TestStopKeepsCounter(t *testing.T) {
	u, bus, _ := newUnit()
	bus.WriteIO16(addr.TMCNTL(3), 100)
	bus.WriteIO16(addr.TMCNTH(3), Start)
	u.Tick(5)
	bus.WriteIO16(addr.TMCNTH(3), 0)
	u.Tick(5)
	assert.Equal(t, uint16(105), u.Counter(3))

	bus.WriteIO16(addr.TMCNTH(3), Start)
	assert.Equal(t, uint16(100), u.Counter(3), "restart reloads")
}

func TestSetIRQ(t *testing.T) {
	u, bus, irqs := newUnit()
	bus.WriteIO16(addr.TMCNTL(0), 0xFFFF)
	bus.WriteIO16(addr.TMCNTH(0), Start)
	u.SetIRQ(0, true)
	assert.Equal(t, Start|IRQ, bus.ReadIO16(addr.TMCNTH(0)))

	u.Tick(1)
	assert.Equal(t, []addr.Interrupt{addr.Timer0Interrupt}, *irqs)
}
