package irq

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/dispatch"
	"github.com/valerio/go-ugba/ugba/memory"
)

func newController() (*Controller, *dispatch.Bus) {
	mem := memory.New(memory.WithStrict())
	d := dispatch.New()
	c := New(mem)
	c.Attach(d)
	return c, dispatch.NewBus(mem, d)
}

func record(t *testing.T, c *Controller, calls *[]addr.Interrupt, srcs ...addr.Interrupt) {
	t.Helper()
	for _, src := range srcs {
		require.NoError(t, c.SetHandler(src, func() { *calls = append(*calls, src) }))
		require.NoError(t, c.Enable(src))
	}
}

func TestRaiseAndService(t *testing.T) {
	c, bus := newController()
	var calls []addr.Interrupt
	record(t, c, &calls, addr.VBlankInterrupt)
	c.SetMasterEnable(true)

	c.Raise(addr.VBlankInterrupt)
	assert.Equal(t, uint16(1), bus.ReadIO16(addr.IF))
	state, err := c.State(addr.VBlankInterrupt)
	require.NoError(t, err)
	assert.Equal(t, Pending, state)

	c.Service()
	assert.Equal(t, []addr.Interrupt{addr.VBlankInterrupt}, calls)
	assert.Equal(t, uint16(0), bus.ReadIO16(addr.IF))
	assert.Equal(t, uint16(addr.VBlankInterrupt.Mask()), c.TakeServiced())
	assert.Zero(t, c.TakeServiced())

	c.Service()
	assert.Len(t, calls, 1, "acknowledged sources do not fire again")
}

func TestRaiseIsEdgeTriggered(t *testing.T) {
	c, _ := newController()
	var calls []addr.Interrupt
	record(t, c, &calls, addr.Timer0Interrupt)
	c.SetMasterEnable(true)

	c.Raise(addr.Timer0Interrupt)
	c.Raise(addr.Timer0Interrupt)
	c.Raise(addr.Timer0Interrupt)
	c.Service()
	assert.Len(t, calls, 1)
}

func TestDisabledSources(t *testing.T) {
	t.Run("raising a disabled source does nothing", func(t *testing.T) {
		c, bus := newController()
		c.SetMasterEnable(true)
		c.Raise(addr.HBlankInterrupt)
		assert.Zero(t, bus.ReadIO16(addr.IF))
	})

	t.Run("disabled while pending never fires and is not replayed", func(t *testing.T) {
		c, _ := newController()
		var calls []addr.Interrupt
		record(t, c, &calls, addr.KeypadInterrupt)

		c.Raise(addr.KeypadInterrupt)
		require.NoError(t, c.Disable(addr.KeypadInterrupt))
		c.SetMasterEnable(true)
		c.Service()
		assert.Empty(t, calls)

		require.NoError(t, c.Enable(addr.KeypadInterrupt))
		c.Service()
		assert.Empty(t, calls, "stale request must not replay")

		state, err := c.State(addr.KeypadInterrupt)
		require.NoError(t, err)
		assert.Equal(t, Idle, state)
	})

	t.Run("clearing IE through the register drops the request", func(t *testing.T) {
		c, bus := newController()
		var calls []addr.Interrupt
		record(t, c, &calls, addr.SerialInterrupt)
		c.Raise(addr.SerialInterrupt)

		bus.WriteIO16(addr.IE, 0)
		bus.WriteIO16(addr.IE, addr.SerialInterrupt.Mask())
		bus.WriteIO16(addr.IME, 1)
		c.Service()
		assert.Empty(t, calls)
	})
}

func TestMasterEnable(t *testing.T) {
	c, bus := newController()
	var calls []addr.Interrupt
	record(t, c, &calls, addr.VCountInterrupt)

	c.Raise(addr.VCountInterrupt)
	c.Service()
	assert.Empty(t, calls, "IME off keeps requests pending")

	bus.WriteIO16(addr.IME, 1)
	assert.True(t, c.MasterEnabled())
	c.Service()
	assert.Equal(t, []addr.Interrupt{addr.VCountInterrupt}, calls)
}

func TestPriority(t *testing.T) {
	t.Run("default order is the source number", func(t *testing.T) {
		c, _ := newController()
		var calls []addr.Interrupt
		record(t, c, &calls, addr.KeypadInterrupt, addr.DMA0Interrupt, addr.VBlankInterrupt)
		c.SetMasterEnable(true)

		c.Raise(addr.KeypadInterrupt)
		c.Raise(addr.DMA0Interrupt)
		c.Raise(addr.VBlankInterrupt)
		c.Service()
		assert.Equal(t, []addr.Interrupt{addr.VBlankInterrupt, addr.DMA0Interrupt, addr.KeypadInterrupt}, calls)
	})

	t.Run("custom order", func(t *testing.T) {
		c, _ := newController()
		var calls []addr.Interrupt
		record(t, c, &calls, addr.VBlankInterrupt, addr.HBlankInterrupt)
		c.SetMasterEnable(true)

		order := make([]addr.Interrupt, 0, Count)
		order = append(order, addr.HBlankInterrupt, addr.VBlankInterrupt)
		for i := addr.VCountInterrupt; i < Count; i++ {
			order = append(order, i)
		}
		require.NoError(t, c.SetPriority(order))

		c.Raise(addr.VBlankInterrupt)
		c.Raise(addr.HBlankInterrupt)
		c.Service()
		assert.Equal(t, []addr.Interrupt{addr.HBlankInterrupt, addr.VBlankInterrupt}, calls)
	})

	t.Run("invalid orders", func(t *testing.T) {
		c, _ := newController()
		assert.ErrorIs(t, c.SetPriority([]addr.Interrupt{addr.VBlankInterrupt}), ErrBadPriority)

		dup := make([]addr.Interrupt, Count)
		assert.ErrorIs(t, c.SetPriority(dup), ErrBadPriority)
	})
}

func TestNoNesting(t *testing.T) {
	c, _ := newController()
	var calls []addr.Interrupt
	require.NoError(t, c.Enable(addr.VBlankInterrupt))
	require.NoError(t, c.Enable(addr.HBlankInterrupt))
	require.NoError(t, c.SetHandler(addr.VBlankInterrupt, func() {
		state, _ := c.State(addr.VBlankInterrupt)
		assert.Equal(t, Servicing, state)

		c.Raise(addr.HBlankInterrupt)
		c.Service()
		calls = append(calls, addr.VBlankInterrupt)
	}))
	require.NoError(t, c.SetHandler(addr.HBlankInterrupt, func() {
		calls = append(calls, addr.HBlankInterrupt)
	}))
	c.SetMasterEnable(true)

	c.Raise(addr.VBlankInterrupt)
	c.Service()
	assert.Equal(t, []addr.Interrupt{addr.VBlankInterrupt, addr.HBlankInterrupt}, calls, "handlers run to completion")
}

func TestAcknowledgeThroughIF(t *testing.T) {
	c, bus := newController()
	require.NoError(t, c.Enable(addr.Timer1Interrupt))
	require.NoError(t, c.Enable(addr.Timer2Interrupt))
	c.Raise(addr.Timer1Interrupt)
	c.Raise(addr.Timer2Interrupt)

	bus.WriteIO16(addr.IF, addr.Timer1Interrupt.Mask())
	assert.Equal(t, addr.Timer2Interrupt.Mask(), bus.ReadIO16(addr.IF))
	assert.Equal(t, addr.Timer2Interrupt.Mask(), c.Pending())
}

func TestUnknownSource(t *testing.T) {
	c, _ := newController()
	bad := addr.Interrupt(Count)

	assert.ErrorIs(t, c.SetHandler(bad, func() {}), ErrUnknownSource)
	assert.ErrorIs(t, c.Enable(bad), ErrUnknownSource)
	assert.ErrorIs(t, c.Disable(bad), ErrUnknownSource)
	_, err := c.State(bad)
	assert.ErrorIs(t, err, ErrUnknownSource)
	assert.NotPanics(t, func() { c.Raise(bad) })
}

func TestOnToggle(t *testing.T) {
	c, _ := newController()
	toggles := map[addr.Interrupt]bool{}
	c.OnToggle(func(src addr.Interrupt, enabled bool) { toggles[src] = enabled })

	require.NoError(t, c.Enable(addr.HBlankInterrupt))
	require.NoError(t, c.Enable(addr.VCountInterrupt))
	require.NoError(t, c.Disable(addr.HBlankInterrupt))
	assert.Equal(t, map[addr.Interrupt]bool{addr.HBlankInterrupt: false, addr.VCountInterrupt: true}, toggles)
	assert.Equal(t, addr.VCountInterrupt.Mask(), c.Enabled())
}

func TestResets(t *testing.T) {
	c, bus := newController()
	var calls []addr.Interrupt
	record(t, c, &calls, addr.VBlankInterrupt)
	c.SetMasterEnable(true)
	c.Raise(addr.VBlankInterrupt)

	c.ResetRegisters()
	assert.Zero(t, bus.ReadIO16(addr.IE))
	assert.Zero(t, bus.ReadIO16(addr.IF))
	assert.Zero(t, bus.ReadIO16(addr.IME))
	assert.False(t, c.MasterEnabled())

	require.NoError(t, c.Enable(addr.VBlankInterrupt))
	c.SetMasterEnable(true)
	c.Raise(addr.VBlankInterrupt)
	c.Service()
	assert.Equal(t, []addr.Interrupt{addr.VBlankInterrupt}, calls, "handler kept")

	c.Reset()
	require.NoError(t, c.Enable(addr.VBlankInterrupt))
	c.SetMasterEnable(true)
	c.Raise(addr.VBlankInterrupt)
	c.Service()
	assert.Len(t, calls, 1, "handler dropped")
}
