package video

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/dispatch"
	"github.com/valerio/go-ugba/ugba/memory"
)

var (
	red   = RGB15(31, 0, 0)
	green = RGB15(0, 31, 0)
	blue  = RGB15(0, 0, 31)
)

type rig struct {
	mem *memory.Map
	bus *dispatch.Bus
	v   *Video
}

func newRig() *rig {
	mem := memory.New()
	d := dispatch.New()
	v := New(mem)
	v.Attach(d)
	v.Reset()
	r := &rig{mem: mem, bus: dispatch.NewBus(mem, d), v: v}
	r.hideSprites()
	return r
}

// frame renders all visible lines starting from the latched reference points.
func (r *rig) frame() {
	r.v.ReloadAffine()
	for y := 0; y < FramebufferHeight; y++ {
		r.v.RenderLine(y)
	}
}

func (r *rig) pixel(x, y int) Color {
	return Color(r.v.FrameBuffer().GetPixel(x, y))
}

func (r *rig) hideSprites() {
	for i := 0; i < SpriteCount; i++ {
		r.bus.Write16(addr.OAM+uint32(i)*8, 1<<9)
	}
}

func (r *rig) bgColor(i int, c uint16)  { r.bus.Write16(addr.PaletteBG+uint32(i)*2, c) }
func (r *rig) objColor(i int, c uint16) { r.bus.Write16(addr.PaletteOBJ+uint32(i)*2, c) }

func TestColorConversion(t *testing.T) {
	tests := []struct {
		in   uint16
		want Color
	}{
		{0x0000, BlackColor},
		{0x7FFF, WhiteColor},
		{red, 0xFF0000FF},
		{green, 0x00FF00FF},
		{blue, 0x0000FFFF},
		{RGB15(16, 8, 1), 0x844208FF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FromBGR555(tt.in), "0x%04X", tt.in)
	}
}

func TestForcedBlankAndBackdrop(t *testing.T) {
	r := newRig()
	r.bgColor(0, blue)

	r.bus.WriteIO16(addr.DISPCNT, ForcedBlank|EnableBG0)
	r.frame()
	assert.Equal(t, WhiteColor, r.pixel(0, 0))
	assert.Equal(t, WhiteColor, r.pixel(239, 159))

	r.bus.WriteIO16(addr.DISPCNT, 0)
	r.frame()
	assert.Equal(t, FromBGR555(blue), r.pixel(120, 80))
}

func TestBitmapModes(t *testing.T) {
	t.Run("mode 3", func(t *testing.T) {
		r := newRig()
		r.bus.WriteIO16(addr.DISPCNT, 3|EnableBG2)
		r.bus.Write16(addr.Mode3Framebuffer+(5*240+10)*2, red)
		r.frame()
		assert.Equal(t, FromBGR555(red), r.pixel(10, 5))
		assert.Equal(t, BlackColor, r.pixel(11, 5))
	})

	t.Run("mode 4 page flip", func(t *testing.T) {
		r := newRig()
		r.bgColor(1, red)
		r.bgColor(2, green)
		r.bus.Write16(addr.Mode4Page0, 0x0101)
		r.bus.Write16(addr.Mode4Page1, 0x0202)

		r.bus.WriteIO16(addr.DISPCNT, 4|EnableBG2)
		r.frame()
		assert.Equal(t, FromBGR555(red), r.pixel(1, 0))

		r.bus.WriteIO16(addr.DISPCNT, 4|EnableBG2|FrameSelect)
		r.frame()
		assert.Equal(t, FromBGR555(green), r.pixel(1, 0))
	})

	t.Run("mode 5 is 160x128", func(t *testing.T) {
		r := newRig()
		r.bgColor(0, blue)
		r.bus.WriteIO16(addr.DISPCNT, 5|EnableBG2)
		r.bus.Write16(addr.Mode5Page0+(127*160+159)*2, red)
		r.frame()
		assert.Equal(t, FromBGR555(red), r.pixel(159, 127))
		assert.Equal(t, FromBGR555(blue), r.pixel(160, 127), "outside the bitmap")
		assert.Equal(t, FromBGR555(blue), r.pixel(0, 128))
	})

	t.Run("scaled through the affine parameters", func(t *testing.T) {
		r := newRig()
		r.bus.WriteIO16(addr.DISPCNT, 3|EnableBG2)
		r.bus.WriteIO16(addr.BG2PA, 0x80) // half step: 2x zoom
		r.bus.Write16(addr.Mode3Framebuffer+2, red)
		r.frame()
		assert.Equal(t, FromBGR555(red), r.pixel(2, 0))
		assert.Equal(t, FromBGR555(red), r.pixel(3, 0))
		assert.Equal(t, BlackColor, r.pixel(4, 0))
	})
}

// regularTile puts a 16 color tile filled with color index idx at tile
// number n of character block 0.
func (r *rig) regularTile(n int, idx uint8) {
	v := uint32(idx) * 0x11111111
	for i := uint32(0); i < 32; i += 4 {
		r.bus.Write32(addr.BGTilesBlock(0)+uint32(n)*32+i, v)
	}
}

func TestRegularBackground(t *testing.T) {
	newScene := func() *rig {
		r := newRig()
		r.bgColor(0, blue)
		r.bgColor(2*16+1, green)
		r.regularTile(1, 1)
		r.bus.Write16(addr.BGMapBlock(31), 1|2<<12)
		r.bus.WriteIO16(addr.BG0CNT, 31<<8)
		r.bus.WriteIO16(addr.DISPCNT, EnableBG0)
		return r
	}

	t.Run("tile and palette", func(t *testing.T) {
		r := newScene()
		r.frame()
		assert.Equal(t, FromBGR555(green), r.pixel(0, 0))
		assert.Equal(t, FromBGR555(green), r.pixel(7, 7))
		assert.Equal(t, FromBGR555(blue), r.pixel(8, 0))
		assert.Equal(t, FromBGR555(blue), r.pixel(0, 8))
	})

	t.Run("scroll wraps around the map", func(t *testing.T) {
		r := newScene()
		r.bus.WriteIO16(addr.BG0HOFS, 4)
		r.frame()
		assert.Equal(t, FromBGR555(green), r.pixel(3, 0))
		assert.Equal(t, FromBGR555(blue), r.pixel(4, 0))
		assert.Equal(t, FromBGR555(green), r.pixel(252, 0), "column 256 is column 0 again")
	})

	t.Run("horizontal flip", func(t *testing.T) {
		r := newScene()
		// only the leftmost texel of tile 2 is opaque
		r.bus.Write16(addr.BGTilesBlock(0)+2*32, 0x0001)
		r.bus.Write16(addr.BGMapBlock(31)+2, 2|2<<12)
		r.bus.Write16(addr.BGMapBlock(31)+4, 2|2<<12|1<<10)
		r.frame()
		assert.Equal(t, FromBGR555(green), r.pixel(8, 0))
		assert.Equal(t, FromBGR555(blue), r.pixel(15, 0))
		assert.Equal(t, FromBGR555(blue), r.pixel(16, 0))
		assert.Equal(t, FromBGR555(green), r.pixel(23, 0))
	})
}

func TestBackgroundPriority(t *testing.T) {
	r := newRig()
	r.bgColor(1, red)
	r.bgColor(2, green)
	r.regularTile(1, 1)
	r.regularTile(2, 2)
	r.bus.Write16(addr.BGMapBlock(30), 1)
	r.bus.Write16(addr.BGMapBlock(31), 2)
	r.bus.WriteIO16(addr.DISPCNT, EnableBG0|EnableBG1)

	r.bus.WriteIO16(addr.BG0CNT, 30<<8|1)
	r.bus.WriteIO16(addr.BG1CNT, 31<<8|0)
	r.frame()
	assert.Equal(t, FromBGR555(green), r.pixel(0, 0), "lower priority value on top")

	r.bus.WriteIO16(addr.BG1CNT, 31<<8|1)
	r.frame()
	assert.Equal(t, FromBGR555(red), r.pixel(0, 0), "equal priority: lower background number on top")
}

func TestAffineBackground(t *testing.T) {
	r := newRig()
	r.bgColor(0, blue)
	r.bgColor(5, red)
	// 256 color tile 1: every texel uses color 5
	for i := uint32(0); i < 64; i += 4 {
		r.bus.Write32(addr.BGTilesBlock(0)+64+i, 0x05050505)
	}
	// 128x128 map at block 31, one byte per entry
	r.bus.Write16(addr.BGMapBlock(31), 0x0001)
	r.bus.WriteIO16(addr.BG2CNT, 31<<8)
	r.bus.WriteIO16(addr.DISPCNT, 2|EnableBG2)

	r.frame()
	assert.Equal(t, FromBGR555(red), r.pixel(0, 0))
	assert.Equal(t, FromBGR555(red), r.pixel(7, 7))
	assert.Equal(t, FromBGR555(blue), r.pixel(8, 0))
	assert.Equal(t, FromBGR555(blue), r.pixel(128, 0), "no wrap outside the map")

	t.Run("reference point moves the map", func(t *testing.T) {
		r.bus.WriteIO32(addr.BG2X_L, 0x0FFFFC00)
		r.frame()
		assert.Equal(t, FromBGR555(blue), r.pixel(3, 0))
		assert.Equal(t, FromBGR555(red), r.pixel(4, 0))
	})

	t.Run("wrap", func(t *testing.T) {
		r.bus.WriteIO32(addr.BG2X_L, 0)
		r.bus.WriteIO16(addr.BG2CNT, 31<<8|BGWrap)
		r.frame()
		assert.Equal(t, FromBGR555(red), r.pixel(128, 0))
		assert.Equal(t, FromBGR555(red), r.pixel(135, 128))
	})
}

func TestReferencePointLatch(t *testing.T) {
	r := newRig()

	r.bus.WriteIO32(addr.BG2X_L, 0x100)
	r.bus.WriteIO32(addr.BG2Y_L, 0x0FFFFF00) // -1.0
	x, y := r.v.ReferencePoint(2)
	assert.Equal(t, int32(0x100), x, "register writes latch immediately")
	assert.Equal(t, int32(-0x100), y, "28-bit values are sign extended")

	t.Run("accumulates PB and PD per line", func(t *testing.T) {
		r.bus.WriteIO16(addr.BG2PB, 0x0010)
		r.bus.WriteIO16(addr.BG2PD, 0xFF00) // -1.0
		r.v.RenderLine(0)
		r.v.RenderLine(1)
		x, y := r.v.ReferencePoint(2)
		assert.Equal(t, int32(0x120), x)
		assert.Equal(t, int32(-0x300), y)
	})

	t.Run("raw stores wait for VBlank", func(t *testing.T) {
		r.mem.IOWrite32(addr.BG3X_L, 0x500)
		x, _ := r.v.ReferencePoint(3)
		assert.Equal(t, int32(0), x)

		r.v.EnterVBlank()
		x, _ = r.v.ReferencePoint(3)
		assert.Equal(t, int32(0x500), x)
		x, _ = r.v.ReferencePoint(2)
		assert.Equal(t, int32(0x100), x, "line accumulation is dropped")
	})
}

func TestStatus(t *testing.T) {
	r := newRig()

	t.Run("vblank flag", func(t *testing.T) {
		r.v.StartLine(159)
		assert.Zero(t, r.bus.ReadIO16(addr.DISPSTAT)&StatVBlank)
		r.v.StartLine(160)
		assert.NotZero(t, r.bus.ReadIO16(addr.DISPSTAT)&StatVBlank)
		r.v.StartLine(227)
		assert.Zero(t, r.bus.ReadIO16(addr.DISPSTAT)&StatVBlank)
		assert.Equal(t, uint16(227), r.bus.ReadIO16(addr.VCOUNT))
	})

	t.Run("hblank flag and irq", func(t *testing.T) {
		r.v.StartLine(3)
		assert.False(t, r.v.EnterHBlank())
		assert.NotZero(t, r.bus.ReadIO16(addr.DISPSTAT)&StatHBlank)

		r.v.SetIRQ(StatHBlankIRQ, true)
		assert.True(t, r.v.EnterHBlank())
		r.v.StartLine(4)
		assert.Zero(t, r.bus.ReadIO16(addr.DISPSTAT)&StatHBlank)
	})

	t.Run("vcount match", func(t *testing.T) {
		r.bus.WriteIO16(addr.DISPSTAT, 100<<8|StatVCountIRQ)
		assert.False(t, r.v.StartLine(99))
		assert.True(t, r.v.StartLine(100))
		assert.NotZero(t, r.bus.ReadIO16(addr.DISPSTAT)&StatVCount)
		assert.False(t, r.v.StartLine(101))
		assert.Zero(t, r.bus.ReadIO16(addr.DISPSTAT)&StatVCount)
	})

	t.Run("read only bits", func(t *testing.T) {
		r.v.StartLine(170)
		r.bus.WriteIO16(addr.DISPSTAT, 0)
		assert.Equal(t, StatVBlank, r.bus.ReadIO16(addr.DISPSTAT))
		r.bus.WriteIO16(addr.VCOUNT, 5)
		assert.Equal(t, uint16(170), r.bus.ReadIO16(addr.VCOUNT))
	})

	t.Run("vblank irq", func(t *testing.T) {
		assert.False(t, r.v.EnterVBlank())
		r.v.SetIRQ(StatVBlankIRQ, true)
		assert.True(t, r.v.EnterVBlank())
		r.v.SetIRQ(StatVBlankIRQ, false)
		require.False(t, r.v.EnterVBlank())
	})
}
