// Package video composes the screen one scanline at a time from the display
// registers, VRAM, palette RAM and OAM.
package video

import (
	"encoding/binary"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/bit"
	"github.com/valerio/go-ugba/ugba/dispatch"
	"github.com/valerio/go-ugba/ugba/memory"
)

// DISPCNT bits.
const (
	ModeMask     uint16 = 7
	FrameSelect  uint16 = 1 << 4
	OBJMapping1D uint16 = 1 << 6
	ForcedBlank  uint16 = 1 << 7
	EnableBG0    uint16 = 1 << 8
	EnableBG1    uint16 = 1 << 9
	EnableBG2    uint16 = 1 << 10
	EnableBG3    uint16 = 1 << 11
	EnableOBJ    uint16 = 1 << 12
)

// BGCNT bits.
const (
	BGPriorityMask uint16 = 3
	BG256Colors    uint16 = 1 << 7
	BGWrap         uint16 = 1 << 13
)

const transparent int32 = -1

// refPoint is the internal reference point of an affine background, in 20.8
// fixed point.
type refPoint struct {
	x, y int32
}

type layer [FramebufferWidth]int32

// Video renders scanlines into a FrameBuffer.
type Video struct {
	mem  *memory.Map
	io   []byte
	vram []byte
	pal  []byte
	oam  []byte

	framebuffer *FrameBuffer

	ref    [2]refPoint
	stat   uint16 // read-only DISPSTAT flags
	vcount int
	bg     [4]layer
	objs   objLine
	order  [4]int
}

func New(mem *memory.Map) *Video {
	return &Video{
		mem:         mem,
		io:          mem.Region(memory.RegionIO),
		vram:        mem.Region(memory.RegionVRAM),
		pal:         mem.Region(memory.RegionPalette),
		oam:         mem.Region(memory.RegionOAM),
		framebuffer: NewFrameBuffer(),
	}
}

// Attach latches the affine reference points when they are written and keeps
// the read-only status bits intact.
func (v *Video) Attach(d *dispatch.Dispatcher) {
	for n := 2; n <= 3; n++ {
		base := addr.BGAffine(n)
		for off := base + 8; off < base+16; off += 2 {
			d.Register(off, func(uint32, uint16) { v.latch(n) })
		}
	}
	d.Register(addr.DISPSTAT, func(_ uint32, value uint16) {
		v.mem.IOWrite16(addr.DISPSTAT, value&^statFlags|v.stat)
	})
	d.Register(addr.VCOUNT, func(uint32, uint16) {
		v.mem.IOWrite16(addr.VCOUNT, uint16(v.vcount))
	})
}

// Reset puts the affine parameters in their identity state and clears the
// internal reference points.
func (v *Video) Reset() {
	for n := 2; n <= 3; n++ {
		base := addr.BGAffine(n)
		v.mem.IOWrite16(base, 0x100)
		v.mem.IOWrite16(base+6, 0x100)
	}
	v.ReloadAffine()
	v.stat = 0
	v.vcount = 0
}

func (v *Video) FrameBuffer() *FrameBuffer {
	return v.framebuffer
}

func (v *Video) reg16(offset uint32) uint16 {
	return binary.LittleEndian.Uint16(v.io[offset:])
}

func (v *Video) reg32(offset uint32) uint32 {
	return binary.LittleEndian.Uint32(v.io[offset:])
}

func (v *Video) color(index int) int32 {
	return int32(binary.LittleEndian.Uint16(v.pal[index*2:]) & 0x7FFF)
}

// latch copies the reference point registers of background n to its
// internal reference point.
func (v *Video) latch(n int) {
	base := addr.BGAffine(n)
	v.ref[n-2] = refPoint{
		x: bit.SignExtend(v.reg32(base+8), 28),
		y: bit.SignExtend(v.reg32(base+12), 28),
	}
}

// ReloadAffine copies both reference point registers to the internal
// reference points. The hardware does this at the start of VBlank.
func (v *Video) ReloadAffine() {
	v.latch(2)
	v.latch(3)
}

// ReferencePoint returns the internal reference point of background n (2 or 3).
func (v *Video) ReferencePoint(n int) (x, y int32) {
	r := v.ref[n-2]
	return r.x, r.y
}

// advance moves the internal reference points to the next line.
func (v *Video) advance() {
	for n := 2; n <= 3; n++ {
		base := addr.BGAffine(n)
		v.ref[n-2].x += int32(int16(v.reg16(base + 2)))
		v.ref[n-2].y += int32(int16(v.reg16(base + 6)))
	}
}

// RenderLine composes visible line y into the frame buffer and advances the
// affine reference points.
func (v *Video) RenderLine(y int) {
	if y < 0 || y >= FramebufferHeight {
		return
	}
	defer v.advance()

	row := v.framebuffer.Row(y)
	dispcnt := v.reg16(addr.DISPCNT)
	if dispcnt&ForcedBlank != 0 {
		for x := range row {
			row[x] = uint32(WhiteColor)
		}
		return
	}

	enabled := v.renderBackgrounds(dispcnt, y)
	v.objs.Clear()
	if dispcnt&EnableOBJ != 0 {
		v.renderSprites(dispcnt, y)
	}

	// draw order: priority first, then background number
	order := v.order[:0]
	for prio := uint16(0); prio < 4; prio++ {
		for n := 0; n < 4; n++ {
			if enabled&(1<<n) != 0 && v.reg16(addr.BGCNT(n))&BGPriorityMask == prio {
				order = append(order, n)
			}
		}
	}

	backdrop := v.color(0)
	for x := range row {
		c, prio := backdrop, 4
		for _, n := range order {
			if px := v.bg[n][x]; px != transparent {
				c, prio = px, int(v.reg16(addr.BGCNT(n))&BGPriorityMask)
				break
			}
		}
		if px := v.objs.color[x]; px != transparent && int(v.objs.prio[x]) <= prio {
			c = px
		}
		row[x] = uint32(FromBGR555(uint16(c)))
	}
}

// renderBackgrounds fills the layers of the backgrounds the mode displays and
// returns their mask.
func (v *Video) renderBackgrounds(dispcnt uint16, y int) uint8 {
	enabled := uint8(dispcnt >> 8 & 0xF)
	switch dispcnt & ModeMask {
	case 0:
	case 1:
		enabled &= 0x7
	case 2:
		enabled &= 0xC
	case 3, 4, 5:
		enabled &= 0x4
	default:
		return 0
	}

	for n := 0; n < 4; n++ {
		if enabled&(1<<n) == 0 {
			continue
		}
		out := &v.bg[n]
		switch mode := dispcnt & ModeMask; {
		case mode == 0, mode == 1 && n < 2:
			v.regularLine(n, y, out)
		case mode <= 2:
			v.affineLine(n, out)
		default:
			v.bitmapLine(dispcnt, out)
		}
	}
	return enabled
}
