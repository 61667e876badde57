package video

import (
	"encoding/binary"

	"github.com/valerio/go-ugba/ugba/addr"
)

const bgVRAMSize = 0x10000

// regularLine renders line y of text background n.
//
// Map entries are 16 bits:
//   - Bits 0-9: tile number
//   - Bit 10: horizontal flip
//   - Bit 11: vertical flip
//   - Bits 12-15: palette (16 color tiles only)
//
// Maps bigger than 256 pixels in a direction use consecutive 32x32 screen
// blocks, left to right and then top to bottom.
func (v *Video) regularLine(n, y int, out *layer) {
	cnt := v.reg16(addr.BGCNT(n))
	hofs := int(v.reg16(addr.BGHOFS(n)) & 0x1FF)
	vofs := int(v.reg16(addr.BGVOFS(n)) & 0x1FF)
	charBase := int(cnt>>2&3) * addr.BGTilesBlockSize
	mapBase := int(cnt>>8&31) * addr.BGMapBlockSize
	color256 := cnt&BG256Colors != 0

	size := cnt >> 14
	wmask, hmask := 255, 255
	if size&1 != 0 {
		wmask = 511
	}
	if size&2 != 0 {
		hmask = 511
	}
	blocksPerRow := (wmask + 1) >> 8

	my := (y + vofs) & hmask
	for x := range out {
		mx := (x + hofs) & wmask
		block := mx>>8 + my>>8*blocksPerRow
		entryAddr := mapBase + block*addr.BGMapBlockSize + (my&255)>>3*64 + (mx&255)>>3*2
		if entryAddr+1 >= bgVRAMSize {
			out[x] = transparent
			continue
		}
		entry := binary.LittleEndian.Uint16(v.vram[entryAddr:])
		tile := int(entry & 0x3FF)
		px, py := mx&7, my&7
		if entry&(1<<10) != 0 {
			px = 7 - px
		}
		if entry&(1<<11) != 0 {
			py = 7 - py
		}

		if color256 {
			out[x] = v.bgTexel8(charBase + tile*64 + py*8 + px)
			continue
		}
		off := charBase + tile*32 + py*4 + px/2
		if off >= bgVRAMSize {
			out[x] = transparent
			continue
		}
		idx := v.vram[off] >> (uint(px&1) * 4) & 0xF
		if idx == 0 {
			out[x] = transparent
			continue
		}
		out[x] = v.color(int(entry>>12)*16 + int(idx))
	}
}

// bgTexel8 returns the color of a 256 color texel, or transparent.
func (v *Video) bgTexel8(off int) int32 {
	if off < 0 || off >= bgVRAMSize {
		return transparent
	}
	idx := v.vram[off]
	if idx == 0 {
		return transparent
	}
	return v.color(int(idx))
}

// affineParams returns PA and PC of affine background n, the steps of the
// texture coordinates along a line.
func (v *Video) affineParams(n int) (pa, pc int32) {
	base := addr.BGAffine(n)
	return int32(int16(v.reg16(base))), int32(int16(v.reg16(base + 4)))
}

// affineLine renders the current line of rotation/scaling background n.
// Affine maps are square, 8-bit tile numbers, 256 color tiles.
func (v *Video) affineLine(n int, out *layer) {
	cnt := v.reg16(addr.BGCNT(n))
	charBase := int(cnt>>2&3) * addr.BGTilesBlockSize
	mapBase := int(cnt>>8&31) * addr.BGMapBlockSize
	size := 128 << (cnt >> 14)
	tiles := size / 8
	wrap := cnt&BGWrap != 0

	pa, pc := v.affineParams(n)
	ref := v.ref[n-2]
	for x := range out {
		tx := int((ref.x + pa*int32(x)) >> 8)
		ty := int((ref.y + pc*int32(x)) >> 8)
		if wrap {
			tx &= size - 1
			ty &= size - 1
		} else if tx < 0 || ty < 0 || tx >= size || ty >= size {
			out[x] = transparent
			continue
		}
		entry := mapBase + ty>>3*tiles + tx>>3
		if entry >= bgVRAMSize {
			out[x] = transparent
			continue
		}
		tile := int(v.vram[entry])
		out[x] = v.bgTexel8(charBase + tile*64 + (ty&7)*8 + tx&7)
	}
}

// bitmapLine renders the current line of background 2 in modes 3, 4 and 5.
// Bitmaps are sampled through the affine parameters of background 2 and never
// wrap.
func (v *Video) bitmapLine(dispcnt uint16, out *layer) {
	mode := dispcnt & ModeMask
	width, height := FramebufferWidth, FramebufferHeight
	page := 0
	if mode == 5 {
		width, height = 160, 128
	}
	if mode != 3 && dispcnt&FrameSelect != 0 {
		page = int(addr.Mode4Page1 - addr.Mode4Page0)
	}

	pa, pc := v.affineParams(2)
	ref := v.ref[0]
	for x := range out {
		tx := int((ref.x + pa*int32(x)) >> 8)
		ty := int((ref.y + pc*int32(x)) >> 8)
		if tx < 0 || ty < 0 || tx >= width || ty >= height {
			out[x] = transparent
			continue
		}
		switch i := ty*width + tx; mode {
		case 4:
			out[x] = v.bgTexel8(page + i)
		default:
			out[x] = int32(binary.LittleEndian.Uint16(v.vram[page+i*2:]) & 0x7FFF)
		}
	}
}
