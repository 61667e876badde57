package video

import (
	"encoding/binary"

	"github.com/valerio/go-ugba/ugba/bit"
)

const SpriteCount = 128

// Sprite modes (attribute 0 bits 10-11).
const (
	SpriteNormal = iota
	SpriteSemiTransparent
	SpriteWindow
	spriteProhibited
)

// sizes in pixels indexed by shape and size
var spriteSizes = [3][4][2]int{
	{{8, 8}, {16, 16}, {32, 32}, {64, 64}},
	{{16, 8}, {32, 8}, {32, 16}, {64, 32}},
	{{8, 16}, {8, 32}, {16, 32}, {32, 64}},
}

// Sprite represents a single object in OAM, decoded from its three
// attribute halfwords.
type Sprite struct {
	X, Y          int // X is signed (9 bits), Y wraps at 256
	Width, Height int
	Tile          int // tile number in 32 byte units
	Palette       int
	Priority      int
	Mode          int
	Color256      bool
	FlipX, FlipY  bool
	OAMIndex      int

	Affine      bool
	DoubleSize  bool
	AffineIndex int

	Hidden bool
}

// readSprite decodes entry index of the OAM region.
func readSprite(oam []byte, index int) Sprite {
	base := index * 8
	a0 := binary.LittleEndian.Uint16(oam[base:])
	a1 := binary.LittleEndian.Uint16(oam[base+2:])
	a2 := binary.LittleEndian.Uint16(oam[base+4:])

	s := Sprite{
		Y:        int(a0 & 0xFF),
		X:        int(bit.SignExtend(uint32(a1&0x1FF), 9)),
		Tile:     int(a2 & 0x3FF),
		Priority: int(a2 >> 10 & 3),
		Palette:  int(a2 >> 12),
		Mode:     int(a0 >> 10 & 3),
		Color256: bit.IsSet(13, a0),
		Affine:   bit.IsSet(8, a0),
		OAMIndex: index,
	}

	shape, size := int(a0>>14), int(a1>>14)
	if shape == 3 {
		s.Hidden = true
	} else {
		s.Width, s.Height = spriteSizes[shape][size][0], spriteSizes[shape][size][1]
	}

	if s.Affine {
		s.DoubleSize = bit.IsSet(9, a0)
		s.AffineIndex = int(a1 >> 9 & 31)
	} else {
		// bit 9 disables regular sprites
		s.Hidden = s.Hidden || bit.IsSet(9, a0)
		s.FlipX = bit.IsSet(12, a1)
		s.FlipY = bit.IsSet(13, a1)
	}
	if s.Mode == spriteProhibited {
		s.Hidden = true
	}
	return s
}

// Bounds returns the size of the area the sprite covers on screen.
func (s *Sprite) Bounds() (w, h int) {
	if s.Affine && s.DoubleSize {
		return s.Width * 2, s.Height * 2
	}
	return s.Width, s.Height
}

// affineMatrix returns PA, PB, PC and PD of affine parameter group n. The
// groups are interleaved with the sprite attributes.
func affineMatrix(oam []byte, n int) (pa, pb, pc, pd int) {
	base := n * 32
	get := func(off int) int { return int(int16(binary.LittleEndian.Uint16(oam[base+off:]))) }
	return get(6), get(14), get(22), get(30)
}

// Sprites returns all the OAM entries. Useful for debug tools.
func (v *Video) Sprites() []Sprite {
	result := make([]Sprite, SpriteCount)
	for i := range SpriteCount {
		result[i] = readSprite(v.oam, i)
	}
	return result
}

// renderSprites draws the sprites that cover line y into the sprite line
// buffer.
func (v *Video) renderSprites(dispcnt uint16, y int) {
	oneD := dispcnt&OBJMapping1D != 0
	bitmap := dispcnt&ModeMask >= 3

	for i := range SpriteCount {
		s := readSprite(v.oam, i)
		// the window mask does not draw anything
		if s.Hidden || s.Mode == SpriteWindow {
			continue
		}
		bw, bh := s.Bounds()
		dy := (y - s.Y) & 0xFF
		if dy >= bh {
			continue
		}

		var pa, pb, pc, pd int
		if s.Affine {
			pa, pb, pc, pd = affineMatrix(v.oam, s.AffineIndex)
		}

		for bx := 0; bx < bw; bx++ {
			sx := s.X + bx
			if sx < 0 || sx >= FramebufferWidth {
				continue
			}

			var tx, ty int
			if s.Affine {
				// rotate around the center of the bounding box
				cx, cy := bx-bw/2, dy-bh/2
				tx = (pa*cx+pb*cy)>>8 + s.Width/2
				ty = (pc*cx+pd*cy)>>8 + s.Height/2
				if tx < 0 || ty < 0 || tx >= s.Width || ty >= s.Height {
					continue
				}
			} else {
				tx, ty = bx, dy
				if s.FlipX {
					tx = s.Width - 1 - tx
				}
				if s.FlipY {
					ty = s.Height - 1 - ty
				}
			}

			c := v.spriteTexel(&s, tx, ty, oneD, bitmap)
			if c != transparent {
				v.objs.TryClaimPixel(sx, i, s.Priority, c)
			}
		}
	}
}

// spriteTexel returns the color of texel (tx, ty) of a sprite, or transparent.
func (v *Video) spriteTexel(s *Sprite, tx, ty int, oneD, bitmap bool) int32 {
	tileX, tileY := tx>>3, ty>>3
	var tile, off int
	if s.Color256 {
		if oneD {
			tile = s.Tile + (tileY*(s.Width/8)+tileX)*2
		} else {
			tile = s.Tile&^1 + tileY*32 + tileX*2
		}
		off = tile*32 + (ty&7)*8 + tx&7
	} else {
		if oneD {
			tile = s.Tile + tileY*(s.Width/8) + tileX
		} else {
			tile = s.Tile + tileY*32 + tileX
		}
		off = tile*32 + (ty&7)*4 + (tx&7)/2
	}
	off &= 0x7FFF
	// the bitmap modes use the lower half of sprite VRAM
	if bitmap && off < 0x4000 {
		return transparent
	}

	b := v.vram[bgVRAMSize+off]
	var idx int
	if s.Color256 {
		idx = int(b)
	} else {
		idx = int(b >> (uint(tx&1) * 4) & 0xF)
	}
	if idx == 0 {
		return transparent
	}
	if s.Color256 {
		return v.color(256 + idx)
	}
	return v.color(256 + s.Palette*16 + idx)
}

// SpriteAttributes packs sprite attributes into the three OAM halfwords.
// Affine sprites cannot be hidden: bit 9 is their double size flag.
func SpriteAttributes(s Sprite) (a0, a1, a2 uint16) {
	shape, size := spriteShape(s.Width, s.Height)
	a0 = uint16(s.Y&0xFF) | uint16(s.Mode&3)<<10 | uint16(shape)<<14
	if s.Color256 {
		a0 |= 1 << 13
	}
	a1 = uint16(s.X&0x1FF) | uint16(size)<<14

	if s.Affine {
		a0 |= 1 << 8
		if s.DoubleSize {
			a0 |= 1 << 9
		}
		a1 |= uint16(s.AffineIndex&31) << 9
	} else {
		if s.Hidden {
			a0 |= 1 << 9
		}
		if s.FlipX {
			a1 |= 1 << 12
		}
		if s.FlipY {
			a1 |= 1 << 13
		}
	}
	a2 = uint16(s.Tile&0x3FF) | uint16(s.Priority&3)<<10 | uint16(s.Palette&15)<<12
	return a0, a1, a2
}

func spriteShape(w, h int) (shape, size int) {
	for sh := range spriteSizes {
		for sz, wh := range spriteSizes[sh] {
			if wh[0] == w && wh[1] == h {
				return sh, sz
			}
		}
	}
	return 0, 0
}

// WriteSprite stores the attributes of s at OAM entry s.OAMIndex.
func WriteSprite(oam []byte, s Sprite) {
	a0, a1, a2 := SpriteAttributes(s)
	base := s.OAMIndex * 8
	binary.LittleEndian.PutUint16(oam[base:], a0)
	binary.LittleEndian.PutUint16(oam[base+2:], a1)
	binary.LittleEndian.PutUint16(oam[base+4:], a2)
}
