package bios

import "math"

// sinTable holds one full turn of sine in 256 steps, 1.14 fixed point.
var sinTable [256]int16

func init() {
	for i := range sinTable {
		sinTable[i] = int16(math.Round(math.Sin(2*math.Pi*float64(i)/256) * 0x4000))
	}
}

// sinCos returns sine and cosine of a 0x10000-per-turn angle, 1.14 fixed point.
// Only the top 8 bits of the angle are used, like the BIOS.
func sinCos(angle uint16) (sin, cos int32) {
	idx := angle >> 8
	return int32(sinTable[idx]), int32(sinTable[(idx+64)&0xFF])
}

// BgAffineSrc is the input of BgAffineSet: a rotation and scale around a
// texture point placed at a screen position.
type BgAffineSrc struct {
	TexX   int32 // 24.8 fixed point
	TexY   int32 // 24.8 fixed point
	ScrX   int16
	ScrY   int16
	ScaleX int16 // 8.8 fixed point
	ScaleY int16 // 8.8 fixed point
	Angle  uint16
}

// BgAffineDst holds the register values of an affine background: PA-PD are
// 8.8 fixed point, X and Y the 24.8 reference point.
type BgAffineDst struct {
	PA, PB, PC, PD int16
	X, Y           int32
}

// ObjAffineSrc is the input of ObjAffineSet.
type ObjAffineSrc struct {
	ScaleX int16 // 8.8 fixed point
	ScaleY int16 // 8.8 fixed point
	Angle  uint16
}

// ObjAffineDst holds the four parameters of a sprite affine matrix.
type ObjAffineDst struct {
	PA, PB, PC, PD int16
}

// Sizes of the packed structures used by the memory variants.
const (
	BgAffineSrcSize  = 20
	BgAffineDstSize  = 16
	ObjAffineSrcSize = 8
)

func matrix(sx, sy int16, angle uint16) (pa, pb, pc, pd int32) {
	sin, cos := sinCos(angle)
	pa = (int32(sx) * cos) >> 14
	pb = -((int32(sx) * sin) >> 14)
	pc = (int32(sy) * sin) >> 14
	pd = (int32(sy) * cos) >> 14
	return pa, pb, pc, pd
}

// BgAffineSet computes background affine registers for each input.
func BgAffineSet(src []BgAffineSrc) []BgAffineDst {
	dst := make([]BgAffineDst, len(src))
	for i, s := range src {
		pa, pb, pc, pd := matrix(s.ScaleX, s.ScaleY, s.Angle)
		cx, cy := int32(s.ScrX), int32(s.ScrY)
		dst[i] = BgAffineDst{
			PA: int16(pa),
			PB: int16(pb),
			PC: int16(pc),
			PD: int16(pd),
			X:  s.TexX - (pa*cx + pb*cy),
			Y:  s.TexY - (pc*cx + pd*cy),
		}
	}
	return dst
}

// ObjAffineSet computes sprite affine matrices for each input.
func ObjAffineSet(src []ObjAffineSrc) []ObjAffineDst {
	dst := make([]ObjAffineDst, len(src))
	for i, s := range src {
		pa, pb, pc, pd := matrix(s.ScaleX, s.ScaleY, s.Angle)
		dst[i] = ObjAffineDst{PA: int16(pa), PB: int16(pb), PC: int16(pc), PD: int16(pd)}
	}
	return dst
}

// BgAffineSetMem reads count packed sources at src and writes packed results
// at dst, with the layout the BIOS call uses.
func BgAffineSetMem(bus Bus, src, dst uint32, count int) {
	in := make([]BgAffineSrc, count)
	for i := range in {
		p := src + uint32(i)*BgAffineSrcSize
		in[i] = BgAffineSrc{
			TexX:   int32(bus.Read32(p)),
			TexY:   int32(bus.Read32(p + 4)),
			ScrX:   int16(bus.Read16(p + 8)),
			ScrY:   int16(bus.Read16(p + 10)),
			ScaleX: int16(bus.Read16(p + 12)),
			ScaleY: int16(bus.Read16(p + 14)),
			Angle:  bus.Read16(p + 16),
		}
	}
	for i, d := range BgAffineSet(in) {
		p := dst + uint32(i)*BgAffineDstSize
		bus.Write16(p, uint16(d.PA))
		bus.Write16(p+2, uint16(d.PB))
		bus.Write16(p+4, uint16(d.PC))
		bus.Write16(p+6, uint16(d.PD))
		bus.Write32(p+8, uint32(d.X))
		bus.Write32(p+12, uint32(d.Y))
	}
}

// ObjAffineSetMem reads count packed sources at src and writes PA, PB, PC and
// PD at dst, each stride bytes apart: 2 for a packed array, 8 to write
// straight into OAM.
func ObjAffineSetMem(bus Bus, src, dst uint32, count int, stride uint32) {
	in := make([]ObjAffineSrc, count)
	for i := range in {
		p := src + uint32(i)*ObjAffineSrcSize
		in[i] = ObjAffineSrc{
			ScaleX: int16(bus.Read16(p)),
			ScaleY: int16(bus.Read16(p + 2)),
			Angle:  bus.Read16(p + 4),
		}
	}
	p := dst
	for _, d := range ObjAffineSet(in) {
		for _, v := range [4]int16{d.PA, d.PB, d.PC, d.PD} {
			bus.Write16(p, uint16(v))
			p += stride
		}
	}
}
