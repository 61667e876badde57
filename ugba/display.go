package ugba

import (
	"errors"
	"fmt"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/bios"
	"github.com/valerio/go-ugba/ugba/video"
)

var ErrBadBackground = errors.New("ugba: invalid background setup")

// RegularSize is the map size of a text background, BGCNT bits 14-15.
type RegularSize uint16

const (
	Regular256x256 RegularSize = iota
	Regular512x256
	Regular256x512
	Regular512x512
)

// AffineSize is the map size of a rotation/scaling background.
type AffineSize uint16

const (
	Affine128x128 AffineSize = iota
	Affine256x256
	Affine512x512
	Affine1024x1024
)

// Colors selects 16 color (4bpp, 16 palettes) or 256 color (8bpp) tiles.
type Colors uint8

const (
	Colors16 Colors = iota
	Colors256
)

func (c *Console) dispcnt(clear, set uint16) {
	v := c.bus.ReadIO16(addr.DISPCNT)
	c.bus.WriteIO16(addr.DISPCNT, v&^clear|set)
}

// ModeSet selects display mode 0-5 and leaves every other DISPCNT bit alone.
func (c *Console) ModeSet(mode int) error {
	if mode < 0 || mode > 5 {
		return fmt.Errorf("%w: mode %d", ErrBadBackground, mode)
	}
	c.dispcnt(video.ModeMask, uint16(mode))
	return nil
}

// LayersEnable turns the four backgrounds and the sprites on or off.
func (c *Console) LayersEnable(bg0, bg1, bg2, bg3, obj bool) {
	var set uint16
	for i, on := range []bool{bg0, bg1, bg2, bg3, obj} {
		if on {
			set |= video.EnableBG0 << i
		}
	}
	c.dispcnt(video.EnableBG0|video.EnableBG1|video.EnableBG2|video.EnableBG3|video.EnableOBJ, set)
}

// ForcedBlank turns the screen white while on.
func (c *Console) ForcedBlank(on bool) {
	if on {
		c.dispcnt(0, video.ForcedBlank)
	} else {
		c.dispcnt(video.ForcedBlank, 0)
	}
}

// FrameSelect picks the displayed page of modes 4 and 5.
func (c *Console) FrameSelect(page int) {
	if page&1 != 0 {
		c.dispcnt(0, video.FrameSelect)
	} else {
		c.dispcnt(video.FrameSelect, 0)
	}
}

// ObjMapping1D selects 1D (true) or 2D sprite tile mapping.
func (c *Console) ObjMapping1D(on bool) {
	if on {
		c.dispcnt(0, video.OBJMapping1D)
	} else {
		c.dispcnt(video.OBJMapping1D, 0)
	}
}

// blocks validates the tile and map base addresses and returns their
// block numbers.
func blocks(tilesBase, mapBase uint32) (tiles, maps uint16, err error) {
	if tilesBase < addr.VRAMBG || (tilesBase-addr.VRAMBG)%addr.BGTilesBlockSize != 0 || tilesBase >= addr.VRAMOBJ {
		return 0, 0, fmt.Errorf("%w: tiles base 0x%08X", ErrBadBackground, tilesBase)
	}
	if mapBase < addr.VRAMBG || (mapBase-addr.VRAMBG)%addr.BGMapBlockSize != 0 || mapBase >= addr.VRAMOBJ {
		return 0, 0, fmt.Errorf("%w: map base 0x%08X", ErrBadBackground, mapBase)
	}
	return uint16((tilesBase - addr.VRAMBG) / addr.BGTilesBlockSize), uint16((mapBase - addr.VRAMBG) / addr.BGMapBlockSize), nil
}

// RegularInit sets up text background n. Priority starts at 0.
func (c *Console) RegularInit(n int, size RegularSize, colors Colors, tilesBase, mapBase uint32) error {
	if n < 0 || n > 3 {
		return fmt.Errorf("%w: background %d", ErrBadBackground, n)
	}
	tiles, maps, err := blocks(tilesBase, mapBase)
	if err != nil {
		return err
	}
	cnt := tiles<<2 | maps<<8 | uint16(size&3)<<14
	if colors == Colors256 {
		cnt |= video.BG256Colors
	}
	c.bus.WriteIO16(addr.BGCNT(n), cnt)
	return nil
}

// AffineInit sets up rotation/scaling background n (2 or 3).
func (c *Console) AffineInit(n int, size AffineSize, tilesBase, mapBase uint32, wrap bool) error {
	if n != 2 && n != 3 {
		return fmt.Errorf("%w: background %d is not affine", ErrBadBackground, n)
	}
	tiles, maps, err := blocks(tilesBase, mapBase)
	if err != nil {
		return err
	}
	cnt := tiles<<2 | maps<<8 | uint16(size&3)<<14 | video.BG256Colors
	if wrap {
		cnt |= video.BGWrap
	}
	c.bus.WriteIO16(addr.BGCNT(n), cnt)
	return nil
}

// PrioritySet changes the priority (0 is the top) of background n.
func (c *Console) PrioritySet(n, priority int) {
	cnt := c.bus.ReadIO16(addr.BGCNT(n))
	c.bus.WriteIO16(addr.BGCNT(n), cnt&^video.BGPriorityMask|uint16(priority)&video.BGPriorityMask)
}

// RegularScrollSet sets the scroll of text background n.
func (c *Console) RegularScrollSet(n, x, y int) {
	c.bus.WriteIO16(addr.BGHOFS(n), uint16(x)&0x1FF)
	c.bus.WriteIO16(addr.BGVOFS(n), uint16(y)&0x1FF)
}

// RegularScrollGet returns the scroll of text background n.
func (c *Console) RegularScrollGet(n int) (x, y int) {
	return int(c.bus.ReadIO16(addr.BGHOFS(n))), int(c.bus.ReadIO16(addr.BGVOFS(n)))
}

// AffineTransformSet writes the matrix and reference point of background n
// (2 or 3), usually the output of bios.BgAffineSet.
func (c *Console) AffineTransformSet(n int, t bios.BgAffineDst) {
	base := addr.BGAffine(n)
	c.bus.WriteIO16(base, uint16(t.PA))
	c.bus.WriteIO16(base+2, uint16(t.PB))
	c.bus.WriteIO16(base+4, uint16(t.PC))
	c.bus.WriteIO16(base+6, uint16(t.PD))
	c.bus.WriteIO32(base+8, uint32(t.X)&0x0FFFFFFF)
	c.bus.WriteIO32(base+12, uint32(t.Y)&0x0FFFFFFF)
}
