package ugba

import (
	"errors"
	"fmt"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/memory"
	"github.com/valerio/go-ugba/ugba/video"
)

var ErrROMFull = errors.New("ugba: no space left in ROM")

func (c *Console) copy16(dst uint32, colors []uint16) {
	for i, v := range colors {
		c.bus.Write16(dst+uint32(i)*2, v)
	}
}

func (c *Console) copyBytes(dst uint32, data []byte) {
	for i := 0; i+1 < len(data); i += 2 {
		c.bus.Write16(dst+uint32(i), uint16(data[i])|uint16(data[i+1])<<8)
	}
	if len(data)%2 != 0 {
		last := uint32(len(data) - 1)
		old := c.bus.Read16(dst + last)
		c.bus.Write16(dst+last, old&0xFF00|uint16(data[last]))
	}
}

// BGPalette16Copy loads up to 16 colors into background palette n.
func (c *Console) BGPalette16Copy(colors []uint16, palette int) {
	c.copy16(addr.PaletteBG+uint32(palette)*32, colors[:min(len(colors), 16)])
}

// OBJPalette16Copy loads up to 16 colors into sprite palette n.
func (c *Console) OBJPalette16Copy(colors []uint16, palette int) {
	c.copy16(addr.PaletteOBJ+uint32(palette)*32, colors[:min(len(colors), 16)])
}

// BGPalette256Copy loads the 256 color background palette.
func (c *Console) BGPalette256Copy(colors []uint16) {
	c.copy16(addr.PaletteBG, colors[:min(len(colors), 256)])
}

// OBJPalette256Copy loads the 256 color sprite palette.
func (c *Console) OBJPalette256Copy(colors []uint16) {
	c.copy16(addr.PaletteOBJ, colors[:min(len(colors), 256)])
}

// BGTiles16Copy copies 16 color tile data starting at tile index of
// character block 0.
func (c *Console) BGTiles16Copy(data []byte, index int) {
	c.copyBytes(addr.BGTilesBlock(0)+uint32(index)*32, data)
}

// OBJTiles16Copy copies 16 color tile data starting at sprite tile index.
func (c *Console) OBJTiles16Copy(data []byte, index int) {
	c.copyBytes(addr.VRAMOBJ+uint32(index)*32, data)
}

// SpriteSet writes the attributes of s to OAM entry s.OAMIndex.
func (c *Console) SpriteSet(s video.Sprite) {
	a0, a1, a2 := video.SpriteAttributes(s)
	base := addr.OAM + uint32(s.OAMIndex)*8
	c.bus.Write16(base, a0)
	c.bus.Write16(base+2, a1)
	c.bus.Write16(base+4, a2)
}

// SpritesHide disables every sprite.
func (c *Console) SpritesHide() {
	for i := 0; i < video.SpriteCount; i++ {
		c.bus.Write16(addr.OAM+uint32(i)*8, 1<<9)
	}
}

// PlaceROM copies constant application data into cartridge ROM and returns
// its bus address. Blocks are word aligned and never move.
func (c *Console) PlaceROM(data []byte) (uint32, error) {
	offset := (c.romTop + 3) &^ 3
	if int(offset)+len(data) > addr.ROMSize {
		return 0, fmt.Errorf("%w: %d bytes at 0x%X", ErrROMFull, len(data), offset)
	}
	if err := c.mem.Load(memory.RegionROM, offset, data); err != nil {
		return 0, err
	}
	c.romTop = offset + uint32(len(data))
	return addr.ROM + offset, nil
}
