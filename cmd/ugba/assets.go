package main

import (
	"encoding/binary"
	"fmt"

	"github.com/valerio/go-ugba/ugba"
	"github.com/valerio/go-ugba/ugba/compress"
	"github.com/valerio/go-ugba/ugba/video"
)

// The demos draw their graphics procedurally, compress them like asset
// tooling would and let the BIOS decompression services unpack them from ROM
// into VRAM.

// unpack places a compressed stream in ROM and decompresses it to dst.
func unpack(c *ugba.Console, stream []byte, dst uint32) error {
	src, err := c.PlaceROM(stream)
	if err != nil {
		return err
	}
	n, err := c.Decompress(src, dst)
	if err != nil {
		return fmt.Errorf("decompress to 0x%08X: %w", dst, err)
	}
	if n == 0 {
		return fmt.Errorf("decompress to 0x%08X: empty stream", dst)
	}
	return nil
}

// tile4 draws an 8x8 16 color tile.
func tile4(px func(x, y int) uint8) []byte {
	out := make([]byte, 32)
	for y := range 8 {
		for x := range 8 {
			out[y*4+x/2] |= (px(x, y) & 0xF) << (4 * (x & 1))
		}
	}
	return out
}

// tile8 draws an 8x8 256 color tile.
func tile8(px func(x, y int) uint8) []byte {
	out := make([]byte, 64)
	for y := range 8 {
		for x := range 8 {
			out[y*8+x] = px(x, y)
		}
	}
	return out
}

const (
	citySky = iota
	cityStar
	cityWall
	cityWindowLit
	cityWindowDark
	cityGround
	cityRoof
)

var cityColors = []uint16{
	video.RGB15(2, 2, 8),
	video.RGB15(31, 31, 31),
	video.RGB15(12, 12, 14),
	video.RGB15(31, 28, 10),
	video.RGB15(5, 5, 7),
	video.RGB15(4, 14, 4),
	video.RGB15(20, 8, 6),
}

func cityTiles() []byte {
	window := func(inner uint8) func(x, y int) uint8 {
		return func(x, y int) uint8 {
			if x >= 2 && x < 6 && y >= 2 && y < 6 {
				return inner
			}
			return cityWall
		}
	}
	var data []byte
	for _, px := range []func(x, y int) uint8{
		func(x, y int) uint8 { return citySky },
		func(x, y int) uint8 {
			if x == 3 && y == 2 {
				return cityStar
			}
			return citySky
		},
		func(x, y int) uint8 { return cityWall },
		window(cityWindowLit),
		window(cityWindowDark),
		func(x, y int) uint8 { return cityGround },
		func(x, y int) uint8 {
			if y < 2 {
				return cityRoof
			}
			return cityWall
		},
	} {
		data = append(data, tile4(px)...)
	}
	return data
}

// cityTile picks the tile of map cell tx, ty in a 64x64 tile skyline.
func cityTile(tx, ty int) int {
	const groundRow = 56
	if ty >= groundRow {
		return cityGround
	}
	block := tx / 4
	top := groundRow - (8 + (block*13+5)%29)
	switch {
	case ty < top:
		if (tx*31+ty*17)%23 == 0 {
			return cityStar
		}
		return citySky
	case ty == top:
		return cityRoof
	case tx%4 == 0 || ty%2 == 0:
		return cityWall
	case (tx*7+ty*3)%5 == 0:
		return cityWindowDark
	}
	return cityWindowLit
}

// cityMap lays out a 512x512 text map: four 32x32 screen blocks, top-left,
// top-right, bottom-left, bottom-right.
func cityMap(palette int) []byte {
	out := make([]byte, 0, 4*32*32*2)
	for sb := range 4 {
		for y := range 32 {
			for x := range 32 {
				entry := uint16(cityTile(sb%2*32+x, sb/2*32+y)) | uint16(palette)<<12
				out = binary.LittleEndian.AppendUint16(out, entry)
			}
		}
	}
	return out
}

func loadCity(c *ugba.Console, tilesBase, mapBase uint32) error {
	c.BGPalette16Copy(cityColors, cityPalette)

	tiles, err := compress.LZ77(cityTiles(), true)
	if err != nil {
		return err
	}
	if err := unpack(c, tiles, tilesBase); err != nil {
		return err
	}

	m, err := compress.RL(cityMap(cityPalette))
	if err != nil {
		return err
	}
	if err := unpack(c, m, mapBase); err != nil {
		return err
	}
	return c.RegularInit(0, ugba.Regular512x512, ugba.Colors16, tilesBase, mapBase)
}

const ringCount = 8

func ringPalette() []uint16 {
	colors := make([]uint16, 1+2*ringCount)
	for i := range ringCount {
		r, g, b := uint8(i*4), uint8(31-i*3), uint8(16+i*2)
		colors[1+i] = video.RGB15(r, g, b)
		colors[1+ringCount+i] = video.RGB15(r/2, g/2, b/2)
	}
	return colors
}

func ringTiles() []byte {
	var data []byte
	for k := range ringCount {
		data = append(data, tile8(func(x, y int) uint8 {
			if x == 0 || y == 0 {
				return uint8(1 + ringCount + k)
			}
			return uint8(1 + k)
		})...)
	}
	return data
}

// ringMap is a 32x32 affine map of concentric rings around the center.
func ringMap(c *ugba.Console) []byte {
	out := make([]byte, 32*32)
	for ty := range 32 {
		for tx := range 32 {
			dx, dy := tx-16, ty-16
			dist := c.BIOS.Sqrt(uint32(dx*dx + dy*dy))
			out[ty*32+tx] = uint8(int(dist) / 2 % ringCount)
		}
	}
	return out
}

func loadRings(c *ugba.Console, tilesBase, mapBase uint32) error {
	c.BGPalette256Copy(ringPalette())

	tiles, err := compress.Huffman(ringTiles(), 8)
	if err != nil {
		return err
	}
	if err := unpack(c, tiles, tilesBase); err != nil {
		return err
	}

	m, err := compress.Diff8(ringMap(c))
	if err != nil {
		return err
	}
	return unpack(c, m, mapBase)
}

// loadMarker draws a 16x16 arrow pointing up into four sprite tiles, in 1D
// mapping order.
func loadMarker(c *ugba.Console, index int) {
	c.OBJPalette16Copy([]uint16{0, video.RGB15(31, 31, 31)}, 0)
	arrow := func(x, y int) uint8 {
		if x == 7 || x == 8 {
			return 1
		}
		if y < 6 && x >= 7-y && x <= 8+y {
			return 1
		}
		return 0
	}
	var data []byte
	for ty := range 2 {
		for tx := range 2 {
			data = append(data, tile4(func(x, y int) uint8 {
				return arrow(tx*8+x, ty*8+y)
			})...)
		}
	}
	c.OBJTiles16Copy(data, index)
}
