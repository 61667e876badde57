package main

import (
	"errors"
	"log/slog"
	"sort"

	"github.com/valerio/go-ugba/ugba"
	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/bios"
	"github.com/valerio/go-ugba/ugba/dma"
	"github.com/valerio/go-ugba/ugba/fpmath"
	"github.com/valerio/go-ugba/ugba/host"
	"github.com/valerio/go-ugba/ugba/input"
	"github.com/valerio/go-ugba/ugba/video"
)

type demo struct {
	about string
	run   host.App
}

var demos = map[string]demo{
	"arctan2":       {"plots ArcTan2 of every pixel around the screen center", arctan2Demo},
	"sine":          {"plots two periods of fpmath.Sin and fpmath.Cos", sineDemo},
	"hblank-scroll": {"waves a city background with HBlank DMA, d-pad scrolls", hblankScrollDemo},
	"affine":        {"rotates and zooms an affine background and sprite, d-pad and A/B control it", affineDemo},
}

var errUnknownDemo = errors.New("unknown demo")

func demoNames() []string {
	names := make([]string, 0, len(demos))
	for name := range demos {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// loop waits for VBlank forever, calling frame after each wait.
func loop(c *ugba.Console, frame func()) error {
	for {
		if err := c.VBlankIntrWait(); err != nil {
			return err
		}
		if frame != nil {
			frame()
		}
	}
}

// bitmapSetup shows the mode 3 framebuffer cleared to black.
func bitmapSetup(c *ugba.Console) error {
	if err := c.IRQ.Enable(addr.VBlankInterrupt); err != nil {
		return err
	}
	if err := c.ModeSet(3); err != nil {
		return err
	}
	c.LayersEnable(false, false, true, false, false)
	c.AffineTransformSet(2, bios.BgAffineDst{PA: 1 << 8, PD: 1 << 8})

	zero, err := c.PlaceROM(make([]byte, 4))
	if err != nil {
		return err
	}
	words := uint32(addr.ScreenWidth * addr.ScreenHeight * 2 / 4)
	c.CpuFastSet(zero, addr.Mode3Framebuffer, words|bios.ModeFill)
	return nil
}

func plot(c *ugba.Console, x, y int, color uint16) {
	c.Bus().Write16(addr.Mode3Framebuffer+uint32(y*addr.ScreenWidth+x)*2, color)
}

func arctan2Demo(c *ugba.Console) error {
	if err := bitmapSetup(c); err != nil {
		return err
	}
	for y := 0; y < addr.ScreenHeight; y++ {
		for x := 0; x < addr.ScreenWidth; x++ {
			dx := int16(x - addr.ScreenWidth/2)
			dy := int16(y - addr.ScreenHeight/2)
			plot(c, x, y, c.BIOS.ArcTan2(dx, dy)>>1)
		}
	}
	return loop(c, nil)
}

func sineDemo(c *ugba.Console) error {
	if err := bitmapSetup(c); err != nil {
		return err
	}
	half := int32(addr.ScreenHeight / 2)
	row := func(v int32) int {
		y := half - 1 - v*half>>16
		return int(min(max(y, 0), addr.ScreenHeight-1))
	}
	for x := 0; x < addr.ScreenWidth; x++ {
		angle := int32(x) * fpmath.TwoPi * 2 / addr.ScreenWidth
		plot(c, x, row(fpmath.Sin(angle)), video.RGB15(31, 0, 0))
		plot(c, x, row(fpmath.Cos(angle)), video.RGB15(0, 31, 0))
	}
	return loop(c, nil)
}

// scrollWithKeys moves x and y with the d-pad, one pixel per frame.
func scrollWithKeys(keys input.Keys, x, y *int) {
	switch {
	case keys&input.KeyUp != 0:
		*y--
	case keys&input.KeyDown != 0:
		*y++
	}
	switch {
	case keys&input.KeyRight != 0:
		*x++
	case keys&input.KeyLeft != 0:
		*x--
	}
}

const (
	cityTilesBase = addr.VRAMBG
	cityMapBlock  = 8
	cityPalette   = 0
)

func hblankScrollDemo(c *ugba.Console) error {
	if err := loadCity(c, addr.BGTilesBlock(0), addr.BGMapBlock(cityMapBlock)); err != nil {
		return err
	}

	x, y := 80, 120
	offsets := addr.EWRAM
	fill := func() {
		for i := 0; i < addr.ScreenHeight; i++ {
			wave := 15 - i&15
			if i&16 != 0 {
				wave = i & 15
			}
			c.Bus().Write16(offsets+uint32(i)*2, uint16(x+wave))
		}
	}
	fill()
	c.Bus().WriteIO16(addr.BGVOFS(0), uint16(y))

	if err := c.IRQ.Enable(addr.VBlankInterrupt); err != nil {
		return err
	}
	// the first HBlank copy happens after line 0, so line 0 is set here
	// and the DMA starts at element 1
	err := c.IRQ.SetHandler(addr.VBlankInterrupt, func() {
		flags := dma.DstFixed | dma.SrcIncrement | dma.Transfer16 | dma.StartHBlank | dma.Repeat
		if err := c.DMA.Transfer(0, offsets+2, addr.IO+addr.BGHOFS(0), 2, flags); err != nil {
			slog.Warn("Scroll DMA failed", "err", err)
			return
		}
		c.Bus().WriteIO16(addr.BGHOFS(0), c.Bus().Read16(offsets))
	})
	if err != nil {
		return err
	}

	if err := c.ModeSet(0); err != nil {
		return err
	}
	c.LayersEnable(true, false, false, false, false)

	return loop(c, func() {
		c.Keypad.Update()
		scrollWithKeys(c.Keypad.Held(), &x, &y)
		fill()
		c.Bus().WriteIO16(addr.BGVOFS(0), uint16(y))
	})
}

const (
	affineMapBlock = 16
	markerTile     = 0
)

func affineDemo(c *ugba.Console) error {
	if err := c.IRQ.Enable(addr.VBlankInterrupt); err != nil {
		return err
	}
	if err := loadRings(c, addr.BGTilesBlock(0), addr.BGMapBlock(affineMapBlock)); err != nil {
		return err
	}
	if err := c.AffineInit(2, ugba.Affine256x256, addr.BGTilesBlock(0), addr.BGMapBlock(affineMapBlock), true); err != nil {
		return err
	}
	loadMarker(c, markerTile)

	c.SpritesHide()
	marker := video.Sprite{
		X:        addr.ScreenWidth/2 - 16,
		Y:        addr.ScreenHeight/2 - 16,
		Width:    16,
		Height:   16,
		Tile:     markerTile,
		Affine:   true,
		OAMIndex: 0,
	}
	c.SpriteSet(marker)

	if err := c.ModeSet(1); err != nil {
		return err
	}
	c.ObjMapping1D(true)
	c.LayersEnable(false, false, true, false, true)

	// source structures for the BIOS calls live in IWRAM
	bgSrc := addr.IWRAM
	bgDst := bgSrc + bios.BgAffineSrcSize
	objSrc := bgDst + bios.BgAffineDstSize

	var angle uint16
	scale := int16(1 << 8)
	texX, texY := int32(128<<8), int32(128<<8)

	update := func() {
		bus := c.Bus()
		bus.Write32(bgSrc, uint32(texX))
		bus.Write32(bgSrc+4, uint32(texY))
		bus.Write16(bgSrc+8, addr.ScreenWidth/2)
		bus.Write16(bgSrc+10, addr.ScreenHeight/2)
		bus.Write16(bgSrc+12, uint16(scale))
		bus.Write16(bgSrc+14, uint16(scale))
		bus.Write16(bgSrc+16, angle)
		c.BgAffineSet(bgSrc, bgDst, 1)
		c.AffineTransformSet(2, bios.BgAffineDst{
			PA: int16(bus.Read16(bgDst)),
			PB: int16(bus.Read16(bgDst + 2)),
			PC: int16(bus.Read16(bgDst + 4)),
			PD: int16(bus.Read16(bgDst + 6)),
			X:  int32(bus.Read32(bgDst + 8)),
			Y:  int32(bus.Read32(bgDst + 12)),
		})

		// the marker spins the other way at a fixed size
		bus.Write16(objSrc, 1<<8)
		bus.Write16(objSrc+2, 1<<8)
		bus.Write16(objSrc+4, -angle)
		c.ObjAffineSet(objSrc, addr.OAM+6, 1, 8)
	}
	update()

	return loop(c, func() {
		c.Keypad.Update()
		keys := c.Keypad.Held()
		x, y := int(texX>>8), int(texY>>8)
		scrollWithKeys(keys, &x, &y)
		texX, texY = int32(x)<<8, int32(y)<<8
		switch {
		case keys&input.KeyA != 0 && scale > 1<<6:
			scale -= 4
		case keys&input.KeyB != 0 && scale < 1<<10:
			scale += 4
		}
		angle += 0x100
		update()
	})
}
