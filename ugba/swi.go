package ugba

import (
	"fmt"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/bios"
	"github.com/valerio/go-ugba/ugba/memory"
)

// BIOS calls that work on memory. They read and write through the bus, so
// stores to I/O registers have their usual side effects.

func (c *Console) CpuSet(src, dst, lenMode uint32)     { bios.CpuSet(c.bus, src, dst, lenMode) }
func (c *Console) CpuFastSet(src, dst, lenMode uint32) { bios.CpuFastSet(c.bus, src, dst, lenMode) }

// BgAffineSet computes count background transforms from the source
// structures at src and stores them at dst.
func (c *Console) BgAffineSet(src, dst uint32, count int) {
	bios.BgAffineSetMem(c.bus, src, dst, count)
}

// ObjAffineSet computes count sprite matrices. stride is 2 for a packed
// array and 8 to write straight into OAM.
func (c *Console) ObjAffineSet(src, dst uint32, count int, stride uint32) {
	bios.ObjAffineSetMem(c.bus, src, dst, count, stride)
}

// BitUnPack expands the data at src as described by the info structure at
// info.
func (c *Console) BitUnPack(src, dst, info uint32) (int, error) {
	return bios.BitUnPack(c.bus, src, dst, bios.ReadBitUnPackInfo(c.bus, info))
}

// Decompress decodes the stream at src into dst, picking the decoder from
// the stream header. Destinations in VRAM get the 16-bit variants.
func (c *Console) Decompress(src, dst uint32) (int, error) {
	h := bios.Header(c.bus.Read32(src))
	vram := dst>>24 == addr.VRAM>>24
	switch h.Type() {
	case bios.TypeLZ77:
		if vram {
			return bios.LZ77UnCompVram(c.bus, src, dst)
		}
		return bios.LZ77UnCompWram(c.bus, src, dst)
	case bios.TypeHuffman:
		return bios.HuffUnComp(c.bus, src, dst)
	case bios.TypeRL:
		if vram {
			return bios.RLUnCompVram(c.bus, src, dst)
		}
		return bios.RLUnCompWram(c.bus, src, dst)
	case bios.TypeDiff:
		if h.Param() == 2 {
			return bios.Diff16bitUnFilter(c.bus, src, dst)
		}
		if vram {
			return bios.Diff8bitUnFilterVram(c.bus, src, dst)
		}
		return bios.Diff8bitUnFilterWram(c.bus, src, dst)
	}
	return 0, fmt.Errorf("%w: unknown type %d", bios.ErrBadHeader, h.Type())
}

// RegisterRamReset clears the memory regions and register groups selected by
// flags and resets the state of the peripherals whose registers were
// cleared.
func (c *Console) RegisterRamReset(flags uint8) {
	bios.RegisterRamReset(c.mem, flags)
	if flags&memory.ResetOtherRegs != 0 {
		c.IRQ.ResetRegisters()
		c.DMA.Reset()
		c.Timers.Reset()
		c.Video.Reset()
		c.Keypad.Set(c.Keypad.Down())
	}
	if flags&memory.ResetSerialRegs != 0 {
		c.Serial.Reset()
	}
}

// SoftReset clears the registers and the top of IWRAM like the BIOS call and
// restarts the frame. EWRAM, VRAM and ROM survive.
func (c *Console) SoftReset() {
	iwram := c.mem.Region(memory.RegionIWRAM)
	clear(iwram[len(iwram)-0x200:])
	c.RegisterRamReset(memory.ResetSerialRegs | memory.ResetSoundRegs | memory.ResetOtherRegs)
	c.line = 0
	c.lineStarted = false
}
