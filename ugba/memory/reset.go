package memory

import "github.com/valerio/go-ugba/ugba/addr"

// Flags accepted by ResetRegions, same bit layout as the BIOS RegisterRamReset call.
const (
	ResetEWRAM uint8 = 1 << iota
	// ResetIWRAM clears IWRAM except the last 0x200 bytes (stack area).
	ResetIWRAM
	ResetPalette
	ResetVRAM
	ResetOAM
	ResetSerialRegs
	ResetSoundRegs
	ResetOtherRegs

	ResetAll uint8 = 0xFF
)

const iwramReserved = 0x200

// Ranges of I/O offsets cleared by the register reset flags.
var (
	serialRegs = [][2]uint32{{0x120, 0x130}, {0x134, 0x15A}}
	soundRegs  = [][2]uint32{{0x060, 0x0B0}}
	otherRegs  = [][2]uint32{{0x000, 0x060}, {0x0B0, 0x120}, {0x130, 0x134}, {0x200, addr.IOSize}}
)

// ResetRegions zeroes the regions selected by flags. It writes the backing
// memory directly, registers cleared this way do not trigger any side effect.
func (m *Map) ResetRegions(flags uint8) {
	if flags&ResetEWRAM != 0 {
		clear(m.regions[RegionEWRAM])
	}
	if flags&ResetIWRAM != 0 {
		clear(m.regions[RegionIWRAM][:addr.IWRAMSize-iwramReserved])
	}
	if flags&ResetPalette != 0 {
		clear(m.regions[RegionPalette])
	}
	if flags&ResetVRAM != 0 {
		clear(m.regions[RegionVRAM])
	}
	if flags&ResetOAM != 0 {
		clear(m.regions[RegionOAM])
	}
	regs := m.regions[RegionIO]
	clearRanges := func(ranges [][2]uint32) {
		for _, r := range ranges {
			clear(regs[r[0]:r[1]])
		}
	}
	if flags&ResetSerialRegs != 0 {
		clearRanges(serialRegs)
	}
	if flags&ResetSoundRegs != 0 {
		clearRanges(soundRegs)
	}
	if flags&ResetOtherRegs != 0 {
		clearRanges(otherRegs)
		// KEYINPUT reads as all keys released
		regs[addr.KEYINPUT] = 0xFF
		regs[addr.KEYINPUT+1] = 0x03
	}
}
