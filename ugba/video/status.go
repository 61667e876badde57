package video

import "github.com/valerio/go-ugba/ugba/addr"

// DISPSTAT bits.
const (
	StatVBlank    uint16 = 1 << 0
	StatHBlank    uint16 = 1 << 1
	StatVCount    uint16 = 1 << 2
	StatVBlankIRQ uint16 = 1 << 3
	StatHBlankIRQ uint16 = 1 << 4
	StatVCountIRQ uint16 = 1 << 5

	statFlags = StatVBlank | StatHBlank | StatVCount
)

func (v *Video) setStat(flags uint16) {
	v.stat = flags
	v.mem.IOWrite16(addr.DISPSTAT, v.reg16(addr.DISPSTAT)&^statFlags|flags)
}

// StartLine moves VCOUNT to line, leaves HBlank and updates the VBlank and
// V-counter match flags. It reports whether the V-counter interrupt should
// be requested.
func (v *Video) StartLine(line int) bool {
	v.vcount = line
	v.mem.IOWrite16(addr.VCOUNT, uint16(line))

	flags := v.stat &^ (StatHBlank | StatVCount)
	// the flag is not set on the last line
	if line >= FramebufferHeight && line < addr.TotalLines-1 {
		flags |= StatVBlank
	} else {
		flags &^= StatVBlank
	}

	dispstat := v.reg16(addr.DISPSTAT)
	match := int(dispstat>>8) == line
	if match {
		flags |= StatVCount
	}
	v.setStat(flags)
	return match && dispstat&StatVCountIRQ != 0
}

// EnterHBlank sets the HBlank flag and reports whether the HBlank interrupt
// should be requested.
func (v *Video) EnterHBlank() bool {
	v.setStat(v.stat | StatHBlank)
	return v.reg16(addr.DISPSTAT)&StatHBlankIRQ != 0
}

// EnterVBlank reloads the affine reference points and reports whether the
// VBlank interrupt should be requested. StartLine has already set the flag.
func (v *Video) EnterVBlank() bool {
	v.ReloadAffine()
	return v.reg16(addr.DISPSTAT)&StatVBlankIRQ != 0
}

// SetIRQ sets or clears one of the DISPSTAT interrupt enable bits.
func (v *Video) SetIRQ(mask uint16, on bool) {
	dispstat := v.reg16(addr.DISPSTAT)
	if on {
		dispstat |= mask
	} else {
		dispstat &^= mask
	}
	v.mem.IOWrite16(addr.DISPSTAT, dispstat)
}
