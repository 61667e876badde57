package bios

// Flags of the lenMode argument of CpuSet and CpuFastSet.
const (
	ModeCopy   uint32 = 0
	ModeFill   uint32 = 1 << 24
	Mode16Bit  uint32 = 0
	Mode32Bit  uint32 = 1 << 26
	countMask  uint32 = 0x1FFFFF
	fastSetRun uint32 = 8
)

// CpuSet copies or fills count units from src to dst. lenMode holds the unit
// count in bits 0-20, fill mode in bit 24 and 32-bit units in bit 26.
// Addresses are aligned down to the unit size.
func CpuSet(bus Bus, src, dst, lenMode uint32) {
	count := lenMode & countMask
	fill := lenMode&ModeFill != 0

	if lenMode&Mode32Bit != 0 {
		src &^= 3
		dst &^= 3
		set32(bus, src, dst, count, fill)
		return
	}

	src &^= 1
	dst &^= 1
	value := bus.Read16(src)
	for i := uint32(0); i < count; i++ {
		if !fill {
			value = bus.Read16(src + i*2)
		}
		bus.Write16(dst+i*2, value)
	}
}

// CpuFastSet copies or fills 32-bit words. The hardware moves blocks of 8
// words, so count is rounded up to a multiple of 8.
func CpuFastSet(bus Bus, src, dst, lenMode uint32) {
	count := lenMode & countMask
	count = (count + fastSetRun - 1) &^ (fastSetRun - 1)
	set32(bus, src&^3, dst&^3, count, lenMode&ModeFill != 0)
}

func set32(bus Bus, src, dst, count uint32, fill bool) {
	value := bus.Read32(src)
	for i := uint32(0); i < count; i++ {
		if !fill {
			value = bus.Read32(src + i*4)
		}
		bus.Write32(dst+i*4, value)
	}
}
