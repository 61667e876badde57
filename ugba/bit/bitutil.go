package bit

// Combine combines two 16 bit halfwords into a single 32 bit word.
// The high halfword will be the most significant one.
func Combine(high, low uint16) uint32 {
	return (uint32(high) << 16) | uint32(low)
}

// IsSet will check if the bit at the specified index is set to 1 or not.
func IsSet(index uint8, value uint16) bool {
	return ((value >> index) & 1) == 1
}

// IsSet32 is IsSet for 32 bit words.
func IsSet32(index uint8, value uint32) bool {
	return ((value >> index) & 1) == 1
}

// Set will return the passed halfword with the bit at the specified index set to 1.
func Set(index uint8, value uint16) uint16 {
	return value | (1 << index)
}

// Clear will return the passed halfword with the bit at the specified index set to 0.
func Clear(index uint8, value uint16) uint16 {
	return value &^ (1 << index)
}

// SetTo sets or clears the bit at index depending on set.
func SetTo(index uint8, value uint16, set bool) uint16 {
	if set {
		return Set(index, value)
	}
	return Clear(index, value)
}

// Low returns the low halfword of a 32 bit word.
func Low(value uint32) uint16 {
	return uint16(value)
}

// High returns the high halfword of a 32 bit word.
func High(value uint32) uint16 {
	return uint16(value >> 16)
}

// ExtractBits extracts bits from highBit to lowBit (inclusive)
// Example: ExtractBits(0b11010110, 6, 4) -> 0b101 (extracts bits 6, 5, 4)
func ExtractBits(value uint16, highBit, lowBit uint8) uint16 {
	width := highBit - lowBit + 1
	mask := uint16((1 << width) - 1)
	return (value >> lowBit) & mask
}

// SignExtend interprets the low width bits of value as a two's complement
// number and returns it sign extended to 32 bits.
func SignExtend(value uint32, width uint8) int32 {
	shift := 32 - width
	return int32(value<<shift) >> shift
}
