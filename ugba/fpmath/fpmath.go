// Package fpmath provides fixed-point trigonometry for code that cannot rely
// on floating point.
//
// Angles use a full turn of 0x8000 (Pi = 0x4000) and wrap outside of it.
// Results are 16.16 fixed point between -1<<16 and 1<<16.
package fpmath

import "math"

const (
	Pi    int32 = 0x4000
	TwoPi int32 = 2 * Pi

	One int32 = 1 << 16
)

const (
	tableBits  = 9
	tableSize  = 1 << tableBits
	tableShift = 15 - tableBits
	tableFrac  = 1<<tableShift - 1
)

// sine over one full turn plus a guard entry for interpolation.
var table [tableSize + 1]int32

func init() {
	for i := range table {
		table[i] = int32(math.Round(math.Sin(2*math.Pi*float64(i)/tableSize) * float64(One)))
	}
}

// Sin returns the sine of angle x.
func Sin(x int32) int32 {
	x &= TwoPi - 1
	i := x >> tableShift
	frac := x & tableFrac
	a, b := table[i], table[i+1]
	return a + (b-a)*frac>>tableShift
}

// Cos returns the cosine of angle x.
func Cos(x int32) int32 {
	return Sin(x + Pi/2)
}
