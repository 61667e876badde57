package bios

// Div returns num / den rounded towards zero. Dividing by zero returns 0,
// MinInt32 / -1 wraps to MinInt32 like the hardware.
func Div(num, den int32) int32 {
	q, _, _ := DivFull(num, den)
	return q
}

// DivMod returns the remainder of num / den, with the sign of num. Dividing
// by zero returns 0.
func DivMod(num, den int32) int32 {
	_, r, _ := DivFull(num, den)
	return r
}

// DivFull returns the three results of the BIOS Div call: quotient, remainder
// and absolute value of the quotient.
func DivFull(num, den int32) (quot, rem int32, absQuot uint32) {
	if den == 0 {
		return 0, 0, 0
	}
	// Go defines MinInt32 / -1 as MinInt32 with remainder 0, which is what
	// the hardware produces too.
	quot = num / den
	rem = num % den
	absQuot = uint32(quot)
	if quot < 0 {
		absQuot = uint32(-quot)
	}
	return quot, rem, absQuot
}

// Sqrt returns the integer square root of value, rounded down.
func Sqrt(value uint32) uint16 {
	var res uint32
	one := uint32(1) << 30
	for one > value {
		one >>= 2
	}
	for one != 0 {
		if value >= res+one {
			value -= res + one
			res = res>>1 + one
		} else {
			res >>= 1
		}
		one >>= 2
	}
	return uint16(res)
}

// ArcTan returns the arc tangent of tan (1.14 fixed point, -1.0 to 1.0) as an
// angle where a full turn is 0x10000. The polynomial and its truncations are
// the ones of the BIOS, results match it bit by bit.
func ArcTan(tan int16) int16 {
	return int16(arcTan(int32(tan)))
}

func arcTan(i int32) int32 {
	a := -((i * i) >> 14)
	b := ((0xA9 * a) >> 14) + 0x390
	b = ((b * a) >> 14) + 0x91C
	b = ((b * a) >> 14) + 0xFB6
	b = ((b * a) >> 14) + 0x16AA
	b = ((b * a) >> 14) + 0x2081
	b = ((b * a) >> 14) + 0x3651
	b = ((b * a) >> 14) + 0xA2F9
	return (i * b) >> 16
}

// ArcTan2 returns the angle of the vector (x, y), 0x10000 per turn, covering
// all four quadrants. Vectors on the axes return exact constants: 0 and 0x8000
// on the X axis, 0x4000 and 0xC000 on the Y axis.
func ArcTan2(x, y int16) uint16 {
	return uint16(arcTan2(int32(x), int32(y)))
}

func arcTan2(x, y int32) int32 {
	if y == 0 {
		if x >= 0 {
			return 0
		}
		return 0x8000
	}
	if x == 0 {
		if y >= 0 {
			return 0x4000
		}
		return 0xC000
	}

	if y >= 0 {
		if x >= 0 {
			if x >= y {
				return arcTan((y << 14) / x)
			}
		} else if -x >= y {
			return arcTan((y<<14)/x) + 0x8000
		}
		return 0x4000 - arcTan((x<<14)/y)
	}

	if x <= 0 {
		if -x > -y {
			return arcTan((y<<14)/x) + 0x8000
		}
	} else if x >= -y {
		return arcTan((y<<14)/x) + 0x10000
	}
	return 0xC000 - arcTan((x<<14)/y)
}
