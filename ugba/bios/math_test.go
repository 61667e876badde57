package bios

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestDiv(t *testing.T) {
	tests := []struct {
		name     string
		num, den int32
		quot     int32
		rem      int32
		abs      uint32
	}{
		{"positive", 7, 2, 3, 1, 3},
		{"negative numerator", -7, 2, -3, -1, 3},
		{"negative denominator", 7, -2, -3, 1, 3},
		{"both negative", -7, -2, 3, -1, 3},
		{"exact", 100, 10, 10, 0, 10},
		{"zero numerator", 0, 5, 0, 0, 0},
		{"zero divisor", 1234, 0, 0, 0, 0},
		{"negative zero divisor", -1234, 0, 0, 0, 0},
		{"overflow wraps", math.MinInt32, -1, math.MinInt32, 0, 0x80000000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			q, r, abs := DivFull(tt.num, tt.den)
			assert.Equal(t, tt.quot, q)
			assert.Equal(t, tt.rem, r)
			assert.Equal(t, tt.abs, abs)
			assert.Equal(t, tt.quot, Div(tt.num, tt.den))
			assert.Equal(t, tt.rem, DivMod(tt.num, tt.den))
		})
	}
}

func TestDivModIdentity(t *testing.T) {
	values := []int32{1, -1, 2, 3, -3, 7, 255, -256, 1 << 20, -(1 << 20), math.MaxInt32, math.MinInt32 + 1}
	for _, num := range values {
		for _, den := range values {
			q := Div(num, den)
			r := DivMod(num, den)
			assert.Equal(t, num, q*den+r, "%d / %d", num, den)
			if r != 0 {
				assert.Equal(t, num < 0, r < 0, "remainder sign of %d %% %d", num, den)
			}
		}
	}
}

func TestSqrt(t *testing.T) {
	tests := []struct {
		in   uint32
		want uint16
	}{
		{0, 0},
		{1, 1},
		{2, 1},
		{3, 1},
		{4, 2},
		{99, 9},
		{100, 10},
		{0xFFFF, 255},
		{0x10000, 256},
		{0xFFFFFFFF, 0xFFFF},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, Sqrt(tt.in), "Sqrt(%d)", tt.in)
	}

	t.Run("floor property", func(t *testing.T) {
		check := func(n uint32) {
			r := uint64(Sqrt(n))
			assert.LessOrEqual(t, r*r, uint64(n), "Sqrt(%d)", n)
			assert.Greater(t, (r+1)*(r+1), uint64(n), "Sqrt(%d)", n)
		}
		for n := uint32(0); n < 70000; n++ {
			check(n)
		}
		for n := uint64(70000); n <= math.MaxUint32; n = n*3/2 + 7 {
			check(uint32(n))
		}
		check(math.MaxUint32)
	})
}

func TestArcTan(t *testing.T) {
	assert.Equal(t, int16(0), ArcTan(0))

	// tan(x) = 1.0 is an eighth of a turn
	assert.InDelta(t, 0x2000, int(ArcTan(0x4000)), 8)
	assert.InDelta(t, -0x2000, int(ArcTan(-0x4000)), 8)

	t.Run("monotonic", func(t *testing.T) {
		prev := ArcTan(-0x4000)
		for i := int32(-0x4000); i <= 0x4000; i += 0x40 {
			got := ArcTan(int16(i))
			assert.GreaterOrEqual(t, got, prev)
			prev = got
		}
	})
}

func TestArcTan2Axes(t *testing.T) {
	tests := []struct {
		name string
		x, y int16
		want uint16
	}{
		{"positive x", 100, 0, 0},
		{"origin", 0, 0, 0},
		{"negative x", -100, 0, 0x8000},
		{"positive y", 0, 100, 0x4000},
		{"negative y", 0, -100, 0xC000},
		{"min x", math.MinInt16, 0, 0x8000},
		{"min y", 0, math.MinInt16, 0xC000},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ArcTan2(tt.x, tt.y))
		})
	}
}

func TestArcTan2Quadrants(t *testing.T) {
	samples := []int16{1, 2, 7, 50, 119, 120, 1000, 0x3FFF, 0x4000, math.MaxInt16}

	for _, ax := range samples {
		for _, ay := range samples {
			x, y := ax, ay
			assert.LessOrEqual(t, ArcTan2(x, y), uint16(0x4000), "(%d, %d)", x, y)

			a := ArcTan2(-x, y)
			assert.True(t, a >= 0x4000 && a <= 0x8000, "(%d, %d) = 0x%04X", -x, y, a)

			a = ArcTan2(-x, -y)
			assert.True(t, a >= 0x8000 && a <= 0xC000, "(%d, %d) = 0x%04X", -x, -y, a)

			// the fourth quadrant ends at a full turn, which wraps to 0
			a = ArcTan2(x, -y)
			assert.True(t, a >= 0xC000 || a == 0, "(%d, %d) = 0x%04X", x, -y, a)
		}
	}

	t.Run("diagonals", func(t *testing.T) {
		assert.InDelta(t, 0x2000, int(ArcTan2(64, 64)), 8)
		assert.InDelta(t, 0x6000, int(ArcTan2(-64, 64)), 8)
		assert.InDelta(t, 0xA000, int(ArcTan2(-64, -64)), 8)
		assert.InDelta(t, 0xE000, int(ArcTan2(64, -64)), 8)
	})
}

func TestSoftwareService(t *testing.T) {
	var s Service = Software{}
	assert.Equal(t, int32(-3), s.Div(-7, 2))
	assert.Equal(t, int32(-1), s.DivMod(-7, 2))
	assert.Equal(t, uint16(12), s.Sqrt(150))
	assert.Equal(t, uint16(0x4000), s.ArcTan2(0, 1))
	assert.Equal(t, ArcTan(0x1000), s.ArcTan(0x1000))
	assert.Equal(t, ChecksumGBA, s.Checksum())
	assert.Equal(t, s, Default)
}
