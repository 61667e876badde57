package memory

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ugba/ugba/addr"
)

func TestLocate(t *testing.T) {
	m := New()

	tests := []struct {
		name    string
		address uint32
		region  Region
		offset  uint32
		ok      bool
	}{
		{"BIOS start", 0x00000000, RegionBIOS, 0, true},
		{"EWRAM end", 0x0203FFFF, RegionEWRAM, 0x3FFFF, true},
		{"IWRAM", 0x03000100, RegionIWRAM, 0x100, true},
		{"IO register", 0x04000208, RegionIO, 0x208, true},
		{"OBJ palette", 0x05000200, RegionPalette, 0x200, true},
		{"OBJ VRAM", 0x06010000, RegionVRAM, 0x10000, true},
		{"OAM", 0x070003FE, RegionOAM, 0x3FE, true},
		{"ROM second page", 0x09000000, RegionROM, 0x1000000, true},
		{"SRAM", 0x0E00FFFF, RegionSRAM, 0xFFFF, true},
		{"past BIOS", 0x00004000, RegionBIOS, 0, false},
		{"page 1", 0x01000000, regionUnmapped, 0, false},
		{"past VRAM", 0x06018000, RegionVRAM, 0, false},
		{"past SRAM", 0x0E010000, RegionSRAM, 0, false},
		{"high page", 0xF0000000, regionUnmapped, 0, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r, off, ok := m.Locate(tt.address)
			assert.Equal(t, tt.ok, ok)
			if tt.ok {
				assert.Equal(t, tt.region, r)
				assert.Equal(t, tt.offset, off)
			}
		})
	}
}

func TestReadWriteWidths(t *testing.T) {
	m := New()

	m.Write32(addr.EWRAM, 0x11223344)
	assert.Equal(t, byte(0x44), m.Read8(addr.EWRAM))
	assert.Equal(t, byte(0x11), m.Read8(addr.EWRAM+3))
	assert.Equal(t, uint16(0x3344), m.Read16(addr.EWRAM))
	assert.Equal(t, uint16(0x1122), m.Read16(addr.EWRAM+2))

	t.Run("misaligned accesses are force-aligned", func(t *testing.T) {
		assert.Equal(t, uint32(0x11223344), m.Read32(addr.EWRAM+3))
		assert.Equal(t, uint16(0x3344), m.Read16(addr.EWRAM+1))

		m.Write16(addr.IWRAM+1, 0xBEEF)
		assert.Equal(t, uint16(0xBEEF), m.Read16(addr.IWRAM))
	})
}

func TestWidthPolicy(t *testing.T) {
	t.Run("byte writes to BG VRAM fill the halfword", func(t *testing.T) {
		m := New()
		m.Write8(addr.VRAM+0x101, 0x5A)
		assert.Equal(t, uint16(0x5A5A), m.Read16(addr.VRAM+0x100))
	})

	t.Run("byte writes to palette fill the halfword", func(t *testing.T) {
		m := New()
		m.Write8(addr.Palette+4, 0x1F)
		assert.Equal(t, uint16(0x1F1F), m.Read16(addr.Palette+4))
	})

	t.Run("byte writes to OBJ VRAM and OAM are ignored", func(t *testing.T) {
		m := New()
		m.Write8(addr.VRAMOBJ, 0x77)
		m.Write8(addr.OAM, 0x77)
		assert.Equal(t, uint16(0), m.Read16(addr.VRAMOBJ))
		assert.Equal(t, uint16(0), m.Read16(addr.OAM))

		m.Write16(addr.OAM, 0x1234)
		assert.Equal(t, uint16(0x1234), m.Read16(addr.OAM))
	})

	t.Run("ROM and BIOS are read only", func(t *testing.T) {
		m := New()
		require.NoError(t, m.Load(RegionROM, 0, []byte{1, 2, 3, 4}))
		m.Write32(addr.ROM, 0xFFFFFFFF)
		m.Write8(addr.BIOS, 0xFF)
		assert.Equal(t, uint32(0x04030201), m.Read32(addr.ROM))
		assert.Equal(t, byte(0), m.Read8(addr.BIOS))
	})

	t.Run("SRAM is an 8-bit bus", func(t *testing.T) {
		m := New()
		m.Write16(addr.SRAM+1, 0xAB00)
		assert.Equal(t, byte(0xAB), m.Read8(addr.SRAM+1))
		assert.Equal(t, byte(0), m.Read8(addr.SRAM))
		assert.Equal(t, uint16(0xABAB), m.Read16(addr.SRAM+1))

		m.Write32(addr.SRAM+6, 0x00CD0000)
		assert.Equal(t, byte(0xCD), m.Read8(addr.SRAM+6))
		assert.Equal(t, uint32(0), m.Read32(addr.SRAM+4)&0xFF)
	})
}

func TestOutOfRange(t *testing.T) {
	t.Run("dropped by default", func(t *testing.T) {
		m := New()
		before := bytes.Clone(m.Region(RegionVRAM))

		m.Write32(0x06018000, 0xDEADBEEF)
		m.Write8(0x01000000, 0xFF)
		assert.Equal(t, uint32(0), m.Read32(0x06018000))
		assert.Equal(t, byte(0), m.Read8(0x10000000))
		assert.Equal(t, before, m.Region(RegionVRAM))
	})

	t.Run("strict mode panics with AccessError", func(t *testing.T) {
		m := New(WithStrict())
		assert.True(t, m.Strict())

		defer func() {
			r := recover()
			require.NotNil(t, r)
			err, ok := r.(*AccessError)
			require.True(t, ok)
			assert.Equal(t, uint32(0x03008000), err.Addr)
			assert.Equal(t, "write", err.Op)
			assert.Contains(t, err.Error(), "0x03008000")
		}()
		m.Write16(0x03008000, 1)
	})
}

func TestLoad(t *testing.T) {
	m := New()
	assert.Error(t, m.Load(RegionOAM, 0x3FF, []byte{1, 2}))
	require.NoError(t, m.Load(RegionOAM, 0x3FE, []byte{1, 2}))
	assert.Equal(t, uint16(0x0201), m.Read16(addr.OAM+0x3FE))
}

func TestSave(t *testing.T) {
	m := New()
	m.Write8(addr.SRAM, 0x42)
	m.Write8(addr.SRAM+addr.SRAMSize-1, 0x24)

	var buf bytes.Buffer
	require.NoError(t, m.FlushSave(&buf))
	assert.Equal(t, addr.SRAMSize, buf.Len())

	restored := New()
	require.NoError(t, restored.RestoreSave(&buf))
	assert.Equal(t, m.Region(RegionSRAM), restored.Region(RegionSRAM))

	t.Run("short blob is rejected", func(t *testing.T) {
		target := New()
		target.Write8(addr.SRAM, 0x99)
		err := target.RestoreSave(bytes.NewReader([]byte{1, 2, 3}))
		assert.ErrorIs(t, err, ErrShortSave)
		assert.Equal(t, byte(0x99), target.Read8(addr.SRAM))
	})
}

func TestResetRegions(t *testing.T) {
	m := New()
	m.Write32(addr.EWRAM, 1)
	m.Write32(addr.IWRAM, 1)
	m.Write32(addr.IWRAM+addr.IWRAMSize-4, 1)
	m.Write16(addr.Palette, 1)
	m.Write16(addr.VRAM, 1)
	m.IOWrite16(addr.DISPCNT, 0x0403)
	m.IOWrite16(addr.SIOCNT, 0x4000)

	m.ResetRegions(ResetEWRAM | ResetIWRAM | ResetPalette)
	assert.Equal(t, uint32(0), m.Read32(addr.EWRAM))
	assert.Equal(t, uint32(0), m.Read32(addr.IWRAM))
	assert.Equal(t, uint32(1), m.Read32(addr.IWRAM+addr.IWRAMSize-4), "stack area is kept")
	assert.Equal(t, uint16(0), m.Read16(addr.Palette))
	assert.Equal(t, uint16(1), m.Read16(addr.VRAM))

	m.ResetRegions(ResetOtherRegs)
	assert.Equal(t, uint16(0), m.IORead16(addr.DISPCNT))
	assert.Equal(t, uint16(0x4000), m.IORead16(addr.SIOCNT))
	assert.Equal(t, uint16(0x03FF), m.IORead16(addr.KEYINPUT))
}

func TestRegionBounds(t *testing.T) {
	m := New()
	for r := Region(0); int(r) < RegionCount; r++ {
		t.Run(r.String(), func(t *testing.T) {
			assert.Len(t, m.Region(r), r.Size())
			got, offset, ok := m.Locate(r.Base())
			require.True(t, ok)
			assert.Equal(t, r, got)
			assert.Zero(t, offset)
		})
	}
	assert.Equal(t, addr.VRAM, RegionVRAM.Base())
	assert.Equal(t, addr.OAMSize, RegionOAM.Size())
}
