package memory

import (
	"encoding/binary"
	"fmt"
	"log/slog"

	"github.com/valerio/go-ugba/ugba/addr"
)

// Region identifies one of the fixed memory areas of the console.
type Region uint8

const (
	RegionBIOS Region = iota
	RegionEWRAM
	RegionIWRAM
	RegionIO
	RegionPalette
	RegionVRAM
	RegionOAM
	RegionROM
	RegionSRAM
	regionUnmapped

	// RegionCount is the number of mapped regions.
	RegionCount = int(regionUnmapped)
)

var regionInfo = [RegionCount]struct {
	name string
	base uint32
	size int
}{
	RegionBIOS:    {"BIOS", addr.BIOS, addr.BIOSSize},
	RegionEWRAM:   {"EWRAM", addr.EWRAM, addr.EWRAMSize},
	RegionIWRAM:   {"IWRAM", addr.IWRAM, addr.IWRAMSize},
	RegionIO:      {"IO", addr.IO, addr.IOSize},
	RegionPalette: {"Palette", addr.Palette, addr.PaletteSize},
	RegionVRAM:    {"VRAM", addr.VRAM, addr.VRAMSize},
	RegionOAM:     {"OAM", addr.OAM, addr.OAMSize},
	RegionROM:     {"ROM", addr.ROM, addr.ROMSize},
	RegionSRAM:    {"SRAM", addr.SRAM, addr.SRAMSize},
}

func (r Region) String() string {
	if int(r) < RegionCount {
		return regionInfo[r].name
	}
	return "Unmapped"
}

// Base returns the bus address of the first byte of the region.
func (r Region) Base() uint32 {
	return regionInfo[r].base
}

// Size returns the fixed length of the region in bytes.
func (r Region) Size() int {
	return regionInfo[r].size
}

// vramBGSize is the part of VRAM where 8-bit writes are widened to halfwords.
const vramBGSize = 0x10000

// AccessError describes an access outside of any allocated region.
type AccessError struct {
	Op    string
	Addr  uint32
	Width int
}

func (e *AccessError) Error() string {
	return fmt.Sprintf("memory: %s%d out of range at 0x%08X", e.Op, e.Width, e.Addr)
}

// Map owns every memory region of one console. Regions are allocated once and
// never move or resize, so slices returned by Region stay valid for the life
// of the Map.
type Map struct {
	regions [RegionCount][]byte
	pageMap [16]Region
	strict  bool
}

// Option configures a Map.
type Option func(*Map)

// WithStrict makes out of range accesses panic with an *AccessError instead of
// being dropped with a warning. Meant for tests and debug builds.
func WithStrict() Option {
	return func(m *Map) { m.strict = true }
}

// New allocates all memory regions.
func New(opts ...Option) *Map {
	m := &Map{}
	for r := range m.regions {
		m.regions[r] = make([]byte, regionInfo[r].size)
	}
	initPageMap(m)
	for _, opt := range opts {
		opt(m)
	}
	return m
}

func initPageMap(m *Map) {
	for i := range m.pageMap {
		m.pageMap[i] = regionUnmapped
	}
	m.pageMap[0x0] = RegionBIOS
	m.pageMap[0x2] = RegionEWRAM
	m.pageMap[0x3] = RegionIWRAM
	m.pageMap[0x4] = RegionIO
	m.pageMap[0x5] = RegionPalette
	m.pageMap[0x6] = RegionVRAM
	m.pageMap[0x7] = RegionOAM
	// 32 MiB of ROM span two pages
	m.pageMap[0x8] = RegionROM
	m.pageMap[0x9] = RegionROM
	m.pageMap[0xE] = RegionSRAM
}

// Region returns the backing buffer of a region.
func (m *Map) Region(r Region) []byte {
	return m.regions[r]
}

// Strict reports whether out of range accesses panic.
func (m *Map) Strict() bool {
	return m.strict
}

// Locate translates a bus address into a region and an offset inside it.
// The boolean is false if the address is not backed by any region.
func (m *Map) Locate(address uint32) (Region, uint32, bool) {
	page := address >> 24
	if page >= uint32(len(m.pageMap)) {
		return regionUnmapped, 0, false
	}
	r := m.pageMap[page]
	if r == regionUnmapped {
		return r, 0, false
	}
	offset := address - regionInfo[r].base
	if offset >= uint32(regionInfo[r].size) {
		return r, 0, false
	}
	return r, offset, true
}

func (m *Map) fault(op string, address uint32, width int) {
	if m.strict {
		panic(&AccessError{Op: op, Addr: address, Width: width})
	}
	slog.Warn("Out of range memory access", "op", op, "addr", fmt.Sprintf("0x%08X", address), "width", width)
}

// slice returns the backing bytes for a width-sized access, or nil.
func (m *Map) slice(op string, address uint32, width int) (Region, []byte) {
	r, off, ok := m.Locate(address)
	if !ok || int(off)+width > regionInfo[r].size {
		m.fault(op, address, width)
		return regionUnmapped, nil
	}
	return r, m.regions[r][off : int(off)+width]
}

func (m *Map) Read8(address uint32) byte {
	_, b := m.slice("read", address, 1)
	if b == nil {
		return 0
	}
	return b[0]
}

// Read16 reads a halfword. The address is force-aligned to 2 bytes.
func (m *Map) Read16(address uint32) uint16 {
	address &^= 1
	r, b := m.slice("read", address, 2)
	if b == nil {
		return 0
	}
	if r == RegionSRAM {
		// 8-bit bus, the byte shows up in both lanes
		return uint16(b[0]) * 0x0101
	}
	return binary.LittleEndian.Uint16(b)
}

// Read32 reads a word. The address is force-aligned to 4 bytes.
func (m *Map) Read32(address uint32) uint32 {
	address &^= 3
	r, b := m.slice("read", address, 4)
	if b == nil {
		return 0
	}
	if r == RegionSRAM {
		return uint32(b[0]) * 0x01010101
	}
	return binary.LittleEndian.Uint32(b)
}

// Write8 stores a byte following the bus width rules of the hardware: BG VRAM
// and palette RAM widen the byte to both halves of the halfword, OBJ VRAM and
// OAM ignore byte writes, BIOS and ROM are read only.
func (m *Map) Write8(address uint32, value byte) {
	r, off, ok := m.Locate(address)
	if !ok {
		m.fault("write", address, 1)
		return
	}
	buf := m.regions[r]
	switch r {
	case RegionBIOS, RegionROM:
		slog.Debug("Ignored write to read only memory", "region", r, "addr", fmt.Sprintf("0x%08X", address))
	case RegionPalette:
		off &^= 1
		buf[off], buf[off+1] = value, value
	case RegionVRAM:
		if off >= vramBGSize {
			slog.Debug("Ignored 8-bit write to OBJ VRAM", "addr", fmt.Sprintf("0x%08X", address))
			return
		}
		off &^= 1
		buf[off], buf[off+1] = value, value
	case RegionOAM:
		slog.Debug("Ignored 8-bit write to OAM", "addr", fmt.Sprintf("0x%08X", address))
	default:
		buf[off] = value
	}
}

// Write16 stores a halfword. The address is force-aligned to 2 bytes.
func (m *Map) Write16(address uint32, value uint16) {
	original := address
	address &^= 1
	r, b := m.slice("write", address, 2)
	if b == nil {
		return
	}
	switch r {
	case RegionBIOS, RegionROM:
		slog.Debug("Ignored write to read only memory", "region", r, "addr", fmt.Sprintf("0x%08X", address))
	case RegionSRAM:
		b[original&1] = byte(value >> (8 * (original & 1)))
	default:
		binary.LittleEndian.PutUint16(b, value)
	}
}

// Write32 stores a word. The address is force-aligned to 4 bytes.
func (m *Map) Write32(address uint32, value uint32) {
	original := address
	address &^= 3
	r, b := m.slice("write", address, 4)
	if b == nil {
		return
	}
	switch r {
	case RegionBIOS, RegionROM:
		slog.Debug("Ignored write to read only memory", "region", r, "addr", fmt.Sprintf("0x%08X", address))
	case RegionSRAM:
		b[original&3] = byte(value >> (8 * (original & 3)))
	default:
		binary.LittleEndian.PutUint32(b, value)
	}
}

// IORead16 reads an I/O register by offset without any side effect.
func (m *Map) IORead16(offset uint32) uint16 {
	return m.Read16(addr.IO + offset)
}

// IOWrite16 stores an I/O register by offset without any side effect.
func (m *Map) IOWrite16(offset uint32, value uint16) {
	m.Write16(addr.IO+offset, value)
}

// IORead32 reads a 32-bit I/O register by offset without any side effect.
func (m *Map) IORead32(offset uint32) uint32 {
	return m.Read32(addr.IO + offset)
}

// IOWrite32 stores a 32-bit I/O register by offset without any side effect.
func (m *Map) IOWrite32(offset uint32, value uint32) {
	m.Write32(addr.IO+offset, value)
}

// Load copies data into a region starting at offset, bypassing the bus rules.
// It is how ROM and BIOS images get into read only memory.
func (m *Map) Load(r Region, offset uint32, data []byte) error {
	if int(offset)+len(data) > regionInfo[r].size {
		return fmt.Errorf("memory: %d bytes at offset 0x%X do not fit in %s (%d bytes)", len(data), offset, r, regionInfo[r].size)
	}
	copy(m.regions[r][offset:], data)
	return nil
}
