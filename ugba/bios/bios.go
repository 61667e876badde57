// Package bios reimplements the BIOS services in software: division, square
// root, arc tangent, memory copies, decompression and affine matrix setup.
//
// Pure math helpers take plain values. Everything that reads or writes memory
// goes through a Bus, so the same code runs over the console memory map or over
// a flat Buffer in host-side tests.
package bios

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// ChecksumGBA is the value GetBiosChecksum returns on GBA, GBA SP and GB Micro.
const ChecksumGBA uint32 = 0xBAAE187F

// ChecksumNDS is the value returned by the NDS in GBA mode.
const ChecksumNDS uint32 = 0xBAAE1880

var (
	// ErrBadHeader is returned when a compressed stream header does not match
	// the decompressor it was passed to.
	ErrBadHeader = errors.New("bios: compressed data header does not match")
	// ErrBadUnpackInfo is returned by BitUnPack for unsupported bit widths.
	ErrBadUnpackInfo = errors.New("bios: invalid bit unpack parameters")
)

// Bus is the memory the bus-bound services operate on. Both the console bus
// and Buffer implement it.
type Bus interface {
	Read8(address uint32) byte
	Read16(address uint32) uint16
	Read32(address uint32) uint32
	Write8(address uint32, value byte)
	Write16(address uint32, value uint16)
	Write32(address uint32, value uint32)
}

// Buffer is a flat little-endian memory starting at Base. Accesses outside of
// it panic.
type Buffer struct {
	Base uint32
	Data []byte
}

// NewBuffer allocates a zeroed buffer of size bytes mapped at base.
func NewBuffer(base uint32, size int) *Buffer {
	return &Buffer{Base: base, Data: make([]byte, size)}
}

// Bytes returns n bytes starting at address.
func (b *Buffer) Bytes(address uint32, n int) []byte {
	return b.at(address, n)
}

// Put copies data into the buffer at address.
func (b *Buffer) Put(address uint32, data []byte) {
	copy(b.at(address, len(data)), data)
}

func (b *Buffer) at(address uint32, n int) []byte {
	off := int64(address) - int64(b.Base)
	if off < 0 || off+int64(n) > int64(len(b.Data)) {
		panic(fmt.Sprintf("bios: buffer access of %d bytes at 0x%08X out of range", n, address))
	}
	return b.Data[off : off+int64(n)]
}

func (b *Buffer) Read8(address uint32) byte {
	return b.at(address, 1)[0]
}

func (b *Buffer) Read16(address uint32) uint16 {
	return binary.LittleEndian.Uint16(b.at(address&^1, 2))
}

func (b *Buffer) Read32(address uint32) uint32 {
	return binary.LittleEndian.Uint32(b.at(address&^3, 4))
}

func (b *Buffer) Write8(address uint32, value byte) {
	b.at(address, 1)[0] = value
}

func (b *Buffer) Write16(address uint32, value uint16) {
	binary.LittleEndian.PutUint16(b.at(address&^1, 2), value)
}

func (b *Buffer) Write32(address uint32, value uint32) {
	binary.LittleEndian.PutUint32(b.at(address&^3, 4), value)
}

// Checksum returns the checksum of the emulated BIOS.
func Checksum() uint32 {
	return ChecksumGBA
}

// Resetter clears memory regions selected by RegisterRamReset flags.
type Resetter interface {
	ResetRegions(flags uint8)
}

// RegisterRamReset clears the memory regions and register groups selected by
// flags (see memory.ResetEWRAM and friends).
func RegisterRamReset(r Resetter, flags uint8) {
	r.ResetRegions(flags)
}
