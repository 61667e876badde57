package bios

import "fmt"

// Compression types, stored in bits 4-7 of the stream header.
const (
	TypeLZ77    = 1
	TypeHuffman = 2
	TypeRL      = 3
	TypeDiff    = 8
)

// Header describes the first word of a compressed stream.
//   - Bits 0-3: type specific parameter (Huffman symbol size, Diff unit size)
//   - Bits 4-7: compression type
//   - Bits 8-31: size of the decompressed data in bytes
type Header uint32

// MakeHeader builds a stream header.
func MakeHeader(kind, param uint8, size int) Header {
	return Header(uint32(size)<<8 | uint32(kind&0xF)<<4 | uint32(param&0xF))
}

func (h Header) Type() uint8  { return uint8(h>>4) & 0xF }
func (h Header) Param() uint8 { return uint8(h) & 0xF }
func (h Header) Size() int    { return int(h >> 8) }

func readHeader(bus Bus, src uint32, kind uint8) (Header, error) {
	h := Header(bus.Read32(src))
	if h.Type() != kind {
		return h, fmt.Errorf("%w: type %d, want %d", ErrBadHeader, h.Type(), kind)
	}
	return h, nil
}

// reader walks a compressed stream byte by byte.
type reader struct {
	bus Bus
	pos uint32
}

func (r *reader) byte() byte {
	b := r.bus.Read8(r.pos)
	r.pos++
	return b
}

// store writes decoded data to the bus in units of width bytes. A trailing
// partial unit is padded with zeroes.
func store(bus Bus, dst uint32, data []byte, width int) {
	switch width {
	case 1:
		for i, b := range data {
			bus.Write8(dst+uint32(i), b)
		}
	case 2:
		for i := 0; i < len(data); i += 2 {
			v := uint16(data[i])
			if i+1 < len(data) {
				v |= uint16(data[i+1]) << 8
			}
			bus.Write16(dst+uint32(i), v)
		}
	case 4:
		for i := 0; i < len(data); i += 4 {
			var v uint32
			for j := 0; j < 4 && i+j < len(data); j++ {
				v |= uint32(data[i+j]) << (8 * j)
			}
			bus.Write32(dst+uint32(i), v)
		}
	default:
		panic(fmt.Sprintf("bios: invalid store width %d", width))
	}
}

func decodeLZ77(bus Bus, src uint32, size int) []byte {
	out := make([]byte, 0, size)
	r := reader{bus: bus, pos: src + 4}
	for len(out) < size {
		flags := r.byte()
		for i := 7; i >= 0 && len(out) < size; i-- {
			if flags&(1<<i) == 0 {
				out = append(out, r.byte())
				continue
			}
			b0, b1 := r.byte(), r.byte()
			length := int(b0>>4) + 3
			disp := (int(b0&0xF)<<8 | int(b1)) + 1
			start := len(out) - disp
			for j := 0; j < length && len(out) < size; j++ {
				var b byte
				// references before the start of the output read as zero
				if start+j >= 0 {
					b = out[start+j]
				}
				out = append(out, b)
			}
		}
	}
	return out
}

// LZ77UnCompWram decompresses LZ77 data with 8-bit writes. It returns the
// number of decompressed bytes.
func LZ77UnCompWram(bus Bus, src, dst uint32) (int, error) {
	return lz77(bus, src, dst, 1)
}

// LZ77UnCompVram decompresses LZ77 data with 16-bit writes, so it works with
// VRAM as destination.
func LZ77UnCompVram(bus Bus, src, dst uint32) (int, error) {
	return lz77(bus, src, dst, 2)
}

func lz77(bus Bus, src, dst uint32, width int) (int, error) {
	h, err := readHeader(bus, src, TypeLZ77)
	if err != nil {
		return 0, err
	}
	data := decodeLZ77(bus, src, h.Size())
	store(bus, dst, data, width)
	return len(data), nil
}

// HuffUnComp decompresses Huffman data with 32-bit writes. Symbols are 4 or 8
// bits wide, as stored in the header parameter.
//
// Stream layout after the header: tree size byte N, the tree ((N+1)*2-1 bytes,
// root first) and the bitstream as 32-bit words read from the most significant
// bit. Tree nodes hold the offset to their children in bits 0-5; bit 7 marks
// child 0 as a leaf and bit 6 does the same for child 1.
func HuffUnComp(bus Bus, src, dst uint32) (int, error) {
	h, err := readHeader(bus, src, TypeHuffman)
	if err != nil {
		return 0, err
	}
	symbolBits := int(h.Param())
	if symbolBits != 4 && symbolBits != 8 {
		return 0, fmt.Errorf("%w: huffman symbol size %d", ErrBadHeader, symbolBits)
	}

	size := h.Size()
	treeSize := uint32(bus.Read8(src+4)) + 1
	root := src + 5
	stream := src + 4 + treeSize*2

	out := make([]byte, 0, size)
	var acc uint32
	var accBits int
	node := root
	for len(out) < size {
		word := bus.Read32(stream)
		stream += 4
		for bit := 31; bit >= 0 && len(out) < size; bit-- {
			dir := (word >> bit) & 1
			n := bus.Read8(node)
			child := node&^1 + uint32(n&0x3F)*2 + 2 + dir
			leaf := n&(0x80>>dir) != 0
			if !leaf {
				node = child
				continue
			}
			node = root
			acc |= uint32(bus.Read8(child)) << accBits
			accBits += symbolBits
			if accBits == 8 {
				out = append(out, byte(acc))
				acc, accBits = 0, 0
			}
		}
	}
	store(bus, dst, out, 4)
	return len(out), nil
}

func decodeRL(bus Bus, src uint32, size int) []byte {
	out := make([]byte, 0, size)
	r := reader{bus: bus, pos: src + 4}
	for len(out) < size {
		flag := r.byte()
		if flag&0x80 != 0 {
			n := int(flag&0x7F) + 3
			b := r.byte()
			for i := 0; i < n && len(out) < size; i++ {
				out = append(out, b)
			}
			continue
		}
		n := int(flag&0x7F) + 1
		for i := 0; i < n && len(out) < size; i++ {
			out = append(out, r.byte())
		}
	}
	return out
}

// RLUnCompWram decompresses run-length data with 8-bit writes.
func RLUnCompWram(bus Bus, src, dst uint32) (int, error) {
	return rl(bus, src, dst, 1)
}

// RLUnCompVram decompresses run-length data with 16-bit writes.
func RLUnCompVram(bus Bus, src, dst uint32) (int, error) {
	return rl(bus, src, dst, 2)
}

func rl(bus Bus, src, dst uint32, width int) (int, error) {
	h, err := readHeader(bus, src, TypeRL)
	if err != nil {
		return 0, err
	}
	data := decodeRL(bus, src, h.Size())
	store(bus, dst, data, width)
	return len(data), nil
}

// Diff8bitUnFilterWram undoes an 8-bit delta filter with 8-bit writes.
func Diff8bitUnFilterWram(bus Bus, src, dst uint32) (int, error) {
	return diff8(bus, src, dst, 1)
}

// Diff8bitUnFilterVram undoes an 8-bit delta filter with 16-bit writes.
func Diff8bitUnFilterVram(bus Bus, src, dst uint32) (int, error) {
	return diff8(bus, src, dst, 2)
}

func diff8(bus Bus, src, dst uint32, width int) (int, error) {
	h, err := readHeader(bus, src, TypeDiff)
	if err != nil {
		return 0, err
	}
	if h.Param() != 1 {
		return 0, fmt.Errorf("%w: diff unit size %d, want 1", ErrBadHeader, h.Param())
	}
	out := make([]byte, h.Size())
	var prev byte
	for i := range out {
		prev += bus.Read8(src + 4 + uint32(i))
		out[i] = prev
	}
	store(bus, dst, out, width)
	return len(out), nil
}

// Diff16bitUnFilter undoes a 16-bit delta filter with 16-bit writes.
func Diff16bitUnFilter(bus Bus, src, dst uint32) (int, error) {
	h, err := readHeader(bus, src, TypeDiff)
	if err != nil {
		return 0, err
	}
	if h.Param() != 2 {
		return 0, fmt.Errorf("%w: diff unit size %d, want 2", ErrBadHeader, h.Param())
	}
	// an odd trailing byte is stored as a halfword with a zero upper byte
	size := h.Size()
	var prev uint16
	for i := 0; i < size; i += 2 {
		prev += bus.Read16(src + 4 + uint32(i))
		if i+1 == size {
			prev &= 0xFF
		}
		bus.Write16(dst+uint32(i), prev)
	}
	return size, nil
}

// BitUnPackInfo describes a BitUnPack operation.
type BitUnPackInfo struct {
	// SrcLen is the length of the source data in bytes.
	SrcLen uint16
	// SrcWidth is the source unit size in bits: 1, 2, 4 or 8.
	SrcWidth uint8
	// DstWidth is the destination unit size in bits: 1, 2, 4, 8, 16 or 32.
	DstWidth uint8
	// Offset is added to every unit. Zero units only get it if ZeroData is set.
	Offset   uint32
	ZeroData bool
}

// BitUnPackInfoSize is the size of the packed info structure.
const BitUnPackInfoSize = 8

// ReadBitUnPackInfo decodes the packed info structure at address.
func ReadBitUnPackInfo(bus Bus, address uint32) BitUnPackInfo {
	offset := bus.Read32(address + 4)
	return BitUnPackInfo{
		SrcLen:   bus.Read16(address),
		SrcWidth: bus.Read8(address + 2),
		DstWidth: bus.Read8(address + 3),
		Offset:   offset & 0x7FFFFFFF,
		ZeroData: offset&0x80000000 != 0,
	}
}

// BitUnPack widens every unit of the source into a destination unit, adding
// the offset, and writes the result with 32-bit stores. It returns the number
// of bytes written.
func BitUnPack(bus Bus, src, dst uint32, info BitUnPackInfo) (int, error) {
	switch info.SrcWidth {
	case 1, 2, 4, 8:
	default:
		return 0, fmt.Errorf("%w: source width %d", ErrBadUnpackInfo, info.SrcWidth)
	}
	switch info.DstWidth {
	case 1, 2, 4, 8, 16, 32:
	default:
		return 0, fmt.Errorf("%w: destination width %d", ErrBadUnpackInfo, info.DstWidth)
	}
	if info.DstWidth < info.SrcWidth {
		return 0, fmt.Errorf("%w: destination narrower than source", ErrBadUnpackInfo)
	}

	srcMask := uint32(1)<<info.SrcWidth - 1
	dstMask := uint32(1)<<info.DstWidth - 1
	if info.DstWidth == 32 {
		dstMask = 0xFFFFFFFF
	}

	written := 0
	var acc uint32
	var accBits uint8
	for i := 0; i < int(info.SrcLen); i++ {
		b := uint32(bus.Read8(src + uint32(i)))
		for shift := uint8(0); shift < 8; shift += info.SrcWidth {
			unit := (b >> shift) & srcMask
			if unit != 0 || info.ZeroData {
				unit += info.Offset
			}
			acc |= (unit & dstMask) << accBits
			accBits += info.DstWidth
			if accBits >= 32 {
				bus.Write32(dst+uint32(written), acc)
				written += 4
				acc, accBits = 0, 0
			}
		}
	}
	return written, nil
}
