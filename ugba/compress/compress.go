// Package compress produces the compressed streams understood by the BIOS
// decompression services. It is host-side asset tooling, the console never
// compresses anything.
package compress

import (
	"encoding/binary"
	"errors"

	"github.com/valerio/go-ugba/ugba/bios"
)

// MaxSize is the largest input a stream header can describe.
const MaxSize = 1<<24 - 1

var (
	// ErrTooLarge is returned for inputs that do not fit the 24-bit size field.
	ErrTooLarge = errors.New("compress: input larger than 16 MiB")
	// ErrTreeTooWide is returned when a Huffman tree cannot be laid out with
	// child offsets that fit the 6-bit node field.
	ErrTreeTooWide = errors.New("compress: huffman tree too wide")
	// ErrSymbolSize is returned for Huffman symbol sizes other than 4 and 8.
	ErrSymbolSize = errors.New("compress: huffman symbols must be 4 or 8 bits")
)

func header(kind, param uint8, size int) []byte {
	out := make([]byte, 4, 4+size)
	binary.LittleEndian.PutUint32(out, uint32(bios.MakeHeader(kind, param, size)))
	return out
}

// pad extends a stream to a multiple of 4 bytes.
func pad(out []byte) []byte {
	for len(out)%4 != 0 {
		out = append(out, 0)
	}
	return out
}

// RL run-length encodes data.
func RL(data []byte) ([]byte, error) {
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}
	out := header(bios.TypeRL, 0, len(data))

	var literal []byte
	flush := func() {
		for len(literal) > 0 {
			n := min(len(literal), 128)
			out = append(out, byte(n-1))
			out = append(out, literal[:n]...)
			literal = literal[n:]
		}
	}

	for i := 0; i < len(data); {
		run := 1
		for i+run < len(data) && data[i+run] == data[i] && run < 130 {
			run++
		}
		if run >= 3 {
			flush()
			out = append(out, 0x80|byte(run-3), data[i])
			i += run
			continue
		}
		literal = append(literal, data[i])
		i++
	}
	flush()
	return pad(out), nil
}

// Diff8 applies an 8-bit delta filter.
func Diff8(data []byte) ([]byte, error) {
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}
	out := header(bios.TypeDiff, 1, len(data))
	var prev byte
	for _, b := range data {
		out = append(out, b-prev)
		prev = b
	}
	return pad(out), nil
}

// Diff16 applies a 16-bit delta filter over little-endian halfwords. An odd
// trailing byte is treated as a halfword with a zero upper byte.
func Diff16(data []byte) ([]byte, error) {
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}
	out := header(bios.TypeDiff, 2, len(data))
	var prev uint16
	for i := 0; i < len(data); i += 2 {
		v := uint16(data[i])
		if i+1 < len(data) {
			v |= uint16(data[i+1]) << 8
		}
		out = binary.LittleEndian.AppendUint16(out, v-prev)
		prev = v
	}
	return pad(out), nil
}
