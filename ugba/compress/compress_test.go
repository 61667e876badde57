package compress

import (
	"math/rand"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ugba/ugba/bios"
)

const (
	srcBase = 0x08000000
	dstBase = 0x02000000
)

func inputs() map[string][]byte {
	rng := rand.New(rand.NewSource(1))
	noise := make([]byte, 4096)
	rng.Read(noise)

	tiles := make([]byte, 8192)
	for i := range tiles {
		tiles[i] = byte((i / 7) % 5 * 17)
	}

	return map[string][]byte{
		"empty":       {},
		"single byte": {0x42},
		"odd length":  []byte("hello"),
		"text":        []byte(strings.Repeat("the quick brown fox jumps over the lazy dog. ", 100)),
		"tiles":       tiles,
		"noise":       noise,
	}
}

type decoder func(bios.Bus, uint32, uint32) (int, error)

func roundTrip(t *testing.T, stream, want []byte, decode decoder) {
	t.Helper()
	src := bios.NewBuffer(srcBase, len(stream)+4)
	src.Put(srcBase, stream)

	dst := bios.NewBuffer(dstBase, len(want)+4)
	bus := &splitBus{src: src, dst: dst}

	n, err := decode(bus, srcBase, dstBase)
	require.NoError(t, err)
	assert.Equal(t, len(want), n)
	assert.Equal(t, want, dst.Bytes(dstBase, len(want)))
}

// splitBus routes reads of the ROM page to src and everything else to dst.
type splitBus struct {
	src, dst *bios.Buffer
}

func (b *splitBus) pick(address uint32) *bios.Buffer {
	if address >= srcBase {
		return b.src
	}
	return b.dst
}

func (b *splitBus) Read8(a uint32) byte        { return b.pick(a).Read8(a) }
func (b *splitBus) Read16(a uint32) uint16     { return b.pick(a).Read16(a) }
func (b *splitBus) Read32(a uint32) uint32     { return b.pick(a).Read32(a) }
func (b *splitBus) Write8(a uint32, v byte)    { b.pick(a).Write8(a, v) }
func (b *splitBus) Write16(a uint32, v uint16) { b.pick(a).Write16(a, v) }
func (b *splitBus) Write32(a uint32, v uint32) { b.pick(a).Write32(a, v) }

func TestRoundTrip(t *testing.T) {
	schemes := []struct {
		name     string
		compress func([]byte) ([]byte, error)
		decode   []decoder
	}{
		{"LZ77", func(d []byte) ([]byte, error) { return LZ77(d, false) }, []decoder{bios.LZ77UnCompWram, bios.LZ77UnCompVram}},
		{"LZ77 VRAM safe", func(d []byte) ([]byte, error) { return LZ77(d, true) }, []decoder{bios.LZ77UnCompWram, bios.LZ77UnCompVram}},
		{"RL", RL, []decoder{bios.RLUnCompWram, bios.RLUnCompVram}},
		{"Huffman 4-bit", func(d []byte) ([]byte, error) { return Huffman(d, 4) }, []decoder{bios.HuffUnComp}},
		{"Diff8", Diff8, []decoder{bios.Diff8bitUnFilterWram, bios.Diff8bitUnFilterVram}},
		{"Diff16", Diff16, []decoder{bios.Diff16bitUnFilter}},
	}

	for _, s := range schemes {
		for name, data := range inputs() {
			t.Run(s.name+"/"+name, func(t *testing.T) {
				stream, err := s.compress(data)
				require.NoError(t, err)
				assert.Zero(t, len(stream)%4, "streams are word aligned")
				for _, decode := range s.decode {
					roundTrip(t, stream, data, decode)
				}
			})
		}
	}
}

func TestHuffman8Bit(t *testing.T) {
	for name, data := range inputs() {
		if name == "noise" {
			continue
		}
		t.Run(name, func(t *testing.T) {
			stream, err := Huffman(data, 8)
			require.NoError(t, err)
			roundTrip(t, stream, data, bios.HuffUnComp)
		})
	}

	t.Run("bad symbol size", func(t *testing.T) {
		_, err := Huffman([]byte{1}, 6)
		assert.ErrorIs(t, err, ErrSymbolSize)
	})
}

func TestCompressionRatio(t *testing.T) {
	data := inputs()["tiles"]

	lz, err := LZ77(data, true)
	require.NoError(t, err)
	assert.Less(t, len(lz), len(data)/4)

	rl, err := RL(data)
	require.NoError(t, err)
	assert.Less(t, len(rl), len(data)/2)
}

func TestVRAMSafeLZ77(t *testing.T) {
	data := make([]byte, 64)
	stream, err := LZ77(data, true)
	require.NoError(t, err)

	// walk the stream and check that no reference points at the previous byte
	pos, out := 4, 0
	for out < len(data) {
		flags := stream[pos]
		pos++
		for i := 7; i >= 0 && out < len(data); i-- {
			if flags&(1<<i) == 0 {
				pos++
				out++
				continue
			}
			disp := (int(stream[pos]&0xF)<<8 | int(stream[pos+1])) + 1
			assert.GreaterOrEqual(t, disp, 2)
			out += int(stream[pos]>>4) + 3
			pos += 2
		}
	}
}
