package compress

import "github.com/valerio/go-ugba/ugba/bios"

const (
	lzWindow    = 0x1000
	lzMinMatch  = 3
	lzMaxMatch  = 0x12
	lzBlockSize = 8
)

// LZ77 compresses data with a greedy longest-match search. With vramSafe set
// no back reference points at the previous byte, so the stream can be
// decompressed with 16-bit writes by the real BIOS.
func LZ77(data []byte, vramSafe bool) ([]byte, error) {
	if len(data) > MaxSize {
		return nil, ErrTooLarge
	}
	out := header(bios.TypeLZ77, 0, len(data))

	minDisp := 1
	if vramSafe {
		minDisp = 2
	}

	flagPos := -1
	block := lzBlockSize
	for i := 0; i < len(data); {
		if block == lzBlockSize {
			flagPos = len(out)
			out = append(out, 0)
			block = 0
		}

		length, disp := longestMatch(data, i, minDisp)
		if length >= lzMinMatch {
			out[flagPos] |= 0x80 >> block
			d := disp - 1
			out = append(out, byte(length-lzMinMatch)<<4|byte(d>>8), byte(d))
			i += length
		} else {
			out = append(out, data[i])
			i++
		}
		block++
	}
	return pad(out), nil
}

func longestMatch(data []byte, pos, minDisp int) (length, disp int) {
	maxLen := min(lzMaxMatch, len(data)-pos)
	if maxLen < lzMinMatch {
		return 0, 0
	}
	for d := minDisp; d <= lzWindow && d <= pos; d++ {
		start := pos - d
		n := 0
		for n < maxLen && data[start+n] == data[pos+n] {
			n++
		}
		if n > length {
			length, disp = n, d
			if n == maxLen {
				break
			}
		}
	}
	return length, disp
}
