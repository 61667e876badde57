package video

import (
	"image"

	"github.com/valerio/go-ugba/ugba/addr"
)

// Color is a 0xRRGGBBAA pixel.
type Color uint32

const (
	WhiteColor Color = 0xFFFFFFFF
	BlackColor Color = 0x000000FF
)

const (
	FramebufferWidth  = addr.ScreenWidth
	FramebufferHeight = addr.ScreenHeight
)

// RGB15 packs 5-bit components into a BGR555 value.
func RGB15(r, g, b uint8) uint16 {
	return uint16(r&31) | uint16(g&31)<<5 | uint16(b&31)<<10
}

// FromBGR555 expands a BGR555 palette value to an opaque Color.
func FromBGR555(c uint16) Color {
	r := uint32(c & 31)
	g := uint32(c >> 5 & 31)
	b := uint32(c >> 10 & 31)
	r = r<<3 | r>>2
	g = g<<3 | g>>2
	b = b<<3 | b>>2
	return Color(r<<24 | g<<16 | b<<8 | 0xFF)
}

// RGBA8 splits the color in its components.
func (c Color) RGBA8() (r, g, b, a uint8) {
	return uint8(c >> 24), uint8(c >> 16), uint8(c >> 8), uint8(c)
}

type FrameBuffer struct {
	width  int
	height int
	buffer []uint32
}

// NewFrameBuffer creates a frame buffer the size of the screen.
func NewFrameBuffer() *FrameBuffer {
	return &FrameBuffer{
		width:  FramebufferWidth,
		height: FramebufferHeight,
		buffer: make([]uint32, FramebufferWidth*FramebufferHeight),
	}
}

func (fb *FrameBuffer) Width() int  { return fb.width }
func (fb *FrameBuffer) Height() int { return fb.height }

func (fb *FrameBuffer) GetPixel(x, y int) uint32 {
	return fb.buffer[y*fb.width+x]
}

func (fb *FrameBuffer) SetPixel(x, y int, color Color) {
	fb.buffer[y*fb.width+x] = uint32(color)
}

// Row returns the pixels of line y.
func (fb *FrameBuffer) Row(y int) []uint32 {
	return fb.buffer[y*fb.width : (y+1)*fb.width]
}

func (fb *FrameBuffer) ToSlice() []uint32 {
	return fb.buffer
}

// Clone returns a copy that is safe to hand to another goroutine.
func (fb *FrameBuffer) Clone() *FrameBuffer {
	c := *fb
	c.buffer = append([]uint32(nil), fb.buffer...)
	return &c
}

// ToImage converts the frame to an image.RGBA.
func (fb *FrameBuffer) ToImage() *image.RGBA {
	img := image.NewRGBA(image.Rect(0, 0, fb.width, fb.height))
	for i, px := range fb.buffer {
		r, g, b, a := Color(px).RGBA8()
		img.Pix[i*4+0] = r
		img.Pix[i*4+1] = g
		img.Pix[i*4+2] = b
		img.Pix[i*4+3] = a
	}
	return img
}
