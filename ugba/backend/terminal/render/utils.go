package render

import (
	"image"

	"github.com/gdamore/tcell/v2"
	"golang.org/x/image/draw"

	"github.com/valerio/go-ugba/ugba/video"
)

// HalfBlock is the glyph used to draw two pixels per cell: the foreground
// color paints the top half, the background the bottom half.
const HalfBlock = '▀'

// FitFrame scales the frame to fit in cols x rows cells (two pixel rows per
// cell), keeping the aspect ratio. A frame that already fits is returned at
// its native size.
func FitFrame(frame *video.FrameBuffer, cols, rows int) *image.RGBA {
	src := frame.ToImage()
	w, h := src.Bounds().Dx(), src.Bounds().Dy()
	maxH := rows * 2
	if w <= cols && h <= maxH {
		return src
	}
	// fit by the tighter dimension
	dw, dh := cols, cols*h/w
	if dh > maxH {
		dw, dh = maxH*w/h, maxH
	}
	if dw < 1 || dh < 1 {
		return image.NewRGBA(image.Rect(0, 0, 0, 0))
	}
	dst := image.NewRGBA(image.Rect(0, 0, dw, dh))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// CellColor returns the tcell color of pixel (x, y), black outside the
// image.
func CellColor(img *image.RGBA, x, y int) tcell.Color {
	if !(image.Point{X: x, Y: y}.In(img.Bounds())) {
		return tcell.ColorBlack
	}
	off := img.PixOffset(x, y)
	p := img.Pix[off : off+3 : off+3]
	return tcell.NewRGBColor(int32(p[0]), int32(p[1]), int32(p[2]))
}

// HalfBlockStyle returns the style of the cell covering pixel rows y and
// y+1 at column x.
func HalfBlockStyle(img *image.RGBA, x, y int) tcell.Style {
	return tcell.StyleDefault.Foreground(CellColor(img, x, y)).Background(CellColor(img, x, y+1))
}
