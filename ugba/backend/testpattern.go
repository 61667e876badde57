package backend

import "github.com/valerio/go-ugba/ugba/video"

// TestPatternCount is the number of patterns TestPattern can draw.
const TestPatternCount = 4

// Test pattern geometry and animation.
const (
	TestPatternTileSize        = 8
	TestPatternStripeWidth     = 16
	TestPatternAnimationFrames = 4
)

var patternNames = [TestPatternCount]string{"checkerboard", "gradient", "stripes", "colorbars"}

// TestPatternName returns the name of pattern kind.
func TestPatternName(kind int) string {
	return patternNames[kind%TestPatternCount]
}

var colorBars = [8]uint16{
	0x7FFF, // white
	0x03FF, // yellow
	0x7FE0, // cyan
	0x03E0, // green
	0x7C1F, // magenta
	0x001F, // red
	0x7C00, // blue
	0x0000, // black
}

// TestPattern draws pattern kind into fb. frame animates the moving
// patterns.
func TestPattern(fb *video.FrameBuffer, kind, frame int) {
	shift := frame / TestPatternAnimationFrames
	for y := 0; y < fb.Height(); y++ {
		for x := 0; x < fb.Width(); x++ {
			var c video.Color
			switch kind % TestPatternCount {
			case 0:
				if (x/TestPatternTileSize+y/TestPatternTileSize)%2 == 0 {
					c = video.WhiteColor
				} else {
					c = video.BlackColor
				}
			case 1:
				// red across, blue down
				r := uint8(x * 32 / fb.Width())
				b := uint8(y * 32 / fb.Height())
				c = video.FromBGR555(video.RGB15(r, 0, b))
			case 2:
				if ((x+shift)/TestPatternStripeWidth)%2 == 0 {
					c = video.WhiteColor
				} else {
					c = video.FromBGR555(0x0210)
				}
			case 3:
				c = video.FromBGR555(colorBars[(x*len(colorBars)/fb.Width()+shift)%len(colorBars)])
			}
			fb.SetPixel(x, y, c)
		}
	}
}
