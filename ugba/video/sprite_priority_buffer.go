package video

// objLine holds the sprite pixels of the line being composed and which
// sprite owns each of them.
//
// Among overlapping opaque sprite pixels the one with the lowest priority
// value is kept; on equal priority the lower OAM index wins.
//
// Example: overlap with equal priority
//
//	Pixels:     0  1  2  3  4  5  6  7  8  9 10 11 12 13 14 15 16 17
//	Sprite 0:                  [-----A-----]                    (prio 1)
//	Sprite 1:                           [-----B-----]           (prio 1)
//	Result:                    [-----A-----]--B-----]
//
// Example: a later sprite with a lower priority value
//
//	Sprite 2:           [-----C-----]                           (prio 2)
//	Sprite 7:                 [-----D-----]                     (prio 0)
//	Result:             [--C--[-----D-----]
//
// Sprites are claimed in OAM order, so the tie rule only needs a strict
// comparison of priorities.
//
// Priority between sprites and backgrounds is resolved later by the
// compositor using the priority stored for each pixel.
type objLine struct {
	color [FramebufferWidth]int32
	prio  [FramebufferWidth]uint8
	owner [FramebufferWidth]int
}

// Clear resets the buffer for a new scanline
func (o *objLine) Clear() {
	for i := range FramebufferWidth {
		o.color[i] = transparent
		o.prio[i] = 4
		o.owner[i] = -1
	}
}

// TryClaimPixel attempts to claim a pixel for a sprite. Returns true if the
// sprite wins and the pixel takes its color.
func (o *objLine) TryClaimPixel(x, spriteIndex, priority int, color int32) bool {
	if x < 0 || x >= FramebufferWidth {
		return false
	}
	if o.owner[x] != -1 && priority >= int(o.prio[x]) {
		return false
	}
	o.owner[x] = spriteIndex
	o.prio[x] = uint8(priority)
	o.color[x] = color
	return true
}

// GetOwner returns the sprite index that owns a pixel, or -1 if none
func (o *objLine) GetOwner(x int) int {
	if x < 0 || x >= FramebufferWidth {
		return -1
	}
	return o.owner[x]
}
