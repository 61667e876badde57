package debug

import (
	"fmt"

	"github.com/valerio/go-ugba/ugba/addr"
	"github.com/valerio/go-ugba/ugba/video"
)

type SpriteInfo struct {
	Index     int
	Sprite    video.Sprite
	IsVisible bool
}

type OAMData struct {
	Sprites       []SpriteInfo
	CurrentLine   int
	ActiveSprites int
}

// ExtractOAMData decodes every OAM entry and marks the ones covering
// currentLine.
func ExtractOAMData(v *video.Video, currentLine int) *OAMData {
	data := &OAMData{CurrentLine: currentLine}
	for _, s := range v.Sprites() {
		info := SpriteInfo{Index: s.OAMIndex, Sprite: s}
		if !s.Hidden && currentLine < addr.ScreenHeight {
			_, h := s.Bounds()
			// Y wraps at 256
			dy := (currentLine - s.Y) & 0xFF
			info.IsVisible = dy < h
		}
		if info.IsVisible {
			data.ActiveSprites++
		}
		data.Sprites = append(data.Sprites, info)
	}
	return data
}

func (s *SpriteInfo) String() string {
	status := "OFF"
	if s.IsVisible {
		status = "ACTIVE"
	} else if s.Sprite.Hidden {
		status = "HIDDEN"
	}
	w, h := s.Sprite.Bounds()
	kind := "regular"
	if s.Sprite.Affine {
		kind = fmt.Sprintf("affine#%d", s.Sprite.AffineIndex)
	}
	return fmt.Sprintf("Sprite %3d: X=%4d Y=%3d %2dx%-2d Tile=0x%03X Pal=%2d Prio=%d %s [%s]",
		s.Index, s.Sprite.X, s.Sprite.Y, w, h, s.Sprite.Tile, s.Sprite.Palette, s.Sprite.Priority, kind, status)
}

func (data *OAMData) GetVisibleSprites() []SpriteInfo {
	visible := make([]SpriteInfo, 0, data.ActiveSprites)
	for _, sprite := range data.Sprites {
		if sprite.IsVisible {
			visible = append(visible, sprite)
		}
	}
	return visible
}

func (data *OAMData) FormatSummary() string {
	return fmt.Sprintf("Current Line: %d | Active Sprites: %d/%d", data.CurrentLine, data.ActiveSprites, video.SpriteCount)
}
