package render

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ugba/ugba/video"
)

func TestLogBuffer(t *testing.T) {
	lb := NewLogBuffer(3)
	assert.Nil(t, lb.GetRecent(0))

	for _, msg := range []string{"a", "b", "c", "d"} {
		lb.Add(LogEntry{Message: msg})
	}

	recent := lb.GetRecent(0)
	require.Len(t, recent, 3)
	assert.Equal(t, []string{"d", "c", "b"}, []string{recent[0].Message, recent[1].Message, recent[2].Message})
	assert.Len(t, lb.GetRecent(2), 2)

	lb.Clear()
	assert.Nil(t, lb.GetRecent(0))
}

func TestLogBufferHandler(t *testing.T) {
	lb := NewLogBuffer(10)
	logger := slog.New(NewLogBufferHandler(lb, slog.LevelInfo))

	logger.Debug("dropped")
	logger.With("channel", 0).WithGroup("dma").Info("armed", "timing", "HBlank")

	entries := lb.GetRecent(0)
	require.Len(t, entries, 1)
	assert.Equal(t, "armed channel=0 dma.timing=HBlank", entries[0].Message)

	h := NewLogBufferHandler(lb, slog.LevelWarn)
	assert.False(t, h.Enabled(context.Background(), slog.LevelInfo))
	assert.True(t, h.Enabled(context.Background(), slog.LevelError))
}

func TestFormatLogEntry(t *testing.T) {
	at := time.Date(2024, 1, 1, 13, 4, 5, 0, time.UTC)
	tests := []struct {
		level slog.Level
		want  string
	}{
		{slog.LevelDebug, "13:04:05 [DBG] hi"},
		{slog.LevelInfo, "13:04:05 [INF] hi"},
		{slog.LevelWarn, "13:04:05 [WRN] hi"},
		{slog.LevelError + 4, "13:04:05 [ERR] hi"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, FormatLogEntry(LogEntry{Time: at, Level: tt.level, Message: "hi"}))
	}
}

func TestFitFrame(t *testing.T) {
	fb := video.NewFrameBuffer()
	fb.SetPixel(0, 0, video.FromBGR555(video.RGB15(31, 0, 0)))

	t.Run("native size", func(t *testing.T) {
		img := FitFrame(fb, 240, 80)
		assert.Equal(t, 240, img.Bounds().Dx())
		assert.Equal(t, 160, img.Bounds().Dy())
		assert.Equal(t, tcell.NewRGBColor(255, 0, 0), CellColor(img, 0, 0))
		assert.Equal(t, tcell.ColorBlack, CellColor(img, 0, 160))
	})

	t.Run("limited by width", func(t *testing.T) {
		img := FitFrame(fb, 120, 80)
		assert.Equal(t, 120, img.Bounds().Dx())
		assert.Equal(t, 80, img.Bounds().Dy())
	})

	t.Run("limited by height", func(t *testing.T) {
		img := FitFrame(fb, 200, 30)
		assert.Equal(t, 90, img.Bounds().Dx())
		assert.Equal(t, 60, img.Bounds().Dy())
	})
}
