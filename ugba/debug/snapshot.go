package debug

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"golang.org/x/image/draw"

	"github.com/valerio/go-ugba/ugba/video"
)

// TakeSnapshot handles the snapshot key for backends: the frame is saved in
// the working directory at scale 1.
func TakeSnapshot(frame *video.FrameBuffer) {
	if frame == nil {
		slog.Warn("No frame data available for snapshot")
		return
	}
	if _, err := SaveFramePNGToDir(frame, "ugba_snapshot", "", 1); err != nil {
		slog.Error("Failed to save snapshot", "error", err)
	}
}

// ScaleFrame returns the frame as an image enlarged by an integer factor
// with nearest neighbour sampling, so pixels stay sharp.
func ScaleFrame(frame *video.FrameBuffer, scale int) *image.RGBA {
	src := frame.ToImage()
	if scale <= 1 {
		return src
	}
	dst := image.NewRGBA(image.Rect(0, 0, src.Bounds().Dx()*scale, src.Bounds().Dy()*scale))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Src, nil)
	return dst
}

// SaveFramePNGToDir saves a framebuffer as PNG with a timestamp suffix in
// directory (the working directory when empty) and returns the file path.
func SaveFramePNGToDir(frame *video.FrameBuffer, baseName, directory string, scale int) (string, error) {
	img := ScaleFrame(frame, scale)

	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.png", baseName, timestamp)

	outputDir := directory
	if outputDir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("failed to get current directory: %w", err)
		}
		outputDir = cwd
	}

	filePath := filepath.Join(outputDir, filename)
	file, err := os.Create(filePath)
	if err != nil {
		return "", fmt.Errorf("failed to create file %s: %w", filePath, err)
	}
	defer file.Close()

	if err := png.Encode(file, img); err != nil {
		return "", fmt.Errorf("failed to encode PNG: %w", err)
	}

	slog.Info("Snapshot saved", "path", filePath, "size", fmt.Sprintf("%dx%d", img.Bounds().Dx(), img.Bounds().Dy()), "format", "PNG")
	return filePath, nil
}
