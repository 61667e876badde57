package main

import (
	"crypto/md5"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valerio/go-ugba/ugba/debug"
	"github.com/valerio/go-ugba/ugba/video"
)

// goldenFrames is how long each demo runs before its frame is compared.
const goldenFrames = 30

func frameBytes(fb *video.FrameBuffer) []byte {
	out := make([]byte, 0, len(fb.ToSlice())*4)
	for _, px := range fb.ToSlice() {
		out = binary.BigEndian.AppendUint32(out, px)
	}
	return out
}

func frameHash(fb *video.FrameBuffer) string {
	return fmt.Sprintf("%x", md5.Sum(frameBytes(fb)))
}

func TestDemosDeterministic(t *testing.T) {
	for _, name := range demoNames() {
		t.Run(name, func(t *testing.T) {
			_, first := runDemo(t, name, goldenFrames, nil)
			_, second := runDemo(t, name, goldenFrames, nil)
			assert.Equal(t, frameHash(first), frameHash(second))
		})
	}
}

// TestDemoSnapshots compares the frames against testdata/<demo>.bin. Run with
// UGBA_GENERATE_GOLDEN=true to write the reference data and PNG snapshots.
func TestDemoSnapshots(t *testing.T) {
	if testing.Short() {
		t.Skip("Skipping snapshot tests in short mode")
	}
	generate := os.Getenv("UGBA_GENERATE_GOLDEN") == "true"
	snapshots := filepath.Join("testdata", "snapshots")

	for _, name := range demoNames() {
		t.Run(name, func(t *testing.T) {
			_, fb := runDemo(t, name, goldenFrames, nil)
			data := frameBytes(fb)
			hash := frameHash(fb)
			dataPath := filepath.Join("testdata", name+".bin")

			if generate {
				require.NoError(t, os.MkdirAll(snapshots, 0o755))
				require.NoError(t, os.WriteFile(dataPath, data, 0o644))
				require.NoError(t, saveSnapshot(fb, filepath.Join(snapshots, name+".png")))
				t.Logf("Reference files generated - hash: %s", hash)
				return
			}

			expected, err := os.ReadFile(dataPath)
			if os.IsNotExist(err) {
				t.Skipf("no reference data at %s, generate it with UGBA_GENERATE_GOLDEN=true", dataPath)
			}
			require.NoError(t, err)

			if expectedHash := fmt.Sprintf("%x", md5.Sum(expected)); hash != expectedHash {
				actual := filepath.Join(snapshots, name+"_actual.png")
				if err := saveSnapshot(fb, actual); err != nil {
					t.Logf("could not save %s: %v", actual, err)
				}
				t.Errorf("frame differs from reference\n  expected hash: %s\n  actual hash:   %s\n  saved:         %s", expectedHash, hash, actual)
			}
		})
	}
}

func saveSnapshot(fb *video.FrameBuffer, path string) error {
	saved, err := debug.SaveFramePNGToDir(fb, "golden", filepath.Dir(path), 2)
	if err != nil {
		return err
	}
	return os.Rename(saved, path)
}
