package ugba

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
)

// SaveFile writes SRAM to path.
func (c *Console) SaveFile(path string) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating save file: %w", err)
	}
	if err := c.mem.FlushSave(f); err != nil {
		f.Close()
		return fmt.Errorf("writing save file: %w", err)
	}
	return f.Close()
}

// LoadSaveFile restores SRAM from path. A missing file leaves SRAM blank and
// is not an error.
func (c *Console) LoadSaveFile(path string) error {
	f, err := os.Open(path)
	if errors.Is(err, fs.ErrNotExist) {
		slog.Info("No save file, starting blank", "path", path)
		return nil
	}
	if err != nil {
		return fmt.Errorf("opening save file: %w", err)
	}
	defer f.Close()

	if err := c.mem.RestoreSave(f); err != nil {
		return fmt.Errorf("reading save file %s: %w", path, err)
	}
	return nil
}
