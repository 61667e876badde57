package memory

import (
	"errors"
	"fmt"
	"io"
)

// ErrShortSave is returned when a save blob is smaller than the SRAM region.
var ErrShortSave = errors.New("memory: save data shorter than SRAM")

// FlushSave writes the whole SRAM region as an opaque blob.
func (m *Map) FlushSave(w io.Writer) error {
	if _, err := w.Write(m.regions[RegionSRAM]); err != nil {
		return fmt.Errorf("flushing save data: %w", err)
	}
	return nil
}

// RestoreSave replaces the SRAM region with a blob previously produced by
// FlushSave. SRAM is left untouched on error.
func (m *Map) RestoreSave(r io.Reader) error {
	buf := make([]byte, len(m.regions[RegionSRAM]))
	if _, err := io.ReadFull(r, buf); err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return ErrShortSave
		}
		return fmt.Errorf("restoring save data: %w", err)
	}
	copy(m.regions[RegionSRAM], buf)
	return nil
}
