package gba

import (
	"errors"
	"fmt"
	"io"
)

var (
	// ErrSaveUninitialized is returned by Access before a save type is selected
	ErrSaveUninitialized = errors.New("gba: save media not initialized")
	// ErrSaveOutOfBounds is returned for writes past the end of save media
	ErrSaveOutOfBounds = errors.New("gba: save access out of bounds")
)

// SaveManager selects the cartridge save media and grants access to it
type SaveManager struct {
	m    *Machine
	sram bool
}

// InitSram selects 32KB battery-backed SRAM
func (s *SaveManager) InitSram() {
	s.sram = true
}

// Access opens the save media; it implements io.ReaderAt and io.WriterAt
func (s *SaveManager) Access() (*SaveData, error) {
	if !s.sram {
		return nil, ErrSaveUninitialized
	}
	return &SaveData{m: s.m}, nil
}

// SaveData is an open handle to save media
type SaveData struct {
	m *Machine
}

// Len returns the media size in bytes
func (d *SaveData) Len() int {
	return SRAMSize
}

// ReadAt reads from SRAM; reads crossing the end return io.EOF with the partial count
func (d *SaveData) ReadAt(p []byte, off int64) (int, error) {
	if off < 0 || off >= SRAMSize {
		return 0, io.EOF
	}
	n := 0
	for n < len(p) && off+int64(n) < SRAMSize {
		p[n] = d.m.Read8(SRAMStart + uint32(off) + uint32(n))
		n++
	}
	if n < len(p) {
		return n, io.EOF
	}
	return n, nil
}

// WriteAt writes to SRAM; writes must fit entirely
func (d *SaveData) WriteAt(p []byte, off int64) (int, error) {
	if off < 0 || off+int64(len(p)) > SRAMSize {
		return 0, fmt.Errorf("write %d bytes at %d: %w", len(p), off, ErrSaveOutOfBounds)
	}
	for i, b := range p {
		d.m.Write8(SRAMStart+uint32(off)+uint32(i), b)
	}
	return len(p), nil
}
