package host

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/lixenwraith/agb-ecs/gba"
)

// SaveService loads cartridge SRAM from a file at Init and writes it back at Stop
type SaveService struct {
	m    *gba.Machine
	path string
}

// NewSaveService persists m's SRAM at path; an empty path disables persistence
func NewSaveService(m *gba.Machine, path string) *SaveService {
	return &SaveService{m: m, path: path}
}

// Name implements service.Service
func (s *SaveService) Name() string {
	return "save"
}

// Dependencies implements service.Service
func (s *SaveService) Dependencies() []string {
	return nil
}

// Init implements service.Service. A missing file is a fresh cartridge.
func (s *SaveService) Init(...any) error {
	if s.path == "" {
		return nil
	}
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read save: %w", err)
	}
	if len(data) > gba.SRAMSize {
		return fmt.Errorf("save file %s is %d bytes, larger than SRAM", s.path, len(data))
	}
	s.m.LoadSave(data)
	return nil
}

// Start implements service.Service
func (s *SaveService) Start() error {
	return nil
}

// Stop implements service.Service; writes through a temporary file so a crash
// never leaves a truncated save
func (s *SaveService) Stop() error {
	if s.path == "" {
		return nil
	}
	tmp, err := os.CreateTemp(filepath.Dir(s.path), filepath.Base(s.path)+".*")
	if err != nil {
		return fmt.Errorf("write save: %w", err)
	}
	if _, err := tmp.Write(s.m.SaveData()); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return fmt.Errorf("write save: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return fmt.Errorf("write save: %w", err)
	}
	return os.Rename(tmp.Name(), s.path)
}
