// Package loader handles ROM file loading operations.
package loader

import (
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/arch/system/nes/cartridge"
)

// ErrEmptyROM is returned for ROM files without content.
var ErrEmptyROM = errors.New("empty ROM")

// Loader handles loading ROM files from disk.
type Loader struct{}

// New creates a new ROM loader.
func New() *Loader {
	return &Loader{}
}

// Load reads a raw CHIP-8 ROM file. CHIP-8 ROMs have no header, the whole
// file is the program that gets loaded at chip8.ProgramStart.
func (l *Loader) Load(path string) ([]byte, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("opening file %s: %w", path, err)
	}
	defer func() { _ = file.Close() }()

	rom, err := l.LoadReader(file)
	if err != nil {
		return nil, fmt.Errorf("loading file %s: %w", path, err)
	}
	return rom, nil
}

// LoadReader reads a raw CHIP-8 ROM from a reader and validates its size.
func (l *Loader) LoadReader(reader io.Reader) ([]byte, error) {
	cart, err := cartridge.LoadBuffer(reader)
	if err != nil {
		return nil, fmt.Errorf("loading buffer: %w", err)
	}

	rom := cart.PRG
	if len(rom) == 0 {
		return nil, ErrEmptyROM
	}
	if len(rom) > chip8.MaxProgramSize {
		return nil, fmt.Errorf("ROM size %d exceeds %d bytes: %w", len(rom), chip8.MaxProgramSize, chip8.ErrRomTooLarge)
	}
	return rom, nil
}
