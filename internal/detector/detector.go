// Package detector handles system detection of ROM files.
package detector

import (
	"bytes"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/log"
)

// ErrUnsupportedSystem is returned for ROM files of other systems.
var ErrUnsupportedSystem = errors.New("unsupported system")

var nesMagic = []byte{'N', 'E', 'S', 0x1A}

// Detector handles system detection from file headers and extensions.
type Detector struct {
	logger *log.Logger
}

// New creates a new system detector.
func New(logger *log.Logger) *Detector {
	return &Detector{
		logger: logger,
	}
}

// Detect determines the system of a ROM file. CHIP-8 ROMs have no header,
// files that start with the iNES header are detected as NES, otherwise the
// file extension decides and unknown extensions default to CHIP-8.
func (d *Detector) Detect(filename string, rom []byte) arch.System {
	if bytes.HasPrefix(rom, nesMagic) {
		return arch.NES
	}

	system := d.detectFromFile(filename)
	d.logger.Debug("Auto-detected system",
		log.Stringer("system", system),
		log.String("file", filename))
	return system
}

// Check returns an error if the ROM file does not belong to the CHIP-8 system.
func (d *Detector) Check(filename string, rom []byte) error {
	system := d.Detect(filename, rom)
	if system != arch.CHIP8System {
		return fmt.Errorf("file %s is a %s ROM: %w", filename, system, ErrUnsupportedSystem)
	}
	return nil
}

// detectFromFile determines the system type based on file extension.
func (d *Detector) detectFromFile(filename string) arch.System {
	ext := strings.ToLower(filepath.Ext(filename))
	switch ext {
	case ".nes":
		return arch.NES
	default:
		return arch.CHIP8System
	}
}
