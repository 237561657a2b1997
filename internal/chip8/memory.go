package chip8

import "fmt"

// CHIP-8 memory layout constants.
//
//	0x000-0x04F: font glyphs
//	0x050-0x1FF: unused interpreter area
//	0x200-0xFFF: program space
const (
	// MemorySize is the size of the addressable memory in bytes.
	MemorySize = 0x1000

	// ProgramStart is the address that programs are loaded to and start executing at.
	ProgramStart = 0x200

	// MaxProgramSize is the maximum size of a program that fits into memory.
	MaxProgramSize = MemorySize - ProgramStart
)

// memory is the bounds checked byte store of the machine.
type memory [MemorySize]byte

// read returns the byte at the given address.
func (m *memory) read(address uint16) (byte, error) {
	if int(address) >= len(m) {
		return 0, fmt.Errorf("reading address $%04X: %w", address, ErrMemoryOutOfBounds)
	}
	return m[address], nil
}

// write stores a byte at the given address.
func (m *memory) write(address uint16, value byte) error {
	if int(address) >= len(m) {
		return fmt.Errorf("writing address $%04X: %w", address, ErrMemoryOutOfBounds)
	}
	m[address] = value
	return nil
}

// reset clears the memory and writes the font glyphs.
func (m *memory) reset() {
	*m = memory{}
	copy(m[FontAddress:], font[:])
}
