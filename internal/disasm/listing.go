package disasm

import (
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrogolib/set"
)

// StartLabel is the label of the program entry point.
const StartLabel = "Start"

const (
	funcNaming  = "_func_%04x"
	labelNaming = "_label_%04x"
	dataNaming  = "_data_%04x"
)

// Options control the listing output.
type Options struct {
	HexComments    bool // output opcode bytes as hex values in comments
	OffsetComments bool // output memory addresses in comments
}

// DefaultOptions returns the default listing options.
func DefaultOptions() Options {
	return Options{
		HexComments:    true,
		OffsetComments: true,
	}
}

// listing holds the state of a linear sweep over a program.
type listing struct {
	rom     []byte
	options Options
	labels  map[uint16]string
}

// WriteListing writes an assembly listing of the program, which is expected
// to be loaded at chip8.ProgramStart. Every 2 bytes are decoded as an
// instruction, words that do not decode and a trailing odd byte are written
// as data directives, so assembling the listing reproduces the program.
func WriteListing(w io.Writer, rom []byte, options Options) error {
	l := &listing{
		rom:     rom,
		options: options,
	}
	l.collectLabels()

	if err := l.writeHeader(w); err != nil {
		return err
	}

	for offset := 0; offset < len(rom); offset += 2 {
		if err := l.writeOffset(w, offset); err != nil {
			return err
		}
	}
	return nil
}

// collectLabels names all instruction aligned addresses inside the program that
// are targeted by jumps, calls, index register loads or taken skips.
func (l *listing) collectLabels() {
	destinations := set.New[uint16]()
	kinds := map[uint16]string{}

	addDestination := func(target uint16, kind string) {
		if !l.isInstructionAddress(target) {
			return
		}
		destinations.Add(target)
		if labelPriority(kind) > labelPriority(kinds[target]) {
			kinds[target] = kind
		}
	}

	for offset := 0; offset+1 < len(l.rom); offset += 2 {
		opcode := uint16(l.rom[offset])<<8 | uint16(l.rom[offset+1])
		ins, err := chip8.Decode(opcode)
		if err != nil {
			continue
		}

		switch ins.Op {
		case chip8.OpCall:
			addDestination(ins.NNN, funcNaming)
		case chip8.OpJump:
			addDestination(ins.NNN, labelNaming)
		case chip8.OpLoadIndex:
			addDestination(ins.NNN, dataNaming)
		default:
			// a taken skip continues behind the next instruction
			if info, ok := Lookup(opcode); ok && info.Skip {
				addDestination(uint16(chip8.ProgramStart+offset+4), labelNaming)
			}
		}
	}

	l.labels = map[uint16]string{}
	if len(l.rom) > 0 {
		l.labels[chip8.ProgramStart] = StartLabel
	}

	sorted := make([]uint16, 0, len(destinations))
	for address := range destinations {
		sorted = append(sorted, address)
	}
	slices.Sort(sorted)

	for _, address := range sorted {
		if address == chip8.ProgramStart {
			continue
		}
		l.labels[address] = fmt.Sprintf(kinds[address], address)
	}
}

func labelPriority(naming string) int {
	switch naming {
	case funcNaming:
		return 3
	case labelNaming:
		return 2
	case dataNaming:
		return 1
	default:
		return 0
	}
}

// isInstructionAddress returns whether the address is inside the program at
// an even offset.
func (l *listing) isInstructionAddress(address uint16) bool {
	if address < chip8.ProgramStart {
		return false
	}
	offset := int(address - chip8.ProgramStart)
	return offset < len(l.rom) && offset%2 == 0
}

func (l *listing) resolveAddress(address uint16) string {
	if label, ok := l.labels[address]; ok {
		return label
	}
	return formatAddress(address)
}

func (l *listing) writeHeader(w io.Writer) error {
	if _, err := fmt.Fprintf(w, "; CHIP-8 ROM listing\n"); err != nil {
		return fmt.Errorf("writing header comment: %w", err)
	}
	if _, err := fmt.Fprintf(w, "; Program starts at $%03X in CHIP-8 memory space\n\n", chip8.ProgramStart); err != nil {
		return fmt.Errorf("writing memory space comment: %w", err)
	}
	if _, err := fmt.Fprintf(w, ".org $%03X\n\n", chip8.ProgramStart); err != nil {
		return fmt.Errorf("writing org directive: %w", err)
	}
	return nil
}

// writeOffset writes the label, code or data and comment for an offset.
func (l *listing) writeOffset(w io.Writer, offset int) error {
	address := uint16(chip8.ProgramStart + offset)
	if label, ok := l.labels[address]; ok {
		if _, err := fmt.Fprintf(w, "%s:\n", label); err != nil {
			return fmt.Errorf("writing label %s: %w", label, err)
		}
	}

	var code string
	data := l.rom[offset:min(offset+2, len(l.rom))]
	if len(data) == 1 {
		code = fmt.Sprintf(".byte $%02X", data[0])
	} else {
		opcode := uint16(data[0])<<8 | uint16(data[1])
		ins, err := chip8.Decode(opcode)
		if err == nil {
			code = formatInstruction(ins, l.resolveAddress)
		} else {
			code = fmt.Sprintf(".word $%04X", opcode)
		}
	}

	comment := l.comment(address, data)
	if comment == "" {
		if _, err := fmt.Fprintf(w, "  %s\n", code); err != nil {
			return fmt.Errorf("writing code at $%04X: %w", address, err)
		}
		return nil
	}

	if _, err := fmt.Fprintf(w, "  %-30s ; %s\n", code, comment); err != nil {
		return fmt.Errorf("writing code at $%04X: %w", address, err)
	}
	return nil
}

func (l *listing) comment(address uint16, data []byte) string {
	var parts []string
	if l.options.OffsetComments {
		parts = append(parts, fmt.Sprintf("$%04X", address))
	}
	if l.options.HexComments {
		hex := make([]string, len(data))
		for i, b := range data {
			hex[i] = fmt.Sprintf("%02X", b)
		}
		parts = append(parts, strings.Join(hex, " "))
	}
	return strings.Join(parts, " ")
}
