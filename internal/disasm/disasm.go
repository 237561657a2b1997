// Package disasm converts CHIP-8 opcodes to assembly mnemonics and writes
// program listings that can be re-assembled by the assembler package.
package disasm

import (
	"fmt"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Info describes the instruction class of an opcode as defined by the
// CHIP-8 opcode table.
type Info struct {
	Name         string
	Skip         bool
	ReadsMemory  bool
	WritesMemory bool
}

// Class returns the instruction class as text for trace output, an empty
// string is returned for instructions without a class.
func (i Info) Class() string {
	var classes []string
	if i.Skip {
		classes = append(classes, "skip")
	}
	if i.ReadsMemory {
		classes = append(classes, "read")
	}
	if i.WritesMemory {
		classes = append(classes, "write")
	}
	return strings.Join(classes, ",")
}

// Lookup returns the instruction class of an opcode by matching it against
// the opcode table entries for its first nibble.
func Lookup(opcode uint16) (Info, bool) {
	firstNibble := (opcode & 0xF000) >> 12
	for _, op := range chip8cpu.Opcodes[int(firstNibble)] {
		if op.Info.Mask&opcode != op.Info.Value || op.Instruction == nil {
			continue
		}

		name := op.Instruction.Name
		return Info{
			Name:         strings.ToLower(name),
			Skip:         chip8cpu.SkipInstructions.Contains(name),
			ReadsMemory:  chip8cpu.MemoryReadInstructions.Contains(name),
			WritesMemory: chip8cpu.MemoryWriteInstructions.Contains(name),
		}, true
	}
	return Info{}, false
}

// Format returns the assembly representation of an opcode.
func Format(opcode uint16) (string, error) {
	ins, err := chip8.Decode(opcode)
	if err != nil {
		return "", err
	}
	return formatInstruction(ins, formatAddress), nil
}

// addressFormatter returns the operand text for an address operand.
type addressFormatter func(address uint16) string

func formatAddress(address uint16) string {
	return fmt.Sprintf("$%03X", address)
}

// formatInstruction formats a decoded instruction with its parameters.
func formatInstruction(ins chip8.Instruction, address addressFormatter) string {
	name := ins.Op.Mnemonic()
	if params := formatParams(ins, address); params != "" {
		return name + " " + params
	}
	return name
}

// formatParams returns the formatted parameter string for the instruction.
func formatParams(ins chip8.Instruction, address addressFormatter) string {
	x := register(ins.X)
	y := register(ins.Y)

	switch ins.Op {
	case chip8.OpClear, chip8.OpReturn:
		return ""

	case chip8.OpSys, chip8.OpJump, chip8.OpCall:
		return address(ins.NNN)

	case chip8.OpJumpOffset:
		return "V0, " + address(ins.NNN)

	case chip8.OpLoadIndex:
		return "I, " + address(ins.NNN)

	case chip8.OpSkipEqualByte, chip8.OpSkipNotEqualByte, chip8.OpLoadByte, chip8.OpAddByte, chip8.OpRandom:
		return fmt.Sprintf("%s, $%02X", x, ins.NN)

	case chip8.OpShiftRight, chip8.OpShiftLeft:
		if ins.Y == 0 {
			return x
		}
		return x + ", " + y

	case chip8.OpSkipEqual, chip8.OpSkipNotEqual, chip8.OpLoad, chip8.OpOr, chip8.OpAnd,
		chip8.OpXor, chip8.OpAdd, chip8.OpSub, chip8.OpSubReverse:
		return x + ", " + y

	case chip8.OpDraw:
		return fmt.Sprintf("%s, %s, $%X", x, y, ins.N)

	case chip8.OpSkipKey, chip8.OpSkipNotKey:
		return x

	case chip8.OpLoadDelay:
		return x + ", DT"
	case chip8.OpWaitKey:
		return x + ", K"
	case chip8.OpSetDelay:
		return "DT, " + x
	case chip8.OpSetSound:
		return "ST, " + x
	case chip8.OpAddIndex:
		return "I, " + x
	case chip8.OpLoadFont:
		return "F, " + x
	case chip8.OpStoreBCD:
		return "B, " + x
	case chip8.OpStoreRegisters:
		return "[I], " + x
	case chip8.OpLoadRegisters:
		return x + ", [I]"
	}
	return ""
}

func register(index uint8) string {
	return fmt.Sprintf("V%X", index)
}
