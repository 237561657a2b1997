package chip8

import "fmt"

// Op identifies one of the 35 CHIP-8 instructions.
type Op uint8

// Instructions of the CHIP-8 instruction set, the comment shows the opcode pattern.
const (
	OpInvalid Op = iota

	OpSys              // 0nnn
	OpClear            // 00E0
	OpReturn           // 00EE
	OpJump             // 1nnn
	OpCall             // 2nnn
	OpSkipEqualByte    // 3xnn
	OpSkipNotEqualByte // 4xnn
	OpSkipEqual        // 5xy0
	OpLoadByte         // 6xnn
	OpAddByte          // 7xnn
	OpLoad             // 8xy0
	OpOr               // 8xy1
	OpAnd              // 8xy2
	OpXor              // 8xy3
	OpAdd              // 8xy4
	OpSub              // 8xy5
	OpShiftRight       // 8xy6
	OpSubReverse       // 8xy7
	OpShiftLeft        // 8xyE
	OpSkipNotEqual     // 9xy0
	OpLoadIndex        // Annn
	OpJumpOffset       // Bnnn
	OpRandom           // Cxnn
	OpDraw             // Dxyn
	OpSkipKey          // Ex9E
	OpSkipNotKey       // ExA1
	OpLoadDelay        // Fx07
	OpWaitKey          // Fx0A
	OpSetDelay         // Fx15
	OpSetSound         // Fx18
	OpAddIndex         // Fx1E
	OpLoadFont         // Fx29
	OpStoreBCD         // Fx33
	OpStoreRegisters   // Fx55
	OpLoadRegisters    // Fx65

	opCount
)

// operandFormat describes which opcode fields carry operands.
type operandFormat uint8

const (
	formatNone operandFormat = iota
	formatNNN
	formatXNN
	formatXY
	formatXYN
	formatX
)

type opInfo struct {
	name   string
	base   uint16
	format operandFormat
}

var opInfos = [opCount]opInfo{
	OpSys:              {"sys", 0x0000, formatNNN},
	OpClear:            {"cls", 0x00E0, formatNone},
	OpReturn:           {"ret", 0x00EE, formatNone},
	OpJump:             {"jp", 0x1000, formatNNN},
	OpCall:             {"call", 0x2000, formatNNN},
	OpSkipEqualByte:    {"se", 0x3000, formatXNN},
	OpSkipNotEqualByte: {"sne", 0x4000, formatXNN},
	OpSkipEqual:        {"se", 0x5000, formatXY},
	OpLoadByte:         {"ld", 0x6000, formatXNN},
	OpAddByte:          {"add", 0x7000, formatXNN},
	OpLoad:             {"ld", 0x8000, formatXY},
	OpOr:               {"or", 0x8001, formatXY},
	OpAnd:              {"and", 0x8002, formatXY},
	OpXor:              {"xor", 0x8003, formatXY},
	OpAdd:              {"add", 0x8004, formatXY},
	OpSub:              {"sub", 0x8005, formatXY},
	OpShiftRight:       {"shr", 0x8006, formatXY},
	OpSubReverse:       {"subn", 0x8007, formatXY},
	OpShiftLeft:        {"shl", 0x800E, formatXY},
	OpSkipNotEqual:     {"sne", 0x9000, formatXY},
	OpLoadIndex:        {"ld", 0xA000, formatNNN},
	OpJumpOffset:       {"jp", 0xB000, formatNNN},
	OpRandom:           {"rnd", 0xC000, formatXNN},
	OpDraw:             {"drw", 0xD000, formatXYN},
	OpSkipKey:          {"skp", 0xE09E, formatX},
	OpSkipNotKey:       {"sknp", 0xE0A1, formatX},
	OpLoadDelay:        {"ld", 0xF007, formatX},
	OpWaitKey:          {"ld", 0xF00A, formatX},
	OpSetDelay:         {"ld", 0xF015, formatX},
	OpSetSound:         {"ld", 0xF018, formatX},
	OpAddIndex:         {"add", 0xF01E, formatX},
	OpLoadFont:         {"ld", 0xF029, formatX},
	OpStoreBCD:         {"ld", 0xF033, formatX},
	OpStoreRegisters:   {"ld", 0xF055, formatX},
	OpLoadRegisters:    {"ld", 0xF065, formatX},
}

// Mnemonic returns the assembler mnemonic of the instruction, several
// instructions share the same mnemonic and differ by their operands.
func (o Op) Mnemonic() string {
	if o == OpInvalid || o >= opCount {
		return ""
	}
	return opInfos[o].name
}

// Instruction is a decoded opcode. All fields are extracted for every
// instruction, the Op defines which of them are meaningful.
type Instruction struct {
	Op  Op
	X   uint8  // register index from bits 8-11
	Y   uint8  // register index from bits 4-7
	N   uint8  // low nibble
	NN  uint8  // low byte
	NNN uint16 // low 12 bits
}

// Decode splits the opcode into its fields and identifies the instruction.
func Decode(opcode uint16) (Instruction, error) {
	ins := Instruction{
		X:   uint8(opcode>>8) & 0x0F,
		Y:   uint8(opcode>>4) & 0x0F,
		N:   uint8(opcode) & 0x0F,
		NN:  uint8(opcode),
		NNN: opcode & 0x0FFF,
	}

	switch opcode >> 12 {
	case 0x0:
		switch opcode {
		case 0x00E0:
			ins.Op = OpClear
		case 0x00EE:
			ins.Op = OpReturn
		default:
			ins.Op = OpSys
		}
	case 0x1:
		ins.Op = OpJump
	case 0x2:
		ins.Op = OpCall
	case 0x3:
		ins.Op = OpSkipEqualByte
	case 0x4:
		ins.Op = OpSkipNotEqualByte
	case 0x5:
		if ins.N == 0 {
			ins.Op = OpSkipEqual
		}
	case 0x6:
		ins.Op = OpLoadByte
	case 0x7:
		ins.Op = OpAddByte
	case 0x8:
		ins.Op = decodeArithmetic(ins.N)
	case 0x9:
		if ins.N == 0 {
			ins.Op = OpSkipNotEqual
		}
	case 0xA:
		ins.Op = OpLoadIndex
	case 0xB:
		ins.Op = OpJumpOffset
	case 0xC:
		ins.Op = OpRandom
	case 0xD:
		ins.Op = OpDraw
	case 0xE:
		switch ins.NN {
		case 0x9E:
			ins.Op = OpSkipKey
		case 0xA1:
			ins.Op = OpSkipNotKey
		}
	case 0xF:
		ins.Op = decodeMisc(ins.NN)
	}

	if ins.Op == OpInvalid {
		return ins, fmt.Errorf("opcode $%04X: %w", opcode, ErrUnimplementedOpcode)
	}
	return ins, nil
}

func decodeArithmetic(n uint8) Op {
	switch n {
	case 0x0:
		return OpLoad
	case 0x1:
		return OpOr
	case 0x2:
		return OpAnd
	case 0x3:
		return OpXor
	case 0x4:
		return OpAdd
	case 0x5:
		return OpSub
	case 0x6:
		return OpShiftRight
	case 0x7:
		return OpSubReverse
	case 0xE:
		return OpShiftLeft
	default:
		return OpInvalid
	}
}

func decodeMisc(nn uint8) Op {
	switch nn {
	case 0x07:
		return OpLoadDelay
	case 0x0A:
		return OpWaitKey
	case 0x15:
		return OpSetDelay
	case 0x18:
		return OpSetSound
	case 0x1E:
		return OpAddIndex
	case 0x29:
		return OpLoadFont
	case 0x33:
		return OpStoreBCD
	case 0x55:
		return OpStoreRegisters
	case 0x65:
		return OpLoadRegisters
	default:
		return OpInvalid
	}
}

// Encode assembles the instruction back into its opcode, only the fields
// that are meaningful for the instruction are used.
func (i Instruction) Encode() uint16 {
	if i.Op == OpInvalid || i.Op >= opCount {
		return 0
	}

	info := opInfos[i.Op]
	x := uint16(i.X&0x0F) << 8
	y := uint16(i.Y&0x0F) << 4

	switch info.format {
	case formatNNN:
		return info.base | i.NNN&0x0FFF
	case formatXNN:
		return info.base | x | uint16(i.NN)
	case formatXY:
		return info.base | x | y
	case formatXYN:
		return info.base | x | y | uint16(i.N&0x0F)
	case formatX:
		return info.base | x
	default:
		return info.base
	}
}
