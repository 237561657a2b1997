package assembler

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/chip8"
)

type operandKind uint8

const (
	kindValue    operandKind = iota // number or label
	kindRegister                    // V0-VF
	kindIndex                       // I
	kindIndirect                    // [I]
	kindDelay                       // DT
	kindSound                       // ST
	kindKey                         // K
	kindFont                        // F
	kindBCD                         // B
)

var reservedNames = map[string]operandKind{
	"i":  kindIndex,
	"dt": kindDelay,
	"st": kindSound,
	"k":  kindKey,
	"f":  kindFont,
	"b":  kindBCD,
}

// argument is a resolved operand.
type argument struct {
	kind     operandKind
	register uint8
	value    uint64
}

// resolve converts a parsed operand, labels are looked up in the label table.
func (a *assembler) resolve(op *operand) (argument, error) {
	switch {
	case op.Indirect != nil:
		if !strings.EqualFold(*op.Indirect, "i") {
			return argument{}, fmt.Errorf("[%s]: %w", *op.Indirect, ErrInvalidOperands)
		}
		return argument{kind: kindIndirect}, nil

	case op.Number != nil:
		value, err := parseNumber(*op.Number)
		if err != nil {
			return argument{}, err
		}
		return argument{kind: kindValue, value: value}, nil

	default:
		name := *op.Name
		if register, ok := parseRegister(name); ok {
			return argument{kind: kindRegister, register: register}, nil
		}
		if kind, ok := reservedNames[strings.ToLower(name)]; ok {
			return argument{kind: kind}, nil
		}
		address, ok := a.labels[name]
		if !ok {
			return argument{}, fmt.Errorf("%s: %w", name, ErrUndefinedLabel)
		}
		return argument{kind: kindValue, value: uint64(address)}, nil
	}
}

func parseRegister(name string) (uint8, bool) {
	if len(name) != 2 || (name[0] != 'V' && name[0] != 'v') {
		return 0, false
	}
	index, err := strconv.ParseUint(name[1:], 16, 8)
	if err != nil {
		return 0, false
	}
	return uint8(index), true
}

func parseNumber(s string) (uint64, error) {
	var (
		value uint64
		err   error
	)
	switch {
	case strings.HasPrefix(s, "$"):
		value, err = strconv.ParseUint(s[1:], 16, 16)
	case strings.HasPrefix(s, "0x"), strings.HasPrefix(s, "0X"):
		value, err = strconv.ParseUint(s[2:], 16, 16)
	default:
		value, err = strconv.ParseUint(s, 10, 16)
	}
	if err != nil {
		return 0, fmt.Errorf("number %s: %w", s, ErrValueOutOfRange)
	}
	return value, nil
}

// valueField is the opcode field that receives the value operand.
type valueField uint8

const (
	fieldNone valueField = iota
	fieldNNN
	fieldNN
	fieldN
)

// pattern is one operand combination of a mnemonic.
type pattern struct {
	op       chip8.Op
	field    valueField
	operands []operandKind
}

func newPattern(op chip8.Op, field valueField, operands ...operandKind) pattern {
	return pattern{
		op:       op,
		field:    field,
		operands: operands,
	}
}

var instructionPatterns = map[string][]pattern{
	"sys":  {newPattern(chip8.OpSys, fieldNNN, kindValue)},
	"cls":  {newPattern(chip8.OpClear, fieldNone)},
	"ret":  {newPattern(chip8.OpReturn, fieldNone)},
	"call": {newPattern(chip8.OpCall, fieldNNN, kindValue)},
	"jp": {
		newPattern(chip8.OpJump, fieldNNN, kindValue),
		newPattern(chip8.OpJumpOffset, fieldNNN, kindRegister, kindValue),
	},
	"se": {
		newPattern(chip8.OpSkipEqualByte, fieldNN, kindRegister, kindValue),
		newPattern(chip8.OpSkipEqual, fieldNone, kindRegister, kindRegister),
	},
	"sne": {
		newPattern(chip8.OpSkipNotEqualByte, fieldNN, kindRegister, kindValue),
		newPattern(chip8.OpSkipNotEqual, fieldNone, kindRegister, kindRegister),
	},
	"ld": {
		newPattern(chip8.OpLoadByte, fieldNN, kindRegister, kindValue),
		newPattern(chip8.OpLoad, fieldNone, kindRegister, kindRegister),
		newPattern(chip8.OpLoadIndex, fieldNNN, kindIndex, kindValue),
		newPattern(chip8.OpLoadDelay, fieldNone, kindRegister, kindDelay),
		newPattern(chip8.OpWaitKey, fieldNone, kindRegister, kindKey),
		newPattern(chip8.OpSetDelay, fieldNone, kindDelay, kindRegister),
		newPattern(chip8.OpSetSound, fieldNone, kindSound, kindRegister),
		newPattern(chip8.OpLoadFont, fieldNone, kindFont, kindRegister),
		newPattern(chip8.OpStoreBCD, fieldNone, kindBCD, kindRegister),
		newPattern(chip8.OpStoreRegisters, fieldNone, kindIndirect, kindRegister),
		newPattern(chip8.OpLoadRegisters, fieldNone, kindRegister, kindIndirect),
	},
	"add": {
		newPattern(chip8.OpAddByte, fieldNN, kindRegister, kindValue),
		newPattern(chip8.OpAdd, fieldNone, kindRegister, kindRegister),
		newPattern(chip8.OpAddIndex, fieldNone, kindIndex, kindRegister),
	},
	"or":   {newPattern(chip8.OpOr, fieldNone, kindRegister, kindRegister)},
	"and":  {newPattern(chip8.OpAnd, fieldNone, kindRegister, kindRegister)},
	"xor":  {newPattern(chip8.OpXor, fieldNone, kindRegister, kindRegister)},
	"sub":  {newPattern(chip8.OpSub, fieldNone, kindRegister, kindRegister)},
	"subn": {newPattern(chip8.OpSubReverse, fieldNone, kindRegister, kindRegister)},
	"shr": {
		newPattern(chip8.OpShiftRight, fieldNone, kindRegister),
		newPattern(chip8.OpShiftRight, fieldNone, kindRegister, kindRegister),
	},
	"shl": {
		newPattern(chip8.OpShiftLeft, fieldNone, kindRegister),
		newPattern(chip8.OpShiftLeft, fieldNone, kindRegister, kindRegister),
	},
	"rnd":  {newPattern(chip8.OpRandom, fieldNN, kindRegister, kindValue)},
	"drw":  {newPattern(chip8.OpDraw, fieldN, kindRegister, kindRegister, kindValue)},
	"skp":  {newPattern(chip8.OpSkipKey, fieldNone, kindRegister)},
	"sknp": {newPattern(chip8.OpSkipNotKey, fieldNone, kindRegister)},
}

func (p pattern) matches(args []argument) bool {
	if len(args) != len(p.operands) {
		return false
	}
	for i, kind := range p.operands {
		if args[i].kind != kind {
			return false
		}
	}
	return true
}

// instruction builds the instruction from the arguments, registers are
// assigned to X and Y in operand order.
func (p pattern) instruction(args []argument) (chip8.Instruction, error) {
	ins := chip8.Instruction{Op: p.op}
	registers := 0

	for _, arg := range args {
		switch arg.kind {
		case kindRegister:
			if registers == 0 {
				ins.X = arg.register
			} else {
				ins.Y = arg.register
			}
			registers++

		case kindValue:
			if err := p.setValue(&ins, arg.value); err != nil {
				return chip8.Instruction{}, err
			}
		}
	}

	if p.op == chip8.OpJumpOffset && ins.X != 0 {
		return chip8.Instruction{}, fmt.Errorf("jump offset register V%X: %w", ins.X, ErrInvalidOperands)
	}
	return ins, nil
}

func (p pattern) setValue(ins *chip8.Instruction, value uint64) error {
	var limit uint64
	switch p.field {
	case fieldNNN:
		limit = 0xFFF
	case fieldNN:
		limit = 0xFF
	case fieldN:
		limit = 0xF
	}
	if value > limit {
		return fmt.Errorf("value $%X exceeds $%X: %w", value, limit, ErrValueOutOfRange)
	}

	switch p.field {
	case fieldNNN:
		ins.NNN = uint16(value)
	case fieldNN:
		ins.NN = uint8(value)
	case fieldN:
		ins.N = uint8(value)
	}
	return nil
}
