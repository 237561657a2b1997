package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

func TestDecode(t *testing.T) {
	tests := []struct {
		name   string
		opcode uint16
		want   Instruction
	}{
		{"sys", 0x0123, Instruction{Op: OpSys, X: 0x1, Y: 0x2, N: 0x3, NN: 0x23, NNN: 0x123}},
		{"nop", 0x0000, Instruction{Op: OpSys}},
		{"cls", 0x00E0, Instruction{Op: OpClear, Y: 0xE, NN: 0xE0, NNN: 0x0E0}},
		{"ret", 0x00EE, Instruction{Op: OpReturn, Y: 0xE, N: 0xE, NN: 0xEE, NNN: 0x0EE}},
		{"jp", 0x1ABC, Instruction{Op: OpJump, X: 0xA, Y: 0xB, N: 0xC, NN: 0xBC, NNN: 0xABC}},
		{"call", 0x2345, Instruction{Op: OpCall, X: 0x3, Y: 0x4, N: 0x5, NN: 0x45, NNN: 0x345}},
		{"se byte", 0x3A12, Instruction{Op: OpSkipEqualByte, X: 0xA, Y: 0x1, N: 0x2, NN: 0x12, NNN: 0xA12}},
		{"sne byte", 0x4B34, Instruction{Op: OpSkipNotEqualByte, X: 0xB, Y: 0x3, N: 0x4, NN: 0x34, NNN: 0xB34}},
		{"se reg", 0x5120, Instruction{Op: OpSkipEqual, X: 0x1, Y: 0x2, NN: 0x20, NNN: 0x120}},
		{"ld byte", 0x6005, Instruction{Op: OpLoadByte, N: 0x5, NN: 0x05, NNN: 0x005}},
		{"add byte", 0x7F01, Instruction{Op: OpAddByte, X: 0xF, N: 0x1, NN: 0x01, NNN: 0xF01}},
		{"ld reg", 0x8120, Instruction{Op: OpLoad, X: 0x1, Y: 0x2, NN: 0x20, NNN: 0x120}},
		{"or", 0x8121, Instruction{Op: OpOr, X: 0x1, Y: 0x2, N: 0x1, NN: 0x21, NNN: 0x121}},
		{"and", 0x8122, Instruction{Op: OpAnd, X: 0x1, Y: 0x2, N: 0x2, NN: 0x22, NNN: 0x122}},
		{"xor", 0x8123, Instruction{Op: OpXor, X: 0x1, Y: 0x2, N: 0x3, NN: 0x23, NNN: 0x123}},
		{"add reg", 0x8014, Instruction{Op: OpAdd, Y: 0x1, N: 0x4, NN: 0x14, NNN: 0x014}},
		{"sub", 0x8125, Instruction{Op: OpSub, X: 0x1, Y: 0x2, N: 0x5, NN: 0x25, NNN: 0x125}},
		{"shr", 0x8126, Instruction{Op: OpShiftRight, X: 0x1, Y: 0x2, N: 0x6, NN: 0x26, NNN: 0x126}},
		{"subn", 0x8127, Instruction{Op: OpSubReverse, X: 0x1, Y: 0x2, N: 0x7, NN: 0x27, NNN: 0x127}},
		{"shl", 0x812E, Instruction{Op: OpShiftLeft, X: 0x1, Y: 0x2, N: 0xE, NN: 0x2E, NNN: 0x12E}},
		{"sne reg", 0x9AB0, Instruction{Op: OpSkipNotEqual, X: 0xA, Y: 0xB, NN: 0xB0, NNN: 0xAB0}},
		{"ld i", 0xA300, Instruction{Op: OpLoadIndex, X: 0x3, NNN: 0x300}},
		{"jp v0", 0xB210, Instruction{Op: OpJumpOffset, X: 0x2, Y: 0x1, NN: 0x10, NNN: 0x210}},
		{"rnd", 0xC3FF, Instruction{Op: OpRandom, X: 0x3, Y: 0xF, N: 0xF, NN: 0xFF, NNN: 0x3FF}},
		{"drw", 0xD125, Instruction{Op: OpDraw, X: 0x1, Y: 0x2, N: 0x5, NN: 0x25, NNN: 0x125}},
		{"skp", 0xE49E, Instruction{Op: OpSkipKey, X: 0x4, Y: 0x9, N: 0xE, NN: 0x9E, NNN: 0x49E}},
		{"sknp", 0xE5A1, Instruction{Op: OpSkipNotKey, X: 0x5, Y: 0xA, N: 0x1, NN: 0xA1, NNN: 0x5A1}},
		{"ld vx dt", 0xF607, Instruction{Op: OpLoadDelay, X: 0x6, N: 0x7, NN: 0x07, NNN: 0x607}},
		{"ld vx k", 0xF70A, Instruction{Op: OpWaitKey, X: 0x7, N: 0xA, NN: 0x0A, NNN: 0x70A}},
		{"ld dt", 0xF815, Instruction{Op: OpSetDelay, X: 0x8, Y: 0x1, N: 0x5, NN: 0x15, NNN: 0x815}},
		{"ld st", 0xF918, Instruction{Op: OpSetSound, X: 0x9, Y: 0x1, N: 0x8, NN: 0x18, NNN: 0x918}},
		{"add i", 0xFA1E, Instruction{Op: OpAddIndex, X: 0xA, Y: 0x1, N: 0xE, NN: 0x1E, NNN: 0xA1E}},
		{"ld f", 0xFB29, Instruction{Op: OpLoadFont, X: 0xB, Y: 0x2, N: 0x9, NN: 0x29, NNN: 0xB29}},
		{"ld b", 0xFC33, Instruction{Op: OpStoreBCD, X: 0xC, Y: 0x3, N: 0x3, NN: 0x33, NNN: 0xC33}},
		{"ld [i]", 0xFD55, Instruction{Op: OpStoreRegisters, X: 0xD, Y: 0x5, N: 0x5, NN: 0x55, NNN: 0xD55}},
		{"ld vx [i]", 0xFE65, Instruction{Op: OpLoadRegisters, X: 0xE, Y: 0x6, N: 0x5, NN: 0x65, NNN: 0xE65}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ins, err := Decode(tt.opcode)
			assert.NoError(t, err)
			assert.Equal(t, tt.want, ins)
			assert.Equal(t, tt.opcode, ins.Encode())
		})
	}
}

func TestDecode_Unimplemented(t *testing.T) {
	opcodes := []uint16{0x5121, 0x512F, 0x8128, 0x812D, 0x812F, 0x9121, 0xE19F, 0xE1A2, 0xF100, 0xF156, 0xF1FF}

	for _, opcode := range opcodes {
		_, err := Decode(opcode)
		assert.True(t, errors.Is(err, ErrUnimplementedOpcode), "opcode should not decode")
	}
}

func TestDecode_EncodeRoundTrip(t *testing.T) {
	var decoded int
	for opcode := range 0x10000 {
		ins, err := Decode(uint16(opcode))
		if err != nil {
			continue
		}
		decoded++
		if ins.Encode() != uint16(opcode) {
			t.Fatalf("opcode $%04X re-encoded as $%04X", opcode, ins.Encode())
		}
	}

	// 65536 minus the gaps in the 5, 8, 9, E and F families
	assert.Equal(t, 0x10000-3840-1792-3840-4064-3952, decoded)
}

func TestInstruction_EncodeFromFields(t *testing.T) {
	tests := []struct {
		name string
		ins  Instruction
		want uint16
	}{
		{"ld byte", Instruction{Op: OpLoadByte, X: 0x1, NN: 0x03}, 0x6103},
		{"add reg", Instruction{Op: OpAdd, X: 0x0, Y: 0x1}, 0x8014},
		{"drw", Instruction{Op: OpDraw, X: 0x2, Y: 0x3, N: 0x4}, 0xD234},
		{"ld i", Instruction{Op: OpLoadIndex, NNN: 0x2F0}, 0xA2F0},
		{"ld b", Instruction{Op: OpStoreBCD, X: 0x7}, 0xF733},
		{"cls ignores fields", Instruction{Op: OpClear, X: 0x5, NNN: 0x123}, 0x00E0},
		{"invalid", Instruction{}, 0x0000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ins.Encode())
		})
	}
}

func TestOp_Mnemonic(t *testing.T) {
	assert.Equal(t, "cls", OpClear.Mnemonic())
	assert.Equal(t, "ld", OpWaitKey.Mnemonic())
	assert.Equal(t, "subn", OpSubReverse.Mnemonic())
	assert.Equal(t, "", OpInvalid.Mnemonic())

	for op := OpSys; op < opCount; op++ {
		assert.NotEmpty(t, op.Mnemonic())
	}
}
