package chip8

import (
	"errors"
	"testing"

	"github.com/retroenv/retrogolib/assert"
)

// newTestChip8 returns an interpreter with the given opcodes loaded at ProgramStart.
func newTestChip8(t *testing.T, opcodes ...uint16) *Chip8 {
	t.Helper()

	c, err := New()
	assert.NoError(t, err)
	assert.NoError(t, c.Load(program(opcodes...)))
	return c
}

// program converts opcodes to their big-endian byte representation.
func program(opcodes ...uint16) []byte {
	data := make([]byte, 0, len(opcodes)*2)
	for _, opcode := range opcodes {
		data = append(data, byte(opcode>>8), byte(opcode))
	}
	return data
}

// tick executes the given number of instructions and fails on errors.
func tick(t *testing.T, c *Chip8, count int) {
	t.Helper()

	for range count {
		assert.NoError(t, c.Tick())
	}
}

func TestNew(t *testing.T) {
	c, err := New()
	assert.NoError(t, err)

	assert.Equal(t, uint16(ProgramStart), c.PC())
	assert.Equal(t, uint16(0), c.Index())
	assert.Equal(t, 0, c.SP())
	assert.Equal(t, DefaultWidth, c.Width())
	assert.Equal(t, DefaultHeight, c.Height())
	assert.Len(t, c.Display(), DefaultWidth*DefaultHeight)
	assert.False(t, c.Waiting())

	for i, b := range font {
		value, err := c.ReadMemory(uint16(FontAddress + i))
		assert.NoError(t, err)
		assert.Equal(t, b, value)
	}
}

func TestNew_Options(t *testing.T) {
	c, err := New(WithDisplaySize(64, 64), WithQuirks(Quirks{InclusiveTransfer: true}))
	assert.NoError(t, err)
	assert.Equal(t, 64, c.Height())
	assert.Len(t, c.Display(), 64*64)
	assert.True(t, c.cfg.quirks.InclusiveTransfer)

	_, err = New(WithDisplaySize(0, 32))
	assert.Error(t, err)

	_, err = New(WithRandom(nil))
	assert.Error(t, err)
}

func TestLoad(t *testing.T) {
	c, err := New()
	assert.NoError(t, err)

	assert.NoError(t, c.Load([]byte{0x12, 0x34}))
	b, err := c.ReadMemory(ProgramStart + 1)
	assert.NoError(t, err)
	assert.Equal(t, byte(0x34), b)

	assert.NoError(t, c.Load(make([]byte, MaxProgramSize)))

	err = c.Load(make([]byte, MaxProgramSize+1))
	assert.True(t, errors.Is(err, ErrRomTooLarge))
}

func TestTick_AddProgram(t *testing.T) {
	c := newTestChip8(t, 0x6005, 0x6103, 0x8014)
	tick(t, c, 3)

	assert.Equal(t, uint8(8), c.V(0))
	assert.Equal(t, uint8(3), c.V(1))
	assert.Equal(t, uint8(0), c.V(0xF))
	assert.Equal(t, uint16(ProgramStart+6), c.PC())
}

func TestTick_Unimplemented(t *testing.T) {
	c := newTestChip8(t, 0x5121)
	err := c.Tick()
	assert.True(t, errors.Is(err, ErrUnimplementedOpcode))
	assert.ErrorContains(t, err, "$0200")
}

func TestTick_FetchOutOfBounds(t *testing.T) {
	c := newTestChip8(t, 0x1FFF)
	tick(t, c, 1)
	assert.Equal(t, uint16(0xFFF), c.PC())

	err := c.Tick()
	assert.True(t, errors.Is(err, ErrMemoryOutOfBounds))
}

func TestTickTimers(t *testing.T) {
	c := newTestChip8(t, 0x6002, 0xF015, 0x6001, 0xF018)
	tick(t, c, 4)
	assert.Equal(t, uint8(2), c.DelayTimer())
	assert.Equal(t, uint8(1), c.SoundTimer())

	c.TickTimers()
	assert.Equal(t, uint8(1), c.DelayTimer())
	assert.Equal(t, uint8(0), c.SoundTimer())

	c.TickTimers()
	c.TickTimers()
	assert.Equal(t, uint8(0), c.DelayTimer())
	assert.Equal(t, uint8(0), c.SoundTimer())
}

func TestSetKey(t *testing.T) {
	c, err := New()
	assert.NoError(t, err)

	assert.NoError(t, c.SetKey(0xF, true))
	assert.True(t, c.KeyPressed(0xF))
	assert.NoError(t, c.SetKey(0xF, false))
	assert.False(t, c.KeyPressed(0xF))

	for _, index := range []int{-1, 16, 255} {
		err := c.SetKey(index, true)
		assert.True(t, errors.Is(err, ErrInvalidKeyIndex))
	}
}

func TestDisplay_ReturnsCopy(t *testing.T) {
	c := newTestChip8(t, 0xA000, 0xD001)
	tick(t, c, 2)

	pixels := c.Display()
	assert.True(t, pixels[0])
	pixels[0] = false
	assert.True(t, c.Display()[0])
}

func TestReset(t *testing.T) {
	c := newTestChip8(t,
		0x60FF, // ld V0, $FF
		0xA000, // ld I, $000
		0xD015, // drw V0, V1, 5
		0xF015, // ld DT, V0
		0xF018, // ld ST, V0
		0x2300, // call $300
	)
	tick(t, c, 6)
	assert.NoError(t, c.SetKey(3, true))

	c.Reset()
	c.Reset()

	fresh, err := New()
	assert.NoError(t, err)

	assert.Equal(t, fresh.memory, c.memory)
	assert.Equal(t, fresh.v, c.v)
	assert.Equal(t, fresh.i, c.i)
	assert.Equal(t, fresh.pc, c.pc)
	assert.Equal(t, fresh.stack, c.stack)
	assert.Equal(t, fresh.display.pixels, c.display.pixels)
	assert.Equal(t, fresh.keys, c.keys)
	assert.Equal(t, fresh.delayTimer, c.delayTimer)
	assert.Equal(t, fresh.soundTimer, c.soundTimer)
	assert.Equal(t, fresh.waiting, c.waiting)
}

func TestReset_KeepsOptions(t *testing.T) {
	c, err := New(WithDisplaySize(32, 16))
	assert.NoError(t, err)

	c.Reset()
	assert.Equal(t, 32, c.Width())
	assert.Len(t, c.Display(), 32*16)
}

func TestOpcode(t *testing.T) {
	c := newTestChip8(t, 0xA2F0)

	opcode, err := c.Opcode()
	assert.NoError(t, err)
	assert.Equal(t, uint16(0xA2F0), opcode)
	assert.Equal(t, uint16(ProgramStart), c.PC())
}
