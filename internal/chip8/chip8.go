package chip8

import "fmt"

// Number of general purpose registers and keypad keys.
const (
	RegisterCount = 16
	KeyCount      = 16
)

// flagRegister is the index of VF.
const flagRegister = 0xF

// Chip8 is the state of a CHIP-8 interpreter.
type Chip8 struct {
	cfg config

	memory  memory
	v       [RegisterCount]uint8
	i       uint16
	pc      uint16
	stack   stack
	display display
	keys    [KeyCount]bool

	delayTimer uint8
	soundTimer uint8

	waiting bool // set while Fx0A waits for a key press
}

// New returns a new interpreter in its power-on state with the font loaded.
func New(opts ...Option) (*Chip8, error) {
	cfg := defaultConfig()
	for _, opt := range opts {
		if err := opt(&cfg); err != nil {
			return nil, err
		}
	}

	c := &Chip8{
		cfg: cfg,
	}
	c.Reset()
	return c, nil
}

// Reset restores the power-on state. The configured options are kept,
// a previously loaded program is removed.
func (c *Chip8) Reset() {
	c.memory.reset()
	c.v = [RegisterCount]uint8{}
	c.i = 0
	c.pc = ProgramStart
	c.stack = stack{}
	c.display = newDisplay(c.cfg.width, c.cfg.height)
	c.keys = [KeyCount]bool{}
	c.delayTimer = 0
	c.soundTimer = 0
	c.waiting = false
}

// Load copies the program into memory at ProgramStart.
func (c *Chip8) Load(rom []byte) error {
	if len(rom) > MaxProgramSize {
		return fmt.Errorf("%d bytes exceed the available %d bytes: %w", len(rom), MaxProgramSize, ErrRomTooLarge)
	}
	copy(c.memory[ProgramStart:], rom)
	return nil
}

// Tick executes a single fetch-decode-execute step.
func (c *Chip8) Tick() error {
	pc := c.pc
	opcode, err := c.fetch()
	if err != nil {
		return fmt.Errorf("fetching opcode at $%04X: %w", pc, err)
	}

	ins, err := Decode(opcode)
	if err != nil {
		return fmt.Errorf("decoding at $%04X: %w", pc, err)
	}

	if err := c.execute(ins); err != nil {
		return fmt.Errorf("executing opcode $%04X at $%04X: %w", opcode, pc, err)
	}
	return nil
}

// TickTimers decrements the delay and sound timers if they are not zero.
func (c *Chip8) TickTimers() {
	if c.delayTimer > 0 {
		c.delayTimer--
	}
	if c.soundTimer > 0 {
		c.soundTimer--
	}
}

// SetKey updates the pressed state of a keypad key.
func (c *Chip8) SetKey(index int, pressed bool) error {
	if index < 0 || index >= KeyCount {
		return fmt.Errorf("key %d: %w", index, ErrInvalidKeyIndex)
	}
	c.keys[index] = pressed
	return nil
}

// Display returns a copy of the pixel grid in row-major order.
func (c *Chip8) Display() []bool {
	pixels := make([]bool, len(c.display.pixels))
	copy(pixels, c.display.pixels)
	return pixels
}

// Width returns the display width in pixels.
func (c *Chip8) Width() int {
	return c.display.width
}

// Height returns the display height in pixels.
func (c *Chip8) Height() int {
	return c.display.height
}

// SoundTimer returns the sound timer, the tone is audible while it is not zero.
func (c *Chip8) SoundTimer() uint8 {
	return c.soundTimer
}

// DelayTimer returns the delay timer.
func (c *Chip8) DelayTimer() uint8 {
	return c.delayTimer
}

// V returns the value of the general purpose register with the given index.
func (c *Chip8) V(index int) uint8 {
	return c.v[index&0x0F]
}

// Index returns the index register I.
func (c *Chip8) Index() uint16 {
	return c.i
}

// PC returns the program counter.
func (c *Chip8) PC() uint16 {
	return c.pc
}

// SP returns the stack pointer, the number of return addresses on the stack.
func (c *Chip8) SP() int {
	return int(c.stack.sp)
}

// Waiting returns whether the interpreter is blocked by a Fx0A instruction
// waiting for a key press.
func (c *Chip8) Waiting() bool {
	return c.waiting
}

// KeyPressed returns whether the key with the given index is pressed.
func (c *Chip8) KeyPressed(index int) bool {
	return c.keys[index&0x0F]
}

// ReadMemory returns the byte at the given address.
func (c *Chip8) ReadMemory(address uint16) (byte, error) {
	return c.memory.read(address)
}

// Opcode returns the opcode at the program counter without executing it.
func (c *Chip8) Opcode() (uint16, error) {
	return c.readOpcode(c.pc)
}

// fetch reads the opcode at the program counter and advances it.
func (c *Chip8) fetch() (uint16, error) {
	opcode, err := c.readOpcode(c.pc)
	if err != nil {
		return 0, err
	}
	c.pc += 2
	return opcode, nil
}

// readOpcode combines the two bytes at the address to a big-endian opcode.
func (c *Chip8) readOpcode(address uint16) (uint16, error) {
	high, err := c.memory.read(address)
	if err != nil {
		return 0, err
	}
	low, err := c.memory.read(address + 1)
	if err != nil {
		return 0, err
	}
	return uint16(high)<<8 | uint16(low), nil
}
