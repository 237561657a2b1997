package chip8

import "fmt"

// execute applies a decoded instruction to the machine state. The program
// counter already points to the following instruction.
func (c *Chip8) execute(ins Instruction) error {
	switch ins.Op {
	case OpSys:
		// machine code routines of the host are not supported and ignored

	case OpClear:
		c.display.clear()

	case OpReturn:
		address, err := c.stack.pop()
		if err != nil {
			return err
		}
		c.pc = address

	case OpJump:
		c.pc = ins.NNN

	case OpCall:
		if err := c.stack.push(c.pc); err != nil {
			return err
		}
		c.pc = ins.NNN

	case OpSkipEqualByte:
		c.skipIf(c.v[ins.X] == ins.NN)

	case OpSkipNotEqualByte:
		c.skipIf(c.v[ins.X] != ins.NN)

	case OpSkipEqual:
		c.skipIf(c.v[ins.X] == c.v[ins.Y])

	case OpSkipNotEqual:
		c.skipIf(c.v[ins.X] != c.v[ins.Y])

	case OpLoadByte:
		c.v[ins.X] = ins.NN

	case OpAddByte:
		c.v[ins.X] += ins.NN

	case OpLoad, OpOr, OpAnd, OpXor, OpAdd, OpSub, OpShiftRight, OpSubReverse, OpShiftLeft:
		c.executeArithmetic(ins)

	case OpLoadIndex:
		c.i = ins.NNN

	case OpJumpOffset:
		c.pc = uint16(c.v[0]) + ins.NNN

	case OpRandom:
		c.v[ins.X] = c.cfg.random() & ins.NN

	case OpDraw:
		return c.draw(ins)

	case OpSkipKey:
		c.skipIf(c.keys[c.v[ins.X]&0x0F])

	case OpSkipNotKey:
		c.skipIf(!c.keys[c.v[ins.X]&0x0F])

	case OpLoadDelay:
		c.v[ins.X] = c.delayTimer

	case OpWaitKey:
		c.waitKey(ins.X)

	case OpSetDelay:
		c.delayTimer = c.v[ins.X]

	case OpSetSound:
		c.soundTimer = c.v[ins.X]

	case OpAddIndex:
		c.i += uint16(c.v[ins.X])

	case OpLoadFont:
		c.i = FontAddress + uint16(c.v[ins.X])*glyphSize

	case OpStoreBCD:
		return c.storeBCD(c.v[ins.X])

	case OpStoreRegisters:
		return c.storeRegisters(c.transferCount(ins.X))

	case OpLoadRegisters:
		return c.loadRegisters(c.transferCount(ins.X))

	default:
		return fmt.Errorf("instruction %d: %w", ins.Op, ErrUnimplementedOpcode)
	}
	return nil
}

// executeArithmetic handles the 8xyN instructions. Both operands are read
// before any register is written so that x and y can be the same register,
// VF is written last so that the flag wins if x is VF.
func (c *Chip8) executeArithmetic(ins Instruction) {
	vx := c.v[ins.X]
	vy := c.v[ins.Y]

	switch ins.Op {
	case OpLoad:
		c.v[ins.X] = vy

	case OpOr:
		c.v[ins.X] = vx | vy

	case OpAnd:
		c.v[ins.X] = vx & vy

	case OpXor:
		c.v[ins.X] = vx ^ vy

	case OpAdd:
		sum := uint16(vx) + uint16(vy)
		c.v[ins.X] = uint8(sum)
		c.v[flagRegister] = boolToByte(sum > 0xFF)

	case OpSub:
		c.v[ins.X] = vx - vy
		c.v[flagRegister] = boolToByte(vx >= vy)

	case OpSubReverse:
		c.v[ins.X] = vy - vx
		c.v[flagRegister] = boolToByte(vy >= vx)

	case OpShiftRight:
		c.v[ins.X] = vx >> 1
		c.v[flagRegister] = vx & 0x01

	case OpShiftLeft:
		c.v[ins.X] = vx << 1
		c.v[flagRegister] = vx >> 7
	}
}

func (c *Chip8) skipIf(condition bool) {
	if condition {
		c.pc += 2
	}
}

// draw XORs a sprite of N rows read from memory at I onto the display at
// the coordinates (Vx, Vy) and sets VF on collision.
func (c *Chip8) draw(ins Instruction) error {
	rows := make([]byte, ins.N)
	for row := range rows {
		b, err := c.memory.read(c.i + uint16(row))
		if err != nil {
			return fmt.Errorf("reading sprite: %w", err)
		}
		rows[row] = b
	}

	x := int(c.v[ins.X])
	y := int(c.v[ins.Y])
	collision := false
	for row, b := range rows {
		if c.display.drawRow(x, y+row, b) {
			collision = true
		}
	}
	c.v[flagRegister] = boolToByte(collision)
	return nil
}

// waitKey stores the lowest pressed key in Vx. If no key is pressed the
// program counter is rewound so that the instruction executes again on the
// next tick.
func (c *Chip8) waitKey(x uint8) {
	for key, pressed := range c.keys {
		if pressed {
			c.v[x] = uint8(key)
			c.waiting = false
			return
		}
	}

	c.waiting = true
	c.pc -= 2
}

// storeBCD writes the hundreds, tens and ones digit of the value to I, I+1 and I+2.
func (c *Chip8) storeBCD(value uint8) error {
	if err := c.checkIndexRange(3); err != nil {
		return err
	}
	c.memory[c.i] = value / 100
	c.memory[c.i+1] = value / 10 % 10
	c.memory[c.i+2] = value % 10
	return nil
}

// transferCount returns the number of registers that Fx55 and Fx65 transfer.
func (c *Chip8) transferCount(x uint8) int {
	if c.cfg.quirks.InclusiveTransfer {
		return int(x) + 1
	}
	return int(x)
}

func (c *Chip8) storeRegisters(count int) error {
	if err := c.checkIndexRange(count); err != nil {
		return err
	}
	copy(c.memory[c.i:], c.v[:count])
	return nil
}

func (c *Chip8) loadRegisters(count int) error {
	if err := c.checkIndexRange(count); err != nil {
		return err
	}
	copy(c.v[:count], c.memory[c.i:])
	return nil
}

// checkIndexRange verifies that count bytes starting at I are addressable.
func (c *Chip8) checkIndexRange(count int) error {
	if count == 0 {
		return nil
	}
	if end := int(c.i) + count - 1; end >= MemorySize {
		return fmt.Errorf("accessing $%04X-$%04X: %w", c.i, end, ErrMemoryOutOfBounds)
	}
	return nil
}

func boolToByte(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
