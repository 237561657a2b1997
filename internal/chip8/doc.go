// Package chip8 implements the CHIP-8 interpreter core.
//
// # Machine Overview
//
// The interpreter state consists of:
//   - 4KB of memory (0x000-0xFFF), with the hex digit font at 0x000-0x04F
//   - 16 general-purpose 8-bit registers (V0-VF), VF doubles as flag register
//   - a 16-bit index register I and a 16-bit program counter starting at ProgramStart
//   - a 16 entry call stack of return addresses
//   - a monochrome display buffer, 64x32 pixels unless configured otherwise
//   - a 16 key hexadecimal keypad
//   - the delay and sound timers
//
// # Execution
//
// The host drives the machine: Tick executes a single instruction, TickTimers
// decrements both timers and is expected to be called at 60 Hz. The ratio between
// both calls is host policy, 10 instruction ticks per timer tick is a common default.
//
// Every instruction is first decoded into an Instruction by the pure Decode function
// and then applied to the machine state. Faults like stack overflows or memory accesses
// outside of the address space are returned as errors that can be matched using
// errors.Is against the exported sentinel errors.
//
// # Usage Example
//
//	c, err := chip8.New(chip8.WithDisplaySize(64, 64))
//	if err != nil {
//		return err
//	}
//	if err := c.Load(rom); err != nil {
//		return fmt.Errorf("loading rom: %w", err)
//	}
//	for range 10 {
//		if err := c.Tick(); err != nil {
//			return err
//		}
//	}
//	c.TickTimers()
//
// The core performs no synchronization, all calls have to be serialized by the host.
package chip8
