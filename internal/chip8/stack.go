package chip8

// StackSize is the number of return addresses the call stack can hold.
const StackSize = 16

type stack struct {
	entries [StackSize]uint16
	sp      uint16
}

func (s *stack) push(address uint16) error {
	if int(s.sp) >= len(s.entries) {
		return ErrStackOverflow
	}
	s.entries[s.sp] = address
	s.sp++
	return nil
}

func (s *stack) pop() (uint16, error) {
	if s.sp == 0 {
		return 0, ErrStackUnderflow
	}
	s.sp--
	return s.entries[s.sp], nil
}
