package chip8

import "errors"

// Errors returned by the interpreter. All of them describe corrupt programs or
// programming errors of the host, retrying the failed operation does not help.
var (
	ErrMemoryOutOfBounds   = errors.New("memory address out of bounds")
	ErrStackOverflow       = errors.New("stack overflow")
	ErrStackUnderflow      = errors.New("stack underflow")
	ErrUnimplementedOpcode = errors.New("unimplemented opcode")
	ErrInvalidKeyIndex     = errors.New("invalid key index")
	ErrRomTooLarge         = errors.New("rom too large")
)
