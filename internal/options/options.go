// Package options contains the program options.
package options

import (
	"time"

	"github.com/retroenv/retrogolib/arch"
)

// Modes of operation.
const (
	ModeRun    = "run"
	ModeDisasm = "disasm"
)

// Frontends of the run mode.
const (
	FrontendWindow   = "window"
	FrontendTerminal = "terminal"
	FrontendNone     = "none"
)

// Fault policies that decide what happens when an instruction fails.
const (
	FaultHalt   = "halt"
	FaultReset  = "reset"
	FaultIgnore = "ignore"
)

// Parameters contains file path options.
type Parameters struct {
	Input  string `arg:"positional" usage:"ROM file to run or disassemble"`
	Output string `flag:"o" usage:"output .asm file in disasm mode (default: stdout)"`
	Batch  string `flag:"batch" usage:"disassemble all files matching pattern (e.g. *.ch8)"`
	Script string `flag:"script" usage:"Lua automation script"`
}

// Flags contains behavior options.
type Flags struct {
	Mode         string `flag:"mode" usage:"mode of operation: run, disasm" default:"run"`
	Frontend     string `flag:"frontend" usage:"run mode frontend: window, terminal, none" default:"window"`
	AssembleTest bool   `flag:"verify" usage:"verify listing by reassembling and comparing to input"`
	Debug        bool   `flag:"debug" usage:"enable debug logging"`
	Quiet        bool   `flag:"q" usage:"quiet mode"`
}

// OutputFlags contains listing formatting options.
type OutputFlags struct {
	NoHexComments bool `flag:"nohexcomments" usage:"omit hex opcode bytes in comments"`
	NoOffsets     bool `flag:"nooffsets" usage:"omit addresses in comments"`
}

// Program options of the interpreter.
type Program struct {
	Parameters
	Flags
	OutputFlags

	System arch.System // always the CHIP-8 system
}

// Emulator defines options to control the machine and its frame loop.
type Emulator struct {
	TicksPerFrame     int    `flag:"ticks" usage:"instructions per timer tick" default:"10"`
	FrameRate         int    `flag:"hz" usage:"timer ticks per second" default:"60"`
	Frames            uint64 `flag:"frames" usage:"stop after n frames, 0 runs until quit"`
	Width             int    `flag:"width" usage:"display width in pixels" default:"64"`
	Height            int    `flag:"height" usage:"display height in pixels" default:"32"`
	InclusiveTransfer bool   `flag:"inclusive-transfer" usage:"Fx55/Fx65 transfer V0 through Vx"`
	FaultPolicy       string `flag:"on-fault" usage:"instruction fault policy: halt, reset, ignore" default:"halt"`
	Breakpoints       []uint16
	Trace             bool `flag:"trace" usage:"log every executed instruction"`
}

// NewEmulator returns a new options instance with default options.
func NewEmulator() Emulator {
	return Emulator{
		TicksPerFrame: 10,
		FrameRate:     60,
		Width:         64,
		Height:        32,
		FaultPolicy:   FaultHalt,
	}
}

// FrameDuration returns the wall clock duration of a single frame.
func (e Emulator) FrameDuration() time.Duration {
	if e.FrameRate <= 0 {
		return 0
	}
	return time.Second / time.Duration(e.FrameRate)
}
