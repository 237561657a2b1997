// Package script runs Lua scripts that automate a running program.
//
// A script may define a global function frame(n) which is called before the
// instructions of every frame execute. The following globals are available:
//
//	press(k), release(k)  set the state of keypad key k
//	reg(x)                value of register Vx
//	pc(), index()         program counter and index register
//	peek(addr)            memory byte at addr
//	sound(), delay()      timer values
//	waiting()             whether the program waits for a key press
//	frame_count()         number of completed frames
//	log(msg)              write a message to the log
//	quit()                stop the run after the current frame hook
package script

import (
	"fmt"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
	lua "github.com/yuin/gopher-lua"
)

// frameFunction is the name of the global Lua function called every frame.
const frameFunction = "frame"

// Script is a loaded Lua script bound to a runner.
type Script struct {
	logger *log.Logger
	runner *runner.Runner
	state  *lua.LState
}

// Load loads a Lua script file and registers its frame hook with the runner.
func Load(logger *log.Logger, r *runner.Runner, path string) (*Script, error) {
	s := newScript(logger, r)
	if err := s.state.DoFile(path); err != nil {
		s.Close()
		return nil, fmt.Errorf("loading script %s: %w", path, err)
	}
	r.BeforeFrame(s.Frame)
	return s, nil
}

// LoadString loads a Lua script from source and registers its frame hook with the runner.
func LoadString(logger *log.Logger, r *runner.Runner, source string) (*Script, error) {
	s := newScript(logger, r)
	if err := s.state.DoString(source); err != nil {
		s.Close()
		return nil, fmt.Errorf("loading script: %w", err)
	}
	r.BeforeFrame(s.Frame)
	return s, nil
}

func newScript(logger *log.Logger, r *runner.Runner) *Script {
	s := &Script{
		logger: logger,
		runner: r,
		state:  lua.NewState(),
	}
	s.registerGlobals()
	return s
}

// Close releases the Lua state.
func (s *Script) Close() {
	s.state.Close()
}

// Frame calls the frame function of the script if it defines one.
func (s *Script) Frame(frame uint64) error {
	fn, ok := s.state.GetGlobal(frameFunction).(*lua.LFunction)
	if !ok {
		return nil
	}

	err := s.state.CallByParam(lua.P{
		Fn:      fn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(frame))
	if err != nil {
		return fmt.Errorf("calling %s(%d): %w", frameFunction, frame, err)
	}
	return nil
}

func (s *Script) registerGlobals() {
	functions := map[string]lua.LGFunction{
		"press":       s.setKey(true),
		"release":     s.setKey(false),
		"reg":         s.reg,
		"pc":          s.pc,
		"index":       s.index,
		"peek":        s.peek,
		"sound":       s.sound,
		"delay":       s.delay,
		"waiting":     s.waiting,
		"frame_count": s.frameCount,
		"log":         s.logMessage,
		"quit":        s.quit,
	}
	for name, fn := range functions {
		s.state.SetGlobal(name, s.state.NewFunction(fn))
	}
}

func (s *Script) machine() *chip8.Chip8 {
	return s.runner.Machine()
}

func (s *Script) setKey(pressed bool) lua.LGFunction {
	return func(L *lua.LState) int {
		key := L.CheckInt(1)
		if err := s.machine().SetKey(key, pressed); err != nil {
			L.RaiseError("%s", err.Error())
		}
		return 0
	}
}

func (s *Script) reg(L *lua.LState) int {
	x := L.CheckInt(1)
	if x < 0 || x >= chip8.RegisterCount {
		L.ArgError(1, "register index out of range")
		return 0
	}
	L.Push(lua.LNumber(s.machine().V(x)))
	return 1
}

func (s *Script) pc(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine().PC()))
	return 1
}

func (s *Script) index(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine().Index()))
	return 1
}

func (s *Script) peek(L *lua.LState) int {
	address := L.CheckInt(1)
	if address < 0 || address >= chip8.MemorySize {
		L.ArgError(1, "address out of range")
		return 0
	}
	value, err := s.machine().ReadMemory(uint16(address))
	if err != nil {
		L.RaiseError("%s", err.Error())
		return 0
	}
	L.Push(lua.LNumber(value))
	return 1
}

func (s *Script) sound(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine().SoundTimer()))
	return 1
}

func (s *Script) delay(L *lua.LState) int {
	L.Push(lua.LNumber(s.machine().DelayTimer()))
	return 1
}

func (s *Script) waiting(L *lua.LState) int {
	L.Push(lua.LBool(s.machine().Waiting()))
	return 1
}

func (s *Script) frameCount(L *lua.LState) int {
	L.Push(lua.LNumber(s.runner.Frame()))
	return 1
}

func (s *Script) logMessage(L *lua.LState) int {
	s.logger.Info("Script", log.String("message", L.CheckString(1)))
	return 0
}

func (s *Script) quit(*lua.LState) int {
	s.runner.Stop()
	return 0
}
