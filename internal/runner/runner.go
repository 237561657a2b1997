// Package runner drives a CHIP-8 machine in frames. Every frame executes a
// fixed number of instructions followed by one timer tick, frames are paced
// by a ticker at the configured frame rate.
package runner

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/log"
	"github.com/retroenv/retrogolib/set"
)

// ErrStopped is returned when stepping a runner that has been stopped.
var ErrStopped = errors.New("runner stopped")

// FrameHook is called once per frame with the number of the frame.
type FrameHook func(frame uint64) error

// ToneFunc is called when the tone switches between audible and silent.
type ToneFunc func(audible bool)

// Runner executes a loaded program frame by frame.
type Runner struct {
	logger  *log.Logger
	machine *chip8.Chip8
	rom     []byte
	opts    options.Emulator

	breakpoints set.Set[uint16]
	beforeFrame []FrameHook
	afterFrame  []FrameHook
	onTone      ToneFunc

	frame   uint64
	audible bool
	stopped bool
}

// New returns a runner for the machine and loads the ROM into it.
func New(logger *log.Logger, machine *chip8.Chip8, rom []byte, opts options.Emulator) (*Runner, error) {
	if opts.TicksPerFrame <= 0 {
		return nil, fmt.Errorf("invalid ticks per frame %d", opts.TicksPerFrame)
	}

	breakpoints := set.New[uint16]()
	for _, address := range opts.Breakpoints {
		breakpoints.Add(address)
	}

	r := &Runner{
		logger:      logger,
		machine:     machine,
		rom:         rom,
		opts:        opts,
		breakpoints: breakpoints,
	}
	if err := machine.Load(rom); err != nil {
		return nil, fmt.Errorf("loading ROM: %w", err)
	}
	return r, nil
}

// Machine returns the driven machine.
func (r *Runner) Machine() *chip8.Chip8 {
	return r.machine
}

// Frame returns the number of completed frames.
func (r *Runner) Frame() uint64 {
	return r.frame
}

// Audible returns whether the tone is currently playing.
func (r *Runner) Audible() bool {
	return r.audible
}

// OnTone sets the callback for tone changes.
func (r *Runner) OnTone(fn ToneFunc) {
	r.onTone = fn
}

// BeforeFrame adds a hook that runs before the instructions of a frame.
func (r *Runner) BeforeFrame(hook FrameHook) {
	r.beforeFrame = append(r.beforeFrame, hook)
}

// AfterFrame adds a hook that runs after the timers of a frame were updated.
func (r *Runner) AfterFrame(hook FrameHook) {
	r.afterFrame = append(r.afterFrame, hook)
}

// Stop ends the run, Run returns after the current frame.
func (r *Runner) Stop() {
	r.stopped = true
}

// Stopped returns whether the runner has been stopped or reached its frame limit.
func (r *Runner) Stopped() bool {
	return r.stopped
}

// Reset restores the power-on state and reloads the ROM.
func (r *Runner) Reset() error {
	r.machine.Reset()
	if err := r.machine.Load(r.rom); err != nil {
		return fmt.Errorf("reloading ROM: %w", err)
	}
	r.setAudible(false)
	return nil
}

// Run steps frames at the configured frame rate until the runner is
// stopped, a fault halts it or the context gets cancelled.
func (r *Runner) Run(ctx context.Context) error {
	duration := r.opts.FrameDuration()
	if duration <= 0 {
		return fmt.Errorf("invalid frame rate %d", r.opts.FrameRate)
	}

	ticker := time.NewTicker(duration)
	defer ticker.Stop()

	for !r.stopped {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.Step(); err != nil {
				return err
			}
		}
	}
	return nil
}

// Step runs a single frame.
func (r *Runner) Step() error {
	if r.stopped {
		return ErrStopped
	}

	for _, hook := range r.beforeFrame {
		if err := hook(r.frame); err != nil {
			return fmt.Errorf("running frame hook: %w", err)
		}
	}
	if r.stopped {
		return nil
	}

	if err := r.executeFrame(); err != nil {
		return err
	}

	r.machine.TickTimers()
	r.setAudible(r.machine.SoundTimer() > 0)
	r.frame++

	for _, hook := range r.afterFrame {
		if err := hook(r.frame); err != nil {
			return fmt.Errorf("running frame hook: %w", err)
		}
	}

	if r.opts.Frames > 0 && r.frame >= r.opts.Frames {
		r.stopped = true
	}
	return nil
}

// executeFrame executes the instructions of a frame. A machine that waits
// for a key makes no progress until the keys change, which only happens
// between frames.
func (r *Runner) executeFrame() error {
	for range r.opts.TicksPerFrame {
		pc := r.machine.PC()
		if r.breakpoints.Contains(pc) {
			r.logState("Breakpoint reached")
		}
		if r.opts.Trace {
			r.trace(pc)
		}

		if err := r.machine.Tick(); err != nil {
			resume, err := r.handleFault(err)
			if err != nil {
				return err
			}
			if !resume {
				return nil
			}
			continue
		}

		if r.machine.Waiting() {
			return nil
		}
	}
	return nil
}

// handleFault applies the fault policy and returns whether the frame can
// continue executing.
func (r *Runner) handleFault(fault error) (bool, error) {
	switch r.opts.FaultPolicy {
	case options.FaultReset:
		r.logger.Error("Instruction fault, resetting machine", log.Err(fault))
		if err := r.Reset(); err != nil {
			return false, err
		}
		return false, nil

	case options.FaultIgnore:
		// a failed fetch leaves the program counter in place, ignoring it
		// would fault on every following tick
		if r.fetchFailed() {
			r.logState("Program counter outside of memory")
			return false, fmt.Errorf("frame %d: %w", r.frame, fault)
		}
		r.logger.Warn("Instruction fault ignored", log.Err(fault))
		return true, nil

	default:
		r.logState("Instruction fault")
		return false, fmt.Errorf("frame %d: %w", r.frame, fault)
	}
}

// fetchFailed returns whether the opcode at the program counter can not be read.
func (r *Runner) fetchFailed() bool {
	_, err := r.machine.Opcode()
	return err != nil
}

func (r *Runner) setAudible(audible bool) {
	if audible == r.audible {
		return
	}
	r.audible = audible
	if r.onTone != nil {
		r.onTone(audible)
	}
}

func (r *Runner) trace(pc uint16) {
	opcode, err := r.machine.Opcode()
	if err != nil {
		r.logger.Debug("Execute", log.Hex("pc", pc), log.Err(err))
		return
	}

	text, err := disasm.Format(opcode)
	if err != nil {
		text = fmt.Sprintf(".word $%04X", opcode)
	}
	info, _ := disasm.Lookup(opcode)
	r.logger.Debug("Execute",
		log.Hex("pc", pc),
		log.Hex("opcode", opcode),
		log.String("instruction", text),
		log.String("class", info.Class()))
}

func (r *Runner) logState(msg string) {
	m := r.machine
	registers := make([]byte, chip8.RegisterCount)
	for i := range registers {
		registers[i] = m.V(i)
	}

	r.logger.Info(msg,
		log.Hex("pc", m.PC()),
		log.Hex("i", m.Index()),
		log.Int("sp", m.SP()),
		log.String("v", fmt.Sprintf("% X", registers)),
		log.Uint8("dt", m.DelayTimer()),
		log.Uint8("st", m.SoundTimer()),
		log.Int("frame", int(r.frame)))
}
