// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/retroenv/retrochip8/internal/disasm"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/arch"
)

// ParseFlags parses command line flags and returns program, emulator and listing options
func ParseFlags() (options.Program, options.Emulator, disasm.Options, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	opts := options.Program{System: arch.CHIP8System}
	emuOpts := options.NewEmulator()
	var breakpoints string
	readOptionFlags(flags, &opts)
	readEmulatorFlags(flags, &emuOpts, &breakpoints)
	listingOptions := readListingFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || (len(args) == 0 && opts.Batch == "") {
		return opts, emuOpts, disasm.Options{}, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, emuOpts, disasm.Options{}, err
	}

	normalizeOptions(&opts, &emuOpts)
	if err := validateOptionCombinations(opts, emuOpts); err != nil {
		return opts, emuOpts, disasm.Options{}, err
	}

	emuOpts.Breakpoints, err = parseAddresses(breakpoints)
	if err != nil {
		return opts, emuOpts, disasm.Options{}, err
	}

	if opts.Batch == "" {
		opts.Input = args[0]
	}

	return opts, emuOpts, listingOptions(), nil
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	fmt.Printf("usage: retrochip8 [options] <ROM file>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks if arguments are in correct order
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after ROM file, please pass the ROM file as last argument", arg),
			}
		}
	}
	return nil
}

// normalizeOptions normalizes option values
func normalizeOptions(opts *options.Program, emuOpts *options.Emulator) {
	opts.Mode = strings.ToLower(opts.Mode)
	opts.Frontend = strings.ToLower(opts.Frontend)
	emuOpts.FaultPolicy = strings.ToLower(emuOpts.FaultPolicy)
}

// validateOptionCombinations validates option values and combinations
func validateOptionCombinations(opts options.Program, emuOpts options.Emulator) error {
	if err := validateChoice("mode", opts.Mode, options.ModeRun, options.ModeDisasm); err != nil {
		return err
	}
	if err := validateChoice("frontend", opts.Frontend,
		options.FrontendWindow, options.FrontendTerminal, options.FrontendNone); err != nil {
		return err
	}
	if err := validateChoice("fault policy", emuOpts.FaultPolicy,
		options.FaultHalt, options.FaultReset, options.FaultIgnore); err != nil {
		return err
	}

	if opts.Mode == options.ModeRun {
		if opts.AssembleTest {
			return fmt.Errorf("option -verify requires -mode %s", options.ModeDisasm)
		}
		if opts.Batch != "" {
			return fmt.Errorf("option -batch requires -mode %s", options.ModeDisasm)
		}
	}

	if emuOpts.TicksPerFrame <= 0 {
		return fmt.Errorf("invalid ticks per frame %d", emuOpts.TicksPerFrame)
	}
	if emuOpts.FrameRate <= 0 {
		return fmt.Errorf("invalid frame rate %d", emuOpts.FrameRate)
	}
	if emuOpts.Width <= 0 || emuOpts.Height <= 0 {
		return fmt.Errorf("invalid display size %dx%d", emuOpts.Width, emuOpts.Height)
	}
	return nil
}

func validateChoice(name, value string, valid ...string) error {
	if slices.Contains(valid, value) {
		return nil
	}
	return fmt.Errorf("unsupported %s: %s. Valid options: %s",
		name, value, strings.Join(valid, ", "))
}

// parseAddresses parses a comma separated list of addresses in $hex, 0xhex
// or decimal notation.
func parseAddresses(s string) ([]uint16, error) {
	if s == "" {
		return nil, nil
	}

	var addresses []uint16
	for _, field := range strings.Split(s, ",") {
		field = strings.TrimSpace(field)

		var (
			value uint64
			err   error
		)
		switch {
		case strings.HasPrefix(field, "$"):
			value, err = strconv.ParseUint(field[1:], 16, 16)
		case strings.HasPrefix(field, "0x"), strings.HasPrefix(field, "0X"):
			value, err = strconv.ParseUint(field[2:], 16, 16)
		default:
			value, err = strconv.ParseUint(field, 10, 16)
		}
		if err != nil || value > 0xFFF {
			return nil, fmt.Errorf("invalid breakpoint address '%s'", field)
		}
		addresses = append(addresses, uint16(value))
	}
	return addresses, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Output, "o", "", "name of the output .asm file in disasm mode, printed on console if no name given")
	flags.StringVar(&opts.Batch, "batch", "", "disassemble a batch of given path and file mask and automatically .asm file naming, for example *.ch8")
	flags.StringVar(&opts.Script, "script", "", "name of a Lua script that automates input")
	flags.StringVar(&opts.Mode, "mode", options.ModeRun, "mode of operation (run/disasm)")
	flags.StringVar(&opts.Frontend, "frontend", options.FrontendWindow, "frontend to run the ROM in (window/terminal/none)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debugging options for extended logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
	flags.BoolVar(&opts.AssembleTest, "verify", false, "verify the generated listing by assembling it and check if it matches the input")
}

func readEmulatorFlags(flags *flag.FlagSet, opts *options.Emulator, breakpoints *string) {
	flags.IntVar(&opts.TicksPerFrame, "ticks", opts.TicksPerFrame, "instructions executed per timer tick")
	flags.IntVar(&opts.FrameRate, "hz", opts.FrameRate, "timer ticks per second")
	flags.Uint64Var(&opts.Frames, "frames", 0, "stop after the given number of frames, 0 runs until quit")
	flags.IntVar(&opts.Width, "width", opts.Width, "display width in pixels")
	flags.IntVar(&opts.Height, "height", opts.Height, "display height in pixels")
	flags.BoolVar(&opts.InclusiveTransfer, "inclusive-transfer", false, "Fx55/Fx65 transfer V0 through Vx instead of V0 through Vx-1")
	flags.StringVar(&opts.FaultPolicy, "on-fault", opts.FaultPolicy, "what to do when an instruction fails (halt/reset/ignore)")
	flags.StringVar(breakpoints, "break", "", "comma separated addresses that log the machine state when reached")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction")
}

func readListingFlags(flags *flag.FlagSet, opts *options.Program) func() disasm.Options {
	flags.BoolVar(&opts.NoHexComments, "nohexcomments", false, "do not output opcode bytes as hex values in comments")
	flags.BoolVar(&opts.NoOffsets, "nooffsets", false, "do not output addresses in comments")

	return func() disasm.Options {
		return createListingOptions(*opts)
	}
}

// createListingOptions creates listing options based on program options
func createListingOptions(opts options.Program) disasm.Options {
	listingOptions := disasm.DefaultOptions()
	listingOptions.HexComments = !opts.NoHexComments
	listingOptions.OffsetComments = !opts.NoOffsets
	return listingOptions
}
