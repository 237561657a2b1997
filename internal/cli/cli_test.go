package cli

import (
	"errors"
	"os"
	"testing"

	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrogolib/arch"
	"github.com/retroenv/retrogolib/assert"
)

func setArgs(t *testing.T, args ...string) {
	t.Helper()
	oldArgs := os.Args
	t.Cleanup(func() { os.Args = oldArgs })
	os.Args = args
}

func TestParseFlags_Defaults(t *testing.T) {
	setArgs(t, "prog", "test.ch8")

	opts, emuOpts, listingOpts, err := ParseFlags()
	assert.NoError(t, err)
	assert.Equal(t, "test.ch8", opts.Input)
	assert.Equal(t, options.ModeRun, opts.Mode)
	assert.Equal(t, options.FrontendWindow, opts.Frontend)
	assert.Equal(t, arch.CHIP8System, opts.System)
	assert.Equal(t, 10, emuOpts.TicksPerFrame)
	assert.Equal(t, 60, emuOpts.FrameRate)
	assert.Equal(t, 64, emuOpts.Width)
	assert.Equal(t, 32, emuOpts.Height)
	assert.Equal(t, options.FaultHalt, emuOpts.FaultPolicy)
	assert.Len(t, emuOpts.Breakpoints, 0)
	assert.True(t, listingOpts.HexComments)
	assert.True(t, listingOpts.OffsetComments)
}

func TestParseFlags_ListingOptions(t *testing.T) {
	tests := []struct {
		name           string
		args           []string
		hexComments    bool
		offsetComments bool
	}{
		{
			name:           "default flags",
			args:           []string{"prog", "-mode", "disasm", "test.ch8"},
			hexComments:    true,
			offsetComments: true,
		},
		{
			name:           "nohexcomments flag",
			args:           []string{"prog", "-mode", "disasm", "-nohexcomments", "test.ch8"},
			offsetComments: true,
		},
		{
			name:        "nooffsets flag",
			args:        []string{"prog", "-mode", "disasm", "-nooffsets", "test.ch8"},
			hexComments: true,
		},
		{
			name: "all listing flags",
			args: []string{"prog", "-mode", "disasm", "-nohexcomments", "-nooffsets", "test.ch8"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)

			_, _, got, err := ParseFlags()
			assert.NoError(t, err)
			assert.Equal(t, tt.hexComments, got.HexComments)
			assert.Equal(t, tt.offsetComments, got.OffsetComments)
		})
	}
}

func TestParseFlags_EmulatorOptions(t *testing.T) {
	setArgs(t, "prog", "-ticks", "20", "-hz", "30", "-frames", "100", "-width", "64", "-height", "64",
		"-inclusive-transfer", "-on-fault", "RESET", "-break", "$200,0x20a,528", "-trace",
		"-frontend", "none", "test.ch8")

	opts, emuOpts, _, err := ParseFlags()
	assert.NoError(t, err)
	assert.Equal(t, options.FrontendNone, opts.Frontend)
	assert.Equal(t, 20, emuOpts.TicksPerFrame)
	assert.Equal(t, 30, emuOpts.FrameRate)
	assert.Equal(t, uint64(100), emuOpts.Frames)
	assert.Equal(t, 64, emuOpts.Height)
	assert.True(t, emuOpts.InclusiveTransfer)
	assert.Equal(t, options.FaultReset, emuOpts.FaultPolicy)
	assert.Equal(t, []uint16{0x200, 0x20A, 0x210}, emuOpts.Breakpoints)
	assert.True(t, emuOpts.Trace)
}

func TestParseFlags_Errors(t *testing.T) {
	tests := []struct {
		name  string
		args  []string
		usage bool
	}{
		{"no file", []string{"prog"}, true},
		{"argument after file", []string{"prog", "test.ch8", "-debug"}, true},
		{"invalid mode", []string{"prog", "-mode", "fly", "test.ch8"}, false},
		{"invalid frontend", []string{"prog", "-frontend", "tv", "test.ch8"}, false},
		{"invalid fault policy", []string{"prog", "-on-fault", "panic", "test.ch8"}, false},
		{"verify in run mode", []string{"prog", "-verify", "test.ch8"}, false},
		{"zero ticks", []string{"prog", "-ticks", "0", "test.ch8"}, false},
		{"invalid breakpoint", []string{"prog", "-break", "$1000", "test.ch8"}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setArgs(t, tt.args...)

			_, _, _, err := ParseFlags()
			assert.Error(t, err)

			var usageErr *UsageError
			assert.Equal(t, tt.usage, errors.As(err, &usageErr))
		})
	}
}

func TestParseAddresses(t *testing.T) {
	tests := []struct {
		input    string
		expected []uint16
		wantErr  bool
	}{
		{input: "", expected: nil},
		{input: "$2A0", expected: []uint16{0x2A0}},
		{input: "0x200, 0x300", expected: []uint16{0x200, 0x300}},
		{input: "4095", expected: []uint16{0xFFF}},
		{input: "4096", wantErr: true},
		{input: "$xyz", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			addresses, err := parseAddresses(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.expected, addresses)
		})
	}
}
