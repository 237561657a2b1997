// Package terminal runs a program in a terminal. The display is drawn with
// half block characters, key presses are read from raw mode stdin and the
// tone is signalled with the terminal bell.
package terminal

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/term"
)

// holdFrames is the number of frames a key stays pressed after a key press
// byte was received, terminals do not report key releases.
const holdFrames = 6

const (
	keyCtrlC  = 0x03
	keyEscape = 0x1B
)

const (
	clearScreen = "\x1b[2J"
	cursorHome  = "\x1b[H"
	hideCursor  = "\x1b[?25l"
	showCursor  = "\x1b[?25h"
	bell        = "\a"
)

// Frontend connects a runner to the terminal.
type Frontend struct {
	logger   *log.Logger
	runner   *runner.Runner
	layout   keymap.Layout
	controls *frontend.Controls
	input    *os.File
	output   io.Writer

	keys  chan byte
	stop  chan struct{}
	holds [chip8.KeyCount]int

	previous       []bool
	previousStatus string
}

// New returns a terminal frontend for the runner and registers its frame hooks.
func New(logger *log.Logger, r *runner.Runner, input *os.File, output io.Writer) *Frontend {
	f := &Frontend{
		logger: logger,
		runner: r,
		layout:   keymap.Default,
		controls: frontend.NewControls(logger, r, keymap.Default),
		input:    input,
		output:   output,
		keys:     make(chan byte, 64),
		stop:     make(chan struct{}),
	}

	r.BeforeFrame(f.processInput)
	r.AfterFrame(f.render)
	r.OnTone(f.tone)
	return f
}

// Run puts the terminal into raw mode and runs the program until it stops.
func (f *Frontend) Run(ctx context.Context) error {
	fd := int(f.input.Fd())
	if term.IsTerminal(fd) {
		oldState, err := term.MakeRaw(fd)
		if err != nil {
			return fmt.Errorf("setting raw mode: %w", err)
		}
		defer func() { _ = term.Restore(fd, oldState) }()
	}
	f.checkSize()

	go f.readInput()
	defer f.stopInput()

	_, _ = io.WriteString(f.output, clearScreen+hideCursor)
	defer func() { _, _ = io.WriteString(f.output, showCursor+"\r\n") }()

	return f.runner.Run(ctx)
}

func (f *Frontend) checkSize() {
	fd := int(os.Stdout.Fd())
	if !term.IsTerminal(fd) {
		return
	}
	columns, rows, err := term.GetSize(fd)
	if err != nil {
		return
	}

	machine := f.runner.Machine()
	needRows := (machine.Height()+1)/2 + 1
	if columns < machine.Width() || rows < needRows {
		f.logger.Warn("Terminal too small for display",
			log.Int("columns", columns),
			log.Int("rows", rows),
			log.Int("needed_columns", machine.Width()),
			log.Int("needed_rows", needRows))
	}
}

// readInput forwards key bytes until reading fails or the frontend stops.
func (f *Frontend) readInput() {
	buf := make([]byte, 16)
	for {
		n, err := f.input.Read(buf)
		for _, b := range inputKeys(buf[:n]) {
			select {
			case <-f.stop:
				return
			default:
			}

			select {
			case f.keys <- b:
			case <-f.stop:
				return
			}
		}
		if err != nil {
			return
		}
	}
}

// stopInput ends the input reader. A pending read is interrupted if the
// input supports deadlines, otherwise the reader returns after the next
// received byte.
func (f *Frontend) stopInput() {
	close(f.stop)
	_ = f.input.SetReadDeadline(time.Now())
}

// inputKeys returns the key bytes of a read chunk. An escape byte that was
// read alone is the escape key, otherwise it starts an escape sequence like
// an arrow key, which is dropped together with the rest of the chunk.
func inputKeys(chunk []byte) []byte {
	if len(chunk) == 1 {
		return chunk
	}
	if i := bytes.IndexByte(chunk, keyEscape); i >= 0 {
		return chunk[:i]
	}
	return chunk
}

// processInput applies received key bytes to the keypad and releases keys
// whose hold time expired.
func (f *Frontend) processInput(uint64) error {
	machine := f.runner.Machine()

	for index, hold := range f.holds {
		if hold == 0 {
			continue
		}
		f.holds[index]--
		if f.holds[index] == 0 {
			if err := machine.SetKey(index, false); err != nil {
				return err
			}
		}
	}

	for {
		select {
		case b := <-f.keys:
			if b == keyCtrlC || b == keyEscape {
				return f.controls.Apply(frontend.ActionQuit)
			}

			index, ok := f.layout.Lookup(rune(b))
			if !ok {
				continue
			}
			if err := machine.SetKey(index, true); err != nil {
				return err
			}
			f.holds[index] = holdFrames

		default:
			return nil
		}
	}
}

// render draws the display if it or the status changed since the last frame.
func (f *Frontend) render(frame uint64) error {
	machine := f.runner.Machine()
	pixels := machine.Display()
	status := frontend.StatusLabel(machine) + "  " + frontend.EnabledTokens(f.controls.StatusTokens())
	if slices.Equal(pixels, f.previous) && status == f.previousStatus {
		return nil
	}
	f.previous = pixels
	f.previousStatus = status

	var buf bytes.Buffer
	buf.WriteString(cursorHome)
	buf.WriteString(Render(pixels, machine.Width(), machine.Height()))
	fmt.Fprintf(&buf, "frame %-8d %-40s esc quits\x1b[K\r\n", frame, status)

	if _, err := f.output.Write(buf.Bytes()); err != nil {
		return fmt.Errorf("writing display: %w", err)
	}
	return nil
}

func (f *Frontend) tone(audible bool) {
	if audible {
		_, _ = io.WriteString(f.output, bell)
	}
}

// Render converts the display pixels to text, every character covers two
// pixel rows. Lines end with CR LF to render correctly in raw mode.
func Render(pixels []bool, width, height int) string {
	var sb strings.Builder
	for y := 0; y < height; y += 2 {
		for x := range width {
			top := pixels[y*width+x]
			bottom := y+1 < height && pixels[(y+1)*width+x]

			switch {
			case top && bottom:
				sb.WriteRune('█')
			case top:
				sb.WriteRune('▀')
			case bottom:
				sb.WriteRune('▄')
			default:
				sb.WriteByte(' ')
			}
		}
		sb.WriteString("\r\n")
	}
	return sb.String()
}
