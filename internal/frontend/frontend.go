// Package frontend contains the parts of the user interfaces that do not
// depend on a host toolkit: hotkey actions, keypad polling and the content
// of the status line.
package frontend

import (
	"fmt"
	"strings"
	"unicode"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
)

// Action is a hotkey action of a frontend.
type Action int

// Hotkey actions.
const (
	ActionNone Action = iota
	ActionQuit
	ActionPause
	ActionReset
)

// Token is a named flag of the status line.
type Token struct {
	Name    string
	Enabled bool
}

// Controls applies hotkey actions to a runner.
type Controls struct {
	logger *log.Logger
	runner *runner.Runner
	layout keymap.Layout
	paused bool
}

// NewControls returns the controls for a runner using the keypad layout.
func NewControls(logger *log.Logger, r *runner.Runner, layout keymap.Layout) *Controls {
	return &Controls{
		logger: logger,
		runner: r,
		layout: layout,
	}
}

// Paused returns whether frames should not be stepped.
func (c *Controls) Paused() bool {
	return c.paused
}

// Apply executes a hotkey action. Quitting stops the runner.
func (c *Controls) Apply(action Action) error {
	switch action {
	case ActionQuit:
		c.runner.Stop()

	case ActionPause:
		c.paused = !c.paused
		c.logger.Debug("Pause", log.String("state", OnOff(c.paused)))

	case ActionReset:
		if err := c.runner.Reset(); err != nil {
			return fmt.Errorf("resetting machine: %w", err)
		}
		c.logger.Info("Machine reset")
	}
	return nil
}

// PollKeys sets every bound keypad key to the state of its host key.
func (c *Controls) PollKeys(pressed func(key rune) bool) error {
	machine := c.runner.Machine()
	for _, binding := range c.layout {
		if err := machine.SetKey(binding.Index, pressed(binding.Key)); err != nil {
			return err
		}
	}
	return nil
}

// PressedKeys returns the host keys of all pressed keypad keys in keypad order.
func (c *Controls) PressedKeys() string {
	machine := c.runner.Machine()
	var sb strings.Builder
	for index := range chip8.KeyCount {
		if !machine.KeyPressed(index) {
			continue
		}
		if key, ok := c.layout.Key(index); ok {
			sb.WriteRune(unicode.ToUpper(key))
		}
	}
	return sb.String()
}

// StatusTokens returns the flags of the status line.
func (c *Controls) StatusTokens() []Token {
	keys := c.PressedKeys()
	return []Token{
		{Name: "TONE", Enabled: c.runner.Audible()},
		{Name: "WAIT", Enabled: c.runner.Machine().Waiting()},
		{Name: "PAUSE", Enabled: c.paused},
		{Name: strings.TrimSpace("KEYS " + keys), Enabled: keys != ""},
	}
}

// StatusLabel returns the register part of the status line.
func StatusLabel(machine *chip8.Chip8) string {
	return fmt.Sprintf("PC $%03X  I $%03X  DT %3d  ST %3d",
		machine.PC(), machine.Index(), machine.DelayTimer(), machine.SoundTimer())
}

// EnabledTokens returns the names of the enabled tokens separated by spaces.
func EnabledTokens(tokens []Token) string {
	var names []string
	for _, token := range tokens {
		if token.Enabled {
			names = append(names, token.Name)
		}
	}
	return strings.Join(names, " ")
}

// OnOff returns the state as text for log output.
func OnOff(enabled bool) string {
	if enabled {
		return "on"
	}
	return "off"
}
