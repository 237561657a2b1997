package frontend

import (
	"testing"

	"github.com/retroenv/retrochip8/internal/chip8"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/options"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

func newTestControls(t *testing.T, rom ...byte) (*Controls, *runner.Runner) {
	t.Helper()
	machine, err := chip8.New()
	assert.NoError(t, err)
	r, err := runner.New(log.NewTestLogger(t), machine, rom, options.NewEmulator())
	assert.NoError(t, err)
	return NewControls(log.NewTestLogger(t), r, keymap.Default), r
}

func TestControls_Apply(t *testing.T) {
	t.Run("pause", func(t *testing.T) {
		c, _ := newTestControls(t, 0x12, 0x00)

		assert.NoError(t, c.Apply(ActionPause))
		assert.True(t, c.Paused())
		assert.NoError(t, c.Apply(ActionPause))
		assert.False(t, c.Paused())
	})

	t.Run("reset", func(t *testing.T) {
		// ld V0, $07; jp $202
		c, r := newTestControls(t, 0x60, 0x07, 0x12, 0x02)

		assert.NoError(t, r.Step())
		assert.Equal(t, uint8(7), r.Machine().V(0))

		assert.NoError(t, c.Apply(ActionReset))
		assert.Equal(t, uint8(0), r.Machine().V(0))
		assert.Equal(t, uint16(0x200), r.Machine().PC())
	})

	t.Run("quit", func(t *testing.T) {
		c, r := newTestControls(t, 0x12, 0x00)

		assert.NoError(t, c.Apply(ActionQuit))
		assert.True(t, r.Stopped())
	})

	t.Run("none", func(t *testing.T) {
		c, r := newTestControls(t, 0x12, 0x00)

		assert.NoError(t, c.Apply(ActionNone))
		assert.False(t, c.Paused())
		assert.False(t, r.Stopped())
	})
}

func TestControls_PollKeys(t *testing.T) {
	c, r := newTestControls(t, 0x12, 0x00)

	assert.NoError(t, c.PollKeys(func(key rune) bool {
		return key == 'w' || key == 'x'
	}))
	assert.True(t, r.Machine().KeyPressed(0x5))
	assert.True(t, r.Machine().KeyPressed(0x0))
	assert.False(t, r.Machine().KeyPressed(0x1))
	assert.Equal(t, "XW", c.PressedKeys())

	assert.NoError(t, c.PollKeys(func(rune) bool { return false }))
	assert.False(t, r.Machine().KeyPressed(0x5))
	assert.Equal(t, "", c.PressedKeys())
}

func TestControls_StatusTokens(t *testing.T) {
	// ld V0, $02; ld ST, V0; ld V1, K
	c, r := newTestControls(t, 0x60, 0x02, 0xF0, 0x18, 0xF1, 0x0A)

	tokens := c.StatusTokens()
	assert.Equal(t, []Token{
		{Name: "TONE"},
		{Name: "WAIT"},
		{Name: "PAUSE"},
		{Name: "KEYS"},
	}, tokens)
	assert.Equal(t, "", EnabledTokens(tokens))

	assert.NoError(t, r.Step())
	assert.NoError(t, c.Apply(ActionPause))
	assert.NoError(t, r.Machine().SetKey(0xF, true))

	tokens = c.StatusTokens()
	assert.Equal(t, []Token{
		{Name: "TONE", Enabled: true},
		{Name: "WAIT", Enabled: true},
		{Name: "PAUSE", Enabled: true},
		{Name: "KEYS V", Enabled: true},
	}, tokens)
	assert.Equal(t, "TONE WAIT PAUSE KEYS V", EnabledTokens(tokens))
}

func TestStatusLabel(t *testing.T) {
	// ld I, $123
	_, r := newTestControls(t, 0xA1, 0x23, 0x12, 0x02)

	assert.Equal(t, "PC $200  I $000  DT   0  ST   0", StatusLabel(r.Machine()))
	assert.NoError(t, r.Step())
	assert.Equal(t, "PC $202  I $123  DT   0  ST   0", StatusLabel(r.Machine()))
}

func TestOnOff(t *testing.T) {
	assert.Equal(t, "on", OnOff(true))
	assert.Equal(t, "off", OnOff(false))
}
