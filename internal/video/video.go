// Package video runs a program in a window. Each window update steps one
// frame, the display is scaled up and a status line shows the machine state.
package video

import (
	"context"
	"fmt"
	"image/color"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	"github.com/hajimehoshi/ebiten/v2/text"
	"github.com/retroenv/retrochip8/internal/frontend"
	"github.com/retroenv/retrochip8/internal/keymap"
	"github.com/retroenv/retrochip8/internal/runner"
	"github.com/retroenv/retrogolib/log"
	"golang.org/x/image/font/basicfont"
)

const (
	scale        = 10
	statusHeight = 18
)

var (
	pixelOn    = color.RGBA{R: 0xE0, G: 0xE0, B: 0xE0, A: 0xFF}
	pixelOff   = color.RGBA{R: 0x10, G: 0x10, B: 0x10, A: 0xFF}
	labelColor = color.RGBA{R: 190, G: 190, B: 190, A: 255}
	offColor   = color.RGBA{R: 120, G: 120, B: 120, A: 255}
	onColor    = color.RGBA{R: 0, G: 220, B: 90, A: 255}
)

var hostKeys = map[rune]ebiten.Key{
	'1': ebiten.KeyDigit1, '2': ebiten.KeyDigit2, '3': ebiten.KeyDigit3, '4': ebiten.KeyDigit4,
	'q': ebiten.KeyQ, 'w': ebiten.KeyW, 'e': ebiten.KeyE, 'r': ebiten.KeyR,
	'a': ebiten.KeyA, 's': ebiten.KeyS, 'd': ebiten.KeyD, 'f': ebiten.KeyF,
	'z': ebiten.KeyZ, 'x': ebiten.KeyX, 'c': ebiten.KeyC, 'v': ebiten.KeyV,
}

// hotkeys are checked in order, only the first pressed one is applied.
var hotkeys = []struct {
	key    ebiten.Key
	action frontend.Action
}{
	{ebiten.KeyEscape, frontend.ActionQuit},
	{ebiten.KeyP, frontend.ActionPause},
	{ebiten.KeyF5, frontend.ActionReset},
}

// keyState reports the state of a host key.
type keyState func(key ebiten.Key) bool

// Game implements ebiten.Game for a runner.
type Game struct {
	ctx      context.Context
	runner   *runner.Runner
	controls *frontend.Controls

	screen *ebiten.Image
	pixels []byte
}

// New returns a window frontend for the runner.
func New(ctx context.Context, logger *log.Logger, r *runner.Runner) *Game {
	machine := r.Machine()
	g := &Game{
		ctx:      ctx,
		runner:   r,
		controls: frontend.NewControls(logger, r, keymap.Default),
		pixels:   make([]byte, machine.Width()*machine.Height()*4),
	}

	r.OnTone(func(audible bool) {
		logger.Debug("Tone", log.String("state", frontend.OnOff(audible)))
	})
	return g
}

// Run opens the window and runs the program until the window is closed,
// the program stops or the context gets cancelled.
func (g *Game) Run(frameRate int, title string) error {
	machine := g.runner.Machine()
	ebiten.SetTPS(frameRate)
	ebiten.SetWindowSize(machine.Width()*scale, machine.Height()*scale+statusHeight)
	ebiten.SetWindowTitle(title)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)

	if err := ebiten.RunGame(g); err != nil {
		return fmt.Errorf("running window: %w", err)
	}
	return g.ctx.Err()
}

// Update polls the keyboard and steps a frame.
func (g *Game) Update() error {
	if ebiten.IsWindowBeingClosed() {
		return ebiten.Termination
	}
	return g.update(inpututil.IsKeyJustPressed, ebiten.IsKeyPressed)
}

// update applies the hotkeys and steps a frame unless paused. justPressed
// reports hotkeys pressed since the last update, pressed the held keys.
func (g *Game) update(justPressed, pressed keyState) error {
	if g.ctx.Err() != nil || g.runner.Stopped() {
		return ebiten.Termination
	}

	if err := g.controls.Apply(hotkeyAction(justPressed)); err != nil {
		return err
	}
	if g.runner.Stopped() {
		return ebiten.Termination
	}
	if g.controls.Paused() {
		return nil
	}

	if err := g.controls.PollKeys(func(key rune) bool {
		hostKey, ok := hostKeys[key]
		return ok && pressed(hostKey)
	}); err != nil {
		return err
	}
	return g.runner.Step()
}

func hotkeyAction(justPressed keyState) frontend.Action {
	for _, hotkey := range hotkeys {
		if justPressed(hotkey.key) {
			return hotkey.action
		}
	}
	return frontend.ActionNone
}

// Draw uploads the display and draws the status line.
func (g *Game) Draw(screen *ebiten.Image) {
	machine := g.runner.Machine()
	width, height := machine.Width(), machine.Height()
	if g.screen == nil {
		g.screen = ebiten.NewImage(width, height)
	}

	for i, set := range machine.Display() {
		c := pixelOff
		if set {
			c = pixelOn
		}
		offset := i * 4
		g.pixels[offset] = c.R
		g.pixels[offset+1] = c.G
		g.pixels[offset+2] = c.B
		g.pixels[offset+3] = c.A
	}
	g.screen.WritePixels(g.pixels)

	op := &ebiten.DrawImageOptions{}
	op.GeoM.Scale(scale, scale)
	screen.DrawImage(g.screen, op)

	drawStatusLine(screen, 4, height*scale+statusHeight-5,
		frontend.StatusLabel(machine), g.controls.StatusTokens())
}

// Layout returns the logical screen size.
func (g *Game) Layout(_, _ int) (int, int) {
	machine := g.runner.Machine()
	return machine.Width() * scale, machine.Height()*scale + statusHeight
}

func drawStatusLine(screen *ebiten.Image, x, baselineY int, label string, tokens []frontend.Token) {
	face := basicfont.Face7x13

	text.Draw(screen, label, face, x, baselineY, labelColor)
	cursorX := x + text.BoundString(face, label).Dx() + 12

	for _, token := range tokens {
		c := offColor
		if token.Enabled {
			c = onColor
		}
		text.Draw(screen, token.Name, face, cursorX, baselineY, c)
		cursorX += text.BoundString(face, token.Name).Dx() + 8
	}
}
