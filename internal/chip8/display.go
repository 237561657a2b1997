package chip8

// Default display geometry of the COSMAC VIP CHIP-8 interpreter.
const (
	DefaultWidth  = 64
	DefaultHeight = 32
)

// display is a monochrome pixel grid stored row-major.
type display struct {
	width  int
	height int
	pixels []bool
}

func newDisplay(width, height int) display {
	return display{
		width:  width,
		height: height,
		pixels: make([]bool, width*height),
	}
}

func (d *display) clear() {
	clear(d.pixels)
}

// drawRow XORs the 8 bits of a sprite row onto the display, most significant bit
// first, starting at the given coordinates. Coordinates wrap around the edges.
// It returns whether any set pixel got unset.
func (d *display) drawRow(x, y int, row byte) bool {
	collision := false
	y %= d.height
	for column := range 8 {
		if row&(0x80>>column) == 0 {
			continue
		}

		i := y*d.width + (x+column)%d.width
		if d.pixels[i] {
			collision = true
		}
		d.pixels[i] = !d.pixels[i]
	}
	return collision
}
