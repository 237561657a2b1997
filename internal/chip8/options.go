package chip8

import (
	"errors"
	"fmt"
	"math/rand/v2"
)

// Option configures an interpreter instance, options are kept across resets.
type Option func(*config) error

// Quirks selects between behaviors that differ between CHIP-8 interpreters.
type Quirks struct {
	// InclusiveTransfer makes Fx55 and Fx65 transfer V0 to Vx instead of V0 to V(x-1).
	InclusiveTransfer bool
}

type config struct {
	width  int
	height int
	quirks Quirks
	random func() byte
}

func defaultConfig() config {
	return config{
		width:  DefaultWidth,
		height: DefaultHeight,
		random: func() byte {
			return byte(rand.UintN(256))
		},
	}
}

// WithDisplaySize sets the display geometry in pixels.
func WithDisplaySize(width, height int) Option {
	return func(c *config) error {
		if width <= 0 || height <= 0 {
			return fmt.Errorf("invalid display size %dx%d", width, height)
		}
		c.width = width
		c.height = height
		return nil
	}
}

// WithQuirks sets the interpreter quirks.
func WithQuirks(quirks Quirks) Option {
	return func(c *config) error {
		c.quirks = quirks
		return nil
	}
}

// WithRandom sets the source of random bytes used by the Cxnn instruction.
func WithRandom(random func() byte) Option {
	return func(c *config) error {
		if random == nil {
			return errors.New("random source must not be nil")
		}
		c.random = random
		return nil
	}
}
