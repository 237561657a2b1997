// Package keymap maps host keyboard keys to the 16 keys of the CHIP-8 keypad.
//
// The keypad layout
//
//	1 2 3 C
//	4 5 6 D
//	7 8 9 E
//	A 0 B F
//
// is mapped to the left block of a QWERTY keyboard:
//
//	1 2 3 4
//	Q W E R
//	A S D F
//	Z X C V
package keymap

import "unicode"

// Binding assigns a host key to a keypad index.
type Binding struct {
	Key   rune
	Index int
}

// Default is the QWERTY layout.
var Default = Layout{
	{'1', 0x1}, {'2', 0x2}, {'3', 0x3}, {'4', 0xC},
	{'q', 0x4}, {'w', 0x5}, {'e', 0x6}, {'r', 0xD},
	{'a', 0x7}, {'s', 0x8}, {'d', 0x9}, {'f', 0xE},
	{'z', 0xA}, {'x', 0x0}, {'c', 0xB}, {'v', 0xF},
}

// Layout is a list of key bindings.
type Layout []Binding

// Lookup returns the keypad index for a host key, letters match case insensitively.
func (l Layout) Lookup(key rune) (int, bool) {
	key = unicode.ToLower(key)
	for _, binding := range l {
		if binding.Key == key {
			return binding.Index, true
		}
	}
	return 0, false
}

// Key returns the host key bound to a keypad index.
func (l Layout) Key(index int) (rune, bool) {
	for _, binding := range l {
		if binding.Index == index {
			return binding.Key, true
		}
	}
	return 0, false
}
