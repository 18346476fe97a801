// Package joypad implements the DMG button matrix exposed at $FF00: the
// select-line multiplexing between the D-pad and action buttons, and the
// edge-triggered joypad interrupt.
package joypad

import "github.com/kestrelhollow/dmg-core/internal/irq"

// Button identifies one of the eight physical buttons.
type Button int

const (
	Right Button = iota
	Left
	Up
	Down
	A
	B
	Select
	Start
)

// Pad owns the pressed-button mask and the P14/P15 select lines written to
// $FF00's upper nibble.
type Pad struct {
	pressed byte // bitmask, bit order matches Button iota; 1 = pressed
	sel     byte // bits 5:4 as last written, other bits ignored

	lower4 byte // last computed active-low lower nibble, for edge detection

	irq *irq.Controller
}

// New returns a Pad with no buttons pressed, wired to the given interrupt
// controller.
func New(ic *irq.Controller) *Pad {
	p := &Pad{irq: ic}
	p.lower4 = 0x0F
	return p
}

// Reset clears all button state and the select lines.
func (p *Pad) Reset() {
	p.pressed = 0
	p.sel = 0
	p.lower4 = 0x0F
}

// SetButton updates whether a button is currently held, recomputing the
// active-low lower nibble and raising the joypad interrupt on any 1->0
// transition of a selected line.
func (p *Pad) SetButton(b Button, down bool) {
	bit := byte(1) << uint(b)
	if down {
		p.pressed |= bit
	} else {
		p.pressed &^= bit
	}
	p.recompute()
}

// Read returns the $FF00 register value: bits 7:6 read as 1, bits 5:4 are
// the select lines as last written, bits 3:0 are active-low button state
// for whichever group(s) are selected.
func (p *Pad) Read() byte {
	return 0xC0 | (p.sel & 0x30) | p.lower4
}

// Write stores a write to $FF00; only bits 5:4 are writable.
func (p *Pad) Write(v byte) {
	p.sel = v & 0x30
	p.recompute()
}

func (p *Pad) recompute() {
	newLower := byte(0x0F)
	if p.sel&0x10 == 0 { // P14 low selects the D-pad
		if p.pressed&(1<<Right) != 0 {
			newLower &^= 0x01
		}
		if p.pressed&(1<<Left) != 0 {
			newLower &^= 0x02
		}
		if p.pressed&(1<<Up) != 0 {
			newLower &^= 0x04
		}
		if p.pressed&(1<<Down) != 0 {
			newLower &^= 0x08
		}
	}
	if p.sel&0x20 == 0 { // P15 low selects the action buttons
		if p.pressed&(1<<A) != 0 {
			newLower &^= 0x01
		}
		if p.pressed&(1<<B) != 0 {
			newLower &^= 0x02
		}
		if p.pressed&(1<<Select) != 0 {
			newLower &^= 0x04
		}
		if p.pressed&(1<<Start) != 0 {
			newLower &^= 0x08
		}
	}

	falling := p.lower4 &^ newLower
	if falling != 0 {
		p.irq.Request(irq.Joypad)
	}
	p.lower4 = newLower
}
