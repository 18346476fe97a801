// Package system wires the cartridge, bus, and CPU into the single
// host-facing object: load a ROM, step whole frames, and read back the
// framebuffer, external RAM, and button state.
package system

import (
	"github.com/kestrelhollow/dmg-core/internal/bus"
	"github.com/kestrelhollow/dmg-core/internal/cart"
	"github.com/kestrelhollow/dmg-core/internal/cpu"
	"github.com/kestrelhollow/dmg-core/internal/joypad"
	"github.com/kestrelhollow/dmg-core/internal/ppu"
)

// mCyclesToT converts the CPU's m-cycle step cost to the T-cycles the bus,
// timer, and PPU tick on.
const mCyclesToT = 4

// System owns exactly one cartridge, bus, and CPU.
type System struct {
	bus *bus.Bus
	cpu *cpu.CPU
}

// New returns a System with no ROM loaded; call LoadROM before StepFrame.
func New() *System {
	return &System{}
}

// LoadROM parses the ROM's header, builds the matching cartridge, and
// resets the bus and CPU to the DMG power-on state.
func (s *System) LoadROM(rom []byte) error {
	c, err := cart.Load(rom)
	if err != nil {
		return err
	}
	b := bus.New(c)
	s.bus = b
	s.cpu = cpu.New(b)
	s.cpu.Reset()
	return nil
}

// StepFrame runs the CPU until the PPU reports a freshly latched frame,
// ticking the bus (and therefore the timer, PPU, and OAM DMA) by each
// instruction's T-cycle cost.
func (s *System) StepFrame() bool {
	for {
		mCycles := s.cpu.Step()
		if s.bus.Tick(int(mCycles) * mCyclesToT) {
			return true
		}
	}
}

// Framebuffer returns the most recently completed frame, 2-bit palette
// indices in row-major order.
func (s *System) Framebuffer() *[ppu.ScreenWidth * ppu.ScreenHeight]byte {
	return s.bus.PPU().Framebuffer()
}

// ButtonEvent forwards a button press/release to the joypad.
func (s *System) ButtonEvent(button joypad.Button, pressed bool) {
	s.bus.Joypad().SetButton(button, pressed)
}

// ExternalRAM returns the cartridge's battery-backed RAM, or nil if the
// loaded cartridge has none.
func (s *System) ExternalRAM() []byte {
	return s.bus.Cart().ExternalRAM()
}
