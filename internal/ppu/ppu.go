// Package ppu implements the DMG picture processing unit: VRAM/OAM storage,
// the LCDC/STAT/scroll/palette register file, the per-line mode state
// machine, and the background/window/sprite scanline compositor.
package ppu

import "github.com/kestrelhollow/dmg-core/internal/irq"

const (
	ScreenWidth  = 160
	ScreenHeight = 144
)

// PPU models VRAM/OAM, the LCDC/STAT register block, and the scanline
// renderer. CPU-facing reads/writes go through CPURead/CPUWrite; OAM DMA
// writes go through the separate DMAWrite path, which bypasses the
// mode-gated access restrictions CPUWrite enforces.
type PPU struct {
	vram [0x2000]byte // $8000-$9FFF
	oam  [0xA0]byte   // $FE00-$FE9F

	lcdc byte // $FF40
	stat byte // $FF41: bits 0-1 mode, bit 2 coincidence, bits 3-6 IRQ enables
	scy  byte // $FF42
	scx  byte // $FF43
	ly   byte // $FF44
	lyc  byte // $FF45
	bgp  byte // $FF47
	obp0 byte // $FF48
	obp1 byte // $FF49
	wy   byte // $FF4A
	wx   byte // $FF4B

	dot int // T-cycles elapsed within the current line, 0..455

	windowLine       int  // internal window line counter
	prevWindowEnable bool // LCDC bit 5 as of the previous write, for rising-edge reset

	sprites    [10]spriteEntry
	numSprites int

	front, back *[ScreenWidth * ScreenHeight]byte

	irq *irq.Controller
}

// New returns a PPU wired to the given interrupt controller, powered off
// (LCDC=$00) until the CPU enables the LCD.
func New(ic *irq.Controller) *PPU {
	p := &PPU{irq: ic}
	p.front = &[ScreenWidth * ScreenHeight]byte{}
	p.back = &[ScreenWidth * ScreenHeight]byte{}
	return p
}

// Reset restores power-on register values; VRAM/OAM contents are left
// untouched (real hardware leaves them in whatever power-on noise they had,
// and a fresh System always allocates a zeroed PPU anyway).
func (p *PPU) Reset() {
	p.lcdc, p.stat, p.scy, p.scx = 0, 0, 0, 0
	p.ly, p.lyc, p.bgp, p.obp0, p.obp1, p.wy, p.wx = 0, 0, 0, 0, 0, 0, 0
	p.dot = 0
	p.windowLine = 0
	p.prevWindowEnable = false
	p.numSprites = 0
}

// Framebuffer returns the most recently completed frame. The reference is
// stable until the next frame-ready boundary.
func (p *PPU) Framebuffer() *[ScreenWidth * ScreenHeight]byte { return p.front }

func (p *PPU) mode() byte { return p.stat & 0x03 }

// CPURead services VRAM, OAM, and the PPU register block.
func (p *PPU) CPURead(addr uint16) byte {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.mode() == 3 {
			return 0xFF
		}
		return p.vram[addr-0x8000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if m := p.mode(); m == 2 || m == 3 {
			return 0xFF
		}
		return p.oam[addr-0xFE00]
	case addr == 0xFF40:
		return p.lcdc
	case addr == 0xFF41:
		return 0x80 | (p.stat & 0x7F)
	case addr == 0xFF42:
		return p.scy
	case addr == 0xFF43:
		return p.scx
	case addr == 0xFF44:
		return p.ly
	case addr == 0xFF45:
		return p.lyc
	case addr == 0xFF47:
		return p.bgp
	case addr == 0xFF48:
		return p.obp0
	case addr == 0xFF49:
		return p.obp1
	case addr == 0xFF4A:
		return p.wy
	case addr == 0xFF4B:
		return p.wx
	default:
		return 0xFF
	}
}

// CPUWrite services VRAM, OAM, and the PPU register block, honoring the
// mode-gated VRAM/OAM access restrictions.
func (p *PPU) CPUWrite(addr uint16, value byte) {
	switch {
	case addr >= 0x8000 && addr <= 0x9FFF:
		if p.mode() == 3 {
			return
		}
		p.vram[addr-0x8000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		if m := p.mode(); m == 2 || m == 3 {
			return
		}
		p.oam[addr-0xFE00] = value
	case addr == 0xFF40:
		prev := p.lcdc
		p.lcdc = value
		if prev&0x80 != 0 && value&0x80 == 0 {
			p.ly, p.dot = 0, 0
			p.setMode(0)
			p.updateLYC()
		} else if prev&0x80 == 0 && value&0x80 != 0 {
			p.ly, p.dot = 0, 0
			p.setMode(2)
			p.scanOAM()
			p.updateLYC()
		}
		enabled := value&0x20 != 0
		if enabled && !p.prevWindowEnable {
			p.windowLine = 0
		}
		p.prevWindowEnable = enabled
	case addr == 0xFF41:
		p.stat = (p.stat & 0x07) | (value & 0x78)
	case addr == 0xFF42:
		p.scy = value
	case addr == 0xFF43:
		p.scx = value
	case addr == 0xFF44:
		// Real hardware treats LY as read-only; here a write resets the line
		// counter to 0 and re-derives the coincidence flag and mode.
		p.ly, p.dot = 0, 0
		p.updateLYC()
		if p.lcdc&0x80 != 0 {
			p.setMode(2)
			p.scanOAM()
		}
	case addr == 0xFF45:
		p.lyc = value
		p.updateLYC()
	case addr == 0xFF47:
		p.bgp = value
	case addr == 0xFF48:
		p.obp0 = value
	case addr == 0xFF49:
		p.obp1 = value
	case addr == 0xFF4A:
		p.wy = value
	case addr == 0xFF4B:
		p.wx = value
	}
}

// DMAWrite writes an OAM byte directly, bypassing the CPU-facing mode gate
// (used only by the bus's OAM DMA engine).
func (p *PPU) DMAWrite(index byte, value byte) { p.oam[index] = value }

// Tick advances the PPU by cycles T-cycles and reports whether a new frame
// was latched into Framebuffer during this call.
func (p *PPU) Tick(cycles int) (frameReady bool) {
	for i := 0; i < cycles; i++ {
		if p.lcdc&0x80 == 0 {
			continue
		}
		p.dot++

		var mode byte
		if p.ly >= 144 {
			mode = 1
		} else {
			switch {
			case p.dot < 80:
				mode = 2
			case p.dot < 80+172:
				mode = 3
			default:
				mode = 0
			}
		}
		if mode == 2 && p.mode() != 2 {
			p.scanOAM()
		}
		if mode == 0 && p.mode() == 3 {
			p.renderScanline()
		}
		p.setMode(mode)

		if p.dot >= 456 {
			p.dot = 0
			p.ly++
			if p.ly == 144 {
				p.front, p.back = p.back, p.front
				frameReady = true
				p.irq.Request(irq.VBlank)
				if p.stat&(1<<4) != 0 {
					p.irq.Request(irq.Stat)
				}
			} else if p.ly > 153 {
				p.ly = 0
				p.windowLine = 0
			}
			p.updateLYC()
			if p.ly >= 144 {
				p.setMode(1)
			} else {
				p.setMode(2)
				p.scanOAM()
			}
		}
	}
	return frameReady
}

func (p *PPU) setMode(mode byte) {
	prev := p.stat & 0x03
	if prev == mode {
		return
	}
	p.stat = (p.stat &^ 0x03) | (mode & 0x03)
	switch mode {
	case 0:
		if p.stat&(1<<3) != 0 {
			p.irq.Request(irq.Stat)
		}
	case 2:
		if p.stat&(1<<5) != 0 {
			p.irq.Request(irq.Stat)
		}
	}
}

func (p *PPU) updateLYC() {
	if p.ly == p.lyc {
		p.stat |= 1 << 2
		if p.stat&(1<<6) != 0 {
			p.irq.Request(irq.Stat)
		}
	} else {
		p.stat &^= 1 << 2
	}
}

// Register accessors used by the scanline compositor and tests.
func (p *PPU) BGP() byte  { return p.bgp }
func (p *PPU) OBP0() byte { return p.obp0 }
func (p *PPU) OBP1() byte { return p.obp1 }
func (p *PPU) LCDC() byte { return p.lcdc }
func (p *PPU) SCY() byte  { return p.scy }
func (p *PPU) SCX() byte  { return p.scx }
func (p *PPU) WY() byte   { return p.wy }
func (p *PPU) WX() byte   { return p.wx }
func (p *PPU) LY() byte   { return p.ly }
func (p *PPU) STAT() byte { return 0x80 | (p.stat & 0x7F) }
