package ppu

import (
	"testing"

	"github.com/kestrelhollow/dmg-core/internal/irq"
)

func newRenderPPU() *PPU {
	return New(irq.New())
}

// runOneLine advances the PPU through exactly one scanline (mode 2/3/0).
func runOneLine(p *PPU) {
	p.Tick(456)
}

func TestBackgroundTilePixelsAndPalette(t *testing.T) {
	p := newRenderPPU()
	// Tile 1 at tile map (0,0): row 0 = 0b11111111 / 0b00000000 -> all color index 1.
	p.CPUWrite(0x9800, 0x01)
	p.CPUWrite(0x8010, 0xFF) // tile 1's low byte, row 0
	p.CPUWrite(0x8011, 0x00)
	p.CPUWrite(0xFF47, 0b11_10_01_00) // BGP: identity mapping, index 1 -> color 1
	p.CPUWrite(0xFF40, 0x91)          // LCD on, BG on, unsigned tile data
	runOneLine(p)

	fb := p.back // line 0 as rendered; Framebuffer() swaps in only at VBlank
	want := applyPalette(0b11_10_01_00, 1)
	if got := fb[0]; got != want {
		t.Fatalf("bg pixel got %d want %d", got, want)
	}
}

func TestWindowOverridesBackgroundWhenInRange(t *testing.T) {
	p := newRenderPPU()
	// Background tile 0 all zero (default VRAM), window tile 1 all index 3.
	p.CPUWrite(0x9C00, 0x01) // window map (LCDC bit6=1) tile 0,0 -> tile 1
	p.CPUWrite(0x8010, 0xFF)
	p.CPUWrite(0x8011, 0xFF) // row 0 all color index 3
	p.CPUWrite(0xFF4A, 0x00) // WY = 0
	p.CPUWrite(0xFF4B, 0x07) // WX = 7 (window starts at screen x=0)
	p.CPUWrite(0xFF47, 0xE4) // identity-ish BGP
	p.CPUWrite(0xFF40, 0xF1) // LCD on, BG on, window on, window map 9C00, unsigned data
	runOneLine(p)

	fb := p.back // line 0 as rendered; Framebuffer() swaps in only at VBlank
	want := applyPalette(0xE4, 3)
	if got := fb[0]; got != want {
		t.Fatalf("window pixel got %d want %d", got, want)
	}
}

func TestSpriteTransparentPixelDoesNotOverwrite(t *testing.T) {
	p := newRenderPPU()
	p.CPUWrite(0xFF47, 0xE4)
	p.CPUWrite(0xFF48, 0xE4)
	// Sprite tile 0: leftmost pixel opaque (index 1), rest transparent (index 0).
	p.CPUWrite(0x8000, 0x80)
	p.CPUWrite(0x8001, 0x00)
	// OAM entry 0: Y=16 (screen y=0), X=8 (screen x=0), tile 0, no flags.
	p.CPUWrite(0xFE00, 16)
	p.CPUWrite(0xFE01, 8)
	p.CPUWrite(0xFE02, 0)
	p.CPUWrite(0xFE03, 0)
	p.CPUWrite(0xFF40, 0x83) // LCD on, BG on (index 0, same as transparent), sprites on
	runOneLine(p)

	fb := p.back // line 0 as rendered; Framebuffer() swaps in only at VBlank
	if fb[0] == applyPalette(0xE4, 0) {
		t.Fatalf("expected opaque sprite pixel at x=0")
	}
	if fb[1] != applyPalette(0xE4, 0) {
		t.Fatalf("expected transparent sprite pixel at x=1 to leave background visible")
	}
}

func TestSpriteBGPriorityHiddenBehindNonZeroBG(t *testing.T) {
	p := newRenderPPU()
	p.CPUWrite(0xFF47, 0xE4)
	p.CPUWrite(0xFF48, 0xE4)
	// Background tile 1 all index 1, mapped at (0,0).
	p.CPUWrite(0x9800, 0x01)
	p.CPUWrite(0x8010, 0xFF)
	p.CPUWrite(0x8011, 0x00)
	// Sprite tile 0 opaque at leftmost pixel, BG-priority flag set (bit 7).
	p.CPUWrite(0x8000, 0x80)
	p.CPUWrite(0x8001, 0x00)
	p.CPUWrite(0xFE00, 16)
	p.CPUWrite(0xFE01, 8)
	p.CPUWrite(0xFE02, 0)
	p.CPUWrite(0xFE03, 1<<7)
	p.CPUWrite(0xFF40, 0x93) // LCD on, BG on, sprites on, unsigned tile data
	runOneLine(p)

	fb := p.back                  // line 0 as rendered; Framebuffer() swaps in only at VBlank
	want := applyPalette(0xE4, 1) // background wins, sprite hidden
	if got := fb[0]; got != want {
		t.Fatalf("bg-priority sprite pixel got %d want %d (bg should win)", got, want)
	}
}

func TestSpriteScanCapsAtTenPerLine(t *testing.T) {
	p := newRenderPPU()
	for i := 0; i < 15; i++ {
		base := uint16(i * 4)
		p.CPUWrite(0xFE00+base, 16) // all intersect LY=0
		p.CPUWrite(0xFE00+base+1, byte(8+i))
		p.CPUWrite(0xFE00+base+2, 0)
		p.CPUWrite(0xFE00+base+3, 0)
	}
	p.CPUWrite(0xFF40, 0x82) // LCD on, sprites on, BG off
	p.scanOAM()
	if p.numSprites != 10 {
		t.Fatalf("expected 10 sprites selected, got %d", p.numSprites)
	}
}
