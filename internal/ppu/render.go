package ppu

// tileRow decodes one 8-pixel row of a tile into 2-bit color indices,
// addressed per LCDC bit 4 (unsigned $8000 vs signed $9000 addressing).
func (p *PPU) tileRow(tileIndex byte, fineY byte, unsigned bool) [8]byte {
	var base uint16
	if unsigned {
		base = 0x8000 + uint16(tileIndex)*16 + uint16(fineY)*2
	} else {
		base = 0x9000 + uint16(int8(tileIndex))*16 + uint16(fineY)*2
	}
	lo := p.vram[base-0x8000]
	hi := p.vram[base+1-0x8000]

	var row [8]byte
	for px := 0; px < 8; px++ {
		bit := 7 - byte(px)
		row[px] = ((hi>>bit)&1)<<1 | ((lo >> bit) & 1)
	}
	return row
}

func applyPalette(palette, colorIndex byte) byte {
	return (palette >> (colorIndex * 2)) & 0x03
}

// renderScanline composes the background, window, and sprite layers for the
// current LY into the back framebuffer. Called once, at the mode-3-to-0
// transition for this line.
func (p *PPU) renderScanline() {
	ly := int(p.ly)
	var bgIndex [ScreenWidth]byte // raw 2-bit index, pre-palette, for sprite priority checks

	bgEnabled := p.lcdc&0x01 != 0
	unsignedAddressing := p.lcdc&0x10 != 0

	if bgEnabled {
		mapBase := uint16(0x9800)
		if p.lcdc&0x08 != 0 {
			mapBase = 0x9C00
		}
		bgY := (int(p.scy) + ly) & 0xFF
		tileRowY := byte(bgY % 8)
		tileMapRow := bgY / 8

		var cachedCol = -1
		var row [8]byte
		for x := 0; x < ScreenWidth; x++ {
			bgX := (int(p.scx) + x) & 0xFF
			tileMapCol := bgX / 8
			if tileMapCol != cachedCol {
				tileAddr := mapBase + uint16(tileMapRow*32+tileMapCol)
				tileNum := p.vram[tileAddr-0x8000]
				row = p.tileRow(tileNum, tileRowY, unsignedAddressing)
				cachedCol = tileMapCol
			}
			ci := row[bgX%8]
			bgIndex[x] = ci
			p.back[ly*ScreenWidth+x] = applyPalette(p.bgp, ci)
		}
	} else {
		for x := 0; x < ScreenWidth; x++ {
			bgIndex[x] = 0
			p.back[ly*ScreenWidth+x] = applyPalette(p.bgp, 0)
		}
	}

	windowEnabled := bgEnabled && p.lcdc&0x20 != 0
	if windowEnabled && int(p.wy) <= ly && p.wx <= 166 {
		winX0 := int(p.wx) - 7
		mapBase := uint16(0x9800)
		if p.lcdc&0x40 != 0 {
			mapBase = 0x9C00
		}
		tileRowY := byte(p.windowLine % 8)
		tileMapRow := p.windowLine / 8

		var cachedCol = -1
		var row [8]byte
		for x := 0; x < ScreenWidth; x++ {
			wx := x - winX0
			if wx < 0 {
				continue
			}
			tileMapCol := wx / 8
			if tileMapCol != cachedCol {
				tileAddr := mapBase + uint16(tileMapRow*32+tileMapCol)
				tileNum := p.vram[tileAddr-0x8000]
				row = p.tileRow(tileNum, tileRowY, unsignedAddressing)
				cachedCol = tileMapCol
			}
			ci := row[wx%8]
			bgIndex[x] = ci
			p.back[ly*ScreenWidth+x] = applyPalette(p.bgp, ci)
		}
		p.windowLine++
	}

	if p.lcdc&0x02 != 0 {
		p.renderSprites(ly, bgIndex)
	}
}

func (p *PPU) renderSprites(ly int, bgIndex [ScreenWidth]byte) {
	height := p.spriteHeight()
	// Draw in reverse priority order so the highest-priority sprite (first
	// in p.sprites) ends up painted last and wins any overlap.
	for i := p.numSprites - 1; i >= 0; i-- {
		s := p.sprites[i]
		row := ly - s.y
		if s.yFlip {
			row = height - 1 - row
		}
		tile := s.tile
		if height == 16 && row >= 8 {
			tile |= 0x01
			row -= 8
		}
		pixels := p.tileRow(tile, byte(row), true)

		palette := p.obp0
		if s.palette1 {
			palette = p.obp1
		}

		for col := 0; col < 8; col++ {
			screenX := s.x + col
			if screenX < 0 || screenX >= ScreenWidth {
				continue
			}
			srcCol := col
			if s.xFlip {
				srcCol = 7 - col
			}
			ci := pixels[srcCol]
			if ci == 0 {
				continue
			}
			if !s.aboveBkgd && bgIndex[screenX] != 0 {
				continue
			}
			p.back[ly*ScreenWidth+screenX] = applyPalette(palette, ci)
		}
	}
}
