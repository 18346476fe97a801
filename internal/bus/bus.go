// Package bus wires the CPU-visible $0000-$FFFF address space to the
// cartridge, WRAM/HRAM, PPU, timer, joypad, and interrupt controller, and
// owns the OAM DMA engine and the APU/unused stub register windows.
package bus

import (
	"github.com/kestrelhollow/dmg-core/internal/cart"
	"github.com/kestrelhollow/dmg-core/internal/irq"
	"github.com/kestrelhollow/dmg-core/internal/joypad"
	"github.com/kestrelhollow/dmg-core/internal/ppu"
	"github.com/kestrelhollow/dmg-core/internal/timer"
)

// apuWindowBase/apuWindowSize cover $FF10-$FF3F; unusedBase/unusedSize cover
// $FF4D-$FF7F. Both are plain byte arrays with no side effects, per the
// "stubbed as RAM" non-goal.
const (
	apuWindowBase = 0xFF10
	apuWindowSize = 0xFF40 - 0xFF10
	unusedBase    = 0xFF4D
	unusedSize    = 0xFF80 - 0xFF4D
)

// Bus owns every component reachable from the CPU and routes CPU
// reads/writes, the OAM DMA engine, and per-T-cycle component ticking.
type Bus struct {
	cart cart.Cartridge

	wram [0x2000]byte // $C000-$DFFF; Echo $E000-$FDFF mirrors $C000-$DDFF
	hram [0x7F]byte   // $FF80-$FFFE

	ppu   *ppu.PPU
	timer *timer.Timer
	pad   *joypad.Pad
	irq   *irq.Controller

	apu    [apuWindowSize]byte
	unused [unusedSize]byte

	sb byte // $FF01 serial data
	sc byte // $FF02 serial control: no transfer logic, writes just latch

	dma       byte // $FF46, last written DMA source page
	dmaActive bool
	dmaSrc    uint16
	dmaIndex  int  // next OAM byte index to copy, 0..0x9F
	dmaT      int  // T-cycles elapsed since the last byte copy, 0..3
}

// New constructs a Bus around the given cartridge, with fresh timer,
// joypad, PPU, and interrupt-controller instances and IO registers seeded
// to their power-on reset values.
func New(c cart.Cartridge) *Bus {
	ic := irq.New()
	b := &Bus{
		cart:  c,
		ppu:   ppu.New(ic),
		timer: timer.New(ic),
		pad:   joypad.New(ic),
		irq:   ic,
	}
	b.Reset()
	return b
}

// Reset restores power-on register values across every owned component and
// the bus's own IO state.
func (b *Bus) Reset() {
	b.ppu.Reset()
	b.timer.Reset()
	b.pad.Reset()
	b.irq.Reset()

	for i := range b.wram {
		b.wram[i] = 0
	}
	for i := range b.hram {
		b.hram[i] = 0
	}

	for i := range b.apu {
		b.apu[i] = 0
	}
	for i := range b.unused {
		b.unused[i] = 0
	}
	// Reset IO values per the DMG power-on table; unnamed APU registers not
	// listed here stay $00.
	b.apu[0xFF10-apuWindowBase] = 0x80
	b.apu[0xFF11-apuWindowBase] = 0xBF
	b.apu[0xFF12-apuWindowBase] = 0xF3
	b.apu[0xFF14-apuWindowBase] = 0xBF
	b.apu[0xFF16-apuWindowBase] = 0x3F
	b.apu[0xFF19-apuWindowBase] = 0xBF
	b.apu[0xFF1A-apuWindowBase] = 0x7F
	b.apu[0xFF1B-apuWindowBase] = 0xFF
	b.apu[0xFF1C-apuWindowBase] = 0x9F
	b.apu[0xFF1E-apuWindowBase] = 0xBF
	b.apu[0xFF20-apuWindowBase] = 0xFF
	b.apu[0xFF21-apuWindowBase] = 0x00
	b.apu[0xFF22-apuWindowBase] = 0x00
	b.apu[0xFF23-apuWindowBase] = 0xBF
	b.apu[0xFF24-apuWindowBase] = 0x77
	b.apu[0xFF25-apuWindowBase] = 0xF3
	b.apu[0xFF26-apuWindowBase] = 0xF1

	b.ppu.CPUWrite(0xFF40, 0x91)
	b.ppu.CPUWrite(0xFF47, 0xFC)
	b.ppu.CPUWrite(0xFF48, 0xFF)
	b.ppu.CPUWrite(0xFF49, 0xFF)

	b.sb, b.sc = 0, 0
	b.dma = 0
	b.dmaActive = false
	b.dmaSrc = 0
	b.dmaIndex = 0
	b.dmaT = 0
}

// PPU returns the owned PPU, for host rendering.
func (b *Bus) PPU() *ppu.PPU { return b.ppu }

// Joypad returns the owned joypad, for host input forwarding.
func (b *Bus) Joypad() *joypad.Pad { return b.pad }

// IRQ returns the owned interrupt controller, for CPU dispatch.
func (b *Bus) IRQ() *irq.Controller { return b.irq }

// Cart returns the owned cartridge, for battery-RAM export.
func (b *Bus) Cart() cart.Cartridge { return b.cart }

// Read services a CPU-visible read. While OAM DMA is active, every region
// except HRAM returns $FF, matching real hardware's bus-contention lockout.
func (b *Bus) Read(addr uint16) byte {
	if b.dmaActive && !(addr >= 0xFF80 && addr <= 0xFFFE) {
		return 0xFF
	}
	return b.read(addr)
}

func (b *Bus) read(addr uint16) byte {
	switch {
	case addr < 0x8000:
		return b.cart.Read(addr)
	case addr >= 0x8000 && addr <= 0x9FFF:
		return b.ppu.CPURead(addr)
	case addr >= 0xA000 && addr <= 0xBFFF:
		return b.cart.Read(addr)
	case addr >= 0xC000 && addr <= 0xDFFF:
		return b.wram[addr-0xC000]
	case addr >= 0xE000 && addr <= 0xFDFF:
		return b.wram[addr-0x2000-0xC000]
	case addr >= 0xFE00 && addr <= 0xFE9F:
		return b.ppu.CPURead(addr)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		return 0xFF
	case addr == 0xFF00:
		return b.pad.Read()
	case addr == 0xFF01:
		return b.sb
	case addr == 0xFF02:
		return 0x7E | (b.sc & 0x81)
	case addr == 0xFF04:
		return b.timer.ReadDIV()
	case addr == 0xFF05:
		return b.timer.ReadTIMA()
	case addr == 0xFF06:
		return b.timer.ReadTMA()
	case addr == 0xFF07:
		return b.timer.ReadTAC()
	case addr == 0xFF0F:
		return b.irq.ReadIF()
	case addr >= apuWindowBase && addr < apuWindowBase+apuWindowSize:
		return b.apu[addr-apuWindowBase]
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		return b.ppu.CPURead(addr)
	case addr == 0xFF46:
		return b.dma
	case addr >= unusedBase && addr < unusedBase+unusedSize:
		return b.unused[addr-unusedBase]
	case addr >= 0xFF80 && addr <= 0xFFFE:
		return b.hram[addr-0xFF80]
	case addr == 0xFFFF:
		return b.irq.ReadIE()
	default:
		return 0xFF
	}
}

// Write services a CPU-visible write. While OAM DMA is active, every
// region except HRAM ignores writes.
func (b *Bus) Write(addr uint16, value byte) {
	if b.dmaActive && !(addr >= 0xFF80 && addr <= 0xFFFE) {
		return
	}
	switch {
	case addr < 0x8000:
		b.cart.Write(addr, value)
	case addr >= 0x8000 && addr <= 0x9FFF:
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xA000 && addr <= 0xBFFF:
		b.cart.Write(addr, value)
	case addr >= 0xC000 && addr <= 0xDFFF:
		b.wram[addr-0xC000] = value
	case addr >= 0xE000 && addr <= 0xFDFF:
		b.wram[addr-0x2000-0xC000] = value
	case addr >= 0xFE00 && addr <= 0xFE9F:
		b.ppu.CPUWrite(addr, value)
	case addr >= 0xFEA0 && addr <= 0xFEFF:
		// unusable region, writes ignored
	case addr == 0xFF00:
		b.pad.Write(value)
	case addr == 0xFF01:
		b.sb = value
	case addr == 0xFF02:
		// No serial transfer is modeled: the write just latches SC. The
		// Serial IF bit exists only so interrupt priority/IE masking can be
		// exercised by tests; nothing in this bus ever sets it.
		b.sc = value & 0x81
	case addr == 0xFF04:
		b.timer.WriteDIV(value)
	case addr == 0xFF05:
		b.timer.WriteTIMA(value)
	case addr == 0xFF06:
		b.timer.WriteTMA(value)
	case addr == 0xFF07:
		b.timer.WriteTAC(value)
	case addr == 0xFF0F:
		b.irq.WriteIF(value)
	case addr >= apuWindowBase && addr < apuWindowBase+apuWindowSize:
		b.apu[addr-apuWindowBase] = value
	case addr == 0xFF40, addr == 0xFF41, addr == 0xFF42, addr == 0xFF43,
		addr == 0xFF44, addr == 0xFF45,
		addr == 0xFF47, addr == 0xFF48, addr == 0xFF49,
		addr == 0xFF4A, addr == 0xFF4B:
		b.ppu.CPUWrite(addr, value)
	case addr == 0xFF46:
		b.startDMA(value)
	case addr >= unusedBase && addr < unusedBase+unusedSize:
		b.unused[addr-unusedBase] = value
	case addr >= 0xFF80 && addr <= 0xFFFE:
		b.hram[addr-0xFF80] = value
	case addr == 0xFFFF:
		b.irq.WriteIE(value)
	}
}

func (b *Bus) startDMA(value byte) {
	b.dma = value
	b.dmaActive = true
	b.dmaSrc = uint16(value) << 8
	b.dmaIndex = 0
	b.dmaT = 0
}

// Tick advances the timer, PPU, and OAM DMA engine by cycles T-cycles.
func (b *Bus) Tick(cycles int) (frameReady bool) {
	for i := 0; i < cycles; i++ {
		b.timer.Tick(1)
		if b.ppu.Tick(1) {
			frameReady = true
		}
		b.stepDMA()
	}
	return frameReady
}

// stepDMA advances the OAM DMA engine by one T-cycle, copying one byte
// every 4 T-cycles (one m-cycle), per real hardware's transfer rate. DMA
// reads go through the same internal read() path as CPU reads, so a VRAM
// or OAM source is still subject to the PPU's mode-gated access
// restrictions; only the destination write (DMAWrite) bypasses them.
func (b *Bus) stepDMA() {
	if !b.dmaActive {
		return
	}
	b.dmaT++
	if b.dmaT < 4 {
		return
	}
	b.dmaT = 0
	v := b.read(b.dmaSrc + uint16(b.dmaIndex))
	b.ppu.DMAWrite(byte(b.dmaIndex), v)
	b.dmaIndex++
	if b.dmaIndex >= 0xA0 {
		b.dmaActive = false
	}
}
