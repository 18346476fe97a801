// Command gbcore is the windowed host for the DMG core: it opens an ebiten
// window, blits the core's 2-bit framebuffer through a fixed DMG palette,
// and forwards keyboard state into joypad button events. It holds no
// emulation logic of its own.
package main

import (
	"fmt"
	"image/color"
	"os"
	"time"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/kestrelhollow/dmg-core/internal/joypad"
	"github.com/kestrelhollow/dmg-core/internal/ppu"
	"github.com/kestrelhollow/dmg-core/internal/system"
)

const windowScale = 3

// dmgPalette maps the core's 2-bit shade indices to the classic
// green-tinted DMG screen colors.
var dmgPalette = [4]color.RGBA{
	{0xE0, 0xF8, 0xD0, 0xFF},
	{0x88, 0xC0, 0x70, 0xFF},
	{0x34, 0x68, 0x56, 0xFF},
	{0x08, 0x18, 0x20, 0xFF},
}

// tCyclesPerFrame and cpuHz give the exact DMG frame rate (~59.7275 Hz),
// matching the teacher's pacing accumulator.
const (
	cpuHz           = 4194304.0
	tCyclesPerFrame = 70224.0
	framesPerSecond = cpuHz / tCyclesPerFrame
)

type app struct {
	sys      *system.System
	tex      *ebiten.Image
	rgba     []byte
	lastTime time.Time
	frameAcc float64
}

func newApp(sys *system.System) *app {
	return &app{
		sys:      sys,
		tex:      ebiten.NewImage(ppu.ScreenWidth, ppu.ScreenHeight),
		rgba:     make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4),
		lastTime: time.Now(),
	}
}

func (a *app) pollInput() {
	keymap := []struct {
		key ebiten.Key
		btn joypad.Button
	}{
		{ebiten.KeyArrowRight, joypad.Right},
		{ebiten.KeyArrowLeft, joypad.Left},
		{ebiten.KeyArrowUp, joypad.Up},
		{ebiten.KeyArrowDown, joypad.Down},
		{ebiten.KeyZ, joypad.A},
		{ebiten.KeyX, joypad.B},
		{ebiten.KeyEnter, joypad.Start},
		{ebiten.KeyShiftRight, joypad.Select},
	}
	for _, k := range keymap {
		a.sys.ButtonEvent(k.btn, ebiten.IsKeyPressed(k.key))
	}
}

func (a *app) Update() error {
	a.pollInput()

	now := time.Now()
	dt := now.Sub(a.lastTime).Seconds()
	a.lastTime = now
	if dt < 0 {
		dt = 0
	}
	a.frameAcc += dt * framesPerSecond

	steps := 0
	for a.frameAcc >= 1.0 && steps < 8 { // cap to avoid a spiral of death
		a.sys.StepFrame()
		a.frameAcc -= 1.0
		steps++
	}
	return nil
}

func (a *app) Draw(screen *ebiten.Image) {
	fb := a.sys.Framebuffer()
	for i, shade := range fb {
		c := dmgPalette[shade]
		a.rgba[i*4+0] = c.R
		a.rgba[i*4+1] = c.G
		a.rgba[i*4+2] = c.B
		a.rgba[i*4+3] = c.A
	}
	a.tex.WritePixels(a.rgba)
	screen.DrawImage(a.tex, nil)
}

func (a *app) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ppu.ScreenWidth, ppu.ScreenHeight
}

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, "usage: gbcore <rom-path>")
		os.Exit(1)
	}
	rom, err := os.ReadFile(os.Args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "gbcore: %v\n", err)
		os.Exit(1)
	}

	sys := system.New()
	if err := sys.LoadROM(rom); err != nil {
		fmt.Fprintf(os.Stderr, "gbcore: %v\n", err)
		os.Exit(1)
	}

	ebiten.SetWindowTitle("gbcore")
	ebiten.SetWindowSize(ppu.ScreenWidth*windowScale, ppu.ScreenHeight*windowScale)

	if err := ebiten.RunGame(newApp(sys)); err != nil {
		fmt.Fprintf(os.Stderr, "gbcore: %v\n", err)
		os.Exit(1)
	}
}
