// Command gbheadless drives the DMG core without a window: load a ROM,
// step a fixed number of frames, optionally dump the last framebuffer to
// a PNG and assert its CRC32, for scripted and CI runs. Grounded on the
// teacher's cpurunner tool.
package main

import (
	"flag"
	"fmt"
	"hash/crc32"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"strings"
	"time"

	"github.com/kestrelhollow/dmg-core/internal/ppu"
	"github.com/kestrelhollow/dmg-core/internal/system"
)

var dmgPalette = [4]color.RGBA{
	{0xE0, 0xF8, 0xD0, 0xFF},
	{0x88, 0xC0, 0x70, 0xFF},
	{0x34, 0x68, 0x56, 0xFF},
	{0x08, 0x18, 0x20, 0xFF},
}

func main() {
	frames := flag.Int("frames", 60, "number of frames to run")
	outPNG := flag.String("outpng", "", "write the final framebuffer to this PNG path")
	expect := flag.String("expect", "", "assert the final framebuffer's CRC32 (hex, with or without 0x)")
	flag.Parse()

	args := flag.Args()
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "usage: gbheadless [-frames N] [-outpng path] [-expect crc32hex] <rom-path>")
		os.Exit(1)
	}

	rom, err := os.ReadFile(args[0])
	if err != nil {
		log.Fatalf("gbheadless: %v", err)
	}

	sys := system.New()
	if err := sys.LoadROM(rom); err != nil {
		log.Fatalf("gbheadless: %v", err)
	}

	n := *frames
	if n <= 0 {
		n = 1
	}
	start := time.Now()
	for i := 0; i < n; i++ {
		sys.StepFrame()
	}
	dur := time.Since(start)

	img := framebufferToRGBA(sys.Framebuffer())
	crc := crc32.ChecksumIEEE(img.Pix)
	log.Printf("headless: frames=%d elapsed=%s fps=%.2f fb_crc32=%08x",
		n, dur.Truncate(time.Millisecond), float64(n)/dur.Seconds(), crc)

	if *outPNG != "" {
		f, err := os.Create(*outPNG)
		if err != nil {
			log.Fatalf("gbheadless: %v", err)
		}
		defer f.Close()
		if err := png.Encode(f, img); err != nil {
			log.Fatalf("gbheadless: %v", err)
		}
		log.Printf("wrote %s", *outPNG)
	}

	if *expect != "" {
		want := strings.TrimPrefix(strings.ToLower(*expect), "0x")
		got := fmt.Sprintf("%08x", crc)
		if got != want {
			log.Fatalf("checksum mismatch: got %s, want %s", got, want)
		}
	}
}

func framebufferToRGBA(fb *[ppu.ScreenWidth * ppu.ScreenHeight]byte) *image.RGBA {
	img := &image.RGBA{
		Pix:    make([]byte, ppu.ScreenWidth*ppu.ScreenHeight*4),
		Stride: 4 * ppu.ScreenWidth,
		Rect:   image.Rect(0, 0, ppu.ScreenWidth, ppu.ScreenHeight),
	}
	for i, shade := range fb {
		c := dmgPalette[shade]
		img.Pix[i*4+0] = c.R
		img.Pix[i*4+1] = c.G
		img.Pix[i*4+2] = c.B
		img.Pix[i*4+3] = c.A
	}
	return img
}
