package main

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"

	"golang.org/x/image/draw"

	"nitro-core-dx/internal/ppu"
)

// saveScreenshot writes the current frame as a PNG, scaled up
// nearest-neighbor by factor so a 256x224 capture is actually legible
// (spec §6 ships no screenshot contract of its own; this is the
// dedicated dumper DESIGN.md documents alongside the SDL frontend).
func saveScreenshot(path string, fb *frameBuffer, factor int) error {
	src := image.NewRGBA(image.Rect(0, 0, ppu.DisplayWidth, ppu.DisplayHeight))
	for y := 0; y < ppu.DisplayHeight; y++ {
		for x := 0; x < ppu.DisplayWidth; x++ {
			i := (y*ppu.DisplayWidth + x) * 3
			src.SetRGBA(x, y, color.RGBA{R: fb.pix[i], G: fb.pix[i+1], B: fb.pix[i+2], A: 0xFF})
		}
	}

	dst := image.NewRGBA(image.Rect(0, 0, ppu.DisplayWidth*factor, ppu.DisplayHeight*factor))
	draw.NearestNeighbor.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("screenshot: %w", err)
	}
	defer f.Close()

	if err := png.Encode(f, dst); err != nil {
		return fmt.Errorf("screenshot: encode: %w", err)
	}
	return nil
}
