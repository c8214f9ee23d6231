package ppu

import "github.com/go-gl/mathgl/mgl32"

// mode7Pixel samples the BG mode 7 affine layer at screen coordinate
// (x,y): the 2x2 matrix [A B; C D] and center/offset registers map
// screen space onto a 1024x1024 wrapping tile map stored entirely in
// VRAM's even bytes (character) and odd bytes (palette index), spec §4.6.
func (p *PPU) mode7Pixel(x, y int) (uint16, bool) {
	m := p.M7

	sx := float32(x)
	sy := float32(y)
	if m.HFlip {
		sx = 255 - sx
	}
	if m.VFlip {
		sy = 255 - sy
	}

	mat := mgl32.Mat2{
		float32(m.A) / 256, float32(m.C) / 256,
		float32(m.B) / 256, float32(m.D) / 256,
	}
	rel := mgl32.Vec2{
		sx - float32(m.CenterX) + float32(m.HOFS),
		sy - float32(m.CenterY) + float32(m.VOFS),
	}
	world := mat.Mul2x1(rel)
	wx := int(world.X()) + int(m.CenterX)
	wy := int(world.Y()) + int(m.CenterY)

	const mapSize = 1024
	outOfBounds := wx < 0 || wx >= mapSize || wy < 0 || wy >= mapSize
	if outOfBounds {
		switch m.ScreenOver {
		case 1:
			return 0, false
		case 2:
			wx, wy = 0, 0
		case 3:
			return 0, true // backdrop-black: opaque color index 0
		default:
			wx &= mapSize - 1
			wy &= mapSize - 1
		}
	}

	tileCol, tileRow := wx/8, wy/8
	cellX, cellY := wx%8, wy%8
	mapAddr := uint16(tileRow*128+tileCol) * 2
	charNum := p.VRAM[mapAddr]

	tileAddr := uint16(charNum) * 64
	pixelAddr := tileAddr + uint16(cellY*8+cellX)
	paletteIdx := p.VRAM[pixelAddr*2+1]
	if paletteIdx == 0 {
		return 0, false
	}
	return p.CGRAM[paletteIdx], true
}
