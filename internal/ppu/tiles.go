package ppu

// tilemapSize returns the tilemap's width/height in tiles for a
// TilemapSize code (spec §3: 0=32x32,1=64x32,2=32x64,3=64x64).
func tilemapSize(code uint8) (w, h int) {
	switch code {
	case 1:
		return 64, 32
	case 2:
		return 32, 64
	case 3:
		return 64, 64
	default:
		return 32, 32
	}
}

func bppForMode(mode uint8, bg int) int {
	switch mode {
	case 0:
		return 2
	case 1:
		if bg == 2 {
			return 2
		}
		return 4
	case 2, 3:
		if bg == 0 {
			if mode == 3 {
				return 8
			}
			return 4
		}
		return 2
	default:
		return 4
	}
}

// bgPixel samples background layer bg at screen coordinate (x,y),
// returning its CGRAM color and whether the sampled pixel is opaque
// (palette index != 0). In mode 7 it returns mode7Pixel's sample of the
// affine layer (mode7.go) and ignores bg and wantPriority.
func (p *PPU) bgPixel(bg, x, y, wantPriority int) (uint16, bool) {
	if p.BGMode == 7 {
		return p.mode7Pixel(x, y)
	}

	layer := &p.BG[bg]
	bpp := bppForMode(p.BGMode, bg)

	tileW, tileH := 8, 8
	if layer.TileSize {
		tileW, tileH = 16, 16
	}

	scrollX := (x + int(layer.HOFS))
	scrollY := (y + int(layer.VOFS))
	if p.MosaicEnable[bg] && p.Mosaic > 0 {
		sz := int(p.Mosaic) + 1
		scrollX -= scrollX % sz
		scrollY -= scrollY % sz
	}

	mapW, mapH := tilemapSize(layer.TilemapSize)
	tileCol := (scrollX / tileW) % mapW
	tileRow := (scrollY / tileH) % mapH
	if tileCol < 0 {
		tileCol += mapW
	}
	if tileRow < 0 {
		tileRow += mapH
	}

	// Tilemaps are laid out as up to four 32x32 sub-screens.
	subCol, subRow := tileCol/32, tileRow/32
	subIndex := subRow*((mapW+31)/32) + subCol
	localCol, localRow := tileCol%32, tileRow%32
	entryAddr := layer.TilemapBase + uint16(subIndex)*0x400 + uint16(localRow*32+localCol)
	entry := p.vramWord(entryAddr)

	charNum := entry & 0x3FF
	palette := uint8((entry >> 10) & 0x7)
	priority := 0
	if entry&0x2000 != 0 {
		priority = 1
	}
	hflip := entry&0x4000 != 0
	vflip := entry&0x8000 != 0

	if priority != wantPriority {
		return 0, false
	}

	px, py := scrollX%tileW, scrollY%tileH
	if hflip {
		px = tileW - 1 - px
	}
	if vflip {
		py = tileH - 1 - py
	}
	// 16x16 tiles are four adjacent 8x8 character cells.
	subCharCol, subCharRow := px/8, py/8
	cellX, cellY := px%8, py%8
	tileIndex := int(charNum)
	if layer.TileSize {
		tileIndex += subCharRow*16 + subCharCol
	}

	idx := p.readTilePixel(layer.TileBase, tileIndex, bpp, cellX, cellY)
	if idx == 0 {
		return 0, false
	}
	colorIndex := uint16(palette)*uint16(1<<uint(bpp)) + uint16(idx)
	if bpp == 8 {
		colorIndex = uint16(idx)
	}
	return p.CGRAM[colorIndex&0xFF], true
}

// readTilePixel decodes one pixel out of a planar bpp-bit-per-pixel tile
// stored at VRAM word address tileBase+tileIndex*(8*bpp/2).
func (p *PPU) readTilePixel(tileBase uint16, tileIndex, bpp, cellX, cellY int) uint8 {
	wordsPerTile := uint16(8 * bpp / 2)
	base := tileBase + uint16(tileIndex)*wordsPerTile
	var idx uint8
	planes := bpp
	for plane := 0; plane < planes; plane += 2 {
		word := p.vramWord(base + uint16(cellY) + uint16(plane/2)*8)
		lo := uint8(word) >> uint(7-cellX) & 1
		hi := uint8(word>>8) >> uint(7-cellX) & 1
		idx |= lo << uint(plane)
		idx |= hi << uint(plane+1)
	}
	return idx
}
