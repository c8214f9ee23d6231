package ppu

// spriteSizes maps OBSEL's size-select field (bits 5-7) to the small and
// large sprite dimensions, spec §3.
var spriteSizes = [8][2]int{
	{8, 16}, {8, 32}, {8, 64}, {16, 32},
	{16, 64}, {32, 64}, {16, 32}, {16, 32},
}

type spriteEntry struct {
	x          int16
	y          uint8
	tile       uint16
	palette    uint8
	priority   uint8
	hflip      bool
	vflip      bool
	large      bool
	nameTable  uint8 // 0 or 1, selects which of OBSEL's two tile sheets
	nameBase   uint16
}

func (p *PPU) readSprite(i int) spriteEntry {
	off := i * 4
	b0 := p.OAM[off]
	b1 := p.OAM[off+1]
	b2 := p.OAM[off+2]
	b3 := p.OAM[off+3]

	hiByte := p.OAM[512+i/4]
	bit := uint(i%4) * 2
	xHigh := hiByte >> bit & 1
	large := hiByte >> (bit + 1) & 1

	x := int16(b0)
	if xHigh != 0 {
		x |= -256 // sign-extend the 9th bit
	}

	return spriteEntry{
		x:         x,
		y:         b1,
		tile:      uint16(b2) | uint16(b3&0x1)<<8,
		palette:   (b3 >> 1) & 0x7,
		priority:  (b3 >> 4) & 0x3,
		hflip:     b3&0x40 != 0,
		vflip:     b3&0x80 != 0,
		large:     large != 0,
		nameTable: b3 & 0x1,
	}
}

// evaluateSprites scans all 128 OAM entries for sprites intersecting
// scanline `line`, keeping up to the first 32 found in priority order
// and caching per-pixel occupancy for objPixel to consult (spec §3's
// "32 sprites and 34 tiles per line" limit; tile-count overflow is not
// separately modeled).
func (p *PPU) evaluateSprites(line int) {
	sizeCode := (p.obsel >> 5) & 0x7
	small, large := spriteSizes[sizeCode][0], spriteSizes[sizeCode][1]
	nameBase := uint16(p.obsel&0x7) * 0x1000
	nameGap := uint16((p.obsel>>3)&0x3)*0x1000 + 0x1000

	p.lineSprites = p.lineSprites[:0]
	for i := 0; i < 128 && len(p.lineSprites) < 32; i++ {
		s := p.readSprite(i)
		w, h := small, small
		if s.large {
			w, h = large, large
		}
		top := int(s.y)
		if top+h > 256 {
			top -= 256
		}
		if line < top || line >= top+h {
			continue
		}
		if int(s.x) >= DisplayWidth || int(s.x)+w <= 0 {
			continue
		}
		base := nameBase
		if s.nameTable != 0 {
			base = nameBase + nameGap
		}
		s.nameBase = base
		p.lineSprites = append(p.lineSprites, spriteLine{s, top, w, h})
	}
}

type spriteLine struct {
	spriteEntry
	top    int
	w, h   int
}

// objPixel returns the composited sprite color at (x,y) whose OAM
// priority field equals wantPriority, searching OAM index order (lower
// index wins ties, matching hardware's first-sprite-drawn-on-top rule
// within a priority group).
func (p *PPU) objPixel(x, y, wantPriority int) (uint16, bool) {
	for _, s := range p.lineSprites {
		if int(s.priority) != wantPriority {
			continue
		}
		dx := x - int(s.x)
		if dx < 0 || dx >= s.w {
			continue
		}
		dy := y - s.top
		if dy < 0 || dy >= s.h {
			continue
		}
		if s.hflip {
			dx = s.w - 1 - dx
		}
		if s.vflip {
			dy = s.h - 1 - dy
		}
		tileCol, tileRow := dx/8, dy/8
		cellX, cellY := dx%8, dy%8
		// OBJ character numbers wrap within their 16-tile-wide sheet row
		// (spec §3: sprite tiles are addressed mod 16 per row).
		tileIndex := (int(s.tile)&0xF0 | (int(s.tile)+tileCol)&0xF) + tileRow*16
		idx := p.readTilePixel(s.nameBase, tileIndex, 4, cellX, cellY)
		if idx == 0 {
			continue
		}
		colorIndex := 128 + uint16(s.palette)*16 + uint16(idx)
		return p.CGRAM[colorIndex&0xFF], true
	}
	return 0, false
}
