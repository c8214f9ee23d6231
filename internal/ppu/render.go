package ppu

// Step advances the PPU by dotCount dots (each dot is 4 master cycles,
// spec glossary), firing position events and, for visible dots, driving
// the per-dot compositor. It returns the master cycles consumed so the
// scheduler can account for them (spec §4.8).
func (p *PPU) Step(dotCount int) uint64 {
	for i := 0; i < dotCount; i++ {
		p.stepDot()
	}
	return uint64(dotCount) * 4
}

func (p *PPU) stepDot() {
	if p.dot == 0 {
		if p.OnLineStart != nil {
			p.OnLineStart(p.scanline)
		}
		if p.scanline == 0 {
			p.fire(p.OnScanStarted)
			for _, rd := range p.Renderers {
				rd.ScanStarted()
			}
			p.evaluateSprites(p.scanline)
		}
	}

	visible := p.scanline < DisplayHeight && p.dot < DisplayWidth
	if visible {
		if !p.ForcedBlank {
			r, g, b := p.compositeDot(p.dot, p.scanline)
			p.drawPixel(r, g, b)
		} else {
			p.drawPixel(0, 0, 0)
		}
	}

	if p.dot == DisplayWidth {
		p.fire(p.OnHBlankStart)
	}

	p.checkHVIRQ()

	p.dot++
	if p.dot >= dotsPerLine {
		p.dot = 0
		p.fire(p.OnHBlankEnd)
		p.scanline++
		if p.scanline < DisplayHeight {
			p.evaluateSprites(p.scanline)
		}
		if p.scanline == DisplayHeight-1 {
			// Last visible line's dots have already been emitted above;
			// ScanEnded fires once the line has fully retired.
		}
		if p.scanline == DisplayHeight {
			p.fire(p.OnScanEnded)
			for _, rd := range p.Renderers {
				rd.ScanEnded()
			}
		}
		if p.scanline == DisplayHeight+1 {
			p.VBlank = true
			p.fire(p.OnVBlankStart)
		}
		if p.scanline >= linesPerFrame {
			p.scanline = 0
			p.VBlank = false
			p.frame++
		}
	}
}

func (p *PPU) fire(f func()) {
	if f != nil {
		f()
	}
}

func (p *PPU) drawPixel(r, g, b uint8) {
	for _, rd := range p.Renderers {
		rd.DrawPixel(r, g, b)
	}
}

func (p *PPU) checkHVIRQ() {
	if p.HVIRQMode == 0 || p.OnHVIRQ == nil {
		return
	}
	hMatch := uint16(p.dot) == p.HTarget
	vMatch := uint16(p.scanline) == p.VTarget
	switch p.HVIRQMode {
	case 1:
		if hMatch {
			p.OnHVIRQ()
		}
	case 2:
		if vMatch && p.dot == 0 {
			p.OnHVIRQ()
		}
	case 3:
		if hMatch && vMatch {
			p.OnHVIRQ()
		}
	}
}

// rgb555to888 expands a 15-bit BGR555 color to 8-bit-per-channel RGB.
func rgb555to888(c uint16) (uint8, uint8, uint8) {
	r := uint8(c&0x1F) << 3
	g := uint8((c>>5)&0x1F) << 3
	b := uint8((c>>10)&0x1F) << 3
	return r, g, b
}

// compositeDot resolves the final color for one visible pixel: it walks
// the mode's layer-priority chart back-to-front, tracking the first
// opaque main-screen and sub-screen colors, then applies color math if
// the window/backdrop gates permit it (spec §4.6).
func (p *PPU) compositeDot(x, y int) (uint8, uint8, uint8) {
	chart := priorityChart(p.BGMode, p.BG3Priority)

	var mainColor, subColor uint16
	var mainOpaque, subOpaque bool

	for _, slot := range chart {
		if slot.isOBJ {
			if c, ok := p.objPixel(x, y, slot.priority); ok {
				if !mainOpaque && p.layerVisible(slotOBJ, x, p.Main.OBJEnable) {
					mainColor, mainOpaque = c, true
				}
				if !subOpaque && p.layerVisible(slotOBJ, x, p.Sub.OBJEnable) {
					subColor, subOpaque = c, true
				}
				continue
			}
			continue
		}
		bg := slot.bg
		if c, ok := p.bgPixel(bg, x, y, slot.priority); ok {
			if !mainOpaque && p.layerVisible(bgSlotName(bg), x, p.Main.BGEnable[bg]) {
				mainColor, mainOpaque = c, true
			}
			if !subOpaque && p.layerVisible(bgSlotName(bg), x, p.Sub.BGEnable[bg]) {
				subColor, subOpaque = c, true
			}
		}
	}

	if !mainOpaque {
		mainColor = p.CGRAM[0]
		mainOpaque = true
	}

	if p.colorMathApplies(x) && subOpaque {
		mainColor = blend(mainColor, subColor, p.Math.Subtract, p.Math.Half)
	} else if p.colorMathApplies(x) && p.Math.BackdropMath {
		fixed := uint16(p.fixedB)<<10 | uint16(p.fixedG)<<5 | uint16(p.fixedR)
		mainColor = blend(mainColor, fixed, p.Math.Subtract, p.Math.Half)
	}

	return rgb555to888(mainColor)
}

func blend(a, b uint16, subtract, half bool) uint16 {
	ar, ag, ab := a&0x1F, (a>>5)&0x1F, (a>>10)&0x1F
	br, bg, bb := b&0x1F, (b>>5)&0x1F, (b>>10)&0x1F
	var r, g, bch int
	if subtract {
		r, g, bch = int(ar)-int(br), int(ag)-int(bg), int(ab)-int(bb)
	} else {
		r, g, bch = int(ar)+int(br), int(ag)+int(bg), int(ab)+int(bb)
	}
	if half {
		// Halved before clipping, matching the source's rounding (spec
		// open question in §9; hardware-accuracy unverified).
		r, g, bch = r/2, g/2, bch/2
	}
	clip := func(v int) uint16 {
		if v < 0 {
			return 0
		}
		if v > 31 {
			return 31
		}
		return uint16(v)
	}
	return clip(r) | clip(g)<<5 | clip(bch)<<10
}

func (p *PPU) colorMathApplies(x int) bool {
	switch p.Math.ForceMain {
	case 3:
		return false
	case 0:
		return true
	}
	inside := p.windowContains("MATH", x)
	if p.Math.ForceMain == 1 {
		return inside
	}
	return !inside
}

type slotName int

const (
	slotBG0 slotName = iota
	slotBG1
	slotBG2
	slotBG3
	slotOBJ
)

func bgSlotName(bg int) slotName { return slotName(bg) }

func (p *PPU) layerVisible(s slotName, x int, enabled bool) bool {
	if !enabled {
		return false
	}
	name := [...]string{"BG0", "BG1", "BG2", "BG3", "OBJ"}[s]
	sel, ok := p.WinSelect[name]
	if !ok || sel.mode == 0 {
		return true
	}
	in := p.windowContains(name, x)
	if sel.mode == 2 {
		in = !in
	}
	return in
}

func (p *PPU) windowContains(name string, x int) bool {
	sel := p.WinSelect[name]
	_ = sel
	in1 := int(p.Win[0].Left) <= x && x <= int(p.Win[0].Right)
	in2 := int(p.Win[1].Left) <= x && x <= int(p.Win[1].Right)
	switch sel.logic {
	case 1:
		return in1 && in2
	case 2:
		return in1 != in2
	case 3:
		return !(in1 != in2)
	default:
		return in1 || in2
	}
}

type chartSlot struct {
	isOBJ    bool
	bg       int
	priority int
}

// priorityChart returns the back-to-front compositing order for a BG
// mode, per spec §4.6. Modes 2/4/5/6 (offset-per-tile / hi-res) degrade
// to the mode-0-shaped chart; their distinguishing VRAM layouts are out
// of scope for this core (not named by any spec.md invariant/scenario).
func priorityChart(mode uint8, bg3Priority bool) []chartSlot {
	switch mode {
	case 1:
		if bg3Priority {
			return []chartSlot{
				{true, 0, 0}, {false, 2, 1}, {true, 0, 1}, {false, 0, 0}, {false, 1, 0},
				{true, 0, 2}, {false, 0, 1}, {false, 1, 1}, {true, 0, 3}, {false, 2, 0},
			}
		}
		return []chartSlot{
			{false, 2, 0}, {true, 0, 0}, {false, 0, 0}, {false, 1, 0}, {true, 0, 1},
			{false, 0, 1}, {false, 1, 1}, {true, 0, 2}, {true, 0, 3}, {false, 2, 1},
		}
	case 3:
		return []chartSlot{
			{true, 0, 0}, {false, 0, 0}, {true, 0, 1}, {false, 1, 0},
			{true, 0, 2}, {false, 0, 1}, {true, 0, 3}, {false, 1, 1},
		}
	case 7:
		return []chartSlot{
			{true, 0, 0}, {false, 0, 0}, {true, 0, 1}, {true, 0, 2}, {true, 0, 3},
		}
	default: // mode 0 and unmodeled 2/4/5/6
		return []chartSlot{
			{false, 3, 0}, {false, 2, 0}, {true, 0, 0}, {false, 3, 1}, {false, 2, 1},
			{false, 1, 0}, {false, 0, 0}, {true, 0, 1}, {false, 1, 1}, {false, 0, 1},
			{true, 0, 2}, {true, 0, 3},
		}
	}
}
