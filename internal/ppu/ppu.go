// Package ppu implements the picture processing unit: its 64 KiB VRAM,
// 256-entry CGRAM, 544-byte OAM, register surface, and per-dot rendering
// pipeline (spec §3, §4.6).
package ppu

import "nitro-core-dx/internal/debug"

const (
	DisplayWidth  = 256
	DisplayHeight = 224
	dotsPerLine   = 340
	linesPerFrame = 262
)

// Renderer is the external collaborator the PPU calls synchronously,
// once per dot/frame (spec §6 renderer contract, §5 concurrency model).
type Renderer interface {
	ScanStarted()
	DrawPixel(r, g, b uint8)
	ScanEnded()
}

// BGLayer holds one of the four background layers' tilemap/tile
// addressing and scroll state (spec §3).
type BGLayer struct {
	TilemapBase uint16 // VRAM word address, in 2KiB steps
	TilemapSize uint8  // 0=32x32,1=64x32,2=32x64,3=64x64
	TileBase    uint16 // VRAM word address, in 8KiB (4K-word) steps
	TileSize    bool   // false=8x8, true=16x16
	HOFS, VOFS  uint16
	hScrollPrev uint8
	vScrollPrev uint8
}

// Window is one of the two independent windows (spec §4.6).
type Window struct {
	Left, Right uint8
}

// Mode7 holds the affine transform matrix and its screen-over behavior
// (spec §4.6).
type Mode7 struct {
	A, B, C, D   int16 // 8.8 fixed point
	HOFS, VOFS   int16
	CenterX      int16
	CenterY      int16
	HFlip, VFlip bool
	ScreenOver   uint8 // 0=wrap,1=transparent,2=tile0,3=black
	latch        uint8
}

// ColorMath holds the add/subtract blend configuration (spec §4.6).
type ColorMath struct {
	Subtract   bool
	Half       bool
	EnableMain [6]bool // BG0-3, OBJ, backdrop
	EnableSub  [6]bool
	ForceMain  uint8 // 0=always,1=math window,2=not math window,3=never
	BackdropMath bool
}

// ScreenConfig is the per-screen (main/sub) BG/OBJ enable mask and window
// disables (spec §3).
type ScreenConfig struct {
	BGEnable  [4]bool
	OBJEnable bool
}

type windowSelect struct {
	mode  uint8 // 0=disabled,1=inside,2=outside
	logic uint8 // 0=OR,1=AND,2=XOR,3=XNOR (per-layer combine)
}

// PPU is the full picture processing unit.
type PPU struct {
	VRAM  [65536]byte // addressed as words; byte index = word*2+half
	CGRAM [256]uint16 // RGB555
	OAM   [544]byte   // 512 sprite table + 32 high table

	BG       [4]BGLayer
	Mosaic   uint8
	MosaicEnable [4]bool

	M7 Mode7

	Win          [2]Window
	WinSelect    map[string]windowSelect // key: "BG0".."BG3","OBJ","MATH"
	WinMainDisable uint8
	WinSubDisable  uint8

	Math ColorMath

	Main ScreenConfig
	Sub  ScreenConfig

	BGMode       uint8
	BG3Priority  bool
	ForcedBlank  bool
	Brightness   uint8

	OamForcedPriority bool
	obsel             uint8

	extBG                  bool
	fixedR, fixedG, fixedB uint8

	// VRAM access.
	vmAddr      uint16
	vmIncHigh   bool // true = increment on high-byte write
	vmStep      uint16
	vmRemap     uint8
	prefetch    uint16

	// CGRAM access.
	cgAddr    uint8
	cgLatchLo bool
	cgLowByte uint8

	// OAM access.
	oamAddr    uint16
	oamLowByte uint8

	Renderers []Renderer

	lineSprites []spriteLine

	scanline int
	dot      int
	frame    uint64

	HVIRQMode uint8 // 0=off,1=H,2=V,3=both
	HTarget   uint16
	VTarget   uint16

	VBlank bool

	// NMI/IRQ callbacks, set by the console facade so the PPU never
	// imports the CPU package.
	OnVBlankStart func()
	OnScanEnded   func()
	OnScanStarted func()
	OnHBlankStart func()
	OnHBlankEnd   func()
	OnHVIRQ       func()
	OnLineStart   func(line int) // fired at H≈0 of every line, drives HDMA

	logger *debug.Logger
}

// New constructs an idle PPU in forced blank.
func New(logger *debug.Logger) *PPU {
	p := &PPU{ForcedBlank: true, logger: logger}
	p.WinSelect = make(map[string]windowSelect, 6)
	for _, k := range []string{"BG0", "BG1", "BG2", "BG3", "OBJ", "MATH"} {
		p.WinSelect[k] = windowSelect{}
	}
	return p
}

func (p *PPU) AttachRenderer(r Renderer) { p.Renderers = append(p.Renderers, r) }

// Scanline/Dot/Frame expose read-only position for debug/savestate use.
func (p *PPU) Scanline() int   { return p.scanline }
func (p *PPU) Dot() int        { return p.dot }
func (p *PPU) FrameCount() uint64 { return p.frame }
func (p *PPU) InVBlank() bool  { return p.VBlank }

func vramStep(mode uint8) uint16 {
	switch mode & 0x3 {
	case 0:
		return 1
	case 1:
		return 32
	case 2:
		return 128
	default:
		return 256
	}
}
