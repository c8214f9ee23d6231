package ppu

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// winSelectKeys fixes an iteration order over the WinSelect map so
// CopyState/RestoreState round-trip deterministically.
var winSelectKeys = []string{"BG0", "BG1", "BG2", "BG3", "OBJ", "MATH"}

// CopyState serializes the PPU's register block, VRAM, CGRAM, OAM, BG
// records, mode-7 matrix, and window/math config as a flat little-endian
// blob (spec §6 savestate layout: "PPU registers block + 64 KiB VRAM +
// 512 B CGRAM + 544 B OAM + per-BG records + mode-7 matrix + window/math
// config").
func (p *PPU) CopyState() []byte {
	var buf bytes.Buffer
	w := func(v interface{}) { binary.Write(&buf, binary.LittleEndian, v) }

	w(p.VRAM)
	for _, c := range p.CGRAM {
		w(c)
	}
	w(p.OAM)

	for _, bg := range p.BG {
		w(bg.TilemapBase)
		w(bg.TilemapSize)
		w(bg.TileBase)
		w(bg.TileSize)
		w(bg.HOFS)
		w(bg.VOFS)
		w(bg.hScrollPrev)
		w(bg.vScrollPrev)
	}

	w(p.M7.A)
	w(p.M7.B)
	w(p.M7.C)
	w(p.M7.D)
	w(p.M7.HOFS)
	w(p.M7.VOFS)
	w(p.M7.CenterX)
	w(p.M7.CenterY)
	w(p.M7.HFlip)
	w(p.M7.VFlip)
	w(p.M7.ScreenOver)
	w(p.M7.latch)

	w(p.Win[0].Left)
	w(p.Win[0].Right)
	w(p.Win[1].Left)
	w(p.Win[1].Right)
	w(p.WinMainDisable)
	w(p.WinSubDisable)
	for _, k := range winSelectKeys {
		sel := p.WinSelect[k]
		w(sel.mode)
		w(sel.logic)
	}

	w(p.Math.Subtract)
	w(p.Math.Half)
	w(p.Math.EnableMain)
	w(p.Math.EnableSub)
	w(p.Math.ForceMain)
	w(p.Math.BackdropMath)

	w(p.Main.BGEnable)
	w(p.Main.OBJEnable)
	w(p.Sub.BGEnable)
	w(p.Sub.OBJEnable)

	w(p.BGMode)
	w(p.BG3Priority)
	w(p.ForcedBlank)
	w(p.Brightness)
	w(p.OamForcedPriority)
	w(p.obsel)

	w(p.vmAddr)
	w(p.vmIncHigh)
	w(p.vmStep)
	w(p.vmRemap)
	w(p.prefetch)
	w(p.cgAddr)
	w(p.cgLatchLo)
	w(p.cgLowByte)
	w(p.oamAddr)
	w(p.oamLowByte)

	w(int32(p.scanline))
	w(int32(p.dot))
	w(p.frame)
	w(p.VBlank)

	w(p.HVIRQMode)
	w(p.HTarget)
	w(p.VTarget)

	return buf.Bytes()
}

// RestoreState reverses CopyState. It rejects a blob of the wrong length
// rather than partially mutating the PPU (spec §7 error kind 5:
// "Savestate mismatch... reject the load before mutating any component").
func (p *PPU) RestoreState(blob []byte) error {
	want := len(p.CopyState())
	if len(blob) != want {
		return fmt.Errorf("ppu: savestate size %d, want %d", len(blob), want)
	}

	r := bytes.NewReader(blob)
	read := func(v interface{}) { binary.Read(r, binary.LittleEndian, v) }

	read(&p.VRAM)
	for i := range p.CGRAM {
		read(&p.CGRAM[i])
	}
	read(&p.OAM)

	for i := range p.BG {
		bg := &p.BG[i]
		read(&bg.TilemapBase)
		read(&bg.TilemapSize)
		read(&bg.TileBase)
		read(&bg.TileSize)
		read(&bg.HOFS)
		read(&bg.VOFS)
		read(&bg.hScrollPrev)
		read(&bg.vScrollPrev)
	}

	read(&p.M7.A)
	read(&p.M7.B)
	read(&p.M7.C)
	read(&p.M7.D)
	read(&p.M7.HOFS)
	read(&p.M7.VOFS)
	read(&p.M7.CenterX)
	read(&p.M7.CenterY)
	read(&p.M7.HFlip)
	read(&p.M7.VFlip)
	read(&p.M7.ScreenOver)
	read(&p.M7.latch)

	read(&p.Win[0].Left)
	read(&p.Win[0].Right)
	read(&p.Win[1].Left)
	read(&p.Win[1].Right)
	read(&p.WinMainDisable)
	read(&p.WinSubDisable)
	for _, k := range winSelectKeys {
		var sel windowSelect
		read(&sel.mode)
		read(&sel.logic)
		p.WinSelect[k] = sel
	}

	read(&p.Math.Subtract)
	read(&p.Math.Half)
	read(&p.Math.EnableMain)
	read(&p.Math.EnableSub)
	read(&p.Math.ForceMain)
	read(&p.Math.BackdropMath)

	read(&p.Main.BGEnable)
	read(&p.Main.OBJEnable)
	read(&p.Sub.BGEnable)
	read(&p.Sub.OBJEnable)

	read(&p.BGMode)
	read(&p.BG3Priority)
	read(&p.ForcedBlank)
	read(&p.Brightness)
	read(&p.OamForcedPriority)
	read(&p.obsel)

	read(&p.vmAddr)
	read(&p.vmIncHigh)
	read(&p.vmStep)
	read(&p.vmRemap)
	read(&p.prefetch)
	read(&p.cgAddr)
	read(&p.cgLatchLo)
	read(&p.cgLowByte)
	read(&p.oamAddr)
	read(&p.oamLowByte)

	var scanline, dot int32
	read(&scanline)
	read(&dot)
	p.scanline = int(scanline)
	p.dot = int(dot)
	read(&p.frame)
	read(&p.VBlank)

	read(&p.HVIRQMode)
	read(&p.HTarget)
	read(&p.VTarget)

	return nil
}
