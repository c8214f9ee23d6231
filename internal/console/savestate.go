package console

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
)

// SaveState serializes the console to a flat little-endian byte slice in
// the exact order spec §6 defines: CPU registers, CPU flags, master
// clock, PPU block, APU opaque blob (length-prefixed), DMA block, joypad
// state, SRAM contents (length-prefixed).
func (c *Console) SaveState() ([]byte, error) {
	var buf bytes.Buffer
	w := func(v interface{}) error { return binary.Write(&buf, binary.LittleEndian, v) }

	s := c.CPU.State
	for _, v := range []interface{}{
		s.A, s.X, s.Y, s.S, s.D, s.DBR, s.PBR, s.PC, s.P, boolByte(s.E),
	} {
		if err := w(v); err != nil {
			return nil, fmt.Errorf("console: encode CPU registers: %w", err)
		}
	}

	for _, v := range []interface{}{
		c.CPU.NMIPending, c.CPU.IRQPending, c.CPU.WaitingIRQ, c.CPU.Stopped,
	} {
		if err := w(v); err != nil {
			return nil, fmt.Errorf("console: encode CPU flags: %w", err)
		}
	}

	if err := w(c.Scheduler.Clock); err != nil {
		return nil, fmt.Errorf("console: encode master clock: %w", err)
	}

	buf.Write(c.PPU.CopyState())

	apuBlob := c.APU.CopyState()
	if err := w(uint32(len(apuBlob))); err != nil {
		return nil, fmt.Errorf("console: encode APU blob length: %w", err)
	}
	buf.Write(apuBlob)

	buf.Write(c.DMA.CopyState())
	buf.Write(c.Joypad.CopyState())

	sram := c.Cartridge.SRAM
	if err := w(uint32(len(sram))); err != nil {
		return nil, fmt.Errorf("console: encode SRAM length: %w", err)
	}
	buf.Write(sram)

	return buf.Bytes(), nil
}

// LoadState reverses SaveState. It validates every section's length before
// mutating any component, so a truncated or mismatched blob leaves the
// running console untouched (spec §7 error kind 5: "reject the load
// before mutating any component; the current run continues unaffected").
func (c *Console) LoadState(data []byte) error {
	r := bytes.NewReader(data)
	read := func(v interface{}) error { return binary.Read(r, binary.LittleEndian, v) }

	var s struct {
		A, X, Y, S, D uint16
		DBR, PBR      uint8
		PC            uint16
		P             uint8
		E             uint8
	}
	if err := read(&s.A); err != nil {
		return fmt.Errorf("console: truncated savestate (CPU registers): %w", err)
	}
	for _, v := range []interface{}{&s.X, &s.Y, &s.S, &s.D, &s.DBR, &s.PBR, &s.PC, &s.P, &s.E} {
		if err := read(v); err != nil {
			return fmt.Errorf("console: truncated savestate (CPU registers): %w", err)
		}
	}

	var nmiPending, irqPending, waitingIRQ, stopped bool
	for _, v := range []interface{}{&nmiPending, &irqPending, &waitingIRQ, &stopped} {
		if err := read(v); err != nil {
			return fmt.Errorf("console: truncated savestate (CPU flags): %w", err)
		}
	}

	var clock uint64
	if err := read(&clock); err != nil {
		return fmt.Errorf("console: truncated savestate (master clock): %w", err)
	}

	ppuSize := len(c.PPU.CopyState())
	ppuBlob := make([]byte, ppuSize)
	if _, err := io.ReadFull(r, ppuBlob); err != nil {
		return fmt.Errorf("console: truncated savestate (PPU block): %w", err)
	}

	var apuLen uint32
	if err := read(&apuLen); err != nil {
		return fmt.Errorf("console: truncated savestate (APU length): %w", err)
	}
	apuBlob := make([]byte, apuLen)
	if _, err := io.ReadFull(r, apuBlob); err != nil {
		return fmt.Errorf("console: truncated savestate (APU blob): %w", err)
	}

	dmaSize := len(c.DMA.CopyState())
	dmaBlob := make([]byte, dmaSize)
	if _, err := io.ReadFull(r, dmaBlob); err != nil {
		return fmt.Errorf("console: truncated savestate (DMA block): %w", err)
	}

	joySize := len(c.Joypad.CopyState())
	joyBlob := make([]byte, joySize)
	if _, err := io.ReadFull(r, joyBlob); err != nil {
		return fmt.Errorf("console: truncated savestate (joypad block): %w", err)
	}

	var sramLen uint32
	if err := read(&sramLen); err != nil {
		return fmt.Errorf("console: truncated savestate (SRAM length): %w", err)
	}
	sramBlob := make([]byte, sramLen)
	if _, err := io.ReadFull(r, sramBlob); err != nil {
		return fmt.Errorf("console: truncated savestate (SRAM): %w", err)
	}
	if int(sramLen) != len(c.Cartridge.SRAM) {
		return fmt.Errorf("console: savestate SRAM size %d does not match cartridge SRAM size %d (mapper mismatch)",
			sramLen, len(c.Cartridge.SRAM))
	}

	if err := c.PPU.RestoreState(ppuBlob); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if err := c.APU.RestoreState(apuBlob); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if err := c.DMA.RestoreState(dmaBlob); err != nil {
		return fmt.Errorf("console: %w", err)
	}
	if err := c.Joypad.RestoreState(joyBlob); err != nil {
		return fmt.Errorf("console: %w", err)
	}

	c.CPU.State.A, c.CPU.State.X, c.CPU.State.Y = s.A, s.X, s.Y
	c.CPU.State.S, c.CPU.State.D = s.S, s.D
	c.CPU.State.DBR, c.CPU.State.PBR = s.DBR, s.PBR
	c.CPU.State.PC, c.CPU.State.P = s.PC, s.P
	c.CPU.State.E = s.E != 0

	c.CPU.NMIPending = nmiPending
	c.CPU.IRQPending = irqPending
	c.CPU.WaitingIRQ = waitingIRQ
	c.CPU.Stopped = stopped

	c.Scheduler.Clock = clock
	copy(c.Cartridge.SRAM, sramBlob)

	return nil
}

func boolByte(v bool) uint8 {
	if v {
		return 1
	}
	return 0
}
