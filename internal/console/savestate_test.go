package console

import "testing"

// minimalROM returns a LowROM image just large enough to satisfy
// cartridge.New, with a checksum/complement pair that sums to 0xFFFF.
func minimalROM() []byte {
	rom := make([]byte, 0x8000)
	const hdr = 0x7FC0
	rom[hdr+0x1C] = 0xFF // checksum complement low
	rom[hdr+0x1D] = 0xFF
	rom[hdr+0x1E] = 0x00 // checksum
	rom[hdr+0x1F] = 0x00
	return rom
}

func newTestConsole(t *testing.T) *Console {
	t.Helper()
	c, err := New(minimalROM(), DefaultConfig())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func TestSaveLoadStateRoundTrip(t *testing.T) {
	c := newTestConsole(t)

	c.CPU.State.A = 0x1234
	c.CPU.State.X = 0x5678
	c.CPU.State.PC = 0x9ABC
	c.CPU.State.P = 0x21
	c.Scheduler.Clock = 999999
	c.PPU.VRAM[0x2000] = 0xEF
	c.PPU.CGRAM[0] = 0x12
	c.Cartridge.SRAM[0] = 0xAB
	c.Cartridge.SRAM[1] = 0xCD

	saved, err := c.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}
	if len(saved) == 0 {
		t.Fatal("SaveState returned empty data")
	}

	c.CPU.State.A = 0
	c.CPU.State.X = 0
	c.CPU.State.PC = 0
	c.Scheduler.Clock = 0
	c.PPU.VRAM[0x2000] = 0
	c.PPU.CGRAM[0] = 0
	c.Cartridge.SRAM[0] = 0
	c.Cartridge.SRAM[1] = 0

	if err := c.LoadState(saved); err != nil {
		t.Fatalf("LoadState: %v", err)
	}

	if c.CPU.State.A != 0x1234 {
		t.Errorf("A not restored: got 0x%04X", c.CPU.State.A)
	}
	if c.CPU.State.X != 0x5678 {
		t.Errorf("X not restored: got 0x%04X", c.CPU.State.X)
	}
	if c.CPU.State.PC != 0x9ABC {
		t.Errorf("PC not restored: got 0x%04X", c.CPU.State.PC)
	}
	if c.Scheduler.Clock != 999999 {
		t.Errorf("master clock not restored: got %d", c.Scheduler.Clock)
	}
	if c.PPU.VRAM[0x2000] != 0xEF {
		t.Errorf("VRAM not restored: got 0x%02X", c.PPU.VRAM[0x2000])
	}
	if c.PPU.CGRAM[0] != 0x12 {
		t.Errorf("CGRAM not restored: got 0x%02X", c.PPU.CGRAM[0])
	}
	if c.Cartridge.SRAM[0] != 0xAB || c.Cartridge.SRAM[1] != 0xCD {
		t.Errorf("SRAM not restored: got %02X %02X", c.Cartridge.SRAM[0], c.Cartridge.SRAM[1])
	}
}

func TestLoadStateRejectsTruncatedBlob(t *testing.T) {
	c := newTestConsole(t)

	saved, err := c.SaveState()
	if err != nil {
		t.Fatalf("SaveState: %v", err)
	}

	c.CPU.State.A = 0x4242
	if err := c.LoadState(saved[:len(saved)/2]); err == nil {
		t.Fatal("expected LoadState to reject a truncated blob")
	}
	if c.CPU.State.A != 0x4242 {
		t.Errorf("a rejected load must not mutate state, got A=0x%04X", c.CPU.State.A)
	}
}
