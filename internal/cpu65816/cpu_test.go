package cpu65816

import "testing"

// fakeBus is a flat 16 MiB address space (bank:offset concatenated),
// enough to exercise the CPU without the real bus's mapping logic.
type fakeBus struct {
	mem [1 << 24]byte
}

func (b *fakeBus) index(bank uint8, offset uint16) uint32 {
	return uint32(bank)<<16 | uint32(offset)
}

func (b *fakeBus) ReadU8(bank uint8, offset uint16, outCycles *int) uint8 {
	*outCycles++
	return b.mem[b.index(bank, offset)]
}

func (b *fakeBus) WriteU8(bank uint8, offset uint16, v uint8, outCycles *int) {
	*outCycles++
	b.mem[b.index(bank, offset)] = v
}

func (b *fakeBus) ReadU16(bank uint8, offset uint16, outCycles *int) uint16 {
	lo := b.ReadU8(bank, offset, outCycles)
	hi := b.ReadU8(bank, offset+1, outCycles)
	return uint16(lo) | uint16(hi)<<8
}

func (b *fakeBus) WriteU16(bank uint8, offset uint16, v uint16, outCycles *int) {
	b.WriteU8(bank, offset, uint8(v), outCycles)
	b.WriteU8(bank, offset+1, uint8(v>>8), outCycles)
}

func (b *fakeBus) setResetVector(bank uint8, addr uint16) {
	b.mem[b.index(0, VectorEmuReset)] = uint8(addr)
	b.mem[b.index(0, VectorEmuReset+1)] = uint8(addr >> 8)
}

func (b *fakeBus) loadCode(bank uint8, addr uint16, code ...uint8) {
	for i, v := range code {
		b.mem[b.index(bank, addr+uint16(i))] = v
	}
}

func newTestCPU() (*CPU, *fakeBus) {
	bus := &fakeBus{}
	bus.setResetVector(0x00, 0x8000)
	c := New(bus, nil)
	return c, bus
}

func TestResetEntersEmulationModeAtResetVector(t *testing.T) {
	c, _ := newTestCPU()
	if !c.State.E {
		t.Fatalf("E = false, want true after reset")
	}
	if !c.flag(FlagM) || !c.flag(FlagX) {
		t.Fatalf("P = 0x%02X, want M and X set after reset", c.State.P)
	}
	if c.State.PC != 0x8000 || c.State.PBR != 0x00 {
		t.Fatalf("PC = %02X:%04X, want 00:8000", c.State.PBR, c.State.PC)
	}
}

// TestCPUWidthInvariant checks spec's testable property: after any
// instruction executing with P.X = 1, the high bytes of X and Y are zero.
func TestCPUWidthInvariant(t *testing.T) {
	c, bus := newTestCPU()
	// XCE to native mode, REP #$20 (clear M, widen A), SEP #$10 (set X, narrow index).
	bus.loadCode(0, 0x8000, 0x18, 0xFB) // CLC ; XCE -> native mode
	bus.loadCode(0, 0x8002, 0xC2, 0x20) // REP #$20
	bus.loadCode(0, 0x8004, 0xE2, 0x10) // SEP #$10
	bus.loadCode(0, 0x8006, 0xA2, 0xFF) // LDX #$FF (8-bit immediate since X=1)
	bus.loadCode(0, 0x8008, 0xA0, 0xFF) // LDY #$FF

	c.State.X = 0xBEEF
	c.State.Y = 0xCAFE

	for i := 0; i < 5; i++ {
		c.Step()
	}

	if c.State.X&0xFF00 != 0 {
		t.Errorf("X high byte = 0x%02X, want 0 with X flag set", c.State.X>>8)
	}
	if c.State.Y&0xFF00 != 0 {
		t.Errorf("Y high byte = 0x%02X, want 0 with X flag set", c.State.Y>>8)
	}
}

func TestStackPushPopSymmetry(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadCode(0, 0x8000, 0xA9, 0x42) // LDA #$42
	bus.loadCode(0, 0x8002, 0x48)       // PHA
	bus.loadCode(0, 0x8003, 0xA9, 0x00) // LDA #$00
	bus.loadCode(0, 0x8005, 0x68)       // PLA

	startSP := c.State.S
	for i := 0; i < 4; i++ {
		c.Step()
	}
	if c.State.S != startSP {
		t.Errorf("S = 0x%04X after balanced push/pop, want 0x%04X", c.State.S, startSP)
	}
	if uint8(c.State.A) != 0x42 {
		t.Errorf("A = 0x%02X after PLA, want 0x42", uint8(c.State.A))
	}
}

// TestNMIDispatchPushOrder verifies spec's NMI dispatch property: the
// stack at entry contains the original PB, PC, P, and the next
// instruction executes at the address read from 0x00FFEA (native mode).
func TestNMIDispatchPushOrder(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadCode(0, 0x8000, 0x18, 0xFB) // CLC; XCE -> native mode
	c.Step()
	c.Step()

	bus.mem[bus.index(0, VectorNativeNMI)] = 0x00
	bus.mem[bus.index(0, VectorNativeNMI+1)] = 0x90

	c.State.PBR = 0x01
	c.State.PC = 0x1234
	c.State.P = 0x55
	c.TriggerNMI()

	startS := c.State.S
	c.Step()

	if c.State.PBR != 0x00 || c.State.PC != 0x9000 {
		t.Fatalf("after NMI: PB:PC = %02X:%04X, want 00:9000", c.State.PBR, c.State.PC)
	}
	if !c.flag(FlagI) {
		t.Errorf("I flag not set after NMI dispatch")
	}

	// Stack grew downward by 4 bytes (PB, PC lo/hi, P) in native mode.
	if got := startS - c.State.S; got != 4 {
		t.Fatalf("stack depth change = %d, want 4", got)
	}

	pFromStack := bus.mem[bus.index(0, c.State.S+1)]
	pcLoFromStack := bus.mem[bus.index(0, c.State.S+2)]
	pcHiFromStack := bus.mem[bus.index(0, c.State.S+3)]
	pbFromStack := bus.mem[bus.index(0, c.State.S+4)]

	if pFromStack != 0x55 {
		t.Errorf("pushed P = 0x%02X, want 0x55", pFromStack)
	}
	gotPC := uint16(pcLoFromStack) | uint16(pcHiFromStack)<<8
	if gotPC != 0x1234 {
		t.Errorf("pushed PC = 0x%04X, want 0x1234", gotPC)
	}
	if pbFromStack != 0x01 {
		t.Errorf("pushed PB = 0x%02X, want 0x01", pbFromStack)
	}
}

func TestIRQGatedByIFlag(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadCode(0, 0x8000, 0x78) // SEI
	bus.loadCode(0, 0x8001, 0xEA) // NOP
	c.SetIRQLine(true)

	c.Step() // SEI
	pcBefore := c.State.PC
	c.Step() // IRQ masked, should just execute NOP
	if c.State.PC != pcBefore+1 {
		t.Errorf("IRQ fired while I flag set: PC = 0x%04X, want 0x%04X", c.State.PC, pcBefore+1)
	}
}

func TestWAISuspendsUntilInterrupt(t *testing.T) {
	c, bus := newTestCPU()
	bus.loadCode(0, 0x8000, 0xCB) // WAI
	bus.mem[bus.index(0, VectorEmuIRQ)] = 0x00
	bus.mem[bus.index(0, VectorEmuIRQ+1)] = 0xA0

	c.Step() // WAI
	if !c.WaitingIRQ {
		t.Fatalf("WaitingIRQ = false after WAI")
	}

	c.Step() // still waiting, no progress
	if c.State.PC != 0x8001 {
		t.Fatalf("PC advanced while waiting for interrupt")
	}

	c.setFlag(FlagI, false) // unmask so the pending IRQ is actually serviced
	c.SetIRQLine(true)
	c.Step()
	if c.State.PC != 0xA000 {
		t.Fatalf("PC = 0x%04X after WAI interrupt, want 0xA000", c.State.PC)
	}
}
