// Package cpu65816 implements the 65816 CPU interpreter: a 256-entry
// opcode table, 26 addressing-mode resolvers, native/emulation mode with
// switchable accumulator/index width, and NMI/IRQ/WAI dispatch.
package cpu65816

import "nitro-core-dx/internal/debug"

// Bus is the memory interface the CPU drives. Multi-byte accesses fan out
// to sequential byte accesses, charging per-byte cycle cost into outCycles.
type Bus interface {
	ReadU8(bank uint8, offset uint16, outCycles *int) uint8
	WriteU8(bank uint8, offset uint16, v uint8, outCycles *int)
	ReadU16(bank uint8, offset uint16, outCycles *int) uint16
	WriteU16(bank uint8, offset uint16, v uint16, outCycles *int)
}

// Status flag bits of the P register.
const (
	FlagC uint8 = 1 << 0 // Carry
	FlagZ uint8 = 1 << 1 // Zero
	FlagI uint8 = 1 << 2 // IRQ disable
	FlagD uint8 = 1 << 3 // Decimal mode
	FlagX uint8 = 1 << 4 // Index register width (native); break flag in emulation
	FlagM uint8 = 1 << 5 // Accumulator/memory width (native)
	FlagV uint8 = 1 << 6 // Overflow
	FlagN uint8 = 1 << 7 // Negative

	FlagB = FlagX // alias: emulation-mode break flag shares bit 4
)

const (
	VectorNativeCOP   uint16 = 0xFFE4
	VectorNativeBRK   uint16 = 0xFFE6
	VectorNativeABORT uint16 = 0xFFE8
	VectorNativeNMI   uint16 = 0xFFEA
	VectorNativeIRQ   uint16 = 0xFFEE

	VectorEmuCOP   uint16 = 0xFFF4
	VectorEmuABORT uint16 = 0xFFF8
	VectorEmuNMI   uint16 = 0xFFFA
	VectorEmuReset uint16 = 0xFFFC
	VectorEmuIRQ   uint16 = 0xFFFE
)

// State is the CPU's complete register file, the portion of a savestate
// serialized verbatim (16 bytes: A,X,Y,S,D,DB,PB,PC,P plus one byte for E).
type State struct {
	A, X, Y uint16
	S       uint16 // stack pointer
	D       uint16 // direct page register
	DBR     uint8  // data bank
	PBR     uint8  // program bank
	PC      uint16
	P       uint8

	E bool // emulation mode flag (not part of P, but savestate groups it alongside)
}

// CPU executes one 65816 instruction per Step call.
type CPU struct {
	State State
	Bus   Bus
	Log   *debug.Logger

	// NMIPending latches on a rising VBlankStart edge; IRQPending is level
	// driven by whichever device asserts it (gated by the I flag).
	NMIPending bool
	IRQPending bool
	WaitingIRQ bool // WAI: suspended until any interrupt (NMI or IRQ)
	Stopped    bool // STP: halted until hardware reset

	// StrictMode turns unimplemented-path warnings into panics, mirroring
	// the teacher's debug-build "safety check" assertions.
	StrictMode bool

	lastPC    uint32 // PBR:PC of the instruction currently executing, for logs
	lastCycle int
}

// New creates a CPU wired to bus and an optional logger.
func New(bus Bus, logger *debug.Logger) *CPU {
	c := &CPU{Bus: bus, Log: logger}
	c.Reset()
	return c
}

// Reset puts the CPU in emulation mode with M=X=1 and loads PC from the
// reset vector at 0x00FFFC (spec §4.7 "after reset, E=M=X=1").
func (c *CPU) Reset() {
	c.State.E = true
	c.State.P = FlagM | FlagX | FlagI
	c.State.D = 0
	c.State.DBR = 0
	c.State.PBR = 0
	c.State.S = 0x01FF
	c.State.A, c.State.X, c.State.Y = 0, 0, 0
	c.NMIPending = false
	c.IRQPending = false
	c.WaitingIRQ = false
	c.Stopped = false

	var cycles int
	lo := c.Bus.ReadU8(0, VectorEmuReset, &cycles)
	hi := c.Bus.ReadU8(0, VectorEmuReset+1, &cycles)
	c.State.PC = uint16(lo) | uint16(hi)<<8
}

func (c *CPU) flag(f uint8) bool   { return c.State.P&f != 0 }
func (c *CPU) setFlag(f uint8, v bool) {
	if v {
		c.State.P |= f
	} else {
		c.State.P &^= f
	}
}

// widthM reports the accumulator/memory width in bytes (1 or 2). In
// emulation mode M is forced to 1 (8-bit) regardless of the P register.
func (c *CPU) widthM() int {
	if c.State.E || c.flag(FlagM) {
		return 1
	}
	return 2
}

// widthX reports the index-register width in bytes.
func (c *CPU) widthX() int {
	if c.State.E || c.flag(FlagX) {
		return 1
	}
	return 2
}

// enforceIndexWidth clears the high bytes of X/Y whenever the X flag is 1,
// the CPU width invariant the CPU width invariant property checks for.
func (c *CPU) enforceIndexWidth() {
	if c.widthX() == 1 {
		c.State.X &= 0x00FF
		c.State.Y &= 0x00FF
	}
}

func (c *CPU) updateNZ8(v uint8) {
	c.setFlag(FlagZ, v == 0)
	c.setFlag(FlagN, v&0x80 != 0)
}

func (c *CPU) updateNZ16(v uint16) {
	c.setFlag(FlagZ, v == 0)
	c.setFlag(FlagN, v&0x8000 != 0)
}

// fetch8/fetch16 read the next operand byte(s) at PBR:PC and advance PC.
func (c *CPU) fetch8() uint8 {
	v := c.Bus.ReadU8(c.State.PBR, c.State.PC, &c.lastCycle)
	c.State.PC++
	return v
}

func (c *CPU) fetch16() uint16 {
	v := c.Bus.ReadU16(c.State.PBR, c.State.PC, &c.lastCycle)
	c.State.PC += 2
	return v
}

// push8/pop8/push16/pop16 implement the 65816 stack, which in emulation
// mode is pinned to page 1 ($0100-$01FF, S high byte fixed at 0x01).
func (c *CPU) push8(v uint8) {
	c.Bus.WriteU8(0, c.State.S, v, &c.lastCycle)
	c.State.S--
	if c.State.E {
		c.State.S = 0x0100 | (c.State.S & 0xFF)
	}
}

func (c *CPU) pop8() uint8 {
	c.State.S++
	if c.State.E {
		c.State.S = 0x0100 | (c.State.S & 0xFF)
	}
	return c.Bus.ReadU8(0, c.State.S, &c.lastCycle)
}

func (c *CPU) push16(v uint16) {
	c.push8(uint8(v >> 8))
	c.push8(uint8(v))
}

func (c *CPU) pop16() uint16 {
	lo := c.pop8()
	hi := c.pop8()
	return uint16(lo) | uint16(hi)<<8
}

// TriggerNMI latches a pending NMI (spec §4.7: "if a pending NMI latch is
// set" — edge-triggered, serviced at the next instruction boundary).
func (c *CPU) TriggerNMI() {
	c.NMIPending = true
	c.WaitingIRQ = false
}

// SetIRQLine sets the level-driven IRQ line state.
func (c *CPU) SetIRQLine(asserted bool) {
	c.IRQPending = asserted
	if asserted {
		c.WaitingIRQ = false
	}
}

// Step executes exactly one instruction (or, if halted by STP, does
// nothing) and returns the number of master cycles it consumed.
func (c *CPU) Step() int {
	c.lastCycle = 0

	if c.Stopped {
		return 1
	}

	if c.NMIPending {
		c.dispatchInterrupt(true)
		c.NMIPending = false
		return c.lastCycle
	}
	if c.IRQPending && !c.flag(FlagI) {
		c.dispatchInterrupt(false)
		return c.lastCycle
	}

	if c.WaitingIRQ {
		return 1
	}

	c.lastPC = uint32(c.State.PBR)<<16 | uint32(c.State.PC)
	opcode := c.fetch8()
	entry := opcodeTable[opcode]

	if entry.exec == nil {
		c.logf(debug.LogLevelWarning, "unimplemented opcode 0x%02X at %02X:%04X",
			opcode, c.State.PBR, c.State.PC-1)
		if c.StrictMode {
			panic("cpu65816: unimplemented opcode")
		}
		return c.lastCycle + 2
	}

	operand := c.resolveOperand(entry.mode)
	entry.exec(c, operand)
	c.enforceIndexWidth()

	if c.Log != nil {
		c.Log.LogCPU(debug.LogLevelTrace, c.formatTrace(entry, opcode), nil)
	}

	return c.lastCycle + entry.baseCycles
}

func (c *CPU) logf(level debug.LogLevel, format string, args ...interface{}) {
	if c.Log != nil {
		c.Log.LogCPUf(level, format, args...)
	}
}

// dispatchInterrupt implements spec §4.7's interrupt protocol: push PB,
// 16-bit PC, then P; set I; jump to the vector; clear the WAI latch.
func (c *CPU) dispatchInterrupt(nmi bool) {
	if !c.State.E {
		c.push8(c.State.PBR)
	}
	c.push16(c.State.PC)
	if c.State.E {
		c.push8(c.State.P | FlagB)
	} else {
		c.push8(c.State.P)
	}
	c.setFlag(FlagI, true)
	c.setFlag(FlagD, false)

	var vector uint16
	switch {
	case nmi && c.State.E:
		vector = VectorEmuNMI
	case nmi && !c.State.E:
		vector = VectorNativeNMI
	case !nmi && c.State.E:
		vector = VectorEmuIRQ
	default:
		vector = VectorNativeIRQ
	}

	lo := c.Bus.ReadU8(0, vector, &c.lastCycle)
	hi := c.Bus.ReadU8(0, vector+1, &c.lastCycle)
	c.State.PBR = 0
	c.State.PC = uint16(lo) | uint16(hi)<<8
	c.WaitingIRQ = false
	c.lastCycle += 7
}

func (c *CPU) formatTrace(entry opcodeEntry, opcode uint8) string {
	return entry.name
}
