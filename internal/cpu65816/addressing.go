package cpu65816

// Mode tags the 26 addressing-mode resolvers referenced by the opcode
// table (spec §4.7: "addressing is resolved by one of 26 mode handlers").
type Mode int

const (
	ModeImplied Mode = iota
	ModeAccumulator
	ModeImmediateA // sized by the M flag
	ModeImmediateI // sized by the X flag
	ModeImmediate8 // always one byte: REP/SEP/COP/BRK signature/WDM
	ModeRelative8
	ModeRelativeLong
	ModeDirect
	ModeDirectX
	ModeDirectY
	ModeDirectIndirect
	ModeDirectIndirectX
	ModeDirectIndirectY
	ModeDirectIndirectLong
	ModeDirectIndirectLongY
	ModeAbsolute
	ModeAbsoluteX
	ModeAbsoluteY
	ModeAbsoluteIndirect
	ModeAbsoluteIndirectX
	ModeAbsoluteLong
	ModeAbsoluteLongX
	ModeStackRelative
	ModeStackRelativeIndirectY
	ModeBlockMove
	ModeAbsoluteConst // PEA: raw 16-bit constant operand, not a memory reference
)

// operand is the resolved result handed to an opcode's exec function: for
// memory modes bank:addr is the effective 24-bit address; for immediate
// modes imm already holds the fetched literal. Block-move packs src/dst
// bank bytes into imm's low/high bytes.
type operand struct {
	bank uint8
	addr uint16
	imm  uint32
	kind Mode
}

func (c *CPU) resolveOperand(mode Mode) operand {
	switch mode {
	case ModeImplied:
		return operand{kind: mode}

	case ModeAccumulator:
		return operand{kind: mode}

	case ModeImmediateA:
		if c.widthM() == 1 {
			return operand{kind: mode, imm: uint32(c.fetch8())}
		}
		return operand{kind: mode, imm: uint32(c.fetch16())}

	case ModeImmediateI:
		if c.widthX() == 1 {
			return operand{kind: mode, imm: uint32(c.fetch8())}
		}
		return operand{kind: mode, imm: uint32(c.fetch16())}

	case ModeImmediate8:
		return operand{kind: mode, imm: uint32(c.fetch8())}

	case ModeRelative8:
		off := int8(c.fetch8())
		return operand{kind: mode, imm: uint32(int32(c.State.PC) + int32(off))}

	case ModeRelativeLong:
		off := int16(c.fetch16())
		return operand{kind: mode, imm: uint32(int32(c.State.PC) + int32(off))}

	case ModeDirect:
		dp := c.directPageAddr(uint16(c.fetch8()))
		return operand{kind: mode, bank: 0, addr: dp}

	case ModeDirectX:
		dp := c.directPageAddr(uint16(c.fetch8()) + c.State.X)
		return operand{kind: mode, bank: 0, addr: dp}

	case ModeDirectY:
		dp := c.directPageAddr(uint16(c.fetch8()) + c.State.Y)
		return operand{kind: mode, bank: 0, addr: dp}

	case ModeDirectIndirect:
		dp := c.directPageAddr(uint16(c.fetch8()))
		lo := c.Bus.ReadU8(0, dp, &c.lastCycle)
		hi := c.Bus.ReadU8(0, dp+1, &c.lastCycle)
		return operand{kind: mode, bank: c.State.DBR, addr: uint16(lo) | uint16(hi)<<8}

	case ModeDirectIndirectX:
		dp := c.directPageAddr(uint16(c.fetch8()) + c.State.X)
		lo := c.Bus.ReadU8(0, dp, &c.lastCycle)
		hi := c.Bus.ReadU8(0, dp+1, &c.lastCycle)
		return operand{kind: mode, bank: c.State.DBR, addr: uint16(lo) | uint16(hi)<<8}

	case ModeDirectIndirectY:
		dp := c.directPageAddr(uint16(c.fetch8()))
		lo := c.Bus.ReadU8(0, dp, &c.lastCycle)
		hi := c.Bus.ReadU8(0, dp+1, &c.lastCycle)
		base := uint16(lo) | uint16(hi)<<8
		return operand{kind: mode, bank: c.State.DBR, addr: base + c.State.Y}

	case ModeDirectIndirectLong:
		dp := c.directPageAddr(uint16(c.fetch8()))
		lo := c.Bus.ReadU8(0, dp, &c.lastCycle)
		mid := c.Bus.ReadU8(0, dp+1, &c.lastCycle)
		hi := c.Bus.ReadU8(0, dp+2, &c.lastCycle)
		return operand{kind: mode, bank: hi, addr: uint16(lo) | uint16(mid)<<8}

	case ModeDirectIndirectLongY:
		dp := c.directPageAddr(uint16(c.fetch8()))
		lo := c.Bus.ReadU8(0, dp, &c.lastCycle)
		mid := c.Bus.ReadU8(0, dp+1, &c.lastCycle)
		hi := c.Bus.ReadU8(0, dp+2, &c.lastCycle)
		base := uint16(lo) | uint16(mid)<<8
		sum := uint32(base) + uint32(c.State.Y)
		return operand{kind: mode, bank: hi + uint8(sum>>16), addr: uint16(sum)}

	case ModeAbsolute:
		a := c.fetch16()
		return operand{kind: mode, bank: c.State.DBR, addr: a}

	case ModeAbsoluteX:
		a := c.fetch16()
		return operand{kind: mode, bank: c.State.DBR, addr: a + c.State.X}

	case ModeAbsoluteY:
		a := c.fetch16()
		return operand{kind: mode, bank: c.State.DBR, addr: a + c.State.Y}

	case ModeAbsoluteIndirect:
		ptr := c.fetch16()
		lo := c.Bus.ReadU8(0, ptr, &c.lastCycle)
		hi := c.Bus.ReadU8(0, ptr+1, &c.lastCycle)
		return operand{kind: mode, bank: c.State.PBR, addr: uint16(lo) | uint16(hi)<<8}

	case ModeAbsoluteIndirectX:
		ptr := c.fetch16() + c.State.X
		lo := c.Bus.ReadU8(c.State.PBR, ptr, &c.lastCycle)
		hi := c.Bus.ReadU8(c.State.PBR, ptr+1, &c.lastCycle)
		return operand{kind: mode, bank: c.State.PBR, addr: uint16(lo) | uint16(hi)<<8}

	case ModeAbsoluteLong:
		lo := c.fetch8()
		mid := c.fetch8()
		hi := c.fetch8()
		return operand{kind: mode, bank: hi, addr: uint16(lo) | uint16(mid)<<8}

	case ModeAbsoluteLongX:
		lo := c.fetch8()
		mid := c.fetch8()
		hi := c.fetch8()
		base := uint16(lo) | uint16(mid)<<8
		sum := uint32(base) + uint32(c.State.X)
		return operand{kind: mode, bank: hi + uint8(sum>>16), addr: uint16(sum)}

	case ModeStackRelative:
		off := c.fetch8()
		return operand{kind: mode, bank: 0, addr: c.State.S + uint16(off)}

	case ModeStackRelativeIndirectY:
		off := c.fetch8()
		srAddr := c.State.S + uint16(off)
		lo := c.Bus.ReadU8(0, srAddr, &c.lastCycle)
		hi := c.Bus.ReadU8(0, srAddr+1, &c.lastCycle)
		base := uint16(lo) | uint16(hi)<<8
		return operand{kind: mode, bank: c.State.DBR, addr: base + c.State.Y}

	case ModeBlockMove:
		dst := c.fetch8()
		src := c.fetch8()
		return operand{kind: mode, imm: uint32(dst)<<8 | uint32(src)}

	case ModeAbsoluteConst:
		return operand{kind: mode, imm: uint32(c.fetch16())}

	default:
		return operand{kind: mode}
	}
}

// directPageAddr adds the direct-page register; in emulation mode with
// DL=0x00 the low byte wraps within the page (6502-compatible quirk),
// otherwise it's a plain 16-bit addition into bank 0.
func (c *CPU) directPageAddr(offset uint16) uint16 {
	if c.State.E && uint8(c.State.D) == 0 {
		return (c.State.D & 0xFF00) | uint16(uint8(c.State.D)+uint8(offset))
	}
	return c.State.D + offset
}

// read8/read16/write8/write16 fetch or store the operand's effective
// value, dispatching through the accumulator for ModeAccumulator.
func (c *CPU) readOperand8(op operand) uint8 {
	if op.kind == ModeAccumulator {
		return uint8(c.State.A)
	}
	if op.kind == ModeImmediateA || op.kind == ModeImmediateI || op.kind == ModeImmediate8 {
		return uint8(op.imm)
	}
	return c.Bus.ReadU8(op.bank, op.addr, &c.lastCycle)
}

func (c *CPU) readOperand16(op operand) uint16 {
	if op.kind == ModeAccumulator {
		return c.State.A
	}
	if op.kind == ModeImmediateA || op.kind == ModeImmediateI {
		return uint16(op.imm)
	}
	return c.Bus.ReadU16(op.bank, op.addr, &c.lastCycle)
}

func (c *CPU) writeOperand8(op operand, v uint8) {
	if op.kind == ModeAccumulator {
		c.State.A = (c.State.A & 0xFF00) | uint16(v)
		return
	}
	c.Bus.WriteU8(op.bank, op.addr, v, &c.lastCycle)
}

func (c *CPU) writeOperand16(op operand, v uint16) {
	if op.kind == ModeAccumulator {
		c.State.A = v
		return
	}
	c.Bus.WriteU16(op.bank, op.addr, v, &c.lastCycle)
}
