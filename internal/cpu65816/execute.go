package cpu65816

import "nitro-core-dx/internal/debug"

// execFn is the handler signature every opcode table entry binds to.
type execFn func(c *CPU, op operand)

func (c *CPU) decimalFallback() {
	if !c.flag(FlagD) {
		return
	}
	c.logf(debug.LogLevelWarning, "decimal-mode ADC/SBC requested, falling back to binary arithmetic")
	if c.StrictMode {
		panic("cpu65816: decimal mode not implemented")
	}
}

// --- Arithmetic ---

func execADC(c *CPU, op operand) {
	c.decimalFallback()
	carry := uint32(0)
	if c.flag(FlagC) {
		carry = 1
	}
	if c.widthM() == 1 {
		a := uint32(uint8(c.State.A))
		m := uint32(c.readOperand8(op))
		sum := a + m + carry
		c.setFlag(FlagC, sum > 0xFF)
		c.setFlag(FlagV, (^(a^m))&(a^sum)&0x80 != 0)
		r := uint8(sum)
		c.State.A = (c.State.A & 0xFF00) | uint16(r)
		c.updateNZ8(r)
	} else {
		a := uint32(c.State.A)
		m := uint32(c.readOperand16(op))
		sum := a + m + carry
		c.setFlag(FlagC, sum > 0xFFFF)
		c.setFlag(FlagV, (^(a^m))&(a^sum)&0x8000 != 0)
		r := uint16(sum)
		c.State.A = r
		c.updateNZ16(r)
	}
}

func execSBC(c *CPU, op operand) {
	c.decimalFallback()
	borrow := uint32(0)
	if !c.flag(FlagC) {
		borrow = 1
	}
	if c.widthM() == 1 {
		a := uint32(uint8(c.State.A))
		m := uint32(c.readOperand8(op)) ^ 0xFF
		sum := a + m + (1 - borrow)
		c.setFlag(FlagC, sum > 0xFF)
		c.setFlag(FlagV, (^(a^m))&(a^sum)&0x80 != 0)
		r := uint8(sum)
		c.State.A = (c.State.A & 0xFF00) | uint16(r)
		c.updateNZ8(r)
	} else {
		a := uint32(c.State.A)
		m := uint32(c.readOperand16(op)) ^ 0xFFFF
		sum := a + m + (1 - borrow)
		c.setFlag(FlagC, sum > 0xFFFF)
		c.setFlag(FlagV, (^(a^m))&(a^sum)&0x8000 != 0)
		r := uint16(sum)
		c.State.A = r
		c.updateNZ16(r)
	}
}

func execCMPGeneric(c *CPU, reg uint16, wide bool, op operand) {
	if wide {
		m := c.readOperand16(op)
		r := reg - m
		c.setFlag(FlagC, reg >= m)
		c.updateNZ16(r)
	} else {
		m := uint16(c.readOperand8(op))
		r := (reg & 0xFF) - m
		c.setFlag(FlagC, reg&0xFF >= m)
		c.updateNZ8(uint8(r))
	}
}

func execCMP(c *CPU, op operand) { execCMPGeneric(c, c.State.A, c.widthM() == 2, op) }
func execCPX(c *CPU, op operand) { execCMPGeneric(c, c.State.X, c.widthX() == 2, op) }
func execCPY(c *CPU, op operand) { execCMPGeneric(c, c.State.Y, c.widthX() == 2, op) }

// --- Logical ---

func execAND(c *CPU, op operand) {
	if c.widthM() == 1 {
		r := uint8(c.State.A) & c.readOperand8(op)
		c.State.A = (c.State.A & 0xFF00) | uint16(r)
		c.updateNZ8(r)
	} else {
		r := c.State.A & c.readOperand16(op)
		c.State.A = r
		c.updateNZ16(r)
	}
}

func execORA(c *CPU, op operand) {
	if c.widthM() == 1 {
		r := uint8(c.State.A) | c.readOperand8(op)
		c.State.A = (c.State.A & 0xFF00) | uint16(r)
		c.updateNZ8(r)
	} else {
		r := c.State.A | c.readOperand16(op)
		c.State.A = r
		c.updateNZ16(r)
	}
}

func execEOR(c *CPU, op operand) {
	if c.widthM() == 1 {
		r := uint8(c.State.A) ^ c.readOperand8(op)
		c.State.A = (c.State.A & 0xFF00) | uint16(r)
		c.updateNZ8(r)
	} else {
		r := c.State.A ^ c.readOperand16(op)
		c.State.A = r
		c.updateNZ16(r)
	}
}

func execBIT(c *CPU, op operand) {
	if c.widthM() == 1 {
		m := c.readOperand8(op)
		c.setFlag(FlagZ, uint8(c.State.A)&m == 0)
		if op.kind != ModeImmediateA && op.kind != ModeImmediate8 {
			c.setFlag(FlagN, m&0x80 != 0)
			c.setFlag(FlagV, m&0x40 != 0)
		}
	} else {
		m := c.readOperand16(op)
		c.setFlag(FlagZ, c.State.A&m == 0)
		if op.kind != ModeImmediateA && op.kind != ModeImmediate8 {
			c.setFlag(FlagN, m&0x8000 != 0)
			c.setFlag(FlagV, m&0x4000 != 0)
		}
	}
}

func execTRB(c *CPU, op operand) {
	if c.widthM() == 1 {
		m := c.readOperand8(op)
		c.setFlag(FlagZ, uint8(c.State.A)&m == 0)
		c.writeOperand8(op, m&^uint8(c.State.A))
	} else {
		m := c.readOperand16(op)
		c.setFlag(FlagZ, c.State.A&m == 0)
		c.writeOperand16(op, m&^c.State.A)
	}
}

func execTSB(c *CPU, op operand) {
	if c.widthM() == 1 {
		m := c.readOperand8(op)
		c.setFlag(FlagZ, uint8(c.State.A)&m == 0)
		c.writeOperand8(op, m|uint8(c.State.A))
	} else {
		m := c.readOperand16(op)
		c.setFlag(FlagZ, c.State.A&m == 0)
		c.writeOperand16(op, m|c.State.A)
	}
}

// --- Shifts/rotates ---

func execASL(c *CPU, op operand) {
	if c.widthM() == 1 {
		m := c.readOperand8(op)
		c.setFlag(FlagC, m&0x80 != 0)
		r := m << 1
		c.writeOperand8(op, r)
		c.updateNZ8(r)
	} else {
		m := c.readOperand16(op)
		c.setFlag(FlagC, m&0x8000 != 0)
		r := m << 1
		c.writeOperand16(op, r)
		c.updateNZ16(r)
	}
}

func execLSR(c *CPU, op operand) {
	if c.widthM() == 1 {
		m := c.readOperand8(op)
		c.setFlag(FlagC, m&0x01 != 0)
		r := m >> 1
		c.writeOperand8(op, r)
		c.updateNZ8(r)
	} else {
		m := c.readOperand16(op)
		c.setFlag(FlagC, m&0x0001 != 0)
		r := m >> 1
		c.writeOperand16(op, r)
		c.updateNZ16(r)
	}
}

func execROL(c *CPU, op operand) {
	carryIn := uint16(0)
	if c.flag(FlagC) {
		carryIn = 1
	}
	if c.widthM() == 1 {
		m := c.readOperand8(op)
		c.setFlag(FlagC, m&0x80 != 0)
		r := (m << 1) | uint8(carryIn)
		c.writeOperand8(op, r)
		c.updateNZ8(r)
	} else {
		m := c.readOperand16(op)
		c.setFlag(FlagC, m&0x8000 != 0)
		r := (m << 1) | carryIn
		c.writeOperand16(op, r)
		c.updateNZ16(r)
	}
}

func execROR(c *CPU, op operand) {
	if c.widthM() == 1 {
		carryIn := uint8(0)
		if c.flag(FlagC) {
			carryIn = 0x80
		}
		m := c.readOperand8(op)
		c.setFlag(FlagC, m&0x01 != 0)
		r := (m >> 1) | carryIn
		c.writeOperand8(op, r)
		c.updateNZ8(r)
	} else {
		carryIn := uint16(0)
		if c.flag(FlagC) {
			carryIn = 0x8000
		}
		m := c.readOperand16(op)
		c.setFlag(FlagC, m&0x0001 != 0)
		r := (m >> 1) | carryIn
		c.writeOperand16(op, r)
		c.updateNZ16(r)
	}
}

// --- Increment/decrement ---

func execINC(c *CPU, op operand) {
	if c.widthM() == 1 {
		r := c.readOperand8(op) + 1
		c.writeOperand8(op, r)
		c.updateNZ8(r)
	} else {
		r := c.readOperand16(op) + 1
		c.writeOperand16(op, r)
		c.updateNZ16(r)
	}
}

func execDEC(c *CPU, op operand) {
	if c.widthM() == 1 {
		r := c.readOperand8(op) - 1
		c.writeOperand8(op, r)
		c.updateNZ8(r)
	} else {
		r := c.readOperand16(op) - 1
		c.writeOperand16(op, r)
		c.updateNZ16(r)
	}
}

func execINX(c *CPU, op operand) {
	c.State.X++
	c.enforceIndexWidth()
	nzFromIndex(c, c.State.X)
}

func execINY(c *CPU, op operand) {
	c.State.Y++
	c.enforceIndexWidth()
	nzFromIndex(c, c.State.Y)
}

func execDEX(c *CPU, op operand) {
	c.State.X--
	c.enforceIndexWidth()
	nzFromIndex(c, c.State.X)
}

func execDEY(c *CPU, op operand) {
	c.State.Y--
	c.enforceIndexWidth()
	nzFromIndex(c, c.State.Y)
}

func nzFromIndex(c *CPU, v uint16) {
	if c.widthX() == 1 {
		c.updateNZ8(uint8(v))
	} else {
		c.updateNZ16(v)
	}
}

// --- Load/store ---

func execLDA(c *CPU, op operand) {
	if c.widthM() == 1 {
		r := c.readOperand8(op)
		c.State.A = (c.State.A & 0xFF00) | uint16(r)
		c.updateNZ8(r)
	} else {
		r := c.readOperand16(op)
		c.State.A = r
		c.updateNZ16(r)
	}
}

func execLDX(c *CPU, op operand) {
	if c.widthX() == 1 {
		r := c.readOperand8(op)
		c.State.X = uint16(r)
		c.updateNZ8(r)
	} else {
		r := c.readOperand16(op)
		c.State.X = r
		c.updateNZ16(r)
	}
}

func execLDY(c *CPU, op operand) {
	if c.widthX() == 1 {
		r := c.readOperand8(op)
		c.State.Y = uint16(r)
		c.updateNZ8(r)
	} else {
		r := c.readOperand16(op)
		c.State.Y = r
		c.updateNZ16(r)
	}
}

func execSTA(c *CPU, op operand) {
	if c.widthM() == 1 {
		c.writeOperand8(op, uint8(c.State.A))
	} else {
		c.writeOperand16(op, c.State.A)
	}
}

func execSTX(c *CPU, op operand) {
	if c.widthX() == 1 {
		c.writeOperand8(op, uint8(c.State.X))
	} else {
		c.writeOperand16(op, c.State.X)
	}
}

func execSTY(c *CPU, op operand) {
	if c.widthX() == 1 {
		c.writeOperand8(op, uint8(c.State.Y))
	} else {
		c.writeOperand16(op, c.State.Y)
	}
}

func execSTZ(c *CPU, op operand) {
	if c.widthM() == 1 {
		c.writeOperand8(op, 0)
	} else {
		c.writeOperand16(op, 0)
	}
}

// --- Transfers ---

func execTAX(c *CPU, op operand) {
	c.State.X = c.State.A
	c.enforceIndexWidth()
	nzFromIndex(c, c.State.X)
}
func execTAY(c *CPU, op operand) {
	c.State.Y = c.State.A
	c.enforceIndexWidth()
	nzFromIndex(c, c.State.Y)
}
func execTXA(c *CPU, op operand) {
	if c.widthM() == 1 {
		c.State.A = (c.State.A & 0xFF00) | (c.State.X & 0xFF)
		c.updateNZ8(uint8(c.State.A))
	} else {
		c.State.A = c.State.X
		c.updateNZ16(c.State.A)
	}
}
func execTYA(c *CPU, op operand) {
	if c.widthM() == 1 {
		c.State.A = (c.State.A & 0xFF00) | (c.State.Y & 0xFF)
		c.updateNZ8(uint8(c.State.A))
	} else {
		c.State.A = c.State.Y
		c.updateNZ16(c.State.A)
	}
}
func execTXY(c *CPU, op operand) {
	c.State.Y = c.State.X
	c.enforceIndexWidth()
	nzFromIndex(c, c.State.Y)
}
func execTYX(c *CPU, op operand) {
	c.State.X = c.State.Y
	c.enforceIndexWidth()
	nzFromIndex(c, c.State.X)
}
func execTXS(c *CPU, op operand) {
	if c.State.E {
		c.State.S = 0x0100 | (c.State.X & 0xFF)
	} else {
		c.State.S = c.State.X
	}
}
func execTSX(c *CPU, op operand) {
	c.State.X = c.State.S
	c.enforceIndexWidth()
	nzFromIndex(c, c.State.X)
}
func execTCD(c *CPU, op operand) {
	c.State.D = c.State.A
	c.updateNZ16(c.State.D)
}
func execTDC(c *CPU, op operand) {
	c.State.A = c.State.D
	c.updateNZ16(c.State.A)
}
func execTCS(c *CPU, op operand) {
	if c.State.E {
		c.State.S = 0x0100 | (c.State.A & 0xFF)
	} else {
		c.State.S = c.State.A
	}
}
func execTSC(c *CPU, op operand) {
	c.State.A = c.State.S
	c.updateNZ16(c.State.A)
}
func execXBA(c *CPU, op operand) {
	lo := uint8(c.State.A)
	hi := uint8(c.State.A >> 8)
	c.State.A = uint16(lo)<<8 | uint16(hi)
	c.updateNZ8(hi)
}

// --- Stack ---

func execPHA(c *CPU, op operand) {
	if c.widthM() == 1 {
		c.push8(uint8(c.State.A))
	} else {
		c.push16(c.State.A)
	}
}
func execPLA(c *CPU, op operand) {
	if c.widthM() == 1 {
		r := c.pop8()
		c.State.A = (c.State.A & 0xFF00) | uint16(r)
		c.updateNZ8(r)
	} else {
		r := c.pop16()
		c.State.A = r
		c.updateNZ16(r)
	}
}
func execPHX(c *CPU, op operand) {
	if c.widthX() == 1 {
		c.push8(uint8(c.State.X))
	} else {
		c.push16(c.State.X)
	}
}
func execPLX(c *CPU, op operand) {
	if c.widthX() == 1 {
		r := c.pop8()
		c.State.X = uint16(r)
		c.updateNZ8(r)
	} else {
		r := c.pop16()
		c.State.X = r
		c.updateNZ16(r)
	}
}
func execPHY(c *CPU, op operand) {
	if c.widthX() == 1 {
		c.push8(uint8(c.State.Y))
	} else {
		c.push16(c.State.Y)
	}
}
func execPLY(c *CPU, op operand) {
	if c.widthX() == 1 {
		r := c.pop8()
		c.State.Y = uint16(r)
		c.updateNZ8(r)
	} else {
		r := c.pop16()
		c.State.Y = r
		c.updateNZ16(r)
	}
}
func execPHP(c *CPU, op operand) {
	if c.State.E {
		c.push8(c.State.P | FlagB)
	} else {
		c.push8(c.State.P)
	}
}
func execPLP(c *CPU, op operand) {
	c.State.P = c.pop8()
	if c.State.E {
		c.State.P |= FlagM | FlagX
	}
	c.enforceIndexWidth()
}
func execPHB(c *CPU, op operand) { c.push8(c.State.DBR) }
func execPLB(c *CPU, op operand) {
	c.State.DBR = c.pop8()
	c.updateNZ8(c.State.DBR)
}
func execPHD(c *CPU, op operand) { c.push16(c.State.D) }
func execPLD(c *CPU, op operand) {
	c.State.D = c.pop16()
	c.updateNZ16(c.State.D)
}
func execPHK(c *CPU, op operand) { c.push8(c.State.PBR) }

func execPEA(c *CPU, op operand) { c.push16(uint16(op.imm)) }

// PEI pushes the direct-page indirect pointer itself, not the value it
// points to: resolveOperand's ModeDirectIndirect already dereferences dp
// once, so op.addr already holds the word to push.
func execPEI(c *CPU, op operand) { c.push16(op.addr) }
func execPER(c *CPU, op operand) { c.push16(uint16(op.imm)) }

// --- Branches/jumps ---

func branchIf(c *CPU, cond bool, target uint16) {
	if cond {
		c.State.PC = target
		c.lastCycle++
	}
}

func execBPL(c *CPU, op operand) { branchIf(c, !c.flag(FlagN), uint16(op.imm)) }
func execBMI(c *CPU, op operand) { branchIf(c, c.flag(FlagN), uint16(op.imm)) }
func execBVC(c *CPU, op operand) { branchIf(c, !c.flag(FlagV), uint16(op.imm)) }
func execBVS(c *CPU, op operand) { branchIf(c, c.flag(FlagV), uint16(op.imm)) }
func execBCC(c *CPU, op operand) { branchIf(c, !c.flag(FlagC), uint16(op.imm)) }
func execBCS(c *CPU, op operand) { branchIf(c, c.flag(FlagC), uint16(op.imm)) }
func execBNE(c *CPU, op operand) { branchIf(c, !c.flag(FlagZ), uint16(op.imm)) }
func execBEQ(c *CPU, op operand) { branchIf(c, c.flag(FlagZ), uint16(op.imm)) }
func execBRA(c *CPU, op operand) { c.State.PC = uint16(op.imm) }
func execBRL(c *CPU, op operand) { c.State.PC = uint16(op.imm) }

func execJMP(c *CPU, op operand) { c.State.PC = op.addr }
func execJML(c *CPU, op operand) {
	c.State.PC = op.addr
	c.State.PBR = op.bank
}

func execJSR(c *CPU, op operand) {
	c.push16(c.State.PC - 1)
	c.State.PC = op.addr
}

func execJSL(c *CPU, op operand) {
	c.push8(c.State.PBR)
	c.push16(c.State.PC - 1)
	c.State.PBR = op.bank
	c.State.PC = op.addr
}

func execRTS(c *CPU, op operand) {
	c.State.PC = c.pop16() + 1
}

func execRTL(c *CPU, op operand) {
	c.State.PC = c.pop16() + 1
	c.State.PBR = c.pop8()
}

func execRTI(c *CPU, op operand) {
	c.State.P = c.pop8()
	if c.State.E {
		c.State.P |= FlagM | FlagX
	}
	c.State.PC = c.pop16()
	if !c.State.E {
		c.State.PBR = c.pop8()
	}
	c.enforceIndexWidth()
}

// --- Block move ---

func execMVN(c *CPU, op operand) {
	dstBank := uint8(op.imm >> 8)
	srcBank := uint8(op.imm)
	v := c.Bus.ReadU8(srcBank, c.State.X, &c.lastCycle)
	c.Bus.WriteU8(dstBank, c.State.Y, v, &c.lastCycle)
	c.State.X++
	c.State.Y++
	c.State.A--
	c.State.DBR = dstBank
	if c.State.A != 0xFFFF {
		c.State.PC -= 3 // repeat until A (byte count - 1) underflows
	}
}

func execMVP(c *CPU, op operand) {
	dstBank := uint8(op.imm >> 8)
	srcBank := uint8(op.imm)
	v := c.Bus.ReadU8(srcBank, c.State.X, &c.lastCycle)
	c.Bus.WriteU8(dstBank, c.State.Y, v, &c.lastCycle)
	c.State.X--
	c.State.Y--
	c.State.A--
	c.State.DBR = dstBank
	if c.State.A != 0xFFFF {
		c.State.PC -= 3
	}
}

// --- Flags / misc ---

func execCLC(c *CPU, op operand) { c.setFlag(FlagC, false) }
func execSEC(c *CPU, op operand) { c.setFlag(FlagC, true) }
func execCLI(c *CPU, op operand) { c.setFlag(FlagI, false) }
func execSEI(c *CPU, op operand) { c.setFlag(FlagI, true) }
func execCLV(c *CPU, op operand) { c.setFlag(FlagV, false) }
func execCLD(c *CPU, op operand) { c.setFlag(FlagD, false) }
func execSED(c *CPU, op operand) { c.setFlag(FlagD, true) }

func execREP(c *CPU, op operand) {
	c.State.P &^= uint8(op.imm)
	if c.State.E {
		c.State.P |= FlagM | FlagX
	}
	c.enforceIndexWidth()
}

func execSEP(c *CPU, op operand) {
	c.State.P |= uint8(op.imm)
	c.enforceIndexWidth()
}

func execXCE(c *CPU, op operand) {
	carry := c.flag(FlagC)
	c.setFlag(FlagC, c.State.E)
	c.State.E = carry
	if c.State.E {
		c.State.P |= FlagM | FlagX
		c.State.S = 0x0100 | (c.State.S & 0xFF)
	}
	c.enforceIndexWidth()
}

func execNOP(c *CPU, op operand) {}
func execWDM(c *CPU, op operand) {}

func execWAI(c *CPU, op operand) { c.WaitingIRQ = true }
func execSTP(c *CPU, op operand) { c.Stopped = true }

func execBRK(c *CPU, op operand) {
	// The signature byte after the opcode is already consumed by
	// ModeImmediate8's fetch, so PC already points past it.
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
	vector := VectorNativeBRK
	if c.State.E {
		vector = VectorEmuIRQ
	}
	lo := c.Bus.ReadU8(0, vector, &c.lastCycle)
	hi := c.Bus.ReadU8(0, vector+1, &c.lastCycle)
	c.State.PBR = 0
	c.State.PC = uint16(lo) | uint16(hi)<<8
}

func execCOP(c *CPU, op operand) {
	if !c.State.E {
		c.push8(c.State.PBR)
	}
	c.push16(c.State.PC)
	if c.State.E {
		c.push8(c.State.P)
	} else {
		c.push8(c.State.P)
	}
	c.setFlag(FlagI, true)
	c.setFlag(FlagD, false)
	vector := VectorNativeCOP
	if c.State.E {
		vector = VectorEmuCOP
	}
	lo := c.Bus.ReadU8(0, vector, &c.lastCycle)
	hi := c.Bus.ReadU8(0, vector+1, &c.lastCycle)
	c.State.PBR = 0
	c.State.PC = uint16(lo) | uint16(hi)<<8
}
