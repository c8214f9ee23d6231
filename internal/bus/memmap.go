package bus

import "nitro-core-dx/internal/cartridge"

// systemAreaEntry is one slot of the dense 32 KiB system-area lookup
// table shared by every bank in 0x00-0x3F (and its 0x80-0xBF mirror),
// spec §3: "indexed by a 15-bit offset lookup table for O(1) decoding of
// the hot path".
type systemAreaEntry struct {
	target Target
	cycles uint8
	mask   AccessMask
}

const systemAreaSize = 0x8000

// MemoryMap is an immutable, precomputed decoder for one of the two
// cartridge mapping types (LowROM/HighROM). Construction builds the
// system-area LUT once; per-bank decoding for the remainder of the
// address space (SRAM carve-outs, WRAM banks, ROM banks) is a pure
// function evaluated per access, exactly as spec §3 describes translation
// for ROM/SRAM targets.
type MemoryMap struct {
	mapType  cartridge.MapType
	lut      [systemAreaSize]systemAreaEntry
	fastCyc  uint8
	slowCyc  uint8
}

// NewMemoryMap builds the LowROM or HighROM map.
func NewMemoryMap(mapType cartridge.MapType) *MemoryMap {
	m := &MemoryMap{mapType: mapType, fastCyc: 6, slowCyc: 8}
	m.buildSystemArea()
	return m
}

// buildSystemArea fills the dense LUT for offsets 0x0000-0x7FFF, identical
// for LowROM and HighROM (both mirror the same system registers into
// every bank 0x00-0x3F/0x80-0xBF).
func (m *MemoryMap) buildSystemArea() {
	fill := func(lo, hi int, e systemAreaEntry) {
		for o := lo; o <= hi; o++ {
			m.lut[o] = e
		}
	}
	// Default: open bus / unmapped.
	fill(0x0000, 0x7FFF, systemAreaEntry{TargetUnmapped, 6, AccessRW})
	// 0x0000-0x1FFF: WRAM mirror (low 8 KiB of bank 0x7E).
	fill(0x0000, 0x1FFF, systemAreaEntry{TargetRAM, 8, AccessRW})
	// 0x2100-0x213F: PPU low-write/low-read registers.
	fill(0x2100, 0x213F, systemAreaEntry{TargetPPU, 6, AccessRW})
	// 0x2140-0x217F: APU mailbox ports (mirrored every 4 bytes).
	fill(0x2140, 0x217F, systemAreaEntry{TargetAPU, 6, AccessRW})
	// 0x2180-0x2183: WRAM indirect data port (WMDATA/WMADD).
	fill(0x2180, 0x2183, systemAreaEntry{TargetIndirectRAM, 8, AccessRW})
	// 0x4016-0x4017: legacy joypad serial port.
	fill(0x4016, 0x4017, systemAreaEntry{TargetJoypad, 12, AccessRW})
	// 0x4200-0x420D: NMI/IRQ enable, HV timers, joypad auto-read enable,
	// DMA/HDMA enable masks, ROM-speed select.
	fill(0x4200, 0x420A, systemAreaEntry{TargetIRQ, 6, AccessRW})
	fill(0x420B, 0x420C, systemAreaEntry{TargetDMA, 8, AccessWrite})
	fill(0x420D, 0x420D, systemAreaEntry{TargetBusSelf, 6, AccessRW})
	// 0x4202-0x4206: math unit operands.
	fill(0x4202, 0x4206, systemAreaEntry{TargetMath, 6, AccessWrite})
	// 0x4210-0x4212: RDNMI/TIMEUP/HVBJOY status.
	fill(0x4210, 0x4212, systemAreaEntry{TargetIRQ, 6, AccessRead})
	// 0x4214-0x4217: math unit results.
	fill(0x4214, 0x4217, systemAreaEntry{TargetMath, 6, AccessRead})
	// 0x4218-0x421F: auto-read joypad registers.
	fill(0x4218, 0x421F, systemAreaEntry{TargetJoypad, 6, AccessRead})
	// 0x4300-0x437F: per-channel DMA/HDMA register file (8 channels x 16B).
	fill(0x4300, 0x437F, systemAreaEntry{TargetDMA, 8, AccessRW})
}

// Decode resolves a 24-bit (bank, offset) address to a target component,
// local offset, access-cycle charge, and allowed direction mask. The bus
// passes its current FastROM flag in fastROM; ROM targets are priced from
// it and the original bank, every other target carries the map's fixed
// charge.
func (m *MemoryMap) Decode(bank uint8, offset uint16, fastROM bool) decoded {
	sysBank := m.resolveMirror(bank)
	hiROMSRAM := m.mapType == cartridge.MapHighROM && sysBank >= 0x20 && offset >= 0x6000

	if sysBank <= 0x3F && offset < systemAreaSize && !hiROMSRAM {
		e := m.lut[offset]
		return decoded{target: e.target, local: uint32(offset), cycles: e.cycles, mask: e.mask}
	}

	switch m.mapType {
	case cartridge.MapHighROM:
		return m.decodeHighROM(bank, offset, fastROM)
	default:
		return m.decodeLowROM(bank, offset, fastROM)
	}
}

// resolveMirror substitutes a mirror bank for its canonical source, per
// spec §3 ("Mirror banks are resolved by substitution before lookup").
// Banks 0x80-0xBF fold onto the system area of 0x00-0x3F for both maps; the
// ROM/SRAM/WRAM decoders below independently special-case the handful of
// banks (0x7E/0x7F, 0x70-0x7D, 0xF0-0xFF) that do NOT fold this way.
func (m *MemoryMap) resolveMirror(bank uint8) uint8 {
	if bank >= 0x80 && bank <= 0xBF {
		// Only the low system-area offsets mirror down; Decode uses the
		// folded bank for the system-area lookup alone and hands the
		// original (unfolded) bank to decodeLowROM/decodeHighROM, which
		// derive their own bank semantics from it.
		return bank - 0x80
	}
	return bank
}

func (m *MemoryMap) romCycles(bank uint8, fastROM bool) uint8 {
	if fastROM && bank >= 0x80 {
		return m.fastCyc
	}
	return m.slowCyc
}

// decodeLowROM implements the LowROM address translation described in
// spec §3/§4.1 and validated against the literal bus scenarios in §8:
// WRAM direct banks 0x7E/0x7F, SRAM at 0x70-0x7D mirrored at 0xF0-0xFF,
// ROM everywhere else with the 0x80-0xFF FastROM mirror folded via bank&0x7F.
func (m *MemoryMap) decodeLowROM(bank uint8, offset uint16, fastROM bool) decoded {
	if bank == 0x7E || bank == 0x7F {
		local := uint32(bank-0x7E)*0x10000 + uint32(offset)
		return decoded{target: TargetRAM, local: local, cycles: 8, mask: AccessRW}
	}
	if (bank >= 0x70 && bank <= 0x7D) && offset < 0x8000 {
		local := uint32(bank-0x70)*0x8000 + uint32(offset)
		return decoded{target: TargetSRAM, local: local, cycles: 8, mask: AccessRW}
	}
	if (bank >= 0xF0 && bank <= 0xFF) && offset < 0x8000 {
		local := uint32(bank-0xF0)*0x8000 + uint32(offset)
		return decoded{target: TargetSRAM, local: local, cycles: 8, mask: AccessRW}
	}
	romBank := bank & 0x7F
	if offset < 0x8000 {
		if romBank < 0x40 {
			// Banks 0x00-0x3F/0x80-0xBF, offset<0x8000 is system area;
			// Decode never reaches here for those banks (handled above).
			return decoded{target: TargetUnmapped, cycles: 6, mask: AccessRW}
		}
		local := uint32(romBank)*0x8000 + uint32(offset)
		return decoded{target: TargetROM, local: local, cycles: m.romCycles(bank, fastROM), mask: AccessRead}
	}
	local := uint32(romBank)*0x8000 + uint32(offset-0x8000)
	return decoded{target: TargetROM, local: local, cycles: m.romCycles(bank, fastROM), mask: AccessRead}
}

// decodeHighROM implements the HighROM translation: full-bank ROM in
// 0x40-0x7D/0xC0-0xFF (and the upper half of 0x00-0x3F/0x80-0xBF), with a
// small SRAM window at 0x20-0x3F/0xA0-0xBF offset 0x6000-0x7FFF.
func (m *MemoryMap) decodeHighROM(bank uint8, offset uint16, fastROM bool) decoded {
	if bank == 0x7E || bank == 0x7F {
		local := uint32(bank-0x7E)*0x10000 + uint32(offset)
		return decoded{target: TargetRAM, local: local, cycles: 8, mask: AccessRW}
	}
	sramBank := bank
	if sramBank >= 0xA0 {
		sramBank -= 0xA0
	} else if sramBank >= 0x20 {
		sramBank -= 0x20
	} else {
		sramBank = 0xFF // sentinel: not in SRAM range
	}
	if sramBank <= 0x1F && offset >= 0x6000 && offset < 0x8000 {
		local := uint32(sramBank)*0x2000 + uint32(offset-0x6000)
		return decoded{target: TargetSRAM, local: local, cycles: 8, mask: AccessRW}
	}
	romBank := bank & 0x3F
	local := uint32(romBank)*0x10000 + uint32(offset)
	return decoded{target: TargetROM, local: local, cycles: m.romCycles(bank, fastROM), mask: AccessRead}
}
