// Package bus implements the 24-bit memory bus that ties the CPU, PPU,
// APU, DMA engine, math unit, and joypad ports together (spec §3, §4.1).
package bus

import (
	"fmt"

	"nitro-core-dx/internal/cartridge"
	"nitro-core-dx/internal/debug"
)

// RegisterHandler is the contract every mapped I/O device implements. addr
// is the original, unrebased 16-bit bus offset (e.g. 0x2105, 0x4016,
// 0x4300+ch*16+reg) so each component's switch reads like the hardware
// register map it emulates.
type RegisterHandler interface {
	ReadReg(addr uint16) uint8
	WriteReg(addr uint16, v uint8)
}

// MailboxHandler is the APU bridge's 4-port view (spec §4.4).
type MailboxHandler interface {
	ReadPort(port uint8) uint8
	WritePort(port uint8, v uint8)
}

// Bus owns the RAM/SRAM/ROM byte stores and routes every access to the
// decoded target component. It never owns the PPU/APU/DMA/CPU/joypad
// components themselves (spec §9 ownership graph) — those are wired in
// by the console facade as plain interface references.
type Bus struct {
	WRAM [0x20000]byte // banks 0x7E/0x7F, 128 KiB

	Cartridge *cartridge.Cartridge
	Map       *MemoryMap

	PPU     RegisterHandler
	IRQ     RegisterHandler // CPU-owned NMI/IRQ/HVBJOY register block
	Math    RegisterHandler
	Joypad  RegisterHandler
	DMA     RegisterHandler
	APU     MailboxHandler

	FastROM bool

	// indirectAddr is the $2180-$2183 WMDATA/WMADD window: a 17-bit address
	// into the WRAM array that auto-increments on access to $2180.
	indirectAddr uint32

	FaultCount uint64
	logger     *debug.Logger
}

// New wires a bus to a cartridge and the memory map matching its header.
func New(cart *cartridge.Cartridge, logger *debug.Logger) *Bus {
	b := &Bus{Cartridge: cart, logger: logger}
	if cart != nil {
		b.Map = NewMemoryMap(cart.Header.Map)
		b.FastROM = cart.Header.FastROM
	} else {
		b.Map = NewMemoryMap(cartridge.MapLowROM)
	}
	return b
}

func (b *Bus) fault(bank uint8, offset uint16, write bool, reason string) {
	b.FaultCount++
	if b.logger != nil {
		dir := "read"
		if write {
			dir = "write"
		}
		b.logger.LogMemory(debug.LogLevelWarning, fmt.Sprintf(
			"bus fault: %s %02X:%04X (%s)", dir, bank, offset, reason), nil)
	}
}

// ReadU8 reads one byte, charging the target's access cycles into
// outCycles (spec §4.1's read_u8(addr, &out_cycles) -> u8 contract).
func (b *Bus) ReadU8(bank uint8, offset uint16, outCycles *int) uint8 {
	d := b.Map.Decode(bank, offset, b.FastROM)
	*outCycles += int(d.cycles)

	if d.mask&AccessRead == 0 {
		b.fault(bank, offset, false, "read not permitted")
		return 0
	}

	switch d.target {
	case TargetRAM:
		return b.WRAM[d.local%uint32(len(b.WRAM))]
	case TargetIndirectRAM:
		return b.readIndirectRAM(offset)
	case TargetSRAM:
		if b.Cartridge == nil {
			return 0
		}
		return b.Cartridge.ReadSRAM(int(d.local))
	case TargetROM:
		if b.Cartridge == nil {
			return 0
		}
		return b.Cartridge.ReadROM(int(d.local))
	case TargetPPU:
		if b.PPU == nil {
			return 0
		}
		return b.PPU.ReadReg(offset)
	case TargetAPU:
		if b.APU == nil {
			return 0
		}
		return b.APU.ReadPort(apuPort(offset))
	case TargetDMA:
		if b.DMA == nil {
			return 0
		}
		return b.DMA.ReadReg(offset)
	case TargetIRQ:
		if b.IRQ == nil {
			return 0
		}
		return b.IRQ.ReadReg(offset)
	case TargetMath:
		if b.Math == nil {
			return 0
		}
		return b.Math.ReadReg(offset)
	case TargetJoypad:
		if b.Joypad == nil {
			return 0
		}
		return b.Joypad.ReadReg(offset)
	case TargetBusSelf:
		return b.readSelf(offset)
	default:
		b.fault(bank, offset, false, "unmapped address")
		return 0
	}
}

// WriteU8 mirrors ReadU8 for writes.
func (b *Bus) WriteU8(bank uint8, offset uint16, v uint8, outCycles *int) {
	d := b.Map.Decode(bank, offset, b.FastROM)
	*outCycles += int(d.cycles)

	if d.mask&AccessWrite == 0 {
		b.fault(bank, offset, true, "write not permitted")
		return
	}

	switch d.target {
	case TargetRAM:
		b.WRAM[d.local%uint32(len(b.WRAM))] = v
	case TargetIndirectRAM:
		b.writeIndirectRAM(offset, v)
	case TargetSRAM:
		if b.Cartridge != nil {
			b.Cartridge.WriteSRAM(int(d.local), v)
		}
	case TargetROM:
		// ROM is read-only; writes are silently discarded per cartridge
		// hardware behavior, not a fault.
	case TargetPPU:
		if b.PPU != nil {
			b.PPU.WriteReg(offset, v)
		}
	case TargetAPU:
		if b.APU != nil {
			b.APU.WritePort(apuPort(offset), v)
		}
	case TargetDMA:
		if b.DMA != nil {
			b.DMA.WriteReg(offset, v)
		}
	case TargetIRQ:
		if b.IRQ != nil {
			b.IRQ.WriteReg(offset, v)
		}
	case TargetMath:
		if b.Math != nil {
			b.Math.WriteReg(offset, v)
		}
	case TargetJoypad:
		if b.Joypad != nil {
			b.Joypad.WriteReg(offset, v)
		}
	case TargetBusSelf:
		b.writeSelf(offset, v)
	default:
		b.fault(bank, offset, true, "unmapped address")
	}
}

// ReadU16/WriteU16/ReadU24 fan out to sequential byte accesses, per spec
// §4.1 ("Multi-byte accesses fan out to sequential read_u8/write_u8 calls
// at addr, addr+1[, addr+2] — cycle count accumulates per byte").
func (b *Bus) ReadU16(bank uint8, offset uint16, outCycles *int) uint16 {
	lo := b.ReadU8(bank, offset, outCycles)
	hi := b.ReadU8(bank, offset+1, outCycles)
	return uint16(lo) | uint16(hi)<<8
}

func (b *Bus) WriteU16(bank uint8, offset uint16, v uint16, outCycles *int) {
	b.WriteU8(bank, offset, uint8(v), outCycles)
	b.WriteU8(bank, offset+1, uint8(v>>8), outCycles)
}

func (b *Bus) ReadU24(bank uint8, offset uint16, outCycles *int) uint32 {
	lo := uint32(b.ReadU8(bank, offset, outCycles))
	mid := uint32(b.ReadU8(bank, offset+1, outCycles))
	hi := uint32(b.ReadU8(bank, offset+2, outCycles))
	return lo | mid<<8 | hi<<16
}

// readIndirectRAM/writeIndirectRAM implement $2180 (WMDATA) with
// $2181-$2183 (WMADDL/M/H) forming the 17-bit auto-incrementing pointer.
func (b *Bus) readIndirectRAM(offset uint16) uint8 {
	if offset != 0x2180 {
		return 0
	}
	v := b.WRAM[b.indirectAddr%uint32(len(b.WRAM))]
	b.indirectAddr = (b.indirectAddr + 1) & 0x1FFFF
	return v
}

func (b *Bus) writeIndirectRAM(offset uint16, v uint8) {
	switch offset {
	case 0x2180:
		b.WRAM[b.indirectAddr%uint32(len(b.WRAM))] = v
		b.indirectAddr = (b.indirectAddr + 1) & 0x1FFFF
	case 0x2181:
		b.indirectAddr = (b.indirectAddr &^ 0xFF) | uint32(v)
	case 0x2182:
		b.indirectAddr = (b.indirectAddr &^ 0xFF00) | uint32(v)<<8
	case 0x2183:
		b.indirectAddr = (b.indirectAddr &^ 0x10000) | (uint32(v)&1)<<16
	}
}

func apuPort(offset uint16) uint8 {
	return uint8((offset - 0x2140) & 0x3)
}

// readSelf/writeSelf handle $420D, the ROM-speed select register that the
// bus itself owns (spec §4.1: "The bus-self target handles $420D").
func (b *Bus) readSelf(offset uint16) uint8 {
	if offset == 0x420D {
		if b.FastROM {
			return 1
		}
		return 0
	}
	return 0
}

func (b *Bus) writeSelf(offset uint16, v uint8) {
	if offset == 0x420D {
		b.FastROM = v&1 != 0
	}
}
