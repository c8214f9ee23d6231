package apu

import (
	"encoding/binary"
	"fmt"

	"nitro-core-dx/internal/debug"
)

// newOPMCore builds the default SPC700Core: the OPM-lite FM engine plus its
// wavetable auxiliary channels, addressed through the same 4-port mailbox
// the CPU sees at $2140-$2143 (spec §4.4's opaque sound core).
func newOPMCore(logger *debug.Logger) *FMOPM {
	return NewFMOPM(logger)
}

func (f *FMOPM) tickTo(elapsed uint64) {
	if elapsed <= f.lastElapsed {
		return
	}
	f.Step(elapsed - f.lastElapsed)
	f.lastElapsed = elapsed
}

// Reset implements apu.SPC700Core.
func (f *FMOPM) Reset() {
	f.reset()
	f.lastElapsed = 0
	f.sampleCarry = 0
}

// ReadPort implements apu.SPC700Core: ports 0-3 map onto the host-visible
// Addr/Data/Status/Control registers.
func (f *FMOPM) ReadPort(elapsed uint64, port int) uint8 {
	f.tickTo(elapsed)
	return f.Read8(uint16(port))
}

// WritePort implements apu.SPC700Core.
func (f *FMOPM) WritePort(elapsed uint64, port int, value uint8) {
	f.tickTo(elapsed)
	f.Write8(uint16(port), value)
}

// EndFrame implements apu.SPC700Core: it accounts the elapsed master cycles
// into the 32 kHz output cadence and returns the interleaved stereo samples
// produced since the last call.
func (f *FMOPM) EndFrame(elapsed uint64) []int16 {
	f.tickTo(elapsed)

	delta := elapsed
	if delta < f.lastEndFrame {
		delta = 0
	} else {
		delta -= f.lastEndFrame
	}
	f.lastEndFrame = elapsed

	if f.cyclesPerSample == 0 {
		return nil
	}

	f.sampleCarry += delta << 16
	var out []int16
	for f.sampleCarry >= f.cyclesPerSample {
		f.sampleCarry -= f.cyclesPerSample
		mono := int32(f.GenerateSampleFixed()) + int32(f.generateSimpleSample())
		if mono > 32767 {
			mono = 32767
		} else if mono < -32768 {
			mono = -32768
		}
		s := int16(mono)
		out = append(out, s, s) // mono fold to stereo; no independent L/R path modeled
		f.tickSimpleDurations()
	}
	return out
}

// CopyState implements apu.SPC700Core, serializing the host registers, the
// OPM register shadow, each voice's parameters and each wavetable channel's
// settings little-endian per the savestate's length-prefixed APU blob (spec
// §5). Phase accumulators, envelopes, timer counters and the busy countdown
// are not saved.
func (f *FMOPM) CopyState() []byte {
	buf := make([]byte, 0, 512)
	buf = append(buf, f.Addr, f.Status, f.Control, f.MixL, f.MixR)
	buf = append(buf, f.Regs[:]...)
	for _, v := range f.Voices {
		var b [16]byte
		b[0] = boolByte(v.KeyOn)
		b[1] = boolByte(v.PanL)
		b[2] = boolByte(v.PanR)
		b[3] = v.Algorithm
		b[4] = v.Feedback
		b[5] = v.PMS
		b[6] = v.AMS
		b[7] = v.KeyCode
		b[8] = v.KeyFrac
		b[9] = v.ModMul
		b[10] = v.CarrierMul
		b[11] = v.ModTL
		b[12] = v.CarrierTL
		buf = append(buf, b[:]...)
	}
	for _, c := range f.SimpleChannels {
		var b [16]byte
		binary.LittleEndian.PutUint16(b[0:], c.Frequency)
		b[2] = c.Volume
		b[3] = boolByte(c.Enabled)
		b[4] = c.Waveform
		binary.LittleEndian.PutUint16(b[5:], c.Duration)
		b[7] = c.DurationMode
		buf = append(buf, b[:]...)
	}
	return buf
}

// RestoreState implements apu.SPC700Core, the inverse of CopyState.
func (f *FMOPM) RestoreState(blob []byte) error {
	const headerLen = 5 + 256
	need := headerLen + len(f.Voices)*16 + len(f.SimpleChannels)*16
	if len(blob) < need {
		return fmt.Errorf("apu: savestate blob too short: got %d bytes, want %d", len(blob), need)
	}
	f.Addr, f.Status, f.Control, f.MixL, f.MixR = blob[0], blob[1], blob[2], blob[3], blob[4]
	copy(f.Regs[:], blob[5:5+256])

	off := headerLen
	for i := range f.Voices {
		b := blob[off : off+16]
		v := &f.Voices[i]
		v.KeyOn = b[0] != 0
		v.PanL = b[1] != 0
		v.PanR = b[2] != 0
		v.Algorithm = b[3]
		v.Feedback = b[4]
		v.PMS = b[5]
		v.AMS = b[6]
		v.KeyCode = b[7]
		v.KeyFrac = b[8]
		v.ModMul = b[9]
		v.CarrierMul = b[10]
		v.ModTL = b[11]
		v.CarrierTL = b[12]
		f.recomputeVoiceIncrements(i)
		off += 16
	}
	for i := range f.SimpleChannels {
		b := blob[off : off+16]
		c := &f.SimpleChannels[i]
		c.Frequency = binary.LittleEndian.Uint16(b[0:])
		c.Volume = b[2]
		c.Enabled = b[3] != 0
		c.Waveform = b[4]
		c.Duration = binary.LittleEndian.Uint16(b[5:])
		c.DurationMode = b[7]
		f.recomputeSimpleIncrement(c)
		off += 16
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
