// Package apu bridges the CPU to the APU's sound-chip core across a 4-port
// mailbox ($2140-$2143). The sound-chip core itself is an opaque
// collaborator behind the SPC700Core interface; only the mailbox handshake
// and sample-ring plumbing are specified (spec §4.4).
package apu

import "nitro-core-dx/internal/debug"

// SPC700Core is the external sound-chip engine's contract. The bridge never
// inspects its internal state directly, only through these calls.
type SPC700Core interface {
	Reset()
	ReadPort(elapsedCycles uint64, port int) uint8
	WritePort(elapsedCycles uint64, port int, value uint8)
	EndFrame(elapsedCycles uint64) []int16 // interleaved stereo, 16-bit signed
	CopyState() []byte
	RestoreState([]byte) error
}

const ringCapacity = 1 << 16 // power of two, individual int16 samples (half as many stereo pairs)

// Bridge implements bus.MailboxHandler for the $2140-$2143 APU ports and
// owns the opaque sound core plus a fixed-capacity PCM output ring.
type Bridge struct {
	core SPC700Core

	cpuToAPU [4]uint8 // CPU-side mailbox view (what the CPU last wrote)
	apuToCPU [4]uint8 // APU-side mailbox view (what reads return)

	ring      [ringCapacity]int16
	ringHead  int
	ringTail  int
	ringCount int
	dropped   uint64

	elapsed uint64

	logger *debug.Logger
}

// New wires the bridge to a sound core. Pass nil for core to use the
// built-in OPM-lite engine (fm_opm.go).
func New(core SPC700Core, logger *debug.Logger) *Bridge {
	if core == nil {
		core = newOPMCore(logger)
	}
	b := &Bridge{core: core, logger: logger}
	b.core.Reset()
	return b
}

// ReadReg implements bus.RegisterHandler for $2140-$2143: reads return the
// APU-side mailbox byte, refreshed from the core first (spec §4.4: "Reads
// return the APU-side byte").
func (b *Bridge) ReadReg(addr uint16) uint8 {
	port := portIndex(addr)
	if port < 0 {
		return 0
	}
	b.apuToCPU[port] = b.core.ReadPort(b.elapsed, port)
	return b.apuToCPU[port]
}

// WriteReg implements bus.RegisterHandler: writes store to the CPU-side
// mailbox and are forwarded to the core immediately (spec §4.4: "writes
// store to the CPU-side").
func (b *Bridge) WriteReg(addr uint16, v uint8) {
	port := portIndex(addr)
	if port < 0 {
		return
	}
	b.cpuToAPU[port] = v
	b.core.WritePort(b.elapsed, port, v)
	if b.logger != nil {
		b.logger.LogAPUf(debug.LogLevelDebug, "port %d <- 0x%02X", port, v)
	}
}

func portIndex(addr uint16) int {
	if addr < 0x2140 || addr > 0x2143 {
		return -1
	}
	return int(addr - 0x2140)
}

// ReadPort/WritePort adapt the bridge to bus.MailboxHandler's port-indexed
// view, used by components (like the bus) that don't carry the raw $21xx
// register address.
func (b *Bridge) ReadPort(port uint8) uint8  { return b.ReadReg(0x2140 + uint16(port)) }
func (b *Bridge) WritePort(port uint8, v uint8) { b.WriteReg(0x2140+uint16(port), v) }

// Step advances the bridge by masterCycles, called by the scheduler's APU
// task (spec §4.8). It draws finished samples from the core into the ring,
// dropping the oldest on overflow per spec's back-pressure rule (§5 note 6).
func (b *Bridge) Step(masterCycles uint64) uint64 {
	b.elapsed += masterCycles
	samples := b.core.EndFrame(b.elapsed)
	for _, s := range samples {
		b.push(s)
	}
	return masterCycles
}

func (b *Bridge) push(s int16) {
	if b.ringCount == ringCapacity {
		b.ringTail = (b.ringTail + 1) % ringCapacity
		b.ringCount--
		b.dropped++
	}
	b.ring[b.ringHead] = s
	b.ringHead = (b.ringHead + 1) % ringCapacity
	b.ringCount++
}

// DrainSamples hands the renderer up to maxPairs interleaved stereo sample
// pairs and removes them from the ring, matching the renderer contract's
// play_audio_samples (spec §6).
func (b *Bridge) DrainSamples(maxPairs int) []int16 {
	maxSamples := maxPairs * 2
	n := b.ringCount
	if n > maxSamples {
		n = maxSamples
	}
	out := make([]int16, n)
	for i := 0; i < n; i++ {
		out[i] = b.ring[b.ringTail]
		b.ringTail = (b.ringTail + 1) % ringCapacity
		b.ringCount--
	}
	return out
}

// DroppedSamples reports the cumulative count of overflow-discarded samples.
func (b *Bridge) DroppedSamples() uint64 { return b.dropped }

// CopyState/RestoreState serialize the opaque core's blob, for the
// savestate's length-prefixed APU section (spec §5). The bridge's own
// mailbox views and sample ring are not part of the blob.
func (b *Bridge) CopyState() []byte {
	return b.core.CopyState()
}

func (b *Bridge) RestoreState(blob []byte) error {
	return b.core.RestoreState(blob)
}
