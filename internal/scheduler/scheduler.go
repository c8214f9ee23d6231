// Package scheduler implements the cooperative, single-threaded dispatcher
// that interleaves the CPU, PPU, DMA, and APU off one shared master-clock
// counter (spec §4.8).
package scheduler

import "nitro-core-dx/internal/debug"

// Idle is the sentinel a task's run step returns to deschedule itself until
// re-armed (spec §4.8 "Cancellation: a task returning the idle sentinel
// removes itself from the schedule until re-armed by a register write").
const Idle uint64 = ^uint64(0)

// Master clock rate and target audio sample rate, used to derive how often
// the APU task is due (spec §6's SnesConfig: audioSampleRate=32000).
const (
	MasterClockHz = 21477272
	SampleRateHz  = 32000
)

// CPU is the component the scheduler dispatches when no task is due.
type CPU interface {
	Step() int
}

// PPUTask steps the PPU by one dot at a time (spec §5: "the PPU yields
// per-dot").
type PPUTask interface {
	Step(dotCount int) uint64
}

// DMATask is consulted every scheduler step: an active GP-DMA transfer
// pauses CPU dispatch until it fully drains (spec §4.8, §5).
type DMATask interface {
	Busy() bool
	RunGPDMA() uint64
}

// APUTask advances the sound bridge by a span of master cycles.
type APUTask interface {
	Step(masterCycles uint64) uint64
}

type kind int

const (
	kindPPU kind = iota
	kindDMA
	kindAPU
)

// task tracks one schedulable unit's next-run cycle and whether it is
// currently armed. Priority among simultaneously-due tasks is fixed by
// declaration order: PPU > DMA > APU (spec §4.8 tie-break).
type task struct {
	kind    kind
	active  bool
	nextRun uint64
	run     func() uint64
}

// Scheduler owns the master clock and the fixed priority list of tasks.
type Scheduler struct {
	Clock uint64

	tasks [3]task // index matches kind: PPU, DMA, APU

	cpu       CPU
	dmaEngine DMATask

	apuInterval uint64

	logger *debug.Logger
}

// New wires a scheduler to its four collaborators. The PPU and APU tasks
// start armed; the DMA task arms itself whenever dmaEngine reports Busy.
func New(cpu CPU, ppu PPUTask, dmaEngine DMATask, apu APUTask, logger *debug.Logger) *Scheduler {
	s := &Scheduler{
		cpu:         cpu,
		dmaEngine:   dmaEngine,
		apuInterval: MasterClockHz / SampleRateHz,
		logger:      logger,
	}
	s.tasks[kindPPU] = task{kind: kindPPU, active: true, run: func() uint64 { return ppu.Step(1) }}
	s.tasks[kindDMA] = task{kind: kindDMA, active: false, run: func() uint64 { return dmaEngine.RunGPDMA() }}
	s.tasks[kindAPU] = task{kind: kindAPU, active: true, run: func() uint64 { return apu.Step(s.apuInterval) }}
	return s
}

// Reset zeroes the master clock, re-arms the PPU and APU tasks, and
// disarms the DMA task until rearmDMA sees the engine report Busy.
func (s *Scheduler) Reset() {
	s.Clock = 0
	s.tasks[kindPPU].active = true
	s.tasks[kindPPU].nextRun = 0
	s.tasks[kindDMA].active = false
	s.tasks[kindDMA].nextRun = 0
	s.tasks[kindAPU].active = true
	s.tasks[kindAPU].nextRun = 0
}

// Step advances the scheduler by exactly one outer dispatch and returns the
// number of master cycles consumed (spec §8: "Schedule monotonicity. The
// master clock is non-decreasing across scheduler steps.").
func (s *Scheduler) Step() uint64 {
	s.rearmDMA()

	t := s.dueTask()
	if t == nil {
		cycles := uint64(s.cpu.Step())
		s.Clock += cycles
		return cycles
	}

	if t.nextRun > s.Clock {
		s.Clock = t.nextRun
	}
	consumed := t.run()
	if consumed == Idle {
		t.active = false
		return 0
	}
	t.nextRun = s.Clock + consumed
	s.Clock += consumed
	if s.logger != nil {
		s.logger.LogScheduler(debug.LogLevelTrace, "task ran", map[string]interface{}{
			"kind": int(t.kind), "cycles": consumed, "clock": s.Clock,
		})
	}
	return consumed
}

// rearmDMA arms or disarms the DMA task based on the engine's own busy
// flag; a DMA register write (MDMAEN) is what actually sets Busy, so this
// is the re-arm spec §4.8 describes for the DMA task specifically.
func (s *Scheduler) rearmDMA() {
	d := &s.tasks[kindDMA]
	if s.dmaEngine.Busy() {
		d.active = true
		if d.nextRun < s.Clock {
			d.nextRun = s.Clock
		}
	} else {
		d.active = false
	}
}

// dueTask returns the highest-priority active task whose next-run cycle has
// already arrived, or nil if none is due (in which case the CPU runs).
func (s *Scheduler) dueTask() *task {
	for i := range s.tasks {
		t := &s.tasks[i]
		if t.active && t.nextRun <= s.Clock {
			return t
		}
	}
	return nil
}

// RunFrame drives the scheduler until frameDone reports true, used by the
// console facade to implement one host frame (spec §6 renderer contract:
// one scan_started/scan_ended pair per visible frame). frameDone is polled
// before the first step and after every step; the console passes a
// closure that reports the PPU's frame counter advancing.
func (s *Scheduler) RunFrame(frameDone func() bool) uint64 {
	var total uint64
	for !frameDone() {
		total += s.Step()
	}
	return total
}
