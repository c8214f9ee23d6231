package scheduler

import "testing"

type fakeCPU struct {
	steps int
}

func (c *fakeCPU) Step() int {
	c.steps++
	return 6
}

type fakePPU struct {
	dots int
}

func (p *fakePPU) Step(dotCount int) uint64 {
	p.dots += dotCount
	return uint64(dotCount) * 4
}

type fakeDMA struct {
	busy       bool
	unitsLeft  int
	cyclesUsed int
}

func (d *fakeDMA) Busy() bool { return d.busy }

func (d *fakeDMA) RunGPDMA() uint64 {
	if !d.busy {
		return Idle
	}
	d.unitsLeft--
	d.cyclesUsed += 8
	if d.unitsLeft <= 0 {
		d.busy = false
	}
	return 8
}

type fakeAPU struct {
	calls int
}

func (a *fakeAPU) Step(masterCycles uint64) uint64 {
	a.calls++
	return masterCycles
}

func TestScheduleMonotonicity(t *testing.T) {
	cpu := &fakeCPU{}
	ppu := &fakePPU{}
	dma := &fakeDMA{}
	apu := &fakeAPU{}
	s := New(cpu, ppu, dma, apu, nil)

	last := s.Clock
	for i := 0; i < 2000; i++ {
		s.Step()
		if s.Clock < last {
			t.Fatalf("master clock went backwards: %d -> %d", last, s.Clock)
		}
		last = s.Clock
	}
}

func TestDMABusyPausesCPU(t *testing.T) {
	cpu := &fakeCPU{}
	ppu := &fakePPU{}
	dma := &fakeDMA{busy: true, unitsLeft: 3}
	apu := &fakeAPU{}
	s := New(cpu, ppu, dma, apu, nil)

	// Force the PPU/APU tasks out of the way by placing their next-run far
	// in the future, isolating the CPU-vs-DMA interaction.
	s.tasks[kindPPU].nextRun = ^uint64(0)
	s.tasks[kindAPU].nextRun = ^uint64(0)

	for dma.busy {
		s.Step()
	}

	if cpu.steps != 0 {
		t.Fatalf("CPU stepped %d times while DMA was busy, want 0", cpu.steps)
	}
	if dma.unitsLeft != 0 {
		t.Fatalf("DMA left %d units undrained", dma.unitsLeft)
	}

	s.Step() // DMA now idle; CPU should finally get to run.
	if cpu.steps != 1 {
		t.Fatalf("CPU steps = %d after DMA drained, want 1", cpu.steps)
	}
}

func TestPPUDMAPriorityTieBreak(t *testing.T) {
	cpu := &fakeCPU{}
	ppu := &fakePPU{}
	dma := &fakeDMA{busy: true, unitsLeft: 1}
	apu := &fakeAPU{}
	s := New(cpu, ppu, dma, apu, nil)

	// Both PPU and DMA are due at clock 0; PPU must win the tie-break.
	s.tasks[kindAPU].nextRun = ^uint64(0)
	s.Step()

	if ppu.dots != 1 {
		t.Fatalf("PPU did not run first on a tie: dots = %d, want 1", ppu.dots)
	}
}

func TestAPURunsOnItsOwnInterval(t *testing.T) {
	cpu := &fakeCPU{}
	ppu := &fakePPU{}
	dma := &fakeDMA{}
	apu := &fakeAPU{}
	s := New(cpu, ppu, dma, apu, nil)

	s.tasks[kindPPU].nextRun = ^uint64(0)

	for i := 0; i < 10; i++ {
		s.Step()
	}
	if apu.calls == 0 {
		t.Fatalf("APU never ran")
	}
}
