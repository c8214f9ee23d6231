// Package console is the facade that owns and wires every component —
// cartridge, bus, CPU, PPU, DMA, APU, math unit, joypad ports, and the
// scheduler — into a runnable SNES core. Each component is held in its own
// Console field and handed to the others as a plain pointer or interface
// reference.
package console

import (
	"fmt"

	"nitro-core-dx/internal/apu"
	"nitro-core-dx/internal/bus"
	"nitro-core-dx/internal/cartridge"
	"nitro-core-dx/internal/cpu65816"
	"nitro-core-dx/internal/debug"
	"nitro-core-dx/internal/dma"
	"nitro-core-dx/internal/joypad"
	"nitro-core-dx/internal/mathunit"
	"nitro-core-dx/internal/ppu"
	"nitro-core-dx/internal/scheduler"
)

// Console is the top-level handle a frontend drives: load a ROM, attach
// renderers, feed controller state, and step frames.
type Console struct {
	Config Config

	Cartridge *cartridge.Cartridge
	Bus       *bus.Bus
	CPU       *cpu65816.CPU
	PPU       *ppu.PPU
	DMA       *dma.Engine
	APU       *apu.Bridge
	Math      *mathunit.Unit
	Joypad    *joypad.Ports
	Scheduler *scheduler.Scheduler

	irq *irqRegs

	Logger *debug.Logger

	lastFrame uint64
}

// New loads romData and wires a complete console around it (spec §6 ROM
// format, §9 ownership graph). The returned Console is reset and ready to
// run frames.
func New(romData []byte, cfg Config) (*Console, error) {
	logger := debug.NewLogger(cfg.LogBufferSize)

	cart, err := cartridge.New(romData, logger)
	if err != nil {
		return nil, fmt.Errorf("console: %w", err)
	}

	b := bus.New(cart, logger)
	p := ppu.New(logger)
	d := dma.New(b, logger)
	a := apu.New(nil, logger)
	m := mathunit.New()
	j := joypad.New()
	irq := newIRQRegs()

	b.PPU = p
	b.DMA = d
	b.APU = a
	b.Math = m
	b.Joypad = j
	b.IRQ = irq

	c := cpu65816.New(b, logger)
	c.StrictMode = cfg.StrictMode

	sched := scheduler.New(c, p, d, a, logger)

	cs := &Console{
		Config:    cfg,
		Cartridge: cart,
		Bus:       b,
		CPU:       c,
		PPU:       p,
		DMA:       d,
		APU:       a,
		Math:      m,
		Joypad:    j,
		Scheduler: sched,
		irq:       irq,
		Logger:    logger,
	}
	cs.wireInterrupts()
	return cs, nil
}

// wireInterrupts connects PPU position events to the CPU's interrupt
// lines and the $4200-block status latches, keeping the PPU package free
// of any CPU/console import (spec §9: "scheduler holds weak/indexed
// handles", the same principle applied to cross-component callbacks).
func (c *Console) wireInterrupts() {
	c.irq.onUpdate = func() {
		c.PPU.HVIRQMode = c.irq.hvIRQMode()
		c.PPU.HTarget = c.irq.htime
		c.PPU.VTarget = c.irq.vtime
	}
	c.irq.onIRQAck = func() {
		c.CPU.SetIRQLine(false)
	}

	c.PPU.OnVBlankStart = func() {
		c.irq.setVBlank(true)
		c.irq.nmiOccurred = true
		if c.irq.nmiEnabled() {
			c.CPU.TriggerNMI()
		}
		if c.irq.autoJoyEnabled() {
			c.Joypad.AutoRead()
			c.irq.setJoypadBusy(true)
			// Auto-read's window is a handful of cycles on hardware; this
			// core finishes it immediately rather than modeling the delay.
			c.Joypad.FinishAutoRead()
			c.irq.setJoypadBusy(false)
		}
	}
	c.PPU.OnScanStarted = func() {
		c.irq.setVBlank(false)
	}
	c.PPU.OnHBlankStart = func() {
		c.irq.setHBlank(true)
	}
	c.PPU.OnHBlankEnd = func() {
		c.irq.setHBlank(false)
	}
	c.PPU.OnHVIRQ = func() {
		c.irq.irqOccurred = true
		c.CPU.SetIRQLine(true)
	}
	c.PPU.OnLineStart = func(line int) {
		if line == 0 {
			c.DMA.Rearm()
		}
		c.DMA.ServiceHDMALine()
	}
}

// Reset resets the CPU (reloading PC from the reset vector) and the
// scheduler's clock and tasks. PPU, DMA, APU, math unit, joypad, WRAM and
// SRAM state are left as they are.
func (c *Console) Reset() {
	c.CPU.Reset()
	c.Scheduler.Reset()
	c.lastFrame = c.PPU.FrameCount()
}

// SetControllerState is the frontend's per-frame input hand-off (spec §6
// controller contract).
func (c *Console) SetControllerState(port int, s joypad.ButtonState) {
	c.Joypad.SetState(port, s)
}

// AttachRenderer registers a video renderer (spec §6 renderer contract).
func (c *Console) AttachRenderer(r ppu.Renderer) {
	c.PPU.AttachRenderer(r)
}

// DrainAudio hands up to maxPairs interleaved stereo sample pairs to the
// caller, matching the renderer contract's play_audio_samples.
func (c *Console) DrainAudio(maxPairs int) []int16 {
	return c.APU.DrainSamples(maxPairs)
}

// RunFrame drives the scheduler until the PPU's frame counter advances,
// i.e. exactly one visible frame (spec §8: "Frame emission").
func (c *Console) RunFrame() uint64 {
	target := c.PPU.FrameCount() + 1
	return c.Scheduler.RunFrame(func() bool {
		return c.PPU.FrameCount() >= target
	})
}

// MasterClock exposes the scheduler's cycle counter for debug/savestate use.
func (c *Console) MasterClock() uint64 { return c.Scheduler.Clock }
