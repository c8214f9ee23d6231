package ppu

import "testing"

func TestVRAMIncrementSteps(t *testing.T) {
	cases := []struct {
		vmain uint8
		step  uint16
	}{
		{0x00, 1},
		{0x01, 32},
		{0x02, 128},
		{0x03, 256},
	}

	for _, tc := range cases {
		p := New(nil)
		// Increment-on-high-byte-write keeps the low/high write pair
		// atomic: the address only advances once both bytes of a word
		// are in, regardless of step size.
		p.WriteReg(RegVMAIN, tc.vmain|0x80)
		p.WriteReg(RegVMADDL, 0x00)
		p.WriteReg(RegVMADDH, 0x00)

		const n = 4
		var addrs []uint16
		for i := 0; i < n; i++ {
			addrs = append(addrs, p.vmAddr)
			p.WriteReg(RegVMDATAL, uint8(i))
			p.WriteReg(RegVMDATAH, uint8(i))
		}

		for i, got := range addrs {
			want := (uint16(i) * tc.step) % 0x8000
			if got != want {
				t.Errorf("step=%d write %d: addr=%#x want %#x", tc.step, i, got, want)
			}
		}
	}
}

func TestFramePixelCount(t *testing.T) {
	p := New(nil)
	p.ForcedBlank = false

	var started, ended, pixels int
	p.OnScanStarted = func() { started++ }
	p.OnScanEnded = func() { ended++ }
	p.Renderers = append(p.Renderers, drawCounter{&pixels})

	dotsPerFrame := dotsPerLine * linesPerFrame
	p.Step(dotsPerFrame)

	if started != 1 {
		t.Errorf("scan_started fired %d times, want 1", started)
	}
	if ended != 1 {
		t.Errorf("scan_ended fired %d times, want 1", ended)
	}
	if want := DisplayWidth * DisplayHeight; pixels != want {
		t.Errorf("draw_pixel called %d times, want %d", pixels, want)
	}
}

type drawCounter struct{ n *int }

func (drawCounter) ScanStarted()           {}
func (d drawCounter) DrawPixel(_, _, _ uint8) { *d.n++ }
func (drawCounter) ScanEnded()              {}
