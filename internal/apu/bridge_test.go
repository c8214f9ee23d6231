package apu

import "testing"

func TestBridgeDrainSamplesRespectsLimit(t *testing.T) {
	b := New(nil, nil)
	for i := 0; i < 10; i++ {
		b.push(int16(i))
	}

	got := b.DrainSamples(3) // 3 pairs = 6 samples
	if len(got) != 6 {
		t.Fatalf("len(got) = %d, want 6", len(got))
	}
	for i, v := range got {
		if v != int16(i) {
			t.Errorf("sample %d = %d, want %d", i, v, i)
		}
	}

	rest := b.DrainSamples(100)
	if len(rest) != 4 {
		t.Fatalf("len(rest) = %d, want 4", len(rest))
	}
}

func TestBridgeRingDropsOldestOnOverflow(t *testing.T) {
	b := New(nil, nil)
	for i := 0; i < ringCapacity+5; i++ {
		b.push(int16(i))
	}

	if got := b.DroppedSamples(); got != 5 {
		t.Fatalf("DroppedSamples() = %d, want 5", got)
	}

	first := b.DrainSamples(1)
	if len(first) != 2 {
		t.Fatalf("len(first) = %d, want 2", len(first))
	}
	if first[0] != 5 {
		t.Fatalf("oldest surviving sample = %d, want 5", first[0])
	}
}

func TestBridgeSavestateRoundTrip(t *testing.T) {
	b := New(nil, nil)
	b.WriteReg(0x2140, 0x10)
	b.WriteReg(0x2141, 0x7F)
	b.WriteReg(0x2143, 0x01)

	blob := b.CopyState()

	fresh := New(nil, nil)
	if err := fresh.RestoreState(blob); err != nil {
		t.Fatalf("RestoreState failed: %v", err)
	}

	if got := fresh.ReadReg(0x2140); got != 0x10 {
		t.Errorf("restored FMRegAddr = 0x%02X, want 0x10", got)
	}
	if got := fresh.ReadReg(0x2143); got != 0x01 {
		t.Errorf("restored FMRegControl = 0x%02X, want 0x01", got)
	}
}

func TestPortIndexBounds(t *testing.T) {
	cases := []struct {
		addr uint16
		want int
	}{
		{0x2140, 0}, {0x2141, 1}, {0x2142, 2}, {0x2143, 3},
		{0x213F, -1}, {0x2144, -1},
	}
	for _, tc := range cases {
		if got := portIndex(tc.addr); got != tc.want {
			t.Errorf("portIndex(0x%04X) = %d, want %d", tc.addr, got, tc.want)
		}
	}
}
