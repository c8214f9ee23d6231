package joypad

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// CopyState serializes both ports' live snapshot, latch, and shift
// register plus the shared strobe/busy bits (spec §6: "joypad state").
func (p *Ports) CopyState() []byte {
	var buf bytes.Buffer
	w := func(v interface{}) { binary.Write(&buf, binary.LittleEndian, v) }

	for _, port := range []*Port{&p.P1, &p.P2} {
		w(port.Current)
		w(port.latched)
		w(port.shift)
	}
	w(p.strobe)
	w(p.Busy)

	return buf.Bytes()
}

// RestoreState reverses CopyState.
func (p *Ports) RestoreState(blob []byte) error {
	want := len(p.CopyState())
	if len(blob) != want {
		return fmt.Errorf("joypad: savestate size %d, want %d", len(blob), want)
	}

	r := bytes.NewReader(blob)
	read := func(v interface{}) { binary.Read(r, binary.LittleEndian, v) }

	for _, port := range []*Port{&p.P1, &p.P2} {
		read(&port.Current)
		read(&port.latched)
		read(&port.shift)
	}
	read(&p.strobe)
	read(&p.Busy)

	return nil
}
