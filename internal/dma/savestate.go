package dma

import (
	"bytes"
	"encoding/binary"
	"fmt"
)

// CopyState serializes the 8-channel register file plus the MDMAEN/HDMAEN
// activation masks (spec §6: "DMA channel register file + active mask").
func (e *Engine) CopyState() []byte {
	var buf bytes.Buffer
	w := func(v interface{}) { binary.Write(&buf, binary.LittleEndian, v) }

	for _, c := range e.Channels {
		w(c.DMAP)
		w(c.BBAD)
		w(c.A1T)
		w(c.DAS)
		w(c.DASB)
		w(c.A2A)
		w(c.NTRL)
		w(c.hdmaActive)
		w(c.hdmaDone)
	}
	w(e.activeGP)
	w(e.armedHD)

	return buf.Bytes()
}

// RestoreState reverses CopyState.
func (e *Engine) RestoreState(blob []byte) error {
	want := len(e.CopyState())
	if len(blob) != want {
		return fmt.Errorf("dma: savestate size %d, want %d", len(blob), want)
	}

	r := bytes.NewReader(blob)
	read := func(v interface{}) { binary.Read(r, binary.LittleEndian, v) }

	for i := range e.Channels {
		c := &e.Channels[i]
		read(&c.DMAP)
		read(&c.BBAD)
		read(&c.A1T)
		read(&c.DAS)
		read(&c.DASB)
		read(&c.A2A)
		read(&c.NTRL)
		read(&c.hdmaActive)
		read(&c.hdmaDone)
	}
	read(&e.activeGP)
	read(&e.armedHD)

	return nil
}
