package main

import "nitro-core-dx/internal/ppu"

// frameBuffer implements ppu.Renderer, accumulating one frame's worth of
// RGB pixels in scanline-major order and flagging when a frame is ready
// to present. The PPU calls ScanStarted once at the top of the frame and
// ScanEnded once all 224 visible lines have retired (spec §6 renderer
// contract: "play_video_frame" analog).
type frameBuffer struct {
	pix   []byte // DisplayWidth*DisplayHeight*3, RGB888
	idx   int
	ready bool
}

var _ ppu.Renderer = (*frameBuffer)(nil)

func newFrameBuffer() *frameBuffer {
	return &frameBuffer{pix: make([]byte, ppu.DisplayWidth*ppu.DisplayHeight*3)}
}

func (f *frameBuffer) ScanStarted() {
	f.idx = 0
	f.ready = false
}

func (f *frameBuffer) DrawPixel(r, g, b uint8) {
	if f.idx+3 > len(f.pix) {
		return
	}
	f.pix[f.idx] = r
	f.pix[f.idx+1] = g
	f.pix[f.idx+2] = b
	f.idx += 3
}

func (f *frameBuffer) ScanEnded() {
	f.ready = true
}
