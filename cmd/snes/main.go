// Command snes is the minimal SDL2 frontend that realizes spec §6's
// Renderer and Controller contracts end-to-end against internal/console:
// it blits the PPU's framebuffer once per frame, queues the APU bridge's
// PCM output through an SDL audio device, and polls the keyboard onto the
// 12 controller lines. It plays the same role the teacher's cmd/emulator
// plays for its own bus, minus the Fyne debugger chrome this spec has no
// use for.
package main

import (
	"flag"
	"fmt"
	"os"
	"unsafe"

	"github.com/veandco/go-sdl2/sdl"

	"nitro-core-dx/internal/console"
	"nitro-core-dx/internal/ppu"
)

func main() {
	romPath := flag.String("rom", "", "Path to ROM file")
	scale := flag.Int("scale", 3, "Display scale (1-6)")
	strict := flag.Bool("strict", false, "Panic instead of logging on unimplemented/unsupported paths")
	logBuf := flag.Int("log-buffer", 10000, "Debug logger circular buffer size")
	flag.Parse()

	if *romPath == "" {
		fmt.Println("Usage: snes -rom <path-to-rom>")
		fmt.Println("  -rom <path>      Path to ROM file")
		fmt.Println("  -scale <1-6>     Display scale (default: 3)")
		fmt.Println("  -strict          Panic on unimplemented/unsupported paths")
		os.Exit(1)
	}
	if *scale < 1 || *scale > 6 {
		fmt.Fprintln(os.Stderr, "Error: scale must be between 1 and 6")
		os.Exit(1)
	}

	romData, err := os.ReadFile(*romPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error reading ROM file: %v\n", err)
		os.Exit(1)
	}

	cfg := console.DefaultConfig()
	cfg.StrictMode = *strict
	cfg.LogBufferSize = *logBuf

	snes, err := console.New(romData, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading ROM: %v\n", err)
		os.Exit(1)
	}

	fb := newFrameBuffer()
	snes.AttachRenderer(fb)

	if err := runWindow(snes, fb, *scale); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runWindow(snes *console.Console, fb *frameBuffer, scale int) error {
	if err := sdl.Init(sdl.INIT_VIDEO | sdl.INIT_AUDIO); err != nil {
		return fmt.Errorf("sdl init: %w", err)
	}
	defer sdl.Quit()

	sdl.SetHint(sdl.HINT_RENDER_SCALE_QUALITY, "0")

	width := int32(ppu.DisplayWidth * scale)
	height := int32(ppu.DisplayHeight * scale)

	window, err := sdl.CreateWindow("snes", sdl.WINDOWPOS_CENTERED, sdl.WINDOWPOS_CENTERED,
		width, height, sdl.WINDOW_SHOWN)
	if err != nil {
		return fmt.Errorf("create window: %w", err)
	}
	defer window.Destroy()

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED|sdl.RENDERER_PRESENTVSYNC)
	if err != nil {
		return fmt.Errorf("create renderer: %w", err)
	}
	defer renderer.Destroy()

	// RGB24 is the tightly packed 3-bytes-per-pixel format; RGB888 is a
	// 32-bit format with a padding byte despite the name, a mismatch that
	// isn't worth re-deriving per frame.
	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_RGB24, sdl.TEXTUREACCESS_STREAMING,
		int32(ppu.DisplayWidth), int32(ppu.DisplayHeight))
	if err != nil {
		return fmt.Errorf("create texture: %w", err)
	}
	defer texture.Destroy()

	audioSpec := sdl.AudioSpec{Freq: 32000, Format: sdl.AUDIO_S16SYS, Channels: 2, Samples: 1024}
	audioDev, err := sdl.OpenAudioDevice("", false, &audioSpec, nil, 0)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: no audio device: %v\n", err)
	} else {
		defer sdl.CloseAudioDevice(audioDev)
		sdl.PauseAudioDevice(audioDev, false)
	}

	running := true
	screenshotSeq := 0
	for running {
		for event := sdl.PollEvent(); event != nil; event = sdl.PollEvent() {
			switch e := event.(type) {
			case *sdl.QuitEvent:
				running = false
			case *sdl.KeyboardEvent:
				if e.Type != sdl.KEYDOWN {
					continue
				}
				switch e.Keysym.Sym {
				case sdl.K_ESCAPE:
					running = false
				case sdl.K_r:
					if sdl.GetModState()&sdl.KMOD_CTRL != 0 {
						snes.Reset()
					}
				case sdl.K_F2:
					screenshotSeq++
					path := fmt.Sprintf("screenshot-%03d.png", screenshotSeq)
					if err := saveScreenshot(path, fb, scale); err != nil {
						fmt.Fprintf(os.Stderr, "screenshot failed: %v\n", err)
					} else {
						fmt.Printf("wrote %s\n", path)
					}
				}
			}
		}

		snes.SetControllerState(0, pollControllerState())
		snes.RunFrame()

		if fb.ready {
			if err := texture.Update(nil, unsafe.Pointer(&fb.pix[0]), ppu.DisplayWidth*3); err != nil {
				return fmt.Errorf("update texture: %w", err)
			}
		}

		renderer.Clear()
		if err := renderer.Copy(texture, nil, nil); err != nil {
			return fmt.Errorf("copy texture: %w", err)
		}
		renderer.Present()

		if audioDev != 0 {
			queueAudio(audioDev, snes)
		}

		sdl.Delay(1)
	}

	return nil
}

// queueAudio drains the APU bridge's interleaved stereo samples and hands
// them to SDL as raw little-endian S16 bytes, keeping at most a couple of
// frames queued so audio doesn't drift ahead of video.
func queueAudio(dev sdl.AudioDeviceID, snes *console.Console) {
	const maxQueuedBytes = 32000 * 2 * 2 / 30 // roughly 2 frames at 60fps, 16-bit stereo

	if sdl.GetQueuedAudioSize(dev) >= maxQueuedBytes {
		return
	}

	samples := snes.DrainAudio(2048)
	if len(samples) == 0 {
		return
	}

	buf := make([]byte, len(samples)*2)
	for i, s := range samples {
		buf[i*2] = byte(s)
		buf[i*2+1] = byte(s >> 8)
	}
	if err := sdl.QueueAudio(dev, buf); err != nil {
		fmt.Fprintf(os.Stderr, "queue audio: %v\n", err)
	}
}
