package main

import (
	"github.com/veandco/go-sdl2/sdl"

	"nitro-core-dx/internal/joypad"
)

// pollControllerState reads the live SDL keyboard state and packs it into
// the 12-button snapshot the console's controller ports contract expects
// (spec §6), mirroring the teacher's arrow-keys-plus-WASD/ZX layout.
func pollControllerState() joypad.ButtonState {
	keys := sdl.GetKeyboardState()

	return joypad.ButtonState{
		Up:     keys[sdl.SCANCODE_UP] != 0,
		Down:   keys[sdl.SCANCODE_DOWN] != 0,
		Left:   keys[sdl.SCANCODE_LEFT] != 0,
		Right:  keys[sdl.SCANCODE_RIGHT] != 0,
		A:      keys[sdl.SCANCODE_X] != 0,
		B:      keys[sdl.SCANCODE_Z] != 0 || keys[sdl.SCANCODE_W] != 0,
		X:      keys[sdl.SCANCODE_S] != 0,
		Y:      keys[sdl.SCANCODE_A] != 0,
		L:      keys[sdl.SCANCODE_Q] != 0,
		R:      keys[sdl.SCANCODE_E] != 0,
		Start:  keys[sdl.SCANCODE_RETURN] != 0,
		Select: keys[sdl.SCANCODE_RSHIFT] != 0 || keys[sdl.SCANCODE_LSHIFT] != 0,
	}
}
