package hal

import (
	"github.com/go-emu/chip8vm/internal/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

// defaultKeymap is the teacher's physical-to-logical keypad layout:
//
//	Physical                Logical
//	================        =================
//	| 1 | 2 | 3 | 4 |       | 1 | 2 | 3 | C |
//	| q | w | e | r |       | 4 | 5 | 6 | D |
//	| a | s | d | f |  <=>  | 7 | 8 | 9 | E |
//	| z | x | c | v |       | A | 0 | B | F |
//	================        =================
var defaultKeymap = map[sdl.Scancode]chip8.Key{
	sdl.SCANCODE_X: chip8.Key0,
	sdl.SCANCODE_1: chip8.Key1,
	sdl.SCANCODE_2: chip8.Key2,
	sdl.SCANCODE_3: chip8.Key3,
	sdl.SCANCODE_Q: chip8.Key4,
	sdl.SCANCODE_W: chip8.Key5,
	sdl.SCANCODE_E: chip8.Key6,
	sdl.SCANCODE_A: chip8.Key7,
	sdl.SCANCODE_S: chip8.Key8,
	sdl.SCANCODE_D: chip8.Key9,
	sdl.SCANCODE_Z: chip8.KeyA,
	sdl.SCANCODE_C: chip8.KeyB,
	sdl.SCANCODE_4: chip8.KeyC,
	sdl.SCANCODE_R: chip8.KeyD,
	sdl.SCANCODE_F: chip8.KeyE,
	sdl.SCANCODE_V: chip8.KeyF,
}

// Keymap maps host scancode names (as in "X", "1", "Q") to CHIP-8 key
// indices, letting a Config override the default physical layout.
type Keymap map[string]chip8.Key

// resolve builds the scancode->Key table used at runtime, starting from
// the default layout and applying any overrides.
func resolve(overrides Keymap) map[sdl.Scancode]chip8.Key {
	table := make(map[sdl.Scancode]chip8.Key, len(defaultKeymap))
	for k, v := range defaultKeymap {
		table[k] = v
	}

	for name, key := range overrides {
		table[sdl.GetScancodeFromName(name)] = key
	}

	return table
}
