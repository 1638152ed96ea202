package chip8

// FontGlyphSize is the number of bytes used to encode each hex digit glyph.
const FontGlyphSize = 5

// defaultFont is the built-in 4x5 pixel hex digit font, five bytes per glyph
// for characters 0 through F, loaded at address 0x000. Within each byte the
// high nibble is the visible row pattern; the low nibble is always zero.
var defaultFont = []byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// FontBase returns the address of the glyph for the given hex digit, as
// written by the Fx29 instruction.
func FontBase(digit uint8) uint16 {
	return uint16(digit) * FontGlyphSize
}

// LoadFont validates a replacement font asset and returns it, or a
// FontLoadError if it is the wrong size. It does not mutate machine state;
// callers pass the result to New via WithFont.
func LoadFont(path string, data []byte) ([]byte, error) {
	if len(data) != len(defaultFont) {
		return nil, &FontLoadError{Path: path, Size: len(data)}
	}

	return data, nil
}
