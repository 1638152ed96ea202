package chip8

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the core. Callers should use errors.Is/errors.As
// rather than comparing errors directly: a fetch failure wraps ErrOutOfBounds
// with context, while instruction handlers return these values unwrapped.
var (
	ErrStackOverflow  = errors.New("chip8: stack overflow")
	ErrStackUnderflow = errors.New("chip8: stack underflow")
	ErrOutOfBounds    = errors.New("chip8: address out of bounds")
)

// InvalidInstructionError is returned by instruction dispatch
// (Machine.execute) when a 16-bit word does not match any known opcode. It carries the program counter and raw word so
// that the host can report where execution derailed.
type InvalidInstructionError struct {
	PC     uint16
	Opcode uint16
}

func (e *InvalidInstructionError) Error() string {
	return fmt.Sprintf("chip8: invalid instruction 0x%04X at pc=0x%04X", e.Opcode, e.PC)
}

// RomLoadError wraps a failure to load a ROM image, either because the file
// could not be read or because it would not fit in the address space above
// ProgramStart.
type RomLoadError struct {
	Path string
	Size int
	Err  error
}

func (e *RomLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chip8: failed to load rom %q: %s", e.Path, e.Err)
	}

	return fmt.Sprintf("chip8: rom %q is %d bytes, exceeds max of %d", e.Path, e.Size, MemorySize-int(ProgramStart))
}

func (e *RomLoadError) Unwrap() error { return e.Err }

// FontLoadError wraps a failure to load a replacement font asset.
type FontLoadError struct {
	Path string
	Size int
	Err  error
}

func (e *FontLoadError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("chip8: failed to load font %q: %s", e.Path, e.Err)
	}

	return fmt.Sprintf("chip8: font %q is %d bytes, want %d", e.Path, e.Size, len(defaultFont))
}

func (e *FontLoadError) Unwrap() error { return e.Err }

// HostInitError wraps a failure of a host collaborator (renderer, audio,
// input) to initialize.
type HostInitError struct {
	Component string
	Err       error
}

func (e *HostInitError) Error() string {
	return fmt.Sprintf("chip8: %s failed to initialize: %s", e.Component, e.Err)
}

func (e *HostInitError) Unwrap() error { return e.Err }
