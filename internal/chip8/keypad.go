package chip8

import (
	"sync"
	"sync/atomic"
)

// Key identifies one of the sixteen hexadecimal keys 0x0..0xF.
type Key uint8

const (
	Key0 = Key(iota)
	Key1
	Key2
	Key3
	Key4
	Key5
	Key6
	Key7
	Key8
	Key9
	KeyA
	KeyB
	KeyC
	KeyD
	KeyE
	KeyF
)

// Keypad is the 16-key pressed-state table. Each cell is an independent
// atomic bool so the input goroutine can set/clear keys without contending
// with the CPU goroutine's reads. WaitForPress additionally exposes a
// condition variable so Fx0A can block instead of busy-waiting, and wakes
// promptly on cancellation.
type Keypad struct {
	pressed [KeyCount]atomic.Bool

	mu         sync.Mutex
	cond       *sync.Cond
	lastKey    Key
	anyPressed bool
	closed     bool
}

// NewKeypad returns an empty keypad ready for use.
func NewKeypad() *Keypad {
	k := &Keypad{}
	k.cond = sync.NewCond(&k.mu)
	return k
}

// IsPressed reports whether key is currently held down.
func (k *Keypad) IsPressed(key Key) bool {
	return k.pressed[key].Load()
}

// Press marks key as held down. It is called by the input collaborator,
// never by the CPU.
func (k *Keypad) Press(key Key) {
	k.pressed[key].Store(true)

	k.mu.Lock()
	k.lastKey = key
	k.anyPressed = true
	k.mu.Unlock()

	k.cond.Broadcast()
}

// Release marks key as no longer held down.
func (k *Keypad) Release(key Key) {
	k.pressed[key].Store(false)
}

// WaitForPress blocks the calling goroutine until some key transitions to
// pressed, or until Close is called, in which case it returns false. It
// implements the blocking semantics required by Fx0A.
func (k *Keypad) WaitForPress() (Key, bool) {
	k.mu.Lock()
	defer k.mu.Unlock()

	// Only presses that arrive after the call count.
	k.anyPressed = false

	for !k.anyPressed && !k.closed {
		k.cond.Wait()
	}

	if k.closed {
		return 0, false
	}

	key := k.lastKey
	k.anyPressed = false
	return key, true
}

// Close wakes any goroutine blocked in WaitForPress so it can observe
// cancellation. It is idempotent.
func (k *Keypad) Close() {
	k.mu.Lock()
	k.closed = true
	k.mu.Unlock()

	k.cond.Broadcast()
}

// clear releases every key and resets pending-press state. Used on machine
// reset; not safe to call concurrently with Press/Release.
func (k *Keypad) clear() {
	for i := range k.pressed {
		k.pressed[i].Store(false)
	}

	k.mu.Lock()
	k.anyPressed = false
	k.closed = false
	k.mu.Unlock()
}
