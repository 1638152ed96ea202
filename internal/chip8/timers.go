package chip8

import (
	"sync"
	"time"
)

// timerTick is the duration represented by one unit of a 60 Hz countdown
// timer.
const timerTick = time.Second / 60

// delayTimer is the DT register. It models "expiry wall-clock time" rather
// than decrementing on a tick: reading computes the remaining ticks from
// now, writing re-arms the expiry. It is written and read only by the CPU
// goroutine (Fx15/Fx07), so it needs no synchronization of its own.
type delayTimer struct {
	expiry time.Time
}

// reset re-arms the timer to zero.
func (t *delayTimer) reset(now time.Time) {
	t.expiry = now
}

// Set arms the timer so that it will read back v for the next v/60 seconds.
// Re-arming a still-running timer preserves its unfinished remainder: the
// new expiry is measured from whichever is later, now or the current
// expiry.
func (t *delayTimer) set(now time.Time, v uint8) {
	base := now
	if t.expiry.After(base) {
		base = t.expiry
	}

	t.expiry = base.Add(time.Duration(v) * timerTick)
}

// Get returns the current countdown value, clamped to [0, 255].
func (t *delayTimer) get(now time.Time) uint8 {
	return ticksRemaining(t.expiry, now)
}

// soundTimer is the ST register. Unlike delayTimer it is written by the CPU
// goroutine and polled by the timer goroutine (to drive the beep gate), so
// its expiry is guarded by a mutex.
type soundTimer struct {
	mu     sync.Mutex
	expiry time.Time
}

func (t *soundTimer) reset(now time.Time) {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.expiry = now
}

func (t *soundTimer) set(now time.Time, v uint8) {
	t.mu.Lock()
	defer t.mu.Unlock()

	base := now
	if t.expiry.After(base) {
		base = t.expiry
	}

	t.expiry = base.Add(time.Duration(v) * timerTick)
}

// active reports whether the sound gate should be open, i.e. ST > 0.
func (t *soundTimer) active(now time.Time) bool {
	t.mu.Lock()
	defer t.mu.Unlock()

	return t.expiry.After(now)
}

// ticksRemaining converts an expiry time into a clamped 60 Hz tick count.
func ticksRemaining(expiry, now time.Time) uint8 {
	remaining := expiry.Sub(now)
	if remaining <= 0 {
		return 0
	}

	ticks := remaining.Seconds() * 60
	n := int(ticks)
	if float64(n) < ticks {
		n++ // ceil
	}

	if n > 255 {
		n = 255
	}

	return uint8(n)
}
