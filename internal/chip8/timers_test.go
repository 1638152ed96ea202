package chip8

import (
	"testing"
	"time"
)

func TestDelayTimerGetClampsAndDecays(t *testing.T) {
	var dt delayTimer
	base := time.Now()
	dt.reset(base)

	if got := dt.get(base); got != 0 {
		t.Fatalf("fresh timer = %d, want 0", got)
	}

	dt.set(base, 30)
	if got := dt.get(base); got != 30 {
		t.Errorf("immediately after set(30) = %d, want 30", got)
	}

	half := base.Add(250 * time.Millisecond) // half of 30/60s
	if got := dt.get(half); got < 14 || got > 16 {
		t.Errorf("after 250ms = %d, want ~15", got)
	}

	past := base.Add(time.Second)
	if got := dt.get(past); got != 0 {
		t.Errorf("after expiry = %d, want 0", got)
	}
}

func TestDelayTimerSetClampsTo255(t *testing.T) {
	var dt delayTimer
	base := time.Now()
	dt.reset(base)
	dt.set(base, 255)

	if got := dt.get(base); got != 255 {
		t.Errorf("set(255) immediate read = %d, want 255", got)
	}

	// Re-arming while running leaves 510 ticks outstanding; reads clamp.
	dt.set(base, 255)
	if got := dt.get(base); got != 255 {
		t.Errorf("read with 510 ticks remaining = %d, want clamped 255", got)
	}
}

func TestDelayTimerReArmPreservesRemainder(t *testing.T) {
	var dt delayTimer
	base := time.Now()
	dt.reset(base)

	dt.set(base, 30)
	later := base.Add(100 * time.Millisecond)
	dt.set(later, 10)

	// Re-arming while still running should measure the new value from the
	// existing (later) expiry, not from `later` itself.
	expectedExpiry := base.Add(30 * timerTick).Add(10 * timerTick)
	if !dt.expiry.Equal(expectedExpiry) {
		t.Errorf("expiry = %v, want %v", dt.expiry, expectedExpiry)
	}
}

func TestSoundTimerActive(t *testing.T) {
	var st soundTimer
	base := time.Now()
	st.reset(base)

	if st.active(base) {
		t.Fatal("fresh timer reports active")
	}

	st.set(base, 5)
	if !st.active(base) {
		t.Fatal("set(5) should be active immediately")
	}

	if st.active(base.Add(time.Second)) {
		t.Fatal("timer should have expired after 1s")
	}
}
