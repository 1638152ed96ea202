package chip8

import (
	"testing"
	"time"
)

func TestKeypadPressRelease(t *testing.T) {
	kp := NewKeypad()

	if kp.IsPressed(Key5) {
		t.Fatal("Key5 pressed before any Press call")
	}

	kp.Press(Key5)
	if !kp.IsPressed(Key5) {
		t.Fatal("Key5 not pressed after Press")
	}

	kp.Release(Key5)
	if kp.IsPressed(Key5) {
		t.Fatal("Key5 still pressed after Release")
	}
}

func TestKeypadWaitForPress(t *testing.T) {
	kp := NewKeypad()

	result := make(chan Key, 1)
	go func() {
		key, ok := kp.WaitForPress()
		if !ok {
			t.Error("WaitForPress returned !ok without Close")
		}
		result <- key
	}()

	time.Sleep(10 * time.Millisecond)
	kp.Press(KeyA)

	select {
	case got := <-result:
		if got != KeyA {
			t.Errorf("WaitForPress = %v, want KeyA", got)
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForPress did not wake up within 1s of Press")
	}
}

func TestKeypadWaitForPressWakesOnClose(t *testing.T) {
	kp := NewKeypad()

	done := make(chan bool, 1)
	go func() {
		_, ok := kp.WaitForPress()
		done <- ok
	}()

	time.Sleep(10 * time.Millisecond)
	kp.Close()

	select {
	case ok := <-done:
		if ok {
			t.Error("WaitForPress returned ok=true after Close")
		}
	case <-time.After(time.Second):
		t.Fatal("WaitForPress did not wake up within 1s of Close")
	}
}
