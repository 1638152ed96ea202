package chip8

import "testing"

func TestFramebufferWrap(t *testing.T) {
	fb := &Framebuffer{}

	collision := fb.Draw(63, 31, []byte{0x80})
	if collision {
		t.Fatal("collision = true on first draw, want false")
	}

	snap := fb.Snapshot()
	for i, cell := range snap {
		want := byte(0)
		if i == 31*ScreenWidth+63 {
			want = 1
		}
		if cell != want {
			t.Errorf("cell %d = %d, want %d", i, cell, want)
		}
	}
}

func TestFramebufferXORIdempotence(t *testing.T) {
	fb := &Framebuffer{}
	sprite := []byte{0xF0, 0x90, 0x90, 0x90, 0xF0}

	before := fb.Snapshot()

	c1 := fb.Draw(10, 10, sprite)
	if c1 {
		t.Fatal("first draw reported a collision on a blank screen")
	}

	c2 := fb.Draw(10, 10, sprite)
	if !c2 {
		t.Fatal("second draw of a non-empty sprite should report a collision")
	}

	after := fb.Snapshot()
	for i := range before {
		if before[i] != after[i] {
			t.Fatalf("cell %d = %d, want %d (pre-draw state)", i, after[i], before[i])
		}
	}
}

func TestFramebufferClear(t *testing.T) {
	fb := &Framebuffer{}
	fb.Draw(0, 0, []byte{0xFF})
	fb.Clear()

	for i, cell := range fb.Snapshot() {
		if cell != 0 {
			t.Fatalf("cell %d = %d after Clear, want 0", i, cell)
		}
	}
}
