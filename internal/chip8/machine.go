package chip8

import (
	"context"
	"fmt"
	"log/slog"
	"math/rand"
	"time"
)

// DefaultClockHz is the instruction rate used when no override is given,
// roughly one instruction every 2ms.
const DefaultClockHz = 500

// timeNow is indirected so tests can pin the clock when exercising the
// timer expiry math.
var timeNow = time.Now

// AudioSink is the narrow collaborator the timer goroutine drives: it opens
// and closes the looping beep gated by the sound timer. It is the entire
// "audio contract" the core requires of the host.
type AudioSink interface {
	StartBeep() error
	StopBeep() error
}

// randSource is the subset of math/rand the RND instruction needs,
// narrowed to an interface so tests can inject a deterministic source.
type randSource interface {
	Uint8() uint8
}

type defaultRandSource struct{}

func (defaultRandSource) Uint8() uint8 {
	return uint8(rand.Intn(256))
}

// Machine is a complete CHIP-8 virtual machine: address space, registers,
// framebuffer, timers and keypad, plus the fetch-decode-execute loop that
// ties them together. A Machine is built once per ROM run via New and is
// not safe for concurrent use by more than the goroutines documented on
// Run, Framebuffer, and Keypad.
type Machine struct {
	mem  memory
	regs registers
	st   callStack

	pc    uint16
	index uint16

	fb    *Framebuffer
	delay delayTimer
	sound soundTimer
	kp    *Keypad

	rand randSource
	font []byte

	rom       []byte
	clockHz   float64
	drawDirty bool
}

// Option configures a Machine at construction time.
type Option func(*Machine)

// WithClockHz overrides the instruction rate, in Hz.
func WithClockHz(hz float64) Option {
	return func(m *Machine) { m.clockHz = hz }
}

// WithFont overrides the built-in hex digit font with a caller-supplied
// one; data must be exactly len(defaultFont) bytes, as returned by
// LoadFont.
func WithFont(data []byte) Option {
	return func(m *Machine) { m.font = data }
}

// withRandSource is used by tests to make RND deterministic.
func withRandSource(r randSource) Option {
	return func(m *Machine) { m.rand = r }
}

// New constructs a Machine that will run rom. rom must be no larger than
// MaxRomSize; New itself never errors on the ROM, since RomLoadError is
// the caller's concern when reading the file from disk (see LoadROM).
func New(rom []byte, opts ...Option) *Machine {
	m := &Machine{
		fb:      &Framebuffer{},
		kp:      NewKeypad(),
		rand:    defaultRandSource{},
		font:    defaultFont,
		rom:     rom,
		clockHz: DefaultClockHz,
	}

	for _, opt := range opts {
		opt(m)
	}

	return m
}

// LoadROM validates a ROM image already read from path, rejecting images
// too large to fit above ProgramStart. It does not read the file itself.
func LoadROM(path string, data []byte) ([]byte, error) {
	if len(data) > MaxRomSize {
		return nil, &RomLoadError{Path: path, Size: len(data)}
	}

	return data, nil
}

// Framebuffer returns the machine's framebuffer. A renderer goroutine may
// call Snapshot on it at any time, concurrently with Run.
func (m *Machine) Framebuffer() *Framebuffer { return m.fb }

// Keypad returns the machine's keypad. An input goroutine may call
// Press/Release on it at any time, concurrently with Run.
func (m *Machine) Keypad() *Keypad { return m.kp }

// PC returns the current program counter. Intended for tests and
// diagnostics; the CPU goroutine is the only writer.
func (m *Machine) PC() uint16 { return m.pc }

// Register returns the value of Vx.
func (m *Machine) Register(x uint8) uint8 { return m.regs[x] }

// SetRegister sets Vx directly. Intended for tests that need to seed
// register state before executing a handful of instructions.
func (m *Machine) SetRegister(x uint8, v uint8) { m.regs[x] = v }

// Index returns the current value of the I register.
func (m *Machine) Index() uint16 { return m.index }

// SetIndex sets I directly. Intended for tests.
func (m *Machine) SetIndex(v uint16) { m.index = v }

// StackDepth returns the number of addresses on the call stack.
func (m *Machine) StackDepth() int { return m.st.depth() }

// WriteMemory stores data at addr, for test setup (e.g. seeding a sprite).
func (m *Machine) WriteMemory(addr uint16, data []byte) error {
	return m.mem.loadAt(addr, data)
}

// ReadMemory returns n bytes starting at addr, for test assertions.
func (m *Machine) ReadMemory(addr uint16, n int) ([]byte, error) {
	out := make([]byte, n)
	for i := 0; i < n; i++ {
		b, err := m.mem.readByte(addr + uint16(i))
		if err != nil {
			return nil, err
		}
		out[i] = b
	}
	return out, nil
}

// reset brings the machine back to its just-booted state and (re)loads the
// font and program. It is called once at the start of Run.
func (m *Machine) reset(now time.Time) {
	m.pc = ProgramStart
	m.index = 0
	m.st.clear()
	m.regs.clear()
	m.mem.clear()
	m.fb.Clear()
	m.kp.clear()
	m.drawDirty = true

	m.delay.reset(now)
	m.sound.reset(now)

	if err := m.mem.loadAt(0, m.font); err != nil {
		panic(fmt.Sprintf("chip8: font does not fit in memory: %s", err))
	}

	if err := m.mem.loadAt(ProgramStart, m.rom); err != nil {
		panic(fmt.Sprintf("chip8: rom does not fit in memory: %s", err))
	}
}

// Run drives the fetch-decode-execute loop until ctx is cancelled or a
// runtime error occurs. It also starts the 60 Hz timer goroutine that
// drives audio's beep gate; that goroutine is stopped before Run returns.
func (m *Machine) Run(ctx context.Context, audio AudioSink) error {
	m.reset(time.Now())

	timerCtx, stopTimer := context.WithCancel(ctx)
	timerDone := make(chan struct{})
	go m.runTimerLoop(timerCtx, audio, timerDone)

	// A CPU step blocked inside Fx0A only ever wakes via kp.Close(); without
	// this watcher, cancelling ctx while the loop is stuck in WaitForPress
	// would never reach the ctx.Err() check below, and Run would hang. Watch
	// timerCtx rather than ctx directly so the watcher also unblocks when
	// Run is returning for a reason other than ctx cancellation (stopTimer
	// below cancels timerCtx unconditionally).
	closeDone := make(chan struct{})
	go func() {
		defer close(closeDone)
		<-timerCtx.Done()
		m.kp.Close()
	}()

	defer func() {
		stopTimer()
		<-timerDone
		<-closeDone
	}()

	period := time.Duration(float64(time.Second) / m.clockHz)

	for {
		if err := ctx.Err(); err != nil {
			return nil
		}

		start := time.Now()

		if err := m.step(); err != nil {
			return err
		}

		if elapsed := time.Since(start); elapsed < period {
			time.Sleep(period - elapsed)
		}
	}
}

// runTimerLoop wakes at 60 Hz and opens/closes the beep gate as the sound
// timer's active state changes. It is the "timer thread" of the design.
func (m *Machine) runTimerLoop(ctx context.Context, audio AudioSink, done chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(timerTick)
	defer ticker.Stop()

	playing := false

	for {
		select {
		case <-ctx.Done():
			if playing {
				if err := audio.StopBeep(); err != nil {
					slog.Error("timer: failed to stop beep", "err", err)
				}
			}
			return

		case now := <-ticker.C:
			active := m.sound.active(now)

			switch {
			case active && !playing:
				if err := audio.StartBeep(); err != nil {
					slog.Error("timer: failed to start beep", "err", err)
				} else {
					playing = true
				}

			case !active && playing:
				if err := audio.StopBeep(); err != nil {
					slog.Error("timer: failed to stop beep", "err", err)
				} else {
					playing = false
				}
			}
		}
	}
}

// step fetches, decodes and executes a single instruction.
func (m *Machine) step() error {
	fetchedAt := m.pc

	op, err := m.mem.readWord(m.pc)
	if err != nil {
		return fmt.Errorf("fetch at pc=0x%04x: %w", m.pc, err)
	}

	d := Decode(op)
	m.pc += InstructionSize

	if slog.Default().Enabled(context.Background(), slog.LevelDebug) {
		slog.Debug("exec", "pc", fmt.Sprintf("0x%04x", fetchedAt), "op", fmt.Sprintf("0x%04x", op))
	}

	return m.execute(d)
}
