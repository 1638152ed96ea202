// Package hal implements the core's audio/renderer/input collaborators on
// top of SDL2, the same windowing stack the teacher project used.
package hal

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"unsafe"

	"github.com/go-emu/chip8vm/internal/chip8"
	"github.com/veandco/go-sdl2/sdl"
)

const (
	beepFreq   = 440 // Hz, concert A, a plain audible square wave
	sampleRate = 44100
	beepVolume = 0.2
)

// Config is the subset of the application configuration the HAL needs at
// construction time.
type Config struct {
	Scale      int
	Fullscreen bool
	Keymap     Keymap
}

// HAL owns the SDL window, renderer, texture and audio device, and
// implements chip8.AudioSink. Rendering and beep control happen on
// whichever goroutine calls Draw/StartBeep/StopBeep; RunInput runs its own
// polling loop on the goroutine that calls it, independent of both.
type HAL struct {
	window   *sdl.Window
	renderer *sdl.Renderer
	texture  *sdl.Texture

	backBuffer      []uint32
	backBufferPitch int

	audioDevice sdl.AudioDeviceID
	beepBuffer  []byte

	keymap map[sdl.Scancode]chip8.Key
}

// New initializes SDL, a window sized for a 64x32 framebuffer scaled by
// cfg.Scale, and an audio device primed with a synthesized beep tone.
func New(cfg Config) (*HAL, error) {
	if cfg.Scale <= 0 {
		cfg.Scale = 16
	}

	if err := sdl.Init(sdl.INIT_EVERYTHING); err != nil {
		return nil, &chip8.HostInitError{Component: "sdl", Err: err}
	}

	width := int32(chip8.ScreenWidth * cfg.Scale)
	height := int32(chip8.ScreenHeight * cfg.Scale)

	flags := uint32(sdl.WINDOW_SHOWN)
	if cfg.Fullscreen {
		flags |= sdl.WINDOW_FULLSCREEN_DESKTOP
	}

	window, err := sdl.CreateWindow("CHIP-8", sdl.WINDOWPOS_UNDEFINED, sdl.WINDOWPOS_UNDEFINED, width, height, flags)
	if err != nil {
		return nil, &chip8.HostInitError{Component: "sdl window", Err: err}
	}
	slog.Debug("hal: created window", "w", width, "h", height)

	renderer, err := sdl.CreateRenderer(window, -1, sdl.RENDERER_ACCELERATED)
	if err != nil {
		return nil, &chip8.HostInitError{Component: "sdl renderer", Err: err}
	}

	if err := renderer.SetLogicalSize(width, height); err != nil {
		return nil, &chip8.HostInitError{Component: "sdl renderer", Err: err}
	}

	texture, err := renderer.CreateTexture(sdl.PIXELFORMAT_ARGB8888, sdl.TEXTUREACCESS_STREAMING, chip8.ScreenWidth, chip8.ScreenHeight)
	if err != nil {
		return nil, &chip8.HostInitError{Component: "sdl texture", Err: err}
	}
	slog.Debug("hal: created texture")

	h := &HAL{
		window:          window,
		renderer:        renderer,
		texture:         texture,
		backBuffer:      make([]uint32, chip8.ScreenWidth*chip8.ScreenHeight),
		backBufferPitch: chip8.ScreenWidth * int(unsafe.Sizeof(uint32(0))),
		beepBuffer:      synthesizeSquareWave(beepFreq, sampleRate, beepVolume),
		keymap:          resolve(cfg.Keymap),
	}

	if err := h.openAudio(); err != nil {
		return nil, err
	}

	return h, nil
}

func (h *HAL) openAudio() error {
	spec := &sdl.AudioSpec{
		Freq:     sampleRate,
		Format:   sdl.AUDIO_S16SYS,
		Channels: 1,
		Samples:  2048,
	}

	deviceID, err := sdl.OpenAudioDevice("", false, spec, nil, 0)
	if err != nil {
		return &chip8.HostInitError{Component: "sdl audio device", Err: err}
	}

	h.audioDevice = deviceID
	return nil
}

// synthesizeSquareWave builds one second of a square wave at freq Hz, as
// signed 16-bit PCM, queued by StartBeep.
func synthesizeSquareWave(freq, rate int, volume float64) []byte {
	samples := rate
	out := make([]byte, samples*2)

	period := float64(rate) / float64(freq)
	amplitude := int16(volume * math.MaxInt16)

	for i := 0; i < samples; i++ {
		phase := math.Mod(float64(i), period) / period
		v := amplitude
		if phase >= 0.5 {
			v = -amplitude
		}

		out[2*i] = byte(v)
		out[2*i+1] = byte(v >> 8)
	}

	return out
}

// Shutdown tears down SDL resources in the reverse order they were
// created, logging (not failing) any individual teardown error.
func (h *HAL) Shutdown() {
	sdl.CloseAudioDevice(h.audioDevice)

	if err := h.texture.Destroy(); err != nil {
		slog.Error("hal: failed to destroy texture", "err", err)
	}
	if err := h.renderer.Destroy(); err != nil {
		slog.Error("hal: failed to destroy renderer", "err", err)
	}
	if err := h.window.Destroy(); err != nil {
		slog.Error("hal: failed to destroy window", "err", err)
	}

	sdl.Quit()
}

// Draw uploads a framebuffer snapshot (one byte per pixel, row-major) to
// the streaming texture and presents it. Called by the renderer goroutine.
func (h *HAL) Draw(gfx []byte) error {
	const (
		bgColor = uint32(0x000000)
		fgColor = uint32(0xbea700)
	)

	for i, px := range gfx {
		color := bgColor
		if px != 0 {
			color = fgColor
		}
		h.backBuffer[i] = color
	}

	ptr := unsafe.Pointer(&h.backBuffer[0])
	if err := h.texture.Update(nil, ptr, h.backBufferPitch); err != nil {
		return fmt.Errorf("hal: update texture: %w", err)
	}

	if err := h.renderer.Clear(); err != nil {
		return fmt.Errorf("hal: clear renderer: %w", err)
	}
	if err := h.renderer.Copy(h.texture, nil, nil); err != nil {
		return fmt.Errorf("hal: copy texture: %w", err)
	}

	h.renderer.Present()
	return nil
}

// StartBeep unpauses the audio device and queues the one-second synthesized
// tone if the queue is empty. The tone is not repeated: once that second has
// played out the device is silent until StartBeep is called again.
func (h *HAL) StartBeep() error {
	if sdl.GetQueuedAudioSize(h.audioDevice) == 0 {
		if err := sdl.QueueAudio(h.audioDevice, h.beepBuffer); err != nil {
			return fmt.Errorf("hal: queue beep: %w", err)
		}
	}

	sdl.PauseAudioDevice(h.audioDevice, false)
	return nil
}

// StopBeep pauses the audio device and drops any queued samples.
func (h *HAL) StopBeep() error {
	sdl.PauseAudioDevice(h.audioDevice, true)
	sdl.ClearQueuedAudio(h.audioDevice)
	return nil
}

// RunInput polls SDL events until ctx is cancelled, feeding key transitions
// into kp and reporting ErrQuit if the window was closed. It is the
// "input thread" of the design and is meant to be run in its own
// goroutine, independent of the CPU and renderer loops.
func (h *HAL) RunInput(ctx context.Context, kp *chip8.Keypad) error {
	for {
		if ctx.Err() != nil {
			return nil
		}

		for e := sdl.PollEvent(); e != nil; e = sdl.PollEvent() {
			switch e.GetType() {
			case sdl.QUIT:
				return ErrQuit

			case sdl.KEYDOWN:
				if key, ok := h.keymap[e.(*sdl.KeyboardEvent).Keysym.Scancode]; ok {
					kp.Press(key)
				}

			case sdl.KEYUP:
				if key, ok := h.keymap[e.(*sdl.KeyboardEvent).Keysym.Scancode]; ok {
					kp.Release(key)
				}
			}
		}

		sdl.Delay(1)
	}
}

// RunRenderer reads the machine's framebuffer at a fixed cadence and draws
// it, independent of how often the CPU actually mutates it. It is the
// "renderer thread" of the design.
func (h *HAL) RunRenderer(ctx context.Context, fb *chip8.Framebuffer, fps int) error {
	if fps <= 0 {
		fps = 60
	}

	ticker := sdl.GetTicks64()
	frameMillis := uint64(1000 / fps)

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := h.Draw(fb.Snapshot()); err != nil {
			return err
		}

		now := sdl.GetTicks64()
		elapsed := now - ticker
		if elapsed < frameMillis {
			sdl.Delay(uint32(frameMillis - elapsed))
		}
		ticker = sdl.GetTicks64()
	}
}
