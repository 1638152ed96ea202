package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/go-emu/chip8vm/internal/chip8"
	"github.com/go-emu/chip8vm/internal/config"
	"github.com/go-emu/chip8vm/internal/hal"
	"github.com/spf13/cobra"
)

func main() {
	cmd := &cobra.Command{
		Use:           fmt.Sprintf("%s PATH_TO_ROM_FILE", filepath.Base(os.Args[0])),
		Short:         "Run a CHIP-8 ROM",
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
	}

	flags := cmd.Flags()
	flags.BoolP("verbose", "v", false, "enable verbose logging")
	flags.BoolP("fs", "f", false, "open in fullscreen")
	flags.Float64("clock-hz", 0, "override the instruction clock rate (Hz)")
	flags.Int("scale", 0, "override the window scale factor")
	configPath := flags.String("config", "", "path to a TOML config file")

	cmd.RunE = func(_ *cobra.Command, args []string) error {
		cfg, err := config.Load(*configPath, flags)
		if err != nil {
			return err
		}

		loggerOpts := &slog.HandlerOptions{Level: slog.LevelInfo}
		if cfg.Verbose {
			loggerOpts.Level = slog.LevelDebug
		}
		slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, loggerOpts)))

		romPath := args[0]
		romBytes, err := os.ReadFile(romPath)
		if err != nil {
			return fmt.Errorf("unable to load rom %q: %w", romPath, err)
		}

		rom, err := chip8.LoadROM(romPath, romBytes)
		if err != nil {
			return err
		}

		h, err := hal.New(hal.Config{
			Scale:      cfg.Scale,
			Fullscreen: cfg.Fullscreen,
			Keymap:     toKeymap(cfg.Keymap),
		})
		if err != nil {
			return fmt.Errorf("unable to initialize hal: %w", err)
		}
		defer h.Shutdown()

		machine := chip8.New(rom, chip8.WithClockHz(cfg.ClockHz))

		return run(machine, h)
	}

	cmd.SetArgs(os.Args[1:])
	if err := cmd.Execute(); err != nil {
		slog.Error("fatal error", "err", err)
		os.Exit(1)
	}
}

// run starts the machine's CPU loop alongside the HAL's independent input
// and renderer goroutines, and returns once any of them stops: a closed
// window is a clean shutdown, anything else is fatal.
func run(machine *chip8.Machine, h *hal.HAL) error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	errCh := make(chan error, 3)

	go func() { errCh <- h.RunInput(ctx, machine.Keypad()) }()
	go func() { errCh <- h.RunRenderer(ctx, machine.Framebuffer(), 60) }()
	go func() { errCh <- machine.Run(ctx, h) }()

	first := <-errCh
	cancel()

	// Drain the other two so their goroutines don't leak; their errors
	// are expected now that ctx is cancelled.
	<-errCh
	<-errCh

	if errors.Is(first, hal.ErrQuit) || first == nil {
		return nil
	}

	return first
}

func toKeymap(m map[string]string) hal.Keymap {
	if m == nil {
		return nil
	}

	out := make(hal.Keymap, len(m))
	for name, key := range m {
		var k int
		if _, err := fmt.Sscanf(key, "%d", &k); err != nil {
			continue
		}
		out[name] = chip8.Key(k)
	}

	return out
}
