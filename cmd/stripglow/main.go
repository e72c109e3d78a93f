package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"text/tabwriter"

	"github.com/spf13/pflag"
	"libdb.so/stripglow"
	"libdb.so/stripglow/internal/audio"
)

var (
	config      = "stripglow.toml"
	verbose     = false
	effect      = ""
	interactive = false
	previewAddr = ""
	listEffects = false
	listDevices = false
)

func init() {
	pflag.StringVarP(&config, "config", "c", config, "configuration file")
	pflag.BoolVarP(&verbose, "verbose", "v", verbose, "verbose output")
	pflag.StringVarP(&effect, "effect", "e", effect, "effect to play, overriding the configuration")
	pflag.BoolVarP(&interactive, "menu", "m", interactive, "show the interactive effect menu")
	pflag.StringVar(&previewAddr, "preview", previewAddr, "serve the WebSocket preview on this address")
	pflag.BoolVar(&listEffects, "list-effects", listEffects, "list the available effects and exit")
	pflag.BoolVar(&listDevices, "list-devices", listDevices, "list the audio input devices and exit")
}

func main() {
	pflag.Parse()

	logLevel := slog.LevelWarn
	if verbose {
		logLevel = slog.LevelDebug
	}

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	if listDevices {
		return printDevices()
	}

	cfg, err := readConfig()
	if err != nil {
		return err
	}
	if previewAddr != "" {
		cfg.Output.Preview = previewAddr
	}

	if listEffects {
		return printEffects(cfg)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	d, err := stripglow.NewDaemon(ctx, cfg, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create daemon: %w", err)
	}
	defer func() {
		if err := d.Close(); err != nil {
			slog.Error("failed to close daemon", "error", err)
		}
	}()

	if interactive {
		if effect != "" {
			cfg.Effect.Name = effect
		}
		err = d.RunInteractive(ctx)
	} else {
		err = d.Run(ctx, effect)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		return fmt.Errorf("daemon failed: %w", err)
	}

	return nil
}

// readConfig reads the configuration file. A missing default file is not an
// error: the daemon then drives a strip kept in memory.
func readConfig() (*stripglow.Config, error) {
	f, err := os.Open(config)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) && !pflag.CommandLine.Changed("config") {
			slog.Warn("no configuration file, using defaults", "path", config)
			return stripglow.DefaultConfig(), nil
		}
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	cfg, err := stripglow.ParseConfig(f)
	if err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return cfg, nil
}

func printEffects(cfg *stripglow.Config) error {
	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, e := range stripglow.NewRegistry(cfg, slog.Default()).Entries() {
		kind := "pattern"
		if e.Audio {
			kind = "audio"
		}
		fmt.Fprintf(w, "%s\t%s\t%dms\t%s\n", e.Name, kind, e.Speed, e.Description)
	}
	return w.Flush()
}

func printDevices() error {
	devices, err := audio.Devices()
	if err != nil {
		return fmt.Errorf("failed to list audio devices: %w", err)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	for _, d := range devices {
		mark := ""
		if d.Default {
			mark = "*"
		}
		fmt.Fprintf(w, "%d%s\t%s\t%s\t%d ch\t%.0f Hz\n",
			d.ID, mark, d.Name, d.HostAPI, d.InputChannels, d.DefaultSampleRate)
	}
	return w.Flush()
}
