// ABOUTME: Entry point for the podcast recorder
// ABOUTME: Parses CLI flags, wires storage and audio devices, then runs the TUI or a headless recording
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/harperreed/podcast-recorder/internal/app"
	"github.com/harperreed/podcast-recorder/internal/catalog"
	"github.com/harperreed/podcast-recorder/internal/config"
	"github.com/harperreed/podcast-recorder/internal/logging"
	"github.com/harperreed/podcast-recorder/internal/transport"
	"github.com/harperreed/podcast-recorder/internal/ui"
	"github.com/harperreed/podcast-recorder/internal/version"
	"github.com/harperreed/podcast-recorder/pkg/audio"
	"github.com/harperreed/podcast-recorder/pkg/audio/input"
	"github.com/harperreed/podcast-recorder/pkg/audio/output"
	"go.uber.org/zap"
)

var (
	configPath  = flag.String("config", "", "Config file (yaml, json or toml)")
	noTUI       = flag.Bool("no-tui", false, "Record immediately without the TUI; Ctrl+C stops and saves")
	logFile     = flag.String("log-file", "", "Log file path (overrides config)")
	logLevel    = flag.String("log-level", "", "Log level: debug, info, warn, error (overrides config)")
	showVersion = flag.Bool("version", false, "Print version and exit")
)

func main() {
	flag.Parse()

	if *showVersion {
		fmt.Println(version.String())
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}
	if *logFile != "" {
		cfg.LogFile = *logFile
	}
	if *logLevel != "" {
		cfg.LogLevel = *logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	useTUI := !*noTUI

	// TUI mode logs only to the file; the terminal belongs to the UI
	log, syncLog, err := logging.New(logging.Config{
		File:    cfg.LogFile,
		Level:   cfg.LogLevel,
		Console: !useTUI,
	})
	if err != nil {
		return err
	}
	defer func() { _ = syncLog() }()

	log.Infow("starting",
		"version", version.String(),
		"recordings_dir", cfg.RecordingsDir,
		"database", cfg.DatabasePath,
		"input_backend", cfg.InputBackend,
		"sample_rate", cfg.SampleRate,
		"channels", cfg.Channels)

	store, err := catalog.Open(cfg.DatabasePath, log.Named("catalog"))
	if err != nil {
		return err
	}
	defer store.Close()

	in, err := input.New(cfg.InputBackend, log.Named("input"))
	if err != nil {
		return err
	}
	out := output.NewOto(log.Named("output"))

	a := app.New(app.Config{
		RecordingsDir:  cfg.RecordingsDir,
		Format:         audio.Format{SampleRate: cfg.SampleRate, Channels: cfg.Channels, BitDepth: 16},
		FramesPerBlock: cfg.FramesPerBlock,
		QueueBlocks:    cfg.QueueBlocks,
		DrainTimeout:   cfg.DrainTimeout,
		WaveformWidth:  cfg.WaveformWidth,
	}, in, out, store, log.Named("app"))
	defer func() {
		if err := a.Close(); err != nil {
			log.Errorw("shutdown failed", "error", err)
		}
	}()

	if useTUI {
		if err := ui.Run(a, cfg.TickInterval); err != nil {
			return fmt.Errorf("TUI failed: %w", err)
		}
		return nil
	}
	return runHeadless(a, cfg, log)
}

// runHeadless records until SIGINT or SIGTERM and logs progress once per second
func runHeadless(a *app.App, cfg *config.Config, log *zap.SugaredLogger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	path, err := a.StartRecording()
	if err != nil {
		return err
	}
	log.Infow("recording, press Ctrl+C to stop", "path", path)

	var last string
	transport.Run(ctx, cfg.TickInterval, a, func(st transport.Status) {
		if w := a.Warning(); w != "" {
			log.Warnw("input device", "warning", w)
		}
		if st.Elapsed != last {
			last = st.Elapsed
			log.Infow("recording", "elapsed", st.Elapsed, "level", st.Amplitude)
		}
	})

	rec, err := a.Stop()
	if err != nil {
		return fmt.Errorf("failed to finish recording: %w", err)
	}
	log.Infow("recording saved", "path", rec.Path, "seconds", rec.Duration)
	return nil
}
