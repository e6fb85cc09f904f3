package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync/atomic"
	"syscall"
	"time"

	"diagnostics-recorder/engine/UI"
	"diagnostics-recorder/engine/config"
	"diagnostics-recorder/engine/internal/logger"
	"diagnostics-recorder/engine/internal/simulator"
	"diagnostics-recorder/engine/internal/sink"

	"github.com/oklog/run"
)

func main() {
	os.Exit(realMain(os.Args[1:], os.Stdout, os.Stderr))
}

// realMain returns the process exit code so deferred flushes run before exit
func realMain(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("diagnostics-recorder", flag.ContinueOnError)
	fs.SetOutput(stderr)
	flagConfig := fs.String("config", config.GetConfigPath(), "Config file")
	flagHeadless := fs.Bool("headless", false, "Run without the diagnostics screen and print the history on exit")
	flagDuration := fs.Duration("duration", 10*time.Second, "How long to run in headless mode")
	if err := fs.Parse(args); err != nil {
		return 2
	}

	cfg, err := loadConfig(*flagConfig)
	if err != nil {
		fmt.Fprintf(stderr, "load config: %v\n", err)
		return 1
	}

	zlog, err := sink.New(cfg.Sink)
	if err != nil {
		fmt.Fprintf(stderr, "init sink: %v\n", err)
		return 1
	}
	defer sink.Sync(zlog)

	rec := logger.NewRecorder(sink.NewZap(zlog))

	var errorsSeen atomic.Int64
	rec.Register(func(_ logger.Category, severity logger.Severity, _ string) {
		if severity == logger.SeverityError {
			errorsSeen.Add(1)
		}
	})

	if err := runGroup(cfg, *flagConfig, rec, *flagHeadless, *flagDuration); err != nil {
		rec.ErrorWithCause(logger.CategoryUtils, "Run stopped", err)
		fmt.Fprintln(stderr, err)
		return 1
	}

	if *flagHeadless {
		fmt.Fprint(stdout, rec.RenderText())
		fmt.Fprintf(stdout, "-- %d entries retained, %d errors seen\n", rec.Count(), errorsSeen.Load())
	}
	return 0
}

// loadConfig reads path, creating a default config on first run
func loadConfig(path string) (*config.Config, error) {
	cfg, err := config.LoadConfig(path)
	if errors.Is(err, os.ErrNotExist) {
		if err := config.CreateDefaultConfig(path); err != nil {
			return nil, err
		}
		cfg, err = config.LoadConfig(path)
	}
	if err != nil {
		return nil, err
	}

	config.ApplyEnv(cfg)
	cfg.Resolve(filepath.Dir(path))
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	for _, p := range cfg.Sink.OutputPaths {
		if p == "stdout" || p == "stderr" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(p), 0755); err != nil {
			return nil, fmt.Errorf("create sink dir: %w", err)
		}
	}
	return cfg, nil
}

func runGroup(cfg *config.Config, configPath string, rec *logger.Recorder, headless bool, duration time.Duration) error {
	var g run.Group

	if cfg.Simulator.Enabled {
		interval := time.Duration(cfg.Simulator.IntervalMillis) * time.Millisecond
		runner, err := simulator.NewRunner(rec, cfg.Simulator.Sources, interval)
		if err != nil {
			return fmt.Errorf("simulator: %w", err)
		}
		ctx, cancel := context.WithCancel(context.Background())
		g.Add(func() error {
			return runner.Run(ctx)
		}, func(error) {
			cancel()
		})
	}

	if headless {
		done := make(chan struct{})
		g.Add(func() error {
			select {
			case <-time.After(duration):
			case <-done:
			}
			return nil
		}, func(error) {
			close(done)
		})
	} else {
		p := UI.NewProgram(rec, cfg, configPath)
		g.Add(func() error {
			_, err := p.Run()
			return err
		}, func(error) {
			p.Quit()
		})
	}

	g.Add(run.SignalHandler(context.Background(), os.Interrupt, syscall.SIGTERM))

	err := g.Run()
	var sigErr run.SignalError
	if errors.As(err, &sigErr) {
		return nil
	}
	return err
}
