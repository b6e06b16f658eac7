package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/qepting91/reddit-scrubber/internal/config"
	"github.com/qepting91/reddit-scrubber/internal/domain"
	"github.com/qepting91/reddit-scrubber/internal/engine"
	"github.com/qepting91/reddit-scrubber/internal/history"
	"github.com/qepting91/reddit-scrubber/internal/ledger"
	"github.com/qepting91/reddit-scrubber/internal/remote"
	"github.com/qepting91/reddit-scrubber/internal/report"
)

func main() {
	godotenv.Load()
	logger := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	slog.SetDefault(logger)

	cfg, err := config.Load()
	if err != nil {
		logger.Error("Configuration invalid", "err", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	client, err := remote.NewCapability(cfg.Mode, cfg.ClientID, cfg.ClientSecret, cfg.Username, cfg.Password, cfg.UserAgent)
	if err != nil {
		logger.Error("Failed to initialize client", "err", err)
		os.Exit(1)
	}
	logger.Info("Client initialized", "mode", cfg.Mode, "user", cfg.Username, "dry_run", cfg.Prefs.DryRun)

	led, err := ledger.Load(ledger.PathFor(cfg.DataDir, cfg.Username))
	if err != nil {
		logger.Error("Failed to load processed-ID ledger", "err", err)
		os.Exit(1)
	}
	logger.Info("Ledger loaded", "processed_ids", led.Len())

	store, err := history.Open(filepath.Join(cfg.DataDir, "scrub_history.db"))
	if err != nil {
		logger.Error("Failed to open run history", "err", err)
		os.Exit(1)
	}
	defer store.Close()

	// Seed the in-process lifetime accumulator from stored history so the
	// final summary covers every run ever recorded, not just this session.
	life := domain.NewLifetime()
	if totals, runs, err := store.Totals(cfg.Username); err != nil {
		logger.Error("Failed to read run history totals", "err", err)
	} else {
		life.Counters = totals
		life.Runs = runs
	}

	orch := engine.New(client, cfg.Prefs, led, life, logger)

	// Reddit listings cap out around a thousand items, so one pass over a
	// large account only sees a slice of it. Re-run until a pass comes up
	// empty; the ledger keeps repeats cheap.
	lastRun := domain.NewCounters()
	for pass := 1; ; pass++ {
		logger.Info("Starting pass", "pass", pass)
		started := time.Now()

		run, runErr := orch.Run(ctx)
		lastRun = run

		if !cfg.Prefs.DryRun {
			if _, err := store.RecordRun(cfg.Username, started, time.Now(), run); err != nil {
				logger.Error("Failed to record run", "err", err)
			}
		}
		if runErr != nil {
			logger.Info("Run interrupted", "pass", pass, "err", runErr)
			break
		}
		if run.Zero() {
			logger.Info("Nothing left to process", "pass", pass)
			break
		}
		if cfg.Prefs.DryRun {
			// A dry run mutates nothing, so a second pass would just repeat.
			break
		}
	}

	recent, err := store.RecentRuns(cfg.Username, 10)
	if err != nil {
		logger.Error("Failed to read recent runs", "err", err)
	}
	if path, err := report.Write(cfg.DataDir, lastRun, life.Counters, recent); err != nil {
		logger.Error("Failed to write report", "err", err)
	} else {
		logger.Info("Report written", "path", path)
	}

	logger.Info("Scrub complete",
		"deleted_lifetime", life.TotalDeleted(),
		"edited_lifetime", life.TotalEdited(),
		"runs_lifetime", life.Runs)
}
