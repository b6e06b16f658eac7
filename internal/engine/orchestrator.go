package engine

import (
	"context"
	"log/slog"
	"math/rand"
	"time"

	"github.com/qepting91/reddit-scrubber/internal/domain"
	"github.com/qepting91/reddit-scrubber/internal/fetch"
	"github.com/qepting91/reddit-scrubber/internal/filter"
	"github.com/qepting91/reddit-scrubber/internal/ledger"
	"github.com/qepting91/reddit-scrubber/internal/scrub"
)

// Config tunes the engine. Zero fields fall back to production defaults;
// tests shrink the waits.
type Config struct {
	BatchSize   int
	Workers     int
	Cooldown    time.Duration
	MaxAttempts int
	EditPasses  int
	Rand        *rand.Rand
}

// Orchestrator is the top-level run driver: for each enabled category it
// fetches, filters, and batch-processes, rolling per-run counts into the
// lifetime accumulator when the run ends for any reason.
type Orchestrator struct {
	prefs    domain.Preferences
	fetcher  *fetch.Fetcher
	sched    *Scheduler
	led      *ledger.Ledger
	lifetime *domain.Lifetime
	log      *slog.Logger
}

// New builds an Orchestrator with default configuration.
func New(client domain.Capability, prefs domain.Preferences, led *ledger.Ledger, life *domain.Lifetime, log *slog.Logger) *Orchestrator {
	return NewWithConfig(client, prefs, led, life, log, Config{})
}

// NewWithConfig builds an Orchestrator with explicit engine tuning.
func NewWithConfig(client domain.Capability, prefs domain.Preferences, led *ledger.Ledger, life *domain.Lifetime, log *slog.Logger, cfg Config) *Orchestrator {
	proc := NewProcessor(client, scrub.New(cfg.Rand), led, log)
	if cfg.MaxAttempts > 0 {
		proc.maxAttempts = cfg.MaxAttempts
	}
	if cfg.EditPasses > 0 {
		proc.editPasses = cfg.EditPasses
	}

	sched := NewScheduler(proc, led, log)
	if cfg.BatchSize > 0 {
		sched.batchSize = cfg.BatchSize
	}
	if cfg.Workers > 0 {
		sched.workers = cfg.Workers
	}
	if cfg.Cooldown > 0 {
		sched.cooldown = cfg.Cooldown
	}

	return &Orchestrator{
		prefs:    prefs,
		fetcher:  fetch.New(client, log),
		sched:    sched,
		led:      led,
		lifetime: life,
		log:      log,
	}
}

// Run executes one full pass over every enabled category and returns the
// per-run counters. Categories are processed in priority order: posts and
// comments are fully handled before the vote/saved/hidden listings are even
// fetched, since deleting a post changes what clearing a vote on it means,
// and fetching content about to be deleted wastes rate-limited calls.
//
// The ledger is flushed and the lifetime counters rolled even when the run
// ends by cancellation. Item-level failures never surface here; the
// returned error is non-nil only for cancellation.
func (o *Orchestrator) Run(ctx context.Context) (domain.Counters, error) {
	run := domain.NewCounters()

	defer func() {
		if !o.prefs.DryRun {
			if err := o.led.Flush(); err != nil {
				o.log.Error("final ledger flush failed", "err", err)
			}
		}
		o.lifetime.Roll(run)
	}()

	for _, cat := range domain.Categories {
		if ctx.Err() != nil {
			break
		}
		if !o.prefs.Enabled(cat) {
			o.log.Info("category not selected, skipping fetch", "category", cat.String())
			continue
		}

		items, err := o.fetcher.FetchCategory(ctx, cat, o.prefs)
		if err != nil && ctx.Err() == nil {
			o.log.Error("fetch failed, skipping category", "category", cat.String(), "err", err)
			continue
		}

		work := o.applyFilters(items, cat)
		o.log.Info("processing category", "category", cat.String(),
			"fetched", len(items), "after_filters", len(work))

		out := o.sched.RunCategory(ctx, work, cat, o.prefs)
		run.Record(cat, out)
	}

	o.log.Info("run complete",
		"deleted", run.TotalDeleted(), "edited", run.TotalEdited(),
		"lifetime_runs", o.lifetime.Runs+1)
	return run, ctx.Err()
}

// applyFilters drops items the preferences or ledger exclude, before any
// remote mutation calls are spent on them. The processor re-checks against
// freshly resolved info; this pass works on the listing snapshot.
func (o *Orchestrator) applyFilters(items []domain.Item, cat domain.Category) []domain.Item {
	var work []domain.Item
	for _, it := range items {
		ok, reason := filter.ShouldProcess(it, o.prefs, o.led)
		if !ok {
			o.log.Debug("filtered out", "category", cat.String(), "id", it.ID, "reason", reason)
			continue
		}
		work = append(work, it)
	}
	return work
}
