package engine

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/qepting91/reddit-scrubber/internal/backoff"
	"github.com/qepting91/reddit-scrubber/internal/domain"
	"github.com/qepting91/reddit-scrubber/internal/ledger"
)

const (
	// defaultBatchSize spaces mutation bursts against the rate limiter.
	defaultBatchSize = 50
	// defaultWorkers is wide enough to hide per-item network latency and
	// narrow enough not to hammer the limiter.
	defaultWorkers = 2
	// defaultCooldown is the pause between batches of one category.
	defaultCooldown = 5 * time.Second
)

// Scheduler partitions a category's working set into fixed-size batches and
// runs each through a bounded worker pool. Batches never overlap: keeping
// them strictly sequential makes rate-limit behaviour easy to reason about.
type Scheduler struct {
	proc      *Processor
	led       *ledger.Ledger
	log       *slog.Logger
	batchSize int
	workers   int
	cooldown  time.Duration
}

// NewScheduler creates a Scheduler with production defaults.
func NewScheduler(proc *Processor, led *ledger.Ledger, log *slog.Logger) *Scheduler {
	return &Scheduler{
		proc:      proc,
		led:       led,
		log:       log,
		batchSize: defaultBatchSize,
		workers:   defaultWorkers,
		cooldown:  defaultCooldown,
	}
}

// RunCategory processes every item and returns the aggregate outcome.
// Cancellation mid-batch abandons in-flight work and returns whatever
// was counted so far.
func (s *Scheduler) RunCategory(ctx context.Context, items []domain.Item, cat domain.Category, prefs domain.Preferences) domain.Outcome {
	var total domain.Outcome
	if len(items) == 0 {
		return total
	}

	batches := partition(items, s.batchSize)
	for i, batch := range batches {
		s.log.Info("starting batch", "category", cat.String(), "batch", i+1, "of", len(batches), "size", len(batch))

		out, completed := s.runBatch(ctx, batch, cat, prefs)
		total.Add(out)
		if !completed {
			s.log.Info("batch cancelled", "category", cat.String(), "batch", i+1)
			return total
		}

		// Persist progress before the cooldown so an interrupt between
		// batches loses nothing.
		if !prefs.DryRun {
			if err := s.led.Flush(); err != nil {
				s.log.Error("ledger flush failed", "err", err)
			}
		}
		s.log.Info("finished batch", "category", cat.String(), "batch", i+1,
			"deleted_so_far", total.Deleted, "edited_so_far", total.Edited, "total_items", len(items))

		if i < len(batches)-1 {
			if backoff.Wait(ctx, s.cooldown) != nil {
				return total
			}
		}
	}
	return total
}

// runBatch fans the batch out to a fresh worker pool and aggregates results
// on the coordinator. The second return is false when the batch was cut
// short by cancellation.
func (s *Scheduler) runBatch(ctx context.Context, batch []domain.Item, cat domain.Category, prefs domain.Preferences) (domain.Outcome, bool) {
	jobs := make(chan domain.Item)
	results := make(chan domain.Outcome, len(batch))

	var wg sync.WaitGroup
	for w := 0; w < s.workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for item := range jobs {
				if ctx.Err() != nil {
					return
				}
				results <- s.proc.Process(ctx, item, cat, prefs)
			}
		}()
	}

	go func() {
		defer close(jobs)
		for _, item := range batch {
			select {
			case jobs <- item:
			case <-ctx.Done():
				return
			}
		}
	}()

	var out domain.Outcome
	for received := 0; received < len(batch); received++ {
		select {
		case r := <-results:
			out.Add(r)
		case <-ctx.Done():
			// Abandon in-flight items; they were not ledger-recorded, so
			// the next run retries them.
			return out, false
		}
	}
	wg.Wait()
	return out, true
}

func partition(items []domain.Item, size int) [][]domain.Item {
	var batches [][]domain.Item
	for start := 0; start < len(items); start += size {
		end := start + size
		if end > len(items) {
			end = len(items)
		}
		batches = append(batches, items[start:end])
	}
	return batches
}
