// Package engine drives filtered items through the removal pipeline:
// a per-item state machine, a batched worker pool, and the run-level
// orchestrator.
package engine

import (
	"context"
	"errors"
	"log/slog"

	"github.com/qepting91/reddit-scrubber/internal/backoff"
	"github.com/qepting91/reddit-scrubber/internal/domain"
	"github.com/qepting91/reddit-scrubber/internal/filter"
	"github.com/qepting91/reddit-scrubber/internal/ledger"
	"github.com/qepting91/reddit-scrubber/internal/scrub"
)

// procState is the item state machine: FetchInfo -> Filter -> Act ->
// Done | Skipped | Failed, with Cancelled reachable from any wait point.
type procState int

const (
	stateFetchInfo procState = iota
	stateFilter
	stateAct
	stateDone
	stateSkipped
	stateFailed
	stateCancelled
)

// callResult summarizes one remote call driven through the retry loop.
type callResult int

const (
	callOK callResult = iota
	// callNoop: the remote state already matches the goal (archived vote).
	callNoop
	// callSkipped: the item is inaccessible; not a failure.
	callSkipped
	// callFailed: unexpected error, no retry.
	callFailed
	// callExhausted: retry budget spent.
	callExhausted
	callCancelled
)

// Processor runs the per-item state machine. Safe for concurrent use by
// batch workers: all mutable state lives in the ledger, which guards itself.
type Processor struct {
	client      domain.Capability
	gen         *scrub.Generator
	led         *ledger.Ledger
	log         *slog.Logger
	maxAttempts int
	editPasses  int
}

// NewProcessor creates a Processor with the default retry budget (5
// attempts) and edit-pass count (3).
func NewProcessor(client domain.Capability, gen *scrub.Generator, led *ledger.Ledger, log *slog.Logger) *Processor {
	return &Processor{
		client:      client,
		gen:         gen,
		led:         led,
		log:         log,
		maxAttempts: 5,
		editPasses:  3,
	}
}

// Process drives one item to a terminal state and returns what changed.
// Failures never escape: an item that cannot be processed is logged and
// contributes a zero outcome. A cancelled item is not recorded in the
// ledger, so a future run picks it up again.
func (p *Processor) Process(ctx context.Context, item domain.Item, cat domain.Category, prefs domain.Preferences) domain.Outcome {
	var out domain.Outcome
	current := item
	state := stateFetchInfo

	for {
		if ctx.Err() != nil {
			return out
		}
		switch state {
		case stateFetchInfo:
			current, state = p.fetchInfo(ctx, item, cat)
		case stateFilter:
			ok, reason := filter.ShouldProcess(current, prefs, p.led)
			if !ok {
				p.log.Info("skipping item", "category", cat.String(), "id", current.ID, "reason", reason)
				state = stateSkipped
			} else {
				state = stateAct
			}
		case stateAct:
			state = p.act(ctx, current, cat, prefs, &out)
		case stateDone:
			if !prefs.DryRun {
				p.led.Add(current.ID)
			}
			return out
		case stateSkipped, stateFailed, stateCancelled:
			return out
		}
	}
}

// fetchInfo resolves fresh item details. Exhausting the retry budget here
// skips the item rather than failing it: the listing snapshot may simply
// be stale.
func (p *Processor) fetchInfo(ctx context.Context, item domain.Item, cat domain.Category) (domain.Item, procState) {
	var resolved domain.Item
	res := p.call(ctx, "info", item.FullID, func() error {
		var err error
		resolved, err = p.client.Info(ctx, item.FullID)
		return err
	})
	switch res {
	case callOK:
		return resolved, stateFilter
	case callCancelled:
		return item, stateCancelled
	case callFailed:
		return item, stateFailed
	default:
		p.log.Info("item info unavailable, skipping", "category", cat.String(), "id", item.ID)
		return item, stateSkipped
	}
}

// act performs the category-specific mutation.
func (p *Processor) act(ctx context.Context, item domain.Item, cat domain.Category, prefs domain.Preferences, out *domain.Outcome) procState {
	switch cat {
	case domain.CategoryComments, domain.CategoryPosts:
		return p.actEditable(ctx, item, cat, prefs, out)
	case domain.CategorySaved:
		return p.actSimple(ctx, item, cat, prefs, out, "unsave", func() error {
			return p.client.Unsave(ctx, item)
		})
	case domain.CategoryUpvotes, domain.CategoryDownvotes:
		return p.actSimple(ctx, item, cat, prefs, out, "clearvote", func() error {
			return p.client.ClearVote(ctx, item)
		})
	case domain.CategoryHidden:
		return p.actSimple(ctx, item, cat, prefs, out, "unhide", func() error {
			return p.client.Unhide(ctx, item)
		})
	}
	return stateFailed
}

// actSimple covers the single-call actions: unsave, clear-vote, unhide.
func (p *Processor) actSimple(ctx context.Context, item domain.Item, cat domain.Category, prefs domain.Preferences, out *domain.Outcome, op string, fn func() error) procState {
	if prefs.DryRun {
		p.log.Info("[dry run] would "+op, "category", cat.String(), "id", item.ID)
		out.Deleted++
		return stateDone
	}
	switch p.call(ctx, op, item.FullID, fn) {
	case callOK:
		out.Deleted++
		return stateDone
	case callNoop:
		// Archived content: the vote can never change again, which is as
		// done as done gets. Counted and recorded so reruns skip it.
		p.log.Info("treating archived-content error as success", "category", cat.String(), "id", item.ID)
		out.Deleted++
		return stateDone
	case callSkipped:
		return stateSkipped
	case callCancelled:
		return stateCancelled
	default:
		return stateFailed
	}
}

// actEditable covers comments and posts under the three edit modes.
func (p *Processor) actEditable(ctx context.Context, item domain.Item, cat domain.Category, prefs domain.Preferences, out *domain.Outcome) procState {
	mode := prefs.ModeFor(cat)

	// Link posts have no text to overwrite.
	if item.Kind == domain.KindPost && !item.Editable {
		if mode == domain.EditOnly {
			p.log.Info("link post cannot be edited; no action in only-edit mode", "id", item.ID)
			return stateSkipped
		}
		p.log.Info("link post cannot be edited; deleting directly", "id", item.ID)
		return p.delete(ctx, item, prefs, out)
	}

	switch mode {
	case domain.DeleteOnly:
		return p.delete(ctx, item, prefs, out)

	case domain.EditOnly:
		edits, cancelled := p.runEditPasses(ctx, item, prefs)
		if cancelled {
			return stateCancelled
		}
		if edits == 0 {
			p.log.Error("all edit passes failed", "id", item.ID)
			return stateFailed
		}
		out.Edited++
		return stateDone

	default: // EditThenDelete
		if prefs.DryRun {
			p.log.Info("[dry run] would edit then delete", "category", cat.String(), "id", item.ID, "preview", preview(item.Text()))
			out.Deleted++
			return stateDone
		}
		edits, cancelled := p.runEditPasses(ctx, item, prefs)
		if cancelled {
			return stateCancelled
		}
		if edits == 0 {
			// Deleting without a successful overwrite would leave the
			// original text recoverable from caches; leave it untouched.
			p.log.Error("all edit passes failed; leaving item untouched", "id", item.ID)
			return stateFailed
		}
		return p.delete(ctx, item, prefs, out)
	}
}

// runEditPasses overwrites the item's text editPasses times with fresh
// replacement text, returning how many passes succeeded. Multiple passes
// push the original content out of edit-history scrapers.
func (p *Processor) runEditPasses(ctx context.Context, item domain.Item, prefs domain.Preferences) (succeeded int, cancelled bool) {
	if prefs.DryRun {
		p.log.Info("[dry run] would overwrite text", "id", item.ID, "passes", p.editPasses)
		return p.editPasses, false
	}
	for pass := 0; pass < p.editPasses; pass++ {
		text := p.gen.Next(prefs)
		switch p.call(ctx, "edit", item.FullID, func() error {
			return p.client.Edit(ctx, item, text)
		}) {
		case callOK:
			succeeded++
		case callCancelled:
			return succeeded, true
		case callSkipped:
			// Inaccessible now means inaccessible for every later pass.
			return succeeded, false
		}
	}
	return succeeded, false
}

func (p *Processor) delete(ctx context.Context, item domain.Item, prefs domain.Preferences, out *domain.Outcome) procState {
	if prefs.DryRun {
		p.log.Info("[dry run] would delete", "id", item.ID, "preview", preview(item.Text()))
		out.Deleted++
		return stateDone
	}
	switch p.call(ctx, "delete", item.FullID, func() error {
		return p.client.Delete(ctx, item)
	}) {
	case callOK:
		p.log.Info("deleted item", "id", item.ID, "preview", preview(item.Text()))
		out.Deleted++
		return stateDone
	case callSkipped:
		return stateSkipped
	case callCancelled:
		return stateCancelled
	default:
		return stateFailed
	}
}

// call runs one remote operation through the retry loop, consulting the
// backoff classifier on every failure. Waits abort promptly on cancellation.
func (p *Processor) call(ctx context.Context, op, id string, fn func() error) callResult {
	for attempt := 0; attempt < p.maxAttempts; attempt++ {
		if ctx.Err() != nil {
			return callCancelled
		}
		err := fn()
		if err == nil {
			return callOK
		}
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return callCancelled
		}

		d := backoff.Classify(err, attempt, p.maxAttempts)
		switch d.Action {
		case backoff.ActionRetry:
			p.log.Info("remote call throttled, retrying",
				"op", op, "id", id, "attempt", attempt+1, "delay", d.Delay, "err", err)
			if backoff.Wait(ctx, d.Delay) != nil {
				return callCancelled
			}
		case backoff.ActionSkipNoop:
			return callNoop
		case backoff.ActionSkip:
			p.log.Info("item inaccessible", "op", op, "id", id, "err", err)
			return callSkipped
		case backoff.ActionFail:
			p.log.Error("unexpected error", "op", op, "id", id, "err", err)
			return callFailed
		case backoff.ActionExhausted:
			p.log.Error("retries exhausted", "op", op, "id", id, "attempts", p.maxAttempts)
			return callExhausted
		}
	}
	return callExhausted
}

// preview truncates item text for log lines.
func preview(text string) string {
	const max = 25
	if len(text) <= max {
		return text
	}
	return text[:max] + "..."
}
