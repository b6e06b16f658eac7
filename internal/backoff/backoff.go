// Package backoff decides what to do with a failed remote call: wait and
// retry, skip the item, treat the failure as an expected no-op, or give up.
package backoff

import (
	"context"
	"errors"
	"math/rand"
	"regexp"
	"strconv"
	"time"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

// Action is the classifier's verdict on a failed call.
type Action int

const (
	// ActionRetry means wait Decision.Delay, then try again.
	ActionRetry Action = iota
	// ActionSkip means stop trying; the item is inaccessible. Not a failure.
	ActionSkip
	// ActionSkipNoop means stop trying and count the item as successfully
	// handled: the remote state already matches what we wanted.
	ActionSkipNoop
	// ActionFail means the error is unexpected; the item failed.
	ActionFail
	// ActionExhausted means the retry budget ran out.
	ActionExhausted
)

func (a Action) String() string {
	switch a {
	case ActionRetry:
		return "retry"
	case ActionSkip:
		return "skip"
	case ActionSkipNoop:
		return "skip-noop"
	case ActionFail:
		return "fail"
	}
	return "exhausted"
}

// Decision carries the verdict plus the wait before the next attempt.
type Decision struct {
	Action Action
	Delay  time.Duration
}

// Reddit's throttling hints come in two phrasings. Both name an integer
// wait; the margin below covers the truncation.
var (
	secondsHint = regexp.MustCompile(`(?i)(?:break|pause) for (\d+) second`)
	minutesHint = regexp.MustCompile(`(?i)(?:try again|retry) in (\d+) minute`)
)

// hintMargin is added on top of a server-supplied wait so we never come
// back a moment too early.
const hintMargin = 500 * time.Millisecond

// Classify inspects the error from attempt (zero-based) out of maxAttempts
// and returns what the caller should do next.
func Classify(err error, attempt, maxAttempts int) Decision {
	switch {
	case errors.Is(err, domain.ErrArchivedVote):
		return Decision{Action: ActionSkipNoop}
	case errors.Is(err, domain.ErrForbidden), errors.Is(err, domain.ErrNotFound):
		return Decision{Action: ActionSkip}
	}

	var rl *domain.RateLimitError
	if !errors.As(err, &rl) {
		return Decision{Action: ActionFail}
	}

	if attempt >= maxAttempts-1 {
		return Decision{Action: ActionExhausted}
	}

	if d, ok := parseHint(rl.Hint); ok {
		return Decision{Action: ActionRetry, Delay: d + hintMargin}
	}
	return Decision{Action: ActionRetry, Delay: exponential(attempt)}
}

// parseHint extracts a wait duration from a throttling message.
func parseHint(hint string) (time.Duration, bool) {
	if m := secondsHint.FindStringSubmatch(hint); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return time.Duration(n) * time.Second, true
		}
	}
	if m := minutesHint.FindStringSubmatch(hint); m != nil {
		n, err := strconv.Atoi(m[1])
		if err == nil {
			return time.Duration(n) * time.Minute, true
		}
	}
	return 0, false
}

// exponential is the fallback schedule when the server gave no usable hint:
// 2^attempt seconds plus up to a second of jitter.
func exponential(attempt int) time.Duration {
	base := time.Duration(1<<uint(attempt)) * time.Second
	jitter := time.Duration(rand.Intn(1000)) * time.Millisecond
	return base + jitter
}

// Wait blocks for d or until ctx is cancelled, whichever comes first.
// Returns ctx.Err() on cancellation so retry loops can bail out promptly.
func Wait(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
