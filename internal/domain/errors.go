package domain

import (
	"errors"
	"fmt"
)

// Sentinel errors for the distinguishable remote conditions the engine
// reacts to. Anything else coming out of a Capability is treated as an
// unexpected item-level failure.
var (
	// ErrForbidden means the item can no longer be accessed by this account.
	ErrForbidden = errors.New("access to item forbidden")

	// ErrNotFound means the item no longer exists remotely.
	ErrNotFound = errors.New("item not found")

	// ErrArchivedVote is Reddit's HTTP 400 on clearing a vote from archived
	// content. The vote is effectively immutable, which for a scrubber is as
	// good as cleared.
	ErrArchivedVote = errors.New("cannot change vote on archived content")
)

// RateLimitError is a throttling response from the remote API. Hint carries
// the human-readable server message, which usually names a wait duration.
type RateLimitError struct {
	Hint string
}

func (e *RateLimitError) Error() string {
	return fmt.Sprintf("rate limited: %s", e.Hint)
}

// IsRateLimit reports whether err is a throttling signal.
func IsRateLimit(err error) bool {
	var rl *RateLimitError
	return errors.As(err, &rl)
}
