package remote

import (
	"errors"
	"net/http"
	"strings"

	"github.com/loganintech/go-reddit/v2/reddit"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

// mapErr converts go-reddit errors into the domain taxonomy the backoff
// classifier understands. Unrecognized errors pass through untouched and
// end up treated as unexpected item failures.
func mapErr(err error) error {
	if err == nil {
		return nil
	}

	var rle *reddit.RateLimitError
	if errors.As(err, &rle) {
		return &domain.RateLimitError{Hint: rle.Message}
	}

	var er *reddit.ErrorResponse
	if errors.As(err, &er) && er.Response != nil {
		switch er.Response.StatusCode {
		case http.StatusBadRequest:
			// Clearing a vote on archived content is the one known 400.
			return domain.ErrArchivedVote
		case http.StatusForbidden:
			return domain.ErrForbidden
		case http.StatusNotFound:
			return domain.ErrNotFound
		case http.StatusTooManyRequests:
			return &domain.RateLimitError{Hint: er.Error()}
		}
	}

	// Reddit also reports throttling through JSON-level API errors whose
	// concrete type varies; the message is the stable part.
	msg := strings.ToLower(err.Error())
	if strings.Contains(msg, "ratelimit") || strings.Contains(msg, "doing that too much") {
		return &domain.RateLimitError{Hint: err.Error()}
	}

	return err
}
