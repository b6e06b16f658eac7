// Package filter decides whether a fetched item should be processed or
// preserved, based on the user's preferences and the processed-ID ledger.
package filter

import (
	"fmt"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

// Ledger is the read side of the processed-ID set.
type Ledger interface {
	Contains(id string) bool
}

// ShouldProcess runs the ordered keep/skip checks against one item. The
// first failing check wins; reason names it for the progress log. The
// order matters: cheap local checks come before anything else, and ledger
// membership is last so every earlier skip reason is reported accurately.
func ShouldProcess(item domain.Item, prefs domain.Preferences, led Ledger) (bool, string) {
	if item.Removed() {
		return false, "already removed"
	}

	if prefs.StartDate != nil && item.Created.Before(*prefs.StartDate) {
		return false, fmt.Sprintf("created %s before start date", item.Created.Format("2006-01-02"))
	}
	if prefs.EndDate != nil && item.Created.After(*prefs.EndDate) {
		return false, fmt.Sprintf("created %s after end date", item.Created.Format("2006-01-02"))
	}

	// Whitelist preserves the named subreddits; blacklist restricts
	// processing to exactly the named subreddits.
	if len(prefs.WhitelistSubreddits) > 0 && prefs.InWhitelist(item.Subreddit) {
		return false, fmt.Sprintf("r/%s is whitelisted", item.Subreddit)
	}
	if len(prefs.BlacklistSubreddits) > 0 && !prefs.InBlacklist(item.Subreddit) {
		return false, fmt.Sprintf("r/%s is not in the blacklist", item.Subreddit)
	}

	// The threshold is the minimum score to preserve: score >= threshold
	// keeps the item.
	if threshold := thresholdFor(item, prefs); threshold != nil && item.Score >= *threshold {
		return false, fmt.Sprintf("score %d meets karma threshold %d", item.Score, *threshold)
	}

	if prefs.PreserveGilded && item.Gilded {
		return false, "gilded"
	}
	if prefs.PreserveDistinguished && item.Distinguished {
		return false, "distinguished"
	}

	if led != nil && led.Contains(item.ID) {
		return false, "already processed in a previous run"
	}

	return true, ""
}

func thresholdFor(item domain.Item, prefs domain.Preferences) *int {
	if item.Kind == domain.KindPost {
		return prefs.PostKarmaThreshold
	}
	return prefs.CommentKarmaThreshold
}
