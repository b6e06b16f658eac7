package domain

import (
	"fmt"
	"strings"
	"time"
)

// EditMode selects what happens to an editable item (comment or text post).
type EditMode int

const (
	// EditThenDelete overwrites the text, then deletes. Default.
	EditThenDelete EditMode = iota
	// EditOnly overwrites the text and leaves the item in place.
	EditOnly
	// DeleteOnly deletes without touching the text first.
	DeleteOnly
)

func (m EditMode) String() string {
	switch m {
	case EditOnly:
		return "only-edit"
	case DeleteOnly:
		return "delete-without-edit"
	}
	return "edit-then-delete"
}

// Preferences is the finalized, immutable-per-run configuration produced by
// the front end. The engine only reads it.
type Preferences struct {
	DeleteComments  bool
	DeletePosts     bool
	DeleteSaved     bool
	DeleteUpvotes   bool
	DeleteDownvotes bool
	DeleteHidden    bool

	CommentMode EditMode
	PostMode    EditMode

	// Karma thresholds: an item is preserved when its score is greater than
	// or equal to the threshold. Nil means no threshold.
	CommentKarmaThreshold *int
	PostKarmaThreshold    *int

	PreserveGilded        bool
	PreserveDistinguished bool

	// Whitelist preserves the named subreddits; blacklist restricts
	// processing to exactly the named subreddits. Both are case-insensitive
	// and mutually exclusive.
	WhitelistSubreddits []string
	BlacklistSubreddits []string

	// Inclusive date bounds on item creation. Nil means unbounded.
	StartDate *time.Time
	EndDate   *time.Time

	DryRun bool

	// CustomText replaces the random filler during edit passes when set.
	CustomText string

	// Advertise swaps the replacement text for a promotional message with
	// probability AdChance (0 means use the default).
	Advertise bool
	AdChance  float64

	// ExportDir points at an unpacked Reddit data export; when set, posts
	// and comments are sourced from its CSV files instead of live listings.
	ExportDir string
}

// Enabled reports whether the given category is selected for processing.
func (p Preferences) Enabled(c Category) bool {
	switch c {
	case CategoryComments:
		return p.DeleteComments
	case CategoryPosts:
		return p.DeletePosts
	case CategorySaved:
		return p.DeleteSaved
	case CategoryUpvotes:
		return p.DeleteUpvotes
	case CategoryDownvotes:
		return p.DeleteDownvotes
	case CategoryHidden:
		return p.DeleteHidden
	}
	return false
}

// ModeFor returns the edit mode for an editable category.
func (p Preferences) ModeFor(c Category) EditMode {
	if c == CategoryPosts {
		return p.PostMode
	}
	return p.CommentMode
}

// ThresholdFor returns the karma threshold for an editable category,
// nil when unset.
func (p Preferences) ThresholdFor(c Category) *int {
	if c == CategoryPosts {
		return p.PostKarmaThreshold
	}
	return p.CommentKarmaThreshold
}

// Validate rejects preference combinations that must never reach the engine.
// The front end calls this before starting a run.
func (p Preferences) Validate() error {
	if len(p.WhitelistSubreddits) > 0 && len(p.BlacklistSubreddits) > 0 {
		return fmt.Errorf("whitelist and blacklist are mutually exclusive")
	}
	if p.StartDate != nil && p.EndDate != nil && p.EndDate.Before(*p.StartDate) {
		return fmt.Errorf("end date %s precedes start date %s",
			p.EndDate.Format("2006-01-02"), p.StartDate.Format("2006-01-02"))
	}
	if p.AdChance < 0 || p.AdChance > 1 {
		return fmt.Errorf("advertise chance %.2f outside [0,1]", p.AdChance)
	}
	return nil
}

// AnySelected reports whether at least one category is enabled.
func (p Preferences) AnySelected() bool {
	for _, c := range Categories {
		if p.Enabled(c) {
			return true
		}
	}
	return false
}

// InWhitelist reports case-insensitive membership of sub in the whitelist.
func (p Preferences) InWhitelist(sub string) bool {
	return containsFold(p.WhitelistSubreddits, sub)
}

// InBlacklist reports case-insensitive membership of sub in the blacklist.
func (p Preferences) InBlacklist(sub string) bool {
	return containsFold(p.BlacklistSubreddits, sub)
}

func containsFold(list []string, s string) bool {
	for _, v := range list {
		if strings.EqualFold(v, s) {
			return true
		}
	}
	return false
}
