package domain

import (
	"context"
	"strings"
	"time"
)

// Category identifies one of the six kinds of user content the scrubber
// can act on. Keeping this a closed enum (instead of string keys) means
// illegal category/action combinations don't survive compilation.
type Category int

const (
	CategoryComments Category = iota
	CategoryPosts
	CategorySaved
	CategoryUpvotes
	CategoryDownvotes
	CategoryHidden
)

// Categories lists every category in processing priority order: posts and
// comments are handled before vote/saved/hidden listings because deleting
// a post changes what vote-clearing on it means.
var Categories = []Category{
	CategoryPosts,
	CategoryComments,
	CategorySaved,
	CategoryUpvotes,
	CategoryDownvotes,
	CategoryHidden,
}

func (c Category) String() string {
	switch c {
	case CategoryComments:
		return "comments"
	case CategoryPosts:
		return "posts"
	case CategorySaved:
		return "saved"
	case CategoryUpvotes:
		return "upvotes"
	case CategoryDownvotes:
		return "downvotes"
	case CategoryHidden:
		return "hidden"
	}
	return "unknown"
}

// Editable reports whether items in this category carry replacement text
// before deletion. Only authored comments and posts qualify.
func (c Category) Editable() bool {
	return c == CategoryComments || c == CategoryPosts
}

// Kind distinguishes the two Reddit thing types the scrubber handles.
type Kind int

const (
	KindComment Kind = iota
	KindPost
)

func (k Kind) String() string {
	if k == KindComment {
		return "comment"
	}
	return "post"
}

// Sort is a Reddit listing sort order.
type Sort string

const (
	SortControversial Sort = "controversial"
	SortTop           Sort = "top"
	SortNew           Sort = "new"
	SortHot           Sort = "hot"
)

// Sorts holds every sort order used when enumerating a user's posts and
// comments. The listings overlap heavily; fetching all four and deduplicating
// by ID is what gets complete coverage.
var Sorts = []Sort{SortControversial, SortTop, SortNew, SortHot}

// NeedsTimeFilter reports whether this sort requires the explicit all-time
// filter parameter. "new" and "hot" reject it.
func (s Sort) NeedsTimeFilter() bool {
	return s == SortControversial || s == SortTop
}

// Item is a transient handle on a remote comment or post. The scrubber never
// owns the content; it holds this snapshot plus the IDs it persists.
type Item struct {
	ID            string // base36 id, e.g. "abc123"
	FullID        string // type-prefixed fullname, e.g. "t1_abc123"
	Kind          Kind
	Title         string // posts only
	Body          string // comment body or post selftext
	Score         int
	Subreddit     string
	Created       time.Time
	Gilded        bool
	Distinguished bool
	// Editable is false for link posts, which have no text to replace.
	Editable bool
}

// Text returns the user-authored text of the item: title for posts,
// body for comments.
func (it Item) Text() string {
	if it.Kind == KindPost {
		return it.Title
	}
	return it.Body
}

// Removed reports whether the item already shows a deletion sentinel.
func (it Item) Removed() bool {
	body := strings.TrimSpace(it.Body)
	return body == "[removed]" || body == "[deleted]"
}

// Capability is the authenticated session handed to the engine by the auth
// layer. It can enumerate the account's own content and mutate individual
// items. Implementations must surface the domain error taxonomy
// (ErrForbidden, ErrNotFound, ErrArchivedVote, *RateLimitError) for
// distinguishable remote conditions.
type Capability interface {
	ListComments(ctx context.Context, sort Sort) ([]Item, error)
	ListPosts(ctx context.Context, sort Sort) ([]Item, error)
	ListSaved(ctx context.Context) ([]Item, error)
	ListUpvoted(ctx context.Context) ([]Item, error)
	ListDownvoted(ctx context.Context) ([]Item, error)
	ListHidden(ctx context.Context) ([]Item, error)

	// Info resolves fresh item details by fullname.
	Info(ctx context.Context, fullID string) (Item, error)

	Edit(ctx context.Context, item Item, text string) error
	Delete(ctx context.Context, item Item) error
	Unsave(ctx context.Context, item Item) error
	ClearVote(ctx context.Context, item Item) error
	Unhide(ctx context.Context, item Item) error
}
