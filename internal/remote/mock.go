package remote

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

// Call records one invocation of a mock operation.
type Call struct {
	Op     string
	FullID string
	Text   string
}

// Mock implements domain.Capability in memory. It backs the "mock" runtime
// mode and the engine tests: listings and item info are seeded explicitly,
// and per-operation error scripts let tests drive the retry machinery.
type Mock struct {
	mu sync.Mutex

	comments  map[domain.Sort][]domain.Item
	posts     map[domain.Sort][]domain.Item
	saved     []domain.Item
	upvoted   []domain.Item
	downvoted []domain.Item
	hidden    []domain.Item
	info      map[string]domain.Item

	// errs queues scripted errors per operation name; each call pops one.
	errs  map[string][]error
	calls []Call

	// Latency is applied to every call, for exercising concurrency.
	Latency time.Duration
}

// NewMock returns an empty in-memory capability.
func NewMock() *Mock {
	return &Mock{
		comments: make(map[domain.Sort][]domain.Item),
		posts:    make(map[domain.Sort][]domain.Item),
		info:     make(map[string]domain.Item),
		errs:     make(map[string][]error),
	}
}

// AddComments seeds the comment listing for one sort order and registers
// the items for info resolution.
func (m *Mock) AddComments(sort domain.Sort, items ...domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.comments[sort] = append(m.comments[sort], items...)
	m.register(items)
}

// AddPosts seeds the post listing for one sort order.
func (m *Mock) AddPosts(sort domain.Sort, items ...domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.posts[sort] = append(m.posts[sort], items...)
	m.register(items)
}

// AddSaved seeds the saved listing.
func (m *Mock) AddSaved(items ...domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, items...)
	m.register(items)
}

// AddUpvoted seeds the upvoted listing.
func (m *Mock) AddUpvoted(items ...domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.upvoted = append(m.upvoted, items...)
	m.register(items)
}

// AddDownvoted seeds the downvoted listing.
func (m *Mock) AddDownvoted(items ...domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.downvoted = append(m.downvoted, items...)
	m.register(items)
}

// AddHidden seeds the hidden listing.
func (m *Mock) AddHidden(items ...domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.hidden = append(m.hidden, items...)
	m.register(items)
}

// SetInfo overrides the resolved details for one item.
func (m *Mock) SetInfo(item domain.Item) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.info[item.FullID] = item
}

func (m *Mock) register(items []domain.Item) {
	for _, it := range items {
		if _, ok := m.info[it.FullID]; !ok {
			m.info[it.FullID] = it
		}
	}
}

// FailNext queues errors for an operation ("info", "edit", "delete",
// "unsave", "clearvote", "unhide"); each subsequent call pops one.
func (m *Mock) FailNext(op string, errs ...error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.errs[op] = append(m.errs[op], errs...)
}

// Calls returns a snapshot of every recorded operation.
func (m *Mock) Calls() []Call {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Call, len(m.calls))
	copy(out, m.calls)
	return out
}

// CountOp counts recorded calls of one operation.
func (m *Mock) CountOp(op string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.Op == op {
			n++
		}
	}
	return n
}

var mutationOps = map[string]bool{
	"edit": true, "delete": true, "unsave": true, "clearvote": true, "unhide": true,
}

// MutationCount counts recorded calls that change remote state; listings
// and info lookups are read-only.
func (m *Mock) MutationCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if mutationOps[c.Op] {
			n++
		}
	}
	return n
}

func (m *Mock) call(ctx context.Context, op, fullID, text string) error {
	if m.Latency > 0 {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(m.Latency):
		}
	}
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, Call{Op: op, FullID: fullID, Text: text})
	if queue := m.errs[op]; len(queue) > 0 {
		err := queue[0]
		m.errs[op] = queue[1:]
		return err
	}
	return nil
}

func (m *Mock) ListComments(ctx context.Context, sort domain.Sort) ([]domain.Item, error) {
	if err := m.call(ctx, "list-comments", string(sort), ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Item(nil), m.comments[sort]...), nil
}

func (m *Mock) ListPosts(ctx context.Context, sort domain.Sort) ([]domain.Item, error) {
	if err := m.call(ctx, "list-posts", string(sort), ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Item(nil), m.posts[sort]...), nil
}

func (m *Mock) ListSaved(ctx context.Context) ([]domain.Item, error) {
	if err := m.call(ctx, "list-saved", "", ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Item(nil), m.saved...), nil
}

func (m *Mock) ListUpvoted(ctx context.Context) ([]domain.Item, error) {
	if err := m.call(ctx, "list-upvoted", "", ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Item(nil), m.upvoted...), nil
}

func (m *Mock) ListDownvoted(ctx context.Context) ([]domain.Item, error) {
	if err := m.call(ctx, "list-downvoted", "", ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Item(nil), m.downvoted...), nil
}

func (m *Mock) ListHidden(ctx context.Context) ([]domain.Item, error) {
	if err := m.call(ctx, "list-hidden", "", ""); err != nil {
		return nil, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]domain.Item(nil), m.hidden...), nil
}

func (m *Mock) Info(ctx context.Context, fullID string) (domain.Item, error) {
	if err := m.call(ctx, "info", fullID, ""); err != nil {
		return domain.Item{}, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	it, ok := m.info[fullID]
	if !ok {
		return domain.Item{}, domain.ErrNotFound
	}
	return it, nil
}

func (m *Mock) Edit(ctx context.Context, item domain.Item, text string) error {
	return m.call(ctx, "edit", item.FullID, text)
}

func (m *Mock) Delete(ctx context.Context, item domain.Item) error {
	return m.call(ctx, "delete", item.FullID, "")
}

func (m *Mock) Unsave(ctx context.Context, item domain.Item) error {
	return m.call(ctx, "unsave", item.FullID, "")
}

func (m *Mock) ClearVote(ctx context.Context, item domain.Item) error {
	return m.call(ctx, "clearvote", item.FullID, "")
}

func (m *Mock) Unhide(ctx context.Context, item domain.Item) error {
	return m.call(ctx, "unhide", item.FullID, "")
}

// SeedDemo fills the mock with synthetic content so the "mock" runtime mode
// exercises the whole pipeline without touching Reddit.
func (m *Mock) SeedDemo(perCategory int) {
	now := time.Now().UTC()
	for i := 0; i < perCategory; i++ {
		created := now.Add(-time.Duration(rand.Intn(365*24)) * time.Hour)
		comment := domain.Item{
			ID:        fmt.Sprintf("mc%04d", i),
			FullID:    fmt.Sprintf("t1_mc%04d", i),
			Kind:      domain.KindComment,
			Body:      fmt.Sprintf("simulated comment #%d", i),
			Score:     rand.Intn(500),
			Subreddit: "scrubbertest",
			Created:   created,
			Editable:  true,
		}
		post := domain.Item{
			ID:        fmt.Sprintf("mp%04d", i),
			FullID:    fmt.Sprintf("t3_mp%04d", i),
			Kind:      domain.KindPost,
			Title:     fmt.Sprintf("simulated post #%d", i),
			Body:      "simulated selftext",
			Score:     rand.Intn(500),
			Subreddit: "scrubbertest",
			Created:   created,
			Editable:  i%4 != 0, // sprinkle in link posts
		}
		// Every item appears under "new"; some also under "top" to give the
		// deduplication something to do, same as overlapping live listings.
		m.AddComments(domain.SortNew, comment)
		m.AddPosts(domain.SortNew, post)
		if i%2 == 0 {
			m.AddComments(domain.SortTop, comment)
			m.AddPosts(domain.SortTop, post)
		}
		if i%3 == 0 {
			m.AddSaved(post)
			m.AddUpvoted(post)
		}
		if i%5 == 0 {
			m.AddDownvoted(post)
			m.AddHidden(post)
		}
	}
}
