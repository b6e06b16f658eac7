package history

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/qepting91/reddit-scrubber/internal/domain"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func countersWith(deleted, edited map[domain.Category]int) domain.Counters {
	c := domain.NewCounters()
	for cat, n := range deleted {
		c.Deleted[cat] = n
	}
	for cat, n := range edited {
		c.Edited[cat] = n
	}
	return c
}

func TestRecordAndTotals(t *testing.T) {
	s := openTestStore(t)
	started := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	first := countersWith(
		map[domain.Category]int{domain.CategoryComments: 12, domain.CategoryPosts: 3},
		map[domain.Category]int{domain.CategoryComments: 2},
	)
	second := countersWith(
		map[domain.Category]int{domain.CategoryComments: 5, domain.CategorySaved: 7},
		nil,
	)

	if _, err := s.RecordRun("alice", started, started.Add(time.Minute), first); err != nil {
		t.Fatalf("record first run: %v", err)
	}
	if _, err := s.RecordRun("alice", started.Add(time.Hour), started.Add(time.Hour+time.Minute), second); err != nil {
		t.Fatalf("record second run: %v", err)
	}

	totals, runs, err := s.Totals("alice")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if runs != 2 {
		t.Errorf("runs = %d, want 2", runs)
	}

	want := countersWith(
		map[domain.Category]int{
			domain.CategoryComments: 17,
			domain.CategoryPosts:    3,
			domain.CategorySaved:    7,
		},
		map[domain.Category]int{domain.CategoryComments: 2},
	)
	if diff := cmp.Diff(want, totals); diff != "" {
		t.Errorf("totals mismatch (-want +got):\n%s", diff)
	}
}

func TestTotalsIsolatedPerUser(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	run := countersWith(map[domain.Category]int{domain.CategoryComments: 4}, nil)
	if _, err := s.RecordRun("alice", now, now, run); err != nil {
		t.Fatal(err)
	}

	totals, runs, err := s.Totals("bob")
	if err != nil {
		t.Fatalf("totals: %v", err)
	}
	if runs != 0 {
		t.Errorf("runs = %d, want 0 for another user", runs)
	}
	if got := totals.TotalDeleted(); got != 0 {
		t.Errorf("deleted = %d, want 0 for another user", got)
	}
}

func TestRecordZeroRunStillCounts(t *testing.T) {
	s := openTestStore(t)
	now := time.Now()

	if _, err := s.RecordRun("alice", now, now, domain.NewCounters()); err != nil {
		t.Fatalf("record empty run: %v", err)
	}

	totals, runs, err := s.Totals("alice")
	if err != nil {
		t.Fatal(err)
	}
	if runs != 1 {
		t.Errorf("runs = %d, want 1", runs)
	}
	if got := totals.TotalDeleted(); got != 0 {
		t.Errorf("deleted = %d, want 0", got)
	}
}

func TestRecentRuns(t *testing.T) {
	s := openTestStore(t)
	base := time.Date(2025, 6, 1, 10, 0, 0, 0, time.UTC)

	for i := 0; i < 3; i++ {
		run := countersWith(map[domain.Category]int{domain.CategoryComments: i + 1}, nil)
		if _, err := s.RecordRun("alice", base.Add(time.Duration(i)*time.Hour), base.Add(time.Duration(i)*time.Hour+time.Minute), run); err != nil {
			t.Fatal(err)
		}
	}

	recent, err := s.RecentRuns("alice", 2)
	if err != nil {
		t.Fatalf("recent runs: %v", err)
	}
	if len(recent) != 2 {
		t.Fatalf("got %d runs, want 2", len(recent))
	}
	// Newest first.
	if recent[0].Deleted != 3 || recent[1].Deleted != 2 {
		t.Errorf("got deleted counts %d, %d; want 3, 2", recent[0].Deleted, recent[1].Deleted)
	}
	if recent[0].Username != "alice" {
		t.Errorf("username = %q, want alice", recent[0].Username)
	}
}
