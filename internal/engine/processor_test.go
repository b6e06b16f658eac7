package engine

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"math/rand"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"

	"github.com/qepting91/reddit-scrubber/internal/domain"
	"github.com/qepting91/reddit-scrubber/internal/ledger"
	"github.com/qepting91/reddit-scrubber/internal/remote"
	"github.com/qepting91/reddit-scrubber/internal/scrub"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testLedger(t *testing.T) *ledger.Ledger {
	t.Helper()
	led, err := ledger.Load(filepath.Join(t.TempDir(), "ledger.txt"))
	if err != nil {
		t.Fatal(err)
	}
	return led
}

func testProcessor(t *testing.T, m *remote.Mock) (*Processor, *ledger.Ledger) {
	t.Helper()
	led := testLedger(t)
	proc := NewProcessor(m, scrub.New(rand.New(rand.NewSource(1))), led, discardLogger())
	return proc, led
}

func testComment(id string) domain.Item {
	return domain.Item{
		ID:        id,
		FullID:    "t1_" + id,
		Kind:      domain.KindComment,
		Body:      "original text of " + id,
		Score:     1,
		Subreddit: "golang",
		Created:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Editable:  true,
	}
}

func testPost(id string, editable bool) domain.Item {
	return domain.Item{
		ID:        id,
		FullID:    "t3_" + id,
		Kind:      domain.KindPost,
		Title:     "title of " + id,
		Body:      "selftext",
		Score:     1,
		Subreddit: "golang",
		Created:   time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC),
		Editable:  editable,
	}
}

func TestProcessEditThenDelete(t *testing.T) {
	m := remote.NewMock()
	item := testComment("aaa")
	m.SetInfo(item)

	proc, led := testProcessor(t, m)
	out := proc.Process(context.Background(), item, domain.CategoryComments, domain.Preferences{})

	if diff := cmp.Diff(domain.Outcome{Deleted: 1}, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if got := m.CountOp("edit"); got != 3 {
		t.Errorf("edit called %d times, want 3 passes", got)
	}
	if got := m.CountOp("delete"); got != 1 {
		t.Errorf("delete called %d times, want 1", got)
	}
	if !led.Contains("aaa") {
		t.Error("ledger missing processed id")
	}

	// Every edit pass must carry fresh text.
	texts := map[string]bool{}
	for _, c := range m.Calls() {
		if c.Op == "edit" {
			texts[c.Text] = true
		}
	}
	if len(texts) != 3 {
		t.Errorf("got %d distinct replacement texts, want 3", len(texts))
	}
}

func TestProcessOnlyEdit(t *testing.T) {
	m := remote.NewMock()
	item := testComment("aaa")
	m.SetInfo(item)

	proc, _ := testProcessor(t, m)
	prefs := domain.Preferences{CommentMode: domain.EditOnly}
	out := proc.Process(context.Background(), item, domain.CategoryComments, prefs)

	if diff := cmp.Diff(domain.Outcome{Edited: 1}, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if got := m.CountOp("delete"); got != 0 {
		t.Errorf("delete called %d times in only-edit mode", got)
	}
}

func TestProcessDeleteWithoutEdit(t *testing.T) {
	m := remote.NewMock()
	item := testComment("aaa")
	m.SetInfo(item)

	proc, _ := testProcessor(t, m)
	prefs := domain.Preferences{CommentMode: domain.DeleteOnly}
	out := proc.Process(context.Background(), item, domain.CategoryComments, prefs)

	if diff := cmp.Diff(domain.Outcome{Deleted: 1}, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if got := m.CountOp("edit"); got != 0 {
		t.Errorf("edit called %d times in delete-without-edit mode", got)
	}
}

func TestProcessLinkPostOnlyEditDoesNothing(t *testing.T) {
	m := remote.NewMock()
	item := testPost("ppp", false)
	m.SetInfo(item)

	proc, led := testProcessor(t, m)
	prefs := domain.Preferences{PostMode: domain.EditOnly}
	out := proc.Process(context.Background(), item, domain.CategoryPosts, prefs)

	if !out.Zero() {
		t.Errorf("outcome = %+v, want zero", out)
	}
	if got := m.MutationCount(); got != 0 {
		t.Errorf("%d mutation calls on an unactionable item", got)
	}
	if led.Contains("ppp") {
		t.Error("unactioned item recorded in ledger")
	}
}

func TestProcessLinkPostDeletedDirectly(t *testing.T) {
	m := remote.NewMock()
	item := testPost("ppp", false)
	m.SetInfo(item)

	proc, _ := testProcessor(t, m)
	out := proc.Process(context.Background(), item, domain.CategoryPosts, domain.Preferences{})

	if diff := cmp.Diff(domain.Outcome{Deleted: 1}, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if got := m.CountOp("edit"); got != 0 {
		t.Errorf("edit attempted %d times on a link post", got)
	}
}

func TestProcessAllEditPassesFailLeavesUntouched(t *testing.T) {
	m := remote.NewMock()
	item := testComment("aaa")
	m.SetInfo(item)
	m.FailNext("edit",
		errors.New("boom"), errors.New("boom"), errors.New("boom"))

	proc, led := testProcessor(t, m)
	out := proc.Process(context.Background(), item, domain.CategoryComments, domain.Preferences{})

	if !out.Zero() {
		t.Errorf("outcome = %+v, want zero when every edit pass fails", out)
	}
	if got := m.CountOp("delete"); got != 0 {
		t.Errorf("delete called %d times after failed edits", got)
	}
	if led.Contains("aaa") {
		t.Error("failed item recorded in ledger")
	}
}

func TestProcessUnsave(t *testing.T) {
	m := remote.NewMock()
	item := testPost("sss", true)
	m.SetInfo(item)

	proc, _ := testProcessor(t, m)
	out := proc.Process(context.Background(), item, domain.CategorySaved, domain.Preferences{})

	if diff := cmp.Diff(domain.Outcome{Deleted: 1}, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if got := m.CountOp("unsave"); got != 1 {
		t.Errorf("unsave called %d times, want 1", got)
	}
}

func TestProcessArchivedVoteCountsAsNoop(t *testing.T) {
	m := remote.NewMock()
	item := testPost("vvv", true)
	m.SetInfo(item)
	m.FailNext("clearvote", domain.ErrArchivedVote)

	proc, led := testProcessor(t, m)
	out := proc.Process(context.Background(), item, domain.CategoryUpvotes, domain.Preferences{})

	if diff := cmp.Diff(domain.Outcome{Deleted: 1}, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if got := m.CountOp("clearvote"); got != 1 {
		t.Errorf("clearvote retried %d times on archived content, want 1 call", got)
	}
	if !led.Contains("vvv") {
		t.Error("no-op success not recorded in ledger")
	}
}

func TestProcessUnhide(t *testing.T) {
	m := remote.NewMock()
	item := testPost("hhh", true)
	m.SetInfo(item)

	proc, _ := testProcessor(t, m)
	out := proc.Process(context.Background(), item, domain.CategoryHidden, domain.Preferences{})

	if diff := cmp.Diff(domain.Outcome{Deleted: 1}, out); diff != "" {
		t.Errorf("outcome mismatch (-want +got):\n%s", diff)
	}
	if got := m.CountOp("unhide"); got != 1 {
		t.Errorf("unhide called %d times, want 1", got)
	}
}

func TestProcessForbiddenInfoSkips(t *testing.T) {
	m := remote.NewMock()
	item := testComment("aaa")
	m.SetInfo(item)
	m.FailNext("info", domain.ErrForbidden)

	proc, led := testProcessor(t, m)
	out := proc.Process(context.Background(), item, domain.CategoryComments, domain.Preferences{})

	if !out.Zero() {
		t.Errorf("outcome = %+v, want zero for inaccessible item", out)
	}
	if got := m.MutationCount(); got != 0 {
		t.Errorf("%d mutation calls after forbidden info", got)
	}
	if led.Contains("aaa") {
		t.Error("skipped item recorded in ledger")
	}
}

func TestProcessRemovedItemSkipped(t *testing.T) {
	m := remote.NewMock()
	item := testComment("aaa")
	gone := item
	gone.Body = "[removed]"
	m.SetInfo(gone)

	proc, _ := testProcessor(t, m)
	out := proc.Process(context.Background(), item, domain.CategoryComments, domain.Preferences{})

	if !out.Zero() {
		t.Errorf("outcome = %+v, want zero for already-removed item", out)
	}
	if got := m.MutationCount(); got != 0 {
		t.Errorf("%d mutation calls on already-removed item", got)
	}
}

func TestProcessRetryBound(t *testing.T) {
	m := remote.NewMock()
	item := testComment("aaa")
	m.SetInfo(item)
	// Always throttled: the info resolve must try exactly maxAttempts times.
	for i := 0; i < 10; i++ {
		m.FailNext("info", &domain.RateLimitError{Hint: "take a break for 0 seconds"})
	}

	proc, _ := testProcessor(t, m)
	proc.maxAttempts = 3

	out := proc.Process(context.Background(), item, domain.CategoryComments, domain.Preferences{})
	if !out.Zero() {
		t.Errorf("outcome = %+v, want zero after exhausted retries", out)
	}
	if got := m.CountOp("info"); got != 3 {
		t.Errorf("info attempted %d times, want exactly 3", got)
	}
}

func TestProcessDryRunPurity(t *testing.T) {
	categories := []struct {
		cat  domain.Category
		item domain.Item
	}{
		{domain.CategoryComments, testComment("c1")},
		{domain.CategoryPosts, testPost("p1", true)},
		{domain.CategorySaved, testPost("s1", true)},
		{domain.CategoryUpvotes, testPost("u1", true)},
		{domain.CategoryHidden, testPost("h1", true)},
	}

	for _, tc := range categories {
		t.Run(tc.cat.String(), func(t *testing.T) {
			wet := remote.NewMock()
			wet.SetInfo(tc.item)
			wetProc, _ := testProcessor(t, wet)
			wetOut := wetProc.Process(context.Background(), tc.item, tc.cat, domain.Preferences{})

			dry := remote.NewMock()
			dry.SetInfo(tc.item)
			dryProc, dryLed := testProcessor(t, dry)
			dryOut := dryProc.Process(context.Background(), tc.item, tc.cat, domain.Preferences{DryRun: true})

			if diff := cmp.Diff(wetOut, dryOut); diff != "" {
				t.Errorf("dry-run counters differ from real run (-wet +dry):\n%s", diff)
			}
			if got := dry.MutationCount(); got != 0 {
				t.Errorf("dry run issued %d mutation calls", got)
			}
			if dryLed.Contains(tc.item.ID) {
				t.Error("dry run recorded item in ledger")
			}
		})
	}
}

func TestProcessCancellationDuringBackoff(t *testing.T) {
	m := remote.NewMock()
	item := testComment("aaa")
	m.SetInfo(item)
	// A long server-supplied wait the cancellation must cut short.
	m.FailNext("edit", &domain.RateLimitError{Hint: "try again in 5 minutes"})

	proc, led := testProcessor(t, m)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan domain.Outcome, 1)
	go func() {
		done <- proc.Process(ctx, item, domain.CategoryComments, domain.Preferences{})
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case out := <-done:
		if !out.Zero() {
			t.Errorf("outcome = %+v, want zero on cancellation", out)
		}
	case <-time.After(200 * time.Millisecond):
		t.Fatal("processor did not return promptly after cancellation")
	}
	if led.Contains("aaa") {
		t.Error("cancelled item recorded in ledger")
	}
}
