package ledger

import (
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestLoadMissingFile(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "nope.txt"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if l.Len() != 0 {
		t.Errorf("got %d ids, want 0", l.Len())
	}
}

func TestAddFlushLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "processed_ids_testuser.txt")

	l, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	l.Add("t1_aaa")
	l.Add("t3_bbb")
	l.Add("t1_aaa") // idempotent re-add
	l.Add("")       // ignored
	if err := l.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	reloaded, err := Load(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if diff := cmp.Diff(2, reloaded.Len()); diff != "" {
		t.Errorf("len mismatch (-want +got):\n%s", diff)
	}
	for _, id := range []string{"t1_aaa", "t3_bbb"} {
		if !reloaded.Contains(id) {
			t.Errorf("reloaded ledger missing %s", id)
		}
	}
}

func TestFlushOverwrites(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	if err := os.WriteFile(path, []byte("stale_entry\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	l, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	l.Add("fresh_entry")
	if err := l.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	// Full rewrite keeps loaded entries and adds new ones.
	got := strings.Fields(string(data))
	want := []string{"fresh_entry", "stale_entry"}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("file contents mismatch (-want +got):\n%s", diff)
	}
}

func TestFlushCleanSkipsWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.txt")
	l, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if err := l.Flush(); err != nil {
		t.Fatalf("flush: %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("clean flush created a file")
	}
}

func TestConcurrentAdds(t *testing.T) {
	l, err := Load(filepath.Join(t.TempDir(), "ledger.txt"))
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	var wg sync.WaitGroup
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				l.Add(string(rune('a'+w)) + "_" + string(rune('0'+i%10)))
			}
		}(w)
	}
	wg.Wait()

	if diff := cmp.Diff(80, l.Len()); diff != "" {
		t.Errorf("len mismatch (-want +got):\n%s", diff)
	}
}

func TestPathFor(t *testing.T) {
	got := PathFor("data", "SomeUser")
	want := filepath.Join("data", "processed_ids_someuser.txt")
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("path mismatch (-want +got):\n%s", diff)
	}
}
