// Package ledger tracks the IDs of items already acted on, so reruns are
// idempotent even when the remote action itself is not.
package ledger

import (
	"bufio"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Ledger is a mutex-guarded set of processed item IDs backed by a flat
// file, one ID per line. Worker goroutines add IDs as items succeed; the
// batch coordinator flushes between batches, so there is never a
// concurrent flush.
type Ledger struct {
	mu    sync.Mutex
	ids   map[string]struct{}
	path  string
	dirty bool
}

// PathFor derives the ledger file location for an account.
func PathFor(dataDir, username string) string {
	return filepath.Join(dataDir, fmt.Sprintf("processed_ids_%s.txt", strings.ToLower(username)))
}

// Load reads the ledger at path, returning an empty ledger when the file
// does not exist yet.
func Load(path string) (*Ledger, error) {
	l := &Ledger{ids: make(map[string]struct{}), path: path}

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return l, nil
		}
		return nil, fmt.Errorf("open ledger: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		id := strings.TrimSpace(scanner.Text())
		if id != "" {
			l.ids[id] = struct{}{}
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read ledger: %w", err)
	}
	return l, nil
}

// Contains reports whether id was already processed.
func (l *Ledger) Contains(id string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.ids[id]
	return ok
}

// Add records id as processed. Re-adding an existing ID is a no-op.
func (l *Ledger) Add(id string) {
	if id == "" {
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.ids[id]; !ok {
		l.ids[id] = struct{}{}
		l.dirty = true
	}
}

// Len returns the number of recorded IDs.
func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.ids)
}

// Flush rewrites the whole file. Overwrite semantics keep the format
// trivially recoverable; at this scale efficiency does not matter.
func (l *Ledger) Flush() error {
	l.mu.Lock()
	if !l.dirty {
		l.mu.Unlock()
		return nil
	}
	ids := make([]string, 0, len(l.ids))
	for id := range l.ids {
		ids = append(ids, id)
	}
	l.dirty = false
	l.mu.Unlock()

	sort.Strings(ids)

	if dir := filepath.Dir(l.path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create ledger dir: %w", err)
		}
	}

	tmp := l.path + ".tmp"
	f, err := os.Create(tmp)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}
	w := bufio.NewWriter(f)
	for _, id := range ids {
		fmt.Fprintln(w, id)
	}
	if err := w.Flush(); err != nil {
		f.Close()
		return fmt.Errorf("write ledger: %w", err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("close ledger: %w", err)
	}
	if err := os.Rename(tmp, l.path); err != nil {
		return fmt.Errorf("replace ledger: %w", err)
	}
	return nil
}
