package fetch

import (
	"bufio"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/qepting91/reddit-scrubber/internal/backoff"
	"github.com/qepting91/reddit-scrubber/internal/domain"
)

// Reddit data exports stamp dates in a fixed zone label.
const exportTimeLayout = "2006-01-02 15:04:05 MST"

// fromExport sources the working set from an unpacked Reddit data export
// instead of live listings. Export files list content the listing endpoints
// cap out on, so this path reaches items the live fetch cannot.
func (f *Fetcher) fromExport(ctx context.Context, cat domain.Category, prefs domain.Preferences) ([]domain.Item, error) {
	name := "comments.csv"
	if cat == domain.CategoryPosts {
		name = "posts.csv"
	}
	path := filepath.Join(prefs.ExportDir, name)

	rows, err := readExportRows(path)
	if err != nil {
		return nil, err
	}
	f.log.Info("read export file", "path", path, "rows", len(rows))

	seen := make(map[string]domain.Item)
	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return dedupedSlice(seen), err
		}

		// Rows the export already marks as removed need no remote call.
		body := strings.TrimSpace(row.body)
		if body == "[removed]" || body == "[deleted]" {
			continue
		}
		if prefs.StartDate != nil && row.date.Before(*prefs.StartDate) {
			continue
		}
		if prefs.EndDate != nil && row.date.After(*prefs.EndDate) {
			continue
		}

		item, ok := f.resolve(ctx, fullID(row.id, cat))
		if !ok {
			continue
		}

		// The export has no score or gilding data, so these preference
		// checks need the resolved item.
		if threshold := prefs.ThresholdFor(cat); threshold != nil && item.Score >= *threshold {
			f.log.Info("export item preserved by karma threshold", "id", item.ID, "score", item.Score)
			continue
		}
		if prefs.PreserveGilded && item.Gilded {
			f.log.Info("export item preserved as gilded", "id", item.ID)
			continue
		}
		if prefs.PreserveDistinguished && item.Distinguished {
			f.log.Info("export item preserved as distinguished", "id", item.ID)
			continue
		}

		seen[item.ID] = item
	}
	return dedupedSlice(seen), nil
}

// resolve looks up live item details with the shared retry discipline.
// Items that turn out inaccessible are dropped, never fatal.
func (f *Fetcher) resolve(ctx context.Context, fullID string) (domain.Item, bool) {
	for attempt := 0; attempt < f.maxAttempts; attempt++ {
		item, err := f.client.Info(ctx, fullID)
		if err == nil {
			return item, true
		}
		if ctx.Err() != nil {
			return domain.Item{}, false
		}

		d := backoff.Classify(err, attempt, f.maxAttempts)
		switch d.Action {
		case backoff.ActionRetry:
			f.log.Info("retrying export lookup", "id", fullID, "attempt", attempt+1, "delay", d.Delay)
			if backoff.Wait(ctx, d.Delay) != nil {
				return domain.Item{}, false
			}
		default:
			f.log.Info("dropping export item", "id", fullID, "reason", d.Action.String(), "err", err)
			return domain.Item{}, false
		}
	}
	return domain.Item{}, false
}

type exportRow struct {
	id   string
	body string
	date time.Time
}

// readExportRows parses an export CSV, locating the required columns by
// header name. Malformed rows are skipped, not fatal.
func readExportRows(path string) ([]exportRow, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open export file: %w", err)
	}
	defer f.Close()

	r := csv.NewReader(stripBOM(f))
	r.FieldsPerRecord = -1

	header, err := r.Read()
	if err != nil {
		return nil, fmt.Errorf("read export header: %w", err)
	}
	idx := make(map[string]int, len(header))
	for i, col := range header {
		idx[strings.ToLower(strings.TrimSpace(col))] = i
	}
	for _, required := range []string{"id", "body", "date"} {
		if _, ok := idx[required]; !ok {
			return nil, fmt.Errorf("export file %s missing column %q", path, required)
		}
	}

	var rows []exportRow
	for {
		record, err := r.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			continue
		}
		id := strings.TrimSpace(record[idx["id"]])
		if id == "" {
			continue
		}
		date, err := parseExportDate(strings.TrimSpace(record[idx["date"]]))
		if err != nil {
			continue
		}
		rows = append(rows, exportRow{
			id:   id,
			body: record[idx["body"]],
			date: date,
		})
	}
	return rows, nil
}

func parseExportDate(s string) (time.Time, error) {
	if t, err := time.Parse(exportTimeLayout, s); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", s)
}

// fullID prefixes a bare export ID with its thing type. Some exports
// already carry the prefix.
func fullID(id string, cat domain.Category) string {
	if strings.HasPrefix(id, "t1_") || strings.HasPrefix(id, "t3_") {
		return id
	}
	if cat == domain.CategoryPosts {
		return "t3_" + id
	}
	return "t1_" + id
}

// stripBOM drops a UTF-8 byte order mark if present; exports written on
// Windows tend to carry one.
func stripBOM(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	rn, _, err := br.ReadRune()
	if err != nil {
		return br
	}
	if rn != '\uFEFF' {
		br.UnreadRune()
	}
	return br
}
