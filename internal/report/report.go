// Package report renders a static HTML summary of removal activity.
package report

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/qepting91/reddit-scrubber/internal/domain"
	"github.com/qepting91/reddit-scrubber/internal/history"
)

// Write renders the report to dir/scrub_report.html and returns the path.
// run holds this invocation's counters, lifetime the stored totals, and
// recent the latest runs from history.
func Write(dir string, run, lifetime domain.Counters, recent []history.Run) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("create report dir: %w", err)
	}
	path := filepath.Join(dir, "scrub_report.html")

	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("create report: %w", err)
	}
	defer f.Close()

	if err := categoryBar(run).Render(f); err != nil {
		return "", fmt.Errorf("render category chart: %w", err)
	}
	if err := lifetimePie(lifetime).Render(f); err != nil {
		return "", fmt.Errorf("render lifetime chart: %w", err)
	}
	if len(recent) > 1 {
		if err := runTrendBar(recent).Render(f); err != nil {
			return "", fmt.Errorf("render trend chart: %w", err)
		}
	}
	return path, nil
}

// categoryBar shows what this run removed and edited, per category.
func categoryBar(run domain.Counters) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "This Run"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	var x []string
	var deleted, edited []opts.BarData
	for _, cat := range domain.Categories {
		x = append(x, cat.String())
		deleted = append(deleted, opts.BarData{Value: run.Deleted[cat]})
		edited = append(edited, opts.BarData{Value: run.Edited[cat]})
	}
	bar.SetXAxis(x).
		AddSeries("Deleted", deleted).
		AddSeries("Edited", edited)
	return bar
}

// lifetimePie shows where the lifetime deletions came from.
func lifetimePie(lifetime domain.Counters) *charts.Pie {
	pie := charts.NewPie()
	pie.SetGlobalOptions(
		charts.WithTitleOpts(opts.Title{Title: "Lifetime Deletions by Category"}),
		charts.WithInitializationOpts(opts.Initialization{Theme: types.ThemeWesteros}),
	)

	var items []opts.PieData
	for _, cat := range domain.Categories {
		if n := lifetime.Deleted[cat]; n > 0 {
			items = append(items, opts.PieData{Name: cat.String(), Value: n})
		}
	}
	pie.AddSeries("Deleted", items)
	return pie
}

// runTrendBar shows totals per recorded run, oldest first.
func runTrendBar(recent []history.Run) *charts.Bar {
	bar := charts.NewBar()
	bar.SetGlobalOptions(charts.WithTitleOpts(opts.Title{Title: "Recent Runs"}))

	var x []string
	var deleted, edited []opts.BarData
	for i := len(recent) - 1; i >= 0; i-- {
		r := recent[i]
		x = append(x, r.FinishedAt.Format("Jan 2 15:04"))
		deleted = append(deleted, opts.BarData{Value: r.Deleted})
		edited = append(edited, opts.BarData{Value: r.Edited})
	}
	bar.SetXAxis(x).
		AddSeries("Deleted", deleted).
		AddSeries("Edited", edited)
	return bar
}
