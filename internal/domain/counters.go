package domain

// Outcome is the result of processing one item, returned by value so the
// batch coordinator can aggregate without shared mutable state.
type Outcome struct {
	Deleted int
	Edited  int
}

// Add folds another outcome into this one.
func (o *Outcome) Add(other Outcome) {
	o.Deleted += other.Deleted
	o.Edited += other.Edited
}

// Zero reports whether the outcome changed nothing.
func (o Outcome) Zero() bool {
	return o.Deleted == 0 && o.Edited == 0
}

// Counters holds per-category deleted/edited counts for one run.
type Counters struct {
	Deleted map[Category]int
	Edited  map[Category]int
}

// NewCounters returns empty counters covering every category.
func NewCounters() Counters {
	c := Counters{
		Deleted: make(map[Category]int, len(Categories)),
		Edited:  make(map[Category]int, len(Categories)),
	}
	for _, cat := range Categories {
		c.Deleted[cat] = 0
		c.Edited[cat] = 0
	}
	return c
}

// Record folds an item outcome into the category's counts.
func (c Counters) Record(cat Category, o Outcome) {
	c.Deleted[cat] += o.Deleted
	c.Edited[cat] += o.Edited
}

// TotalDeleted sums deletions across categories.
func (c Counters) TotalDeleted() int {
	n := 0
	for _, v := range c.Deleted {
		n += v
	}
	return n
}

// TotalEdited sums edits across categories.
func (c Counters) TotalEdited() int {
	n := 0
	for _, v := range c.Edited {
		n += v
	}
	return n
}

// Zero reports whether the run changed nothing. The caller uses this to
// decide when repeated runs have converged.
func (c Counters) Zero() bool {
	return c.TotalDeleted() == 0 && c.TotalEdited() == 0
}

// Lifetime accumulates counts across repeated runs within one process
// invocation. Owned by the orchestrator's caller; per-run counters reset,
// lifetime totals only grow.
type Lifetime struct {
	Counters
	Runs int
}

// NewLifetime returns an empty lifetime accumulator.
func NewLifetime() *Lifetime {
	return &Lifetime{Counters: NewCounters()}
}

// Roll folds a completed run's counters into the lifetime totals.
func (l *Lifetime) Roll(run Counters) {
	for cat, n := range run.Deleted {
		l.Deleted[cat] += n
	}
	for cat, n := range run.Edited {
		l.Edited[cat] += n
	}
	l.Runs++
}
