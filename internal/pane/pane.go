// Package pane implements the per-split pane model from spec.md §3/§4.3:
// ordered sortable rows, atomic selection/scroll/viewport, sort and filter
// modes, and the incremental staging sequence consumed by the smoothed-K
// adaptive loader.
package pane

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/consistent-milk12/fsm-sub001/internal/loader"
	"github.com/consistent-milk12/fsm-sub001/internal/model"
)

// SortMode mirrors original_source's EntrySort: name/size/modified x asc/desc,
// plus an opaque Custom tag resolved to a comparator outside the pane (spec
// §9 design note: "the pane itself does not hold function references").
type SortMode = loader.SortMode

const (
	SortNameAsc     = loader.SortNameAsc
	SortNameDesc    = loader.SortNameDesc
	SortSizeAsc     = loader.SortSizeAsc
	SortSizeDesc    = loader.SortSizeDesc
	SortModifiedAsc = loader.SortModifiedAsc
	SortModDesc     = loader.SortModifiedDesc
	SortCustom      = loader.SortCustom
)

// FilterMode enumerates the pane's filter kinds from spec.md §3.
type FilterMode int

const (
	FilterAll FilterMode = iota
	FilterFilesOnly
	FilterDirsOnly
	FilterExtension
	FilterPattern
	FilterCustom
)

// Filter is a filter mode plus its opaque argument (extension string,
// pattern string, or custom tag); unused for FilterAll/FilesOnly/DirsOnly.
type Filter struct {
	Mode FilterMode
	Arg  string
}

// CustomComparator resolves the SortCustom tag to a concrete ordering,
// looked up outside the pane (spec §9: "an opaque tag that resolves to a
// comparator lookup outside the pane").
type CustomComparator func(a, b model.SortableRow) bool

// Pane is one directory view: cwd, entries, selection, scroll, sort/filter,
// and incremental staging. Selection/scroll/viewport/loading are atomics;
// entries and staging are guarded by mu. This split mirrors the teacher's
// convention of atomics for hot scalar state and a mutex for slice mutation
// (see internal/panestate.paneState in the teacher repo).
type Pane struct {
	mu sync.RWMutex

	cwd     string
	entries []model.SortableRow
	sortBy  SortMode
	filter  Filter
	nameSrc map[model.EntryId]string // name lookup for filter-by-pattern/extension; keyed alongside entries

	selection atomic.Int64
	scroll    atomic.Int64
	viewport  atomic.Int64
	loading   atomic.Bool

	staging       []model.SortableRow
	expectedTotal int64 // -1 means unknown
	hasExpected   atomic.Bool

	strategy *loader.Strategy
	custom   CustomComparator
}

// New creates a pane rooted at cwd with the given initial viewport height.
func New(cwd string, viewportHeight int) *Pane {
	p := &Pane{
		cwd:           cwd,
		nameSrc:       make(map[model.EntryId]string),
		expectedTotal: -1,
		strategy:      loader.New(),
	}
	p.viewport.Store(int64(viewportHeight))
	return p
}

// Cwd returns the pane's current working directory.
func (p *Pane) Cwd() string {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.cwd
}

// SetCwd replaces the cwd and resets entries/selection/scroll (used by
// EnterSelected/GoToParent handlers before a fresh scan begins).
func (p *Pane) SetCwd(cwd string) {
	p.mu.Lock()
	p.cwd = cwd
	p.entries = nil
	p.staging = nil
	p.nameSrc = make(map[model.EntryId]string)
	p.expectedTotal = -1
	p.mu.Unlock()
	p.hasExpected.Store(false)
	p.selection.Store(0)
	p.scroll.Store(0)
}

// Len returns the number of (filtered, sorted) entries currently visible.
func (p *Pane) Len() int {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return len(p.entries)
}

// Entries returns a read-only snapshot of the pane's current rows.
func (p *Pane) Entries() []model.SortableRow {
	p.mu.RLock()
	defer p.mu.RUnlock()
	out := make([]model.SortableRow, len(p.entries))
	copy(out, p.entries)
	return out
}

// Selection returns the current selection index.
func (p *Pane) Selection() int { return int(p.selection.Load()) }

// Scroll returns the current scroll offset.
func (p *Pane) Scroll() int { return int(p.scroll.Load()) }

// ViewportHeight returns the current viewport height.
func (p *Pane) ViewportHeight() int { return int(p.viewport.Load()) }

// SetViewportHeight updates the viewport height and recomputes scroll to
// preserve the visibility invariant.
func (p *Pane) SetViewportHeight(h int) {
	if h < 1 {
		h = 1
	}
	p.viewport.Store(int64(h))
	p.recomputeScroll()
}

// IsLoading reports the pane's loading flag.
func (p *Pane) IsLoading() bool { return p.loading.Load() }

// SetLoading sets the loading flag.
func (p *Pane) SetLoading(v bool) { p.loading.Store(v) }

// recomputeScroll enforces scroll <= selection < scroll+viewport_height,
// clamped to entry count, per spec.md §4.3/§8 property 1.
func (p *Pane) recomputeScroll() {
	n := p.Len()
	vh := int(p.viewport.Load())
	if vh < 1 {
		vh = 1
	}
	sel := int(p.selection.Load())
	if n == 0 {
		p.scroll.Store(0)
		return
	}
	if sel < 0 {
		sel = 0
	}
	if sel >= n {
		sel = n - 1
		p.selection.Store(int64(sel))
	}
	scroll := int(p.scroll.Load())
	if sel < scroll {
		scroll = sel
	} else if sel >= scroll+vh {
		scroll = sel - vh + 1
	}
	if scroll < 0 {
		scroll = 0
	}
	maxScroll := n - 1
	if maxScroll < 0 {
		maxScroll = 0
	}
	if scroll > maxScroll {
		scroll = maxScroll
	}
	p.scroll.Store(int64(scroll))
}

// MoveUp moves the selection up by one, clamped to [0, len). Returns whether
// the position changed.
func (p *Pane) MoveUp() bool {
	n := p.Len()
	if n == 0 {
		return false
	}
	sel := int(p.selection.Load())
	if sel <= 0 {
		return false
	}
	p.selection.Store(int64(sel - 1))
	p.recomputeScroll()
	return true
}

// MoveDown moves the selection down by one, clamped to [0, len).
func (p *Pane) MoveDown() bool {
	n := p.Len()
	if n == 0 {
		return false
	}
	sel := int(p.selection.Load())
	if sel+1 >= n {
		return false
	}
	p.selection.Store(int64(sel + 1))
	p.recomputeScroll()
	return true
}

// SelectFirst sets selection to 0.
func (p *Pane) SelectFirst() bool {
	if p.Len() == 0 {
		return false
	}
	p.selection.Store(0)
	p.scroll.Store(0)
	return true
}

// SelectLast sets selection to len-1.
func (p *Pane) SelectLast() bool {
	n := p.Len()
	if n == 0 {
		return false
	}
	p.selection.Store(int64(n - 1))
	p.recomputeScroll()
	return true
}

// PageUp moves the selection up by viewport_height, clamped to 0.
func (p *Pane) PageUp() bool {
	n := p.Len()
	if n == 0 {
		return false
	}
	vh := int(p.viewport.Load())
	sel := int(p.selection.Load())
	next := sel - vh
	if next < 0 {
		next = 0
	}
	if next == sel {
		return false
	}
	p.selection.Store(int64(next))
	p.recomputeScroll()
	return true
}

// PageDown moves the selection down by viewport_height, clamped to len-1.
func (p *Pane) PageDown() bool {
	n := p.Len()
	if n == 0 {
		return false
	}
	vh := int(p.viewport.Load())
	sel := int(p.selection.Load())
	next := sel + vh
	if next > n-1 {
		next = n - 1
	}
	if next == sel {
		return false
	}
	p.selection.Store(int64(next))
	p.recomputeScroll()
	return true
}

// SetSort changes the active sort mode and re-sorts existing entries.
func (p *Pane) SetSort(mode SortMode, custom CustomComparator) {
	p.mu.Lock()
	p.sortBy = mode
	p.custom = custom
	sortRows(p.entries, mode, custom)
	p.mu.Unlock()
	p.recomputeScroll()
}

// SortModeValue returns the active sort mode.
func (p *Pane) SortModeValue() SortMode {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.sortBy
}

// SetFilter changes the active filter. The caller is responsible for
// re-running the directory scan/staging pipeline if a narrower filter
// requires re-fetching; Pane itself only tracks the mode.
func (p *Pane) SetFilter(f Filter) {
	p.mu.Lock()
	p.filter = f
	p.mu.Unlock()
}

// FilterValue returns the active filter.
func (p *Pane) FilterValue() Filter {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return p.filter
}

// StartIncrementalLoading resets the staging buffer ahead of a fresh scan,
// grounded on original_source's start_incremental_loading.
func (p *Pane) StartIncrementalLoading() {
	p.mu.Lock()
	p.staging = p.staging[:0]
	p.expectedTotal = -1
	p.mu.Unlock()
	p.hasExpected.Store(false)
	p.loading.Store(true)
}

// SetExpectedTotal records a hint for the eventual entry count, used only to
// size the final allocation; it never gates a flush decision.
func (p *Pane) SetExpectedTotal(n int) {
	p.mu.Lock()
	p.expectedTotal = int64(n)
	p.mu.Unlock()
	p.hasExpected.Store(true)
}

// StageEntry appends one row to the staging buffer. It is a no-op once
// loading has completed or was never started, mirroring
// add_incremental_entry's is_incremental_loading guard.
func (p *Pane) StageEntry(row model.SortableRow) {
	p.mu.Lock()
	if !p.loading.Load() {
		p.mu.Unlock()
		return
	}
	p.staging = append(p.staging, row)
	p.mu.Unlock()
}

// MaybeFlush asks the smoothed-K strategy whether the current staging
// buffer should be merged into entries now. On flush it sorts the merged
// result under the pane's active sort mode, records the elapsed sort cost
// back into the strategy, and clears the staging buffer. Returns whether a
// flush occurred.
func (p *Pane) MaybeFlush(now func() time.Time) bool {
	p.mu.Lock()
	n := len(p.staging)
	mode := p.sortBy
	if n == 0 || !p.strategy.ShouldFlush(n, mode) {
		p.mu.Unlock()
		return false
	}
	start := now()
	merged := append(p.entries, p.staging...)
	sortRows(merged, mode, p.custom)
	elapsed := now().Sub(start)
	p.entries = merged
	p.staging = p.staging[:0]
	p.strategy.RegisterSortTime(n, mode, elapsed)
	p.mu.Unlock()
	p.recomputeScroll()
	return true
}

// CompleteIncrementalLoading merges any remaining staged rows, sorts the
// final result, and clears the loading flag, mirroring
// complete_incremental_loading.
func (p *Pane) CompleteIncrementalLoading(now func() time.Time) {
	p.mu.Lock()
	mode := p.sortBy
	n := len(p.staging)
	start := now()
	merged := append(p.entries, p.staging...)
	sortRows(merged, mode, p.custom)
	elapsed := now().Sub(start)
	p.entries = merged
	p.staging = p.staging[:0]
	if n > 0 {
		p.strategy.RegisterSortTime(n, mode, elapsed)
	}
	p.mu.Unlock()
	p.loading.Store(false)
	p.recomputeScroll()
}

// Strategy exposes the pane's smoothed-K strategy for metrics/testing.
func (p *Pane) Strategy() *loader.Strategy { return p.strategy }

// sortRows sorts rows in place per spec.md §4.3: directories sort before
// files (tie-breaker only for name sorts; other modes sort purely by key),
// name sort compares the precomputed 32-bit hash.
func sortRows(rows []model.SortableRow, mode SortMode, custom CustomComparator) {
	less := lessFn(mode, custom)
	sort.SliceStable(rows, func(i, j int) bool { return less(rows[i], rows[j]) })
}

func lessFn(mode SortMode, custom CustomComparator) func(a, b model.SortableRow) bool {
	switch mode {
	case SortNameAsc:
		return func(a, b model.SortableRow) bool {
			if a.IsDir != b.IsDir {
				return a.IsDir
			}
			return a.NameHash < b.NameHash
		}
	case SortNameDesc:
		return func(a, b model.SortableRow) bool {
			if a.IsDir != b.IsDir {
				return a.IsDir
			}
			return a.NameHash > b.NameHash
		}
	case SortSizeAsc:
		return func(a, b model.SortableRow) bool { return a.Size < b.Size }
	case SortSizeDesc:
		return func(a, b model.SortableRow) bool { return a.Size > b.Size }
	case SortModifiedAsc:
		return func(a, b model.SortableRow) bool { return a.ModifiedMs < b.ModifiedMs }
	case SortModDesc:
		return func(a, b model.SortableRow) bool { return a.ModifiedMs > b.ModifiedMs }
	case SortCustom:
		if custom != nil {
			return custom
		}
		fallthrough
	default:
		return func(a, b model.SortableRow) bool { return a.NameHash < b.NameHash }
	}
}
