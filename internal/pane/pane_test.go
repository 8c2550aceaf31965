package pane

import (
	"testing"
	"time"

	"github.com/consistent-milk12/fsm-sub001/internal/model"
)

func fixedClock(start time.Time, step time.Duration) func() time.Time {
	t := start
	first := true
	return func() time.Time {
		if first {
			first = false
			return t
		}
		t = t.Add(step)
		return t
	}
}

func rowsN(n int) []model.SortableRow {
	rows := make([]model.SortableRow, n)
	for i := range rows {
		rows[i] = model.SortableRow{Id: model.EntryId(i), NameHash: uint32(i)}
	}
	return rows
}

func TestMoveUpDownClampsAtEdges(t *testing.T) {
	p := New("/tmp", 5)
	p.StartIncrementalLoading()
	for _, r := range rowsN(3) {
		p.StageEntry(r)
	}
	p.CompleteIncrementalLoading(fixedClock(time.Unix(0, 0), time.Microsecond))

	if p.MoveUp() {
		t.Fatal("must not move up from position 0")
	}
	if !p.MoveDown() || p.Selection() != 1 {
		t.Fatalf("expected selection 1, got %d", p.Selection())
	}
	if !p.MoveDown() || p.Selection() != 2 {
		t.Fatalf("expected selection 2, got %d", p.Selection())
	}
	if p.MoveDown() {
		t.Fatal("must not move down past the last entry")
	}
}

func TestAdjustScrollRecomputesOnSelection(t *testing.T) {
	p := New("/tmp", 3)
	p.StartIncrementalLoading()
	for _, r := range rowsN(10) {
		p.StageEntry(r)
	}
	p.CompleteIncrementalLoading(fixedClock(time.Unix(0, 0), time.Microsecond))

	for i := 0; i < 5; i++ {
		p.MoveDown()
	}
	if p.Selection() != 5 {
		t.Fatalf("expected selection 5, got %d", p.Selection())
	}
	if sc := p.Scroll(); sc != 3 {
		t.Fatalf("expected scroll to follow selection to 3 (5-3+1), got %d", sc)
	}

	p.SelectFirst()
	if p.Scroll() != 0 {
		t.Fatalf("expected scroll reset to 0 after SelectFirst, got %d", p.Scroll())
	}

	p.SelectLast()
	if p.Selection() != 9 {
		t.Fatalf("expected selection 9 after SelectLast, got %d", p.Selection())
	}
	if p.Scroll() != 7 {
		t.Fatalf("expected scroll 7 (9-3+1) after SelectLast, got %d", p.Scroll())
	}
}

func TestPageUpDownClamp(t *testing.T) {
	p := New("/tmp", 4)
	p.StartIncrementalLoading()
	for _, r := range rowsN(10) {
		p.StageEntry(r)
	}
	p.CompleteIncrementalLoading(fixedClock(time.Unix(0, 0), time.Microsecond))

	p.SelectLast()
	if !p.PageUp() {
		t.Fatal("expected PageUp to move from the last row")
	}
	if p.Selection() != 5 {
		t.Fatalf("expected selection 5 (9-4), got %d", p.Selection())
	}

	p.SelectFirst()
	if !p.PageDown() {
		t.Fatal("expected PageDown to move from row 0")
	}
	if p.Selection() != 4 {
		t.Fatalf("expected selection 4, got %d", p.Selection())
	}

	// PageDown near the end clamps to len-1 rather than overshooting.
	for i := 0; i < 5; i++ {
		p.PageDown()
	}
	if p.Selection() != 9 {
		t.Fatalf("expected PageDown to clamp at 9, got %d", p.Selection())
	}
	if p.PageDown() {
		t.Fatal("expected PageDown at the last row to report no movement")
	}
}

func TestEmptyPaneNavigationIsNoop(t *testing.T) {
	p := New("/tmp", 5)
	if p.MoveUp() || p.MoveDown() || p.SelectFirst() || p.SelectLast() || p.PageUp() || p.PageDown() {
		t.Fatal("navigation on an empty pane must never report movement")
	}
}

func TestStageEntryIgnoredOutsideLoading(t *testing.T) {
	p := New("/tmp", 5)
	p.StageEntry(model.SortableRow{Id: 1})
	if p.Len() != 0 {
		t.Fatal("StageEntry before StartIncrementalLoading must be a no-op")
	}
}

func TestMaybeFlushUnderTinyBudget(t *testing.T) {
	p := New("/tmp", 5)
	p.Strategy().SetBudget(1 * time.Microsecond)
	p.StartIncrementalLoading()
	for _, r := range rowsN(50) {
		p.StageEntry(r)
	}
	clock := fixedClock(time.Unix(0, 0), time.Microsecond)
	if !p.MaybeFlush(clock) {
		t.Fatal("expected a flush with a tiny budget and 50 staged rows")
	}
	if p.Len() != 50 {
		t.Fatalf("expected 50 entries merged after flush, got %d", p.Len())
	}
}

func TestCompleteIncrementalLoadingSortsDirectoriesFirst(t *testing.T) {
	p := New("/tmp", 5)
	p.StartIncrementalLoading()
	p.StageEntry(model.SortableRow{Id: 1, NameHash: 2, IsDir: false})
	p.StageEntry(model.SortableRow{Id: 2, NameHash: 1, IsDir: true})
	p.CompleteIncrementalLoading(fixedClock(time.Unix(0, 0), time.Microsecond))

	entries := p.Entries()
	if !entries[0].IsDir {
		t.Fatal("expected directory entry sorted first under name-ascending order")
	}
}

func TestSetViewportHeightRecomputesScroll(t *testing.T) {
	p := New("/tmp", 10)
	p.StartIncrementalLoading()
	for _, r := range rowsN(20) {
		p.StageEntry(r)
	}
	p.CompleteIncrementalLoading(fixedClock(time.Unix(0, 0), time.Microsecond))
	p.SelectLast()

	p.SetViewportHeight(3)
	if p.Scroll() != 17 {
		t.Fatalf("expected scroll 17 (19-3+1) after shrinking viewport, got %d", p.Scroll())
	}
}
