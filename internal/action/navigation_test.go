package action

import (
	"context"
	"testing"
	"time"

	"github.com/consistent-milk12/fsm-sub001/internal/model"
	"github.com/consistent-milk12/fsm-sub001/internal/pane"
	"github.com/consistent-milk12/fsm-sub001/internal/state"
)

func newTestPaneWithEntries(t *testing.T, n int) *pane.Pane {
	t.Helper()
	p := pane.New(t.TempDir(), 3)
	p.StartIncrementalLoading()
	for i := 0; i < n; i++ {
		p.StageEntry(model.SortableRow{Id: model.EntryId(i + 1), NameHash: uint32(i)})
	}
	p.CompleteIncrementalLoading(time.Now)
	return p
}

func newTestCoordinator(t *testing.T, panes ...*pane.Pane) *state.Coordinator {
	t.Helper()
	coord := state.New()
	g, err := coord.FSStateGuard()
	if err != nil {
		t.Fatal(err)
	}
	g.State().Panes = panes
	g.Release()
	return coord
}

func TestNavigationHandlerMovesSelectionDown(t *testing.T) {
	p := newTestPaneWithEntries(t, 5)
	coord := newTestCoordinator(t, p)
	h := &NavigationHandler{Coord: coord}

	if _, err := h.Handle(context.Background(), SelectionDown(SourceUserInput)); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Handle(context.Background(), SelectionDown(SourceUserInput)); err != nil {
		t.Fatal(err)
	}
	if p.Selection() != 2 {
		t.Fatalf("expected selection 2, got %d", p.Selection())
	}
}

func TestNavigationHandlerResizeSetsViewportHeight(t *testing.T) {
	p := newTestPaneWithEntries(t, 5)
	coord := newTestCoordinator(t, p)
	h := &NavigationHandler{Coord: coord}

	if _, err := h.Handle(context.Background(), Resize(80, 24)); err != nil {
		t.Fatal(err)
	}
	if p.ViewportHeight() != 24 {
		t.Fatalf("expected viewport height 24, got %d", p.ViewportHeight())
	}
}

func TestNavigationHandlerSelectLastAndFirst(t *testing.T) {
	p := newTestPaneWithEntries(t, 5)
	coord := newTestCoordinator(t, p)
	h := &NavigationHandler{Coord: coord}

	if _, err := h.Handle(context.Background(), SelectLast(SourceUserInput)); err != nil {
		t.Fatal(err)
	}
	if p.Selection() != 4 {
		t.Fatalf("expected selection 4, got %d", p.Selection())
	}
	if _, err := h.Handle(context.Background(), SelectFirst(SourceUserInput)); err != nil {
		t.Fatal(err)
	}
	if p.Selection() != 0 {
		t.Fatalf("expected selection 0, got %d", p.Selection())
	}
}

func TestNavigationHandlerNoActivePaneReturnsError(t *testing.T) {
	coord := state.New()
	h := &NavigationHandler{Coord: coord}
	if _, err := h.Handle(context.Background(), SelectionDown(SourceUserInput)); err == nil {
		t.Fatal("expected an error with no panes registered")
	}
}

func TestNavigationHandlerCanHandle(t *testing.T) {
	h := &NavigationHandler{}
	for _, k := range []Kind{KindSelectionUp, KindSelectionDown, KindPageUp, KindPageDown, KindSelectFirst, KindSelectLast, KindResize} {
		if !h.CanHandle(Action{Kind: k}) {
			t.Fatalf("expected navigation handler to claim kind %d", k)
		}
	}
	if h.CanHandle(Action{Kind: KindQuit}) {
		t.Fatal("did not expect navigation handler to claim Quit")
	}
}
