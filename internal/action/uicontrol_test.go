package action

import (
	"context"
	"testing"

	"github.com/consistent-milk12/fsm-sub001/internal/state"
)

func readUI(coord *state.Coordinator) state.UIState {
	handle := coord.UIStateHandle()
	ui := handle.RLock()
	defer handle.RUnlock()
	return *ui
}

func TestUIControlHandlerTogglesHelp(t *testing.T) {
	coord := state.New()
	h := &UIControlHandler{Coord: coord}

	if _, err := h.Handle(context.Background(), ToggleHelp()); err != nil {
		t.Fatal(err)
	}
	if !readUI(coord).ShowHelp {
		t.Fatal("expected ShowHelp to be true after one toggle")
	}
	if _, err := h.Handle(context.Background(), ToggleHelp()); err != nil {
		t.Fatal(err)
	}
	if readUI(coord).ShowHelp {
		t.Fatal("expected ShowHelp to be false after second toggle")
	}
}

func TestUIControlHandlerCloseOverlayResetsAllFlags(t *testing.T) {
	coord := state.New()
	h := &UIControlHandler{Coord: coord}

	if _, err := h.Handle(context.Background(), ToggleHelp()); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Handle(context.Background(), ToggleSearchOverlay()); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Handle(context.Background(), EnterCommandMode()); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Handle(context.Background(), CloseOverlay()); err != nil {
		t.Fatal(err)
	}

	ui := readUI(coord)
	if ui.ShowHelp || ui.ShowSearchOverlay || ui.CommandMode || ui.Prompt != "" {
		t.Fatalf("expected all overlay flags cleared, got %+v", ui)
	}
}

func TestUIControlHandlerEnterCommandModeSetsPrompt(t *testing.T) {
	coord := state.New()
	h := &UIControlHandler{Coord: coord}

	if _, err := h.Handle(context.Background(), EnterCommandMode()); err != nil {
		t.Fatal(err)
	}
	ui := readUI(coord)
	if !ui.CommandMode || ui.Prompt != ":" {
		t.Fatalf("expected command mode with ':' prompt, got %+v", ui)
	}
}

func TestUIControlHandlerShowPromptSetsMessage(t *testing.T) {
	coord := state.New()
	h := &UIControlHandler{Coord: coord}

	if _, err := h.Handle(context.Background(), ShowPrompt("delete foo?")); err != nil {
		t.Fatal(err)
	}
	if readUI(coord).Prompt != "delete foo?" {
		t.Fatalf("expected prompt to be set, got %+v", readUI(coord))
	}
}

func TestUIControlHandlerTickIsNoopButRedraws(t *testing.T) {
	coord := state.New()
	h := &UIControlHandler{Coord: coord}
	result, err := h.Handle(context.Background(), Tick())
	if err != nil || result != Continue {
		t.Fatalf("expected Continue/nil, got %v %v", result, err)
	}
	if !coord.NeedsRedraw() {
		t.Fatal("expected Tick to mark a redraw due")
	}
}
