package action

import (
	"context"
	"testing"

	"github.com/consistent-milk12/fsm-sub001/internal/state"
)

func TestSystemHandlerTogglesMonitor(t *testing.T) {
	coord := state.New()
	h := &SystemHandler{Coord: coord}

	if _, err := h.Handle(context.Background(), ToggleSystemMonitor()); err != nil {
		t.Fatal(err)
	}
	if !readUI(coord).ShowSystemMonitor {
		t.Fatal("expected ShowSystemMonitor to be true")
	}
	if _, err := h.Handle(context.Background(), ToggleSystemMonitor()); err != nil {
		t.Fatal(err)
	}
	if readUI(coord).ShowSystemMonitor {
		t.Fatal("expected ShowSystemMonitor to be false again")
	}
}

func TestSystemHandlerKillProcessOnUnlikelyPidReturnsError(t *testing.T) {
	coord := state.New()
	h := &SystemHandler{Coord: coord}

	// A PID this large is vanishingly unlikely to be a live process on any
	// real system, so Kill should fail.
	_, err := h.Handle(context.Background(), KillProcess(999999))
	if err == nil {
		t.Fatal("expected killing a nonexistent process to return an error")
	}
}

func TestSystemHandlerCanHandle(t *testing.T) {
	h := &SystemHandler{}
	if !h.CanHandle(Action{Kind: KindToggleSystemMonitor}) || !h.CanHandle(Action{Kind: KindKillProcess}) {
		t.Fatal("expected system handler to claim its two kinds")
	}
	if h.CanHandle(Action{Kind: KindQuit}) {
		t.Fatal("did not expect system handler to claim Quit")
	}
}
