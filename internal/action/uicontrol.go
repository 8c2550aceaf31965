package action

import (
	"context"

	"github.com/consistent-milk12/fsm-sub001/internal/state"
)

// UIControlHandler flips overlay/prompt/command-mode flags in UIState.
type UIControlHandler struct {
	Coord *state.Coordinator
}

func (h *UIControlHandler) Name() string      { return "ui_control" }
func (h *UIControlHandler) Priority() Priority { return PriorityHigh }

func (h *UIControlHandler) CanHandle(a Action) bool {
	switch a.Kind {
	case KindToggleHelp, KindToggleSearchOverlay, KindCloseOverlay,
		KindEnterCommandMode, KindShowPrompt, KindTick:
		return true
	default:
		return false
	}
}

func (h *UIControlHandler) Handle(ctx context.Context, a Action) (DispatchResult, error) {
	switch a.Kind {
	case KindToggleHelp:
		err := h.Coord.UpdateUI(func(ui *state.UIState) { ui.ShowHelp = !ui.ShowHelp })
		if err != nil {
			return Continue, err
		}
	case KindToggleSearchOverlay:
		err := h.Coord.UpdateUI(func(ui *state.UIState) { ui.ShowSearchOverlay = !ui.ShowSearchOverlay })
		if err != nil {
			return Continue, err
		}
	case KindCloseOverlay:
		err := h.Coord.UpdateUI(func(ui *state.UIState) {
			ui.ShowHelp = false
			ui.ShowSearchOverlay = false
			ui.CommandMode = false
			ui.ShowSystemMonitor = false
			ui.Prompt = ""
		})
		if err != nil {
			return Continue, err
		}
	case KindEnterCommandMode:
		err := h.Coord.UpdateUI(func(ui *state.UIState) { ui.CommandMode = true; ui.Prompt = ":" })
		if err != nil {
			return Continue, err
		}
	case KindShowPrompt:
		err := h.Coord.UpdateUI(func(ui *state.UIState) { ui.Prompt = a.Message })
		if err != nil {
			return Continue, err
		}
	case KindTick:
		// Heartbeat: nothing to mutate, but still marks the frame dirty so a
		// spinner or elapsed-time display keeps advancing.
	}

	h.Coord.RequestRedraw(state.RedrawOverlay | state.RedrawPrompt)
	return Continue, nil
}
