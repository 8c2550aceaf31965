package action

import (
	"context"
	"log/slog"
	"os"

	"github.com/consistent-milk12/fsm-sub001/internal/state"
)

// SystemHandler covers the system monitor overlay toggle and killing an OS
// process the monitor lists.
type SystemHandler struct {
	Coord *state.Coordinator
}

func (h *SystemHandler) Name() string      { return "system" }
func (h *SystemHandler) Priority() Priority { return PriorityNormal }

func (h *SystemHandler) CanHandle(a Action) bool {
	switch a.Kind {
	case KindToggleSystemMonitor, KindKillProcess:
		return true
	default:
		return false
	}
}

func (h *SystemHandler) Handle(ctx context.Context, a Action) (DispatchResult, error) {
	switch a.Kind {
	case KindToggleSystemMonitor:
		err := h.Coord.UpdateUI(func(ui *state.UIState) { ui.ShowSystemMonitor = !ui.ShowSystemMonitor })
		if err != nil {
			return Continue, err
		}
	case KindKillProcess:
		proc, err := os.FindProcess(a.PID)
		if err != nil {
			return Continue, err
		}
		if err := proc.Kill(); err != nil {
			slog.Warn("[system] failed to kill process", "pid", a.PID, "error", err)
			return Continue, err
		}
	}

	h.Coord.RequestRedraw(state.RedrawOverlay)
	return Continue, nil
}
