package action

import (
	"context"

	"github.com/consistent-milk12/fsm-sub001/internal/state"
	"github.com/consistent-milk12/fsm-sub001/internal/task"
)

// SearchHandler launches filename and content searches as background tasks
// and publishes their eventual results into UIState.
type SearchHandler struct {
	Coord   *state.Coordinator
	Tasks   *task.Table
	Results chan<- task.TaskResult
}

func (h *SearchHandler) Name() string      { return "search" }
func (h *SearchHandler) Priority() Priority { return PriorityNormal }

func (h *SearchHandler) CanHandle(a Action) bool {
	switch a.Kind {
	case KindFilenameSearchQuery, KindContentSearchQuery, KindShowFilenameResults, KindShowContentResults:
		return true
	default:
		return false
	}
}

func (h *SearchHandler) Handle(ctx context.Context, a Action) (DispatchResult, error) {
	switch a.Kind {
	case KindFilenameSearchQuery:
		p, err := activePane(h.Coord)
		if err != nil {
			return Continue, err
		}
		id := task.NewTaskId()
		cancel := h.Tasks.Register(id, task.OpFilenameSearch)
		go task.FilenameSearch(id, p.Cwd(), a.Pattern, cancel, h.Results)

		err = h.Coord.UpdateUI(func(ui *state.UIState) {
			ui.ShowSearchOverlay = true
			ui.StatusMessage = "searching for " + a.Pattern
		})
		if err != nil {
			return Continue, err
		}

	case KindContentSearchQuery:
		p, err := activePane(h.Coord)
		if err != nil {
			return Continue, err
		}
		id := task.NewTaskId()
		cancel := h.Tasks.Register(id, task.OpContentSearch)
		go task.ContentSearch(id, p.Cwd(), a.Pattern, nil, cancel, h.Results)

		err = h.Coord.UpdateUI(func(ui *state.UIState) {
			ui.ShowSearchOverlay = true
			ui.StatusMessage = "searching contents for " + a.Pattern
		})
		if err != nil {
			return Continue, err
		}

	case KindShowFilenameResults, KindShowContentResults:
		err := h.Coord.UpdateUI(func(ui *state.UIState) { ui.StatusMessage = a.Message })
		if err != nil {
			return Continue, err
		}
	}

	h.Coord.RequestRedraw(state.RedrawOverlay | state.RedrawStatus)
	return Continue, nil
}
