package action

import (
	"context"

	"github.com/consistent-milk12/fsm-sub001/internal/state"
)

// NavigationHandler moves the active pane's selection/scroll/viewport.
// Priority high, ahead of the Normal-priority handlers, so navigation never
// queues behind slower handlers while the user is holding a key down.
type NavigationHandler struct {
	Coord *state.Coordinator
}

func (h *NavigationHandler) Name() string      { return "navigation" }
func (h *NavigationHandler) Priority() Priority { return PriorityHigh }

func (h *NavigationHandler) CanHandle(a Action) bool {
	switch a.Kind {
	case KindSelectionUp, KindSelectionDown, KindPageUp, KindPageDown,
		KindSelectFirst, KindSelectLast, KindResize:
		return true
	default:
		return false
	}
}

func (h *NavigationHandler) Handle(ctx context.Context, a Action) (DispatchResult, error) {
	p, err := activePane(h.Coord)
	if err != nil {
		return Continue, err
	}

	switch a.Kind {
	case KindSelectionUp:
		p.MoveUp()
	case KindSelectionDown:
		p.MoveDown()
	case KindPageUp:
		p.PageUp()
	case KindPageDown:
		p.PageDown()
	case KindSelectFirst:
		p.SelectFirst()
	case KindSelectLast:
		p.SelectLast()
	case KindResize:
		p.SetViewportHeight(a.Height)
	}

	h.Coord.RequestRedraw(state.RedrawPane)
	return Continue, nil
}
