package action

import (
	"context"

	"github.com/consistent-milk12/fsm-sub001/internal/command"
	"github.com/consistent-milk12/fsm-sub001/internal/state"
	"github.com/consistent-milk12/fsm-sub001/internal/task"
)

// CommandHandler runs colon-style command lines (internal/command) against
// the active pane and applies the resulting Outcome: a changed cwd or a
// reload request feeds the same spawnScan path FileOpsHandler uses, so the
// command line and the keybindings stay consistent about how a rescan
// starts.
type CommandHandler struct {
	Coord   *state.Coordinator
	Tasks   *task.Table
	Results chan<- task.TaskResult
}

func (h *CommandHandler) Name() string      { return "command" }
func (h *CommandHandler) Priority() Priority { return PriorityNormal }

func (h *CommandHandler) CanHandle(a Action) bool { return a.Kind == KindSubmitCommand }

func (h *CommandHandler) Handle(ctx context.Context, a Action) (DispatchResult, error) {
	p, err := activePane(h.Coord)
	if err != nil {
		return Continue, err
	}

	if ag, err := h.Coord.AppStateGuard(); err == nil {
		ag.State().History.Push(a.CommandLine)
		ag.Release()
	}

	outcome, cmdErr := command.Execute(p.Cwd(), a.CommandLine, p.Len())
	if cmdErr != nil {
		if err := h.Coord.NotifyErr(cmdErr); err != nil {
			return Continue, err
		}
		h.Coord.RequestRedraw(state.RedrawStatus)
		return Continue, cmdErr
	}

	if outcome.Quit {
		return Terminate, nil
	}
	if outcome.ChangedDir != "" {
		p.SetCwd(outcome.ChangedDir)
		spawnScan(p, outcome.ChangedDir, h.Tasks, h.Results)
	} else if outcome.ShouldReload {
		spawnScan(p, p.Cwd(), h.Tasks, h.Results)
	}
	if outcome.FindPattern != "" {
		id := task.NewTaskId()
		cancel := h.Tasks.Register(id, task.OpFilenameSearch)
		go task.FilenameSearch(id, p.Cwd(), outcome.FindPattern, cancel, h.Results)
	}

	err = h.Coord.UpdateUI(func(ui *state.UIState) {
		ui.CommandMode = false
		ui.Prompt = ""
		ui.ShowHelp = ui.ShowHelp || outcome.ShowHelp
		if outcome.ClearNotice {
			ui.StatusMessage = ""
		} else if outcome.Message != "" {
			ui.StatusMessage = outcome.Message
		}
	})
	if err != nil {
		return Continue, err
	}

	h.Coord.RequestRedraw(state.RedrawAll)
	return Continue, nil
}
