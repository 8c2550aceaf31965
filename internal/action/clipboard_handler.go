package action

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/consistent-milk12/fsm-sub001/internal/clipboard"
	"github.com/consistent-milk12/fsm-sub001/internal/state"
	"github.com/consistent-milk12/fsm-sub001/internal/task"
)

// ClipboardHandler owns the in-memory clipboard list and its on-disk
// persistence (internal/clipboard), and turns a paste into the same
// Copy/Move background tasks FileOpsHandler uses directly.
//
// Handle runs single-threaded from the dispatcher's own goroutine (actions
// are never dispatched concurrently), so State needs no lock of its own.
type ClipboardHandler struct {
	Coord    *state.Coordinator
	Tasks    *task.Table
	Results  chan<- task.TaskResult
	State    *clipboard.State
	DiskPath string
}

func (h *ClipboardHandler) Name() string      { return "clipboard" }
func (h *ClipboardHandler) Priority() Priority { return PriorityNormal }

func (h *ClipboardHandler) CanHandle(a Action) bool {
	switch a.Kind {
	case KindClipboardCopy, KindClipboardCut, KindClipboardPaste, KindClipboardNav, KindClipboardClear:
		return true
	default:
		return false
	}
}

func (h *ClipboardHandler) Handle(ctx context.Context, a Action) (DispatchResult, error) {
	switch a.Kind {
	case KindClipboardCopy:
		h.State.Add(a.Path, clipboard.ModeCopy)
		h.persist()
	case KindClipboardCut:
		h.State.Add(a.Path, clipboard.ModeCut)
		h.persist()
	case KindClipboardNav:
		h.State.Nav(a.NavDelta)
	case KindClipboardClear:
		h.State.Clear()
		h.persist()
	case KindClipboardPaste:
		return h.paste()
	}
	h.Coord.RequestRedraw(state.RedrawOverlay)
	return Continue, nil
}

// paste copies (or moves, for cut entries) every clipboard item into the
// active pane's cwd as a background task, then clears the clipboard: a
// pasted cut behaves like a completed move, a pasted copy leaves the
// source alone but the item no longer needs to stay queued.
func (h *ClipboardHandler) paste() (DispatchResult, error) {
	p, err := activePane(h.Coord)
	if err != nil {
		return Continue, err
	}
	dst := p.Cwd()

	for _, item := range h.State.Items {
		id := task.NewTaskId()
		name := filepath.Base(item.Path)
		target := filepath.Join(dst, name)
		switch item.Mode {
		case clipboard.ModeCopy:
			cancel := h.Tasks.Register(id, task.OpCopy)
			go task.Copy(id, item.Path, target, cancel, h.Results)
		case clipboard.ModeCut:
			cancel := h.Tasks.Register(id, task.OpMove)
			go task.Move(id, item.Path, target, cancel, h.Results)
		}
	}

	h.State.Clear()
	h.persist()
	h.Coord.RequestRedraw(state.RedrawOverlay)
	return Continue, nil
}

func (h *ClipboardHandler) persist() {
	if h.DiskPath == "" {
		return
	}
	if err := clipboard.Save(h.DiskPath, *h.State, true); err != nil {
		slog.Warn("[clipboard] failed to persist clipboard", "error", err)
	}
}
