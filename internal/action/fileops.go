package action

import (
	"context"
	"os"
	"path/filepath"

	"github.com/consistent-milk12/fsm-sub001/internal/errs"
	"github.com/consistent-milk12/fsm-sub001/internal/model"
	"github.com/consistent-milk12/fsm-sub001/internal/state"
	"github.com/consistent-milk12/fsm-sub001/internal/task"
)

// FileOpsHandler implements directory navigation (enter/parent) and the
// mutating filesystem verbs (create/delete/rename/copy/move), per
// spec.md §4.4. Copy/Move/Rename run as background tasks; create/delete
// are synchronous OS calls followed by a rescan, matching the teacher's
// convention that only genuinely slow operations get a task/progress path.
type FileOpsHandler struct {
	Coord    *state.Coordinator
	Tasks    *task.Table
	Results  chan<- task.TaskResult
	Registry *model.Registry
}

func (h *FileOpsHandler) Name() string      { return "fileops" }
func (h *FileOpsHandler) Priority() Priority { return PriorityNormal }

func (h *FileOpsHandler) CanHandle(a Action) bool {
	switch a.Kind {
	case KindEnterSelected, KindGoToParent, KindCreateFile, KindCreateDir,
		KindReload, KindDelete, KindRename, KindCopy, KindMove, KindCancelTask, KindToggleMark:
		return true
	default:
		return false
	}
}

func (h *FileOpsHandler) Handle(ctx context.Context, a Action) (DispatchResult, error) {
	switch a.Kind {
	case KindEnterSelected:
		return h.enterSelected()
	case KindGoToParent:
		return h.goToParent()
	case KindCreateFile:
		return h.createFile(a.Name)
	case KindCreateDir:
		return h.createDir(a.Name)
	case KindReload:
		return h.reload(a.Path)
	case KindDelete:
		return h.delete(a.Path)
	case KindRename:
		return h.rename(a.OldPath, a.NewPath)
	case KindCopy:
		return h.copyTo(a.Src, a.Dst)
	case KindMove:
		return h.moveTo(a.Src, a.Dst)
	case KindCancelTask:
		h.Tasks.Cancel(task.TaskId(a.TaskID))
		return Continue, nil
	case KindToggleMark:
		return h.toggleMark(a.Path)
	}
	return NotHandled, nil
}

// toggleMark flips path's membership in AppState.Marked, the selected-for-
// batch entry set (spec.md §3).
func (h *FileOpsHandler) toggleMark(path string) (DispatchResult, error) {
	ag, err := h.Coord.AppStateGuard()
	if err != nil {
		return Continue, err
	}
	ag.State().ToggleMarked(model.NewEntryId(path))
	ag.Release()

	h.Coord.RequestRedraw(state.RedrawPane)
	return Continue, nil
}

func (h *FileOpsHandler) enterSelected() (DispatchResult, error) {
	p, err := activePane(h.Coord)
	if err != nil {
		return Continue, err
	}
	path, ok := resolvePath(p, h.Registry, p.Selection())
	if !ok {
		return Continue, nil
	}
	info, err := os.Stat(path)
	if err != nil {
		return Continue, errs.NotFound(path)
	}
	if !info.IsDir() {
		return Continue, nil
	}
	p.SetCwd(path)
	spawnScan(p, path, h.Tasks, h.Results)
	h.Coord.RequestRedraw(state.RedrawPane)
	return Continue, nil
}

func (h *FileOpsHandler) goToParent() (DispatchResult, error) {
	p, err := activePane(h.Coord)
	if err != nil {
		return Continue, err
	}
	parent := filepath.Dir(p.Cwd())
	p.SetCwd(parent)
	spawnScan(p, parent, h.Tasks, h.Results)
	h.Coord.RequestRedraw(state.RedrawPane)
	return Continue, nil
}

func (h *FileOpsHandler) createFile(name string) (DispatchResult, error) {
	p, err := activePane(h.Coord)
	if err != nil {
		return Continue, err
	}
	target := filepath.Join(p.Cwd(), name)
	f, oerr := os.OpenFile(target, os.O_CREATE|os.O_EXCL, 0o644)
	if oerr != nil {
		return Continue, errs.Wrap(errs.KindIoError, "create file: "+name, oerr)
	}
	f.Close()
	spawnScan(p, p.Cwd(), h.Tasks, h.Results)
	h.Coord.RequestRedraw(state.RedrawPane)
	return Continue, nil
}

func (h *FileOpsHandler) createDir(name string) (DispatchResult, error) {
	p, err := activePane(h.Coord)
	if err != nil {
		return Continue, err
	}
	target := filepath.Join(p.Cwd(), name)
	if merr := os.Mkdir(target, 0o755); merr != nil {
		return Continue, errs.Wrap(errs.KindIoError, "create directory: "+name, merr)
	}
	spawnScan(p, p.Cwd(), h.Tasks, h.Results)
	h.Coord.RequestRedraw(state.RedrawPane)
	return Continue, nil
}

// reload rescans the active pane's cwd. A background-sourced ReloadPath
// carries the directory that actually changed (from internal/watch); it is
// honored only when it matches the active pane, so an edit in a pane the
// user isn't looking at doesn't steal its incremental-loading state.
func (h *FileOpsHandler) reload(path string) (DispatchResult, error) {
	p, err := activePane(h.Coord)
	if err != nil {
		return Continue, err
	}
	if path != "" && path != p.Cwd() {
		return Continue, nil
	}
	spawnScan(p, p.Cwd(), h.Tasks, h.Results)
	h.Coord.RequestRedraw(state.RedrawPane)
	return Continue, nil
}

func (h *FileOpsHandler) delete(path string) (DispatchResult, error) {
	p, err := activePane(h.Coord)
	if err != nil {
		return Continue, err
	}
	if rerr := os.RemoveAll(path); rerr != nil {
		return Continue, errs.Wrap(errs.KindIoError, "delete: "+path, rerr)
	}
	h.Registry.Invalidate(model.NewEntryId(path))
	spawnScan(p, p.Cwd(), h.Tasks, h.Results)
	h.Coord.RequestRedraw(state.RedrawPane)
	return Continue, nil
}

func (h *FileOpsHandler) rename(oldPath, newPath string) (DispatchResult, error) {
	id := task.NewTaskId()
	h.Tasks.Register(id, task.OpRename)
	h.Registry.Invalidate(model.NewEntryId(oldPath))
	go task.Rename(id, oldPath, newPath, h.Results)
	return Continue, nil
}

func (h *FileOpsHandler) copyTo(src, dst string) (DispatchResult, error) {
	id := task.NewTaskId()
	cancel := h.Tasks.Register(id, task.OpCopy)
	go task.Copy(id, src, dst, cancel, h.Results)
	return Continue, nil
}

func (h *FileOpsHandler) moveTo(src, dst string) (DispatchResult, error) {
	id := task.NewTaskId()
	cancel := h.Tasks.Register(id, task.OpMove)
	h.Registry.Invalidate(model.NewEntryId(src))
	go task.Move(id, src, dst, cancel, h.Results)
	return Continue, nil
}
