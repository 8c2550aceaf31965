package action

import (
	"github.com/consistent-milk12/fsm-sub001/internal/errs"
	"github.com/consistent-milk12/fsm-sub001/internal/model"
	"github.com/consistent-milk12/fsm-sub001/internal/pane"
	"github.com/consistent-milk12/fsm-sub001/internal/state"
	"github.com/consistent-milk12/fsm-sub001/internal/task"
)

// activePane resolves the active pane under a short-lived FSState guard; the
// returned *pane.Pane is safe to use after Release since its own exported
// methods take their own locks.
func activePane(coord *state.Coordinator) (*pane.Pane, error) {
	g, err := coord.FSStateGuard()
	if err != nil {
		return nil, err
	}
	defer g.Release()
	fs := g.State()
	if len(fs.Panes) == 0 || fs.ActivePane < 0 || fs.ActivePane >= len(fs.Panes) {
		return nil, errs.New(errs.KindInvalidField, "no active pane")
	}
	return fs.Panes[fs.ActivePane], nil
}

// spawnScan starts a fresh incremental scan of dir against p, registering a
// cancellation token and streaming results to out. The main loop is
// responsible for routing ScanEntryAdded/ScanBatchComplete/ScanComplete off
// out back into p.StageEntry/MaybeFlush/CompleteIncrementalLoading.
func spawnScan(p *pane.Pane, dir string, tasks *task.Table, out chan<- task.TaskResult) {
	id := task.NewTaskId()
	cancel := tasks.Register(id, task.OpScan)
	p.StartIncrementalLoading()
	p.SetLoading(true)
	go task.ScanDirectory(id, dir, cancel, out)
}

// resolvePath looks up the absolute path for the entry at index idx in p's
// current (sorted/filtered) row list, via the shared registry.
func resolvePath(p *pane.Pane, registry *model.Registry, idx int) (string, bool) {
	entries := p.Entries()
	if idx < 0 || idx >= len(entries) {
		return "", false
	}
	full, ok := registry.Get(entries[idx].Id)
	if !ok {
		return "", false
	}
	return full.Path, true
}
