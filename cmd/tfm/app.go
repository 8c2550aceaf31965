// Command tfm is the terminal file manager entrypoint: it wires
// internal/config, internal/model, internal/task, internal/pane,
// internal/state, internal/action, internal/clipboard, internal/watch, and
// internal/termio into one event loop, mirroring the teacher's
// construct-then-signal-wait main() shape.
package main

import (
	"context"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/consistent-milk12/fsm-sub001/internal/action"
	"github.com/consistent-milk12/fsm-sub001/internal/clipboard"
	"github.com/consistent-milk12/fsm-sub001/internal/config"
	"github.com/consistent-milk12/fsm-sub001/internal/model"
	"github.com/consistent-milk12/fsm-sub001/internal/pane"
	"github.com/consistent-milk12/fsm-sub001/internal/state"
	"github.com/consistent-milk12/fsm-sub001/internal/task"
	"github.com/consistent-milk12/fsm-sub001/internal/termio"
	"github.com/consistent-milk12/fsm-sub001/internal/watch"
	"github.com/consistent-milk12/fsm-sub001/internal/workerutil"
)

// inputMode tracks which local text buffer (if any) is capturing keystrokes
// instead of them being translated into navigation/control actions. The
// dispatch pipeline has no action kind for "append a rune to the prompt";
// per-keystroke text assembly is a presentation concern the main loop owns
// directly, submitting a single
// SubmitCommand/FilenameSearchQuery/ContentSearchQuery action
// once the user confirms.
type inputMode int

const (
	modeNormal inputMode = iota
	modeCommand
	modeSearch
	modeContentSearch
)

// app holds every long-lived component the event loop touches.
type app struct {
	cfg      config.Config
	coord    *state.Coordinator
	pane     *pane.Pane
	registry *model.Registry
	tasks    *task.Table
	results  chan task.TaskResult
	clip     *clipboard.State
	dispatch *action.Dispatcher
	backend  termio.Backend
	watcher  *watch.Watcher
	watchCh  chan action.Action

	mode   inputMode
	buf    strings.Builder
	quit   bool
	pendMu sync.Mutex
	pend   map[task.TaskId]task.OperationType
}

// newApp constructs every component for a single-pane session rooted at
// startDir and kicks off the initial directory scan.
func newApp(cfg config.Config, startDir string) (*app, error) {
	coord := state.New()
	p := pane.New(startDir, 24)
	if mode, ok := sortModeByName(cfg.DefaultSortMode); ok {
		p.SetSort(mode, nil)
	}
	if cfg.FlushBudgetMicros > 0 {
		p.Strategy().SetBudget(time.Duration(cfg.FlushBudgetMicros) * time.Microsecond)
	}

	fsg, err := coord.FSStateGuard()
	if err != nil {
		return nil, err
	}
	fsg.State().Panes = []*pane.Pane{p}
	fsg.State().ActivePane = 0
	fsg.Release()

	registry := model.NewRegistry()
	tasks := task.NewTable()
	results := make(chan task.TaskResult, 256)

	ag, err := coord.AppStateGuard()
	if err != nil {
		return nil, err
	}
	ag.State().Tasks = tasks
	ag.State().StartedAt = time.Now()
	ag.Release()

	clipPath := cfg.ClipboardPath
	clip := &clipboard.State{}
	if clipPath != "" {
		if loaded, err := clipboard.Load(clipPath); err == nil {
			*clip = loaded
		} else {
			slog.Debug("[tfm] no clipboard state to restore", "path", clipPath, "error", err)
		}
	}

	watchCh := make(chan action.Action, 64)
	watcher, err := watch.New(watchCh)
	if err != nil {
		return nil, err
	}
	if err := watcher.Watch(startDir); err != nil {
		slog.Warn("[tfm] failed to watch start directory", "dir", startDir, "error", err)
	}

	handlers := []action.Handler{
		&action.NavigationHandler{Coord: coord},
		&action.UIControlHandler{Coord: coord},
		&action.SearchHandler{Coord: coord, Tasks: tasks, Results: results},
		&action.FileOpsHandler{Coord: coord, Tasks: tasks, Results: results, Registry: registry},
		&action.ClipboardHandler{Coord: coord, Tasks: tasks, Results: results, State: clip, DiskPath: clipPath},
		&action.CommandHandler{Coord: coord, Tasks: tasks, Results: results},
		&action.SystemHandler{Coord: coord},
	}

	a := &app{
		cfg:      cfg,
		coord:    coord,
		pane:     p,
		registry: registry,
		tasks:    tasks,
		results:  results,
		clip:     clip,
		dispatch: action.New(handlers, coord),
		backend:  termio.NewStdBackend(),
		watcher:  watcher,
		watchCh:  watchCh,
		pend:     make(map[task.TaskId]task.OperationType),
	}

	a.spawnScan(startDir)
	return a, nil
}

func sortModeByName(name string) (pane.SortMode, bool) {
	switch name {
	case "name-asc":
		return pane.SortNameAsc, true
	case "name-desc":
		return pane.SortNameDesc, true
	case "size-asc":
		return pane.SortSizeAsc, true
	case "size-desc":
		return pane.SortSizeDesc, true
	case "modified-asc":
		return pane.SortModifiedAsc, true
	case "modified-desc":
		return pane.SortModDesc, true
	default:
		return pane.SortNameAsc, false
	}
}

// spawnScan starts a fresh incremental scan of dir, registering the task's
// operation kind so the result pump can route its Complete correctly.
func (a *app) spawnScan(dir string) {
	id := task.NewTaskId()
	cancel := a.tasks.Register(id, task.OpScan)
	a.setPending(id, task.OpScan)
	a.pane.StartIncrementalLoading()
	a.pane.SetLoading(true)
	go task.ScanDirectory(id, dir, cancel, a.results)
}

func (a *app) setPending(id task.TaskId, op task.OperationType) {
	a.pendMu.Lock()
	a.pend[id] = op
	a.pendMu.Unlock()
}

func (a *app) takePending(id task.TaskId) (task.OperationType, bool) {
	a.pendMu.Lock()
	defer a.pendMu.Unlock()
	op, ok := a.pend[id]
	delete(a.pend, id)
	return op, ok
}

// selectedPath resolves the active pane's currently selected entry to an
// absolute path via the shared registry, mirroring
// internal/action.resolvePath (unexported there; the app needs its own
// copy for key-driven clipboard/delete shortcuts that act on the selection
// without going through a FileOpsHandler action first).
func (a *app) selectedPath() (string, bool) {
	entries := a.pane.Entries()
	idx := a.pane.Selection()
	if idx < 0 || idx >= len(entries) {
		return "", false
	}
	full, ok := a.registry.Get(entries[idx].Id)
	if !ok {
		return "", false
	}
	return full.Path, true
}

// close tears down the watcher and persists clipboard state one last time.
func (a *app) close() {
	if a.watcher != nil {
		if err := a.watcher.Close(); err != nil {
			slog.Warn("[tfm] failed to close watcher", "error", err)
		}
	}
	if a.cfg.ClipboardPath != "" {
		if err := clipboard.Save(a.cfg.ClipboardPath, *a.clip, true); err != nil {
			slog.Warn("[tfm] failed to persist clipboard on shutdown", "error", err)
		}
	}
}

// uiSnapshot is a cheap copy of the current UI flags, used by the keymap
// and renderer without holding a lock across the caller's own logic.
func (a *app) uiSnapshot() state.UIState {
	h := a.coord.UIStateHandle()
	ui := h.RLock()
	snap := *ui
	h.RUnlock()
	return snap
}

const tickInterval = 120 * time.Millisecond

// run drives the poll/dispatch/render loop until ctx is cancelled or a
// Quit action terminates it.
func (a *app) run(ctx context.Context) error {
	if err := a.backend.EnterAltScreen(); err != nil {
		return err
	}
	defer a.backend.LeaveAltScreen()
	if err := a.backend.EnableRaw(); err != nil {
		return err
	}
	defer a.backend.DisableRaw()

	var wg sync.WaitGroup
	watchCtx, cancelWatch := context.WithCancel(ctx)
	defer cancelWatch()
	workerutil.RunWithPanicRecovery(watchCtx, "watcher", &wg, func(ctx context.Context) {
		a.watcher.Run(ctx)
	}, workerutil.RecoveryOptions{
		IsShutdown: func() bool { return watchCtx.Err() != nil },
	})

	lastTick := time.Now()
	for {
		select {
		case <-ctx.Done():
			a.close()
			wg.Wait()
			return nil
		default:
		}

		ev, ok := a.backend.PollEvent(25 * time.Millisecond)
		if ok {
			for _, act := range a.translateEvent(ev) {
				a.feed(act)
			}
		}

		a.drainWatch()
		a.drainResults()

		now := time.Now()
		if err := a.coord.PruneNotification(now); err != nil {
			slog.Warn("[tfm] failed to prune notification", "error", err)
		}
		if now.Sub(lastTick) >= tickInterval {
			a.feed(action.Tick())
			lastTick = now
		}

		result, err := a.dispatch.DrainReady(ctx)
		if err != nil {
			slog.Warn("[tfm] action handler error", "error", err)
		}
		if result == action.Terminate || a.quit {
			a.close()
			cancelWatch()
			wg.Wait()
			return nil
		}

		if a.coord.NeedsRedraw() {
			if err := a.backend.Render(a.draw); err != nil {
				slog.Warn("[tfm] render failed", "error", err)
			}
			a.coord.ClearRedraw()
		}
	}
}

// feed hands act to the dispatcher's batcher, except Quit, which only sets
// a.quit. The run loop drains the batcher on every iteration, so a queued
// action never waits for the batcher's count or timeout threshold.
func (a *app) feed(act action.Action) {
	if act.Kind == action.KindQuit {
		a.quit = true
		return
	}
	a.dispatch.Feed(act)
}

// drainWatch moves every pending background-reload action the watcher has
// queued into the dispatcher's batcher.
func (a *app) drainWatch() {
	for {
		select {
		case act := <-a.watchCh:
			a.feed(act)
		default:
			return
		}
	}
}
