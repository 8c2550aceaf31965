package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/consistent-milk12/fsm-sub001/internal/action"
	"github.com/consistent-milk12/fsm-sub001/internal/model"
	"github.com/consistent-milk12/fsm-sub001/internal/state"
	"github.com/consistent-milk12/fsm-sub001/internal/task"
)

// drainResults pumps every TaskResult currently queued on a.results into
// pane/registry mutations and, where a result carries user-facing news,
// into the action pipeline. Complete carries no operation tag of its own,
// so drainResults tracks TaskId -> OperationType itself (set at spawn time,
// refined as Stream payloads arrive) to know how to react once a task
// finishes.
func (a *app) drainResults() {
	for {
		select {
		case r := <-a.results:
			a.handleResult(r)
		default:
			return
		}
	}
}

func (a *app) handleResult(r task.TaskResult) {
	switch r.Kind {
	case task.KindStream:
		a.handleStream(*r.Stream)
	case task.KindProgress:
		a.setPending(r.Progress.TaskId, r.Progress.Operation)
	case task.KindComplete:
		a.handleComplete(*r.Complete)
	case task.KindLegacy:
		// No TFM background task emits Legacy results; retained only for
		// protocol completeness (spec.md §4.4's TaskResult union).
	}
}

func (a *app) handleStream(s task.Stream) {
	switch payload := s.Payload.(type) {
	case task.ScanEntryAdded:
		a.setPending(s.TaskId, task.OpScan)
		a.registry.Install(model.FullEntry{LightEntry: payload.Entry})
		a.pane.StageEntry(model.RowFromLightEntry(payload.Entry))
		a.pane.MaybeFlush(time.Now)
		a.coord.RequestRedraw(state.RedrawPane)

	case task.ScanBatchComplete:
		a.setPending(s.TaskId, task.OpScan)
		a.pane.MaybeFlush(time.Now)

	case task.ScanComplete:
		a.setPending(s.TaskId, task.OpScan)

	case task.ScanError:
		a.setPending(s.TaskId, task.OpScan)
		a.setStatus(payload.Message)

	case task.FilenameSearchBatch:
		a.setPending(s.TaskId, task.OpFilenameSearch)
		for _, m := range payload.Matches {
			a.registry.Install(model.FullEntry{LightEntry: m.Entry})
		}
		msg := fmt.Sprintf("%d filename match(es)", len(payload.Matches))
		a.feed(action.ShowFilenameResults(msg))

	case task.RawSearchResult:
		a.setPending(s.TaskId, task.OpContentSearch)
		msg := fmt.Sprintf("%d content match(es) in %s", payload.TotalMatches, payload.BaseDirectory)
		a.feed(action.ShowContentResults(msg))

	case task.MetadataBatch:
		a.setPending(s.TaskId, task.OpMetadata)
		for _, u := range payload.Updates {
			a.registry.Install(u.Entry)
		}
		a.coord.RequestRedraw(state.RedrawPane)

	case task.SizeResult:
		a.setPending(s.TaskId, task.OpSize)
		msg := fmt.Sprintf("%s: %d bytes, %d children", payload.Path, payload.TotalBytes, payload.DirectChildren)
		a.setStatus(msg)
	}
}

func (a *app) handleComplete(c task.Complete) {
	a.tasks.Complete(c.TaskId, c.Outcome)
	op, known := a.takePending(c.TaskId)

	if !c.Outcome.Ok {
		slog.Warn("[tfm] task failed", "taskId", c.TaskId, "reason", c.Outcome.Reason)
		if known && op != task.OpScan {
			a.setStatus("failed: " + c.Outcome.Reason)
		}
	}

	if !known {
		a.coord.RequestRedraw(state.RedrawAll)
		return
	}

	switch op {
	case task.OpScan:
		a.pane.CompleteIncrementalLoading(time.Now)
	case task.OpCopy, task.OpMove, task.OpRename:
		if c.Outcome.Ok {
			a.spawnScan(a.pane.Cwd())
		}
	}
	a.coord.RequestRedraw(state.RedrawAll)
}

func (a *app) setStatus(msg string) {
	if err := a.coord.UpdateUI(func(ui *state.UIState) { ui.StatusMessage = msg }); err != nil {
		slog.Warn("[tfm] failed to publish status message", "error", err)
	}
}
