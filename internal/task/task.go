// Package task implements the background task protocol from spec.md §4.4:
// a monotonically increasing TaskId, a TaskResult channel carrying
// Progress/Complete/Stream/Legacy variants, and a process-wide cancellation
// token table that long-running workers poll at chunk boundaries.
package task

import (
	"sync"
	"sync/atomic"
	"time"
)

// TaskId identifies one background task. IDs are assigned in increasing
// order within a process and are never reused.
type TaskId uint64

var nextID atomic.Uint64

// NewTaskId allocates the next monotonically increasing TaskId.
func NewTaskId() TaskId {
	return TaskId(nextID.Add(1))
}

// OperationType labels what kind of work a Progress result reports on.
type OperationType int

const (
	OpScan OperationType = iota
	OpFilenameSearch
	OpContentSearch
	OpMetadata
	OpSize
	OpCopy
	OpMove
	OpRename
)

// ResultKind tags which variant a TaskResult carries.
type ResultKind int

const (
	KindProgress ResultKind = iota
	KindComplete
	KindStream
	KindLegacy
)

// Progress reports incremental work on a long-running task.
type Progress struct {
	TaskId        TaskId
	Operation     OperationType
	CurrentBytes  int64
	TotalBytes    int64
	CurrentItem   string
	ItemsDone     int
	ItemsTotal    int
	StartTime     time.Time
	ThroughputBps float64
	HasThroughput bool
}

// Outcome is Complete's Ok(message) | Err(reason) sum.
type Outcome struct {
	Ok     bool
	Value  string
	Reason string
}

// Complete reports the final outcome of a task.
type Complete struct {
	TaskId  TaskId
	Outcome Outcome
}

// Stream carries one incremental delivery (a scan entry, a search hit).
type Stream struct {
	TaskId  TaskId
	Payload any
}

// Legacy carries a simple task's done-ness plus optional progress fields,
// for tasks that don't need the full Progress/Stream machinery.
type Legacy struct {
	TaskId   TaskId
	Ok       bool
	Message  string
	Progress *Progress
}

// TaskResult is one of Progress, Complete, Stream, or Legacy, tagged by
// Kind. Exactly one of the embedded pointers is non-nil, matching Kind.
type TaskResult struct {
	Kind     ResultKind
	Progress *Progress
	Complete *Complete
	Stream   *Stream
	Legacy   *Legacy
}

func ProgressResult(p Progress) TaskResult { return TaskResult{Kind: KindProgress, Progress: &p} }
func CompleteResult(c Complete) TaskResult { return TaskResult{Kind: KindComplete, Complete: &c} }
func StreamResult(s Stream) TaskResult     { return TaskResult{Kind: KindStream, Stream: &s} }
func LegacyResult(l Legacy) TaskResult     { return TaskResult{Kind: KindLegacy, Legacy: &l} }

// CancelToken is a single task's cooperative cancellation flag. Workers
// check IsCancelled between work units (chunk boundaries); Cancel is safe
// to call from any goroutine, any number of times.
type CancelToken struct {
	cancelled atomic.Bool
}

func (t *CancelToken) Cancel()           { t.cancelled.Store(true) }
func (t *CancelToken) IsCancelled() bool { return t.cancelled.Load() }

// Status is where a TaskInfo currently sits in its lifecycle.
type Status int

const (
	StatusRunning Status = iota
	StatusComplete
)

// TaskInfo is the task table's per-task record, spec.md §3's AppState
// `TaskId → TaskInfo` entry. A running task carries a live cancellation
// token; once the task completes the token is released (nothing left to
// cancel) but the record itself stays in the table so its final Outcome
// remains inspectable, per spec.md §8 property 6.
type TaskInfo struct {
	Id        TaskId
	Operation OperationType
	Status    Status
	Outcome   Outcome

	cancel *CancelToken
}

// Table is the process-wide task table, keyed by TaskId: spawn-to-
// completion records plus each running task's cancellation token.
type Table struct {
	mu    sync.RWMutex
	tasks map[TaskId]*TaskInfo
}

// NewTable creates an empty task table.
func NewTable() *Table {
	return &Table{tasks: make(map[TaskId]*TaskInfo)}
}

// Register records a newly spawned task and returns its cancellation
// token.
func (t *Table) Register(id TaskId, op OperationType) *CancelToken {
	tok := &CancelToken{}
	t.mu.Lock()
	t.tasks[id] = &TaskInfo{Id: id, Operation: op, Status: StatusRunning, cancel: tok}
	t.mu.Unlock()
	return tok
}

// Cancel sets the cancellation flag for id, if it is registered and still
// running. Returns false if id is unknown or already complete.
func (t *Table) Cancel(id TaskId) bool {
	t.mu.RLock()
	info, ok := t.tasks[id]
	t.mu.RUnlock()
	if !ok || info.Status != StatusRunning || info.cancel == nil {
		return false
	}
	info.cancel.Cancel()
	return true
}

// Complete records id's terminal Outcome, satisfying spec.md §8 property 6:
// the table's final state holds exactly one Complete per TaskId spawned.
// The cancellation token is dropped; a completed task can no longer be
// cancelled. Completing an id the table never saw Register for (a task
// that never needed cancellation, e.g. Rename) still creates its record.
func (t *Table) Complete(id TaskId, outcome Outcome) {
	t.mu.Lock()
	defer t.mu.Unlock()
	info, ok := t.tasks[id]
	if !ok {
		info = &TaskInfo{Id: id}
		t.tasks[id] = info
	}
	info.Status = StatusComplete
	info.Outcome = outcome
	info.cancel = nil
}

// Deregister stops tracking id without recording an outcome.
//
// Deprecated: use Complete, which also records the outcome so the table's
// final state stays inspectable against spec.md §8 property 6.
func (t *Table) Deregister(id TaskId) {
	t.Complete(id, Outcome{})
}

// Get returns a copy of id's record, if the table has ever seen it.
func (t *Table) Get(id TaskId) (TaskInfo, bool) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	info, ok := t.tasks[id]
	if !ok {
		return TaskInfo{}, false
	}
	return *info, true
}

// Snapshot copies every record currently in the table, for inspecting the
// table's final state against spec.md §8 property 6.
func (t *Table) Snapshot() map[TaskId]TaskInfo {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make(map[TaskId]TaskInfo, len(t.tasks))
	for id, info := range t.tasks {
		out[id] = *info
	}
	return out
}

// Len reports how many tasks are currently running (for diagnostics).
func (t *Table) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	n := 0
	for _, info := range t.tasks {
		if info.Status == StatusRunning {
			n++
		}
	}
	return n
}
