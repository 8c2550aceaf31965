// Package state implements the state coordinator from spec.md §4.1: three
// containers (AppState/FSState/UIState) with a mandatory App→FS→UI lock
// ordering, a UIState published via an atomic pointer swap so readers get a
// stable handle without a coordinator-level lock, and a lock-free redraw
// dirty flag bit set.
//
// Go has no built-in poisoned-mutex concept (unlike the Rust original this
// spec was distilled from). Coordinator approximates it: each container
// has its own poisoned flag, and every acquire on a poisoned container
// fails fast with errs.KindStateLockPoisoned instead of blocking. Only
// UpdateUI and UpdateUIAsync recover a panic in their critical section and
// set a flag (the UI one); nothing sets the App or FS flag.
package state

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/consistent-milk12/fsm-sub001/internal/errs"
	"github.com/consistent-milk12/fsm-sub001/internal/model"
	"github.com/consistent-milk12/fsm-sub001/internal/pane"
	"github.com/consistent-milk12/fsm-sub001/internal/task"
)

// historyCap bounds CommandHistory per spec.md §3: a ring, not an
// unbounded log.
const historyCap = 128

// CommandHistory is a fixed-capacity ring of submitted command lines, most
// recent last. Pushing past historyCap drops the oldest entry.
type CommandHistory struct {
	entries []string
}

// Push appends cmd, evicting the oldest entry once historyCap is reached.
func (h *CommandHistory) Push(cmd string) {
	h.entries = append(h.entries, cmd)
	if len(h.entries) > historyCap {
		h.entries = h.entries[len(h.entries)-historyCap:]
	}
}

// Entries returns the history oldest-first. The caller gets its own copy;
// mutating it does not affect the ring.
func (h *CommandHistory) Entries() []string {
	out := make([]string, len(h.entries))
	copy(out, h.entries)
	return out
}

// Len reports how many commands the ring currently holds.
func (h *CommandHistory) Len() int { return len(h.entries) }

// AppState holds top-level application state: low contention expected.
type AppState struct {
	Quitting  bool
	StartedAt time.Time

	// Tasks is the process-wide TaskId -> TaskInfo table (spec.md §3),
	// shared with every action handler that spawns a background task.
	Tasks *task.Table

	// History is the submitted-command ring (spec.md §3).
	History CommandHistory

	// Marked holds the entry ids selected for a batch operation (spec.md §3).
	Marked map[model.EntryId]struct{}

	// Plugins is the plugin registry, keyed by name. Loading plugins is out
	// of scope; the registry itself is still a named part of the data model
	// and callers may populate it directly.
	Plugins map[string]any

	// LastError and LastStatus mirror the most recent notification shown to
	// the user, independent of the UIState.Notification that auto-dismisses.
	LastError  string
	LastStatus string
}

// ToggleMarked flips id's membership in Marked, initializing the set on
// first use.
func (s *AppState) ToggleMarked(id model.EntryId) {
	if s.Marked == nil {
		s.Marked = make(map[model.EntryId]struct{})
	}
	if _, ok := s.Marked[id]; ok {
		delete(s.Marked, id)
		return
	}
	s.Marked[id] = struct{}{}
}

// RegisterPlugin installs p under name in the plugin registry, initializing
// it on first use.
func (s *AppState) RegisterPlugin(name string, p any) {
	if s.Plugins == nil {
		s.Plugins = make(map[string]any)
	}
	s.Plugins[name] = p
}

// Plugin looks up a previously registered plugin by name.
func (s *AppState) Plugin(name string) (any, bool) {
	p, ok := s.Plugins[name]
	return p, ok
}

// FSState holds pane fields; mutations are expected to be short.
type FSState struct {
	Panes      []*pane.Pane
	ActivePane int
}

// NotificationLevel classifies a Notification for the renderer, per
// spec.md §7's recoverable/non-recoverable split.
type NotificationLevel int

const (
	NotificationInfo NotificationLevel = iota
	NotificationWarn
	NotificationError
	NotificationSuccess
)

// DefaultNotificationDismiss is the auto-dismiss window for a recoverable
// (Warn-level) notification, per spec.md §7.
const DefaultNotificationDismiss = 5000 * time.Millisecond

// Notification is a single surfaced message with a level and an optional
// auto-dismiss deadline. A zero Deadline means the notification is sticky:
// it stays until explicitly replaced or cleared (spec.md §7: "non-recoverable
// errors show an error notification with no auto-dismiss").
type Notification struct {
	Level    NotificationLevel
	Message  string
	Deadline time.Time
}

// expired reports whether the notification's auto-dismiss deadline has
// passed as of now. A sticky notification (zero Deadline) never expires.
func (n *Notification) expired(now time.Time) bool {
	return !n.Deadline.IsZero() && !now.Before(n.Deadline)
}

// UIState holds overlay/prompt/command-mode flags surfaced to the renderer.
type UIState struct {
	ShowHelp          bool
	ShowSearchOverlay bool
	CommandMode       bool
	ShowSystemMonitor bool
	Prompt            string
	StatusMessage     string
	Notification      *Notification
}

// uiHandle is the (RWMutex, UIState) pair published behind an atomic
// pointer. Cloning the pointer (ui_state_handle) is cheap; the caller takes
// its own read or write lock on the handle it received.
type uiHandle struct {
	mu    sync.RWMutex
	state UIState
}

// Coordinator mediates all access to AppState/FSState/UIState. The mandatory
// global lock order is App → FS → UI; no caller may acquire these in any
// other order (see WithAllReadonly).
type Coordinator struct {
	appMu       sync.Mutex
	app         AppState
	appPoisoned atomic.Bool

	fsMu       sync.Mutex
	fs         FSState
	fsPoisoned atomic.Bool

	ui         atomic.Pointer[uiHandle]
	uiPoisoned atomic.Bool

	redraw atomic.Uint32
}

// New creates a coordinator with zero-valued containers.
func New() *Coordinator {
	c := &Coordinator{}
	c.ui.Store(&uiHandle{})
	c.app.Marked = make(map[model.EntryId]struct{})
	c.app.Plugins = make(map[string]any)
	return c
}

// AppStateGuard is a blocking-acquired write handle on AppState.
type AppStateGuard struct {
	c *Coordinator
	s *AppState
}

// State returns the guarded AppState for mutation.
func (g *AppStateGuard) State() *AppState { return g.s }

// Release unlocks the guard. Must be called exactly once.
func (g *AppStateGuard) Release() { g.c.appMu.Unlock() }

// AppStateGuard blocks until AppState's lock is acquired.
func (c *Coordinator) AppStateGuard() (*AppStateGuard, error) {
	if c.appPoisoned.Load() {
		return nil, errs.StateLockPoisoned("app")
	}
	c.appMu.Lock()
	return &AppStateGuard{c: c, s: &c.app}, nil
}

// FSStateGuard is a blocking-acquired write handle on FSState.
type FSStateGuard struct {
	c *Coordinator
	s *FSState
}

// State returns the guarded FSState for mutation.
func (g *FSStateGuard) State() *FSState { return g.s }

// Release unlocks the guard. Must be called exactly once.
func (g *FSStateGuard) Release() { g.c.fsMu.Unlock() }

// FSStateGuard blocks until FSState's lock is acquired.
func (c *Coordinator) FSStateGuard() (*FSStateGuard, error) {
	if c.fsPoisoned.Load() {
		return nil, errs.StateLockPoisoned("fs")
	}
	c.fsMu.Lock()
	return &FSStateGuard{c: c, s: &c.fs}, nil
}

// UIStateHandle returns the current published UI handle: a cheap atomic-load
// clone of the pointer. The caller takes its own RLock/Lock on it.
func (c *Coordinator) UIStateHandle() *uiHandle {
	return c.ui.Load()
}

// RLock acquires a read lock and returns the underlying UIState for
// inspection; call RUnlock when done.
func (h *uiHandle) RLock() *UIState {
	h.mu.RLock()
	return &h.state
}

// RUnlock releases the read lock taken by RLock.
func (h *uiHandle) RUnlock() { h.mu.RUnlock() }

// UpdateUI acquires the UI write lock, applies f, and releases it. A panic
// inside f poisons the UI container and is converted to
// errs.KindStateLockPoisoned rather than crashing the caller; the session
// should still treat this as fatal per spec.md §4.1.
func (c *Coordinator) UpdateUI(f func(*UIState)) (err error) {
	if c.uiPoisoned.Load() {
		return errs.StateLockPoisoned("ui")
	}
	h := c.ui.Load()
	h.mu.Lock()
	defer h.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			c.uiPoisoned.Store(true)
			err = errs.StateLockPoisoned("ui")
		}
	}()
	f(&h.state)
	return nil
}

// UpdateUIAsync is UpdateUI's asynchronous counterpart: it polls for the
// write lock instead of blocking indefinitely, failing with
// errs.KindStateLockTimeout if neither the lock nor ctx becomes available
// before timeout elapses.
func (c *Coordinator) UpdateUIAsync(ctx context.Context, f func(*UIState), timeout time.Duration) (err error) {
	if c.uiPoisoned.Load() {
		return errs.StateLockPoisoned("ui")
	}
	h := c.ui.Load()
	deadline := time.Now().Add(timeout)
	const pollInterval = time.Millisecond
	for {
		if h.mu.TryLock() {
			break
		}
		if !time.Now().Before(deadline) {
			return errs.StateLockTimeout("ui")
		}
		select {
		case <-ctx.Done():
			return errs.StateLockTimeout("ui")
		case <-time.After(pollInterval):
		}
	}
	defer h.mu.Unlock()
	defer func() {
		if r := recover(); r != nil {
			c.uiPoisoned.Store(true)
			err = errs.StateLockPoisoned("ui")
		}
	}()
	f(&h.state)
	return nil
}

// SetStatus publishes a non-error status message to the UI status line and
// records it as AppState.LastStatus.
func (c *Coordinator) SetStatus(message string) error {
	ag, err := c.AppStateGuard()
	if err != nil {
		return err
	}
	ag.State().LastStatus = message
	ag.Release()

	return c.UpdateUI(func(ui *UIState) { ui.StatusMessage = message })
}

// NotifyErr records err as AppState.LastError and surfaces a UI
// notification per spec.md §7: a recoverable error (errs.IsRecoverable)
// gets a warning notification that auto-dismisses after
// DefaultNotificationDismiss; everything else gets a sticky error
// notification with no dismiss deadline.
func (c *Coordinator) NotifyErr(err error) error {
	ag, aerr := c.AppStateGuard()
	if aerr != nil {
		return aerr
	}
	ag.State().LastError = err.Error()
	ag.Release()

	level := NotificationError
	var deadline time.Time
	if errs.IsRecoverable(err) {
		level = NotificationWarn
		deadline = time.Now().Add(DefaultNotificationDismiss)
	}
	return c.UpdateUI(func(ui *UIState) {
		ui.StatusMessage = err.Error()
		ui.Notification = &Notification{Level: level, Message: err.Error(), Deadline: deadline}
	})
}

// PruneNotification clears ui.Notification once its auto-dismiss deadline
// has passed, as of now. The main loop calls this on every iteration; it
// requests a redraw when it actually clears a notification so the cleared
// state reaches the screen.
func (c *Coordinator) PruneNotification(now time.Time) error {
	cleared := false
	err := c.UpdateUI(func(ui *UIState) {
		if ui.Notification != nil && ui.Notification.expired(now) {
			ui.Notification = nil
			cleared = true
		}
	})
	if err != nil {
		return err
	}
	if cleared {
		c.RequestRedraw(RedrawStatus)
	}
	return nil
}

// RedrawFlag is one bit in the redraw dirty set. Components mark themselves
// dirty independently instead of forcing a full repaint on every change,
// mirroring original_source/fsm-core's RedrawFlag::{All,Overlay,...}
// variants (see command_dispatcher.rs, request_redraw(RedrawFlag::Overlay)
// vs request_redraw(RedrawFlag::All)).
type RedrawFlag uint32

const (
	RedrawPane RedrawFlag = 1 << iota
	RedrawOverlay
	RedrawStatus
	RedrawPrompt
)

// RedrawAll marks every known component dirty; handlers that have not been
// taught a finer-grained flag use this.
const RedrawAll = RedrawPane | RedrawOverlay | RedrawStatus | RedrawPrompt

// RequestRedraw ORs flag into the dirty bit set.
func (c *Coordinator) RequestRedraw(flag RedrawFlag) {
	for {
		old := c.redraw.Load()
		next := old | uint32(flag)
		if next == old || c.redraw.CompareAndSwap(old, next) {
			return
		}
	}
}

// ClearRedraw clears the entire dirty bit set.
func (c *Coordinator) ClearRedraw() { c.redraw.Store(0) }

// NeedsRedraw reports whether any bit in the dirty set is set.
func (c *Coordinator) NeedsRedraw() bool { return c.redraw.Load() != 0 }

// WithAllReadonly acquires App, then FS, then UI (read lock) in that fixed
// order and passes immutable references to f. This is the only sanctioned
// way to read across all three containers consistently; acquiring them in
// any other order anywhere else in the codebase is a bug.
func (c *Coordinator) WithAllReadonly(f func(app *AppState, fs *FSState, ui *UIState)) error {
	if c.appPoisoned.Load() {
		return errs.StateLockPoisoned("app")
	}
	if c.fsPoisoned.Load() {
		return errs.StateLockPoisoned("fs")
	}
	if c.uiPoisoned.Load() {
		return errs.StateLockPoisoned("ui")
	}
	c.appMu.Lock()
	defer c.appMu.Unlock()
	c.fsMu.Lock()
	defer c.fsMu.Unlock()
	h := c.ui.Load()
	h.mu.RLock()
	defer h.mu.RUnlock()
	f(&c.app, &c.fs, &h.state)
	return nil
}
