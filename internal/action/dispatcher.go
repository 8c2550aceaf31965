package action

import (
	"context"
	"fmt"
	"log/slog"
	"sort"

	"github.com/consistent-milk12/fsm-sub001/internal/state"
)

// DispatchResult is the outcome of handling one action.
type DispatchResult int

const (
	Continue DispatchResult = iota
	Terminate
	NotHandled
)

// Priority orders sub-dispatchers; lower values are consulted first.
// Named Critical/High/Normal/Low per spec.md §4.2's ordering
// "Critical < High < Normal < Low".
type Priority int

const (
	PriorityCritical Priority = iota
	PriorityHigh
	PriorityNormal
	PriorityLow
)

// Handler is the sub-dispatcher contract: CanHandle matches an action
// without side effects, Handle performs it.
type Handler interface {
	Name() string
	Priority() Priority
	CanHandle(a Action) bool
	Handle(ctx context.Context, a Action) (DispatchResult, error)
}

// Dispatcher routes each action to exactly one sub-dispatcher, per the
// priority-ordered algorithm in spec.md §4.2.
type Dispatcher struct {
	handlers []Handler
	batcher  *Batcher
	coord    *state.Coordinator
}

// New builds a dispatcher over handlers, sorted by ascending priority
// (ties keep registration order, since sort.SliceStable is used). coord is
// used to surface an "unknown action" notification when no handler claims
// an action (spec.md §4.2); it may be nil, in which case that notification
// is skipped and only the warning log fires.
func New(handlers []Handler, coord *state.Coordinator) *Dispatcher {
	sorted := make([]Handler, len(handlers))
	copy(sorted, handlers)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Priority() < sorted[j].Priority() })
	return &Dispatcher{handlers: sorted, batcher: NewBatcher(), coord: coord}
}

// Dispatch routes a single action immediately (bypassing the batcher),
// applying the Quit short-circuit and the first-claim routing rule.
func (d *Dispatcher) Dispatch(ctx context.Context, a Action) (DispatchResult, error) {
	if a.Kind == KindQuit {
		return Terminate, nil
	}
	for _, h := range d.handlers {
		if h.CanHandle(a) {
			return h.Handle(ctx, a)
		}
	}
	slog.Warn("[action] unknown action", "kind", a.Kind)
	if d.coord != nil {
		if err := d.coord.NotifyErr(fmt.Errorf("unknown action: %v", a.Kind)); err != nil {
			return NotHandled, err
		}
	}
	return NotHandled, nil
}

// Feed hands a just-arrived action to the batcher instead of dispatching it
// immediately; call DrainReady periodically (or after Feed reports a flush
// is due) to dispatch whatever the batcher has coalesced.
func (d *Dispatcher) Feed(a Action) bool {
	return d.batcher.Push(a)
}

// DrainReady dispatches every action the batcher currently holds, in
// per-source order, and clears the batch. On Terminate, the caller's loop
// should stop feeding further actions.
func (d *Dispatcher) DrainReady(ctx context.Context) (DispatchResult, error) {
	batch := d.batcher.Flush()
	for _, a := range batch {
		result, err := d.Dispatch(ctx, a)
		if err != nil {
			return result, err
		}
		if result == Terminate {
			return Terminate, nil
		}
	}
	return Continue, nil
}
