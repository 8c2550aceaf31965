package action

import "time"

// defaultBatchSize and defaultBatchTimeout are the count/wall-clock flush
// triggers from spec.md §4.2: coalesce contiguous actions (e.g. N
// navigation keys) into one state transition.
const (
	defaultBatchSize    = 32
	defaultBatchTimeout = 8 * time.Millisecond
)

// Batcher groups incoming actions by Source, preserving each source's
// arrival order, and reports when a count or timeout threshold is due.
// Flush drains per source in a fixed order (user-input, then background);
// this satisfies "preserve per-source ordering" while "may interleave
// across sources" is left to the caller if it chooses a different
// merge strategy.
type Batcher struct {
	size      int
	timeout   time.Duration
	queues    map[Source][]Action
	lastFlush time.Time
	count     int
}

// NewBatcher creates a batcher with the default thresholds.
func NewBatcher() *Batcher {
	return NewBatcherWithThresholds(defaultBatchSize, defaultBatchTimeout)
}

// NewBatcherWithThresholds creates a batcher with custom thresholds.
func NewBatcherWithThresholds(size int, timeout time.Duration) *Batcher {
	return &Batcher{
		size:      size,
		timeout:   timeout,
		queues:    make(map[Source][]Action),
		lastFlush: time.Time{},
	}
}

// coalescableKinds are action kinds where only the most recently pushed
// instance matters: each later action fully supersedes whatever the same
// kind queued earlier from the same source, since handling it N times would
// do the same work N times for no extra effect over handling it once with
// the final value. Five keystrokes into the filename-search box become one
// search for the final string, per spec.md §8 scenario B.
var coalescableKinds = map[Kind]bool{
	KindFilenameSearchQuery: true,
	KindContentSearchQuery:  true,
	KindShowPrompt:          true,
	KindResize:              true,
}

// Push appends a into its source's queue, or — for a coalescable kind —
// overwrites the queue slot already held by an earlier action of the same
// kind instead of appending a second one. Returns true if the batch has now
// reached its count threshold and should be flushed.
func (b *Batcher) Push(a Action) bool {
	if coalescableKinds[a.Kind] {
		for i, queued := range b.queues[a.Source] {
			if queued.Kind == a.Kind {
				b.queues[a.Source][i] = a
				return b.count >= b.size
			}
		}
	}
	b.queues[a.Source] = append(b.queues[a.Source], a)
	b.count++
	return b.count >= b.size
}

// DueByTimeout reports whether a non-empty batch should flush even though
// the count threshold has not been reached: immediately if the batcher has
// never flushed, otherwise once now is at least the timeout past the last
// flush.
func (b *Batcher) DueByTimeout(now time.Time) bool {
	if b.count == 0 {
		return false
	}
	if b.lastFlush.IsZero() {
		return true
	}
	return now.Sub(b.lastFlush) >= b.timeout
}

// sourceOrder fixes the deterministic drain order used by Flush.
var sourceOrder = []Source{SourceUserInput, SourceBackground}

// Flush returns every queued action (source order: user-input, then
// background; each source's own arrival order preserved) and clears the
// batcher.
func (b *Batcher) Flush() []Action {
	var out []Action
	for _, src := range sourceOrder {
		out = append(out, b.queues[src]...)
	}
	b.queues = make(map[Source][]Action)
	b.count = 0
	b.lastFlush = time.Now()
	return out
}

// Pending reports how many actions are currently queued across all sources.
func (b *Batcher) Pending() int { return b.count }
