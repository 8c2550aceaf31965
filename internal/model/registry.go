package model

import "sync"

// shardCount is the number of internal shards of the entry registry. Each
// shard is a plain map behind its own RWMutex: reads take only that shard's
// read lock and installs take only that shard's write lock, so concurrent
// installs into different shards do not serialize.
const shardCount = 16

// Registry is the process-wide, sharded mapping EntryId -> shared
// FullEntry described in spec.md §3. It never evicts during a browsing
// session; invalidation is explicit via Invalidate (rename/delete).
type Registry struct {
	shards [shardCount]registryShard
}

type registryShard struct {
	mu      sync.RWMutex
	entries map[EntryId]*FullEntry
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	r := &Registry{}
	for i := range r.shards {
		r.shards[i].entries = make(map[EntryId]*FullEntry)
	}
	return r
}

func (r *Registry) shardFor(id EntryId) *registryShard {
	return &r.shards[uint64(id)%shardCount]
}

// Get returns a shared handle to the entry without blocking writers to other
// shards. The returned pointer must be treated as immutable by the caller.
func (r *Registry) Get(id EntryId) (*FullEntry, bool) {
	shard := r.shardFor(id)
	shard.mu.RLock()
	defer shard.mu.RUnlock()
	e, ok := shard.entries[id]
	return e, ok
}

// Install atomically publishes a new (or replacement) FullEntry. Writers
// install new values; existing readers holding a previously returned pointer
// continue to see the old, unmutated value (entries are immutable once
// installed).
func (r *Registry) Install(entry FullEntry) {
	shard := r.shardFor(entry.Id)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	cp := entry
	shard.entries[entry.Id] = &cp
}

// Invalidate explicitly evicts an entry, per spec.md §3 ("invalidation is
// explicit on rename/delete"). It is a no-op if the id is not present.
func (r *Registry) Invalidate(id EntryId) {
	shard := r.shardFor(id)
	shard.mu.Lock()
	defer shard.mu.Unlock()
	delete(shard.entries, id)
}

// Len reports the total number of installed entries across all shards.
// Intended for tests/metrics, not the hot path.
func (r *Registry) Len() int {
	total := 0
	for i := range r.shards {
		r.shards[i].mu.RLock()
		total += len(r.shards[i].entries)
		r.shards[i].mu.RUnlock()
	}
	return total
}
