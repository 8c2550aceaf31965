// Package model holds the entry metadata types from spec.md §3: the
// immutable LightEntry/FullEntry value forms, the process-wide entry
// registry, and the packed SortableRow used by panes during sort/scroll.
package model

import (
	"hash/maphash"
	"path/filepath"
	"strings"
	"time"
)

// EntryId is a stable 64-bit hash of an entry's absolute path. Path
// uniqueness implies EntryId uniqueness within a process run (spec §3).
type EntryId uint64

var pathHashSeed = maphash.MakeSeed()

// NewEntryId hashes an absolute path into a stable EntryId for this process
// run. The seed is fixed per-process (maphash.MakeSeed is called once at
// package init), so repeated calls with the same path within one run always
// return the same id; across runs the seed differs, which is fine since
// spec.md only requires within-run stability.
func NewEntryId(absPath string) EntryId {
	var h maphash.Hash
	h.SetSeed(pathHashSeed)
	_, _ = h.WriteString(absPath)
	return EntryId(h.Sum64())
}

// LightEntry is fillable from a single directory-read call without an extra
// stat: path, display name, extension, and kind flags.
type LightEntry struct {
	Id        EntryId
	Path      string
	Name      string
	Ext       string
	IsDir     bool
	IsSymlink bool
}

// NewLightEntry builds a LightEntry from a directory path and one child name,
// deriving the rest of the fields without touching the filesystem again.
func NewLightEntry(dir, name string, isDir, isSymlink bool) LightEntry {
	abs := filepath.Join(dir, name)
	return LightEntry{
		Id:        NewEntryId(abs),
		Path:      abs,
		Name:      name,
		Ext:       extOf(name),
		IsDir:     isDir,
		IsSymlink: isSymlink,
	}
}

func extOf(name string) string {
	ext := filepath.Ext(name)
	if ext == "" || ext == name {
		return ""
	}
	return strings.TrimPrefix(ext, ".")
}

// FullEntry extends LightEntry with size, direct-child count (directories
// only), and modification time.
type FullEntry struct {
	LightEntry
	Size     int64
	Children int // direct children only, directories only; 0 for files
	ModTime  time.Time
}

// NameHash32 returns the 32-bit hashed-name sort key used by SortableRow:
// computed once from the canonicalized (lowercased) name, per spec.md §3/§4.3
// ("deterministic but case-insensitive-looking order because the hash is
// computed once from the canonical lowercased name").
func NameHash32(name string) uint32 {
	var h maphash.Hash
	h.SetSeed(pathHashSeed)
	_, _ = h.WriteString(strings.ToLower(name))
	sum := h.Sum64()
	return uint32(sum ^ (sum >> 32))
}
