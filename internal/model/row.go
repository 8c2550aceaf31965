package model

// SortableRow is the packed value panes store instead of full entries,
// eliminating registry lookups during sort and keeping cache lines dense
// (spec.md §3: "a packed 29-byte value").
//
// Field layout mirrors original_source/fsm-core/src/model/object_registry.rs
// SortableEntry: Id (8) + NameHash (4) + Size (8) + ModifiedMs (8) + IsDir (1)
// = 29 bytes of logical payload (Go's struct will pad for alignment; the
// 29-byte figure is the wire/semantic size, not the in-memory sizeof).
type SortableRow struct {
	Id         EntryId
	NameHash   uint32
	Size       int64
	ModifiedMs int64
	IsDir      bool
}

// RowFromFullEntry packs a FullEntry into its SortableRow form.
func RowFromFullEntry(e FullEntry) SortableRow {
	return SortableRow{
		Id:         e.Id,
		NameHash:   NameHash32(e.Name),
		Size:       e.Size,
		ModifiedMs: e.ModTime.UnixMilli(),
		IsDir:      e.IsDir,
	}
}

// RowFromLightEntry packs a LightEntry (no size/mtime yet) into a
// SortableRow; Size/ModifiedMs are zero until metadata population fills
// the registry and a subsequent re-sort picks up the fuller values.
func RowFromLightEntry(e LightEntry) SortableRow {
	return SortableRow{
		Id:       e.Id,
		NameHash: NameHash32(e.Name),
		IsDir:    e.IsDir,
	}
}
