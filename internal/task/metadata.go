package task

import (
	"os"
	"path/filepath"

	"github.com/consistent-milk12/fsm-sub001/internal/model"
)

// metadataYieldEvery is how many entries metadata population processes
// before yielding a batch, so the UI isn't starved (spec.md §4.4 default).
const metadataYieldEvery = 16

// EntryMetadataUpdate is one per-entry metadata refresh.
type EntryMetadataUpdate struct {
	Entry model.FullEntry
}

// MetadataBatch groups up to metadataYieldEvery updates emitted together.
type MetadataBatch struct {
	Updates []EntryMetadataUpdate
}

// PopulateMetadata stats each of entries (rooted at dir) and streams
// per-entry update actions in batches of metadataYieldEvery, yielding
// between batches to avoid starving the UI scheduler.
func PopulateMetadata(id TaskId, dir string, entries []model.LightEntry, cancel *CancelToken, out chan<- TaskResult) {
	var batch []EntryMetadataUpdate

	flush := func() {
		if len(batch) == 0 {
			return
		}
		out <- StreamResult(Stream{TaskId: id, Payload: MetadataBatch{Updates: batch}})
		batch = nil
	}

	for _, le := range entries {
		if cancel != nil && cancel.IsCancelled() {
			flush()
			out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: "cancelled"}})
			return
		}
		info, err := os.Lstat(filepath.Join(dir, le.Name))
		if err != nil {
			continue
		}
		full := model.FullEntry{
			LightEntry: le,
			Size:       info.Size(),
			ModTime:    info.ModTime(),
		}
		if le.IsDir {
			if children, err := os.ReadDir(filepath.Join(dir, le.Name)); err == nil {
				full.Children = len(children)
			}
		}
		batch = append(batch, EntryMetadataUpdate{Entry: full})
		if len(batch) >= metadataYieldEvery {
			flush()
		}
	}
	flush()
	out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: true}})
}
