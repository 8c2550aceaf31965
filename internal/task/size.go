package task

import (
	"os"
	"path/filepath"
)

// SizeResult is the single update emitted once a directory's recursive size
// computation finishes.
type SizeResult struct {
	Path          string
	TotalBytes    int64
	DirectChildren int
}

// ComputeSize walks dir's subtree summing file sizes recursively, while
// counting only direct children (spec.md §4.4), emitting a single
// Stream(SizeResult) followed by Complete. Honors cancellation between
// directory visits.
func ComputeSize(id TaskId, dir string, cancel *CancelToken, out chan<- TaskResult) {
	var total int64

	direct, err := os.ReadDir(dir)
	if err != nil {
		out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: err.Error()}})
		return
	}

	walkErr := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if cancel != nil && cancel.IsCancelled() {
			return filepath.SkipAll
		}
		if err != nil {
			return nil
		}
		if d.IsDir() {
			return nil
		}
		if info, err := d.Info(); err == nil {
			total += info.Size()
		}
		return nil
	})

	if cancel != nil && cancel.IsCancelled() {
		out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: "cancelled"}})
		return
	}
	if walkErr != nil {
		out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: walkErr.Error()}})
		return
	}

	out <- StreamResult(Stream{TaskId: id, Payload: SizeResult{Path: dir, TotalBytes: total, DirectChildren: len(direct)}})
	out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: true}})
}
