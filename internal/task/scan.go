package task

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/consistent-milk12/fsm-sub001/internal/errs"
	"github.com/consistent-milk12/fsm-sub001/internal/model"
)

// ScanEntryAdded is one Stream payload emitted per non-dotfile directory
// entry as the scan discovers it.
type ScanEntryAdded struct {
	Entry model.LightEntry
}

// ScanBatchComplete reports cumulative progress within a single scan.
type ScanBatchComplete struct {
	Processed int
	Total     *int
}

// ScanComplete reports the final tally once a scan finishes.
type ScanComplete struct {
	Total   int
	Elapsed time.Duration
}

// ScanError carries a terminal scan failure.
type ScanError struct {
	Message string
}

const scanBatchSize = 64

// ScanDirectory reads dir non-recursively, skipping dotfiles, and streams
// ScanEntryAdded/ScanBatchComplete/ScanComplete/ScanError results to out, per
// spec.md §4.4. It builds LightEntry from each directory entry's type hint
// without a second stat call where the OS provides one (os.DirEntry.Type()
// on most platforms avoids the extra lstat os.ReadDir already had to do).
func ScanDirectory(id TaskId, dir string, cancel *CancelToken, out chan<- TaskResult) {
	start := time.Now()

	entries, err := os.ReadDir(dir)
	if err != nil {
		out <- StreamResult(Stream{TaskId: id, Payload: ScanError{Message: errs.Wrap(errs.KindNotFound, "read directory", err).Error()}})
		return
	}

	processed := 0
	for _, de := range entries {
		if cancel != nil && cancel.IsCancelled() {
			out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: "cancelled"}})
			return
		}
		name := de.Name()
		if strings.HasPrefix(name, ".") {
			continue
		}
		isDir := de.IsDir()
		isSymlink := de.Type()&os.ModeSymlink != 0
		light := model.NewLightEntry(dir, name, isDir, isSymlink)
		out <- StreamResult(Stream{TaskId: id, Payload: ScanEntryAdded{Entry: light}})
		processed++
		if processed%scanBatchSize == 0 {
			out <- StreamResult(Stream{TaskId: id, Payload: ScanBatchComplete{Processed: processed}})
		}
	}

	out <- StreamResult(Stream{TaskId: id, Payload: ScanComplete{Total: processed, Elapsed: time.Since(start)}})
	out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: true, Value: filepath.Clean(dir)}})
}
