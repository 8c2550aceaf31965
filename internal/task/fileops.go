package task

import (
	"io"
	"os"
	"path/filepath"
	"time"
)

const copyChunkSize = 64 * 1024 // 64 KiB read/write buffer

// maxProgressInterval and progressStep bound how often a file-op emits
// progress: every 1 MiB or 10% of the current file's size, whichever is
// smaller, but never less than once per file (spec.md §4.4).
const maxProgressInterval = 1 << 20 // 1 MiB

// fileJob is one source/destination pair within a copy or move operation.
type fileJob struct {
	src     string
	dst     string
	size    int64
	isDir   bool
}

// planFileOps walks src (which may be a single file or a directory tree)
// and returns the total byte/file counts plus the ordered job list,
// mirroring spec.md §4.4 step 1 ("compute total bytes and total files").
func planFileOps(src, dst string) ([]fileJob, int64, int, error) {
	info, err := os.Lstat(src)
	if err != nil {
		return nil, 0, 0, err
	}
	if !info.IsDir() {
		return []fileJob{{src: src, dst: dst, size: info.Size()}}, info.Size(), 1, nil
	}

	var jobs []fileJob
	var totalBytes int64
	fileCount := 0

	walkErr := filepath.WalkDir(src, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			jobs = append(jobs, fileJob{src: path, dst: target, isDir: true})
			return nil
		}
		fi, err := d.Info()
		if err != nil {
			return err
		}
		jobs = append(jobs, fileJob{src: path, dst: target, size: fi.Size()})
		totalBytes += fi.Size()
		fileCount++
		return nil
	})
	if walkErr != nil {
		return nil, 0, 0, walkErr
	}
	return jobs, totalBytes, fileCount, nil
}

// progressStep returns the byte interval at which to emit a progress event
// for a file of the given size: min(1MiB, 10% of size), but at least 1 byte
// so every file emits at least one progress event.
func progressStep(size int64) int64 {
	step := size / 10
	if step > maxProgressInterval {
		step = maxProgressInterval
	}
	if step < 1 {
		step = 1
	}
	return step
}

// copyFileChunked copies one file in copyChunkSize chunks, invoking onChunk
// after every write with the cumulative bytes written so far. Honors
// cancellation between chunks.
func copyFileChunked(srcPath, dstPath string, cancel *CancelToken, onChunk func(written int64)) error {
	in, err := os.Open(srcPath)
	if err != nil {
		return err
	}
	defer in.Close()

	if err := os.MkdirAll(filepath.Dir(dstPath), 0o755); err != nil {
		return err
	}
	out, err := os.Create(dstPath)
	if err != nil {
		return err
	}
	defer out.Close()

	buf := make([]byte, copyChunkSize)
	var written int64
	for {
		if cancel != nil && cancel.IsCancelled() {
			return errCancelled
		}
		n, rerr := in.Read(buf)
		if n > 0 {
			if _, werr := out.Write(buf[:n]); werr != nil {
				return werr
			}
			written += int64(n)
			onChunk(written)
		}
		if rerr == io.EOF {
			return nil
		}
		if rerr != nil {
			return rerr
		}
	}
}

type cancelledErr struct{}

func (cancelledErr) Error() string { return "cancelled" }

var errCancelled = cancelledErr{}

// Copy copies src (file or directory tree) to dst, emitting Progress events
// at the chunk cadence described in spec.md §4.4 and a final Complete.
func Copy(id TaskId, src, dst string, cancel *CancelToken, out chan<- TaskResult) {
	runFileOp(id, OpCopy, src, dst, cancel, out, false)
}

// Move copies src to dst then removes src once every file has been copied
// successfully, emitting the same progress cadence as Copy.
func Move(id TaskId, src, dst string, cancel *CancelToken, out chan<- TaskResult) {
	runFileOp(id, OpMove, src, dst, cancel, out, true)
}

func runFileOp(id TaskId, op OperationType, src, dst string, cancel *CancelToken, out chan<- TaskResult, removeSourceAfter bool) {
	start := time.Now()
	jobs, totalBytes, totalFiles, err := planFileOps(src, dst)
	if err != nil {
		out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: err.Error()}})
		return
	}

	var bytesDone int64
	filesDone := 0

	for _, j := range jobs {
		if cancel != nil && cancel.IsCancelled() {
			out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: "cancelled"}})
			return
		}
		if j.isDir {
			if err := os.MkdirAll(j.dst, 0o755); err != nil {
				out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: err.Error()}})
				return
			}
			continue
		}

		step := progressStep(j.size)
		lastEmit := int64(0)
		baseDone := bytesDone
		emitted := false
		cerr := copyFileChunked(j.src, j.dst, cancel, func(written int64) {
			if written-lastEmit >= step || written == j.size {
				lastEmit = written
				emitted = true
				out <- ProgressResult(Progress{
					TaskId:       id,
					Operation:    op,
					CurrentBytes: baseDone + written,
					TotalBytes:   totalBytes,
					CurrentItem:  j.src,
					ItemsDone:    filesDone,
					ItemsTotal:   totalFiles,
					StartTime:    start,
				})
			}
		})
		if cerr == errCancelled {
			out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: "cancelled"}})
			return
		}
		if cerr != nil {
			out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: cerr.Error()}})
			return
		}
		if !emitted {
			// An empty file never reaches onChunk.
			out <- ProgressResult(Progress{TaskId: id, Operation: op, CurrentBytes: baseDone, TotalBytes: totalBytes,
				CurrentItem: j.src, ItemsDone: filesDone, ItemsTotal: totalFiles, StartTime: start})
		}
		bytesDone += j.size
		filesDone++
	}

	if removeSourceAfter {
		if err := os.RemoveAll(src); err != nil {
			out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: err.Error()}})
			return
		}
	}

	out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: true}})
}

// Rename performs a single atomic OS rename and emits one progress event
// plus Complete, per spec.md §4.4.
func Rename(id TaskId, oldPath, newPath string, out chan<- TaskResult) {
	if err := os.Rename(oldPath, newPath); err != nil {
		out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: false, Reason: err.Error()}})
		return
	}
	out <- ProgressResult(Progress{TaskId: id, Operation: OpRename, ItemsDone: 1, ItemsTotal: 1})
	out <- CompleteResult(Complete{TaskId: id, Outcome: Outcome{Ok: true}})
}
