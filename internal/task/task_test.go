package task

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNewTaskIdMonotonic(t *testing.T) {
	a := NewTaskId()
	b := NewTaskId()
	if b <= a {
		t.Fatalf("expected strictly increasing ids, got %d then %d", a, b)
	}
}

func TestTableRegisterCancelDeregister(t *testing.T) {
	tbl := NewTable()
	id := NewTaskId()
	tok := tbl.Register(id, OpScan)
	if tok.IsCancelled() {
		t.Fatal("expected a freshly registered token to be uncancelled")
	}
	if !tbl.Cancel(id) {
		t.Fatal("expected Cancel to find the registered task")
	}
	if !tok.IsCancelled() {
		t.Fatal("expected the token to observe cancellation")
	}
	tbl.Deregister(id)
	if tbl.Cancel(id) {
		t.Fatal("expected Cancel on a deregistered task to report false")
	}
	if tbl.Len() != 0 {
		t.Fatalf("expected 0 running tasks after deregister, got %d", tbl.Len())
	}
	info, ok := tbl.Get(id)
	if !ok {
		t.Fatal("expected the task's record to survive deregistration")
	}
	if info.Status != StatusComplete {
		t.Fatalf("expected Deregister to mark the record complete, got %v", info.Status)
	}
}

func TestTableCompleteRecordsExactlyOneOutcomePerSpawnedId(t *testing.T) {
	tbl := NewTable()
	ids := make([]TaskId, 5)
	for i := range ids {
		ids[i] = NewTaskId()
		tbl.Register(ids[i], OpCopy)
	}

	for _, id := range ids {
		tbl.Complete(id, Outcome{Ok: true, Value: "done"})
	}

	snap := tbl.Snapshot()
	for _, id := range ids {
		info, ok := snap[id]
		if !ok {
			t.Fatalf("expected a record for spawned task %d", id)
		}
		if info.Status != StatusComplete {
			t.Fatalf("expected task %d to be complete, got %v", id, info.Status)
		}
		if !info.Outcome.Ok {
			t.Fatalf("expected task %d's recorded outcome to be Ok", id)
		}
	}
	if len(snap) != len(ids) {
		t.Fatalf("expected exactly %d records, got %d", len(ids), len(snap))
	}

	// A duplicate Complete (e.g. a retried delivery) must not create a
	// second record for the same id.
	tbl.Complete(ids[0], Outcome{Ok: false, Reason: "late duplicate"})
	if len(tbl.Snapshot()) != len(ids) {
		t.Fatal("expected a duplicate Complete to overwrite, not append, a record")
	}
}

func TestTableCompleteWithoutRegisterStillRecords(t *testing.T) {
	tbl := NewTable()
	id := NewTaskId()
	tbl.Complete(id, Outcome{Ok: true})

	info, ok := tbl.Get(id)
	if !ok || info.Status != StatusComplete {
		t.Fatal("expected Complete to record a task the table never saw Register for")
	}
}

func TestScanDirectorySkipsDotfilesAndStreamsEntries(t *testing.T) {
	dir := t.TempDir()
	for _, name := range []string{"b.txt", "a.txt", ".hidden"} {
		if err := os.WriteFile(filepath.Join(dir, name), []byte("x"), 0o644); err != nil {
			t.Fatal(err)
		}
	}

	out := make(chan TaskResult, 32)
	id := NewTaskId()
	ScanDirectory(id, dir, nil, out)
	close(out)

	var added []ScanEntryAdded
	var sawComplete bool
	for r := range out {
		if r.Kind == KindStream {
			if ea, ok := r.Stream.Payload.(ScanEntryAdded); ok {
				added = append(added, ea)
			}
		}
		if r.Kind == KindComplete && r.Complete.Outcome.Ok {
			sawComplete = true
		}
	}
	if len(added) != 2 {
		t.Fatalf("expected 2 non-dotfile entries, got %d", len(added))
	}
	if !sawComplete {
		t.Fatal("expected a successful Complete result")
	}
}

func TestScanDirectoryHonorsCancellation(t *testing.T) {
	dir := t.TempDir()
	for i := 0; i < 5; i++ {
		os.WriteFile(filepath.Join(dir, string(rune('a'+i))+".txt"), []byte("x"), 0o644)
	}
	tok := &CancelToken{}
	tok.Cancel()

	out := make(chan TaskResult, 32)
	ScanDirectory(NewTaskId(), dir, tok, out)
	close(out)

	last := TaskResult{}
	for r := range out {
		last = r
	}
	if last.Kind != KindComplete || last.Complete.Outcome.Ok {
		t.Fatal("expected a cancelled (non-ok) Complete as the final result")
	}
}

func TestFilenameSearchWildcardAndSubstring(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "report.csv"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "report.txt"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "notes.md"), []byte("x"), 0o644)

	out := make(chan TaskResult, 8)
	FilenameSearch(NewTaskId(), dir, "*.csv", nil, out)
	close(out)

	var batch FilenameSearchBatch
	for r := range out {
		if r.Kind == KindStream {
			batch = r.Stream.Payload.(FilenameSearchBatch)
		}
	}
	if len(batch.Matches) != 1 || filepath.Base(batch.Matches[0].Path) != "report.csv" {
		t.Fatalf("expected exactly report.csv to match *.csv, got %+v", batch.Matches)
	}

	out2 := make(chan TaskResult, 8)
	FilenameSearch(NewTaskId(), dir, "report", nil, out2)
	close(out2)
	var batch2 FilenameSearchBatch
	for r := range out2 {
		if r.Kind == KindStream {
			batch2 = r.Stream.Payload.(FilenameSearchBatch)
		}
	}
	if len(batch2.Matches) != 2 {
		t.Fatalf("expected substring match on both report.* files, got %d", len(batch2.Matches))
	}
}

func TestFilenameSearchAnchors(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "report.csv"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "annual_report.csv"), []byte("x"), 0o644)
	os.WriteFile(filepath.Join(dir, "report_final.csv"), []byte("x"), 0o644)

	matchNames := func(pattern string) []string {
		out := make(chan TaskResult, 8)
		FilenameSearch(NewTaskId(), dir, pattern, nil, out)
		close(out)
		var names []string
		for r := range out {
			if r.Kind == KindStream {
				for _, m := range r.Stream.Payload.(FilenameSearchBatch).Matches {
					names = append(names, filepath.Base(m.Path))
				}
			}
		}
		return names
	}

	prefixMatches := matchNames("^report")
	if len(prefixMatches) != 2 {
		t.Fatalf("expected ^report to match report.csv and report_final.csv, got %v", prefixMatches)
	}
	for _, n := range prefixMatches {
		if n == "annual_report.csv" {
			t.Fatalf("^report must not match a name that doesn't start with report, got %v", prefixMatches)
		}
	}

	suffixMatches := matchNames(".csv$")
	if len(suffixMatches) != 3 {
		t.Fatalf("expected .csv$ to match all three files, got %v", suffixMatches)
	}

	exact := matchNames("^report.csv$")
	if len(exact) != 1 || exact[0] != "report.csv" {
		t.Fatalf("expected ^report.csv$ to match exactly report.csv, got %v", exact)
	}
}

func TestHeadingParserStateMachine(t *testing.T) {
	p := &headingParserState{baseDir: "/base"}

	steps := []struct {
		line      string
		wantMatch bool
		wantLine  int
	}{
		{"src/main.go", false, 0},
		{"3:package main", true, 3},
		{"4-", false, 0},
		{"5+", false, 0},
		{"--", false, 0},
		{"", false, 0},
		{"src/util.go", false, 0},
		{"10:func Util() {}", true, 10},
	}

	for i, step := range steps {
		m, ok := p.feed(step.line)
		if ok != step.wantMatch {
			t.Fatalf("step %d (%q): expected match=%v, got %v", i, step.line, step.wantMatch, ok)
		}
		if ok && m.Line != step.wantLine {
			t.Fatalf("step %d: expected line %d, got %d", i, step.wantLine, m.Line)
		}
	}

	if p.currentFile != filepath.Join("/base", "src/util.go") {
		t.Fatalf("expected current file to track the last heading, got %q", p.currentFile)
	}
}

func TestHeadingParserIgnoresMatchLineBeforeAnyHeading(t *testing.T) {
	p := &headingParserState{baseDir: "/base"}
	if _, ok := p.feed("7:orphan match"); ok {
		t.Fatal("expected no match before any heading has set a file context")
	}
}

func TestComputeSizeSumsRecursivelyCountsDirectChildrenOnly(t *testing.T) {
	dir := t.TempDir()
	os.WriteFile(filepath.Join(dir, "a.txt"), make([]byte, 100), 0o644)
	sub := filepath.Join(dir, "sub")
	os.Mkdir(sub, 0o755)
	os.WriteFile(filepath.Join(sub, "b.txt"), make([]byte, 50), 0o644)

	out := make(chan TaskResult, 8)
	ComputeSize(NewTaskId(), dir, nil, out)
	close(out)

	var res SizeResult
	for r := range out {
		if r.Kind == KindStream {
			res = r.Stream.Payload.(SizeResult)
		}
	}
	if res.TotalBytes != 150 {
		t.Fatalf("expected 150 total bytes recursively, got %d", res.TotalBytes)
	}
	if res.DirectChildren != 2 {
		t.Fatalf("expected 2 direct children (a.txt, sub), got %d", res.DirectChildren)
	}
}

func TestCopyEmitsProgressAndCompletes(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.bin")
	os.WriteFile(src, make([]byte, 5*1024*1024), 0o644) // 5 MiB: several progress chunks
	dst := filepath.Join(dir, "dst.bin")

	out := make(chan TaskResult, 256)
	Copy(NewTaskId(), src, dst, nil, out)
	close(out)

	progressCount := 0
	completedOk := false
	for r := range out {
		switch r.Kind {
		case KindProgress:
			progressCount++
		case KindComplete:
			completedOk = r.Complete.Outcome.Ok
		}
	}
	if progressCount == 0 {
		t.Fatal("expected at least one progress event for a multi-chunk copy")
	}
	if !completedOk {
		t.Fatal("expected copy to complete successfully")
	}
	if fi, err := os.Stat(dst); err != nil || fi.Size() != 5*1024*1024 {
		t.Fatalf("expected destination file of 5MiB, got err=%v", err)
	}
}

func TestMoveRemovesSourceAfterCopy(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "src.txt")
	os.WriteFile(src, []byte("hello"), 0o644)
	dst := filepath.Join(dir, "dst.txt")

	out := make(chan TaskResult, 16)
	Move(NewTaskId(), src, dst, nil, out)
	close(out)

	if _, err := os.Stat(src); !os.IsNotExist(err) {
		t.Fatal("expected source to be removed after move")
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatal("expected destination to exist after move")
	}
}

func TestRenameEmitsSingleProgressEvent(t *testing.T) {
	dir := t.TempDir()
	src := filepath.Join(dir, "old.txt")
	dst := filepath.Join(dir, "new.txt")
	os.WriteFile(src, []byte("x"), 0o644)

	out := make(chan TaskResult, 4)
	Rename(NewTaskId(), src, dst, out)
	close(out)

	progressCount := 0
	for r := range out {
		if r.Kind == KindProgress {
			progressCount++
		}
	}
	if progressCount != 1 {
		t.Fatalf("expected exactly one progress event for rename, got %d", progressCount)
	}
	if _, err := os.Stat(dst); err != nil {
		t.Fatal("expected renamed file to exist at new path")
	}
}
