package action

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/consistent-milk12/fsm-sub001/internal/clipboard"
	"github.com/consistent-milk12/fsm-sub001/internal/task"
)

func TestClipboardHandlerCopyAddsItemAndPersists(t *testing.T) {
	diskPath := filepath.Join(t.TempDir(), "clipboard.bin")
	st := &clipboard.State{}
	h := &ClipboardHandler{
		Coord:    newTestCoordinator(t, newTestPaneWithEntries(t, 0)),
		Tasks:    task.NewTable(),
		Results:  make(chan task.TaskResult, 4),
		State:    st,
		DiskPath: diskPath,
	}

	if _, err := h.Handle(context.Background(), ClipboardCopy("/tmp/a.txt")); err != nil {
		t.Fatal(err)
	}
	if len(st.Items) != 1 || st.Items[0].Mode != clipboard.ModeCopy {
		t.Fatalf("expected one copy item, got %+v", st.Items)
	}
	if _, err := os.Stat(diskPath); err != nil {
		t.Fatalf("expected clipboard to be persisted to disk: %v", err)
	}
}

func TestClipboardHandlerNavClampsIndex(t *testing.T) {
	st := &clipboard.State{Items: []clipboard.Item{{Path: "a"}, {Path: "b"}, {Path: "c"}}}
	h := &ClipboardHandler{
		Coord: newTestCoordinator(t, newTestPaneWithEntries(t, 0)),
		Tasks: task.NewTable(),
		State: st,
	}
	if _, err := h.Handle(context.Background(), ClipboardNav(10)); err != nil {
		t.Fatal(err)
	}
	if st.Cursor != 2 {
		t.Fatalf("expected cursor clamped to 2, got %d", st.Cursor)
	}
}

func TestClipboardHandlerClearEmptiesState(t *testing.T) {
	st := &clipboard.State{Items: []clipboard.Item{{Path: "a"}}}
	h := &ClipboardHandler{
		Coord: newTestCoordinator(t, newTestPaneWithEntries(t, 0)),
		Tasks: task.NewTable(),
		State: st,
	}
	if _, err := h.Handle(context.Background(), ClipboardClear()); err != nil {
		t.Fatal(err)
	}
	if len(st.Items) != 0 {
		t.Fatalf("expected empty clipboard, got %+v", st.Items)
	}
}

func TestClipboardHandlerPasteSpawnsCopyAndClearsState(t *testing.T) {
	root := t.TempDir()
	src := filepath.Join(root, "src.txt")
	if err := os.WriteFile(src, []byte("hello"), 0o644); err != nil {
		t.Fatal(err)
	}
	dstDir := t.TempDir()

	p := newTestPaneWithEntries(t, 0)
	p.SetCwd(dstDir)
	st := &clipboard.State{Items: []clipboard.Item{{Path: src, Mode: clipboard.ModeCopy}}}
	results := make(chan task.TaskResult, 16)
	h := &ClipboardHandler{
		Coord:   newTestCoordinator(t, p),
		Tasks:   task.NewTable(),
		Results: results,
		State:   st,
	}

	if _, err := h.Handle(context.Background(), ClipboardPaste()); err != nil {
		t.Fatal(err)
	}
	if len(st.Items) != 0 {
		t.Fatal("expected clipboard to be cleared after paste")
	}

	var gotComplete bool
	deadline := time.After(2 * time.Second)
	for !gotComplete {
		select {
		case r := <-results:
			if r.Kind == task.KindComplete {
				gotComplete = true
			}
		case <-deadline:
			t.Fatal("timed out waiting for paste copy to complete")
		}
	}
	if _, err := os.Stat(filepath.Join(dstDir, "src.txt")); err != nil {
		t.Fatalf("expected pasted file to exist: %v", err)
	}
}
