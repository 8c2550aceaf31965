package main

import (
	"testing"
	"time"

	"github.com/consistent-milk12/fsm-sub001/internal/config"
	"github.com/consistent-milk12/fsm-sub001/internal/model"
	"github.com/consistent-milk12/fsm-sub001/internal/task"
)

func TestDrainResultsInstallsScanEntryAndCompletesLoading(t *testing.T) {
	cfg := config.DefaultConfig()
	a, err := newApp(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.close)

	// Drain whatever the real startup scan already produced before
	// injecting a synthetic one, so the assertions below are deterministic.
	deadline := time.After(time.Second)
	for a.pane.IsLoading() {
		select {
		case r := <-a.results:
			a.handleResult(r)
		case <-deadline:
			t.Fatal("timed out waiting for the startup scan to finish")
		}
	}

	id := task.NewTaskId()
	a.setPending(id, task.OpScan)
	light := model.NewLightEntry(a.pane.Cwd(), "synthetic.txt", false, false)

	a.handleResult(task.StreamResult(task.Stream{TaskId: id, Payload: task.ScanEntryAdded{Entry: light}}))
	if _, ok := a.registry.Get(light.Id); !ok {
		t.Fatal("expected ScanEntryAdded to install into the registry")
	}

	a.handleResult(task.CompleteResult(task.Complete{TaskId: id, Outcome: task.Outcome{Ok: true}}))
	if a.pane.IsLoading() {
		t.Fatal("expected Complete for a scan task to end incremental loading")
	}

	found := false
	for _, row := range a.pane.Entries() {
		if row.Id == light.Id {
			found = true
		}
	}
	if !found {
		t.Fatal("expected the staged entry to be merged in by CompleteIncrementalLoading")
	}
}

func TestHandleCompleteIgnoresUnknownTaskId(t *testing.T) {
	cfg := config.DefaultConfig()
	a, err := newApp(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.close)

	// A Complete for a task id the pump never saw a Stream/Progress for
	// (e.g. one whose single Stream was dropped) must not panic.
	a.handleComplete(task.Complete{TaskId: task.NewTaskId(), Outcome: task.Outcome{Ok: true}})
}

func TestHandleStreamSizeResultSetsStatusMessage(t *testing.T) {
	cfg := config.DefaultConfig()
	a, err := newApp(cfg, t.TempDir())
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	t.Cleanup(a.close)

	id := task.NewTaskId()
	a.handleStream(task.Stream{TaskId: id, Payload: task.SizeResult{Path: "/tmp/x", TotalBytes: 42, DirectChildren: 3}})

	if got := a.uiSnapshot().StatusMessage; got == "" {
		t.Fatal("expected SizeResult to publish a status message")
	}
}
