package main

import (
	"testing"
	"time"

	"github.com/consistent-milk12/fsm-sub001/internal/config"
	"github.com/consistent-milk12/fsm-sub001/internal/model"
)

func TestNewAppWiresOnePaneSession(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	a, err := newApp(cfg, dir)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()

	if a.pane.Cwd() != dir {
		t.Fatalf("expected pane cwd %q, got %q", dir, a.pane.Cwd())
	}
	if a.dispatch == nil || a.coord == nil || a.registry == nil || a.tasks == nil {
		t.Fatal("expected all core components to be constructed")
	}
}

func TestSelectedPathResolvesThroughRegistry(t *testing.T) {
	dir := t.TempDir()
	cfg := config.DefaultConfig()
	a, err := newApp(cfg, dir)
	if err != nil {
		t.Fatalf("newApp: %v", err)
	}
	defer a.close()

	if _, ok := a.selectedPath(); ok {
		t.Fatal("expected no selection before any entries are loaded")
	}

	light := model.NewLightEntry(dir, "z.txt", false, false)
	a.registry.Install(model.FullEntry{LightEntry: light})
	a.pane.StartIncrementalLoading()
	a.pane.StageEntry(model.RowFromLightEntry(light))
	a.pane.CompleteIncrementalLoading(time.Now)

	path, ok := a.selectedPath()
	if !ok || path != light.Path {
		t.Fatalf("expected selected path %q, got %q (ok=%v)", light.Path, path, ok)
	}
}
