package main

import (
	"fmt"

	"github.com/consistent-milk12/fsm-sub001/internal/model"
	"github.com/consistent-milk12/fsm-sub001/internal/termio"
)

// draw renders the active pane's visible rows and a status line (the prompt
// while in command or search mode); overlays are not drawn. Size/metadata fields are resolved per row through the registry
// rather than kept on the pane's packed SortableRow, per the registry-only
// metadata decision recorded in the design ledger.
func (a *app) draw(f termio.Frame) {
	width, height := f.Size()
	if height < 2 {
		return
	}
	listHeight := height - 1

	entries := a.pane.Entries()
	scroll := a.pane.Scroll()
	selection := a.pane.Selection()

	for row := 0; row < listHeight; row++ {
		idx := scroll + row
		if idx >= len(entries) {
			break
		}
		line := a.formatRow(entries[idx].Id, idx == selection)
		f.WriteString(0, row, truncate(line, width))
	}

	f.WriteString(0, height-1, truncate(a.statusLine(), width))
}

func (a *app) formatRow(id model.EntryId, selected bool) string {
	marker := "  "
	if selected {
		marker = "> "
	}
	full, ok := a.registry.Get(id)
	if !ok {
		return marker + "?"
	}
	if full.IsDir {
		return fmt.Sprintf("%s%s/", marker, full.Name)
	}
	return fmt.Sprintf("%s%s (%d bytes)", marker, full.Name, full.Size)
}

func (a *app) statusLine() string {
	ui := a.uiSnapshot()
	if ui.CommandMode || ui.ShowSearchOverlay {
		return ui.Prompt
	}
	if ui.StatusMessage != "" {
		return ui.StatusMessage
	}
	loading := ""
	if a.pane.IsLoading() {
		loading = " (loading...)"
	}
	return a.pane.Cwd() + loading
}

func truncate(s string, width int) string {
	if width <= 0 {
		return ""
	}
	r := []rune(s)
	if len(r) <= width {
		return s
	}
	return string(r[:width])
}
