// Package action implements the action dispatch pipeline from spec.md §4.2:
// a closed set of action kinds, a batcher that coalesces actions by source,
// and a priority-ordered dispatcher that routes each action to exactly one
// sub-dispatcher.
package action

// Source identifies where an action originated, used by the Batcher to
// group actions without reordering a single source's own sequence.
type Source int

const (
	SourceUserInput Source = iota
	SourceBackground
)

// Kind enumerates every action the dispatcher understands, grouped by the
// sub-dispatcher table in spec.md §4.2.
type Kind int

const (
	// Navigation.
	KindSelectionUp Kind = iota
	KindSelectionDown
	KindPageUp
	KindPageDown
	KindSelectFirst
	KindSelectLast
	KindResize

	// UI control.
	KindToggleHelp
	KindToggleSearchOverlay
	KindCloseOverlay
	KindEnterCommandMode
	KindShowPrompt
	KindTick
	KindQuit

	// Search.
	KindFilenameSearchQuery
	KindContentSearchQuery
	KindShowFilenameResults
	KindShowContentResults

	// File-ops.
	KindEnterSelected
	KindGoToParent
	KindCreateFile
	KindCreateDir
	KindReload
	KindDelete
	KindRename
	KindCopy
	KindMove
	KindCancelTask
	KindToggleMark

	// Clipboard.
	KindClipboardCopy
	KindClipboardCut
	KindClipboardPaste
	KindClipboardNav
	KindClipboardClear

	// Command.
	KindSubmitCommand

	// System.
	KindToggleSystemMonitor
	KindKillProcess
)

// Action is the closed tagged-variant action type. Only the fields
// relevant to Kind are populated; the rest are zero.
type Action struct {
	Kind   Kind
	Source Source

	// Navigation/UI.
	Width, Height int
	Message       string

	// Search.
	Pattern string

	// File-ops / clipboard / rename / copy / move.
	Path, OldPath, NewPath, Src, Dst, Name string
	TaskID                                 uint64

	// Clipboard navigation.
	NavDelta int

	// Command.
	CommandLine string

	// System.
	PID int
}

// Navigation/UI/Search/FileOps/Clipboard/Command/System constructors below
// keep call sites terse and self-documenting; they set only the Kind,
// Source, and fields relevant to that variant.

func SelectionUp(src Source) Action   { return Action{Kind: KindSelectionUp, Source: src} }
func SelectionDown(src Source) Action { return Action{Kind: KindSelectionDown, Source: src} }
func PageUp(src Source) Action        { return Action{Kind: KindPageUp, Source: src} }
func PageDown(src Source) Action      { return Action{Kind: KindPageDown, Source: src} }
func SelectFirst(src Source) Action   { return Action{Kind: KindSelectFirst, Source: src} }
func SelectLast(src Source) Action    { return Action{Kind: KindSelectLast, Source: src} }
func Resize(w, h int) Action          { return Action{Kind: KindResize, Source: SourceBackground, Width: w, Height: h} }

func ToggleHelp() Action          { return Action{Kind: KindToggleHelp, Source: SourceUserInput} }
func ToggleSearchOverlay() Action { return Action{Kind: KindToggleSearchOverlay, Source: SourceUserInput} }
func CloseOverlay() Action        { return Action{Kind: KindCloseOverlay, Source: SourceUserInput} }
func EnterCommandMode() Action    { return Action{Kind: KindEnterCommandMode, Source: SourceUserInput} }
func ShowPrompt(message string) Action {
	return Action{Kind: KindShowPrompt, Source: SourceUserInput, Message: message}
}
func Tick() Action { return Action{Kind: KindTick, Source: SourceBackground} }
func Quit() Action  { return Action{Kind: KindQuit, Source: SourceUserInput} }

func FilenameSearchQuery(pattern string) Action {
	return Action{Kind: KindFilenameSearchQuery, Source: SourceUserInput, Pattern: pattern}
}

func ContentSearchQuery(pattern string) Action {
	return Action{Kind: KindContentSearchQuery, Source: SourceUserInput, Pattern: pattern}
}

// ShowFilenameResults and ShowContentResults carry a search task's outcome
// back into the dispatch pipeline once the main loop has drained it off the
// task result channel; Message holds the summary the search sub-dispatcher
// publishes to UIState.
func ShowFilenameResults(message string) Action {
	return Action{Kind: KindShowFilenameResults, Source: SourceBackground, Message: message}
}
func ShowContentResults(message string) Action {
	return Action{Kind: KindShowContentResults, Source: SourceBackground, Message: message}
}

func EnterSelected() Action { return Action{Kind: KindEnterSelected, Source: SourceUserInput} }
func GoToParent() Action    { return Action{Kind: KindGoToParent, Source: SourceUserInput} }
func CreateFile(name string) Action {
	return Action{Kind: KindCreateFile, Source: SourceUserInput, Name: name}
}
func CreateDir(name string) Action {
	return Action{Kind: KindCreateDir, Source: SourceUserInput, Name: name}
}
func Reload() Action { return Action{Kind: KindReload, Source: SourceUserInput} }

// ReloadPath is the background-sourced reload posted by internal/watch when
// a watched directory changes outside TFM's own file-ops handlers.
func ReloadPath(path string) Action {
	return Action{Kind: KindReload, Source: SourceBackground, Path: path}
}
func Delete(path string) Action {
	return Action{Kind: KindDelete, Source: SourceUserInput, Path: path}
}
func Rename(oldPath, newPath string) Action {
	return Action{Kind: KindRename, Source: SourceUserInput, OldPath: oldPath, NewPath: newPath}
}
func Copy(src, dst string) Action {
	return Action{Kind: KindCopy, Source: SourceUserInput, Src: src, Dst: dst}
}
func Move(src, dst string) Action {
	return Action{Kind: KindMove, Source: SourceUserInput, Src: src, Dst: dst}
}
func CancelTask(id uint64) Action {
	return Action{Kind: KindCancelTask, Source: SourceUserInput, TaskID: id}
}
func ToggleMark(path string) Action {
	return Action{Kind: KindToggleMark, Source: SourceUserInput, Path: path}
}

func ClipboardCopy(path string) Action {
	return Action{Kind: KindClipboardCopy, Source: SourceUserInput, Path: path}
}
func ClipboardCut(path string) Action {
	return Action{Kind: KindClipboardCut, Source: SourceUserInput, Path: path}
}
func ClipboardPaste() Action         { return Action{Kind: KindClipboardPaste, Source: SourceUserInput} }
func ClipboardNav(delta int) Action  { return Action{Kind: KindClipboardNav, Source: SourceUserInput, NavDelta: delta} }
func ClipboardClear() Action         { return Action{Kind: KindClipboardClear, Source: SourceUserInput} }

func SubmitCommand(line string) Action {
	return Action{Kind: KindSubmitCommand, Source: SourceUserInput, CommandLine: line}
}

func ToggleSystemMonitor() Action { return Action{Kind: KindToggleSystemMonitor, Source: SourceUserInput} }
func KillProcess(pid int) Action  { return Action{Kind: KindKillProcess, Source: SourceUserInput, PID: pid} }
