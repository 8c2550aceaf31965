package main

import (
	"github.com/consistent-milk12/fsm-sub001/internal/action"
	"github.com/consistent-milk12/fsm-sub001/internal/termio"
)

// translateEvent turns one raw backend event into zero or more dispatch
// actions. Resize always produces a Resize action regardless of mode;
// everything else is routed through the command/search text buffer when
// one is open, or the normal-mode keymap otherwise.
func (a *app) translateEvent(ev termio.RawEvent) []action.Action {
	switch ev.Kind {
	case termio.RawEventResize:
		return []action.Action{action.Resize(ev.Resize.Width, ev.Resize.Height)}
	case termio.RawEventKey:
		return a.translateKey(ev.Key)
	case termio.RawEventPaste:
		if a.mode != modeNormal {
			a.buf.WriteString(ev.Paste.Text)
			a.feed(action.ShowPrompt(a.promptText()))
		}
		return nil
	default:
		return nil
	}
}

func (a *app) translateKey(k termio.Key) []action.Action {
	if a.mode != modeNormal {
		return a.translateTextEntry(k)
	}
	return a.translateNormal(k)
}

// translateTextEntry assembles the command-line or search-query buffer one
// key at a time, since the action pipeline has no per-rune action kind.
// Enter submits, Escape cancels; both return to modeNormal.
func (a *app) translateTextEntry(k termio.Key) []action.Action {
	switch k.Code {
	case termio.KeyEnter:
		text := a.buf.String()
		mode := a.mode
		a.resetTextEntry()
		switch mode {
		case modeCommand:
			return []action.Action{action.SubmitCommand(text)}
		case modeContentSearch:
			return []action.Action{action.ContentSearchQuery(text)}
		default:
			return []action.Action{action.FilenameSearchQuery(text)}
		}

	case termio.KeyEscape:
		a.resetTextEntry()
		return []action.Action{action.CloseOverlay()}

	case termio.KeyBackspace:
		a.trimBuf()
		return []action.Action{action.ShowPrompt(a.promptText())}

	case termio.KeyRune:
		a.buf.WriteRune(k.Rune)
		return []action.Action{action.ShowPrompt(a.promptText())}

	default:
		return nil
	}
}

func (a *app) resetTextEntry() {
	a.mode = modeNormal
	a.buf.Reset()
}

// trimBuf drops the buffer's trailing rune, rebuilding since strings.Builder
// has no native pop.
func (a *app) trimBuf() {
	s := []rune(a.buf.String())
	if len(s) == 0 {
		return
	}
	a.buf.Reset()
	a.buf.WriteString(string(s[:len(s)-1]))
}

func (a *app) promptText() string {
	prefix := ":"
	switch a.mode {
	case modeSearch:
		prefix = "/"
	case modeContentSearch:
		prefix = "g/"
	}
	return prefix + a.buf.String()
}

// translateNormal maps a key press to the global keybinding table used
// outside command/search entry: cursor movement, the overlay-opening keys,
// and the single-key clipboard/delete/quit shortcuts.
func (a *app) translateNormal(k termio.Key) []action.Action {
	if k.Modifiers&termio.ModControl != 0 && k.Code == termio.KeyRune && (k.Rune == 'c' || k.Rune == 'C') {
		return []action.Action{action.Quit()}
	}

	switch k.Code {
	case termio.KeyUp:
		return []action.Action{action.SelectionUp(action.SourceUserInput)}
	case termio.KeyDown:
		return []action.Action{action.SelectionDown(action.SourceUserInput)}
	case termio.KeyPageUp:
		return []action.Action{action.PageUp(action.SourceUserInput)}
	case termio.KeyPageDown:
		return []action.Action{action.PageDown(action.SourceUserInput)}
	case termio.KeyHome:
		return []action.Action{action.SelectFirst(action.SourceUserInput)}
	case termio.KeyEnd:
		return []action.Action{action.SelectLast(action.SourceUserInput)}
	case termio.KeyEnter:
		return []action.Action{action.EnterSelected()}
	case termio.KeyBackspace:
		return []action.Action{action.GoToParent()}
	case termio.KeyEscape:
		if a.overlayOpen() {
			return []action.Action{action.CloseOverlay()}
		}
		return nil
	}

	if k.Code != termio.KeyRune {
		return nil
	}

	switch k.Rune {
	case 'q':
		return []action.Action{action.Quit()}
	case 'j':
		return []action.Action{action.SelectionDown(action.SourceUserInput)}
	case 'k':
		return []action.Action{action.SelectionUp(action.SourceUserInput)}
	case 'g':
		return []action.Action{action.SelectFirst(action.SourceUserInput)}
	case 'G':
		return []action.Action{action.SelectLast(action.SourceUserInput)}
	case 'h':
		return []action.Action{action.GoToParent()}
	case 'l':
		return []action.Action{action.EnterSelected()}
	case '?':
		return []action.Action{action.ToggleHelp()}
	case 'm':
		return []action.Action{action.ToggleSystemMonitor()}
	case 'y':
		return a.clipboardActionForSelection(action.ClipboardCopy)
	case 'x':
		return a.clipboardActionForSelection(action.ClipboardCut)
	case 'p':
		return []action.Action{action.ClipboardPaste()}
	case 'd':
		if path, ok := a.selectedPath(); ok {
			return []action.Action{action.Delete(path)}
		}
		return nil
	case ' ':
		if path, ok := a.selectedPath(); ok {
			return []action.Action{action.ToggleMark(path)}
		}
		return nil
	case ':':
		a.mode = modeCommand
		a.buf.Reset()
		return []action.Action{action.EnterCommandMode()}
	case '/':
		a.mode = modeSearch
		a.buf.Reset()
		return []action.Action{action.ToggleSearchOverlay(), action.ShowPrompt(a.promptText())}
	case 'f':
		a.mode = modeContentSearch
		a.buf.Reset()
		return []action.Action{action.ToggleSearchOverlay(), action.ShowPrompt(a.promptText())}
	default:
		return nil
	}
}

func (a *app) clipboardActionForSelection(build func(string) action.Action) []action.Action {
	path, ok := a.selectedPath()
	if !ok {
		return nil
	}
	return []action.Action{build(path)}
}

func (a *app) overlayOpen() bool {
	ui := a.uiSnapshot()
	return ui.ShowHelp || ui.ShowSearchOverlay || ui.CommandMode
}
