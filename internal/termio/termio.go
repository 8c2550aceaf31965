// Package termio defines the narrow terminal-backend interface from
// spec.md §6. The core never constrains the concrete terminal library; this
// package declares the contract plus a minimal stdlib-only adapter so the
// rest of the module can run without a vendored TUI dependency.
package termio

import "time"

// Modifier is a bit set of held modifier keys.
type Modifier uint8

const (
	ModControl Modifier = 1 << iota
	ModAlt
	ModShift
	ModSuper
	ModHyper
	ModMeta
)

// KeyCode identifies one key, independent of modifiers.
type KeyCode int

const (
	KeyUnknown KeyCode = iota
	KeyRune            // Rune holds the character; set for plain alphanumeric input
	KeyF1
	KeyF2
	KeyF3
	KeyF4
	KeyF5
	KeyF6
	KeyF7
	KeyF8
	KeyF9
	KeyF10
	KeyF11
	KeyF12
	KeyUp
	KeyDown
	KeyLeft
	KeyRight
	KeyHome
	KeyEnd
	KeyPageUp
	KeyPageDown
	KeyTab
	KeyEnter
	KeyBackspace
	KeyDelete
	KeyEscape
	KeyMenu
	KeyMediaPlayPause
	KeyMediaNext
	KeyMediaPrev
)

// Key is a key press: a KeyCode, the rune value when Code is KeyRune, and
// the held modifiers.
type Key struct {
	Code      KeyCode
	Rune      rune
	Modifiers Modifier
}

// MouseButton identifies which mouse button (or wheel direction) moved.
type MouseButton int

const (
	MouseNone MouseButton = iota
	MouseLeft
	MouseRight
	MouseMiddle
	MouseWheelUp
	MouseWheelDown
)

// Mouse is a mouse event.
type Mouse struct {
	Button    MouseButton
	Column    int
	Row       int
	Modifiers Modifier
}

// Resize is a terminal resize event.
type Resize struct {
	Width  int
	Height int
}

// Paste is a bracketed-paste event.
type Paste struct {
	Text string
}

// RawEventKind tags which field of RawEvent is populated.
type RawEventKind int

const (
	RawEventKey RawEventKind = iota
	RawEventMouse
	RawEventResize
	RawEventPaste
)

// RawEvent is the closed tagged union the backend emits from PollEvent.
type RawEvent struct {
	Kind   RawEventKind
	Key    Key
	Mouse  Mouse
	Resize Resize
	Paste  Paste
}

// Frame is the drawing surface handed to a render closure; it is backend
// owned and only the methods the core needs are exposed.
type Frame interface {
	Size() (width, height int)
	SetCell(x, y int, r rune)
	WriteString(x, y int, s string)
}

// Backend is the narrow terminal I/O contract from spec.md §6. The core
// depends only on this interface, never on a concrete terminal library.
type Backend interface {
	// PollEvent blocks for up to timeout waiting for the next input event.
	// It returns ok=false on timeout with no event.
	PollEvent(timeout time.Duration) (ev RawEvent, ok bool)

	// Render invokes draw with the current frame, then flushes it to the
	// terminal.
	Render(draw func(Frame)) error

	EnterAltScreen() error
	LeaveAltScreen() error
	EnableRaw() error
	DisableRaw() error
}
