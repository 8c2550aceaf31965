//go:build !windows

package termio

import (
	"bufio"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"
	"time"

	"golang.org/x/sys/unix"
)

// StdBackend is the deliberate stdlib-plus-x/sys fallback Backend: the pack
// carries no non-vendored terminal UI library, so this talks to the tty
// directly via termios and ANSI escapes.
type StdBackend struct {
	in  *os.File
	out *os.File

	mu       sync.Mutex
	origTerm *unix.Termios
	rawOn    bool

	reader  *bufio.Reader
	resized chan Resize
	winch   chan os.Signal

	frame *stdFrame
}

// NewStdBackend opens a backend over the process's controlling terminal.
func NewStdBackend() *StdBackend {
	b := &StdBackend{
		in:      os.Stdin,
		out:     os.Stdout,
		reader:  bufio.NewReader(os.Stdin),
		resized: make(chan Resize, 1),
		winch:   make(chan os.Signal, 1),
	}
	w, h := b.termSize()
	b.frame = newStdFrame(w, h)
	signal.Notify(b.winch, syscall.SIGWINCH)
	go b.watchResize()
	return b
}

func (b *StdBackend) watchResize() {
	for range b.winch {
		w, h := b.termSize()
		select {
		case b.resized <- Resize{Width: w, Height: h}:
		default:
		}
	}
}

func (b *StdBackend) termSize() (int, int) {
	ws, err := unix.IoctlGetWinsize(int(b.out.Fd()), unix.TIOCGWINSZ)
	if err != nil {
		return 80, 24
	}
	return int(ws.Col), int(ws.Row)
}

// EnableRaw puts the terminal into raw mode (no echo, no line buffering,
// no signal-generating control characters).
func (b *StdBackend) EnableRaw() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.rawOn {
		return nil
	}
	fd := int(b.in.Fd())
	term, err := unix.IoctlGetTermios(fd, ioctlGetTermios)
	if err != nil {
		return fmt.Errorf("get termios: %w", err)
	}
	orig := *term
	raw := *term
	raw.Iflag &^= unix.IGNBRK | unix.BRKINT | unix.PARMRK | unix.ISTRIP | unix.INLCR | unix.IGNCR | unix.ICRNL | unix.IXON
	raw.Oflag &^= unix.OPOST
	raw.Lflag &^= unix.ECHO | unix.ECHONL | unix.ICANON | unix.ISIG | unix.IEXTEN
	raw.Cflag &^= unix.CSIZE | unix.PARENB
	raw.Cflag |= unix.CS8
	raw.Cc[unix.VMIN] = 1
	raw.Cc[unix.VTIME] = 0
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, &raw); err != nil {
		return fmt.Errorf("set termios: %w", err)
	}
	b.origTerm = &orig
	b.rawOn = true
	return nil
}

// DisableRaw restores the terminal mode captured by EnableRaw.
func (b *StdBackend) DisableRaw() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if !b.rawOn || b.origTerm == nil {
		return nil
	}
	fd := int(b.in.Fd())
	if err := unix.IoctlSetTermios(fd, ioctlSetTermios, b.origTerm); err != nil {
		return fmt.Errorf("restore termios: %w", err)
	}
	b.rawOn = false
	return nil
}

// EnterAltScreen switches to the terminal's alternate screen buffer.
func (b *StdBackend) EnterAltScreen() error {
	_, err := fmt.Fprint(b.out, "\x1b[?1049h\x1b[2J\x1b[H")
	return err
}

// LeaveAltScreen restores the primary screen buffer.
func (b *StdBackend) LeaveAltScreen() error {
	_, err := fmt.Fprint(b.out, "\x1b[?1049l")
	return err
}

// PollEvent blocks up to timeout for the next key or resize event.
func (b *StdBackend) PollEvent(timeout time.Duration) (RawEvent, bool) {
	select {
	case r := <-b.resized:
		return RawEvent{Kind: RawEventResize, Resize: r}, true
	default:
	}

	type readResult struct {
		r   rune
		err error
	}
	ch := make(chan readResult, 1)
	go func() {
		r, _, err := b.reader.ReadRune()
		ch <- readResult{r, err}
	}()

	select {
	case res := <-ch:
		if res.err != nil {
			return RawEvent{}, false
		}
		return b.decodeRune(res.r), true
	case r := <-b.resized:
		return RawEvent{Kind: RawEventResize, Resize: r}, true
	case <-time.After(timeout):
		return RawEvent{}, false
	}
}

func (b *StdBackend) decodeRune(r rune) RawEvent {
	if r != 0x1b {
		return RawEvent{Kind: RawEventKey, Key: runeToKey(r)}
	}
	if b.reader.Buffered() == 0 {
		return RawEvent{Kind: RawEventKey, Key: Key{Code: KeyEscape}}
	}
	seq, _ := b.reader.Peek(b.reader.Buffered())
	key, consumed := parseEscapeSequence(seq)
	for i := 0; i < consumed; i++ {
		b.reader.ReadByte()
	}
	return RawEvent{Kind: RawEventKey, Key: key}
}

// Render draws into the backend's frame buffer, then flushes a full redraw
// to the terminal (no diffing; acceptable at TFM's pane-sized frames).
func (b *StdBackend) Render(draw func(Frame)) error {
	draw(b.frame)
	var sb strings.Builder
	sb.WriteString("\x1b[H")
	for y := 0; y < b.frame.height; y++ {
		sb.WriteString(string(b.frame.rows[y]))
		sb.WriteString("\x1b[K\r\n")
	}
	_, err := fmt.Fprint(b.out, sb.String())
	return err
}
