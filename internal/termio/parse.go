package termio

import (
	"strconv"
	"strings"
)

func runeToKey(r rune) Key {
	switch r {
	case '\r', '\n':
		return Key{Code: KeyEnter}
	case '\t':
		return Key{Code: KeyTab}
	case 0x7f:
		return Key{Code: KeyBackspace}
	}
	if r < 0x20 {
		return Key{Code: KeyRune, Rune: r + 'a' - 1, Modifiers: ModControl}
	}
	return Key{Code: KeyRune, Rune: r}
}

// parseEscapeSequence recognizes a handful of common CSI sequences (arrow
// keys, Home/End, PageUp/PageDown, Delete, F1-F4). Anything unrecognized
// degrades to a bare Escape key with zero bytes consumed.
func parseEscapeSequence(seq []byte) (Key, int) {
	if len(seq) >= 2 && seq[0] == '[' {
		switch seq[1] {
		case 'A':
			return Key{Code: KeyUp}, 2
		case 'B':
			return Key{Code: KeyDown}, 2
		case 'C':
			return Key{Code: KeyRight}, 2
		case 'D':
			return Key{Code: KeyLeft}, 2
		case 'H':
			return Key{Code: KeyHome}, 2
		case 'F':
			return Key{Code: KeyEnd}, 2
		}
		if end := strings.IndexByte(string(seq[1:]), '~'); end > 0 {
			n, err := strconv.Atoi(string(seq[1 : 1+end]))
			if err == nil {
				if code, ok := tildeCode(n); ok {
					return Key{Code: code}, 2 + end
				}
			}
		}
	}
	if len(seq) >= 1 && seq[0] == 'O' && len(seq) >= 2 {
		switch seq[1] {
		case 'P':
			return Key{Code: KeyF1}, 2
		case 'Q':
			return Key{Code: KeyF2}, 2
		case 'R':
			return Key{Code: KeyF3}, 2
		case 'S':
			return Key{Code: KeyF4}, 2
		}
	}
	return Key{Code: KeyEscape}, 0
}

func tildeCode(n int) (KeyCode, bool) {
	switch n {
	case 1:
		return KeyHome, true
	case 3:
		return KeyDelete, true
	case 4:
		return KeyEnd, true
	case 5:
		return KeyPageUp, true
	case 6:
		return KeyPageDown, true
	default:
		return KeyUnknown, false
	}
}

// stdFrame is a dense rune grid backing StdBackend's Render.
type stdFrame struct {
	width, height int
	rows          [][]rune
}

func newStdFrame(w, h int) *stdFrame {
	f := &stdFrame{width: w, height: h, rows: make([][]rune, h)}
	for y := range f.rows {
		f.rows[y] = blankRow(w)
	}
	return f
}

func blankRow(w int) []rune {
	row := make([]rune, w)
	for i := range row {
		row[i] = ' '
	}
	return row
}

func (f *stdFrame) Size() (int, int) { return f.width, f.height }

func (f *stdFrame) SetCell(x, y int, r rune) {
	if y < 0 || y >= f.height || x < 0 || x >= f.width {
		return
	}
	f.rows[y][x] = r
}

func (f *stdFrame) WriteString(x, y int, s string) {
	for _, r := range s {
		f.SetCell(x, y, r)
		x++
	}
}
