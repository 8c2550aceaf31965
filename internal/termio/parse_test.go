package termio

import "testing"

func TestRuneToKeyPlainCharacter(t *testing.T) {
	k := runeToKey('a')
	if k.Code != KeyRune || k.Rune != 'a' || k.Modifiers != 0 {
		t.Fatalf("unexpected key: %+v", k)
	}
}

func TestRuneToKeyControlCharacter(t *testing.T) {
	// Ctrl-A is byte 0x01.
	k := runeToKey(rune(0x01))
	if k.Code != KeyRune || k.Rune != 'a' || k.Modifiers != ModControl {
		t.Fatalf("unexpected key: %+v", k)
	}
}

func TestRuneToKeySpecialBytes(t *testing.T) {
	cases := map[rune]KeyCode{
		'\r': KeyEnter,
		'\n': KeyEnter,
		'\t': KeyTab,
		0x7f: KeyBackspace,
	}
	for r, want := range cases {
		if got := runeToKey(r).Code; got != want {
			t.Fatalf("runeToKey(%q) = %v, want %v", r, got, want)
		}
	}
}

func TestParseEscapeSequenceArrowKeys(t *testing.T) {
	cases := map[byte]KeyCode{
		'A': KeyUp,
		'B': KeyDown,
		'C': KeyRight,
		'D': KeyLeft,
		'H': KeyHome,
		'F': KeyEnd,
	}
	for b, want := range cases {
		key, consumed := parseEscapeSequence([]byte{'[', b})
		if key.Code != want || consumed != 2 {
			t.Fatalf("parseEscapeSequence([%q]) = %v,%d want %v,2", b, key.Code, consumed, want)
		}
	}
}

func TestParseEscapeSequenceTildeCodes(t *testing.T) {
	key, consumed := parseEscapeSequence([]byte("[5~"))
	if key.Code != KeyPageUp || consumed != 3 {
		t.Fatalf("expected PageUp consuming 3 bytes, got %v,%d", key.Code, consumed)
	}
	key, consumed = parseEscapeSequence([]byte("[3~"))
	if key.Code != KeyDelete || consumed != 3 {
		t.Fatalf("expected Delete consuming 3 bytes, got %v,%d", key.Code, consumed)
	}
}

func TestParseEscapeSequenceFunctionKeys(t *testing.T) {
	key, consumed := parseEscapeSequence([]byte("OP"))
	if key.Code != KeyF1 || consumed != 2 {
		t.Fatalf("expected F1, got %v,%d", key.Code, consumed)
	}
}

func TestParseEscapeSequenceUnrecognizedDegradesToEscape(t *testing.T) {
	key, consumed := parseEscapeSequence([]byte("[Z"))
	if key.Code != KeyEscape || consumed != 0 {
		t.Fatalf("expected bare Escape with 0 consumed, got %v,%d", key.Code, consumed)
	}
}

func TestStdFrameSetCellClampsOutOfBounds(t *testing.T) {
	f := newStdFrame(4, 2)
	f.SetCell(-1, 0, 'x')
	f.SetCell(10, 0, 'x')
	f.SetCell(0, 5, 'x')
	for y := 0; y < 2; y++ {
		for x := 0; x < 4; x++ {
			if f.rows[y][x] != ' ' {
				t.Fatalf("expected untouched cell to remain blank at (%d,%d)", x, y)
			}
		}
	}
}

func TestStdFrameWriteString(t *testing.T) {
	f := newStdFrame(10, 1)
	f.WriteString(2, 0, "hi")
	if f.rows[0][2] != 'h' || f.rows[0][3] != 'i' {
		t.Fatalf("expected 'hi' written at columns 2-3, got %q%q", f.rows[0][2], f.rows[0][3])
	}
}

func TestStdFrameSize(t *testing.T) {
	f := newStdFrame(7, 3)
	w, h := f.Size()
	if w != 7 || h != 3 {
		t.Fatalf("expected size 7x3, got %dx%d", w, h)
	}
}
