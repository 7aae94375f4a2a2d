package tui

import (
	"testing"
	"unicode/utf8"
)

var sampleTexts = []string{
	"",
	"a",
	"hello",
	"hello\nworld",
	"\n",
	"abc\n",
	"\n\nx\n",
	"héllo\n\nwörld 🚀",
	"日本語\nテキスト",
	"@this and @buffer",
}

func boundaries(s string) []int {
	var out []int
	for i := range s {
		out = append(out, i)
	}
	return append(out, len(s))
}

func TestLineColRoundTrip(t *testing.T) {
	for _, text := range sampleTexts {
		for _, p := range boundaries(text) {
			line, col := CursorToLineCol(text, p)
			if got := LineColToCursor(text, line, col); got != p {
				t.Errorf("%q: offset %d -> (%d,%d) -> %d", text, p, line, col, got)
			}
		}
	}
}

func TestCursorToLineCol(t *testing.T) {
	tests := []struct {
		text      string
		cursor    int
		line, col int
	}{
		{"", 0, 0, 0},
		{"hello", 5, 0, 5},
		{"hello\nworld", 5, 0, 5},
		{"hello\nworld", 6, 1, 0},
		{"hello\nworld", 11, 1, 5},
		{"héllo", 3, 0, 2},
	}
	for _, tt := range tests {
		line, col := CursorToLineCol(tt.text, tt.cursor)
		if line != tt.line || col != tt.col {
			t.Errorf("CursorToLineCol(%q, %d) = (%d,%d), want (%d,%d)", tt.text, tt.cursor, line, col, tt.line, tt.col)
		}
	}
}

func TestLineColToCursorClamps(t *testing.T) {
	text := "long line\nab\nxyz"
	if got := LineColToCursor(text, 1, 8); got != 12 {
		t.Errorf("column past line end = %d, want 12", got)
	}
	if got := LineColToCursor(text, 9, 1); got != 14 {
		t.Errorf("line past end = %d, want 14", got)
	}
}

func TestInsertThenBackspaceRestores(t *testing.T) {
	for _, text := range sampleTexts {
		for _, p := range boundaries(text) {
			for _, r := range []string{"x", "é", "🚀", "\n"} {
				b := buffer{text: text, cursor: p}
				b.insert(r)
				b.backspace()
				if b.text != text || b.cursor != p {
					t.Errorf("%q at %d with %q: got %q cursor %d", text, p, r, b.text, b.cursor)
				}
			}
		}
	}
}

func TestInsertThenDeleteRestores(t *testing.T) {
	for _, text := range sampleTexts {
		for _, p := range boundaries(text) {
			b := buffer{text: text, cursor: p}
			b.insert("ü")
			b.left()
			b.deleteForward()
			if b.text != text || b.cursor != p {
				t.Errorf("%q at %d: got %q cursor %d", text, p, b.text, b.cursor)
			}
		}
	}
}

func TestBufferMotion(t *testing.T) {
	b := buffer{text: "hello\nworld", cursor: 5}
	b.down()
	if b.cursor != 11 {
		t.Fatalf("down = %d, want 11", b.cursor)
	}
	b.up()
	if b.cursor != 5 {
		t.Fatalf("up = %d, want 5", b.cursor)
	}
	b.up()
	if b.cursor != 5 {
		t.Fatalf("up on first line = %d, want 5", b.cursor)
	}
	b.cursor = 8
	b.home()
	if b.cursor != 6 {
		t.Fatalf("home = %d, want 6", b.cursor)
	}
	b.end()
	if b.cursor != 11 {
		t.Fatalf("end = %d, want 11", b.cursor)
	}
	b.down()
	if b.cursor != 11 {
		t.Fatalf("down on last line = %d, want 11", b.cursor)
	}
}

func TestBufferUpClampsColumn(t *testing.T) {
	b := buffer{text: "ab\nlonger", cursor: 9}
	b.up()
	if b.cursor != 2 {
		t.Fatalf("up = %d, want 2", b.cursor)
	}
}

func TestBufferMultibyteMotion(t *testing.T) {
	b := newBuffer("a🚀b")
	b.left()
	b.left()
	if b.cursor != 1 {
		t.Fatalf("cursor = %d, want 1", b.cursor)
	}
	b.right()
	if b.cursor != 5 {
		t.Fatalf("cursor = %d, want 5", b.cursor)
	}
	b.backspace()
	if b.text != "ab" || b.cursor != 1 {
		t.Fatalf("got %q cursor %d", b.text, b.cursor)
	}
}

func TestKillWord(t *testing.T) {
	tests := []struct {
		text   string
		cursor int
		want   string
	}{
		{"explain this  ", 14, "explain "},
		{"one two", 7, "one "},
		{"one\ntwo", 4, "onetwo"},
		{"single", 6, ""},
	}
	for _, tt := range tests {
		b := buffer{text: tt.text, cursor: tt.cursor}
		b.killWord()
		if b.text != tt.want {
			t.Errorf("killWord(%q) = %q, want %q", tt.text, b.text, tt.want)
		}
	}
}

func TestKillLine(t *testing.T) {
	b := buffer{text: "first\nsecond line", cursor: 12}
	b.killLine()
	if b.text != "first\n line" || b.cursor != 6 {
		t.Fatalf("got %q cursor %d", b.text, b.cursor)
	}
}

func TestEditsKeepCursorOnBoundary(t *testing.T) {
	b := newBuffer("héllo\nwörld 🚀")
	ops := []func(){
		b.left, b.right, b.up, b.down, b.home, b.end,
		b.backspace, b.deleteForward, b.killWord,
		func() { b.insert("é") }, func() { b.insert("\n") },
	}
	// Deterministic pseudo-random walk over the operations.
	seed := uint32(7)
	for i := 0; i < 2000; i++ {
		seed = seed*1664525 + 1013904223
		ops[int(seed>>16)%len(ops)]()
		if b.cursor < 0 || b.cursor > len(b.text) {
			t.Fatalf("step %d: cursor %d out of [0,%d]", i, b.cursor, len(b.text))
		}
		if b.cursor < len(b.text) && !utf8.RuneStart(b.text[b.cursor]) {
			t.Fatalf("step %d: cursor %d splits a rune in %q", i, b.cursor, b.text)
		}
	}
}
