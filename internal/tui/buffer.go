package tui

import (
	"strings"
	"unicode"
	"unicode/utf8"
)

// buffer is the editable prompt text. cursor is a byte offset that always sits
// on a rune boundary in [0, len(text)].
type buffer struct {
	text   string
	cursor int
}

func newBuffer(text string) buffer {
	return buffer{text: text, cursor: len(text)}
}

func (b *buffer) insert(s string) {
	b.text = b.text[:b.cursor] + s + b.text[b.cursor:]
	b.cursor += len(s)
}

func (b *buffer) backspace() {
	if b.cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(b.text[:b.cursor])
	b.text = b.text[:b.cursor-size] + b.text[b.cursor:]
	b.cursor -= size
}

func (b *buffer) deleteForward() {
	if b.cursor >= len(b.text) {
		return
	}
	_, size := utf8.DecodeRuneInString(b.text[b.cursor:])
	b.text = b.text[:b.cursor] + b.text[b.cursor+size:]
}

func (b *buffer) left() {
	if b.cursor == 0 {
		return
	}
	_, size := utf8.DecodeLastRuneInString(b.text[:b.cursor])
	b.cursor -= size
}

func (b *buffer) right() {
	if b.cursor >= len(b.text) {
		return
	}
	_, size := utf8.DecodeRuneInString(b.text[b.cursor:])
	b.cursor += size
}

func (b *buffer) lineStart() int {
	return strings.LastIndexByte(b.text[:b.cursor], '\n') + 1
}

func (b *buffer) lineEnd() int {
	if i := strings.IndexByte(b.text[b.cursor:], '\n'); i >= 0 {
		return b.cursor + i
	}
	return len(b.text)
}

func (b *buffer) home() { b.cursor = b.lineStart() }
func (b *buffer) end()  { b.cursor = b.lineEnd() }

// up moves to the previous logical line, keeping the column where possible.
func (b *buffer) up() {
	line, col := CursorToLineCol(b.text, b.cursor)
	if line == 0 {
		return
	}
	b.cursor = LineColToCursor(b.text, line-1, col)
}

func (b *buffer) down() {
	line, col := CursorToLineCol(b.text, b.cursor)
	if line >= strings.Count(b.text, "\n") {
		return
	}
	b.cursor = LineColToCursor(b.text, line+1, col)
}

// killLine deletes from the start of the logical line to the cursor.
func (b *buffer) killLine() {
	start := b.lineStart()
	b.text = b.text[:start] + b.text[b.cursor:]
	b.cursor = start
}

// killWord deletes the word before the cursor and any blanks after it. At the
// start of a line it joins the line with the previous one.
func (b *buffer) killWord() {
	start := b.lineStart()
	if b.cursor == start {
		b.backspace()
		return
	}
	i := b.cursor
	for i > start {
		r, size := utf8.DecodeLastRuneInString(b.text[:i])
		if !unicode.IsSpace(r) {
			break
		}
		i -= size
	}
	for i > start {
		r, size := utf8.DecodeLastRuneInString(b.text[:i])
		if unicode.IsSpace(r) {
			break
		}
		i -= size
	}
	b.text = b.text[:i] + b.text[b.cursor:]
	b.cursor = i
}

// CursorToLineCol converts a byte offset into a logical line index and a
// column counted in runes.
func CursorToLineCol(text string, cursor int) (line, col int) {
	cursor = max(0, min(cursor, len(text)))
	before := text[:cursor]
	line = strings.Count(before, "\n")
	start := strings.LastIndexByte(before, '\n') + 1
	return line, utf8.RuneCountInString(before[start:])
}

// LineColToCursor converts a line and rune column back into a byte offset.
// Both are clamped: the line to the last line, the column to the line length.
func LineColToCursor(text string, line, col int) int {
	start := 0
	for l := 0; l < line; l++ {
		i := strings.IndexByte(text[start:], '\n')
		if i < 0 {
			break
		}
		start += i + 1
	}
	end := len(text)
	if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
		end = start + i
	}

	pos := start
	for n := 0; n < col && pos < end; n++ {
		_, size := utf8.DecodeRuneInString(text[pos:end])
		pos += size
	}
	return pos
}
