package tui

import (
	"strings"
	"unicode/utf8"
)

// Row is one visual row of wrapped text: the byte range [Start, End) of the
// buffer, the logical line it belongs to, and whether it continues a row
// above it.
type Row struct {
	Line  int
	Start int
	End   int
	Cont  bool
}

// Wrap splits text into visual rows of at most width runes. Every logical line
// starts a new row, so an empty line yields one empty row.
func Wrap(text string, width int) []Row {
	width = max(width, 1)

	var rows []Row
	start := 0
	for line := 0; ; line++ {
		end := len(text)
		if i := strings.IndexByte(text[start:], '\n'); i >= 0 {
			end = start + i
		}

		rowStart, n := start, 0
		cont := false
		for pos := start; pos < end; {
			_, size := utf8.DecodeRuneInString(text[pos:end])
			if n == width {
				rows = append(rows, Row{Line: line, Start: rowStart, End: pos, Cont: cont})
				rowStart, n, cont = pos, 0, true
			}
			pos += size
			n++
		}
		rows = append(rows, Row{Line: line, Start: rowStart, End: end, Cont: cont})

		if end == len(text) {
			return rows
		}
		start = end + 1
	}
}

// Unwrap reassembles rows into the text they were cut from.
func Unwrap(text string, rows []Row) string {
	var b strings.Builder
	for i, r := range rows {
		if i > 0 && !r.Cont {
			b.WriteByte('\n')
		}
		b.WriteString(text[r.Start:r.End])
	}
	return b.String()
}

// cursorRow locates the visual row and rune column of a byte offset. An offset
// on a soft break belongs to the row it starts, except at the end of a logical
// line.
func cursorRow(text string, rows []Row, cursor int) (row, col int) {
	for i, r := range rows {
		last := i == len(rows)-1 || !rows[i+1].Cont
		if cursor >= r.Start && (cursor < r.End || (cursor == r.End && last)) {
			return i, utf8.RuneCountInString(text[r.Start:cursor])
		}
	}
	return len(rows) - 1, 0
}

// visibleLines is the height of the input window in rows.
const visibleLines = 5

// followCursor returns the scroll offset that keeps row inside the window
// [scroll, scroll+visibleLines), never scrolling past the last row.
func followCursor(scroll, row, total int) int {
	if row < scroll {
		scroll = row
	}
	if row >= scroll+visibleLines {
		scroll = row - visibleLines + 1
	}
	return max(0, min(scroll, total-visibleLines))
}
