package terminal

import (
	"fmt"
	"io"
	"os"
	"unicode/utf8"
)

// Colors for status output.
const (
	Reset  = "\033[0m"
	Bold   = "\033[1m"
	Green  = "\033[32m"
	Yellow = "\033[33m"
	Blue   = "\033[34m"
)

// Output receives status lines. It is stderr because the editor captures
// stdout and would paste it into the buffer.
var Output io.Writer = os.Stderr

// Success prints a green success message.
func Success(msg string) {
	fmt.Fprintf(Output, "%s%s✓%s %s\n", Bold, Green, Reset, msg)
}

// Info prints a blue info message.
func Info(msg string) {
	fmt.Fprintf(Output, "%s%si%s %s\n", Bold, Blue, Reset, msg)
}

// Warning prints a yellow warning message.
func Warning(msg string) {
	fmt.Fprintf(Output, "%s%s!%s %s\n", Bold, Yellow, Reset, msg)
}

// Detail prints an indented label/value line to w.
func Detail(w io.Writer, label, value string) {
	fmt.Fprintf(w, "  %-5s %s\n", label+":", value)
}

// Truncate shortens s to at most n runes, appending "..." when cut.
func Truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos] + "..."
		}
		i++
	}
	return s
}
