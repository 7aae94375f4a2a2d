package tui

import (
	"strings"
	"unicode"
)

// Placeholder is an @-name offered by autocomplete together with the value it
// will expand to.
type Placeholder struct {
	Name  string
	Value string
}

// completion is the active popup. A nil *completion means autocomplete is
// inactive; an active one always has at least one match.
type completion struct {
	start    int // byte offset of the '@' that opens the token
	token    string
	matches  []Placeholder
	selected int
}

func (c *completion) next() {
	c.selected = (c.selected + 1) % len(c.matches)
}

func (c *completion) prev() {
	c.selected = (c.selected + len(c.matches) - 1) % len(c.matches)
}

func (c *completion) current() Placeholder {
	return c.matches[c.selected]
}

// completionToken returns the token from the last '@' before cursor up to the
// cursor. ok is false when there is no '@' or the token contains whitespace.
func completionToken(text string, cursor int) (start int, token string, ok bool) {
	before := text[:cursor]
	start = strings.LastIndexByte(before, '@')
	if start < 0 {
		return 0, "", false
	}
	token = before[start:]
	if strings.IndexFunc(token, unicode.IsSpace) >= 0 {
		return 0, "", false
	}
	return start, token, true
}

// matchPlaceholders returns the placeholders whose name starts with token,
// ignoring case, in their original order.
func matchPlaceholders(placeholders []Placeholder, token string) []Placeholder {
	token = strings.ToLower(token)
	var out []Placeholder
	for _, p := range placeholders {
		if strings.HasPrefix(strings.ToLower(p.Name), token) {
			out = append(out, p)
		}
	}
	return out
}
