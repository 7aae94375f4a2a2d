package tui

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/mattn/go-runewidth"

	"github.com/moasq/opencode-helix/internal/terminal"
)

// InputOptions configures RunInput.
type InputOptions struct {
	Initial      string
	Hint         string // editor context shown above the input, may be empty
	Placeholders []Placeholder
	Theme        Theme
	Effects      Effects
}

type focus int

const (
	focusInput focus = iota
	focusSend
	focusCancel
)

const (
	inputMaxWidth = 64
	nameGutter    = 12
	maxPanelRows  = 6
)

const (
	inputHelp      = "tab focus · enter send · alt+enter newline · esc cancel"
	completionHelp = "↑↓ choose · tab/enter accept · esc dismiss"
)

// inputModel is the state of the input dialog, kept apart from the terminal
// so key handling can be driven directly.
type inputModel struct {
	buf          buffer
	focus        focus
	scroll       int
	comp         *completion
	dismissed    string // token whose popup was closed with Escape
	dismissedAt  int
	placeholders []Placeholder
}

func newInputModel(initial string, placeholders []Placeholder) *inputModel {
	m := &inputModel{
		buf:          newBuffer(initial),
		placeholders: placeholders,
		dismissedAt:  -1,
	}
	m.refreshCompletion()
	return m
}

// handle applies one key. done is true when the dialog should close with res.
func (m *inputModel) handle(k terminal.Key) (res Result, done bool) {
	if k.IsCtrl('c') {
		return Cancel, true
	}
	if m.comp != nil && m.handleCompletion(k) {
		return Result{}, false
	}

	switch {
	case k.Code == terminal.KeyEscape:
		return Cancel, true
	case k.Code == terminal.KeyTab:
		m.setFocus((m.focus + 1) % 3)
		return Result{}, false
	case k.Code == terminal.KeyBackTab:
		m.setFocus((m.focus + 2) % 3)
		return Result{}, false
	case k.Code == terminal.KeyEnter && !k.Has(terminal.ModAlt):
		switch m.focus {
		case focusCancel:
			return Cancel, true
		default:
			if m.buf.text != "" {
				return Submit(m.buf.text), true
			}
		}
		return Result{}, false
	}

	if m.focus != focusInput {
		switch k.Code {
		case terminal.KeyLeft:
			m.setFocus(m.focus - 1)
		case terminal.KeyRight:
			if m.focus == focusSend {
				m.setFocus(focusCancel)
			}
		}
		return Result{}, false
	}

	m.edit(k)
	m.refreshCompletion()
	return Result{}, false
}

// handleCompletion intercepts the keys the popup owns and reports whether k
// was consumed.
func (m *inputModel) handleCompletion(k terminal.Key) bool {
	switch {
	case k.Code == terminal.KeyUp || k.IsCtrl('p'):
		m.comp.prev()
	case k.Code == terminal.KeyDown || k.IsCtrl('n'):
		m.comp.next()
	case k.Code == terminal.KeyTab || (k.Code == terminal.KeyEnter && !k.Has(terminal.ModAlt)):
		m.accept()
	case k.Code == terminal.KeyEscape:
		m.dismissed, m.dismissedAt = m.comp.token, m.comp.start
		m.comp = nil
	default:
		return false
	}
	return true
}

// accept replaces the partial token with the selected name and a space.
func (m *inputModel) accept() {
	name := m.comp.current().Name
	t := m.buf.text
	m.buf.text = t[:m.comp.start] + name + " " + t[m.buf.cursor:]
	m.buf.cursor = m.comp.start + len(name) + 1
	m.comp = nil
	m.refreshCompletion()
}

func (m *inputModel) edit(k terminal.Key) {
	b := &m.buf
	switch {
	case k.IsPlain():
		b.insert(string(k.Rune))
	case k.Code == terminal.KeyEnter && k.Has(terminal.ModAlt):
		b.insert("\n")
	case k.Code == terminal.KeyBackspace:
		b.backspace()
	case k.Code == terminal.KeyDelete:
		b.deleteForward()
	case k.Code == terminal.KeyLeft:
		b.left()
	case k.Code == terminal.KeyRight:
		b.right()
	case k.Code == terminal.KeyHome || k.IsCtrl('a'):
		b.home()
	case k.Code == terminal.KeyEnd || k.IsCtrl('e'):
		b.end()
	case k.Code == terminal.KeyUp || k.IsCtrl('p'):
		b.up()
	case k.Code == terminal.KeyDown || k.IsCtrl('n'):
		b.down()
	case k.IsCtrl('u'):
		b.killLine()
	case k.IsCtrl('w'):
		b.killWord()
	}
}

func (m *inputModel) setFocus(f focus) {
	m.focus = f
	if f != focusInput {
		m.comp = nil
		return
	}
	m.refreshCompletion()
}

// refreshCompletion recomputes the popup for the token under the cursor.
func (m *inputModel) refreshCompletion() {
	m.comp = nil
	start, token, ok := completionToken(m.buf.text, m.buf.cursor)
	if !ok {
		m.dismissed, m.dismissedAt = "", -1
		return
	}
	if start == m.dismissedAt && token == m.dismissed {
		return
	}
	m.dismissed, m.dismissedAt = "", -1
	if matches := matchPlaceholders(m.placeholders, token); len(matches) > 0 {
		m.comp = &completion{start: start, token: token, matches: matches}
	}
}

// follow wraps the buffer at width and scrolls so the cursor row is visible.
// It returns the rows and the cursor position within them.
func (m *inputModel) follow(width int) (rows []Row, row, col int) {
	rows = Wrap(m.buf.text, width)
	row, col = cursorRow(m.buf.text, rows, m.buf.cursor)
	m.scroll = followCursor(m.scroll, row, len(rows))
	return rows, row, col
}

// inputView renders the dialog for one frame.
type inputView struct {
	theme  Theme
	hint   *Typewriter
	blink  *Blinker
	scan   *Scanline
	width  int // dialog width
	height int // screen height
}

func (v *inputView) render(m *inputModel) []string {
	t := v.theme
	inner := max(1, v.width-4)
	promptW := runewidth.StringWidth(t.Prompt)
	textW := max(1, inner-promptW-1)

	rows, curRow, curCol := m.follow(textW)

	var body []string
	if hint := v.hint.Text(); v.hint.total > 0 {
		body = append(body, t.fg(t.Dim).Render(hint), "")
	}

	textStyle := t.fg(t.Input)
	if m.focus != focusInput {
		textStyle = t.fg(t.Dim)
	}
	for i := m.scroll; i < m.scroll+visibleLines; i++ {
		if i >= len(rows) {
			body = append(body, "")
			continue
		}
		r := rows[i]
		var gutter string
		switch {
		case r.Cont:
			gutter = t.fg(t.Dim).Render(runewidth.FillRight("↳", promptW))
		case r.Line == 0:
			gutter = t.fg(t.Primary).Bold(true).Render(t.Prompt)
		default:
			gutter = strings.Repeat(" ", promptW)
		}
		text := m.buf.text[r.Start:r.End]
		if i == curRow && m.focus == focusInput {
			body = append(body, gutter+v.caretLine(text, curCol, textStyle))
		} else {
			body = append(body, gutter+textStyle.Render(text))
		}
	}

	indicator := ""
	if len(rows) > visibleLines {
		indicator = t.fg(t.Dim).Render(fmt.Sprintf("%d/%d", curRow+1, len(rows)))
	}
	body = append(body, rightAlign(indicator, inner))

	// Border, blank row, buttons and help line around the panel.
	room := v.height - len(body) - 5
	body = append(body, v.panel(m, inner, room)...)
	body = append(body, "", buttons(t, m.focus))
	if m.comp != nil {
		body = append(body, helpLine(t, completionHelp))
	} else {
		body = append(body, helpLine(t, inputHelp))
	}

	v.scan.SetHeight(len(body))
	return box(t, t.Title, v.width, body, v.scan.Row())
}

// caretLine draws text with the caret at rune column col.
func (v *inputView) caretLine(text string, col int, style lipgloss.Style) string {
	i := 0
	for n := 0; n < col && i < len(text); n++ {
		_, size := utf8.DecodeRuneInString(text[i:])
		i += size
	}
	before, rest := text[:i], text[i:]
	under, after := " ", ""
	if rest != "" {
		_, size := utf8.DecodeRuneInString(rest)
		under, after = rest[:size], rest[size:]
	}

	var caret string
	switch {
	case !v.blink.Visible():
		caret = style.Render(under)
	case rest == "":
		caret = v.theme.fg(v.theme.Input).Render("█")
	default:
		caret = style.Reverse(true).Render(under)
	}
	return style.Render(before) + caret + style.Render(after)
}

// panel lists the placeholders, or the completion matches while the popup is
// open. Its height does not change between the two.
func (v *inputView) panel(m *inputModel, inner, room int) []string {
	n := min(len(m.placeholders), maxPanelRows, room)
	if n <= 0 {
		return nil
	}
	t := v.theme

	items := m.placeholders
	selected := -1
	first := 0
	if m.comp != nil {
		items = m.comp.matches
		selected = m.comp.selected
		first = max(0, selected-n+1)
	}

	lines := make([]string, 0, n)
	for i := first; i < first+n; i++ {
		if i >= len(items) {
			lines = append(lines, "")
			continue
		}
		p := items[i]
		name := runewidth.FillRight(runewidth.Truncate(p.Name, nameGutter-1, "…"), nameGutter)
		value := runewidth.Truncate(strings.Join(strings.Fields(p.Value), " "), max(0, inner-nameGutter), "…")
		if i == selected {
			lines = append(lines, t.fg(t.Primary).Reverse(true).Render(name+value))
			continue
		}
		lines = append(lines, t.fg(t.Accent).Render(name)+t.fg(t.Dim).Render(value))
	}
	return lines
}

// RunInput shows the input dialog until the user submits non-empty text or
// cancels. The returned text still contains its placeholders.
func RunInput(ctx context.Context, screen Screen, opts InputOptions) (Result, error) {
	now := time.Now()
	m := newInputModel(opts.Initial, opts.Placeholders)
	v := &inputView{
		theme: opts.Theme,
		hint:  newTypewriter(opts.Hint, opts.Effects.Typewriter, now),
		blink: newBlinker(opts.Effects.Blink, now),
		scan:  newScanline(opts.Effects.Scanline, now),
	}
	p := &painter{screen: screen}

	for {
		select {
		case <-ctx.Done():
			return Result{}, ctx.Err()
		default:
		}

		now := time.Now()
		v.blink.Tick(now)
		v.hint.Tick(now)
		v.scan.Tick(now)

		w, h := screen.Size()
		v.width, v.height = min(inputMaxWidth, w), h
		if err := p.paint(v.render(m), v.width, w, h); err != nil {
			return Result{}, err
		}

		k, ok, err := screen.ReadKey(keyWait)
		if err != nil {
			return Result{}, err
		}
		if !ok {
			continue
		}
		v.blink.Reset(time.Now())
		v.hint.Skip()
		if res, done := m.handle(k); done {
			return res, nil
		}
	}
}
