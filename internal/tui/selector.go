package tui

import (
	"context"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/mattn/go-runewidth"

	"github.com/moasq/opencode-helix/internal/terminal"
)

// SelectItem is one entry of the select dialog. Value is returned on submit;
// Name and Description are matched by the filter.
type SelectItem struct {
	Name        string
	Description string
	Value       string
	Category    string
}

// SelectOptions configures RunSelect.
type SelectOptions struct {
	Items   []SelectItem
	Theme   Theme
	Effects Effects
}

const (
	selectMaxWidth = 70
	selectHelp     = "↑↓ navigate · enter select · esc cancel · type to filter"
)

type selectModel struct {
	items    []SelectItem
	filter   string
	selected int
	view     []int // indices into items that match filter
}

func newSelectModel(items []SelectItem) *selectModel {
	m := &selectModel{items: items}
	m.refilter()
	return m
}

// refilter rebuilds the view and clamps the selection into it.
func (m *selectModel) refilter() {
	q := strings.ToLower(m.filter)
	m.view = m.view[:0]
	for i, it := range m.items {
		if q == "" ||
			strings.Contains(strings.ToLower(it.Name), q) ||
			strings.Contains(strings.ToLower(it.Description), q) {
			m.view = append(m.view, i)
		}
	}
	if m.selected >= len(m.view) {
		m.selected = max(0, len(m.view)-1)
	}
}

func (m *selectModel) handle(k terminal.Key) (res Result, done bool) {
	switch {
	case k.Code == terminal.KeyEscape || k.IsCtrl('c'):
		return Cancel, true
	case k.Code == terminal.KeyEnter:
		if len(m.view) > 0 {
			return Submit(m.items[m.view[m.selected]].Value), true
		}
	case k.Code == terminal.KeyUp || k.IsCtrl('p') || (k.IsPlain() && k.Rune == 'k'):
		if m.selected > 0 {
			m.selected--
		}
	case k.Code == terminal.KeyDown || k.IsCtrl('n') || (k.IsPlain() && k.Rune == 'j'):
		if m.selected < len(m.view)-1 {
			m.selected++
		}
	case k.Code == terminal.KeyBackspace:
		if m.filter != "" {
			_, size := utf8.DecodeLastRuneInString(m.filter)
			m.filter = m.filter[:len(m.filter)-size]
			m.refilter()
		}
	case k.IsPlain():
		m.filter += string(k.Rune)
		m.refilter()
	}
	return Result{}, false
}

type selectView struct {
	theme Theme
	blink *Blinker
	scan  *Scanline
}

func (v *selectView) render(m *selectModel, screenW, screenH int) (lines []string, width int) {
	t := v.theme
	width = min(selectMaxWidth, screenW)
	inner := max(1, width-4)

	// Display rows: a header wherever the category changes, then the item.
	type displayRow struct {
		header string
		pos    int // position in m.view, -1 for headers
	}
	var display []displayRow
	selRow := 0
	category := ""
	for pos, idx := range m.view {
		it := m.items[idx]
		if it.Category != "" && (pos == 0 || it.Category != category) {
			display = append(display, displayRow{header: it.Category, pos: -1})
		}
		category = it.Category
		if pos == m.selected {
			selRow = len(display)
		}
		display = append(display, displayRow{pos: pos})
	}

	// Filter line, blank, items, blank, help, plus the border.
	want := len(m.items) + categories(m.items) + 6
	height := min(want, screenH-4)
	if height < 7 {
		height = min(7, screenH)
	}
	itemRows := max(1, height-6)
	offset := 0
	if selRow >= itemRows {
		offset = selRow - itemRows + 1
	}

	caret := " "
	if v.blink.Visible() {
		caret = "█"
	}
	body := []string{
		t.fg(t.Warning).Render(t.FilterPrompt+m.filter) + t.fg(t.Input).Render(caret),
		"",
	}

	prefixW := max(runewidth.StringWidth(t.SelectedPrefix), runewidth.StringWidth(t.UnselectedPrefix))
	for i := offset; i < offset+itemRows; i++ {
		switch {
		case len(m.view) == 0 && i == offset:
			body = append(body, t.fg(t.Dim).Render("no matches"))
		case i >= len(display):
			body = append(body, "")
		case display[i].pos < 0:
			body = append(body, t.fg(t.Secondary).Bold(true).Render(display[i].header))
		default:
			it := m.items[m.view[display[i].pos]]
			name := runewidth.FillRight(runewidth.Truncate(it.Name, nameGutter, "…"), nameGutter)
			if display[i].pos == m.selected {
				prefix := runewidth.FillRight(t.SelectedPrefix, prefixW)
				row := runewidth.Truncate(prefix+name+" "+it.Description, inner, "…")
				body = append(body, t.fg(t.Primary).Reverse(true).Bold(true).Render(runewidth.FillRight(row, inner)))
				continue
			}
			prefix := runewidth.FillRight(t.UnselectedPrefix, prefixW)
			desc := runewidth.Truncate(it.Description, max(0, inner-prefixW-nameGutter-1), "…")
			body = append(body, t.fg(t.Text).Render(prefix+name+" ")+t.fg(t.Dim).Render(desc))
		}
	}
	body = append(body, "", helpLine(t, selectHelp))

	v.scan.SetHeight(len(body))
	return box(t, t.Title, width, body, v.scan.Row()), width
}

func categories(items []SelectItem) int {
	n := 0
	last := ""
	for i, it := range items {
		if it.Category != "" && (i == 0 || it.Category != last) {
			n++
		}
		last = it.Category
	}
	return n
}

// RunSelect shows the select dialog and returns the value of the chosen item.
// An empty item list cancels without touching the screen.
func RunSelect(ctx context.Context, screen Screen, opts SelectOptions) (Result, error) {
	if len(opts.Items) == 0 {
		return Cancel, nil
	}

	now := time.Now()
	m := newSelectModel(opts.Items)
	v := &selectView{
		theme: opts.Theme,
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
		v.scan.Tick(now)

		w, h := screen.Size()
		lines, width := v.render(m, w, h)
		if err := p.paint(lines, width, w, h); err != nil {
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
		if res, done := m.handle(k); done {
			return res, nil
		}
	}
}
