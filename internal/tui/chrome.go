package tui

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"

	"github.com/moasq/opencode-helix/internal/terminal"
)

// Screen is what a dialog needs from the terminal. *terminal.Terminal
// implements it.
type Screen interface {
	Size() (width, height int)
	Draw(frame string) error
	ReadKey(timeout time.Duration) (terminal.Key, bool, error)
}

// ErrRender is returned when a frame cannot be put on the screen.
var ErrRender = errors.New("render failed")

// Result is the outcome of a dialog: either a submitted value or a cancel.
type Result struct {
	Value     string
	Cancelled bool
}

// Cancel is the result of a dismissed dialog.
var Cancel = Result{Cancelled: true}

// Submit wraps a submitted value.
func Submit(value string) Result {
	return Result{Value: value}
}

// keyWait bounds each key read so animations keep running.
const keyWait = 16 * time.Millisecond

const clearScreen = "\x1b[H\x1b[2J"

type rect struct{ x, y, w, h int }

// painter places dialog lines centred on the screen and skips frames that
// did not change.
type painter struct {
	screen Screen
	last   string
	area   rect
}

func (p *painter) paint(lines []string, width, screenW, screenH int) error {
	r := rect{
		x: max(0, (screenW-width)/2),
		y: max(0, (screenH-len(lines))/2),
		w: width,
		h: len(lines),
	}

	var b strings.Builder
	if r != p.area {
		b.WriteString(clearScreen)
	}
	for i, line := range lines {
		fmt.Fprintf(&b, "\x1b[%d;%dH%s", r.y+i+1, r.x+1, line)
	}
	frame := b.String()
	if frame == p.last {
		return nil
	}
	if err := p.screen.Draw(frame); err != nil {
		return fmt.Errorf("%w: %w", ErrRender, err)
	}
	p.last = frame
	p.area = r
	return nil
}

// box frames body lines in the theme's border with the title set into the
// top edge. Every returned line is exactly width cells wide. scan is the body
// row whose side borders are drawn dim, or -1.
func box(t Theme, title string, width int, body []string, scan int) []string {
	bd := t.Border.border()
	edge := t.fg(t.Primary)
	dim := t.fg(t.Dim)
	inner := max(0, width-2)

	titleText := ansi.Truncate(title, max(0, inner-2), "")
	titleW := lipgloss.Width(titleText)
	top := bd.TopLeft + bd.Top
	if inner < 2 {
		top = bd.TopLeft
	}
	lines := make([]string, 0, len(body)+2)
	lines = append(lines,
		edge.Render(top)+
			t.fg(t.Primary).Bold(true).Render(titleText)+
			edge.Render(strings.Repeat(bd.Top, max(0, inner-titleW-1))+bd.TopRight))

	for i, l := range body {
		side := edge
		if i == scan {
			side = dim
		}
		lines = append(lines, side.Render(bd.Left)+" "+fit(l, max(0, inner-2))+" "+side.Render(bd.Right))
	}

	lines = append(lines, edge.Render(bd.BottomLeft+strings.Repeat(bd.Bottom, inner)+bd.BottomRight))
	return lines
}

// fit pads or truncates a styled string to exactly w cells.
func fit(s string, w int) string {
	sw := lipgloss.Width(s)
	if sw > w {
		s = ansi.Truncate(s, w, "")
		sw = lipgloss.Width(s)
	}
	return s + strings.Repeat(" ", w-sw)
}

// rightAlign places s at the right edge of a w-cell line.
func rightAlign(s string, w int) string {
	return strings.Repeat(" ", max(0, w-lipgloss.Width(s))) + s
}

// buttons renders the SEND and CANCEL controls. The focused one is drawn in
// reverse video.
func buttons(t Theme, f focus) string {
	send := t.fg(t.Primary)
	cancel := t.fg(t.Error)
	if f == focusSend {
		send = send.Reverse(true).Bold(true)
	}
	if f == focusCancel {
		cancel = cancel.Reverse(true).Bold(true)
	}
	return send.Render("[ SEND ]") + "  " + cancel.Render("[ CANCEL ]")
}

func helpLine(t Theme, text string) string {
	return t.fg(t.Dim).Render(text)
}
