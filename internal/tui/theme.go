package tui

import (
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss/v2"
)

// BorderKind selects the box-drawing set used for the dialog frame.
type BorderKind int

const (
	BorderRounded BorderKind = iota
	BorderDouble
	BorderThick
	BorderPlain
)

func (k BorderKind) String() string {
	switch k {
	case BorderDouble:
		return "double"
	case BorderThick:
		return "thick"
	case BorderPlain:
		return "plain"
	default:
		return "rounded"
	}
}

func (k BorderKind) border() lipgloss.Border {
	switch k {
	case BorderDouble:
		return lipgloss.DoubleBorder()
	case BorderThick:
		return lipgloss.ThickBorder()
	case BorderPlain:
		return lipgloss.NormalBorder()
	default:
		return lipgloss.RoundedBorder()
	}
}

// Theme holds the colors and decorations of both dialogs. Themes never change
// layout; every width is measured from the strings actually drawn.
type Theme struct {
	Name string

	Primary   color.Color // border, prompt glyph, focused controls
	Secondary color.Color // category headers
	Accent    color.Color // placeholder names
	Warning   color.Color // filter line
	Error     color.Color // cancel button
	Dim       color.Color // hints, help line, unfocused text
	Text      color.Color
	Input     color.Color

	Title            string
	Prompt           string
	FilterPrompt     string
	SelectedPrefix   string
	UnselectedPrefix string
	Border           BorderKind
}

// DefaultTheme is used when no theme is configured or the name is unknown.
const DefaultTheme = "hacker"

// Minimal is the plain cyan look.
func Minimal() Theme {
	return Theme{
		Name:             "minimal",
		Primary:          lipgloss.Color("6"),
		Secondary:        lipgloss.Color("4"),
		Accent:           lipgloss.Color("5"),
		Warning:          lipgloss.Color("3"),
		Error:            lipgloss.Color("1"),
		Dim:              lipgloss.Color("8"),
		Text:             lipgloss.Color("15"),
		Input:            lipgloss.Color("15"),
		Title:            " opencode ",
		Prompt:           "> ",
		FilterPrompt:     "/ ",
		SelectedPrefix:   "> ",
		UnselectedPrefix: "  ",
		Border:           BorderRounded,
	}
}

// Hacker is the green-on-black default.
func Hacker() Theme {
	return Theme{
		Name:             "hacker",
		Primary:          lipgloss.Color("#00ff00"),
		Secondary:        lipgloss.Color("#00ffff"),
		Accent:           lipgloss.Color("#ff00ff"),
		Warning:          lipgloss.Color("#ffaa00"),
		Error:            lipgloss.Color("#ff3232"),
		Dim:              lipgloss.Color("#008c00"),
		Text:             lipgloss.Color("#00e600"),
		Input:            lipgloss.Color("#00ff00"),
		Title:            " ░▒▓ OPENCODE ▓▒░ ",
		Prompt:           "λ ",
		FilterPrompt:     "⟫ ",
		SelectedPrefix:   "▸ ",
		UnselectedPrefix: "  ",
		Border:           BorderThick,
	}
}

// Matrix uses shades of terminal green.
func Matrix() Theme {
	return Theme{
		Name:             "matrix",
		Primary:          lipgloss.Color("#00c800"),
		Secondary:        lipgloss.Color("#00ff00"),
		Accent:           lipgloss.Color("#96ff96"),
		Warning:          lipgloss.Color("#c8ff00"),
		Error:            lipgloss.Color("#ff6464"),
		Dim:              lipgloss.Color("#005000"),
		Text:             lipgloss.Color("#00b400"),
		Input:            lipgloss.Color("#00ff00"),
		Title:            " ⟨ MATRIX ⟩ ",
		Prompt:           "$ ",
		FilterPrompt:     ">> ",
		SelectedPrefix:   "█ ",
		UnselectedPrefix: "░ ",
		Border:           BorderThick,
	}
}

// CRT is a retro amber monitor.
func CRT() Theme {
	return Theme{
		Name:             "crt",
		Primary:          lipgloss.Color("#ffaa00"),
		Secondary:        lipgloss.Color("#ffc832"),
		Accent:           lipgloss.Color("#ffdc64"),
		Warning:          lipgloss.Color("#ffff00"),
		Error:            lipgloss.Color("#ff6400"),
		Dim:              lipgloss.Color("#8c5a00"),
		Text:             lipgloss.Color("#ffaa00"),
		Input:            lipgloss.Color("#ffc832"),
		Title:            " ◄ TERMINAL ► ",
		Prompt:           `C:\> `,
		FilterPrompt:     "? ",
		SelectedPrefix:   "=> ",
		UnselectedPrefix: "   ",
		Border:           BorderDouble,
	}
}

// ParseTheme resolves a theme name or alias, case-insensitively. Unknown names
// fall back to the hacker theme.
func ParseTheme(name string) Theme {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "minimal", "min", "clean":
		return Minimal()
	case "matrix", "neo":
		return Matrix()
	case "crt", "retro", "amber":
		return CRT()
	default:
		return Hacker()
	}
}

// ThemeNames lists the canonical theme names.
func ThemeNames() []string {
	return []string{"minimal", "hacker", "matrix", "crt"}
}

func (t Theme) fg(c color.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}
