package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/vovakirdan/ghostflap/internal/core"
)

// cellColors maps core.Color to ANSI color codes.
var cellColors = map[core.Color]string{
	core.ColorRed:           "1",
	core.ColorGreen:         "2",
	core.ColorYellow:        "3",
	core.ColorBlue:          "4",
	core.ColorMagenta:       "5",
	core.ColorCyan:          "6",
	core.ColorWhite:         "7",
	core.ColorBrightRed:     "9",
	core.ColorBrightGreen:   "10",
	core.ColorBrightYellow:  "11",
	core.ColorBrightBlue:    "12",
	core.ColorBrightMagenta: "13",
	core.ColorBrightCyan:    "14",
	core.ColorBrightWhite:   "15",
	core.ColorOrange:        "208",
	core.ColorGray:          "245",
}

// styles holds every lipgloss style the UI needs, bound to one renderer so
// SSH sessions get their client's color profile.
type styles struct {
	cells  map[core.Color]lipgloss.Style
	panel  lipgloss.Style
	title  lipgloss.Style
	score  lipgloss.Style
	record lipgloss.Style
	status lipgloss.Style
	errMsg lipgloss.Style
	help   lipgloss.Style
}

func newStyles(r *lipgloss.Renderer) styles {
	if r == nil {
		r = lipgloss.DefaultRenderer()
	}
	cells := make(map[core.Color]lipgloss.Style, len(cellColors)+1)
	cells[core.ColorDefault] = r.NewStyle()
	for c, code := range cellColors {
		cells[c] = r.NewStyle().Foreground(lipgloss.Color(code))
	}
	return styles{
		cells: cells,
		panel: r.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("240")).
			Padding(1, 3),
		title:  r.NewStyle().Bold(true).Foreground(lipgloss.Color("229")),
		score:  r.NewStyle().Bold(true),
		record: r.NewStyle().Bold(true).Foreground(lipgloss.Color("11")),
		status: r.NewStyle().Foreground(lipgloss.Color("10")),
		errMsg: r.NewStyle().Foreground(lipgloss.Color("9")),
		help:   r.NewStyle().Foreground(lipgloss.Color("241")),
	}
}

// RenderScreen converts a Screen buffer to a styled string for display.
// Adjacent cells with the same color share one escape sequence.
func (st styles) RenderScreen(s *core.Screen) string {
	var sb strings.Builder
	sb.Grow(s.Width()*s.Height()*2 + s.Height())

	for y := range s.Height() {
		if y > 0 {
			sb.WriteRune('\n')
		}
		x := 0
		for x < s.Width() {
			color := s.GetCell(x, y).Color
			var run strings.Builder
			for x < s.Width() {
				cell := s.GetCell(x, y)
				if cell.Color != color {
					break
				}
				run.WriteRune(cell.Rune)
				x++
			}
			style, ok := st.cells[color]
			if !ok {
				style = st.cells[core.ColorDefault]
			}
			sb.WriteString(style.Render(run.String()))
		}
	}
	return sb.String()
}

// place centers content in a width x height area.
func place(width, height int, content string) string {
	if width <= 0 || height <= 0 {
		return content
	}
	return lipgloss.Place(width, height, lipgloss.Center, lipgloss.Center, content)
}
