package cli

import (
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// palette mirrors the colours used across brandlens output.
var palette = struct {
	Primary lipgloss.Color
	Muted   lipgloss.Color
	Success lipgloss.Color
	Warning lipgloss.Color
	Error   lipgloss.Color
}{
	Primary: lipgloss.Color("#7C3AED"),
	Muted:   lipgloss.Color("#6C7086"),
	Success: lipgloss.Color("#A6E3A1"),
	Warning: lipgloss.Color("#F9E2AF"),
	Error:   lipgloss.Color("#F38BA8"),
}

// outputStyles holds the styles for one output stream.
type outputStyles struct {
	Title   lipgloss.Style
	Label   lipgloss.Style
	Muted   lipgloss.Style
	Score   func(similarity float64) lipgloss.Style
}

// stylesFor returns colour styles when w is a terminal, plain ones otherwise.
func stylesFor(w io.Writer) outputStyles {
	if !isTerminal(w) {
		plain := lipgloss.NewStyle()
		return outputStyles{
			Title: plain,
			Label: plain,
			Muted: plain,
			Score: func(float64) lipgloss.Style { return plain },
		}
	}

	return outputStyles{
		Title: lipgloss.NewStyle().Bold(true).Foreground(palette.Primary),
		Label: lipgloss.NewStyle().Bold(true),
		Muted: lipgloss.NewStyle().Foreground(palette.Muted),
		Score: func(similarity float64) lipgloss.Style {
			switch {
			case similarity >= 0.9:
				return lipgloss.NewStyle().Foreground(palette.Success)
			case similarity >= 0.75:
				return lipgloss.NewStyle().Foreground(palette.Warning)
			default:
				return lipgloss.NewStyle().Foreground(palette.Error)
			}
		},
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// table renders rows as left aligned columns padded to the widest cell.
func table(st outputStyles, header []string, rows [][]string) string {
	widths := make([]int, len(header))
	for i, h := range header {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			if i < len(widths) {
				widths[i] = max(widths[i], lipgloss.Width(cell))
			}
		}
	}

	var b strings.Builder
	b.WriteString(renderRow(st.Label, header, widths))
	b.WriteByte('\n')
	for _, row := range rows {
		b.WriteString(renderRow(lipgloss.NewStyle(), row, widths))
		b.WriteByte('\n')
	}
	return b.String()
}

func renderRow(style lipgloss.Style, cells []string, widths []int) string {
	var b strings.Builder
	for i, cell := range cells {
		if i >= len(widths) {
			break
		}
		if i < len(cells)-1 {
			cell += strings.Repeat(" ", widths[i]+2-lipgloss.Width(cell))
		}
		b.WriteString(style.Render(cell))
	}
	return b.String()
}
