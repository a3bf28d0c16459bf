package layout

import (
	"fmt"
	"strings"
	"time"

	"charm.land/lipgloss/v2"
	"charm.land/lipgloss/v2/table"

	"github.com/abhisek/logiprep/internal/ui/theme"
)

// DefaultWidth is used before the terminal reports its size, and for
// output that is not interactive.
const DefaultWidth = 80

// Rule renders a horizontal divider.
func Rule(width int) string {
	if width < 1 {
		width = 1
	}
	return lipgloss.NewStyle().Foreground(theme.Border).Render(strings.Repeat("─", width))
}

// Section renders a bold heading.
func Section(title string) string {
	return theme.Title.Render(title)
}

// CellStyle styles one body cell of a table. row is zero-based.
type CellStyle func(row, col int) lipgloss.Style

// Table renders rows under headers with a rounded border. style may be nil.
func Table(headers []string, rows [][]string, style CellStyle) string {
	header := lipgloss.NewStyle().Foreground(theme.TextDim).Bold(true).Padding(0, 1)
	cell := lipgloss.NewStyle().Foreground(theme.Text).Padding(0, 1)

	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(theme.Border)).
		Headers(headers...).
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return header
			}
			if style != nil {
				return style(row, col).Padding(0, 1)
			}
			return cell
		})
	return t.String()
}

// ProgressBar renders a labelled bar for fraction in [0, 1].
func ProgressBar(label string, fraction float64, width int) string {
	var b strings.Builder
	if label != "" {
		b.WriteString(theme.Body.Render(label))
		b.WriteString("  ")
	}
	percent := fmt.Sprintf("  %d%%", int(fraction*100+0.5))

	barWidth := width - lipgloss.Width(b.String()) - len(percent)
	if barWidth < 4 {
		barWidth = 4
	}
	filled := int(float64(barWidth) * fraction)
	filled = max(0, min(filled, barWidth))

	b.WriteString(theme.ProgressFilled.Render(strings.Repeat(" ", filled)))
	b.WriteString(theme.ProgressEmpty.Render(strings.Repeat(" ", barWidth-filled)))
	b.WriteString(theme.Subtitle.Render(percent))
	return b.String()
}

// Clock formats a duration as mm:ss.
func Clock(d time.Duration) string {
	if d < 0 {
		d = 0
	}
	d = d.Round(time.Second)
	return fmt.Sprintf("%02d:%02d", int(d/time.Minute), int(d%time.Minute/time.Second))
}
