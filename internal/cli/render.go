package cli

import (
	"fmt"

	"github.com/charmbracelet/lipgloss"

	"github.com/talgya/flyingstars/internal/compass"
	"github.com/talgya/flyingstars/internal/flyingstar"
)

var cellStyle = lipgloss.NewStyle().
	Width(9).
	Align(lipgloss.Center).
	BorderStyle(lipgloss.NormalBorder()).
	BorderForeground(lipgloss.Color("63"))

var (
	labelStyle = lipgloss.NewStyle().Faint(true)
	starStyle  = lipgloss.NewStyle().Bold(true)
)

// renderChart draws the chart grid. Each cell shows mountain and water
// stars on top with the base star beneath.
func renderChart(c *flyingstar.Chart) string {
	return renderGrid(func(p int) string {
		return fmt.Sprintf("%s\n%s\n%d",
			labelStyle.Render(string(compass.DirectionOf(p))),
			starStyle.Render(fmt.Sprintf("%d   %d", c.Mountain.At(p), c.Water.At(p))),
			c.Base.At(p))
	})
}

// renderStars draws a single star grid.
func renderStars(s flyingstar.Stars) string {
	return renderGrid(func(p int) string {
		return fmt.Sprintf("%s\n%s",
			labelStyle.Render(string(compass.DirectionOf(p))),
			starStyle.Render(fmt.Sprint(s.At(p))))
	})
}

func renderGrid(cell func(palace int) string) string {
	rows := make([]string, 0, 3)
	for _, row := range flyingstar.GridLayout {
		cells := make([]string, 0, 3)
		for _, p := range row {
			cells = append(cells, cellStyle.Render(cell(p)))
		}
		rows = append(rows, lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return lipgloss.JoinVertical(lipgloss.Left, rows...)
}
