package render

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/techtech0521/schedule-timeline/internal/timeline"
)

const minTextWidth = 24

var (
	lineStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#000000"))
	titleStyle = lipgloss.NewStyle().Bold(true)
	mutedStyle = lipgloss.NewStyle().Faint(true)
)

func colorStyle(c timeline.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex()))
}

// Text writes a terminal rendering of the timeline, width columns wide:
// a center line with colored markers and each item's text on its side.
func Text(w io.Writer, v View, width int) error {
	width = max(width, minTextWidth)
	colWidth := (width - 3) / 2

	var blocks []string
	center := func(s string) string {
		return lipgloss.PlaceHorizontal(width, lipgloss.Center, s)
	}

	if v.Empty() {
		blocks = append(blocks, center(EmptyText))
		_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, blocks...))
		return err
	}

	if v.Title != "" {
		blocks = append(blocks, center(titleStyle.Render(v.Title)))
		if v.Subtitle != "" {
			blocks = append(blocks, center(mutedStyle.Render(v.Subtitle)))
		}
		blocks = append(blocks, center(lineStyle.Render("│")))
	}

	for _, it := range v.Items {
		blocks = append(blocks, textItem(it, colWidth))
	}

	if f := v.Footer; f != nil {
		var parts []string
		if f.Icon != "" {
			parts = append(parts, f.Icon)
		}
		if f.Text != "" {
			parts = append(parts, f.Text)
		}
		if f.Battery != nil {
			parts = append(parts, fmt.Sprintf("(battery %d%%)", *f.Battery))
		}
		blocks = append(blocks, center(strings.Join(parts, " ")))
		if f.Updated != "" {
			blocks = append(blocks, center(mutedStyle.Render(f.Updated)))
		}
	}

	_, err := fmt.Fprintln(w, lipgloss.JoinVertical(lipgloss.Left, blocks...))
	return err
}

func textItem(it Item, colWidth int) string {
	accent := colorStyle(it.NodeColor)

	lines := []string{accent.Bold(true).Render(it.DisplayTime), titleStyle.Render(it.Title)}
	if it.Description != "" {
		lines = append(lines, it.Description)
	}
	if it.CategoryLabel != "" {
		lines = append(lines, mutedStyle.Render("["+it.CategoryLabel+"]"))
	}

	align := lipgloss.Left
	if it.Position == timeline.SideLeft {
		align = lipgloss.Right
	}
	content := lipgloss.NewStyle().Width(colWidth).Align(align).Render(strings.Join(lines, "\n"))
	blank := lipgloss.NewStyle().Width(colWidth).Render("")

	// Marker on the first row, line below it, one spacer row after.
	height := lipgloss.Height(content) + 1
	rail := make([]string, height)
	rail[0] = " " + accent.Render("●") + " "
	for i := 1; i < height; i++ {
		rail[i] = " " + lineStyle.Render("│") + " "
	}
	mid := strings.Join(rail, "\n")

	if it.Position == timeline.SideLeft {
		return lipgloss.JoinHorizontal(lipgloss.Top, content, mid, blank)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, blank, mid, content)
}
