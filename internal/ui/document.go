package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// Document is a box showing preformatted text such as a generated
// launch configuration.
type Document struct {
	Title string
	Lines []string
	Width int
}

// NewDocument creates a document box for content
func NewDocument(title, content string) *Document {
	return &Document{
		Title: title,
		Lines: strings.Split(strings.TrimRight(content, "\n"), "\n"),
		Width: GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (d *Document) SetWidth(width int) *Document {
	d.Width = width
	return d
}

// Render returns the styled document box
func (d *Document) Render() string {
	width := clampWidth(d.Width)

	inner := lipgloss.JoinVertical(lipgloss.Left,
		DocumentTitleStyle.Render(d.Title),
		"",
		DocumentContentStyle.Render(strings.Join(d.Lines, "\n")),
	)

	boxWidth := width - 4
	if boxWidth < 40 {
		boxWidth = 40
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(boxWidth).
		Padding(0, 1).
		MarginLeft(2).
		Render(inner)
}

// String implements fmt.Stringer
func (d *Document) String() string {
	return d.Render()
}
