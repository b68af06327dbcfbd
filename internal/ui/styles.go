package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette
var (
	PrimaryColor = lipgloss.Color("#03A9F4") // headers, borders, spinner
	SuccessColor = lipgloss.Color("#43BF6D")
	ErrorColor   = lipgloss.Color("#FF5555")
	WarningColor = lipgloss.Color("#FFA500")
	MutedColor   = lipgloss.Color("#626262")
	TextColor    = lipgloss.Color("#FFFFFF")
)

// Output is capped to MaxContentWidth and never narrower than
// MinTerminalWidth, so boxes render the same in CI logs and terminals.
const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100
)

// resultKeyWidth aligns detail values in result boxes; long enough for
// "OpenOCD scripts" and "Toolchain vendor".
const resultKeyWidth = 18

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

var (
	HeaderTitleStyle      = fg(TextColor).Bold(true).PaddingLeft(2)
	HeaderCommandStyle    = fg(MutedColor).PaddingLeft(2)
	HeaderParamKeyStyle   = fg(MutedColor).PaddingLeft(2)
	HeaderParamValueStyle = fg(TextColor)

	StepCompleteStyle = fg(SuccessColor)
	StepRunningStyle  = fg(WarningColor)
	StepPendingStyle  = fg(MutedColor)
	StepNoteStyle     = fg(MutedColor).Italic(true)

	SuccessTitleStyle = fg(SuccessColor).Bold(true)
	ErrorTitleStyle   = fg(ErrorColor).Bold(true)
	WarningTitleStyle = fg(WarningColor).Bold(true)
	ErrorMessageStyle = fg(ErrorColor)

	ResultKeyStyle   = fg(MutedColor).Width(resultKeyWidth)
	ResultValueStyle = fg(TextColor)

	// HintTitleStyle renders "Recommendations:" and "Troubleshooting:"
	HintTitleStyle = fg(MutedColor).Bold(true)
	HintItemStyle  = fg(MutedColor)

	DocumentTitleStyle   = fg(MutedColor).Bold(true)
	DocumentContentStyle = fg(TextColor)
)

// Status markers
const (
	StepMarkerComplete = "✓"
	StepMarkerRunning  = "●"
	StepMarkerPending  = "·"
	StepMarkerSkipped  = "⊘"
	SuccessMarker      = "✓"
	FailureMarker      = "✗"
	WarningMarker      = "⚠"
)

// look pairs a marker with the style it is drawn in.
type look struct {
	marker string
	style  lipgloss.Style
}

func (l look) render(text string) string {
	return l.style.Render(text)
}

var stepLooks = map[StepStatus]look{
	StepPending:  {StepMarkerPending, StepPendingStyle},
	StepRunning:  {StepMarkerRunning, StepRunningStyle},
	StepComplete: {StepMarkerComplete, StepCompleteStyle},
	StepFailed:   {FailureMarker, ErrorTitleStyle},
	StepSkipped:  {StepMarkerSkipped, StepPendingStyle},
}

// GetTerminalWidth returns the stdout width clamped to the supported range.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return min(clampWidth(width), MaxContentWidth)
}

// IsTerminal reports whether stdout is an interactive terminal.
func IsTerminal() bool {
	return term.IsTerminal(int(os.Stdout.Fd()))
}

func clampWidth(width int) int {
	return max(width, MinTerminalWidth)
}

// RenderHorizontalDivider draws width copies of char in the primary color.
func RenderHorizontalDivider(width int, char string) string {
	return fg(PrimaryColor).Render(strings.Repeat(char, width))
}
