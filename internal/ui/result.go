package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ResultType indicates success or failure
type ResultType int

const (
	ResultSuccess ResultType = iota
	ResultFailure
	ResultWarning
)

// Detail is one key/value line of a result box.
type Detail struct {
	Key   string
	Value string
}

// Result represents a result box (success, failure, or warning)
type Result struct {
	Type    ResultType
	Title   string   // e.g., "Toolchains detected"
	Details []Detail // Key-value details, in order
	Error   error    // Error (for failure results)
	// Hints are recommendations or troubleshooting tips
	Hints     []string
	HintTitle string
	Width     int
}

// NewSuccessResult creates a success result box
func NewSuccessResult(title string, details ...Detail) *Result {
	return &Result{Type: ResultSuccess, Title: title, Details: details, HintTitle: "Recommendations:", Width: GetTerminalWidth()}
}

// NewFailureResult creates a failure result box
func NewFailureResult(title string, err error, troubleshooting []string) *Result {
	return &Result{Type: ResultFailure, Title: title, Error: err, Hints: troubleshooting, HintTitle: "Troubleshooting:", Width: GetTerminalWidth()}
}

// NewWarningResult creates a warning result box
func NewWarningResult(title string, details ...Detail) *Result {
	return &Result{Type: ResultWarning, Title: title, Details: details, HintTitle: "Recommendations:", Width: GetTerminalWidth()}
}

// SetWidth sets the terminal width for responsive rendering
func (r *Result) SetWidth(width int) *Result {
	r.Width = width
	return r
}

// AddDetail appends a detail line
func (r *Result) AddDetail(key, value string) *Result {
	r.Details = append(r.Details, Detail{Key: key, Value: value})
	return r
}

// AddHints appends recommendation or troubleshooting lines
func (r *Result) AddHints(hints ...string) *Result {
	r.Hints = append(r.Hints, hints...)
	return r
}

// resultKinds maps a result type to its label, marker and border color.
var resultKinds = map[ResultType]struct {
	label string
	look  look
	color lipgloss.Color
}{
	ResultSuccess: {"SUCCESS", look{SuccessMarker, SuccessTitleStyle}, SuccessColor},
	ResultFailure: {"FAILED", look{FailureMarker, ErrorTitleStyle}, ErrorColor},
	ResultWarning: {"WARNING", look{WarningMarker, WarningTitleStyle}, WarningColor},
}

// Render returns the styled result box as a string
func (r *Result) Render() string {
	width := clampWidth(r.Width)
	kind, ok := resultKinds[r.Type]
	if !ok {
		kind = resultKinds[ResultSuccess]
	}

	lines := []string{"", kind.look.render(fmt.Sprintf("   %s  %s  ─  %s", kind.look.marker, kind.label, r.Title)), ""}
	if r.Error != nil {
		lines = append(lines, ErrorMessageStyle.Render("   Error: "+r.Error.Error()), "")
	}
	for _, d := range r.Details {
		lines = append(lines, ResultKeyStyle.Render("   "+d.Key+":")+" "+ResultValueStyle.Render(d.Value))
	}
	if len(r.Details) > 0 {
		lines = append(lines, "")
	}
	if len(r.Hints) > 0 {
		lines = append(lines, r.renderHintBox(width), "")
	}

	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(kind.color).
		Width(width - 2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))
}

// renderHintBox renders the inner recommendations box
func (r *Result) renderHintBox(width int) string {
	lines := []string{HintTitleStyle.Render(r.HintTitle), ""}
	for _, hint := range r.Hints {
		lines = append(lines, HintItemStyle.Render("  • "+hint))
	}

	innerWidth := max(width-12, 40) // indented within the outer box

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(innerWidth).
		Padding(0, 1).
		MarginLeft(3).
		Render(strings.Join(lines, "\n"))
}

// String implements fmt.Stringer
func (r *Result) String() string {
	return r.Render()
}
