package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus is the state of one step of a multi-step command.
type StepStatus int

const (
	StepPending StepStatus = iota
	StepRunning
	StepComplete
	StepFailed
	StepSkipped
)

// finished reports whether the step counts toward completion.
func (s StepStatus) finished() bool {
	return s == StepComplete || s == StepSkipped
}

// Step is one line of a Progress.
type Step struct {
	Number  int // 1-based
	Name    string
	Status  StepStatus
	Message string // e.g. "STM32F407VG", "2 of 2 tools found"
}

// Progress tracks a fixed list of steps and renders a bar plus step lines.
type Progress struct {
	Steps   []Step
	Current int     // step most recently started, 1-based
	Percent float64 // finished steps / total, 0.0 - 1.0
	Width   int
	bar     progress.Model
	nameCol int
}

// NewProgress creates a tracker with every step pending.
func NewProgress(names ...string) *Progress {
	p := &Progress{Steps: make([]Step, len(names))}
	for i, name := range names {
		p.Steps[i] = Step{Number: i + 1, Name: name}
		p.nameCol = max(p.nameCol, lipgloss.Width(name))
	}
	return p.SetWidth(GetTerminalWidth())
}

// SetWidth resizes the bar to fit width, leaving room for the counters.
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	p.bar = progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(min(max(width-20, 20), 50)),
	)
	return p
}

// UpdateStep records a status change. Out-of-range step numbers are ignored.
func (p *Progress) UpdateStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	step := &p.Steps[stepNumber-1]
	step.Status = status
	step.Message = message

	if status == StepRunning {
		p.Current = stepNumber
		return
	}
	done := 0
	for _, s := range p.Steps {
		if s.Status.finished() {
			done++
		}
	}
	p.Percent = float64(done) / float64(len(p.Steps))
}

// Render returns the bar followed by every step line.
func (p *Progress) Render() string {
	var b strings.Builder
	b.WriteString(p.renderProgressBar())
	b.WriteString("\n")
	for _, step := range p.Steps {
		b.WriteString("\n")
		b.WriteString(p.renderStepLine(step))
	}
	return b.String()
}

func (p *Progress) renderProgressBar() string {
	return fmt.Sprintf("  %s  %3.0f%%  [%d/%d]", p.bar.ViewAs(p.Percent), p.Percent*100, p.Current, len(p.Steps))
}

// renderStepLine renders "[n/N] name  marker  (message)" with markers
// aligned past the longest step name.
func (p *Progress) renderStepLine(step Step) string {
	l, ok := stepLooks[step.Status]
	if !ok {
		l = stepLooks[StepPending]
	}

	pad := max(p.nameCol-lipgloss.Width(step.Name), 0) + 3
	line := fmt.Sprintf("  [%d/%d] %s%s%s", step.Number, len(p.Steps),
		l.render(step.Name), strings.Repeat(" ", pad), l.render(l.marker))
	if step.Message != "" {
		line += "  " + StepNoteStyle.Render("("+step.Message+")")
	}
	return line
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}

// StepCallback reports progress for the step with the given number.
type StepCallback func(stepNumber int, status StepStatus, message string)
