package ui

import (
	"context"
	"errors"
	"os"

	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// spinnerModel animates a label until the work reports completion.
type spinnerModel struct {
	label   string
	spinner spinner.Model
	cancel  context.CancelFunc
	err     error
	done    bool
}

type workDoneMsg struct{ err error }

func (m spinnerModel) Init() tea.Cmd {
	return m.spinner.Tick
}

func (m spinnerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case workDoneMsg:
		m.done = true
		m.err = msg.err
		return m, tea.Quit
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			m.cancel()
		}
		return m, nil
	default:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}
}

func (m spinnerModel) View() string {
	if m.done {
		return ""
	}
	return "  " + m.spinner.View() + " " + StepRunningStyle.Render(m.label) + "\n"
}

// RunWithSpinner runs fn while showing an animated label. Without a
// terminal fn runs directly with no output. Ctrl+C cancels fn's context.
func RunWithSpinner(ctx context.Context, label string, fn func(context.Context) error) error {
	if !IsTerminal() {
		return fn(ctx)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	model := spinnerModel{
		label: label,
		spinner: spinner.New(
			spinner.WithSpinner(spinner.Dot),
			spinner.WithStyle(lipgloss.NewStyle().Foreground(PrimaryColor)),
		),
		cancel: cancel,
	}
	p := tea.NewProgram(model, tea.WithOutput(os.Stdout))

	go func() {
		p.Send(workDoneMsg{err: fn(ctx)})
	}()

	final, err := p.Run()
	if err != nil && !errors.Is(err, tea.ErrInterrupted) {
		return err
	}
	if m, ok := final.(spinnerModel); ok && m.done {
		return m.err
	}
	// Interrupted before the work finished
	cancel()
	return ctx.Err()
}
