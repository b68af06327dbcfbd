package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"
)

// StepRunnerConfig describes a multi-step command.
type StepRunnerConfig struct {
	Title     string  // e.g., "Workspace Configuration"
	Command   string  // e.g., "stm32cfg configure"
	Params    []Param // Shown in the header
	StepNames []string
	// Troubleshooting is shown when the operation fails
	Troubleshooting []string
	Output          io.Writer // default: os.Stdout
}

// StepRunner orchestrates the header → steps → result flow of a command.
type StepRunner struct {
	config   StepRunnerConfig
	progress *Progress
	output   io.Writer
	width    int
	now      func() time.Time
}

// NewStepRunner creates a runner for a multi-step command
func NewStepRunner(config StepRunnerConfig) *StepRunner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := GetTerminalWidth()
	return &StepRunner{
		config:   config,
		progress: NewProgress(config.StepNames...).SetWidth(width),
		output:   config.Output,
		width:    width,
		now:      time.Now,
	}
}

// SetWidth overrides the detected terminal width.
func (r *StepRunner) SetWidth(width int) *StepRunner {
	r.width = width
	r.progress.SetWidth(width)
	return r
}

// Operation performs the command's work, reporting through onStep. It
// returns the result to display on success.
type Operation func(ctx context.Context, onStep StepCallback) (*Result, error)

// Run prints the header, runs op and prints its result or the failure box.
func (r *StepRunner) Run(ctx context.Context, op Operation) error {
	start := r.now()

	header := NewHeader(r.config.Title, r.config.Command, r.config.Params...).SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, header.Render())
	_, _ = fmt.Fprintln(r.output)

	result, err := op(ctx, r.onStep)
	duration := r.now().Sub(start).Round(time.Millisecond)

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		failure := NewFailureResult(r.config.Title+" failed", err, r.config.Troubleshooting).SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, failure.Render())
		return err
	}

	if result == nil {
		result = NewSuccessResult(r.config.Title + " complete")
	}
	result.AddDetail("Duration", duration.String()).SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
	return nil
}

func (r *StepRunner) onStep(stepNumber int, status StepStatus, message string) {
	r.progress.UpdateStep(stepNumber, status, message)
	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}
	line := r.progress.renderStepLine(r.progress.Steps[stepNumber-1])
	if status == StepRunning {
		// Overwritten when the step finishes
		_, _ = fmt.Fprint(r.output, line+"\r")
		return
	}
	_, _ = fmt.Fprintln(r.output, line)
}
