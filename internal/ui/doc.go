// Package ui renders stm32cfg terminal output.
//
// Components follow a "run once and exit" pattern: they render polished
// output but never take over the terminal.
//
//   - Header: command banner showing the operation and its parameters
//   - Progress / StepRunner: step list for multi-step commands
//   - Result: success, warning and failure boxes with recommendations
//   - Document: preformatted content such as generated launch.json entries
//   - Tables: detection results, device templates, settings
//   - RunWithSpinner: animated label while toolchains are detected
//
// Example:
//
//	runner := ui.NewStepRunner(ui.StepRunnerConfig{
//	    Title:     "Workspace Configuration",
//	    Command:   "stm32cfg configure",
//	    StepNames: []string{"Scan workspace", "Detect toolchains", "Write launch.json"},
//	})
//	err := runner.Run(ctx, func(ctx context.Context, onStep ui.StepCallback) (*ui.Result, error) {
//	    onStep(1, ui.StepRunning, "")
//	    // ...
//	    onStep(1, ui.StepComplete, "STM32F407VG")
//	    return ui.NewSuccessResult("Configured"), nil
//	})
//
// Logging is controlled via STM32CFG_LOG_LEVEL. When unset, zap logging is
// silent so that only this package's output reaches the terminal.
package ui
