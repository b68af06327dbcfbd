package toolchain

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"time"

	"go.uber.org/zap"
)

// DefaultCommandTimeout bounds every subprocess started during detection.
const DefaultCommandTimeout = 5 * time.Second

// CommandOutput is the captured output of a finished subprocess.
type CommandOutput struct {
	Stdout   string
	Stderr   string
	ExitCode int
	Duration time.Duration
}

// Combined returns stdout followed by stderr. Some tools (OpenOCD) print their
// version banner on stderr.
func (o CommandOutput) Combined() string {
	if o.Stderr == "" {
		return o.Stdout
	}
	if o.Stdout == "" {
		return o.Stderr
	}
	return o.Stdout + "\n" + o.Stderr
}

// Runner executes external commands.
type Runner interface {
	// Run executes name with args. The returned output is populated even when
	// the error is non-nil so callers can inspect partial output.
	Run(ctx context.Context, name string, args ...string) (CommandOutput, error)
}

// ExecRunner runs commands via os/exec with a per-call timeout. Cancelling the
// caller's context kills the child process.
type ExecRunner struct {
	timeout time.Duration
	logger  *zap.Logger
}

// NewExecRunner creates a runner. A non-positive timeout selects
// DefaultCommandTimeout.
func NewExecRunner(timeout time.Duration, logger *zap.Logger) *ExecRunner {
	if timeout <= 0 {
		timeout = DefaultCommandTimeout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExecRunner{
		timeout: timeout,
		logger:  logger,
	}
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, name string, args ...string) (CommandOutput, error) {
	start := time.Now()

	timeoutCtx, cancel := context.WithTimeout(ctx, r.timeout)
	defer cancel()

	cmd := exec.CommandContext(timeoutCtx, name, args...)

	var stdoutBuf, stderrBuf bytes.Buffer
	cmd.Stdout = &stdoutBuf
	cmd.Stderr = &stderrBuf

	err := cmd.Run()

	out := CommandOutput{
		Stdout:   stdoutBuf.String(),
		Stderr:   stderrBuf.String(),
		Duration: time.Since(start),
	}

	r.logger.Debug("command finished",
		zap.String("command", name),
		zap.Strings("args", args),
		zap.Duration("duration", out.Duration),
		zap.String("stdout", out.Stdout),
		zap.String("stderr", out.Stderr),
		zap.Error(err),
	)

	if errors.Is(timeoutCtx.Err(), context.DeadlineExceeded) {
		out.ExitCode = -1
		return out, &TimeoutError{
			Command: name,
			Timeout: r.timeout.String(),
		}
	}

	if err != nil {
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			out.ExitCode = exitErr.ExitCode()
			return out, &CommandError{
				Command:  name,
				Args:     args,
				ExitCode: out.ExitCode,
				Stderr:   out.Stderr,
			}
		}
		// Command failed to start or was cancelled
		out.ExitCode = -1
		return out, &CommandError{
			Command:  name,
			Args:     args,
			ExitCode: -1,
			Stderr:   out.Stderr,
			Err:      err,
		}
	}

	return out, nil
}
