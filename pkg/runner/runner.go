// Package runner launches external programs and captures their output.
// It is the single suspension point for all package manager interaction;
// adapters never shell out directly.
package runner

import (
	"bytes"
	"context"
	"os/exec"
	"time"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/logging"
)

// DefaultTimeout bounds a single subprocess invocation
const DefaultTimeout = 60 * time.Second

// Result carries the captured output of one invocation
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner executes external programs. Implementations must be safe for
// concurrent use; the snapshot builder fans out across adapters.
type Runner interface {
	// Run executes program with args and captures stdout/stderr.
	// A non-zero exit returns a PROCESS_FAILED error alongside the result.
	Run(ctx context.Context, program string, args ...string) (Result, error)

	// Available reports whether program is on PATH. Never fails.
	Available(program string) bool
}

// OSRunner runs real subprocesses with a per-invocation timeout
type OSRunner struct {
	Timeout time.Duration
}

// New returns an OSRunner with the default timeout
func New() *OSRunner {
	return &OSRunner{Timeout: DefaultTimeout}
}

// NewWithTimeout returns an OSRunner with a custom per-invocation timeout
func NewWithTimeout(timeout time.Duration) *OSRunner {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &OSRunner{Timeout: timeout}
}

// Run executes the program, enforcing the configured timeout
func (r *OSRunner) Run(ctx context.Context, program string, args ...string) (Result, error) {
	logger := logging.GetLogger("runner")

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	runCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	logging.LogCommand(program, args)
	start := time.Now()

	cmd := exec.CommandContext(runCtx, program, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	result := Result{
		Stdout:   stdout.Bytes(),
		Stderr:   stderr.Bytes(),
		ExitCode: -1,
	}
	if cmd.ProcessState != nil {
		result.ExitCode = cmd.ProcessState.ExitCode()
	}

	logger.Debug().
		Str("program", program).
		Int("exit_code", result.ExitCode).
		Dur("duration", time.Since(start)).
		Msg("Subprocess finished")

	if runCtx.Err() == context.DeadlineExceeded {
		return result, errors.Newf(errors.ErrProcessFailed, "%s timed out after %s", program, timeout).
			WithDetail("program", program).
			WithDetail("argv", args).
			WithDetail("timeout", timeout.String())
	}

	if err != nil {
		if _, ok := err.(*exec.ExitError); ok {
			return result, errors.Newf(errors.ErrProcessFailed, "%s exited with code %d", program, result.ExitCode).
				WithDetail("program", program).
				WithDetail("argv", args).
				WithDetail("exit_code", result.ExitCode).
				WithDetail("stderr", string(result.Stderr))
		}
		return result, errors.Wrapf(err, errors.ErrProgramMissing, "failed to launch %s", program).
			WithDetail("program", program)
	}

	return result, nil
}

// Available reports whether the program resolves on PATH
func (r *OSRunner) Available(program string) bool {
	_, err := exec.LookPath(program)
	return err == nil
}
