package managers_test

import (
	"context"
	"strings"
	"sync"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/runner"
)

// fakeRunner serves canned subprocess output keyed by the full command
// line, and records every invocation.
type fakeRunner struct {
	mu        sync.Mutex
	responses map[string]fakeResponse
	calls     []string
	missing   map[string]bool
}

type fakeResponse struct {
	stdout   string
	stderr   string
	exitCode int
}

func newFakeRunner() *fakeRunner {
	return &fakeRunner{
		responses: make(map[string]fakeResponse),
		missing:   make(map[string]bool),
	}
}

func (f *fakeRunner) stub(commandLine, stdout string) {
	f.responses[commandLine] = fakeResponse{stdout: stdout}
}

func (f *fakeRunner) stubFailure(commandLine, stderr string, exitCode int) {
	f.responses[commandLine] = fakeResponse{stderr: stderr, exitCode: exitCode}
}

func (f *fakeRunner) Run(ctx context.Context, program string, args ...string) (runner.Result, error) {
	commandLine := strings.Join(append([]string{program}, args...), " ")

	f.mu.Lock()
	f.calls = append(f.calls, commandLine)
	resp, ok := f.responses[commandLine]
	f.mu.Unlock()

	if !ok {
		// Unstubbed commands succeed silently so install calls in
		// import tests don't need individual stubs.
		return runner.Result{}, nil
	}

	result := runner.Result{
		Stdout:   []byte(resp.stdout),
		Stderr:   []byte(resp.stderr),
		ExitCode: resp.exitCode,
	}
	if resp.exitCode != 0 {
		return result, errors.Newf(errors.ErrProcessFailed, "%s exited with code %d", program, resp.exitCode).
			WithDetail("stderr", resp.stderr)
	}
	return result, nil
}

func (f *fakeRunner) Available(program string) bool {
	return !f.missing[program]
}

func (f *fakeRunner) calledWith(commandLine string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, call := range f.calls {
		if call == commandLine {
			return true
		}
	}
	return false
}
