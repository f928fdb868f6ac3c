// Process execution behind the client: the Runner interface, the real
// exec-backed implementation, and the recording fake used by tests and
// the debug command's dry run.

package tmux

import (
	"bytes"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"sync"

	"github.com/tmuxup/tmuxup/internal/errors"
)

// Runner executes multiplexer commands. Production code uses ExecRunner;
// tests and the debug command use RecordingRunner.
type Runner interface {
	// Run executes name with args and captures its output. A non-zero
	// exit yields a *errors.TmuxError carrying the process standard
	// error verbatim.
	Run(name string, args ...string) (string, error)

	// RunInteractive executes name with args wired to the caller's
	// terminal and blocks until the process exits. Used only for attach.
	RunInteractive(name string, args ...string) error
}

// ExecRunner spawns real processes. No retries and no timeouts: the only
// long-lived call is interactive attach, which blocks until the user
// detaches.
type ExecRunner struct{}

// Run implements Runner.
func (ExecRunner) Run(name string, args ...string) (string, error) {
	cmd := exec.Command(name, args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		argv := append([]string{name}, args...)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return "", errors.NewTmuxError(stderr.String(), nil).
				WithArgs(argv).
				WithStderr(stderr.String())
		}
		return "", errors.NewTmuxError(fmt.Sprintf("Failed to execute %s", name), err).
			WithArgs(argv)
	}
	return stdout.String(), nil
}

// RunInteractive implements Runner. Standard error is inherited rather
// than captured, so failures report the exit status only.
func (ExecRunner) RunInteractive(name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	if err := cmd.Run(); err != nil {
		argv := append([]string{name}, args...)
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) {
			return errors.NewTmuxError(fmt.Sprintf("exited with status %d", exitErr.ExitCode()), nil).
				WithArgs(argv)
		}
		return errors.NewTmuxError(fmt.Sprintf("Failed to execute %s", name), err).
			WithArgs(argv)
	}
	return nil
}

// RecordedCall is one invocation captured by a RecordingRunner.
type RecordedCall struct {
	Name        string
	Args        []string
	Interactive bool
}

// String renders the call as the shell command line it would have run.
func (c RecordedCall) String() string {
	return strings.Join(append([]string{c.Name}, c.Args...), " ")
}

// recordingRule pairs an argument matcher with a scripted response.
type recordingRule struct {
	prefix []string
	stdout string
	err    error
}

// RecordingRunner records every invocation without spawning processes.
// Responses are scripted per argument prefix; unscripted calls succeed
// with empty output. It backs unit tests and the dry-run plan shown by
// the debug command.
type RecordingRunner struct {
	mu    sync.Mutex
	calls []RecordedCall
	rules []recordingRule
}

// NewRecordingRunner returns an empty RecordingRunner.
func NewRecordingRunner() *RecordingRunner {
	return &RecordingRunner{}
}

// Stub scripts a response for calls whose arguments start with prefix.
// Rules are checked in registration order; the first match wins.
func (r *RecordingRunner) Stub(prefix []string, stdout string, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.rules = append(r.rules, recordingRule{prefix: prefix, stdout: stdout, err: err})
}

// Run implements Runner.
func (r *RecordingRunner) Run(name string, args ...string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, RecordedCall{Name: name, Args: args})

	if rule := r.match(args); rule != nil {
		return rule.stdout, rule.err
	}
	return "", nil
}

// RunInteractive implements Runner.
func (r *RecordingRunner) RunInteractive(name string, args ...string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, RecordedCall{Name: name, Args: args, Interactive: true})

	if rule := r.match(args); rule != nil {
		return rule.err
	}
	return nil
}

func (r *RecordingRunner) match(args []string) *recordingRule {
	for i := range r.rules {
		if hasPrefix(args, r.rules[i].prefix) {
			return &r.rules[i]
		}
	}
	return nil
}

func hasPrefix(args, prefix []string) bool {
	if len(args) < len(prefix) {
		return false
	}
	for i, p := range prefix {
		if args[i] != p {
			return false
		}
	}
	return true
}

// Calls returns a copy of every recorded invocation.
func (r *RecordingRunner) Calls() []RecordedCall {
	r.mu.Lock()
	defer r.mu.Unlock()
	calls := make([]RecordedCall, len(r.calls))
	copy(calls, r.calls)
	return calls
}

// CommandLines renders the recorded invocations as shell command lines,
// in execution order.
func (r *RecordingRunner) CommandLines() []string {
	calls := r.Calls()
	lines := make([]string, len(calls))
	for i, c := range calls {
		lines[i] = c.String()
	}
	return lines
}

// Reset clears the recorded calls, keeping the scripted rules.
func (r *RecordingRunner) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = nil
}

var (
	_ Runner = ExecRunner{}
	_ Runner = (*RecordingRunner)(nil)
)
