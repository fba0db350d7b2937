// Package adb runs adb commands against a selected Android device and
// returns their raw results. A command that exits non-zero is a normal
// Result with OK=false; errors are reserved for failures to invoke adb
// at all (TransportError) and exceeded time bounds (TimeoutError).
package adb

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"strings"
	"time"
)

// DefaultTimeout bounds a single adb command when the caller passes none.
const DefaultTimeout = 30 * time.Second

// Result is the outcome of one executed adb command.
type Result struct {
	OK       bool          `yaml:"ok"                 json:"ok"`
	ExitCode int           `yaml:"exit_code"          json:"exit_code"`
	Stdout   string        `yaml:"stdout,omitempty"   json:"stdout,omitempty"`
	Stderr   string        `yaml:"stderr,omitempty"   json:"stderr,omitempty"`
	Duration time.Duration `yaml:"duration"           json:"duration"`
	Command  string        `yaml:"command,omitempty"  json:"command,omitempty"`
}

// TransportError means adb could not be invoked (binary missing,
// permission problem). Distinct from a command that ran and failed.
type TransportError struct {
	Command string
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("adb invocation failed for %q: %v", e.Command, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// TimeoutError means the command exceeded its time bound and was killed.
type TimeoutError struct {
	Command string
	Timeout time.Duration
}

func (e *TimeoutError) Error() string {
	return fmt.Sprintf("adb command %q timed out after %s", e.Command, e.Timeout)
}

// Runner executes adb command lines. The exec-backed implementation is
// ExecRunner; tests substitute fakes.
type Runner interface {
	// Run executes "adb args..." and blocks until it exits or the
	// timeout elapses. Non-zero exit is reported in the Result, not
	// as an error.
	Run(ctx context.Context, timeout time.Duration, args ...string) (Result, error)

	// Start launches a long-lived "adb args..." process (logcat,
	// screenrecord) and returns a handle to it.
	Start(args ...string) (Process, error)
}

// Process is a handle to a long-lived adb child process.
type Process interface {
	// Stdout is the process's standard output stream.
	Stdout() io.Reader
	// PID returns the OS process id.
	PID() int
	// Stop requests cooperative termination (SIGTERM).
	Stop() error
	// Kill forcibly terminates the process.
	Kill() error
	// Wait blocks until the process exits. A non-zero exit after a
	// Stop/Kill is expected and reported as nil by callers that asked
	// for termination.
	Wait() error
}

// ExecRunner runs adb via os/exec.
type ExecRunner struct {
	// Path to the adb binary. Empty means "adb" from PATH.
	Path string
}

func (r *ExecRunner) binary() string {
	if r.Path != "" {
		return r.Path
	}
	return "adb"
}

// Run implements Runner.
func (r *ExecRunner) Run(ctx context.Context, timeout time.Duration, args ...string) (Result, error) {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	display := r.binary() + " " + strings.Join(args, " ")

	cmd := exec.CommandContext(ctx, r.binary(), args...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	// Try SIGTERM first on timeout, escalate to SIGKILL shortly after.
	cmd.Cancel = func() error { return cmd.Process.Signal(os.Interrupt) }
	cmd.WaitDelay = 2 * time.Second

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		Duration: time.Since(start),
		Command:  display,
	}

	if err == nil {
		res.OK = true
		return res, nil
	}
	if ctx.Err() == context.DeadlineExceeded {
		return res, &TimeoutError{Command: display, Timeout: timeout}
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, nil
	}
	return Result{Command: display}, &TransportError{Command: display, Err: err}
}

// Start implements Runner.
func (r *ExecRunner) Start(args ...string) (Process, error) {
	display := r.binary() + " " + strings.Join(args, " ")

	cmd := exec.Command(r.binary(), args...)
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, &TransportError{Command: display, Err: err}
	}
	cmd.Stderr = io.Discard
	if err := cmd.Start(); err != nil {
		return nil, &TransportError{Command: display, Err: err}
	}
	return &execProcess{cmd: cmd, stdout: stdout}, nil
}

type execProcess struct {
	cmd    *exec.Cmd
	stdout io.ReadCloser
}

func (p *execProcess) Stdout() io.Reader { return p.stdout }

func (p *execProcess) PID() int { return p.cmd.Process.Pid }

func (p *execProcess) Stop() error {
	err := p.cmd.Process.Signal(os.Interrupt)
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *execProcess) Kill() error {
	err := p.cmd.Process.Kill()
	if errors.Is(err, os.ErrProcessDone) {
		return nil
	}
	return err
}

func (p *execProcess) Wait() error { return p.cmd.Wait() }
