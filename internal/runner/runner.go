// Package runner executes the external tools the release engine delegates to
// (gh, xbps-uhelper) and normalizes their exit status.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
)

// ErrToolUnavailable is returned when the requested binary is not installed
// or cannot be started.
var ErrToolUnavailable = errors.New("external tool unavailable")

// Result holds the captured output of a finished command.
type Result struct {
	Stdout   []byte
	Stderr   []byte
	ExitCode int
}

// Runner abstracts command execution so callers can be tested without the
// real tools on PATH.
type Runner interface {
	Run(ctx context.Context, name string, args ...string) (Result, error)
}

// ExecRunner executes commands on the local host.
type ExecRunner struct {
	// Dir is the working directory. Empty means the current directory.
	Dir string
}

// Run executes name with args. A non-zero exit returns the populated Result
// together with a non-nil error; a missing binary returns an error wrapping
// ErrToolUnavailable with exit code 127.
func (r ExecRunner) Run(ctx context.Context, name string, args ...string) (Result, error) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Dir = r.Dir
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	res := Result{Stdout: stdout.Bytes(), Stderr: stderr.Bytes()}
	if err == nil {
		return res, nil
	}

	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		res.ExitCode = exitErr.ExitCode()
		return res, fmt.Errorf("%s exited with status %d: %w", name, res.ExitCode, err)
	}

	var execErr *exec.Error
	if errors.As(err, &execErr) {
		res.ExitCode = 127
		return res, fmt.Errorf("%s: %w: %v", name, ErrToolUnavailable, execErr.Err)
	}

	res.ExitCode = -1
	return res, fmt.Errorf("running %s: %w", name, err)
}

// Available reports whether name resolves to an executable on PATH.
func Available(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
