package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
)

// CommandRunner abstracts child-process execution so the launcher logic
// can be tested without spawning real processes.
type CommandRunner interface {
	// Run executes argv in dir with output captured. It is used for
	// probes, where the output is irrelevant and only the exit status
	// matters. On non-zero exit the returned error includes trailing
	// stderr output for diagnostics.
	Run(ctx context.Context, dir string, argv []string) error

	// RunInteractive executes argv in dir with stdin/stdout/stderr
	// inherited from this process. It is used for installs (the user
	// should see the package manager's progress) and for the
	// application itself.
	RunInteractive(ctx context.Context, dir string, argv []string) error
}

// ExecRunner is the production CommandRunner backed by os/exec.
type ExecRunner struct{}

// NewExecRunner creates an ExecRunner.
func NewExecRunner() *ExecRunner {
	return &ExecRunner{}
}

// Run implements CommandRunner. Stdout is discarded; stderr is captured
// and folded into the error on failure.
func (r *ExecRunner) Run(ctx context.Context, dir string, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}

	// #nosec G204 — argv comes from the manifest, not remote input
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir

	var stderr strings.Builder
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		if msg != "" {
			return fmt.Errorf("%s: %s: %w", argv[0], msg, err)
		}
		return fmt.Errorf("%s: %w", argv[0], err)
	}
	return nil
}

// RunInteractive implements CommandRunner with inherited stdio.
func (r *ExecRunner) RunInteractive(ctx context.Context, dir string, argv []string) error {
	if len(argv) == 0 {
		return fmt.Errorf("empty command")
	}

	// #nosec G204 — argv comes from the manifest, not remote input
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	cmd.Stdin = os.Stdin
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr

	return cmd.Run()
}

// ExitStatus extracts the child process exit code from a runner error.
// Errors that are not exec exit errors (e.g. command not found) map to 1,
// and nil maps to 0.
func ExitStatus(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return exitErr.ExitCode()
	}
	return 1
}
