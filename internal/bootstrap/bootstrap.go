package bootstrap

import (
	"bufio"
	"context"
	"fmt"
	"io"

	"github.com/dpetkov/comsniff/internal/manifest"
	"github.com/dpetkov/comsniff/internal/model"
)

// Launcher runs the dependency bootstrap sequence described by a manifest.
type Launcher struct {
	man    *manifest.Manifest
	runner CommandRunner

	// out receives user-facing progress and error messages.
	out io.Writer

	// in is read for the post-failure acknowledgment (a single line).
	in io.Reader
}

// NewLauncher creates a Launcher for the given manifest. Messages are
// written to out; in is consumed only when pausing for acknowledgment.
func NewLauncher(man *manifest.Manifest, runner CommandRunner, out io.Writer, in io.Reader) *Launcher {
	return &Launcher{man: man, runner: runner, out: out, in: in}
}

// CheckRuntime probes the runtime and fails fast when it is absent.
// Per the launcher contract, a missing runtime is a user-facing fatal
// error with exit status 1; no dependency probe may run after it.
func (l *Launcher) CheckRuntime(ctx context.Context) error {
	argv := append([]string{l.man.Runtime.Command}, l.man.Runtime.ProbeArgs...)
	if err := l.runner.Run(ctx, l.man.Dir, argv); err != nil {
		return model.WrapCLIError(
			model.ExitGeneralError,
			fmt.Sprintf("%s is not installed or not on PATH", l.man.Runtime.Name),
			err,
		)
	}
	return nil
}

// EnsureDependencies probes each configured library and, for each failed
// probe, makes exactly one install attempt. The install outcome is not
// checked: if it failed, the application run surfaces the problem, which
// is a clearer error than anything inferred here.
func (l *Launcher) EnsureDependencies(ctx context.Context) {
	for _, dep := range l.man.Dependencies {
		if err := l.runner.Run(ctx, l.man.Dir, dep.Probe); err == nil {
			continue
		}

		fmt.Fprintf(l.out, "%s not found, installing...\n", dep.Name)
		if err := l.runner.RunInteractive(ctx, l.man.Dir, dep.Install); err != nil {
			// Single attempt, result unchecked beyond this notice.
			fmt.Fprintf(l.out, "install of %s did not complete cleanly: %v\n", dep.Name, err)
		}
	}
}

// RunApp executes the application with inherited stdio and returns its
// exit code (0 on success).
func (l *Launcher) RunApp(ctx context.Context) (int, error) {
	err := l.runner.RunInteractive(ctx, l.man.AppDir(), l.man.App.Command)
	return ExitStatus(err), err
}

// Launch runs the full bootstrap sequence: runtime check, dependency
// probes/installs, then the application. On a non-zero application exit
// it prints an error, optionally pauses for acknowledgment, and returns
// a CLIError carrying the application's own exit code.
func (l *Launcher) Launch(ctx context.Context, pause bool) error {
	if err := l.CheckRuntime(ctx); err != nil {
		return err
	}

	l.EnsureDependencies(ctx)

	code, err := l.RunApp(ctx)
	if code == 0 {
		return nil
	}

	fmt.Fprintf(l.out, "application exited with an error (status %d)\n", code)
	if pause {
		l.awaitAck()
	}
	return model.WrapCLIError(model.ExitCode(code), "application failed", err)
}

// awaitAck blocks until the user presses Enter, so a double-clicked
// launcher window does not vanish before the error can be read.
func (l *Launcher) awaitAck() {
	fmt.Fprint(l.out, "press Enter to close...")
	reader := bufio.NewReader(l.in)
	_, _ = reader.ReadString('\n')
}
