package buildtool

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/dpetkov/comsniff/internal/manifest"
	"github.com/dpetkov/comsniff/internal/model"
)

// ToolRunner abstracts the packaging tool invocation so the pipeline can
// be tested without a real packager installed.
type ToolRunner interface {
	// Run executes argv in dir with the given environment (nil means the
	// inherited environment) and returns the combined output.
	Run(ctx context.Context, dir string, env []string, argv []string) (string, error)
}

// ExecToolRunner is the production ToolRunner backed by os/exec.
type ExecToolRunner struct{}

// NewExecToolRunner creates an ExecToolRunner.
func NewExecToolRunner() *ExecToolRunner {
	return &ExecToolRunner{}
}

// Run implements ToolRunner. Output is captured rather than streamed:
// packaging tools are chatty and the CLI layer decides what to show.
func (r *ExecToolRunner) Run(ctx context.Context, dir string, env []string, argv []string) (string, error) {
	if len(argv) == 0 {
		return "", fmt.Errorf("empty command")
	}

	// #nosec G204 — argv comes from the manifest, not remote input
	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Dir = dir
	if env != nil {
		cmd.Env = env
	}

	output, err := cmd.CombinedOutput()
	return string(output), err
}

// Result describes a successful packaging run.
type Result struct {
	// ArtifactPath is the expected single-file executable path under dist/.
	ArtifactPath string

	// Cleaned lists the stale artifacts that were removed before the build.
	Cleaned []string

	// Output is the packaging tool's combined output.
	Output string
}

// Pipeline drives one packaging run for a manifest's build section.
type Pipeline struct {
	man    *manifest.Manifest
	runner ToolRunner
}

// NewPipeline creates a Pipeline. The manifest must have a build section;
// callers check that before constructing the pipeline.
func NewPipeline(man *manifest.Manifest, runner ToolRunner) *Pipeline {
	return &Pipeline{man: man, runner: runner}
}

// Clean removes prior build output from dir: the build/ and dist/
// directories and any *.spec files the packaging tool left behind.
// Removal is best-effort — errors are suppressed and a missing artifact
// is a no-op — so Clean is safe to call on a pristine tree. It returns
// the paths it actually removed, for verbose reporting.
func Clean(dir string) []string {
	var removed []string

	for _, sub := range []string{"build", "dist"} {
		path := filepath.Join(dir, sub)
		if _, err := os.Stat(path); err != nil {
			continue
		}
		if err := os.RemoveAll(path); err == nil {
			removed = append(removed, path)
		}
	}

	// Stale spec files sit next to the manifest. Glob errors only occur
	// for malformed patterns, so the return is safely ignored here.
	specs, _ := filepath.Glob(filepath.Join(dir, "*.spec"))
	for _, spec := range specs {
		if err := os.Remove(spec); err == nil {
			removed = append(removed, spec)
		}
	}

	return removed
}

// envBinDir returns the executable directory of the isolated environment,
// or "" when the environment does not exist. The layout follows the
// virtualenv convention: bin/ on POSIX, Scripts\ on Windows.
func envBinDir(dir, envDir string) string {
	if envDir == "" {
		return ""
	}
	if !filepath.IsAbs(envDir) {
		envDir = filepath.Join(dir, envDir)
	}

	sub := "bin"
	if runtime.GOOS == "windows" {
		sub = "Scripts"
	}
	bin := filepath.Join(envDir, sub)
	if info, err := os.Stat(bin); err != nil || !info.IsDir() {
		return ""
	}
	return bin
}

// activatedEnv returns the process environment with the isolated
// environment's bin directory prepended to PATH. A missing environment
// yields nil, which makes the tool run with the inherited environment.
func activatedEnv(dir, envDir string) []string {
	bin := envBinDir(dir, envDir)
	if bin == "" {
		return nil
	}

	env := os.Environ()
	for i, kv := range env {
		if strings.HasPrefix(kv, "PATH=") {
			env[i] = "PATH=" + bin + string(os.PathListSeparator) + kv[len("PATH="):]
			return env
		}
	}
	return append(env, "PATH="+bin)
}

// Run executes the full pipeline: activate, clean, package. It returns a
// Result on success, or a CLIError with ExitBuildFailed (including the
// tool's output) when the packaging tool exits non-zero.
func (p *Pipeline) Run(ctx context.Context) (*Result, error) {
	build := p.man.Build
	if build == nil {
		return nil, model.NewCLIError(model.ExitBuildFailed, "manifest has no build section")
	}

	env := activatedEnv(p.man.Dir, build.EnvDir)
	cleaned := Clean(p.man.Dir)

	argv := make([]string, 0, len(build.Args)+2)
	argv = append(argv, build.Tool)
	argv = append(argv, build.Args...)
	argv = append(argv, build.Entry)

	output, err := p.runner.Run(ctx, p.man.Dir, env, argv)
	if err != nil {
		return nil, model.WrapCLIError(
			model.ExitBuildFailed,
			fmt.Sprintf("%s failed: %s", build.Tool, strings.TrimSpace(output)),
			err,
		)
	}

	return &Result{
		ArtifactPath: ArtifactPath(p.man.Dir, build.Name),
		Cleaned:      cleaned,
		Output:       output,
	}, nil
}

// ArtifactPath returns the expected single-file executable path for a
// build: dist/<name>, with .exe appended on Windows.
func ArtifactPath(dir, name string) string {
	if runtime.GOOS == "windows" {
		name += ".exe"
	}
	return filepath.Join(dir, "dist", name)
}
