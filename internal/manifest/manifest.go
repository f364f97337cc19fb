package manifest

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/tidwall/jsonc"

	"github.com/dpetkov/comsniff/internal/model"
)

// candidateNames lists the manifest filenames probed by Find, in order
// of preference.
var candidateNames = []string{"comsniff.json", "comsniff.jsonc"}

// RuntimeSpec describes the language runtime the launcher verifies before
// anything else. The probe is "<command> <probeArgs...>" and succeeds when
// the process exits 0.
type RuntimeSpec struct {
	// Name is the user-facing runtime name used in error messages
	// (e.g. "Python 3").
	Name string `json:"name"`

	// Command is the runtime executable (e.g. "python3").
	Command string `json:"command"`

	// ProbeArgs are the arguments for the presence probe.
	// Defaults to ["--version"].
	ProbeArgs []string `json:"probeArgs,omitempty"`
}

// DependencySpec describes one library the launcher ensures is present.
type DependencySpec struct {
	// Name is the library name, used in messages and in the default
	// probe/install invocations.
	Name string `json:"name"`

	// Probe is the full probe invocation (argv). When empty it defaults
	// to `<runtime> -c "import <name>"`, the trivial importability check.
	Probe []string `json:"probe,omitempty"`

	// Install is the full install invocation (argv). When empty it
	// defaults to `<runtime> -m pip install <name>`. Exactly one attempt
	// is made and its outcome is not verified.
	Install []string `json:"install,omitempty"`
}

// AppSpec describes the application the launcher runs once dependencies
// are in place.
type AppSpec struct {
	// Command is the application invocation (argv).
	Command []string `json:"command"`

	// Dir is the working directory for the application, relative to the
	// manifest location. Empty means the manifest directory itself.
	Dir string `json:"dir,omitempty"`
}

// BuildSpec describes the packaging configuration for `comsniff build`.
type BuildSpec struct {
	// EnvDir is the isolated environment directory (relative to the
	// manifest), whose bin/ (Scripts\ on Windows) is prepended to PATH
	// for the packaging tool. Activation failure is not checked.
	EnvDir string `json:"envDir,omitempty"`

	// Tool is the packaging tool executable.
	Tool string `json:"tool"`

	// Args are the packaging flags. Defaults to a single-file, windowed
	// build: ["--onefile", "--windowed"].
	Args []string `json:"args,omitempty"`

	// Entry is the application entry file handed to the packaging tool.
	Entry string `json:"entry"`

	// Name is the artifact base name. Defaults to the entry filename
	// without its extension.
	Name string `json:"name,omitempty"`
}

// Manifest is the parsed comsniff.json.
type Manifest struct {
	Runtime      RuntimeSpec      `json:"runtime"`
	Dependencies []DependencySpec `json:"dependencies,omitempty"`
	App          AppSpec          `json:"app"`
	Build        *BuildSpec       `json:"build,omitempty"`

	// Dir is the directory containing the manifest file. It is derived
	// at load time, not serialized, and anchors all relative paths.
	Dir string `json:"-"`
}

// Find locates the manifest file starting from dir. It probes the
// candidate filenames in dir itself; there is no upward directory walk.
// The launcher is expected to run next to its manifest.
//
// Returns a CLIError with ExitManifestError when no manifest is found.
func Find(dir string) (string, error) {
	for _, name := range candidateNames {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", model.NewCLIError(
		model.ExitManifestError,
		fmt.Sprintf("no manifest found in %s (looked for %s)", dir, strings.Join(candidateNames, ", ")),
	)
}

// Load reads a manifest file, strips JSONC comments, parses it, applies
// defaults, and validates it.
//
// Returns a CLIError with ExitManifestError if the file does not exist
// or cannot be parsed.
func Load(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitManifestError,
				fmt.Sprintf("manifest not found: %s", path),
				err,
			)
		}
		return nil, model.WrapCLIError(model.ExitManifestError, "failed to read manifest", err)
	}

	// Strip // and /* */ comments and trailing commas before handing the
	// bytes to encoding/json.
	clean := jsonc.ToJSON(data)

	var m Manifest
	if err := json.Unmarshal(clean, &m); err != nil {
		return nil, model.WrapCLIError(
			model.ExitManifestError,
			fmt.Sprintf("failed to parse manifest at %s", path),
			err,
		)
	}

	abs, err := filepath.Abs(filepath.Dir(path))
	if err != nil {
		return nil, model.WrapCLIError(model.ExitManifestError, "failed to resolve manifest directory", err)
	}
	m.Dir = abs

	m.applyDefaults()
	if err := m.Validate(); err != nil {
		return nil, model.WrapCLIError(model.ExitManifestError, "invalid manifest", err)
	}
	return &m, nil
}

// applyDefaults fills in the conventional probe/install/build invocations
// so a minimal manifest only has to name its runtime, libraries, and app.
func (m *Manifest) applyDefaults() {
	if len(m.Runtime.ProbeArgs) == 0 {
		m.Runtime.ProbeArgs = []string{"--version"}
	}
	if m.Runtime.Name == "" {
		m.Runtime.Name = m.Runtime.Command
	}

	for i := range m.Dependencies {
		dep := &m.Dependencies[i]
		if len(dep.Probe) == 0 && dep.Name != "" {
			dep.Probe = []string{m.Runtime.Command, "-c", "import " + dep.Name}
		}
		if len(dep.Install) == 0 && dep.Name != "" {
			dep.Install = []string{m.Runtime.Command, "-m", "pip", "install", dep.Name}
		}
	}

	if m.Build != nil {
		if len(m.Build.Args) == 0 {
			m.Build.Args = []string{"--onefile", "--windowed"}
		}
		if m.Build.Name == "" && m.Build.Entry != "" {
			base := filepath.Base(m.Build.Entry)
			m.Build.Name = strings.TrimSuffix(base, filepath.Ext(base))
		}
	}
}

// Validate checks the manifest for the fields defaults cannot supply.
func (m *Manifest) Validate() error {
	if m.Runtime.Command == "" {
		return fmt.Errorf("runtime.command is required")
	}
	if len(m.App.Command) == 0 {
		return fmt.Errorf("app.command is required")
	}
	for i := range m.Dependencies {
		if m.Dependencies[i].Name == "" {
			return fmt.Errorf("dependencies[%d]: name is required", i)
		}
	}
	if m.Build != nil {
		if m.Build.Tool == "" {
			return fmt.Errorf("build.tool is required")
		}
		if m.Build.Entry == "" {
			return fmt.Errorf("build.entry is required")
		}
	}
	return nil
}

// AppDir returns the absolute working directory for the application.
func (m *Manifest) AppDir() string {
	if m.App.Dir == "" {
		return m.Dir
	}
	if filepath.IsAbs(m.App.Dir) {
		return m.App.Dir
	}
	return filepath.Join(m.Dir, m.App.Dir)
}
