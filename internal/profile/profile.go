package profile

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dpetkov/comsniff/internal/model"
)

// fileName is the profile file name under the comsniff config directory.
const fileName = "profile.yaml"

// CaptureSettings controls the per-session capture log.
type CaptureSettings struct {
	// Enabled turns capture logging on.
	Enabled bool `yaml:"enabled"`

	// Dir is the directory capture files are written to.
	Dir string `yaml:"dir"`
}

// Profile is the persisted monitor configuration.
type Profile struct {
	// Channels holds the RX1 and RX2 configurations, in that order.
	Channels []model.ChannelConfig `yaml:"channels"`

	// Capture holds the capture log settings.
	Capture CaptureSettings `yaml:"capture"`
}

// Default returns the configuration used when no profile exists: RX1
// enabled with conservative serial defaults, RX2 present but disabled,
// capture off with the default log directory.
func Default() *Profile {
	rx1 := model.DefaultChannelConfig("RX1")
	rx2 := model.DefaultChannelConfig("RX2")
	rx2.Enabled = false

	return &Profile{
		Channels: []model.ChannelConfig{rx1, rx2},
		Capture: CaptureSettings{
			Enabled: false,
			Dir:     DefaultCaptureDir(),
		},
	}
}

// DefaultPath returns the default profile location,
// <user config dir>/comsniff/profile.yaml.
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolving config directory: %w", err)
	}
	return filepath.Join(dir, "comsniff", fileName), nil
}

// DefaultCaptureDir returns the default capture log directory,
// ~/comsniff-logs, falling back to the working directory when the home
// directory cannot be resolved.
func DefaultCaptureDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "comsniff-logs"
	}
	return filepath.Join(home, "comsniff-logs")
}

// Load reads the profile at path. A missing file yields the default
// profile without error; a present but unreadable or invalid file is a
// profile error.
func Load(path string) (*Profile, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return Default(), nil
	}
	if err != nil {
		return nil, model.WrapCLIError(model.ExitProfileError,
			fmt.Sprintf("failed to read profile %s", path), err)
	}

	var p Profile
	if err := yaml.Unmarshal(data, &p); err != nil {
		return nil, model.WrapCLIError(model.ExitProfileError,
			fmt.Sprintf("failed to parse profile %s", path), err)
	}

	p.applyDefaults()
	if err := p.Validate(); err != nil {
		return nil, err
	}
	return &p, nil
}

// Save writes the profile to path, creating parent directories as
// needed.
func (p *Profile) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return model.WrapCLIError(model.ExitProfileError,
			"failed to create profile directory", err)
	}

	data, err := yaml.Marshal(p)
	if err != nil {
		return model.WrapCLIError(model.ExitProfileError,
			"failed to encode profile", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return model.WrapCLIError(model.ExitProfileError,
			fmt.Sprintf("failed to write profile %s", path), err)
	}
	return nil
}

// applyDefaults fills in gaps a hand-edited profile may leave: missing
// channels, empty labels, a missing capture directory.
func (p *Profile) applyDefaults() {
	labels := []string{"RX1", "RX2"}
	for len(p.Channels) < len(labels) {
		c := model.DefaultChannelConfig(labels[len(p.Channels)])
		c.Enabled = false
		p.Channels = append(p.Channels, c)
	}
	p.Channels = p.Channels[:len(labels)]

	for i := range p.Channels {
		c := &p.Channels[i]
		if c.Label == "" {
			c.Label = labels[i]
		}

		// A hand-edited profile may omit serial fields; fill them from
		// the channel defaults instead of failing validation on zeros.
		def := model.DefaultChannelConfig(c.Label)
		if c.BaudRate == 0 {
			c.BaudRate = def.BaudRate
		}
		if c.DataBits == 0 {
			c.DataBits = def.DataBits
		}
		if c.Parity == "" {
			c.Parity = def.Parity
		}
		if c.StopBits == "" {
			c.StopBits = def.StopBits
		}
		if c.ReadTimeout == 0 {
			c.ReadTimeout = def.ReadTimeout
		}
		if c.Protocol == "" {
			c.Protocol = def.Protocol
		}
		c.Normalize()
	}

	if p.Capture.Dir == "" {
		p.Capture.Dir = DefaultCaptureDir()
	}
}

// Validate checks the channel set, wrapping failures as profile errors.
func (p *Profile) Validate() error {
	for i := range p.Channels {
		if err := p.Channels[i].Validate(); err != nil {
			return model.WrapCLIError(model.ExitProfileError,
				fmt.Sprintf("invalid %s configuration", p.Channels[i].Label), err)
		}
	}
	return nil
}
