// Package cli — monitor_test.go contains unit tests for the monitor
// command's configuration plumbing: flag overrides onto the profile and
// profile path resolution.
//
// These tests exercise pure configuration logic without opening serial
// ports.
package cli

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dpetkov/comsniff/internal/model"
	"github.com/dpetkov/comsniff/internal/profile"
)

// parseMonitorFlags builds a monitor command and parses the given args,
// returning the command and its bound flag struct for override testing.
func parseMonitorFlags(t *testing.T, args ...string) (*cobra.Command, *monitorFlags) {
	t.Helper()

	cmd, flags := newMonitorCommand()
	require.NoError(t, cmd.Flags().Parse(args))
	return cmd, flags
}

// TestApplyOverrides_PortFlagsEnableChannels verifies that setting a
// port flag enables the corresponding channel.
func TestApplyOverrides_PortFlagsEnableChannels(t *testing.T) {
	cmd, flags := parseMonitorFlags(t, "--rx1-port", "/dev/ttyUSB0", "--rx2-port", "/dev/ttyUSB1")

	prof := profile.Default()
	prof.Channels[0].Enabled = false
	prof.Channels[1].Enabled = false

	applyOverrides(cmd, flags, prof)

	assert.True(t, prof.Channels[0].Enabled)
	assert.Equal(t, "/dev/ttyUSB0", prof.Channels[0].Port)
	assert.True(t, prof.Channels[1].Enabled)
	assert.Equal(t, "/dev/ttyUSB1", prof.Channels[1].Port)
}

// TestApplyOverrides_OnlyChangedFlagsApply verifies that serial settings
// from the profile survive when their flags were not set.
func TestApplyOverrides_OnlyChangedFlagsApply(t *testing.T) {
	cmd, flags := parseMonitorFlags(t, "--rx1-port", "/dev/ttyUSB0", "--baud", "115200")

	prof := profile.Default()
	prof.Channels[0].Parity = model.ParityEven
	prof.Channels[0].ReadTimeout = 25 * time.Millisecond

	applyOverrides(cmd, flags, prof)

	assert.Equal(t, 115200, prof.Channels[0].BaudRate)
	// Untouched flags leave profile values alone.
	assert.Equal(t, model.ParityEven, prof.Channels[0].Parity)
	assert.Equal(t, 25*time.Millisecond, prof.Channels[0].ReadTimeout)
}

// TestApplyOverrides_SharedSettingsHitAllChannels verifies that serial
// flags apply to both channels.
func TestApplyOverrides_SharedSettingsHitAllChannels(t *testing.T) {
	cmd, flags := parseMonitorFlags(t,
		"--rx1-port", "COM3", "--rx2-port", "COM4",
		"--protocol", "gilbarco-2wire")

	prof := profile.Default()
	applyOverrides(cmd, flags, prof)

	assert.Equal(t, model.ProtocolGilbarco, prof.Channels[0].Protocol)
	assert.Equal(t, model.ProtocolGilbarco, prof.Channels[1].Protocol)
}

// TestApplyOverrides_Capture verifies the capture flag overrides.
func TestApplyOverrides_Capture(t *testing.T) {
	cmd, flags := parseMonitorFlags(t, "--capture", "--capture-dir", "/tmp/caps")

	prof := profile.Default()
	applyOverrides(cmd, flags, prof)

	assert.True(t, prof.Capture.Enabled)
	assert.Equal(t, "/tmp/caps", prof.Capture.Dir)
}

// TestLoadProfile_ExplicitPath verifies that an explicit profile path is
// used as-is and its contents load.
func TestLoadProfile_ExplicitPath(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	p := profile.Default()
	p.Channels[0].Port = "/dev/ttyS9"
	require.NoError(t, p.Save(path))

	loaded, resolved, err := loadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, path, resolved)
	assert.Equal(t, "/dev/ttyS9", loaded.Channels[0].Port)
}
