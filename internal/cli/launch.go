// Package cli — launch.go implements the "comsniff launch" command.
//
// The launch command bootstraps the application described by the launch
// manifest: it verifies the runtime is installed, probes each declared
// dependency (installing missing ones with a single unchecked attempt),
// and then runs the application with inherited stdio. A non-zero
// application exit is reported and propagated.
package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/dpetkov/comsniff/internal/bootstrap"
	"github.com/dpetkov/comsniff/internal/manifest"
)

// launchFlags holds the flag values for the launch command.
type launchFlags struct {
	// manifestPath overrides the manifest auto-discovery in the current
	// directory.
	manifestPath string

	// noPause skips the "press Enter" acknowledgment after an
	// application failure. Useful when running non-interactively.
	noPause bool
}

// NewLaunchCommand creates the "launch" cobra command.
func NewLaunchCommand() *cobra.Command {
	flags := &launchFlags{}

	cmd := &cobra.Command{
		Use:   "launch",
		Short: "Check the runtime and dependencies, then run the application",
		Long: `Launch reads the launch manifest (comsniff.json), verifies that the
configured runtime is installed, probes each declared dependency and
makes one install attempt for any that are missing, then starts the
application.

If the runtime is missing, launch exits with status 1 without touching
the dependencies. If the application exits with a non-zero status, that
status becomes launch's own exit status and launch waits for Enter
before closing (disable with --no-pause).

Examples:
  comsniff launch
  comsniff launch --manifest deploy/comsniff.json --no-pause`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runLaunch(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.manifestPath, "manifest", "",
		"Path to the launch manifest (default: comsniff.json in the current directory)")
	cmd.Flags().BoolVar(&flags.noPause, "no-pause", false,
		"Do not wait for Enter after an application failure")

	return cmd
}

// runLaunch is the main logic function for the launch command.
func runLaunch(ctx context.Context, flags *launchFlags) error {
	man, err := loadManifest(flags.manifestPath)
	if err != nil {
		return err
	}
	VerboseLog("Loaded manifest from %s", man.Dir)

	launcher := bootstrap.NewLauncher(man, bootstrap.NewExecRunner(), os.Stdout, os.Stdin)
	return launcher.Launch(ctx, !flags.noPause)
}

// loadManifest resolves and loads the launch manifest, either from an
// explicit path or by discovery in the current directory.
func loadManifest(path string) (*manifest.Manifest, error) {
	if path != "" {
		return manifest.Load(path)
	}

	cwd, err := os.Getwd()
	if err != nil {
		return nil, fmt.Errorf("resolving working directory: %w", err)
	}
	found, err := manifest.Find(cwd)
	if err != nil {
		return nil, err
	}
	return manifest.Load(found)
}
