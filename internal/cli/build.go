// Package cli — build.go implements the "comsniff build" command.
//
// The build command packages the application into a single-file
// executable using the packaging tool configured in the manifest. It
// cleans stale build output first and activates the project's isolated
// environment (when present) for the tool invocation.
package cli

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dpetkov/comsniff/internal/buildtool"
)

// buildFlags holds the flag values for the build command.
type buildFlags struct {
	// manifestPath overrides the manifest auto-discovery in the current
	// directory.
	manifestPath string
}

// NewBuildCommand creates the "build" cobra command.
func NewBuildCommand() *cobra.Command {
	flags := &buildFlags{}

	cmd := &cobra.Command{
		Use:   "build",
		Short: "Package the application into a single-file executable",
		Long: `Build reads the manifest's build section and invokes the configured
packaging tool in the project directory.

Before the tool runs, stale build/ and dist/ directories and *.spec
files are removed (best effort), and the isolated environment's bin
directory is prepended to PATH when the environment exists. A missing
environment is not an error.

Build succeeds only when the packaging tool exits with status 0; the
resulting artifact path is printed on success.

Examples:
  comsniff build
  comsniff build --manifest deploy/comsniff.json --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runBuild(cmd.Context(), flags)
		},
	}

	cmd.Flags().StringVar(&flags.manifestPath, "manifest", "",
		"Path to the launch manifest (default: comsniff.json in the current directory)")

	return cmd
}

// runBuild is the main logic function for the build command.
func runBuild(ctx context.Context, flags *buildFlags) error {
	man, err := loadManifest(flags.manifestPath)
	if err != nil {
		return err
	}
	VerboseLog("Building in %s with %s", man.Dir, man.Build.Tool)

	pipeline := buildtool.NewPipeline(man, buildtool.NewExecToolRunner())
	result, err := pipeline.Run(ctx)
	if err != nil {
		return err
	}

	for _, removed := range result.Cleaned {
		VerboseLog("Removed stale %s", removed)
	}

	if IsJSONOutput() {
		out := map[string]interface{}{
			"status":   "success",
			"artifact": result.ArtifactPath,
		}
		data, _ := json.MarshalIndent(out, "", "  ")
		fmt.Println(string(data))
		return nil
	}

	fmt.Println("Build successful!")
	fmt.Printf("Artifact: %s\n", result.ArtifactPath)
	return nil
}
