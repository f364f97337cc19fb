// Package cli — ports.go implements the "comsniff ports" command.
//
// The ports command enumerates the serial ports visible to the system,
// with USB vendor/product IDs where the platform exposes them. It is the
// quickest way to find the device names to put in the monitor profile.
package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/dpetkov/comsniff/internal/serialio"
)

// NewPortsCommand creates the "ports" cobra command.
func NewPortsCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "ports",
		Short: "List available serial ports",
		Long: `List the serial ports detected on this system, one per line, with a
description and USB IDs where available.

Examples:
  comsniff ports
  comsniff ports --json`,

		Args: cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			return runPorts()
		},
	}
}

// runPorts is the main logic function for the ports command.
func runPorts() error {
	ports, err := serialio.ListPorts()
	if err != nil {
		return err
	}

	if IsJSONOutput() {
		data, err := json.MarshalIndent(ports, "", "  ")
		if err != nil {
			return fmt.Errorf("encoding port list: %w", err)
		}
		fmt.Println(string(data))
		return nil
	}

	if len(ports) == 0 {
		fmt.Println("No serial ports found.")
		return nil
	}

	for _, p := range ports {
		line := p.Name
		if p.Description != "" {
			line += "  " + p.Description
		}
		if p.IsUSB {
			line += fmt.Sprintf("  [USB %s:%s]", p.VID, p.PID)
		}
		fmt.Println(line)
	}
	return nil
}
