/*
Copyright © 2025 3 Leaps <info@3leaps.net>
*/
package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/fulmenhq/ncbisort/pkg/buildinfo"
)

func newVersionCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Show ncbisort version and build information",
		Args:  cobra.NoArgs,
		RunE:  runVersion,
	}
	cmd.Flags().Bool("json", false, "Output version information in JSON format")
	return cmd
}

func runVersion(cmd *cobra.Command, _ []string) error {
	jsonOutput, _ := cmd.Flags().GetBool("json")
	out := cmd.OutOrStdout()
	info := buildinfo.Current()

	if jsonOutput {
		jsonData, err := json.MarshalIndent(info, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to format JSON: %v", err)
		}
		_, err = fmt.Fprintln(out, string(jsonData))
		return err
	}

	fmt.Fprintf(out, "ncbisort %s\n", info.Version)
	if info.ModuleVersion != "" {
		fmt.Fprintf(out, "Module: %s\n", info.ModuleVersion)
	}
	fmt.Fprintf(out, "Go Version: %s\n", info.GoVersion)
	fmt.Fprintf(out, "OS/Arch: %s\n", info.Platform)
	return nil
}
