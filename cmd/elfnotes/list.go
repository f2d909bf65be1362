package main

import (
	"fmt"
	"slices"

	"github.com/spf13/cobra"

	"github.com/wippyai/elf-notes/errors"
	"github.com/wippyai/elf-notes/internal/config"
	"github.com/wippyai/elf-notes/scan"
)

func newListCmd(a *app) *cobra.Command {
	var format string

	cmd := &cobra.Command{
		Use:   "list PATTERN...",
		Short: "List every note of the matching files",
		Example: `  elfnotes list /bin/ls
  elfnotes list --format json '/usr/lib/**/*.so*'`,
		Args: cobra.MinimumNArgs(1),
	}
	cmd.Flags().StringVarP(&format, "format", "f", "", "Output format: text, json or yaml")

	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		if !cmd.Flags().Changed("format") {
			format = a.cfg.Format
		}
		if !slices.Contains(config.Formats, format) {
			return errors.InvalidInput(errors.PhaseConfig, fmt.Sprintf("unknown format %q", format))
		}

		results, err := scan.Run(cmd.Context(), args, a.scanOptions())
		if err != nil {
			return err
		}

		views := make([]fileView, len(results))
		for i, r := range results {
			views[i] = newFileView(r)
		}
		if err := writeViews(cmd.OutOrStdout(), format, views); err != nil {
			return err
		}
		return failedFiles(results)
	})
	return cmd
}

// failedFiles reports how many results carry an error so the exit status
// reflects partial failures.
func failedFiles(results []scan.Result) error {
	n := 0
	for _, r := range results {
		if r.Err != nil {
			n++
		}
	}
	if n == 0 {
		return nil
	}
	return fmt.Errorf("%d of %d files could not be read", n, len(results))
}
