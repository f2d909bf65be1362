package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/elf-notes/scan"
)

func newBuildIDCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "buildid FILE...",
		Short: "Print the GNU build ID of each file",
		Long: `Print the GNU build ID of each file, one "ID  PATH" line per file.
Files without a build ID print "-" in place of the ID.`,
		Args: cobra.MinimumNArgs(1),
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		results, err := scan.Run(cmd.Context(), args, a.scanOptions())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, r := range results {
			if r.Err != nil {
				fmt.Fprintf(cmd.ErrOrStderr(), "%s: %v\n", r.Path, r.Err)
				continue
			}
			id, ok := r.Image.BuildID()
			if !ok {
				id = "-"
			}
			fmt.Fprintf(w, "%s  %s\n", id, r.Path)
		}
		return failedFiles(results)
	})
	return cmd
}
