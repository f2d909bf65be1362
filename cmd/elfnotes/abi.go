package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wippyai/elf-notes/scan"
)

func newAbiCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "abi FILE...",
		Short: "Print the GNU ABI tag of each file",
		Args:  cobra.MinimumNArgs(1),
	}
	cmd.RunE = a.run(func(cmd *cobra.Command, args []string) error {
		results, err := scan.Run(cmd.Context(), args, a.scanOptions())
		if err != nil {
			return err
		}

		w := cmd.OutOrStdout()
		for _, r := range results {
			switch {
			case r.Err != nil:
				fmt.Fprintf(w, "%s: error: %v\n", r.Path, r.Err)
			default:
				if tag, ok := r.Image.ABITag(); ok {
					fmt.Fprintf(w, "%s: %s\n", r.Path, tag)
				} else {
					fmt.Fprintf(w, "%s: no ABI tag\n", r.Path)
				}
			}
		}
		return failedFiles(results)
	})
	return cmd
}
