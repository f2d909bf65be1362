package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/wippyai/elf-notes/internal/config"
)

func newConfigCmd(a *app) *cobra.Command {
	var write bool

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration",
		Long: `Print the configuration after the config file and flags are applied.
With --write it is saved to the --config path, or to the default location.`,
		Example: `  elfnotes --cache-dir ~/.cache/elfnotes --strict config --write`,
		Args:    cobra.NoArgs,
	}
	cmd.Annotations = map[string]string{annotationCreatesConfig: "true"}
	cmd.Flags().BoolVar(&write, "write", false, "Save the effective configuration")

	cmd.RunE = a.run(func(cmd *cobra.Command, _ []string) error {
		if write {
			path := a.configPath
			if path == "" {
				path = config.DefaultPath()
			}
			if err := config.Save(a.cfg, path); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s\n", path)
		}

		enc := yaml.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent(2)
		if err := enc.Encode(a.cfg); err != nil {
			return err
		}
		return enc.Close()
	})
	return cmd
}
