package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tether-cli/tether/pkg/config"
	"github.com/tether-cli/tether/pkg/paths"
)

func newConfigCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Manage tether configuration",
	}
	cmd.AddCommand(newConfigInitCmd())
	return cmd
}

func newConfigInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Write a config file with the default settings",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := paths.GetHomeDirectory()
			if err != nil {
				return err
			}

			path, err := config.WriteDefaultConfig(home)
			if err != nil {
				return err
			}
			fmt.Printf("Wrote %s\n", paths.DisplayPath(path, home))
			return nil
		},
	}
}
