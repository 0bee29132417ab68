package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tether-cli/tether/pkg/discovery"
)

func newDiscoverCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "discover",
		Short: "Show shell config directories referenced by your dotfiles",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			dirs := discovery.DiscoverSourcedDirs(e.home, e.settings.Dotfiles.Files)
			if len(dirs) == 0 {
				fmt.Println("No sourced directories discovered")
				return nil
			}
			for _, dir := range dirs {
				fmt.Println(dir)
			}
			return nil
		},
	}
}
