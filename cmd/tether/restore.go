package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tether-cli/tether/pkg/backup"
	"github.com/tether-cli/tether/pkg/paths"
)

func newRestoreCmd() *cobra.Command {
	var dest string

	cmd := &cobra.Command{
		Use:   "restore <timestamp> <category> <path>",
		Short: "Restore one file from a backup",
		Long: `Restore a file from the named backup. Dotfiles are restored into your
home directory; project files need an explicit --to destination.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			store := backup.NewStore(e.home)

			var restored string
			if dest != "" {
				restored, err = store.RestoreFileTo(args[0], args[1], args[2], dest)
			} else {
				restored, err = store.RestoreFile(args[0], args[1], args[2])
			}
			if err != nil {
				return err
			}

			fmt.Printf("Restored %s\n", paths.DisplayPath(restored, e.home))
			return nil
		},
	}

	cmd.Flags().StringVar(&dest, "to", "", "Explicit destination path")
	return cmd
}
