package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tether-cli/tether/pkg/encryption"
	"github.com/tether-cli/tether/pkg/snapshot"
)

func newSnapshotCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "snapshot",
		Short: "Capture this machine into an encrypted snapshot file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			key, err := loadKey(e.home)
			if err != nil {
				return err
			}

			builder := snapshot.NewBuilder(e.home, e.settings, e.registry)
			result, err := builder.Build(cmd.Context())
			if err != nil {
				return err
			}

			data, err := snapshot.Encode(result.Snapshot)
			if err != nil {
				return err
			}
			blob, err := encryption.Encrypt(data, key)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, blob, 0600); err != nil {
				return err
			}

			for _, w := range result.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}

			snap := result.Snapshot
			fmt.Printf("%s %s\n", formatBold("Snapshot written to"), output)
			fmt.Printf("  dotfiles: %d captured, %d withheld\n", len(snap.Dotfiles), len(snap.SkippedFiles))
			fmt.Printf("  managers: %d\n", len(snap.Packages))
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "tether.snapshot", "Output file for the encrypted snapshot")
	return cmd
}
