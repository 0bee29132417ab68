package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/tether-cli/tether/pkg/apply"
	"github.com/tether-cli/tether/pkg/encryption"
	"github.com/tether-cli/tether/pkg/snapshot"
)

func newApplyCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "apply <snapshot-file>",
		Short: "Apply an encrypted snapshot to this machine",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			key, err := loadKey(e.home)
			if err != nil {
				return err
			}

			blob, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			data, err := encryption.Decrypt(blob, key)
			if err != nil {
				return err
			}
			snap, err := snapshot.Decode(data)
			if err != nil {
				return err
			}

			engine := apply.New(e.home, e.settings, e.registry)
			result, err := engine.Apply(cmd.Context(), snap)
			if err != nil {
				return err
			}

			for _, w := range result.Warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}

			fmt.Println(formatBold("Apply finished"))
			fmt.Printf("  dotfiles: %d applied, %d unchanged, %d failed\n",
				result.Dotfiles.Succeeded, result.Dotfiles.Skipped, result.Dotfiles.Failed)
			fmt.Printf("  managers: %d imported, %d skipped, %d failed\n",
				result.Managers.Succeeded, result.Managers.Skipped, result.Managers.Failed)
			if result.Degraded {
				fmt.Println("  some files failed verification, see warnings")
			}
			if result.Pruned > 0 {
				fmt.Printf("  pruned %d old backup(s)\n", result.Pruned)
			}
			return nil
		},
	}
}
