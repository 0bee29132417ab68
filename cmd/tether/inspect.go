package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tether-cli/tether/pkg/encryption"
	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/snapshot"
)

func newInspectCmd() *cobra.Command {
	var format string
	var showContent bool

	cmd := &cobra.Command{
		Use:   "inspect <snapshot-file>",
		Short: "Decrypt a snapshot and print its contents",
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

			// File contents are usually noise when inspecting; replace
			// them with hashes unless asked for.
			if !showContent {
				for i := range snap.Dotfiles {
					snap.Dotfiles[i].Content = []byte(snapshot.HashContent(snap.Dotfiles[i].Content))
				}
			}

			switch format {
			case "yaml":
				out, err := yaml.Marshal(snap)
				if err != nil {
					return err
				}
				fmt.Print(string(out))
			case "json":
				out, err := json.MarshalIndent(snap, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			default:
				return errors.Newf(errors.ErrInvalidInput, "unknown format %q, want yaml or json", format)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "yaml", "Output format (yaml or json)")
	cmd.Flags().BoolVar(&showContent, "content", false, "Include raw file contents instead of hashes")
	return cmd
}
