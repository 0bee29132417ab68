package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/tether-cli/tether/pkg/errors"
	"github.com/tether-cli/tether/pkg/paths"
	"github.com/tether-cli/tether/pkg/secrets"
)

func newScanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scan [file...]",
		Short: "Scan dotfiles for potential secrets",
		Long: `Scan the configured dotfiles, or the given files, for values that look
like credentials. Exits with code 3 when anything is found.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			targets := args
			if len(targets) == 0 {
				for _, rel := range e.settings.Dotfiles.Files {
					targets = append(targets, filepath.Join(e.home, rel))
				}
			}

			total := 0
			for _, path := range targets {
				if _, err := os.Stat(path); os.IsNotExist(err) {
					continue
				}
				findings, err := secrets.ScanFile(path)
				if err != nil {
					return err
				}
				for _, f := range findings {
					fmt.Printf("%s:%d: %s\n    %s\n",
						paths.DisplayPath(path, e.home), f.LineNumber, f.Type.Description(), f.Context)
				}
				total += len(findings)
			}

			if total > 0 {
				return errors.Newf(errors.ErrSecretFound, "%d potential secret(s) found", total)
			}
			fmt.Println("No secrets found")
			return nil
		},
	}
}
