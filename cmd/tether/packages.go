package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newPackagesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "packages",
		Short: "Inspect package manager inventories",
	}
	cmd.AddCommand(newPackagesListCmd())
	return cmd
}

func newPackagesListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List installed packages per manager",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			for _, key := range e.registry.Keys() {
				adapter, err := e.registry.Get(key)
				if err != nil {
					continue
				}
				if !adapter.IsAvailable() {
					continue
				}

				pkgs, err := adapter.ListInstalled(cmd.Context())
				if err != nil {
					fmt.Printf("%s: %v\n", key.Label(), err)
					continue
				}

				fmt.Printf("%s (%d)\n", formatBold(key.Label()), len(pkgs))
				for _, p := range pkgs {
					if p.Version != "" {
						fmt.Printf("  %s %s\n", p.Name, p.Version)
					} else {
						fmt.Printf("  %s\n", p.Name)
					}
				}
			}
			return nil
		},
	}
}
