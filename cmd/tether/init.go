package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tether-cli/tether/pkg/encryption"
	"github.com/tether-cli/tether/pkg/paths"
	"github.com/tether-cli/tether/pkg/snapshot"
)

func newInitCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "init",
		Short: "Set up this machine: identity and encryption key",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			home, err := paths.GetHomeDirectory()
			if err != nil {
				return err
			}

			machineID, err := snapshot.LoadOrCreateMachineID(home)
			if err != nil {
				return err
			}
			fmt.Printf("machine id: %s\n", machineID)

			if _, err := loadKey(home); err == nil {
				fmt.Println("encryption key: already present")
				return nil
			}

			key, err := encryption.GenerateKey()
			if err != nil {
				return err
			}
			location, err := storeKey(home, key)
			if err != nil {
				return err
			}
			fmt.Printf("encryption key: generated, stored in %s\n", location)
			return nil
		},
	}
}
