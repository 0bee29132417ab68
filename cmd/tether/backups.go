package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tether-cli/tether/pkg/backup"
)

func newBackupsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "backups",
		Short: "Manage backups taken before files were overwritten",
	}
	cmd.AddCommand(newBackupsListCmd())
	cmd.AddCommand(newBackupsPruneCmd())
	return cmd
}

func newBackupsListCmd() *cobra.Command {
	var showFiles bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List backups, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			store := backup.NewStore(e.home)
			timestamps, err := store.ListBackups()
			if err != nil {
				return err
			}
			if len(timestamps) == 0 {
				fmt.Println("No backups")
				return nil
			}

			for _, ts := range timestamps {
				fmt.Println(ts)
				if !showFiles {
					continue
				}
				files, err := store.ListBackupFiles(ts)
				if err != nil {
					return err
				}
				for _, f := range files {
					fmt.Printf("  %s/%s\n", f[0], f[1])
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showFiles, "files", false, "Also list the files inside each backup")
	return cmd
}

func newBackupsPruneCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "prune",
		Short: "Delete all but the most recent backups",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			e, err := loadEnv()
			if err != nil {
				return err
			}

			store := backup.NewStore(e.home).WithRetention(e.settings.Backup.Retention)
			removed, err := store.PruneOldBackups()
			if err != nil {
				return err
			}
			fmt.Printf("Removed %d backup(s)\n", removed)
			return nil
		},
	}
}
