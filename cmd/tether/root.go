package main

import (
	"fmt"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/tether-cli/tether/pkg/logging"
)

var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	verbosity int

	rootCmd = &cobra.Command{
		Use:   "tether",
		Short: "Keep your dev environment in sync across machines",
		Long: `tether captures your dotfiles and installed packages into an encrypted
snapshot and replays it on another machine, backing up anything it
overwrites.`,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			logging.SetupLogger(verbosity)
			log.Debug().Str("command", cmd.Name()).Msg("Command started")
		},
		SilenceUsage:  true,
		SilenceErrors: true,
	}
)

// Execute runs the CLI. Called once from main.
func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		pr := stderrPrinter()
		pr.Printf("Error: %v\n", err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().CountVarP(&verbosity, "verbose", "v", "Increase verbosity (-v INFO, -vv DEBUG, -vvv TRACE)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(newSnapshotCmd())
	rootCmd.AddCommand(newApplyCmd())
	rootCmd.AddCommand(newInspectCmd())
	rootCmd.AddCommand(newScanCmd())
	rootCmd.AddCommand(newDiscoverCmd())
	rootCmd.AddCommand(newBackupsCmd())
	rootCmd.AddCommand(newRestoreCmd())
	rootCmd.AddCommand(newPackagesCmd())
	rootCmd.AddCommand(newInitCmd())
	rootCmd.AddCommand(newConfigCmd())
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tether version %s\n", version)
		fmt.Printf("  commit: %s\n", commit)
		fmt.Printf("  built:  %s\n", date)
	},
}
