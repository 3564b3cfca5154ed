package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"hyinit/internal/manifest"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the hyinit version",
	// No config is needed to print a version.
	PersistentPreRunE: func(*cobra.Command, []string) error { return nil },
	Run: func(cmd *cobra.Command, args []string) {
		self := manifest.Self()
		fmt.Fprintf(cmd.OutOrStdout(), "%s %s (%s)\n", self.ID(), self.Version, manifest.UserAgent())
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
}
