package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "authorsite",
	Short: "Backend for author landing pages",
	Long: `authorsite serves the backend of an author landing page platform.

Assign visitors to A/B experiment variants, capture leads, receive billing
webhooks, and manage experiments from the command line.`,
	SilenceUsage: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.AddCommand(migrateCmd)
}
