package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/authorsite/internal/domain"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show platform statistics",
	Long: `Show platform-wide counters: experiments, leads and billing events.

Examples:
  authorsite stats`,
	RunE: runStats,
}

func init() {
	rootCmd.AddCommand(statsCmd)
}

func runStats(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	return withApp(ctx, func(a *AppContext) error {
		st, err := a.Stats.Get(ctx)
		if err != nil {
			return fmt.Errorf("failed to load stats: %w", err)
		}
		printStats(cmd.OutOrStdout(), st)
		return nil
	})
}

func printStats(out io.Writer, st *domain.PlatformStats) {
	fmt.Fprintln(out, "Platform Statistics")
	fmt.Fprintln(out, "===================")
	fmt.Fprintf(out, "Experiments:     %d (%d active)\n", st.Experiments, st.ActiveExperiments)
	fmt.Fprintf(out, "Leads:           %d\n", st.Leads)
	fmt.Fprintf(out, "Billing events:  %d\n", st.BillingEvents)
	fmt.Fprintf(out, "Generated at:    %s\n", st.GeneratedAt.Format("2006-01-02 15:04:05"))
}
