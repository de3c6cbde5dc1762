package cli

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/authorsite/internal/domain"
)

var leadCmd = &cobra.Command{
	Use:   "lead",
	Short: "Inspect captured leads",
}

var leadListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the most recent leads",
	Long: `List the most recent leads, newest first.

Examples:
  authorsite lead list
  authorsite lead list --limit 200`,
	RunE: runLeadList,
}

var leadLimit int

func init() {
	rootCmd.AddCommand(leadCmd)
	leadCmd.AddCommand(leadListCmd)

	leadListCmd.Flags().IntVarP(&leadLimit, "limit", "n", 50, "Maximum number of leads to show")
}

func runLeadList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	return withApp(ctx, func(a *AppContext) error {
		leads, err := a.Leads.List(ctx, leadLimit)
		if err != nil {
			return fmt.Errorf("failed to list leads: %w", err)
		}
		printLeads(cmd.OutOrStdout(), leads)
		return nil
	})
}

func printLeads(out io.Writer, leads []*domain.Lead) {
	if len(leads) == 0 {
		fmt.Fprintln(out, "No leads found")
		return
	}

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "EMAIL\tNAME\tSOURCE\tPAGE\tCAPTURED")
	for _, l := range leads {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\n",
			l.Email, dash(l.Name), l.Source, dash(l.Page), l.CreatedAt.Format("2006-01-02 15:04"))
	}
	w.Flush()
}

func dash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
