package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/experiments"
)

var experimentCmd = &cobra.Command{
	Use:   "experiment",
	Short: "Manage experiments",
	Long:  `Create, list, activate, and manage A/B experiments shown on landing pages.`,
}

var experimentCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new experiment",
	Long: `Create a new experiment on a page. Variant traffic must add up to at most 100.

Examples:
  authorsite experiment create hero-copy --page landing \
    --variant control=50 --variant bold=50 \
    --config 'bold={"headline":"Publish today"}' --active`,
	Args: cobra.ExactArgs(1),
	RunE: runExperimentCreate,
}

var experimentListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all experiments",
	RunE:  runExperimentList,
}

var experimentShowCmd = &cobra.Command{
	Use:   "show <name>",
	Short: "Show an experiment and its traffic split",
	Args:  cobra.ExactArgs(1),
	RunE:  runExperimentShow,
}

var experimentActivateCmd = &cobra.Command{
	Use:   "activate <name>",
	Short: "Activate an experiment",
	Args:  cobra.ExactArgs(1),
	RunE:  runExperimentActivate,
}

var experimentDeactivateCmd = &cobra.Command{
	Use:   "deactivate <name>",
	Short: "Deactivate an experiment",
	Args:  cobra.ExactArgs(1),
	RunE:  runExperimentDeactivate,
}

var experimentDeleteCmd = &cobra.Command{
	Use:   "delete <name>",
	Short: "Delete an experiment and its variants",
	Args:  cobra.ExactArgs(1),
	RunE:  runExperimentDelete,
}

var experimentAssignCmd = &cobra.Command{
	Use:   "assign <name> <key>",
	Short: "Show which variant a bucketing key gets",
	Long: `Show which variant a user id or session id is assigned to, without
recording an exposure.

Examples:
  authorsite experiment assign hero-copy reader-42`,
	Args: cobra.ExactArgs(2),
	RunE: runExperimentAssign,
}

// Flags
var (
	expPage     string
	expVariants []string
	expConfigs  []string
	expActive   bool
)

func init() {
	rootCmd.AddCommand(experimentCmd)

	experimentCmd.AddCommand(experimentCreateCmd)
	experimentCmd.AddCommand(experimentListCmd)
	experimentCmd.AddCommand(experimentShowCmd)
	experimentCmd.AddCommand(experimentActivateCmd)
	experimentCmd.AddCommand(experimentDeactivateCmd)
	experimentCmd.AddCommand(experimentDeleteCmd)
	experimentCmd.AddCommand(experimentAssignCmd)

	// Flags for create command
	experimentCreateCmd.Flags().StringVar(&expPage, "page", "", "Page the experiment runs on")
	experimentCreateCmd.Flags().StringArrayVarP(&expVariants, "variant", "v", nil, "Variant as id=percentage (repeatable, in allocation order)")
	experimentCreateCmd.Flags().StringArrayVarP(&expConfigs, "config", "c", nil, "Variant config as id=<json object> (repeatable)")
	experimentCreateCmd.Flags().BoolVar(&expActive, "active", false, "Activate the experiment immediately")
	_ = experimentCreateCmd.MarkFlagRequired("page")
	_ = experimentCreateCmd.MarkFlagRequired("variant")
}

// parseVariantFlags turns "id=percentage" and "id={json}" flags into variant inputs.
func parseVariantFlags(variants, configs []string) ([]experiments.VariantInput, error) {
	inputs := make([]experiments.VariantInput, 0, len(variants))
	index := make(map[string]int, len(variants))

	for _, v := range variants {
		id, pct, ok := strings.Cut(v, "=")
		if !ok || strings.TrimSpace(id) == "" {
			return nil, fmt.Errorf("invalid variant %q, expected id=percentage", v)
		}
		traffic, err := strconv.ParseFloat(strings.TrimSpace(pct), 64)
		if err != nil {
			return nil, fmt.Errorf("invalid traffic percentage in %q: %w", v, err)
		}
		id = strings.TrimSpace(id)
		index[id] = len(inputs)
		inputs = append(inputs, experiments.VariantInput{ID: id, TrafficPercentage: traffic})
	}

	for _, c := range configs {
		id, raw, ok := strings.Cut(c, "=")
		if !ok {
			return nil, fmt.Errorf("invalid config %q, expected id=<json object>", c)
		}
		i, known := index[strings.TrimSpace(id)]
		if !known {
			return nil, fmt.Errorf("config for unknown variant %q", id)
		}
		var cfg domain.VariantConfig
		if err := json.Unmarshal([]byte(raw), &cfg); err != nil {
			return nil, fmt.Errorf("invalid config for variant %q: %w", id, err)
		}
		inputs[i].Config = cfg
	}

	return inputs, nil
}

func runExperimentCreate(cmd *cobra.Command, args []string) error {
	variants, err := parseVariantFlags(expVariants, expConfigs)
	if err != nil {
		return err
	}

	ctx := context.Background()
	return withApp(ctx, func(a *AppContext) error {
		exp, err := a.Admin.Create(ctx, experiments.CreateExperimentInput{
			Name:     args[0],
			Page:     expPage,
			Active:   expActive,
			Variants: variants,
		})
		if err != nil {
			return err
		}

		state := "inactive"
		if exp.IsActive {
			state = "active"
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Created %s experiment %s on page %s (%s)\n", state, exp.Name, exp.Page, exp.ID)
		return nil
	})
}

func runExperimentList(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	return withApp(ctx, func(a *AppContext) error {
		exps, err := a.Admin.List(ctx)
		if err != nil {
			return fmt.Errorf("failed to list experiments: %w", err)
		}
		printExperimentList(cmd.OutOrStdout(), exps)
		return nil
	})
}

func printExperimentList(out io.Writer, exps []*domain.Experiment) {
	if len(exps) == 0 {
		fmt.Fprintln(out, "No experiments found")
		return
	}

	sorted := make([]*domain.Experiment, len(exps))
	copy(sorted, exps)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Page < sorted[j].Page })

	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tPAGE\tSTATUS\tVARIANTS\tTRAFFIC\tCREATED")
	for _, e := range sorted {
		status := "inactive"
		if e.IsActive {
			status = "active"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%g%%\t%s\n",
			e.Name, e.Page, status, len(e.Variants), e.TrafficTotal(), e.CreatedAt.Format("2006-01-02"))
	}
	w.Flush()
}

func runExperimentShow(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	return withApp(ctx, func(a *AppContext) error {
		exp, err := a.Admin.Get(ctx, args[0])
		if err != nil {
			return err
		}
		printExperiment(cmd.OutOrStdout(), exp)
		return nil
	})
}

func printExperiment(out io.Writer, exp *domain.Experiment) {
	status := "inactive"
	if exp.IsActive {
		status = "active"
	}
	fmt.Fprintf(out, "Experiment: %s (%s)\n", exp.Name, exp.ID)
	fmt.Fprintf(out, "Page:       %s\n", exp.Page)
	fmt.Fprintf(out, "Status:     %s\n", status)
	fmt.Fprintf(out, "Created:    %s\n\n", exp.CreatedAt.Format("2006-01-02 15:04:05"))

	ranges := domain.BucketRanges(exp.Variants)
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "VARIANT\tNAME\tTRAFFIC\tBUCKET\tCONFIG")
	for i, v := range exp.Variants {
		cfg, _ := json.Marshal(v.Config)
		if v.Config == nil {
			cfg = []byte("{}")
		}
		fmt.Fprintf(w, "%s\t%s\t%g%%\t[%g, %g)\t%s\n",
			v.ID, v.Name, v.TrafficPercentage, ranges[i].Min, ranges[i].Max, cfg)
	}
	w.Flush()

	if total := exp.TrafficTotal(); total < domain.MaxTrafficPercentage {
		fmt.Fprintf(out, "\nUnallocated traffic (%g%%) falls back to the last variant.\n", domain.MaxTrafficPercentage-total)
	}
}

func runExperimentActivate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	return withApp(ctx, func(a *AppContext) error {
		if err := a.Admin.Activate(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Activated experiment: %s\n", args[0])
		return nil
	})
}

func runExperimentDeactivate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	return withApp(ctx, func(a *AppContext) error {
		if err := a.Admin.Deactivate(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deactivated experiment: %s\n", args[0])
		return nil
	})
}

func runExperimentDelete(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	return withApp(ctx, func(a *AppContext) error {
		if err := a.Admin.Delete(ctx, args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Deleted experiment: %s\n", args[0])
		return nil
	})
}

func runExperimentAssign(cmd *cobra.Command, args []string) error {
	ctx := context.Background()
	return withApp(ctx, func(a *AppContext) error {
		exp, err := a.Admin.Get(ctx, args[0])
		if err != nil {
			return err
		}
		return printAssignment(cmd.OutOrStdout(), exp, args[1])
	})
}

func printAssignment(out io.Writer, exp *domain.Experiment, key string) error {
	variant, err := domain.AssignVariant(exp, key)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Key %q hashes to %.2f and gets variant %s (%s)\n",
		key, domain.HashToPercentage(key), variant.ID, variant.Name)
	return nil
}
