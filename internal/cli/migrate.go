package cli

import (
	"context"
	"fmt"
	"io"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/emiliopalmerini/authorsite/internal/adapters/turso"
	"github.com/emiliopalmerini/authorsite/internal/infrastructure/config"
	"github.com/emiliopalmerini/authorsite/internal/migrate"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate [up | status | down <version> | <version>]",
	Short: "Run database migrations",
	Long: `Run database migrations.

Without arguments, runs all pending migrations (up).
With a version number, migrates to that specific version (up or down as needed).

Examples:
  authorsite migrate           # Run all pending migrations
  authorsite migrate status    # Show the current version
  authorsite migrate 2         # Migrate to version 2
  authorsite migrate down 0    # Rollback all migrations`,
	Args: cobra.MaximumNArgs(2),
	RunE: runMigrate,
}

func runMigrate(cmd *cobra.Command, args []string) error {
	ctx := context.Background()

	cfg, err := config.LoadDatabase()
	if err != nil {
		return err
	}

	db, err := turso.NewDB(ctx, *cfg)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	return migrateTo(ctx, db, cmd.OutOrStdout(), args)
}

func migrateTo(ctx context.Context, db *turso.DB, out io.Writer, args []string) error {
	m, err := migrate.New(db.DB)
	if err != nil {
		return err
	}

	current, dirty, err := m.Version(ctx)
	if err != nil {
		return err
	}
	if dirty {
		return fmt.Errorf("database is in dirty state at version %d, manual intervention required", current)
	}
	fmt.Fprintf(out, "Current version: %d\n", current)

	target := m.Latest()
	switch {
	case len(args) == 0 || (len(args) == 1 && args[0] == "up"):
	case len(args) == 1 && args[0] == "status":
		fmt.Fprintf(out, "Latest version:  %d\n", m.Latest())
		return nil
	case args[0] == "down":
		if len(args) != 2 {
			return fmt.Errorf("down requires a target version")
		}
		if target, err = parseVersion(args[1]); err != nil {
			return err
		}
		if target > current {
			return fmt.Errorf("cannot migrate down to version %d from version %d", target, current)
		}
	case len(args) == 1:
		if target, err = parseVersion(args[0]); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unexpected arguments: %v", args)
	}

	if target == current {
		fmt.Fprintln(out, "Already at target version")
		return nil
	}

	steps, err := m.To(ctx, target)
	for _, step := range steps {
		fmt.Fprintf(out, "  %s\n", step)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Migrated to version %d (%d migrations applied)\n", target, len(steps))
	return nil
}

func parseVersion(arg string) (int, error) {
	v, err := strconv.Atoi(arg)
	if err != nil || v < 0 {
		return 0, fmt.Errorf("invalid version number: %s", arg)
	}
	return v, nil
}
