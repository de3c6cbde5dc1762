// Package migrate applies the embedded schema migrations.
package migrate

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"io/fs"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/emiliopalmerini/authorsite/migrations"
)

var fileName = regexp.MustCompile(`^(\d+)_(.+)\.(up|down)\.sql$`)

// Migration is one numbered schema change.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Step records a migration applied in one direction.
type Step struct {
	Version int
	Name    string
	Up      bool
}

func (s Step) String() string {
	dir := "down"
	if s.Up {
		dir = "up"
	}
	return fmt.Sprintf("%s %03d_%s", dir, s.Version, s.Name)
}

// ErrDirty is returned when a previous migration stopped halfway.
var ErrDirty = errors.New("database is in a dirty migration state")

// LoadMigrations parses the embedded *.up.sql and *.down.sql files, sorted by version.
func LoadMigrations() ([]Migration, error) {
	entries, err := fs.ReadDir(migrations.FS, ".")
	if err != nil {
		return nil, err
	}

	byVersion := make(map[int]*Migration)
	for _, e := range entries {
		m := fileName.FindStringSubmatch(e.Name())
		if e.IsDir() || m == nil {
			continue
		}
		version, _ := strconv.Atoi(m[1])
		body, err := fs.ReadFile(migrations.FS, e.Name())
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", e.Name(), err)
		}

		mig, ok := byVersion[version]
		if !ok {
			mig = &Migration{Version: version, Name: m[2]}
			byVersion[version] = mig
		} else if mig.Name != m[2] {
			return nil, fmt.Errorf("version %d has two names: %s and %s", version, mig.Name, m[2])
		}
		if m[3] == "up" {
			mig.UpSQL = string(body)
		} else {
			mig.DownSQL = string(body)
		}
	}

	result := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if strings.TrimSpace(m.UpSQL) == "" {
			return nil, fmt.Errorf("migration %03d_%s has no up file", m.Version, m.Name)
		}
		result = append(result, *m)
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Version < result[j].Version })
	return result, nil
}

// Migrator moves a database between schema versions.
type Migrator struct {
	db         *sql.DB
	migrations []Migration
}

// New loads the embedded migrations for db.
func New(db *sql.DB) (*Migrator, error) {
	all, err := LoadMigrations()
	if err != nil {
		return nil, fmt.Errorf("failed to load migrations: %w", err)
	}
	return &Migrator{db: db, migrations: all}, nil
}

// Latest returns the highest known version, 0 when there are none.
func (m *Migrator) Latest() int {
	if len(m.migrations) == 0 {
		return 0
	}
	return m.migrations[len(m.migrations)-1].Version
}

// Version returns the applied version and whether it is dirty.
func (m *Migrator) Version(ctx context.Context) (int, bool, error) {
	if err := m.ensureTable(ctx); err != nil {
		return 0, false, err
	}
	var version, dirty int
	err := m.db.QueryRowContext(ctx, `SELECT version, dirty FROM schema_migrations LIMIT 1`).Scan(&version, &dirty)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to read schema version: %w", err)
	}
	return version, dirty == 1, nil
}

// Up applies every pending migration.
func (m *Migrator) Up(ctx context.Context) ([]Step, error) {
	return m.To(ctx, m.Latest())
}

// To migrates up or down until target is the applied version.
func (m *Migrator) To(ctx context.Context, target int) ([]Step, error) {
	if target < 0 || target > m.Latest() {
		return nil, fmt.Errorf("unknown version %d (latest is %d)", target, m.Latest())
	}
	current, dirty, err := m.Version(ctx)
	if err != nil {
		return nil, err
	}
	if dirty {
		return nil, fmt.Errorf("%w at version %d", ErrDirty, current)
	}

	var steps []Step
	if target >= current {
		for _, mig := range m.migrations {
			if mig.Version <= current || mig.Version > target {
				continue
			}
			if err := m.apply(ctx, mig, mig.UpSQL, mig.Version); err != nil {
				return steps, err
			}
			steps = append(steps, Step{Version: mig.Version, Name: mig.Name, Up: true})
		}
		return steps, nil
	}

	for i := len(m.migrations) - 1; i >= 0; i-- {
		mig := m.migrations[i]
		if mig.Version > current || mig.Version <= target {
			continue
		}
		if strings.TrimSpace(mig.DownSQL) == "" {
			return steps, fmt.Errorf("no down migration for version %d", mig.Version)
		}
		if err := m.apply(ctx, mig, mig.DownSQL, mig.Version-1); err != nil {
			return steps, err
		}
		steps = append(steps, Step{Version: mig.Version, Name: mig.Name})
	}
	return steps, nil
}

// RunAll brings db up to the latest version.
func RunAll(ctx context.Context, db *sql.DB) error {
	m, err := New(db)
	if err != nil {
		return err
	}
	_, err = m.Up(ctx)
	return err
}

func (m *Migrator) ensureTable(ctx context.Context) error {
	_, err := m.db.ExecContext(ctx, `
		CREATE TABLE IF NOT EXISTS schema_migrations (
			version INTEGER PRIMARY KEY,
			dirty INTEGER NOT NULL DEFAULT 0
		)
	`)
	if err != nil {
		return fmt.Errorf("failed to create schema_migrations: %w", err)
	}
	return nil
}

// apply marks the database dirty at mig.Version, runs body and records version.
func (m *Migrator) apply(ctx context.Context, mig Migration, body string, version int) error {
	if err := m.setVersion(ctx, mig.Version, true); err != nil {
		return err
	}
	for _, stmt := range SplitSQL(body) {
		if _, err := m.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration %03d_%s: %w\nSQL: %s", mig.Version, mig.Name, err, stmt)
		}
	}
	return m.setVersion(ctx, version, false)
}

func (m *Migrator) setVersion(ctx context.Context, version int, dirty bool) error {
	d := 0
	if dirty {
		d = 1
	}
	if _, err := m.db.ExecContext(ctx, `DELETE FROM schema_migrations`); err != nil {
		return fmt.Errorf("failed to reset schema version: %w", err)
	}
	if version == 0 && !dirty {
		return nil
	}
	if _, err := m.db.ExecContext(ctx, `INSERT INTO schema_migrations (version, dirty) VALUES (?, ?)`, version, d); err != nil {
		return fmt.Errorf("failed to record schema version: %w", err)
	}
	return nil
}

// SplitSQL splits a script on semicolons and drops empty statements.
// Migration files must not put semicolons inside literals or comments.
func SplitSQL(script string) []string {
	var stmts []string
	for _, part := range strings.Split(script, ";") {
		if s := strings.TrimSpace(part); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
