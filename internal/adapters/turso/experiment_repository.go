package turso

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/emiliopalmerini/authorsite/internal/domain"
	"github.com/emiliopalmerini/authorsite/internal/util"
)

const readRetries = 2

// experimentWithVariants selects experiments joined with their variants, in
// insertion order and variant position order. Experiments without variants
// come back with NULL variant columns.
const experimentWithVariants = `
	SELECT e.id, e.name, e.page, e.is_active, e.created_at,
	       v.id, v.name, v.traffic_percentage, v.config
	FROM experiments e
	LEFT JOIN experiment_variants v ON v.experiment_id = e.id`

const experimentOrder = ` ORDER BY e.rowid, v.position`

type ExperimentRepository struct {
	db *sql.DB
}

func NewExperimentRepository(db *sql.DB) *ExperimentRepository {
	return &ExperimentRepository{db: db}
}

func (r *ExperimentRepository) Create(ctx context.Context, experiment *domain.Experiment) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO experiments (id, name, page, is_active, created_at)
		VALUES (?, ?, ?, ?, ?)`,
		experiment.ID,
		experiment.Name,
		experiment.Page,
		util.BoolToInt64(experiment.IsActive),
		formatTime(experiment.CreatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("experiment %q: %w", experiment.Name, domain.ErrConflict)
		}
		return fmt.Errorf("failed to create experiment: %w", err)
	}

	for i, v := range experiment.Variants {
		cfg := v.Config
		if cfg == nil {
			cfg = domain.VariantConfig{}
		}
		configJSON, err := json.Marshal(cfg)
		if err != nil {
			return fmt.Errorf("failed to encode config for variant %s: %w", v.ID, err)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO experiment_variants (experiment_id, id, name, traffic_percentage, config, position)
			VALUES (?, ?, ?, ?, ?, ?)`,
			experiment.ID, v.ID, v.Name, v.TrafficPercentage, string(configJSON), i,
		)
		if err != nil {
			return fmt.Errorf("failed to create variant %s: %w", v.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit experiment: %w", err)
	}
	return nil
}

func (r *ExperimentRepository) GetByID(ctx context.Context, id string) (*domain.Experiment, error) {
	experiments, err := r.query(ctx, experimentWithVariants+` WHERE e.id = ?`+experimentOrder, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment: %w", err)
	}
	return first(experiments), nil
}

func (r *ExperimentRepository) GetByName(ctx context.Context, name string) (*domain.Experiment, error) {
	experiments, err := r.query(ctx, experimentWithVariants+` WHERE e.name = ?`+experimentOrder, name)
	if err != nil {
		return nil, fmt.Errorf("failed to get experiment by name: %w", err)
	}
	return first(experiments), nil
}

func (r *ExperimentRepository) GetActiveByPage(ctx context.Context, page string) ([]*domain.Experiment, error) {
	experiments, err := WithRetry(ctx, readRetries, func() ([]*domain.Experiment, error) {
		return r.query(ctx, experimentWithVariants+` WHERE e.page = ? AND e.is_active = 1`+experimentOrder, page)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get active experiments for page %q: %w", page, err)
	}
	return experiments, nil
}

func (r *ExperimentRepository) List(ctx context.Context) ([]*domain.Experiment, error) {
	experiments, err := r.query(ctx, experimentWithVariants+experimentOrder)
	if err != nil {
		return nil, fmt.Errorf("failed to list experiments: %w", err)
	}
	return experiments, nil
}

func (r *ExperimentRepository) Activate(ctx context.Context, id string) error {
	return r.setActive(ctx, id, true)
}

func (r *ExperimentRepository) Deactivate(ctx context.Context, id string) error {
	return r.setActive(ctx, id, false)
}

func (r *ExperimentRepository) setActive(ctx context.Context, id string, active bool) error {
	res, err := r.db.ExecContext(ctx, `UPDATE experiments SET is_active = ? WHERE id = ?`, util.BoolToInt64(active), id)
	if err != nil {
		return fmt.Errorf("failed to update experiment: %w", err)
	}
	return checkAffected(res, "experiment", id)
}

func (r *ExperimentRepository) Delete(ctx context.Context, id string) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	// Deleted explicitly so removal does not depend on PRAGMA foreign_keys.
	if _, err := tx.ExecContext(ctx, `DELETE FROM experiment_variants WHERE experiment_id = ?`, id); err != nil {
		return fmt.Errorf("failed to delete variants: %w", err)
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM experiments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete experiment: %w", err)
	}
	if err := checkAffected(res, "experiment", id); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit delete: %w", err)
	}
	return nil
}

func (r *ExperimentRepository) query(ctx context.Context, query string, args ...any) ([]*domain.Experiment, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var experiments []*domain.Experiment
	byID := make(map[string]*domain.Experiment)

	for rows.Next() {
		var (
			id, name, page, createdAt string
			isActive                  int64
			variantID, variantName    sql.NullString
			traffic                   sql.NullFloat64
			configJSON                sql.NullString
		)
		if err := rows.Scan(&id, &name, &page, &isActive, &createdAt,
			&variantID, &variantName, &traffic, &configJSON); err != nil {
			return nil, err
		}

		exp, ok := byID[id]
		if !ok {
			exp = &domain.Experiment{
				ID:        id,
				Name:      name,
				Page:      page,
				IsActive:  isActive == 1,
				CreatedAt: parseTime(createdAt),
			}
			byID[id] = exp
			experiments = append(experiments, exp)
		}

		if !variantID.Valid {
			continue
		}
		variant := domain.ExperimentVariant{
			ID:                variantID.String,
			Name:              variantName.String,
			TrafficPercentage: traffic.Float64,
			Config:            domain.VariantConfig{},
		}
		if configJSON.Valid && configJSON.String != "" {
			if err := json.Unmarshal([]byte(configJSON.String), &variant.Config); err != nil {
				return nil, fmt.Errorf("failed to decode config for variant %s: %w", variantID.String, err)
			}
		}
		exp.Variants = append(exp.Variants, variant)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return experiments, nil
}

func first(experiments []*domain.Experiment) *domain.Experiment {
	if len(experiments) == 0 {
		return nil
	}
	return experiments[0]
}
