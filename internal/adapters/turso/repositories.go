package turso

import (
	"database/sql"

	"github.com/emiliopalmerini/authorsite/internal/ports"
)

// Repositories holds all turso repository implementations as port interfaces.
type Repositories struct {
	Experiments   ports.ExperimentRepository
	Leads         ports.LeadRepository
	BillingEvents ports.BillingEventRepository
	Stats         ports.StatsRepository
}

// NewRepositories creates all turso repository implementations from a database connection.
func NewRepositories(db *sql.DB) *Repositories {
	return &Repositories{
		Experiments:   NewExperimentRepository(db),
		Leads:         NewLeadRepository(db),
		BillingEvents: NewBillingEventRepository(db),
		Stats:         NewStatsRepository(db),
	}
}
