package domain

import "time"

// PlatformStats holds platform-wide counters shown on the admin overview.
type PlatformStats struct {
	Experiments       int64
	ActiveExperiments int64
	Leads             int64
	BillingEvents     int64
	GeneratedAt       time.Time
}
