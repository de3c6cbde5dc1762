package turso_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/emiliopalmerini/authorsite/internal/adapters/turso"
	"github.com/emiliopalmerini/authorsite/internal/domain"
)

func TestLeadRepository(t *testing.T) {
	db := testDB(t)
	ctx := context.Background()
	repo := turso.NewLeadRepository(db)

	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	leads := []*domain.Lead{
		{ID: "lead-1", Email: "first@example.com", Name: "First", Source: "hero", Page: "landing", CreatedAt: base},
		{ID: "lead-2", Email: "second@example.com", CreatedAt: base.Add(time.Minute)},
	}
	for _, l := range leads {
		if err := repo.Create(ctx, l); err != nil {
			t.Fatalf("Create %s failed: %v", l.ID, err)
		}
	}

	got, err := repo.GetByEmail(ctx, "first@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got == nil || got.ID != "lead-1" || got.Name != "First" || got.Source != "hero" || got.Page != "landing" {
		t.Errorf("unexpected lead: %+v", got)
	}
	if !got.CreatedAt.Equal(base) {
		t.Errorf("CreatedAt = %v, want %v", got.CreatedAt, base)
	}

	missing, err := repo.GetByEmail(ctx, "nobody@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if missing != nil {
		t.Errorf("expected nil for missing lead, got %+v", missing)
	}

	list, err := repo.List(ctx, 10)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(list) != 2 || list[0].ID != "lead-2" || list[1].ID != "lead-1" {
		t.Fatalf("expected newest first, got %+v", list)
	}
	if list[0].Name != "" || list[0].Source != "" {
		t.Errorf("expected empty optional fields, got %+v", list[0])
	}

	limited, err := repo.List(ctx, 1)
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(limited) != 1 {
		t.Errorf("expected 1 lead with limit 1, got %d", len(limited))
	}

	dup := &domain.Lead{ID: "lead-3", Email: "first@example.com", CreatedAt: base}
	if err := repo.Create(ctx, dup); !errors.Is(err, domain.ErrConflict) {
		t.Errorf("duplicate Create error = %v, want ErrConflict", err)
	}
}

func TestTestDB_Isolated(t *testing.T) {
	ctx := context.Background()
	first := turso.NewLeadRepository(testDB(t))
	second := turso.NewLeadRepository(testDB(t))

	lead := &domain.Lead{ID: "lead-1", Email: "only@example.com", CreatedAt: time.Now().UTC()}
	if err := first.Create(ctx, lead); err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	got, err := second.GetByEmail(ctx, "only@example.com")
	if err != nil {
		t.Fatalf("GetByEmail failed: %v", err)
	}
	if got != nil {
		t.Errorf("lead leaked into a separate database: %+v", got)
	}
	if err := second.Create(ctx, lead); err != nil {
		t.Errorf("Create in second database failed: %v", err)
	}
}
