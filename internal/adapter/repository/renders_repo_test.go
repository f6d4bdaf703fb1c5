package repository

import (
	"context"
	"testing"
	"time"

	"resume-pdf-service/internal/domain"
)

// Without a configured database the repo must be a silent no-op so the
// service keeps rendering.
func TestRendersRepoWithoutPool(t *testing.T) {
	repo := NewRendersRepo(nil)

	rec := domain.NewRenderRecord(
		domain.RenderRequest{TargetURL: "http://localhost:3000/resume", SessionToken: "x"},
		1024, time.Second, nil,
	)
	if err := repo.Save(context.Background(), rec); err != nil {
		t.Fatalf("Save() err = %v, want nil without pool", err)
	}

	records, err := repo.Recent(context.Background(), 10)
	if err != nil {
		t.Fatalf("Recent() err = %v, want nil without pool", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("Recent() = %v, want empty slice", records)
	}
}
