package repository

import (
	"context"
	"time"

	"github.com/jackc/pgx/v4/pgxpool"

	"resume-pdf-service/internal/domain"
)

// RendersRepo persists render attempt outcomes. A nil pool disables
// persistence without disabling the service.
type RendersRepo struct {
	pool *pgxpool.Pool
}

func NewRendersRepo(pool *pgxpool.Pool) *RendersRepo {
	return &RendersRepo{pool: pool}
}

func (r *RendersRepo) Save(ctx context.Context, rec *domain.RenderRecord) error {
	if r.pool == nil {
		return nil
	}

	_, err := r.pool.Exec(ctx, `INSERT INTO render_history (id, target_url, status, error, duration_ms, pdf_bytes, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7)`,
		rec.ID, rec.TargetURL, rec.Status, rec.Error, rec.Duration.Milliseconds(), rec.PDFBytes, rec.CreatedAt)
	return err
}

func (r *RendersRepo) Recent(ctx context.Context, limit int) ([]domain.RenderRecord, error) {
	records := []domain.RenderRecord{}
	if r.pool == nil {
		return records, nil
	}

	rows, err := r.pool.Query(ctx, `SELECT id, target_url, status, error, duration_ms, pdf_bytes, created_at
		FROM render_history ORDER BY created_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var rec domain.RenderRecord
		var durationMs int64
		if err := rows.Scan(&rec.ID, &rec.TargetURL, &rec.Status, &rec.Error, &durationMs, &rec.PDFBytes, &rec.CreatedAt); err != nil {
			return nil, err
		}
		rec.Duration = time.Duration(durationMs) * time.Millisecond
		records = append(records, rec)
	}
	return records, rows.Err()
}
