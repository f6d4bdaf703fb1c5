package migration

import (
	"context"
	"log/slog"

	"github.com/jackc/pgx/v4/pgxpool"
)

// RunMigrations executes all necessary database migrations on startup
func RunMigrations(ctx context.Context, pool *pgxpool.Pool) error {
	slog.Info("Starting database migrations")

	migrations := []Migration{
		{
			Name: "create_render_history",
			Up: func(ctx context.Context, pool *pgxpool.Pool) error {
				return createRenderHistory(ctx, pool)
			},
		},
		{
			Name: "index_render_history_created_at",
			Up: func(ctx context.Context, pool *pgxpool.Pool) error {
				return indexRenderHistoryCreatedAt(ctx, pool)
			},
		},
	}

	for _, m := range migrations {
		if err := m.Up(ctx, pool); err != nil {
			slog.Error("Migration failed", "name", m.Name, "error", err)
			return err
		}
		slog.Info("Migration completed", "name", m.Name)
	}

	slog.Info("All migrations completed successfully")
	return nil
}

// Migration represents a database migration
type Migration struct {
	Name string
	Up   func(ctx context.Context, pool *pgxpool.Pool) error
}

// createRenderHistory creates the render_history table if it doesn't exist
func createRenderHistory(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE TABLE IF NOT EXISTS render_history (
			id UUID PRIMARY KEY,
			target_url TEXT NOT NULL,
			status TEXT NOT NULL,
			error TEXT NOT NULL DEFAULT '',
			duration_ms BIGINT NOT NULL DEFAULT 0,
			pdf_bytes INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now()
		);
	`

	if _, err := pool.Exec(ctx, query); err != nil {
		slog.Warn("Error creating render_history table (may already exist)", "error", err)
		return nil
	}

	return nil
}

// indexRenderHistoryCreatedAt adds the recency index used by the history endpoint
func indexRenderHistoryCreatedAt(ctx context.Context, pool *pgxpool.Pool) error {
	query := `
		CREATE INDEX IF NOT EXISTS render_history_created_at_idx
		ON render_history (created_at DESC);
	`

	if _, err := pool.Exec(ctx, query); err != nil {
		slog.Warn("Error creating render_history index (may already exist)", "error", err)
		return nil
	}

	return nil
}
