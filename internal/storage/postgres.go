package storage

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"attendance/internal/models"
)

const postgresSchema = `CREATE TABLE IF NOT EXISTS visits (
	id          UUID PRIMARY KEY,
	name        TEXT NOT NULL,
	visit_count INTEGER NOT NULL,
	visited_at  TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS visits_name_idx ON visits (name);`

// pgxConn is the part of pgxpool.Pool the log uses.
type pgxConn interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Close()
}

type PostgresLog struct {
	db pgxConn
}

// NewPostgresLog connects to databaseURL and makes sure the visits table
// exists.
func NewPostgresLog(ctx context.Context, databaseURL string) (*PostgresLog, error) {
	pool, err := pgxpool.New(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create postgres pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}
	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create visits table: %w", err)
	}
	return &PostgresLog{db: pool}, nil
}

func (l *PostgresLog) Append(ctx context.Context, ev models.VisitEvent) error {
	_, err := l.db.Exec(ctx,
		`INSERT INTO visits (id, name, visit_count, visited_at) VALUES ($1, $2, $3, $4)
		 ON CONFLICT (id) DO NOTHING`,
		ev.ID, ev.Name, ev.VisitCount, ev.VisitedAt)
	if err != nil {
		return fmt.Errorf("failed to log visit to %q: %w", ev.Name, err)
	}
	return nil
}

func (l *PostgresLog) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := l.db.Query(ctx, `SELECT name, COUNT(*) FROM visits GROUP BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to count visits: %w", err)
	}
	counts := make(map[string]int)
	var name string
	var n int
	_, err = pgx.ForEachRow(rows, []any{&name, &n}, func() error {
		counts[name] = n
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read visit counts: %w", err)
	}
	return counts, nil
}

func (l *PostgresLog) Close() error {
	l.db.Close()
	return nil
}

var _ VisitLog = (*PostgresLog)(nil)
