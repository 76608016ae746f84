package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"attendance/internal/models"
)

const sqliteSchema = `CREATE TABLE IF NOT EXISTS visits (
	id          TEXT PRIMARY KEY,
	name        TEXT NOT NULL,
	visit_count INTEGER NOT NULL,
	visited_at  TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS visits_name_idx ON visits (name);`

// SQLiteLog is the visit log used when no Postgres server is configured.
type SQLiteLog struct {
	db *sql.DB
}

// NewSQLiteLog opens (and creates if needed) the database at path.
// ":memory:" gives a private in-memory log.
func NewSQLiteLog(path string) (*SQLiteLog, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open sqlite %s: %w", path, err)
	}
	// one writer at a time; an in-memory database also lives on one connection
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(sqliteSchema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to create visits table: %w", err)
	}
	return &SQLiteLog{db: db}, nil
}

func (l *SQLiteLog) Append(ctx context.Context, ev models.VisitEvent) error {
	_, err := l.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO visits (id, name, visit_count, visited_at) VALUES (?, ?, ?, ?)`,
		ev.ID.String(), ev.Name, ev.VisitCount, ev.VisitedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("failed to log visit to %q: %w", ev.Name, err)
	}
	return nil
}

func (l *SQLiteLog) Counts(ctx context.Context) (map[string]int, error) {
	rows, err := l.db.QueryContext(ctx, `SELECT name, COUNT(*) FROM visits GROUP BY name`)
	if err != nil {
		return nil, fmt.Errorf("failed to count visits: %w", err)
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var name string
		var n int
		if err := rows.Scan(&name, &n); err != nil {
			return nil, fmt.Errorf("failed to read visit counts: %w", err)
		}
		counts[name] = n
	}
	return counts, rows.Err()
}

func (l *SQLiteLog) Close() error {
	return l.db.Close()
}

var _ VisitLog = (*SQLiteLog)(nil)
