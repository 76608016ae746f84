package storage

import (
	"context"

	"attendance/internal/models"
)

// VisitLog keeps every check-in beyond the lifetime of the process. It is
// an audit trail: counters in the location store are never restored from it.
type VisitLog interface {
	Append(ctx context.Context, ev models.VisitEvent) error
	// Counts returns the number of logged visits per location name.
	Counts(ctx context.Context) (map[string]int, error)
	Close() error
}
