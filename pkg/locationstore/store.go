// Package locationstore holds the canonical set of locations of a session and
// their visit counters. It performs no I/O and knows nothing about how the
// locations are displayed.
package locationstore

import (
	"iter"
	"strings"
	"sync"
	"time"

	"attendance/internal/models"
	"attendance/pkg/geo"
)

type entry struct {
	record        models.Record
	visitCount    int
	lastVisitedAt *time.Time
}

func (e *entry) snapshot() models.Snapshot {
	s := models.Snapshot{Name: e.record.Name, VisitCount: e.visitCount}
	if e.lastVisitedAt != nil {
		t := *e.lastVisitedAt
		s.LastVisitedAt = &t
	}
	return s
}

// Store is the single source of truth for location records and counters.
// It is safe for concurrent use.
type Store struct {
	mu      sync.RWMutex
	entries []*entry
	byName  map[string]*entry
	now     func() time.Time
}

type Option func(*Store)

// WithClock overrides the time source used to stamp visits.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

func New(opts ...Option) *Store {
	s := &Store{
		byName: make(map[string]*entry),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Load replaces the whole content of the store. The records are validated
// first; on any error the previous content is left untouched.
func (s *Store) Load(records []models.Record) error {
	entries := make([]*entry, 0, len(records))
	byName := make(map[string]*entry, len(records))
	firstSeen := make(map[string]int, len(records))

	for i, r := range records {
		if err := Validate(i, r); err != nil {
			return err
		}
		if first, dup := firstSeen[r.Name]; dup {
			return &DuplicateNameError{Name: r.Name, First: first, Again: i}
		}
		firstSeen[r.Name] = i
		e := &entry{record: r}
		entries = append(entries, e)
		byName[r.Name] = e
	}

	s.mu.Lock()
	s.entries = entries
	s.byName = byName
	s.mu.Unlock()
	return nil
}

// Validate checks a single record the way Load does.
func Validate(index int, r models.Record) error {
	if strings.TrimSpace(r.Name) == "" {
		return &InvalidDataError{Index: index, Reason: "missing name"}
	}
	if err := geo.ValidCoordinates(r.Latitude, r.Longitude); err != nil {
		return &InvalidDataError{Index: index, Name: r.Name, Reason: err.Error()}
	}
	return nil
}

// RecordVisit increments the visit counter of name by one and stamps it with
// the current time.
func (s *Store) RecordVisit(name string) (models.Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.byName[name]
	if !ok {
		return models.Snapshot{}, &NotFoundError{Name: name}
	}
	now := s.now()
	e.visitCount++
	e.lastVisitedAt = &now
	return e.snapshot(), nil
}

func (s *Store) Get(name string) (models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byName[name]
	if !ok {
		return models.Snapshot{}, &NotFoundError{Name: name}
	}
	return e.snapshot(), nil
}

// Record returns the loaded record for name.
func (s *Store) Record(name string) (models.Record, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.byName[name]
	if !ok {
		return models.Record{}, &NotFoundError{Name: name}
	}
	return e.record, nil
}

// Records returns all loaded records in load order.
func (s *Store) Records() []models.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Record, len(s.entries))
	for i, e := range s.entries {
		out[i] = e.record
	}
	return out
}

// All yields a snapshot of every location in load order. Each iteration
// reads the current state, so the sequence can be ranged over repeatedly.
func (s *Store) All() iter.Seq[models.Snapshot] {
	return func(yield func(models.Snapshot) bool) {
		s.mu.RLock()
		entries := s.entries
		s.mu.RUnlock()

		for _, e := range entries {
			s.mu.RLock()
			snap := e.snapshot()
			s.mu.RUnlock()
			if !yield(snap) {
				return
			}
		}
	}
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}
