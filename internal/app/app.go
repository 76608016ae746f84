// Package app assembles the store, controller and board into one running
// attendance map and keeps the surfaces bound across reloads.
package app

import (
	"go.uber.org/zap"

	"attendance/internal/models"
	"attendance/pkg/attendance"
	"attendance/pkg/geo"
	"attendance/pkg/locationstore"
	"attendance/pkg/render"
)

// Map is one attendance map: a location store, the controller over it, and
// the board the browser draws.
type Map struct {
	Store      *locationstore.Store
	Controller *attendance.Controller
	Board      *render.Board

	zoom   int
	shared []attendance.Surface
	logger *zap.Logger
}

type Option func(*Map)

// WithSharedSurface binds s to every location on each load, e.g. an event
// publisher or the visit log.
func WithSharedSurface(s attendance.Surface) Option {
	return func(m *Map) {
		if s != nil {
			m.shared = append(m.shared, s)
		}
	}
}

func WithLogger(l *zap.Logger) Option {
	return func(m *Map) {
		if l != nil {
			m.logger = l
		}
	}
}

// WithStore replaces the default store, e.g. one built with a test clock.
func WithStore(store *locationstore.Store) Option {
	return func(m *Map) {
		if store != nil {
			m.Store = store
		}
	}
}

func New(reporter attendance.Reporter, zoom int, opts ...Option) *Map {
	m := &Map{
		Store:  locationstore.New(),
		Board:  render.NewBoard(render.View{Zoom: zoom}),
		zoom:   zoom,
		logger: zap.NewNop(),
	}
	for _, opt := range opts {
		opt(m)
	}
	m.Controller = attendance.New(m.Store, reporter, attendance.WithLogger(m.logger))
	return m
}

// Load installs records and redraws the board: one card and one marker per
// location, plus the shared surfaces. The view is centred on the first
// location. The redraw happens inside the controller's load, so check-ins
// wait for the new surfaces. A rejected load leaves the board and the
// bindings untouched.
func (m *Map) Load(records []models.Record) error {
	view := render.View{Zoom: m.zoom}
	points := make([]models.Coordinates, len(records))
	for i, r := range records {
		points[i] = r.Coordinates()
	}
	if c, ok := geo.Center(points); ok {
		view.Lat, view.Lon = c.Lat, c.Lon
	}

	err := m.Controller.Reload(records, func(records []models.Record) map[string][]attendance.Surface {
		m.Board.Reset(view)
		bindings := make(map[string][]attendance.Surface, len(records))
		for _, r := range records {
			surfaces := []attendance.Surface{
				render.NewCardSurface(m.Board, r.Name),
				render.NewMarkerSurface(m.Board, r, m.zoom),
			}
			bindings[r.Name] = append(surfaces, m.shared...)
		}
		return bindings
	})
	if err != nil {
		return err
	}
	m.logger.Info("map ready",
		zap.Int("locations", len(records)),
		zap.Float64("lat", view.Lat),
		zap.Float64("lon", view.Lon))
	return nil
}

// Snapshots returns the current state of every location in load order.
func (m *Map) Snapshots() []models.Snapshot {
	out := make([]models.Snapshot, 0, m.Store.Len())
	for s := range m.Store.All() {
		out = append(out, s)
	}
	return out
}
