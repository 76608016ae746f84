// Package attendance binds interaction events to the location store and
// keeps every presentation surface of a location in step with it.
//
// Two operations drive it:
//   - OnCheckIn mutates the store (one more visit) and pushes the new
//     snapshot to the counter and popup of every bound surface.
//   - OnMarkerSelect only re-displays the current state: it highlights the
//     marker and refreshes the popup, without counting a visit.
//
// A mutation and its fan-out happen under one lock, so no caller can observe
// the store ahead of its surfaces.
package attendance

import (
	"sync"

	"go.uber.org/zap"

	"attendance/internal/models"
	"attendance/pkg/locationstore"
)

// Store is the subset of the location store the controller needs.
type Store interface {
	Load(records []models.Record) error
	RecordVisit(name string) (models.Snapshot, error)
	Get(name string) (models.Snapshot, error)
}

type Controller struct {
	mu       sync.Mutex
	store    Store
	reporter Reporter
	logger   *zap.Logger
	bindings map[string][]Surface
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.logger = l
		}
	}
}

// New returns a controller over store. A nil reporter discards reports.
func New(store Store, reporter Reporter, opts ...Option) *Controller {
	if reporter == nil {
		reporter = ReporterFunc(func(Report) {})
	}
	c := &Controller{
		store:    store,
		reporter: reporter,
		logger:   zap.NewNop(),
		bindings: make(map[string][]Surface),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Binder builds the surfaces of a freshly loaded record set, keyed by
// location name. It runs inside the controller's critical section and must
// not call back into the controller.
type Binder func(records []models.Record) map[string][]Surface

// Load replaces the store content. On success every binding is dropped,
// since the surfaces belonged to the previous location set.
func (c *Controller) Load(records []models.Record) error {
	return c.Reload(records, nil)
}

// Reload replaces the store content and installs the surfaces returned by
// bind in the same critical section, so no check-in can land between the
// new store state and its surfaces. On error the store, the bindings and
// bind are all left alone.
func (c *Controller) Reload(records []models.Record, bind Binder) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if err := c.store.Load(records); err != nil {
		c.reporter.Report(NewReport(err, "op", "load"))
		return err
	}
	c.bindings = make(map[string][]Surface)
	if bind != nil {
		for name, surfaces := range bind(records) {
			c.bindLocked(name, surfaces)
		}
	}
	c.logger.Info("locations loaded", zap.Int("count", len(records)))
	return nil
}

// Bind registers surfaces for the location called name. Surfaces added by
// repeated calls accumulate.
func (c *Controller) Bind(name string, surfaces ...Surface) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bindLocked(name, surfaces)
}

func (c *Controller) bindLocked(name string, surfaces []Surface) {
	for _, s := range surfaces {
		if s != nil {
			c.bindings[name] = append(c.bindings[name], s)
		}
	}
}

func (c *Controller) Unbind(name string) {
	c.mu.Lock()
	delete(c.bindings, name)
	c.mu.Unlock()
}

// Reset drops every binding. The store is left as it is.
func (c *Controller) Reset() {
	c.mu.Lock()
	c.bindings = make(map[string][]Surface)
	c.mu.Unlock()
}

// Bound reports how many surfaces are bound to name.
func (c *Controller) Bound(name string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.bindings[name])
}

// OnCheckIn records a visit to name and refreshes the counter and popup of
// every surface bound to it.
func (c *Controller) OnCheckIn(name string) (models.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.store.RecordVisit(name)
	if err != nil {
		c.reporter.Report(NewReport(err, "op", "check_in", "name", name))
		return models.Snapshot{}, err
	}
	for _, s := range c.bindings[name] {
		s.UpdateCounter(snap)
		s.UpdatePopup(snap)
	}
	c.logger.Debug("check-in",
		zap.String("name", name),
		zap.Int("visits", snap.VisitCount),
		zap.Int("surfaces", len(c.bindings[name])))
	return snap, nil
}

// OnMarkerSelect shows the current state of name without recording a visit.
func (c *Controller) OnMarkerSelect(name string) (models.Snapshot, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	snap, err := c.store.Get(name)
	if err != nil {
		c.reporter.Report(NewReport(err, "op", "select", "name", name))
		return models.Snapshot{}, err
	}
	for _, s := range c.bindings[name] {
		s.HighlightOnMap(snap)
		s.UpdatePopup(snap)
	}
	return snap, nil
}

var _ Store = (*locationstore.Store)(nil)
