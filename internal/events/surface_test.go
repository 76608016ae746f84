package events

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"attendance/internal/models"
	"attendance/internal/storage"
	"attendance/pkg/attendance"
	"attendance/pkg/locationstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type recordingSink struct {
	mu     sync.Mutex
	events []models.VisitEvent
	err    error
}

func (r *recordingSink) Send(_ context.Context, ev models.VisitEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recordingSink) names() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]string, len(r.events))
	for i, ev := range r.events {
		out[i] = ev.Name
	}
	return out
}

func TestSurface_DeliversCheckIns(t *testing.T) {
	sink := &recordingSink{}
	s := NewSurface("test", sink, 8, nil)

	store := locationstore.New()
	ctrl := attendance.New(store, nil)
	require.NoError(t, ctrl.Load([]models.Record{
		{Name: "Gym", Latitude: 1, Longitude: 1},
		{Name: "Library", Latitude: 2, Longitude: 2},
	}))
	ctrl.Bind("Gym", s)
	ctrl.Bind("Library", s)

	_, err := ctrl.OnCheckIn("Gym")
	require.NoError(t, err)
	_, err = ctrl.OnMarkerSelect("Library")
	require.NoError(t, err)
	_, err = ctrl.OnCheckIn("Library")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		defer close(done)
		_ = s.Run(ctx)
	}()

	require.Eventually(t, func() bool { return len(sink.names()) == 2 }, time.Second, 5*time.Millisecond)
	cancel()
	<-done

	assert.Equal(t, []string{"Gym", "Library"}, sink.names())
	assert.Equal(t, 1, sink.events[0].VisitCount)
	assert.False(t, sink.events[0].VisitedAt.IsZero())
}

func TestSurface_DropsWhenFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	s := NewSurface("test", &recordingSink{}, 1, zap.New(core))

	s.UpdateCounter(models.Snapshot{Name: "Gym", VisitCount: 1})
	s.UpdateCounter(models.Snapshot{Name: "Gym", VisitCount: 2})

	assert.Equal(t, 1, s.Pending())
	require.Equal(t, 1, logs.FilterMessage("event queue full, dropping visit").Len())
}

func TestSurface_DrainsOnShutdown(t *testing.T) {
	sink := &recordingSink{}
	s := NewSurface("test", sink, 4, nil)
	for i := 1; i <= 3; i++ {
		s.UpdateCounter(models.Snapshot{Name: "Gym", VisitCount: i})
	}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))

	assert.Len(t, sink.names(), 3)
	assert.Zero(t, s.Pending())
}

func TestSurface_SinkErrorsAreLogged(t *testing.T) {
	core, logs := observer.New(zap.ErrorLevel)
	s := NewSurface("test", &recordingSink{err: errors.New("broker down")}, 4, zap.New(core))
	s.UpdateCounter(models.Snapshot{Name: "Gym", VisitCount: 1})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))

	entries := logs.FilterMessage("failed to deliver visit event").All()
	require.Len(t, entries, 1)
	assert.Equal(t, "Gym", entries[0].ContextMap()["name"])
}

func TestSurface_ReportsLostEvents(t *testing.T) {
	var mu sync.Mutex
	var reports []attendance.Report
	reporter := attendance.ReporterFunc(func(r attendance.Report) {
		mu.Lock()
		defer mu.Unlock()
		reports = append(reports, r)
	})
	core, logs := observer.New(zap.DebugLevel)
	s := NewSurface("kafka:visits", &recordingSink{err: errors.New("broker down")}, 1, zap.New(core), WithReporter(reporter))

	s.UpdateCounter(models.Snapshot{Name: "Gym", VisitCount: 1})
	s.UpdateCounter(models.Snapshot{Name: "Gym", VisitCount: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, reports, 2)
	assert.Equal(t, attendance.KindDelivery, reports[0].Kind)
	assert.Equal(t, "event queue full, dropping visit", reports[0].Message)
	assert.Equal(t, "2", reports[0].Context["visits"])
	assert.Equal(t, "kafka:visits", reports[0].Context["sink"])
	assert.Equal(t, "failed to deliver visit event: broker down", reports[1].Message)
	assert.Equal(t, "1", reports[1].Context["visits"])
	// reported once, not logged as well
	assert.Zero(t, logs.FilterMessageSnippet("visit").Len())
}

func TestLogSurface(t *testing.T) {
	log, err := storage.NewSQLiteLog(":memory:")
	require.NoError(t, err)
	defer log.Close()

	s := NewLogSurface(log, nil)
	s.UpdateCounter(models.Snapshot{Name: "Gym", VisitCount: 1})
	s.UpdateCounter(models.Snapshot{Name: "Gym", VisitCount: 2})
	s.UpdatePopup(models.Snapshot{Name: "Gym", VisitCount: 2})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	require.NoError(t, s.Run(ctx))

	counts, err := log.Counts(context.Background())
	require.NoError(t, err)
	assert.Equal(t, map[string]int{"Gym": 2}, counts)
}
