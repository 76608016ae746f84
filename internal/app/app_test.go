package app

import (
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance/internal/models"
	"attendance/pkg/attendance"
	"attendance/pkg/locationstore"
	"attendance/pkg/render"
)

var campus = []models.Record{
	{Name: "Gym", Latitude: 52.1, Longitude: 4.3},
	{Name: "Library", Latitude: 52.2, Longitude: 4.4, Address: "Main St 1"},
}

func TestMap_Load(t *testing.T) {
	shared := &countingSurface{}
	m := New(nil, 18, WithSharedSurface(shared), WithSharedSurface(nil))
	require.NoError(t, m.Load(campus))

	st := m.Board.State()
	assert.Equal(t, render.View{Lat: 52.1, Lon: 4.3, Zoom: 18}, st.View)
	require.Len(t, st.Cards, 2)
	require.Len(t, st.Markers, 2)
	assert.Equal(t, "0", st.Cards[0].Counter)
	assert.Equal(t, "Last checked in: Never", st.Cards[0].LastVisit)
	assert.Equal(t, 3, m.Controller.Bound("Gym"))
}

func TestMap_CheckInUpdatesBoard(t *testing.T) {
	at := time.Date(2024, 9, 2, 8, 30, 0, 0, time.UTC)
	store := locationstore.New(locationstore.WithClock(func() time.Time { return at }))
	shared := &countingSurface{}
	m := New(nil, 18, WithStore(store), WithSharedSurface(shared))
	require.NoError(t, m.Load(campus))

	_, err := m.Controller.OnCheckIn("Library")
	require.NoError(t, err)

	st := m.Board.State()
	assert.Equal(t, "1", st.Cards[1].Counter)
	assert.Equal(t, "Last checked in: Sep 2, 2024, 8:30:00 AM", st.Cards[1].LastVisit)
	assert.Contains(t, st.Markers[1].Content, `<span class="attendance-count">1</span>`)
	assert.Contains(t, st.Markers[1].Content, "Main St 1")
	require.NotNil(t, st.OpenPopup)
	assert.Equal(t, 1, *st.OpenPopup)
	assert.Equal(t, 1, shared.counter)

	snaps := m.Snapshots()
	require.Len(t, snaps, 2)
	assert.Equal(t, 0, snaps[0].VisitCount)
	assert.Equal(t, 1, snaps[1].VisitCount)
}

func TestMap_RejectedReloadKeepsBoard(t *testing.T) {
	m := New(nil, 18)
	require.NoError(t, m.Load(campus))
	before := m.Board.State()

	err := m.Load([]models.Record{{Name: "A"}, {Name: "A"}})
	require.ErrorIs(t, err, locationstore.ErrDuplicateName)

	assert.Equal(t, before, m.Board.State())
	assert.Equal(t, 2, m.Controller.Bound("Gym"))
}

func TestMap_ReloadRedraws(t *testing.T) {
	m := New(nil, 16)
	require.NoError(t, m.Load(campus))
	_, err := m.Controller.OnCheckIn("Gym")
	require.NoError(t, err)

	require.NoError(t, m.Load([]models.Record{{Name: "Pool", Latitude: -33.9, Longitude: 151.2}}))

	st := m.Board.State()
	require.Len(t, st.Cards, 1)
	assert.Equal(t, "Pool", st.Cards[0].Name)
	assert.Equal(t, render.View{Lat: -33.9, Lon: 151.2, Zoom: 16}, st.View)
	assert.Zero(t, m.Controller.Bound("Gym"))
}

func TestMap_ReloadRacingCheckIns(t *testing.T) {
	records := make([]models.Record, 2000)
	for i := range records {
		records[i] = models.Record{Name: fmt.Sprintf("Room %d", i), Latitude: float64(i % 90), Longitude: 4.3}
	}
	last := records[len(records)-1].Name

	m := New(nil, 18)
	require.NoError(t, m.Load(records))

	var unbound atomic.Int64
	stop := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		for {
			select {
			case <-stop:
				return
			default:
			}
			if m.Controller.Bound(last) == 0 {
				unbound.Add(1)
			}
			_, _ = m.Controller.OnCheckIn(last)
		}
	}()

	for i := 0; i < 10; i++ {
		require.NoError(t, m.Load(records))
	}
	close(stop)
	wg.Wait()

	assert.Zero(t, unbound.Load(), "check-in path saw the location without surfaces")
	st := m.Board.State()
	require.Len(t, st.Cards, len(records))
	for i, snap := range m.Snapshots() {
		assert.Equal(t, strconv.Itoa(snap.VisitCount), st.Cards[i].Counter, snap.Name)
	}
}

type countingSurface struct {
	counter int
}

func (c *countingSurface) UpdateCounter(models.Snapshot) { c.counter++ }
func (c *countingSurface) UpdatePopup(models.Snapshot) {}
func (c *countingSurface) HighlightOnMap(models.Snapshot) {}

var _ attendance.Surface = (*countingSurface)(nil)
