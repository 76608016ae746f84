package locationstore

import (
	"errors"
	"math"
	"slices"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"attendance/internal/models"
)

// stepClock returns a clock that advances one second per call.
func stepClock(start time.Time) func() time.Time {
	now := start
	return func() time.Time {
		now = now.Add(time.Second)
		return now
	}
}

var campus = []models.Record{
	{Name: "Gym", Latitude: 8.36008, Longitude: 124.868887},
	{Name: "Library", Latitude: 8.3595, Longitude: 124.8681},
	{Name: "Canteen", Latitude: 8.3612, Longitude: 124.8699},
}

func TestStore_LoadAll(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(campus))

	got := slices.Collect(s.All())
	want := []models.Snapshot{{Name: "Gym"}, {Name: "Library"}, {Name: "Canteen"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("All() mismatch (-want +got):\n%s", diff)
	}

	// the sequence is restartable
	assert.Len(t, slices.Collect(s.All()), 3)
	assert.Equal(t, 3, s.Len())
	assert.Equal(t, campus, s.Records())
}

func TestStore_AllStopsEarly(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(campus))

	var names []string
	for snap := range s.All() {
		names = append(names, snap.Name)
		if snap.Name == "Library" {
			break
		}
	}
	assert.Equal(t, []string{"Gym", "Library"}, names)
}

func TestStore_RecordVisit(t *testing.T) {
	start := time.Date(2024, 9, 2, 8, 0, 0, 0, time.UTC)
	s := New(WithClock(stepClock(start)))
	require.NoError(t, s.Load(campus))

	var last models.Snapshot
	for i := 0; i < 3; i++ {
		snap, err := s.RecordVisit("Gym")
		require.NoError(t, err)
		assert.Equal(t, i+1, snap.VisitCount)
		last = snap
	}

	require.NotNil(t, last.LastVisitedAt)
	assert.Equal(t, start.Add(3*time.Second), *last.LastVisitedAt)

	got, err := s.Get("Gym")
	require.NoError(t, err)
	assert.Equal(t, last, got)

	untouched, err := s.Get("Library")
	require.NoError(t, err)
	assert.Zero(t, untouched.VisitCount)
	assert.Nil(t, untouched.LastVisitedAt)
}

func TestStore_SnapshotIsACopy(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(campus))

	snap, err := s.RecordVisit("Gym")
	require.NoError(t, err)
	*snap.LastVisitedAt = time.Time{}

	again, err := s.Get("Gym")
	require.NoError(t, err)
	assert.False(t, again.LastVisitedAt.IsZero())
}

func TestStore_UnknownName(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(campus))
	before := slices.Collect(s.All())

	_, err := s.RecordVisit("Pool")
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrNotFound))

	var nf *NotFoundError
	require.ErrorAs(t, err, &nf)
	assert.Equal(t, "Pool", nf.Name)

	assert.Equal(t, before, slices.Collect(s.All()))

	_, err = s.Get("Pool")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = s.Record("Pool")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestStore_EmptyStore(t *testing.T) {
	s := New()
	_, err := s.RecordVisit("Gym")
	assert.ErrorIs(t, err, ErrNotFound)
	assert.Zero(t, s.Len())
}

func TestStore_LoadRejects(t *testing.T) {
	tests := []struct {
		name    string
		records []models.Record
		wantErr error
	}{
		{
			name:    "duplicate names",
			records: []models.Record{campus[0], {Name: "Gym", Latitude: 1, Longitude: 1}},
			wantErr: ErrDuplicateName,
		},
		{
			name:    "missing name",
			records: []models.Record{{Name: "  ", Latitude: 1, Longitude: 1}},
			wantErr: ErrInvalidData,
		},
		{
			name:    "non-finite latitude",
			records: []models.Record{{Name: "Field", Latitude: math.NaN(), Longitude: 1}},
			wantErr: ErrInvalidData,
		},
		{
			name:    "longitude out of range",
			records: []models.Record{{Name: "Field", Latitude: 1, Longitude: 200}},
			wantErr: ErrInvalidData,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New()
			err := s.Load(tt.records)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Zero(t, s.Len(), "a rejected first load must leave the store empty")
		})
	}
}

func TestStore_FailedReloadKeepsPriorState(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(campus))
	_, err := s.RecordVisit("Gym")
	require.NoError(t, err)

	err = s.Load([]models.Record{campus[1], campus[1]})
	var dup *DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, "Library", dup.Name)
	assert.Equal(t, 0, dup.First)
	assert.Equal(t, 1, dup.Again)

	gym, err := s.Get("Gym")
	require.NoError(t, err)
	assert.Equal(t, 1, gym.VisitCount)
	assert.Equal(t, 3, s.Len())
}

func TestStore_ReloadResetsCounters(t *testing.T) {
	s := New()
	require.NoError(t, s.Load(campus))
	_, err := s.RecordVisit("Gym")
	require.NoError(t, err)

	require.NoError(t, s.Load(campus[:1]))
	gym, err := s.Get("Gym")
	require.NoError(t, err)
	assert.Zero(t, gym.VisitCount)
	assert.Nil(t, gym.LastVisitedAt)
	_, err = s.Get("Library")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestInvalidDataError_Message(t *testing.T) {
	err := &InvalidDataError{Index: 2, Reason: "missing name"}
	assert.Equal(t, "record 2: missing name", err.Error())

	err = &InvalidDataError{Index: 0, Name: "Gym", Reason: "bad latitude"}
	assert.Equal(t, `record 0 ("Gym"): bad latitude`, err.Error())
}
