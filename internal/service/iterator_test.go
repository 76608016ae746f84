package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"attendance/internal/models"
	"attendance/pkg/attendance"
	"attendance/pkg/locationstore"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeMessages struct {
	ch        chan kafka.Message
	mu        sync.Mutex
	committed []int64
	commitErr error
}

func newFakeMessages(values ...string) *fakeMessages {
	f := &fakeMessages{ch: make(chan kafka.Message, len(values))}
	for i, v := range values {
		f.ch <- kafka.Message{Offset: int64(i), Value: []byte(v)}
	}
	close(f.ch)
	return f
}

func (f *fakeMessages) Messages() <-chan kafka.Message { return f.ch }

func (f *fakeMessages) CommitOffset(_ context.Context, msg kafka.Message) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.committed = append(f.committed, msg.Offset)
	return f.commitErr
}

func collect(ch <-chan *models.Command) []models.Command {
	var out []models.Command
	for cmd := range ch {
		out = append(out, *cmd)
	}
	return out
}

func TestIterator_Commands(t *testing.T) {
	msgs := newFakeMessages(
		`{"action":"check_in","name":"Gym"}`,
		`not json`,
		`{"action":"select","name":" Library "}`,
	)

	got := collect(NewIterator(msgs, nil).Commands(context.Background()))
	assert.Equal(t, []models.Command{
		{Action: models.ActionCheckIn, Name: "Gym"},
		{Action: models.ActionSelect, Name: "Library"},
	}, got)
	// bad messages are committed too so they are not redelivered
	assert.Equal(t, []int64{0, 1, 2}, msgs.committed)
}

func TestIterator_NameFromKey(t *testing.T) {
	ch := make(chan kafka.Message, 1)
	ch <- kafka.Message{Key: []byte("Gym"), Value: []byte(`{"action":"check_in"}`)}
	close(ch)
	msgs := &fakeMessages{ch: ch}

	got := collect(NewIterator(msgs, nil).Commands(context.Background()))
	require.Len(t, got, 1)
	assert.Equal(t, "Gym", got[0].Name)
}

func TestIterator_CommitFailureDoesNotStop(t *testing.T) {
	msgs := newFakeMessages(`{"action":"check_in","name":"Gym"}`, `{"action":"check_in","name":"Gym"}`)
	msgs.commitErr = errors.New("rebalance in progress")

	got := collect(NewIterator(msgs, nil).Commands(context.Background()))
	assert.Len(t, got, 2)
}

func TestIterator_StopsOnCancel(t *testing.T) {
	ch := make(chan kafka.Message, 1)
	ch <- kafka.Message{Value: []byte(`{"action":"check_in","name":"Gym"}`)}
	msgs := &fakeMessages{ch: ch}

	ctx, cancel := context.WithCancel(context.Background())
	out := NewIterator(msgs, nil).Commands(ctx)
	cancel()

	// the messages channel stays open; the goroutine must still exit
	deadline := time.After(time.Second)
	for {
		select {
		case _, ok := <-out:
			if !ok {
				close(ch)
				return
			}
		case <-deadline:
			t.Fatal("iterator did not stop after cancel")
		}
	}
}

func TestDispatcher_Run(t *testing.T) {
	store := locationstore.New()
	var reports []attendance.Report
	ctrl := attendance.New(store, attendance.ReporterFunc(func(r attendance.Report) {
		reports = append(reports, r)
	}))
	require.NoError(t, ctrl.Load([]models.Record{{Name: "Gym", Latitude: 8.36008, Longitude: 124.868887}}))

	commands := make(chan *models.Command, 5)
	commands <- &models.Command{Action: models.ActionCheckIn, Name: "Gym"}
	commands <- &models.Command{Action: models.ActionCheckIn, Name: "Gym"}
	commands <- &models.Command{Action: models.ActionSelect, Name: "Gym"}
	commands <- &models.Command{Action: models.ActionCheckIn, Name: "Pool"}
	commands <- &models.Command{Action: "teleport", Name: "Gym"}
	close(commands)

	require.NoError(t, NewDispatcher(ctrl, nil).Run(context.Background(), commands))

	snap, err := store.Get("Gym")
	require.NoError(t, err)
	assert.Equal(t, 2, snap.VisitCount)
	require.Len(t, reports, 1)
	assert.Equal(t, attendance.KindNotFound, reports[0].Kind)
}

func TestDispatcher_RunCanceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := NewDispatcher(nil, nil).Run(ctx, make(chan *models.Command))
	assert.ErrorIs(t, err, context.Canceled)
}
