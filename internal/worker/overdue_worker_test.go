package worker

import (
	"context"
	"errors"
	"testing"
	"time"

	"taskLists/internal/events"
	"taskLists/internal/models/nullable"
	"taskLists/internal/models/task"
	"taskLists/internal/repository/inmemory"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingPublisher struct {
	events []events.Event
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event events.Event) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

func newTask(t *testing.T, store *inmemory.Storage, title string, due *time.Time) *task.Task {
	t.Helper()
	tk := &task.Task{Title: title, Priority: task.DefaultPriority, DueDate: due}
	require.NoError(t, store.CreateTask(context.Background(), tk))
	return tk
}

func TestOverdueWorker_Check(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	pub := &recordingPublisher{}

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	future := now.Add(time.Hour)

	late := newTask(t, store, "late", &past)
	newTask(t, store, "later", &future)
	newTask(t, store, "no date", nil)
	done := newTask(t, store, "done", &past)
	_, err := store.UpdateTask(ctx, done.ID, task.Patch{IsCompleted: nullable.Value(true)})
	require.NoError(t, err)

	w := NewOverdueWorker(store, pub, time.Minute, 10)
	w.now = func() time.Time { return now }

	assert.Equal(t, 1, w.Check(ctx))
	require.Len(t, pub.events, 1)
	assert.Equal(t, events.TaskOverdue, pub.events[0].Type)
	assert.Equal(t, late.ID, pub.events[0].ID)

	// announced once
	assert.Equal(t, 0, w.Check(ctx))
	assert.Len(t, pub.events, 1)

	// a new due date is announced again
	earlier := past.Add(-time.Hour)
	_, err = store.UpdateTask(ctx, late.ID, task.Patch{DueDate: nullable.Value(earlier)})
	require.NoError(t, err)
	assert.Equal(t, 1, w.Check(ctx))
}

func TestOverdueWorker_ForgetsCompletedTasks(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	pub := &recordingPublisher{}

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	late := newTask(t, store, "late", &past)

	w := NewOverdueWorker(store, pub, time.Minute, 10)
	w.now = func() time.Time { return now }
	require.Equal(t, 1, w.Check(ctx))

	_, err := store.UpdateTask(ctx, late.ID, task.Patch{IsCompleted: nullable.Value(true)})
	require.NoError(t, err)
	w.Check(ctx)
	assert.NotContains(t, w.announced, late.ID)

	_, err = store.UpdateTask(ctx, late.ID, task.Patch{IsCompleted: nullable.Value(false)})
	require.NoError(t, err)
	assert.Equal(t, 1, w.Check(ctx))
	assert.Len(t, pub.events, 2)
}

func TestOverdueWorker_BatchSize(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	pub := &recordingPublisher{}

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	for range 5 {
		newTask(t, store, "late", &past)
	}

	w := NewOverdueWorker(store, pub, time.Minute, 2)
	w.now = func() time.Time { return now }

	assert.Equal(t, 2, w.Check(ctx))
	assert.Equal(t, 2, w.Check(ctx))
	assert.Equal(t, 1, w.Check(ctx))
	assert.Equal(t, 0, w.Check(ctx))
}

func TestOverdueWorker_BatchCapKeepsAnnouncedTasks(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	pub := &recordingPublisher{}

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	soon := now.Add(30 * time.Minute)
	past := now.Add(-time.Hour)
	newTask(t, store, "first", &soon)
	newTask(t, store, "second", &soon)
	newTask(t, store, "late", &past)

	w := NewOverdueWorker(store, pub, time.Minute, 1)
	w.now = func() time.Time { return now }
	assert.Equal(t, 1, w.Check(ctx))

	now = now.Add(time.Hour)
	for range 4 {
		w.Check(ctx)
	}

	perTask := make(map[int64]int)
	for _, e := range pub.events {
		perTask[e.ID]++
	}
	assert.Equal(t, map[int64]int{1: 1, 2: 1, 3: 1}, perTask)
}

func TestOverdueWorker_PublishFailureRetriesNextTime(t *testing.T) {
	ctx := context.Background()
	store := inmemory.New()
	pub := &recordingPublisher{err: errors.New("broker down")}

	now := time.Date(2026, 6, 1, 12, 0, 0, 0, time.UTC)
	past := now.Add(-time.Hour)
	newTask(t, store, "late", &past)

	w := NewOverdueWorker(store, pub, time.Minute, 10)
	w.now = func() time.Time { return now }

	assert.Equal(t, 0, w.Check(ctx))

	pub.err = nil
	assert.Equal(t, 1, w.Check(ctx))
}

func TestOverdueWorker_StartStopsOnCancel(t *testing.T) {
	w := NewOverdueWorker(inmemory.New(), nil, 10*time.Millisecond, 0)
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan struct{})
	go func() {
		w.Start(ctx)
		close(done)
	}()

	time.Sleep(30 * time.Millisecond)
	cancel()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("worker did not stop")
	}
}
