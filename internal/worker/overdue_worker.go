package worker

import (
	"context"
	"fmt"
	"time"

	"taskLists/internal/events"
	"taskLists/internal/logger"
	"taskLists/internal/models/task"

	"go.uber.org/zap"
)

const (
	DefaultInterval  = 5 * time.Minute
	DefaultBatchSize = 100
)

type TaskReader interface {
	GetTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error)
}

// OverdueWorker periodically looks for pending tasks past their due date and
// announces each of them once with a task.overdue event. A task is announced
// again only if its due date changes.
type OverdueWorker struct {
	repo      TaskReader
	publisher events.Publisher
	interval  time.Duration
	batchSize int
	now       func() time.Time

	announced map[int64]time.Time
}

func NewOverdueWorker(repo TaskReader, publisher events.Publisher, interval time.Duration, batchSize int) *OverdueWorker {
	if interval <= 0 {
		interval = DefaultInterval
	}
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &OverdueWorker{
		repo:      repo,
		publisher: publisher,
		interval:  interval,
		batchSize: batchSize,
		now:       time.Now,
		announced: make(map[int64]time.Time),
	}
}

func (w *OverdueWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			logger.Debug("Worker: overdue check started", zap.Time("started_at", w.now()))
			w.Check(ctx)
		case <-ctx.Done():
			logger.Info("Worker: overdue check stopped")
			return
		}
	}
}

// Check runs one pass and returns how many tasks were announced.
func (w *OverdueWorker) Check(ctx context.Context) int {
	start := time.Now()

	tasks, err := w.pendingTasks(ctx)
	if err != nil {
		logger.Warn("Worker: load pending tasks", zap.Error(err))
		return 0
	}

	now := w.now()
	pending := make(map[int64]struct{}, len(tasks))
	overdueCount := 0

	for _, t := range tasks {
		pending[t.ID] = struct{}{}
		if t.DueDate == nil || !t.DueDate.Before(now) {
			continue
		}
		if due, ok := w.announced[t.ID]; ok && due.Equal(*t.DueDate) {
			continue
		}
		// the rest waits for the next tick, pending still has to see every task
		if overdueCount >= w.batchSize {
			continue
		}

		if err := w.publisher.Publish(ctx, events.Event{
			Type:   events.TaskOverdue,
			Entity: events.EntityTask,
			ID:     t.ID,
			ListID: t.ListID,
			At:     now,
		}); err != nil {
			logger.Warn("Worker: publish overdue event", zap.Int64("task_id", t.ID), zap.Error(err))
			continue
		}
		w.announced[t.ID] = *t.DueDate
		overdueCount++
	}

	// completed or deleted tasks can be announced again if they come back
	for id := range w.announced {
		if _, ok := pending[id]; !ok {
			delete(w.announced, id)
		}
	}

	logger.Info("Worker: overdue check finished",
		zap.Duration("ms", time.Since(start)),
		zap.Int("checked", len(tasks)),
		zap.Int("overdue", overdueCount),
	)
	return overdueCount
}

func (w *OverdueWorker) pendingTasks(ctx context.Context) ([]*task.Task, error) {
	tasks, err := w.repo.GetTasks(ctx, task.ByCompletion(false))
	if err != nil {
		return nil, fmt.Errorf("get pending tasks: %w", err)
	}
	return tasks, nil
}
