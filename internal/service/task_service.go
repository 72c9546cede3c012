package service

import (
	"context"
	"errors"
	"fmt"

	"taskLists/internal/events"
	"taskLists/internal/logger"
	"taskLists/internal/models/nullable"
	"taskLists/internal/models/task"
	repo "taskLists/internal/repository"

	"go.uber.org/zap"
)

// TaskService проверяет входные данные задач и переводит ошибки хранилища
// в ошибки бизнес-логики.
type TaskService struct {
	repo      TaskRepository
	publisher events.Publisher
}

func NewTaskService(repo TaskRepository, publisher events.Publisher) *TaskService {
	if publisher == nil {
		publisher = events.Nop{}
	}
	return &TaskService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *TaskService) GetTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	tasks, err := s.repo.GetTasks(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	return tasks, nil
}

func (s *TaskService) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	t, err := s.repo.GetTaskByID(ctx, id)
	if err != nil {
		return nil, taskError(err, id, "get task")
	}
	return t, nil
}

func (s *TaskService) CreateTask(ctx context.Context, patch task.Patch) (*task.Task, error) {
	patch, err := normalizeTaskPatch(patch, true)
	if err != nil {
		return nil, err
	}
	if !patch.Priority.IsSet() {
		patch.Priority = nullable.Value(task.DefaultPriority)
	}
	// new tasks always start pending
	patch.IsCompleted = nullable.Field[bool]{}

	t := &task.Task{}
	patch.Apply(t)
	if err := s.repo.CreateTask(ctx, t); err != nil {
		if errors.Is(err, repo.ErrListNotFound) {
			return nil, NewValidationError(MsgListMissing)
		}
		return nil, fmt.Errorf("create task: %w", err)
	}

	logger.Info("Service: task created", zap.Int64("task_id", t.ID))
	s.publish(ctx, events.TaskCreated, t)
	return t, nil
}

func (s *TaskService) UpdateTask(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	patch, err := normalizeTaskPatch(patch, false)
	if err != nil {
		return nil, err
	}

	t, err := s.repo.UpdateTask(ctx, id, patch)
	if err != nil {
		return nil, taskError(err, id, "update task")
	}

	s.publish(ctx, events.TaskUpdated, t)
	return t, nil
}

// SetCompleted backs both the complete and the pending endpoints.
func (s *TaskService) SetCompleted(ctx context.Context, id int64, completed bool) (*task.Task, error) {
	t, err := s.repo.UpdateTask(ctx, id, task.Patch{IsCompleted: nullable.Value(completed)})
	if err != nil {
		return nil, taskError(err, id, "set task completion")
	}

	eventType := events.TaskReopened
	if completed {
		eventType = events.TaskCompleted
	}
	s.publish(ctx, eventType, t)
	return t, nil
}

func (s *TaskService) DeleteTask(ctx context.Context, id int64) error {
	deleted, err := s.repo.DeleteTask(ctx, id)
	if err != nil {
		return fmt.Errorf("delete task %d: %w", id, err)
	}
	if !deleted {
		logger.Info("Service: task not found", zap.Int64("target_id", id))
		return NewNotFound(MsgTaskNotFound, repo.ErrNotFound)
	}

	publish(ctx, s.publisher, events.Event{Type: events.TaskDeleted, Entity: events.EntityTask, ID: id})
	return nil
}

// DeleteTasksByList removes every task filed under listID and reports how
// many went away.
func (s *TaskService) DeleteTasksByList(ctx context.Context, listID int64) (int64, error) {
	count, err := s.repo.DeleteTasksByList(ctx, listID)
	if err != nil {
		return 0, fmt.Errorf("delete tasks of list %d: %w", listID, err)
	}

	logger.Info("Service: tasks of list deleted",
		zap.Int64("list_id", listID),
		zap.Int64("count", count))
	publish(ctx, s.publisher, events.Event{
		Type:   events.TasksPurged,
		Entity: events.EntityTask,
		ListID: &listID,
		Count:  count,
	})
	return count, nil
}

func (s *TaskService) publish(ctx context.Context, eventType events.Type, t *task.Task) {
	publish(ctx, s.publisher, events.Event{
		Type:   eventType,
		Entity: events.EntityTask,
		ID:     t.ID,
		ListID: t.ListID,
	})
}

func taskError(err error, id int64, op string) error {
	switch {
	case errors.Is(err, repo.ErrNotFound):
		logger.Info("Service: task not found", zap.Int64("target_id", id))
		return NewNotFound(MsgTaskNotFound, err)
	case errors.Is(err, repo.ErrListNotFound):
		return NewValidationError(MsgListMissing)
	}
	return fmt.Errorf("%s %d: %w", op, id, err)
}
