package service

import (
	"context"

	"taskLists/internal/models/list"
	"taskLists/internal/models/task"
)

type ListRepository interface {
	GetAllLists(ctx context.Context) ([]*list.List, error)
	GetListByID(ctx context.Context, id int64) (*list.List, error)
	CreateList(ctx context.Context, l *list.List) error
	UpdateList(ctx context.Context, id int64, patch list.Patch) (*list.List, error)
	DeleteList(ctx context.Context, id int64) (bool, error)
}

type TaskRepository interface {
	GetTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error)
	GetTaskByID(ctx context.Context, id int64) (*task.Task, error)
	CreateTask(ctx context.Context, t *task.Task) error
	UpdateTask(ctx context.Context, id int64, patch task.Patch) (*task.Task, error)
	DeleteTask(ctx context.Context, id int64) (bool, error)
	DeleteTasksByList(ctx context.Context, listID int64) (int64, error)
}

// Storage is what a backend has to provide to run the service.
type Storage interface {
	ListRepository
	TaskRepository
	HealthCheck(ctx context.Context) error
	Close()
}
