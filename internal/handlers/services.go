package handlers

import (
	"context"

	"taskLists/internal/models/list"
	"taskLists/internal/models/task"
)

type ListService interface {
	GetAllLists(ctx context.Context) ([]*list.List, error)
	GetListByID(ctx context.Context, id int64) (*list.List, error)
	CreateList(ctx context.Context, patch list.Patch) (*list.List, error)
	UpdateList(ctx context.Context, id int64, patch list.Patch) (*list.List, error)
	DeleteList(ctx context.Context, id int64) error
}

type TaskService interface {
	GetTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error)
	GetTaskByID(ctx context.Context, id int64) (*task.Task, error)
	CreateTask(ctx context.Context, patch task.Patch) (*task.Task, error)
	UpdateTask(ctx context.Context, id int64, patch task.Patch) (*task.Task, error)
	SetCompleted(ctx context.Context, id int64, completed bool) (*task.Task, error)
	DeleteTask(ctx context.Context, id int64) error
	DeleteTasksByList(ctx context.Context, listID int64) (int64, error)
}

type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}
