package client

import (
	"context"
	"time"

	"taskLists/internal/client/query"
	"taskLists/internal/models/list"
	"taskLists/internal/models/task"
)

const (
	entityLists = "lists"
	entityTasks = "tasks"
)

// Cache keys. Every task key lives under "tasks" and every list key under
// "lists", so a mutation can invalidate a whole family by prefix.
func ListsKey() query.Key { return query.NewKey(entityLists, "list") }
func ListKey(id int64) query.Key { return query.NewKey(entityLists, "detail", id) }
func TasksKey() query.Key { return query.NewKey(entityTasks) }
func AllTasksKey() query.Key { return query.NewKey(entityTasks, "all") }
func ListTasksKey(listID int64) query.Key { return query.NewKey(entityTasks, "list", listID) }
func UnfiledTasksKey() query.Key { return query.NewKey(entityTasks, "without-list") }
func CompletedTasksKey() query.Key { return query.NewKey(entityTasks, "completed") }
func PendingTasksKey() query.Key { return query.NewKey(entityTasks, "pending") }
func TaskKey(id int64) query.Key { return query.NewKey(entityTasks, "detail", id) }

// Store serves reads from a query cache and keeps it consistent after each
// write the way the web front end does.
type Store struct {
	api   *Client
	cache *query.Cache
}

func NewStore(api *Client, staleTime time.Duration) *Store {
	return &Store{api: api, cache: query.New(staleTime)}
}

func (s *Store) Cache() *query.Cache {
	return s.cache
}

func (s *Store) Lists(ctx context.Context) ([]*list.List, error) {
	return query.Fetch(ctx, s.cache, ListsKey(), s.api.GetLists)
}

func (s *Store) List(ctx context.Context, id int64) (*list.List, error) {
	return query.Fetch(ctx, s.cache, ListKey(id), func(ctx context.Context) (*list.List, error) {
		return s.api.GetList(ctx, id)
	})
}

func (s *Store) CreateList(ctx context.Context, in ListInput) (*list.List, error) {
	l, err := s.api.CreateList(ctx, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ListsKey())
	return l, nil
}

func (s *Store) UpdateList(ctx context.Context, id int64, in ListInput) (*list.List, error) {
	l, err := s.api.UpdateList(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(ListKey(id))
	s.cache.Invalidate(ListsKey())
	return l, nil
}

// DeleteList also invalidates tasks, which the server detaches from the list.
func (s *Store) DeleteList(ctx context.Context, id int64) error {
	if err := s.api.DeleteList(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(ListKey(id))
	s.cache.Invalidate(ListsKey())
	s.cache.Invalidate(TasksKey())
	return nil
}

// Tasks returns the tasks of listID, or all of them when no list is selected.
func (s *Store) Tasks(ctx context.Context, listID *int64) ([]*task.Task, error) {
	if listID != nil {
		return s.TasksByList(ctx, *listID)
	}
	return query.Fetch(ctx, s.cache, AllTasksKey(), func(ctx context.Context) ([]*task.Task, error) {
		return s.api.GetTasks(ctx, nil)
	})
}

func (s *Store) TasksByList(ctx context.Context, listID int64) ([]*task.Task, error) {
	return query.Fetch(ctx, s.cache, ListTasksKey(listID), func(ctx context.Context) ([]*task.Task, error) {
		return s.api.GetTasksByList(ctx, listID)
	})
}

func (s *Store) TasksWithoutList(ctx context.Context) ([]*task.Task, error) {
	return query.Fetch(ctx, s.cache, UnfiledTasksKey(), s.api.GetTasksWithoutList)
}

func (s *Store) CompletedTasks(ctx context.Context) ([]*task.Task, error) {
	return query.Fetch(ctx, s.cache, CompletedTasksKey(), s.api.GetCompletedTasks)
}

func (s *Store) PendingTasks(ctx context.Context) ([]*task.Task, error) {
	return query.Fetch(ctx, s.cache, PendingTasksKey(), s.api.GetPendingTasks)
}

func (s *Store) Task(ctx context.Context, id int64) (*task.Task, error) {
	return query.Fetch(ctx, s.cache, TaskKey(id), func(ctx context.Context) (*task.Task, error) {
		return s.api.GetTask(ctx, id)
	})
}

func (s *Store) CreateTask(ctx context.Context, in TaskInput) (*task.Task, error) {
	t, err := s.api.CreateTask(ctx, in)
	if err != nil {
		return nil, err
	}
	s.cache.Invalidate(TasksKey())
	if t.ListID != nil {
		s.cache.Invalidate(ListTasksKey(*t.ListID))
	}
	return t, nil
}

func (s *Store) UpdateTask(ctx context.Context, id int64, in TaskInput) (*task.Task, error) {
	previous := s.cachedListID(id)
	t, err := s.api.UpdateTask(ctx, id, in)
	if err != nil {
		return nil, err
	}
	s.invalidateTask(t, previous)
	return t, nil
}

func (s *Store) CompleteTask(ctx context.Context, id int64) (*task.Task, error) {
	t, err := s.api.CompleteTask(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateTask(t, nil)
	return t, nil
}

func (s *Store) PendingTask(ctx context.Context, id int64) (*task.Task, error) {
	t, err := s.api.PendingTask(ctx, id)
	if err != nil {
		return nil, err
	}
	s.invalidateTask(t, nil)
	return t, nil
}

func (s *Store) DeleteTask(ctx context.Context, id int64) error {
	if err := s.api.DeleteTask(ctx, id); err != nil {
		return err
	}
	s.cache.Invalidate(TasksKey())
	s.cache.Remove(TaskKey(id))
	return nil
}

func (s *Store) DeleteTasksByList(ctx context.Context, listID int64) (int64, error) {
	n, err := s.api.DeleteTasksByList(ctx, listID)
	if err != nil {
		return 0, err
	}
	s.cache.Invalidate(TasksKey())
	return n, nil
}

func (s *Store) invalidateTask(t *task.Task, previousList *int64) {
	s.cache.Invalidate(TaskKey(t.ID))
	s.cache.Invalidate(TasksKey())
	s.cache.Invalidate(CompletedTasksKey())
	s.cache.Invalidate(PendingTasksKey())
	if t.ListID != nil {
		s.cache.Invalidate(ListTasksKey(*t.ListID))
	}
	if previousList != nil {
		s.cache.Invalidate(ListTasksKey(*previousList))
	}
}

// cachedListID is the list a task belonged to before a move, when known.
func (s *Store) cachedListID(id int64) *int64 {
	data, ok, _ := s.cache.Get(TaskKey(id))
	if !ok {
		return nil
	}
	if t, ok := data.(*task.Task); ok && t.ListID != nil {
		listID := *t.ListID
		return &listID
	}
	return nil
}
