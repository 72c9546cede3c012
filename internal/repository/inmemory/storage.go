package inmemory

import (
	"context"
	"sync"
	"time"

	"taskLists/internal/logger"
	"taskLists/internal/models/list"
	"taskLists/internal/models/task"
	repo "taskLists/internal/repository"
)

// Storage keeps lists and tasks in process memory. Rows are copied on the way
// in and out so callers never share state with the store.
type Storage struct {
	mtx *sync.RWMutex

	lists   map[int64]*list.List
	listIDs []int64
	tasks   map[int64]*task.Task
	taskIDs []int64

	nextListID int64
	nextTaskID int64

	now func() time.Time
}

func New() *Storage {
	return &Storage{
		mtx:   &sync.RWMutex{},
		lists: make(map[int64]*list.List),
		tasks: make(map[int64]*task.Task),
		now:   time.Now,
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Debug("Repository: in-memory storage is healthy")
	return nil
}

func (s *Storage) Close() {
	logger.Info("Repository: in-memory storage closed")
}

func (s *Storage) GetAllLists(ctx context.Context) ([]*list.List, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := make([]*list.List, 0, len(s.listIDs))
	for _, id := range s.listIDs {
		res = append(res, copyList(s.lists[id]))
	}
	return res, nil
}

func (s *Storage) GetListByID(ctx context.Context, id int64) (*list.List, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	l, ok := s.lists[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyList(l), nil
}

func (s *Storage) CreateList(ctx context.Context, l *list.List) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	s.nextListID++
	l.ID = s.nextListID
	l.CreatedAt = repo.Timestamp(s.now())
	l.UpdatedAt = l.CreatedAt

	s.lists[l.ID] = copyList(l)
	s.listIDs = append(s.listIDs, l.ID)
	return nil
}

func (s *Storage) UpdateList(ctx context.Context, id int64, patch list.Patch) (*list.List, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	l, ok := s.lists[id]
	if !ok {
		return nil, repo.ErrNotFound
	}

	patch.Apply(l)
	l.UpdatedAt = repo.NextUpdatedAt(l.UpdatedAt, s.now())
	return copyList(l), nil
}

// DeleteList detaches the tasks of the list before removing it, the same way
// ON DELETE SET NULL does in the SQL backends.
func (s *Storage) DeleteList(ctx context.Context, id int64) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.lists[id]; !ok {
		return false, nil
	}

	for _, t := range s.tasks {
		if t.ListID != nil && *t.ListID == id {
			t.ListID = nil
		}
	}

	delete(s.lists, id)
	s.listIDs = removeID(s.listIDs, id)
	return true, nil
}

func (s *Storage) GetTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	res := []*task.Task{}
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if filter.Match(t) {
			res = append(res, copyTask(t))
		}
	}
	return res, nil
}

func (s *Storage) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	return copyTask(t), nil
}

func (s *Storage) CreateTask(ctx context.Context, t *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if t.ListID != nil {
		if _, ok := s.lists[*t.ListID]; !ok {
			return repo.ErrListNotFound
		}
	}

	s.nextTaskID++
	t.ID = s.nextTaskID
	t.CreatedAt = repo.Timestamp(s.now())
	t.UpdatedAt = t.CreatedAt
	if t.DueDate != nil {
		due := repo.Timestamp(*t.DueDate)
		t.DueDate = &due
	}

	s.tasks[t.ID] = copyTask(t)
	s.taskIDs = append(s.taskIDs, t.ID)
	return nil
}

func (s *Storage) UpdateTask(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	t, ok := s.tasks[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	if listID, ok := patch.ListID.Get(); ok {
		if _, exists := s.lists[listID]; !exists {
			return nil, repo.ErrListNotFound
		}
	}

	patch.Apply(t)
	if t.DueDate != nil {
		due := repo.Timestamp(*t.DueDate)
		t.DueDate = &due
	}
	t.UpdatedAt = repo.NextUpdatedAt(t.UpdatedAt, s.now())
	return copyTask(t), nil
}

func (s *Storage) DeleteTask(ctx context.Context, id int64) (bool, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if _, ok := s.tasks[id]; !ok {
		return false, nil
	}
	delete(s.tasks, id)
	s.taskIDs = removeID(s.taskIDs, id)
	return true, nil
}

func (s *Storage) DeleteTasksByList(ctx context.Context, listID int64) (int64, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	var count int64
	kept := s.taskIDs[:0]
	for _, id := range s.taskIDs {
		t := s.tasks[id]
		if t.ListID != nil && *t.ListID == listID {
			delete(s.tasks, id)
			count++
			continue
		}
		kept = append(kept, id)
	}
	s.taskIDs = kept
	return count, nil
}

func removeID(ids []int64, id int64) []int64 {
	for ind, val := range ids {
		if val == id {
			return append(ids[:ind], ids[ind+1:]...)
		}
	}
	return ids
}

func copyList(l *list.List) *list.List {
	c := *l
	if l.Color != nil {
		color := *l.Color
		c.Color = &color
	}
	return &c
}

func copyTask(t *task.Task) *task.Task {
	c := *t
	if t.ListID != nil {
		listID := *t.ListID
		c.ListID = &listID
	}
	if t.Description != nil {
		desc := *t.Description
		c.Description = &desc
	}
	if t.DueDate != nil {
		due := *t.DueDate
		c.DueDate = &due
	}
	return &c
}
