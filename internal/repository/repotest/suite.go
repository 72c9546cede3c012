// Package repotest holds the behaviour every storage backend has to share.
// Backend packages embed StorageSuite in their own tests.
package repotest

import (
	"context"
	"time"

	"taskLists/internal/models/list"
	"taskLists/internal/models/nullable"
	"taskLists/internal/models/task"
	repo "taskLists/internal/repository"
	"taskLists/internal/service"

	"github.com/stretchr/testify/suite"
)

type StorageSuite struct {
	suite.Suite

	// NewStorage returns an empty storage. It runs before every test.
	NewStorage func() service.Storage

	Storage service.Storage
	ctx     context.Context
}

func (s *StorageSuite) SetupTest() {
	s.ctx = context.Background()
	s.Storage = s.NewStorage()
}

func (s *StorageSuite) createList(name string) *list.List {
	l := &list.List{Name: name}
	s.Require().NoError(s.Storage.CreateList(s.ctx, l))
	return l
}

func (s *StorageSuite) createTask(title string, listID *int64) *task.Task {
	t := &task.Task{Title: title, ListID: listID, Priority: task.DefaultPriority}
	s.Require().NoError(s.Storage.CreateTask(s.ctx, t))
	return t
}

func (s *StorageSuite) TestHealthCheck() {
	s.NoError(s.Storage.HealthCheck(s.ctx))
}

func (s *StorageSuite) TestCreateList() {
	color := "#ff0000"
	l := &list.List{Name: "Compras", Color: &color}

	s.Require().NoError(s.Storage.CreateList(s.ctx, l))

	s.NotZero(l.ID)
	s.False(l.CreatedAt.IsZero())
	s.True(l.CreatedAt.Equal(l.UpdatedAt))

	got, err := s.Storage.GetListByID(s.ctx, l.ID)
	s.Require().NoError(err)
	s.Equal("Compras", got.Name)
	s.Require().NotNil(got.Color)
	s.Equal(color, *got.Color)
	s.True(l.CreatedAt.Equal(got.CreatedAt))
}

func (s *StorageSuite) TestGetAllLists_OrderedByID() {
	a := s.createList("a")
	b := s.createList("b")
	c := s.createList("c")

	lists, err := s.Storage.GetAllLists(s.ctx)
	s.Require().NoError(err)
	s.Require().Len(lists, 3)
	s.Equal([]int64{a.ID, b.ID, c.ID}, []int64{lists[0].ID, lists[1].ID, lists[2].ID})
}

func (s *StorageSuite) TestGetAllLists_Empty() {
	lists, err := s.Storage.GetAllLists(s.ctx)
	s.Require().NoError(err)
	s.NotNil(lists)
	s.Empty(lists)
}

func (s *StorageSuite) TestGetListByID_NotFound() {
	_, err := s.Storage.GetListByID(s.ctx, 4242)
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *StorageSuite) TestUpdateList_Partial() {
	l := s.createList("Casa")

	updated, err := s.Storage.UpdateList(s.ctx, l.ID, list.Patch{Color: nullable.Value("#00ff00")})
	s.Require().NoError(err)
	s.Equal("Casa", updated.Name)
	s.Require().NotNil(updated.Color)
	s.Equal("#00ff00", *updated.Color)
	s.True(updated.UpdatedAt.After(l.UpdatedAt))
	s.True(updated.CreatedAt.Equal(l.CreatedAt))

	cleared, err := s.Storage.UpdateList(s.ctx, l.ID, list.Patch{Color: nullable.Null[string]()})
	s.Require().NoError(err)
	s.Nil(cleared.Color)
	s.True(cleared.UpdatedAt.After(updated.UpdatedAt))
}

func (s *StorageSuite) TestUpdateList_EmptyPatchTouchesUpdatedAt() {
	l := s.createList("Casa")

	updated, err := s.Storage.UpdateList(s.ctx, l.ID, list.Patch{})
	s.Require().NoError(err)
	s.Equal("Casa", updated.Name)
	s.True(updated.UpdatedAt.After(l.UpdatedAt))
}

func (s *StorageSuite) TestUpdateList_NotFound() {
	_, err := s.Storage.UpdateList(s.ctx, 4242, list.Patch{Name: nullable.Value("x")})
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *StorageSuite) TestDeleteList_DetachesTasks() {
	l := s.createList("Trabajo")
	t := s.createTask("informe", &l.ID)

	deleted, err := s.Storage.DeleteList(s.ctx, l.ID)
	s.Require().NoError(err)
	s.True(deleted)

	_, err = s.Storage.GetListByID(s.ctx, l.ID)
	s.ErrorIs(err, repo.ErrNotFound)

	got, err := s.Storage.GetTaskByID(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Nil(got.ListID)
	s.Equal("informe", got.Title)
}

func (s *StorageSuite) TestDeleteList_Missing() {
	deleted, err := s.Storage.DeleteList(s.ctx, 4242)
	s.Require().NoError(err)
	s.False(deleted)
}

func (s *StorageSuite) TestCreateTask() {
	l := s.createList("Compras")
	desc := "semidesnatada"
	due := time.Date(2026, 3, 1, 10, 30, 0, 123456000, time.UTC)
	t := &task.Task{
		ListID:      &l.ID,
		Title:       "Leche",
		Description: &desc,
		DueDate:     &due,
		Priority:    task.PriorityHigh,
	}

	s.Require().NoError(s.Storage.CreateTask(s.ctx, t))
	s.NotZero(t.ID)
	s.True(t.CreatedAt.Equal(t.UpdatedAt))

	got, err := s.Storage.GetTaskByID(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Require().NotNil(got.ListID)
	s.Equal(l.ID, *got.ListID)
	s.Equal("Leche", got.Title)
	s.Require().NotNil(got.Description)
	s.Equal(desc, *got.Description)
	s.Require().NotNil(got.DueDate)
	s.True(due.Equal(*got.DueDate), "due date %v != %v", due, *got.DueDate)
	s.Equal(task.PriorityHigh, got.Priority)
	s.False(got.IsCompleted)
}

func (s *StorageSuite) TestCreateTask_MissingList() {
	missing := int64(4242)
	err := s.Storage.CreateTask(s.ctx, &task.Task{Title: "x", ListID: &missing, Priority: task.DefaultPriority})
	s.ErrorIs(err, repo.ErrListNotFound)

	tasks, err := s.Storage.GetTasks(s.ctx, task.Filter{})
	s.Require().NoError(err)
	s.Empty(tasks)
}

func (s *StorageSuite) TestGetTasks_Filters() {
	a := s.createList("a")
	b := s.createList("b")
	t1 := s.createTask("uno", &a.ID)
	t2 := s.createTask("dos", &b.ID)
	t3 := s.createTask("tres", nil)
	t4 := s.createTask("cuatro", &a.ID)

	_, err := s.Storage.UpdateTask(s.ctx, t4.ID, task.Patch{IsCompleted: nullable.Value(true)})
	s.Require().NoError(err)

	ids := func(filter task.Filter) []int64 {
		tasks, err := s.Storage.GetTasks(s.ctx, filter)
		s.Require().NoError(err)
		res := []int64{}
		for _, t := range tasks {
			res = append(res, t.ID)
		}
		return res
	}

	s.Equal([]int64{t1.ID, t2.ID, t3.ID, t4.ID}, ids(task.Filter{}))
	s.Equal([]int64{t1.ID, t4.ID}, ids(task.ByList(a.ID)))
	s.Equal([]int64{t2.ID}, ids(task.ByList(b.ID)))
	s.Equal([]int64{t3.ID}, ids(task.WithoutList()))
	s.Equal([]int64{t4.ID}, ids(task.ByCompletion(true)))
	s.Equal([]int64{t1.ID, t2.ID, t3.ID}, ids(task.ByCompletion(false)))
	s.Equal([]int64{}, ids(task.ByList(4242)))
}

func (s *StorageSuite) TestUpdateTask_Partial() {
	l := s.createList("a")
	t := s.createTask("uno", &l.ID)
	due := time.Date(2026, 5, 4, 0, 0, 0, 0, time.UTC)

	updated, err := s.Storage.UpdateTask(s.ctx, t.ID, task.Patch{
		Title:   nullable.Value("uno bis"),
		DueDate: nullable.Value(due),
	})
	s.Require().NoError(err)
	s.Equal("uno bis", updated.Title)
	s.Require().NotNil(updated.ListID)
	s.Equal(l.ID, *updated.ListID)
	s.Equal(task.DefaultPriority, updated.Priority)
	s.Require().NotNil(updated.DueDate)
	s.True(due.Equal(*updated.DueDate))
	s.True(updated.UpdatedAt.After(t.UpdatedAt))

	cleared, err := s.Storage.UpdateTask(s.ctx, t.ID, task.Patch{
		ListID:  nullable.Null[int64](),
		DueDate: nullable.Null[time.Time](),
	})
	s.Require().NoError(err)
	s.Nil(cleared.ListID)
	s.Nil(cleared.DueDate)
	s.Equal("uno bis", cleared.Title)

	got, err := s.Storage.GetTaskByID(s.ctx, t.ID)
	s.Require().NoError(err)
	s.True(cleared.UpdatedAt.Equal(got.UpdatedAt))
}

func (s *StorageSuite) TestUpdateTask_MoveToMissingList() {
	t := s.createTask("uno", nil)

	_, err := s.Storage.UpdateTask(s.ctx, t.ID, task.Patch{ListID: nullable.Value(int64(4242))})
	s.ErrorIs(err, repo.ErrListNotFound)

	got, err := s.Storage.GetTaskByID(s.ctx, t.ID)
	s.Require().NoError(err)
	s.Nil(got.ListID)
}

func (s *StorageSuite) TestUpdateTask_NotFound() {
	_, err := s.Storage.UpdateTask(s.ctx, 4242, task.Patch{Title: nullable.Value("x")})
	s.ErrorIs(err, repo.ErrNotFound)
}

func (s *StorageSuite) TestUpdatedAtStrictlyIncreases() {
	t := s.createTask("uno", nil)

	prev := t.UpdatedAt
	for i := 0; i < 5; i++ {
		updated, err := s.Storage.UpdateTask(s.ctx, t.ID, task.Patch{IsCompleted: nullable.Value(i%2 == 0)})
		s.Require().NoError(err)
		s.True(updated.UpdatedAt.After(prev), "iteration %d", i)
		prev = updated.UpdatedAt
	}
}

func (s *StorageSuite) TestDeleteTask() {
	t := s.createTask("uno", nil)

	deleted, err := s.Storage.DeleteTask(s.ctx, t.ID)
	s.Require().NoError(err)
	s.True(deleted)

	_, err = s.Storage.GetTaskByID(s.ctx, t.ID)
	s.ErrorIs(err, repo.ErrNotFound)

	deleted, err = s.Storage.DeleteTask(s.ctx, t.ID)
	s.Require().NoError(err)
	s.False(deleted)
}

func (s *StorageSuite) TestDeleteTasksByList() {
	a := s.createList("a")
	b := s.createList("b")
	s.createTask("uno", &a.ID)
	s.createTask("dos", &a.ID)
	kept := s.createTask("tres", &b.ID)
	unfiled := s.createTask("cuatro", nil)

	count, err := s.Storage.DeleteTasksByList(s.ctx, a.ID)
	s.Require().NoError(err)
	s.Equal(int64(2), count)

	tasks, err := s.Storage.GetTasks(s.ctx, task.Filter{})
	s.Require().NoError(err)
	s.Require().Len(tasks, 2)
	s.Equal(kept.ID, tasks[0].ID)
	s.Equal(unfiled.ID, tasks[1].ID)

	// the list itself stays
	_, err = s.Storage.GetListByID(s.ctx, a.ID)
	s.NoError(err)
}
