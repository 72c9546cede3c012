package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"taskLists/internal/handlers"
	"taskLists/internal/models/nullable"
	"taskLists/internal/models/task"
	"taskLists/internal/repository/inmemory"
	"taskLists/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"
)

// countingServer wraps the real API and counts GET requests per path.
type countingServer struct {
	*httptest.Server
	gets atomic.Int32
}

func newServer(t *testing.T) *countingServer {
	t.Helper()
	storage := inmemory.New()
	router := handlers.NewRouter(
		service.NewListService(storage, nil),
		service.NewTaskService(storage, nil),
		storage,
	)

	cs := &countingServer{}
	cs.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodGet {
			cs.gets.Add(1)
		}
		router.ServeHTTP(w, r)
	}))
	t.Cleanup(cs.Close)
	return cs
}

type ClientSuite struct {
	suite.Suite
	server *countingServer
	api    *Client
	ctx    context.Context
}

func (s *ClientSuite) SetupTest() {
	s.server = newServer(s.T())
	s.api = New(s.server.URL + "/")
	s.ctx = context.Background()
}

func (s *ClientSuite) TestListLifecycle() {
	created, err := s.api.CreateList(s.ctx, ListInput{
		Name:  nullable.Value("Work"),
		Color: nullable.Value("#f00"),
	})
	s.Require().NoError(err)
	s.Equal(int64(1), created.ID)
	s.Equal("Work", created.Name)

	got, err := s.api.GetList(s.ctx, created.ID)
	s.Require().NoError(err)
	s.Equal(created.Name, got.Name)

	updated, err := s.api.UpdateList(s.ctx, created.ID, ListInput{Color: nullable.Null[string]()})
	s.Require().NoError(err)
	s.Equal("Work", updated.Name)
	s.Nil(updated.Color)

	lists, err := s.api.GetLists(s.ctx)
	s.Require().NoError(err)
	s.Len(lists, 1)

	s.Require().NoError(s.api.DeleteList(s.ctx, created.ID))

	_, err = s.api.GetList(s.ctx, created.ID)
	s.True(IsNotFound(err))
}

func (s *ClientSuite) TestTaskLifecycle() {
	l, err := s.api.CreateList(s.ctx, ListInput{Name: nullable.Value("Home")})
	s.Require().NoError(err)

	due := time.Date(2026, 7, 1, 9, 0, 0, 0, time.UTC)
	created, err := s.api.CreateTask(s.ctx, TaskInput{
		Title:   nullable.Value("Clean"),
		ListID:  nullable.Value(l.ID),
		DueDate: nullable.Value(due),
	})
	s.Require().NoError(err)
	s.Equal(task.DefaultPriority, created.Priority)
	s.Require().NotNil(created.DueDate)
	s.True(created.DueDate.Equal(due))

	_, err = s.api.CreateTask(s.ctx, TaskInput{Title: nullable.Value("Loose")})
	s.Require().NoError(err)

	done, err := s.api.CompleteTask(s.ctx, created.ID)
	s.Require().NoError(err)
	s.True(done.IsCompleted)

	completed, err := s.api.GetCompletedTasks(s.ctx)
	s.Require().NoError(err)
	s.Len(completed, 1)

	pending, err := s.api.GetPendingTasks(s.ctx)
	s.Require().NoError(err)
	s.Len(pending, 1)

	byList, err := s.api.GetTasks(s.ctx, &l.ID)
	s.Require().NoError(err)
	s.Len(byList, 1)

	unfiled, err := s.api.GetTasksWithoutList(s.ctx)
	s.Require().NoError(err)
	s.Len(unfiled, 1)

	reopened, err := s.api.PendingTask(s.ctx, created.ID)
	s.Require().NoError(err)
	s.False(reopened.IsCompleted)

	moved, err := s.api.UpdateTask(s.ctx, created.ID, TaskInput{ListID: nullable.Null[int64]()})
	s.Require().NoError(err)
	s.Nil(moved.ListID)

	s.Require().NoError(s.api.DeleteTask(s.ctx, created.ID))
	_, err = s.api.GetTask(s.ctx, created.ID)
	s.True(IsNotFound(err))
}

func (s *ClientSuite) TestDeleteTasksByList() {
	l, err := s.api.CreateList(s.ctx, ListInput{Name: nullable.Value("Tmp")})
	s.Require().NoError(err)
	for range 3 {
		_, err := s.api.CreateTask(s.ctx, TaskInput{Title: nullable.Value("x"), ListID: nullable.Value(l.ID)})
		s.Require().NoError(err)
	}

	n, err := s.api.DeleteTasksByList(s.ctx, l.ID)
	s.Require().NoError(err)
	s.Equal(int64(3), n)

	tasks, err := s.api.GetTasksByList(s.ctx, l.ID)
	s.Require().NoError(err)
	s.Empty(tasks)
}

func (s *ClientSuite) TestAPIErrors() {
	_, err := s.api.CreateTask(s.ctx, TaskInput{Title: nullable.Value("x"), Priority: nullable.Value(task.Priority(9))})
	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusBadRequest, apiErr.Status)
	s.Equal(service.MsgInvalidPriority, apiErr.Message)

	_, err = s.api.GetList(s.ctx, 999)
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusNotFound, apiErr.Status)
	s.Equal(service.MsgListNotFound, apiErr.Message)
}

func (s *ClientSuite) TestHealth() {
	status, err := s.api.Health(s.ctx)
	s.Require().NoError(err)
	s.Equal("healthy", status)
}

func TestClientSuite(t *testing.T) {
	suite.Run(t, new(ClientSuite))
}

func TestAPIError_MessagePrecedence(t *testing.T) {
	tests := []struct {
		name string
		body string
		want string
	}{
		{name: "message wins", body: `{"error":"Error al crear la tarea","message":"db down"}`, want: "db down"},
		{name: "error only", body: `{"error":"Tarea no encontrada"}`, want: "Tarea no encontrada"},
		{name: "empty object", body: `{}`, want: MsgCreateTask},
		{name: "not json", body: `<html>bad gateway</html>`, want: MsgCreateTask},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			_, err := New(srv.URL).CreateTask(context.Background(), TaskInput{Title: nullable.Value("x")})
			var apiErr *APIError
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, http.StatusBadGateway, apiErr.Status)
			assert.Equal(t, tt.want, apiErr.Message)
		})
	}
}

func TestTaskInput_OmitsAbsentFields(t *testing.T) {
	var got string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		got = string(body)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"id":1,"title":"x","priority":2}`))
	}))
	defer srv.Close()

	_, err := New(srv.URL).UpdateTask(context.Background(), 1, TaskInput{
		Title:       nullable.Value("x"),
		Description: nullable.Null[string](),
	})
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"x","description":null}`, got)
}
