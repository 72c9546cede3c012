package handlers_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"taskLists/internal/handlers"
	"taskLists/internal/models/list"
	"taskLists/internal/models/nullable"
	"taskLists/internal/models/task"
	"taskLists/internal/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

// MockListService - мок сервиса списков
type MockListService struct {
	mock.Mock
}

func (m *MockListService) GetAllLists(ctx context.Context) ([]*list.List, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*list.List), args.Error(1)
}

func (m *MockListService) GetListByID(ctx context.Context, id int64) (*list.List, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*list.List), args.Error(1)
}

func (m *MockListService) CreateList(ctx context.Context, patch list.Patch) (*list.List, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*list.List), args.Error(1)
}

func (m *MockListService) UpdateList(ctx context.Context, id int64, patch list.Patch) (*list.List, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*list.List), args.Error(1)
}

func (m *MockListService) DeleteList(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

// MockTaskService - мок сервиса задач
type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) GetTasks(ctx context.Context, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTaskByID(ctx context.Context, id int64) (*task.Task, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) CreateTask(ctx context.Context, patch task.Patch) (*task.Task, error) {
	args := m.Called(ctx, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, id int64, patch task.Patch) (*task.Task, error) {
	args := m.Called(ctx, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) SetCompleted(ctx context.Context, id int64, completed bool) (*task.Task, error) {
	args := m.Called(ctx, id, completed)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, id int64) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTaskService) DeleteTasksByList(ctx context.Context, listID int64) (int64, error) {
	args := m.Called(ctx, listID)
	return args.Get(0).(int64), args.Error(1)
}

type MockHealthChecker struct {
	mock.Mock
}

func (m *MockHealthChecker) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

type testRouter struct {
	lists  *MockListService
	tasks  *MockTaskService
	health *MockHealthChecker
	router http.Handler
}

func newTestRouter() *testRouter {
	tr := &testRouter{
		lists:  new(MockListService),
		tasks:  new(MockTaskService),
		health: new(MockHealthChecker),
	}
	tr.router = handlers.NewRouter(tr.lists, tr.tasks, tr.health)
	return tr
}

func (tr *testRouter) do(method, path, body string, headers ...string) *httptest.ResponseRecorder {
	var req *http.Request
	if body == "" {
		req = httptest.NewRequest(method, path, nil)
	} else {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	rr := httptest.NewRecorder()
	tr.router.ServeHTTP(rr, req)
	return rr
}

func mustDate(value string) time.Time {
	t, err := time.Parse("2006-01-02", value)
	if err != nil {
		panic(err)
	}
	return t
}

func decodeBody(t *testing.T, rr *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &body), rr.Body.String())
	return body
}

// TestHealthCheck тестирует health check
func TestHealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockHealthChecker)
		expectedStatus int
		expectedHealth string
	}{
		{
			name: "healthy",
			setupMock: func(m *MockHealthChecker) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
			expectedHealth: "healthy",
		},
		{
			name: "storage down",
			setupMock: func(m *MockHealthChecker) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("db connection failed"))
			},
			expectedStatus: http.StatusServiceUnavailable,
			expectedHealth: "unhealthy",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter()
			tt.setupMock(tr.health)

			rr := tr.do(http.MethodGet, "/health", "")

			assert.Equal(t, tt.expectedStatus, rr.Code)
			body := decodeBody(t, rr)
			assert.Equal(t, tt.expectedHealth, body["status"])
			assert.Equal(t, handlers.ServiceName, body["service"])
			assert.NotEmpty(t, body["timestamp"])
		})
	}
}

func TestIndex(t *testing.T) {
	tr := newTestRouter()

	rr := tr.do(http.MethodGet, "/api", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "API Routes", body["message"])
	assert.Equal(t, map[string]any{"lists": "/api/lists", "tasks": "/api/tasks"}, body["endpoints"])
}

// TestListHandler_PostList тестирует создание списка
func TestListHandler_PostList(t *testing.T) {
	color := "#ff0000"

	tests := []struct {
		name           string
		body           string
		headers        []string
		setupMock      func(*MockListService)
		expectedStatus int
		expectedError  string
	}{
		{
			name: "success",
			body: `{"name":"Compras","color":"#ff0000"}`,
			setupMock: func(m *MockListService) {
				m.On("CreateList", mock.Anything, list.Patch{
					Name:  nullable.Value("Compras"),
					Color: nullable.Value(color),
				}).Return(&list.List{ID: 1, Name: "Compras", Color: &color}, nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "validation error from service",
			body: `{"name":"  "}`,
			setupMock: func(m *MockListService) {
				m.On("CreateList", mock.Anything, mock.Anything).
					Return(nil, service.NewValidationError(service.MsgNameRequired))
			},
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.MsgNameRequired,
		},
		{
			name:           "malformed json",
			body:           `{"name":`,
			setupMock:      func(*MockListService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  handlers.MsgInvalidBody,
		},
		{
			name:           "wrong content type",
			body:           `{"name":"x"}`,
			headers:        []string{"Content-Type", "text/plain"},
			setupMock:      func(*MockListService) {},
			expectedStatus: http.StatusBadRequest,
			expectedError:  handlers.MsgInvalidContentType,
		},
		{
			name: "storage failure",
			body: `{"name":"x"}`,
			setupMock: func(m *MockListService) {
				m.On("CreateList", mock.Anything, mock.Anything).Return(nil, errors.New("disk full"))
			},
			expectedStatus: http.StatusInternalServerError,
			expectedError:  "Error al crear la lista",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter()
			tt.setupMock(tr.lists)

			rr := tr.do(http.MethodPost, "/api/lists", tt.body, tt.headers...)

			assert.Equal(t, tt.expectedStatus, rr.Code)
			assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
			body := decodeBody(t, rr)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, body["error"])
			} else {
				assert.Equal(t, "Compras", body["name"])
			}
			tr.lists.AssertExpectations(t)
		})
	}
}

func TestListHandler_InternalErrorCarriesMessage(t *testing.T) {
	tr := newTestRouter()
	tr.lists.On("GetAllLists", mock.Anything).Return(nil, errors.New("connection refused"))

	rr := tr.do(http.MethodGet, "/api/lists", "")

	assert.Equal(t, http.StatusInternalServerError, rr.Code)
	body := decodeBody(t, rr)
	assert.Equal(t, "Error al obtener las listas", body["error"])
	assert.Equal(t, "connection refused", body["message"])
}

func TestListHandler_InvalidID(t *testing.T) {
	tr := newTestRouter()

	for _, req := range []struct{ method, body string }{
		{http.MethodGet, ""},
		{http.MethodPut, `{"name":"x"}`},
		{http.MethodDelete, ""},
	} {
		rr := tr.do(req.method, "/api/lists/abc", req.body)

		assert.Equal(t, http.StatusBadRequest, rr.Code, req.method)
		assert.Equal(t, handlers.MsgInvalidID, decodeBody(t, rr)["error"])
	}
	tr.lists.AssertNotCalled(t, "GetListByID", mock.Anything, mock.Anything)
}

func TestListHandler_NotFound(t *testing.T) {
	tr := newTestRouter()
	tr.lists.On("GetListByID", mock.Anything, int64(9)).
		Return(nil, service.NewNotFound(service.MsgListNotFound, nil))
	tr.lists.On("DeleteList", mock.Anything, int64(9)).
		Return(service.NewNotFound(service.MsgListNotFound, nil))

	rr := tr.do(http.MethodGet, "/api/lists/9", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, map[string]any{"error": service.MsgListNotFound}, decodeBody(t, rr))

	rr = tr.do(http.MethodDelete, "/api/lists/9", "")
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestListHandler_DeleteList(t *testing.T) {
	tr := newTestRouter()
	tr.lists.On("DeleteList", mock.Anything, int64(3)).Return(nil)

	rr := tr.do(http.MethodDelete, "/api/lists/3", "")

	assert.Equal(t, http.StatusNoContent, rr.Code)
	assert.Empty(t, rr.Body.String())
}

func TestListHandler_UpdateList_PartialBody(t *testing.T) {
	tr := newTestRouter()
	tr.lists.On("UpdateList", mock.Anything, int64(3), list.Patch{Color: nullable.Null[string]()}).
		Return(&list.List{ID: 3, Name: "Casa"}, nil)

	rr := tr.do(http.MethodPut, "/api/lists/3", `{"color":null}`)

	assert.Equal(t, http.StatusOK, rr.Code)
	body := decodeBody(t, rr)
	assert.Nil(t, body["color"])
	assert.Contains(t, body, "color")
	tr.lists.AssertExpectations(t)
}

// TestTaskHandler_GetTasks тестирует фильтрацию задач
func TestTaskHandler_GetTasks(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		filter         task.Filter
		expectedStatus int
		expectedError  string
	}{
		{name: "all", path: "/api/tasks", filter: task.Filter{}, expectedStatus: http.StatusOK},
		{name: "query by list", path: "/api/tasks?listId=4", filter: task.ByList(4), expectedStatus: http.StatusOK},
		{name: "query unfiled", path: "/api/tasks?listId=none", filter: task.WithoutList(), expectedStatus: http.StatusOK},
		{name: "query zero is unfiled", path: "/api/tasks?listId=0", filter: task.WithoutList(), expectedStatus: http.StatusOK},
		{name: "query invalid", path: "/api/tasks?listId=abc", expectedStatus: http.StatusBadRequest, expectedError: service.MsgInvalidListID},
		{name: "path by list", path: "/api/tasks/list/4", filter: task.ByList(4), expectedStatus: http.StatusOK},
		{name: "path invalid list", path: "/api/tasks/list/x", expectedStatus: http.StatusBadRequest, expectedError: service.MsgInvalidListID},
		{name: "without list", path: "/api/tasks/without-list", filter: task.WithoutList(), expectedStatus: http.StatusOK},
		{name: "completed", path: "/api/tasks/completed", filter: task.ByCompletion(true), expectedStatus: http.StatusOK},
		{name: "pending", path: "/api/tasks/pending", filter: task.ByCompletion(false), expectedStatus: http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter()
			tr.tasks.On("GetTasks", mock.Anything, tt.filter).Return([]*task.Task{}, nil)

			rr := tr.do(http.MethodGet, tt.path, "")

			assert.Equal(t, tt.expectedStatus, rr.Code)
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeBody(t, rr)["error"])
				tr.tasks.AssertNotCalled(t, "GetTasks", mock.Anything, mock.Anything)
				return
			}
			assert.JSONEq(t, `[]`, rr.Body.String())
			tr.tasks.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_FilterErrorsUseOperationMessage(t *testing.T) {
	tests := []struct {
		path    string
		message string
	}{
		{"/api/tasks", "Error al obtener las tareas"},
		{"/api/tasks/completed", "Error al obtener las tareas completadas"},
		{"/api/tasks/pending", "Error al obtener las tareas pendientes"},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			tr := newTestRouter()
			tr.tasks.On("GetTasks", mock.Anything, mock.Anything).Return(nil, errors.New("boom"))

			rr := tr.do(http.MethodGet, tt.path, "")

			assert.Equal(t, http.StatusInternalServerError, rr.Code)
			body := decodeBody(t, rr)
			assert.Equal(t, tt.message, body["error"])
			assert.Equal(t, "boom", body["message"])
		})
	}
}

// TestTaskHandler_PostTask тестирует разбор тела запроса на создание задачи
func TestTaskHandler_PostTask(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		expectedPatch  *task.Patch
		expectedStatus int
		expectedError  string
	}{
		{
			name: "minimal",
			body: `{"title":"Leche"}`,
			expectedPatch: &task.Patch{
				Title: nullable.Value("Leche"),
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "list id as string and plain date",
			body: `{"title":"Leche","listId":"3","dueDate":"2026-03-01","priority":1}`,
			expectedPatch: &task.Patch{
				Title:    nullable.Value("Leche"),
				ListID:   nullable.Value(int64(3)),
				DueDate:  nullable.Value(mustDate("2026-03-01")),
				Priority: nullable.Value(task.PriorityHigh),
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name: "explicit nulls",
			body: `{"title":"Leche","listId":null,"description":null,"dueDate":null}`,
			expectedPatch: &task.Patch{
				Title:       nullable.Value("Leche"),
				ListID:      nullable.Null[int64](),
				Description: nullable.Null[string](),
				DueDate:     nullable.Null[time.Time](),
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "invalid list id",
			body:           `{"title":"Leche","listId":"abc"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.MsgInvalidListID,
		},
		{
			name:           "invalid due date",
			body:           `{"title":"Leche","dueDate":"mañana"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.MsgInvalidDueDate,
		},
		{
			name:           "priority not a number",
			body:           `{"title":"Leche","priority":"alta"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.MsgInvalidPriority,
		},
		{
			name:           "completion not a bool",
			body:           `{"title":"Leche","isCompleted":"yes"}`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  service.MsgInvalidCompletion,
		},
		{
			name:           "array body",
			body:           `[1,2]`,
			expectedStatus: http.StatusBadRequest,
			expectedError:  handlers.MsgInvalidBody,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tr := newTestRouter()
			if tt.expectedPatch != nil {
				tr.tasks.On("CreateTask", mock.Anything, *tt.expectedPatch).
					Return(&task.Task{ID: 1, Title: "Leche", Priority: task.DefaultPriority}, nil)
			}

			rr := tr.do(http.MethodPost, "/api/tasks", tt.body)

			assert.Equal(t, tt.expectedStatus, rr.Code, rr.Body.String())
			if tt.expectedError != "" {
				assert.Equal(t, tt.expectedError, decodeBody(t, rr)["error"])
				tr.tasks.AssertNotCalled(t, "CreateTask", mock.Anything, mock.Anything)
				return
			}
			tr.tasks.AssertExpectations(t)
		})
	}
}

func TestTaskHandler_PostTask_EmptyBody(t *testing.T) {
	tr := newTestRouter()
	tr.tasks.On("CreateTask", mock.Anything, task.Patch{}).
		Return(nil, service.NewValidationError(service.MsgTitleRequired))

	req := httptest.NewRequest(http.MethodPost, "/api/tasks", nil)
	rr := httptest.NewRecorder()
	tr.router.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, service.MsgTitleRequired, decodeBody(t, rr)["error"])
}

func TestTaskHandler_CompleteAndPending(t *testing.T) {
	tests := []struct {
		path      string
		completed bool
	}{
		{"/api/tasks/5/complete", true},
		{"/api/tasks/5/pending", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			tr := newTestRouter()
			tr.tasks.On("SetCompleted", mock.Anything, int64(5), tt.completed).
				Return(&task.Task{ID: 5, IsCompleted: tt.completed}, nil)

			rr := tr.do(http.MethodPatch, tt.path, "")

			assert.Equal(t, http.StatusOK, rr.Code)
			assert.Equal(t, tt.completed, decodeBody(t, rr)["isCompleted"])
		})
	}

	t.Run("not found", func(t *testing.T) {
		tr := newTestRouter()
		tr.tasks.On("SetCompleted", mock.Anything, int64(5), true).
			Return(nil, service.NewNotFound(service.MsgTaskNotFound, nil))

		rr := tr.do(http.MethodPatch, "/api/tasks/5/complete", "")

		assert.Equal(t, http.StatusNotFound, rr.Code)
		assert.Equal(t, service.MsgTaskNotFound, decodeBody(t, rr)["error"])
	})
}

func TestTaskHandler_DeleteTasksByList(t *testing.T) {
	tr := newTestRouter()
	tr.tasks.On("DeleteTasksByList", mock.Anything, int64(2)).Return(int64(4), nil)

	rr := tr.do(http.MethodDelete, "/api/tasks/list/2", "")

	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"deleted":4}`, rr.Body.String())
}

func TestTaskHandler_DeleteTask(t *testing.T) {
	tr := newTestRouter()
	tr.tasks.On("DeleteTask", mock.Anything, int64(2)).Return(nil)

	rr := tr.do(http.MethodDelete, "/api/tasks/2", "")

	assert.Equal(t, http.StatusNoContent, rr.Code)

	rr = tr.do(http.MethodDelete, "/api/tasks/dos", "")
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, handlers.MsgInvalidID, decodeBody(t, rr)["error"])
}

func TestRouter_UnknownRoute(t *testing.T) {
	tr := newTestRouter()

	rr := tr.do(http.MethodGet, "/api/nope/1/2", "")

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
