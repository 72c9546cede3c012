// Package client talks to the task lists API over HTTP.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskLists/internal/models/list"
	"taskLists/internal/models/nullable"
	"taskLists/internal/models/task"
)

const DefaultTimeout = 30 * time.Second

// Fallback messages used when an error response carries no text of its own.
const (
	MsgGetLists       = "Error al obtener las listas"
	MsgGetList        = "Error al obtener la lista"
	MsgCreateList     = "Error al crear la lista"
	MsgUpdateList     = "Error al actualizar la lista"
	MsgDeleteList     = "Error al eliminar la lista"
	MsgGetTasks       = "Error al obtener las tareas"
	MsgGetTask        = "Error al obtener la tarea"
	MsgGetCompleted   = "Error al obtener las tareas completadas"
	MsgGetPending     = "Error al obtener las tareas pendientes"
	MsgCreateTask     = "Error al crear la tarea"
	MsgUpdateTask     = "Error al actualizar la tarea"
	MsgCompleteTask   = "Error al marcar la tarea como completada"
	MsgPendingTask    = "Error al marcar la tarea como pendiente"
	MsgDeleteTask     = "Error al eliminar la tarea"
	MsgDeleteListTask = "Error al eliminar las tareas de la lista"
)

// APIError is a non-2xx answer from the server.
type APIError struct {
	Status  int
	Message string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("%d: %s", e.Status, e.Message)
}

func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// ListInput is the body of list create and update. Absent fields are left out
// of the request; Null clears them.
type ListInput struct {
	Name  nullable.Field[string] `json:"name,omitzero"`
	Color nullable.Field[string] `json:"color,omitzero"`
}

type TaskInput struct {
	ListID      nullable.Field[int64]         `json:"listId,omitzero"`
	Title       nullable.Field[string]        `json:"title,omitzero"`
	Description nullable.Field[string]        `json:"description,omitzero"`
	DueDate     nullable.Field[time.Time]     `json:"dueDate,omitzero"`
	IsCompleted nullable.Field[bool]          `json:"isCompleted,omitzero"`
	Priority    nullable.Field[task.Priority] `json:"priority,omitzero"`
}

type Client struct {
	baseURL    string
	httpClient *http.Client
}

type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// New builds a client for the server at baseURL, e.g. http://localhost:3000.
// The /api prefix is added by the client.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) GetLists(ctx context.Context) ([]*list.List, error) {
	var lists []*list.List
	err := c.do(ctx, http.MethodGet, "/api/lists", nil, &lists, MsgGetLists)
	return lists, err
}

func (c *Client) GetList(ctx context.Context, id int64) (*list.List, error) {
	var l list.List
	if err := c.do(ctx, http.MethodGet, "/api/lists/"+itoa(id), nil, &l, MsgGetList); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) CreateList(ctx context.Context, in ListInput) (*list.List, error) {
	var l list.List
	if err := c.do(ctx, http.MethodPost, "/api/lists", in, &l, MsgCreateList); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) UpdateList(ctx context.Context, id int64, in ListInput) (*list.List, error) {
	var l list.List
	if err := c.do(ctx, http.MethodPut, "/api/lists/"+itoa(id), in, &l, MsgUpdateList); err != nil {
		return nil, err
	}
	return &l, nil
}

func (c *Client) DeleteList(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/lists/"+itoa(id), nil, nil, MsgDeleteList)
}

// GetTasks returns every task, or only the tasks of listID when it is not nil.
func (c *Client) GetTasks(ctx context.Context, listID *int64) ([]*task.Task, error) {
	path := "/api/tasks"
	if listID != nil {
		path += "?" + url.Values{"listId": {itoa(*listID)}}.Encode()
	}
	return c.getTasks(ctx, path, MsgGetTasks)
}

func (c *Client) GetTasksByList(ctx context.Context, listID int64) ([]*task.Task, error) {
	return c.getTasks(ctx, "/api/tasks/list/"+itoa(listID), MsgGetTasks)
}

func (c *Client) GetTasksWithoutList(ctx context.Context) ([]*task.Task, error) {
	return c.getTasks(ctx, "/api/tasks/without-list", MsgGetTasks)
}

func (c *Client) GetCompletedTasks(ctx context.Context) ([]*task.Task, error) {
	return c.getTasks(ctx, "/api/tasks/completed", MsgGetCompleted)
}

func (c *Client) GetPendingTasks(ctx context.Context) ([]*task.Task, error) {
	return c.getTasks(ctx, "/api/tasks/pending", MsgGetPending)
}

func (c *Client) getTasks(ctx context.Context, path, fallback string) ([]*task.Task, error) {
	var tasks []*task.Task
	err := c.do(ctx, http.MethodGet, path, nil, &tasks, fallback)
	return tasks, err
}

func (c *Client) GetTask(ctx context.Context, id int64) (*task.Task, error) {
	return c.taskRequest(ctx, http.MethodGet, "/api/tasks/"+itoa(id), nil, MsgGetTask)
}

func (c *Client) CreateTask(ctx context.Context, in TaskInput) (*task.Task, error) {
	return c.taskRequest(ctx, http.MethodPost, "/api/tasks", in, MsgCreateTask)
}

func (c *Client) UpdateTask(ctx context.Context, id int64, in TaskInput) (*task.Task, error) {
	return c.taskRequest(ctx, http.MethodPut, "/api/tasks/"+itoa(id), in, MsgUpdateTask)
}

func (c *Client) CompleteTask(ctx context.Context, id int64) (*task.Task, error) {
	return c.taskRequest(ctx, http.MethodPatch, "/api/tasks/"+itoa(id)+"/complete", nil, MsgCompleteTask)
}

func (c *Client) PendingTask(ctx context.Context, id int64) (*task.Task, error) {
	return c.taskRequest(ctx, http.MethodPatch, "/api/tasks/"+itoa(id)+"/pending", nil, MsgPendingTask)
}

func (c *Client) DeleteTask(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, "/api/tasks/"+itoa(id), nil, nil, MsgDeleteTask)
}

// DeleteTasksByList removes the tasks of a list and returns how many went.
func (c *Client) DeleteTasksByList(ctx context.Context, listID int64) (int64, error) {
	var res struct {
		Deleted int64 `json:"deleted"`
	}
	err := c.do(ctx, http.MethodDelete, "/api/tasks/list/"+itoa(listID), nil, &res, MsgDeleteListTask)
	return res.Deleted, err
}

func (c *Client) taskRequest(ctx context.Context, method, path string, body any, fallback string) (*task.Task, error) {
	var t task.Task
	if err := c.do(ctx, method, path, body, &t, fallback); err != nil {
		return nil, err
	}
	return &t, nil
}

// Health calls /health and returns the reported status.
func (c *Client) Health(ctx context.Context) (string, error) {
	var res struct {
		Status string `json:"status"`
	}
	err := c.do(ctx, http.MethodGet, "/health", nil, &res, "health check failed")
	if err != nil {
		return "", err
	}
	return res.Status, nil
}

func (c *Client) do(ctx context.Context, method, path string, body, out any, fallback string) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("encode request: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return decodeAPIError(resp, fallback)
	}
	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func decodeAPIError(resp *http.Response, fallback string) error {
	var body struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
	_ = json.Unmarshal(data, &body)

	msg := fallback
	switch {
	case body.Message != "":
		msg = body.Message
	case body.Error != "":
		msg = body.Error
	}
	return &APIError{Status: resp.StatusCode, Message: msg}
}

func itoa(id int64) string {
	return strconv.FormatInt(id, 10)
}
