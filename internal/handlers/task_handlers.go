package handlers

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"taskLists/internal/handlers/dto"
	"taskLists/internal/logger"
	"taskLists/internal/models/task"
	"taskLists/internal/service"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

// unfiledQuery selects the tasks without a list in GET /api/tasks?listId=
const unfiledQuery = "none"

type TaskHandler struct {
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{
		TaskService: taskService,
	}
}

// GetTasks lists every task, or the tasks of one list when listId is given.
func (h *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	filter, ok := filterFromQuery(r.URL.Query().Get("listId"))
	if !ok {
		badRequest(w, r, service.MsgInvalidListID, zap.String("listId", r.URL.Query().Get("listId")))
		return
	}
	h.writeTasks(w, r, filter, opGetTasks)
}

func (h *TaskHandler) GetTasksByList(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseID(r, "listId")
	if !ok {
		badRequest(w, r, service.MsgInvalidListID, zap.String("listId", chi.URLParam(r, "listId")))
		return
	}
	h.writeTasks(w, r, task.ByList(listID), opGetTasks)
}

func (h *TaskHandler) GetTasksWithoutList(w http.ResponseWriter, r *http.Request) {
	h.writeTasks(w, r, task.WithoutList(), opGetTasks)
}

func (h *TaskHandler) GetCompletedTasks(w http.ResponseWriter, r *http.Request) {
	h.writeTasks(w, r, task.ByCompletion(true), opGetCompleted)
}

func (h *TaskHandler) GetPendingTasks(w http.ResponseWriter, r *http.Request) {
	h.writeTasks(w, r, task.ByCompletion(false), opGetPending)
}

func (h *TaskHandler) writeTasks(w http.ResponseWriter, r *http.Request, filter task.Filter, op string) {
	tasks, err := h.TaskService.GetTasks(r.Context(), filter)
	if err != nil {
		handleError(w, r, err, op)
		return
	}
	responseWithBody(w, http.StatusOK, tasks)
}

func (h *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, r, MsgInvalidID, zap.String("id", chi.URLParam(r, "id")))
		return
	}

	t, err := h.TaskService.GetTaskByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err, opGetTask)
		return
	}
	responseWithBody(w, http.StatusOK, t)
}

func (h *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	patch, ok := readTaskPatch(w, r)
	if !ok {
		return
	}

	t, err := h.TaskService.CreateTask(r.Context(), patch)
	if err != nil {
		handleError(w, r, err, opCreateTask)
		return
	}

	logger.Info("HTTP_OUT: task created",
		zap.Int64("task_id", t.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))
	responseWithBody(w, http.StatusCreated, t)
}

func (h *TaskHandler) UpdateTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, r, MsgInvalidID)
		return
	}

	patch, ok := readTaskPatch(w, r)
	if !ok {
		return
	}

	t, err := h.TaskService.UpdateTask(r.Context(), id, patch)
	if err != nil {
		handleError(w, r, err, opUpdateTask)
		return
	}
	responseWithBody(w, http.StatusOK, t)
}

func (h *TaskHandler) CompleteTask(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, true, opCompleteTask)
}

func (h *TaskHandler) PendingTask(w http.ResponseWriter, r *http.Request) {
	h.setCompleted(w, r, false, opPendingTask)
}

func (h *TaskHandler) setCompleted(w http.ResponseWriter, r *http.Request, completed bool, op string) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, r, MsgInvalidID)
		return
	}

	t, err := h.TaskService.SetCompleted(r.Context(), id, completed)
	if err != nil {
		handleError(w, r, err, op)
		return
	}
	responseWithBody(w, http.StatusOK, t)
}

func (h *TaskHandler) DeleteTask(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, r, MsgInvalidID)
		return
	}

	if err := h.TaskService.DeleteTask(r.Context(), id); err != nil {
		handleError(w, r, err, opDeleteTask)
		return
	}
	responseNoContent(w)
}

func (h *TaskHandler) DeleteTasksByList(w http.ResponseWriter, r *http.Request) {
	listID, ok := parseID(r, "listId")
	if !ok {
		badRequest(w, r, service.MsgInvalidListID)
		return
	}

	count, err := h.TaskService.DeleteTasksByList(r.Context(), listID)
	if err != nil {
		handleError(w, r, err, opDeleteByList)
		return
	}
	responseWithBody(w, http.StatusOK, dto.DeletedResponse{Deleted: count})
}

func readTaskPatch(w http.ResponseWriter, r *http.Request) (task.Patch, bool) {
	var request dto.TaskRequest
	if err := decodeJSON(w, r, &request); err != nil {
		decodeError(w, r, err)
		return task.Patch{}, false
	}

	patch, err := request.ToPatch()
	if err != nil {
		handleError(w, r, err, "")
		return task.Patch{}, false
	}
	return patch, true
}

// filterFromQuery maps the listId query value: absent means every task, "none"
// (or 0) the unfiled ones, any other integer one list.
func filterFromQuery(value string) (task.Filter, bool) {
	value = strings.TrimSpace(value)
	switch strings.ToLower(value) {
	case "":
		return task.Filter{}, true
	case unfiledQuery, "null":
		return task.WithoutList(), true
	}

	listID, err := strconv.ParseInt(value, 10, 64)
	if err != nil || listID < 0 {
		return task.Filter{}, false
	}
	if listID == 0 {
		return task.WithoutList(), true
	}
	return task.ByList(listID), true
}
