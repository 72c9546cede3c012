package handlers

import (
	"errors"
	"net/http"

	"taskLists/internal/logger"
	"taskLists/internal/service"

	"go.uber.org/zap"
)

// Messages owned by the HTTP layer.
const (
	MsgInvalidID          = "ID inválido"
	MsgInvalidBody        = "Cuerpo de la petición inválido"
	MsgInvalidContentType = "Content-Type debe ser application/json"
	MsgUnknownError       = "Error desconocido"
)

// Messages of unexpected failures, one per operation.
const (
	opGetLists     = "Error al obtener las listas"
	opGetList      = "Error al obtener la lista"
	opCreateList   = "Error al crear la lista"
	opUpdateList   = "Error al actualizar la lista"
	opDeleteList   = "Error al eliminar la lista"
	opGetTasks     = "Error al obtener las tareas"
	opGetTask      = "Error al obtener la tarea"
	opGetCompleted = "Error al obtener las tareas completadas"
	opGetPending   = "Error al obtener las tareas pendientes"
	opCreateTask   = "Error al crear la tarea"
	opUpdateTask   = "Error al actualizar la tarea"
	opCompleteTask = "Error al marcar la tarea como completada"
	opPendingTask  = "Error al marcar la tarea como pendiente"
	opDeleteTask   = "Error al eliminar la tarea"
	opDeleteByList = "Error al eliminar las tareas de la lista"
)

// handleError answers business errors with their own status and message and
// anything else with a 500 carrying op and the underlying error.
func handleError(w http.ResponseWriter, r *http.Request, err error, op string) {
	var businessErr *service.BusinessError
	if errors.As(err, &businessErr) {
		statusCode := mapBusinessErrorToHTTP(businessErr.Code)

		logger.Warn("HTTP: business error",
			zap.String("error_code", businessErr.Code),
			zap.String("message", businessErr.Message),
			zap.Int("http_status", statusCode),
			zap.String("path", r.URL.Path))

		responseWithError(w, statusCode, businessErr.Message)
		return
	}

	message := MsgUnknownError
	if err != nil {
		message = err.Error()
	}
	logger.Error("HTTP: service error", err,
		zap.String("operation", op),
		zap.String("path", r.URL.Path),
		zap.String("client_ip", r.RemoteAddr))

	responseWithJSON(w, http.StatusInternalServerError,
		toPayload("error", op),
		toPayload("message", message),
	)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	default:
		return http.StatusBadRequest
	}
}

// badRequest logs and answers a 400 that never reached the service.
func badRequest(w http.ResponseWriter, r *http.Request, message string, fields ...zap.Field) {
	fields = append(fields,
		zap.String("path", r.URL.Path),
		zap.String("client_ip", r.RemoteAddr))
	logger.Warn("HTTP: bad request: "+message, fields...)
	responseWithError(w, http.StatusBadRequest, message)
}
