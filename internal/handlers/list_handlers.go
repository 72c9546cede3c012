package handlers

import (
	"net/http"
	"time"

	"taskLists/internal/handlers/dto"
	"taskLists/internal/logger"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"
)

type ListHandler struct {
	ListService ListService
}

func NewListHandler(listService ListService) *ListHandler {
	return &ListHandler{
		ListService: listService,
	}
}

func (h *ListHandler) GetAllLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.ListService.GetAllLists(r.Context())
	if err != nil {
		handleError(w, r, err, opGetLists)
		return
	}
	responseWithBody(w, http.StatusOK, lists)
}

func (h *ListHandler) GetListByID(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, r, MsgInvalidID, zap.String("id", chi.URLParam(r, "id")))
		return
	}

	l, err := h.ListService.GetListByID(r.Context(), id)
	if err != nil {
		handleError(w, r, err, opGetList)
		return
	}
	responseWithBody(w, http.StatusOK, l)
}

func (h *ListHandler) PostList(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var request dto.ListRequest
	if err := decodeJSON(w, r, &request); err != nil {
		decodeError(w, r, err)
		return
	}

	l, err := h.ListService.CreateList(r.Context(), request.ToPatch())
	if err != nil {
		handleError(w, r, err, opCreateList)
		return
	}

	logger.Info("HTTP_OUT: list created",
		zap.Int64("list_id", l.ID),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))
	responseWithBody(w, http.StatusCreated, l)
}

func (h *ListHandler) UpdateList(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, r, MsgInvalidID)
		return
	}

	var request dto.ListRequest
	if err := decodeJSON(w, r, &request); err != nil {
		decodeError(w, r, err)
		return
	}

	l, err := h.ListService.UpdateList(r.Context(), id, request.ToPatch())
	if err != nil {
		handleError(w, r, err, opUpdateList)
		return
	}
	responseWithBody(w, http.StatusOK, l)
}

func (h *ListHandler) DeleteList(w http.ResponseWriter, r *http.Request) {
	id, ok := parseID(r, "id")
	if !ok {
		badRequest(w, r, MsgInvalidID)
		return
	}

	if err := h.ListService.DeleteList(r.Context(), id); err != nil {
		handleError(w, r, err, opDeleteList)
		return
	}
	responseNoContent(w)
}
