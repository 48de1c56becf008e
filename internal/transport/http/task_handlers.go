package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"cleverspace/internal/domain"
	"cleverspace/internal/dto"
	"cleverspace/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

type taskHandlers struct {
	tasks service.TaskService
}

func (h *taskHandlers) list(w http.ResponseWriter, r *http.Request) {
	tasks, err := h.tasks.List(r.Context())
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Success", tasks)
}

func (h *taskHandlers) create(w http.ResponseWriter, r *http.Request) {
	var req dto.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}
	task, err := h.tasks.Create(r.Context(), req)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeSuccess(w, http.StatusCreated, "Task created", task)
}

func (h *taskHandlers) get(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	task, err := h.tasks.Get(r.Context(), id)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Success", task)
}

func (h *taskHandlers) update(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	var req dto.TaskRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request format", nil)
		return
	}
	task, err := h.tasks.Update(r.Context(), id, req)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Task updated", task)
}

func (h *taskHandlers) delete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	if err := h.tasks.Delete(r.Context(), id); err != nil {
		writeTaskError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *taskHandlers) swapComplete(w http.ResponseWriter, r *http.Request) {
	id, ok := taskID(w, r)
	if !ok {
		return
	}
	task, err := h.tasks.SwapComplete(r.Context(), id)
	if err != nil {
		writeTaskError(w, err)
		return
	}
	writeSuccess(w, http.StatusOK, "Task updated", task)
}

func taskID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid task id", nil)
		return uuid.Nil, false
	}
	return id, true
}

func writeTaskError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrTaskNotFound):
		writeError(w, http.StatusNotFound, "Task not found", nil)
	case errors.Is(err, domain.ErrMalformedRequest):
		writeError(w, http.StatusBadRequest, "Invalid request format", nil)
	default:
		writeError(w, http.StatusInternalServerError, "Something went wrong", nil)
	}
}
