package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"

	"task-tracker/internal/logger"
	"task-tracker/internal/manager"
	"task-tracker/internal/models"
)

const (
	msgTasksFetched     = "Tasks fetched successfully"
	msgTaskAdded        = "Task added successfully"
	msgTaskDeleted      = "Task deleted successfully"
	msgTaskDone         = "Task marked as done successfully"
	msgTaskRenamed      = "Task name updated successfully"
	msgNameRequired     = "Task name is required"
	msgNewNameRequired  = "New task name is required"
	msgAlreadyCompleted = "Task is already completed"
	msgTaskNotFound     = "Task not found"
	msgRouteNotFound    = "Route not found"
	msgMethodNotAllowed = "Method not allowed"
	msgInternal         = "Something broke!"
)

func writeEnvelope(w http.ResponseWriter, r *http.Request, status int, env models.Envelope) {
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(env); err != nil {
		logger.Error(r.Context(), err, "Ошибка кодирования ответа")
	}
}

func respondOK(w http.ResponseWriter, r *http.Request, status int, message string, data any) {
	writeEnvelope(w, r, status, models.Envelope{Message: message, Data: data, Success: true})
}

// respondError пишет конверт с success=false. Ошибки 5xx логируются как ERROR,
// остальные - как DEBUG; текст err клиенту не отдается.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string, err error) {
	args := []any{
		"request_id", middleware.GetReqID(r.Context()),
		"method", r.Method,
		"path", r.URL.Path,
		"status", status,
		"message", message,
	}
	if status >= http.StatusInternalServerError {
		logger.Error(r.Context(), err, "Ошибка обработки запроса", args...)
	} else {
		if err != nil {
			args = append(args, "error", err.Error())
		}
		logger.Debug(r.Context(), "Запрос отклонен", args...)
	}

	writeEnvelope(w, r, status, models.Envelope{Message: message, Success: false})
}

// errorResponse сопоставляет ошибки менеджера с кодом и текстом ответа
func errorResponse(err error) (int, string) {
	switch {
	case errors.Is(err, manager.ErrTaskNotFound):
		return http.StatusNotFound, msgTaskNotFound
	case errors.Is(err, manager.ErrEmptyName):
		return http.StatusBadRequest, msgNameRequired
	case errors.Is(err, manager.ErrAlreadyCompleted):
		return http.StatusBadRequest, msgAlreadyCompleted
	default:
		return http.StatusInternalServerError, msgInternal
	}
}

func respondManagerError(w http.ResponseWriter, r *http.Request, err error) {
	status, message := errorResponse(err)
	respondError(w, r, status, message, err)
}

func panicError(rec any) error {
	if err, ok := rec.(error); ok {
		return fmt.Errorf("panic: %w", err)
	}
	return fmt.Errorf("panic: %v", rec)
}
