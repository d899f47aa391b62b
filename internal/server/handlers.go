package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"task-tracker/internal/manager"
	"task-tracker/internal/models"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	// notblank: строка не пустая после TrimSpace
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

// decodeAndValidate читает JSON-тело. Битый JSON считается отсутствующим названием.
func decodeAndValidate(r *http.Request, v any) error {
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return err
	}
	return validate.Struct(v)
}

// requireTask отвечает 404 до вызова обработчика, если задачи с {id} нет
func requireTask(tm *manager.TaskManager) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if _, err := tm.GetTask(r.Context(), chi.URLParam(r, "id")); err != nil {
				respondManagerError(w, r, err)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

func listTasksHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		tasks, err := tm.GetAllTasks(r.Context())
		if err != nil {
			respondManagerError(w, r, err)
			return
		}
		respondOK(w, r, http.StatusOK, msgTasksFetched, tasks)
	}
}

func addTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.CreateTaskRequest
		if err := decodeAndValidate(r, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, msgNameRequired, err)
			return
		}

		task, err := tm.AddTask(r.Context(), req.Name)
		if err != nil {
			respondManagerError(w, r, err)
			return
		}
		respondOK(w, r, http.StatusCreated, msgTaskAdded, task)
	}
}

func deleteTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "id")
		if err := tm.DeleteTask(r.Context(), id); err != nil {
			respondManagerError(w, r, err)
			return
		}
		respondOK(w, r, http.StatusOK, msgTaskDeleted, models.DeletedTask{ID: id})
	}
}

func markDoneHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		task, err := tm.MarkDone(r.Context(), chi.URLParam(r, "id"))
		if err != nil {
			respondManagerError(w, r, err)
			return
		}
		respondOK(w, r, http.StatusOK, msgTaskDone, task)
	}
}

func renameTaskHandler(tm *manager.TaskManager) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req models.RenameTaskRequest
		if err := decodeAndValidate(r, &req); err != nil {
			respondError(w, r, http.StatusBadRequest, msgNewNameRequired, err)
			return
		}

		task, err := tm.RenameTask(r.Context(), chi.URLParam(r, "id"), req.Name)
		if err != nil {
			if errors.Is(err, manager.ErrEmptyName) {
				respondError(w, r, http.StatusBadRequest, msgNewNameRequired, err)
				return
			}
			respondManagerError(w, r, err)
			return
		}
		respondOK(w, r, http.StatusOK, msgTaskRenamed, task)
	}
}
