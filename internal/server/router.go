package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"task-tracker/internal/manager"
)

const banner = "Task Tracker Backend API is running!"

// NewRouter собирает все маршруты API. Задачи доступны и под /api/tasks,
// и под /tasks - за обоими префиксами одни и те же обработчики.
func NewRouter(tm *manager.TaskManager) *chi.Mux {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(requestLogger)
	r.Use(recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodDelete, http.MethodOptions},
		AllowedHeaders: []string{"*"},
	}))

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, msgRouteNotFound, nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, msgMethodNotAllowed, nil)
	})

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		_, _ = w.Write([]byte(banner))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte("OK"))
	})
	r.Handle("/metrics", promhttp.Handler())

	r.Mount("/api/tasks", taskRoutes(tm))
	r.Mount("/tasks", taskRoutes(tm))

	return r
}

func taskRoutes(tm *manager.TaskManager) chi.Router {
	r := chi.NewRouter()

	r.Get("/", listTasksHandler(tm))
	r.Post("/", addTaskHandler(tm))

	r.Route("/{id}", func(r chi.Router) {
		r.Use(requireTask(tm))
		r.Delete("/", deleteTaskHandler(tm))
		r.Put("/", renameTaskHandler(tm))
		r.Put("/done", markDoneHandler(tm))
	})

	return r
}
