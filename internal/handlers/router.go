package handlers

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// NewRouter mounts every route of the API. Middleware is the caller's job.
func NewRouter(lists ListService, tasks TaskService, health HealthChecker) *chi.Mux {
	listHandler := NewListHandler(lists)
	taskHandler := NewTaskHandler(tasks)
	healthHandler := NewHealthHandler(health)

	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		responseWithError(w, http.StatusNotFound, "Ruta no encontrada")
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		responseWithError(w, http.StatusMethodNotAllowed, "Método no permitido")
	})

	r.Get("/health", healthHandler.HealthCheck)

	r.Route("/api", func(r chi.Router) {
		r.Get("/", Index)

		r.Route("/lists", func(r chi.Router) {
			r.Get("/", listHandler.GetAllLists) // GET /api/lists
			r.Post("/", listHandler.PostList)   // POST /api/lists

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", listHandler.GetListByID)   // GET /api/lists/{id}
				r.Put("/", listHandler.UpdateList)    // PUT /api/lists/{id}
				r.Delete("/", listHandler.DeleteList) // DELETE /api/lists/{id}
			})
		})

		r.Route("/tasks", func(r chi.Router) {
			r.Get("/", taskHandler.GetTasks)  // GET /api/tasks?listId=
			r.Post("/", taskHandler.PostTask) // POST /api/tasks

			r.Get("/without-list", taskHandler.GetTasksWithoutList)
			r.Get("/completed", taskHandler.GetCompletedTasks)
			r.Get("/pending", taskHandler.GetPendingTasks)

			r.Route("/list/{listId}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTasksByList)       // GET /api/tasks/list/{listId}
				r.Delete("/", taskHandler.DeleteTasksByList) // DELETE /api/tasks/list/{listId}
			})

			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", taskHandler.GetTaskByID)   // GET /api/tasks/{id}
				r.Put("/", taskHandler.UpdateTask)    // PUT /api/tasks/{id}
				r.Delete("/", taskHandler.DeleteTask) // DELETE /api/tasks/{id}
				r.Patch("/complete", taskHandler.CompleteTask)
				r.Patch("/pending", taskHandler.PendingTask)
			})
		})
	})

	return r
}
