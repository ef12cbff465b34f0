// Package http provides the inbound HTTP adapter including routing and server lifecycle.
package http

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dverbeek84/raciflow/internal/adapters/http/handlers"
	"github.com/dverbeek84/raciflow/internal/adapters/http/middleware"
)

// NewRouter creates an HTTP handler with all application routes registered.
// Middleware is applied globally in the order given. requestTimeout bounds
// the JSON API routes; the SSE stream is exempt because it stays open.
func NewRouter(
	taskHandler *handlers.TaskHandler,
	eventsHandler *handlers.EventsHandler,
	healthHandler *handlers.HealthHandler,
	requestTimeout time.Duration,
	middlewares ...func(http.Handler) http.Handler,
) http.Handler {
	r := chi.NewRouter()

	for _, mw := range middlewares {
		r.Use(mw)
	}

	// Health endpoints (outside /api/v1 prefix).
	r.Get("/health/live", healthHandler.Liveness)
	r.Get("/health/ready", healthHandler.Readiness)

	// API v1 routes.
	r.Route("/api/v1", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			r.Use(middleware.Timeout(requestTimeout))

			// Task CRUD and permissions.
			r.Get("/tasks", taskHandler.ListTasks)
			r.Post("/tasks", taskHandler.CreateTask)
			r.Get("/tasks/{id}", taskHandler.GetTask)
			r.Patch("/tasks/{id}", taskHandler.UpdateTask)
			r.Delete("/tasks/{id}", taskHandler.DeleteTask)
			r.Get("/tasks/{id}/permissions", taskHandler.GetPermissions)

			// Advisory editing lock.
			r.Get("/tasks/{id}/lock", taskHandler.GetLockStatus)
			r.Post("/tasks/{id}/lock", taskHandler.LockTask)
			r.Delete("/tasks/{id}/lock", taskHandler.UnlockTask)

			// Subtasks nested under their parent, flat for direct operations.
			r.Post("/tasks/{id}/subtasks", taskHandler.CreateSubTask)
			r.Patch("/subtasks/{id}/status", taskHandler.UpdateSubTaskStatus)
			r.Delete("/subtasks/{id}", taskHandler.DeleteSubTask)
		})

		// Long-lived SSE stream, outside the timeout group.
		r.Get("/events", eventsHandler.Stream)
	})

	return r
}
