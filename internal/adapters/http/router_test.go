package http_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/dverbeek84/raciflow/internal/adapters/events"
	adapthttp "github.com/dverbeek84/raciflow/internal/adapters/http"
	"github.com/dverbeek84/raciflow/internal/adapters/http/handlers"
	"github.com/dverbeek84/raciflow/internal/domain/task"
	"github.com/dverbeek84/raciflow/internal/ports"
)

// stubTaskService embeds the port interface for the methods a test never
// reaches and overrides the ones it does.
type stubTaskService struct {
	ports.TaskService
	listFn func(ctx context.Context, filter ports.TaskFilter) ([]task.Task, error)
}

func (s *stubTaskService) ListTasks(ctx context.Context, filter ports.TaskFilter) ([]task.Task, error) {
	return s.listFn(ctx, filter)
}

type stubRegistry struct {
	results map[string]error
}

func (s *stubRegistry) Register(_ ports.HealthChecker) {}

func (s *stubRegistry) CheckAll(_ context.Context) map[string]error {
	return s.results
}

func newTestRouter(svc ports.TaskService, middlewares ...func(http.Handler) http.Handler) http.Handler {
	th := handlers.NewTaskHandler(svc)
	eh := handlers.NewEventsHandler(events.NewHub(8, nil, nil))
	hh := handlers.NewHealthHandler(&stubRegistry{results: map[string]error{}})
	return adapthttp.NewRouter(th, eh, hh, time.Second, middlewares...)
}

func TestRouter_AllRoutesRegistered(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubTaskService{})

	expectedRoutes := []struct {
		method string
		path   string
	}{
		{http.MethodGet, "/health/live"},
		{http.MethodGet, "/health/ready"},
		{http.MethodGet, "/api/v1/tasks"},
		{http.MethodPost, "/api/v1/tasks"},
		{http.MethodGet, "/api/v1/tasks/{id}"},
		{http.MethodPatch, "/api/v1/tasks/{id}"},
		{http.MethodDelete, "/api/v1/tasks/{id}"},
		{http.MethodGet, "/api/v1/tasks/{id}/permissions"},
		{http.MethodGet, "/api/v1/tasks/{id}/lock"},
		{http.MethodPost, "/api/v1/tasks/{id}/lock"},
		{http.MethodDelete, "/api/v1/tasks/{id}/lock"},
		{http.MethodPost, "/api/v1/tasks/{id}/subtasks"},
		{http.MethodPatch, "/api/v1/subtasks/{id}/status"},
		{http.MethodDelete, "/api/v1/subtasks/{id}"},
		{http.MethodGet, "/api/v1/events"},
	}

	chiRouter, ok := router.(*chi.Mux)
	if !ok {
		t.Fatal("router is not *chi.Mux")
	}

	registered := make(map[string]bool)
	err := chi.Walk(chiRouter, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		registered[method+" "+route] = true
		return nil
	})
	if err != nil {
		t.Fatalf("chi.Walk error: %v", err)
	}

	for _, expected := range expectedRoutes {
		key := expected.method + " " + expected.path
		if !registered[key] {
			t.Errorf("route %s not registered", key)
		}
	}
}

func TestRouter_MiddlewareApplied(t *testing.T) {
	t.Parallel()

	called := false
	testMW := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			called = true
			next.ServeHTTP(w, r)
		})
	}

	router := newTestRouter(&stubTaskService{}, testMW)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/health/ready", nil)
	router.ServeHTTP(rec, req)

	if !called {
		t.Error("middleware was not called")
	}
}

func TestRouter_IntegrationListTasks(t *testing.T) {
	t.Parallel()

	svc := &stubTaskService{
		listFn: func(_ context.Context, _ ports.TaskFilter) ([]task.Task, error) {
			return []task.Task{}, nil
		},
	}
	router := newTestRouter(svc)

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/tasks", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusOK)
	}
}

func TestRouter_NotFoundReturns404(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubTaskService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/unknown", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusNotFound)
	}
}

func TestRouter_MethodNotAllowed(t *testing.T) {
	t.Parallel()

	router := newTestRouter(&stubTaskService{})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPut, "/api/v1/tasks", nil)
	router.ServeHTTP(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want %d", rec.Code, http.StatusMethodNotAllowed)
	}
}
