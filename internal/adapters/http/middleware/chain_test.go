package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dverbeek84/raciflow/internal/adapters/http/middleware"
)

// appendMiddleware records its tag when the request passes through.
func appendMiddleware(order *[]string, tag string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			*order = append(*order, tag)
			next.ServeHTTP(w, r)
		})
	}
}

func TestChain_ExecutionOrder(t *testing.T) {
	t.Parallel()

	var order []string
	handler := middleware.Chain(
		appendMiddleware(&order, "first"),
		appendMiddleware(&order, "second"),
		appendMiddleware(&order, "third"),
	)(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		order = append(order, "handler")
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	handler.ServeHTTP(rec, req)

	want := []string{"first", "second", "third", "handler"}
	if len(order) != len(want) {
		t.Fatalf("order = %v, want %v", order, want)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Errorf("order[%d] = %q, want %q", i, order[i], want[i])
		}
	}
}

func TestChain_Empty(t *testing.T) {
	t.Parallel()

	called := false
	handler := middleware.Chain()(http.HandlerFunc(func(_ http.ResponseWriter, _ *http.Request) {
		called = true
	}))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/test", http.NoBody)
	handler.ServeHTTP(rec, req)

	if !called {
		t.Error("handler not called through empty chain")
	}
}
