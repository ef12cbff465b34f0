package handlers

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dverbeek84/raciflow/internal/adapters/http/dto"
	"github.com/dverbeek84/raciflow/internal/adapters/http/middleware"
	"github.com/dverbeek84/raciflow/internal/domain"
)

// parseID extracts a ULID path parameter from the chi URL params.
func parseID(r *http.Request, param string) (domain.ID, error) {
	return domain.ParseID(chi.URLParam(r, param))
}

// requireActor extracts the caller identity resolved by the identity
// middleware. On a missing or invalid identity it writes a 401 problem
// response and returns false.
func requireActor(w http.ResponseWriter, r *http.Request) (domain.Actor, bool) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		dto.WriteProblem(w, r, http.StatusUnauthorized, "missing X-User-ID header")
		return domain.Actor{}, false
	}
	if err := actor.Validate(); err != nil {
		dto.WriteProblem(w, r, http.StatusUnauthorized, "invalid caller identity: "+err.Error())
		return domain.Actor{}, false
	}
	return actor, true
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", slog.Any("error", err))
	}
}

// maxJSONBodyBytes is the maximum allowed size for a JSON request body (1 MB).
const maxJSONBodyBytes = 1 << 20

// decodeJSONBody decodes the request body as JSON into dst. The body is
// limited to maxJSONBodyBytes to prevent resource exhaustion. On failure,
// it writes a 400 error response and returns false.
func decodeJSONBody(w http.ResponseWriter, r *http.Request, dst any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxJSONBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		dto.WriteErrorResponse(w, r, &domain.ValidationError{
			Fields: map[string]string{"body": "invalid JSON"},
		})
		return false
	}
	return true
}

// validatable is implemented by request DTOs that support validation.
type validatable interface {
	Validate() error
}

// decodeAndValidate decodes the JSON request body into dst and validates it.
// On decode or validation failure it writes an error response and returns false.
func decodeAndValidate[T validatable](w http.ResponseWriter, r *http.Request, dst T) bool {
	if !decodeJSONBody(w, r, dst) {
		return false
	}
	if err := dst.Validate(); err != nil {
		dto.WriteErrorResponse(w, r, err)
		return false
	}
	return true
}
