package handler

import (
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/forttask/forttask/internal/apperr"
	"github.com/forttask/forttask/internal/auth"
)

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// respondError is the single boundary adapter from tagged application
// errors to HTTP responses. Handlers return errors; only this function
// decides status codes, so the mapping is not repeated per endpoint.
func respondError(w http.ResponseWriter, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	switch apperr.KindOf(err) {
	case apperr.KindValidation:
		status = http.StatusBadRequest
	case apperr.KindNotFound:
		status = http.StatusNotFound
	case apperr.KindUnauthorized:
		status = http.StatusUnauthorized
	case apperr.KindForbidden:
		status = http.StatusForbidden
	case apperr.KindConflict:
		status = http.StatusConflict
	}

	if status >= 500 {
		logger.Error("handler error", "error", err)
	}
	writeJSON(w, status, map[string]string{"error": apperr.MessageOf(err)})
}

// decodeJSON reads the request body into dst, tagging failures as
// validation errors. An empty or malformed body yields the generic
// "invalid request" the API promises for bad payloads.
func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.Validation("invalid request")
	}
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.Wrap(apperr.KindValidation, "invalid request", err)
	}
	return nil
}

func parseIDParam(r *http.Request) (int64, error) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		return 0, apperr.Validation("invalid id")
	}
	return id, nil
}

// queryID reads a required numeric query parameter, naming it in the error.
func queryID(r *http.Request, name string) (int64, error) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return 0, apperr.Validation("%s query parameter is required", name)
	}
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, apperr.Validation("%s must be an integer", name)
	}
	return id, nil
}

// identityFor returns the verified identity or an unauthorized error. The
// session middleware populates it for every protected route, so a miss
// means the handler was wired outside the middleware.
func identityFor(r *http.Request) (auth.Identity, error) {
	id, ok := auth.FromContext(r.Context())
	if !ok {
		return auth.Identity{}, apperr.Unauthorized("unauthorized")
	}
	return id, nil
}

// requireOwnHousehold checks a client-supplied household id against the
// session's. Zero means "not supplied" and resolves to the session's own
// household.
func requireOwnHousehold(identity auth.Identity, householdID int64) (int64, error) {
	if householdID == 0 {
		return identity.HouseholdID, nil
	}
	if householdID != identity.HouseholdID {
		return 0, apperr.Forbidden("household mismatch")
	}
	return householdID, nil
}
