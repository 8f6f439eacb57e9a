package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"modelreg/internal/engine"
	"modelreg/internal/manager"
	"modelreg/internal/model"
	"modelreg/pkg/types"
)

// HTTPError allows services to provide an HTTP status code for an error.
type HTTPError interface {
	error
	StatusCode() int
}

// statusFor maps service errors to HTTP status codes and a metric kind.
func statusFor(err error) (int, string) {
	var he HTTPError
	switch {
	case manager.IsModelNotFound(err), manager.IsOperationNotFound(err):
		return http.StatusNotFound, "not_found"
	case manager.IsModelExists(err):
		return http.StatusConflict, "exists"
	case model.IsNotLoaded(err):
		return http.StatusConflict, "not_loaded"
	case model.IsConfigError(err):
		return http.StatusBadRequest, "config"
	case engine.IsDependencyUnavailable(err):
		return http.StatusServiceUnavailable, "dependency"
	case model.IsLoadError(err):
		return http.StatusInternalServerError, "load"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout, "timeout"
	case errors.As(err, &he):
		return he.StatusCode(), "http"
	}
	return http.StatusInternalServerError, "internal"
}

// writeError maps err and writes it as a JSON error payload.
func writeError(w http.ResponseWriter, err error) int {
	status, kind := statusFor(err)
	incError(kind)
	writeJSONError(w, status, err.Error())
	return status
}

// writeJSONError writes a consistent JSON error payload.
func writeJSONError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(types.ErrorResponse{Error: msg, Code: status})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		logger().Error().Err(err).Msg("encode response")
	}
}
