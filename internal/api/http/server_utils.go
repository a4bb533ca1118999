package apihttp

import (
	"encoding/json"
	"errors"
	"net/http"

	"bitserve/internal/domain"
	"bitserve/internal/usecase"
)

type errorEnvelope struct {
	Error errorPayload `json:"error"`
}

type errorPayload struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, errorEnvelope{Error: errorPayload{Code: code, Message: message}})
}

func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeUseCaseError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "not_found", "torrent not found")
	case errors.Is(err, usecase.ErrInvalidMetadata):
		writeError(w, http.StatusBadRequest, "invalid_request", "invalid torrent metadata")
	case errors.Is(err, usecase.ErrEngineTimeout):
		writeError(w, http.StatusGatewayTimeout, "engine_timeout", "engine did not respond in time")
	case errors.Is(err, usecase.ErrEngine):
		writeError(w, http.StatusInternalServerError, "engine_error", err.Error())
	case errors.Is(err, usecase.ErrRepository):
		writeError(w, http.StatusInternalServerError, "repository_error", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}

// resultStatus flattens a per-item error into the code the response carries.
func resultStatus(err error) string {
	switch {
	case err == nil:
		return "ok"
	case errors.Is(err, domain.ErrNotFound):
		return "not_found"
	case errors.Is(err, usecase.ErrInvalidMetadata):
		return "invalid_metadata"
	case errors.Is(err, usecase.ErrEngineTimeout):
		return "engine_timeout"
	case errors.Is(err, usecase.ErrEngine):
		return "engine_error"
	case errors.Is(err, usecase.ErrRepository):
		return "repository_error"
	default:
		return "error"
	}
}
