package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/zatekoja/wastenutrient/internal/infrastructure/observability"
	apperrors "github.com/zatekoja/wastenutrient/pkg/errors"
)

type errorResponse struct {
	Error string `json:"error"`
	Type  string `json:"type,omitempty"`
	Field string `json:"field,omitempty"`
}

func respondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}

func respondWithError(w http.ResponseWriter, statusCode int, message string) {
	respondWithJSON(w, statusCode, errorResponse{Error: message})
}

// respondWithAppError maps err onto a status code. Internal details are
// logged, never returned.
func respondWithAppError(w http.ResponseWriter, r *http.Request, err error) {
	appErr, ok := apperrors.As(err)
	if !ok {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("unhandled error")
		respondWithError(w, http.StatusInternalServerError, "internal server error")
		return
	}

	status := statusFor(appErr.Type)
	if status == http.StatusInternalServerError {
		observability.LoggerFromContext(r.Context()).Error().Err(err).Str("path", r.URL.Path).Msg("request failed")
		respondWithJSON(w, status, errorResponse{Error: "internal server error", Type: string(appErr.Type)})
		return
	}

	respondWithJSON(w, status, errorResponse{
		Error: appErr.Message,
		Type:  string(appErr.Type),
		Field: appErr.Field,
	})
}

func statusFor(t apperrors.ErrorType) int {
	switch t {
	case apperrors.ErrorTypeSchema, apperrors.ErrorTypeValidation:
		return http.StatusBadRequest
	case apperrors.ErrorTypeInsufficientData:
		return http.StatusUnprocessableEntity
	case apperrors.ErrorTypeUnknownPlant, apperrors.ErrorTypeNotFound:
		return http.StatusNotFound
	case apperrors.ErrorTypeConflict:
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
