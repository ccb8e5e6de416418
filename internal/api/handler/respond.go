package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"runtime/debug"

	"customer-service/internal/api/handler/dto"
	"customer-service/internal/pkg/apperrors"
)

// exposeStackTraces controls whether error envelopes carry a stack trace.
// Enabled outside production only.
var exposeStackTraces = false

func ExposeStackTraces(enabled bool) {
	exposeStackTraces = enabled
}

var statusByCode = map[string]int{
	"VALIDATION_ERROR": http.StatusBadRequest,
	"NOT_FOUND":        http.StatusNotFound,
	"CONFLICT":         http.StatusConflict,
	"UNAUTHORIZED":     http.StatusUnauthorized,
	"INTERNAL_ERROR":   http.StatusInternalServerError,
}

func decodeJSON(r *http.Request, v interface{}) error {
	if r.Body == nil {
		return fmt.Errorf("no request body")
	}
	defer r.Body.Close()
	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	return decoder.Decode(v)
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	response, err := json.Marshal(payload)
	if err != nil {
		slog.Default().Error("Failed to marshal JSON response", "error", err)
		http.Error(w, `{"success":false,"error":{"code":"INTERNAL_ERROR","message":"Internal server error"}}`, http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	w.Write(response)
}

// RespondJSON is respondJSON exposed for router-level fallback handlers.
func RespondJSON(w http.ResponseWriter, status int, payload interface{}) {
	respondJSON(w, status, payload)
}

// respondError is the single formatter every failure funnels through. It
// maps the error chain onto the envelope code, logs with request
// method/path and hides the message of unclassified errors.
func respondError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.Code(err)
	status := statusByCode[code]
	if status == 0 {
		status = http.StatusInternalServerError
	}

	message := err.Error()
	if code == "INTERNAL_ERROR" {
		message = "An unexpected error occurred"
		slog.Default().Error("Unhandled internal error",
			"error", err, "method", r.Method, "path", r.URL.Path)
	} else {
		var validationError *apperrors.ValidationError
		if errors.As(err, &validationError) {
			message = validationError.Error()
		}
		slog.Default().Warn("Request failed",
			"code", code, "error", err, "method", r.Method, "path", r.URL.Path)
	}

	detail := dto.ErrorDetail{
		Code:    code,
		Message: message,
	}
	if exposeStackTraces {
		detail.Stack = string(debug.Stack())
	}

	respondJSON(w, status, dto.ErrorResponse{Success: false, Error: detail})
}
