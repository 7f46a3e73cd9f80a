package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"go.uber.org/zap"

	"github.com/ekaya-inc/ekaya-console/pkg/apperrors"
	"github.com/ekaya-inc/ekaya-console/pkg/logging"
)

// ApiResponse is the envelope of every successful API response.
type ApiResponse struct {
	Success bool   `json:"success"`
	Data    any    `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// ErrorResponse writes a JSON error response and returns any encoding error.
func ErrorResponse(w http.ResponseWriter, statusCode int, errorCode, message string) error {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	return json.NewEncoder(w).Encode(map[string]string{
		"error":   errorCode,
		"message": message,
	})
}

// WriteJSON writes a JSON response and returns any encoding error.
func WriteJSON(w http.ResponseWriter, statusCode int, data interface{}) error {
	w.Header().Set("Content-Type", "application/json")
	if statusCode != http.StatusOK {
		w.WriteHeader(statusCode)
	}
	return json.NewEncoder(w).Encode(data)
}

// errorStatus maps a service error to an HTTP status and error code.
func errorStatus(err error) (int, string) {
	switch {
	case errors.Is(err, apperrors.ErrInvalidRequest):
		return http.StatusBadRequest, "bad_request"
	case errors.Is(err, apperrors.ErrSchemaNotFound):
		return http.StatusNotFound, "schema_not_found"
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound, "not_found"
	case errors.Is(err, apperrors.ErrTokenExpired):
		return http.StatusUnauthorized, "token_expired"
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized, "unauthorized"
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden, "forbidden"
	case errors.Is(err, apperrors.ErrBackendUnavailable):
		return http.StatusBadGateway, "backend_unavailable"
	case errors.Is(err, apperrors.ErrBackendQuery):
		return http.StatusBadGateway, "backend_query_failed"
	default:
		return http.StatusInternalServerError, "internal_error"
	}
}

// writeServiceError logs err and writes the matching error response.
// Client errors log at debug; the message sent back is sanitized.
func writeServiceError(w http.ResponseWriter, logger *zap.Logger, msg string, err error, fields ...zap.Field) {
	status, code := errorStatus(err)
	sanitized := logging.SanitizeError(err)

	fields = append(fields, zap.Int("status", status), zap.String("error", sanitized))
	if status >= http.StatusInternalServerError {
		logger.Error(msg, fields...)
	} else {
		logger.Debug(msg, fields...)
	}

	if err := ErrorResponse(w, status, code, sanitized); err != nil {
		logger.Error("Failed to write error response", zap.Error(err))
	}
}

func writeData(w http.ResponseWriter, logger *zap.Logger, data any) {
	if err := WriteJSON(w, http.StatusOK, ApiResponse{Success: true, Data: data}); err != nil {
		logger.Error("Failed to write response", zap.Error(err))
	}
}
