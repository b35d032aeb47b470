// Package handler implements the JSON API surface.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/dealhive/dealhive/internal/domain"
)

// ErrorResponse writes an error response to the client.
// It maps domain error codes to HTTP status codes. Every named failure
// kind gets its own code so clients can render a specific message;
// internal and configuration faults collapse into a generic one.
func ErrorResponse(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	code := domain.ErrorCode(err)
	message := domain.ErrorMessage(err)
	op := domain.ErrorOp(err)

	status := ErrorCodeToHTTPStatus(code)

	logError(logger, r, err, code, op, status)

	// Limit failures carry the remaining/limit pair for quota banners.
	var le *domain.LimitError
	if errors.As(err, &le) {
		writeJSON(w, status, map[string]interface{}{
			"error": map[string]interface{}{
				"code":      code,
				"message":   message,
				"remaining": le.Remaining,
				"limit":     le.Limit,
			},
		})
		return
	}

	writeJSON(w, status, map[string]interface{}{
		"error": map[string]interface{}{
			"code":    code,
			"message": message,
		},
	})
}

// ErrorCodeToHTTPStatus maps domain error codes to HTTP status codes.
func ErrorCodeToHTTPStatus(code string) int {
	switch code {
	case domain.EINVALID:
		return http.StatusBadRequest // 400
	case domain.EUNAUTHORIZED:
		return http.StatusUnauthorized // 401
	case domain.ELIMIT:
		return http.StatusPaymentRequired // 402
	case domain.EFORBIDDEN:
		return http.StatusForbidden // 403
	case domain.ENOTFOUND:
		return http.StatusNotFound // 404
	case domain.ECONFLICT, domain.EREDEEMED, domain.EUSERCAP:
		return http.StatusConflict // 409
	case domain.EEXPIRED, domain.ESOLDOUT:
		return http.StatusGone // 410
	case domain.EPLANCONFIG, domain.EINTERNAL:
		return http.StatusInternalServerError // 500
	default:
		return http.StatusInternalServerError // 500
	}
}

// logError records the failure with request context. Server-side faults
// log at Error with the full chain; expected business failures at Info.
func logError(logger *slog.Logger, r *http.Request, err error, code, op string, status int) {
	attrs := []any{
		"code", code,
		"op", op,
		"status", status,
		"method", r.Method,
		"path", r.URL.Path,
	}

	if status >= 500 {
		attrs = append(attrs, "error", err)
		logger.Error("request failed", attrs...)
		return
	}
	logger.Info("request rejected", attrs...)
}

func writeJSON(w http.ResponseWriter, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}
