package web

// errors.go turns service errors into responses.
//
// Every error is logged with its technical detail and request ID, then
// mapped through core.MapError. /api routes and clients asking for JSON get
// an ErrorResponse; browsers get the error page.

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/JonMunkholm/vizboard/internal/charts"
	"github.com/JonMunkholm/vizboard/internal/core"
	"github.com/JonMunkholm/vizboard/internal/dataset"
	"github.com/JonMunkholm/vizboard/internal/history"
	"github.com/JonMunkholm/vizboard/internal/logging"
	"github.com/JonMunkholm/vizboard/internal/store"
	"github.com/JonMunkholm/vizboard/internal/web/templates"
)

// ErrorResponse is the JSON body of API errors.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
	Action  string `json:"action,omitempty"`
	Code    string `json:"code"`
}

// statusFor picks the HTTP status for a service error.
func statusFor(err error) int {
	switch {
	case errors.Is(err, core.ErrNoDataset), errors.Is(err, store.ErrNotFound),
		errors.Is(err, charts.ErrUnknownChart), errors.Is(err, history.ErrDisabled):
		return http.StatusNotFound
	case errors.Is(err, core.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case errors.Is(err, core.ErrTooManyUploads):
		return http.StatusServiceUnavailable
	case errors.Is(err, charts.ErrUnavailable), errors.Is(err, charts.ErrNoData):
		return http.StatusUnprocessableEntity
	case errors.Is(err, core.ErrNoFile),
		errors.Is(err, dataset.ErrEmptyFile),
		errors.Is(err, dataset.ErrInvalidCSV),
		errors.Is(err, dataset.ErrTooManyRows),
		errors.Is(err, dataset.ErrColumnNotFound),
		errors.Is(err, dataset.ErrWrongKind),
		errors.Is(err, charts.ErrInvalidParam),
		errors.Is(err, charts.ErrUnsupportedFormat),
		errors.Is(err, dataset.ErrEncoding):
		return http.StatusBadRequest
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, errRateLimited):
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}

// respondError logs err and writes the user-facing response.
func (s *Server) respondError(w http.ResponseWriter, r *http.Request, err error, status int) {
	if wantsJSON(r) {
		respondErrorJSON(w, r, err, status)
		return
	}

	msg := logError(r, err, status)
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	templates.ErrorPage(s.sidebar(r, false), msg.Message, msg.Action, msg.Code).Render(r.Context(), w)
}

// respondErrorJSON logs err and writes an ErrorResponse.
func respondErrorJSON(w http.ResponseWriter, r *http.Request, err error, status int) {
	msg := logError(r, err, status)
	writeJSON(w, status, ErrorResponse{
		Error:   msg.Message,
		Message: msg.Message,
		Action:  msg.Action,
		Code:    msg.Code,
	})
}

func logError(r *http.Request, err error, status int) core.UserMessage {
	msg := core.MapError(err)
	logger := logging.FromContext(r.Context())
	args := []any{
		"path", r.URL.Path,
		"method", r.Method,
		"status", status,
		"error", err.Error(),
		"code", msg.Code,
	}
	if status >= http.StatusInternalServerError {
		logger.Error("request error", args...)
	} else {
		logger.Warn("request error", args...)
	}
	return msg
}

// wantsJSON reports whether the client should get JSON rather than HTML.
func wantsJSON(r *http.Request) bool {
	if strings.HasPrefix(r.URL.Path, "/api/") {
		return true
	}
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		return true
	}
	return strings.Contains(r.Header.Get("Content-Type"), "application/json")
}
