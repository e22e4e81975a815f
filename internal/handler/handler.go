// Package handler provides HTTP request handlers.
package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/gitchest/gitchest/internal/handler/dto"
	"github.com/gitchest/gitchest/internal/layout"
	"github.com/gitchest/gitchest/internal/service"
)

// Version is reported by the index endpoint.
const Version = "0.1.0"

// Handler serves the small endpoints that need no dependencies.
type Handler struct{}

// New creates a new Handler instance.
func New() *Handler {
	return &Handler{}
}

// Index reports the application name and version.
// GET /
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"name":    layout.Title,
		"version": Version,
	}
	writeJSON(w, http.StatusOK, response)
}

// Layout returns the sidebar for the page at ?path=.
// GET /api/v1/layout
func (h *Handler) Layout(w http.ResponseWriter, r *http.Request) {
	path := r.URL.Query().Get("path")
	if path == "" {
		path = "/"
	}
	writeJSON(w, http.StatusOK, layout.ForPath(path))
}

// NotFound handles 404 responses.
func (h *Handler) NotFound(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "resource not found",
	}
	writeJSON(w, http.StatusNotFound, response)
}

// MethodNotAllowed handles 405 responses.
func (h *Handler) MethodNotAllowed(w http.ResponseWriter, r *http.Request) {
	response := map[string]string{
		"error": "method not allowed",
	}
	writeJSON(w, http.StatusMethodNotAllowed, response)
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

// writeError writes an error response.
func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleServiceError maps service errors to HTTP responses.
func handleServiceError(logger *slog.Logger, w http.ResponseWriter, err error) {
	status, code, message := http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", "Backend unavailable"

	switch {
	case errors.Is(err, service.ErrUserNotFound):
		status, code, message = http.StatusNotFound, "USER_NOT_FOUND", "User not found"
	case errors.Is(err, service.ErrPlatformUserNotFound):
		status, code, message = http.StatusNotFound, "PLATFORM_USER_NOT_FOUND", "User not found on platform"
	case errors.Is(err, service.ErrUserExists):
		status, code, message = http.StatusConflict, "USER_EXISTS", "User already exists"
	case errors.Is(err, service.ErrInvalidLogin):
		status, code, message = http.StatusBadRequest, "INVALID_LOGIN", "Login is required"
	case errors.Is(err, service.ErrUnsupportedPlatform):
		status, code, message = http.StatusBadRequest, "UNSUPPORTED_PLATFORM", "Platform not supported"
	case errors.Is(err, service.ErrRateLimited):
		status, code, message = http.StatusTooManyRequests, "PLATFORM_RATE_LIMITED", "Platform rate limit exceeded"
	case errors.Is(err, service.ErrDeserialization):
		status, code, message = http.StatusBadGateway, "DESERIALIZATION_ERROR", "Stored user data is invalid"
		logger.Error("deserialization_error", "error", err)
	default:
		logger.Error("backend_unavailable", "error", err)
	}

	writeJSON(w, status, dto.ErrorResponse{
		Error: message,
		Code:  code,
		Kind:  string(service.KindOf(err)),
	})
}
