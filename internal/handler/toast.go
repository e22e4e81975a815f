package handler

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/gitchest/gitchest/internal/events"
	"github.com/gitchest/gitchest/internal/handler/dto"
	"github.com/gitchest/gitchest/internal/toast"
)

// ToastHandler exposes the toast list and the add-toast channel.
type ToastHandler struct {
	store   *toast.Store
	emitter events.Emitter
	logger  *slog.Logger
}

// NewToastHandler creates a new ToastHandler.
func NewToastHandler(store *toast.Store, emitter events.Emitter, logger *slog.Logger) *ToastHandler {
	return &ToastHandler{
		store:   store,
		emitter: emitter,
		logger:  logger,
	}
}

// List handles GET /api/v1/toasts.
func (h *ToastHandler) List(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, dto.ToastListResponse{Data: h.store.List()})
}

// Send handles POST /api/v1/toasts. The toast is emitted on the event bus
// and reaches the list through the feed.
func (h *ToastHandler) Send(w http.ResponseWriter, r *http.Request) {
	var req dto.SendToastRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.Title == "" {
		writeError(w, http.StatusBadRequest, "MISSING_TITLE", "Title is required")
		return
	}

	t := toast.New().Title(req.Title)
	if req.Description != nil {
		t = t.Description(*req.Description)
	}
	if req.Level != "" {
		level, err := toast.ParseLevel(req.Level)
		if err != nil {
			writeError(w, http.StatusBadRequest, "INVALID_LEVEL", "Level must be info, success, warning or error")
			return
		}
		t = t.WithLevel(level)
	}

	if err := t.Send(h.emitter); err != nil {
		h.logger.Error("toast_emit_failed", "error", err)
		writeError(w, http.StatusServiceUnavailable, "EMIT_FAILED", "Could not emit toast")
		return
	}

	w.WriteHeader(http.StatusAccepted)
}

// Dismiss handles DELETE /api/v1/toasts/{id}.
func (h *ToastHandler) Dismiss(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Dismiss(chi.URLParam(r, "id")); err != nil {
		if errors.Is(err, toast.ErrToastNotFound) {
			writeError(w, http.StatusNotFound, "TOAST_NOT_FOUND", "Toast not found")
			return
		}
		writeError(w, http.StatusInternalServerError, "INTERNAL_ERROR", "An internal error occurred")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
