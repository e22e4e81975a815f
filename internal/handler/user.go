package handler

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gitchest/gitchest/internal/handler/dto"
	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/profile"
)

// UserService is the part of *service.UserService used over HTTP.
type UserService interface {
	GetUser(ctx context.Context, id int64) (*model.FullUser, error)
	UserExists(ctx context.Context, login string) (bool, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	AddUser(ctx context.Context, login, platform string) (*model.User, error)
	RefreshUser(ctx context.Context, id int64) (*model.FullUser, error)
	RemoveUser(ctx context.Context, id int64) error
}

// UserHandler handles HTTP requests for tracked users.
type UserHandler struct {
	svc     UserService
	convert func(string) string
	now     func() time.Time
	logger  *slog.Logger
}

// NewUserHandler creates a new UserHandler. convert turns avatar paths into
// URLs for the rendered card.
func NewUserHandler(svc UserService, convert func(string) string, logger *slog.Logger) *UserHandler {
	return &UserHandler{
		svc:     svc,
		convert: convert,
		now:     time.Now,
		logger:  logger,
	}
}

// Get handles GET /api/v1/users/{id} (get_user).
func (h *UserHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Card handles GET /api/v1/users/{id}/card.
func (h *UserHandler) Card(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.GetUser(r.Context(), id)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, profile.Render(user, h.now(), h.convert))
}

// List handles GET /api/v1/users.
func (h *UserHandler) List(w http.ResponseWriter, r *http.Request) {
	users, err := h.svc.ListUsers(r.Context())
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.ToUserListResponse(users))
}

// Exists handles GET /api/v1/users/exists?user=.
func (h *UserHandler) Exists(w http.ResponseWriter, r *http.Request) {
	login := r.URL.Query().Get("user")
	if login == "" {
		writeError(w, http.StatusBadRequest, "MISSING_USER", "Query parameter user is required")
		return
	}

	exists, err := h.svc.UserExists(r.Context(), login)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, dto.UserExistsResponse{User: login, Exists: exists})
}

// Create handles POST /api/v1/users.
func (h *UserHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req dto.AddUserRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "INVALID_JSON", "Invalid request body")
		return
	}
	if req.Platform == "" {
		req.Platform = string(model.PlatformGitHub)
	}

	user, err := h.svc.AddUser(r.Context(), req.Login, req.Platform)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("user_added", "user_id", user.ID, "user", user.Login, "platform", user.Platform)
	writeJSON(w, http.StatusCreated, dto.ToUserResponse(user))
}

// Refresh handles POST /api/v1/users/{id}/refresh.
func (h *UserHandler) Refresh(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	user, err := h.svc.RefreshUser(r.Context(), id)
	if err != nil {
		handleServiceError(h.logger, w, err)
		return
	}
	writeJSON(w, http.StatusOK, user)
}

// Delete handles DELETE /api/v1/users/{id} (remove_user).
func (h *UserHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := h.userID(w, r)
	if !ok {
		return
	}

	if err := h.svc.RemoveUser(r.Context(), id); err != nil {
		handleServiceError(h.logger, w, err)
		return
	}

	h.logger.Info("user_removed", "user_id", id)
	w.WriteHeader(http.StatusNoContent)
}

func (h *UserHandler) userID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil || id <= 0 {
		writeError(w, http.StatusBadRequest, "INVALID_ID", "User ID must be a positive integer")
		return 0, false
	}
	return id, true
}
