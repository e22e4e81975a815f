// Package dto provides Data Transfer Objects for API requests and responses.
package dto

import (
	"time"

	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/toast"
)

// ErrorResponse represents an API error.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
	Kind  string `json:"kind,omitempty"`
}

// AddUserRequest represents the request body for adding a user.
type AddUserRequest struct {
	Login    string `json:"login"`
	Platform string `json:"platform"`
}

// UserResponse represents a stored user in API responses.
type UserResponse struct {
	ID        int64          `json:"id"`
	User      string         `json:"user"`
	Platform  model.Platform `json:"platform"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}

// UserListResponse wraps a list of users.
type UserListResponse struct {
	Data []UserResponse `json:"data"`
}

// UserExistsResponse answers GET /api/v1/users/exists.
type UserExistsResponse struct {
	User   string `json:"user"`
	Exists bool   `json:"exists"`
}

// SendToastRequest is the add-toast payload accepted over HTTP.
type SendToastRequest struct {
	Title       string  `json:"title"`
	Description *string `json:"description,omitempty"`
	Level       string  `json:"level"`
}

// ToastListResponse wraps the visible toasts.
type ToastListResponse struct {
	Data []toast.Message `json:"data"`
}

// ToUserResponse converts a model.User to UserResponse.
func ToUserResponse(u *model.User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		User:      u.Login,
		Platform:  u.Platform,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// ToUserListResponse converts users to UserListResponse.
func ToUserListResponse(users []*model.User) UserListResponse {
	data := make([]UserResponse, len(users))
	for i, u := range users {
		data[i] = ToUserResponse(u)
	}
	return UserListResponse{Data: data}
}
