package repository

import (
	"context"
	"errors"
	"time"

	"github.com/gitchest/gitchest/internal/model"
)

// Common errors for user storage.
var (
	ErrUserNotFound       = errors.New("user not found")
	ErrUserExists         = errors.New("user already exists")
	ErrAvatarNotFound     = errors.New("user avatar not found")
	ErrGitHubUserNotFound = errors.New("github user not found")
	// ErrCorruptRow marks a stored row that could not be decoded.
	ErrCorruptRow = errors.New("corrupt stored row")
)

// UserStore is the persistence contract shared by the PostgreSQL and SQLite
// backends.
type UserStore interface {
	// CreateUser inserts user and sets its ID.
	CreateUser(ctx context.Context, user *model.User) error
	GetUser(ctx context.Context, id int64) (*model.User, error)
	GetUserByLogin(ctx context.Context, login string) (*model.User, error)
	UserExists(ctx context.Context, login string) (bool, error)
	ListUsers(ctx context.Context) ([]*model.User, error)
	// TouchUser sets updated_at, marking the user as synced.
	TouchUser(ctx context.Context, id int64, at time.Time) error
	// DeleteUser removes the user together with its avatar and profile rows.
	DeleteUser(ctx context.Context, id int64) error

	// SaveAvatar records the avatar of a user, replacing any previous one.
	SaveAvatar(ctx context.Context, userID int64, ext string) (*model.UserAvatar, error)
	GetAvatar(ctx context.Context, userID int64) (*model.UserAvatar, error)

	UpsertGitHubUser(ctx context.Context, userID int64, gh *model.GitHubUser) error
	GetGitHubUser(ctx context.Context, userID int64) (*model.GitHubUser, error)

	Ping(ctx context.Context) error
	Close()
}

var _ UserStore = (*Repository)(nil)
