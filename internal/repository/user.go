package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/gitchest/gitchest/internal/model"
)

const userColumns = `id, login, platform, created_at, updated_at`

// CreateUser inserts a new user into the database.
func (r *Repository) CreateUser(ctx context.Context, user *model.User) error {
	query := `
		INSERT INTO users (login, platform, created_at, updated_at)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	err := r.pool.QueryRow(ctx, query,
		user.Login,
		string(user.Platform),
		user.CreatedAt,
		user.UpdatedAt,
	).Scan(&user.ID)

	if err != nil {
		if isUniqueViolation(err) {
			return ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	return nil
}

// GetUser retrieves a user by ID.
func (r *Repository) GetUser(ctx context.Context, id int64) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}

	return user, nil
}

// GetUserByLogin retrieves a user by login.
func (r *Repository) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE login = $1`

	user, err := scanUser(r.pool.QueryRow(ctx, query, login))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by login: %w", err)
	}

	return user, nil
}

// UserExists reports whether a user with login is stored.
func (r *Repository) UserExists(ctx context.Context, login string) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM users WHERE login = $1)`, login).Scan(&exists)
	if err != nil {
		return false, fmt.Errorf("failed to check user exists: %w", err)
	}
	return exists, nil
}

// ListUsers returns every stored user ordered by ID.
func (r *Repository) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := r.pool.Query(ctx, `SELECT `+userColumns+` FROM users ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list users: %w", err)
	}
	defer rows.Close()

	var users []*model.User
	for rows.Next() {
		user, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan user: %w", err)
		}
		users = append(users, user)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate users: %w", err)
	}

	return users, nil
}

// TouchUser sets updated_at for a user.
func (r *Repository) TouchUser(ctx context.Context, id int64, at time.Time) error {
	tag, err := r.pool.Exec(ctx, `UPDATE users SET updated_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// DeleteUser removes a user; avatar and profile rows cascade.
func (r *Repository) DeleteUser(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SaveAvatar inserts or replaces the avatar row of a user.
func (r *Repository) SaveAvatar(ctx context.Context, userID int64, ext string) (*model.UserAvatar, error) {
	query := `
		INSERT INTO user_avatars (user_id, ext)
		VALUES ($1, NULLIF($2, ''))
		ON CONFLICT (user_id) DO UPDATE SET ext = EXCLUDED.ext
		RETURNING id
	`

	avatar := &model.UserAvatar{UserID: userID, Ext: ext}
	if err := r.pool.QueryRow(ctx, query, userID, ext).Scan(&avatar.ID); err != nil {
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}
	return avatar, nil
}

// GetAvatar retrieves the avatar row of a user.
func (r *Repository) GetAvatar(ctx context.Context, userID int64) (*model.UserAvatar, error) {
	var (
		avatar = model.UserAvatar{UserID: userID}
		ext    *string
	)
	err := r.pool.QueryRow(ctx, `SELECT id, ext FROM user_avatars WHERE user_id = $1`, userID).Scan(&avatar.ID, &ext)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAvatarNotFound
		}
		return nil, fmt.Errorf("failed to get avatar: %w", err)
	}
	if ext != nil {
		avatar.Ext = *ext
	}
	return &avatar, nil
}

func scanUser(row pgx.Row) (*model.User, error) {
	var (
		user     model.User
		platform string
	)
	if err := row.Scan(&user.ID, &user.Login, &platform, &user.CreatedAt, &user.UpdatedAt); err != nil {
		return nil, err
	}
	user.Platform = model.Platform(platform)
	return &user, nil
}
