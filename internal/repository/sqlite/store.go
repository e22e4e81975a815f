package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	moderncsqlite "modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"

	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/repository"
)

// Store implements repository.UserStore on SQLite.
type Store struct {
	db *sql.DB
}

var _ repository.UserStore = (*Store)(nil)

// New opens the database at path and applies the schema.
func New(ctx context.Context, path string) (*Store, error) {
	db, err := Open(path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

// NewWithDB wraps an open connection. The schema must already exist.
func NewWithDB(db *sql.DB) *Store {
	return &Store{db: db}
}

// DB exposes the underlying connection.
func (s *Store) DB() *sql.DB {
	return s.db
}

// Ping checks database connectivity.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Close closes the database.
func (s *Store) Close() {
	_ = s.db.Close()
}

const userColumns = `id, user, platform, created_at, updated_at`

func (s *Store) CreateUser(ctx context.Context, user *model.User) error {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO user (user, platform, created_at, updated_at) VALUES (?, ?, ?, ?)`,
		user.Login, string(user.Platform), formatTime(user.CreatedAt), formatTime(user.UpdatedAt),
	)
	if err != nil {
		if isUniqueViolation(err) {
			return repository.ErrUserExists
		}
		return fmt.Errorf("failed to create user: %w", err)
	}

	id, err := res.LastInsertId()
	if err != nil {
		return fmt.Errorf("failed to read user id: %w", err)
	}
	user.ID = id
	return nil
}

func (s *Store) GetUser(ctx context.Context, id int64) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM user WHERE id = ?`, id)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by ID: %w", err)
	}
	return user, nil
}

func (s *Store) GetUserByLogin(ctx context.Context, login string) (*model.User, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+userColumns+` FROM user WHERE user = ?`, login)
	user, err := scanUser(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrUserNotFound
		}
		return nil, fmt.Errorf("failed to get user by login: %w", err)
	}
	return user, nil
}

func (s *Store) UserExists(ctx context.Context, login string) (bool, error) {
	var id int64
	err := s.db.QueryRowContext(ctx, `SELECT id FROM user WHERE user = ?`, login).Scan(&id)
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return false, nil
	case err != nil:
		return false, fmt.Errorf("failed to check user exists: %w", err)
	}
	return true, nil
}

func (s *Store) ListUsers(ctx context.Context) ([]*model.User, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+userColumns+` FROM user ORDER BY id`)
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

func (s *Store) TouchUser(ctx context.Context, id int64, at time.Time) error {
	res, err := s.db.ExecContext(ctx, `UPDATE user SET updated_at = ? WHERE id = ?`, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("failed to touch user: %w", err)
	}
	return requireAffected(res, repository.ErrUserNotFound)
}

func (s *Store) DeleteUser(ctx context.Context, id int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM user WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return requireAffected(res, repository.ErrUserNotFound)
}

func (s *Store) SaveAvatar(ctx context.Context, userID int64, ext string) (*model.UserAvatar, error) {
	var extArg any
	if ext != "" {
		extArg = ext
	}

	avatar := &model.UserAvatar{UserID: userID, Ext: ext}
	err := s.db.QueryRowContext(ctx, `
		INSERT INTO user_avatar (user_id, ext) VALUES (?, ?)
		ON CONFLICT (user_id) DO UPDATE SET ext = excluded.ext
		RETURNING id`,
		userID, extArg,
	).Scan(&avatar.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to save avatar: %w", err)
	}
	return avatar, nil
}

func (s *Store) GetAvatar(ctx context.Context, userID int64) (*model.UserAvatar, error) {
	var (
		avatar = model.UserAvatar{UserID: userID}
		ext    sql.NullString
	)
	err := s.db.QueryRowContext(ctx, `SELECT id, ext FROM user_avatar WHERE user_id = ?`, userID).Scan(&avatar.ID, &ext)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrAvatarNotFound
		}
		return nil, fmt.Errorf("failed to get avatar: %w", err)
	}
	avatar.Ext = ext.String
	return &avatar, nil
}

func (s *Store) UpsertGitHubUser(ctx context.Context, userID int64, gh *model.GitHubUser) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO github_user (
			user_id, github_id, login, node_id, gravatar_id, type, site_admin,
			name, company, blog, location, hireable, bio, twitter_username,
			public_repos, public_gists, followers, following, created_at, updated_at
		)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT (user_id) DO UPDATE SET
			github_id = excluded.github_id,
			login = excluded.login,
			node_id = excluded.node_id,
			gravatar_id = excluded.gravatar_id,
			type = excluded.type,
			site_admin = excluded.site_admin,
			name = excluded.name,
			company = excluded.company,
			blog = excluded.blog,
			location = excluded.location,
			hireable = excluded.hireable,
			bio = excluded.bio,
			twitter_username = excluded.twitter_username,
			public_repos = excluded.public_repos,
			public_gists = excluded.public_gists,
			followers = excluded.followers,
			following = excluded.following,
			created_at = excluded.created_at,
			updated_at = excluded.updated_at`,
		userID,
		gh.ID,
		gh.Login,
		gh.NodeID,
		gh.GravatarID,
		gh.Type,
		gh.SiteAdmin,
		nullString(gh.Name),
		nullString(gh.Company),
		nullString(gh.Blog),
		nullString(gh.Location),
		nullBool(gh.Hireable),
		nullString(gh.Bio),
		nullString(gh.TwitterUsername),
		gh.PublicRepos,
		gh.PublicGists,
		gh.Followers,
		gh.Following,
		formatTime(gh.CreatedAt),
		formatTime(gh.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("failed to upsert github user: %w", err)
	}
	return nil
}

func (s *Store) GetGitHubUser(ctx context.Context, userID int64) (*model.GitHubUser, error) {
	var (
		gh                                          model.GitHubUser
		name, company, blog, location, bio, twitter sql.NullString
		hireable                                    sql.NullBool
		createdAt, updatedAt                        string
	)
	err := s.db.QueryRowContext(ctx, `
		SELECT github_id, login, node_id, gravatar_id, type, site_admin,
		       name, company, blog, location, hireable, bio, twitter_username,
		       public_repos, public_gists, followers, following, created_at, updated_at
		FROM github_user
		WHERE user_id = ?`, userID,
	).Scan(
		&gh.ID,
		&gh.Login,
		&gh.NodeID,
		&gh.GravatarID,
		&gh.Type,
		&gh.SiteAdmin,
		&name,
		&company,
		&blog,
		&location,
		&hireable,
		&bio,
		&twitter,
		&gh.PublicRepos,
		&gh.PublicGists,
		&gh.Followers,
		&gh.Following,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, repository.ErrGitHubUserNotFound
		}
		return nil, fmt.Errorf("failed to get github user: %w", err)
	}

	gh.Name = stringPtr(name)
	gh.Company = stringPtr(company)
	gh.Blog = stringPtr(blog)
	gh.Location = stringPtr(location)
	gh.Bio = stringPtr(bio)
	gh.TwitterUsername = stringPtr(twitter)
	if hireable.Valid {
		v := hireable.Bool
		gh.Hireable = &v
	}
	if gh.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if gh.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &gh, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanUser(row scanner) (*model.User, error) {
	var (
		user                 model.User
		platform             string
		createdAt, updatedAt string
	)
	if err := row.Scan(&user.ID, &user.Login, &platform, &createdAt, &updatedAt); err != nil {
		return nil, err
	}
	user.Platform = model.Platform(platform)

	var err error
	if user.CreatedAt, err = parseTime(createdAt); err != nil {
		return nil, err
	}
	if user.UpdatedAt, err = parseTime(updatedAt); err != nil {
		return nil, err
	}
	return &user, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: invalid stored timestamp %q: %v", repository.ErrCorruptRow, s, err)
	}
	return t, nil
}

func nullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

func nullBool(b *bool) sql.NullBool {
	if b == nil {
		return sql.NullBool{}
	}
	return sql.NullBool{Bool: *b, Valid: true}
}

func stringPtr(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	v := ns.String
	return &v
}

func requireAffected(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read affected rows: %w", err)
	}
	if n == 0 {
		return notFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var sqliteErr *moderncsqlite.Error
	if !errors.As(err, &sqliteErr) {
		return false
	}
	switch sqliteErr.Code() {
	case sqlite3.SQLITE_CONSTRAINT_UNIQUE, sqlite3.SQLITE_CONSTRAINT_PRIMARYKEY:
		return true
	}
	return false
}
