package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gitchest/gitchest/internal/avatar"
	"github.com/gitchest/gitchest/internal/cache"
	"github.com/gitchest/gitchest/internal/events"
	"github.com/gitchest/gitchest/internal/metrics"
	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/platform/github"
	"github.com/gitchest/gitchest/internal/repository"
	"github.com/gitchest/gitchest/internal/toast"
)

// UserCache is the read-through cache for get_user. *cache.Cache satisfies it.
type UserCache interface {
	GetFullUser(ctx context.Context, id int64) (*model.FullUser, error)
	SetFullUser(ctx context.Context, id int64, user *model.FullUser) error
	DeleteUser(ctx context.Context, id int64) error
	IsNegativelyCached(ctx context.Context, id int64) (bool, error)
	SetNegativeCache(ctx context.Context, id int64) error
}

// ProfileSource fetches profiles from GitHub. *github.Client satisfies it.
type ProfileSource interface {
	GetUser(ctx context.Context, login string) (*github.APIUser, error)
	DownloadAvatar(ctx context.Context, avatarURL string) ([]byte, error)
}

// AvatarFiles stores avatar images. *avatar.Store satisfies it.
type AvatarFiles interface {
	Path(a *model.UserAvatar) string
	Write(a *model.UserAvatar, img *avatar.Image) (string, error)
	Remove(a *model.UserAvatar) error
}

// UserServiceDeps wires a UserService. Cache and Emitter are optional.
type UserServiceDeps struct {
	Store   repository.UserStore
	Cache   UserCache
	GitHub  ProfileSource
	Avatars AvatarFiles
	Emitter events.Emitter
	Metrics metrics.Recorder
	Logger  *slog.Logger
	// AvatarSize is the maximum avatar side in pixels.
	AvatarSize int
	Now        func() time.Time
}

// UserService handles tracked users.
type UserService struct {
	store      repository.UserStore
	cache      UserCache
	github     ProfileSource
	avatars    AvatarFiles
	emitter    events.Emitter
	metrics    metrics.Recorder
	logger     *slog.Logger
	avatarSize int
	now        func() time.Time
}

// NewUserService creates a new UserService.
func NewUserService(deps UserServiceDeps) *UserService {
	if deps.Metrics == nil {
		deps.Metrics = metrics.NewNoop()
	}
	if deps.Logger == nil {
		deps.Logger = slog.Default()
	}
	if deps.Now == nil {
		deps.Now = time.Now
	}
	return &UserService{
		store:      deps.Store,
		cache:      deps.Cache,
		github:     deps.GitHub,
		avatars:    deps.Avatars,
		emitter:    deps.Emitter,
		metrics:    deps.Metrics,
		logger:     deps.Logger.With("component", "user_service"),
		avatarSize: deps.AvatarSize,
		now:        deps.Now,
	}
}

// GetUser returns the full record of a stored user (get_user).
// Cache first, then the store; not-found results are negatively cached.
func (s *UserService) GetUser(ctx context.Context, id int64) (*model.FullUser, error) {
	start := time.Now()
	defer func() {
		s.metrics.ObserveUserFetchDuration(time.Since(start))
	}()

	if id <= 0 {
		return nil, ErrUserNotFound
	}

	if s.cache != nil {
		cached, err := s.cache.GetFullUser(ctx, id)
		if err == nil {
			s.metrics.IncUserCacheHit()
			return cached, nil
		}
		s.metrics.IncUserCacheMiss()
		if !errors.Is(err, cache.ErrCacheMiss) {
			s.logger.Warn("user cache read failed", "user_id", id, "error", err)
		} else if neg, _ := s.cache.IsNegativelyCached(ctx, id); neg {
			return nil, ErrUserNotFound
		}
	}

	full, err := s.loadFullUser(ctx, id)
	if err != nil {
		if errors.Is(err, ErrUserNotFound) && s.cache != nil {
			_ = s.cache.SetNegativeCache(ctx, id)
		}
		return nil, err
	}

	if s.cache != nil {
		if err := s.cache.SetFullUser(ctx, id, full); err != nil {
			s.logger.Warn("failed to backfill user cache", "user_id", id, "error", err)
		}
	}

	s.logger.Info("got full user", "user", full.User, "duration", time.Since(start))
	return full, nil
}

func (s *UserService) loadFullUser(ctx context.Context, id int64) (*model.FullUser, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError("get user", err)
	}

	var avatarPath string
	a, err := s.store.GetAvatar(ctx, id)
	switch {
	case err == nil:
		avatarPath = s.avatars.Path(a)
	case errors.Is(err, repository.ErrAvatarNotFound):
		s.logger.Debug("user has no avatar", "user_id", id)
	default:
		return nil, fmt.Errorf("%w: get avatar: %v", ErrBackendUnavailable, err)
	}

	platform, err := model.ParsePlatform(string(user.Platform))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDeserialization, err)
	}

	platformUser := model.PlatformUser{Type: platform}
	if platform == model.PlatformGitHub {
		gh, err := s.store.GetGitHubUser(ctx, id)
		if err != nil {
			if errors.Is(err, repository.ErrGitHubUserNotFound) {
				return nil, fmt.Errorf("%w: github profile missing for user %d", ErrDeserialization, id)
			}
			return nil, storeError("get github user", err)
		}
		platformUser.GitHub = &model.GitHubUserData{User: *gh}
	}

	return &model.FullUser{
		User:         user.Login,
		CreatedAt:    user.CreatedAt,
		UpdatedAt:    user.UpdatedAt,
		Avatar:       avatarPath,
		PlatformUser: platformUser,
	}, nil
}

// UserExists reports whether login is already tracked.
func (s *UserService) UserExists(ctx context.Context, login string) (bool, error) {
	login = strings.TrimSpace(login)
	if login == "" {
		return false, ErrInvalidLogin
	}
	exists, err := s.store.UserExists(ctx, login)
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrBackendUnavailable, err)
	}
	return exists, nil
}

// ListUsers returns every tracked user.
func (s *UserService) ListUsers(ctx context.Context) ([]*model.User, error) {
	users, err := s.store.ListUsers(ctx)
	if err != nil {
		return nil, storeError("list users", err)
	}
	return users, nil
}

// AddUser fetches login from platform, stores the profile and avatar and
// announces the result with a toast.
func (s *UserService) AddUser(ctx context.Context, login, platform string) (*model.User, error) {
	user, err := s.addUser(ctx, login, platform)
	if err != nil {
		s.notify(toast.New().Title("Could not add user").Description(describe(login, err)).Error())
		return nil, err
	}

	s.metrics.IncUserAdded()
	s.notify(toast.New().Title("Added user").Description(user.Login).Success())
	return user, nil
}

func (s *UserService) addUser(ctx context.Context, login, platform string) (*model.User, error) {
	login, err := ValidateLogin(login)
	if err != nil {
		return nil, err
	}

	p, err := model.ParsePlatform(platform)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedPlatform, err)
	}
	if p != model.PlatformGitHub {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, p)
	}

	exists, err := s.UserExists(ctx, login)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, ErrUserExists
	}

	remote, err := s.fetchProfile(ctx, login)
	if err != nil {
		return nil, err
	}

	now := s.now().UTC()
	user := &model.User{
		Login:     remote.Login,
		Platform:  p,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrUserExists) {
			return nil, ErrUserExists
		}
		return nil, fmt.Errorf("%w: create user: %v", ErrBackendUnavailable, err)
	}

	profile := remote.Profile()
	if err := s.store.UpsertGitHubUser(ctx, user.ID, &profile); err != nil {
		if delErr := s.store.DeleteUser(ctx, user.ID); delErr != nil {
			s.logger.Error("failed to roll back user", "user_id", user.ID, "error", delErr)
		}
		return nil, fmt.Errorf("%w: store github user: %v", ErrBackendUnavailable, err)
	}

	if err := s.saveAvatar(ctx, user.ID, remote.AvatarURL); err != nil {
		s.logger.Warn("failed to save avatar", "user", user.Login, "error", err)
		s.notify(toast.New().Title("Could not download avatar").Description(user.Login).Warning())
	}

	// A lookup of this id before it existed may have left a negative entry.
	s.invalidate(ctx, user.ID)

	s.logger.Info("added user", "user", user.Login, "user_id", user.ID, "platform", p)
	return user, nil
}

// RefreshUser re-fetches the platform profile of a stored user and marks it
// as synced.
func (s *UserService) RefreshUser(ctx context.Context, id int64) (*model.FullUser, error) {
	user, err := s.store.GetUser(ctx, id)
	if err != nil {
		return nil, storeError("get user", err)
	}
	if user.Platform != model.PlatformGitHub {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedPlatform, user.Platform)
	}

	remote, err := s.fetchProfile(ctx, user.Login)
	if err != nil {
		return nil, err
	}

	profile := remote.Profile()
	if err := s.store.UpsertGitHubUser(ctx, id, &profile); err != nil {
		return nil, fmt.Errorf("%w: store github user: %v", ErrBackendUnavailable, err)
	}
	if err := s.store.TouchUser(ctx, id, s.now().UTC()); err != nil {
		return nil, fmt.Errorf("%w: touch user: %v", ErrBackendUnavailable, err)
	}
	if err := s.saveAvatar(ctx, id, remote.AvatarURL); err != nil {
		s.logger.Warn("failed to refresh avatar", "user", user.Login, "error", err)
	}

	s.invalidate(ctx, id)
	return s.GetUser(ctx, id)
}

// RemoveUser deletes a user with its profile and avatar (remove_user).
func (s *UserService) RemoveUser(ctx context.Context, id int64) error {
	start := time.Now()

	a, err := s.store.GetAvatar(ctx, id)
	if err != nil && !errors.Is(err, repository.ErrAvatarNotFound) {
		return fmt.Errorf("%w: get avatar: %v", ErrBackendUnavailable, err)
	}

	if err := s.store.DeleteUser(ctx, id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			return ErrUserNotFound
		}
		return fmt.Errorf("%w: delete user: %v", ErrBackendUnavailable, err)
	}

	if a != nil {
		if err := s.avatars.Remove(a); err != nil {
			s.logger.Warn("failed to remove avatar file", "user_id", id, "error", err)
		}
	}
	s.invalidate(ctx, id)

	s.metrics.IncUserRemoved()
	s.logger.Info("deleted user", "user_id", id, "duration", time.Since(start))
	return nil
}

func (s *UserService) fetchProfile(ctx context.Context, login string) (*github.APIUser, error) {
	remote, err := s.github.GetUser(ctx, login)
	switch {
	case err == nil:
		return remote, nil
	case errors.Is(err, github.ErrUserNotFound):
		return nil, fmt.Errorf("%w: %s", ErrPlatformUserNotFound, login)
	case errors.Is(err, github.ErrRateLimited):
		return nil, fmt.Errorf("%w: %v", ErrRateLimited, err)
	default:
		return nil, fmt.Errorf("%w: fetch github user: %v", ErrBackendUnavailable, err)
	}
}

func (s *UserService) saveAvatar(ctx context.Context, userID int64, avatarURL string) error {
	if avatarURL == "" {
		return nil
	}

	data, err := s.github.DownloadAvatar(ctx, avatarURL)
	if err != nil {
		return err
	}
	img, err := avatar.Normalize(data, s.avatarSize)
	if err != nil {
		return err
	}

	a, err := s.store.SaveAvatar(ctx, userID, img.Ext)
	if err != nil {
		return err
	}
	_, err = s.avatars.Write(a, img)
	return err
}

// storeError classifies a store failure: missing users stay not found,
// undecodable rows are deserialization errors, the rest is unavailability.
func storeError(op string, err error) error {
	switch {
	case errors.Is(err, repository.ErrUserNotFound):
		return ErrUserNotFound
	case errors.Is(err, repository.ErrCorruptRow):
		return fmt.Errorf("%w: %s: %v", ErrDeserialization, op, err)
	default:
		return fmt.Errorf("%w: %s: %v", ErrBackendUnavailable, op, err)
	}
}

func (s *UserService) invalidate(ctx context.Context, id int64) {
	if s.cache == nil {
		return
	}
	if err := s.cache.DeleteUser(ctx, id); err != nil {
		s.logger.Warn("failed to invalidate user cache", "user_id", id, "error", err)
	}
}

func (s *UserService) notify(t toast.Toast) {
	if s.emitter == nil {
		return
	}
	if err := t.Send(s.emitter); err != nil {
		s.metrics.IncToastDropped()
		s.logger.Warn("failed to send toast", "error", err)
	}
}

func describe(login string, err error) string {
	switch {
	case errors.Is(err, ErrUserExists):
		return login + " is already in the database"
	case errors.Is(err, ErrPlatformUserNotFound):
		return login + " does not exist"
	case errors.Is(err, ErrRateLimited):
		return "GitHub rate limit exceeded, try again later"
	case errors.Is(err, ErrUnsupportedPlatform):
		return "this platform is not supported yet"
	default:
		return "something went wrong while adding " + login
	}
}
