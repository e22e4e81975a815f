// Package github fetches user profiles and avatars from the GitHub REST API.
package github

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gitchest/gitchest/internal/model"
)

// DefaultBaseURL is the public GitHub API.
const DefaultBaseURL = "https://api.github.com"

// Errors returned by the client.
var (
	ErrUserNotFound     = errors.New("github user not found")
	ErrRateLimited      = errors.New("github rate limit exceeded")
	ErrUnexpectedStatus = errors.New("unexpected github response")
)

// Options configures a Client.
type Options struct {
	BaseURL   string
	Token     string
	UserAgent string
	Timeout   time.Duration
}

// Client calls the GitHub REST API.
type Client struct {
	client *resty.Client
	logger *slog.Logger
}

// New creates a client. Empty options fall back to the public API.
func New(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "git-chest"
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 15 * time.Second
	}
	if logger == nil {
		logger = slog.Default()
	}

	c := resty.New().
		SetBaseURL(strings.TrimRight(opts.BaseURL, "/")).
		SetHeader("Accept", "application/vnd.github+json").
		SetHeader("X-GitHub-Api-Version", "2022-11-28").
		SetHeader("User-Agent", opts.UserAgent).
		SetTimeout(opts.Timeout)
	if opts.Token != "" {
		c.SetAuthToken(opts.Token)
	}

	return &Client{client: c, logger: logger.With("component", "github")}
}

// APIUser is the users endpoint response. URL properties other than the
// avatar are not decoded.
type APIUser struct {
	Login           string    `json:"login"`
	ID              int64     `json:"id"`
	NodeID          string    `json:"node_id"`
	AvatarURL       string    `json:"avatar_url"`
	GravatarID      string    `json:"gravatar_id"`
	Type            string    `json:"type"`
	SiteAdmin       bool      `json:"site_admin"`
	Name            *string   `json:"name"`
	Company         *string   `json:"company"`
	Blog            string    `json:"blog"`
	Location        *string   `json:"location"`
	Hireable        *bool     `json:"hireable"`
	Bio             *string   `json:"bio"`
	TwitterUsername *string   `json:"twitter_username"`
	PublicRepos     int       `json:"public_repos"`
	PublicGists     int       `json:"public_gists"`
	Followers       int       `json:"followers"`
	Following       int       `json:"following"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// Profile converts the response into the stored profile. An empty blog is
// stored as absent.
func (u *APIUser) Profile() model.GitHubUser {
	p := model.GitHubUser{
		Login:           u.Login,
		ID:              u.ID,
		NodeID:          u.NodeID,
		GravatarID:      u.GravatarID,
		Type:            u.Type,
		SiteAdmin:       u.SiteAdmin,
		Name:            u.Name,
		Company:         u.Company,
		Location:        u.Location,
		Hireable:        u.Hireable,
		Bio:             u.Bio,
		TwitterUsername: u.TwitterUsername,
		PublicRepos:     u.PublicRepos,
		PublicGists:     u.PublicGists,
		Followers:       u.Followers,
		Following:       u.Following,
		CreatedAt:       u.CreatedAt,
		UpdatedAt:       u.UpdatedAt,
	}
	if u.Blog != "" {
		blog := u.Blog
		p.Blog = &blog
	}
	return p
}

// GetUser fetches the public profile of login.
func (c *Client) GetUser(ctx context.Context, login string) (*APIUser, error) {
	if strings.TrimSpace(login) == "" {
		return nil, fmt.Errorf("%w: empty login", ErrUserNotFound)
	}

	start := time.Now()
	resp, err := c.client.R().
		SetContext(ctx).
		Get("/users/" + url.PathEscape(login))
	if err != nil {
		return nil, fmt.Errorf("github request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}

	var user APIUser
	if err := json.Unmarshal(resp.Body(), &user); err != nil {
		return nil, fmt.Errorf("decode github user: %w", err)
	}

	c.logger.Info("fetched github user", "login", user.Login, "duration", time.Since(start))
	return &user, nil
}

// DownloadAvatar fetches the image at avatarURL. Relative URLs resolve
// against the base URL.
func (c *Client) DownloadAvatar(ctx context.Context, avatarURL string) ([]byte, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Accept", "image/*").
		Get(avatarURL)
	if err != nil {
		return nil, fmt.Errorf("avatar request: %w", err)
	}
	if err := checkStatus(resp); err != nil {
		return nil, err
	}
	return resp.Body(), nil
}

func checkStatus(resp *resty.Response) error {
	switch code := resp.StatusCode(); {
	case code == http.StatusOK:
		return nil
	case code == http.StatusNotFound:
		return ErrUserNotFound
	case code == http.StatusTooManyRequests,
		code == http.StatusForbidden && resp.Header().Get("X-RateLimit-Remaining") == "0":
		return fmt.Errorf("%w: resets at %s", ErrRateLimited, resp.Header().Get("X-RateLimit-Reset"))
	default:
		return fmt.Errorf("%w: status %d", ErrUnexpectedStatus, code)
	}
}
