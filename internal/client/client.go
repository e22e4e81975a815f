// Package client calls the Git Chest HTTP API. It is what the CLI and other
// frontends use in place of in-process calls.
package client

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"

	"github.com/gitchest/gitchest/internal/handler/dto"
	"github.com/gitchest/gitchest/internal/layout"
	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/profile"
	"github.com/gitchest/gitchest/internal/service"
	"github.com/gitchest/gitchest/internal/toast"
)

// DefaultBaseURL is where the desktop backend listens.
const DefaultBaseURL = "http://127.0.0.1:1420"

// ErrBadRequest is returned for 4xx responses without a more specific error.
var ErrBadRequest = errors.New("request rejected")

// APIError is a non-2xx response. It unwraps to the matching service or
// toast sentinel, so errors.Is(err, service.ErrUserNotFound) works across
// the wire.
type APIError struct {
	Status  int
	Code    string
	Message string
	Kind    service.ErrorKind
	err     error
}

func (e *APIError) Error() string {
	return fmt.Sprintf("api error %d %s: %s", e.Status, e.Code, e.Message)
}

func (e *APIError) Unwrap() error { return e.err }

// Options configures a Client.
type Options struct {
	BaseURL   string
	Timeout   time.Duration
	UserAgent string
}

// Client is a Git Chest API client.
type Client struct {
	client  *resty.Client
	baseURL string
	logger  *slog.Logger
}

// New creates a client for opts.BaseURL.
func New(opts Options, logger *slog.Logger) *Client {
	if opts.BaseURL == "" {
		opts.BaseURL = DefaultBaseURL
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.UserAgent == "" {
		opts.UserAgent = "gitchest-cli"
	}
	if logger == nil {
		logger = slog.Default()
	}

	base := strings.TrimRight(opts.BaseURL, "/")
	c := resty.New().
		SetBaseURL(base).
		SetHeader("Accept", "application/json").
		SetHeader("User-Agent", opts.UserAgent).
		SetTimeout(opts.Timeout)

	return &Client{client: c, baseURL: base, logger: logger.With("component", "client")}
}

// BaseURL returns the API origin.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetUser calls get_user.
func (c *Client) GetUser(ctx context.Context, id int64) (*model.FullUser, error) {
	var out model.FullUser
	if err := c.do(ctx, http.MethodGet, userPath(id), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// UserCard returns the rendered profile card of a user.
func (c *Client) UserCard(ctx context.Context, id int64) (*profile.Card, error) {
	var out profile.Card
	if err := c.do(ctx, http.MethodGet, userPath(id)+"/card", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListUsers returns every stored user.
func (c *Client) ListUsers(ctx context.Context) ([]dto.UserResponse, error) {
	var out dto.UserListResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/users", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// UserExists reports whether login is stored.
func (c *Client) UserExists(ctx context.Context, login string) (bool, error) {
	var out dto.UserExistsResponse
	path := "/api/v1/users/exists?user=" + url.QueryEscape(login)
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return false, err
	}
	return out.Exists, nil
}

// AddUser adds login from platform.
func (c *Client) AddUser(ctx context.Context, login, platform string) (*dto.UserResponse, error) {
	var out dto.UserResponse
	body := dto.AddUserRequest{Login: login, Platform: platform}
	if err := c.do(ctx, http.MethodPost, "/api/v1/users", body, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RefreshUser re-syncs a user from its platform.
func (c *Client) RefreshUser(ctx context.Context, id int64) (*model.FullUser, error) {
	var out model.FullUser
	if err := c.do(ctx, http.MethodPost, userPath(id)+"/refresh", nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// RemoveUser calls remove_user.
func (c *Client) RemoveUser(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, userPath(id), nil, nil)
}

// Layout returns the sidebar for pathname.
func (c *Client) Layout(ctx context.Context, pathname string) (*layout.Sidebar, error) {
	var out layout.Sidebar
	if err := c.do(ctx, http.MethodGet, "/api/v1/layout?path="+url.QueryEscape(pathname), nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// ListToasts returns the visible toasts.
func (c *Client) ListToasts(ctx context.Context) ([]toast.Message, error) {
	var out dto.ToastListResponse
	if err := c.do(ctx, http.MethodGet, "/api/v1/toasts", nil, &out); err != nil {
		return nil, err
	}
	return out.Data, nil
}

// SendToast emits p on the backend's add-toast channel.
func (c *Client) SendToast(ctx context.Context, p toast.Payload) error {
	body := dto.SendToastRequest{Title: p.Title, Description: p.Description, Level: string(p.Level)}
	return c.do(ctx, http.MethodPost, "/api/v1/toasts", body, nil)
}

// DismissToast removes a toast.
func (c *Client) DismissToast(ctx context.Context, id string) error {
	return c.do(ctx, http.MethodDelete, "/api/v1/toasts/"+url.PathEscape(id), nil, nil)
}

// Emit forwards add-toast events so the toast builder can send through the
// client: toast.New().Title("x").Send(c). Other event names are rejected.
func (c *Client) Emit(name string, payload any) error {
	if name != toast.EventName {
		return fmt.Errorf("%w: event %q cannot be emitted remotely", ErrBadRequest, name)
	}
	p, ok := payload.(toast.Payload)
	if !ok {
		return fmt.Errorf("%w: unexpected %s payload %T", ErrBadRequest, name, payload)
	}
	return c.SendToast(context.Background(), p)
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	req := c.client.R().SetContext(ctx)
	if body != nil {
		req.SetHeader("Content-Type", "application/json").SetBody(body)
	}

	resp, err := req.Execute(method, path)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return fmt.Errorf("%w: %v", service.ErrBackendUnavailable, err)
	}

	if resp.IsError() {
		return decodeError(resp)
	}

	if out == nil || resp.StatusCode() == http.StatusNoContent {
		return nil
	}
	if err := json.Unmarshal(resp.Body(), out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", service.ErrDeserialization, method, path, err)
	}
	return nil
}

func decodeError(resp *resty.Response) error {
	apiErr := &APIError{Status: resp.StatusCode()}

	var body dto.ErrorResponse
	if err := json.Unmarshal(resp.Body(), &body); err == nil {
		apiErr.Code = body.Code
		apiErr.Message = body.Error
		apiErr.Kind = service.ErrorKind(body.Kind)
	}
	if apiErr.Message == "" {
		apiErr.Message = http.StatusText(apiErr.Status)
	}

	apiErr.err = sentinelFor(apiErr.Status, apiErr.Code)
	return apiErr
}

func sentinelFor(status int, code string) error {
	switch code {
	case "USER_NOT_FOUND":
		return service.ErrUserNotFound
	case "PLATFORM_USER_NOT_FOUND":
		return service.ErrPlatformUserNotFound
	case "USER_EXISTS":
		return service.ErrUserExists
	case "INVALID_LOGIN":
		return service.ErrInvalidLogin
	case "UNSUPPORTED_PLATFORM":
		return service.ErrUnsupportedPlatform
	case "PLATFORM_RATE_LIMITED":
		return service.ErrRateLimited
	case "DESERIALIZATION_ERROR":
		return service.ErrDeserialization
	case "TOAST_NOT_FOUND":
		return toast.ErrToastNotFound
	case "LISTENER_SETUP_FAILED":
		return toast.ErrListenerSetup
	}

	switch {
	case status == http.StatusNotFound:
		return service.ErrUserNotFound
	case status == http.StatusBadGateway:
		return service.ErrDeserialization
	case status >= 500:
		return service.ErrBackendUnavailable
	default:
		return ErrBadRequest
	}
}

func userPath(id int64) string {
	return "/api/v1/users/" + strconv.FormatInt(id, 10)
}
