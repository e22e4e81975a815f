package client

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gitchest/gitchest/internal/assets"
	"github.com/gitchest/gitchest/internal/events"
	"github.com/gitchest/gitchest/internal/handler"
	"github.com/gitchest/gitchest/internal/metrics"
	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/profile"
	"github.com/gitchest/gitchest/internal/service"
	"github.com/gitchest/gitchest/internal/testutil"
	"github.com/gitchest/gitchest/internal/toast"
)

type memoryUsers struct {
	mu    sync.Mutex
	users map[int64]*model.FullUser
	err   error
}

func (m *memoryUsers) GetUser(ctx context.Context, id int64) (*model.FullUser, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	u, ok := m.users[id]
	if !ok {
		return nil, service.ErrUserNotFound
	}
	return u, nil
}

func (m *memoryUsers) setErr(err error) {
	m.mu.Lock()
	m.err = err
	m.mu.Unlock()
}

func (m *memoryUsers) UserExists(ctx context.Context, login string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, u := range m.users {
		if u.User == login {
			return true, nil
		}
	}
	return false, nil
}

func (m *memoryUsers) ListUsers(ctx context.Context) ([]*model.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*model.User, 0, len(m.users))
	for id, u := range m.users {
		out = append(out, &model.User{ID: id, Login: u.User, Platform: u.PlatformUser.Type})
	}
	return out, nil
}

func (m *memoryUsers) AddUser(ctx context.Context, login, platform string) (*model.User, error) {
	if exists, _ := m.UserExists(ctx, login); exists {
		return nil, service.ErrUserExists
	}
	if login == "ghost" {
		return nil, service.ErrPlatformUserNotFound
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	id := int64(len(m.users) + 1)
	now := time.Now().UTC()
	m.users[id] = &model.FullUser{User: login, CreatedAt: now, UpdatedAt: now, PlatformUser: model.PlatformUser{Type: model.PlatformGitHub}}
	return &model.User{ID: id, Login: login, Platform: model.PlatformGitHub, CreatedAt: now, UpdatedAt: now}, nil
}

func (m *memoryUsers) RefreshUser(ctx context.Context, id int64) (*model.FullUser, error) {
	return m.GetUser(ctx, id)
}

func (m *memoryUsers) RemoveUser(ctx context.Context, id int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.users[id]; !ok {
		return service.ErrUserNotFound
	}
	delete(m.users, id)
	return nil
}

type testBackend struct {
	users *memoryUsers
	bus   *events.Bus
	store *toast.Store
	srv   *httptest.Server
}

func newTestBackend(t *testing.T) *testBackend {
	t.Helper()

	logger := testutil.DiscardLogger()
	users := &memoryUsers{users: map[int64]*model.FullUser{}}
	bus := events.NewBus(logger, 16)
	store := toast.NewStore(toast.StoreOptions{})
	feed := toast.NewFeed(bus, store, logger, metrics.NewNoop())
	if err := feed.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}

	h := handler.New()
	userHandler := handler.NewUserHandler(users, assets.ConvertFileSrc, logger)
	toastHandler := handler.NewToastHandler(store, bus, logger)
	eventsHandler := handler.NewEventsHandler(bus, nil, logger)

	r := chi.NewRouter()
	r.Get("/events", eventsHandler.Stream)
	r.Route("/api/v1", func(r chi.Router) {
		r.Get("/layout", h.Layout)
		r.Get("/users", userHandler.List)
		r.Post("/users", userHandler.Create)
		r.Get("/users/exists", userHandler.Exists)
		r.Get("/users/{id}", userHandler.Get)
		r.Get("/users/{id}/card", userHandler.Card)
		r.Post("/users/{id}/refresh", userHandler.Refresh)
		r.Delete("/users/{id}", userHandler.Delete)
		r.Get("/toasts", toastHandler.List)
		r.Post("/toasts", toastHandler.Send)
		r.Delete("/toasts/{id}", toastHandler.Dismiss)
	})

	srv := httptest.NewServer(r)
	t.Cleanup(func() {
		srv.Close()
		feed.Unmount()
		bus.Close()
	})

	return &testBackend{users: users, bus: bus, store: store, srv: srv}
}

func (b *testBackend) client() *Client {
	return New(Options{BaseURL: b.srv.URL, Timeout: 5 * time.Second}, testutil.DiscardLogger())
}

func TestClient_UserLifecycle(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)
	c := b.client()
	ctx := context.Background()

	added, err := c.AddUser(ctx, "octocat", "github")
	if err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}
	if added.User != "octocat" || added.ID == 0 {
		t.Errorf("AddUser() = %+v", added)
	}

	if _, err := c.AddUser(ctx, "octocat", "github"); !errors.Is(err, service.ErrUserExists) {
		t.Errorf("duplicate AddUser() error = %v, want ErrUserExists", err)
	}
	if _, err := c.AddUser(ctx, "ghost", "github"); !errors.Is(err, service.ErrPlatformUserNotFound) {
		t.Errorf("AddUser(ghost) error = %v, want ErrPlatformUserNotFound", err)
	}

	exists, err := c.UserExists(ctx, "octocat")
	if err != nil || !exists {
		t.Errorf("UserExists() = %v, %v", exists, err)
	}

	users, err := c.ListUsers(ctx)
	if err != nil || len(users) != 1 {
		t.Fatalf("ListUsers() = %+v, %v", users, err)
	}

	full, err := c.GetUser(ctx, added.ID)
	if err != nil || full.User != "octocat" || full.PlatformUser.Type != model.PlatformGitHub {
		t.Errorf("GetUser() = %+v, %v", full, err)
	}

	card, err := c.UserCard(ctx, added.ID)
	if err != nil || card.Login != "octocat" || len(card.Sync) != 2 {
		t.Errorf("UserCard() = %+v, %v", card, err)
	}

	if _, err := c.RefreshUser(ctx, added.ID); err != nil {
		t.Errorf("RefreshUser() error = %v", err)
	}

	if err := c.RemoveUser(ctx, added.ID); err != nil {
		t.Fatalf("RemoveUser() error = %v", err)
	}
	_, err = c.GetUser(ctx, added.ID)
	if !errors.Is(err, service.ErrUserNotFound) {
		t.Errorf("GetUser() after remove error = %v, want ErrUserNotFound", err)
	}
	if service.KindOf(err) != service.KindNotFound {
		t.Errorf("KindOf() = %q", service.KindOf(err))
	}
	var apiErr *APIError
	if !errors.As(err, &apiErr) || apiErr.Status != http.StatusNotFound || apiErr.Kind != service.KindNotFound {
		t.Errorf("APIError = %+v", apiErr)
	}
}

func TestClient_ErrorKinds(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)
	c := b.client()

	b.users.setErr(errors.New("disk on fire"))
	if _, err := c.GetUser(context.Background(), 1); service.KindOf(err) != service.KindBackendUnavailable {
		t.Errorf("backend failure kind = %q (%v)", service.KindOf(err), err)
	}

	b.users.setErr(service.ErrDeserialization)
	if _, err := c.GetUser(context.Background(), 1); !errors.Is(err, service.ErrDeserialization) {
		t.Errorf("deserialization error = %v", err)
	}

	down := New(Options{BaseURL: "http://127.0.0.1:1", Timeout: time.Second}, testutil.DiscardLogger())
	if _, err := down.GetUser(context.Background(), 1); !errors.Is(err, service.ErrBackendUnavailable) {
		t.Errorf("unreachable backend error = %v, want ErrBackendUnavailable", err)
	}
}

func TestClient_MalformedResponse(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"user": 42}`))
	}))
	t.Cleanup(srv.Close)

	c := New(Options{BaseURL: srv.URL}, testutil.DiscardLogger())
	if _, err := c.GetUser(context.Background(), 1); !errors.Is(err, service.ErrDeserialization) {
		t.Errorf("GetUser() error = %v, want ErrDeserialization", err)
	}
}

func TestClient_FeedsProfileView(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)
	c := b.client()
	added, err := c.AddUser(context.Background(), "octocat", "github")
	if err != nil {
		t.Fatalf("AddUser() error = %v", err)
	}

	v := profile.NewView(c, testutil.DiscardLogger())
	s, err := v.Load(context.Background(), added.ID)
	if err != nil || s.User == nil || s.User.User != "octocat" {
		t.Fatalf("Load() = %+v, %v", s, err)
	}

	s, _ = v.Load(context.Background(), 999)
	if s.User != nil || s.Err != service.KindNotFound {
		t.Errorf("Load(missing) = %+v", s)
	}
}

func TestClient_Toasts(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)
	c := b.client()
	ctx := context.Background()

	if err := toast.New().Title("Hello").Description("from the cli").Error().Send(c); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	var list []toast.Message
	deadline := time.Now().Add(2 * time.Second)
	for len(list) == 0 {
		if time.Now().After(deadline) {
			t.Fatal("toast never reached the store")
		}
		time.Sleep(5 * time.Millisecond)
		var err error
		if list, err = c.ListToasts(ctx); err != nil {
			t.Fatalf("ListToasts() error = %v", err)
		}
	}

	if list[0].Title != "Hello" || list[0].Type != toast.LevelError {
		t.Errorf("toast = %+v", list[0])
	}

	if err := c.DismissToast(ctx, list[0].ID); err != nil {
		t.Errorf("DismissToast() error = %v", err)
	}
	if err := c.DismissToast(ctx, list[0].ID); !errors.Is(err, toast.ErrToastNotFound) {
		t.Errorf("second DismissToast() error = %v, want ErrToastNotFound", err)
	}

	if err := c.Emit("other-event", nil); !errors.Is(err, ErrBadRequest) {
		t.Errorf("Emit(other) error = %v", err)
	}
}

func TestClient_Layout(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)
	sidebar, err := b.client().Layout(context.Background(), "/explore/trending")
	if err != nil {
		t.Fatalf("Layout() error = %v", err)
	}
	active, ok := sidebar.Active()
	if !ok || active.Title != "Explore" {
		t.Errorf("active = %+v, %v", active, ok)
	}
}

func TestClient_ListenDrivesRemoteFeed(t *testing.T) {
	t.Parallel()

	b := newTestBackend(t)
	c := b.client()

	store := toast.NewStore(toast.StoreOptions{})
	feed := toast.NewFeed(c, store, testutil.DiscardLogger(), metrics.NewNoop())
	if err := feed.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	defer feed.Unmount()

	// The backend's own feed plus the websocket subscription.
	deadline := time.Now().Add(2 * time.Second)
	for b.bus.ListenerCount() < 2 {
		if time.Now().After(deadline) {
			t.Fatalf("listeners = %d", b.bus.ListenerCount())
		}
		time.Sleep(5 * time.Millisecond)
	}

	if err := toast.New().Title("Remote").Success().Send(b.bus); err != nil {
		t.Fatalf("Send() error = %v", err)
	}

	deadline = time.Now().Add(2 * time.Second)
	for store.Len() == 0 {
		if time.Now().After(deadline) {
			t.Fatal("remote feed never received the toast")
		}
		time.Sleep(5 * time.Millisecond)
	}
	if got := store.List()[0]; got.Title != "Remote" || got.Type != toast.LevelSuccess {
		t.Errorf("toast = %+v", got)
	}
}

func TestClient_ListenSetupFailure(t *testing.T) {
	t.Parallel()

	c := New(Options{BaseURL: "http://127.0.0.1:1"}, testutil.DiscardLogger())
	store := toast.NewStore(toast.StoreOptions{})
	feed := toast.NewFeed(c, store, testutil.DiscardLogger(), metrics.NewNoop())

	err := feed.Mount(context.Background())
	if !errors.Is(err, toast.ErrListenerSetup) {
		t.Fatalf("Mount() error = %v, want ErrListenerSetup", err)
	}
	if service.KindOf(err) != service.KindListenerSetupFailed {
		t.Errorf("KindOf() = %q", service.KindOf(err))
	}
}

func TestEventsURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		base string
		name string
		want string
	}{
		{"http://127.0.0.1:1420", "add-toast", "ws://127.0.0.1:1420/events?event=add-toast"},
		{"https://example.com/api/", "*", "wss://example.com/api/events"},
		{"http://localhost", "", "ws://localhost/events"},
	}

	for _, tt := range tests {
		c := New(Options{BaseURL: tt.base}, testutil.DiscardLogger())
		got, err := c.eventsURL(tt.name)
		if err != nil || got != tt.want {
			t.Errorf("eventsURL(%q, %q) = %q, %v, want %q", tt.base, tt.name, got, err, tt.want)
		}
	}
}
