package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/gitchest/gitchest/internal/events"
	"github.com/gitchest/gitchest/internal/handler/dto"
	"github.com/gitchest/gitchest/internal/metrics"
	"github.com/gitchest/gitchest/internal/testutil"
	"github.com/gitchest/gitchest/internal/toast"
)

func newToastRouter(t *testing.T) (http.Handler, *toast.Store) {
	t.Helper()

	logger := testutil.DiscardLogger()
	bus := events.NewBus(logger, 8)
	t.Cleanup(bus.Close)

	store := toast.NewStore(toast.StoreOptions{})
	feed := toast.NewFeed(bus, store, logger, metrics.NewNoop())
	if err := feed.Mount(context.Background()); err != nil {
		t.Fatalf("Mount() error = %v", err)
	}
	t.Cleanup(feed.Unmount)

	h := NewToastHandler(store, bus, logger)
	r := chi.NewRouter()
	r.Get("/api/v1/toasts", h.List)
	r.Post("/api/v1/toasts", h.Send)
	r.Delete("/api/v1/toasts/{id}", h.Dismiss)
	return r, store
}

func waitForToasts(t *testing.T, store *toast.Store, n int) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for store.Len() < n {
		if time.Now().After(deadline) {
			t.Fatalf("store has %d toasts, want %d", store.Len(), n)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func TestToastHandler_SendListDismiss(t *testing.T) {
	t.Parallel()

	r, store := newToastRouter(t)

	rec := serve(r, http.MethodPost, "/api/v1/toasts", `{"title":"Synced","description":"3 users","level":"Success"}`)
	if rec.Code != http.StatusAccepted {
		t.Fatalf("send status = %d, body = %s", rec.Code, rec.Body.String())
	}
	waitForToasts(t, store, 1)

	rec = serve(r, http.MethodGet, "/api/v1/toasts", "")
	var list dto.ToastListResponse
	if err := json.NewDecoder(rec.Body).Decode(&list); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(list.Data) != 1 {
		t.Fatalf("toasts = %+v", list.Data)
	}
	got := list.Data[0]
	if got.Title != "Synced" || got.Description == nil || *got.Description != "3 users" || got.Type != toast.LevelSuccess {
		t.Errorf("toast = %+v", got)
	}

	if rec := serve(r, http.MethodDelete, "/api/v1/toasts/"+got.ID, ""); rec.Code != http.StatusNoContent {
		t.Errorf("dismiss status = %d", rec.Code)
	}
	if rec := serve(r, http.MethodDelete, "/api/v1/toasts/"+got.ID, ""); rec.Code != http.StatusNotFound {
		t.Errorf("second dismiss status = %d", rec.Code)
	}
	if store.Len() != 0 {
		t.Errorf("store still has %d toasts", store.Len())
	}
}

func TestToastHandler_SendDefaultsToInfo(t *testing.T) {
	t.Parallel()

	r, store := newToastRouter(t)

	if rec := serve(r, http.MethodPost, "/api/v1/toasts", `{"title":"Hello"}`); rec.Code != http.StatusAccepted {
		t.Fatalf("send status = %d", rec.Code)
	}
	waitForToasts(t, store, 1)

	got := store.List()[0]
	if got.Type != toast.LevelInfo || got.Description != nil {
		t.Errorf("toast = %+v", got)
	}
}

func TestToastHandler_SendInvalid(t *testing.T) {
	t.Parallel()

	r, _ := newToastRouter(t)

	tests := []struct {
		body     string
		wantCode string
	}{
		{`{`, "INVALID_JSON"},
		{`{"level":"info"}`, "MISSING_TITLE"},
		{`{"title":"x","level":"fatal"}`, "INVALID_LEVEL"},
	}

	for _, tt := range tests {
		rec := serve(r, http.MethodPost, "/api/v1/toasts", tt.body)
		if rec.Code != http.StatusBadRequest {
			t.Errorf("%s: status = %d", tt.body, rec.Code)
		}
		var body dto.ErrorResponse
		_ = json.NewDecoder(rec.Body).Decode(&body)
		if body.Code != tt.wantCode {
			t.Errorf("%s: code = %q, want %q", tt.body, body.Code, tt.wantCode)
		}
	}
}

func TestToastHandler_SendOnClosedBus(t *testing.T) {
	t.Parallel()

	logger := testutil.DiscardLogger()
	bus := events.NewBus(logger, 1)
	bus.Close()

	h := NewToastHandler(toast.NewStore(toast.StoreOptions{}), bus, logger)
	rec := serve(http.HandlerFunc(h.Send), http.MethodPost, "/api/v1/toasts", `{"title":"x"}`)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
