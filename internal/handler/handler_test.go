package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gitchest/gitchest/internal/handler/dto"
	"github.com/gitchest/gitchest/internal/layout"
	"github.com/gitchest/gitchest/internal/service"
	"github.com/gitchest/gitchest/internal/testutil"
)

func TestHandler_Index(t *testing.T) {
	h := New()

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rec := httptest.NewRecorder()

	h.Index(rec, req)

	if rec.Code != http.StatusOK {
		t.Errorf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("expected Content-Type application/json, got %s", ct)
	}

	var response map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&response); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if response["name"] != "Git Chest" || response["version"] != Version {
		t.Errorf("unexpected response: %v", response)
	}
}

func TestHandler_Layout(t *testing.T) {
	h := New()

	tests := []struct {
		query      string
		wantBase   string
		wantActive string
	}{
		{"?path=/favorites/123", "/favorites", "Favorites"},
		{"?path=/settings?tab=1", "/settings", "Settings"},
		{"", "/", "Directory"},
		{"?path=/user%3Fid%3D3", "/user", ""},
	}

	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/layout"+tt.query, nil)
		rec := httptest.NewRecorder()

		h.Layout(rec, req)

		var sidebar layout.Sidebar
		if err := json.NewDecoder(rec.Body).Decode(&sidebar); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if sidebar.Title != layout.Title || sidebar.BaseURL != tt.wantBase {
			t.Errorf("%q: sidebar = %+v", tt.query, sidebar)
		}
		active, ok := sidebar.Active()
		if tt.wantActive == "" {
			if ok {
				t.Errorf("%q: unexpected active link %q", tt.query, active.Title)
			}
			continue
		}
		if !ok || active.Title != tt.wantActive {
			t.Errorf("%q: active = %q, want %q", tt.query, active.Title, tt.wantActive)
		}
	}
}

func TestHandler_NotFound(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.NotFound(rec, httptest.NewRequest(http.MethodGet, "/nonexistent", nil))

	if rec.Code != http.StatusNotFound {
		t.Errorf("expected status 404, got %d", rec.Code)
	}
}

func TestHandler_MethodNotAllowed(t *testing.T) {
	h := New()

	rec := httptest.NewRecorder()
	h.MethodNotAllowed(rec, httptest.NewRequest(http.MethodPost, "/", nil))

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected status 405, got %d", rec.Code)
	}
}

func TestHandleServiceError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		err        error
		wantStatus int
		wantCode   string
		wantKind   service.ErrorKind
	}{
		{service.ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND", service.KindNotFound},
		{fmt.Errorf("wrap: %w", service.ErrPlatformUserNotFound), http.StatusNotFound, "PLATFORM_USER_NOT_FOUND", service.KindNotFound},
		{service.ErrUserExists, http.StatusConflict, "USER_EXISTS", service.KindConflict},
		{service.ErrInvalidLogin, http.StatusBadRequest, "INVALID_LOGIN", service.KindInvalidInput},
		{service.ErrUnsupportedPlatform, http.StatusBadRequest, "UNSUPPORTED_PLATFORM", service.KindInvalidInput},
		{service.ErrRateLimited, http.StatusTooManyRequests, "PLATFORM_RATE_LIMITED", service.KindBackendUnavailable},
		{service.ErrDeserialization, http.StatusBadGateway, "DESERIALIZATION_ERROR", service.KindDeserialization},
		{service.ErrBackendUnavailable, http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", service.KindBackendUnavailable},
		{errors.New("boom"), http.StatusServiceUnavailable, "BACKEND_UNAVAILABLE", service.KindBackendUnavailable},
	}

	for _, tt := range tests {
		rec := httptest.NewRecorder()
		handleServiceError(testutil.DiscardLogger(), rec, tt.err)

		if rec.Code != tt.wantStatus {
			t.Errorf("%v: status = %d, want %d", tt.err, rec.Code, tt.wantStatus)
		}
		var body dto.ErrorResponse
		if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
			t.Fatalf("failed to decode response: %v", err)
		}
		if body.Code != tt.wantCode || body.Kind != string(tt.wantKind) {
			t.Errorf("%v: body = %+v", tt.err, body)
		}
	}
}
