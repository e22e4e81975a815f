//go:build integration

package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/gitchest/gitchest/internal/model"
	"github.com/gitchest/gitchest/internal/testutil"
)

func newCacheTestEnv(t *testing.T) (context.Context, *Cache) {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration tests in short mode")
	}

	ctx := context.Background()
	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("connect redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("flush redis: %v", err)
	}
	return ctx, c
}

func TestIntegrationCache_FullUser(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	if _, err := c.GetFullUser(ctx, 1); !errors.Is(err, ErrCacheMiss) {
		t.Fatalf("expected ErrCacheMiss, got %v", err)
	}

	gh := testutil.NewTestGitHubUser(t, "octocat")
	user := &model.FullUser{
		User:      "octocat",
		CreatedAt: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		UpdatedAt: time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		Avatar:    "/data/assets/avatars/1.png",
		PlatformUser: model.PlatformUser{
			Type:   model.PlatformGitHub,
			GitHub: &model.GitHubUserData{User: *gh},
		},
	}

	if err := c.SetNegativeCache(ctx, 1); err != nil {
		t.Fatalf("SetNegativeCache failed: %v", err)
	}
	if err := c.SetFullUser(ctx, 1, user); err != nil {
		t.Fatalf("SetFullUser failed: %v", err)
	}
	if neg, _ := c.IsNegativelyCached(ctx, 1); neg {
		t.Error("SetFullUser should clear the negative entry")
	}

	got, err := c.GetFullUser(ctx, 1)
	if err != nil {
		t.Fatalf("GetFullUser failed: %v", err)
	}
	if got.User != "octocat" || got.GitHubProfile() == nil || got.GitHubProfile().Login != "octocat" {
		t.Errorf("cached user mismatch: %+v", got)
	}

	if err := c.DeleteUser(ctx, 1); err != nil {
		t.Fatalf("DeleteUser failed: %v", err)
	}
	if _, err := c.GetFullUser(ctx, 1); !errors.Is(err, ErrCacheMiss) {
		t.Errorf("expected ErrCacheMiss after delete, got %v", err)
	}
}

func TestIntegrationCache_ClientRateLimit(t *testing.T) {
	ctx, c := newCacheTestEnv(t)

	for i := 0; i < 3; i++ {
		res, err := c.CheckClientRateLimit(ctx, "127.0.0.1", 1, 3)
		if err != nil {
			t.Fatalf("CheckClientRateLimit failed: %v", err)
		}
		if !res.Allowed {
			t.Fatalf("request %d should be allowed", i)
		}
	}

	res, _ := c.CheckClientRateLimit(ctx, "127.0.0.1", 1, 3)
	if res.Allowed {
		t.Error("request over burst should be limited")
	}
	if res.RetryAfter <= 0 {
		t.Errorf("RetryAfter = %v, want > 0", res.RetryAfter)
	}
}
