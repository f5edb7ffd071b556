//go:build integration

package cache

import (
	"context"
	"testing"
	"time"

	"github.com/rapidread/rapidread/internal/model"
	"github.com/rapidread/rapidread/internal/testutil"
)

func newSessionTestCache(t *testing.T) *Cache {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	ctx := context.Background()
	c, err := New(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to Redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("failed to flush Redis: %v", err)
	}

	return c
}

func TestSessionRoundTrip(t *testing.T) {
	c := newSessionTestCache(t)
	ctx := context.Background()

	sess := &model.Session{
		UserID:   "user-1",
		Email:    "alice@example.com",
		FullName: "Alice",
		IssuedAt: time.Now().UTC().Truncate(time.Second),
	}

	if err := c.SetSession(ctx, "digest-1", sess, time.Minute); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	got, err := c.GetSession(ctx, "digest-1")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got == nil || got.UserID != sess.UserID || got.Email != sess.Email {
		t.Errorf("Session mismatch: got %+v", got)
	}
}

func TestGetSession_MissIsNotAnError(t *testing.T) {
	c := newSessionTestCache(t)
	ctx := context.Background()

	got, err := c.GetSession(ctx, "never-stored")
	if err != nil {
		t.Fatalf("A miss should not be an error, got: %v", err)
	}
	if got != nil {
		t.Errorf("Expected nil session for a miss, got %+v", got)
	}
}

func TestGetSession_ConnectionFailureIsAnError(t *testing.T) {
	c := newSessionTestCache(t)
	ctx := context.Background()

	if err := c.SetSession(ctx, "digest-down", &model.Session{UserID: "u"}, time.Minute); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}

	// A dead connection must surface as an error, not as a miss that
	// would read as a revoked session.
	if err := c.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	got, err := c.GetSession(ctx, "digest-down")
	if err == nil {
		t.Fatal("GetSession on a closed client should fail")
	}
	if got != nil {
		t.Errorf("Expected nil session on failure, got %+v", got)
	}
}

func TestDeleteSession(t *testing.T) {
	c := newSessionTestCache(t)
	ctx := context.Background()

	if err := c.SetSession(ctx, "digest-2", &model.Session{UserID: "u"}, time.Minute); err != nil {
		t.Fatalf("SetSession failed: %v", err)
	}
	if err := c.DeleteSession(ctx, "digest-2"); err != nil {
		t.Fatalf("DeleteSession failed: %v", err)
	}

	got, err := c.GetSession(ctx, "digest-2")
	if err != nil {
		t.Fatalf("GetSession failed: %v", err)
	}
	if got != nil {
		t.Errorf("Session should be gone after delete, got %+v", got)
	}
}
