//go:build integration

package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rapidread/rapidread/internal/auth"
	"github.com/rapidread/rapidread/internal/cache"
	"github.com/rapidread/rapidread/internal/model"
	"github.com/rapidread/rapidread/internal/testutil"
)

func newRateLimitTestCache(t *testing.T) *cache.Cache {
	t.Helper()

	redisURL := testutil.RequireEnv(t, "REDIS_URL")

	ctx := context.Background()
	c, err := cache.New(ctx, redisURL)
	if err != nil {
		t.Fatalf("failed to connect to Redis: %v", err)
	}
	t.Cleanup(func() { _ = c.Close() })

	if err := testutil.FlushRedis(ctx, c.Client()); err != nil {
		t.Fatalf("failed to flush Redis: %v", err)
	}

	return c
}

func authedRequest(userID string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/article/summarize", nil)
	sess := &model.Session{UserID: userID}
	return req.WithContext(auth.ContextWithSession(req.Context(), sess))
}

func TestRateLimit_BurstExhaustion(t *testing.T) {
	c := newRateLimitTestCache(t)

	mw := RateLimit(RateLimitConfig{
		Logger:    testLogger(),
		Cache:     c,
		Enabled:   true,
		PerMinute: 10,
		Burst:     3,
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	// Burst allows the first 3 requests
	for i := 0; i < 3; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("user-burst"))
		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: expected status 201, got %d", i+1, rec.Code)
		}
	}

	// Fourth request in the same instant is rejected
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-burst"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("expected status 429 after burst, got %d", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("429 response should carry Retry-After")
	}
	if rec.Header().Get("X-RateLimit-Limit") != "10" {
		t.Errorf("unexpected X-RateLimit-Limit: %q", rec.Header().Get("X-RateLimit-Limit"))
	}
}

func TestRateLimit_PerUserIsolation(t *testing.T) {
	c := newRateLimitTestCache(t)

	mw := RateLimit(RateLimitConfig{
		Logger:    testLogger(),
		Cache:     c,
		Enabled:   true,
		PerMinute: 10,
		Burst:     1,
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-a"))
	if rec.Code != http.StatusCreated {
		t.Fatalf("user-a first request: expected 201, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-a"))
	if rec.Code != http.StatusTooManyRequests {
		t.Fatalf("user-a second request: expected 429, got %d", rec.Code)
	}

	// A different user still has a full bucket
	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, authedRequest("user-b"))
	if rec.Code != http.StatusCreated {
		t.Errorf("user-b should not share user-a's bucket, got %d", rec.Code)
	}
}

func TestRateLimit_Disabled(t *testing.T) {
	c := newRateLimitTestCache(t)

	mw := RateLimit(RateLimitConfig{
		Logger:    testLogger(),
		Cache:     c,
		Enabled:   false,
		PerMinute: 1,
		Burst:     1,
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusCreated)
	}))

	for i := 0; i < 5; i++ {
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, authedRequest("user-disabled"))
		if rec.Code != http.StatusCreated {
			t.Fatalf("request %d: disabled limiter should pass everything, got %d", i+1, rec.Code)
		}
	}
}

func TestRateLimit_NoSession(t *testing.T) {
	c := newRateLimitTestCache(t)

	mw := RateLimit(RateLimitConfig{
		Logger:    testLogger(),
		Cache:     c,
		Enabled:   true,
		PerMinute: 10,
		Burst:     3,
	})

	handler := mw(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	// Without a session the limiter passes through; auth runs first in
	// the real chain.
	req := httptest.NewRequest(http.MethodPost, "/article/summarize", nil)
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	if rec.Code != http.StatusOK {
		t.Errorf("expected pass-through without session, got %d", rec.Code)
	}
}
