//go:build integration

package repository

import (
	"errors"
	"testing"
	"time"

	"github.com/rapidread/rapidread/internal/testutil"
)

// ============================================================================
// Summary Repository Integration Tests
// ============================================================================

func TestIntegrationSummaryRepository_CreateAndGet(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("sums"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	s := testutil.NewTestSummary(t, user.ID)
	if err := repo.CreateSummary(ctx, s); err != nil {
		t.Fatalf("CreateSummary failed: %v", err)
	}

	retrieved, err := repo.GetSummaryByID(ctx, s.ID)
	if err != nil {
		t.Fatalf("GetSummaryByID failed: %v", err)
	}

	if retrieved.UserID != user.ID {
		t.Errorf("UserID mismatch: got %q, want %q", retrieved.UserID, user.ID)
	}
	if retrieved.SourceType != s.SourceType {
		t.Errorf("SourceType mismatch: got %q, want %q", retrieved.SourceType, s.SourceType)
	}
	if retrieved.SummaryText != s.SummaryText {
		t.Error("SummaryText should round-trip")
	}
}

func TestIntegrationSummaryRepository_Get_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	_, err := repo.GetSummaryByID(ctx, "nonexistent-id")
	if !errors.Is(err, ErrSummaryNotFound) {
		t.Errorf("Expected ErrSummaryNotFound, got: %v", err)
	}
}

func TestIntegrationSummaryRepository_List_NewestFirst(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("list"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	var lastID string
	for i := 0; i < 5; i++ {
		s := testutil.NewTestSummary(t, user.ID)
		if err := repo.CreateSummary(ctx, s); err != nil {
			t.Fatalf("CreateSummary failed: %v", err)
		}
		lastID = s.ID
		time.Sleep(1 * time.Millisecond) // Ensure different created_at
	}

	summaries, err := repo.ListSummariesByUser(ctx, user.ID, 50)
	if err != nil {
		t.Fatalf("ListSummariesByUser failed: %v", err)
	}

	if len(summaries) != 5 {
		t.Fatalf("Expected 5 summaries, got %d", len(summaries))
	}
	if summaries[0].ID != lastID {
		t.Errorf("Expected newest summary first, got %q", summaries[0].ID)
	}
	for i := 1; i < len(summaries); i++ {
		if summaries[i].CreatedAt.After(summaries[i-1].CreatedAt) {
			t.Error("Summaries should be ordered newest first")
		}
	}
}

func TestIntegrationSummaryRepository_List_Limit(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("limit"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	for i := 0; i < 4; i++ {
		s := testutil.NewTestSummary(t, user.ID)
		if err := repo.CreateSummary(ctx, s); err != nil {
			t.Fatalf("CreateSummary failed: %v", err)
		}
		time.Sleep(1 * time.Millisecond)
	}

	summaries, err := repo.ListSummariesByUser(ctx, user.ID, 2)
	if err != nil {
		t.Fatalf("ListSummariesByUser failed: %v", err)
	}
	if len(summaries) != 2 {
		t.Errorf("Expected 2 summaries with limit, got %d", len(summaries))
	}
}

func TestIntegrationSummaryRepository_List_IsolatedPerUser(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	alice := testutil.NewTestUser(t, testutil.UniqueEmail("alice"))
	bob := testutil.NewTestUser(t, testutil.UniqueEmail("bob"))
	bob.ID = testutil.UniqueID("user")
	if err := repo.CreateUser(ctx, alice); err != nil {
		t.Fatalf("CreateUser (alice) failed: %v", err)
	}
	if err := repo.CreateUser(ctx, bob); err != nil {
		t.Fatalf("CreateUser (bob) failed: %v", err)
	}

	sa := testutil.NewTestSummary(t, alice.ID)
	if err := repo.CreateSummary(ctx, sa); err != nil {
		t.Fatalf("CreateSummary (alice) failed: %v", err)
	}

	bobList, err := repo.ListSummariesByUser(ctx, bob.ID, 50)
	if err != nil {
		t.Fatalf("ListSummariesByUser (bob) failed: %v", err)
	}
	if len(bobList) != 0 {
		t.Errorf("Bob should see no summaries, got %d", len(bobList))
	}
}

func TestIntegrationSummaryRepository_Delete(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("del"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	s := testutil.NewTestSummary(t, user.ID)
	if err := repo.CreateSummary(ctx, s); err != nil {
		t.Fatalf("CreateSummary failed: %v", err)
	}

	if err := repo.DeleteSummary(ctx, s.ID); err != nil {
		t.Fatalf("DeleteSummary failed: %v", err)
	}

	_, err := repo.GetSummaryByID(ctx, s.ID)
	if !errors.Is(err, ErrSummaryNotFound) {
		t.Errorf("Expected ErrSummaryNotFound after delete, got: %v", err)
	}
}

func TestIntegrationSummaryRepository_Delete_NotFound(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	err := repo.DeleteSummary(ctx, "nonexistent-id")
	if !errors.Is(err, ErrSummaryNotFound) {
		t.Errorf("Expected ErrSummaryNotFound, got: %v", err)
	}
}

func TestIntegrationSummaryRepository_Count(t *testing.T) {
	ctx, repo := newRepoTestEnv(t)

	user := testutil.NewTestUser(t, testutil.UniqueEmail("count"))
	if err := repo.CreateUser(ctx, user); err != nil {
		t.Fatalf("CreateUser failed: %v", err)
	}

	count, err := repo.CountSummariesByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountSummariesByUser failed: %v", err)
	}
	if count != 0 {
		t.Errorf("Expected 0 summaries before creation, got %d", count)
	}

	for i := 0; i < 3; i++ {
		s := testutil.NewTestSummary(t, user.ID)
		if err := repo.CreateSummary(ctx, s); err != nil {
			t.Fatalf("CreateSummary failed: %v", err)
		}
		time.Sleep(1 * time.Millisecond)
	}

	count, err = repo.CountSummariesByUser(ctx, user.ID)
	if err != nil {
		t.Fatalf("CountSummariesByUser failed: %v", err)
	}
	if count != 3 {
		t.Errorf("Expected 3 summaries, got %d", count)
	}
}
