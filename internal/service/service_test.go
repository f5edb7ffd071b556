package service

import (
	"context"
	"sync"
	"time"

	"github.com/rapidread/rapidread/internal/extractor"
	"github.com/rapidread/rapidread/internal/model"
	"github.com/rapidread/rapidread/internal/repository"
)

// ============================================================================
// In-memory fakes
// ============================================================================

type fakeUserStore struct {
	mu    sync.Mutex
	users map[string]*model.User // keyed by ID
}

func newFakeUserStore() *fakeUserStore {
	return &fakeUserStore{users: make(map[string]*model.User)}
}

func (f *fakeUserStore) CreateUser(_ context.Context, user *model.User) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == user.Email {
			return repository.ErrEmailExists
		}
	}
	f.users[user.ID] = user
	return nil
}

func (f *fakeUserStore) GetUserByEmail(_ context.Context, email string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for _, u := range f.users {
		if u.Email == email {
			return u, nil
		}
	}
	return nil, repository.ErrUserNotFound
}

func (f *fakeUserStore) GetUserByID(_ context.Context, id string) (*model.User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, repository.ErrUserNotFound
}

type fakeSessionStore struct {
	mu       sync.Mutex
	sessions map[string]*model.Session // keyed by token digest
	getErr   error
}

func newFakeSessionStore() *fakeSessionStore {
	return &fakeSessionStore{sessions: make(map[string]*model.Session)}
}

func (f *fakeSessionStore) GetSession(_ context.Context, digest string) (*model.Session, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.sessions[digest], nil
}

func (f *fakeSessionStore) SetSession(_ context.Context, digest string, sess *model.Session, _ time.Duration) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[digest] = sess
	return nil
}

func (f *fakeSessionStore) DeleteSession(_ context.Context, digest string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.sessions, digest)
	return nil
}

type fakeSummaryStore struct {
	mu        sync.Mutex
	summaries map[string]*model.Summary
	order     []string
	lastLimit int
}

func newFakeSummaryStore() *fakeSummaryStore {
	return &fakeSummaryStore{summaries: make(map[string]*model.Summary)}
}

func (f *fakeSummaryStore) CreateSummary(_ context.Context, s *model.Summary) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.summaries[s.ID] = s
	f.order = append(f.order, s.ID)
	return nil
}

func (f *fakeSummaryStore) GetSummaryByID(_ context.Context, id string) (*model.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if s, ok := f.summaries[id]; ok {
		return s, nil
	}
	return nil, repository.ErrSummaryNotFound
}

func (f *fakeSummaryStore) ListSummariesByUser(_ context.Context, userID string, limit int) ([]*model.Summary, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lastLimit = limit
	var out []*model.Summary
	// Newest first: iterate insertion order in reverse
	for i := len(f.order) - 1; i >= 0 && len(out) < limit; i-- {
		if s := f.summaries[f.order[i]]; s != nil && s.UserID == userID {
			out = append(out, s)
		}
	}
	return out, nil
}

func (f *fakeSummaryStore) DeleteSummary(_ context.Context, id string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if _, ok := f.summaries[id]; !ok {
		return repository.ErrSummaryNotFound
	}
	delete(f.summaries, id)
	return nil
}

type fakeURLExtractor struct {
	extraction *extractor.Extraction
	err        error
	lastURL    string
}

func (f *fakeURLExtractor) Extract(_ context.Context, rawURL string) (*extractor.Extraction, error) {
	f.lastURL = rawURL
	if f.err != nil {
		return nil, f.err
	}
	return f.extraction, nil
}

type fakeFileExtractor struct {
	extraction *extractor.Extraction
	err        error
}

func (f *fakeFileExtractor) Extract(_ context.Context, _ string, _ []byte) (*extractor.Extraction, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.extraction, nil
}

type fakeSummarizer struct {
	summary  string
	err      error
	lastText string
	lastType model.SourceType
}

func (f *fakeSummarizer) Summarize(_ context.Context, text string, sourceType model.SourceType) (string, error) {
	f.lastText = text
	f.lastType = sourceType
	if f.err != nil {
		return "", f.err
	}
	return f.summary, nil
}
