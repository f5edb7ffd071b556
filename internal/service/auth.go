// Package service provides business logic for the application.
package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/rapidread/rapidread/internal/auth"
	"github.com/rapidread/rapidread/internal/metrics"
	"github.com/rapidread/rapidread/internal/model"
	"github.com/rapidread/rapidread/internal/repository"
)

// Service errors.
var (
	ErrInvalidEmail       = errors.New("invalid email address")
	ErrWeakPassword       = errors.New("password must be at least 8 characters")
	ErrMissingFullName    = errors.New("full name is required")
	ErrEmailTaken         = errors.New("email already registered")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrUnauthorized       = errors.New("unauthorized")
)

var emailRegex = regexp.MustCompile(`^[^@\s]+@[^@\s]+\.[^@\s]+$`)

const minPasswordLength = 8

// UserStore persists user accounts.
type UserStore interface {
	CreateUser(ctx context.Context, user *model.User) error
	GetUserByEmail(ctx context.Context, email string) (*model.User, error)
	GetUserByID(ctx context.Context, id string) (*model.User, error)
}

// SessionStore keeps sessions keyed by token digest.
type SessionStore interface {
	GetSession(ctx context.Context, digest string) (*model.Session, error)
	SetSession(ctx context.Context, digest string, sess *model.Session, ttl time.Duration) error
	DeleteSession(ctx context.Context, digest string) error
}

// AuthService handles registration, login, and session resolution.
type AuthService struct {
	users      UserStore
	sessions   SessionStore
	sessionTTL time.Duration
	metrics    metrics.Recorder
}

// NewAuthService creates a new AuthService.
func NewAuthService(users UserStore, sessions SessionStore, sessionTTL time.Duration, recorder metrics.Recorder) *AuthService {
	if recorder == nil {
		recorder = metrics.NewNoop()
	}
	return &AuthService{
		users:      users,
		sessions:   sessions,
		sessionTTL: sessionTTL,
		metrics:    recorder,
	}
}

// RegisterInput defines input for creating an account.
type RegisterInput struct {
	FullName string
	Email    string
	Password string
}

// Register creates a new user account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*model.User, error) {
	fullName := strings.TrimSpace(input.FullName)
	if fullName == "" {
		return nil, ErrMissingFullName
	}

	email := normalizeEmail(input.Email)
	if !emailRegex.MatchString(email) {
		return nil, ErrInvalidEmail
	}

	if len(input.Password) < minPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := auth.HashPassword(input.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &model.User{
		ID:           uuid.NewString(),
		FullName:     fullName,
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailExists) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	s.metrics.IncUserRegistered()

	return user, nil
}

// Login verifies credentials and issues a session token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*model.User, string, error) {
	email = normalizeEmail(email)

	user, err := s.users.GetUserByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			// Burn a hash comparison so unknown emails take as long as
			// wrong passwords.
			_, _ = auth.VerifyPassword(password, auth.DummyHash)
			s.metrics.IncLoginFailure()
			return nil, "", ErrInvalidCredentials
		}
		return nil, "", fmt.Errorf("failed to look up user: %w", err)
	}

	ok, err := auth.VerifyPassword(password, user.PasswordHash)
	if err != nil || !ok {
		s.metrics.IncLoginFailure()
		return nil, "", ErrInvalidCredentials
	}

	token, err := auth.GenerateToken()
	if err != nil {
		return nil, "", fmt.Errorf("failed to generate session token: %w", err)
	}

	sess := &model.Session{
		UserID:   user.ID,
		Email:    user.Email,
		FullName: user.FullName,
		IssuedAt: time.Now().UTC(),
	}

	if err := s.sessions.SetSession(ctx, token.Digest, sess, s.sessionTTL); err != nil {
		return nil, "", fmt.Errorf("failed to store session: %w", err)
	}

	s.metrics.IncLoginSuccess()

	return user, token.Plaintext, nil
}

// Resolve looks up the session behind a bearer token.
func (s *AuthService) Resolve(ctx context.Context, token string) (*model.Session, error) {
	if !auth.ValidateTokenFormat(token) {
		return nil, ErrUnauthorized
	}

	sess, err := s.sessions.GetSession(ctx, auth.TokenDigest(token))
	if err != nil {
		return nil, fmt.Errorf("failed to look up session: %w", err)
	}
	if sess == nil {
		return nil, ErrUnauthorized
	}

	return sess, nil
}

// Logout revokes the session behind a bearer token. Revoking an already
// expired or unknown token is not an error.
func (s *AuthService) Logout(ctx context.Context, token string) error {
	if !auth.ValidateTokenFormat(token) {
		return ErrUnauthorized
	}

	if err := s.sessions.DeleteSession(ctx, auth.TokenDigest(token)); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
