package auth

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"

	"github.com/frahmantamala/room-reservation/internal"
	"github.com/frahmantamala/room-reservation/internal/core/common/password"
)

type CredentialRepository interface {
	// GetCredentialByEmail returns nil, nil when no user has that email.
	GetCredentialByEmail(ctx context.Context, email string) (*Credential, error)
}

type SessionIssuer interface {
	Issue(userID int64) (*Session, error)
	Validate(tokenString string) (int64, error)
}

var (
	dummyHashOnce sync.Once
	dummyHash     string
)

// compareDummy keeps the unknown-email path as slow as a real comparison.
func compareDummy(plain string) {
	dummyHashOnce.Do(func() {
		dummyHash, _ = password.Hash("not-a-real-password", 0)
	})
	_ = password.Compare(dummyHash, plain)
}

type Service struct {
	repo     CredentialRepository
	sessions SessionIssuer
	logger   *slog.Logger
}

func NewService(repo CredentialRepository, sessions SessionIssuer, logger *slog.Logger) *Service {
	return &Service{
		repo:     repo,
		sessions: sessions,
		logger:   logger,
	}
}

// Authenticate validates credentials and issues a session.
func (s *Service) Authenticate(ctx context.Context, dto LoginDTO) (*Session, error) {
	dto.Email = strings.ToLower(strings.TrimSpace(dto.Email))
	if appErr := dto.Validate(); appErr != nil {
		return nil, appErr
	}

	cred, err := s.repo.GetCredentialByEmail(ctx, dto.Email)
	if err != nil {
		return nil, internal.NewInternalError("failed to load credentials", err)
	}

	if cred == nil {
		compareDummy(dto.Password)
		s.logger.InfoContext(ctx, "login rejected: unknown email")
		return nil, internal.ErrInvalidCredentials
	}

	if err := password.Compare(cred.PasswordHash, dto.Password); err != nil {
		if !errors.Is(err, password.ErrMismatch) {
			return nil, internal.NewInternalError("failed to verify password", err)
		}
		s.logger.InfoContext(ctx, "login rejected: wrong password", "user_id", cred.UserID)
		return nil, internal.ErrInvalidCredentials
	}

	if !cred.IsVerified {
		s.logger.InfoContext(ctx, "login rejected: unverified account", "user_id", cred.UserID)
		return nil, internal.ErrUserNotVerified
	}

	session, err := s.sessions.Issue(cred.UserID)
	if err != nil {
		return nil, internal.NewInternalError("failed to issue session", err)
	}

	s.logger.InfoContext(ctx, "user logged in", "user_id", cred.UserID)
	return session, nil
}

// ValidateSession returns the user id behind a session token.
func (s *Service) ValidateSession(tokenString string) (int64, error) {
	if tokenString == "" {
		return 0, internal.ErrUnauthenticated
	}
	userID, err := s.sessions.Validate(tokenString)
	if err != nil {
		return 0, internal.ErrInvalidSession.WithCause(err)
	}
	return userID, nil
}
