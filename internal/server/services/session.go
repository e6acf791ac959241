package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/dpavlenko/newsboard/internal/common"
	"github.com/dpavlenko/newsboard/internal/logging"
	"github.com/dpavlenko/newsboard/internal/server/auth"
	"github.com/dpavlenko/newsboard/internal/server/config"
	"github.com/dpavlenko/newsboard/internal/server/credential"
	"github.com/dpavlenko/newsboard/internal/server/models"
	"github.com/dpavlenko/newsboard/internal/server/repositories/repomanager"
)

// SessionService establishes, resolves and tears down login sessions.
// Tokens handed to callers are signed (HS256) and reference a persisted
// session row, so remember-me sessions survive restarts and any session can
// be revoked server-side.
type SessionService struct {
	db                      *sql.DB
	repomanager             repomanager.RepositoryManager
	logger                  logging.Logger
	jwtSecret               []byte
	sessionLifetime         time.Duration
	rememberSessionLifetime time.Duration

	// decoyHash is verified against when the email is unknown, so a missing
	// account costs the same as a wrong password.
	decoyHash string
}

// NewSessionService constructs a SessionService using repositories and server config.
func NewSessionService(db *sql.DB, m repomanager.RepositoryManager, cfg *config.Config, l logging.Logger) *SessionService {
	decoy, err := credential.Hash(string(common.GenerateRandByteArray(32)))
	if err != nil {
		panic(err)
	}
	return &SessionService{
		db:                      db,
		repomanager:             m,
		logger:                  l.With("module", "session_service"),
		jwtSecret:               []byte(cfg.SecretKey),
		sessionLifetime:         cfg.SessionLifetime,
		rememberSessionLifetime: cfg.RememberSessionLifetime,
		decoyHash:               decoy,
	}
}

// Authenticate verifies the email/password pair. An unknown email and a
// wrong password both return common.ErrInvalidCredentials; a credential
// verification is burned in the unknown-email case so the two failures are
// indistinguishable in timing as well as in shape.
func (s *SessionService) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)

	user, err := repo.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			credential.Verify(s.decoyHash, password)
			return nil, common.ErrInvalidCredentials
		}
		return nil, common.ErrInternal
	}

	if !credential.Verify(user.PasswordHash, password) {
		return nil, common.ErrInvalidCredentials
	}

	return user, nil
}

// Start opens a session for user and returns the signed token. With remember
// set the session lives for the configured long lifetime (default 365 days);
// otherwise for the short one.
func (s *SessionService) Start(ctx context.Context, user *models.User, remember bool) (string, error) {
	validity := s.sessionLifetime
	if remember {
		validity = s.rememberSessionLifetime
	}

	repo := s.repomanager.Sessions(s.db)
	session, err := repo.Create(ctx, user.ID, remember, validity)
	if err != nil {
		return "", fmt.Errorf("error creating session: %w", err)
	}

	token, err := auth.GenerateToken(session.ID, user.ID, s.jwtSecret, validity)
	if err != nil {
		return "", common.ErrInternal
	}

	s.logger.Info(ctx, "session started", "user_id", user.ID, "remember", remember)
	return token, nil
}

// Resolve maps a token to the current identity. It returns (nil, nil),
// meaning anonymous, whenever the token is absent, malformed, expired,
// revoked, or the user behind it no longer exists. Every protected
// operation goes through here.
func (s *SessionService) Resolve(ctx context.Context, token string) (*models.User, error) {
	if token == "" {
		return nil, nil
	}

	sessionID, userID, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil, nil
	}

	sessionRepo := s.repomanager.Sessions(s.db)
	session, err := sessionRepo.Find(ctx, sessionID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil // revoked
		}
		return nil, fmt.Errorf("error searching session: %w", err)
	}

	if session.Expires.Before(time.Now()) || session.UserID != userID {
		return nil, nil
	}

	userRepo := s.repomanager.Users(s.db)
	user, err := userRepo.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, nil // deleted users must not keep usable sessions
		}
		return nil, fmt.Errorf("error loading session user: %w", err)
	}

	return user, nil
}

// End revokes the session behind token. Unknown and malformed tokens are
// ignored, which makes logout idempotent.
func (s *SessionService) End(ctx context.Context, token string) error {
	sessionID, _, err := auth.ParseToken(token, s.jwtSecret)
	if err != nil {
		return nil
	}

	repo := s.repomanager.Sessions(s.db)
	if err := repo.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("error deleting session: %w", err)
	}
	return nil
}

// PurgeExpired sweeps out sessions whose expiry has passed.
func (s *SessionService) PurgeExpired(ctx context.Context) (int64, error) {
	repo := s.repomanager.Sessions(s.db)
	return repo.PurgeExpired(ctx)
}
