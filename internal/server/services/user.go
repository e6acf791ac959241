// Package services contains the server-side business logic: registration,
// session lifecycle, news publishing gated by the access engine, and the
// administrative fix-up operations.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dpavlenko/newsboard/internal/common"
	"github.com/dpavlenko/newsboard/internal/logging"
	"github.com/dpavlenko/newsboard/internal/server/credential"
	"github.com/dpavlenko/newsboard/internal/server/models"
	"github.com/dpavlenko/newsboard/internal/server/repositories/repomanager"
)

// UserService handles account registration and identity lookups.
type UserService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewUserService constructs a UserService using repositories and a logger.
func NewUserService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *UserService {
	return &UserService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "user_service"),
	}
}

// Register creates a new account. The plaintext password is hashed before it
// reaches the repository; a taken email yields common.ErrDuplicateEmail.
func (s *UserService) Register(ctx context.Context, name, email, about, password string) (*models.User, error) {
	hash, err := credential.Hash(password)
	if err != nil {
		return nil, err
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Name:         name,
		Email:        email,
		About:        about,
		PasswordHash: hash,
	}

	repo := s.repomanager.Users(s.db)
	u, err := repo.Create(ctx, user)
	if err != nil {
		if errors.Is(err, common.ErrDuplicateEmail) {
			return nil, common.ErrDuplicateEmail
		}
		return nil, fmt.Errorf("error creating user: %w", err)
	}

	s.logger.Info(ctx, "user registered", "user_id", u.ID)
	return u, nil
}

// GetByID returns the account with the given id, or common.ErrNotFound.
func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	repo := s.repomanager.Users(s.db)
	return repo.GetByID(ctx, id)
}
