package services

import (
	"context"
	"database/sql"

	"github.com/dpavlenko/newsboard/internal/dbx"
	"github.com/dpavlenko/newsboard/internal/logging"
	"github.com/dpavlenko/newsboard/internal/server/admin"
	"github.com/dpavlenko/newsboard/internal/server/models"
	"github.com/dpavlenko/newsboard/internal/server/repositories/repomanager"
)

// AdminService exposes the out-of-band fix-up operations on user records.
// It only accepts the closed predicate language and allow-listed change sets
// from package admin; it is wired solely into the operator CLI, never into
// any user-facing surface.
type AdminService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewAdminService constructs an AdminService using repositories and a logger.
func NewAdminService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *AdminService {
	return &AdminService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "admin_service"),
	}
}

// UpdateFirstMatch applies changes to the first user matching pred (stable
// insertion order) and stamps its created_at to now. Selection and update run
// in one transaction so the matched row cannot change identity in between.
func (s *AdminService) UpdateFirstMatch(ctx context.Context, pred admin.Predicate, changes admin.Changes) (*models.User, error) {
	var user *models.User

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Admin(tx)

		u, err := repoTx.FirstMatch(ctx, pred)
		if err != nil {
			return err
		}
		if err := repoTx.UpdateByID(ctx, u.ID, changes); err != nil {
			return err
		}
		user = u
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info(ctx, "admin update applied", "user_id", user.ID)
	return user, nil
}

// DeleteMatching removes every user matching pred and reports the count.
func (s *AdminService) DeleteMatching(ctx context.Context, pred admin.Predicate) (int64, error) {
	repo := s.repomanager.Admin(s.db)

	n, err := repo.DeleteMatching(ctx, pred)
	if err != nil {
		return 0, err
	}

	s.logger.Info(ctx, "admin bulk delete applied", "deleted", n)
	return n, nil
}

// DeleteFirstMatch removes only the first user matching pred, in the same
// stable order as UpdateFirstMatch.
func (s *AdminService) DeleteFirstMatch(ctx context.Context, pred admin.Predicate) error {
	var userID string

	err := dbx.WithTx(ctx, s.db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		repoTx := s.repomanager.Admin(tx)

		u, err := repoTx.FirstMatch(ctx, pred)
		if err != nil {
			return err
		}
		if err := repoTx.DeleteByID(ctx, u.ID); err != nil {
			return err
		}
		userID = u.ID
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info(ctx, "admin delete applied", "user_id", userID)
	return nil
}
