package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/dpavlenko/newsboard/internal/common"
	"github.com/dpavlenko/newsboard/internal/logging"
	"github.com/dpavlenko/newsboard/internal/server/access"
	"github.com/dpavlenko/newsboard/internal/server/models"
	"github.com/dpavlenko/newsboard/internal/server/repositories/repomanager"
)

// NewsService performs news CRUD on behalf of a viewer. Every read goes
// through access.CanView and every mutation through access.CanMutate before
// a repository method is called.
type NewsService struct {
	db          *sql.DB
	repomanager repomanager.RepositoryManager
	logger      logging.Logger
}

// NewNewsService constructs a NewsService using repositories and a logger.
func NewNewsService(db *sql.DB, m repomanager.RepositoryManager, l logging.Logger) *NewsService {
	return &NewsService{
		db:          db,
		repomanager: m,
		logger:      l.With("module", "news_service"),
	}
}

// Create publishes a new item owned by owner. Ownership is an explicit
// argument and never changes afterwards.
func (s *NewsService) Create(ctx context.Context, owner *models.User, title, content string, private bool) (*models.News, error) {
	if owner == nil {
		return nil, common.ErrUnauthorized
	}

	item := &models.News{
		ID:      uuid.NewString(),
		OwnerID: owner.ID,
		Title:   title,
		Content: content,
		Private: private,
	}

	repo := s.repomanager.News(s.db)
	created, err := repo.Create(ctx, item)
	if err != nil {
		return nil, fmt.Errorf("error creating news: %w", err)
	}

	s.logger.Info(ctx, "news created", "news_id", created.ID, "owner_id", owner.ID)
	return created, nil
}

// Get returns the item with the given id if viewer may read it. A private
// item of another owner is reported as common.ErrNotFound, exactly like a
// nonexistent id, so existence of private records never leaks.
func (s *NewsService) Get(ctx context.Context, viewer *models.User, id string) (*models.News, error) {
	repo := s.repomanager.News(s.db)

	item, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading news: %w", err)
	}

	if !access.CanView(viewer, item) {
		return nil, common.ErrNotFound
	}

	return item, nil
}

// Update rewrites an item's title, content and privacy flag. Non-owners get
// common.ErrNotFound when they cannot see the record and common.ErrUnauthorized
// when they can see it but do not own it.
func (s *NewsService) Update(ctx context.Context, viewer *models.User, id, title, content string, private bool) error {
	item, err := s.requireMutable(ctx, viewer, id)
	if err != nil {
		return err
	}

	repo := s.repomanager.News(s.db)
	if err := repo.Update(ctx, item.ID, item.OwnerID, title, content, private); err != nil {
		return fmt.Errorf("error updating news: %w", err)
	}

	s.logger.Info(ctx, "news updated", "news_id", item.ID)
	return nil
}

// Delete removes an item, with the same authorization behavior as Update.
func (s *NewsService) Delete(ctx context.Context, viewer *models.User, id string) error {
	item, err := s.requireMutable(ctx, viewer, id)
	if err != nil {
		return err
	}

	repo := s.repomanager.News(s.db)
	if err := repo.Delete(ctx, item.ID, item.OwnerID); err != nil {
		return fmt.Errorf("error deleting news: %w", err)
	}

	s.logger.Info(ctx, "news deleted", "news_id", item.ID)
	return nil
}

// ListVisible returns everything viewer may read, in insertion order. For an
// anonymous viewer that is the public records only.
func (s *NewsService) ListVisible(ctx context.Context, viewer *models.User) ([]*models.News, error) {
	repo := s.repomanager.News(s.db)
	if viewer == nil {
		return repo.SelectPublic(ctx)
	}
	return repo.SelectVisible(ctx, viewer.ID)
}

// requireMutable loads an item and gates it through the access engine for a
// mutation. Records invisible to the viewer surface as common.ErrNotFound;
// visible but foreign ones as common.ErrUnauthorized.
func (s *NewsService) requireMutable(ctx context.Context, viewer *models.User, id string) (*models.News, error) {
	repo := s.repomanager.News(s.db)

	item, err := repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, common.ErrNotFound) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("error loading news: %w", err)
	}

	if !access.CanMutate(viewer, item) {
		if access.CanView(viewer, item) {
			return nil, common.ErrUnauthorized
		}
		return nil, common.ErrNotFound
	}

	return item, nil
}
