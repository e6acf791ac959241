package news

import (
	"context"

	"github.com/dpavlenko/newsboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, item *models.News) (*models.News, error)
	GetByID(ctx context.Context, id string) (*models.News, error)
	Find(ctx context.Context, id, ownerID string) (*models.News, error)
	Update(ctx context.Context, id, ownerID, title, content string, private bool) error
	Delete(ctx context.Context, id, ownerID string) error
	SelectVisible(ctx context.Context, viewerID string) ([]*models.News, error)
	SelectPublic(ctx context.Context) ([]*models.News, error)
}
