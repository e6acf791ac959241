package sessions

import (
	"context"
	"time"

	"github.com/dpavlenko/newsboard/internal/server/models"
)

type Repository interface {
	Create(ctx context.Context, userID string, remember bool, validity time.Duration) (*models.Session, error)
	Find(ctx context.Context, id string) (*models.Session, error)
	Delete(ctx context.Context, id string) error
	PurgeExpired(ctx context.Context) (int64, error)
}
