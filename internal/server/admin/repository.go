package admin

import (
	"context"

	"github.com/dpavlenko/newsboard/internal/server/models"
)

type Repository interface {
	FirstMatch(ctx context.Context, pred Predicate) (*models.User, error)
	UpdateByID(ctx context.Context, id string, changes Changes) error
	DeleteMatching(ctx context.Context, pred Predicate) (int64, error)
	DeleteByID(ctx context.Context, id string) error
}
