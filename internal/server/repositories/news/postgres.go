// Package news provides a PostgreSQL-backed repository for news records.
// Mutating queries are always scoped by owner, so a cross-owner id is
// indistinguishable from a nonexistent one.
package news

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/dpavlenko/newsboard/internal/common"
	"github.com/dpavlenko/newsboard/internal/dbx"
	"github.com/dpavlenko/newsboard/internal/server/models"
)

// PostgresRepository implements news storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a news record. Ownership is an explicit argument of the
// insert, not a side effect of some relationship traversal.
func (r *PostgresRepository) Create(ctx context.Context, item *models.News) (*models.News, error) {

	query :=
		`INSERT INTO news (id, owner_id, title, content, private)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING created_at
		 `

	err := r.db.QueryRowContext(ctx, query,
		item.ID, item.OwnerID, item.Title, item.Content, item.Private).Scan(&item.CreatedAt)

	if err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// GetByID returns the news record with the given id regardless of owner.
// Callers must gate the result through the access engine before surfacing it.
func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.News, error) {
	query :=
		`SELECT id, owner_id, title, content, private, created_at FROM news
		 WHERE id = $1
		 `

	item := &models.News{}
	err := r.db.QueryRowContext(ctx, query, id).Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Content, &item.Private, &item.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// Find returns the news record with the given id only if ownerID owns it.
// A record owned by someone else yields common.ErrNotFound, the same as a
// nonexistent id.
func (r *PostgresRepository) Find(ctx context.Context, id, ownerID string) (*models.News, error) {
	query :=
		`SELECT id, owner_id, title, content, private, created_at FROM news
		 WHERE id = $1 AND owner_id = $2
		 `

	item := &models.News{}
	err := r.db.QueryRowContext(ctx, query, id, ownerID).Scan(
		&item.ID, &item.OwnerID, &item.Title, &item.Content, &item.Private, &item.CreatedAt)

	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}

	return item, nil
}

// Update rewrites title, content and the privacy flag of an owned record.
// Zero affected rows means the record does not exist or belongs to someone
// else; both surface as common.ErrNotFound.
func (r *PostgresRepository) Update(ctx context.Context, id, ownerID, title, content string, private bool) error {
	query :=
		`UPDATE news SET title = $1, content = $2, private = $3
		 WHERE id = $4 AND owner_id = $5
		 `

	res, err := r.db.ExecContext(ctx, query, title, content, private, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// Delete removes an owned record, with the same owner scoping as Update.
func (r *PostgresRepository) Delete(ctx context.Context, id, ownerID string) error {
	query :=
		`DELETE FROM news
		 WHERE id = $1 AND owner_id = $2
		 `

	res, err := r.db.ExecContext(ctx, query, id, ownerID)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	switch n {
	case 1:
		return nil
	case 0:
		return common.ErrNotFound
	default:
		return fmt.Errorf("unexpected rows affected: %d", n)
	}
}

// SelectVisible returns every record the given viewer may read: their own
// plus everyone's public ones, in insertion order. Each call runs a fresh
// query, so re-listing is safe and yields a consistent snapshot.
func (r *PostgresRepository) SelectVisible(ctx context.Context, viewerID string) ([]*models.News, error) {
	query :=
		`SELECT id, owner_id, title, content, private, created_at FROM news
		 WHERE owner_id = $1 OR NOT private
		 ORDER BY created_at, id
		 `
	return r.selectMany(ctx, query, viewerID)
}

// SelectPublic returns all public records in insertion order.
func (r *PostgresRepository) SelectPublic(ctx context.Context) ([]*models.News, error) {
	query :=
		`SELECT id, owner_id, title, content, private, created_at FROM news
		 WHERE NOT private
		 ORDER BY created_at, id
		 `
	return r.selectMany(ctx, query)
}

func (r *PostgresRepository) selectMany(ctx context.Context, query string, args ...any) ([]*models.News, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select news: %w", err)
	}
	defer rows.Close()

	var result []*models.News
	for rows.Next() {
		var item models.News
		if err := rows.Scan(
			&item.ID, &item.OwnerID, &item.Title, &item.Content, &item.Private, &item.CreatedAt,
		); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
