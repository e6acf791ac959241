// Package sessions provides a PostgreSQL-backed repository for login
// sessions. Rows are persisted so remember-me sessions survive server
// restarts, and deleting a row revokes the session.
package sessions

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/dpavlenko/newsboard/internal/common"
	"github.com/dpavlenko/newsboard/internal/dbx"
	"github.com/dpavlenko/newsboard/internal/server/models"
)

// PostgresRepository implements session storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// Create inserts a new session for userID with an expiry time of now+validity.
func (r *PostgresRepository) Create(ctx context.Context, userID string, remember bool, validity time.Duration) (*models.Session, error) {
	query := `
		INSERT INTO sessions (id, user_id, remember, expires_at)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	session := &models.Session{
		ID:       uuid.NewString(),
		UserID:   userID,
		Remember: remember,
		Expires:  time.Now().Add(validity),
	}
	if err := r.db.QueryRowContext(ctx, query,
		session.ID, session.UserID, session.Remember, session.Expires).Scan(&session.CreatedAt); err != nil {
		return nil, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

// Find returns the session row for the given id.
// If not found, it returns common.ErrNotFound.
func (r *PostgresRepository) Find(ctx context.Context, id string) (*models.Session, error) {
	query := `
		SELECT id, user_id, remember, expires_at, created_at
		FROM sessions
		WHERE id = $1
	`
	session := &models.Session{}
	if err := r.db.QueryRowContext(ctx, query, id).Scan(
		&session.ID, &session.UserID, &session.Remember, &session.Expires, &session.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return session, nil
}

// Delete removes a session by id. Deleting an absent session is not an
// error, which makes logout idempotent.
func (r *PostgresRepository) Delete(ctx context.Context, id string) error {
	query := `
		DELETE FROM sessions
		WHERE id = $1
	`
	if _, err := r.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

// PurgeExpired removes all sessions whose expiry has passed and reports how
// many rows were deleted.
func (r *PostgresRepository) PurgeExpired(ctx context.Context) (int64, error) {
	query := `
		DELETE FROM sessions
		WHERE expires_at < $1
	`
	res, err := r.db.ExecContext(ctx, query, time.Now())
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}
