package admin

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/dpavlenko/newsboard/internal/common"
	"github.com/dpavlenko/newsboard/internal/dbx"
	"github.com/dpavlenko/newsboard/internal/server/models"
)

// PostgresRepository executes compiled predicates against the users table
// over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

// FirstMatch returns the first user matching pred in stable insertion order,
// or common.ErrNotFound.
func (r *PostgresRepository) FirstMatch(ctx context.Context, pred Predicate) (*models.User, error) {
	where, args, err := compilePredicate(pred)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(
		`SELECT id, name, email, about, password_hash, created_at FROM users
		 WHERE %s
		 ORDER BY created_at, id
		 LIMIT 1
		 `, where)

	user := &models.User{}
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(
		&user.ID, &user.Name, &user.Email, &user.About, &user.PasswordHash, &user.CreatedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, common.ErrNotFound
		}
		return nil, fmt.Errorf("db error: %w", err)
	}
	return user, nil
}

// UpdateByID applies an allow-listed change set to a single user and stamps
// created_at to now, which is how the original fix-up tool marked touched
// rows.
func (r *PostgresRepository) UpdateByID(ctx context.Context, id string, changes Changes) error {
	if err := changes.validate(); err != nil {
		return err
	}

	// Deterministic column order keeps the statement stable for tests and logs.
	fields := make([]Field, 0, len(changes))
	for f := range changes {
		fields = append(fields, f)
	}
	sort.Slice(fields, func(i, j int) bool { return fields[i] < fields[j] })

	set := ""
	args := []any{}
	for _, f := range fields {
		args = append(args, changes[f])
		set += fmt.Sprintf("%s = $%d, ", f, len(args))
	}
	args = append(args, time.Now())
	set += fmt.Sprintf("created_at = $%d", len(args))

	args = append(args, id)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d`, set, len(args))

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}

// DeleteMatching removes every user matching pred and reports how many rows
// were deleted.
func (r *PostgresRepository) DeleteMatching(ctx context.Context, pred Predicate) (int64, error) {
	where, args, err := compilePredicate(pred)
	if err != nil {
		return 0, err
	}

	query := fmt.Sprintf(`DELETE FROM users WHERE %s`, where)

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("rows affected error: %w", err)
	}
	return n, nil
}

// DeleteByID removes a single user by id, or returns common.ErrNotFound.
func (r *PostgresRepository) DeleteByID(ctx context.Context, id string) error {
	query := `DELETE FROM users WHERE id = $1`

	res, err := r.db.ExecContext(ctx, query, id)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("rows affected error: %w", err)
	}
	if n == 0 {
		return common.ErrNotFound
	}
	return nil
}
