package news

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dpavlenko/newsboard/internal/common"
	"github.com/dpavlenko/newsboard/internal/server/models"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func TestCreate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+news\s*\(id,\s*owner_id,\s*title,\s*content,\s*private\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5\)\s*RETURNING\s+created_at\s*$`

	now := time.Now()
	mock.ExpectQuery(q).
		WithArgs("n-1", "u-1", "hello", "world", true).
		WillReturnRows(sqlmock.NewRows([]string{"created_at"}).AddRow(now))

	item := &models.News{ID: "n-1", OwnerID: "u-1", Title: "hello", Content: "world", Private: true}
	got, err := repo.Create(context.Background(), item)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if !got.CreatedAt.Equal(now) {
		t.Fatalf("unexpected item: %+v", got)
	}
}

func TestFind_ScopedByOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*owner_id,\s*title,\s*content,\s*private,\s*created_at\s+FROM\s+news\s+WHERE\s+id\s*=\s*\$1\s+AND\s+owner_id\s*=\s*\$2\s*$`

	rows := newsRowsStub()
	mock.ExpectQuery(q).
		WithArgs("n-1", "u-1").
		WillReturnRows(rows)

	got, err := repo.Find(context.Background(), "n-1", "u-1")
	if err != nil {
		t.Fatalf("Find error: %v", err)
	}
	if got.ID != "n-1" || got.OwnerID != "u-1" {
		t.Fatalf("unexpected item: %+v", got)
	}
}

func newsRowsStub() *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "owner_id", "title", "content", "private", "created_at"}).
		AddRow("n-1", "u-1", "hello", "world", false, time.Now())
}

func TestFind_CrossOwnerIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*owner_id`

	// The row exists but belongs to u-1; the owner-scoped query returns nothing.
	mock.ExpectQuery(q).
		WithArgs("n-1", "u-2").
		WillReturnError(sql.ErrNoRows)

	_, err := repo.Find(context.Background(), "n-1", "u-2")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestUpdate_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+news\s+SET\s+title\s*=\s*\$1,\s*content\s*=\s*\$2,\s*private\s*=\s*\$3\s+WHERE\s+id\s*=\s*\$4\s+AND\s+owner_id\s*=\s*\$5\s*$`

	mock.ExpectExec(q).
		WithArgs("new title", "new content", true, "n-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Update(context.Background(), "n-1", "u-1", "new title", "new content", true); err != nil {
		t.Fatalf("Update error: %v", err)
	}
}

func TestUpdate_ZeroRowsIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+news\s+SET`

	mock.ExpectExec(q).
		WithArgs("t", "c", false, "n-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Update(context.Background(), "n-1", "u-2", "t", "c", false)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestDelete_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+news\s+WHERE\s+id\s*=\s*\$1\s+AND\s+owner_id\s*=\s*\$2\s*$`

	mock.ExpectExec(q).
		WithArgs("n-1", "u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := repo.Delete(context.Background(), "n-1", "u-1"); err != nil {
		t.Fatalf("Delete error: %v", err)
	}
}

func TestDelete_ZeroRowsIsNotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^DELETE\s+FROM\s+news`

	mock.ExpectExec(q).
		WithArgs("n-1", "u-2").
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := repo.Delete(context.Background(), "n-1", "u-2")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("expected common.ErrNotFound, got %v", err)
	}
}

func TestSelectVisible(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*owner_id,\s*title,\s*content,\s*private,\s*created_at\s+FROM\s+news\s+WHERE\s+owner_id\s*=\s*\$1\s+OR\s+NOT\s+private\s+ORDER\s+BY\s+created_at,\s*id\s*$`

	rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "content", "private", "created_at"}).
		AddRow("n-1", "u-1", "mine private", "x", true, time.Now()).
		AddRow("n-2", "u-2", "theirs public", "y", false, time.Now())
	mock.ExpectQuery(q).
		WithArgs("u-1").
		WillReturnRows(rows)

	got, err := repo.SelectVisible(context.Background(), "u-1")
	if err != nil {
		t.Fatalf("SelectVisible error: %v", err)
	}
	if len(got) != 2 || got[0].ID != "n-1" || got[1].ID != "n-2" {
		t.Fatalf("unexpected result: %+v", got)
	}
}

func TestSelectPublic(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+id,\s*owner_id,\s*title,\s*content,\s*private,\s*created_at\s+FROM\s+news\s+WHERE\s+NOT\s+private\s+ORDER\s+BY\s+created_at,\s*id\s*$`

	rows := sqlmock.NewRows([]string{"id", "owner_id", "title", "content", "private", "created_at"}).
		AddRow("n-2", "u-2", "public", "y", false, time.Now())
	mock.ExpectQuery(q).
		WillReturnRows(rows)

	got, err := repo.SelectPublic(context.Background())
	if err != nil {
		t.Fatalf("SelectPublic error: %v", err)
	}
	if len(got) != 1 || got[0].Private {
		t.Fatalf("unexpected result: %+v", got)
	}
}
