package store

import (
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
)

func newStoreWithMock(t *testing.T) (*Store, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	return New(sqlx.NewDb(db, "pgx")), mock, db
}

func q(query string) string {
	return regexp.QuoteMeta(query)
}

var userColumns = []string{"id", "username", "email", "hashed_password", "first_name", "last_name", "created_at", "updated_at"}

func userRow(id, username, email string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(userColumns).
		AddRow(id, username, email, nil, nil, nil, now, now)
}

var courseColumns = []string{"id", "title", "description", "created_at", "updated_at"}

func courseRow(id, title string) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(courseColumns).
		AddRow(id, title, nil, now, now)
}

var enrollmentColumns = []string{"id", "user_id", "course_id", "enrolled_at"}

func existsRow(exists bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(exists)
}
