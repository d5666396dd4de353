package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// Base sentinels. The specific conflict errors below wrap ErrConflict so
// handlers can match either the broad class or the exact cause.
var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")

	ErrUsernameTaken       = fmt.Errorf("username already taken: %w", ErrConflict)
	ErrEmailTaken          = fmt.Errorf("email already registered: %w", ErrConflict)
	ErrTitleTaken          = fmt.Errorf("course title already exists: %w", ErrConflict)
	ErrDuplicateEnrollment = fmt.Errorf("user already enrolled in course: %w", ErrConflict)
)

// Store owns all database access. One Store per process; every mutating
// method runs its checks and write inside a single transaction.
//
// Uniqueness is verified with a read before the write, without row locks. Two
// concurrent creates can both pass the check; the loser then fails at the
// unique index and surfaces as a plain database error.
type Store struct {
	db *sqlx.DB
}

func New(db *sqlx.DB) *Store {
	return &Store{db: db}
}

// EntityCounts returns the row counts shown on the admin dashboard.
func (s *Store) EntityCounts(ctx context.Context) (users, courses, enrollments int64, err error) {
	err = s.db.QueryRowxContext(ctx, `
		SELECT
			(SELECT COUNT(*) FROM users),
			(SELECT COUNT(*) FROM courses),
			(SELECT COUNT(*) FROM enrollments)
	`).Scan(&users, &courses, &enrollments)
	if err != nil {
		return 0, 0, 0, fmt.Errorf("entity counts: %w", err)
	}
	return users, courses, enrollments, nil
}
