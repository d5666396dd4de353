package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/vaughan-dsouza/codeatlas/internal/models"
)

func (s *Store) CreateEnrollment(ctx context.Context, userID, courseID string) (*models.Enrollment, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	// Both parents must exist; the FKs would catch this anyway but a typed
	// error beats a constraint violation.
	var userExists, courseExists bool
	if err := tx.GetContext(ctx, &userExists, `SELECT EXISTS (SELECT 1 FROM users WHERE id=$1)`, userID); err != nil {
		return nil, fmt.Errorf("check user: %w", err)
	}
	if !userExists {
		return nil, ErrNotFound
	}
	if err := tx.GetContext(ctx, &courseExists, `SELECT EXISTS (SELECT 1 FROM courses WHERE id=$1)`, courseID); err != nil {
		return nil, fmt.Errorf("check course: %w", err)
	}
	if !courseExists {
		return nil, ErrNotFound
	}

	if err := checkPairFree(ctx, tx, userID, courseID, ""); err != nil {
		return nil, err
	}

	enrollment := &models.Enrollment{
		ID:         uuid.New().String(),
		UserID:     userID,
		CourseID:   courseID,
		EnrolledAt: time.Now().UTC(),
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO enrollments (id, user_id, course_id, enrolled_at)
		VALUES ($1, $2, $3, $4)
	`, enrollment.ID, enrollment.UserID, enrollment.CourseID, enrollment.EnrolledAt)
	if err != nil {
		return nil, fmt.Errorf("insert enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return enrollment, nil
}

func (s *Store) GetEnrollment(ctx context.Context, id string) (*models.Enrollment, error) {
	var enrollment models.Enrollment
	err := s.db.GetContext(ctx, &enrollment, `SELECT * FROM enrollments WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}
	return &enrollment, nil
}

func (s *Store) ListEnrollments(ctx context.Context, skip, limit int) ([]models.Enrollment, error) {
	var enrollments []models.Enrollment
	err := s.db.SelectContext(ctx, &enrollments, `
		SELECT * FROM enrollments ORDER BY enrolled_at OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list enrollments: %w", err)
	}
	return enrollments, nil
}

// UpdateEnrollment repoints an enrollment at a different user/course pair.
func (s *Store) UpdateEnrollment(ctx context.Context, id, userID, courseID string) (*models.Enrollment, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var enrollment models.Enrollment
	err = tx.GetContext(ctx, &enrollment, `SELECT * FROM enrollments WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get enrollment: %w", err)
	}

	if err := checkPairFree(ctx, tx, userID, courseID, id); err != nil {
		return nil, err
	}

	enrollment.UserID = userID
	enrollment.CourseID = courseID

	_, err = tx.ExecContext(ctx, `
		UPDATE enrollments SET user_id=$1, course_id=$2 WHERE id=$3
	`, userID, courseID, id)
	if err != nil {
		return nil, fmt.Errorf("update enrollment: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &enrollment, nil
}

func (s *Store) DeleteEnrollment(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM enrollments WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete enrollment: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func checkPairFree(ctx context.Context, tx *sqlx.Tx, userID, courseID, excludeID string) error {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM enrollments WHERE user_id=$1 AND course_id=$2 AND id<>$3)
	`, userID, courseID, excludeID)
	if err != nil {
		return fmt.Errorf("check enrollment pair: %w", err)
	}
	if exists {
		return ErrDuplicateEnrollment
	}
	return nil
}
