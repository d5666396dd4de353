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

type CreateCourseParams struct {
	Title       string
	Description *string
}

type UpdateCourseParams struct {
	Title       *string
	Description *string
}

func (s *Store) CreateCourse(ctx context.Context, p CreateCourseParams) (*models.Course, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := checkTitleFree(ctx, tx, p.Title, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	course := &models.Course{
		ID:          uuid.New().String(),
		Title:       p.Title,
		Description: p.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO courses (id, title, description, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5)
	`, course.ID, course.Title, course.Description, course.CreatedAt, course.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert course: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return course, nil
}

func (s *Store) GetCourse(ctx context.Context, id string) (*models.Course, error) {
	var course models.Course
	err := s.db.GetContext(ctx, &course, `SELECT * FROM courses WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}
	return &course, nil
}

func (s *Store) ListCourses(ctx context.Context, skip, limit int) ([]models.Course, error) {
	var courses []models.Course
	err := s.db.SelectContext(ctx, &courses, `
		SELECT * FROM courses ORDER BY created_at OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list courses: %w", err)
	}
	return courses, nil
}

func (s *Store) UpdateCourse(ctx context.Context, id string, p UpdateCourseParams) (*models.Course, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var course models.Course
	err = tx.GetContext(ctx, &course, `SELECT * FROM courses WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get course: %w", err)
	}

	if p.Title != nil {
		if err := checkTitleFree(ctx, tx, *p.Title, id); err != nil {
			return nil, err
		}
		course.Title = *p.Title
	}
	if p.Description != nil {
		course.Description = p.Description
	}
	course.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE courses SET title=$1, description=$2, updated_at=$3 WHERE id=$4
	`, course.Title, course.Description, course.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("update course: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &course, nil
}

func (s *Store) DeleteCourse(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM courses WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete course: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnrollmentsForCourses fetches the enrollments of all given courses in one
// query, keyed by course id.
func (s *Store) EnrollmentsForCourses(ctx context.Context, courseIDs []string) (map[string][]models.Enrollment, error) {
	if len(courseIDs) == 0 {
		return map[string][]models.Enrollment{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM enrollments WHERE course_id IN (?) ORDER BY enrolled_at`, courseIDs)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []models.Enrollment
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}

	byCourse := make(map[string][]models.Enrollment, len(courseIDs))
	for _, e := range rows {
		byCourse[e.CourseID] = append(byCourse[e.CourseID], e)
	}
	return byCourse, nil
}

func checkTitleFree(ctx context.Context, tx *sqlx.Tx, title, excludeID string) error {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM courses WHERE LOWER(title)=LOWER($1) AND id<>$2)
	`, title, excludeID)
	if err != nil {
		return fmt.Errorf("check title: %w", err)
	}
	if exists {
		return ErrTitleTaken
	}
	return nil
}
