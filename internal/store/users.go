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

type CreateUserParams struct {
	Username       string
	Email          string
	HashedPassword *string
	FirstName      *string
	LastName       *string
}

// Nil fields are left unchanged.
type UpdateUserParams struct {
	Username       *string
	Email          *string
	FirstName      *string
	LastName       *string
	HashedPassword *string
}

func (s *Store) CreateUser(ctx context.Context, p CreateUserParams) (*models.User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	if err := checkUsernameFree(ctx, tx, p.Username, ""); err != nil {
		return nil, err
	}
	if err := checkEmailFree(ctx, tx, p.Email, ""); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:        uuid.New().String(),
		Username:  p.Username,
		Email:     p.Email,
		FirstName: p.FirstName,
		LastName:  p.LastName,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if p.HashedPassword != nil {
		user.HashedPassword = sql.NullString{String: *p.HashedPassword, Valid: true}
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO users (id, username, email, hashed_password, first_name, last_name, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`, user.ID, user.Username, user.Email, user.HashedPassword, user.FirstName, user.LastName, user.CreatedAt, user.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("insert user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return user, nil
}

func (s *Store) GetUser(ctx context.Context, id string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return &user, nil
}

// GetUserByUsername matches case-insensitively.
func (s *Store) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	var user models.User
	err := s.db.GetContext(ctx, &user, `SELECT * FROM users WHERE LOWER(username)=LOWER($1)`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user by username: %w", err)
	}
	return &user, nil
}

func (s *Store) ListUsers(ctx context.Context, skip, limit int) ([]models.User, error) {
	var users []models.User
	err := s.db.SelectContext(ctx, &users, `
		SELECT * FROM users ORDER BY created_at OFFSET $1 LIMIT $2
	`, skip, limit)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	return users, nil
}

func (s *Store) UpdateUser(ctx context.Context, id string, p UpdateUserParams) (*models.User, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var user models.User
	err = tx.GetContext(ctx, &user, `SELECT * FROM users WHERE id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}

	if p.Username != nil {
		if err := checkUsernameFree(ctx, tx, *p.Username, id); err != nil {
			return nil, err
		}
		user.Username = *p.Username
	}
	if p.Email != nil {
		if err := checkEmailFree(ctx, tx, *p.Email, id); err != nil {
			return nil, err
		}
		user.Email = *p.Email
	}
	if p.FirstName != nil {
		user.FirstName = p.FirstName
	}
	if p.LastName != nil {
		user.LastName = p.LastName
	}
	if p.HashedPassword != nil {
		user.HashedPassword = sql.NullString{String: *p.HashedPassword, Valid: true}
	}
	user.UpdatedAt = time.Now().UTC()

	_, err = tx.ExecContext(ctx, `
		UPDATE users
		SET username=$1, email=$2, hashed_password=$3, first_name=$4, last_name=$5, updated_at=$6
		WHERE id=$7
	`, user.Username, user.Email, user.HashedPassword, user.FirstName, user.LastName, user.UpdatedAt, id)
	if err != nil {
		return nil, fmt.Errorf("update user: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}

	return &user, nil
}

func (s *Store) DeleteUser(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete user: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// EnrollmentsForUsers fetches the enrollments of all given users in one
// query, keyed by user id.
func (s *Store) EnrollmentsForUsers(ctx context.Context, userIDs []string) (map[string][]models.Enrollment, error) {
	if len(userIDs) == 0 {
		return map[string][]models.Enrollment{}, nil
	}

	query, args, err := sqlx.In(`SELECT * FROM enrollments WHERE user_id IN (?) ORDER BY enrolled_at`, userIDs)
	if err != nil {
		return nil, fmt.Errorf("build query: %w", err)
	}

	var rows []models.Enrollment
	if err := s.db.SelectContext(ctx, &rows, s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("load enrollments: %w", err)
	}

	byUser := make(map[string][]models.Enrollment, len(userIDs))
	for _, e := range rows {
		byUser[e.UserID] = append(byUser[e.UserID], e)
	}
	return byUser, nil
}

func checkUsernameFree(ctx context.Context, tx *sqlx.Tx, username, excludeID string) error {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username)=LOWER($1) AND id<>$2)
	`, username, excludeID)
	if err != nil {
		return fmt.Errorf("check username: %w", err)
	}
	if exists {
		return ErrUsernameTaken
	}
	return nil
}

func checkEmailFree(ctx context.Context, tx *sqlx.Tx, email, excludeID string) error {
	var exists bool
	err := tx.GetContext(ctx, &exists, `
		SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email)=LOWER($1) AND id<>$2)
	`, email, excludeID)
	if err != nil {
		return fmt.Errorf("check email: %w", err)
	}
	if exists {
		return ErrEmailTaken
	}
	return nil
}
