package models

import (
	"database/sql"
	"time"
)

type User struct {
	ID             string         `db:"id" json:"id"`
	Username       string         `db:"username" json:"username"`
	Email          string         `db:"email" json:"email"`
	HashedPassword sql.NullString `db:"hashed_password" json:"-"`
	FirstName      *string        `db:"first_name" json:"first_name"`
	LastName       *string        `db:"last_name" json:"last_name"`
	CreatedAt      time.Time      `db:"created_at" json:"created_at"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updated_at"`

	// Populated only when the caller asked for enrollments.
	Enrollments []Enrollment `db:"-" json:"enrollments,omitempty"`
}
