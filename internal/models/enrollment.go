package models

import "time"

// Enrollment links one user to one course. The (user_id, course_id) pair is
// unique: a user cannot enroll in the same course twice.
type Enrollment struct {
	ID         string    `db:"id" json:"id"`
	UserID     string    `db:"user_id" json:"user_id"`
	CourseID   string    `db:"course_id" json:"course_id"`
	EnrolledAt time.Time `db:"enrolled_at" json:"enrolled_at"`
}
