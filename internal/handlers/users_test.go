package handlers

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	usernameCheckQ = `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(username)=LOWER($1) AND id<>$2)`
	emailCheckQ    = `SELECT EXISTS (SELECT 1 FROM users WHERE LOWER(email)=LOWER($1) AND id<>$2)`
)

func TestCreateUser_Returns201(t *testing.T) {
	env := newTestEnv(t)
	router := env.newTestRouter()

	env.Mock.ExpectBegin()
	env.Mock.ExpectQuery(q(usernameCheckQ)).WithArgs("alice", "").WillReturnRows(existsRow(false))
	env.Mock.ExpectQuery(q(emailCheckQ)).WithArgs("a@x.com", "").WillReturnRows(existsRow(false))
	env.Mock.ExpectExec(q(`INSERT INTO users`)).WillReturnResult(sqlmock.NewResult(0, 1))
	env.Mock.ExpectCommit()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users",
		strings.NewReader(`{"username":"alice","email":"a@x.com"}`))
	rec := doRequest(t, router, req)

	require.Equal(t, http.StatusCreated, rec.Code)
	body := decodeBody(t, rec)
	assert.NotEmpty(t, body["id"])
	assert.Equal(t, "alice", body["username"])
	assert.Equal(t, "a@x.com", body["email"])
	assert.NotContains(t, rec.Body.String(), "hashed_password")
}

func TestCreateUser_DuplicateUsernameReturns409(t *testing.T) {
	env := newTestEnv(t)
	router := env.newTestRouter()

	env.Mock.ExpectBegin()
	env.Mock.ExpectQuery(q(usernameCheckQ)).WithArgs("alice", "").WillReturnRows(existsRow(true))
	env.Mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users",
		strings.NewReader(`{"username":"alice","email":"a@x.com"}`))
	rec := doRequest(t, router, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username 'alice' is already taken", decodeBody(t, rec)["error"])
}

func TestCreateUser_InvalidEmailReturns400(t *testing.T) {
	env := newTestEnv(t)
	router := env.newTestRouter()

	req := httptest.NewRequest(http.MethodPost, "/api/admin/users",
		strings.NewReader(`{"username":"alice","email":"not-an-email"}`))
	rec := doRequest(t, router, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestGetUser_UnknownIDReturns404(t *testing.T) {
	env := newTestEnv(t)
	router := env.newTestRouter()

	env.Mock.ExpectQuery(q(`SELECT * FROM users WHERE id=$1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(userColumns))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users/nope", nil)
	rec := doRequest(t, router, req)

	require.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "User with id 'nope' not found", decodeBody(t, rec)["error"])
}

func TestGetUser_LoadEnrollments(t *testing.T) {
	env := newTestEnv(t)
	router := env.newTestRouter()

	env.Mock.ExpectQuery(q(`SELECT * FROM users WHERE id=$1`)).
		WithArgs("u-1").
		WillReturnRows(userRow("u-1", "alice", "a@x.com", nil))
	env.Mock.ExpectQuery(q(`SELECT * FROM enrollments WHERE user_id IN ($1) ORDER BY enrolled_at`)).
		WithArgs("u-1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "user_id", "course_id", "enrolled_at"}).
			AddRow("e-1", "u-1", "c-1", time.Now().UTC()))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users/u-1?load_enrollments=true", nil)
	rec := doRequest(t, router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	body := decodeBody(t, rec)
	enrollments, ok := body["enrollments"].([]any)
	require.True(t, ok)
	assert.Len(t, enrollments, 1)
}

func TestListUsers_ClampsLimit(t *testing.T) {
	env := newTestEnv(t)
	router := env.newTestRouter()

	env.Mock.ExpectQuery(q(`SELECT * FROM users ORDER BY created_at OFFSET $1 LIMIT $2`)).
		WithArgs(0, 500).
		WillReturnRows(userRow("u-1", "alice", "a@x.com", nil))

	req := httptest.NewRequest(http.MethodGet, "/api/admin/users?skip=0&limit=9999", nil)
	rec := doRequest(t, router, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.NoError(t, env.Mock.ExpectationsWereMet())
}

func TestUpdateUser_NotFoundReturns404(t *testing.T) {
	env := newTestEnv(t)
	router := env.newTestRouter()

	env.Mock.ExpectBegin()
	env.Mock.ExpectQuery(q(`SELECT * FROM users WHERE id=$1`)).
		WithArgs("nope").
		WillReturnRows(sqlmock.NewRows(userColumns))
	env.Mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/nope",
		strings.NewReader(`{"first_name":"Al"}`))
	rec := doRequest(t, router, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestUpdateUser_ConflictReturns409(t *testing.T) {
	env := newTestEnv(t)
	router := env.newTestRouter()

	env.Mock.ExpectBegin()
	env.Mock.ExpectQuery(q(`SELECT * FROM users WHERE id=$1`)).
		WithArgs("u-1").
		WillReturnRows(userRow("u-1", "alice", "a@x.com", nil))
	env.Mock.ExpectQuery(q(usernameCheckQ)).WithArgs("bob", "u-1").WillReturnRows(existsRow(true))
	env.Mock.ExpectRollback()

	req := httptest.NewRequest(http.MethodPatch, "/api/admin/users/u-1",
		strings.NewReader(`{"username":"bob"}`))
	rec := doRequest(t, router, req)

	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Username 'bob' is already taken", decodeBody(t, rec)["error"])
}

func TestDeleteUser_Returns204(t *testing.T) {
	env := newTestEnv(t)
	router := env.newTestRouter()

	env.Mock.ExpectExec(q(`DELETE FROM users WHERE id=$1`)).
		WithArgs("u-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	req := httptest.NewRequest(http.MethodDelete, "/api/admin/users/u-1", nil)
	rec := doRequest(t, router, req)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	assert.Empty(t, rec.Body.String())
}
