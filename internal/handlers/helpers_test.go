package handlers

import (
	"database/sql"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-chi/chi/v5"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/require"

	"github.com/vaughan-dsouza/codeatlas/internal/auth"
	"github.com/vaughan-dsouza/codeatlas/internal/config"
	"github.com/vaughan-dsouza/codeatlas/internal/middleware"
	"github.com/vaughan-dsouza/codeatlas/internal/store"
)

const testSecret = "handlers-test-secret"

type testEnv struct {
	Handler *Handler
	Store   *store.Store
	Tokens  *auth.Tokens
	Mock    sqlmock.Sqlmock
	DB      *sql.DB
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.New(sqlx.NewDb(db, "pgx"))
	tokens := auth.NewTokens(config.JWTConfig{Secret: testSecret, TTLMinutes: 30})

	h, err := NewHandler(s, tokens)
	require.NoError(t, err)

	return &testEnv{Handler: h, Store: s, Tokens: tokens, Mock: mock, DB: db}
}

// newTestRouter wires the same routes as cmd/api.
func (e *testEnv) newTestRouter() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Session(e.Store))

	r.Get("/", e.Handler.Web.Home)
	r.Get("/signup", e.Handler.Web.SignupPage)
	r.Post("/signup", e.Handler.Web.Signup)
	r.Get("/login", e.Handler.Web.LoginPage)
	r.Post("/login", e.Handler.Web.Login)
	r.Get("/signout", e.Handler.Web.Signout)
	r.Get("/account", e.Handler.Web.Account)

	r.Route("/api/admin", func(r chi.Router) {
		r.Post("/users", e.Handler.Users.CreateUser)
		r.Get("/users", e.Handler.Users.ListUsers)
		r.Get("/users/{id}", e.Handler.Users.GetUser)
		r.Patch("/users/{id}", e.Handler.Users.UpdateUser)
		r.Delete("/users/{id}", e.Handler.Users.DeleteUser)

		r.Post("/courses", e.Handler.Courses.CreateCourse)
		r.Get("/courses", e.Handler.Courses.ListCourses)
		r.Get("/courses/{id}", e.Handler.Courses.GetCourse)
		r.Patch("/courses/{id}", e.Handler.Courses.UpdateCourse)
		r.Delete("/courses/{id}", e.Handler.Courses.DeleteCourse)
	})

	r.Route("/admin", func(r chi.Router) {
		r.Get("/login", e.Handler.Admin.LoginPage)
		r.Post("/login", e.Handler.Admin.Login)
		r.Get("/logout", e.Handler.Admin.Logout)

		r.Group(func(r chi.Router) {
			r.Use(middleware.RequireAdmin(e.Tokens, e.Store))

			r.Get("/", e.Handler.Admin.Dashboard)

			r.Get("/users", e.Handler.Admin.UsersList)
			r.Get("/users/new", e.Handler.Admin.UserNewForm)
			r.Post("/users/new", e.Handler.Admin.UserCreate)
			r.Get("/users/{id}", e.Handler.Admin.UserDetail)
			r.Get("/users/{id}/edit", e.Handler.Admin.UserEditForm)
			r.Post("/users/{id}/edit", e.Handler.Admin.UserUpdate)
			r.Post("/users/{id}/delete", e.Handler.Admin.UserDelete)

			r.Get("/courses", e.Handler.Admin.CoursesList)
			r.Get("/courses/new", e.Handler.Admin.CourseNewForm)
			r.Post("/courses/new", e.Handler.Admin.CourseCreate)
			r.Get("/courses/{id}", e.Handler.Admin.CourseDetail)
			r.Get("/courses/{id}/edit", e.Handler.Admin.CourseEditForm)
			r.Post("/courses/{id}/edit", e.Handler.Admin.CourseUpdate)
			r.Post("/courses/{id}/delete", e.Handler.Admin.CourseDelete)

			r.Get("/enrollments", e.Handler.Admin.EnrollmentsList)
			r.Get("/enrollments/new", e.Handler.Admin.EnrollmentNewForm)
			r.Post("/enrollments/new", e.Handler.Admin.EnrollmentCreate)
			r.Get("/enrollments/{id}/edit", e.Handler.Admin.EnrollmentEditForm)
			r.Post("/enrollments/{id}/edit", e.Handler.Admin.EnrollmentUpdate)
			r.Post("/enrollments/{id}/delete", e.Handler.Admin.EnrollmentDelete)
		})
	})

	return r
}

func doRequest(t *testing.T, router http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&body))
	return body
}

func findCookie(rec *httptest.ResponseRecorder, name string) *http.Cookie {
	for _, c := range rec.Result().Cookies() {
		if c.Name == name {
			return c
		}
	}
	return nil
}

func q(query string) string {
	return regexp.QuoteMeta(query)
}

var userColumns = []string{"id", "username", "email", "hashed_password", "first_name", "last_name", "created_at", "updated_at"}

func userRow(id, username, email string, hash any) *sqlmock.Rows {
	now := time.Now().UTC()
	return sqlmock.NewRows(userColumns).
		AddRow(id, username, email, hash, nil, nil, now, now)
}

func existsRow(exists bool) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"exists"}).AddRow(exists)
}
