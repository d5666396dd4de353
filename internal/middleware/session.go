package middleware

import (
	"context"
	"net/http"

	"github.com/vaughan-dsouza/codeatlas/internal/models"
	"github.com/vaughan-dsouza/codeatlas/internal/store"
)

// SessionCookie holds the user's primary key. Bearer-by-possession: the value
// is not signed or encrypted.
const SessionCookie = "user_id"

type ctxKey string

const userKey ctxKey = "current_user"

// Session resolves the identity cookie into a user record before handlers
// run. Any failure leaves the request anonymous rather than failing it.
func Session(s *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			var user *models.User

			if c, err := r.Cookie(SessionCookie); err == nil && c.Value != "" {
				if u, err := s.GetUser(r.Context(), c.Value); err == nil {
					user = u
				}
			}

			ctx := context.WithValue(r.Context(), userKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// CurrentUser returns the user resolved by Session, or nil for anonymous
// requests.
func CurrentUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(userKey).(*models.User)
	return user
}
