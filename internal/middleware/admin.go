package middleware

import (
	"context"
	"net/http"

	"github.com/vaughan-dsouza/codeatlas/internal/auth"
	"github.com/vaughan-dsouza/codeatlas/internal/models"
	"github.com/vaughan-dsouza/codeatlas/internal/store"
)

// AdminCookie holds the signed admin session token.
const AdminCookie = "admin_session"

const adminKey ctxKey = "admin_user"

// RequireAdmin gates a route group behind the admin session. Requests
// without a valid token cookie are redirected to the admin login page.
func RequireAdmin(tokens *auth.Tokens, s *store.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			c, err := r.Cookie(AdminCookie)
			if err != nil || c.Value == "" {
				http.Redirect(w, r, "/admin/login", http.StatusFound)
				return
			}

			subject, ok := tokens.Verify(c.Value)
			if !ok {
				http.Redirect(w, r, "/admin/login", http.StatusFound)
				return
			}

			user, err := s.GetUser(r.Context(), subject)
			if err != nil {
				http.Redirect(w, r, "/admin/login", http.StatusFound)
				return
			}

			ctx := context.WithValue(r.Context(), adminKey, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// AdminUser returns the user behind the admin session, or nil.
func AdminUser(ctx context.Context) *models.User {
	user, _ := ctx.Value(adminKey).(*models.User)
	return user
}
