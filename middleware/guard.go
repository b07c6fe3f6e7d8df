// Package middleware provides net/http route guards backed by the
// session coordinator. Guards gate on the coordinator's confirmed state:
// an initializing coordinator is resolved with a blocking session check
// before any access decision, so a slow first load never redirects a
// logged-in user.
package middleware

import (
	"context"
	"net/http"

	ccsession "github.com/Harshit-Bhuju/CultureConnect-sub001"
)

type userContextKey struct{}

// UserFromContext returns the authenticated user installed by a guard.
func UserFromContext(ctx context.Context) (ccsession.User, bool) {
	user, ok := ctx.Value(userContextKey{}).(ccsession.User)
	return user, ok
}

// resolve runs the session check when the coordinator has not settled
// yet. Guards never decide on StateInitializing.
func resolve(r *http.Request, c *ccsession.Coordinator) ccsession.State {
	if c.State() == ccsession.StateInitializing {
		_, _ = c.CheckSession(r.Context())
	}
	return c.State()
}

// RequireUser admits authenticated requests of any role and installs the
// user in the request context.
func RequireUser(c *ccsession.Coordinator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if c == nil || resolve(r, c) != ccsession.StateAuthenticated {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			user, ok := c.CurrentUser()
			if !ok {
				http.Error(w, "unauthorized", http.StatusUnauthorized)
				return
			}
			ctx := context.WithValue(r.Context(), userContextKey{}, user)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// RequireRole admits authenticated requests whose role matches.
func RequireRole(c *ccsession.Coordinator, role ccsession.Role) func(http.Handler) http.Handler {
	requireUser := RequireUser(c)
	return func(next http.Handler) http.Handler {
		return requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || user.Role != role {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// RequireSeller admits accounts that completed seller registration.
func RequireSeller(c *ccsession.Coordinator) func(http.Handler) http.Handler {
	requireUser := RequireUser(c)
	return func(next http.Handler) http.Handler {
		return requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !user.IsSeller() {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}

// RequireTeacher admits accounts that completed teacher registration.
func RequireTeacher(c *ccsession.Coordinator) func(http.Handler) http.Handler {
	requireUser := RequireUser(c)
	return func(next http.Handler) http.Handler {
		return requireUser(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			user, ok := UserFromContext(r.Context())
			if !ok || !user.IsTeacher() {
				http.Error(w, "forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		}))
	}
}
