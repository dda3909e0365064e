// Package middlewares holds the route guards that need application state:
// token verification and the admin gate, which re-reads the user record
// instead of trusting anything carried in the token.
package middlewares

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/shashiranjanraj/vastra/app/models"
	"github.com/shashiranjanraj/vastra/app/repositories"
	"github.com/shashiranjanraj/vastra/pkg/apperr"
	"github.com/shashiranjanraj/vastra/pkg/auth"
	"github.com/shashiranjanraj/vastra/pkg/response"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

type ctxKey int

const userIDKey ctxKey = 0

// UserID returns the authenticated user's id from the request context.
// The second return is false on routes RequireSignIn does not guard.
func UserID(ctx context.Context) (primitive.ObjectID, bool) {
	id, ok := ctx.Value(userIDKey).(primitive.ObjectID)
	return id, ok
}

// UserFinder is the user lookup the admin gate needs.
type UserFinder interface {
	FindByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}

// RequireSignIn verifies the Authorization header and stashes the caller's
// id in the context. The header may carry the raw token or a "Bearer "
// prefixed one.
func RequireSignIn(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := strings.TrimSpace(r.Header.Get("Authorization"))
		raw = strings.TrimPrefix(raw, "Bearer ")
		if raw == "" {
			response.Fail(w, r, apperr.Authentication("Authorization token required"))
			return
		}

		claims, err := auth.ValidateToken(raw)
		if err != nil {
			response.Fail(w, r, apperr.Authentication("Invalid or expired token"))
			return
		}
		id, err := primitive.ObjectIDFromHex(claims.UserID)
		if err != nil {
			response.Fail(w, r, apperr.Authentication("Invalid or expired token"))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), userIDKey, id)))
	})
}

// IsAdmin loads the caller's record and rejects anyone without the admin
// role. Runs after RequireSignIn; the role check always hits the database so
// a demotion takes effect on the next request, not at token expiry.
func IsAdmin(users UserFinder) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id, ok := UserID(r.Context())
			if !ok {
				response.Fail(w, r, apperr.Authentication("Authorization token required"))
				return
			}

			user, err := users.FindByID(r.Context(), id)
			if err != nil {
				if errors.Is(err, repositories.ErrNotFound) {
					response.Fail(w, r, apperr.Authorization("UnAuthorized Access"))
					return
				}
				response.Fail(w, r, apperr.Internal("Error in admin middleware", err))
				return
			}
			if !user.IsAdmin {
				response.Fail(w, r, apperr.Authorization("UnAuthorized Access"))
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
