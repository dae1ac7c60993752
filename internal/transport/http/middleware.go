package http

import (
	"context"
	"net/http"
	"strings"

	"github.com/chatgrid/chatgrid/internal/credential"
	"github.com/chatgrid/chatgrid/internal/domain/user"
)

type contextKey int

const userIDContextKey contextKey = iota

// RequireBearerAuth validates the Authorization: Bearer <token> header and
// stashes the authenticated user id in the request context.
func RequireBearerAuth(jwt *credential.JWTHandler) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			header := r.Header.Get("Authorization")
			token, ok := strings.CutPrefix(header, "Bearer ")
			if !ok || token == "" {
				writeError(w, http.StatusUnauthorized, "missing bearer token")
				return
			}

			claims, err := jwt.Decode(token)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			userID, err := user.ParseID(claims.Subject)
			if err != nil {
				writeError(w, http.StatusUnauthorized, "token subject is not a valid user id")
				return
			}

			ctx := context.WithValue(r.Context(), userIDContextKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext retrieves the user id RequireBearerAuth attached.
func UserIDFromContext(ctx context.Context) (user.ID, bool) {
	id, ok := ctx.Value(userIDContextKey).(user.ID)
	return id, ok
}
