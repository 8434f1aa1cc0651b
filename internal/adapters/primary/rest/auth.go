package rest

import (
	"context"
	"net/http"
	"strings"
)

// TokenValidator vérifie un token et renvoie l'ID de l'utilisateur
type TokenValidator interface {
	Validate(token string) (string, error)
}

// Clé privée pour le contexte (évite les collisions)
type contextKey struct{ name string }

var userCtxKey = &contextKey{"user_id"}

// UserFromContext renvoie l'utilisateur authentifié, s'il y en a un
func UserFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(userCtxKey).(string)
	return id, ok && id != ""
}

// RequireAuth lit "Authorization: Bearer <token>" (ou l'ancien header
// "Authentication: <token>") et injecte l'UserID dans le contexte.
func RequireAuth(validator TokenValidator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if validator == nil {
				writeError(w, http.StatusUnauthorized, "authentication is not configured")
				return
			}

			token := bearerToken(r)
			if token == "" {
				writeError(w, http.StatusUnauthorized, "missing token")
				return
			}

			userID, err := validator.Validate(token)
			if err != nil || userID == "" {
				writeError(w, http.StatusUnauthorized, "invalid or expired token")
				return
			}

			ctx := context.WithValue(r.Context(), userCtxKey, userID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func bearerToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if strings.HasPrefix(h, "Bearer ") {
			return strings.TrimSpace(strings.TrimPrefix(h, "Bearer "))
		}
		return ""
	}
	return strings.TrimSpace(r.Header.Get("Authentication"))
}
