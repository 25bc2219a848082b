package middleware

import (
	"context"
	"net/http"
	"strings"

	"storefinder/services"
	"storefinder/utils/errors"

	"github.com/golang-jwt/jwt/v5"
)

// RequireAuth rejects requests without a valid, unrevoked session. On
// success the user id and session id are placed on the request context.
func RequireAuth(jwtSecret string, auth *services.AuthService) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
				WriteError(w, errors.ErrUnauthenticated)
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")

			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (any, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, errors.NewAPIError("INVALID_TOKEN", "Unexpected signing method", http.StatusUnauthorized)
				}
				return []byte(jwtSecret), nil
			})
			if err != nil || !token.Valid {
				WriteError(w, errors.ErrUnauthenticated)
				return
			}
			claims, ok := token.Claims.(jwt.MapClaims)
			if !ok {
				WriteError(w, errors.ErrUnauthenticated)
				return
			}
			userID, ok := claims["userID"].(string)
			if !ok {
				WriteError(w, errors.ErrUnauthenticated)
				return
			}
			sid, ok := claims["sid"].(string)
			if !ok {
				WriteError(w, errors.ErrUnauthenticated)
				return
			}

			// A signed token is not enough: the session must still exist,
			// otherwise logout would not revoke anything.
			if _, err := auth.Session(r.Context(), sid); err != nil {
				WriteError(w, errors.ErrUnauthenticated)
				return
			}

			ctx := context.WithValue(r.Context(), "userID", userID)
			ctx = context.WithValue(ctx, "sessionID", sid)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
