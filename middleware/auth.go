package middleware

import (
	"context"
	"net/http"
	"strings"

	"ecofinds/utils"

	"github.com/gorilla/mux"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Key type for context
type contextKey string

const UserContextKey = contextKey("user")

// TokenParser verifies bearer tokens.
type TokenParser interface {
	ParseJWT(tokenStr string) (*utils.Claims, error)
}

// AuthMiddleware verifies JWT tokens and attaches the claims to the context
func AuthMiddleware(tokens TokenParser) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				utils.WriteError(w, http.StatusUnauthorized, "Not authorized, no token")
				return
			}

			parts := strings.Fields(authHeader)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				utils.WriteError(w, http.StatusUnauthorized, "Invalid Authorization header format")
				return
			}

			claims, err := tokens.ParseJWT(parts[1])
			if err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}
			if _, err := claims.ObjectID(); err != nil {
				utils.WriteError(w, http.StatusUnauthorized, "Not authorized, token failed")
				return
			}

			ctx := context.WithValue(r.Context(), UserContextKey, claims)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// ClaimsFrom returns the claims attached by AuthMiddleware.
func ClaimsFrom(ctx context.Context) (*utils.Claims, bool) {
	claims, ok := ctx.Value(UserContextKey).(*utils.Claims)
	return claims, ok
}

// UserID returns the authenticated user's id.
func UserID(r *http.Request) (primitive.ObjectID, bool) {
	claims, ok := ClaimsFrom(r.Context())
	if !ok {
		return primitive.NilObjectID, false
	}
	id, err := claims.ObjectID()
	if err != nil {
		return primitive.NilObjectID, false
	}
	return id, true
}
