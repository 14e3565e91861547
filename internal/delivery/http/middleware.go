package http

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"

	"staffchat/internal/entity"
	"staffchat/internal/usecase"
)

type contextKey string

const StaffContextKey contextKey = "staff"

type AuthMiddleware struct {
	authUc usecase.AuthUsecase
}

func NewAuthMiddleware(authUc usecase.AuthUsecase) *AuthMiddleware {
	return &AuthMiddleware{
		authUc: authUc,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response := Response{Message: "authorization header required"}
			w.WriteHeader(http.StatusUnauthorized)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response := Response{Message: "invalid authorization header format"}
			w.WriteHeader(http.StatusUnauthorized)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
			return
		}

		token := parts[1]
		claims, err := m.authUc.ValidateAccessToken(token)
		if err != nil {
			response := Response{Message: "invalid or expired token"}
			w.WriteHeader(http.StatusUnauthorized)
			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode(response)
			return
		}

		// Add staff claims to context
		ctx := context.WithValue(r.Context(), StaffContextKey, claims)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// viewerFromContext returns the authenticated staff claims, or nil if
// the middleware did not run.
func viewerFromContext(ctx context.Context) *entity.TokenClaims {
	claims, ok := ctx.Value(StaffContextKey).(*entity.TokenClaims)
	if !ok {
		return nil
	}
	return claims
}
