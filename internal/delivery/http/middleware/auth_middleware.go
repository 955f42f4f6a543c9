package middleware

import (
	"context"
	"net/http"
	"strings"

	"healthcare-admin-console/internal/domain/entity"
	"healthcare-admin-console/pkg/jwt"
	"healthcare-admin-console/pkg/response"
)

type contextKey string

const (
	ScopeKey contextKey = "scope"
)

type AuthMiddleware struct {
	jwtService *jwt.JWTService
}

func NewAuthMiddleware(jwtService *jwt.JWTService) *AuthMiddleware {
	return &AuthMiddleware{
		jwtService: jwtService,
	}
}

func (m *AuthMiddleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		if authHeader == "" {
			response.Unauthorized(w, "Authorization header is required")
			return
		}

		// Extract token from "Bearer <token>"
		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			response.Unauthorized(w, "Invalid authorization header format")
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			response.Unauthorized(w, "Invalid or expired token")
			return
		}

		ctx := WithScope(r.Context(), ScopeFromClaims(claims))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// ScopeFromClaims maps token claims to the scope screens load data for
func ScopeFromClaims(claims *jwt.Claims) entity.Scope {
	return entity.Scope{
		ActorID:      claims.UserID,
		ActorName:    claims.Name,
		Role:         claims.Role,
		DiagnosticID: claims.DiagnosticID,
		DoctorID:     claims.DoctorID,
		CompanyID:    claims.CompanyID,
	}
}

// WithScope stores scope in ctx
func WithScope(ctx context.Context, scope entity.Scope) context.Context {
	return context.WithValue(ctx, ScopeKey, scope)
}

// GetScopeFromContext extracts the authenticated scope from context
func GetScopeFromContext(ctx context.Context) (entity.Scope, bool) {
	scope, ok := ctx.Value(ScopeKey).(entity.Scope)
	return scope, ok
}
