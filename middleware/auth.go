package middleware

import (
	"context"
	"net/http"
	"strings"

	"licensepanel/logger"
	"licensepanel/models"
	"licensepanel/utils"
)

// ClaimsFromContext returns the token claims stored by Auth, or nil.
func ClaimsFromContext(ctx context.Context) *utils.Claims {
	claims, _ := ctx.Value(claimsKey).(*utils.Claims)
	return claims
}

// UserFromContext returns the authenticated subject, used as the actor of
// activity log entries.
func UserFromContext(ctx context.Context) string {
	if claims := ClaimsFromContext(ctx); claims != nil {
		return claims.Subject
	}
	return ""
}

// WithClaims stores claims on ctx the way Auth does.
func WithClaims(ctx context.Context, claims *utils.Claims) context.Context {
	return context.WithValue(ctx, claimsKey, claims)
}

// Auth JWT 인증 미들웨어. issuer가 nil이면 인증 없이 로컬 관리자로 통과 (auth.disabled)
func Auth(issuer *utils.TokenIssuer) func(http.HandlerFunc) http.HandlerFunc {
	return func(next http.HandlerFunc) http.HandlerFunc {
		return func(w http.ResponseWriter, r *http.Request) {
			if issuer == nil {
				local := &utils.Claims{Role: models.RoleAdmin}
				local.Subject = "local"
				next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), local)))
				return
			}

			requestID := RequestIDFromContext(r.Context())

			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				logger.WithFields(map[string]interface{}{
					"request_id": requestID,
					"ip":         getClientIP(r),
				}).Warn("Missing authorization header")
				unauthorized(w, "Authorization header required")
				return
			}

			// Bearer 토큰 추출
			parts := strings.SplitN(authHeader, " ", 2)
			if len(parts) != 2 || !strings.EqualFold(parts[0], "Bearer") {
				logger.WithFields(map[string]interface{}{
					"request_id": requestID,
					"ip":         getClientIP(r),
				}).Warn("Invalid authorization header format")
				unauthorized(w, "Invalid authorization header format")
				return
			}

			claims, err := issuer.ValidateToken(strings.TrimSpace(parts[1]))
			if err != nil {
				logger.WithFields(map[string]interface{}{
					"request_id": requestID,
					"ip":         getClientIP(r),
					"error":      err.Error(),
				}).Warn("Invalid or expired token")
				unauthorized(w, "Invalid or expired token")
				return
			}

			logger.WithFields(map[string]interface{}{
				"request_id": requestID,
				"subject":    claims.Subject,
				"role":       claims.Role,
			}).Debug("Admin authenticated")

			next.ServeHTTP(w, r.WithContext(WithClaims(r.Context(), claims)))
		}
	}
}
