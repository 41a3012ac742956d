package auth

import (
	"log/slog"
	"net/http"
	"strings"

	"orghub/pkg/requestcontext"
)

// JWTValidator defines the interface for validating bearer tokens.
type JWTValidator interface {
	ValidateToken(tokenString string) (*JWTClaims, error)
}

// JWTClaims represents the claims the middleware expects from the validator.
type JWTClaims struct {
	AdminEmail       string
	OrganizationName string
}

func writeUnauthorized(w http.ResponseWriter, description string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	_, _ = w.Write([]byte(`{"error":"unauthorized","error_description":"` + description + `"}`))
}

// RequireAuth validates the bearer token on every request and injects the
// admin identity and its organization binding into the request context.
// Requests with a missing, malformed, or expired token are rejected, as are
// tokens missing either required claim.
func RequireAuth(validator JWTValidator, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := r.Context()
			requestID := requestcontext.RequestID(ctx)

			authHeader := r.Header.Get("Authorization")
			const bearerPrefix = "Bearer "
			token, ok := strings.CutPrefix(authHeader, bearerPrefix)
			if !ok {
				logger.WarnContext(ctx, "unauthorized access - missing token",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Missing or invalid Authorization header")
				return
			}

			claims, err := validator.ValidateToken(token)
			if err != nil {
				logger.WarnContext(ctx, "unauthorized access - invalid token",
					"error", err,
					"request_id", requestID,
				)
				writeUnauthorized(w, "Invalid or expired token")
				return
			}

			if claims.AdminEmail == "" || claims.OrganizationName == "" {
				logger.WarnContext(ctx, "unauthorized access - token missing required claims",
					"request_id", requestID,
				)
				writeUnauthorized(w, "Token missing required claims")
				return
			}

			ctx = requestcontext.WithAdminEmail(ctx, claims.AdminEmail)
			ctx = requestcontext.WithOrganizationName(ctx, claims.OrganizationName)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
