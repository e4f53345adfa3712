package auth

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/bindassticks/storefront/pkg/logger"
	"github.com/bindassticks/storefront/pkg/web"
)

type adminKey struct{}

// Admin identifies the caller of an admin route.
type Admin struct {
	Subject string
	Email   string
}

// AdminFromContext returns the admin stored by RequireAdmin.
func AdminFromContext(ctx context.Context) (Admin, bool) {
	a, ok := ctx.Value(adminKey{}).(Admin)
	return a, ok
}

// RequireAdmin verifies the bearer token and requires its email claim to be one
// of allowedEmails. An empty list admits nobody.
func RequireAdmin(verifier Verifier, allowedEmails []string, log *slog.Logger) func(http.Handler) http.Handler {
	allowed := make(map[string]struct{}, len(allowedEmails))
	for _, e := range allowedEmails {
		if e = strings.ToLower(strings.TrimSpace(e)); e != "" {
			allowed[e] = struct{}{}
		}
	}
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			authHeader := r.Header.Get("Authorization")
			if authHeader == "" {
				web.RespondError(w, log, http.StatusUnauthorized, "Authorization header is required")
				return
			}
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			if tokenString == authHeader {
				web.RespondError(w, log, http.StatusUnauthorized, "Bearer token is required")
				return
			}

			token, err := verifier.Verify(r.Context(), tokenString)
			if err != nil {
				log.WarnContext(r.Context(), "Admin token rejected", "error", err)
				web.RespondError(w, log, http.StatusUnauthorized, "Invalid token")
				return
			}
			subject, ok := token.Subject()
			if !ok {
				web.RespondError(w, log, http.StatusUnauthorized, "no claim `sub`")
				return
			}
			var email string
			if err := token.Get("email", &email); err != nil {
				log.WarnContext(r.Context(), "Admin token has no email claim", "sub", subject, "error", err)
				web.RespondError(w, log, http.StatusForbidden, "Access denied")
				return
			}
			if _, ok := allowed[strings.ToLower(email)]; !ok {
				log.WarnContext(r.Context(), "Admin access denied", "sub", subject, "email", email)
				web.RespondError(w, log, http.StatusForbidden, "Access denied")
				return
			}

			ctx := logger.AppendCtx(r.Context(), slog.String("admin", email))
			ctx = context.WithValue(ctx, adminKey{}, Admin{Subject: subject, Email: email})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
