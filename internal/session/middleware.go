package session

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/bindassticks/storefront/pkg/logger"
	"github.com/bindassticks/storefront/pkg/web"
	"github.com/google/uuid"
)

// CookieOptions describes the session cookie.
type CookieOptions struct {
	Name     string
	Secure   bool
	SameSite http.SameSite
}

func (o CookieOptions) sessionID(r *http.Request) string {
	c, err := r.Cookie(o.Name)
	if err != nil {
		return ""
	}
	parsed, err := uuid.Parse(c.Value)
	if err != nil {
		return ""
	}
	return parsed.String()
}

// Middleware attaches the shopper's session to the request context. A missing
// or malformed cookie starts a new session and sets a fresh cookie. Handlers
// that change the session call Manager.Save before writing their response.
// The session stays locked until the handler returns, so concurrent requests
// carrying the same cookie run one after another.
func Middleware(m *Manager, opts CookieOptions, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := opts.sessionID(r)
			if id == "" {
				id = uuid.NewString()
			}
			ctx := logger.AppendCtx(r.Context(), slog.String("session_id", id))

			unlock, err := m.Lock(ctx, id)
			if err != nil {
				log.WarnContext(ctx, "Request ended while waiting for session", "error", err)
				web.RespondError(w, log, http.StatusServiceUnavailable, "Session busy")
				return
			}
			defer unlock()

			s, err := m.Load(ctx, id)
			if err != nil {
				log.ErrorContext(ctx, "Failed to load session", "error", err)
				web.RespondError(w, log, http.StatusServiceUnavailable, "Session storage unavailable")
				return
			}

			http.SetCookie(w, &http.Cookie{
				Name:     opts.Name,
				Value:    id,
				Path:     "/",
				MaxAge:   int(m.TTL().Seconds()),
				HttpOnly: true,
				Secure:   opts.Secure,
				SameSite: opts.SameSite,
			})
			next.ServeHTTP(w, r.WithContext(NewContext(ctx, s)))
		})
	}
}

// DestroyHandler ends the shopper's session: the stored cart and favorites are
// removed and the cookie is expired. It answers 204 even when no session exists.
func DestroyHandler(m *Manager, opts CookieOptions, log *slog.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := opts.sessionID(r)
		if id != "" {
			ctx := logger.AppendCtx(r.Context(), slog.String("session_id", id))
			unlock, err := m.Lock(ctx, id)
			if err != nil {
				web.RespondError(w, log, http.StatusServiceUnavailable, "Session busy")
				return
			}
			err = m.Destroy(ctx, id)
			unlock()
			if err != nil && !errors.Is(err, ErrSessionNotFound) {
				log.ErrorContext(ctx, "Failed to destroy session", "error", err)
				web.RespondError(w, log, http.StatusServiceUnavailable, "Session storage unavailable")
				return
			}
			log.InfoContext(ctx, "Session destroyed")
		}

		http.SetCookie(w, &http.Cookie{
			Name:     opts.Name,
			Value:    "",
			Path:     "/",
			MaxAge:   -1,
			HttpOnly: true,
			Secure:   opts.Secure,
			SameSite: opts.SameSite,
		})
		w.WriteHeader(http.StatusNoContent)
	}
}
