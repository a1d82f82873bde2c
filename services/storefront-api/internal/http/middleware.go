package httpx

import (
	"context"
	"net/http"
	"runtime/debug"
	"strings"
	"time"

	"gamezone/services/storefront-api/internal/http/handlers"
	"gamezone/shared/pkg/apperr"
	"gamezone/shared/pkg/metrics"
	"gamezone/shared/pkg/models"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// Authenticator resolves a bearer token to the current user.
type Authenticator interface {
	Authenticate(ctx context.Context, token string) (models.User, error)
}

func requestLog(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			sw := metrics.NewStatusWriter(w)
			start := time.Now()
			next.ServeHTTP(sw, r)

			ev := log.Info()
			if sw.Status >= http.StatusInternalServerError {
				ev = log.Error()
			}
			ev.Str("request_id", middleware.GetReqID(r.Context())).
				Str("method", r.Method).
				Str("route", metrics.RoutePattern(r)).
				Int("status", sw.Status).
				Dur("duration", time.Since(start)).
				Msg("http request")
		})
	}
}

// recoverer turns a panic into a logged SERVER_ERROR response.
func recoverer(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error().
					Interface("panic", rec).
					Str("request_id", middleware.GetReqID(r.Context())).
					Bytes("stack", debug.Stack()).
					Msg("handler panic")
				handlers.Error(w, log, apperr.New(apperr.TypeServer, ""))
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// cors lets the storefront SPA call the API from its own origin. "*" allows any.
func cors(allowed []string) func(http.Handler) http.Handler {
	anyOrigin := false
	set := make(map[string]bool, len(allowed))
	for _, o := range allowed {
		o = strings.TrimRight(strings.TrimSpace(o), "/")
		if o == "*" {
			anyOrigin = true
		}
		set[o] = true
	}

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			origin := r.Header.Get("Origin")
			if origin != "" && (anyOrigin || set[origin]) {
				h := w.Header()
				if set[origin] {
					h.Set("Access-Control-Allow-Origin", origin)
					h.Add("Vary", "Origin")
					h.Set("Access-Control-Allow-Credentials", "true")
				} else {
					// wildcard: sessions travel as bearer tokens, never credentials
					h.Set("Access-Control-Allow-Origin", "*")
				}
				if r.Method == http.MethodOptions && r.Header.Get("Access-Control-Request-Method") != "" {
					h.Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
					h.Set("Access-Control-Allow-Headers", "Authorization, Content-Type, X-Request-Id")
					h.Set("Access-Control-Max-Age", "600")
					w.WriteHeader(http.StatusNoContent)
					return
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}

func bearer(r *http.Request) string {
	h := r.Header.Get("Authorization")
	if len(h) > 7 && strings.EqualFold(h[:7], "bearer ") {
		return strings.TrimSpace(h[7:])
	}
	return ""
}

func requireAuth(auth Authenticator, log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := bearer(r)
			if token == "" {
				handlers.Error(w, log, apperr.New(apperr.TypeUnauthorized, ""))
				return
			}
			u, err := auth.Authenticate(r.Context(), token)
			if err != nil {
				handlers.Error(w, log, err)
				return
			}
			next.ServeHTTP(w, r.WithContext(handlers.WithUser(r.Context(), u)))
		})
	}
}

func requireAdmin(log zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			u, ok := handlers.UserFrom(r.Context())
			if !ok || !u.IsAdmin() {
				handlers.Error(w, log, apperr.New(apperr.TypeForbidden, ""))
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
