package app

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/httprate"
	"github.com/unrolled/secure"

	"github.com/quadra-imoveis/quadra/internal/observability"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// MiddlewareConfig aggregates dependencies shared by the middleware stack.
type MiddlewareConfig struct {
	Logger         *slog.Logger
	Config         *Config
	SecurityLogger *shared.SecurityLogger
	Metrics        *observability.Metrics
}

// MiddlewareStack installs the global middleware chain.
func MiddlewareStack(cfg MiddlewareConfig) []func(http.Handler) http.Handler {
	secureMiddleware := secure.New(secure.Options{
		FrameDeny:          true,
		ContentTypeNosniff: true,
		BrowserXssFilter:   true,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
		SSLRedirect:        cfg.Config != nil && cfg.Config.IsProduction(),
		SSLProxyHeaders:    map[string]string{"X-Forwarded-Proto": "https"},
	})

	timeout := 30 * time.Second
	if cfg.Config != nil && cfg.Config.AppRequestTimeout > 0 {
		timeout = cfg.Config.AppRequestTimeout
	}

	middlewares := []func(http.Handler) http.Handler{
		middleware.RealIP,
		middleware.RequestID,
		middleware.Recoverer,
		middleware.Timeout(timeout),
		func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				if err := secureMiddleware.Process(w, r); err != nil {
					cfg.Logger.Warn("secure headers blocked request", slog.Any("error", err))
					http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
					return
				}
				next.ServeHTTP(w, r)
			})
		},
		middleware.Compress(5),
		httprate.Limit(60, time.Minute, httprate.WithKeyFuncs(httprate.KeyByIP)),
	}
	if cfg.SecurityLogger != nil {
		middlewares = append(middlewares, securityLogMiddleware(cfg.SecurityLogger, cfg.Logger))
	}
	if cfg.Metrics != nil {
		middlewares = append(middlewares, func(next http.Handler) http.Handler {
			return cfg.Metrics.Middleware(next)
		})
	}
	return middlewares
}

// securityLogMiddleware records mutating requests for audit. Writes happen off
// the request path so a slow insert never delays the response.
func securityLogMiddleware(logs *shared.SecurityLogger, logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			// The auth gate runs below this middleware, so the identity never
			// reaches our copy of the request context. The recorder is a cell
			// the gate fills when it attaches the identity downstream.
			ctx, recorder := shared.ContextWithIdentityRecorder(r.Context())
			next.ServeHTTP(w, r.WithContext(ctx))

			if r.Method == http.MethodGet || r.Method == http.MethodHead || r.Method == http.MethodOptions {
				return
			}

			entry := shared.SecurityLogEntry{
				At:        time.Now().UTC(),
				IP:        r.RemoteAddr,
				Method:    r.Method,
				Path:      r.URL.Path,
				UserAgent: r.UserAgent(),
			}
			if identity, ok := recorder.Identity(); ok {
				entry.IdentityID.UUID = identity.ID
				entry.IdentityID.Valid = true
			}

			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := logs.Record(ctx, entry); err != nil {
					logger.Warn("security log write failed", slog.Any("error", err))
				}
			}()
		})
	}
}
