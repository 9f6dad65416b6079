package app

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"github.com/quadra-imoveis/quadra/internal/admin"
	"github.com/quadra-imoveis/quadra/internal/articles"
	"github.com/quadra-imoveis/quadra/internal/auth"
	"github.com/quadra-imoveis/quadra/internal/authz"
	"github.com/quadra-imoveis/quadra/internal/favorites"
	"github.com/quadra-imoveis/quadra/internal/finance"
	"github.com/quadra-imoveis/quadra/internal/listings"
	"github.com/quadra-imoveis/quadra/internal/observability"
	"github.com/quadra-imoveis/quadra/internal/shared"
	"github.com/quadra-imoveis/quadra/internal/users"
	"github.com/quadra-imoveis/quadra/internal/visits"
	"github.com/quadra-imoveis/quadra/jobs"
)

// RouterParams groups dependencies for building the HTTP router.
type RouterParams struct {
	Logger           *slog.Logger
	Config           *Config
	SecurityLogger   *shared.SecurityLogger
	AuthHandler      *auth.Handler
	AuthGate         *auth.Gate
	Policy           *authz.Policy
	UsersHandler     *users.Handler
	ListingsHandler  *listings.Handler
	VisitsHandler    *visits.Handler
	ArticlesHandler  *articles.Handler
	FavoritesHandler *favorites.Handler
	FinanceHandler   *finance.Handler
	AdminHandler     *admin.Handler
	JobHandler       *jobs.Handler
	Metrics          *observability.Metrics
}

// NewRouter constructs the chi.Router with platform defaults.
func NewRouter(params RouterParams) http.Handler {
	r := chi.NewRouter()

	for _, mw := range MiddlewareStack(MiddlewareConfig{
		Logger:         params.Logger,
		Config:         params.Config,
		SecurityLogger: params.SecurityLogger,
		Metrics:        params.Metrics,
	}) {
		r.Use(mw)
	}

	r.Use(chimw.Logger)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/auth", params.AuthHandler.MountRoutes)

	if params.UsersHandler != nil {
		r.Route("/users", func(r chi.Router) {
			r.Use(params.AuthGate.Require)
			r.Use(params.Policy.RequireAccessLevel(3))
			params.UsersHandler.MountRoutes(r)
		})
	}
	if params.ListingsHandler != nil {
		r.Route("/listings", params.ListingsHandler.MountRoutes)
	}
	if params.VisitsHandler != nil {
		r.Route("/visits", params.VisitsHandler.MountRoutes)
	}
	if params.ArticlesHandler != nil {
		r.Route("/articles", params.ArticlesHandler.MountRoutes)
	}
	if params.FavoritesHandler != nil {
		r.Route("/favorites", params.FavoritesHandler.MountRoutes)
	}
	if params.FinanceHandler != nil {
		r.Route("/finance", params.FinanceHandler.MountRoutes)
	}
	if params.AdminHandler != nil {
		r.Route("/admin", func(r chi.Router) {
			r.Use(params.AuthGate.Require)
			r.Use(params.Policy.RequireAccessLevel(3))
			params.AdminHandler.MountRoutes(r)
		})
	}
	if params.JobHandler != nil {
		r.Route("/jobs", params.JobHandler.MountRoutes)
	}
	if params.Metrics != nil {
		r.Method(http.MethodGet, "/metrics", params.Metrics.Handler())
	}

	return r
}
