package articles

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/authz"
	"github.com/quadra-imoveis/quadra/internal/platform/httpx"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// OwnershipTag identifies articles in the authorization registry. Corretores
// are not elevated here: outside administration, authorship is the only path
// to mutation.
const OwnershipTag = "article"

// RegisterOwnership teaches the authorization registry how to load articles.
func RegisterOwnership(registry *authz.Registry, repo Repository) {
	registry.Register(OwnershipTag, authz.ResourceSpec{
		Load: func(ctx context.Context, id string) (any, error) {
			articleID, err := uuid.Parse(id)
			if err != nil {
				return nil, shared.ErrNotFound
			}
			return repo.FindByID(ctx, articleID)
		},
		Owner: func(resource any) uuid.UUID {
			return resource.(*Article).AuthorID
		},
		Elevated: []shared.Role{shared.RoleAdmin},
	})
}

// Handler manages article endpoints.
type Handler struct {
	logger       *slog.Logger
	service      *Service
	requireAuth  func(http.Handler) http.Handler
	optionalAuth func(http.Handler) http.Handler
	policy       *authz.Policy
	validate     *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(
	logger *slog.Logger,
	service *Service,
	requireAuth func(http.Handler) http.Handler,
	optionalAuth func(http.Handler) http.Handler,
	policy *authz.Policy,
) *Handler {
	return &Handler{
		logger:       logger,
		service:      service,
		requireAuth:  requireAuth,
		optionalAuth: optionalAuth,
		policy:       policy,
		validate:     validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers article routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listPublished)
	r.With(h.optionalAuth).Get("/slug/{slug}", h.getBySlug)

	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Use(h.policy.RequireAccessLevel(2))
		r.Post("/", h.create)
		r.Get("/mine", h.listMine)

		r.Group(func(r chi.Router) {
			r.Use(h.policy.RequireOwnership(OwnershipTag))
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.remove)
		})
	})
}

type articleRequest struct {
	Title     string `json:"title" validate:"required,min=5,max=180"`
	Content   string `json:"content" validate:"required,min=20"`
	Published bool   `json:"published"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}

	var req articleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	article, err := h.service.Create(r.Context(), identity, req.Title, req.Content, req.Published)
	if err != nil {
		h.logger.Warn("create article", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, article)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	resource, ok := authz.ResourceFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	current := resource.(*Article)

	var req articleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	article, err := h.service.Update(r.Context(), current, req.Title, req.Content, req.Published)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, article)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	resource, ok := authz.ResourceFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	article := resource.(*Article)

	if err := h.service.Delete(r.Context(), article.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "artigo removido")
}

func (h *Handler) listPublished(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))

	result, err := h.service.ListPublished(r.Context(), page, limit)
	if err != nil {
		h.logger.Error("list articles", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	articles, err := h.service.ListMine(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, articles)
}

func (h *Handler) getBySlug(w http.ResponseWriter, r *http.Request) {
	reader, _ := shared.IdentityFromContext(r.Context())
	article, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"), reader)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, article)
}
