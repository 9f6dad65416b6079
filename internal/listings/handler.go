package listings

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

// OwnershipTag identifies listings in the authorization registry.
const OwnershipTag = "listing"

// FeaturePermission must be granted explicitly; featuring is not implied by
// any role.
const FeaturePermission = "listings.feature"

// RegisterOwnership teaches the authorization registry how to load listings
// and who may act on them besides the owning corretor.
func RegisterOwnership(registry *authz.Registry, repo Repository) {
	registry.Register(OwnershipTag, authz.ResourceSpec{
		Load: func(ctx context.Context, id string) (any, error) {
			listingID, err := uuid.Parse(id)
			if err != nil {
				return nil, shared.ErrNotFound
			}
			return repo.FindByID(ctx, listingID)
		},
		Owner: func(resource any) uuid.UUID {
			return resource.(*Listing).OwnerID
		},
		Elevated: []shared.Role{shared.RoleAdmin, shared.RoleCorretor},
	})
}

// Handler manages listing endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	requireAuth func(http.Handler) http.Handler
	policy      *authz.Policy
	validate    *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, requireAuth func(http.Handler) http.Handler, policy *authz.Policy) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		requireAuth: requireAuth,
		policy:      policy,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers listing routes.
func (h *Handler) MountRoutes(r chi.Router) {
	// Public catalogue
	r.Get("/", h.list)
	r.Get("/featured", h.featured)
	r.Get("/slug/{slug}", h.getBySlug)

	// Corretor routes
	r.Group(func(r chi.Router) {
		r.Use(h.requireAuth)
		r.Use(h.policy.RequireAccessLevel(2))
		r.Post("/", h.create)

		r.Group(func(r chi.Router) {
			r.Use(h.policy.RequireOwnership(OwnershipTag))
			r.Put("/{id}", h.update)
			r.Delete("/{id}", h.remove)
			r.Get("/{id}/price-history", h.priceHistory)
		})

		r.Group(func(r chi.Router) {
			r.Use(h.policy.RequireAllPermissions(FeaturePermission))
			r.Put("/{id}/feature", h.setFeatured)
		})
	})
}

type setFeaturedRequest struct {
	Featured *bool `json:"featured" validate:"required"`
}

func (h *Handler) setFeatured(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	var req setFeaturedRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	if err := h.service.SetFeatured(r.Context(), id, *req.Featured); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "destaque atualizado")
}

type addressPayload struct {
	Street   string `json:"street" validate:"required"`
	Number   string `json:"number" validate:"required"`
	District string `json:"district" validate:"required"`
	City     string `json:"city" validate:"required"`
	State    string `json:"state" validate:"required,len=2"`
	ZipCode  string `json:"zipCode" validate:"required,min=8,max=9"`
}

func (a addressPayload) toAddress() Address {
	return Address{
		Street:   a.Street,
		Number:   a.Number,
		District: a.District,
		City:     a.City,
		State:    a.State,
		ZipCode:  a.ZipCode,
	}
}

type createRequest struct {
	Title       string         `json:"title" validate:"required,min=5,max=180"`
	Description string         `json:"description" validate:"required,min=10"`
	Type        string         `json:"type" validate:"required"`
	Price       int64          `json:"price" validate:"required,gt=0"`
	Bedrooms    int            `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int            `json:"bathrooms" validate:"gte=0"`
	Area        float64        `json:"area" validate:"gt=0"`
	Featured    bool           `json:"featured"`
	Address     addressPayload `json:"address" validate:"required"`
	Features    []string       `json:"features" validate:"dive,min=2,max=80"`
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}

	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	listing, err := h.service.Create(r.Context(), identity, CreateInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Price:       req.Price,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Area:        req.Area,
		Featured:    req.Featured,
		Address:     req.Address.toAddress(),
		Features:    req.Features,
	})
	if err != nil {
		h.logger.Warn("create listing", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, listing)
}

type updateRequest struct {
	Title       string         `json:"title" validate:"required,min=5,max=180"`
	Description string         `json:"description" validate:"required,min=10"`
	Type        string         `json:"type" validate:"required"`
	Status      string         `json:"status" validate:"required"`
	Price       int64          `json:"price" validate:"required,gt=0"`
	Bedrooms    int            `json:"bedrooms" validate:"gte=0"`
	Bathrooms   int            `json:"bathrooms" validate:"gte=0"`
	Area        float64        `json:"area" validate:"gt=0"`
	Featured    bool           `json:"featured"`
	Address     addressPayload `json:"address" validate:"required"`
	Features    []string       `json:"features" validate:"dive,min=2,max=80"`
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	resource, ok := authz.ResourceFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	current := resource.(*Listing)

	var req updateRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	listing, err := h.service.Update(r.Context(), current, UpdateInput{
		Title:       req.Title,
		Description: req.Description,
		Type:        req.Type,
		Status:      req.Status,
		Price:       req.Price,
		Bedrooms:    req.Bedrooms,
		Bathrooms:   req.Bathrooms,
		Area:        req.Area,
		Featured:    req.Featured,
		Address:     req.Address.toAddress(),
		Features:    req.Features,
	})
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listing)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	resource, ok := authz.ResourceFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	listing := resource.(*Listing)

	if err := h.service.Remove(r.Context(), listing.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "imóvel removido")
}

func (h *Handler) priceHistory(w http.ResponseWriter, r *http.Request) {
	resource, ok := authz.ResourceFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	listing := resource.(*Listing)

	history, err := h.service.PriceHistory(r.Context(), listing.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, history)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	page, _ := strconv.Atoi(query.Get("page"))
	limit, _ := strconv.Atoi(query.Get("limit"))
	minPrice, _ := strconv.ParseInt(query.Get("minPrice"), 10, 64)
	maxPrice, _ := strconv.ParseInt(query.Get("maxPrice"), 10, 64)
	bedrooms, _ := strconv.Atoi(query.Get("bedrooms"))

	result, err := h.service.List(r.Context(), ListFilter{
		City:     query.Get("city"),
		Type:     query.Get("type"),
		Status:   query.Get("status"),
		MinPrice: minPrice,
		MaxPrice: maxPrice,
		Bedrooms: bedrooms,
		Page:     page,
		Limit:    limit,
	})
	if err != nil {
		h.logger.Error("list listings", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, result)
}

func (h *Handler) featured(w http.ResponseWriter, r *http.Request) {
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	listings, err := h.service.Featured(r.Context(), limit)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listings)
}

func (h *Handler) getBySlug(w http.ResponseWriter, r *http.Request) {
	listing, err := h.service.GetBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, listing)
}
