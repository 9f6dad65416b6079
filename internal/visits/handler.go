package visits

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/authz"
	"github.com/quadra-imoveis/quadra/internal/platform/httpx"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// OwnershipTag identifies visits in the authorization registry.
const OwnershipTag = "visit"

// RegisterOwnership teaches the authorization registry how to load visits.
// Corretores manage visits on their listings, so the role is elevated here.
func RegisterOwnership(registry *authz.Registry, repo Repository) {
	registry.Register(OwnershipTag, authz.ResourceSpec{
		Load: func(ctx context.Context, id string) (any, error) {
			visitID, err := uuid.Parse(id)
			if err != nil {
				return nil, shared.ErrNotFound
			}
			return repo.FindByID(ctx, visitID)
		},
		Owner: func(resource any) uuid.UUID {
			return resource.(*Visit).VisitorID
		},
		Elevated: []shared.Role{shared.RoleAdmin, shared.RoleCorretor},
	})
}

// SchedulesPerDay caps how many visits one account may book per day.
const SchedulesPerDay = 3

// Visiting hours for confirm and cancel actions, local time.
const (
	windowStartHour = 8
	windowEndHour   = 20
)

// Handler manages visit endpoints.
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

// MountRoutes registers visit routes. Everything requires a session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.requireAuth)

	r.Group(func(r chi.Router) {
		r.Use(h.policy.RequireUsageUnderLimit(SchedulesPerDay))
		r.Post("/", h.schedule)
	})

	r.Get("/mine", h.listMine)

	r.Group(func(r chi.Router) {
		r.Use(h.policy.RequireAccessLevel(2))
		r.Get("/listing/{id}", h.listForListing)
	})

	r.Group(func(r chi.Router) {
		r.Use(h.policy.RequireTimeWindow(windowStartHour, windowEndHour))
		r.Use(h.policy.RequireOwnership(OwnershipTag))
		r.Put("/{id}/confirm", h.confirm)
		r.Put("/{id}/cancel", h.cancel)
		r.Put("/{id}/complete", h.complete)
	})
}

type scheduleRequest struct {
	ListingID   string    `json:"listingId" validate:"required,uuid4"`
	ScheduledAt time.Time `json:"scheduledAt" validate:"required"`
	Notes       string    `json:"notes" validate:"omitempty,max=500"`
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}

	var req scheduleRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	listingID, err := uuid.Parse(req.ListingID)
	if err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	visit, err := h.service.Schedule(r.Context(), identity, listingID, req.ScheduledAt, req.Notes)
	if err != nil {
		h.logger.Warn("schedule visit", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, visit)
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	visits, err := h.service.ListMine(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, visits)
}

func (h *Handler) listForListing(w http.ResponseWriter, r *http.Request) {
	listingID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	visits, err := h.service.ListForListing(r.Context(), listingID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, visits)
}

func (h *Handler) confirm(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Confirm, "visita confirmada")
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Cancel, "visita cancelada")
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	h.transition(w, r, h.service.Complete, "visita concluída")
}

func (h *Handler) transition(w http.ResponseWriter, r *http.Request, fn func(context.Context, uuid.UUID) error, message string) {
	resource, ok := authz.ResourceFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}
	visit := resource.(*Visit)

	if err := fn(r.Context(), visit.ID); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, message)
}
