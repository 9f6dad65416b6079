package favorites

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/platform/httpx"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Handler manages favorite endpoints.
type Handler struct {
	logger      *slog.Logger
	service     *Service
	requireAuth func(http.Handler) http.Handler
	validate    *validator.Validate
}

// NewHandler builds Handler instance.
func NewHandler(logger *slog.Logger, service *Service, requireAuth func(http.Handler) http.Handler) *Handler {
	return &Handler{
		logger:      logger,
		service:     service,
		requireAuth: requireAuth,
		validate:    validator.New(validator.WithRequiredStructEnabled()),
	}
}

// MountRoutes registers favorite routes. Everything requires a session.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.requireAuth)

	r.Post("/", h.add)
	r.Get("/", h.listMine)
	r.Delete("/{id}", h.remove)
}

type addRequest struct {
	ListingID string `json:"listingId" validate:"required,uuid4"`
}

func (h *Handler) add(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}

	var req addRequest
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

	favorite, err := h.service.Add(r.Context(), identity.ID, listingID)
	if err != nil {
		h.logger.Warn("add favorite", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, favorite)
}

func (h *Handler) remove(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.RespondError(w, shared.ErrNotFound)
		return
	}

	if err := h.service.Remove(r.Context(), identity.ID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.Message(w, http.StatusOK, "favorito removido")
}

func (h *Handler) listMine(w http.ResponseWriter, r *http.Request) {
	identity, ok := shared.IdentityFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrNotAuthenticated)
		return
	}
	favorites, err := h.service.ListMine(r.Context(), identity.ID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, favorites)
}
