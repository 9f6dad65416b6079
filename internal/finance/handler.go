package finance

import (
	"encoding/csv"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/quadra-imoveis/quadra/internal/authz"
	"github.com/quadra-imoveis/quadra/internal/platform/httpx"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

// ExportPermission gates spreadsheet downloads separately from the admin
// access level the rest of the group already requires.
const ExportPermission = "finance.export"

// Handler manages financial endpoints. The whole group is admin only.
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

// MountRoutes registers finance routes.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Use(h.requireAuth)
	r.Use(h.policy.RequireAccessLevel(3))

	r.Post("/", h.create)
	r.Get("/", h.list)
	r.Get("/summary", h.summary)

	r.Group(func(r chi.Router) {
		r.Use(h.policy.RequireAllPermissions(ExportPermission))
		r.Get("/export", h.export)
	})
}

type createRequest struct {
	ListingID   string    `json:"listingId" validate:"omitempty,uuid4"`
	BrokerID    string    `json:"brokerId" validate:"omitempty,uuid4"`
	Kind        string    `json:"kind" validate:"required"`
	Description string    `json:"description" validate:"required,min=3,max=300"`
	Amount      int64     `json:"amount" validate:"required"`
	OccurredAt  time.Time `json:"occurredAt"`
}

func parseNullUUID(raw string) uuid.NullUUID {
	id, err := uuid.Parse(raw)
	if err != nil {
		return uuid.NullUUID{}
	}
	return uuid.NullUUID{UUID: id, Valid: true}
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.RespondError(w, shared.ErrValidation)
		return
	}

	record, err := h.service.Create(r.Context(), CreateInput{
		ListingID:   parseNullUUID(req.ListingID),
		BrokerID:    parseNullUUID(req.BrokerID),
		Kind:        req.Kind,
		Description: req.Description,
		Amount:      req.Amount,
		OccurredAt:  req.OccurredAt,
	})
	if err != nil {
		h.logger.Warn("book financial record", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, record)
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	from, to := monthRange(r)
	records, err := h.service.List(r.Context(), from, to)
	if err != nil {
		h.logger.Error("list financial records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, records)
}

func (h *Handler) summary(w http.ResponseWriter, r *http.Request) {
	year, month := yearMonth(r)
	lines, err := h.service.MonthlySummary(r.Context(), year, month)
	if err != nil {
		h.logger.Error("financial summary", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, lines)
}

func (h *Handler) export(w http.ResponseWriter, r *http.Request) {
	from, to := monthRange(r)
	records, err := h.service.List(r.Context(), from, to)
	if err != nil {
		h.logger.Error("export financial records", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="financeiro.csv"`)

	writer := csv.NewWriter(w)
	_ = writer.Write([]string{"id", "tipo", "descricao", "valor", "data"})
	for _, record := range records {
		_ = writer.Write([]string{
			record.ID.String(),
			record.Kind,
			record.Description,
			h.service.FormatAmount(record.Amount),
			record.OccurredAt.Format("2006-01-02"),
		})
	}
	writer.Flush()
}

func yearMonth(r *http.Request) (int, time.Month) {
	now := time.Now()
	year, _ := strconv.Atoi(r.URL.Query().Get("year"))
	monthNum, _ := strconv.Atoi(r.URL.Query().Get("month"))
	if year <= 0 {
		year = now.Year()
	}
	if monthNum < 1 || monthNum > 12 {
		return year, now.Month()
	}
	return year, time.Month(monthNum)
}

func monthRange(r *http.Request) (time.Time, time.Time) {
	year, month := yearMonth(r)
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	return from, from.AddDate(0, 1, 0)
}
