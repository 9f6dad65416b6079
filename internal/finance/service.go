package finance

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/quadra-imoveis/quadra/internal/shared"
)

// Service carries financial bookkeeping rules.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	printer *message.Printer
}

// NewService builds a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		printer: message.NewPrinter(language.BrazilianPortuguese),
	}
}

// CreateInput is the data needed to book a record.
type CreateInput struct {
	ListingID   uuid.NullUUID
	BrokerID    uuid.NullUUID
	Kind        string
	Description string
	Amount      int64
	OccurredAt  time.Time
}

func (s *Service) Create(ctx context.Context, input CreateInput) (*Record, error) {
	if !validKind(input.Kind) || input.Amount == 0 {
		return nil, shared.ErrValidation
	}
	if input.OccurredAt.IsZero() {
		input.OccurredAt = time.Now()
	}

	record := &Record{
		ID:          uuid.New(),
		ListingID:   input.ListingID,
		BrokerID:    input.BrokerID,
		Kind:        input.Kind,
		Description: input.Description,
		Amount:      input.Amount,
		OccurredAt:  input.OccurredAt,
	}
	if err := s.repo.Create(ctx, record); err != nil {
		return nil, err
	}

	s.logger.Info("financial record booked",
		slog.String("record", record.ID.String()),
		slog.String("kind", record.Kind),
		slog.Int64("amount", record.Amount))
	return record, nil
}

func (s *Service) List(ctx context.Context, from, to time.Time) ([]Record, error) {
	return s.repo.List(ctx, from, to)
}

// SummaryLine is one kind's total over the month, formatted for display.
type SummaryLine struct {
	Kind      string `json:"kind"`
	Total     int64  `json:"total"`
	Formatted string `json:"formatted"`
}

// MonthlySummary totals records per kind over a calendar month and formats
// amounts as Brazilian currency.
func (s *Service) MonthlySummary(ctx context.Context, year int, month time.Month) ([]SummaryLine, error) {
	from := time.Date(year, month, 1, 0, 0, 0, 0, time.Local)
	to := from.AddDate(0, 1, 0)

	totals, err := s.repo.SummaryByKind(ctx, from, to)
	if err != nil {
		return nil, err
	}

	lines := make([]SummaryLine, 0, len(totals))
	for _, kind := range []string{KindSale, KindRent, KindCommission, KindExpense} {
		total, ok := totals[kind]
		if !ok {
			continue
		}
		lines = append(lines, SummaryLine{
			Kind:      kind,
			Total:     total,
			Formatted: s.FormatAmount(total),
		})
	}
	return lines, nil
}

// FormatAmount renders centavos as pt-BR currency, e.g. "R$ 1.234,56".
func (s *Service) FormatAmount(centavos int64) string {
	return s.printer.Sprintf("R$ %.2f", float64(centavos)/100)
}
