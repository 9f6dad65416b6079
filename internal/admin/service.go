package admin

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

// SalesGoal is the monthly sales target the conversion rate is measured
// against.
const SalesGoal = 100

// Stats is the dashboard snapshot. Monetary values are centavos.
type Stats struct {
	Users             int64   `json:"users"`
	Listings          int64   `json:"listings"`
	Visits            int64   `json:"visits"`
	Sales             int64   `json:"sales"`
	SalesThisMonth    int64   `json:"salesThisMonth"`
	SalesGoal         int64   `json:"salesGoal"`
	Conversion        float64 `json:"conversion"`
	Revenue           int64   `json:"revenue"`
	RevenueFormatted  string  `json:"revenueFormatted"`
	Expenses          int64   `json:"expenses"`
	ExpensesFormatted string  `json:"expensesFormatted"`
}

// Service assembles dashboard statistics.
type Service struct {
	repo    Repository
	logger  *slog.Logger
	printer *message.Printer
	now     func() time.Time
}

// NewService builds a Service.
func NewService(repo Repository, logger *slog.Logger) *Service {
	return &Service{
		repo:    repo,
		logger:  logger,
		printer: message.NewPrinter(language.BrazilianPortuguese),
		now:     time.Now,
	}
}

// DashboardStats gathers the counters the back-office landing page shows.
func (s *Service) DashboardStats(ctx context.Context) (*Stats, error) {
	users, err := s.repo.CountUsers(ctx)
	if err != nil {
		return nil, err
	}
	listings, err := s.repo.CountListings(ctx)
	if err != nil {
		return nil, err
	}
	visits, err := s.repo.CountVisits(ctx)
	if err != nil {
		return nil, err
	}
	sales, err := s.repo.CountSalesSince(ctx, time.Time{})
	if err != nil {
		return nil, err
	}

	now := s.now()
	monthStart := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.Local)
	salesMonth, err := s.repo.CountSalesSince(ctx, monthStart)
	if err != nil {
		return nil, err
	}

	revenue, expenses, err := s.repo.Totals(ctx)
	if err != nil {
		return nil, err
	}

	return &Stats{
		Users:             users,
		Listings:          listings,
		Visits:            visits,
		Sales:             sales,
		SalesThisMonth:    salesMonth,
		SalesGoal:         SalesGoal,
		Conversion:        float64(salesMonth) / float64(SalesGoal),
		Revenue:           revenue,
		RevenueFormatted:  s.formatAmount(revenue),
		Expenses:          expenses,
		ExpensesFormatted: s.formatAmount(expenses),
	}, nil
}

func (s *Service) formatAmount(centavos int64) string {
	return s.printer.Sprintf("R$ %.2f", float64(centavos)/100)
}
