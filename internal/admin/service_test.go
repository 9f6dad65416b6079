package admin

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeAdminRepo struct {
	users    int64
	listings int64
	visits   int64
	sales    []time.Time
	revenue  int64
	expenses int64
}

func (f *fakeAdminRepo) CountUsers(context.Context) (int64, error)    { return f.users, nil }
func (f *fakeAdminRepo) CountListings(context.Context) (int64, error) { return f.listings, nil }
func (f *fakeAdminRepo) CountVisits(context.Context) (int64, error)   { return f.visits, nil }

func (f *fakeAdminRepo) CountSalesSince(_ context.Context, since time.Time) (int64, error) {
	var n int64
	for _, at := range f.sales {
		if !at.Before(since) {
			n++
		}
	}
	return n, nil
}

func (f *fakeAdminRepo) Totals(context.Context) (int64, int64, error) {
	return f.revenue, f.expenses, nil
}

var _ Repository = (*fakeAdminRepo)(nil)

func TestDashboardStats(t *testing.T) {
	now := time.Date(2026, time.August, 20, 10, 0, 0, 0, time.Local)
	repo := &fakeAdminRepo{
		users:    12,
		listings: 40,
		visits:   7,
		sales: []time.Time{
			time.Date(2026, time.July, 3, 0, 0, 0, 0, time.Local),
			time.Date(2026, time.August, 5, 0, 0, 0, 0, time.Local),
			time.Date(2026, time.August, 12, 0, 0, 0, 0, time.Local),
		},
		revenue:  45000000,
		expenses: -120000,
	}
	service := NewService(repo, slog.New(slog.NewTextHandler(io.Discard, nil)))
	service.now = func() time.Time { return now }

	stats, err := service.DashboardStats(context.Background())
	require.NoError(t, err)

	assert.Equal(t, int64(12), stats.Users)
	assert.Equal(t, int64(40), stats.Listings)
	assert.Equal(t, int64(7), stats.Visits)
	assert.Equal(t, int64(3), stats.Sales)
	assert.Equal(t, int64(2), stats.SalesThisMonth)
	assert.Equal(t, int64(SalesGoal), stats.SalesGoal)
	assert.InDelta(t, 0.02, stats.Conversion, 1e-9)
	assert.Equal(t, service.formatAmount(45000000), stats.RevenueFormatted)
	assert.Equal(t, service.formatAmount(-120000), stats.ExpensesFormatted)
}
