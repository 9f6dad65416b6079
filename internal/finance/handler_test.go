package finance

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quadra-imoveis/quadra/internal/authz"
	"github.com/quadra-imoveis/quadra/internal/shared"
)

type stubAuthzStore struct {
	perms map[uuid.UUID][]string
}

func (s stubAuthzStore) PermissionsFor(_ context.Context, id uuid.UUID) ([]string, error) {
	return s.perms[id], nil
}

func (stubAuthzStore) RecordUsage(context.Context, uuid.UUID, string, time.Time, int) (bool, error) {
	return true, nil
}

func TestExportRequiresPermission(t *testing.T) {
	repo := &fakeFinanceRepo{records: []Record{{
		ID:          uuid.New(),
		Kind:        KindSale,
		Description: "Venda apto Centro",
		Amount:      45000000,
		OccurredAt:  time.Date(2026, time.March, 10, 0, 0, 0, 0, time.Local),
	}}}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	service := NewService(repo, logger)

	granted := &shared.Identity{ID: uuid.New(), Role: shared.RoleAdmin}
	denied := &shared.Identity{ID: uuid.New(), Role: shared.RoleAdmin}
	store := stubAuthzStore{perms: map[uuid.UUID][]string{granted.ID: {ExportPermission}}}
	policy := authz.NewPolicy(store, authz.NewRegistry(), nil)

	newRouter := func(identity *shared.Identity) http.Handler {
		requireAuth := func(next http.Handler) http.Handler {
			return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				next.ServeHTTP(w, r.WithContext(shared.ContextWithIdentity(r.Context(), identity)))
			})
		}
		router := chi.NewRouter()
		router.Route("/finance", NewHandler(logger, service, requireAuth, policy).MountRoutes)
		return router
	}

	rec := httptest.NewRecorder()
	newRouter(granted).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finance/export?year=2026&month=3", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Body.String(), "Venda apto Centro")
	assert.Contains(t, rec.Body.String(), service.FormatAmount(45000000))

	rec = httptest.NewRecorder()
	newRouter(denied).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/finance/export", nil))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
