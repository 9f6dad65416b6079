package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNewPagination(t *testing.T) {
	p := NewPagination(2, 10, 45)
	assert.Equal(t, 2, p.Page)
	assert.Equal(t, 10, p.PerPage)
	assert.Equal(t, 45, p.Total)
	assert.Equal(t, 5, p.TotalPages)
	assert.Equal(t, 10, p.Offset())
}

func TestNewPaginationDefaults(t *testing.T) {
	p := NewPagination(0, 0, 0)
	assert.Equal(t, 1, p.Page)
	assert.Equal(t, 20, p.PerPage)
	assert.Equal(t, 0, p.TotalPages)
	assert.Equal(t, 0, p.Offset())
}

func TestRoleAccessLevels(t *testing.T) {
	assert.Equal(t, 3, RoleAdmin.AccessLevel())
	assert.Equal(t, 2, RoleCorretor.AccessLevel())
	assert.Equal(t, 1, RoleAssistente.AccessLevel())
	assert.Equal(t, 1, RoleCliente.AccessLevel())
	assert.Equal(t, 0, RoleVisitante.AccessLevel())
	assert.Equal(t, 0, Role("desconhecido").AccessLevel())

	assert.True(t, RoleCorretor.Valid())
	assert.False(t, Role("desconhecido").Valid())
}
