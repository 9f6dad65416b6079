package shared

import (
	"time"

	"github.com/google/uuid"
)

// Role enumerates the account roles understood by the authorization layer.
type Role string

const (
	RoleAdmin      Role = "admin"
	RoleCorretor   Role = "corretor"
	RoleAssistente Role = "assistente"
	RoleCliente    Role = "cliente"
	RoleVisitante  Role = "visitante"
)

// accessLevels maps roles onto a total order used by level checks.
var accessLevels = map[Role]int{
	RoleAdmin:      3,
	RoleCorretor:   2,
	RoleAssistente: 1,
	RoleCliente:    1,
	RoleVisitante:  0,
}

// AccessLevel returns the numeric level for a role. Unknown roles map to zero.
func (r Role) AccessLevel() int {
	return accessLevels[r]
}

// Valid reports whether the role is one of the enumerated values.
func (r Role) Valid() bool {
	_, ok := accessLevels[r]
	return ok
}

// Identity is the resolved principal attached to a request after the auth gate
// runs. It never carries the password hash.
type Identity struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Phone     string    `json:"phone,omitempty"`
	Role      Role      `json:"role"`
	Verified  bool      `json:"verified"`
	IsActive  bool      `json:"isActive"`
	AvatarURL string    `json:"avatarUrl,omitempty"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}
