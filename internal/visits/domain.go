package visits

import (
	"time"

	"github.com/google/uuid"
)

// Visit statuses.
const (
	StatusScheduled = "agendada"
	StatusConfirmed = "confirmada"
	StatusCancelled = "cancelada"
	StatusDone      = "realizada"
)

// Visit is a scheduled tour of a listing.
type Visit struct {
	ID          uuid.UUID `json:"id"`
	ListingID   uuid.UUID `json:"listingId"`
	VisitorID   uuid.UUID `json:"visitorId"`
	ScheduledAt time.Time `json:"scheduledAt"`
	Status      string    `json:"status"`
	Notes       string    `json:"notes,omitempty"`
	CreatedAt   time.Time `json:"createdAt"`
	UpdatedAt   time.Time `json:"updatedAt"`
}
