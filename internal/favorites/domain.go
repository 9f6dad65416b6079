package favorites

import (
	"time"

	"github.com/google/uuid"
)

// Favorite marks a listing a user wants to track.
type Favorite struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	ListingID uuid.UUID `json:"listingId"`
	CreatedAt time.Time `json:"createdAt"`
}
