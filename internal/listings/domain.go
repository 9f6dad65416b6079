package listings

import (
	"time"

	"github.com/google/uuid"
)

// Listing statuses. Listings are never hard deleted; removal flips the status.
const (
	StatusAvailable = "disponivel"
	StatusSold      = "vendido"
	StatusRented    = "alugado"
	StatusInactive  = "inativo"
)

// Listing types accepted on creation.
const (
	TypeHouse     = "casa"
	TypeApartment = "apartamento"
	TypeLand      = "terreno"
	TypeCommerce  = "comercial"
)

// Listing is a property offered by the brokerage.
type Listing struct {
	ID          uuid.UUID `json:"id"`
	OwnerID     uuid.UUID `json:"ownerId"`
	Title       string    `json:"title"`
	Slug        string    `json:"slug"`
	Description string    `json:"description"`
	Type        string    `json:"type"`
	Status      string    `json:"status"`
	// Price is stored in centavos.
	Price     int64     `json:"price"`
	Bedrooms  int       `json:"bedrooms"`
	Bathrooms int       `json:"bathrooms"`
	Area      float64   `json:"area"`
	Featured  bool      `json:"featured"`
	Views     int       `json:"views"`
	Address   Address   `json:"address"`
	Features  []string  `json:"features"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Address locates a listing.
type Address struct {
	Street   string `json:"street"`
	Number   string `json:"number"`
	District string `json:"district"`
	City     string `json:"city"`
	State    string `json:"state"`
	ZipCode  string `json:"zipCode"`
}

// PriceChange is one appended row of a listing's price history.
type PriceChange struct {
	ID        uuid.UUID `json:"id"`
	ListingID uuid.UUID `json:"listingId"`
	OldPrice  int64     `json:"oldPrice"`
	NewPrice  int64     `json:"newPrice"`
	ChangedAt time.Time `json:"changedAt"`
}

func validType(t string) bool {
	switch t {
	case TypeHouse, TypeApartment, TypeLand, TypeCommerce:
		return true
	}
	return false
}

func validStatus(s string) bool {
	switch s {
	case StatusAvailable, StatusSold, StatusRented, StatusInactive:
		return true
	}
	return false
}
