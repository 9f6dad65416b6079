package finance

import (
	"time"

	"github.com/google/uuid"
)

// Record kinds.
const (
	KindSale       = "venda"
	KindRent       = "aluguel"
	KindCommission = "comissao"
	KindExpense    = "despesa"
)

// Record is one financial entry, amounts in centavos.
type Record struct {
	ID          uuid.UUID     `json:"id"`
	ListingID   uuid.NullUUID `json:"listingId,omitempty"`
	BrokerID    uuid.NullUUID `json:"brokerId,omitempty"`
	Kind        string        `json:"kind"`
	Description string        `json:"description"`
	Amount      int64         `json:"amount"`
	OccurredAt  time.Time     `json:"occurredAt"`
	CreatedAt   time.Time     `json:"createdAt"`
}

func validKind(kind string) bool {
	switch kind {
	case KindSale, KindRent, KindCommission, KindExpense:
		return true
	}
	return false
}
