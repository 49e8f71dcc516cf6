package domain

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Bid is a single accepted bid in the ledger. Immutable once created:
// it is never edited, only inserted.
type Bid struct {
	ID       uuid.UUID
	LotID    string
	BidderID string
	Amount   decimal.Decimal
	PlacedAt time.Time
}

// NewBid creates a new Bid. PlacedAt is assigned by the server at
// acceptance time, never taken from the client.
func NewBid(lotID, bidderID string, amount decimal.Decimal, placedAt time.Time) *Bid {
	return &Bid{
		ID:       uuid.New(),
		LotID:    lotID,
		BidderID: bidderID,
		Amount:   amount,
		PlacedAt: placedAt,
	}
}
