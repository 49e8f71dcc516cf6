package application

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// BidAcceptedEvent is pushed to live observers after a bid commits.
// Sequence is the lot's place_bid_count after this bid, so per-lot events
// carry their commit order.
type BidAcceptedEvent struct {
	LotID    string
	BidID    uuid.UUID
	BidderID string
	Amount   decimal.Decimal
	PlacedAt time.Time
	Sequence int64
}

// BidEventPublisher fans an accepted bid out to connected observers.
// Delivery is best-effort, at-most-once: a failed or slow publish must never
// affect the outcome of the bid itself.
type BidEventPublisher interface {
	PublishBidAccepted(evt BidAcceptedEvent)
}
