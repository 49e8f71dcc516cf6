package domain

import "github.com/shopspring/decimal"

// LotAggregate is the denormalized per-lot summary derived from the bid
// ledger: highest accepted bid, total accepted bids and distinct bidders.
// It is created lazily by the first accepted bid and never deleted.
type LotAggregate struct {
	LotID             string
	CurrentHighestBid decimal.Decimal
	PlaceBidCount     int64
	UniqueBidders     int64
}

// NewLotAggregate returns the zero-valued aggregate for a lot with no bids yet.
func NewLotAggregate(lotID string) *LotAggregate {
	return &LotAggregate{
		LotID:             lotID,
		CurrentHighestBid: decimal.Zero,
	}
}

// HasBids reports whether any bid has been accepted for the lot.
func (a *LotAggregate) HasBids() bool {
	return a.PlaceBidCount > 0
}

// ApplyBid folds one accepted bid into the counters. The caller must have
// already established that amount is a strict improvement and whether the
// bidder is new to this lot; both checks belong to the same atomic unit as
// the ledger insert.
func (a *LotAggregate) ApplyBid(amount decimal.Decimal, newBidder bool) {
	a.CurrentHighestBid = amount
	a.PlaceBidCount++
	if newBidder {
		a.UniqueBidders++
	}
}
