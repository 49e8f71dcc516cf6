package domain

import (
	"strings"

	"github.com/shopspring/decimal"
)

// BidRequest is a raw bid submission as it arrives from a client. Amount is
// kept as the original string so the validator owns its parsing.
type BidRequest struct {
	LotID    string
	BidderID string
	Amount   string
}

// ValidateBid checks a submission against an aggregate snapshot (nil when the
// lot has no bids yet) and returns the parsed amount on acceptance.
//
// The function is pure and the snapshot may be stale under concurrency: it is
// a pre-check only. The authoritative highest-bid and duplicate checks are
// re-run inside the placement transaction against the locked row.
func ValidateBid(req BidRequest, agg *LotAggregate) (decimal.Decimal, error) {
	if strings.TrimSpace(req.LotID) == "" ||
		strings.TrimSpace(req.BidderID) == "" ||
		strings.TrimSpace(req.Amount) == "" {
		return decimal.Decimal{}, ErrMissingField
	}

	amount, err := ParseAmount(req.Amount)
	if err != nil {
		return decimal.Decimal{}, err
	}

	// Strict improvement rule: a tie with the current highest bid rejects.
	if agg != nil && agg.HasBids() && amount.Cmp(agg.CurrentHighestBid) <= 0 {
		return decimal.Decimal{}, ErrBidTooLow
	}

	return amount, nil
}
