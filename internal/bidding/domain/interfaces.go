package domain

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/shopspring/decimal"
)

// LotAggregateStore persists the per-lot summary row.
type LotAggregateStore interface {
	// Get returns the aggregate snapshot, or nil when the lot has no bids yet.
	Get(ctx context.Context, lotID string) (*LotAggregate, error)
	// GetForUpdate locks the aggregate row for the duration of tx, creating a
	// zero-valued row first when the lot has none yet. Never returns nil.
	GetForUpdate(ctx context.Context, tx pgx.Tx, lotID string) (*LotAggregate, error)
	// Upsert creates or replaces the aggregate row inside tx.
	Upsert(ctx context.Context, tx pgx.Tx, agg *LotAggregate) error
}

// BidLedger is the append-only record of accepted bids.
type BidLedger interface {
	Insert(ctx context.Context, tx pgx.Tx, bid *Bid) error
	// HasBidder reports whether the bidder already has an accepted bid on the lot.
	HasBidder(ctx context.Context, tx pgx.Tx, lotID, bidderID string) (bool, error)
	// HasExactBid reports whether an identical (lot, bidder, amount) bid exists.
	HasExactBid(ctx context.Context, tx pgx.Tx, lotID, bidderID string, amount decimal.Decimal) (bool, error)
	ListByLot(ctx context.Context, lotID string) ([]*Bid, error)
	CountByLot(ctx context.Context, lotID string) (int64, error)
}
