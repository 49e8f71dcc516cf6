package postgres

import (
	"context"

	"github.com/artsense/artsense-server/internal/bidding/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// BidLedger implements domain.BidLedger over the append-only bids table.
type BidLedger struct {
	pool *pgxpool.Pool
}

func NewBidLedger(pool *pgxpool.Pool) *BidLedger {
	return &BidLedger{pool: pool}
}

// Insert appends one bid inside tx; the aggregate update in the same
// transaction keeps ledger and summary from diverging.
func (r *BidLedger) Insert(ctx context.Context, tx pgx.Tx, bid *domain.Bid) error {
	query := `
        INSERT INTO bids (id, lot_id, bidder_id, amount, placed_at)
        VALUES ($1, $2, $3, $4::NUMERIC, $5)
    `
	_, err := tx.Exec(ctx, query,
		bid.ID,
		bid.LotID,
		bid.BidderID,
		bid.Amount.String(),
		bid.PlacedAt,
	)
	return err
}

func (r *BidLedger) HasBidder(ctx context.Context, tx pgx.Tx, lotID, bidderID string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bids WHERE lot_id = $1 AND bidder_id = $2)`
	var exists bool
	err := tx.QueryRow(ctx, query, lotID, bidderID).Scan(&exists)
	return exists, err
}

func (r *BidLedger) HasExactBid(ctx context.Context, tx pgx.Tx, lotID, bidderID string, amount decimal.Decimal) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM bids WHERE lot_id = $1 AND bidder_id = $2 AND amount = $3::NUMERIC)`
	var exists bool
	err := tx.QueryRow(ctx, query, lotID, bidderID, amount.String()).Scan(&exists)
	return exists, err
}

func (r *BidLedger) ListByLot(ctx context.Context, lotID string) ([]*domain.Bid, error) {
	query := `
        SELECT id, lot_id, bidder_id, amount::TEXT, placed_at
        FROM bids
        WHERE lot_id = $1
        ORDER BY placed_at ASC
    `
	rows, err := r.pool.Query(ctx, query, lotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var bids []*domain.Bid
	for rows.Next() {
		bid := &domain.Bid{}
		var amount string
		err := rows.Scan(
			&bid.ID,
			&bid.LotID,
			&bid.BidderID,
			&amount,
			&bid.PlacedAt,
		)
		if err != nil {
			return nil, err
		}
		bid.Amount, err = decimal.NewFromString(amount)
		if err != nil {
			return nil, err
		}
		bids = append(bids, bid)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return bids, nil
}

func (r *BidLedger) CountByLot(ctx context.Context, lotID string) (int64, error) {
	query := `SELECT COUNT(*) FROM bids WHERE lot_id = $1`
	var count int64
	err := r.pool.QueryRow(ctx, query, lotID).Scan(&count)
	return count, err
}
