package postgres

import (
	"context"
	"errors"

	"github.com/artsense/artsense-server/internal/bidding/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// LotAggregateStore implements domain.LotAggregateStore over Postgres.
// Monetary values are stored as NUMERIC and moved as text for exact decimals.
type LotAggregateStore struct {
	pool *pgxpool.Pool
}

func NewLotAggregateStore(pool *pgxpool.Pool) *LotAggregateStore {
	return &LotAggregateStore{pool: pool}
}

const aggregateColumns = `lot_id, current_highest_bid::TEXT, place_bid_count, unique_bidders`

func scanAggregate(row pgx.Row) (*domain.LotAggregate, error) {
	agg := &domain.LotAggregate{}
	var highest string
	err := row.Scan(&agg.LotID, &highest, &agg.PlaceBidCount, &agg.UniqueBidders)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	agg.CurrentHighestBid, err = decimal.NewFromString(highest)
	if err != nil {
		return nil, err
	}
	return agg, nil
}

// Get returns a snapshot of the aggregate, or nil when no bids exist yet.
func (r *LotAggregateStore) Get(ctx context.Context, lotID string) (*domain.LotAggregate, error) {
	query := `SELECT ` + aggregateColumns + ` FROM lot_aggregates WHERE lot_id = $1`
	return scanAggregate(r.pool.QueryRow(ctx, query, lotID))
}

// GetForUpdate locks the aggregate row for the rest of tx, serializing
// concurrent placements on the same lot at the storage layer. A lot with no
// row yet gets a zero-valued one first, so even two processes racing on the
// lot's first bid contend on the same row lock.
func (r *LotAggregateStore) GetForUpdate(ctx context.Context, tx pgx.Tx, lotID string) (*domain.LotAggregate, error) {
	seed := `
        INSERT INTO lot_aggregates (lot_id, current_highest_bid, place_bid_count, unique_bidders)
        VALUES ($1, 0, 0, 0)
        ON CONFLICT (lot_id) DO NOTHING;
    `
	if _, err := tx.Exec(ctx, seed, lotID); err != nil {
		return nil, err
	}
	query := `SELECT ` + aggregateColumns + ` FROM lot_aggregates WHERE lot_id = $1 FOR UPDATE`
	return scanAggregate(tx.QueryRow(ctx, query, lotID))
}

// Upsert writes the aggregate inside tx. The caller owns the counter math;
// this is a plain conditional write, always part of the same transaction as
// the ledger insert.
func (r *LotAggregateStore) Upsert(ctx context.Context, tx pgx.Tx, agg *domain.LotAggregate) error {
	query := `
        INSERT INTO lot_aggregates (lot_id, current_highest_bid, place_bid_count, unique_bidders)
        VALUES ($1, $2::NUMERIC, $3, $4)
        ON CONFLICT (lot_id) DO UPDATE
        SET
            current_highest_bid = EXCLUDED.current_highest_bid,
            place_bid_count = EXCLUDED.place_bid_count,
            unique_bidders = EXCLUDED.unique_bidders,
            updated_at = NOW();
    `
	_, err := tx.Exec(ctx, query,
		agg.LotID,
		agg.CurrentHighestBid.String(),
		agg.PlaceBidCount,
		agg.UniqueBidders,
	)
	return err
}
