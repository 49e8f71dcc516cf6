package application

import (
	"context"
	"fmt"
	"time"

	"github.com/artsense/artsense-server/internal/bidding/domain"
	"github.com/google/uuid"
)

// LotAggregateDTO is the read model for one lot's summary. A lot nobody has
// bid on yet is a zero-valued DTO with HasBids=false, not an error.
type LotAggregateDTO struct {
	LotID             string `json:"lot_id"`
	CurrentHighestBid string `json:"current_highest_bid"`
	PlaceBidCount     int64  `json:"place_bid_count"`
	UniqueBidders     int64  `json:"unique_bidders"`
	HasBids           bool   `json:"has_bids"`
}

// BidDTO is the read model for one ledger entry.
type BidDTO struct {
	ID       uuid.UUID `json:"id"`
	LotID    string    `json:"lot_id"`
	BidderID string    `json:"bidder_id"`
	Amount   string    `json:"amount"`
	PlacedAt time.Time `json:"placed_at"`
}

// GetLotAggregateUseCase retrieves the current summary of an auction lot.
type GetLotAggregateUseCase struct {
	aggStore domain.LotAggregateStore
}

func NewGetLotAggregateUseCase(aggStore domain.LotAggregateStore) *GetLotAggregateUseCase {
	return &GetLotAggregateUseCase{aggStore: aggStore}
}

func (uc *GetLotAggregateUseCase) Execute(ctx context.Context, lotID string) (*LotAggregateDTO, error) {
	agg, err := uc.aggStore.Get(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("get lot aggregate: %w", err)
	}
	if agg == nil {
		agg = domain.NewLotAggregate(lotID)
	}
	return &LotAggregateDTO{
		LotID:             agg.LotID,
		CurrentHighestBid: agg.CurrentHighestBid.String(),
		PlaceBidCount:     agg.PlaceBidCount,
		UniqueBidders:     agg.UniqueBidders,
		HasBids:           agg.HasBids(),
	}, nil
}

// BidHistoryUseCase answers count and history queries over the ledger.
// Snapshot reads: they may lag the most recent write.
type BidHistoryUseCase struct {
	ledger domain.BidLedger
}

func NewBidHistoryUseCase(ledger domain.BidLedger) *BidHistoryUseCase {
	return &BidHistoryUseCase{ledger: ledger}
}

func (uc *BidHistoryUseCase) Count(ctx context.Context, lotID string) (int64, error) {
	count, err := uc.ledger.CountByLot(ctx, lotID)
	if err != nil {
		return 0, fmt.Errorf("bid count: %w", err)
	}
	return count, nil
}

func (uc *BidHistoryUseCase) List(ctx context.Context, lotID string) ([]*BidDTO, error) {
	bids, err := uc.ledger.ListByLot(ctx, lotID)
	if err != nil {
		return nil, fmt.Errorf("bid history: %w", err)
	}
	dtos := make([]*BidDTO, 0, len(bids))
	for _, bid := range bids {
		dtos = append(dtos, &BidDTO{
			ID:       bid.ID,
			LotID:    bid.LotID,
			BidderID: bid.BidderID,
			Amount:   bid.Amount.String(),
			PlacedAt: bid.PlacedAt,
		})
	}
	return dtos, nil
}
