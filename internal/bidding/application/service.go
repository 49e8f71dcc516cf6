package application

import (
	"context"

	"github.com/artsense/artsense-server/internal/bidding/domain"
)

// BiddingService defines the application interface layer of the bidding
// module, exposing the use cases to the outer layers (HTTP, websocket).
type BiddingService interface {
	// PlaceBid handles the core write path: validate, persist, update
	// aggregate, fan out. Business rejections come back as domain errors.
	PlaceBid(ctx context.Context, req domain.BidRequest) (*PlaceBidResult, error)
	GetLotAggregate(ctx context.Context, lotID string) (*LotAggregateDTO, error)
	GetBidCount(ctx context.Context, lotID string) (int64, error)
	ListBids(ctx context.Context, lotID string) ([]*BidDTO, error)
}

type biddingService struct {
	placeBidUC *PlaceBidUseCase
	aggUC      *GetLotAggregateUseCase
	historyUC  *BidHistoryUseCase
}

func NewBiddingService(placeBidUC *PlaceBidUseCase, aggUC *GetLotAggregateUseCase, historyUC *BidHistoryUseCase) BiddingService {
	return &biddingService{
		placeBidUC: placeBidUC,
		aggUC:      aggUC,
		historyUC:  historyUC,
	}
}

func (s *biddingService) PlaceBid(ctx context.Context, req domain.BidRequest) (*PlaceBidResult, error) {
	return s.placeBidUC.Execute(ctx, req)
}

func (s *biddingService) GetLotAggregate(ctx context.Context, lotID string) (*LotAggregateDTO, error) {
	return s.aggUC.Execute(ctx, lotID)
}

func (s *biddingService) GetBidCount(ctx context.Context, lotID string) (int64, error) {
	return s.historyUC.Count(ctx, lotID)
}

func (s *biddingService) ListBids(ctx context.Context, lotID string) ([]*BidDTO, error) {
	return s.historyUC.List(ctx, lotID)
}
