package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/artsense/artsense-server/internal/bidding/domain"
	"github.com/artsense/artsense-server/internal/shared/logger"
	"github.com/artsense/artsense-server/internal/shared/notification"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// maxPlaceBidAttempts bounds retries on transient storage conflicts before
// the caller gets ErrTransientFailure.
const maxPlaceBidAttempts = 3

// TxBeginner starts a database transaction. *pgxpool.Pool satisfies it.
type TxBeginner interface {
	BeginTx(ctx context.Context, txOptions pgx.TxOptions) (pgx.Tx, error)
}

// PlaceBidResult is returned on acceptance: the new ledger entry plus the
// aggregate state as committed by this bid.
type PlaceBidResult struct {
	Bid       *domain.Bid
	Aggregate domain.LotAggregate
}

// PlaceBidUseCase orchestrates validate -> persist-bid -> update-aggregate as
// one atomic unit. Same-lot submissions are serialized twice over: an
// in-process per-lot mutex (which also pins fan-out to commit order) and a
// row lock on the aggregate inside the transaction.
type PlaceBidUseCase struct {
	aggStore  domain.LotAggregateStore
	ledger    domain.BidLedger
	db        TxBeginner
	publisher BidEventPublisher
	notifier  notification.Notifier
	locks     *lotLocks
}

// NewPlaceBidUseCase creates a new instance of PlaceBidUseCase, it receives
// dependencies through injection.
func NewPlaceBidUseCase(
	aggStore domain.LotAggregateStore,
	ledger domain.BidLedger,
	db TxBeginner,
	publisher BidEventPublisher,
	notifier notification.Notifier,
) *PlaceBidUseCase {
	return &PlaceBidUseCase{
		aggStore:  aggStore,
		ledger:    ledger,
		db:        db,
		publisher: publisher,
		notifier:  notifier,
		locks:     newLotLocks(),
	}
}

func (uc *PlaceBidUseCase) Execute(ctx context.Context, req domain.BidRequest) (*PlaceBidResult, error) {
	// 1. Fast-path validation against the latest known aggregate. Shape and
	// amount problems reject here without touching the lot lock; the
	// highest-bid check is repeated authoritatively inside the transaction.
	snapshot, err := uc.snapshotFor(ctx, req)
	if err != nil {
		return nil, err
	}
	amount, err := domain.ValidateBid(req, snapshot)
	if errors.Is(err, domain.ErrBidTooLow) {
		// An exact tie with the snapshot highest may be this bidder's own
		// standing bid resubmitted. The transaction decides: its duplicate
		// check runs before the strict-improvement rule.
		if tied, parsed := tiesSnapshot(req, snapshot); tied {
			amount, err = parsed, nil
		}
	}
	if err != nil {
		log.Warn("PlaceBid: rejected before any write",
			zap.String("lotID", req.LotID),
			zap.String("bidderID", req.BidderID),
			zap.Error(err),
		)
		return nil, err
	}

	// 2. Per-lot serialization. Held across commit AND publish so observers
	// see per-lot events in commit order.
	unlock := uc.locks.Lock(req.LotID)
	defer unlock()

	var result *PlaceBidResult
	for attempt := 1; attempt <= maxPlaceBidAttempts; attempt++ {
		result, err = uc.placeOnce(ctx, req, amount)
		if err == nil || !isRetryableTxError(err) {
			break
		}
		log.Warn("PlaceBid: transient storage conflict, retrying",
			zap.String("lotID", req.LotID),
			zap.Int("attempt", attempt),
			zap.Error(err),
		)
	}
	if err != nil {
		if isRetryableTxError(err) {
			log.Error("PlaceBid: retries exhausted",
				zap.String("lotID", req.LotID),
				zap.String("bidderID", req.BidderID),
				zap.Error(err),
			)
			return nil, domain.ErrTransientFailure
		}
		return nil, err
	}

	// 3. Side effects after commit. Neither may change the bid's outcome.
	uc.publisher.PublishBidAccepted(BidAcceptedEvent{
		LotID:    result.Bid.LotID,
		BidID:    result.Bid.ID,
		BidderID: result.Bid.BidderID,
		Amount:   result.Bid.Amount,
		PlacedAt: result.Bid.PlacedAt,
		Sequence: result.Aggregate.PlaceBidCount,
	})
	go uc.sendConfirmation(result)

	log.Info("PlaceBid: bid accepted",
		zap.String("lotID", result.Bid.LotID),
		zap.String("bidID", result.Bid.ID.String()),
		zap.String("bidderID", result.Bid.BidderID),
		zap.String("amount", result.Bid.Amount.String()),
		zap.Int64("placeBidCount", result.Aggregate.PlaceBidCount),
		zap.Int64("uniqueBidders", result.Aggregate.UniqueBidders),
	)
	return result, nil
}

// snapshotFor reads the current aggregate for the fast-path check. A request
// with no lot id skips the read so the validator can report the missing field.
func (uc *PlaceBidUseCase) snapshotFor(ctx context.Context, req domain.BidRequest) (*domain.LotAggregate, error) {
	if req.LotID == "" {
		return nil, nil
	}
	snapshot, err := uc.aggStore.Get(ctx, req.LotID)
	if err != nil {
		log.Error("PlaceBid: failed to read lot aggregate",
			zap.String("lotID", req.LotID),
			zap.Error(err),
		)
		return nil, fmt.Errorf("place bid: failed to read aggregate for lot %s: %w", req.LotID, err)
	}
	return snapshot, nil
}

// tiesSnapshot reports whether the request amount exactly ties the snapshot
// highest, returning the parsed amount when it does.
func tiesSnapshot(req domain.BidRequest, snapshot *domain.LotAggregate) (bool, decimal.Decimal) {
	if snapshot == nil || !snapshot.HasBids() {
		return false, decimal.Decimal{}
	}
	amount, err := domain.ParseAmount(req.Amount)
	if err != nil {
		return false, decimal.Decimal{}
	}
	return amount.Equal(snapshot.CurrentHighestBid), amount
}

// placeOnce runs one attempt of the atomic unit: lock the aggregate row,
// re-validate against fresh state, append to the ledger and upsert the
// aggregate, all inside a single transaction.
func (uc *PlaceBidUseCase) placeOnce(ctx context.Context, req domain.BidRequest, amount decimal.Decimal) (result *PlaceBidResult, err error) {
	tx, err := uc.db.BeginTx(ctx, pgx.TxOptions{})
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to begin transaction: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback(ctx)
			return
		}
		if commitErr := tx.Commit(ctx); commitErr != nil {
			result = nil
			err = fmt.Errorf("place bid: failed to commit transaction: %w", commitErr)
		}
	}()

	agg, err := uc.aggStore.GetForUpdate(ctx, tx, req.LotID)
	if err != nil {
		return nil, fmt.Errorf("place bid: failed to lock aggregate for lot %s: %w", req.LotID, err)
	}

	// Write-time re-validation: the fast-path snapshot may be stale. The
	// duplicate check runs first: an identical resubmission always ties the
	// recorded highest, and DuplicateBid is the more precise rejection.
	duplicate, err := uc.ledger.HasExactBid(ctx, tx, req.LotID, req.BidderID, amount)
	if err != nil {
		return nil, fmt.Errorf("place bid: duplicate check failed for lot %s: %w", req.LotID, err)
	}
	if duplicate {
		return nil, domain.ErrDuplicateBid
	}
	if agg.HasBids() && amount.Cmp(agg.CurrentHighestBid) <= 0 {
		return nil, domain.ErrBidTooLow
	}

	// The first-bid check and the counter increment live in the same atomic
	// unit; a separate earlier read could double-count a bidder.
	hasBidder, err := uc.ledger.HasBidder(ctx, tx, req.LotID, req.BidderID)
	if err != nil {
		return nil, fmt.Errorf("place bid: bidder check failed for lot %s: %w", req.LotID, err)
	}

	bid := domain.NewBid(req.LotID, req.BidderID, amount, time.Now().UTC())
	if err = uc.ledger.Insert(ctx, tx, bid); err != nil {
		return nil, fmt.Errorf("place bid: failed to append bid for lot %s: %w", req.LotID, err)
	}

	agg.ApplyBid(amount, !hasBidder)
	if err = uc.aggStore.Upsert(ctx, tx, agg); err != nil {
		return nil, fmt.Errorf("place bid: failed to upsert aggregate for lot %s: %w", req.LotID, err)
	}

	return &PlaceBidResult{Bid: bid, Aggregate: *agg}, nil
}

// sendConfirmation notifies the bidder out of band. Fire-and-forget: failures
// are logged and swallowed.
func (uc *PlaceBidUseCase) sendConfirmation(result *PlaceBidResult) {
	if uc.notifier == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	subject := fmt.Sprintf("Bid confirmed for lot %s", result.Bid.LotID)
	body := fmt.Sprintf("Your bid of %s on lot %s was accepted at %s.",
		result.Bid.Amount.StringFixed(2), result.Bid.LotID, result.Bid.PlacedAt.Format(time.RFC3339))
	if err := uc.notifier.Send(ctx, result.Bid.BidderID, subject, body); err != nil {
		log.Warn("PlaceBid: bidder confirmation failed",
			zap.String("lotID", result.Bid.LotID),
			zap.String("bidderID", result.Bid.BidderID),
			zap.Error(err),
		)
	}
}

// isRetryableTxError reports whether the error is a transient conflict worth
// another attempt: Postgres serialization failure (40001) or deadlock (40P01).
func isRetryableTxError(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "40001" || pgErr.Code == "40P01"
	}
	return false
}
