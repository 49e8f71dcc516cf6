package application

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/artsense/artsense-server/internal/bidding/domain"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeDB holds committed state. Writes made through a fakeTx stay pending
// until Commit, mirroring the all-or-nothing contract of the real store.
type fakeDB struct {
	mu          sync.Mutex
	aggregates  map[string]*domain.LotAggregate
	bids        []*domain.Bid
	failUpserts int
	beginErr    error
}

func newFakeDB() *fakeDB {
	return &fakeDB{aggregates: make(map[string]*domain.LotAggregate)}
}

func (db *fakeDB) BeginTx(_ context.Context, _ pgx.TxOptions) (pgx.Tx, error) {
	if db.beginErr != nil {
		return nil, db.beginErr
	}
	return &fakeTx{db: db}, nil
}

func (db *fakeDB) committedBids(lotID string) []*domain.Bid {
	db.mu.Lock()
	defer db.mu.Unlock()
	var out []*domain.Bid
	for _, b := range db.bids {
		if b.LotID == lotID {
			out = append(out, b)
		}
	}
	return out
}

func (db *fakeDB) committedAggregate(lotID string) *domain.LotAggregate {
	db.mu.Lock()
	defer db.mu.Unlock()
	agg, ok := db.aggregates[lotID]
	if !ok {
		return nil
	}
	cp := *agg
	return &cp
}

// fakeTx stages writes and applies them atomically on Commit. The embedded
// pgx.Tx is nil; only the methods the use case calls are implemented.
type fakeTx struct {
	pgx.Tx
	db          *fakeDB
	pendingBids []*domain.Bid
	pendingAgg  *domain.LotAggregate
}

func (t *fakeTx) Commit(_ context.Context) error {
	t.db.mu.Lock()
	defer t.db.mu.Unlock()
	t.db.bids = append(t.db.bids, t.pendingBids...)
	if t.pendingAgg != nil {
		cp := *t.pendingAgg
		t.db.aggregates[cp.LotID] = &cp
	}
	return nil
}

func (t *fakeTx) Rollback(_ context.Context) error {
	return nil
}

type fakeAggStore struct {
	db *fakeDB
}

func (s *fakeAggStore) Get(_ context.Context, lotID string) (*domain.LotAggregate, error) {
	return s.db.committedAggregate(lotID), nil
}

func (s *fakeAggStore) GetForUpdate(_ context.Context, _ pgx.Tx, lotID string) (*domain.LotAggregate, error) {
	if agg := s.db.committedAggregate(lotID); agg != nil {
		return agg, nil
	}
	return domain.NewLotAggregate(lotID), nil
}

func (s *fakeAggStore) Upsert(_ context.Context, tx pgx.Tx, agg *domain.LotAggregate) error {
	ft := tx.(*fakeTx)
	ft.db.mu.Lock()
	if ft.db.failUpserts > 0 {
		ft.db.failUpserts--
		ft.db.mu.Unlock()
		return &pgconn.PgError{Code: "40001", Message: "serialization failure"}
	}
	ft.db.mu.Unlock()
	cp := *agg
	ft.pendingAgg = &cp
	return nil
}

type fakeLedger struct {
	db        *fakeDB
	insertErr error
}

func (l *fakeLedger) Insert(_ context.Context, tx pgx.Tx, bid *domain.Bid) error {
	if l.insertErr != nil {
		return l.insertErr
	}
	ft := tx.(*fakeTx)
	ft.pendingBids = append(ft.pendingBids, bid)
	return nil
}

func (l *fakeLedger) HasBidder(_ context.Context, _ pgx.Tx, lotID, bidderID string) (bool, error) {
	for _, b := range l.db.committedBids(lotID) {
		if b.BidderID == bidderID {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) HasExactBid(_ context.Context, _ pgx.Tx, lotID, bidderID string, amount decimal.Decimal) (bool, error) {
	for _, b := range l.db.committedBids(lotID) {
		if b.BidderID == bidderID && b.Amount.Equal(amount) {
			return true, nil
		}
	}
	return false, nil
}

func (l *fakeLedger) ListByLot(_ context.Context, lotID string) ([]*domain.Bid, error) {
	return l.db.committedBids(lotID), nil
}

func (l *fakeLedger) CountByLot(_ context.Context, lotID string) (int64, error) {
	return int64(len(l.db.committedBids(lotID))), nil
}

type capturePublisher struct {
	mu     sync.Mutex
	events []BidAcceptedEvent
}

func (p *capturePublisher) PublishBidAccepted(evt BidAcceptedEvent) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, evt)
}

func (p *capturePublisher) captured() []BidAcceptedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]BidAcceptedEvent(nil), p.events...)
}

type failingNotifier struct{}

func (failingNotifier) Send(_ context.Context, _, _, _ string) error {
	return errors.New("smtp unreachable")
}

func newTestUseCase(db *fakeDB) (*PlaceBidUseCase, *capturePublisher) {
	publisher := &capturePublisher{}
	uc := NewPlaceBidUseCase(&fakeAggStore{db: db}, &fakeLedger{db: db}, db, publisher, nil)
	return uc, publisher
}

func bid(lotID, bidderID, amount string) domain.BidRequest {
	return domain.BidRequest{LotID: lotID, BidderID: bidderID, Amount: amount}
}

func TestPlaceBid_EndToEndScenario(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	uc, _ := newTestUseCase(db)

	// A bids 100: first bid creates the aggregate.
	result, err := uc.Execute(ctx, bid("L1", "a@example.com", "100"))
	require.NoError(t, err)
	assert.Equal(t, "100", result.Aggregate.CurrentHighestBid.String())
	assert.Equal(t, int64(1), result.Aggregate.PlaceBidCount)
	assert.Equal(t, int64(1), result.Aggregate.UniqueBidders)

	// B bids 90: below the highest bid.
	_, err = uc.Execute(ctx, bid("L1", "b@example.com", "90"))
	require.ErrorIs(t, err, domain.ErrBidTooLow)

	// B bids 150: accepted, second unique bidder.
	result, err = uc.Execute(ctx, bid("L1", "b@example.com", "150"))
	require.NoError(t, err)
	assert.Equal(t, "150", result.Aggregate.CurrentHighestBid.String())
	assert.Equal(t, int64(2), result.Aggregate.PlaceBidCount)
	assert.Equal(t, int64(2), result.Aggregate.UniqueBidders)

	// A bids 150: a tie is a rejection, not an acceptance.
	_, err = uc.Execute(ctx, bid("L1", "a@example.com", "150"))
	require.ErrorIs(t, err, domain.ErrBidTooLow)

	// A bids 200: accepted, but A is not a new unique bidder.
	result, err = uc.Execute(ctx, bid("L1", "a@example.com", "200"))
	require.NoError(t, err)
	assert.Equal(t, "200", result.Aggregate.CurrentHighestBid.String())
	assert.Equal(t, int64(3), result.Aggregate.PlaceBidCount)
	assert.Equal(t, int64(2), result.Aggregate.UniqueBidders)

	bids := db.committedBids("L1")
	assert.Len(t, bids, 3)
}

func TestPlaceBid_ValidationRejections(t *testing.T) {
	ctx := context.Background()
	uc, _ := newTestUseCase(newFakeDB())

	cases := []struct {
		name string
		req  domain.BidRequest
		want error
	}{
		{"missing lot", bid("", "a@example.com", "100"), domain.ErrMissingField},
		{"missing bidder", bid("L1", "", "100"), domain.ErrMissingField},
		{"missing amount", bid("L1", "a@example.com", ""), domain.ErrMissingField},
		{"non numeric", bid("L1", "a@example.com", "lots of money"), domain.ErrInvalidAmount},
		{"zero", bid("L1", "a@example.com", "0"), domain.ErrInvalidAmount},
		{"negative", bid("L1", "a@example.com", "-10"), domain.ErrInvalidAmount},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := uc.Execute(ctx, tc.req)
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestPlaceBid_DecoratedAmountIsNormalized(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	uc, _ := newTestUseCase(db)

	result, err := uc.Execute(ctx, bid("L1", "a@example.com", "$1,250.50"))
	require.NoError(t, err)
	assert.Equal(t, "1250.5", result.Bid.Amount.String())
	assert.Equal(t, "1250.5", db.committedAggregate("L1").CurrentHighestBid.String())
}

func TestPlaceBid_DuplicateRejected(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	uc, _ := newTestUseCase(db)

	_, err := uc.Execute(ctx, bid("L2", "a@example.com", "100"))
	require.NoError(t, err)

	_, err = uc.Execute(ctx, bid("L2", "a@example.com", "100"))
	require.ErrorIs(t, err, domain.ErrDuplicateBid)

	// The same amount from another bidder is a tie, not a duplicate.
	_, err = uc.Execute(ctx, bid("L2", "b@example.com", "100"))
	require.ErrorIs(t, err, domain.ErrBidTooLow)

	assert.Len(t, db.committedBids("L2"), 1)
	assert.Equal(t, int64(1), db.committedAggregate("L2").PlaceBidCount)
	assert.Equal(t, int64(1), db.committedAggregate("L2").UniqueBidders)
}

// A resubmitted bid reports the duplicate even when newer bids have since
// raised the highest: the equal-amount fast path is the only one deferred to
// the transaction, so a now-too-low duplicate rejects as too low.
func TestPlaceBid_StaleDuplicateRejectsAsTooLow(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	uc, _ := newTestUseCase(db)

	_, err := uc.Execute(ctx, bid("L10", "a@example.com", "100"))
	require.NoError(t, err)
	_, err = uc.Execute(ctx, bid("L10", "b@example.com", "150"))
	require.NoError(t, err)

	_, err = uc.Execute(ctx, bid("L10", "a@example.com", "100"))
	require.ErrorIs(t, err, domain.ErrBidTooLow)

	// The standing highest resubmitted by its own bidder is the duplicate.
	_, err = uc.Execute(ctx, bid("L10", "b@example.com", "150"))
	require.ErrorIs(t, err, domain.ErrDuplicateBid)
	assert.Len(t, db.committedBids("L10"), 2)
}

func TestPlaceBid_SequentialIncreasingBidsAllAccepted(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	uc, _ := newTestUseCase(db)

	const n = 20
	for i := 1; i <= n; i++ {
		_, err := uc.Execute(ctx, bid("L3", fmt.Sprintf("bidder%d@example.com", i), fmt.Sprintf("%d", i*10)))
		require.NoError(t, err)
	}

	agg := db.committedAggregate("L3")
	assert.Equal(t, int64(n), agg.PlaceBidCount)
	assert.Equal(t, int64(n), agg.UniqueBidders)
	assert.Equal(t, fmt.Sprintf("%d", n*10), agg.CurrentHighestBid.String())
}

// The lost-update property: whatever interleaving the scheduler picks, the
// aggregate never diverges from the ledger and the highest bid wins.
func TestPlaceBid_ConcurrentBidsNoLostUpdates(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	uc, _ := newTestUseCase(db)

	const n = 50
	var wg sync.WaitGroup
	var mu sync.Mutex
	acceptedBidders := make(map[string]bool)
	accepted := 0

	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			bidder := fmt.Sprintf("bidder%d@example.com", i)
			_, err := uc.Execute(ctx, bid("L4", bidder, fmt.Sprintf("%d", i)))
			if err != nil {
				// Losing the race is the only legal rejection here.
				assert.ErrorIs(t, err, domain.ErrBidTooLow)
				return
			}
			mu.Lock()
			accepted++
			acceptedBidders[bidder] = true
			mu.Unlock()
		}(i)
	}
	wg.Wait()

	agg := db.committedAggregate("L4")
	require.NotNil(t, agg)
	// Exactly one accepted bid per increment, no lost updates.
	assert.Equal(t, int64(accepted), agg.PlaceBidCount)
	assert.Equal(t, int64(len(acceptedBidders)), agg.UniqueBidders)
	assert.Len(t, db.committedBids("L4"), accepted)
	// The globally highest amount can never lose its race.
	assert.Equal(t, fmt.Sprintf("%d", n), agg.CurrentHighestBid.String())
}

func TestPlaceBid_RetriesTransientConflict(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	db.failUpserts = 1
	uc, _ := newTestUseCase(db)

	result, err := uc.Execute(ctx, bid("L5", "a@example.com", "100"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Aggregate.PlaceBidCount)
	assert.Len(t, db.committedBids("L5"), 1)
}

func TestPlaceBid_RetryExhaustionSurfacesTransientFailure(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	db.failUpserts = maxPlaceBidAttempts
	uc, _ := newTestUseCase(db)

	_, err := uc.Execute(ctx, bid("L6", "a@example.com", "100"))
	require.ErrorIs(t, err, domain.ErrTransientFailure)
	assert.Empty(t, db.committedBids("L6"))
	assert.Nil(t, db.committedAggregate("L6"))
}

func TestPlaceBid_LedgerFailureLeavesNoPartialState(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	publisher := &capturePublisher{}
	ledger := &fakeLedger{db: db, insertErr: errors.New("disk full")}
	uc := NewPlaceBidUseCase(&fakeAggStore{db: db}, ledger, db, publisher, nil)

	_, err := uc.Execute(ctx, bid("L7", "a@example.com", "100"))
	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrTransientFailure)
	assert.Empty(t, db.committedBids("L7"))
	assert.Nil(t, db.committedAggregate("L7"))
	assert.Empty(t, publisher.captured())
}

func TestPlaceBid_NotifierFailureDoesNotAffectOutcome(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	publisher := &capturePublisher{}
	uc := NewPlaceBidUseCase(&fakeAggStore{db: db}, &fakeLedger{db: db}, db, publisher, failingNotifier{})

	result, err := uc.Execute(ctx, bid("L8", "a@example.com", "100"))
	require.NoError(t, err)
	assert.Equal(t, int64(1), result.Aggregate.PlaceBidCount)
}

func TestPlaceBid_FanoutFollowsCommitOrder(t *testing.T) {
	ctx := context.Background()
	db := newFakeDB()
	uc, publisher := newTestUseCase(db)

	const n = 25
	var wg sync.WaitGroup
	for i := 1; i <= n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, _ = uc.Execute(ctx, bid("L9", fmt.Sprintf("bidder%d@example.com", i), fmt.Sprintf("%d", i)))
		}(i)
	}
	wg.Wait()

	events := publisher.captured()
	require.NotEmpty(t, events)
	for i, evt := range events {
		assert.Equal(t, "L9", evt.LotID)
		// Sequence is the post-commit bid count: observers see per-lot
		// events in exactly the order the writes committed.
		assert.Equal(t, int64(i+1), evt.Sequence)
	}
	assert.Equal(t, int64(len(events)), db.committedAggregate("L9").PlaceBidCount)
}
