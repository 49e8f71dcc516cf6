package domain

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func aggregateWith(highest string, count int64) *LotAggregate {
	return &LotAggregate{
		LotID:             "L1",
		CurrentHighestBid: decimal.RequireFromString(highest),
		PlaceBidCount:     count,
		UniqueBidders:     count,
	}
}

func TestValidateBid_MissingFields(t *testing.T) {
	cases := []BidRequest{
		{LotID: "", BidderID: "a@example.com", Amount: "100"},
		{LotID: "L1", BidderID: "", Amount: "100"},
		{LotID: "L1", BidderID: "a@example.com", Amount: ""},
		{LotID: "  ", BidderID: "a@example.com", Amount: "100"},
	}
	for _, req := range cases {
		_, err := ValidateBid(req, nil)
		assert.ErrorIs(t, err, ErrMissingField)
	}
}

func TestValidateBid_FirstBidAccepted(t *testing.T) {
	req := BidRequest{LotID: "L1", BidderID: "a@example.com", Amount: "100"}

	amount, err := ValidateBid(req, nil)
	require.NoError(t, err)
	assert.Equal(t, "100", amount.String())

	// A zero-valued aggregate (lot row exists, no bids counted) behaves the
	// same as no aggregate at all.
	amount, err = ValidateBid(req, NewLotAggregate("L1"))
	require.NoError(t, err)
	assert.Equal(t, "100", amount.String())
}

func TestValidateBid_StrictImprovement(t *testing.T) {
	agg := aggregateWith("100", 1)

	_, err := ValidateBid(BidRequest{LotID: "L1", BidderID: "b@example.com", Amount: "90"}, agg)
	assert.ErrorIs(t, err, ErrBidTooLow)

	// A tie is a rejection, not an acceptance.
	_, err = ValidateBid(BidRequest{LotID: "L1", BidderID: "b@example.com", Amount: "100"}, agg)
	assert.ErrorIs(t, err, ErrBidTooLow)

	amount, err := ValidateBid(BidRequest{LotID: "L1", BidderID: "b@example.com", Amount: "100.01"}, agg)
	require.NoError(t, err)
	assert.Equal(t, "100.01", amount.String())
}

func TestLotAggregate_ApplyBid(t *testing.T) {
	agg := NewLotAggregate("L1")
	assert.False(t, agg.HasBids())

	agg.ApplyBid(decimal.RequireFromString("100"), true)
	assert.True(t, agg.HasBids())
	assert.Equal(t, int64(1), agg.PlaceBidCount)
	assert.Equal(t, int64(1), agg.UniqueBidders)

	// Same bidder again: count moves, unique does not.
	agg.ApplyBid(decimal.RequireFromString("150"), false)
	assert.Equal(t, int64(2), agg.PlaceBidCount)
	assert.Equal(t, int64(1), agg.UniqueBidders)
	assert.Equal(t, "150", agg.CurrentHighestBid.String())
}
