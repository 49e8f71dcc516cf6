package httpapi

import (
	"context"
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/artsense/artsense-server/internal/bidding/application"
	"github.com/artsense/artsense-server/internal/bidding/domain"
	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// stubService scripts the bidding service outcomes for handler tests.
type stubService struct {
	placeErr error
	result   *application.PlaceBidResult
	dto      *application.LotAggregateDTO
	count    int64
	bids     []*application.BidDTO
}

func (s *stubService) PlaceBid(_ context.Context, _ domain.BidRequest) (*application.PlaceBidResult, error) {
	if s.placeErr != nil {
		return nil, s.placeErr
	}
	return s.result, nil
}

func (s *stubService) GetLotAggregate(_ context.Context, _ string) (*application.LotAggregateDTO, error) {
	return s.dto, nil
}

func (s *stubService) GetBidCount(_ context.Context, _ string) (int64, error) {
	return s.count, nil
}

func (s *stubService) ListBids(_ context.Context, _ string) ([]*application.BidDTO, error) {
	return s.bids, nil
}

func newTestApp(svc application.BiddingService) *fiber.App {
	app := fiber.New()
	NewHandler(svc).RegisterRoutes(app)
	return app
}

func postBid(t *testing.T, app *fiber.App, body string) (int, map[string]any) {
	t.Helper()
	req := httptest.NewRequest("POST", "/bids", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	var decoded map[string]any
	require.NoError(t, json.Unmarshal(raw, &decoded))
	return resp.StatusCode, decoded
}

func acceptedResult() *application.PlaceBidResult {
	amount, _ := domain.ParseAmount("150")
	bid := domain.NewBid("L1", "a@example.com", amount, time.Now().UTC())
	agg := domain.NewLotAggregate("L1")
	agg.ApplyBid(amount, true)
	return &application.PlaceBidResult{Bid: bid, Aggregate: *agg}
}

func TestPlaceBidHandler_Accepted(t *testing.T) {
	app := newTestApp(&stubService{result: acceptedResult()})

	status, body := postBid(t, app, `{"lot_id":"L1","bidder_id":"a@example.com","amount":"150"}`)
	assert.Equal(t, fiber.StatusCreated, status)
	assert.NotEmpty(t, body["bid_id"])
	assert.Equal(t, "150", body["amount"])

	agg, ok := body["aggregate"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "150", agg["current_highest_bid"])
	assert.Equal(t, float64(1), agg["place_bid_count"])
}

func TestPlaceBidHandler_ErrorStatusMapping(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want int
	}{
		{"missing field", domain.ErrMissingField, fiber.StatusBadRequest},
		{"invalid amount", domain.ErrInvalidAmount, fiber.StatusBadRequest},
		{"bid too low", domain.ErrBidTooLow, fiber.StatusConflict},
		{"duplicate", domain.ErrDuplicateBid, fiber.StatusConflict},
		{"transient failure", domain.ErrTransientFailure, fiber.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			app := newTestApp(&stubService{placeErr: tc.err})
			status, body := postBid(t, app, `{"lot_id":"L1","bidder_id":"a@example.com","amount":"150"}`)
			assert.Equal(t, tc.want, status)
			assert.NotEmpty(t, body["error"])
		})
	}
}

func TestGetLotAggregateHandler_NoBidsYet(t *testing.T) {
	app := newTestApp(&stubService{dto: &application.LotAggregateDTO{
		LotID:             "L1",
		CurrentHighestBid: "0",
		HasBids:           false,
	}})

	req := httptest.NewRequest("GET", "/lots/L1/aggregate", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var dto application.LotAggregateDTO
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&dto))
	assert.Equal(t, "L1", dto.LotID)
	assert.False(t, dto.HasBids)
	assert.Equal(t, "0", dto.CurrentHighestBid)
}

func TestGetBidCountHandler(t *testing.T) {
	app := newTestApp(&stubService{count: 7})

	req := httptest.NewRequest("GET", "/lots/L1/bids/count", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	var body map[string]any
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, float64(7), body["count"])
	assert.Equal(t, "L1", body["lot_id"])
}
