package httpapi

import (
	"errors"
	"time"

	"github.com/artsense/artsense-server/internal/bidding/application"
	"github.com/artsense/artsense-server/internal/bidding/domain"
	"github.com/gofiber/fiber/v2"
)

// Handler exposes the bidding operations over REST.
type Handler struct {
	service application.BiddingService
}

func NewHandler(service application.BiddingService) *Handler {
	return &Handler{service: service}
}

// RegisterRoutes mounts the bidding routes on the fiber app.
func (h *Handler) RegisterRoutes(app *fiber.App) {
	app.Post("/bids", h.placeBid)
	app.Get("/lots/:lotId/aggregate", h.getLotAggregate)
	app.Get("/lots/:lotId/bids/count", h.getBidCount)
	app.Get("/lots/:lotId/bids", h.listBids)
}

type placeBidRequest struct {
	LotID    string `json:"lot_id"`
	BidderID string `json:"bidder_id"`
	Amount   string `json:"amount"`
}

type placeBidResponse struct {
	BidID     string                      `json:"bid_id"`
	Amount    string                      `json:"amount"`
	PlacedAt  time.Time                   `json:"placed_at"`
	Aggregate application.LotAggregateDTO `json:"aggregate"`
}

func (h *Handler) placeBid(c *fiber.Ctx) error {
	var body placeBidRequest
	if err := c.BodyParser(&body); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "invalid request body"})
	}

	result, err := h.service.PlaceBid(c.Context(), domain.BidRequest{
		LotID:    body.LotID,
		BidderID: body.BidderID,
		Amount:   body.Amount,
	})
	if err != nil {
		return c.Status(statusForBidError(err)).JSON(fiber.Map{"error": err.Error()})
	}

	agg := result.Aggregate
	return c.Status(fiber.StatusCreated).JSON(placeBidResponse{
		BidID:    result.Bid.ID.String(),
		Amount:   result.Bid.Amount.String(),
		PlacedAt: result.Bid.PlacedAt,
		Aggregate: application.LotAggregateDTO{
			LotID:             agg.LotID,
			CurrentHighestBid: agg.CurrentHighestBid.String(),
			PlaceBidCount:     agg.PlaceBidCount,
			UniqueBidders:     agg.UniqueBidders,
			HasBids:           agg.HasBids(),
		},
	})
}

func (h *Handler) getLotAggregate(c *fiber.Ctx) error {
	dto, err := h.service.GetLotAggregate(c.Context(), c.Params("lotId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to load lot aggregate"})
	}
	return c.JSON(dto)
}

func (h *Handler) getBidCount(c *fiber.Ctx) error {
	count, err := h.service.GetBidCount(c.Context(), c.Params("lotId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to count bids"})
	}
	return c.JSON(fiber.Map{"lot_id": c.Params("lotId"), "count": count})
}

func (h *Handler) listBids(c *fiber.Ctx) error {
	bids, err := h.service.ListBids(c.Context(), c.Params("lotId"))
	if err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": "failed to list bids"})
	}
	return c.JSON(bids)
}

// statusForBidError maps domain rejections onto client-error statuses;
// anything else is a server failure.
func statusForBidError(err error) int {
	switch {
	case errors.Is(err, domain.ErrMissingField), errors.Is(err, domain.ErrInvalidAmount):
		return fiber.StatusBadRequest
	case errors.Is(err, domain.ErrBidTooLow), errors.Is(err, domain.ErrDuplicateBid):
		return fiber.StatusConflict
	default:
		return fiber.StatusInternalServerError
	}
}
