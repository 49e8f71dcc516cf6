package websocket

import (
	"context"
	"encoding/json"

	"github.com/artsense/artsense-server/internal/bidding/application"
	"github.com/artsense/artsense-server/internal/bidding/domain"
	"github.com/artsense/artsense-server/internal/shared/websocket"
)

// BiddingWSHandler processes inbound hub messages that belong to the bidding
// module: for now, bids placed over an open connection.
type BiddingWSHandler struct {
	service application.BiddingService
	hub     *websocket.Hub
}

func NewBiddingWSHandler(service application.BiddingService, hub *websocket.Hub) *BiddingWSHandler {
	return &BiddingWSHandler{
		service: service,
		hub:     hub,
	}
}

// ListenForMessages consumes the hub's inbound channel until ctx is cancelled.
// Runs in its own goroutine.
func (h *BiddingWSHandler) ListenForMessages(ctx context.Context) {
	log.Info("BiddingWSHandler started listening for inbound messages")
	for {
		select {
		case <-ctx.Done():
			log.Info("BiddingWSHandler stopped listening for inbound messages")
			return
		case msg := <-h.hub.InboundMessages:
			go h.processMessage(ctx, msg.Client, msg.Data)
		}
	}
}

func (h *BiddingWSHandler) processMessage(ctx context.Context, client *websocket.Client, data []byte) {
	var baseMsg BaseMessage
	if err := json.Unmarshal(data, &baseMsg); err != nil {
		h.sendErrorToClient(client, "invalid message format")
		return
	}
	switch baseMsg.Type {
	case MessageTypeClientBid:
		h.handleClientBid(ctx, client, data)
	default:
		h.sendErrorToClient(client, "unknown message type")
	}
}

func (h *BiddingWSHandler) handleClientBid(ctx context.Context, client *websocket.Client, data []byte) {
	var bidMsg ClientBidMessage
	if err := json.Unmarshal(data, &bidMsg); err != nil {
		h.sendErrorToClient(client, "invalid bid message format")
		return
	}

	// A client subscribed to one lot may only bid on that lot; all-lots
	// observers name the lot in the payload.
	if client.LotID != websocket.AllLots && bidMsg.Payload.LotID != client.LotID {
		h.sendErrorToClient(client, "lot ID mismatch")
		return
	}

	_, err := h.service.PlaceBid(ctx, domain.BidRequest{
		LotID:    bidMsg.Payload.LotID,
		BidderID: bidMsg.Payload.BidderID,
		Amount:   bidMsg.Payload.Amount,
	})
	if err != nil {
		// Rejections go back to the submitter only; acceptance reaches
		// everyone through the publisher's broadcast.
		h.sendErrorToClient(client, err.Error())
		return
	}
}

// SendInitialState pushes the lot's current aggregate to a newly connected
// client. All-lots observers get no initial snapshot.
func (h *BiddingWSHandler) SendInitialState(ctx context.Context, client *websocket.Client) {
	if client.LotID == websocket.AllLots {
		return
	}
	dto, err := h.service.GetLotAggregate(ctx, client.LotID)
	if err != nil {
		h.sendErrorToClient(client, "failed to load lot state")
		return
	}

	msg := ServerInitialStateMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerInitialState},
	}
	msg.Payload.LotID = dto.LotID
	msg.Payload.CurrentHighestBid = dto.CurrentHighestBid
	msg.Payload.PlaceBidCount = dto.PlaceBidCount
	msg.Payload.UniqueBidders = dto.UniqueBidders
	msg.Payload.HasBids = dto.HasBids

	data, err := json.Marshal(msg)
	if err != nil {
		return
	}
	select {
	case client.Send <- data:
	default:
	}
}

func (h *BiddingWSHandler) sendErrorToClient(client *websocket.Client, errorMessage string) {
	errMsg := ServerErrorMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerError},
	}
	errMsg.Payload.Error = errorMessage
	data, err := json.Marshal(errMsg)
	if err != nil {
		return
	}
	select {
	case client.Send <- data:
	default:
		log.Warn("client send channel full or closed, could not send error msg")
	}
}
