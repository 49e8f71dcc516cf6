package websocket

import (
	"encoding/json"

	"github.com/artsense/artsense-server/internal/bidding/application"
	"github.com/artsense/artsense-server/internal/shared/logger"
	"github.com/artsense/artsense-server/internal/shared/websocket"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

// HubPublisher implements application.BidEventPublisher on top of the shared
// hub. Publishing is best-effort; a marshal or enqueue failure is logged and
// the bid outcome is unaffected.
type HubPublisher struct {
	hub *websocket.Hub
}

func NewHubPublisher(hub *websocket.Hub) *HubPublisher {
	return &HubPublisher{hub: hub}
}

func (p *HubPublisher) PublishBidAccepted(evt application.BidAcceptedEvent) {
	msg := ServerBidAcceptedMessage{
		BaseMessage: BaseMessage{Type: MessageTypeServerBidAccepted},
	}
	msg.Payload.LotID = evt.LotID
	msg.Payload.BidID = evt.BidID
	msg.Payload.BidderID = evt.BidderID
	msg.Payload.Amount = evt.Amount.String()
	msg.Payload.PlacedAt = evt.PlacedAt
	msg.Payload.Sequence = evt.Sequence

	data, err := json.Marshal(msg)
	if err != nil {
		log.Error("failed to marshal bid accepted event",
			zap.String("lotID", evt.LotID),
			zap.Error(err),
		)
		return
	}
	p.hub.BroadcastToLot(evt.LotID, data)
}
