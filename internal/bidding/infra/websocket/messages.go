package websocket

import (
	"time"

	"github.com/google/uuid"
)

// MessageType identifies a websocket payload.
type MessageType string

const (
	MessageTypeClientBid          MessageType = "client_bid"           // client places a bid
	MessageTypeServerBidAccepted  MessageType = "server_bid_accepted"  // broadcast after a bid commits
	MessageTypeServerError        MessageType = "server_error"         // rejection or failure for one client
	MessageTypeServerInitialState MessageType = "server_initial_state" // lot summary sent on connect
)

// BaseMessage carries the type discriminator shared by all payloads.
type BaseMessage struct {
	Type MessageType `json:"type"`
}

// ClientBidMessage is a bid submitted over an open connection.
type ClientBidMessage struct {
	BaseMessage
	Payload struct {
		LotID    string `json:"lot_id"`
		BidderID string `json:"bidder_id"`
		Amount   string `json:"amount"`
	} `json:"payload"`
}

// ServerBidAcceptedMessage is fanned out to every observer of the lot (and
// to all-lots observers) in commit order; sequence is the lot's accepted-bid
// count after this bid.
type ServerBidAcceptedMessage struct {
	BaseMessage
	Payload struct {
		LotID    string    `json:"lot_id"`
		BidID    uuid.UUID `json:"bid_id"`
		BidderID string    `json:"bidder_id"`
		Amount   string    `json:"amount"`
		PlacedAt time.Time `json:"placed_at"`
		Sequence int64     `json:"sequence"`
	} `json:"payload"`
}

type ServerErrorMessage struct {
	BaseMessage
	Payload struct {
		Error string `json:"error"`
	} `json:"payload"`
}

// ServerInitialStateMessage gives a newly connected observer the current
// aggregate so it can render before the first broadcast arrives.
type ServerInitialStateMessage struct {
	BaseMessage
	Payload struct {
		LotID             string `json:"lot_id"`
		CurrentHighestBid string `json:"current_highest_bid"`
		PlaceBidCount     int64  `json:"place_bid_count"`
		UniqueBidders     int64  `json:"unique_bidders"`
		HasBids           bool   `json:"has_bids"`
	} `json:"payload"`
}
