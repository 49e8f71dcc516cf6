package websocket

import (
	"context"
	"time"

	"github.com/artsense/artsense-server/internal/shared/logger"
	"github.com/gofiber/websocket/v2"
	"go.uber.org/zap"
)

var log = logger.GetLogger()

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second

	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer.
	maxMessageSize = 512
)

// AllLots is the group key for observers subscribed to every lot.
const AllLots = "*"

// Hub owns the observer registry and serializes all mutation and broadcast
// through its run loop, so no other synchronization is needed around the
// client maps. Clients are grouped by lot ID; the AllLots group receives
// every broadcast.
type Hub struct {
	clients map[string]map[*Client]bool
	// Outbound events, delivered FIFO per lot.
	broadcast  chan *Message
	register   chan *Client
	unregister chan *Client
	// InboundMessages is consumed by module-specific handlers (the bidding
	// websocket handler listens here for client bids).
	InboundMessages chan *ClientMessage
}

// Client represents one websocket connection subscribed to a lot (or to
// AllLots).
type Client struct {
	Hub  *Hub
	Conn *websocket.Conn
	// Buffered channel of outbound messages.
	Send  chan []byte
	LotID string
	ID    string
}

type Message struct {
	LotID string
	Data  []byte
}

// ClientMessage wraps an inbound payload together with the client it came from.
type ClientMessage struct {
	Client *Client
	Data   []byte
}

func NewHub() *Hub {
	return &Hub{
		broadcast:       make(chan *Message, 256),
		register:        make(chan *Client),
		unregister:      make(chan *Client),
		clients:         make(map[string]map[*Client]bool),
		InboundMessages: make(chan *ClientMessage, 64),
	}
}

// Run starts the hub loop. Must run in its own goroutine; it exits and tears
// down every client when ctx is cancelled.
func (h *Hub) Run(ctx context.Context) {
	log.Info("WebSocket hub started")
	for {
		select {
		case <-ctx.Done():
			log.Info("WebSocket hub shutting down")
			for lotID, clients := range h.clients {
				for client := range clients {
					close(client.Send)
				}
				delete(h.clients, lotID)
			}
			return

		case client := <-h.register:
			if _, ok := h.clients[client.LotID]; !ok {
				h.clients[client.LotID] = make(map[*Client]bool)
			}
			h.clients[client.LotID][client] = true
			log.Info("Client registered",
				zap.String("clientID", client.ID),
				zap.String("lotID", client.LotID),
			)

		case client := <-h.unregister:
			if clients, ok := h.clients[client.LotID]; ok {
				if _, ok := clients[client]; ok {
					delete(clients, client)
					close(client.Send)
					log.Info("Client unregistered",
						zap.String("clientID", client.ID),
						zap.String("lotID", client.LotID),
					)
					if len(clients) == 0 {
						delete(h.clients, client.LotID)
					}
				}
			}

		case message := <-h.broadcast:
			h.deliver(h.clients[message.LotID], message.Data)
			if message.LotID != AllLots {
				h.deliver(h.clients[AllLots], message.Data)
			}
		}
	}
}

// deliver pushes data to every client in the group. A client whose send
// buffer is full is dropped on the spot; a slow observer must never block
// bid placement.
func (h *Hub) deliver(clients map[*Client]bool, data []byte) {
	for client := range clients {
		select {
		case client.Send <- data:
		default:
			close(client.Send)
			delete(clients, client)
			log.Warn("Client send buffer full, dropping observer",
				zap.String("clientID", client.ID),
				zap.String("lotID", client.LotID),
			)
		}
	}
}

// RegisterClient registers a new client in the hub.
func (h *Hub) RegisterClient(client *Client) {
	h.register <- client
}

// UnregisterClient removes a client from the hub.
func (h *Hub) UnregisterClient(client *Client) {
	select {
	case h.unregister <- client:
	default:
		// Hub is shutting down; its teardown closes the client anyway.
	}
}

// BroadcastToLot queues a message for every observer of lotID and every
// all-lots observer. Best-effort: if the hub cannot keep up the message is
// dropped, never blocking the caller.
func (h *Hub) BroadcastToLot(lotID string, data []byte) {
	select {
	case h.broadcast <- &Message{LotID: lotID, Data: data}:
	default:
		log.Error("Broadcast channel is full, message dropped", zap.String("lotID", lotID))
	}
}

// ReadPump reads messages from the peer and forwards them to the hub's
// inbound channel. Runs as one goroutine per connection.
func (c *Client) ReadPump(ctx context.Context) {
	defer func() {
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()
	c.Conn.SetReadLimit(maxMessageSize)
	c.Conn.SetReadDeadline(time.Now().Add(pongWait))
	c.Conn.SetPongHandler(func(string) error { c.Conn.SetReadDeadline(time.Now().Add(pongWait)); return nil })

	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Error("WebSocket read error",
					zap.String("clientID", c.ID),
					zap.String("lotID", c.LotID),
					zap.Error(err),
				)
			}
			break
		}

		select {
		case c.Hub.InboundMessages <- &ClientMessage{Client: c, Data: message}:
		default:
			log.Error("Hub inbound channel is full, dropping message",
				zap.String("clientID", c.ID),
				zap.String("lotID", c.LotID),
			)
		}
	}
}

// WritePump pumps messages from the hub to the websocket connection. Runs as
// one goroutine per connection; it is the single writer for the connection.
func (c *Client) WritePump(ctx context.Context) {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Hub.UnregisterClient(c)
		c.Conn.Close()
	}()

	for {
		select {
		case <-ctx.Done():
			_ = c.Conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""), time.Now().Add(writeWait))
			return

		case message, ok := <-c.Send:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				_ = c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
				log.Error("Failed to write message to client",
					zap.String("clientID", c.ID),
					zap.String("lotID", c.LotID),
					zap.Error(err),
				)
				return
			}

		case <-ticker.C:
			c.Conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.Conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return
			}
		}
	}
}
