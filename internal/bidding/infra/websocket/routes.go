package websocket

import (
	"context"

	"github.com/artsense/artsense-server/internal/shared/websocket"
	"github.com/gofiber/fiber/v2"
	fiberws "github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
)

// RegisterRoutes mounts the live-bidding subscription endpoints:
// GET /ws/lots/:lotId streams one lot, GET /ws/lots streams every lot.
func RegisterRoutes(ctx context.Context, app *fiber.App, hub *websocket.Hub, handler *BiddingWSHandler) {
	app.Use("/ws", func(c *fiber.Ctx) error {
		if fiberws.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})

	app.Get("/ws/lots", fiberws.New(func(conn *fiberws.Conn) {
		serveClient(ctx, conn, hub, handler, websocket.AllLots)
	}))

	app.Get("/ws/lots/:lotId", fiberws.New(func(conn *fiberws.Conn) {
		serveClient(ctx, conn, hub, handler, conn.Params("lotId"))
	}))
}

// serveClient registers the connection with the hub, pushes the initial lot
// state and runs the pumps. Blocks until the connection drops or ctx ends.
func serveClient(ctx context.Context, conn *fiberws.Conn, hub *websocket.Hub, handler *BiddingWSHandler, lotID string) {
	client := &websocket.Client{
		Hub:   hub,
		Conn:  conn,
		Send:  make(chan []byte, 64),
		LotID: lotID,
		ID:    uuid.NewString(),
	}
	hub.RegisterClient(client)
	handler.SendInitialState(ctx, client)

	go client.WritePump(ctx)
	client.ReadPump(ctx)
}
