package http

import (
	"context"
	"time"

	"github.com/gofiber/contrib/websocket"
	fiber "github.com/gofiber/fiber/v2"
)

func (r *Router) registerStream(v1 fiber.Router) {
	v1.Use("/owners/:owner_id/stream", func(c *fiber.Ctx) error {
		if websocket.IsWebSocketUpgrade(c) {
			return c.Next()
		}
		return fiber.ErrUpgradeRequired
	})
	v1.Get("/owners/:owner_id/stream", websocket.New(r.streamSnapshots))
}

// streamSnapshots pushes every published valuation state for the owner scope
// over a websocket, starting with the current one. The connection shares the
// scope's single reconciler; closing the socket only drops this listener.
func (r *Router) streamSnapshots(conn *websocket.Conn) {
	defer conn.Close()

	ownerID := conn.Params("owner_id")
	if ownerID == "" {
		_ = conn.WriteJSON(fiber.Map{"error": "owner_id required"})
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	rec, err := r.reconciler.Get(ctx, ownerID)
	cancel()
	if err != nil {
		_ = conn.WriteJSON(fiber.Map{"error": err.Error()})
		return
	}

	states, stop := rec.Listen()
	defer stop()

	// Read pump: we never expect client messages, but reading is how the
	// close handshake surfaces.
	closed := make(chan struct{})
	go func() {
		defer close(closed)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()

	for {
		select {
		case <-closed:
			return
		case state, ok := <-states:
			if !ok {
				return
			}
			if err := conn.WriteJSON(state); err != nil {
				return
			}
		}
	}
}
