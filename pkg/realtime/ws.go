package realtime

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	wsWriteTimeout = 10 * time.Second

	// EventOnlineUsers names the message pushed on every count change.
	EventOnlineUsers = "onlineUsers"
)

type Message struct {
	Event string `json:"event"`
	Count int    `json:"count"`
}

// ServeWS upgrades the request and streams the online count until the
// client goes away. Any origin is accepted.
func (h *Hub) ServeWS(w http.ResponseWriter, r *http.Request) {
	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{OriginPatterns: []string{"*"}})
	if err != nil {
		log.Debug().Err(err).Msg("ws accept failed")
		return
	}
	defer conn.Close(websocket.StatusNormalClosure, "bye")

	sub := h.Join()
	log.Info().Int("online", h.Count()).Msg("👤 user connected")
	defer func() {
		h.Leave(sub)
		log.Info().Int("online", h.Count()).Msg("👋 user disconnected")
	}()

	// clients never send anything; CloseRead cancels ctx once they hang up
	ctx := conn.CloseRead(r.Context())
	for {
		select {
		case <-ctx.Done():
			return
		case n := <-sub.C:
			if err := writeCount(ctx, conn, n); err != nil {
				if websocket.CloseStatus(err) == -1 && ctx.Err() == nil {
					log.Warn().Err(err).Msg("ws write failed")
				}
				return
			}
		}
	}
}

func writeCount(ctx context.Context, conn *websocket.Conn, n int) error {
	writeCtx, cancel := context.WithTimeout(ctx, wsWriteTimeout)
	defer cancel()
	return wsjson.Write(writeCtx, conn, Message{Event: EventOnlineUsers, Count: n})
}
