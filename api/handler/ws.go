package handler

import (
	"github.com/fasthttp/websocket"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"github.com/progresssync/backend/internal/realtime"
)

// WSHandler upgrades HTTP requests into realtime sessions. The read loop runs
// on the upgrader's goroutine; outbound frames go through the hub.
type WSHandler struct {
	hub      *realtime.Hub
	protocol *realtime.Protocol
	upgrader websocket.FastHTTPUpgrader
	logger   *zap.Logger
}

func NewWSHandler(hub *realtime.Hub, protocol *realtime.Protocol, logger *zap.Logger) *WSHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &WSHandler{
		hub:      hub,
		protocol: protocol,
		upgrader: websocket.FastHTTPUpgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			CheckOrigin:     func(ctx *fasthttp.RequestCtx) bool { return true },
		},
		logger: logger,
	}
}

// Serve upgrades the connection and pumps inbound frames until the peer hangs
// up, then runs the disconnect transition so room rosters stay accurate.
func (h *WSHandler) Serve(ctx *fasthttp.RequestCtx) {
	err := h.upgrader.Upgrade(ctx, func(ws *websocket.Conn) {
		conn := realtime.NewConnection(ws)
		h.hub.Attach(conn)
		defer func() {
			h.protocol.HandleDisconnect(conn.ID)
			h.hub.Detach(conn.ID)
			conn.Close(websocket.CloseNormalClosure, "session ended")
		}()

		h.logger.Debug("websocket session opened", zap.String("connection_id", conn.ID))

		for {
			messageType, data, err := ws.ReadMessage()
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
					h.logger.Debug("websocket read failed",
						zap.String("connection_id", conn.ID),
						zap.Error(err))
				}
				return
			}
			if messageType != websocket.TextMessage {
				continue
			}
			h.protocol.HandleFrame(conn.ID, data)
		}
	})
	if err != nil {
		h.logger.Warn("websocket upgrade failed", zap.Error(err))
	}
}
