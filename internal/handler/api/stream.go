package api

import (
	"net/http"
	"time"

	models "SignalPipe/internal/domain/models"
	"SignalPipe/internal/hub"
	xlogger "SignalPipe/pkg/logger"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 25 * time.Second
	pongWait   = 60 * time.Second
)

// StreamHandler upgrades clients to WebSocket and streams accepted signals
// as they are published.
type StreamHandler struct {
	logger   *xlogger.Logger
	hub      *hub.Hub
	upgrader websocket.Upgrader
}

func NewStreamHandler(logger *xlogger.Logger, h *hub.Hub) *StreamHandler {
	return &StreamHandler{
		logger: logger,
		hub:    h,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 4096,
			CheckOrigin:     func(r *http.Request) bool { return true },
		},
	}
}

func (h *StreamHandler) RegisterRoutes(e *echo.Echo) {
	e.GET("/signals/stream", h.Stream)
}

// Stream registers a push subscriber for the lifetime of the connection.
// The first frame carries the assigned subscriber id; every later frame is
// one validated signal. Incoming frames and pongs count as heartbeats.
func (h *StreamHandler) Stream(c echo.Context) error {
	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	sub := h.hub.Registry().Connect(models.TransportPush)
	defer h.hub.Registry().Disconnect(sub.ID)
	defer conn.Close()

	hello := map[string]string{"subscriberId": sub.ID}
	conn.SetWriteDeadline(time.Now().Add(writeWait))
	if err := conn.WriteJSON(hello); err != nil {
		return nil
	}

	done := make(chan struct{})
	go h.readLoop(conn, sub.ID, done)

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case sig, ok := <-sub.Out():
			if !ok {
				// expired by the registry sweep
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				_ = conn.WriteMessage(websocket.CloseMessage,
					websocket.FormatCloseMessage(websocket.CloseGoingAway, "subscription expired"))
				return nil
			}
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteJSON(sig); err != nil {
				return nil
			}
		case <-ticker.C:
			conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return nil
			}
		case <-done:
			return nil
		}
	}
}

func (h *StreamHandler) readLoop(conn *websocket.Conn, subscriberID string, done chan struct{}) {
	defer close(done)

	conn.SetReadLimit(4096)
	conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		conn.SetReadDeadline(time.Now().Add(pongWait))
		h.hub.Registry().Heartbeat(subscriberID)
		return nil
	})

	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				h.logger.Debug("stream read error",
					xlogger.String("subscriber", subscriberID),
					xlogger.Error(err),
				)
			}
			return
		}
		// any client frame refreshes liveness
		conn.SetReadDeadline(time.Now().Add(pongWait))
		h.hub.Registry().Heartbeat(subscriberID)
	}
}
