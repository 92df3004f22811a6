package rest

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
)

// Subscriber streams raw event payloads published on channels.
type Subscriber interface {
	Subscribe(ctx context.Context, channels ...string) (<-chan []byte, error)
}

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

type socketRequest struct {
	Type     string   `json:"type"`
	Channels []string `json:"channels"`
}

// handleRealtime relays pub/sub events to a websocket client. The client
// sends {"type":"listen","channels":[...]} to (re)select its channels and
// {"type":"h"} as a heartbeat.
func (h *Handler) handleRealtime(c echo.Context) error {
	if h.signal == nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"error": "realtime is not configured"})
	}

	ws, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		slog.Error(
			"Failed to upgrade WebSocket",
			slog.String("error", err.Error()),
			slog.String("module", "socket"),
		)
		return err
	}
	defer ws.Close()

	ctx, cancel := context.WithCancel(c.Request().Context())
	defer cancel()

	requests := make(chan socketRequest)
	go func() {
		defer cancel()
		for {
			var req socketRequest
			err := ws.ReadJSON(&req)
			if err != nil {
				if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
					slog.DebugContext(
						ctx, "WebSocket closed",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
				}
				return
			}
			select {
			case requests <- req:
			case <-ctx.Done():
				return
			}
		}
	}()

	var events <-chan []byte
	stopSub := func() {}
	defer func() { stopSub() }()

	for {
		select {
		case <-ctx.Done():
			return nil
		case req := <-requests:
			switch req.Type {
			case "listen":
				if len(req.Channels) == 0 {
					if err := ws.WriteJSON(echo.Map{"type": "error", "error": "channels is required"}); err != nil {
						return nil
					}
					continue
				}
				stopSub()
				subCtx, subCancel := context.WithCancel(ctx)
				stream, err := h.signal.Subscribe(subCtx, req.Channels...)
				if err != nil {
					subCancel()
					slog.ErrorContext(
						ctx, "Failed to subscribe",
						slog.String("error", err.Error()),
						slog.String("module", "socket"),
					)
					return nil
				}
				stopSub = subCancel
				events = stream
				slog.DebugContext(
					ctx, "Socket subscribe",
					slog.Any("channels", req.Channels),
					slog.String("module", "socket"),
				)
			case "h":
			default:
				slog.InfoContext(
					ctx, "Unknown request type",
					slog.String("type", req.Type),
					slog.String("module", "socket"),
				)
			}
		case msg, ok := <-events:
			if !ok {
				events = nil
				continue
			}
			if err := ws.WriteMessage(websocket.TextMessage, msg); err != nil {
				slog.ErrorContext(
					ctx, "Error writing message",
					slog.String("error", err.Error()),
					slog.String("module", "socket"),
				)
				return nil
			}
		}
	}
}
