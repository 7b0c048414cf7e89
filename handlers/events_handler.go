package handlers

import (
	"time"

	"github.com/anjiri1684/enrollment_service/events"
	"github.com/anjiri1684/enrollment_service/logger"
	"github.com/anjiri1684/enrollment_service/middleware"
	"github.com/gofiber/contrib/websocket"
	"github.com/gofiber/fiber/v2"
)

const authTimeout = 10 * time.Second

// AuthMessage must be the first frame on a new connection. Browsers cannot
// set an Authorization header on the upgrade request.
type AuthMessage struct {
	Type  string `json:"type"`
	Token string `json:"token"`
}

type EventsHandler struct {
	hub       *events.Hub
	jwtSecret string
	log       *logger.Logger
}

func NewEventsHandler(hub *events.Hub, jwtSecret string, log *logger.Logger) *EventsHandler {
	return &EventsHandler{hub: hub, jwtSecret: jwtSecret, log: log}
}

// Upgrade rejects plain HTTP requests before they reach Stream.
func (h *EventsHandler) Upgrade(c *fiber.Ctx) error {
	if !websocket.IsWebSocketUpgrade(c) {
		return fiber.ErrUpgradeRequired
	}
	return c.Next()
}

func (h *EventsHandler) Stream() fiber.Handler {
	return websocket.New(func(conn *websocket.Conn) {
		defer conn.Close()

		_ = conn.SetReadDeadline(time.Now().Add(authTimeout))
		var auth AuthMessage
		if err := conn.ReadJSON(&auth); err != nil || auth.Type != "auth" {
			h.log.Debug("event stream auth failed", "error", err)
			_ = conn.WriteJSON(fiber.Map{"type": "error", "error": "Invalid or missing auth message"})
			return
		}
		req, err := middleware.ParseRequester(h.jwtSecret, auth.Token)
		if err != nil {
			h.log.Debug("event stream token rejected", "error", err)
			_ = conn.WriteJSON(fiber.Map{"type": "error", "error": "Invalid token"})
			return
		}
		_ = conn.SetReadDeadline(time.Time{})

		sub, ok := h.hub.Subscribe(req)
		if !ok {
			return
		}
		defer h.hub.Unsubscribe(sub)
		if err := conn.WriteJSON(fiber.Map{"type": "subscribed"}); err != nil {
			return
		}

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
			case e, ok := <-sub.Events():
				if !ok {
					return
				}
				if err := conn.WriteJSON(e); err != nil {
					h.log.Debug("event write failed", "requester_id", req.ID, "error", err)
					return
				}
			case <-closed:
				return
			}
		}
	})
}
