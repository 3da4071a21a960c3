package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/arifsuz/pre-shipment-system/internal/pse/sse"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const sseHeartbeat = 30 * time.Second

// SSEHandler streams shipment and memo events.
type SSEHandler struct {
	hub    *sse.Hub
	logger *zap.Logger
}

func NewSSEHandler(hub *sse.Hub, logger *zap.Logger) *SSEHandler {
	return &SSEHandler{hub: hub, logger: logger}
}

// Stream
// GET /api/events?token=xxx
func (h *SSEHandler) Stream(c *gin.Context) {
	if h.hub == nil {
		Error(c, http.StatusServiceUnavailable, "Event stream is not available")
		return
	}

	userID := GetUserID(c)
	clientID := fmt.Sprintf("%s_%d", userID, time.Now().UnixNano())
	client := &sse.Client{
		ID:     clientID,
		UserID: userID,
		Events: make(chan sse.Event, 64),
	}
	h.hub.Register(client)

	c.Writer.Header().Set("Content-Type", "text/event-stream")
	c.Writer.Header().Set("Cache-Control", "no-cache")
	c.Writer.Header().Set("Connection", "keep-alive")
	c.Writer.Header().Set("X-Accel-Buffering", "no")

	c.Writer.WriteString("event: connected\ndata: {\"client_id\":\"" + clientID + "\"}\n\n")
	c.Writer.Flush()

	heartbeat := time.NewTicker(sseHeartbeat)
	defer heartbeat.Stop()

	clientGone := c.Request.Context().Done()
	for {
		select {
		case <-clientGone:
			h.hub.Unregister(clientID)
			return
		case event, ok := <-client.Events:
			if !ok {
				return
			}
			if _, err := fmt.Fprintf(c.Writer, "event: %s\ndata: %s\n\n", event.EventType, event.Data); err != nil {
				h.logger.Debug("sse write failed", zap.String("client_id", clientID), zap.Error(err))
				h.hub.Unregister(clientID)
				return
			}
			c.Writer.Flush()
		case <-heartbeat.C:
			c.Writer.WriteString(": keepalive\n\n")
			c.Writer.Flush()
		}
	}
}
