package sse

import (
	"encoding/json"
	"sync"

	"go.uber.org/zap"
)

// Event is one server-sent event.
type Event struct {
	EventType string `json:"event"`
	Data      string `json:"data"`
}

// Client is a connected event-stream subscriber.
type Client struct {
	ID     string
	UserID string
	Events chan Event
}

// Hub fans events out to connected clients. A nil *Hub drops everything,
// so callers that run without a stream do not need a guard.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	logger  *zap.Logger
}

func NewHub(logger *zap.Logger) *Hub {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Hub{
		clients: make(map[string]*Client),
		logger:  logger,
	}
}

// Register adds a client.
func (h *Hub) Register(client *Client) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[client.ID] = client
	h.logger.Debug("sse client registered",
		zap.String("client_id", client.ID),
		zap.String("user_id", client.UserID),
		zap.Int("total", len(h.clients)))
}

// Unregister removes a client and closes its channel.
func (h *Hub) Unregister(clientID string) {
	if h == nil {
		return
	}
	h.mu.Lock()
	defer h.mu.Unlock()
	if client, ok := h.clients[clientID]; ok {
		close(client.Events)
		delete(h.clients, clientID)
		h.logger.Debug("sse client unregistered", zap.String("client_id", clientID), zap.Int("total", len(h.clients)))
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	if h == nil {
		return 0
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Broadcast sends an event to every client. Clients with a full buffer miss it.
func (h *Hub) Broadcast(event Event) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for _, client := range h.clients {
		select {
		case client.Events <- event:
		default:
			h.logger.Warn("sse client buffer full, skipping event", zap.String("client_id", client.ID))
		}
	}
}

func (h *Hub) publish(eventType string, payload map[string]string) {
	if h == nil {
		return
	}
	data, err := json.Marshal(payload)
	if err != nil {
		return
	}
	h.Broadcast(Event{EventType: eventType, Data: string(data)})
}

// PublishShipmentUpdate announces a shipment create/update/status/delete.
func (h *Hub) PublishShipmentUpdate(shipmentID, action string) {
	h.publish("shipment_update", map[string]string{
		"shipment_id": shipmentID,
		"action":      action,
	})
}

// PublishMemoUpdate announces a memo write and the resulting memo status.
func (h *Hub) PublishMemoUpdate(shipmentID, memoStatus, action string) {
	h.publish("memo_update", map[string]string{
		"shipment_id": shipmentID,
		"status":      memoStatus,
		"action":      action,
	})
}

// PublishNotification announces a new notification.
func (h *Hub) PublishNotification(notificationID, title string) {
	h.publish("notification", map[string]string{
		"notification_id": notificationID,
		"title":           title,
	})
}
