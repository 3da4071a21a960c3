package handler

import (
	"github.com/arifsuz/pre-shipment-system/internal/pse/service"
	"github.com/gin-gonic/gin"
)

type NotificationHandler struct {
	svc *service.NotificationService
}

func NewNotificationHandler(svc *service.NotificationService) *NotificationHandler {
	return &NotificationHandler{svc: svc}
}

// GET /api/notifications
func (h *NotificationHandler) List(c *gin.Context) {
	notifications, err := h.svc.Recent(c.Request.Context(), GetUserID(c))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"notifications": notifications})
}

// PUT /api/notifications/:id/read
func (h *NotificationHandler) MarkRead(c *gin.Context) {
	if err := h.svc.MarkRead(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Notification marked as read", nil)
}

// PUT /api/notifications/mark-all-read
func (h *NotificationHandler) MarkAllRead(c *gin.Context) {
	n, err := h.svc.MarkAllRead(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "All notifications marked as read", gin.H{"updated": n})
}
