package handler

import (
	"encoding/json"
	"strings"

	"github.com/arifsuz/pre-shipment-system/internal/pse/service"
	"github.com/gin-gonic/gin"
)

type ShipmentHandler struct {
	svc *service.ShipmentService
}

func NewShipmentHandler(svc *service.ShipmentService) *ShipmentHandler {
	return &ShipmentHandler{svc: svc}
}

// List
// GET /api/shipments?status=&search=&page=&limit=
func (h *ShipmentHandler) List(c *gin.Context) {
	page, limit := GetPagination(c)
	filters := map[string]string{
		"status": c.Query("status"),
		"search": c.Query("search"),
	}

	shipments, total, err := h.svc.List(c.Request.Context(), page, limit, filters)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessList(c, gin.H{"shipments": shipments}, NewPagination(page, limit, total))
}

// ListMemos returns shipments carrying memo data.
// GET /api/shipments/memos
func (h *ShipmentHandler) ListMemos(c *gin.Context) {
	shipments, err := h.svc.ListWithMemo(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"shipments": shipments})
}

// GET /api/shipments/:id
func (h *ShipmentHandler) Get(c *gin.Context) {
	shipment, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"shipment": shipment})
}

// POST /api/shipments
func (h *ShipmentHandler) Create(c *gin.Context) {
	var req service.CreateShipmentRequest
	if !bindJSON(c, &req) {
		return
	}

	shipment, err := h.svc.Create(c.Request.Context(), GetUserID(c), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, "Shipment created successfully", gin.H{"shipment": shipment})
}

// Update accepts only the known update keys; anything else is rejected.
// PUT /api/shipments/:id
func (h *ShipmentHandler) Update(c *gin.Context) {
	var req service.UpdateShipmentRequest
	dec := json.NewDecoder(c.Request.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(&req); err != nil {
		if field, ok := unknownField(err); ok {
			BadRequest(c, "Validation failed", field+" is not an updatable field")
			return
		}
		BadRequest(c, "Validation failed", "Invalid request body: "+err.Error())
		return
	}

	shipment, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Shipment updated successfully", gin.H{"shipment": shipment})
}

// unknownField extracts the key name from a DisallowUnknownFields error.
func unknownField(err error) (string, bool) {
	const prefix = "json: unknown field "
	msg := err.Error()
	if !strings.HasPrefix(msg, prefix) {
		return "", false
	}
	return strings.Trim(strings.TrimPrefix(msg, prefix), `"`), true
}

type statusRequest struct {
	Status string `json:"status" binding:"required"`
}

// PATCH /api/shipments/:id/status
func (h *ShipmentHandler) UpdateStatus(c *gin.Context) {
	var req statusRequest
	if !bindJSON(c, &req) {
		return
	}

	shipment, err := h.svc.SetStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Shipment status updated", gin.H{"shipment": shipment})
}

// DELETE /api/shipments/:id
func (h *ShipmentHandler) Delete(c *gin.Context) {
	if err := h.svc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Shipment deleted successfully", nil)
}
