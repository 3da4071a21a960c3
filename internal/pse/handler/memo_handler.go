package handler

import (
	"errors"
	"io"

	"github.com/arifsuz/pre-shipment-system/internal/pse/service"
	"github.com/gin-gonic/gin"
)

// MemoHandler serves the memo of a shipment and its workflow actions.
type MemoHandler struct {
	memos    *service.MemoService
	workflow *service.WorkflowService
}

func NewMemoHandler(memos *service.MemoService, workflow *service.WorkflowService) *MemoHandler {
	return &MemoHandler{memos: memos, workflow: workflow}
}

// Get returns the memo, or null data when the shipment has none.
// GET /api/shipments/:id/memo
func (h *MemoHandler) Get(c *gin.Context) {
	memo, err := h.memos.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, memo)
}

// SaveDraft
// PUT /api/shipments/:id/memo
func (h *MemoHandler) SaveDraft(c *gin.Context) {
	var req service.MemoPayload
	if !bindJSON(c, &req) {
		return
	}

	memo, err := h.workflow.SaveDraft(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Memo draft saved", memo)
}

// DELETE /api/shipments/:id/memo
func (h *MemoHandler) Delete(c *gin.Context) {
	if err := h.memos.DeleteDraft(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Memo draft deleted", nil)
}

// Reconcile compares shipment items with the posted manual items, or with
// the stored memo when the body has none.
// POST /api/shipments/:id/memo/reconcile
func (h *MemoHandler) Reconcile(c *gin.Context) {
	var req service.ReconcileRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		BadRequest(c, "Validation failed", bindingErrors(err)...)
		return
	}

	result, err := h.workflow.Reconcile(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err)
		return
	}

	data := gin.H{"rows": result.Rows, "isMatch": result.IsMatch}
	if first, ok := result.FirstMismatch(); ok {
		data["firstMismatch"] = first
	}
	Success(c, data)
}

// SaveInProcess
// POST /api/shipments/:id/memo/in-process
func (h *MemoHandler) SaveInProcess(c *gin.Context) {
	var req service.MemoPayload
	if !bindJSON(c, &req) {
		return
	}

	memo, err := h.workflow.SaveAsInProcess(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Memo saved, shipment marked IN_PROCESS", memo)
}

// Publish
// POST /api/shipments/:id/memo/publish
func (h *MemoHandler) Publish(c *gin.Context) {
	var req service.PublishRequest
	if !bindJSON(c, &req) {
		return
	}

	memo, err := h.workflow.Publish(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Memo published", memo)
}

// FinalSave
// POST /api/shipments/:id/memo/save
func (h *MemoHandler) FinalSave(c *gin.Context) {
	var req service.FinalSaveRequest
	if !bindJSON(c, &req) {
		return
	}

	memo, err := h.workflow.FinalSave(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Memo saved", memo)
}
