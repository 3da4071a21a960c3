package handler

import (
	"github.com/arifsuz/pre-shipment-system/internal/pse/service"
	"github.com/gin-gonic/gin"
)

type CompanyHandler struct {
	svc *service.CompanyService
}

func NewCompanyHandler(svc *service.CompanyService) *CompanyHandler {
	return &CompanyHandler{svc: svc}
}

// List returns active companies unless activeOnly=false.
// GET /api/companies?activeOnly=&search=
func (h *CompanyHandler) List(c *gin.Context) {
	activeOnly := c.DefaultQuery("activeOnly", "true") != "false"

	companies, err := h.svc.List(c.Request.Context(), activeOnly, c.Query("search"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"companies": companies})
}

// GET /api/companies/:id
func (h *CompanyHandler) Get(c *gin.Context) {
	company, err := h.svc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, gin.H{"company": company})
}

// POST /api/companies
func (h *CompanyHandler) Create(c *gin.Context) {
	var req service.CreateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.svc.Create(c.Request.Context(), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	Created(c, "Company created successfully", gin.H{"company": company})
}

// PUT /api/companies/:id
func (h *CompanyHandler) Update(c *gin.Context) {
	var req service.UpdateCompanyRequest
	if !bindJSON(c, &req) {
		return
	}

	company, err := h.svc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Company updated successfully", gin.H{"company": company})
}

// Delete deactivates; companies are never removed.
// DELETE /api/companies/:id
func (h *CompanyHandler) Delete(c *gin.Context) {
	if err := h.svc.Deactivate(c.Request.Context(), c.Param("id")); err != nil {
		RespondError(c, err)
		return
	}
	SuccessMessage(c, "Company deactivated successfully", nil)
}
