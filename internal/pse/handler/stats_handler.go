package handler

import (
	"github.com/arifsuz/pre-shipment-system/internal/pse/service"
	"github.com/gin-gonic/gin"
)

type StatsHandler struct {
	svc *service.StatsService
}

func NewStatsHandler(svc *service.StatsService) *StatsHandler {
	return &StatsHandler{svc: svc}
}

// GET /api/stats
func (h *StatsHandler) Get(c *gin.Context) {
	stats, err := h.svc.Get(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}
	Success(c, stats)
}
