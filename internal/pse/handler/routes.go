package handler

import (
	"github.com/arifsuz/pre-shipment-system/internal/middleware"
	"github.com/arifsuz/pre-shipment-system/internal/pse/entity"
	"github.com/gin-gonic/gin"
)

// RegisterRoutes mounts the API under api. Everything except login needs a
// valid access token.
func (h *Handlers) RegisterRoutes(api *gin.RouterGroup, jwtSecret string) {
	auth := api.Group("/auth")
	{
		auth.POST("/login", h.Auth.Login)
		auth.POST("/refresh", h.Auth.Refresh)
	}

	authorized := api.Group("", middleware.JWTAuth(jwtSecret))
	{
		authorized.GET("/auth/me", h.Auth.Me)
		authorized.POST("/auth/logout", h.Auth.Logout)

		users := authorized.Group("/users", middleware.RequireRole(entity.RoleAdmin))
		{
			users.GET("", h.User.List)
			users.POST("", h.User.Create)
			users.GET("/:id", h.User.Get)
			users.PUT("/:id", h.User.Update)
			users.DELETE("/:id", h.User.Delete)
		}

		companies := authorized.Group("/companies")
		{
			companies.GET("", h.Company.List)
			companies.POST("", h.Company.Create)
			companies.GET("/:id", h.Company.Get)
			companies.PUT("/:id", h.Company.Update)
			companies.DELETE("/:id", h.Company.Delete)
		}

		shipments := authorized.Group("/shipments")
		{
			shipments.GET("", h.Shipment.List)
			shipments.POST("", h.Shipment.Create)
			shipments.GET("/memos", h.Shipment.ListMemos)
			shipments.GET("/:id", h.Shipment.Get)
			shipments.PUT("/:id", h.Shipment.Update)
			shipments.PATCH("/:id/status", h.Shipment.UpdateStatus)
			shipments.DELETE("/:id", h.Shipment.Delete)

			shipments.GET("/:id/memo", h.Memo.Get)
			shipments.PUT("/:id/memo", h.Memo.SaveDraft)
			shipments.DELETE("/:id/memo", h.Memo.Delete)
			shipments.POST("/:id/memo/reconcile", h.Memo.Reconcile)
			shipments.POST("/:id/memo/in-process", h.Memo.SaveInProcess)
			shipments.POST("/:id/memo/publish", h.Memo.Publish)
			shipments.POST("/:id/memo/save", h.Memo.FinalSave)
		}

		authorized.POST("/upload/excel", h.Upload.UploadExcel)

		notifications := authorized.Group("/notifications")
		{
			notifications.GET("", h.Notification.List)
			notifications.PUT("/mark-all-read", h.Notification.MarkAllRead)
			notifications.PUT("/:id/read", h.Notification.MarkRead)
		}

		authorized.GET("/stats", h.Stats.Get)
		authorized.GET("/events", h.SSE.Stream)
	}
}
