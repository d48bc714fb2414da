package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers rental routes.
// onWrite runs around routes that change which slots are taken.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, adminMiddleware, onWrite gin.HandlerFunc) {
	g.GET("/rooms/:id/estimate", h.Estimate)
	g.GET("/rooms/:id/rentals", authMiddleware, h.ListByRoom)

	group := g.Group("/rentals")

	// === Authenticated Routes ===
	group.Use(authMiddleware)
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
		group.POST("", h.Create)
		group.POST("/:id/approve", onWrite, h.Approve)
		group.POST("/:id/reject", h.Reject)
		group.POST("/:id/cancel", adminMiddleware, onWrite, h.Cancel)
	}
}
