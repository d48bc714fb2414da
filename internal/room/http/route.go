package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers room catalog routes.
// onWrite runs around every mutating route, e.g. to drop cached availability.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, authMiddleware, onWrite gin.HandlerFunc) {
	group := g.Group("/rooms")

	// === Public Routes ===
	{
		group.GET("", h.List)
		group.GET("/:id", h.Get)
	}

	// === Authenticated Routes ===
	authGroup := group.Group("")
	authGroup.Use(authMiddleware)
	{
		authGroup.GET("/mine", h.Mine)
		authGroup.POST("", onWrite, h.Create)
		authGroup.POST("/:id/enable", onWrite, h.Enable)
		authGroup.POST("/:id/disable", onWrite, h.Disable)
		authGroup.DELETE("/:id", onWrite, h.Delete)
	}
}
