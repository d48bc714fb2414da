package http

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers the public availability routes behind cacheMiddleware.
func RegisterRoutes(g *gin.RouterGroup, h *Handler, cacheMiddleware gin.HandlerFunc) {
	group := g.Group("/availability")
	group.Use(cacheMiddleware)
	{
		group.GET("/rooms", h.Rooms)
		group.GET("/rooms/:id/slots", h.Slots)
	}
}
