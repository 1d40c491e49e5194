package routes

import (
	"github.com/gin-gonic/gin"

	"app-transcript/internal/api/v1/handlers"
)

// RegisterPageRoutes registers the HTML upload page
func RegisterPageRoutes(router gin.IRoutes, h *handlers.TranscriptionHandler) {
	router.GET("/", h.Index)
	router.POST("/transcribe/:kind", h.Page)
}

// RegisterRoutes registers all v1 API routes
func RegisterRoutes(router *gin.RouterGroup, h *handlers.TranscriptionHandler) {
	router.POST("/transcriptions/:kind", h.Create)

	session := router.Group("/session")
	{
		session.GET("/entries", h.Entries)
		session.GET("/export", h.Export)
	}
}
