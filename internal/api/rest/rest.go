package rest

import (
	"github.com/gin-gonic/gin"

	"github.com/foodsafe/fs-indexer/internal/api/middleware"
)

// SetupRoutes configures all REST API routes
func SetupRoutes(router *gin.Engine, handler Handler, authCfg middleware.AuthConfig) {
	// Health check endpoint (no auth, no version prefix)
	router.GET("/health", handler.HealthCheck)

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Lot endpoints (public read access)
		v1.GET("/lots", handler.ListLots)
		v1.GET("/lots/:token_id", handler.GetLot)
		v1.GET("/lots/:token_id/history", handler.GetLotHistory)
		v1.GET("/lots/:token_id/recalled", handler.GetLotRecallStatus)

		// Owner holdings (public read access)
		v1.GET("/owners/:address/lots", handler.ListLotsByOwner)

		// Recall endpoints (public read access)
		v1.GET("/recalls", handler.ListRecalls)

		// Registry statistics and chain lag (public read access)
		v1.GET("/stats", handler.GetStats)
		v1.GET("/chain/status", handler.GetChainStatus)

		// Document endpoints. Reads are public, pinning requires an API key.
		v1.GET("/documents/:hash", handler.GetDocument)
		v1.POST("/documents", middleware.APIKeyAuth(authCfg), handler.PinDocument)
		v1.POST("/documents/json", middleware.APIKeyAuth(authCfg), handler.PinDocumentJSON)
	}
}
