package http

import (
	"github.com/gin-gonic/gin"
)

// NewRouter creates and configures the HTTP router with all endpoints.
func NewRouter(cfg RouterConfig) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger())
	router.Use(gin.Recovery())

	health := NewHealthController(cfg.Database, cfg.Version)
	dictionaries := NewDictionariesController(cfg.Orchestrator, cfg.Database)
	status := NewStatusController(cfg.Orchestrator, cfg.Database, cfg.Settings, cfg.StatsCache)

	// Health endpoints
	router.GET("/healthz", health.Status)
	router.GET("/ping", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"message": "pong",
		})
	})

	// Dictionary endpoints
	router.POST("/api/dictionaries/import", dictionaries.Import)
	router.POST("/api/dictionaries/purge", dictionaries.Purge)
	router.GET("/api/dictionaries", dictionaries.List)
	router.GET("/api/dictionaries/sessions", dictionaries.Sessions)

	// Status and configuration endpoints
	router.GET("/api/status", status.GetStatus)
	router.GET("/api/stats", status.GetStats)
	router.GET("/api/options", status.GetOptions)

	return router
}
