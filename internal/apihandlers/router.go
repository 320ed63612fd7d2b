package apihandlers

import (
	"github.com/gin-gonic/gin"
)

// NewRouter mounts the classification API on a fresh gin engine.
func NewRouter(h *APIHandler) *gin.Engine {
	router := gin.New()
	router.Use(RequestID(), Logger(), Recovery())
	router.MaxMultipartMemory = h.opts.MaxUploadBytes

	api := router.Group("/api")
	{
		api.POST("/classify", h.ClassifyHandler)
		api.POST("/classify-batch", h.ClassifyBatchHandler)
		api.POST("/classify-file", h.ClassifyFileHandler)
		api.GET("/status", h.StatusHandler)
		api.POST("/download-results", h.DownloadResultsHandler)
	}
	router.GET("/health", h.HealthHandler)

	router.NoRoute(func(c *gin.Context) {
		NotFound(c, "route not found: "+c.Request.URL.Path)
	})
	return router
}
