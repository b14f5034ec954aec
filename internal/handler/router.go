package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/user/smartlink/internal/config"
	"github.com/user/smartlink/internal/middleware"
	"go.uber.org/zap"
)

// NewRouter assembles the gin engine: global middleware, the public
// /health probes and the /api route group. Kept out of main so tests
// can drive the exact production routing.
func NewRouter(
	logger *zap.Logger,
	corsCfg config.CORSConfig,
	links *LinkHandler,
	redirects *RedirectHandler,
	scans *ScanHandler,
	health *HealthHandler,
) *gin.Engine {
	router := gin.New()

	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(logger))
	router.Use(middleware.SecurityHeaders())
	router.Use(middleware.CORS(corsCfg))

	router.GET("/health", health.Health)
	router.GET("/ready", health.Ready)

	api := router.Group("/api")
	{
		// check-slug is registered before the :slug wildcard; gin
		// gives the static segment priority.
		api.GET("/links/check-slug/:slug", links.CheckSlug)
		api.POST("/links", links.Create)
		api.GET("/links", links.List)
		api.GET("/links/:slug", links.Get)
		api.PUT("/links/:slug", links.Update)
		api.DELETE("/links/:slug", links.Delete)

		api.GET("/redirect/:slug/:platform", redirects.Redirect)
		api.GET("/analytics/:slug", redirects.Analytics)

		api.POST("/scan", scans.Scan)
	}

	return router
}
