// Package api assembles the engine's dashboard-facing HTTP surface.
package api

import (
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/cardsnipe/engine/internal/api/handlers"
	"github.com/cardsnipe/engine/internal/api/ws"
	"github.com/cardsnipe/engine/internal/metrics"
	"github.com/cardsnipe/engine/internal/middleware"
	"github.com/cardsnipe/engine/internal/services"
	"github.com/cardsnipe/engine/internal/upstream"
)

// NewRouter wires all dashboard routes onto a Gin engine. adminKey, when
// non-empty, is required as a bearer token on the destructive endpoints.
func NewRouter(store *services.Store, scheduler *services.Scheduler, gateway *services.Gateway, client *upstream.Client, hub *ws.Hub, adminKey string) *gin.Engine {
	router := gin.New()
	router.Use(gin.Logger(), gin.Recovery())
	router.Use(metrics.HTTPMetrics())
	router.Use(cors.Default())

	stateHandler := handlers.NewStateHandler(store, scheduler)
	playerHandler := handlers.NewPlayerHandler(gateway)
	actionHandler := handlers.NewActionHandler(store, gateway)
	scanLogHandler := handlers.NewScanLogHandler(client)

	apiGroup := router.Group("/api")
	{
		apiGroup.GET("/health", stateHandler.Health)
		apiGroup.GET("/state", stateHandler.GetState)
		apiGroup.POST("/filters", stateHandler.SetFilters)
		apiGroup.POST("/refresh", stateHandler.Refresh)

		apiGroup.GET("/settings", actionHandler.GetSettings)
		apiGroup.POST("/settings", actionHandler.UpdateSettings)

		apiGroup.GET("/players", playerHandler.ListPlayers)
		apiGroup.POST("/players", playerHandler.AddPlayer)
		apiGroup.PATCH("/players/:id", playerHandler.TogglePlayer)
		apiGroup.DELETE("/players/:id", playerHandler.DeletePlayer)

		apiGroup.GET("/teams", playerHandler.ListTeams)
		apiGroup.POST("/teams/import", playerHandler.ImportTeam)

		apiGroup.GET("/scan-log", scanLogHandler.GetScanLog)

		apiGroup.POST("/report", actionHandler.SubmitReport)

		apiGroup.POST("/price-data/upload", actionHandler.UploadPriceData)
		apiGroup.GET("/price-data/stats", actionHandler.GetPriceDataStats)

		guarded := apiGroup.Group("", middleware.KeyAuth(adminKey))
		guarded.DELETE("/price-data", actionHandler.DeletePriceData)
		guarded.DELETE("/clear-data", actionHandler.ClearData)
	}

	router.GET("/ws", hub.Serve())
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}
