package api

import (
	"github.com/gin-contrib/pprof"
	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"
	"github.com/stitts-dev/hr-parlay/internal/api/handlers"
	"github.com/stitts-dev/hr-parlay/internal/api/middleware"
	"github.com/stitts-dev/hr-parlay/internal/proxy"
	"github.com/stitts-dev/hr-parlay/internal/services"
	"github.com/stitts-dev/hr-parlay/internal/websocket"
	"github.com/stitts-dev/hr-parlay/pkg/config"
)

// Dependencies are the long-lived components the router exposes. Refresher,
// Hub and Proxy may be nil when disabled.
type Dependencies struct {
	Config    *config.Config
	Slate     *services.SlateService
	Refresher *services.RefresherService
	Hub       *websocket.Hub
	Proxy     *proxy.ProviderProxy
	Logger    *logrus.Logger
}

// NewRouter builds the gin engine with middleware and every route.
func NewRouter(deps Dependencies) *gin.Engine {
	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger(deps.Logger))
	router.Use(middleware.ErrorLogger(deps.Logger))
	router.Use(middleware.CORS(deps.Config.CorsOrigins))

	// profiling endpoints never ship to production
	if deps.Config.EnablePprof && !deps.Config.IsProduction() {
		pprof.Register(router)
	}

	var (
		refresher handlers.StatusReporter
		hub       handlers.ClientCounter
	)
	if deps.Refresher != nil {
		refresher = deps.Refresher
	}
	if deps.Hub != nil {
		hub = deps.Hub
	}
	healthHandler := handlers.NewHealthHandler(deps.Slate, refresher, hub)
	router.GET("/health", healthHandler.GetHealth)
	router.GET("/ready", healthHandler.GetReady)

	SetupRoutes(router.Group("/api/v1"), deps)

	// WebSocket at root level, not under /api/v1
	if deps.Hub != nil {
		router.GET("/ws", deps.Hub.HandleConnection)
	}

	if deps.Proxy != nil && deps.Config.EnableProxy {
		deps.Proxy.RegisterRoutes(router.Group("/proxy"))
	}

	return router
}

// SetupRoutes configures all API routes on the given router group
func SetupRoutes(group *gin.RouterGroup, deps Dependencies) {
	parkHandler := handlers.NewParkHandler()
	gameHandler := handlers.NewGameHandler(deps.Slate, deps.Logger)
	playerHandler := handlers.NewPlayerHandler(deps.Slate.Reconciler(), deps.Logger)
	parlayHandler := handlers.NewParlayHandler(deps.Slate, deps.Logger)

	group.GET("/parks", parkHandler.ListParks)
	group.GET("/parks/:team", parkHandler.GetPark)

	group.GET("/games", gameHandler.ListGames)
	group.GET("/games/:id", gameHandler.GetGame)
	group.GET("/games/:id/odds", gameHandler.GetOdds)

	group.GET("/players/:id/advanced", playerHandler.GetAdvancedStats)
	group.GET("/pitchers/:id", playerHandler.GetPitcher)
	group.GET("/leaders", playerHandler.GetHRLeaders)

	// the parlay being built
	group.GET("/parlay", parlayHandler.GetParlay)
	group.POST("/parlay/toggle", parlayHandler.TogglePlayer)
	group.DELETE("/parlay", parlayHandler.ClearParlay)
	group.POST("/parlay/save", parlayHandler.SaveParlay)

	// saved history
	group.GET("/parlays", parlayHandler.ListSaved)
	group.GET("/parlays/:id", parlayHandler.GetSaved)
	group.DELETE("/parlays/:id", parlayHandler.DeleteSaved)
}
