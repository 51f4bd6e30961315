package api

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"github.com/distillate-labs/dieseldesk/internal/api/handlers"
	"github.com/distillate-labs/dieseldesk/internal/config"
	"github.com/distillate-labs/dieseldesk/internal/database"
	"github.com/distillate-labs/dieseldesk/internal/middleware"
	"github.com/distillate-labs/dieseldesk/internal/services"
	"github.com/distillate-labs/dieseldesk/internal/telemetry"
)

// Dependencies carries everything the router needs.
type Dependencies struct {
	Config      *config.Config
	DB          *database.PostgresDB
	Redis       *database.RedisClient
	Prices      *database.PriceRepository
	Inventories *database.InventoryRepository
	FetchLog    *database.FetchLogRepository
	Analytics   *services.AnalyticsService
	Collector   *services.CollectorService
}

// SetupRoutes registers every endpoint on the router.
func SetupRoutes(router *gin.Engine, deps Dependencies) {
	if deps.Config.Telemetry.Enabled {
		router.Use(otelgin.Middleware(telemetry.ServiceName))
	}

	var dbChecker, redisChecker handlers.HealthChecker
	if deps.DB != nil {
		dbChecker = deps.DB
	}
	if deps.Redis != nil {
		redisChecker = deps.Redis
	}
	health := handlers.NewHealthHandler(dbChecker, redisChecker, deps.Collector)
	router.GET("/health", health.Check)
	router.GET("/live", health.Live)

	var latestCache handlers.Cache
	if deps.Redis != nil {
		latestCache = deps.Redis
	}
	latestTTL := deps.Config.LatestTTL()

	prices := handlers.NewPricesHandler(deps.Prices, latestCache, latestTTL)
	inventories := handlers.NewInventoriesHandler(deps.Inventories, latestCache, latestTTL)
	analytics := handlers.NewAnalyticsHandler(deps.Analytics)
	fetch := handlers.NewFetchHandler(deps.Collector, deps.FetchLog)
	admin := middleware.NewAdminMiddleware(deps.Config.Admin.APIKey)

	v1 := router.Group("/api/v1")
	{
		priceRoutes := v1.Group("/prices")
		{
			priceRoutes.GET("", prices.List)
			priceRoutes.GET("/latest", prices.Latest)
			priceRoutes.GET("/series", prices.ListSeries)
			priceRoutes.GET("/:series_id", prices.GetSeries)
		}

		inventoryRoutes := v1.Group("/inventories")
		{
			inventoryRoutes.GET("", inventories.List)
			inventoryRoutes.GET("/latest", inventories.Latest)
			inventoryRoutes.GET("/regions", inventories.Regions)
			inventoryRoutes.GET("/compare", inventories.Compare)
			inventoryRoutes.GET("/history/:region", inventories.History)
		}

		analyticsRoutes := v1.Group("/analytics")
		{
			analyticsRoutes.GET("/cracks", analytics.Cracks)
			analyticsRoutes.GET("/curve", analytics.Curve)
			analyticsRoutes.GET("/arb", analytics.Arb)
			analyticsRoutes.GET("/inventory", analytics.Inventory)
			analyticsRoutes.GET("/correlations", analytics.Correlations)
			analyticsRoutes.GET("/volatility", analytics.Volatility)
			analyticsRoutes.GET("/trend", analytics.Trend)
		}

		fetchRoutes := v1.Group("/fetch")
		{
			fetchRoutes.GET("/status", fetch.Status)
			fetchRoutes.GET("/sources", fetch.Sources)

			protected := fetchRoutes.Group("")
			protected.Use(admin.RequireAdminAuth())
			{
				protected.POST("/prices", fetch.Prices)
				protected.POST("/inventories", fetch.Inventories)
				protected.POST("/all", fetch.All)
			}
		}
	}
}
