package api

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/andresuchdata/stockcast/internal/api/handlers"
	"github.com/andresuchdata/stockcast/internal/api/middleware"
	"github.com/andresuchdata/stockcast/internal/metrics"
)

type Services struct {
	Planning handlers.Planner
}

// RouterConfig holds the HTTP-layer settings.
type RouterConfig struct {
	AllowedOrigins    []string
	RequestsPerSecond float64 // per client IP; 0 disables limiting
	Burst             int
}

func NewRouter(services *Services, cfg RouterConfig) *gin.Engine {
	router := gin.New()

	router.Use(middleware.RequestID())
	router.Use(middleware.Logger())
	router.Use(middleware.Recovery())
	router.Use(middleware.Metrics())

	defaultOrigins := []string{"http://localhost:3000", "http://127.0.0.1:3000"}
	corsConfig := cors.Config{
		AllowOrigins:     defaultOrigins,
		AllowMethods:     []string{"GET", "POST", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.APIKeyHeader, middleware.RequestIDHeader},
		ExposeHeaders:    []string{"Content-Length", middleware.RequestIDHeader},
		AllowCredentials: true,
		MaxAge:           12 * time.Hour,
	}
	if len(cfg.AllowedOrigins) > 0 {
		normalizedOrigins, allowAll := normalizeAllowedOrigins(cfg.AllowedOrigins)
		if allowAll {
			corsConfig.AllowOrigins = nil
			corsConfig.AllowOriginFunc = func(origin string) bool { return true }
		} else if len(normalizedOrigins) > 0 {
			corsConfig.AllowOrigins = normalizedOrigins
		}
	}
	router.Use(cors.New(corsConfig))

	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	router.GET("/metrics", gin.WrapH(metrics.Handler()))

	apiGroup := router.Group("/api/v1")
	apiGroup.Use(middleware.RateLimit(cfg.RequestsPerSecond, cfg.Burst))
	apiGroup.Use(middleware.APIKey())

	if services != nil && services.Planning != nil {
		planningHandler := handlers.NewPlanningHandler(services.Planning)
		planningGroup := apiGroup.Group("/planning")
		{
			planningGroup.POST("/forecast", planningHandler.Forecast)
			planningGroup.POST("/optimize", planningHandler.Optimize)
			planningGroup.POST("/batch", planningHandler.OptimizeBatch)
			planningGroup.POST("/abc", planningHandler.ClassifyABC)
			planningGroup.POST("/warehouses/:warehouse/plan", planningHandler.PlanWarehouse)
		}
	}

	return router
}

func normalizeAllowedOrigins(origins []string) ([]string, bool) {
	var (
		parsed   []string
		allowAll bool
	)
	for _, origin := range origins {
		for _, part := range strings.Split(origin, ",") {
			trimmed := strings.TrimSpace(part)
			if trimmed == "" {
				continue
			}
			if trimmed == "*" {
				allowAll = true
				continue
			}
			parsed = append(parsed, trimmed)
		}
	}
	return parsed, allowAll
}
