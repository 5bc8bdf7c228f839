package router

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"orderscan/internal/config"
	"orderscan/internal/handler"
	"orderscan/internal/metrics"
	"orderscan/internal/middleware"
)

// Setup configures the Gin engine with all routes and middleware.
// reg may be nil, in which case no metrics are recorded or exposed.
func Setup(
	cfg *config.Config,
	logger *zap.Logger,
	reg *metrics.Registry,
	orderH *handler.OrderHandler,
	healthH *handler.HealthHandler,
) *gin.Engine {
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(logger))
	r.Use(middleware.CORS(cfg.CORS.AllowedOrigins))
	if reg != nil {
		r.Use(middleware.Metrics(reg))
	}

	// Health checks
	r.GET("/healthz", healthH.Liveness)
	r.GET("/readyz", healthH.Readiness)
	if reg != nil && cfg.Metrics.Enabled {
		r.GET(cfg.Metrics.Path, gin.WrapH(reg.Handler()))
	}

	api := r.Group("/api")
	api.POST("/upload", orderH.Upload)
	api.GET("/sales_orders", orderH.List)
	api.GET("/sales_orders/export.csv", orderH.ExportCSV)
	api.GET("/sales_order/:id", orderH.Get)
	api.PUT("/sales_order/:id", orderH.Update)
	api.DELETE("/sales_order/:id", orderH.Delete)

	r.NoRoute(func(c *gin.Context) {
		handler.RespondError(c, http.StatusNotFound, "NOT_FOUND", "route not found")
	})

	return r
}
