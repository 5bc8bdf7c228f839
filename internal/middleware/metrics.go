package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"orderscan/internal/metrics"
)

// Metrics records request counts and latency per route template.
func Metrics(reg *metrics.Registry) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		reg.HTTPRequests.WithLabelValues(c.Request.Method, route, strconv.Itoa(c.Writer.Status())).Inc()
		reg.HTTPLatencySecs.WithLabelValues(c.Request.Method, route).Observe(time.Since(start).Seconds())
	}
}
