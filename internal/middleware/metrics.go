package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/findnest-api/internal/service"
)

const unmatchedRoute = "unmatched"

// infraRoutes are polled by orchestrators and scrapers and stay out of request stats.
var infraRoutes = map[string]struct{}{
	"/health":  {},
	"/ready":   {},
	"/metrics": {},
}

// Metrics records latency and status per route template. Unrouted paths share one label
// so arbitrary URLs cannot grow the series count.
func Metrics(metricsSvc *service.MetricsService) gin.HandlerFunc {
	return func(c *gin.Context) {
		if metricsSvc == nil {
			c.Next()
			return
		}
		route := c.FullPath()
		if _, ok := infraRoutes[route]; ok {
			c.Next()
			return
		}
		start := time.Now()
		c.Next()
		if route == "" {
			route = unmatchedRoute
		}
		metricsSvc.ObserveHTTPRequest(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
