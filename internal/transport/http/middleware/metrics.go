package middleware

import (
	"time"

	"github.com/gin-gonic/gin"

	"studyai/internal/metrics"
)

// Metrics labels requests by route template so ids do not blow up
// cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		m.ObserveHTTP(c.Request.Method, route, c.Writer.Status(), time.Since(start))
	}
}
