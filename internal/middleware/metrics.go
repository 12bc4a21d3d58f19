package middleware

import (
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"socialid/internal/metrics"
)

// Metrics records request counts and latencies. Paths are the route
// templates so ids do not explode label cardinality.
func Metrics(m *metrics.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		code := strconv.Itoa(c.Writer.Status())
		m.RequestsTotal.WithLabelValues(code, c.Request.Method, path).Inc()
		m.RequestDuration.WithLabelValues(code, c.Request.Method, path).Observe(time.Since(start).Seconds())
	}
}
