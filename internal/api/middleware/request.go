package middleware

import (
	"time"

	"github.com/embedview/playerbridge/internal/id"
	"github.com/embedview/playerbridge/internal/logging"
	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// RequestIDKey is the context key the request ID is stored under.
const RequestIDKey = "request_id"

// RequestHeader is the response header echoing the request ID.
const RequestHeader = "X-Request-ID"

// RequestID tags every request with a generated req_* ID, echoes it in
// the response header, and writes one correlated log line per request.
func RequestID(log *logging.Logger) gin.HandlerFunc {
	log = log.Component("api")
	return func(c *gin.Context) {
		requestID := id.NewRequestID().String()
		c.Set(RequestIDKey, requestID)
		c.Header(RequestHeader, requestID)

		start := time.Now()
		c.Next()

		log.Debug("request handled",
			zap.String("request_id", requestID),
			zap.String("method", c.Request.Method),
			zap.String("path", c.Request.URL.Path),
			zap.Int("status", c.Writer.Status()),
			zap.Duration("elapsed", time.Since(start)))
	}
}
