package middleware

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/Fragarianos1981/Dr.platiPel/internal/infra/logger"
)

const requestIDHeader = "X-Request-ID"

// RequestID attaches a correlation id to the request context and the
// response. An inbound id is honored only when it parses as a UUID, so a
// reverse proxy can stitch its logs to ours but arbitrary client text never
// reaches the log stream.
func RequestID() gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.GetHeader(requestIDHeader)
		if _, err := uuid.Parse(id); err != nil {
			id = uuid.NewString()
		}

		c.Writer.Header().Set(requestIDHeader, id)
		ctx := context.WithValue(c.Request.Context(), logger.RequestIDKey{}, id)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}
