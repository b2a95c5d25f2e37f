package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"
)

// RequestLogger logs every request, recovers from panics and records
// handler errors with enough context to trace them.
func RequestLogger() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		defer func() {
			if recovered := recover(); recovered != nil {
				log.Error().
					Str("method", c.Request.Method).
					Str("path", c.Request.URL.Path).
					Str("panic", fmt.Sprintf("%v", recovered)).
					Bytes("stack", debug.Stack()).
					Msg("request panic")

				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"success": false,
					"error": gin.H{
						"code":    "INTERNAL_ERROR",
						"message": "Internal Server Error",
					},
				})
				return
			}

			evt := log.Info()
			if c.Writer.Status() >= http.StatusInternalServerError {
				evt = log.Error()
			}
			evt.
				Str("method", c.Request.Method).
				Str("path", c.Request.URL.Path).
				Int("status", c.Writer.Status()).
				Str("client_ip", c.ClientIP()).
				Int64("party_id", c.GetInt64("user_id")).
				Dur("latency", time.Since(start)).
				Msg("request")

			for _, err := range c.Errors {
				log.Error().
					Str("path", c.Request.URL.Path).
					Err(err.Err).
					Msg("handler error")
			}
		}()

		c.Next()
	}
}
