package middleware

import (
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"ytstream.api/pkg/logger"
	"ytstream.api/pkg/response"
)

// ErrorHandler is a middleware that handles errors attached to the context.
// Error text is logged, never returned to the client.
func ErrorHandler(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		for _, e := range c.Errors {
			l.Error("Request error", "path", c.Request.URL.Path, "error", e.Err)
		}

		// a handler that already answered keeps its response
		if c.Writer.Written() {
			return
		}
		response.Error(c, http.StatusInternalServerError, "Internal Server Error")
	}
}

// Recovery is a middleware that recovers from panics and returns a 500 error
func Recovery(l logger.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if err := recover(); err != nil {
				l.Error("Panic recovered", "panic", err, "stack", string(debug.Stack()))

				if c.Writer.Written() {
					c.Abort()
					return
				}
				response.Fail(c, "Internal Server Error")
			}
		}()
		c.Next()
	}
}
