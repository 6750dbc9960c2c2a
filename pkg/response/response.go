package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ErrorBody is the envelope every failure path returns.
type ErrorBody struct {
	Error      string `json:"error"`
	RetryAfter int    `json:"retry_after,omitempty"`
}

// Message is the envelope for simple acknowledgements.
type Message struct {
	Message string `json:"message"`
}

// Success sends data as-is with 200 OK
func Success(c *gin.Context, data interface{}) {
	c.JSON(http.StatusOK, data)
}

// Created sends data as-is with 201 Created
func Created(c *gin.Context, data interface{}) {
	c.JSON(http.StatusCreated, data)
}

// OK sends a {"message": ...} body with 200 OK
func OK(c *gin.Context, message string) {
	c.JSON(http.StatusOK, Message{Message: message})
}

// Error sends an error response with the specified status code and aborts the chain
func Error(c *gin.Context, code int, message string) {
	c.AbortWithStatusJSON(code, ErrorBody{Error: message})
}

// TooManyRequests sends a 429 carrying a retry hint in seconds
func TooManyRequests(c *gin.Context, message string, retryAfter int) {
	if retryAfter < 1 {
		retryAfter = 1
	}
	c.AbortWithStatusJSON(http.StatusTooManyRequests, ErrorBody{Error: message, RetryAfter: retryAfter})
}

// Fail sends an internal server error response (500)
func Fail(c *gin.Context, message string) {
	Error(c, http.StatusInternalServerError, message)
}
