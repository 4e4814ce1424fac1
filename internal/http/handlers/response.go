// Package handlers implements the webhook endpoints the two chat platforms
// deliver messages to.
//
// This file defines the shared response utilities. Webhook responses are
// deliberately small: platforms only care about the status code, and the JSON
// bodies exist for operators replaying deliveries by hand.
//
// Conventions:
//   - All error responses return an ErrorResponse with a stable `code`.
//   - `fail()` centralizes error logging and formatting, ensuring 5xx
//     responses are logged with request context.
//   - `ok()` writes success payloads in a consistent shape.
package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/AsilenceBTF/sf6bot/internal/http/middleware"
)

// ErrorResponse is the standard error envelope returned by all endpoints.
type ErrorResponse struct {
	// Correlates server logs and client errors
	RequestID string `json:"request_id,omitempty"`
	// Stable, machine-readable code
	Code string `json:"code"`
	// Human-readable message
	Message string `json:"message"`
}

// Stable machine-readable error codes.
const (
	codeBadRequest    = "bad_request"
	codeInternalError = "internal_error"
)

// fail aborts the request with a structured error and logs server-side errors.
func fail(c *gin.Context, status int, code, message string) {
	rid := c.Writer.Header().Get("X-Request-ID")
	if status >= http.StatusInternalServerError {
		middleware.LoggerFrom(c).Error().
			Int("status", status).
			Str("code", code).
			Msg(message)
	}
	c.AbortWithStatusJSON(status, ErrorResponse{
		RequestID: rid,
		Code:      code,
		Message:   message,
	})
}

// ok writes a 200 JSON response.
func ok(c *gin.Context, body any) {
	c.JSON(http.StatusOK, body)
}
