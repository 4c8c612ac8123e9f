package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Error is carried under the "error" key of every non-2xx response body.
type Error struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

// Common error codes
const (
	ErrCodeNotFound         = "NOT_FOUND"
	ErrCodeBadRequest       = "BAD_REQUEST"
	ErrCodeConflict         = "CONFLICT"
	ErrCodeValidationFailed = "VALIDATION_FAILED"
	ErrCodeInternalError    = "INTERNAL_ERROR"
	ErrCodeRateLimited      = "RATE_LIMITED"
)

// Success bodies are written directly by the handlers since the API contract
// fixes them verbatim; this package only standardizes error responses.

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	WriteError(c, http.StatusNotFound, ErrCodeNotFound, message)
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	WriteError(c, http.StatusBadRequest, ErrCodeBadRequest, message)
}

// ValidationFailed sends a 400 response for rejected input
func ValidationFailed(c *gin.Context, message string) {
	WriteError(c, http.StatusBadRequest, ErrCodeValidationFailed, message)
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	WriteError(c, http.StatusConflict, ErrCodeConflict, message)
}

// TooManyRequests sends a 429 response
func TooManyRequests(c *gin.Context, message string) {
	WriteError(c, http.StatusTooManyRequests, ErrCodeRateLimited, message)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	WriteError(c, http.StatusInternalServerError, ErrCodeInternalError, message)
}

// WriteError sends an arbitrary coded error response.
func WriteError(c *gin.Context, status int, code, message string) {
	c.JSON(status, gin.H{
		"error": Error{
			Code:    code,
			Message: message,
		},
	})
}
