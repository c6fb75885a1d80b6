// Package response writes the uniform JSON envelope used by every endpoint.
package response

import (
	"github.com/gin-gonic/gin"
)

// Envelope is the body of every API response.
// A failed response always has nil Data and non-empty Error and Message.
type Envelope struct {
	Success bool        `json:"success"`
	Data    interface{} `json:"data"`
	Error   string      `json:"error"`
	Message string      `json:"message"`
}

// OK writes a successful envelope
func OK(c *gin.Context, status int, data interface{}, message string) {
	c.JSON(status, Envelope{Success: true, Data: data, Message: message})
}

// Fail writes a failed envelope
func Fail(c *gin.Context, status int, code, message string) {
	if message == "" {
		message = code
	}
	c.JSON(status, Envelope{Success: false, Error: code, Message: message})
}

// Abort is Fail for middleware
func Abort(c *gin.Context, status int, code, message string) {
	Fail(c, status, code, message)
	c.Abort()
}
