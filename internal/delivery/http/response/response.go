package response

import (
	"time"

	"github.com/gin-gonic/gin"
)

// BannerDuration is how long the client shows a banner before clearing it.
var BannerDuration = 5 * time.Second

type BannerKind string

const (
	BannerSuccess BannerKind = "success"
	BannerError   BannerKind = "error"
)

// Banner is the short-lived inline message the panel renders above a form.
type Banner struct {
	Kind           BannerKind `json:"kind"`
	Message        string     `json:"message"`
	DismissAfterMs int64      `json:"dismiss_after_ms"`
}

// ErrorBody carries the machine readable part of an error.
type ErrorBody struct {
	Kind   string   `json:"kind"`
	Fields []string `json:"fields,omitempty"`
}

// Response standardizes the API JSON response
type Response struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message"`
	Data      interface{} `json:"data,omitempty"`
	Error     interface{} `json:"error,omitempty"`
	Banner    *Banner     `json:"banner,omitempty"`
	RequestID string      `json:"request_id,omitempty"`
}

func newBanner(kind BannerKind, message string) *Banner {
	if message == "" {
		return nil
	}
	return &Banner{Kind: kind, Message: message, DismissAfterMs: BannerDuration.Milliseconds()}
}

func requestID(c *gin.Context) string {
	reqID, _ := c.Get("RequestID")
	idStr, _ := reqID.(string) // Safe type assertion
	return idStr
}

// Success sends a success response. A non-empty message is also shown as a banner.
func Success(c *gin.Context, code int, message string, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Message:   message,
		Data:      data,
		Banner:    newBanner(BannerSuccess, message),
		RequestID: requestID(c),
	})
}

// Quiet sends a success response without a banner, for reads.
func Quiet(c *gin.Context, code int, data interface{}) {
	c.JSON(code, Response{
		Success:   true,
		Data:      data,
		RequestID: requestID(c),
	})
}

// Error sends an error response
func Error(c *gin.Context, code int, message string, err interface{}) {
	c.JSON(code, Response{
		Success:   false,
		Message:   message,
		Error:     err,
		Banner:    newBanner(BannerError, message),
		RequestID: requestID(c),
	})
}
