package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

const (
	StatusSuccess = "success"
	StatusFail    = "fail"
	StatusError   = "error"
)

// Envelope is the JSON body of every API response.
// Results is a pointer so that an empty list still reports "results": 0.
type Envelope struct {
	Status    string `json:"status"`
	RequestID string `json:"request_id,omitempty"`
	Token     string `json:"token,omitempty"`
	Results   *int   `json:"results,omitempty"`
	Message   string `json:"message,omitempty"`
	Data      any    `json:"data,omitempty"`
	Errors    any    `json:"errors,omitempty"`

	// Only populated in development
	Error string `json:"error,omitempty"`
	Stack string `json:"stack,omitempty"`
}

// Success writes {status: "success", data}.
func Success(c *gin.Context, status int, data any) {
	if status == 0 {
		status = http.StatusOK
	}
	c.JSON(status, Envelope{
		Status:    StatusSuccess,
		RequestID: c.GetString("request_id"),
		Data:      data,
	})
}

// WithToken writes {status: "success", token, data}.
func WithToken(c *gin.Context, status int, token string, data any) {
	c.JSON(status, Envelope{
		Status:    StatusSuccess,
		RequestID: c.GetString("request_id"),
		Token:     token,
		Data:      data,
	})
}

// List writes {status: "success", results, data}.
func List(c *gin.Context, results int, data any) {
	c.JSON(http.StatusOK, Envelope{
		Status:    StatusSuccess,
		RequestID: c.GetString("request_id"),
		Results:   &results,
		Data:      data,
	})
}

// NoContent writes an empty 204.
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error builds the failure envelope: "fail" for 4xx, "error" otherwise.
func Error(c *gin.Context, status int, message string, details any) Envelope {
	if status == 0 {
		status = http.StatusBadRequest
	}
	st := StatusError
	if status >= 400 && status < 500 {
		st = StatusFail
	}
	return Envelope{
		Status:    st,
		RequestID: c.GetString("request_id"),
		Message:   message,
		Errors:    details,
	}
}

// Abort writes the failure envelope and stops the handler chain.
func Abort(c *gin.Context, status int, message string) {
	c.AbortWithStatusJSON(status, Error(c, status, message, nil))
}
