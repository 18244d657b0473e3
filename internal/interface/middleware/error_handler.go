package middleware

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-books-api/pkg/apperror"
	"github.com/oksasatya/go-books-api/pkg/response"
)

// MsgInternal is the only thing clients see of a fault outside development.
const MsgInternal = "Something went very wrong!"

// ErrorHandler renders the last error pushed with c.Error. Operational errors
// (apperror.Error) keep their message and status; everything else is a 500.
// In development the raw error text is added to the body.
func ErrorHandler(logger *logrus.Logger, dev bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.Next()

		if len(c.Errors) == 0 {
			return
		}
		err := c.Errors.Last().Err
		status, env := render(c, err, dev)

		if logger != nil {
			entry := logger.WithFields(logrus.Fields{
				"request_id": c.GetString("request_id"),
				"method":     c.Request.Method,
				"path":       c.Request.URL.Path,
				"status":     status,
			}).WithError(err)
			if status >= http.StatusInternalServerError {
				entry.Error("request failed")
			} else {
				entry.Warn("request rejected")
			}
		}

		if c.Writer.Written() {
			return
		}
		c.AbortWithStatusJSON(status, env)
	}
}

func render(c *gin.Context, err error, dev bool) (int, response.Envelope) {
	if ae, ok := apperror.As(err); ok {
		status := ae.Status()
		var details any
		if len(ae.Violations) > 0 {
			details = ae.Violations
		}
		msg := ae.Message
		if status >= http.StatusInternalServerError && !dev && ae.Kind == apperror.KindInternal {
			msg = MsgInternal
		}
		env := response.Error(c, status, msg, details)
		if dev {
			env.Error = err.Error()
		}
		return status, env
	}

	env := response.Error(c, http.StatusInternalServerError, MsgInternal, nil)
	if dev {
		env.Message = err.Error()
		env.Error = err.Error()
	}
	return http.StatusInternalServerError, env
}

// NotFound answers every unmatched route.
func NotFound() gin.HandlerFunc {
	return func(c *gin.Context) {
		_ = c.Error(apperror.NotFound("Can't find " + c.Request.URL.Path + " on this server"))
		c.Abort()
	}
}
