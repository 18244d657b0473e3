package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-books-api/pkg/response"
)

// Recovery turns a panic into a 500 and then calls onPanic, which main uses
// to start a graceful shutdown. onPanic may be nil.
func Recovery(logger *logrus.Logger, dev bool, onPanic func(recovered any)) gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			rec := recover()
			if rec == nil {
				return
			}
			if rec == http.ErrAbortHandler {
				panic(rec)
			}
			stack := debug.Stack()
			if logger != nil {
				logger.WithFields(logrus.Fields{
					"request_id": c.GetString("request_id"),
					"method":     c.Request.Method,
					"path":       c.Request.URL.Path,
					"panic":      fmt.Sprint(rec),
				}).Error("panic recovered")
			}

			env := response.Error(c, http.StatusInternalServerError, MsgInternal, nil)
			if dev {
				env.Message = fmt.Sprint(rec)
				env.Error = fmt.Sprint(rec)
				env.Stack = string(stack)
			}
			if !c.Writer.Written() {
				c.AbortWithStatusJSON(http.StatusInternalServerError, env)
			} else {
				c.Abort()
			}
			if onPanic != nil {
				onPanic(rec)
			}
		}()
		c.Next()
	}
}
