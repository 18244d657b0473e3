package middleware

import (
	"net"
	"net/http"

	"github.com/gin-gonic/gin"
)

// AllowFunc reports whether a request skips the rate limiter.
type AllowFunc func(*gin.Context) bool

// AllowPrivateIP bypasses the limiter for loopback and private-range clients.
func AllowPrivateIP() AllowFunc {
	return func(c *gin.Context) bool {
		ip := net.ParseIP(ipFromCtx(c))
		return ip != nil && (ip.IsLoopback() || ip.IsPrivate())
	}
}

// AllowPreflight bypasses the limiter for CORS preflight requests.
func AllowPreflight() AllowFunc {
	return func(c *gin.Context) bool {
		return c.Request.Method == http.MethodOptions && c.GetHeader("Access-Control-Request-Method") != ""
	}
}

// AnyOf bypasses when any of fns does. Nil entries are skipped.
func AnyOf(fns ...AllowFunc) AllowFunc {
	return func(c *gin.Context) bool {
		for _, fn := range fns {
			if fn != nil && fn(c) {
				return true
			}
		}
		return false
	}
}
