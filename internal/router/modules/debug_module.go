package modules

import (
	"expvar"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-books-api/internal/interface/middleware"
)

// DebugModule exposes expvar counters at /api/debug/vars.
type DebugModule struct {
	Redis *redis.Client
}

func NewDebugModule(rdb *redis.Client) *DebugModule { return &DebugModule{Redis: rdb} }

func (m *DebugModule) Register(rg *gin.RouterGroup) {
	// Internal scrapers bypass the per-IP limit.
	rl := middleware.RateLimit(m.Redis, 120, time.Minute, middleware.KeyByIPAndPath(), middleware.AnyOf(middleware.AllowPrivateIP(), middleware.AllowPreflight()))
	rg.GET("/debug/vars", rl, gin.WrapH(expvar.Handler()))
}
