package router

import (
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-books-api/internal/container"
	handlers "github.com/oksasatya/go-books-api/internal/interface/http"
	"github.com/oksasatya/go-books-api/internal/interface/middleware"
)

// NewEngine builds the gin engine with the global middleware chain, the root
// route and the catch-all 404, and returns the registry for /api modules.
// onPanic runs after a recovered panic has been answered.
func NewEngine(onPanic func(any)) (*gin.Engine, *Registry) {
	cfg := container.GetConfig()
	logger := container.GetLogger()
	dev := cfg.IsDevelopment()

	r := gin.New()
	if !cfg.TrustProxy {
		_ = r.SetTrustedProxies(nil)
	}
	r.Use(middleware.RequestIDMiddleware())
	r.Use(middleware.RealIP(cfg.TrustProxy))
	if dev {
		r.Use(gin.Logger())
	}
	r.Use(middleware.Recovery(logger, dev, onPanic))
	r.Use(middleware.ErrorHandler(logger, dev))
	r.Use(middleware.SecurityHeaders())

	corsCfg := cors.Config{
		AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowHeaders:     []string{"Origin", "Content-Type", "Accept", "Authorization", middleware.HeaderRequestID},
		ExposeHeaders:    []string{"Content-Length", middleware.HeaderRequestID},
		AllowCredentials: false,
		MaxAge:           12 * time.Hour,
	}
	if origins := cfg.CORSOrigins(); len(origins) > 0 {
		corsCfg.AllowOrigins = origins
	} else {
		corsCfg.AllowAllOrigins = true
	}
	r.Use(cors.New(corsCfg))
	r.Use(middleware.BodyLimit(cfg.BodyLimitBytes))

	r.GET("/", handlers.Root(cfg.DocsURL))
	r.NoRoute(middleware.NotFound())

	reg := NewRegistry(r)
	reg.Use(middleware.RateLimit(container.GetRedis(), cfg.RateLimitMax, cfg.RateLimitWindow, middleware.KeyByIP(), middleware.AllowPreflight()))
	return r, reg
}
