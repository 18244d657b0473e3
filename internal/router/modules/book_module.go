package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-books-api/internal/interface/http"
	"github.com/oksasatya/go-books-api/internal/interface/middleware"
)

// BookModule serves /api/v1/books. Every route requires a bearer token; the
// token check runs before any handler looks at the id.
type BookModule struct {
	Handler *handlers.BookHandler
	Auth    middleware.Authenticator
}

func NewBookModule(h *handlers.BookHandler, auth middleware.Authenticator) *BookModule {
	return &BookModule{Handler: h, Auth: auth}
}

func (m *BookModule) Register(rg *gin.RouterGroup) {
	books := rg.Group("/v1/books")
	books.Use(middleware.Protect(m.Auth))
	{
		books.GET("", m.Handler.List)
		books.POST("", m.Handler.Create)
		books.GET("/search", m.Handler.Search)
		books.GET("/:id", m.Handler.Get)
		books.PATCH("/:id", m.Handler.Update)
		books.DELETE("/:id", m.Handler.Delete)
		books.POST("/:id/thumbnail", m.Handler.UploadThumbnail)
	}
}
