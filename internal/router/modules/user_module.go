package modules

import (
	"github.com/gin-gonic/gin"

	handlers "github.com/oksasatya/go-books-api/internal/interface/http"
)

// UserModule serves the public credential endpoints:
// POST /api/v1/users/signup, POST /api/v1/users/login
type UserModule struct {
	Handler *handlers.AuthHandler
}

func NewUserModule(h *handlers.AuthHandler) *UserModule {
	return &UserModule{Handler: h}
}

func (m *UserModule) Register(rg *gin.RouterGroup) {
	users := rg.Group("/v1/users")
	users.POST("/signup", m.Handler.Signup)
	users.POST("/login", m.Handler.Login)
}
