package middleware

import (
	"context"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-books-api/internal/domain/entity"
)

// CtxUserKey holds the authenticated *entity.User for the rest of the chain.
const CtxUserKey = "user"

// Authenticator resolves an Authorization header to a user.
type Authenticator interface {
	Authenticate(ctx context.Context, header string) (*entity.User, error)
}

// Protect rejects requests without a valid bearer token for an existing
// user. Failures go to ErrorHandler.
func Protect(auth Authenticator) gin.HandlerFunc {
	return func(c *gin.Context) {
		u, err := auth.Authenticate(c.Request.Context(), c.GetHeader("Authorization"))
		if err != nil {
			_ = c.Error(err)
			c.Abort()
			return
		}
		c.Set(CtxUserKey, u)
		c.Set("userID", u.ID)
		c.Next()
	}
}

// CurrentUser returns the user stored by Protect, or nil.
func CurrentUser(c *gin.Context) *entity.User {
	if v, ok := c.Get(CtxUserKey); ok {
		if u, ok := v.(*entity.User); ok {
			return u
		}
	}
	return nil
}
