package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// Root GET / points to the API documentation.
func Root(docsURL string) gin.HandlerFunc {
	return func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"message": "Welcome to the books API. Use the link for the docs",
			"link":    docsURL,
		})
	}
}
