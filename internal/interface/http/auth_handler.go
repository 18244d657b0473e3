package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/oksasatya/go-books-api/internal/application"
	"github.com/oksasatya/go-books-api/pkg/response"
)

type AuthHandler struct {
	Svc *application.AuthService
}

func NewAuthHandler(svc *application.AuthService) *AuthHandler {
	return &AuthHandler{Svc: svc}
}

// Signup POST /api/v1/users/signup
func (h *AuthHandler) Signup(c *gin.Context) {
	var in application.SignupInput
	if err := bindJSON(c, &in, false); err != nil {
		fail(c, err)
		return
	}
	res, err := h.Svc.Signup(c.Request.Context(), in)
	if err != nil {
		fail(c, err)
		return
	}
	counters.Add("signups", 1)
	response.WithToken(c, http.StatusCreated, res.Token, gin.H{"user": res.User.Public()})
}

// Login POST /api/v1/users/login
func (h *AuthHandler) Login(c *gin.Context) {
	var in application.LoginInput
	if err := bindJSON(c, &in, true); err != nil {
		fail(c, err)
		return
	}
	res, err := h.Svc.Login(c.Request.Context(), in)
	if err != nil {
		counters.Add("login_failures", 1)
		fail(c, err)
		return
	}
	counters.Add("logins", 1)
	response.WithToken(c, http.StatusOK, res.Token, gin.H{"user": res.User.Public()})
}
