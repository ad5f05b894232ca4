package api

import (
	"github.com/gin-gonic/gin"
	"github.com/yourname/fittrack/internal/auth"
	"github.com/yourname/fittrack/internal/service"
)

func Register(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Issuer() == nil {
			HandleServiceError(c, app.Logger(), auth.ErrUnsupported, "Registration is handled by the identity service")
			return
		}
		var body service.RegisterRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		s, err := service.Register(c.Request.Context(), app.Store(), app.Issuer(), &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Registration failed")
			return
		}
		HandleCreated(c, app.Logger(), s)
	}
}

func Login(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if app.Issuer() == nil {
			HandleServiceError(c, app.Logger(), auth.ErrUnsupported, "Login is handled by the identity service")
			return
		}
		var body service.LoginRequest
		if err := c.ShouldBindJSON(&body); err != nil {
			HandleError(c, app.Logger(), err, 400, "Invalid JSON")
			return
		}
		s, err := service.Login(c.Request.Context(), app.Store(), app.Issuer(), &body)
		if err != nil {
			HandleServiceError(c, app.Logger(), err, "Login failed")
			return
		}
		HandleSuccess(c, app.Logger(), s, nil)
	}
}

func Logout(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		if err := app.Auth().Revoke(c.Request.Context(), c.GetString(auth.TokenKey)); err != nil {
			HandleServiceError(c, app.Logger(), err, "Logout failed")
			return
		}
		HandleSuccess(c, app.Logger(), gin.H{"loggedOut": true}, nil)
	}
}

func Me(app App) gin.HandlerFunc {
	return func(c *gin.Context) {
		HandleSuccess(c, app.Logger(), auth.CurrentUser(c), nil)
	}
}
