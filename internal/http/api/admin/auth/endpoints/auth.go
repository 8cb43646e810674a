package endpoints

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog/log"

	"github.com/Nixie-Tech-LLC/athan/internal/http/api"
	"github.com/Nixie-Tech-LLC/athan/internal/http/api/admin/auth/packets"
	"github.com/Nixie-Tech-LLC/athan/internal/http/middleware"
)

const adminSubject = "admin"

// AuthPublicModule mounts public auth endpoints (/auth/login)
func AuthPublicModule(jwtSecret, passwordHash string) api.Module {
	ctl := newAccountManager(jwtSecret, passwordHash)
	return api.ModuleFunc(func(c *api.Controller) {
		c.PUBLIC_POST("/auth/login", ctl.adminLogin)
	})
}

// AuthSessionModule mounts private session endpoints (JWT required)
func AuthSessionModule(jwtSecret, passwordHash string) api.Module {
	ctl := newAccountManager(jwtSecret, passwordHash)
	return api.ModuleFunc(func(c *api.Controller) {
		c.GET("/auth/session", ctl.getSession)
	})
}

type AccountManager struct {
	jwtSecret    string
	passwordHash string
}

func newAccountManager(secret, passwordHash string) *AccountManager {
	return &AccountManager{jwtSecret: secret, passwordHash: passwordHash}
}

// POST /api/admin/auth/login
func (a *AccountManager) adminLogin(ctx *gin.Context) (any, *api.APIError) {
	var request packets.LoginRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		return nil, &api.APIError{Code: http.StatusBadRequest, Message: err.Error()}
	}

	if !middleware.CheckPassword(a.passwordHash, request.Password) {
		log.Warn().Str("client_ip", ctx.ClientIP()).Msg("admin login rejected")
		return nil, &api.APIError{Code: http.StatusUnauthorized, Message: "invalid credentials"}
	}

	token, err := middleware.GenerateJWT(adminSubject, a.jwtSecret)
	if err != nil {
		return nil, &api.APIError{Code: http.StatusInternalServerError, Message: "could not generate token"}
	}

	return packets.LoginResponse{Token: token}, nil
}

// GET /api/admin/auth/session
func (a *AccountManager) getSession(ctx *gin.Context, admin *middleware.Admin) (any, *api.APIError) {
	return packets.SessionResponse{Subject: admin.Subject}, nil
}
