package modules

import (
	"time"

	"github.com/gin-gonic/gin"

	"github.com/gatekit/gatekit/internal/container"
	"github.com/gatekit/gatekit/internal/domain/repository"
	handlers "github.com/gatekit/gatekit/internal/interface/http"
	"github.com/gatekit/gatekit/internal/interface/middleware"
	"github.com/gatekit/gatekit/pkg/session"
)

// AuthModule wires the login/logout surface and the session gate.
// Public: POST /api/login, POST /api/logout
// Protected: GET /api/me
//
// Logout is deliberately public: it must be reachable from every state with
// no precondition.
type AuthModule struct {
	Handler  *handlers.AuthHandler
	Sessions *session.Manager
	Users    repository.UserRepository
}

func NewAuthModule(h *handlers.AuthHandler, sessions *session.Manager, users repository.UserRepository) *AuthModule {
	return &AuthModule{Handler: h, Sessions: sessions, Users: users}
}

func (m *AuthModule) Register(rg *gin.RouterGroup) {
	loginLimiter := middleware.RateLimit(container.GetRedis(), 10, time.Minute, middleware.KeyByIPAndPath(), nil)

	rg.POST("/login", loginLimiter, m.Handler.Login)
	rg.POST("/logout", m.Handler.Logout)

	protected := rg.Group("/")
	protected.Use(middleware.SessionGate(m.Sessions, m.Users, container.GetLogger()))
	protected.Use(middleware.RateLimit(container.GetRedis(), 300, time.Minute, middleware.KeyByIP(), nil))
	{
		protected.GET("/me", m.Handler.Me)
	}
}
